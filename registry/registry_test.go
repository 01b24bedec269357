package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ararog/vetis/config"
	"github.com/ararog/vetis/vhost"
)

func TestRegistry_AddAndLookup(t *testing.T) {
	r := New()
	vh := vhost.New(config.VirtualHostConfig{Hostname: "Example.COM", Port: 443}, nil)
	r.Add(vh)

	got, ok := r.Lookup("example.com", 443)
	assert.True(t, ok)
	assert.Same(t, vh, got)
}

func TestRegistry_LookupCaseInsensitive(t *testing.T) {
	r := New()
	vh := vhost.New(config.VirtualHostConfig{Hostname: "example.com", Port: 80}, nil)
	r.Add(vh)

	_, ok := r.Lookup("EXAMPLE.COM", 80)
	assert.True(t, ok)
}

func TestRegistry_LookupMissing(t *testing.T) {
	r := New()
	_, ok := r.Lookup("nowhere.test", 80)
	assert.False(t, ok)
}

func TestRegistry_RemoveAndLen(t *testing.T) {
	r := New()
	vh := vhost.New(config.VirtualHostConfig{Hostname: "example.com", Port: 80}, nil)
	r.Add(vh)
	assert.Equal(t, 1, r.Len())

	r.Remove("example.com", 80)
	assert.Equal(t, 0, r.Len())
}
