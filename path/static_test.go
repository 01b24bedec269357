package path

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRange_Simple(t *testing.T) {
	start, end, ok := parseRange("bytes=0-99", 1000)
	assert.True(t, ok)
	assert.Equal(t, int64(0), start)
	assert.Equal(t, int64(99), end)
}

func TestParseRange_OpenEnded(t *testing.T) {
	start, end, ok := parseRange("bytes=500-", 1000)
	assert.True(t, ok)
	assert.Equal(t, int64(500), start)
	assert.Equal(t, int64(999), end)
}

func TestParseRange_EndBeyondSize(t *testing.T) {
	start, end, ok := parseRange("bytes=0-5000", 1000)
	assert.True(t, ok)
	assert.Equal(t, int64(0), start)
	assert.Equal(t, int64(999), end)
}

func TestParseRange_StartBeyondSize(t *testing.T) {
	_, _, ok := parseRange("bytes=1000-1001", 1000)
	assert.False(t, ok)
}

func TestParseRange_StartAfterEnd(t *testing.T) {
	_, _, ok := parseRange("bytes=500-100", 1000)
	assert.False(t, ok)
}

func TestParseRange_WrongUnit(t *testing.T) {
	_, _, ok := parseRange("items=0-1", 1000)
	assert.False(t, ok)
}

func TestParseRange_Malformed(t *testing.T) {
	_, _, ok := parseRange("bytes=abc-def", 1000)
	assert.False(t, ok)
}

func TestSingleJoiningSlash_AbsolutePaths(t *testing.T) {
	assert.Equal(t, "/a/b", singleJoiningSlash("/a/", "/b"))
	assert.Equal(t, "/a/b", singleJoiningSlash("/a", "b"))
	assert.Equal(t, "/a", singleJoiningSlash("/a", ""))
}
