// Package registry implements the process-wide virtual-host registry:
// a sync.RWMutex over (hostname, port) -> *vhost.VirtualHost, shared by
// every listener driver. Lookups share the read lock; the lock is not
// reader-preferring, since a writer waiting in Add or Remove blocks new
// lookups until it has finished. It is generalized from the teacher's
// vhostTrie (which additionally tries wildcard-expanded hostnames and
// a fallback-hosts list; this spec standardizes on an exact,
// case-insensitive hostname match with no wildcard expansion).
package registry

import (
	"strings"
	"sync"

	"github.com/ararog/vetis/vhost"
)

// Key identifies a virtual host by lowercased hostname and bound port.
type Key struct {
	Host string
	Port uint16
}

// Registry is a shared, RWMutex-guarded map of virtual hosts.
type Registry struct {
	mu    sync.RWMutex
	hosts map[Key]*vhost.VirtualHost
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{hosts: make(map[Key]*vhost.VirtualHost)}
}

// Add inserts or replaces the virtual host for (hostname, port). Last
// insertion wins, per the data-model invariant.
func (r *Registry) Add(vh *vhost.VirtualHost) {
	key := Key{Host: strings.ToLower(vh.Hostname()), Port: vh.Port()}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hosts[key] = vh
}

// Lookup finds the virtual host for (hostname, port), lowercasing
// hostname for the caller's convenience.
func (r *Registry) Lookup(hostname string, port uint16) (*vhost.VirtualHost, bool) {
	key := Key{Host: strings.ToLower(hostname), Port: port}
	r.mu.RLock()
	defer r.mu.RUnlock()
	vh, ok := r.hosts[key]
	return vh, ok
}

// Remove deletes the entry for (hostname, port).
func (r *Registry) Remove(hostname string, port uint16) {
	key := Key{Host: strings.ToLower(hostname), Port: port}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.hosts, key)
}

// Each calls fn for every virtual host currently registered, holding
// only a read lock for the duration of the call.
func (r *Registry) Each(fn func(*vhost.VirtualHost)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, vh := range r.hosts {
		fn(vh)
	}
}

// Len reports how many virtual hosts are registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.hosts)
}
