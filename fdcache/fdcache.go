// Package fdcache implements the bounded descriptor cache the static
// file engine uses to avoid open() storms on hot assets: a
// canonical-path -> duplicable os.File cache with LRU eviction,
// grounded on the hashicorp/golang-lru package the teacher's own
// module tree has historically depended on for exactly this shape of
// cache (vendor/github.com/hashicorp/golang-lru in the v1 tree).
package fdcache

import (
	"os"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

const defaultCapacity = 100

// entry reference-counts the duplicates handed out for one cached
// master descriptor, so an LRU eviction never closes a descriptor
// still in use by an in-flight request; the master is only actually
// closed once it has been evicted AND every outstanding duplicate has
// been released, in whichever order those two events occur.
type entry struct {
	mu      sync.Mutex
	master  *os.File
	refs    int
	evicted bool
}

func (e *entry) acquire() {
	e.mu.Lock()
	e.refs++
	e.mu.Unlock()
}

func (e *entry) release() {
	e.mu.Lock()
	e.refs--
	closeNow := e.evicted && e.refs <= 0 && e.master != nil
	var f *os.File
	if closeNow {
		f = e.master
		e.master = nil
	}
	e.mu.Unlock()
	if f != nil {
		_ = f.Close()
	}
}

func (e *entry) evict() {
	e.mu.Lock()
	e.evicted = true
	closeNow := e.refs <= 0 && e.master != nil
	var f *os.File
	if closeNow {
		f = e.master
		e.master = nil
	}
	e.mu.Unlock()
	if f != nil {
		_ = f.Close()
	}
}

// Cache is a bounded LRU of canonical path -> duplicable descriptor.
type Cache struct {
	lru   *lru.Cache[string, *entry]
	group singleflight.Group
}

// New returns a descriptor cache with the given capacity, or the
// default of 100 if capacity <= 0.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	c := &Cache{}
	onEvict := func(_ string, e *entry) {
		e.evict()
	}
	l, err := lru.NewWithEvict[string, *entry](capacity, onEvict)
	if err != nil {
		l, _ = lru.NewWithEvict[string, *entry](defaultCapacity, onEvict)
	}
	c.lru = l
	return c
}

// Handle is a duplicated, caller-owned descriptor. Read it positionally
// (io.ReaderAt / io.NewSectionReader) since it shares a file offset
// with every other outstanding duplicate of the same cached file.
// Close releases the cache's reference count; it does not necessarily
// close the underlying master descriptor if the cache still holds it.
type Handle struct {
	*os.File
	entry *entry
}

// Close releases this handle's duplicate descriptor.
func (h *Handle) Close() error {
	err := h.File.Close()
	h.entry.release()
	return err
}

// Open returns a duplicated descriptor for the canonical path. If the
// path is not cached, it is opened, inserted, and a duplicate
// returned; eviction of the cache entry only closes the master file
// once every outstanding duplicate has been released.
//
// Concurrent misses on the same path are coalesced through a
// singleflight group so only one goroutine ever opens and inserts the
// entry: without this, two racing misses would each os.Open their own
// descriptor, and hashicorp/golang-lru's Add silently overwrites an
// existing key without invoking the eviction callback, leaking the
// loser's descriptor.
func (c *Cache) Open(path string) (*Handle, error) {
	canonical, err := filepath.Abs(path)
	if err != nil {
		canonical = path
	}

	for attempt := 0; attempt < 2; attempt++ {
		if e, ok := c.lru.Get(canonical); ok {
			if h, err, found := tryAcquire(e); found {
				return h, err
			}
		}

		v, err, _ := c.group.Do(canonical, func() (interface{}, error) {
			if e, ok := c.lru.Get(canonical); ok {
				return e, nil
			}
			f, err := os.Open(canonical)
			if err != nil {
				return nil, err
			}
			e := &entry{master: f}
			c.lru.Add(canonical, e)
			return e, nil
		})
		if err != nil {
			return nil, err
		}

		if h, err, found := tryAcquire(v.(*entry)); found {
			return h, err
		}
		// The entry was evicted (and its master closed) between
		// insertion and acquisition; retry to open it fresh.
	}
	return nil, os.ErrClosed
}

// tryAcquire duplicates e's master descriptor if it still has one.
// found is false when e has already been evicted and closed, telling
// the caller to reopen the file rather than hand back a dead handle.
func tryAcquire(e *entry) (h *Handle, err error, found bool) {
	e.mu.Lock()
	f := e.master
	e.mu.Unlock()
	if f == nil {
		return nil, nil, false
	}
	dup, err := dupFile(f)
	if err != nil {
		return nil, err, true
	}
	e.acquire()
	return &Handle{File: dup, entry: e}, nil, true
}

// Len reports how many canonical paths are currently cached.
func (c *Cache) Len() int {
	return c.lru.Len()
}
