package pipeline

import (
	"context"
	"sync"
)

// Cache is a process-lifetime content-addressed store mapping parameter
// fingerprints to rendered payloads. Lookups on distinct fingerprints do
// not serialize behind a running render; concurrent requests for the same
// fingerprint coalesce onto a single computation and share its result.
//
// The cache never evicts. Memory grows with the number of distinct
// parameter sets seen over the life of the process.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]*Payload
	inflight map[string]*call
}

type call struct {
	done chan struct{}
	val  *Payload
	err  error
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		entries:  make(map[string]*Payload),
		inflight: make(map[string]*call),
	}
}

// Get returns the cached payload for fp, if any.
func (c *Cache) Get(fp string) (*Payload, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.entries[fp]
	return p, ok
}

// Len reports the number of stored payloads.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Do returns the cached payload for fp or computes it with fn. Concurrent
// calls with the same fingerprint share one invocation of fn. Errors are
// delivered to every waiter but never stored, so a later call retries.
//
// A waiter whose context is cancelled stops waiting and returns the
// context error; the in-flight computation keeps running and still
// populates the cache for subsequent callers.
func (c *Cache) Do(ctx context.Context, fp string, fn func() (*Payload, error)) (*Payload, error) {
	c.mu.Lock()
	if p, ok := c.entries[fp]; ok {
		c.mu.Unlock()
		return p, nil
	}
	if cl, ok := c.inflight[fp]; ok {
		c.mu.Unlock()
		select {
		case <-cl.done:
			return cl.val, cl.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	cl := &call{done: make(chan struct{})}
	c.inflight[fp] = cl
	c.mu.Unlock()

	cl.val, cl.err = fn()

	c.mu.Lock()
	delete(c.inflight, fp)
	if cl.err == nil {
		c.entries[fp] = cl.val
	}
	c.mu.Unlock()
	close(cl.done)

	return cl.val, cl.err
}
