// Package flight collapses concurrent transfers of the same object into one
// upstream call.
package flight

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Group runs at most one call per (bucket, key) at a time. Callers that
// arrive while a call is running share its result.
type Group struct {
	sf singleflight.Group

	mu      sync.Mutex
	waiters map[string]int
}

// New creates an empty group.
func New() *Group {
	return &Group{waiters: make(map[string]int)}
}

func flightKey(bucket, key string) string {
	return bucket + "\x00" + key
}

// Do runs fn for (bucket, key) unless a call for the same pair is already in
// flight, in which case it waits for that call. shared reports whether the
// result was handed to more than one caller.
func (g *Group) Do(bucket, key string, fn func() (string, error)) (v string, shared bool, err error) {
	k := flightKey(bucket, key)
	g.acquire(k)
	defer g.release(k)

	res, err, shared := g.sf.Do(k, func() (interface{}, error) {
		return fn()
	})
	if res != nil {
		v = res.(string)
	}
	return v, shared, err
}

// Waiters returns how many callers currently wait on (bucket, key).
func (g *Group) Waiters(bucket, key string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.waiters[flightKey(bucket, key)]
}

func (g *Group) acquire(k string) {
	g.mu.Lock()
	g.waiters[k]++
	g.mu.Unlock()
}

func (g *Group) release(k string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.waiters[k]--
	if g.waiters[k] <= 0 {
		delete(g.waiters, k)
	}
}
