// Package querycache memoizes remote reads per operation and parameter,
// coalesces concurrent reads of the same key and lets writers invalidate
// keys so the next read refetches.
//
// Each key moves through empty → loading → ready | failed. Invalidation
// marks a key invalidated; the next read loads it again. A load started
// before an invalidation is never written back into the cache.
//
// # Usage
//
//	cache := querycache.New(querycache.Options{MaxEntries: 512})
//	teaching, err := querycache.Fetch(ctx, cache, querycache.Key{Op: "teaching", Param: id},
//		func(ctx context.Context) (*entities.Teaching, error) {
//			return remote.Teaching(ctx, id)
//		})
//	cache.InvalidateOp("teachings")
package querycache

import (
	"container/list"
	"context"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultMaxEntries bounds the cache when Options.MaxEntries is zero.
const DefaultMaxEntries = 512

// State is the lifecycle state of one key.
type State int

const (
	StateEmpty State = iota
	StateLoading
	StateReady
	StateFailed
	StateInvalidated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateInvalidated:
		return "invalidated"
	default:
		return "empty"
	}
}

// Key identifies a cached read: the operation name and its parameter.
type Key struct {
	Op    string
	Param string
}

func (k Key) String() string {
	if k.Param == "" {
		return k.Op
	}
	return k.Op + "/" + k.Param
}

// Snapshot is a point-in-time view of one key.
type Snapshot struct {
	State     State
	Value     any // last successful value; may be stale when State is not ready
	Err       error
	UpdatedAt time.Time
}

type entry struct {
	key       Key
	state     State
	value     any
	err       error
	updatedAt time.Time
	gen       uint64
	inflight  int
	elem      *list.Element
}

type Options struct {
	MaxEntries int
	Now        func() time.Time
}

// Cache is safe for concurrent use. Create one per session.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]*entry
	order   *list.List
	seq     uint64
	group   singleflight.Group

	maxEntries int
	now        func() time.Time
}

func New(opts Options) *Cache {
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = DefaultMaxEntries
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Cache{
		entries:    make(map[Key]*entry),
		order:      list.New(),
		maxEntries: opts.MaxEntries,
		now:        opts.Now,
	}
}

// Fetch returns the cached value for key, loading it with fn when the key
// is empty, failed or invalidated. Concurrent callers for the same key share
// one call to fn; that call runs with the first caller's context.
func Fetch[T any](ctx context.Context, c *Cache, key Key, fn func(ctx context.Context) (T, error)) (T, error) {
	v, err := c.fetch(ctx, key, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	t, _ := v.(T)
	return t, nil
}

func (c *Cache) fetch(ctx context.Context, key Key, fn func(context.Context) (any, error)) (any, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok && e.state == StateReady {
		c.order.MoveToFront(e.elem)
		v := e.value
		c.mu.Unlock()
		return v, nil
	}
	if !ok {
		e = c.insertLocked(key)
	} else {
		c.order.MoveToFront(e.elem)
	}
	e.state = StateLoading
	e.inflight++
	gen := e.gen
	c.mu.Unlock()

	v, err, _ := c.group.Do(key.String()+"#"+strconv.FormatUint(gen, 10), func() (any, error) {
		val, err := fn(ctx)
		c.commit(key, gen, val, err)
		return val, err
	})

	c.mu.Lock()
	e.inflight--
	c.evictLocked()
	c.mu.Unlock()

	return v, err
}

func (c *Cache) insertLocked(key Key) *entry {
	c.seq++
	e := &entry{key: key, state: StateEmpty, gen: c.seq}
	e.elem = c.order.PushFront(e)
	c.entries[key] = e
	return e
}

// commit stores a load result unless the key was invalidated or removed
// after the load started.
func (c *Cache) commit(key Key, gen uint64, val any, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || e.gen != gen {
		return
	}
	if err != nil {
		e.state = StateFailed
		e.err = err
		return
	}
	e.state = StateReady
	e.value = val
	e.err = nil
	e.updatedAt = c.now()
}

func (c *Cache) evictLocked() {
	for elem := c.order.Back(); elem != nil && len(c.entries) > c.maxEntries; {
		prev := elem.Prev()
		e := elem.Value.(*entry)
		if e.inflight == 0 {
			c.order.Remove(elem)
			delete(c.entries, e.key)
		}
		elem = prev
	}
}

func (c *Cache) invalidateLocked(e *entry) {
	c.seq++
	e.gen = c.seq
	if e.state != StateEmpty {
		e.state = StateInvalidated
	}
}

// Invalidate marks one key for refetch on its next read.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		c.invalidateLocked(e)
	}
}

// InvalidateOp invalidates every key of an operation, whatever its parameter.
func (c *Cache) InvalidateOp(op string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		if key.Op == op {
			c.invalidateLocked(e)
		}
	}
}

// Clear drops every entry. Loads in flight finish but are not stored.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[Key]*entry)
	c.order.Init()
}

// Peek reports the current state of key without loading it.
func (c *Cache) Peek(key Key) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return Snapshot{State: StateEmpty}
	}
	return Snapshot{State: e.state, Value: e.value, Err: e.err, UpdatedAt: e.updatedAt}
}

// Len returns the number of tracked keys.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
