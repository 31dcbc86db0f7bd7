// Package cache provides a bounded, write-once reuse cache for per-sample
// rows of numeric state.
package cache

import "container/list"

// RowCache is a fixed-capacity LRU cache mapping an int key to a
// fixed-length row of T. It is owned by a single engine instance and is not
// safe for concurrent use.
//
// Put is write-once per key: a second Put for an existing key is a no-op, so
// a row can never change once observed. With capacity <= 0 every Put is a
// no-op and every Get misses.
type RowCache[T ~float32 | ~float64] struct {
	capacity  int
	rowLen    int
	items     map[int]*list.Element
	evictList *list.List

	hits   int
	misses int
}

type rowEntry[T ~float32 | ~float64] struct {
	key int
	row []T
}

// New creates an empty RowCache. Configure sets capacity and row length
// before first use.
func New[T ~float32 | ~float64]() *RowCache[T] {
	return &RowCache[T]{
		items:     make(map[int]*list.Element),
		evictList: list.New(),
	}
}

// Configure sets the capacity and fixed row length. It does not drop
// existing entries: the caller must Clear first when the row length changes,
// otherwise stale rows of the old length remain visible.
func (c *RowCache[T]) Configure(capacity, rowLen int) {
	c.capacity = capacity
	c.rowLen = rowLen
}

// Get returns the cached row for key, promoting it to most recently used.
// The returned slice is owned by the cache and only valid until the next
// mutating call. A miss returns nil.
func (c *RowCache[T]) Get(key int) []T {
	if ent, ok := c.items[key]; ok {
		c.hits++
		c.evictList.MoveToFront(ent)
		return ent.Value.(*rowEntry[T]).row
	}
	c.misses++
	return nil
}

// Put stores a copy of row under key. It is a no-op when the key already
// exists, when the capacity is not positive, or when the row length does not
// match the configured length. At capacity the least recently used entry is
// evicted first.
func (c *RowCache[T]) Put(key int, row []T) {
	if c.capacity <= 0 || len(row) != c.rowLen {
		return
	}
	if _, ok := c.items[key]; ok {
		return
	}

	if c.evictList.Len() >= c.capacity {
		if back := c.evictList.Back(); back != nil {
			c.removeElement(back)
		}
	}

	stored := make([]T, c.rowLen)
	copy(stored, row)
	c.items[key] = c.evictList.PushFront(&rowEntry[T]{key: key, row: stored})
}

// Clear drops all entries and resets the hit counters. Capacity and row
// length are kept.
func (c *RowCache[T]) Clear() {
	c.items = make(map[int]*list.Element)
	c.evictList.Init()
	c.hits = 0
	c.misses = 0
}

// Len returns the number of cached rows.
func (c *RowCache[T]) Len() int {
	return c.evictList.Len()
}

// Capacity returns the configured capacity.
func (c *RowCache[T]) Capacity() int {
	return c.capacity
}

// RowLen returns the configured row length.
func (c *RowCache[T]) RowLen() int {
	return c.rowLen
}

// Stats returns the hit and miss counts since the last Clear.
func (c *RowCache[T]) Stats() (hits, misses int) {
	return c.hits, c.misses
}

func (c *RowCache[T]) removeElement(e *list.Element) {
	c.evictList.Remove(e)
	delete(c.items, e.Value.(*rowEntry[T]).key)
}
