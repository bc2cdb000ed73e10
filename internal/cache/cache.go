// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package cache implements the bounded FIFO that hands samples from the
// trigger-driven producer to the transmit loop.
//
// Full and empty are ordinary results: Push and RequeueFront report a full
// cache with false, Pop reports an empty one with false. Nothing blocks.
package cache

import "fmt"

// Cache is a fixed-capacity ring buffer of T values. Values are copied in
// and out; callers never share storage with the cache.
//
// It is safe for any number of concurrent callers. The producer side is
// expected to be a single trigger goroutine.
type Cache[T any] struct {
	mu       spinLock
	data     []T
	writeIdx int
	readIdx  int
	count    int
}

// New allocates a cache holding up to capacity values. All storage is
// allocated here; Push and RequeueFront never allocate.
func New[T any](capacity int) *Cache[T] {
	if capacity <= 0 {
		panic(fmt.Sprintf("cache: capacity must be > 0, got %d", capacity))
	}
	return &Cache[T]{data: make([]T, capacity)}
}

// Push stores v as the newest entry. It returns false and leaves the
// cache untouched when it is full; v is then the value dropped.
func (c *Cache[T]) Push(v T) bool {
	c.mu.Lock()
	if c.count == len(c.data) {
		c.mu.Unlock()
		return false
	}
	c.data[c.writeIdx] = v
	c.writeIdx = c.next(c.writeIdx)
	c.count++
	c.mu.Unlock()
	return true
}

// Pop removes and returns the oldest entry.
func (c *Cache[T]) Pop() (T, bool) {
	var zero T
	c.mu.Lock()
	if c.count == 0 {
		c.mu.Unlock()
		return zero, false
	}
	v := c.data[c.readIdx]
	c.data[c.readIdx] = zero
	c.readIdx = c.next(c.readIdx)
	c.count--
	c.mu.Unlock()
	return v, true
}

// RequeueFront puts v back as the oldest entry, undoing a Pop whose value
// could not be delivered. Entries already queued keep their order behind
// it. It returns false, without mutation, when the cache is full; the
// caller then owns the loss of v.
func (c *Cache[T]) RequeueFront(v T) bool {
	c.mu.Lock()
	if c.count == len(c.data) {
		c.mu.Unlock()
		return false
	}
	c.readIdx = c.prev(c.readIdx)
	c.data[c.readIdx] = v
	c.count++
	c.mu.Unlock()
	return true
}

// Count returns the number of queued entries, in [0, Cap()].
func (c *Cache[T]) Count() int {
	c.mu.Lock()
	n := c.count
	c.mu.Unlock()
	return n
}

// Cap returns the fixed capacity given to New.
func (c *Cache[T]) Cap() int { return len(c.data) }

func (c *Cache[T]) next(i int) int {
	if i++; i == len(c.data) {
		return 0
	}
	return i
}

func (c *Cache[T]) prev(i int) int {
	if i == 0 {
		return len(c.data) - 1
	}
	return i - 1
}

// consistent reports whether the explicit count agrees with the index
// arithmetic. A false result is a programming defect.
func (c *Cache[T]) consistent() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.data)
	switch {
	case c.count < 0 || c.count > n:
		return fmt.Errorf("count %d outside [0, %d]", c.count, n)
	case c.readIdx < 0 || c.readIdx >= n || c.writeIdx < 0 || c.writeIdx >= n:
		return fmt.Errorf("index out of range: read=%d write=%d cap=%d", c.readIdx, c.writeIdx, n)
	case (c.readIdx+c.count)%n != c.writeIdx:
		return fmt.Errorf("count %d disagrees with read=%d write=%d cap=%d", c.count, c.readIdx, c.writeIdx, n)
	}
	return nil
}
