// Dish Atlas - Culinary History on an Interactive Globe
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/dishatlas

// Package cache provides the in-process data structures behind history
// lookups and discovery: a bounded LFU cache with TTL, a prefix trie for
// dish name suggestions, and a spatial hash grid for nearby queries.
package cache

import (
	"sync"
	"time"

	"github.com/tomtom215/dishatlas/internal/metrics"
)

const (
	defaultCapacity = 1000
	defaultTTL      = 5 * time.Minute
)

// lfuEntry is a node in a per-frequency doubly linked list.
type lfuEntry[V any] struct {
	key       string
	value     V
	freq      int
	expiresAt time.Time
	prev      *lfuEntry[V]
	next      *lfuEntry[V]
}

// freqList keeps entries of one frequency, most recent at the front.
type freqList[V any] struct {
	head *lfuEntry[V]
	tail *lfuEntry[V]
	size int
}

func newFreqList[V any]() *freqList[V] {
	fl := &freqList[V]{head: &lfuEntry[V]{}, tail: &lfuEntry[V]{}}
	fl.head.next = fl.tail
	fl.tail.prev = fl.head
	return fl
}

func (fl *freqList[V]) pushFront(e *lfuEntry[V]) {
	e.prev = fl.head
	e.next = fl.head.next
	fl.head.next.prev = e
	fl.head.next = e
	fl.size++
}

func (fl *freqList[V]) remove(e *lfuEntry[V]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	e.prev, e.next = nil, nil
	fl.size--
}

func (fl *freqList[V]) back() *lfuEntry[V] {
	if fl.size == 0 {
		return nil
	}
	return fl.tail.prev
}

// LFU is a thread-safe least-frequently-used cache with per-entry TTL.
// Ties within a frequency are broken by recency. All operations are O(1)
// except eviction after deletes, which may rescan frequencies.
type LFU[V any] struct {
	mu       sync.Mutex
	name     string
	capacity int
	ttl      time.Duration
	now      func() time.Time

	keys    map[string]*lfuEntry[V]
	freqs   map[int]*freqList[V]
	minFreq int

	hits      int64
	misses    int64
	evictions int64
}

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
	Size      int   `json:"size"`
	Capacity  int   `json:"capacity"`
}

// HitRate returns hits as a percentage of lookups.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// NewLFU creates a cache reporting to Prometheus under name.
// Non-positive capacity or ttl select defaults.
func NewLFU[V any](name string, capacity int, ttl time.Duration) *LFU[V] {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &LFU[V]{
		name:     name,
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		keys:     make(map[string]*lfuEntry[V], capacity),
		freqs:    make(map[int]*freqList[V]),
	}
}

// Get returns the value for key if present and unexpired.
func (c *LFU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.keys[key]
	if !ok {
		c.recordLookup(false)
		return zero, false
	}
	if c.now().After(e.expiresAt) {
		c.removeLocked(e)
		c.recordLookup(false)
		return zero, false
	}

	c.touchLocked(e)
	c.recordLookup(true)
	return e.value, true
}

// Set stores value with the default TTL.
func (c *LFU[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores value with a custom TTL. Updating an existing key counts
// as a use.
func (c *LFU[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(ttl)
	if e, ok := c.keys[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		c.touchLocked(e)
		return
	}

	if len(c.keys) >= c.capacity {
		c.evictLocked()
	}

	e := &lfuEntry[V]{key: key, value: value, freq: 1, expiresAt: expiresAt}
	c.listFor(1).pushFront(e)
	c.keys[key] = e
	c.minFreq = 1
	c.publishSize()
}

// Delete removes key and reports whether it was present.
func (c *LFU[V]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.keys[key]
	if !ok {
		return false
	}
	c.removeLocked(e)
	return true
}

// Clear drops every entry. Counters are kept.
func (c *LFU[V]) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.keys)
	c.keys = make(map[string]*lfuEntry[V], c.capacity)
	c.freqs = make(map[int]*freqList[V])
	c.minFreq = 0
	c.publishSize()
	return n
}

// Len returns the number of entries, including expired ones not yet collected.
func (c *LFU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.keys)
}

// Frequency returns how often key has been used, or 0.
func (c *LFU[V]) Frequency(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.keys[key]; ok {
		return e.freq
	}
	return 0
}

// Stats returns a snapshot of the cache counters.
func (c *LFU[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Size:      len(c.keys),
		Capacity:  c.capacity,
	}
}

// CleanupExpired removes expired entries and returns how many were removed.
func (c *LFU[V]) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for _, e := range c.keys {
		if now.After(e.expiresAt) {
			c.removeLocked(e)
			removed++
		}
	}
	return removed
}

func (c *LFU[V]) listFor(freq int) *freqList[V] {
	fl := c.freqs[freq]
	if fl == nil {
		fl = newFreqList[V]()
		c.freqs[freq] = fl
	}
	return fl
}

func (c *LFU[V]) touchLocked(e *lfuEntry[V]) {
	old := c.freqs[e.freq]
	old.remove(e)
	if old.size == 0 {
		delete(c.freqs, e.freq)
		if c.minFreq == e.freq {
			c.minFreq++
		}
	}
	e.freq++
	c.listFor(e.freq).pushFront(e)
}

func (c *LFU[V]) removeLocked(e *lfuEntry[V]) {
	if fl := c.freqs[e.freq]; fl != nil {
		fl.remove(e)
		if fl.size == 0 {
			delete(c.freqs, e.freq)
		}
	}
	delete(c.keys, e.key)
	c.publishSize()
}

// evictLocked drops the least recently used entry of the lowest frequency.
// minFreq can go stale after deletes, so it is re-derived when its list is gone.
func (c *LFU[V]) evictLocked() {
	fl := c.freqs[c.minFreq]
	if fl == nil {
		c.minFreq = 0
		for f := range c.freqs {
			if c.minFreq == 0 || f < c.minFreq {
				c.minFreq = f
			}
		}
		fl = c.freqs[c.minFreq]
	}
	if fl == nil {
		return
	}

	victim := fl.back()
	if victim == nil {
		return
	}
	c.removeLocked(victim)
	c.evictions++
	metrics.CacheEvictions.WithLabelValues(c.name).Inc()
}

func (c *LFU[V]) recordLookup(hit bool) {
	if hit {
		c.hits++
	} else {
		c.misses++
	}
	metrics.RecordCacheLookup(c.name, hit)
}

func (c *LFU[V]) publishSize() {
	metrics.CacheSize.WithLabelValues(c.name).Set(float64(len(c.keys)))
}
