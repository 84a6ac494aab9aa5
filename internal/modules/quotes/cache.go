// Package quotes implements quote lookup with market-hours aware caching.
package quotes

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/aristath/trendly/internal/domain"
)

// DefaultTTL bounds how long a quote fetched while the market was closed may be reused
const DefaultTTL = 12 * time.Hour

// Entry is a normalized quote as last fetched for a ticker
type Entry struct {
	Ticker    string                 `json:"ticker"`
	Exchange  string                 `json:"exchange"`
	FetchedAt time.Time              `json:"fetched_at"`
	Quote     domain.NormalizedQuote `json:"quote"`
}

// slot holds the entry for one ticker. Slots are never removed, so the mutex a
// caller locks is always the one other callers for the same ticker will contend on.
type slot struct {
	mu          sync.Mutex
	entry       atomic.Pointer[Entry]
	lastFetched atomic.Int64
}

// Cache is an in-process quote cache keyed by ticker.
// Get, Put and Invalidate are individually atomic; Lock serializes a
// read-modify-write sequence for one ticker without blocking other tickers.
type Cache struct {
	slots sync.Map // ticker -> *slot
	ttl   time.Duration
	now   func() time.Time
}

// NewCache creates a cache whose entries expire ttl after FetchedAt
func NewCache(ttl time.Duration, now func() time.Time) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Cache{ttl: ttl, now: now}
}

func (c *Cache) slot(ticker string) *slot {
	if s, ok := c.slots.Load(ticker); ok {
		return s.(*slot)
	}
	s, _ := c.slots.LoadOrStore(ticker, &slot{})
	return s.(*slot)
}

// Lock acquires the per-ticker lock and returns its release function
func (c *Cache) Lock(ticker string) (unlock func()) {
	s := c.slot(ticker)
	s.mu.Lock()
	return s.mu.Unlock
}

// Get returns the entry for ticker if one exists and is younger than the TTL.
// Expired entries are dropped on read.
func (c *Cache) Get(ticker string) (*Entry, bool) {
	v, ok := c.slots.Load(ticker)
	if !ok {
		return nil, false
	}
	s := v.(*slot)

	entry := s.entry.Load()
	if entry == nil {
		return nil, false
	}
	if !c.fresh(entry) {
		s.entry.CompareAndSwap(entry, nil)
		return nil, false
	}
	return entry, true
}

// Put stores entry, stamping FetchedAt with the current time. Stamps for a
// ticker strictly increase, even when the clock does not move between writes.
func (c *Cache) Put(entry Entry) *Entry {
	s := c.slot(entry.Ticker)

	now := c.now()
	for {
		last := s.lastFetched.Load()
		stamp := now.UnixNano()
		if stamp <= last {
			stamp = last + 1
		}
		if s.lastFetched.CompareAndSwap(last, stamp) {
			entry.FetchedAt = time.Unix(0, stamp).In(now.Location())
			break
		}
	}

	stored := entry
	s.entry.Store(&stored)
	return &stored
}

// Invalidate removes any entry for ticker
func (c *Cache) Invalidate(ticker string) {
	if v, ok := c.slots.Load(ticker); ok {
		v.(*slot).entry.Store(nil)
	}
}

// PurgeExpired drops every entry past its TTL and returns how many were removed
func (c *Cache) PurgeExpired() int {
	purged := 0
	c.slots.Range(func(_, v interface{}) bool {
		s := v.(*slot)
		if entry := s.entry.Load(); entry != nil && !c.fresh(entry) {
			if s.entry.CompareAndSwap(entry, nil) {
				purged++
			}
		}
		return true
	})
	return purged
}

// Len returns the number of live entries, expired or not
func (c *Cache) Len() int {
	n := 0
	c.slots.Range(func(_, v interface{}) bool {
		if v.(*slot).entry.Load() != nil {
			n++
		}
		return true
	})
	return n
}

// TTL returns the configured entry lifetime
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

func (c *Cache) fresh(entry *Entry) bool {
	return c.now().Sub(entry.FetchedAt) < c.ttl
}
