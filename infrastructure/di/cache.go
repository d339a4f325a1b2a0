package di

import (
	"context"
	"sync"
	"time"

	"homeport-backend/application/ports"
)

// SessionCache is the process-local registry the orchestrator keeps edit
// sessions in, keyed by principal. Sessions are in-memory state by design,
// so a process-local store with idle expiry is the whole requirement; an
// expired entry simply forces a rebuild from the repository.
type SessionCache struct {
	mu      sync.RWMutex
	entries map[string]sessionEntry
	stop    chan struct{}
}

type sessionEntry struct {
	value    interface{}
	deadline time.Time
}

// expired reports whether the entry's idle deadline has passed. A zero
// deadline never expires.
func (e sessionEntry) expired(now time.Time) bool {
	return !e.deadline.IsZero() && now.After(e.deadline)
}

// NewSessionCache creates the registry and starts its sweep loop
func NewSessionCache() *SessionCache {
	c := &SessionCache{
		entries: make(map[string]sessionEntry),
		stop:    make(chan struct{}),
	}
	go c.sweep()
	return c
}

// Get returns the live entry for the key, if any. An expired entry reads as
// absent even before the sweeper reaches it.
func (c *SessionCache) Get(ctx context.Context, key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || entry.expired(time.Now()) {
		return nil, false
	}
	return entry.value, true
}

// Set stores a value with an idle TTL in seconds; ttl <= 0 stores it
// without expiry
func (c *SessionCache) Set(ctx context.Context, key string, value interface{}, ttl int) error {
	entry := sessionEntry{value: value}
	if ttl > 0 {
		entry.deadline = time.Now().Add(time.Duration(ttl) * time.Second)
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}

// Delete evicts the key; evicting an absent key is not an error
func (c *SessionCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Clear drops every entry
func (c *SessionCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]sessionEntry)
	c.mu.Unlock()
	return nil
}

// Stop ends the sweep loop; entries stay readable until expiry
func (c *SessionCache) Stop() {
	close(c.stop)
}

// sweep drops expired entries so abandoned sessions do not accumulate
// between reads
func (c *SessionCache) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for key, entry := range c.entries {
				if entry.expired(now) {
					delete(c.entries, key)
				}
			}
			c.mu.Unlock()
		case <-c.stop:
			return
		}
	}
}

var _ ports.Cache = (*SessionCache)(nil)
