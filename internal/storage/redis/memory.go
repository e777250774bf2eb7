package redis

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

// Memory is an in-process Store implementation with a controllable clock.
// It backs unit tests for the action state machine, where simulating TTL
// expiry must not require sleeping. The clock is frozen at creation and only
// moves via Advance, so TTL queries are fully deterministic. All methods are
// safe for concurrent use.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	sets    map[string]map[string]bool
	base    time.Time
	offset  time.Duration
}

var _ Store = (*Memory)(nil)

// NewMemory creates an empty in-memory store with a frozen clock.
func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		sets:    make(map[string]map[string]bool),
		base:    time.Now(),
	}
}

// Advance shifts the store's clock forward by d, expiring any keys whose
// TTL elapses. Test-only affordance; the real store's clock is the server's.
//
// Precondition: d must be >= 0.
func (m *Memory) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offset += d
}

func (m *Memory) clock() time.Time {
	return m.base.Add(m.offset)
}

// Set writes key=value with the given expiry.
func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expiresAt = m.clock().Add(ttl)
	}
	m.entries[key] = e
	return nil
}

// Get returns the value for key, or ("", false) when absent or expired.
func (m *Memory) Get(_ context.Context, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return "", false
	}
	if !e.expiresAt.IsZero() && !m.clock().Before(e.expiresAt) {
		delete(m.entries, key)
		return "", false
	}
	return e.value, true
}

// TTL returns the remaining lifetime of key, negative when absent, expired,
// or persistent.
func (m *Memory) TTL(_ context.Context, key string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return -2
	}
	if e.expiresAt.IsZero() {
		return -1
	}
	remaining := e.expiresAt.Sub(m.clock())
	if remaining <= 0 {
		delete(m.entries, key)
		return -2
	}
	return remaining
}

// Delete removes the given keys.
func (m *Memory) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}

// SAdd adds members to a set.
func (m *Memory) SAdd(_ context.Context, set string, members ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sets[set] == nil {
		m.sets[set] = make(map[string]bool)
	}
	for _, mem := range members {
		m.sets[set][mem] = true
	}
	return nil
}

// SRem removes members from a set.
func (m *Memory) SRem(_ context.Context, set string, members ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mem := range members {
		delete(m.sets[set], mem)
	}
	return nil
}

// SMembers returns all members of a set.
func (m *Memory) SMembers(_ context.Context, set string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	members := make([]string, 0, len(m.sets[set]))
	for mem := range m.sets[set] {
		members = append(members, mem)
	}
	return members
}
