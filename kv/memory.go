package kv

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-process substrate backed by a map.
type Memory struct {
	mu          sync.RWMutex
	slots       map[string]string
	quota       int
	unavailable bool
}

// MemoryOption configures a Memory substrate.
type MemoryOption func(*Memory)

// WithQuota limits the total size in bytes of all keys and values.
// Zero means unlimited.
func WithQuota(bytes int) MemoryOption {
	return func(m *Memory) {
		m.quota = bytes
	}
}

// NewMemory creates an empty in-memory substrate.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{slots: make(map[string]string)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetAvailable toggles availability, simulating storage being disabled mid-session.
func (m *Memory) SetAvailable(available bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unavailable = !available
}

// Available implements Substrate.
func (m *Memory) Available(_ context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.unavailable {
		return ErrUnavailable
	}
	return nil
}

// Get implements Substrate.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.unavailable {
		return "", false, ErrUnavailable
	}
	v, ok := m.slots[key]
	return v, ok, nil
}

// Set implements Substrate.
func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unavailable {
		return ErrUnavailable
	}
	if m.quota > 0 {
		used := m.usedLocked()
		if old, ok := m.slots[key]; ok {
			used -= len(key) + len(old)
		}
		if used+len(key)+len(value) > m.quota {
			return fmt.Errorf("set %q: %w", key, ErrQuotaExceeded)
		}
	}
	m.slots[key] = value
	return nil
}

// Remove implements Substrate.
func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.unavailable {
		return ErrUnavailable
	}
	delete(m.slots, key)
	return nil
}

// Keys returns the number of slots held.
func (m *Memory) Keys() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.slots)
}

func (m *Memory) usedLocked() int {
	n := 0
	for k, v := range m.slots {
		n += len(k) + len(v)
	}
	return n
}
