package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"
)

const defaultMemoryTTL = 24 * time.Hour

// MemoryCache is a process-local Client used when Redis is not configured.
type MemoryCache struct {
	mu    sync.Mutex
	store map[string]memoryItem
	now   func() time.Time
}

type memoryItem struct {
	value     string
	expiresAt time.Time
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		store: make(map[string]memoryItem),
		now:   time.Now,
	}
}

// Get retrieves a value; expired entries are evicted lazily.
func (m *MemoryCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.store[key]
	if !ok {
		return "", ErrMiss
	}
	if m.now().After(item.expiresAt) {
		delete(m.store, key)
		return "", ErrMiss
	}
	return item.value, nil
}

// Set stores a value. Non-string values are JSON encoded.
func (m *MemoryCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	var encoded string
	switch v := value.(type) {
	case string:
		encoded = v
	case []byte:
		encoded = string(v)
	case int, int64:
		encoded = fmt.Sprint(v)
	default:
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to marshal value: %w", err)
		}
		encoded = string(data)
	}

	if expiration <= 0 {
		expiration = defaultMemoryTTL
	}

	m.mu.Lock()
	m.store[key] = memoryItem{value: encoded, expiresAt: m.now().Add(expiration)}
	m.mu.Unlock()
	return nil
}

// Delete removes keys.
func (m *MemoryCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, key := range keys {
		delete(m.store, key)
	}
	m.mu.Unlock()
	return nil
}

// Increment bumps a counter, starting from zero for absent keys.
func (m *MemoryCache) Increment(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var current int64
	item, ok := m.store[key]
	if ok && !m.now().After(item.expiresAt) {
		parsed, err := strconv.ParseInt(item.value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("value at %q is not an integer", key)
		}
		current = parsed
	} else {
		item.expiresAt = m.now().Add(defaultMemoryTTL)
	}

	current++
	item.value = strconv.FormatInt(current, 10)
	m.store[key] = item
	return current, nil
}

// Ping always succeeds.
func (m *MemoryCache) Ping(context.Context) error { return nil }

// Close drops all entries.
func (m *MemoryCache) Close() error {
	m.mu.Lock()
	m.store = make(map[string]memoryItem)
	m.mu.Unlock()
	return nil
}
