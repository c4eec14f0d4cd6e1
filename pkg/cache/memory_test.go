package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	now = now.Add(2 * time.Minute)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryCacheJSONRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	type stats struct {
		Enrollments int64 `json:"enrollments"`
	}
	require.NoError(t, SetJSON(ctx, c, "stats", stats{Enrollments: 3}, time.Minute))

	var out stats
	require.NoError(t, GetJSON(ctx, c, "stats", &out))
	assert.Equal(t, int64(3), out.Enrollments)

	require.NoError(t, c.Delete(ctx, "stats"))
	assert.ErrorIs(t, GetJSON(ctx, c, "stats", &out), ErrMiss)
}

func TestMemoryCacheConcurrentIncrement(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Increment(ctx, "counter")
		}()
	}
	wg.Wait()

	got, err := c.Get(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, "50", got)
}
