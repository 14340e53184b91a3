package blacklist

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_AddContainsRemove(t *testing.T) {
	t.Parallel()

	m := NewMemory(time.Hour)
	defer m.Close()
	ctx := context.Background()

	require.NoError(t, m.Add(ctx, "tok-1", time.Minute))

	ok, err := m.Contains(ctx, "tok-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.Contains(ctx, "tok-2")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Remove(ctx, "tok-1"))
	ok, _ = m.Contains(ctx, "tok-1")
	assert.False(t, ok)
}

func TestMemory_ExpiredEntriesReportAbsent(t *testing.T) {
	t.Parallel()

	m := NewMemory(time.Hour)
	defer m.Close()
	ctx := context.Background()

	now := time.Now().UTC()
	m.Now = func() time.Time { return now }
	require.NoError(t, m.Add(ctx, "tok", time.Minute))

	m.Now = func() time.Time { return now.Add(2 * time.Minute) }
	ok, err := m.Contains(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemory_EvictDropsExpiredOnly(t *testing.T) {
	t.Parallel()

	m := NewMemory(time.Hour)
	defer m.Close()
	ctx := context.Background()

	now := time.Now().UTC()
	m.Now = func() time.Time { return now }
	require.NoError(t, m.Add(ctx, "short", time.Minute))
	require.NoError(t, m.Add(ctx, "long", time.Hour))

	m.Now = func() time.Time { return now.Add(10 * time.Minute) }
	m.Evict()

	assert.Equal(t, 1, m.Len())
	ok, _ := m.Contains(ctx, "long")
	assert.True(t, ok)
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	m := NewMemory(time.Millisecond)
	defer m.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tok := string(rune('a'+n)) + "-tok"
				_ = m.Add(ctx, tok, time.Microsecond)
				_, _ = m.Contains(ctx, tok)
				_ = m.Remove(ctx, tok)
			}
		}(i)
	}
	wg.Wait()
}

func TestMemory_CloseIsIdempotent(t *testing.T) {
	t.Parallel()

	m := NewMemory(time.Millisecond)
	m.Close()
	m.Close()
}
