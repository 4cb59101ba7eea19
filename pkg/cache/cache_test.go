package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryCache_BasicOperations(t *testing.T) {
	c := NewInMemoryCache[string](10 * time.Millisecond)
	defer c.Stop()

	c.Set("key1", "value1", time.Second)
	value, found := c.Get("key1")
	assert.True(t, found)
	assert.Equal(t, "value1", value)

	value, found = c.Get("nonexistent")
	assert.False(t, found)
	assert.Equal(t, "", value)
}

func TestInMemoryCache_Expiration(t *testing.T) {
	c := NewInMemoryCache[string](time.Hour)
	defer c.Stop()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("expire", "value", 50*time.Millisecond)
	_, found := c.Get("expire")
	assert.True(t, found)

	now = now.Add(60 * time.Millisecond)
	_, found = c.Get("expire")
	assert.False(t, found)

	// Expired entries stay counted until cleanup runs
	assert.Equal(t, 1, c.Size())
	c.cleanup()
	assert.Equal(t, 0, c.Size())
}

func TestInMemoryCache_Cleanup(t *testing.T) {
	c := NewInMemoryCache[int](10 * time.Millisecond)
	defer c.Stop()

	c.Set("short", 1, 20*time.Millisecond)
	c.Set("long", 2, time.Hour)

	assert.Eventually(t, func() bool { return c.Size() == 1 }, time.Second, 10*time.Millisecond)
	_, found := c.Get("long")
	assert.True(t, found)
}

func TestInMemoryCache_DeleteAndClear(t *testing.T) {
	c := NewInMemoryCache[string](time.Hour)
	defer c.Stop()

	c.Set("a", "1", time.Second)
	c.Set("b", "2", time.Second)

	c.Delete("a")
	_, found := c.Get("a")
	assert.False(t, found)
	assert.Equal(t, 1, c.Size())

	c.Clear()
	assert.Equal(t, 0, c.Size())
}

func TestInMemoryCache_DeletePrefix(t *testing.T) {
	c := NewInMemoryCache[string](time.Hour)
	defer c.Stop()

	c.Set("doc1:mjml", "m", time.Second)
	c.Set("doc1:html", "h", time.Second)
	c.Set("doc10:html", "h", time.Second)
	c.Set("doc2:html", "h", time.Second)

	assert.Equal(t, 2, c.DeletePrefix("doc1:"))
	assert.Equal(t, 2, c.Size())
	_, found := c.Get("doc10:html")
	assert.True(t, found)
	assert.Equal(t, 0, c.DeletePrefix("missing:"))
}

func TestInMemoryCache_GetOrSet(t *testing.T) {
	c := NewInMemoryCache[string](time.Hour)
	defer c.Stop()

	calls := 0
	compute := func() (string, error) {
		calls++
		return "computed", nil
	}

	value, err := c.GetOrSet("key", time.Second, compute)
	require.NoError(t, err)
	assert.Equal(t, "computed", value)

	value, err = c.GetOrSet("key", time.Second, compute)
	require.NoError(t, err)
	assert.Equal(t, "computed", value)
	assert.Equal(t, 1, calls)
}

func TestInMemoryCache_GetOrSet_ComputeError(t *testing.T) {
	c := NewInMemoryCache[string](time.Hour)
	defer c.Stop()

	expected := errors.New("compute failed")
	value, err := c.GetOrSet("key", time.Second, func() (string, error) {
		return "", expected
	})
	assert.ErrorIs(t, err, expected)
	assert.Equal(t, "", value)
	assert.Equal(t, 0, c.Size())
}

func TestInMemoryCache_GetOrSet_Concurrent(t *testing.T) {
	c := NewInMemoryCache[int](time.Hour)
	defer c.Stop()

	var calls int32
	release := make(chan struct{})
	compute := func() (int, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return 42, nil
	}

	const goroutines = 20
	var wg sync.WaitGroup
	results := make(chan int, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.GetOrSet("shared", time.Second, compute)
			assert.NoError(t, err)
			results <- v
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	for v := range results {
		assert.Equal(t, 42, v)
	}
	assert.LessOrEqual(t, atomic.LoadInt32(&calls), int32(goroutines))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(1))
}

func TestInMemoryCache_ConcurrentAccess(t *testing.T) {
	c := NewInMemoryCache[int](time.Millisecond)
	defer c.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Set("k", n, time.Second)
				c.Get("k")
				c.DeletePrefix("x")
			}
		}(i)
	}
	wg.Wait()

	_, found := c.Get("k")
	assert.True(t, found)
}

func TestInMemoryCache_StopTwice(t *testing.T) {
	c := NewInMemoryCache[string](time.Millisecond)
	c.Stop()
	assert.NotPanics(t, c.Stop)
}

func BenchmarkInMemoryCache_GetOrSet(b *testing.B) {
	c := NewInMemoryCache[string](time.Minute)
	defer c.Stop()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = c.GetOrSet("key", time.Minute, func() (string, error) {
			return "value", nil
		})
	}
}
