package ratelimit

import (
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestLimiter returns a limiter on a controllable clock with no cleanup goroutine.
func newTestLimiter(cfg *Config) (*Limiter, *time.Time) {
	cfg.CleanupInterval = 0
	l := NewLimiter(cfg)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestLimiter_Allow(t *testing.T) {
	l, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer l.Stop()

	for i := 0; i < 10; i++ {
		allowed, info := l.Allow("127.0.0.1", "/cache", http.MethodGet)
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 10-i-1, info.Remaining)
	}

	allowed, info := l.Allow("127.0.0.1", "/cache", http.MethodGet)
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.InDelta(t, 6*time.Second, info.RetryAfter, float64(10*time.Millisecond))
	assert.True(t, info.ResetTime.After(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)))
}

func TestLimiter_Refill(t *testing.T) {
	l, now := newTestLimiter(&Config{Enabled: true, DefaultLimit: 60, DefaultWindow: time.Minute})
	defer l.Stop()

	for i := 0; i < 60; i++ {
		l.Allow("c", "/x", http.MethodGet)
	}
	allowed, _ := l.Allow("c", "/x", http.MethodGet)
	require.False(t, allowed)

	*now = now.Add(1100 * time.Millisecond)
	allowed, _ = l.Allow("c", "/x", http.MethodGet)
	assert.True(t, allowed, "one token refills per second")

	allowed, _ = l.Allow("c", "/x", http.MethodGet)
	assert.False(t, allowed)
}

func TestLimiter_WhitelistAndBlacklist(t *testing.T) {
	l, _ := newTestLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Hour,
		Whitelist:     map[string]bool{"10.0.0.1": true},
		Blacklist:     map[string]bool{"10.0.0.2": true},
	})
	defer l.Stop()

	for i := 0; i < 5; i++ {
		allowed, _ := l.Allow("10.0.0.1", "/cache", http.MethodGet)
		assert.True(t, allowed)
	}

	allowed, _ := l.Allow("10.0.0.2", "/cache", http.MethodGet)
	assert.False(t, allowed)
}

func TestLimiter_Disabled(t *testing.T) {
	l := NewLimiter(&Config{Enabled: false})
	defer l.Stop()

	for i := 0; i < 100; i++ {
		allowed, _ := l.Allow("c", "/package", http.MethodPost)
		require.True(t, allowed)
	}
	assert.Equal(t, 0, l.Size())
}

func TestLimiter_EndpointSpecific(t *testing.T) {
	cfg := DefaultConfig()
	l, _ := newTestLimiter(cfg)
	defer l.Stop()

	for i := 0; i < 3; i++ {
		allowed, info := l.Allow("c", "/package", http.MethodPost)
		require.True(t, allowed)
		assert.Equal(t, 30, info.Limit)
	}
	allowed, _ := l.Allow("c", "/package", http.MethodPost)
	assert.False(t, allowed, "burst of 3 exhausted")

	allowed, info := l.Allow("c", "/cache/1234", http.MethodGet)
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit, "reads use the default limit")

	allowed, info = l.Allow("c", "/health", http.MethodGet)
	assert.True(t, allowed)
	assert.Equal(t, 0, info.Limit)
}

func TestLimiter_BucketPerMatchedRule(t *testing.T) {
	l, _ := newTestLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  2,
		DefaultWindow: time.Hour,
		EndpointConfigs: []EndpointConfig{
			{Path: "/cache/", Method: http.MethodDelete, Limit: 2, Window: time.Hour, Burst: 2},
		},
	})
	defer l.Stop()

	// Varying the PIN must not mint fresh buckets.
	for pin := 1; pin <= 2; pin++ {
		allowed, _ := l.Allow("c", fmt.Sprintf("/cache/%d", pin), http.MethodDelete)
		require.True(t, allowed)
	}
	allowed, _ := l.Allow("c", "/cache/3", http.MethodDelete)
	assert.False(t, allowed, "every /cache/{pin} delete draws from one bucket")

	// Unmatched paths share the client's default bucket.
	for _, path := range []string{"/a", "/b"} {
		allowed, _ := l.Allow("c", path, http.MethodGet)
		require.True(t, allowed)
	}
	allowed, _ = l.Allow("c", "/c", http.MethodGet)
	assert.False(t, allowed)

	assert.Equal(t, 2, l.Size())
}

func TestLimiter_SeparateClients(t *testing.T) {
	l, _ := newTestLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Hour})
	defer l.Stop()

	allowed, _ := l.Allow("a", "/x", http.MethodGet)
	assert.True(t, allowed)
	allowed, _ = l.Allow("b", "/x", http.MethodGet)
	assert.True(t, allowed)
	allowed, _ = l.Allow("a", "/x", http.MethodGet)
	assert.False(t, allowed)
}

func TestLimiter_Concurrent(t *testing.T) {
	l := NewLimiter(&Config{Enabled: true, DefaultLimit: 100, DefaultWindow: time.Hour})
	defer l.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("c", "/x", http.MethodGet); ok {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, allowedCount)
}

func TestLimiter_Cleanup(t *testing.T) {
	l, now := newTestLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute, IdleTTL: time.Hour})
	defer l.Stop()

	for i := 0; i < 5; i++ {
		l.Allow(fmt.Sprintf("client-%d", i), "/x", http.MethodGet)
	}
	require.Equal(t, 5, l.Size())

	*now = now.Add(30 * time.Minute)
	l.Allow("client-0", "/x", http.MethodGet)

	*now = now.Add(45 * time.Minute)
	l.cleanupBuckets()
	assert.Equal(t, 1, l.Size(), "only the recently used bucket survives")
}

func TestLimiter_StopTwice(t *testing.T) {
	l := NewLimiter(nil)
	l.Stop()
	assert.NotPanics(t, l.Stop)
}

func TestMatchEndpoint(t *testing.T) {
	configs := []EndpointConfig{
		{Path: "/cache", Method: http.MethodDelete, Limit: 1},
		{Path: "/cache/", Method: http.MethodDelete, Limit: 2},
	}

	assert.Equal(t, 1, MatchEndpoint("/cache", http.MethodDelete, configs).Limit)
	assert.Equal(t, 2, MatchEndpoint("/cache/42", http.MethodDelete, configs).Limit)
	assert.Nil(t, MatchEndpoint("/cache/42", http.MethodGet, configs))
	assert.Equal(t, 0, MatchEndpoint("/health", http.MethodGet, configs).Limit)
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "50")
	t.Setenv("RATE_LIMIT_DEFAULT_WINDOW", "30s")
	t.Setenv("RATE_LIMIT_WHITELIST", "127.0.0.1, 10.0.0.1")
	t.Setenv("RATE_LIMIT_GENERATION_LIMIT", "5")

	cfg := LoadConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 50, cfg.DefaultLimit)
	assert.Equal(t, 30*time.Second, cfg.DefaultWindow)
	assert.True(t, cfg.Whitelist["127.0.0.1"])
	assert.True(t, cfg.Whitelist["10.0.0.1"])
	assert.Equal(t, 5, MatchEndpoint("/package", http.MethodPost, cfg.EndpointConfigs).Limit)
}

func TestLoadConfig_Disabled(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	assert.False(t, LoadConfig().Enabled)
}
