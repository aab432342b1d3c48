package mapbox

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/mine-data-normalizer/internal/domain"
)

// --- mock for cache tests ---

type countingGeocoder struct {
	calls  int
	result domain.Place
	err    error
}

func (m *countingGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (domain.Place, error) {
	m.calls++
	return m.result, m.err
}

// --- CachedGeocoder tests ---

func TestCachedGeocoder_CacheHit(t *testing.T) {
	inner := &countingGeocoder{result: domain.Place{Name: "Malartic", Address: "Malartic, Quebec, Canada"}}
	cached := NewCachedGeocoder(inner, 10, testMetrics())

	r1, err := cached.ReverseGeocode(context.Background(), 48.1234, -78.132)
	require.NoError(t, err)
	r2, err := cached.ReverseGeocode(context.Background(), 48.1234, -78.132)
	require.NoError(t, err)

	assert.Equal(t, r1, r2)
	assert.Equal(t, 1, inner.calls, "should only call inner once")
}

func TestCachedGeocoder_DifferentKeysMiss(t *testing.T) {
	inner := &countingGeocoder{result: domain.Place{Address: "Somewhere"}}
	cached := NewCachedGeocoder(inner, 10, testMetrics())

	_, _ = cached.ReverseGeocode(context.Background(), 48.1234, -78.132)
	_, _ = cached.ReverseGeocode(context.Background(), 52.6996, -76.087)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedGeocoder_EmptyAndErrorsNotCached(t *testing.T) {
	tests := []struct {
		name  string
		inner *countingGeocoder
	}{
		{name: "empty result", inner: &countingGeocoder{}},
		{name: "error", inner: &countingGeocoder{err: errors.New("timeout")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cached := NewCachedGeocoder(tt.inner, 10, testMetrics())

			_, _ = cached.ReverseGeocode(context.Background(), 61.6897, -73.6772)
			_, _ = cached.ReverseGeocode(context.Background(), 61.6897, -73.6772)

			assert.Equal(t, 2, tt.inner.calls)
			assert.Zero(t, cached.cache.len())
		})
	}
}

// --- LRU cache unit tests ---

func TestLRUCache_BasicGetPut(t *testing.T) {
	c := newLRUCache(3)

	c.put("a", domain.Place{Name: "A"})
	c.put("b", domain.Place{Name: "B"})

	result, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A", result.Name)

	_, ok = c.get("missing")
	assert.False(t, ok)
}

func TestLRUCache_Eviction(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", domain.Place{Name: "A"})
	c.put("b", domain.Place{Name: "B"})
	c.put("c", domain.Place{Name: "C"})

	_, ok := c.get("a")
	assert.False(t, ok, "a should have been evicted")
	assert.Equal(t, 2, c.len())

	result, ok := c.get("c")
	assert.True(t, ok)
	assert.Equal(t, "C", result.Name)
}

func TestLRUCache_AccessPromotesEntry(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", domain.Place{Name: "A"})
	c.put("b", domain.Place{Name: "B"})
	c.get("a")
	c.put("c", domain.Place{Name: "C"})

	_, ok := c.get("a")
	assert.True(t, ok, "a was accessed recently, should not be evicted")

	_, ok = c.get("b")
	assert.False(t, ok, "b should have been evicted")
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", domain.Place{Name: "A1"})
	c.put("a", domain.Place{Name: "A2"})

	result, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "A2", result.Name)
	assert.Equal(t, 1, c.len())
}
