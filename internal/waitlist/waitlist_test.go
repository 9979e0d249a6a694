package waitlist

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sofi-fitness/studio-landing/internal/datastore/mocks"
)

func TestSpotsRemaining(t *testing.T) {
	tests := []struct {
		name  string
		count int
		want  int
	}{
		{"full capacity when empty", 0, 100},
		{"reduced below capacity", 42, 58},
		{"exactly full", 100, 0},
		{"clamps above capacity", 150, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SpotsRemaining(tt.count))
		})
	}
}

func TestSpotsRemainingProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("never negative and never above capacity", prop.ForAll(
		func(count int) bool {
			spots := SpotsRemaining(count)
			return spots >= 0 && spots <= Capacity
		},
		gen.IntRange(0, 10_000),
	))

	properties.Property("count plus spots equals capacity below capacity", prop.ForAll(
		func(count int) bool {
			return count+SpotsRemaining(count) == Capacity
		},
		gen.IntRange(0, Capacity),
	))

	properties.TestingRun(t)
}

func TestStatsWithoutStore(t *testing.T) {
	s := NewService(nil)
	assert.Equal(t, Stats{Count: 0, SpotsRemaining: 100}, s.Stats(context.Background()))

	custom := NewService(nil, WithCapacity(250))
	assert.Equal(t, 250, custom.Stats(context.Background()).SpotsRemaining)
}

func TestStatsFromStore(t *testing.T) {
	store := new(mocks.MockDataStore)
	store.On("CountWaitlistEntries", mock.Anything).Return(int64(37), nil).Once()

	s := NewService(store, WithCountTTL(time.Minute))
	assert.Equal(t, Stats{Count: 37, SpotsRemaining: 63}, s.Stats(context.Background()))
	// Served from cache; the mock would fail on a second call.
	assert.Equal(t, Stats{Count: 37, SpotsRemaining: 63}, s.Stats(context.Background()))
	store.AssertExpectations(t)
}

func TestStatsInvalidate(t *testing.T) {
	store := new(mocks.MockDataStore)
	store.On("CountWaitlistEntries", mock.Anything).Return(int64(1), nil).Once()
	store.On("CountWaitlistEntries", mock.Anything).Return(int64(2), nil).Once()

	s := NewService(store)
	assert.Equal(t, 1, s.Stats(context.Background()).Count)
	s.Invalidate()
	assert.Equal(t, 2, s.Stats(context.Background()).Count)
	store.AssertExpectations(t)
}

func TestStatsStoreErrorFallsBack(t *testing.T) {
	store := new(mocks.MockDataStore)
	store.On("CountWaitlistEntries", mock.Anything).Return(int64(0), stderrors.New("db down"))

	s := NewService(store, WithCountTTL(0))
	assert.Equal(t, Stats{Count: 0, SpotsRemaining: 100}, s.Stats(context.Background()))
	// Errors are not cached.
	s.Stats(context.Background())
	store.AssertNumberOfCalls(t, "CountWaitlistEntries", 2)
}

func TestStatsCollapsesConcurrentMisses(t *testing.T) {
	release := make(chan time.Time)
	store := new(mocks.MockDataStore)
	store.On("CountWaitlistEntries", mock.Anything).
		WaitUntil(release).
		Return(int64(5), nil)

	s := NewService(store, WithCountTTL(time.Minute))

	var wg sync.WaitGroup
	results := make([]Stats, 10)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = s.Stats(context.Background())
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, 5, r.Count)
	}
	calls := len(store.Calls)
	assert.Less(t, calls, len(results), "concurrent misses share one query")
}

func TestGenerateReferralCode(t *testing.T) {
	seen := map[string]bool{}
	for range 200 {
		code, err := GenerateReferralCode()
		require.NoError(t, err)
		assert.Len(t, code, ReferralCodeLength)
		assert.True(t, ValidReferralCode(code), code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 195, "codes should be practically unique")
}

func TestValidReferralCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"ABCD", true},
		{"  abc_-12  ", true},
		{"abc", false},
		{"", false},
		{strings.Repeat("a", 32), true},
		{strings.Repeat("a", 33), false},
		{"bad code", false},
		{"emoji😀x", false},
		{"semi;colon", false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidReferralCode(tt.code))
		})
	}
}
