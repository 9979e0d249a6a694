// Package waitlist computes waitlist statistics and manages referral codes.
package waitlist

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/sofi-fitness/studio-landing/internal/datastore"
	"github.com/sofi-fitness/studio-landing/internal/logger"
)

// Capacity is the number of founding-member spots.
const Capacity = 100

// DefaultCountTTL is how long a waitlist count is served from cache.
const DefaultCountTTL = 30 * time.Second

const countCacheKey = "waitlist:count"

// CountCacheControl is the Cache-Control value of the public count endpoint.
const CountCacheControl = "public, s-maxage=60, stale-while-revalidate=120"

// Stats is the public waitlist summary.
type Stats struct {
	Count          int `json:"count"`
	SpotsRemaining int `json:"spots_remaining"`
}

// SpotsRemaining returns the free founding spots for count signups, never negative.
func SpotsRemaining(count int) int {
	return spotsRemaining(Capacity, count)
}

func spotsRemaining(capacity, count int) int {
	return max(capacity-count, 0)
}

// Service serves waitlist stats from the store with a short-lived cache.
type Service struct {
	store    datastore.Interface
	capacity int
	ttl      time.Duration
	log      logger.Logger

	cache *cache.Cache
	group singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithCapacity overrides the founding-member capacity.
func WithCapacity(capacity int) Option {
	return func(s *Service) {
		if capacity > 0 {
			s.capacity = capacity
		}
	}
}

// WithCountTTL sets the count cache lifetime; zero or less disables caching.
func WithCountTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService creates a stats service. store may be nil when no database is configured.
func NewService(store datastore.Interface, opts ...Option) *Service {
	s := &Service{
		store:    store,
		capacity: Capacity,
		ttl:      DefaultCountTTL,
		log:      logger.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.Module("waitlist")
	if s.ttl > 0 {
		s.cache = cache.New(s.ttl, 2*s.ttl)
	}
	return s
}

// Capacity returns the configured founding-member capacity.
func (s *Service) Capacity() int {
	return s.capacity
}

// SpotsRemaining returns the free spots for count signups.
func (s *Service) SpotsRemaining(count int) int {
	return spotsRemaining(s.capacity, count)
}

// Stats returns the current count and remaining spots. Store failures are
// logged and reported as an empty waitlist so pages keep rendering.
func (s *Service) Stats(ctx context.Context) Stats {
	empty := Stats{Count: 0, SpotsRemaining: s.capacity}
	if s.store == nil {
		return empty
	}

	if s.cache != nil {
		if cached, ok := s.cache.Get(countCacheKey); ok {
			if count, ok := cached.(int); ok {
				return Stats{Count: count, SpotsRemaining: s.SpotsRemaining(count)}
			}
		}
	}

	v, err, shared := s.group.Do(countCacheKey, func() (any, error) {
		n, err := s.store.CountWaitlistEntries(context.WithoutCancel(ctx))
		if err != nil {
			return 0, err
		}
		count := int(n)
		if s.cache != nil {
			s.cache.Set(countCacheKey, count, cache.DefaultExpiration)
		}
		return count, nil
	})
	if err != nil {
		s.log.WithContext(ctx).Warn("waitlist count failed, reporting empty waitlist",
			logger.Error(err),
			logger.Bool("shared", shared))
		return empty
	}

	count := v.(int)
	return Stats{Count: count, SpotsRemaining: s.SpotsRemaining(count)}
}

// Invalidate drops the cached count, e.g. after a new signup.
func (s *Service) Invalidate() {
	if s.cache != nil {
		s.cache.Delete(countCacheKey)
	}
}

