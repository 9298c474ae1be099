package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/skylink-gateway/internal/credstore"
	"github.com/spec-kit/skylink-gateway/internal/domain"
	"github.com/spec-kit/skylink-gateway/internal/persistence"
	"github.com/spec-kit/skylink-gateway/internal/upstream"
)

// FlightService proxies flight search and booking to the upstream. Search
// results are soft-cached in Redis for a few seconds; the cache holds the
// upstream's response verbatim and is never treated as inventory.
type FlightService struct {
	upstream *upstream.Client
	creds    credstore.Keyed
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewFlightService builds the service. A nil cache disables caching.
func NewFlightService(client *upstream.Client, creds credstore.Keyed, cache *redis.Client, cacheTTL time.Duration, logger *zap.Logger) *FlightService {
	return &FlightService{
		upstream: client,
		creds:    creds,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Search lists flights for the query, serving from cache when fresh.
func (s *FlightService) Search(ctx context.Context, query domain.FlightQuery) ([]domain.Flight, error) {
	key := persistence.FlightCacheKey(query.Origin, query.Destination)

	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var flights []domain.Flight
			if json.Unmarshal(raw, &flights) == nil {
				return flights, nil
			}
		}
	}

	flights, err := s.upstream.SearchFlights(ctx, query)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(flights); err == nil {
			if err := s.cache.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
				s.logger.Debug("flight cache write failed", zap.Error(err))
			}
		}
	}
	return flights, nil
}

// Book forwards a booking with the session's bearer credential attached.
func (s *FlightService) Book(ctx context.Context, sessionID string, req upstream.BookingRequest) (*domain.Booking, error) {
	credential, err := s.creds.For(sessionID).Load(ctx)
	if err != nil {
		return nil, err
	}
	return s.upstream.BookFlight(ctx, credential, req)
}
