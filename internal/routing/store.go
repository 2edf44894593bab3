// Package routing loads and caches the category-to-collection routing table.
package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alexanderramin/tasksync/internal/domain"
	"github.com/alexanderramin/tasksync/internal/retry"
	"github.com/rs/zerolog"
)

const (
	// CacheKey is the cache entry holding the encoded routing table.
	CacheKey = "databaseConfig"

	// DefaultTTL is how long a fetched routing table is reused.
	DefaultTTL = 6 * time.Hour
)

// Store serves the routing table from cache, falling back to its Source.
type Store struct {
	source Source
	cache  Cache
	ttl    time.Duration
	policy retry.Policy
	logger *zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithRetryPolicy(p retry.Policy) Option {
	return func(s *Store) { s.policy = p }
}

func WithLogger(l *zerolog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// NewStore creates a Store. A nil cache disables caching.
func NewStore(source Source, cache Cache, opts ...Option) *Store {
	nop := zerolog.Nop()
	s := &Store{
		source: source,
		cache:  cache,
		ttl:    DefaultTTL,
		policy: retry.DefaultPolicy(),
		logger: &nop,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.policy.Logger == nil {
		s.policy.Logger = s.logger
	}
	return s
}

// RoutingTable returns the cached table or fetches a fresh one.
func (s *Store) RoutingTable(ctx context.Context) (domain.RoutingTable, error) {
	if table, ok := s.cached(ctx); ok {
		return table, nil
	}
	return s.Refresh(ctx)
}

// Load returns the routing table after checking every required entry is set.
// Cached entries are checked too.
func (s *Store) Load(ctx context.Context) (domain.RoutingTable, error) {
	table, err := s.RoutingTable(ctx)
	if err != nil {
		return domain.RoutingTable{}, err
	}
	if err := table.Validate(); err != nil {
		return domain.RoutingTable{}, err
	}
	return table, nil
}

// Refresh fetches the table from the source and replaces the cached copy.
// A table that fails validation is returned as an error and never cached.
func (s *Store) Refresh(ctx context.Context) (domain.RoutingTable, error) {
	table, err := retry.DoValue(ctx, s.policy, "fetch routing table", s.source.FetchRoutingTable)
	if err != nil {
		return domain.RoutingTable{}, fmt.Errorf("loading routing table: %w", err)
	}
	if err := table.Validate(); err != nil {
		return domain.RoutingTable{}, err
	}
	s.store(ctx, table)
	return table, nil
}

func (s *Store) cached(ctx context.Context) (domain.RoutingTable, bool) {
	if s.cache == nil {
		return domain.RoutingTable{}, false
	}
	data, ok, err := s.cache.Get(ctx, CacheKey)
	if err != nil {
		s.logger.Warn().Err(err).Msg("routing cache read failed")
		return domain.RoutingTable{}, false
	}
	if !ok {
		return domain.RoutingTable{}, false
	}

	var table domain.RoutingTable
	if err := json.Unmarshal(data, &table); err != nil {
		s.logger.Warn().Err(err).Msg("discarding corrupt routing cache entry")
		return domain.RoutingTable{}, false
	}
	s.logger.Debug().Msg("routing table served from cache")
	return table, true
}

func (s *Store) store(ctx context.Context, table domain.RoutingTable) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(table)
	if err != nil {
		s.logger.Warn().Err(err).Msg("encoding routing table for cache")
		return
	}
	if err := s.cache.Set(ctx, CacheKey, data, s.ttl); err != nil {
		s.logger.Warn().Err(err).Msg("routing cache write failed")
	}
}
