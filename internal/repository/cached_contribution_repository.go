package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"blackboxscan/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Compile-time check.
var _ ContributionRepository = (*cachedContributionRepository)(nil)

const (
	cacheKeyPrefix     = "contributions:"
	cacheGenerationKey = cacheKeyPrefix + "generation"
)

// cachedContributionRepository caches listings in Redis. Every Create bumps a
// generation counter that is part of each listing key, so stale listings are
// never read again and simply expire. Redis failures fall through to the
// wrapped repository.
type cachedContributionRepository struct {
	next   ContributionRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedContributionRepository wraps next with a Redis listing cache.
func NewCachedContributionRepository(next ContributionRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) ContributionRepository {
	return &cachedContributionRepository{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger.Named("CachedContributionRepo"),
	}
}

func (r *cachedContributionRepository) Create(ctx context.Context, c *models.Contribution) error {
	if err := r.next.Create(ctx, c); err != nil {
		return err
	}
	if err := r.client.Incr(ctx, cacheGenerationKey).Err(); err != nil {
		r.logger.Warn("Failed to invalidate contribution cache", zap.Error(err))
	}
	return nil
}

func (r *cachedContributionRepository) ListAll(ctx context.Context) ([]models.Contribution, error) {
	return r.cached(ctx, "all", r.next.ListAll)
}

func (r *cachedContributionRepository) ListFiltered(ctx context.Context, types []models.ContributionType, search string) ([]models.Contribution, error) {
	return r.cached(ctx, filterKey(types, search), func(ctx context.Context) ([]models.Contribution, error) {
		return r.next.ListFiltered(ctx, types, search)
	})
}

func (r *cachedContributionRepository) cached(ctx context.Context, suffix string, load func(context.Context) ([]models.Contribution, error)) ([]models.Contribution, error) {
	generation, err := r.client.Get(ctx, cacheGenerationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		r.logger.Warn("Contribution cache unavailable, reading from store", zap.Error(err))
		return load(ctx)
	}
	key := fmt.Sprintf("%sv%d:%s", cacheKeyPrefix, generation, suffix)
	log := r.logger.With(zap.String("key", key))

	payload, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var records []models.Contribution
		if jsonErr := json.Unmarshal(payload, &records); jsonErr == nil {
			log.Debug("Contribution cache hit", zap.Int("count", len(records)))
			return records, nil
		}
		log.Warn("Discarding undecodable cache entry")
	case errors.Is(err, redis.Nil):
		log.Debug("Contribution cache miss")
	default:
		log.Warn("Failed to read contribution cache", zap.Error(err))
	}

	records, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if encoded, err := json.Marshal(records); err == nil {
		if err := r.client.Set(ctx, key, encoded, r.ttl).Err(); err != nil {
			log.Warn("Failed to write contribution cache", zap.Error(err))
		}
	}
	return records, nil
}

func filterKey(types []models.ContributionType, search string) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	sort.Strings(names)
	return "filtered:" + strings.Join(names, ",") + ":" + strings.ToLower(strings.TrimSpace(search))
}
