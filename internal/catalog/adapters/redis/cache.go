package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/partshub/api/internal/catalog/domain"
	"github.com/partshub/api/internal/catalog/ports"
)

const keyPrefix = "catalog:part:"

// CachedRepository is a read-through cache over a PartRepository backed by
// Redis. Single-part reads are served from the cache when possible; every
// write invalidates the affected key. Cache failures are logged and the call
// falls through to the underlying repository.
type CachedRepository struct {
	inner  ports.PartRepository
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedRepository(inner ports.PartRepository, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedRepository {
	return &CachedRepository{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func (r *CachedRepository) Create(ctx context.Context, part domain.Part) error {
	return r.inner.Create(ctx, part)
}

func (r *CachedRepository) GetByID(ctx context.Context, id string) (*domain.Part, error) {
	if part := r.lookup(ctx, id); part != nil {
		return part, nil
	}

	part, err := r.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	r.store(ctx, *part)
	return part, nil
}

func (r *CachedRepository) GetByIDs(ctx context.Context, ids []string) (map[string]domain.Part, error) {
	return r.inner.GetByIDs(ctx, ids)
}

func (r *CachedRepository) List(ctx context.Context, filter ports.ListFilter) ([]domain.Part, error) {
	return r.inner.List(ctx, filter)
}

func (r *CachedRepository) Update(ctx context.Context, part domain.Part) error {
	if err := r.inner.Update(ctx, part); err != nil {
		return err
	}

	r.invalidate(ctx, part.ID)
	return nil
}

func (r *CachedRepository) Delete(ctx context.Context, id string) error {
	if err := r.inner.Delete(ctx, id); err != nil {
		return err
	}

	r.invalidate(ctx, id)
	return nil
}

func (r *CachedRepository) lookup(ctx context.Context, id string) *domain.Part {
	payload, err := r.client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.WarnContext(ctx, "part cache read failed", "part_id", id, "error", err)
		}
		return nil
	}

	var part domain.Part
	if err := json.Unmarshal(payload, &part); err != nil {
		r.logger.WarnContext(ctx, "part cache entry corrupt", "part_id", id, "error", err)
		return nil
	}

	return &part
}

func (r *CachedRepository) store(ctx context.Context, part domain.Part) {
	payload, err := json.Marshal(part)
	if err != nil {
		r.logger.WarnContext(ctx, "part cache encode failed", "part_id", part.ID, "error", err)
		return
	}

	if err := r.client.Set(ctx, key(part.ID), payload, r.ttl).Err(); err != nil {
		r.logger.WarnContext(ctx, "part cache write failed", "part_id", part.ID, "error", err)
	}
}

func (r *CachedRepository) invalidate(ctx context.Context, id string) {
	if err := r.client.Del(ctx, key(id)).Err(); err != nil {
		r.logger.WarnContext(ctx, "part cache invalidation failed", "part_id", id, "error", err)
	}
}

func key(id string) string {
	return fmt.Sprintf("%s%s", keyPrefix, id)
}
