package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"training-enrollment-platform/internal/domain/model"
	"training-enrollment-platform/internal/domain/ports/repository"
	red "training-enrollment-platform/internal/infra/redis"
)

var _ repository.ProgramRepository = (*programRepoCacheDecorator)(nil)

// programRepoCacheDecorator adds a redis read-through cache in front of the
// program repository. Programs are read on every payment initialization but
// change rarely; writes invalidate.
type programRepoCacheDecorator struct {
	inner repository.ProgramRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewProgramRepoCacheDecorator(inner repository.ProgramRepository, cache red.RedisClient, ttl time.Duration) repository.ProgramRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &programRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl}
}

func programKey(id string) string { return fmt.Sprintf("program:%s", id) }

func (d *programRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Program, error) {
	// Bypass the cache inside a transaction; callers there expect row-level
	// consistency (e.g. the enrolled counter).
	if tx != nil {
		return d.inner.FindByID(ctx, tx, id)
	}

	val, cacheErr := d.cache.Get(ctx, programKey(id))
	if cacheErr == nil {
		var p model.Program
		if json.Unmarshal([]byte(val), &p) == nil {
			return &p, nil
		}
	}

	p, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	// Backfill on a true miss (or a corrupt hit); a degraded redis gets no
	// writes.
	if cacheErr == nil || red.IsNil(cacheErr) {
		if b, err := json.Marshal(p); err == nil {
			_ = d.cache.Set(ctx, programKey(id), b, d.ttl)
		}
	}
	return p, nil
}

func (d *programRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, p *model.Program) error {
	_ = d.cache.Del(ctx, programKey(p.ID))
	return d.inner.Save(ctx, tx, p)
}

func (d *programRepoCacheDecorator) IncrementEnrolled(ctx context.Context, tx repository.Tx, id string) error {
	_ = d.cache.Del(ctx, programKey(id))
	return d.inner.IncrementEnrolled(ctx, tx, id)
}
