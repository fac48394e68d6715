package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/onepunch-tracker/internal/core/domain"
)

var _ domain.WorkoutRepository = (*CachedWorkoutRepository)(nil)

const listCacheTTL = 30 * time.Minute

// CachedWorkoutRepository serves ListAll and FindByDate from redis and drops
// the cached list on every mutation.
type CachedWorkoutRepository struct {
	next  domain.WorkoutRepository
	cache *redis.Client
	key   string
}

func NewCachedWorkoutRepository(next domain.WorkoutRepository, cache *redis.Client, key string) *CachedWorkoutRepository {
	if key == "" {
		key = domain.DefaultStoreKey
	}
	return &CachedWorkoutRepository{
		next:  next,
		cache: cache,
		key:   "cache:" + key,
	}
}

func (r *CachedWorkoutRepository) invalidate(ctx context.Context) {
	if err := r.cache.Del(ctx, r.key).Err(); err != nil {
		logrus.Warnf("[CACHE] Failed to invalidate %s: %v", r.key, err)
	}
}

func (r *CachedWorkoutRepository) ListAll(ctx context.Context) ([]domain.Workout, error) {
	val, err := r.cache.Get(ctx, r.key).Bytes()
	if err == nil {
		var workouts []domain.Workout
		if err := json.Unmarshal(val, &workouts); err == nil {
			return workouts, nil
		}

		logrus.Warnf("[CACHE] Corrupted data under %s, cleaning up key", r.key)
		r.cache.Del(ctx, r.key)
	} else if !errors.Is(err, redis.Nil) {
		logrus.Warnf("[CACHE] Redis read error: %v", err)
	}

	workouts, err := r.next.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	r.store(ctx, workouts)
	return workouts, nil
}

func (r *CachedWorkoutRepository) FindByDate(ctx context.Context, date string) (domain.Workout, bool, error) {
	date, err := domain.NormalizeDate(date)
	if err != nil {
		return domain.Workout{}, false, err
	}

	workouts, err := r.ListAll(ctx)
	if err != nil {
		return domain.Workout{}, false, err
	}
	for _, w := range workouts {
		if w.Date == date {
			return w, true, nil
		}
	}
	return domain.Workout{}, false, nil
}

func (r *CachedWorkoutRepository) Upsert(ctx context.Context, workout domain.Workout) ([]domain.Workout, error) {
	workouts, err := r.next.Upsert(ctx, workout)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx)
	return workouts, nil
}

func (r *CachedWorkoutRepository) DeleteByDate(ctx context.Context, date string) ([]domain.Workout, error) {
	workouts, err := r.next.DeleteByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx)
	return workouts, nil
}

func (r *CachedWorkoutRepository) ClearAll(ctx context.Context) error {
	if err := r.next.ClearAll(ctx); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *CachedWorkoutRepository) store(ctx context.Context, workouts []domain.Workout) {
	data, err := json.Marshal(workouts)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, r.key, data, listCacheTTL).Err(); err != nil {
		logrus.Warnf("[CACHE] Redis set error: %v", err)
	}
}
