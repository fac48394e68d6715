package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/comitanigiacomo/onepunch-tracker/internal/core/domain"
)

var _ domain.WorkoutRepository = (*SlotWorkoutRepository)(nil)

// SlotWorkoutRepository keeps the whole workout list as one JSON array under a
// single key. Every mutation is a read-modify-write of that key.
type SlotWorkoutRepository struct {
	store domain.KeyValueStore
	key   string

	mu sync.Mutex
}

func NewSlotWorkoutRepository(store domain.KeyValueStore, key string) *SlotWorkoutRepository {
	if key == "" {
		key = domain.DefaultStoreKey
	}
	return &SlotWorkoutRepository{
		store: store,
		key:   key,
	}
}

func (r *SlotWorkoutRepository) Upsert(ctx context.Context, workout domain.Workout) ([]domain.Workout, error) {
	if err := workout.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	workouts, err := r.read(ctx)
	if err != nil {
		return nil, err
	}

	replaced := false
	for i := range workouts {
		if workouts[i].Date == workout.Date {
			workouts[i] = workout
			replaced = true
			break
		}
	}
	if !replaced {
		workouts = append(workouts, workout)
	}

	if err := r.write(ctx, workouts); err != nil {
		return nil, err
	}
	return copyWorkouts(workouts), nil
}

func (r *SlotWorkoutRepository) DeleteByDate(ctx context.Context, date string) ([]domain.Workout, error) {
	date, err := domain.NormalizeDate(date)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	workouts, err := r.read(ctx)
	if err != nil {
		return nil, err
	}

	kept := make([]domain.Workout, 0, len(workouts))
	for _, w := range workouts {
		if w.Date != date {
			kept = append(kept, w)
		}
	}
	if len(kept) == len(workouts) {
		return copyWorkouts(kept), nil
	}

	if err := r.write(ctx, kept); err != nil {
		return nil, err
	}
	return copyWorkouts(kept), nil
}

func (r *SlotWorkoutRepository) ClearAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.Delete(ctx, r.key); err != nil {
		return fmt.Errorf("clear workouts: %w", err)
	}
	return nil
}

func (r *SlotWorkoutRepository) FindByDate(ctx context.Context, date string) (domain.Workout, bool, error) {
	date, err := domain.NormalizeDate(date)
	if err != nil {
		return domain.Workout{}, false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	workouts, err := r.read(ctx)
	if err != nil {
		return domain.Workout{}, false, err
	}

	for _, w := range workouts {
		if w.Date == date {
			return copyWorkout(w), true, nil
		}
	}
	return domain.Workout{}, false, nil
}

func (r *SlotWorkoutRepository) ListAll(ctx context.Context) ([]domain.Workout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	workouts, err := r.read(ctx)
	if err != nil {
		return nil, err
	}
	return copyWorkouts(workouts), nil
}

// read decodes the slot. Legacy dates are normalized while decoding, so two
// entries that only differed by separator collapse into the later one.
func (r *SlotWorkoutRepository) read(ctx context.Context) ([]domain.Workout, error) {
	data, err := r.store.Get(ctx, r.key)
	if errors.Is(err, domain.ErrKeyNotFound) {
		return []domain.Workout{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read workouts: %w", err)
	}
	if len(data) == 0 {
		return []domain.Workout{}, nil
	}

	var decoded []domain.Workout
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageCorrupt, err)
	}

	index := make(map[string]int, len(decoded))
	workouts := make([]domain.Workout, 0, len(decoded))
	for _, w := range decoded {
		if i, ok := index[w.Date]; ok {
			workouts[i] = w
			continue
		}
		index[w.Date] = len(workouts)
		workouts = append(workouts, w)
	}
	return workouts, nil
}

func (r *SlotWorkoutRepository) write(ctx context.Context, workouts []domain.Workout) error {
	data, err := json.Marshal(workouts)
	if err != nil {
		return fmt.Errorf("encode workouts: %w", err)
	}
	if err := r.store.Set(ctx, r.key, data); err != nil {
		return fmt.Errorf("write workouts: %w", err)
	}
	return nil
}

func copyWorkout(w domain.Workout) domain.Workout {
	if w.Weight != nil {
		v := *w.Weight
		w.Weight = &v
	}
	return w
}

func copyWorkouts(workouts []domain.Workout) []domain.Workout {
	out := make([]domain.Workout, len(workouts))
	for i, w := range workouts {
		out[i] = copyWorkout(w)
	}
	return out
}
