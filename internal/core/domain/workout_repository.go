package domain

import (
	"context"
	"errors"
)

var (
	ErrStorageCorrupt = errors.New("stored workout data is corrupt")
	ErrKeyNotFound    = errors.New("key not found")
)

// DefaultStoreKey is the slot holding the serialized workout list.
const DefaultStoreKey = "workouts"

type WorkoutRepository interface {
	// Upsert replaces the record sharing the workout's date, or appends it.
	// It returns the full list as persisted.
	Upsert(ctx context.Context, workout Workout) ([]Workout, error)

	// DeleteByDate removes the record for date and returns the remaining list.
	// Missing dates are not an error.
	DeleteByDate(ctx context.Context, date string) ([]Workout, error)

	// ClearAll erases every record.
	ClearAll(ctx context.Context) error

	// FindByDate reports found=false when no record exists for date.
	FindByDate(ctx context.Context, date string) (Workout, bool, error)

	// ListAll returns a fresh copy of every record, in no particular order.
	ListAll(ctx context.Context) ([]Workout, error)
}

// KeyValueStore is the durable slot the workout repository writes through.
type KeyValueStore interface {
	// Get returns ErrKeyNotFound when nothing is stored under key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set must replace the value atomically: readers see the old or the new value, never a mix.
	Set(ctx context.Context, key string, value []byte) error

	Delete(ctx context.Context, key string) error
}
