package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/onepunch-tracker/internal/core/domain"
)

func TestRedisStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Get missing key", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectGet("workouts").RedisNil()

		_, err := NewRedisStore(rdb).Get(ctx, "workouts")
		assert.ErrorIs(t, err, domain.ErrKeyNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Get propagates redis errors", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectGet("workouts").SetErr(errors.New("connection refused"))

		_, err := NewRedisStore(rdb).Get(ctx, "workouts")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrKeyNotFound)
	})

	t.Run("Set, Get and Delete", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		payload := []byte(`[{"date":"2024-01-01","distance":1,"crunches":0,"pushups":0,"squats":0}]`)

		mock.ExpectSet("workouts", payload, 0).SetVal("OK")
		mock.ExpectGet("workouts").SetVal(string(payload))
		mock.ExpectDel("workouts").SetVal(1)

		store := NewRedisStore(rdb)
		require.NoError(t, store.Set(ctx, "workouts", payload))

		got, err := store.Get(ctx, "workouts")
		require.NoError(t, err)
		assert.Equal(t, payload, got)

		require.NoError(t, store.Delete(ctx, "workouts"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Repository upsert writes the whole slot", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectGet("workouts").RedisNil()
		mock.ExpectSet("workouts", []byte(`[{"date":"2024-01-01","distance":1,"crunches":2,"pushups":3,"squats":4}]`), 0).SetVal("OK")

		repo := NewSlotWorkoutRepository(NewRedisStore(rdb), "workouts")
		list, err := repo.Upsert(ctx, domain.Workout{Date: "2024/01/01", Distance: 1, Crunches: 2, Pushups: 3, Squats: 4})
		require.NoError(t, err)
		assert.Len(t, list, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
