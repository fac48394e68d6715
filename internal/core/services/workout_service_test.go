package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/onepunch-tracker/internal/core/domain"
	"github.com/comitanigiacomo/onepunch-tracker/internal/core/services"
	"github.com/comitanigiacomo/onepunch-tracker/internal/metrics"
)

func TestWorkoutService_Submit(t *testing.T) {
	ctx := context.Background()
	stored := []domain.Workout{
		{Date: "2024-01-01", Distance: 1},
		{Date: "2024-01-03", Distance: 3},
		{Date: "2024-01-02", Distance: 2},
	}

	t.Run("Success: normal form upserts and returns history newest first", func(t *testing.T) {
		repo := new(MockWorkoutRepo)
		m := metrics.NewTestManager()
		svc := services.NewWorkoutService(repo, time.UTC, m)

		repo.On("Upsert", ctx, mock.MatchedBy(func(w domain.Workout) bool {
			return w.Date == "2024-01-03" && w.Distance == 3 && w.Crunches == 30
		})).Return(stored, nil).Once()

		res, err := svc.SubmitForm(ctx, domain.WorkoutForm{
			Date: "2024/01/03", Distance: "3", Crunches: "30", Pushups: "30", Squats: "30", Weight: "70",
		})
		require.NoError(t, err)

		assert.Equal(t, services.ActionUpsert, res.Action)
		assert.Equal(t, "2024-01-03", res.Date)
		require.Len(t, res.Workouts, 3)
		assert.Equal(t, "2024-01-03", res.Workouts[0].Date)
		assert.Equal(t, "2024-01-01", res.Workouts[2].Date)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterSubmissions.WithLabelValues("upsert")))
		assert.Equal(t, 3.0, testutil.ToFloat64(m.GaugeWorkouts))
		repo.AssertExpectations(t)
	})

	t.Run("Single sentinel deletes only that date", func(t *testing.T) {
		repo := new(MockWorkoutRepo)
		svc := services.NewWorkoutService(repo, time.UTC, nil)

		repo.On("DeleteByDate", ctx, "2024-01-02").Return(stored[:2], nil).Once()

		res, err := svc.SubmitForm(ctx, domain.WorkoutForm{
			Date: "2024-01-02", Distance: "-1", Crunches: "40", Pushups: "40", Squats: "40",
		})
		require.NoError(t, err)
		assert.Equal(t, services.ActionDelete, res.Action)
		repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
		repo.AssertExpectations(t)
	})

	t.Run("Multiple sentinels clear the store", func(t *testing.T) {
		repo := new(MockWorkoutRepo)
		svc := services.NewWorkoutService(repo, time.UTC, nil)

		repo.On("ClearAll", ctx).Return(nil).Once()

		res, err := svc.SubmitForm(ctx, domain.WorkoutForm{
			Date: "2024-01-02", Distance: "4", Crunches: "-1", Pushups: "-1", Squats: "40",
		})
		require.NoError(t, err)
		assert.Equal(t, services.ActionClear, res.Action)
		assert.NotNil(t, res.Workouts)
		assert.Empty(t, res.Workouts)
		repo.AssertExpectations(t)
	})

	t.Run("Saved write is reported even when the store cannot be read back", func(t *testing.T) {
		repo := new(MockWorkoutRepo)
		svc := services.NewWorkoutService(repo, time.UTC, nil)

		saved := []domain.Workout{{Date: "2024-01-01"}, {Date: "2024-01-04", Distance: 2}}
		repo.On("Upsert", ctx, mock.Anything).Return(saved, nil).Once()
		repo.On("ListAll", ctx).Return(nil, errors.New("read workouts: connection reset")).Maybe()

		res, err := svc.Submit(ctx, domain.UpsertCommand{Workout: domain.Workout{Date: "2024-01-04", Distance: 2}})
		require.NoError(t, err)
		require.Len(t, res.Workouts, 2)
		assert.Equal(t, "2024-01-04", res.Workouts[0].Date)
		assert.Equal(t, "2024-01-01", saved[0].Date, "the repository's slice is not reordered")
		repo.AssertNotCalled(t, "ListAll", mock.Anything)
	})

	t.Run("Fail: invalid form never reaches the store", func(t *testing.T) {
		repo := new(MockWorkoutRepo)
		svc := services.NewWorkoutService(repo, time.UTC, nil)

		_, err := svc.SubmitForm(ctx, domain.WorkoutForm{Date: "2024-01-02", Distance: "x"})
		assert.ErrorIs(t, err, domain.ErrInvalidWorkout)
		repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("Fail: persistence error surfaces to the caller", func(t *testing.T) {
		repo := new(MockWorkoutRepo)
		svc := services.NewWorkoutService(repo, time.UTC, nil)
		dbErr := errors.New("write workouts: disk full")

		repo.On("Upsert", ctx, mock.Anything).Return(nil, dbErr).Once()

		_, err := svc.Submit(ctx, domain.UpsertCommand{Workout: domain.Workout{Date: "2024-01-01"}})
		assert.ErrorIs(t, err, dbErr)
	})

	t.Run("Explicit delete normalizes the date", func(t *testing.T) {
		repo := new(MockWorkoutRepo)
		svc := services.NewWorkoutService(repo, time.UTC, nil)

		repo.On("DeleteByDate", ctx, "2024-01-05").Return([]domain.Workout{}, nil).Once()

		require.NoError(t, svc.Delete(ctx, "2024/1/5"))
		assert.ErrorIs(t, svc.Delete(ctx, "garbage"), domain.ErrInvalidDate)
		repo.AssertExpectations(t)
	})
}

func TestWorkoutService_Views(t *testing.T) {
	ctx := context.Background()
	stored := []domain.Workout{
		{Date: "2024-01-02", Distance: 6, Crunches: 60, Pushups: 50, Squats: 30, Weight: weight(81)},
		{Date: "2024-01-01", Distance: 4, Crunches: 40, Pushups: 50, Squats: 20, Weight: weight(82)},
		{Date: "2024-01-03", Distance: 1, Crunches: 1, Pushups: 1, Squats: 1},
	}

	repo := new(MockWorkoutRepo)
	repo.On("ListAll", ctx).Return(stored, nil)

	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	svc := services.NewWorkoutService(repo, kolkata, nil)
	svc.SetClock(func() time.Time { return time.Date(2024, 1, 3, 20, 30, 0, 0, time.UTC) })

	t.Run("Dashboard", func(t *testing.T) {
		d, err := svc.Dashboard(ctx)
		require.NoError(t, err)

		assert.Equal(t, 0, d.CompletePunches)
		assert.Equal(t, 3, d.Workouts)
		assert.Equal(t, 11.0, d.Totals.Distance)
		assert.Equal(t, 0.0, d.Remaining.Distance)
		assert.Equal(t, 49.0, d.Remaining.Squats)
	})

	t.Run("Weight progress is ascending and skips missing weights", func(t *testing.T) {
		points, err := svc.WeightProgress(ctx)
		require.NoError(t, err)
		assert.Equal(t, []domain.WeightPoint{
			{Date: "2024-01-01", Weight: 82},
			{Date: "2024-01-02", Weight: 81},
		}, points)
	})

	t.Run("Form defaults use reference day and latest weight", func(t *testing.T) {
		d, err := svc.FormDefaults(ctx)
		require.NoError(t, err)
		assert.Equal(t, "2024-01-04", d.Date, "20:30 UTC is already the next day in Kolkata")
		assert.Equal(t, 81.0, d.Weight)
		assert.Equal(t, 40, d.Crunches)
		assert.Equal(t, 4.0, d.Distance)
	})

	t.Run("Form defaults fall back to 100 kg", func(t *testing.T) {
		empty := new(MockWorkoutRepo)
		empty.On("ListAll", ctx).Return([]domain.Workout{}, nil)

		d, err := services.NewWorkoutService(empty, time.UTC, nil).FormDefaults(ctx)
		require.NoError(t, err)
		assert.Equal(t, 100.0, d.Weight)
	})

	t.Run("Corrupt storage propagates", func(t *testing.T) {
		broken := new(MockWorkoutRepo)
		broken.On("ListAll", ctx).Return(nil, domain.ErrStorageCorrupt)

		_, err := services.NewWorkoutService(broken, time.UTC, nil).Dashboard(ctx)
		assert.ErrorIs(t, err, domain.ErrStorageCorrupt)
	})
}
