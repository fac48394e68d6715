package services_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/comitanigiacomo/onepunch-tracker/internal/core/domain"
)

type MockWorkoutRepo struct {
	mock.Mock
}

func (m *MockWorkoutRepo) Upsert(ctx context.Context, w domain.Workout) ([]domain.Workout, error) {
	args := m.Called(ctx, w)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Workout), args.Error(1)
}

func (m *MockWorkoutRepo) DeleteByDate(ctx context.Context, date string) ([]domain.Workout, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Workout), args.Error(1)
}

func (m *MockWorkoutRepo) ClearAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockWorkoutRepo) FindByDate(ctx context.Context, date string) (domain.Workout, bool, error) {
	args := m.Called(ctx, date)
	return args.Get(0).(domain.Workout), args.Bool(1), args.Error(2)
}

func (m *MockWorkoutRepo) ListAll(ctx context.Context) ([]domain.Workout, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Workout), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, n domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func weight(v float64) *float64 {
	return &v
}
