package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/onepunch-tracker/internal/core/domain"
	"github.com/comitanigiacomo/onepunch-tracker/internal/metrics"
)

type SubmitAction string

const (
	ActionUpsert SubmitAction = "upsert"
	ActionDelete SubmitAction = "delete"
	ActionClear  SubmitAction = "clear"
)

type SubmitResult struct {
	Action   SubmitAction     `json:"action"`
	Date     string           `json:"date,omitempty"`
	Workouts []domain.Workout `json:"workouts"`
}

type WorkoutService struct {
	repo     domain.WorkoutRepository
	location *time.Location
	metrics  *metrics.Manager
	now      func() time.Time
}

// NewWorkoutService builds the service. loc is the reference timezone used for
// "today"; metrics may be nil.
func NewWorkoutService(repo domain.WorkoutRepository, loc *time.Location, m *metrics.Manager) *WorkoutService {
	if loc == nil {
		loc = time.UTC
	}
	return &WorkoutService{
		repo:     repo,
		location: loc,
		metrics:  m,
		now:      time.Now,
	}
}

func (s *WorkoutService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *WorkoutService) SubmitForm(ctx context.Context, form domain.WorkoutForm) (*SubmitResult, error) {
	cmd, err := domain.ParseSubmission(form)
	if err != nil {
		return nil, err
	}
	return s.Submit(ctx, cmd)
}

// Submit applies one resolved form command. The returned history is the list
// the write produced, so a successful write is never reported as a failure.
func (s *WorkoutService) Submit(ctx context.Context, cmd domain.Command) (*SubmitResult, error) {
	var (
		result   SubmitResult
		workouts []domain.Workout
		err      error
	)

	switch c := cmd.(type) {
	case domain.UpsertCommand:
		if workouts, err = s.repo.Upsert(ctx, c.Workout); err != nil {
			return nil, err
		}
		result.Action = ActionUpsert
		result.Date = c.Workout.Date

	case domain.DeleteDateCommand:
		if workouts, err = s.repo.DeleteByDate(ctx, c.Date); err != nil {
			return nil, err
		}
		result.Action = ActionDelete
		result.Date = c.Date
		logrus.WithField("date", c.Date).Info("Workout deleted via form")

	case domain.ClearAllCommand:
		if err := s.repo.ClearAll(ctx); err != nil {
			return nil, err
		}
		result.Action = ActionClear
		logrus.Warn("Workout history erased via form")

	default:
		return nil, fmt.Errorf("unsupported command %T", cmd)
	}

	result.Workouts = newestFirst(workouts)

	if s.metrics != nil {
		s.metrics.CounterSubmissions.WithLabelValues(string(result.Action)).Inc()
		s.metrics.GaugeWorkouts.Set(float64(len(result.Workouts)))
	}

	return &result, nil
}

func (s *WorkoutService) Get(ctx context.Context, date string) (domain.Workout, bool, error) {
	return s.repo.FindByDate(ctx, date)
}

func (s *WorkoutService) Delete(ctx context.Context, date string) error {
	date, err := domain.NormalizeDate(date)
	if err != nil {
		return err
	}
	_, err = s.Submit(ctx, domain.DeleteDateCommand{Date: date})
	return err
}

func (s *WorkoutService) Clear(ctx context.Context) error {
	_, err := s.Submit(ctx, domain.ClearAllCommand{})
	return err
}

// History returns every record, newest first.
func (s *WorkoutService) History(ctx context.Context) ([]domain.Workout, error) {
	workouts, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return newestFirst(workouts), nil
}

func newestFirst(workouts []domain.Workout) []domain.Workout {
	sorted := make([]domain.Workout, len(workouts))
	copy(sorted, workouts)

	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date > sorted[j].Date
	})
	return sorted
}

func (s *WorkoutService) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	workouts, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	dashboard := domain.BuildDashboard(workouts)
	return &dashboard, nil
}

// WeightProgress returns the recorded weights, oldest first.
func (s *WorkoutService) WeightProgress(ctx context.Context) ([]domain.WeightPoint, error) {
	workouts, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	points := make([]domain.WeightPoint, 0, len(workouts))
	for _, w := range workouts {
		if w.Weight == nil {
			continue
		}
		points = append(points, domain.WeightPoint{Date: w.Date, Weight: *w.Weight})
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Date < points[j].Date
	})
	return points, nil
}

// FormDefaults pre-fills a new entry: today's date and the latest known weight.
func (s *WorkoutService) FormDefaults(ctx context.Context) (*domain.FormDefaults, error) {
	defaults := &domain.FormDefaults{
		Date:     domain.FormatDay(s.now(), s.location),
		Distance: domain.DefaultFormDistance,
		Crunches: domain.DefaultFormReps,
		Pushups:  domain.DefaultFormReps,
		Squats:   domain.DefaultFormReps,
		Weight:   domain.DefaultFormWeight,
	}

	points, err := s.WeightProgress(ctx)
	if err != nil {
		return nil, err
	}
	if len(points) > 0 {
		defaults.Weight = points[len(points)-1].Weight
	}
	return defaults, nil
}
