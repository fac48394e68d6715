package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/onepunch-tracker/internal/core/domain"
	"github.com/comitanigiacomo/onepunch-tracker/internal/metrics"
)

type ReminderConfig struct {
	// Reference is the timezone that decides which calendar day "today" is.
	Reference *time.Location
	// Local is the clock used for the time-of-day window. Defaults to time.Local.
	Local *time.Location

	// StartHour and EndHour bound the inclusive notification window. They are
	// taken as given: 0 and 0 is a midnight-only window.
	StartHour int
	EndHour   int
}

type ReminderService struct {
	repo     domain.WorkoutRepository
	notifier domain.Notifier
	cfg      ReminderConfig
	metrics  *metrics.Manager
	now      func() time.Time
	log      *logrus.Entry
}

func NewReminderService(repo domain.WorkoutRepository, notifier domain.Notifier, cfg ReminderConfig, m *metrics.Manager) *ReminderService {
	if cfg.Reference == nil {
		cfg.Reference = time.UTC
	}
	if cfg.Local == nil {
		cfg.Local = time.Local
	}

	return &ReminderService{
		repo:     repo,
		notifier: notifier,
		cfg:      cfg,
		metrics:  m,
		now:      time.Now,
		log:      logrus.WithField("component", "reminder"),
	}
}

func (s *ReminderService) SetClock(now func() time.Time) {
	s.now = now
}

// Check sends the workout reminder when we are inside the window and nothing
// has been logged for today. It never returns an error: failures are logged
// and the check reports false.
func (s *ReminderService) Check(ctx context.Context) bool {
	now := s.now()

	hour := now.In(s.cfg.Local).Hour()
	if hour < s.cfg.StartHour || hour > s.cfg.EndHour {
		s.record("outside_window")
		return false
	}

	today := domain.FormatDay(now, s.cfg.Reference)

	workouts, err := s.repo.ListAll(ctx)
	if err != nil {
		s.log.WithError(err).Warn("Reminder skipped: cannot read workouts")
		s.record("store_error")
		return false
	}

	for _, w := range workouts {
		if domain.SameDate(w.Date, today) {
			s.record("already_logged")
			return false
		}
	}

	if err := s.notifier.Notify(ctx, domain.NewWorkoutReminder()); err != nil {
		if !errors.Is(err, domain.ErrNotificationUnavailable) {
			err = errors.Join(domain.ErrNotificationUnavailable, err)
		}
		s.log.WithError(err).Warn("Reminder not delivered")
		s.record("notify_error")
		if s.metrics != nil {
			s.metrics.CounterNotificationFailures.Inc()
		}
		return false
	}

	s.log.WithField("date", today).Info("Workout reminder sent")
	s.record("notified")
	return true
}

// Run adapts Check to the scheduler task signature.
func (s *ReminderService) Run(ctx context.Context) error {
	s.Check(ctx)
	return nil
}

func (s *ReminderService) record(outcome string) {
	if s.metrics != nil {
		s.metrics.CounterReminderChecks.WithLabelValues(outcome).Inc()
	}
}
