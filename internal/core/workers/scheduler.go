package workers

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/onepunch-tracker/internal/metrics"
)

// ReminderTag is the tag the workout reminder check is registered under.
const ReminderTag = "check-workout"

var ErrInvalidInterval = errors.New("scheduler interval must be positive")

type Task func(ctx context.Context) error

type registration struct {
	tag      string
	interval time.Duration
	task     Task
	trigger  chan struct{}
	cancel   context.CancelFunc
}

// Scheduler runs registered tasks periodically, one goroutine per tag.
// A failing or panicking task is logged and keeps its schedule.
type Scheduler struct {
	metrics *metrics.Manager

	mu      sync.Mutex
	tasks   map[string]*registration
	ctx     context.Context
	started bool
	wg      sync.WaitGroup
}

func NewScheduler(m *metrics.Manager) *Scheduler {
	return &Scheduler{
		metrics: m,
		tasks:   make(map[string]*registration),
	}
}

// Register adds or replaces the task for tag. Tasks registered after Start
// begin running immediately.
func (s *Scheduler) Register(tag string, minInterval time.Duration, task Task) error {
	if minInterval <= 0 {
		return ErrInvalidInterval
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.unregisterLocked(tag)

	reg := &registration{
		tag:      tag,
		interval: minInterval,
		task:     task,
		trigger:  make(chan struct{}, 1),
	}
	s.tasks[tag] = reg

	if s.started {
		s.launchLocked(reg)
	}
	return nil
}

func (s *Scheduler) Unregister(tag string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.unregisterLocked(tag)
}

func (s *Scheduler) Tags() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	tags := make([]string, 0, len(s.tasks))
	for tag := range s.tasks {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Trigger asks the task for tag to run now. It never blocks: a run that is
// already pending absorbs the request.
func (s *Scheduler) Trigger(tag string) bool {
	s.mu.Lock()
	reg, ok := s.tasks[tag]
	s.mu.Unlock()
	if !ok {
		return false
	}

	select {
	case reg.trigger <- struct{}{}:
	default:
		logrus.Debugf("Scheduler: run already pending for %s", tag)
	}
	return true
}

func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.ctx = ctx
	s.started = true

	for _, reg := range s.tasks {
		s.launchLocked(reg)
	}
	logrus.Infof("Scheduler started with %d task(s)", len(s.tasks))
}

// Stop cancels every task and waits for in-flight runs to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	for _, reg := range s.tasks {
		if reg.cancel != nil {
			reg.cancel()
			reg.cancel = nil
		}
	}
	s.started = false
	s.mu.Unlock()

	s.wg.Wait()
	logrus.Info("Scheduler stopped")
}

func (s *Scheduler) unregisterLocked(tag string) bool {
	reg, ok := s.tasks[tag]
	if !ok {
		return false
	}
	if reg.cancel != nil {
		reg.cancel()
	}
	delete(s.tasks, tag)
	return true
}

func (s *Scheduler) launchLocked(reg *registration) {
	ctx, cancel := context.WithCancel(s.ctx)
	reg.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop(ctx, reg)
	}()
}

func (s *Scheduler) loop(ctx context.Context, reg *registration) {
	ticker := time.NewTicker(reg.interval)
	defer ticker.Stop()

	log := logrus.WithField("tag", reg.tag)
	log.Debugf("Scheduler: running every %s", reg.interval)

	for {
		select {
		case <-ticker.C:
			s.run(ctx, reg)
		case <-reg.trigger:
			s.run(ctx, reg)
		case <-ctx.Done():
			log.Debug("Scheduler: task stopped")
			return
		}
	}
}

func (s *Scheduler) run(ctx context.Context, reg *registration) {
	log := logrus.WithField("tag", reg.tag)

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("Scheduler: task panicked: %v", r)
			if s.metrics != nil {
				s.metrics.CounterScheduledTaskPanics.Inc()
			}
		}
	}()

	if err := reg.task(ctx); err != nil {
		log.WithError(err).Warn("Scheduler: task failed")
	}
}
