package workers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/comitanigiacomo/onepunch-tracker/internal/metrics"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestScheduler_Registration(t *testing.T) {
	s := NewScheduler(nil)
	noop := func(context.Context) error { return nil }

	require.NoError(t, s.Register(ReminderTag, time.Hour, noop))
	require.NoError(t, s.Register("backup", time.Hour, noop))
	require.NoError(t, s.Register(ReminderTag, time.Minute, noop), "re-registering replaces")

	assert.Equal(t, []string{"backup", ReminderTag}, s.Tags())
	assert.ErrorIs(t, s.Register("bad", 0, noop), ErrInvalidInterval)

	assert.True(t, s.Unregister("backup"))
	assert.False(t, s.Unregister("backup"))
	assert.Equal(t, []string{ReminderTag}, s.Tags())
	assert.False(t, s.Trigger("missing"))
}

func TestScheduler_RunsOnTickAndTrigger(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler(nil)

	require.NoError(t, s.Register(ReminderTag, 10*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.Start(ctx)
	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	s.Stop()

	stopped := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, runs.Load(), "no runs after Stop")
}

func TestScheduler_Trigger(t *testing.T) {
	ran := make(chan struct{}, 1)
	s := NewScheduler(nil)

	require.NoError(t, s.Register(ReminderTag, time.Hour, func(context.Context) error {
		ran <- struct{}{}
		return nil
	}))

	s.Start(context.Background())
	defer s.Stop()

	require.True(t, s.Trigger(ReminderTag))
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("triggered task did not run")
	}
}

func TestScheduler_SurvivesFailures(t *testing.T) {
	var calls atomic.Int32
	m := metrics.NewTestManager()
	s := NewScheduler(m)

	require.NoError(t, s.Register(ReminderTag, 5*time.Millisecond, func(context.Context) error {
		n := calls.Add(1)
		switch n {
		case 1:
			panic("boom")
		case 2:
			return errors.New("store unavailable")
		}
		return nil
	}))

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return calls.Load() >= 4 }, time.Second, 5*time.Millisecond)
	s.Stop()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterScheduledTaskPanics))
}

func TestScheduler_RegisterAfterStart(t *testing.T) {
	var runs atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())

	s := NewScheduler(nil)
	s.Start(ctx)

	require.NoError(t, s.Register("late", 5*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	}))
	assert.Eventually(t, func() bool { return runs.Load() >= 1 }, time.Second, 5*time.Millisecond)

	cancel()
	s.Stop()
}
