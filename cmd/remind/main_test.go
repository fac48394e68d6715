package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/comitanigiacomo/onepunch-tracker/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		StoreDriver:       config.StoreMemory,
		StoreKey:          "workouts",
		DataDir:           t.TempDir(),
		Notifier:          config.NotifierLog,
		ReminderLocation:  time.UTC,
		ReminderLocal:     time.UTC,
		ReminderStartHour: 0,
		ReminderEndHour:   23,
	}
}

func TestRun_ExitCode(t *testing.T) {
	t.Run("Successful check", func(t *testing.T) {
		assert.Equal(t, 0, run(testConfig(t), time.Second))
	})

	t.Run("Store failure stays silent", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.StoreDriver = config.StoreRedis

		assert.Equal(t, 0, run(cfg, time.Second))
	})

	t.Run("Notifier failure stays silent", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Notifier = "pigeon"

		assert.Equal(t, 0, run(cfg, time.Second))
	})
}
