// Command remind runs the workout reminder check once and exits. It is meant
// for cron or a systemd timer when the API server is not running.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/onepunch-tracker/internal/bootstrap"
	"github.com/comitanigiacomo/onepunch-tracker/internal/config"
	"github.com/comitanigiacomo/onepunch-tracker/internal/core/services"
	"github.com/comitanigiacomo/onepunch-tracker/internal/logging"
)

func main() {
	timeout := flag.Duration("timeout", 30*time.Second, "overall deadline for the check")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Critical: invalid configuration: %v", err)
	}

	closer := logging.Setup(logging.SetupParams{
		LogFileName: cfg.LogFile,
		LogToStdout: cfg.LogToStdout,
		LogLevel:    cfg.LogLevel,
		LogJSON:     cfg.LogJSON,
	})

	code := run(cfg, *timeout)
	if closer != nil {
		closer.Close()
	}
	os.Exit(code)
}

// run performs the check. Every failure past configuration is logged and
// still exits 0, so the host scheduler never disables the job.
func run(cfg *config.Config, timeout time.Duration) int {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	res, err := bootstrap.Open(ctx, cfg)
	if err != nil {
		logrus.Warnf("Reminder skipped: failed to open workout store: %v", err)
		return 0
	}
	defer func() {
		if err := res.Close(); err != nil {
			logrus.Warnf("Failed to close resources: %v", err)
		}
	}()

	reminderNotifier, err := bootstrap.NewNotifier(cfg, res.Store)
	if err != nil {
		logrus.Warnf("Reminder skipped: failed to set up notifier: %v", err)
		return 0
	}

	reminder := services.NewReminderService(res.Repo, reminderNotifier, bootstrap.ReminderConfig(cfg), nil)
	if reminder.Check(ctx) {
		logrus.Info("Reminder sent")
	} else {
		logrus.Info("No reminder needed")
	}
	return 0
}
