package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	adapterHTTP "github.com/comitanigiacomo/onepunch-tracker/internal/adapters/handler/http"
	"github.com/comitanigiacomo/onepunch-tracker/internal/adapters/notifier"
	"github.com/comitanigiacomo/onepunch-tracker/internal/bootstrap"
	"github.com/comitanigiacomo/onepunch-tracker/internal/config"
	"github.com/comitanigiacomo/onepunch-tracker/internal/core/services"
	"github.com/comitanigiacomo/onepunch-tracker/internal/core/workers"
	"github.com/comitanigiacomo/onepunch-tracker/internal/logging"
	"github.com/comitanigiacomo/onepunch-tracker/internal/metrics"
)

// @title        One Punch Tracker API
// @version      1.0
// @description  Daily workout log scored in punches.
// @BasePath     /api/v1
func main() {
	startTime := time.Now()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Critical: invalid configuration: %v", err)
	}

	logCloser := logging.Setup(logging.SetupParams{
		LogFileName: cfg.LogFile,
		LogToStdout: cfg.LogToStdout,
		LogLevel:    cfg.LogLevel,
		LogJSON:     cfg.LogJSON,
	})

	if logrus.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := bootstrap.Open(ctx, cfg)
	if err != nil {
		logrus.Fatalf("Critical: failed to open workout store: %v", err)
	}

	reminderNotifier, err := bootstrap.NewNotifier(cfg, res.Store)
	if err != nil {
		logrus.Warnf("Notifier unavailable, reminders go to the log: %v", err)
		reminderNotifier = notifier.NewLogNotifier(nil)
	}

	metricsManager := metrics.NewManager("onepunch", "tracker", prometheus.DefaultRegisterer)

	workoutService := services.NewWorkoutService(res.Repo, cfg.ReminderLocation, metricsManager)
	reminderService := services.NewReminderService(res.Repo, reminderNotifier, bootstrap.ReminderConfig(cfg), metricsManager)

	scheduler := workers.NewScheduler(metricsManager)
	if err := scheduler.Register(workers.ReminderTag, cfg.ReminderInterval, reminderService.Run); err != nil {
		logrus.Fatalf("Critical: failed to schedule reminder: %v", err)
	}
	scheduler.Start(ctx)
	scheduler.Trigger(workers.ReminderTag)

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		WorkoutHandler: adapterHTTP.NewWorkoutHandler(workoutService),
		Store:          res.Store,
		Redis:          res.Redis,
		RateLimit:      cfg.RateLimit,
		Metrics:        metricsManager,
		Gatherer:       prometheus.DefaultGatherer,
		StartTime:      startTime,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logrus.Infof("One Punch Tracker running on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Errorf("Critical server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logrus.Info("Stop signal received. Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	shutdownErr := srv.Shutdown(shutdownCtx)
	scheduler.Stop()
	shutdownErr = multierr.Append(shutdownErr, res.Close())

	if shutdownErr != nil {
		logrus.Errorf("Shutdown completed with errors: %v", shutdownErr)
	} else {
		logrus.Info("Server stopped gracefully.")
	}

	if logCloser != nil {
		logCloser.Close()
	}
	if shutdownErr != nil {
		os.Exit(1)
	}
}
