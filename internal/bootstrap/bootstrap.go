// Package bootstrap turns a Config into the wired storage and notification
// backends shared by the server and the one-shot reminder command.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"github.com/comitanigiacomo/onepunch-tracker/internal/adapters/cache"
	"github.com/comitanigiacomo/onepunch-tracker/internal/adapters/notifier"
	"github.com/comitanigiacomo/onepunch-tracker/internal/adapters/repository"
	"github.com/comitanigiacomo/onepunch-tracker/internal/config"
	"github.com/comitanigiacomo/onepunch-tracker/internal/core/domain"
	"github.com/comitanigiacomo/onepunch-tracker/internal/core/services"
)

// Store is a slot backend that can also report its health.
type Store interface {
	domain.KeyValueStore
	Ping(ctx context.Context) error
}

type Resources struct {
	Store Store
	Repo  domain.WorkoutRepository
	Redis *redis.Client

	closers []io.Closer
}

// Open connects the configured slot backend and, when enabled, redis.
// On error everything opened so far is closed again.
func Open(ctx context.Context, cfg *config.Config) (res *Resources, err error) {
	res = &Resources{}
	defer func() {
		if err != nil {
			err = multierr.Append(err, res.Close())
			res = nil
		}
	}()

	if cfg.RedisEnabled() {
		rdb, err := cache.NewRedisClient(ctx, cache.Options{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return res, err
		}
		res.Redis = rdb
		res.closers = append(res.closers, rdb)
		logrus.Infof("Redis connected at %s:%s", cfg.RedisHost, cfg.RedisPort)
	}

	switch cfg.StoreDriver {
	case config.StoreMemory:
		logrus.Warn("Using in-memory store: workouts are lost on restart")
		res.Store = repository.NewInMemoryStore()

	case config.StoreFile:
		fs, err := repository.NewFileStore(cfg.DataDir)
		if err != nil {
			return res, err
		}
		res.Store = fs

	case config.StoreRedis:
		if res.Redis == nil {
			return res, fmt.Errorf("bootstrap: redis store needs a redis connection")
		}
		res.Store = repository.NewRedisStore(res.Redis)

	case config.StorePostgres:
		db, err := repository.OpenPostgres(cfg.PostgresDSN())
		if err != nil {
			return res, err
		}
		res.closers = append(res.closers, db)
		if res.Store, err = migrated(ctx, repository.NewSQLStore(db)); err != nil {
			return res, err
		}

	case config.StoreSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return res, fmt.Errorf("bootstrap: sqlite dir: %w", err)
		}
		db, err := repository.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return res, err
		}
		res.closers = append(res.closers, db)
		if res.Store, err = migrated(ctx, repository.NewSQLStore(db)); err != nil {
			return res, err
		}

	default:
		return res, fmt.Errorf("bootstrap: %w: %q", config.ErrUnknownStore, cfg.StoreDriver)
	}
	logrus.Infof("Workout store: %s (key %q)", cfg.StoreDriver, cfg.StoreKey)

	var repo domain.WorkoutRepository = repository.NewSlotWorkoutRepository(res.Store, cfg.StoreKey)
	if cfg.RedisCache && res.Redis != nil && cfg.StoreDriver != config.StoreRedis {
		repo = repository.NewCachedWorkoutRepository(repo, res.Redis, cfg.StoreKey)
		logrus.Info("Workout list cache enabled")
	}
	res.Repo = repo

	return res, nil
}

func migrated(ctx context.Context, s *repository.SQLStore) (*repository.SQLStore, error) {
	if err := s.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("bootstrap: migrate kv_slots: %w", err)
	}
	return s, nil
}

// Close releases every opened backend, last opened first.
func (r *Resources) Close() error {
	var err error
	for i := len(r.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, r.closers[i].Close())
	}
	r.closers = nil
	return err
}

// NewNotifier builds the configured channel. It does no network I/O: the
// Telegram bot connects on its first notification, so an outage never stops
// startup. store keeps the ids of sent messages between runs.
func NewNotifier(cfg *config.Config, store domain.KeyValueStore) (domain.Notifier, error) {
	switch cfg.Notifier {
	case config.NotifierTelegram:
		return notifier.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID, store), nil
	case config.NotifierLog, "":
		return notifier.NewLogNotifier(nil), nil
	default:
		return nil, fmt.Errorf("bootstrap: %w: %q", config.ErrUnknownNotifier, cfg.Notifier)
	}
}

func ReminderConfig(cfg *config.Config) services.ReminderConfig {
	return services.ReminderConfig{
		Reference: cfg.ReminderLocation,
		Local:     cfg.ReminderLocal,
		StartHour: cfg.ReminderStartHour,
		EndHour:   cfg.ReminderEndHour,
	}
}
