package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"

	NotifierLog      = "log"
	NotifierTelegram = "telegram"

	DefaultReminderStartHour = 15
	DefaultReminderEndHour   = 21
)

var (
	ErrUnknownStore    = errors.New("unknown STORE_DRIVER (memory, file, redis, postgres, sqlite)")
	ErrUnknownNotifier = errors.New("unknown NOTIFIER (log, telegram)")
	ErrInvalidWindow   = errors.New("reminder window hours must be within 0-23 and start <= end")
)

type Config struct {
	Port string

	LogLevel    string
	LogFile     string
	LogToStdout bool
	LogJSON     bool

	StoreDriver string
	StoreKey    string
	DataDir     string
	SQLitePath  string

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisCache    bool
	RateLimit     int

	ReminderLocation  *time.Location
	ReminderLocal     *time.Location
	ReminderInterval  time.Duration
	ReminderStartHour int
	ReminderEndHour   int

	Notifier       string
	TelegramToken  string
	TelegramChatID int64
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using process environment")
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		Port: getEnv("PORT", "8080"),

		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFile:     os.Getenv("LOG_FILE"),
		LogToStdout: getBool("LOG_TO_STDOUT", true),
		LogJSON:     getBool("LOG_JSON", false),

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", StoreFile)),
		StoreKey:    getEnv("STORE_KEY", "workouts"),
		DataDir:     getEnv("DATA_DIR", "./data"),
		SQLitePath:  getEnv("SQLITE_PATH", "./data/punch.db"),

		DBUser:     getEnv("DB_USER", "punch_user"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBName:     getEnv("DB_NAME", "punch_db"),

		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisCache:    getBool("REDIS_CACHE", false),

		Notifier:      strings.ToLower(getEnv("NOTIFIER", NotifierLog)),
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
	}

	var err error
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.RateLimit, err = getInt("RATE_LIMIT", 0); err != nil {
		return nil, err
	}
	if cfg.ReminderStartHour, err = getInt("REMINDER_START_HOUR", DefaultReminderStartHour); err != nil {
		return nil, err
	}
	if cfg.ReminderEndHour, err = getInt("REMINDER_END_HOUR", DefaultReminderEndHour); err != nil {
		return nil, err
	}

	tz := getEnv("REMINDER_TIMEZONE", "Asia/Kolkata")
	if cfg.ReminderLocation, err = time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("config: REMINDER_TIMEZONE %q: %w", tz, err)
	}

	cfg.ReminderLocal = time.Local
	if localTZ := os.Getenv("REMINDER_LOCAL_TIMEZONE"); localTZ != "" {
		if cfg.ReminderLocal, err = time.LoadLocation(localTZ); err != nil {
			return nil, fmt.Errorf("config: REMINDER_LOCAL_TIMEZONE %q: %w", localTZ, err)
		}
	}

	interval := getEnv("REMINDER_INTERVAL", "1h")
	if cfg.ReminderInterval, err = time.ParseDuration(interval); err != nil || cfg.ReminderInterval <= 0 {
		return nil, fmt.Errorf("config: invalid REMINDER_INTERVAL %q", interval)
	}

	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		if cfg.TelegramChatID, err = strconv.ParseInt(chatID, 10, 64); err != nil {
			return nil, fmt.Errorf("config: invalid TELEGRAM_CHAT_ID %q", chatID)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreMemory, StoreFile, StorePostgres, StoreSQLite:
	case StoreRedis:
		if c.RedisHost == "" {
			return errors.New("config: STORE_DRIVER=redis requires REDIS_HOST")
		}
	default:
		return fmt.Errorf("config: %w: %q", ErrUnknownStore, c.StoreDriver)
	}

	switch c.Notifier {
	case NotifierLog:
	case NotifierTelegram:
		if c.TelegramToken == "" || c.TelegramChatID == 0 {
			return errors.New("config: NOTIFIER=telegram requires TELEGRAM_TOKEN and TELEGRAM_CHAT_ID")
		}
	default:
		return fmt.Errorf("config: %w: %q", ErrUnknownNotifier, c.Notifier)
	}

	if c.ReminderStartHour < 0 || c.ReminderEndHour > 23 || c.ReminderStartHour > c.ReminderEndHour {
		return fmt.Errorf("config: %w", ErrInvalidWindow)
	}
	return nil
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// RedisEnabled reports whether any component needs a redis connection.
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != "" && (c.StoreDriver == StoreRedis || c.RedisCache || c.RateLimit > 0)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s %q", key, v)
	}
	return n, nil
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
