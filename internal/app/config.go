package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/labqc/internal/service/ordering"
)

// StorageDriver выбирает реализацию хранилища.
type StorageDriver string

const (
	StorageDriverMemory   StorageDriver = "memory"
	StorageDriverPostgres StorageDriver = "postgres"
)

// Переменные окружения конфигурации.
const (
	EnvStorageDriver       = "LABQC_STORAGE_DRIVER"
	EnvPostgresDSN         = "LABQC_POSTGRES_DSN"
	EnvPostgresAutoMigrate = "LABQC_POSTGRES_AUTO_MIGRATE"
	EnvSeed                = "LABQC_SEED"
	EnvMetricsAddr         = "LABQC_METRICS_ADDR"
	EnvLogLevel            = "LABQC_LOG_LEVEL"
	EnvHealthTimeout       = "LABQC_HEALTH_TIMEOUT"
	EnvRetryMaxAttempts    = "LABQC_VESSEL_RETRY_ATTEMPTS"
	EnvRetryInitialDelay   = "LABQC_VESSEL_RETRY_DELAY"
)

// Config описывает параметры запуска labqc.
type Config struct {
	StorageDriver       StorageDriver `validate:"oneof=memory postgres"`
	PostgresDSN         string        `validate:"required_if=StorageDriver postgres"`
	PostgresAutoMigrate bool
	Seed                bool
	MetricsAddr         string        `validate:"required"`
	LogLevel            string        `validate:"oneof=debug info warn error"`
	HealthTimeout       time.Duration `validate:"gt=0"`
	Retry               ordering.RetryConfig
}

// DefaultConfig возвращает конфигурацию для локального запуска в памяти.
func DefaultConfig() Config {
	return Config{
		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,
		Seed:                true,
		MetricsAddr:         ":9090",
		LogLevel:            "info",
		HealthTimeout:       2 * time.Second,
		Retry:               ordering.DefaultRetryConfig(),
	}
}

var validate = validator.New()

// Validate проверяет значения конфигурации.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("invalid config: field %s failed %q", fe.Field(), fe.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Retry.MaxAttempts < 1 {
		return errors.New("invalid config: vessel retry attempts must be at least 1")
	}
	return nil
}

// LoadConfig читает .env-файлы (отсутствующие пропускаются), затем берёт
// значения LABQC_* из окружения поверх DefaultConfig.
func LoadConfig(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}

	cfg := DefaultConfig()
	if v, ok := lookup(EnvStorageDriver); ok {
		cfg.StorageDriver = StorageDriver(strings.ToLower(v))
	}
	if v, ok := lookup(EnvPostgresDSN); ok {
		cfg.PostgresDSN = v
	}
	if v, ok := lookup(EnvMetricsAddr); ok {
		cfg.MetricsAddr = v
	}
	if v, ok := lookup(EnvLogLevel); ok {
		cfg.LogLevel = strings.ToLower(v)
	}

	var err error
	if cfg.PostgresAutoMigrate, err = boolEnv(EnvPostgresAutoMigrate, cfg.PostgresAutoMigrate); err != nil {
		return Config{}, err
	}
	if cfg.Seed, err = boolEnv(EnvSeed, cfg.Seed); err != nil {
		return Config{}, err
	}
	if cfg.HealthTimeout, err = durationEnv(EnvHealthTimeout, cfg.HealthTimeout); err != nil {
		return Config{}, err
	}
	if cfg.Retry.InitialDelay, err = durationEnv(EnvRetryInitialDelay, cfg.Retry.InitialDelay); err != nil {
		return Config{}, err
	}
	if v, ok := lookup(EnvRetryMaxAttempts); ok {
		attempts, convErr := strconv.Atoi(v)
		if convErr != nil {
			return Config{}, fmt.Errorf("parse %s: %w", EnvRetryMaxAttempts, convErr)
		}
		cfg.Retry.MaxAttempts = attempts
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Level возвращает уровень логирования logrus.
func (c Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func boolEnv(key string, fallback bool) (bool, error) {
	v, ok := lookup(key)
	if !ok {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return b, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := lookup(key)
	if !ok {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}
