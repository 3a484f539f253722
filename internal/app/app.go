// Package app собирает хранилище, сценарии и HTTP-сервер метрик labqc.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/labqc/internal/access"
	"github.com/vladislavdragonenkov/labqc/internal/domain"
	"github.com/vladislavdragonenkov/labqc/internal/health"
	"github.com/vladislavdragonenkov/labqc/internal/metrics"
	"github.com/vladislavdragonenkov/labqc/internal/service/catalog"
	"github.com/vladislavdragonenkov/labqc/internal/service/clients"
	"github.com/vladislavdragonenkov/labqc/internal/service/ordering"
	"github.com/vladislavdragonenkov/labqc/internal/service/reports"
	"github.com/vladislavdragonenkov/labqc/internal/storage"
	"github.com/vladislavdragonenkov/labqc/internal/storage/memory"
	"github.com/vladislavdragonenkov/labqc/internal/storage/postgres"
	"github.com/vladislavdragonenkov/labqc/internal/version"
)

// Backend объединяет репозитории обеих реализаций хранилища.
type Backend interface {
	Users() domain.UserRepository
	Clients() domain.ClientRepository
	Services() domain.ServiceRepository
	Orders() domain.OrderRepository
	Ping(ctx context.Context) error
	Close() error
}

// memoryBackend приводит Ping хранилища в памяти к общей сигнатуре.
type memoryBackend struct {
	*memory.Store
}

func (b memoryBackend) Ping(context.Context) error { return b.Store.Ping() }

// App держит собранные сценарии на время работы процесса.
type App struct {
	Config  Config
	Logger  *log.Entry
	Backend Backend
	Metrics *metrics.LabMetrics

	Orders  *ordering.Workflow
	Clients *clients.Service
	Catalog *catalog.Service
	Reports *reports.Service
	Health  *health.Handler

	registry *prometheus.Registry
}

// Open открывает хранилище по конфигурации, применяет миграции и начальные
// данные, затем связывает сценарии.
func Open(ctx context.Context, cfg Config, logger *log.Entry) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	backend, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return New(cfg, backend, logger), nil
}

// New связывает сценарии поверх готового хранилища.
func New(cfg Config, backend Backend, logger *log.Entry) *App {
	if logger == nil {
		logger = log.WithField("component", "app")
	}
	registry := prometheus.NewRegistry()
	labMetrics := metrics.NewWithRegisterer(registry)

	a := &App{
		Config:   cfg,
		Logger:   logger,
		Backend:  backend,
		Metrics:  labMetrics,
		registry: registry,
	}
	a.Orders = ordering.NewWorkflow(backend.Orders(), backend.Services(), backend.Clients(),
		logger.WithField("component", "ordering"),
		ordering.WithRecorder(labMetrics),
		ordering.WithRetry(cfg.Retry),
	)
	a.Clients = clients.NewService(backend.Clients(), logger.WithField("component", "clients"))
	a.Catalog = catalog.NewService(backend.Services(), logger.WithField("component", "catalog"))
	a.Reports = reports.NewService(backend.Orders(), logger.WithField("component", "reports"),
		reports.WithRecorder(labMetrics),
	)
	a.Health = health.NewHandler(version.Version(), cfg.HealthTimeout)
	a.Health.Register(string(cfg.StorageDriver), backend.Ping)
	return a
}

// NewSession создаёт пустую сессию оператора с учётом попыток входа в метриках.
func (a *App) NewSession() *access.Session {
	return access.NewSession(a.Backend.Users(), a.Logger.WithField("component", "access"),
		access.WithLoginRecorder(a.Metrics))
}

// Login создаёт сессию и выполняет вход.
func (a *App) Login(username, password string) (*access.Session, error) {
	session := a.NewSession()
	if _, err := session.Login(username, password); err != nil {
		return nil, err
	}
	return session, nil
}

// Close освобождает хранилище.
func (a *App) Close() error {
	return a.Backend.Close()
}

// Handler возвращает маршруты /metrics, /healthz и /livez.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	mux.Handle("/healthz", a.Health)
	mux.HandleFunc("/livez", health.Liveness)
	return mux
}

// Serve обслуживает HTTP-маршруты до отмены контекста.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.MetricsAddr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Infof("метрики доступны по адресу %s/metrics", a.Config.MetricsAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		a.Logger.Info("получен сигнал остановки, останавливаем HTTP сервер")
		shutdownHTTP(srv, a.Logger)
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

func openBackend(ctx context.Context, cfg Config, logger *log.Entry) (Backend, error) {
	switch cfg.StorageDriver {
	case StorageDriverPostgres:
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if cfg.PostgresAutoMigrate {
			if err := store.MigrateUp(ctx, 0); err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("apply migrations: %w", err)
			}
		}
		if cfg.Seed {
			if err := store.Seed(ctx, storage.DefaultSeed()); err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("seed postgres: %w", err)
			}
		}
		logger.WithField("driver", cfg.StorageDriver).Info("storage opened")
		return store, nil
	default:
		store := memory.NewStore()
		if cfg.Seed {
			if err := store.Seed(storage.DefaultSeed()); err != nil {
				return nil, fmt.Errorf("seed memory store: %w", err)
			}
		}
		logger.WithField("driver", StorageDriverMemory).Info("storage opened")
		return memoryBackend{Store: store}, nil
	}
}

func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
