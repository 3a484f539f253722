// Package health отдаёт состояние хранилища для labqc serve.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"
)

// Status описывает состояние компонента.
type Status string

const (
	StatusUp   Status = "up"
	StatusDown Status = "down"
)

// Check хранит результат одной проверки.
type Check struct {
	Name       string `json:"name"`
	Status     Status `json:"status"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// Report сериализуется в ответ /healthz.
type Report struct {
	Status        Status    `json:"status"`
	Version       string    `json:"version,omitempty"`
	CheckedAt     time.Time `json:"checked_at"`
	UptimeSeconds int64     `json:"uptime_seconds"`
	Checks        []Check   `json:"checks"`
}

// PingFunc проверяет доступность зависимости.
type PingFunc func(ctx context.Context) error

// Handler выполняет зарегистрированные проверки при каждом запросе.
type Handler struct {
	mu      sync.RWMutex
	pings   map[string]PingFunc
	version string
	timeout time.Duration
	started time.Time
	now     func() time.Time
}

// NewHandler создаёт обработчик с таймаутом на каждую проверку.
func NewHandler(version string, timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Handler{
		pings:   make(map[string]PingFunc),
		version: version,
		timeout: timeout,
		started: time.Now(),
		now:     time.Now,
	}
}

// Register добавляет проверку под именем компонента.
func (h *Handler) Register(name string, ping PingFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pings[name] = ping
}

// Run выполняет все проверки в алфавитном порядке имён.
func (h *Handler) Run(ctx context.Context) Report {
	h.mu.RLock()
	names := make([]string, 0, len(h.pings))
	for name := range h.pings {
		names = append(names, name)
	}
	pings := make(map[string]PingFunc, len(h.pings))
	for name, ping := range h.pings {
		pings[name] = ping
	}
	h.mu.RUnlock()
	sort.Strings(names)

	report := Report{
		Status:        StatusUp,
		Version:       h.version,
		CheckedAt:     h.now(),
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
		Checks:        make([]Check, 0, len(names)),
	}
	for _, name := range names {
		check := h.run(ctx, name, pings[name])
		if check.Status == StatusDown {
			report.Status = StatusDown
		}
		report.Checks = append(report.Checks, check)
	}
	return report
}

func (h *Handler) run(ctx context.Context, name string, ping PingFunc) Check {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	start := time.Now()
	err := ping(ctx)
	check := Check{Name: name, Status: StatusUp, DurationMs: time.Since(start).Milliseconds()}
	if err != nil {
		check.Status = StatusDown
		check.Error = err.Error()
	}
	return check
}

// ServeHTTP отвечает 200 при исправных проверках и 503 иначе.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	report := h.Run(r.Context())

	code := http.StatusOK
	if report.Status == StatusDown {
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(report)
}

// Liveness всегда отвечает 200.
func Liveness(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
