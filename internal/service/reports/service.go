// Package reports строит отчёты по заказам за период и выгружает их в файлы.
package reports

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/labqc/internal/access"
	"github.com/vladislavdragonenkov/labqc/internal/domain"
	"github.com/vladislavdragonenkov/labqc/internal/export"
)

// ErrPeriodInvalid — начало периода позже его конца.
var ErrPeriodInvalid = errors.New("report period start is after its end")

// labelLayout используется в подписях отчёта.
const labelLayout = "02.01.2006"

// Recorder принимает метрики выгрузок.
type Recorder interface {
	RecordExport(format string)
}

type noopRecorder struct{}

func (noopRecorder) RecordExport(string) {}

// Report содержит агрегированные строки за период.
type Report struct {
	From        time.Time
	To          time.Time
	Rows        []domain.ReportRow
	TotalAmount decimal.Decimal
}

// OrdersCount возвращает число заказов в отчёте.
func (r Report) OrdersCount() int {
	return len(r.Rows)
}

// Label возвращает подпись периода для заголовка выгрузки.
func (r Report) Label() string {
	return fmt.Sprintf("Отчёт за период %s - %s",
		r.From.Format(labelLayout), r.To.Format(labelLayout))
}

// Table переводит отчёт в таблицу для экспортёров.
func (r Report) Table() export.Table {
	rows := make([][]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		rows = append(rows, []string{
			row.VesselCode,
			row.OrderDate.Format(labelLayout),
			row.ClientName,
			row.ClientType.Label(),
			row.INN,
			row.ServicesNames,
			strconv.Itoa(row.ServicesCount),
			row.TotalAmount.StringFixed(2),
			row.Status.Label(),
		})
	}
	return export.Table{
		Title: r.Label(),
		Headers: []string{
			"Код сосуда", "Дата заказа", "Клиент", "Тип клиента", "ИНН",
			"Услуги", "Кол-во услуг", "Сумма", "Статус",
		},
		Rows:    rows,
		Summary: fmt.Sprintf("Итого заказов: %d, сумма: %s", r.OrdersCount(), domain.FormatMoney(r.TotalAmount)),
	}
}

// Service формирует отчёты по данным хранилища.
type Service struct {
	orders    domain.OrderRepository
	exporters *export.Registry
	logger    *log.Entry
	metrics   Recorder
}

// Option настраивает Service.
type Option func(*Service)

// WithRecorder подключает метрики выгрузок.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.metrics = r
		}
	}
}

// WithExporters заменяет набор экспортёров по умолчанию.
func WithExporters(registry *export.Registry) Option {
	return func(s *Service) {
		if registry != nil {
			s.exporters = registry
		}
	}
}

// NewService создаёт сервис отчётов.
func NewService(orders domain.OrderRepository, logger *log.Entry, opts ...Option) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "reports")
	}
	s := &Service{
		orders:    orders,
		exporters: export.DefaultRegistry(),
		logger:    logger,
		metrics:   noopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate собирает отчёт за период [from, to] включительно.
func (s *Service) Generate(session *access.Session, from, to time.Time) (Report, error) {
	if _, err := session.Authorize(access.PermViewReports); err != nil {
		return Report{}, err
	}
	from, to = dateOnly(from), dateOnly(to)
	if from.After(to) {
		return Report{}, ErrPeriodInvalid
	}

	rows, err := s.orders.Report(from, to)
	if err != nil {
		s.logger.WithError(err).Error("failed to build report")
		return Report{}, fmt.Errorf("build report: %w", err)
	}

	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.TotalAmount)
	}
	return Report{From: from, To: to, Rows: rows, TotalAmount: total}, nil
}

// Supports сообщает, доступна ли выгрузка в формат.
func (s *Service) Supports(format export.Format) bool {
	return s.exporters.Supports(format)
}

// Formats возвращает доступные форматы выгрузки.
func (s *Service) Formats() []export.Format {
	return s.exporters.Formats()
}

// Export пишет отчёт в выбранном формате.
func (s *Service) Export(session *access.Session, report Report, format export.Format, w io.Writer) error {
	user, err := session.Authorize(access.PermViewReports)
	if err != nil {
		return err
	}
	if err := s.exporters.Export(format, w, report.Table()); err != nil {
		s.logger.WithError(err).WithField("format", format).Warn("report export failed")
		return err
	}

	s.metrics.RecordExport(string(format))
	s.logger.WithFields(log.Fields{
		"format":   format,
		"orders":   report.OrdersCount(),
		"username": user.Username,
	}).Info("report exported")
	return nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
