// Package ordering реализует сценарии работы с заказами: черновик, подбор
// услуг, отправка с повтором кода сосуда, смена статуса и просмотр.
package ordering

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/labqc/internal/access"
	"github.com/vladislavdragonenkov/labqc/internal/domain"
	"github.com/vladislavdragonenkov/labqc/internal/validation"
)

// ErrServiceInactive — услуга снята с продажи и не может быть добавлена в заказ.
var ErrServiceInactive = errors.New("service is not active")

// ErrOrderAlreadySubmitted — заказ уже сохранён и повторно не отправляется.
var ErrOrderAlreadySubmitted = errors.New("order is already submitted")

// Recorder принимает метрики сценариев заказа.
type Recorder interface {
	RecordOrderSubmitted(duration time.Duration)
	RecordSubmitFailure()
	RecordVesselConflict()
	RecordStatusChange(status string)
}

type noopRecorder struct{}

func (noopRecorder) RecordOrderSubmitted(time.Duration) {}
func (noopRecorder) RecordSubmitFailure()               {}
func (noopRecorder) RecordVesselConflict()              {}
func (noopRecorder) RecordStatusChange(string)          {}

// Workflow связывает агрегат заказа с хранилищем и политикой доступа.
type Workflow struct {
	orders   domain.OrderRepository
	services domain.ServiceRepository
	clients  domain.ClientRepository
	logger   *log.Entry
	metrics  Recorder
	retry    RetryConfig
	now      func() time.Time
	sleep    func(time.Duration)
}

// Option настраивает Workflow.
type Option func(*Workflow)

// WithRecorder подключает метрики.
func WithRecorder(r Recorder) Option {
	return func(w *Workflow) {
		if r != nil {
			w.metrics = r
		}
	}
}

// WithRetry задаёт политику повтора при коллизии кода.
func WithRetry(cfg RetryConfig) Option {
	return func(w *Workflow) { w.retry = cfg.normalized() }
}

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(w *Workflow) { w.now = now }
}

// WithSleep подменяет ожидание между попытками.
func WithSleep(sleep func(time.Duration)) Option {
	return func(w *Workflow) { w.sleep = sleep }
}

// NewWorkflow создаёт сценарий поверх репозиториев.
func NewWorkflow(
	orders domain.OrderRepository,
	services domain.ServiceRepository,
	clients domain.ClientRepository,
	logger *log.Entry,
	opts ...Option,
) *Workflow {
	if logger == nil {
		logger = log.New().WithField("component", "ordering")
	}
	w := &Workflow{
		orders:   orders,
		services: services,
		clients:  clients,
		logger:   logger,
		metrics:  noopRecorder{},
		retry:    DefaultRetryConfig(),
		now:      func() time.Time { return time.Now().UTC() },
		sleep:    time.Sleep,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// NextVesselCode выдаёт код для нового черновика по последнему id заказа.
func (w *Workflow) NextVesselCode() (string, error) {
	last, err := w.orders.LastID()
	if err != nil {
		return "", fmt.Errorf("read last order id: %w", err)
	}
	return domain.NextVesselCode(last), nil
}

// CheckVesselCode проверяет формат и занятость кода. Окончательную
// уникальность гарантирует ограничение хранилища при вставке.
func (w *Workflow) CheckVesselCode(code string) error {
	if err := validation.VesselCode(code); err != nil {
		return err
	}
	exists, err := w.orders.VesselCodeExists(code)
	if err != nil {
		return fmt.Errorf("check vessel code: %w", err)
	}
	if exists {
		return domain.ErrVesselCodeExists
	}
	return nil
}

// nextCodeAfter выдаёт код больше текущего и больше последнего id, чтобы
// повтор не упирался в тот же занятый код.
func (w *Workflow) nextCodeAfter(current string) (string, error) {
	last, err := w.orders.LastID()
	if err != nil {
		return "", fmt.Errorf("read last order id: %w", err)
	}
	if n, err := strconv.ParseInt(strings.TrimPrefix(current, domain.VesselCodePrefix), 10, 64); err == nil && n > last {
		last = n
	}
	return domain.NextVesselCode(last), nil
}

// NewDraft создаёт пустой заказ с автоматическим кодом сосуда от имени текущего пользователя.
func (w *Workflow) NewDraft(session *access.Session, clientID int64, orderDate time.Time) (*domain.Order, error) {
	user, err := session.Authorize(access.PermCreateOrders)
	if err != nil {
		return nil, err
	}
	code, err := w.NextVesselCode()
	if err != nil {
		return nil, err
	}
	if orderDate.IsZero() {
		orderDate = w.now()
	}
	order := domain.NewOrder("", clientID, user.ID, orderDate)
	order.AssignGeneratedVesselCode(code)
	return order, nil
}

// AddService добавляет услугу каталога в заказ. Название, описание и цена
// копируются в позицию и дальше из каталога не перечитываются.
func (w *Workflow) AddService(order *domain.Order, serviceID int64, quantity int) error {
	svc, err := w.services.Get(serviceID)
	if err != nil {
		return fmt.Errorf("load service %d: %w", serviceID, err)
	}
	if !svc.IsActive {
		return fmt.Errorf("%w: %s", ErrServiceInactive, svc.Name)
	}
	return order.AddItem(svc.ID, svc.Name, svc.Description, svc.Price, quantity)
}

// Submit проверяет и сохраняет заказ. Коллизия автоматически выданного кода
// приводит к выдаче нового кода и повтору с экспоненциальной задержкой;
// коллизия введённого вручную кода возвращается вызывающему. Если сохранить
// не удалось, заказу возвращается исходный код.
func (w *Workflow) Submit(session *access.Session, order *domain.Order) (int64, error) {
	user, err := session.Authorize(access.PermCreateOrders)
	if err != nil {
		return 0, err
	}
	if order.ID != 0 {
		return 0, fmt.Errorf("%w: id %d", ErrOrderAlreadySubmitted, order.ID)
	}
	if order.CreatedBy == 0 {
		order.CreatedBy = user.ID
	}
	if err := order.Validate(); err != nil {
		return 0, err
	}
	if _, err := w.clients.Get(order.ClientID); err != nil {
		return 0, fmt.Errorf("load client %d: %w", order.ClientID, err)
	}

	started := w.now()
	generated := order.VesselCodeGenerated()
	submitted := order.VesselCode
	delay := w.retry.InitialDelay
	restore := func() {
		if generated && order.VesselCode != submitted {
			order.AssignGeneratedVesselCode(submitted)
		}
	}

	for attempt := 1; ; attempt++ {
		id, err := w.orders.Create(order)
		if err == nil {
			order.ID = id
			w.metrics.RecordOrderSubmitted(w.now().Sub(started))
			entry := w.logger.WithFields(log.Fields{
				"order_id":    id,
				"vessel_code": order.VesselCode,
				"username":    user.Username,
			})
			if attempt > 1 {
				entry = entry.WithField("attempt", attempt)
			}
			entry.Info("order submitted")
			return id, nil
		}

		if !errors.Is(err, domain.ErrVesselCodeExists) {
			w.metrics.RecordSubmitFailure()
			w.logger.WithError(err).WithField("vessel_code", order.VesselCode).Error("order submit failed")
			restore()
			return 0, fmt.Errorf("create order: %w", err)
		}

		w.metrics.RecordVesselConflict()
		if !generated || attempt >= w.retry.MaxAttempts {
			w.metrics.RecordSubmitFailure()
			w.logger.WithFields(log.Fields{
				"vessel_code": order.VesselCode,
				"attempt":     attempt,
			}).Warn("vessel code is already taken")
			restore()
			return 0, err
		}

		code, codeErr := w.nextCodeAfter(order.VesselCode)
		if codeErr != nil {
			w.metrics.RecordSubmitFailure()
			restore()
			return 0, codeErr
		}
		w.logger.WithFields(log.Fields{
			"vessel_code": order.VesselCode,
			"next_code":   code,
			"attempt":     attempt,
			"delay":       delay,
		}).Warn("vessel code collision, retrying with a new code")
		order.AssignGeneratedVesselCode(code)

		w.sleep(delay)
		delay = w.retry.nextDelay(delay)
	}
}

// ChangeStatus меняет статус заказа. Завершение требует хотя бы одной услуги,
// закрытый заказ нельзя ни завершить, ни отменить.
func (w *Workflow) ChangeStatus(session *access.Session, orderID int64, status domain.OrderStatus) error {
	user, err := session.Authorize(access.PermManageOrders)
	if err != nil {
		return err
	}
	if !status.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrStatusInvalid, status)
	}

	order, err := w.orders.Get(orderID)
	if err != nil {
		return fmt.Errorf("load order %d: %w", orderID, err)
	}
	switch status {
	case domain.OrderStatusCompleted:
		if !order.CanComplete() {
			return domain.ErrOrderCannotComplete
		}
	case domain.OrderStatusCancelled:
		if !order.CanCancel() {
			return domain.ErrOrderCannotCancel
		}
	}

	if err := w.orders.UpdateStatus(orderID, status, w.now()); err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	w.metrics.RecordStatusChange(string(status))
	w.logger.WithFields(log.Fields{
		"order_id": orderID,
		"from":     order.Status,
		"to":       status,
		"username": user.Username,
	}).Info("order status changed")
	return nil
}

// List возвращает заказы по фильтру.
func (w *Workflow) List(session *access.Session, filter domain.OrderFilter) ([]domain.OrderSummary, error) {
	if _, err := session.Authorize(access.PermViewOrders); err != nil {
		return nil, err
	}
	orders, err := w.orders.List(filter)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// Details возвращает заказ с позициями.
func (w *Workflow) Details(session *access.Session, orderID int64) (*domain.Order, error) {
	if _, err := session.Authorize(access.PermViewOrders); err != nil {
		return nil, err
	}
	order, err := w.orders.Get(orderID)
	if err != nil {
		return nil, fmt.Errorf("load order %d: %w", orderID, err)
	}
	return order, nil
}
