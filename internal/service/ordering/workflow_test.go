package ordering_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/vladislavdragonenkov/labqc/internal/access"
	"github.com/vladislavdragonenkov/labqc/internal/domain"
	"github.com/vladislavdragonenkov/labqc/internal/service/ordering"
	"github.com/vladislavdragonenkov/labqc/internal/storage"
	"github.com/vladislavdragonenkov/labqc/internal/storage/memory"
	"github.com/vladislavdragonenkov/labqc/internal/validation"
)

type fakeRecorder struct {
	mu        sync.Mutex
	submitted int
	failures  int
	conflicts int
	statuses  []string
}

func (r *fakeRecorder) RecordOrderSubmitted(time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submitted++
}

func (r *fakeRecorder) RecordSubmitFailure() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures++
}

func (r *fakeRecorder) RecordVesselConflict() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conflicts++
}

func (r *fakeRecorder) RecordStatusChange(status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, status)
}

// racingOrders вставляет конкурирующий заказ с тем же кодом перед первой вставкой.
type racingOrders struct {
	domain.OrderRepository
	once sync.Once
}

func (r *racingOrders) Create(order *domain.Order) (int64, error) {
	r.once.Do(func() {
		rival := domain.NewOrder(order.VesselCode, order.ClientID, order.CreatedBy, order.OrderDate)
		rival.LoadItems(order.Items())
		_, _ = r.OrderRepository.Create(rival)
	})
	return r.OrderRepository.Create(order)
}

// takenOrders всегда сообщает о занятом коде.
type takenOrders struct {
	domain.OrderRepository
}

func (takenOrders) Create(*domain.Order) (int64, error) {
	return 0, domain.ErrVesselCodeExists
}

type WorkflowSuite struct {
	suite.Suite
	store    *memory.Store
	recorder *fakeRecorder
	sleeps   []time.Duration
	manager  *access.Session
	lab      *access.Session
	clientID int64
}

func (s *WorkflowSuite) SetupTest() {
	s.store = memory.NewStore()
	s.Require().NoError(s.store.Seed(storage.DefaultSeed()))
	s.recorder = &fakeRecorder{}
	s.sleeps = nil

	s.manager = access.NewSession(s.store.Users(), nil)
	_, err := s.manager.Login("manager1", storage.DefaultPassword)
	s.Require().NoError(err)
	s.lab = access.NewSession(s.store.Users(), nil)
	_, err = s.lab.Login("lab1", storage.DefaultPassword)
	s.Require().NoError(err)

	s.clientID, err = s.store.Clients().Create(domain.Client{
		Type:        domain.ClientTypeLegal,
		CompanyName: "Acme LLC",
		INN:         "1234567890",
		Phone:       "79123456789",
	})
	s.Require().NoError(err)
}

func (s *WorkflowSuite) workflow(orders domain.OrderRepository) *ordering.Workflow {
	if orders == nil {
		orders = s.store.Orders()
	}
	return ordering.NewWorkflow(orders, s.store.Services(), s.store.Clients(), nil,
		ordering.WithRecorder(s.recorder),
		ordering.WithSleep(func(d time.Duration) { s.sleeps = append(s.sleeps, d) }),
	)
}

func (s *WorkflowSuite) draft(w *ordering.Workflow, serviceIDs ...int64) *domain.Order {
	order, err := w.NewDraft(s.manager, s.clientID, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	s.Require().NoError(err)
	for _, id := range serviceIDs {
		s.Require().NoError(w.AddService(order, id, 1))
	}
	return order
}

func (s *WorkflowSuite) TestDraftUsesNextVesselCode() {
	w := s.workflow(nil)

	order := s.draft(w)
	s.Equal("VS000001", order.VesselCode)
	s.Equal(domain.OrderStatusNew, order.Status)

	user, _ := s.manager.CurrentUser()
	s.Equal(user.ID, order.CreatedBy)
}

func (s *WorkflowSuite) TestAddServiceSnapshotsCatalogPrice() {
	w := s.workflow(nil)
	order := s.draft(w)

	s.Require().NoError(w.AddService(order, 1, 2))
	s.Require().NoError(s.store.Services().UpdatePrice(1, decimal.NewFromInt(99999)))
	s.Require().NoError(w.AddService(order, 1, 1))

	item, ok := order.Item(1)
	s.Require().True(ok)
	s.Equal(3, item.Quantity)
	s.True(item.UnitPrice.Equal(decimal.NewFromInt(15000)), "price is fixed at first add")
	s.Equal("Химический анализ состава", item.ServiceName)

	s.Require().NoError(s.store.Services().SetActive(2, false))
	s.ErrorIs(w.AddService(order, 2, 1), ordering.ErrServiceInactive)
	s.ErrorIs(w.AddService(order, 404, 1), domain.ErrServiceNotFound)
}

func (s *WorkflowSuite) TestSubmitPersistsOrder() {
	w := s.workflow(nil)
	order := s.draft(w, 1, 2)

	id, err := w.Submit(s.manager, order)
	s.Require().NoError(err)
	s.Equal(id, order.ID)
	s.Equal(1, s.recorder.submitted)

	stored, err := w.Details(s.lab, id)
	s.Require().NoError(err)
	s.True(stored.TotalAmount().Equal(decimal.NewFromInt(40000)))
	s.Equal("Acme LLC", stored.ClientName)

	next, err := w.NextVesselCode()
	s.Require().NoError(err)
	s.Equal("VS000002", next)
	s.ErrorIs(w.CheckVesselCode("VS000001"), domain.ErrVesselCodeExists)
	s.NoError(w.CheckVesselCode("VS000002"))
	s.Equal("vessel code must contain at least 3 characters", validation.Message(w.CheckVesselCode("V1")))
}

func (s *WorkflowSuite) TestSubmitValidatesBeforeStorage() {
	w := s.workflow(nil)
	order := s.draft(w)

	_, err := w.Submit(s.manager, order)
	s.Equal("add at least one service", validation.Message(err))

	order = domain.NewOrder("VS000001", 999, 0, time.Now())
	s.Require().NoError(order.AddItem(1, "X", "", decimal.NewFromInt(10), 1))
	_, err = w.Submit(s.manager, order)
	s.ErrorIs(err, domain.ErrClientNotFound)
	s.Zero(s.recorder.submitted)
}

func (s *WorkflowSuite) TestSubmitRetriesGeneratedCodeAfterRace() {
	w := s.workflow(&racingOrders{OrderRepository: s.store.Orders()})
	order := s.draft(w, 1)
	s.Equal("VS000001", order.VesselCode)

	id, err := w.Submit(s.manager, order)
	s.Require().NoError(err)
	s.Equal("VS000002", order.VesselCode)
	s.Equal(int64(2), id)
	s.Equal(1, s.recorder.conflicts)
	s.Len(s.sleeps, 1)

	list, err := w.List(s.lab, domain.OrderFilter{})
	s.Require().NoError(err)
	s.Len(list, 2)
	s.NotEqual(list[0].VesselCode, list[1].VesselCode)
}

func (s *WorkflowSuite) TestSubmitSkipsCodeTakenManually() {
	w := s.workflow(nil)

	manual := domain.NewOrder("VS000002", s.clientID, 0, time.Now())
	s.Require().NoError(w.AddService(manual, 1, 1))
	_, err := w.Submit(s.manager, manual)
	s.Require().NoError(err)

	order := s.draft(w, 1)
	s.Equal("VS000002", order.VesselCode)

	_, err = w.Submit(s.manager, order)
	s.Require().NoError(err)
	s.Equal("VS000003", order.VesselCode)
}

func (s *WorkflowSuite) TestSubmitManualCodeCollisionIsReturned() {
	w := s.workflow(nil)

	first := domain.NewOrder("LAB-001", s.clientID, 0, time.Now())
	s.Require().NoError(w.AddService(first, 1, 1))
	_, err := w.Submit(s.manager, first)
	s.Require().NoError(err)

	second := domain.NewOrder("LAB-001", s.clientID, 0, time.Now())
	s.Require().NoError(w.AddService(second, 2, 1))
	_, err = w.Submit(s.manager, second)
	s.ErrorIs(err, domain.ErrVesselCodeExists)
	s.True(domain.IsConstraintViolation(err))
	s.Equal("LAB-001", second.VesselCode)
	s.Empty(s.sleeps)
}

func (s *WorkflowSuite) TestSubmitManualCodeInGeneratedFormatIsNotReplaced() {
	w := s.workflow(nil)

	first := s.draft(w, 1)
	_, err := w.Submit(s.manager, first)
	s.Require().NoError(err)

	second := s.draft(w, 2)
	second.SetVesselCode(" VS000001 ")
	s.False(second.VesselCodeGenerated())

	_, err = w.Submit(s.manager, second)
	s.ErrorIs(err, domain.ErrVesselCodeExists)
	s.Equal("VS000001", second.VesselCode)
	s.Zero(second.ID)
	s.Empty(s.sleeps)
	s.Equal(1, s.recorder.conflicts)
}

func (s *WorkflowSuite) TestSubmitRejectsPersistedOrder() {
	w := s.workflow(nil)
	order := s.draft(w, 1)

	id, err := w.Submit(s.manager, order)
	s.Require().NoError(err)

	_, err = w.Submit(s.manager, order)
	s.ErrorIs(err, ordering.ErrOrderAlreadySubmitted)
	s.Equal(id, order.ID)
	s.Equal("VS000001", order.VesselCode)
	s.Equal(1, s.recorder.submitted)

	list, err := w.List(s.lab, domain.OrderFilter{})
	s.Require().NoError(err)
	s.Len(list, 1)
}

func (s *WorkflowSuite) TestSubmitGivesUpAfterMaxAttempts() {
	w := ordering.NewWorkflow(takenOrders{OrderRepository: s.store.Orders()}, s.store.Services(), s.store.Clients(), nil,
		ordering.WithRecorder(s.recorder),
		ordering.WithSleep(func(d time.Duration) { s.sleeps = append(s.sleeps, d) }),
		ordering.WithRetry(ordering.RetryConfig{
			MaxAttempts:   4,
			InitialDelay:  10 * time.Millisecond,
			MaxDelay:      25 * time.Millisecond,
			BackoffFactor: 2,
		}),
	)
	order := s.draft(w, 1)

	_, err := w.Submit(s.manager, order)
	s.ErrorIs(err, domain.ErrVesselCodeExists)
	s.Equal("VS000001", order.VesselCode)
	s.True(order.VesselCodeGenerated())
	s.Zero(order.ID)
	s.Equal(4, s.recorder.conflicts)
	s.Equal(1, s.recorder.failures)
	s.Equal([]time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 25 * time.Millisecond}, s.sleeps)
}

func (s *WorkflowSuite) TestChangeStatusGuards() {
	w := s.workflow(nil)
	order := s.draft(w, 1)
	id, err := w.Submit(s.manager, order)
	s.Require().NoError(err)

	s.ErrorIs(w.ChangeStatus(s.manager, id, domain.OrderStatusInProgress), access.ErrPermissionDenied)

	s.Require().NoError(w.ChangeStatus(s.lab, id, domain.OrderStatusInProgress))
	s.Require().NoError(w.ChangeStatus(s.lab, id, domain.OrderStatusCompleted))

	stored, err := w.Details(s.lab, id)
	s.Require().NoError(err)
	s.NotNil(stored.CompletedAt)

	s.ErrorIs(w.ChangeStatus(s.lab, id, domain.OrderStatusCancelled), domain.ErrOrderCannotCancel)
	s.ErrorIs(w.ChangeStatus(s.lab, id, domain.OrderStatusCompleted), domain.ErrOrderCannotComplete)
	s.ErrorIs(w.ChangeStatus(s.lab, id, "archived"), domain.ErrStatusInvalid)
	s.ErrorIs(w.ChangeStatus(s.lab, 404, domain.OrderStatusCancelled), domain.ErrOrderNotFound)
	s.Equal([]string{"in_progress", "completed"}, s.recorder.statuses)
}

func (s *WorkflowSuite) TestAccessIsEnforced() {
	w := s.workflow(nil)
	anonymous := access.NewSession(s.store.Users(), nil)

	_, err := w.NewDraft(anonymous, s.clientID, time.Now())
	s.ErrorIs(err, access.ErrNotAuthenticated)

	_, err = w.List(s.manager, domain.OrderFilter{})
	s.ErrorIs(err, access.ErrPermissionDenied)

	_, err = w.Details(s.manager, 1)
	s.True(errors.Is(err, access.ErrPermissionDenied))
}

func TestWorkflowSuite(t *testing.T) {
	suite.Run(t, new(WorkflowSuite))
}
