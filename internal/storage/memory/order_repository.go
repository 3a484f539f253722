package memory

import (
	"sort"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/labqc/internal/domain"
)

type orderRepository struct {
	store *Store
}

// cloneOrder копирует заказ вместе с позициями, чтобы вызывающий код не мог
// изменить сохранённое состояние.
func cloneOrder(o *domain.Order) *domain.Order {
	cp := *o
	cp.LoadItems(o.Items())
	if o.CompletedAt != nil {
		at := *o.CompletedAt
		cp.CompletedAt = &at
	}
	return &cp
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (r *orderRepository) LastID() (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var last int64
	for id := range r.store.orders {
		if id > last {
			last = id
		}
	}
	return last, nil
}

func (r *orderRepository) VesselCodeExists(code string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.vesselCodeTaken(code), nil
}

func (r *orderRepository) vesselCodeTaken(code string) bool {
	for _, o := range r.store.orders {
		if o.VesselCode == code {
			return true
		}
	}
	return false
}

// Create проверяет ссылки и уникальность кода под одной блокировкой, поэтому
// из двух конкурентных вставок с одним кодом успешна ровно одна.
func (r *orderRepository) Create(order *domain.Order) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.vesselCodeTaken(order.VesselCode) {
		return 0, domain.ErrVesselCodeExists
	}
	if _, ok := r.store.clients[order.ClientID]; !ok {
		return 0, domain.ErrReferenceViolation
	}
	if _, ok := r.store.users[order.CreatedBy]; !ok {
		return 0, domain.ErrReferenceViolation
	}
	for _, item := range order.Items() {
		if _, ok := r.store.services[item.ServiceID]; !ok {
			return 0, domain.ErrReferenceViolation
		}
	}

	stored := cloneOrder(order)
	r.store.lastOrderID++
	stored.ID = r.store.lastOrderID
	stored.CreatedAt = r.store.now()
	stored.OrderDate = dateOnly(stored.OrderDate)
	if stored.Status == "" {
		stored.Status = domain.OrderStatusNew
	}
	r.store.orders[stored.ID] = stored
	return stored.ID, nil
}

func (r *orderRepository) Get(id int64) (*domain.Order, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	stored, ok := r.store.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	out := cloneOrder(stored)
	out.ClientName = r.clientName(out.ClientID)
	out.CreatedByName = r.userName(out.CreatedBy)
	return out, nil
}

func (r *orderRepository) List(filter domain.OrderFilter) ([]domain.OrderSummary, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	code := strings.TrimSpace(filter.VesselCode)
	out := make([]domain.OrderSummary, 0)
	for _, o := range r.store.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.DateFrom != nil && o.OrderDate.Before(dateOnly(*filter.DateFrom)) {
			continue
		}
		if filter.DateTo != nil && o.OrderDate.After(dateOnly(*filter.DateTo)) {
			continue
		}
		if code != "" && !strings.Contains(o.VesselCode, code) {
			continue
		}
		out = append(out, domain.OrderSummary{
			ID:            o.ID,
			VesselCode:    o.VesselCode,
			ClientName:    r.clientName(o.ClientID),
			OrderDate:     o.OrderDate,
			Status:        o.Status,
			TotalAmount:   o.TotalAmount(),
			CreatedByName: r.userName(o.CreatedBy),
			CreatedAt:     o.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OrderDate.Equal(out[j].OrderDate) {
			return out[i].OrderDate.After(out[j].OrderDate)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *orderRepository) UpdateStatus(id int64, status domain.OrderStatus, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, ok := r.store.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	return stored.ApplyStatus(status, at)
}

func (r *orderRepository) Report(from, to time.Time) ([]domain.ReportRow, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	from, to = dateOnly(from), dateOnly(to)
	rows := make([]domain.ReportRow, 0)
	for _, o := range r.store.orders {
		if o.OrderDate.Before(from) || o.OrderDate.After(to) {
			continue
		}
		items := o.Items()
		sort.Slice(items, func(i, j int) bool { return items[i].ServiceID < items[j].ServiceID })
		names := make([]string, 0, len(items))
		for _, item := range items {
			names = append(names, item.ServiceName)
		}

		row := domain.ReportRow{
			VesselCode:    o.VesselCode,
			OrderDate:     o.OrderDate,
			TotalAmount:   o.TotalAmount(),
			Status:        o.Status,
			ServicesNames: strings.Join(names, ", "),
			ServicesCount: len(items),
		}
		if c, ok := r.store.clients[o.ClientID]; ok {
			row.ClientName = c.DisplayName()
			row.ClientType = c.Type
			row.INN = c.INN
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].OrderDate.Equal(rows[j].OrderDate) {
			return rows[i].OrderDate.Before(rows[j].OrderDate)
		}
		return rows[i].VesselCode < rows[j].VesselCode
	})
	return rows, nil
}

func (r *orderRepository) clientName(id int64) string {
	if c, ok := r.store.clients[id]; ok {
		return c.DisplayName()
	}
	return ""
}

func (r *orderRepository) userName(id int64) string {
	if u, ok := r.store.users[id]; ok {
		return u.user.FullName
	}
	return ""
}

var _ domain.OrderRepository = (*orderRepository)(nil)
