package memory

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/labqc/internal/domain"
)

type serviceRepository struct {
	store *Store
}

func (r *serviceRepository) ListActive() ([]domain.Service, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]domain.Service, 0, len(r.store.services))
	for _, svc := range r.store.services {
		if svc.IsActive {
			out = append(out, svc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *serviceRepository) Get(id int64) (domain.Service, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	svc, ok := r.store.services[id]
	if !ok {
		return domain.Service{}, domain.ErrServiceNotFound
	}
	return svc, nil
}

func (r *serviceRepository) Create(service domain.Service) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.lastServiceID++
	service.ID = r.store.lastServiceID
	service.CreatedAt = r.store.now()
	r.store.services[service.ID] = service
	return service.ID, nil
}

func (r *serviceRepository) UpdatePrice(id int64, price decimal.Decimal) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	svc, ok := r.store.services[id]
	if !ok {
		return domain.ErrServiceNotFound
	}
	svc.Price = price
	r.store.services[id] = svc
	return nil
}

func (r *serviceRepository) SetActive(id int64, active bool) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	svc, ok := r.store.services[id]
	if !ok {
		return domain.ErrServiceNotFound
	}
	svc.IsActive = active
	r.store.services[id] = svc
	return nil
}

var _ domain.ServiceRepository = (*serviceRepository)(nil)
