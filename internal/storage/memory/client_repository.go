package memory

import (
	"sort"
	"strings"

	"github.com/vladislavdragonenkov/labqc/internal/domain"
)

type clientRepository struct {
	store *Store
}

// Create сохраняет нормализованного клиента, проверяя уникальность ИНН и паспорта.
func (r *clientRepository) Create(client domain.Client) (int64, error) {
	if !client.Type.Valid() {
		return 0, domain.ErrClientTypeInvalid
	}
	c := client.Normalized()

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.clients {
		if existing.Type != c.Type {
			continue
		}
		if c.Type == domain.ClientTypeLegal && c.INN != "" && existing.INN == c.INN {
			return 0, domain.ErrClientINNExists
		}
		if c.Type == domain.ClientTypeIndividual && c.HasPassport() &&
			existing.PassportSeries == c.PassportSeries && existing.PassportNumber == c.PassportNumber {
			return 0, domain.ErrClientPassportExists
		}
	}

	r.store.lastClientID++
	c.ID = r.store.lastClientID
	c.CreatedAt = r.store.now()
	r.store.clients[c.ID] = c
	return c.ID, nil
}

func (r *clientRepository) Get(id int64) (domain.Client, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	c, ok := r.store.clients[id]
	if !ok {
		return domain.Client{}, domain.ErrClientNotFound
	}
	return c, nil
}

// List возвращает клиентов в порядке регистрации.
func (r *clientRepository) List(clientType domain.ClientType) ([]domain.Client, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]domain.Client, 0, len(r.store.clients))
	for _, c := range r.store.clients {
		if clientType != "" && c.Type != clientType {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Search ищет без учёта регистра; результат упорядочен по названию компании, затем по ФИО.
func (r *clientRepository) Search(term string, clientType domain.ClientType) ([]domain.Client, error) {
	needle := strings.ToLower(strings.TrimSpace(term))

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]domain.Client, 0)
	for _, c := range r.store.clients {
		if clientType != "" && c.Type != clientType {
			continue
		}
		if !matches(needle, c.CompanyName, c.FullName, c.INN, c.Phone) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CompanyName != out[j].CompanyName {
			return out[i].CompanyName < out[j].CompanyName
		}
		if out[i].FullName != out[j].FullName {
			return out[i].FullName < out[j].FullName
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func matches(needle string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

var _ domain.ClientRepository = (*clientRepository)(nil)
