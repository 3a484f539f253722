package memory

import (
	"sync"
	"time"

	"github.com/vladislavdragonenkov/labqc/internal/domain"
	"github.com/vladislavdragonenkov/labqc/internal/storage"
)

type userRecord struct {
	user         domain.User
	passwordHash string
}

// Store — in-memory хранилище для локальной разработки и тестов. Все таблицы
// защищены одним мьютексом, поэтому многострочные записи атомарны.
// Ограничения уникальности и внешних ключей совпадают с postgres-схемой.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	users    map[int64]*userRecord
	clients  map[int64]domain.Client
	services map[int64]domain.Service
	orders   map[int64]*domain.Order

	lastUserID    int64
	lastClientID  int64
	lastServiceID int64
	lastOrderID   int64
}

// NewStore создаёт пустое хранилище.
func NewStore() *Store {
	return &Store{
		now:      func() time.Time { return time.Now().UTC() },
		users:    make(map[int64]*userRecord),
		clients:  make(map[int64]domain.Client),
		services: make(map[int64]domain.Service),
		orders:   make(map[int64]*domain.Order),
	}
}

// Seed заполняет пустые таблицы пользователей и услуг. Непустые таблицы не трогает.
func (s *Store) Seed(seed storage.Seed) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.users) == 0 {
		for _, u := range seed.Users {
			s.lastUserID++
			user := u.User
			user.ID = s.lastUserID
			s.users[user.ID] = &userRecord{user: user, passwordHash: u.PasswordHash}
		}
	}
	if len(s.services) == 0 {
		for _, svc := range seed.Services {
			s.lastServiceID++
			svc.ID = s.lastServiceID
			svc.CreatedAt = s.now()
			s.services[svc.ID] = svc
		}
	}
	return nil
}

// Ping всегда успешен; нужен проверке готовности.
func (s *Store) Ping() error {
	return nil
}

// Close ничего не освобождает.
func (s *Store) Close() error {
	return nil
}

// Users возвращает репозиторий пользователей.
func (s *Store) Users() domain.UserRepository {
	return &userRepository{store: s}
}

// Clients возвращает репозиторий клиентов.
func (s *Store) Clients() domain.ClientRepository {
	return &clientRepository{store: s}
}

// Services возвращает репозиторий каталога услуг.
func (s *Store) Services() domain.ServiceRepository {
	return &serviceRepository{store: s}
}

// Orders возвращает репозиторий заказов.
func (s *Store) Orders() domain.OrderRepository {
	return &orderRepository{store: s}
}
