package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// UserRepository хранит операторов. Все методы работают только с активными пользователями.
type UserRepository interface {
	// Exists сообщает, есть ли активный пользователь с таким логином.
	Exists(username string) (bool, error)
	// VerifyPassword сверяет хэш пароля и возвращает пользователя либо ErrUserNotFound.
	VerifyPassword(username, passwordHash string) (User, error)
	// GetByUsername возвращает пользователя по логину.
	GetByUsername(username string) (User, error)
	// UpdatePasswordHash заменяет хэш пароля.
	UpdatePasswordHash(userID int64, passwordHash string) error
}

// ClientRepository хранит клиентов. Клиенты после создания не изменяются.
type ClientRepository interface {
	// Create сохраняет только заполненные поля и возвращает присвоенный идентификатор.
	Create(client Client) (int64, error)
	Get(id int64) (Client, error)
	// List возвращает клиентов указанного типа; пустой тип означает всех.
	List(clientType ClientType) ([]Client, error)
	// Search ищет подстроку в названии, ФИО, ИНН и телефоне.
	Search(term string, clientType ClientType) ([]Client, error)
}

// ServiceRepository хранит каталог услуг.
type ServiceRepository interface {
	// ListActive возвращает активные услуги, отсортированные по названию.
	ListActive() ([]Service, error)
	Get(id int64) (Service, error)
	Create(service Service) (int64, error)
	UpdatePrice(id int64, price decimal.Decimal) error
	SetActive(id int64, active bool) error
}

// OrderFilter ограничивает выборку списка заказов. Пустые поля не фильтруют.
type OrderFilter struct {
	Status     OrderStatus
	DateFrom   *time.Time
	DateTo     *time.Time
	VesselCode string
}

// OrderSummary описывает строку списка заказов.
type OrderSummary struct {
	ID            int64
	VesselCode    string
	ClientName    string
	OrderDate     time.Time
	Status        OrderStatus
	TotalAmount   decimal.Decimal
	CreatedByName string
	CreatedAt     time.Time
}

// ReportRow — строка отчёта: один заказ с перечнем услуг.
type ReportRow struct {
	VesselCode    string
	OrderDate     time.Time
	TotalAmount   decimal.Decimal
	Status        OrderStatus
	ClientName    string
	ClientType    ClientType
	INN           string
	ServicesNames string
	ServicesCount int
}

// OrderRepository хранит заказы и их позиции.
type OrderRepository interface {
	// LastID возвращает максимальный идентификатор заказа или 0.
	LastID() (int64, error)
	VesselCodeExists(code string) (bool, error)
	// Create сохраняет заказ и позиции одной транзакцией.
	// Дубликат кода сосуда возвращает ErrVesselCodeExists.
	Create(order *Order) (int64, error)
	// Get возвращает заказ с позициями, именем клиента и автора.
	Get(id int64) (*Order, error)
	// List возвращает заказы по фильтру: сначала новые по дате, затем по id.
	List(filter OrderFilter) ([]OrderSummary, error)
	// UpdateStatus меняет статус; завершение фиксирует completed_at той же записью.
	UpdateStatus(id int64, status OrderStatus, at time.Time) error
	// Report группирует заказы за период [from, to] по дате заказа.
	Report(from, to time.Time) ([]ReportRow, error)
}
