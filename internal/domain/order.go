package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/labqc/internal/validation"
)

// OrderStatus описывает жизненный цикл лабораторного заказа.
type OrderStatus string

const (
	// OrderStatusNew — заказ создан, работы не начаты.
	OrderStatusNew OrderStatus = "new"
	// OrderStatusInProgress — образцы приняты лабораторией.
	OrderStatusInProgress OrderStatus = "in_progress"
	// OrderStatusCompleted — испытания завершены.
	OrderStatusCompleted OrderStatus = "completed"
	// OrderStatusCancelled — заказ отменён.
	OrderStatusCancelled OrderStatus = "cancelled"
)

var orderStatusLabels = map[OrderStatus]string{
	OrderStatusNew:        "Новый",
	OrderStatusInProgress: "В работе",
	OrderStatusCompleted:  "Завершен",
	OrderStatusCancelled:  "Отменен",
}

// Valid сообщает, известен ли статус.
func (s OrderStatus) Valid() bool {
	_, ok := orderStatusLabels[s]
	return ok
}

// Label возвращает отображаемое название статуса.
func (s OrderStatus) Label() string {
	if label, ok := orderStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

// ParseOrderStatus разбирает статус из строки ввода.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	status := OrderStatus(strings.TrimSpace(raw))
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrStatusInvalid, raw)
	}
	return status, nil
}

// VesselCodePrefix и VesselCodeDigits задают формат автоматически выдаваемых кодов.
const (
	VesselCodePrefix = "VS"
	VesselCodeDigits = 6
)

var generatedVesselCode = regexp.MustCompile(`^` + VesselCodePrefix + `\d{6,}$`)

// NextVesselCode формирует код сосуда по последнему идентификатору заказа.
func NextVesselCode(lastOrderID int64) string {
	return fmt.Sprintf("%s%0*d", VesselCodePrefix, VesselCodeDigits, lastOrderID+1)
}

// IsGeneratedVesselCode сообщает, имеет ли код формат автоматически выданного.
func IsGeneratedVesselCode(code string) bool {
	return generatedVesselCode.MatchString(code)
}

// OrderItem — строка заказа. Название, описание и цена фиксируются в момент
// добавления и не перечитываются из каталога.
type OrderItem struct {
	ServiceID   int64
	ServiceName string
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// TotalPrice возвращает стоимость строки: цена × количество.
func (i OrderItem) TotalPrice() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order — агрегат заказа. Позиции и итоговая сумма доступны только через
// методы, поэтому сумма всегда равна сумме строк.
type Order struct {
	ID            int64
	VesselCode    string
	ClientID      int64
	ClientName    string
	OrderDate     time.Time
	Status        OrderStatus
	CreatedBy     int64
	CreatedByName string
	CreatedAt     time.Time
	CompletedAt   *time.Time

	items []OrderItem
	total decimal.Decimal

	// generatedCode хранит код, выданный системой; ручная правка VesselCode его не меняет.
	generatedCode string
}

// NewOrder создаёт пустой заказ в статусе new.
func NewOrder(vesselCode string, clientID, createdBy int64, orderDate time.Time) *Order {
	return &Order{
		VesselCode: vesselCode,
		ClientID:   clientID,
		CreatedBy:  createdBy,
		OrderDate:  orderDate,
		Status:     OrderStatusNew,
		total:      decimal.Zero,
	}
}

// AssignGeneratedVesselCode устанавливает код сосуда, выданный системой.
func (o *Order) AssignGeneratedVesselCode(code string) {
	o.VesselCode = code
	o.generatedCode = code
}

// SetVesselCode устанавливает код, введённый вручную.
func (o *Order) SetVesselCode(code string) {
	o.VesselCode = strings.TrimSpace(code)
	o.generatedCode = ""
}

// VesselCodeGenerated сообщает, что текущий код выдан системой, а не введён вручную.
func (o *Order) VesselCodeGenerated() bool {
	return o.generatedCode != "" && o.VesselCode == o.generatedCode
}

// Items возвращает копию позиций в порядке добавления.
func (o *Order) Items() []OrderItem {
	items := make([]OrderItem, len(o.items))
	copy(items, o.items)
	return items
}

// Item возвращает позицию по идентификатору услуги.
func (o *Order) Item(serviceID int64) (OrderItem, bool) {
	if idx := o.indexOf(serviceID); idx >= 0 {
		return o.items[idx], true
	}
	return OrderItem{}, false
}

// ItemsCount возвращает количество различных услуг в заказе.
func (o *Order) ItemsCount() int {
	return len(o.items)
}

// TotalAmount возвращает итоговую сумму заказа.
func (o *Order) TotalAmount() decimal.Decimal {
	return o.total
}

// CanEdit — позиции можно менять только в статусах new и in_progress.
// Пустой статус нулевого значения Order трактуется как new.
func (o *Order) CanEdit() bool {
	switch o.Status {
	case "", OrderStatusNew, OrderStatusInProgress:
		return true
	default:
		return false
	}
}

// CanComplete — завершить можно редактируемый заказ хотя бы с одной услугой.
func (o *Order) CanComplete() bool {
	return o.CanEdit() && len(o.items) > 0
}

// CanCancel — отменить можно только открытый заказ.
func (o *Order) CanCancel() bool {
	return o.CanEdit()
}

// AddItem добавляет услугу. Повторное добавление той же услуги увеличивает количество.
func (o *Order) AddItem(serviceID int64, name, description string, unitPrice decimal.Decimal, quantity int) error {
	if !o.CanEdit() {
		return ErrOrderNotEditable
	}
	if quantity < 1 {
		return ErrItemQtyInvalid
	}
	if unitPrice.IsNegative() {
		return ErrItemPriceInvalid
	}

	if idx := o.indexOf(serviceID); idx >= 0 {
		o.items[idx].Quantity += quantity
	} else {
		o.items = append(o.items, OrderItem{
			ServiceID:   serviceID,
			ServiceName: name,
			Description: description,
			Quantity:    quantity,
			UnitPrice:   unitPrice,
		})
	}
	o.recalculate()
	return nil
}

// RemoveItem удаляет услугу из заказа; отсутствие позиции не ошибка.
func (o *Order) RemoveItem(serviceID int64) error {
	if !o.CanEdit() {
		return ErrOrderNotEditable
	}
	if idx := o.indexOf(serviceID); idx >= 0 {
		o.items = append(o.items[:idx], o.items[idx+1:]...)
	}
	o.recalculate()
	return nil
}

// UpdateItemQuantity задаёт абсолютное количество; значение <= 0 удаляет позицию.
func (o *Order) UpdateItemQuantity(serviceID int64, quantity int) error {
	if !o.CanEdit() {
		return ErrOrderNotEditable
	}
	if quantity <= 0 {
		return o.RemoveItem(serviceID)
	}
	if idx := o.indexOf(serviceID); idx >= 0 {
		o.items[idx].Quantity = quantity
	}
	o.recalculate()
	return nil
}

// ClearItems удаляет все позиции и обнуляет сумму.
func (o *Order) ClearItems() error {
	if !o.CanEdit() {
		return ErrOrderNotEditable
	}
	o.items = nil
	o.recalculate()
	return nil
}

// LoadItems восстанавливает позиции сохранённого заказа без проверки статуса.
// Используется хранилищами при чтении; повторяющиеся услуги объединяются.
func (o *Order) LoadItems(items []OrderItem) {
	o.items = nil
	for _, item := range items {
		if idx := o.indexOf(item.ServiceID); idx >= 0 {
			o.items[idx].Quantity += item.Quantity
			continue
		}
		o.items = append(o.items, item)
	}
	o.recalculate()
}

// ApplyStatus выставляет статус; при завершении фиксирует время завершения.
func (o *Order) ApplyStatus(status OrderStatus, at time.Time) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrStatusInvalid, status)
	}
	o.Status = status
	if status == OrderStatusCompleted {
		completedAt := at
		o.CompletedAt = &completedAt
	}
	return nil
}

// Validate возвращает первое нарушенное правило в фиксированном порядке:
// код сосуда → формат кода → клиент → позиции → сумма.
func (o *Order) Validate() error {
	if strings.TrimSpace(o.VesselCode) == "" {
		return &validation.Error{Field: "vessel_code", Message: "vessel code is required"}
	}
	if err := validation.VesselCode(o.VesselCode); err != nil {
		return err
	}
	if o.ClientID <= 0 {
		return &validation.Error{Field: "client_id", Message: "client is not selected"}
	}
	if len(o.items) == 0 {
		return &validation.Error{Field: "items", Message: "add at least one service"}
	}
	if !o.total.IsPositive() {
		return &validation.Error{Field: "total_amount", Message: "order total must be greater than 0"}
	}
	return nil
}

func (o *Order) indexOf(serviceID int64) int {
	for i := range o.items {
		if o.items[i].ServiceID == serviceID {
			return i
		}
	}
	return -1
}

func (o *Order) recalculate() {
	total := decimal.Zero
	for _, item := range o.items {
		total = total.Add(item.TotalPrice())
	}
	o.total = total
}
