package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound — базовая ошибка промаха при поиске записи.
	ErrNotFound = errors.New("record not found")
	// ErrUserNotFound возвращается, если активный пользователь не найден.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)
	// ErrClientNotFound возвращается, если клиент не найден.
	ErrClientNotFound = fmt.Errorf("%w: client", ErrNotFound)
	// ErrServiceNotFound возвращается, если услуга не найдена в каталоге.
	ErrServiceNotFound = fmt.Errorf("%w: service", ErrNotFound)
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = fmt.Errorf("%w: order", ErrNotFound)

	// ErrConstraintViolation — базовая ошибка нарушения ограничений хранилища
	// (уникальность, внешние ключи). Вызывающий код может предложить повтор или смену ключа.
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrVesselCodeExists — код сосуда уже занят другим заказом.
	ErrVesselCodeExists = fmt.Errorf("%w: vessel code already exists", ErrConstraintViolation)
	// ErrClientINNExists — юридическое лицо с таким ИНН уже зарегистрировано.
	ErrClientINNExists = fmt.Errorf("%w: legal client with this INN already exists", ErrConstraintViolation)
	// ErrClientPassportExists — физическое лицо с таким паспортом уже зарегистрировано.
	ErrClientPassportExists = fmt.Errorf("%w: individual client with this passport already exists", ErrConstraintViolation)
	// ErrReferenceViolation — ссылка на несуществующего клиента, пользователя или услугу.
	ErrReferenceViolation = fmt.Errorf("%w: referenced record does not exist", ErrConstraintViolation)

	// ErrOrderNotEditable — позиции заказа в статусе completed/cancelled менять нельзя.
	ErrOrderNotEditable = errors.New("order is not editable in its current status")
	// ErrItemQtyInvalid — количество позиции меньше единицы.
	ErrItemQtyInvalid = errors.New("item quantity must be at least 1")
	// ErrItemPriceInvalid — отрицательная цена позиции.
	ErrItemPriceInvalid = errors.New("item price must be non-negative")
	// ErrStatusInvalid — неизвестный статус заказа.
	ErrStatusInvalid = errors.New("unknown order status")
	// ErrOrderCannotComplete — заказ нельзя завершить (не редактируемый или без услуг).
	ErrOrderCannotComplete = errors.New("order cannot be completed")
	// ErrOrderCannotCancel — заказ уже закрыт и не может быть отменён.
	ErrOrderCannotCancel = errors.New("order cannot be cancelled")
	// ErrClientTypeInvalid — тип клиента не указан или неизвестен.
	ErrClientTypeInvalid = errors.New("unknown client type")
)

// IsNotFound проверяет, является ли ошибка промахом поиска.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConstraintViolation проверяет, нарушено ли ограничение хранилища.
func IsConstraintViolation(err error) bool {
	return errors.Is(err, ErrConstraintViolation)
}
