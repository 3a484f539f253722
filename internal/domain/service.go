package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/labqc/internal/validation"
)

// Service — позиция каталога лабораторных услуг.
type Service struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	IsActive    bool
	CreatedAt   time.Time
}

// Validate проверяет название и цену услуги.
func (s Service) Validate() error {
	if err := validation.ServiceName(s.Name); err != nil {
		return err
	}
	if !s.Price.IsPositive() {
		return &validation.Error{Field: "price", Message: "price must be greater than 0"}
	}
	return nil
}

// PriceDisplay форматирует цену для таблиц.
func (s Service) PriceDisplay() string {
	return FormatMoney(s.Price)
}

// FormatMoney форматирует сумму с двумя знаками после запятой.
func FormatMoney(amount decimal.Decimal) string {
	return amount.StringFixed(2) + " руб."
}
