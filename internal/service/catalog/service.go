// Package catalog управляет каталогом лабораторных услуг.
package catalog

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/labqc/internal/access"
	"github.com/vladislavdragonenkov/labqc/internal/domain"
	"github.com/vladislavdragonenkov/labqc/internal/validation"
)

// Service — сценарии каталога. Изменения каталога не затрагивают цены в
// уже оформленных заказах.
type Service struct {
	services domain.ServiceRepository
	logger   *log.Entry
}

// NewService создаёт сервис каталога.
func NewService(services domain.ServiceRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "catalog")
	}
	return &Service{services: services, logger: logger}
}

// Active возвращает активные услуги для подбора в заказ.
func (s *Service) Active(session *access.Session) ([]domain.Service, error) {
	if _, err := session.Authorize(access.PermCreateOrders); err != nil {
		return nil, err
	}
	return s.services.ListActive()
}

// Create добавляет услугу в каталог.
func (s *Service) Create(session *access.Session, name, description string, price decimal.Decimal) (int64, error) {
	user, err := session.Authorize(access.PermManageServices)
	if err != nil {
		return 0, err
	}
	svc := domain.Service{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Price:       price,
		IsActive:    true,
	}
	if err := svc.Validate(); err != nil {
		return 0, err
	}

	id, err := s.services.Create(svc)
	if err != nil {
		return 0, fmt.Errorf("create service: %w", err)
	}
	s.logger.WithFields(log.Fields{
		"service_id": id,
		"price":      svc.Price.StringFixed(2),
		"username":   user.Username,
	}).Info("service created")
	return id, nil
}

// UpdatePrice меняет цену услуги для будущих заказов.
func (s *Service) UpdatePrice(session *access.Session, id int64, price decimal.Decimal) error {
	user, err := session.Authorize(access.PermManageServices)
	if err != nil {
		return err
	}
	if !price.IsPositive() {
		return &validation.Error{Field: "price", Message: "price must be greater than 0"}
	}
	if err := s.services.UpdatePrice(id, price); err != nil {
		return fmt.Errorf("update service price: %w", err)
	}
	s.logger.WithFields(log.Fields{
		"service_id": id,
		"price":      price.StringFixed(2),
		"username":   user.Username,
	}).Info("service price updated")
	return nil
}

// Deactivate снимает услугу с продажи.
func (s *Service) Deactivate(session *access.Session, id int64) error {
	return s.setActive(session, id, false)
}

// Activate возвращает услугу в каталог.
func (s *Service) Activate(session *access.Session, id int64) error {
	return s.setActive(session, id, true)
}

func (s *Service) setActive(session *access.Session, id int64, active bool) error {
	user, err := session.Authorize(access.PermManageServices)
	if err != nil {
		return err
	}
	if err := s.services.SetActive(id, active); err != nil {
		return fmt.Errorf("set service active: %w", err)
	}
	s.logger.WithFields(log.Fields{
		"service_id": id,
		"active":     active,
		"username":   user.Username,
	}).Info("service availability changed")
	return nil
}
