// Package clients реализует регистрацию и поиск клиентов.
package clients

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/labqc/internal/access"
	"github.com/vladislavdragonenkov/labqc/internal/domain"
)

// Service реализует сценарии работы с клиентами.
type Service struct {
	clients domain.ClientRepository
	logger  *log.Entry
}

// NewService создаёт сервис клиентов.
func NewService(clients domain.ClientRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "clients")
	}
	return &Service{clients: clients, logger: logger}
}

// Register проверяет и сохраняет клиента. Ошибки валидации возвращаются до
// обращения к хранилищу, дубликаты ИНН и паспорта приходят из хранилища.
func (s *Service) Register(session *access.Session, client domain.Client) (int64, error) {
	user, err := session.Authorize(access.PermManageClients)
	if err != nil {
		return 0, err
	}
	client = client.Normalized()
	if err := client.Validate(); err != nil {
		return 0, err
	}

	id, err := s.clients.Create(client)
	if err != nil {
		if domain.IsConstraintViolation(err) {
			s.logger.WithFields(log.Fields{
				"client_type": client.Type,
				"username":    user.Username,
			}).WithError(err).Warn("duplicate client")
			return 0, err
		}
		return 0, fmt.Errorf("create client: %w", err)
	}

	s.logger.WithFields(log.Fields{
		"client_id":   id,
		"client_type": client.Type,
		"username":    user.Username,
	}).Info("client registered")
	return id, nil
}

// Get возвращает клиента по идентификатору.
func (s *Service) Get(session *access.Session, id int64) (domain.Client, error) {
	if _, err := session.Authorize(access.PermManageClients); err != nil {
		return domain.Client{}, err
	}
	return s.clients.Get(id)
}

// List возвращает клиентов типа clientType; пустой тип означает всех.
func (s *Service) List(session *access.Session, clientType domain.ClientType) ([]domain.Client, error) {
	if _, err := session.Authorize(access.PermManageClients); err != nil {
		return nil, err
	}
	if clientType != "" && !clientType.Valid() {
		return nil, domain.ErrClientTypeInvalid
	}
	return s.clients.List(clientType)
}

// Search ищет клиентов по названию, ФИО, ИНН или телефону. Пустой запрос равен List.
func (s *Service) Search(session *access.Session, term string, clientType domain.ClientType) ([]domain.Client, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.List(session, clientType)
	}
	if _, err := session.Authorize(access.PermManageClients); err != nil {
		return nil, err
	}
	if clientType != "" && !clientType.Valid() {
		return nil, domain.ErrClientTypeInvalid
	}
	return s.clients.Search(term, clientType)
}
