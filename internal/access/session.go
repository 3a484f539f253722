package access

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/labqc/internal/domain"
	"github.com/vladislavdragonenkov/labqc/internal/validation"
)

var (
	// ErrAuthentication — базовая ошибка входа.
	ErrAuthentication = errors.New("authentication failed")
	// ErrCredentialsRequired — не указан логин или пароль.
	ErrCredentialsRequired = fmt.Errorf("%w: username and password are required", ErrAuthentication)
	// ErrUnknownUser — активного пользователя с таким логином нет.
	ErrUnknownUser = fmt.Errorf("%w: user not found", ErrAuthentication)
	// ErrWrongPassword — пароль не совпал.
	ErrWrongPassword = fmt.Errorf("%w: wrong password", ErrAuthentication)

	// ErrNotAuthenticated — операция требует входа.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrPermissionDenied — у роли нет права на операцию.
	ErrPermissionDenied = errors.New("permission denied")
)

// LoginRecorder принимает результаты попыток входа (метрики).
type LoginRecorder interface {
	RecordLogin(success bool)
}

// Session хранит одного вошедшего пользователя. Объект передаётся в
// сценарии явно, глобального состояния нет.
type Session struct {
	users    domain.UserRepository
	logger   *log.Entry
	recorder LoginRecorder

	mu          sync.RWMutex
	id          string
	user        *domain.User
	permissions PermissionSet
	loggedAt    time.Time
}

// SessionOption настраивает сессию.
type SessionOption func(*Session)

// WithLoginRecorder подключает учёт попыток входа.
func WithLoginRecorder(r LoginRecorder) SessionOption {
	return func(s *Session) { s.recorder = r }
}

// NewSession создаёт пустую сессию поверх репозитория пользователей.
func NewSession(users domain.UserRepository, logger *log.Entry, opts ...SessionOption) *Session {
	if logger == nil {
		logger = log.New().WithField("component", "session")
	}
	s := &Session{users: users, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login проверяет учётные данные. При ошибке состояние сессии не меняется.
func (s *Session) Login(username, password string) (domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		s.record(false)
		return domain.User{}, ErrCredentialsRequired
	}

	exists, err := s.users.Exists(username)
	if err != nil {
		return domain.User{}, fmt.Errorf("check user: %w", err)
	}
	if !exists {
		s.record(false)
		s.logger.WithField("username", username).Warn("login with unknown username")
		return domain.User{}, ErrUnknownUser
	}

	user, err := s.users.VerifyPassword(username, HashPassword(password))
	if err != nil {
		if domain.IsNotFound(err) {
			s.record(false)
			s.logger.WithField("username", username).Warn("login with wrong password")
			return domain.User{}, ErrWrongPassword
		}
		return domain.User{}, fmt.Errorf("verify password: %w", err)
	}

	s.mu.Lock()
	s.id = uuid.NewString()
	s.user = &user
	s.permissions = PermissionsFor(user.Role)
	s.loggedAt = time.Now().UTC()
	s.mu.Unlock()

	s.record(true)
	s.logger.WithFields(log.Fields{
		"username": user.Username,
		"role":     user.Role,
	}).Info("user logged in")
	return user, nil
}

// Logout очищает сессию.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user != nil {
		s.logger.WithField("username", s.user.Username).Info("user logged out")
	}
	s.id = ""
	s.user = nil
	s.permissions = nil
	s.loggedAt = time.Time{}
}

// ID возвращает идентификатор текущего входа или пустую строку.
func (s *Session) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

// IsAuthenticated сообщает, выполнен ли вход.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// CurrentUser возвращает копию текущего пользователя.
func (s *Session) CurrentUser() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return domain.User{}, false
	}
	return *s.user, true
}

// HasRole сообщает, совпадает ли роль текущего пользователя.
func (s *Session) HasRole(role domain.Role) bool {
	user, ok := s.CurrentUser()
	return ok && user.Role == role
}

// Permissions возвращает права текущего пользователя; без входа набор пуст.
func (s *Session) Permissions() PermissionSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return PermissionSet{}
	}
	return PermissionsFor(s.user.Role)
}

// Authorize возвращает пользователя, если у него есть право p.
func (s *Session) Authorize(p Permission) (domain.User, error) {
	user, ok := s.CurrentUser()
	if !ok {
		return domain.User{}, ErrNotAuthenticated
	}
	if !s.Permissions().Has(p) {
		return domain.User{}, fmt.Errorf("%w: %s requires %s", ErrPermissionDenied, user.Role, p)
	}
	return user, nil
}

// ChangePassword меняет пароль текущего пользователя после проверки старого.
func (s *Session) ChangePassword(current, next string) error {
	user, ok := s.CurrentUser()
	if !ok {
		return ErrNotAuthenticated
	}
	if _, err := s.users.VerifyPassword(user.Username, HashPassword(current)); err != nil {
		if domain.IsNotFound(err) {
			return ErrWrongPassword
		}
		return fmt.Errorf("verify password: %w", err)
	}
	if err := validation.PasswordStrength(next); err != nil {
		return err
	}
	if err := s.users.UpdatePasswordHash(user.ID, HashPassword(next)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	s.logger.WithField("username", user.Username).Info("password changed")
	return nil
}

func (s *Session) record(success bool) {
	if s.recorder != nil {
		s.recorder.RecordLogin(success)
	}
}
