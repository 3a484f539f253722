package memory

import (
	"github.com/vladislavdragonenkov/labqc/internal/domain"
)

type userRepository struct {
	store *Store
}

func (r *userRepository) findActive(username string) (*userRecord, bool) {
	for _, rec := range r.store.users {
		if rec.user.IsActive && rec.user.Username == username {
			return rec, true
		}
	}
	return nil, false
}

func (r *userRepository) Exists(username string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	_, ok := r.findActive(username)
	return ok, nil
}

func (r *userRepository) VerifyPassword(username, passwordHash string) (domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rec, ok := r.findActive(username)
	if !ok || rec.passwordHash != passwordHash {
		return domain.User{}, domain.ErrUserNotFound
	}
	return rec.user, nil
}

func (r *userRepository) GetByUsername(username string) (domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rec, ok := r.findActive(username)
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return rec.user, nil
}

func (r *userRepository) UpdatePasswordHash(userID int64, passwordHash string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rec, ok := r.store.users[userID]
	if !ok || !rec.user.IsActive {
		return domain.ErrUserNotFound
	}
	rec.passwordHash = passwordHash
	return nil
}

var _ domain.UserRepository = (*userRepository)(nil)
