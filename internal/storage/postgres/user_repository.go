package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/vladislavdragonenkov/labqc/internal/domain"
)

const userColumns = "id, username, role, full_name, is_active"

type userRepository struct {
	db *sql.DB
}

func (r *userRepository) Exists(username string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 AND is_active)
	`, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return exists, nil
}

func (r *userRepository) VerifyPassword(username, passwordHash string) (domain.User, error) {
	return r.findOne(sq.Eq{"username": username, "password_hash": passwordHash, "is_active": true})
}

func (r *userRepository) GetByUsername(username string) (domain.User, error) {
	return r.findOne(sq.Eq{"username": username, "is_active": true})
}

func (r *userRepository) UpdatePasswordHash(userID int64, passwordHash string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET password_hash = $1 WHERE id = $2 AND is_active
	`, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) findOne(where sq.Eq) (domain.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	query, args, err := psql.Select(userColumns).From("users").Where(where).Limit(1).ToSql()
	if err != nil {
		return domain.User{}, fmt.Errorf("build user query: %w", err)
	}

	var (
		user domain.User
		role string
	)
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&user.ID, &user.Username, &role, &user.FullName, &user.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("select user: %w", err)
	}
	user.Role = domain.Role(role)
	return user, nil
}

var _ domain.UserRepository = (*userRepository)(nil)
