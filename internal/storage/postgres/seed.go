package postgres

import (
	"context"
	"fmt"

	"github.com/vladislavdragonenkov/labqc/internal/storage"
)

// Seed заполняет пустые таблицы users и services начальными данными.
func (s *Store) Seed(ctx context.Context, seed storage.Seed) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var users int
	if err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&users); err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if users == 0 && len(seed.Users) > 0 {
		insert := psql.Insert("users").Columns("username", "password_hash", "role", "full_name", "is_active")
		for _, u := range seed.Users {
			insert = insert.Values(u.Username, u.PasswordHash, string(u.Role), u.FullName, u.IsActive)
		}
		query, args, buildErr := insert.ToSql()
		if buildErr != nil {
			err = fmt.Errorf("build seed users: %w", buildErr)
			return err
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("seed users: %w", err)
		}
	}

	var services int
	if err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM services`).Scan(&services); err != nil {
		return fmt.Errorf("count services: %w", err)
	}
	if services == 0 && len(seed.Services) > 0 {
		insert := psql.Insert("services").Columns("name", "description", "price", "is_active")
		for _, svc := range seed.Services {
			insert = insert.Values(svc.Name, svc.Description, svc.Price, svc.IsActive)
		}
		query, args, buildErr := insert.ToSql()
		if buildErr != nil {
			err = fmt.Errorf("build seed services: %w", buildErr)
			return err
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("seed services: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	return nil
}
