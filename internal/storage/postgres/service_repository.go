package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/labqc/internal/domain"
)

type serviceRepository struct {
	db *sql.DB
}

func (r *serviceRepository) ListActive() ([]domain.Service, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, price, is_active, created_at
		FROM services
		WHERE is_active
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	services := make([]domain.Service, 0)
	for rows.Next() {
		var svc domain.Service
		if err := rows.Scan(&svc.ID, &svc.Name, &svc.Description, &svc.Price, &svc.IsActive, &svc.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan service row: %w", err)
		}
		services = append(services, svc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate service rows: %w", err)
	}
	return services, nil
}

func (r *serviceRepository) Get(id int64) (domain.Service, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var svc domain.Service
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, price, is_active, created_at
		FROM services
		WHERE id = $1
	`, id).Scan(&svc.ID, &svc.Name, &svc.Description, &svc.Price, &svc.IsActive, &svc.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Service{}, domain.ErrServiceNotFound
		}
		return domain.Service{}, fmt.Errorf("select service: %w", err)
	}
	return svc, nil
}

func (r *serviceRepository) Create(service domain.Service) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO services (name, description, price, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, service.Name, service.Description, service.Price, service.IsActive).Scan(&id)
	if err != nil {
		return 0, wrap("insert service", err)
	}
	return id, nil
}

func (r *serviceRepository) UpdatePrice(id int64, price decimal.Decimal) error {
	return r.update(`UPDATE services SET price = $1 WHERE id = $2`, price, id)
}

func (r *serviceRepository) SetActive(id int64, active bool) error {
	return r.update(`UPDATE services SET is_active = $1 WHERE id = $2`, active, id)
}

func (r *serviceRepository) update(query string, value any, id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, query, value, id)
	if err != nil {
		return wrap("update service", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrServiceNotFound
	}
	return nil
}

var _ domain.ServiceRepository = (*serviceRepository)(nil)
