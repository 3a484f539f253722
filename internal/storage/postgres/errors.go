package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/labqc/internal/domain"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

var uniqueConstraints = map[string]error{
	"orders_vessel_code_key":          domain.ErrVesselCodeExists,
	"clients_inn_legal_key":           domain.ErrClientINNExists,
	"clients_passport_individual_key": domain.ErrClientPassportExists,
}

// constraintError переводит нарушение ограничения в доменную ошибку.
// Для остальных ошибок возвращает nil.
func constraintError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		if mapped, ok := uniqueConstraints[pgErr.ConstraintName]; ok {
			return mapped
		}
		return fmt.Errorf("%w: %s", domain.ErrConstraintViolation, pgErr.ConstraintName)
	case pgForeignKeyViolation:
		return fmt.Errorf("%w: %s", domain.ErrReferenceViolation, pgErr.ConstraintName)
	}
	return nil
}

// wrap возвращает доменную ошибку ограничения или оборачивает исходную с контекстом.
func wrap(op string, err error) error {
	if mapped := constraintError(err); mapped != nil {
		return mapped
	}
	return fmt.Errorf("%s: %w", op, err)
}
