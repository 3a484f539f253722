package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/labqc/internal/domain"
)

func TestConstraintError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "vessel code",
			err:  &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "orders_vessel_code_key"},
			want: domain.ErrVesselCodeExists,
		},
		{
			name: "inn wrapped",
			err:  fmt.Errorf("exec: %w", &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "clients_inn_legal_key"}),
			want: domain.ErrClientINNExists,
		},
		{
			name: "passport",
			err:  &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "clients_passport_individual_key"},
			want: domain.ErrClientPassportExists,
		},
		{
			name: "unknown unique",
			err:  &pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "users_username_key"},
			want: domain.ErrConstraintViolation,
		},
		{
			name: "foreign key",
			err:  &pgconn.PgError{Code: pgForeignKeyViolation, ConstraintName: "orders_client_id_fkey"},
			want: domain.ErrReferenceViolation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := constraintError(tt.err)
			require.ErrorIs(t, got, tt.want)
			require.True(t, domain.IsConstraintViolation(got))
		})
	}

	require.NoError(t, constraintError(errors.New("connection reset")))
	require.NoError(t, constraintError(&pgconn.PgError{Code: "40001"}))

	wrapped := wrap("insert order", errors.New("connection reset"))
	require.EqualError(t, wrapped, "insert order: connection reset")
	require.False(t, domain.IsConstraintViolation(wrapped))
}
