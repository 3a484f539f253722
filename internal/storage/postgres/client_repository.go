package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/vladislavdragonenkov/labqc/internal/domain"
	"github.com/vladislavdragonenkov/labqc/internal/validation"
)

const clientColumns = `id, client_type, company_name, address, inn, bank_account, bik,
	director_name, contact_person, full_name, birth_date, passport_series,
	passport_number, phone, email, created_at`

type clientRepository struct {
	db *sql.DB
}

// Create вставляет только заполненные колонки; поля чужого типа отбрасываются.
func (r *clientRepository) Create(client domain.Client) (int64, error) {
	if !client.Type.Valid() {
		return 0, domain.ErrClientTypeInvalid
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	query, args, err := psql.Insert("clients").SetMap(client.Fields()).Suffix("RETURNING id").ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert client: %w", err)
	}

	var id int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, wrap("insert client", err)
	}
	return id, nil
}

func (r *clientRepository) Get(id int64) (domain.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	query, args, err := psql.Select(clientColumns).From("clients").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return domain.Client{}, fmt.Errorf("build select client: %w", err)
	}

	client, err := scanClient(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Client{}, domain.ErrClientNotFound
		}
		return domain.Client{}, fmt.Errorf("select client: %w", err)
	}
	return client, nil
}

func (r *clientRepository) List(clientType domain.ClientType) ([]domain.Client, error) {
	builder := psql.Select(clientColumns).From("clients").OrderBy("id")
	if clientType != "" {
		builder = builder.Where(sq.Eq{"client_type": string(clientType)})
	}
	return r.query(builder)
}

// likeEscaper экранирует спецсимволы LIKE; в PostgreSQL экранирующий символ по умолчанию обратная косая черта.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// likePattern строит шаблон ILIKE, в котором term ищется как подстрока без подстановок.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(term)) + "%"
}

func (r *clientRepository) Search(term string, clientType domain.ClientType) ([]domain.Client, error) {
	pattern := likePattern(term)
	builder := psql.Select(clientColumns).From("clients").
		Where(sq.Or{
			sq.ILike{"company_name": pattern},
			sq.ILike{"full_name": pattern},
			sq.ILike{"inn": pattern},
			sq.ILike{"phone": pattern},
		}).
		OrderBy("company_name NULLS FIRST", "full_name NULLS FIRST", "id")
	if clientType != "" {
		builder = builder.Where(sq.Eq{"client_type": string(clientType)})
	}
	return r.query(builder)
}

func (r *clientRepository) query(builder sq.SelectBuilder) ([]domain.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build client query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	clients := make([]domain.Client, 0)
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client row: %w", err)
		}
		clients = append(clients, client)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate client rows: %w", err)
	}
	return clients, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (domain.Client, error) {
	var (
		c          domain.Client
		clientType string
		birthDate  sql.NullTime
		text       [11]sql.NullString
	)
	err := row.Scan(
		&c.ID, &clientType,
		&text[0], &text[1], &text[2], &text[3], &text[4], &text[5], &text[6], &text[7],
		&birthDate,
		&text[8], &text[9],
		&c.Phone,
		&text[10],
		&c.CreatedAt,
	)
	if err != nil {
		return domain.Client{}, err
	}

	c.Type = domain.ClientType(clientType)
	c.CompanyName = text[0].String
	c.Address = text[1].String
	c.INN = text[2].String
	c.BankAccount = text[3].String
	c.BIK = text[4].String
	c.DirectorName = text[5].String
	c.ContactPerson = text[6].String
	c.FullName = text[7].String
	c.PassportSeries = text[8].String
	c.PassportNumber = text[9].String
	c.Email = text[10].String
	if birthDate.Valid {
		c.BirthDate = birthDate.Time.Format(validation.DateLayout)
	}
	return c, nil
}

var _ domain.ClientRepository = (*clientRepository)(nil)
