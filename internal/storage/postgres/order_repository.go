package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/labqc/internal/domain"
)

const clientNameExpr = "CASE WHEN c.client_type = 'legal' THEN c.company_name ELSE c.full_name END"

type orderRepository struct {
	db *sql.DB
}

func (r *orderRepository) LastID() (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var last int64
	if err := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) FROM orders`).Scan(&last); err != nil {
		return 0, fmt.Errorf("select last order id: %w", err)
	}
	return last, nil
}

func (r *orderRepository) VesselCodeExists(code string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM orders WHERE vessel_code = $1)
	`, code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check vessel code: %w", err)
	}
	return exists, nil
}

// Create вставляет заказ и позиции в одной транзакции; при любой ошибке
// транзакция откатывается целиком.
func (r *orderRepository) Create(order *domain.Order) (id int64, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	status := order.Status
	if status == "" {
		status = domain.OrderStatusNew
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (vessel_code, client_id, order_date, total_amount, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`,
		order.VesselCode, order.ClientID, order.OrderDate, order.TotalAmount(), string(status), order.CreatedBy,
	).Scan(&id)
	if err != nil {
		return 0, wrap("insert order", err)
	}

	items := order.Items()
	if len(items) > 0 {
		insert := psql.Insert("order_services").
			Columns("order_id", "service_id", "service_name", "description", "quantity", "unit_price", "total_price")
		for _, item := range items {
			insert = insert.Values(id, item.ServiceID, item.ServiceName, item.Description,
				item.Quantity, item.UnitPrice, item.TotalPrice())
		}
		query, args, buildErr := insert.ToSql()
		if buildErr != nil {
			err = fmt.Errorf("build insert order services: %w", buildErr)
			return 0, err
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			err = wrap("insert order services", err)
			return 0, err
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit create order: %w", err)
	}
	return id, nil
}

func (r *orderRepository) Get(id int64) (*domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var (
		order       domain.Order
		status      string
		clientName  sql.NullString
		createdBy   sql.NullString
		completedAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT o.id, o.vessel_code, o.client_id, o.order_date, o.status, o.created_by,
		       o.created_at, o.completed_at, `+clientNameExpr+`, u.full_name
		FROM orders o
		LEFT JOIN clients c ON o.client_id = c.id
		LEFT JOIN users u ON o.created_by = u.id
		WHERE o.id = $1
	`, id).Scan(
		&order.ID, &order.VesselCode, &order.ClientID, &order.OrderDate, &status, &order.CreatedBy,
		&order.CreatedAt, &completedAt, &clientName, &createdBy,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("select order: %w", err)
	}
	order.Status = domain.OrderStatus(status)
	order.ClientName = clientName.String
	order.CreatedByName = createdBy.String
	if completedAt.Valid {
		at := completedAt.Time
		order.CompletedAt = &at
	}

	items, err := r.loadItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.LoadItems(items)

	return &order, nil
}

func (r *orderRepository) List(filter domain.OrderFilter) ([]domain.OrderSummary, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	builder := psql.Select(
		"o.id", "o.vessel_code", clientNameExpr, "o.order_date", "o.status",
		"o.total_amount", "u.full_name", "o.created_at",
	).
		From("orders o").
		LeftJoin("clients c ON o.client_id = c.id").
		LeftJoin("users u ON o.created_by = u.id").
		OrderBy("o.order_date DESC", "o.id DESC")

	if filter.Status != "" {
		builder = builder.Where(sq.Eq{"o.status": string(filter.Status)})
	}
	if filter.DateFrom != nil {
		builder = builder.Where(sq.GtOrEq{"o.order_date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		builder = builder.Where(sq.LtOrEq{"o.order_date": *filter.DateTo})
	}
	if filter.VesselCode != "" {
		builder = builder.Where(sq.Like{"o.vessel_code": "%" + filter.VesselCode + "%"})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list orders: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.OrderSummary, 0)
	for rows.Next() {
		var (
			row        domain.OrderSummary
			status     string
			clientName sql.NullString
			createdBy  sql.NullString
		)
		if err := rows.Scan(
			&row.ID, &row.VesselCode, &clientName, &row.OrderDate, &status,
			&row.TotalAmount, &createdBy, &row.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		row.Status = domain.OrderStatus(status)
		row.ClientName = clientName.String
		row.CreatedByName = createdBy.String
		orders = append(orders, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}
	return orders, nil
}

// UpdateStatus одной командой меняет статус и, при завершении, completed_at.
func (r *orderRepository) UpdateStatus(id int64, status domain.OrderStatus, at time.Time) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrStatusInvalid, status)
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	update := psql.Update("orders").Set("status", string(status)).Where(sq.Eq{"id": id})
	if status == domain.OrderStatusCompleted {
		update = update.Set("completed_at", at)
	}
	query, args, err := update.ToSql()
	if err != nil {
		return fmt.Errorf("build update status: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// Report группирует строки заказа: названия услуг склеиваются в порядке id услуги.
func (r *orderRepository) Report(from, to time.Time) ([]domain.ReportRow, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	query, args, err := psql.Select(
		"o.vessel_code", "o.order_date", "o.total_amount", "o.status",
		clientNameExpr, "c.client_type", "c.inn",
		"COALESCE(STRING_AGG(os.service_name, ', ' ORDER BY os.service_id), '')",
		"COUNT(DISTINCT os.service_id)",
	).
		From("orders o").
		LeftJoin("clients c ON o.client_id = c.id").
		LeftJoin("order_services os ON o.id = os.order_id").
		Where(sq.GtOrEq{"o.order_date": from}).
		Where(sq.LtOrEq{"o.order_date": to}).
		GroupBy("o.id", "c.id").
		OrderBy("o.order_date", "o.vessel_code").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build report query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select report: %w", err)
	}
	defer rows.Close()

	report := make([]domain.ReportRow, 0)
	for rows.Next() {
		var (
			row        domain.ReportRow
			status     string
			clientName sql.NullString
			clientType sql.NullString
			inn        sql.NullString
		)
		if err := rows.Scan(
			&row.VesselCode, &row.OrderDate, &row.TotalAmount, &status,
			&clientName, &clientType, &inn, &row.ServicesNames, &row.ServicesCount,
		); err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		row.Status = domain.OrderStatus(status)
		row.ClientName = clientName.String
		row.ClientType = domain.ClientType(clientType.String)
		row.INN = inn.String
		report = append(report, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate report rows: %w", err)
	}
	return report, nil
}

func (r *orderRepository) loadItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT service_id, service_name, description, quantity, unit_price
		FROM order_services
		WHERE order_id = $1
		ORDER BY id ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order services: %w", err)
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		var (
			item  domain.OrderItem
			price decimal.Decimal
		)
		if err := rows.Scan(&item.ServiceID, &item.ServiceName, &item.Description, &item.Quantity, &price); err != nil {
			return nil, fmt.Errorf("scan order service: %w", err)
		}
		item.UnitPrice = price
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order services: %w", err)
	}
	return items, nil
}

var _ domain.OrderRepository = (*orderRepository)(nil)
