package repository

import (
	"context"
	"fmt"

	"orderdesk/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

const orderColumns = `id, order_number, customer_name, customer_email, customer_phone,
	customer_address, status, total_amount, notes, created_by, created_at, updated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.CustomerName,
		&o.CustomerEmail,
		&o.CustomerPhone,
		&o.CustomerAddress,
		&o.Status,
		&o.TotalAmount,
		&o.Notes,
		&o.CreatedBy,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Insert creates the order row within the provided transaction.
func (r *orderRepository) Insert(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (id, order_number, customer_name, customer_email, customer_phone,
			customer_address, status, total_amount, notes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := tx.Exec(ctx, query,
		order.ID,
		order.OrderNumber,
		order.CustomerName,
		order.CustomerEmail,
		order.CustomerPhone,
		order.CustomerAddress,
		order.Status,
		order.TotalAmount,
		order.Notes,
		order.CreatedBy,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Str("order_number", order.OrderNumber).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Msg("order created successfully")

	return nil
}

// InsertItem creates a line item row within the provided transaction.
func (r *orderRepository) InsertItem(ctx context.Context, tx pgx.Tx, item *model.OrderItem) error {
	query := `
		INSERT INTO order_items (id, order_id, product_id, line_no, quantity,
			unit_price, total_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := tx.Exec(ctx, query,
		item.ID,
		item.OrderID,
		item.ProductID,
		item.LineNo,
		item.Quantity,
		item.UnitPrice,
		item.TotalPrice,
		item.CreatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", item.OrderID.String()).
			Str("product_id", item.ProductID.String()).
			Msg("failed to create order item")
		return fmt.Errorf("failed to create order item: %w", err)
	}

	return nil
}

// SetTotal updates the order total within the provided transaction.
func (r *orderRepository) SetTotal(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, total decimal.Decimal) error {
	query := `UPDATE orders SET total_amount = $1, updated_at = now() WHERE id = $2`

	_, err := tx.Exec(ctx, query, total, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to set order total")
		return fmt.Errorf("failed to set order total: %w", err)
	}

	return nil
}

// OrderNumberExists reports whether an order number is already taken.
func (r *orderRepository) OrderNumberExists(ctx context.Context, number string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM orders WHERE order_number = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, number).Scan(&exists); err != nil {
		r.logger.Error().Err(err).Str("order_number", number).Msg("failed to check order number")
		return false, fmt.Errorf("failed to check order number: %w", err)
	}

	return exists, nil
}

// GetForOwner retrieves an order with its items, scoped to its owner.
func (r *orderRepository) GetForOwner(ctx context.Context, owner, id uuid.UUID) (*model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE id = $1 AND created_by = $2
	`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id, owner))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	itemsByOrder, err := r.loadItems(ctx, r.pool, []uuid.UUID{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = itemsByOrder[order.ID]

	return order, nil
}

// LockForOwner retrieves an order with its items within the provided
// transaction, taking a row lock on the order.
func (r *orderRepository) LockForOwner(ctx context.Context, tx pgx.Tx, owner, id uuid.UUID) (*model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE id = $1 AND created_by = $2
		FOR UPDATE
	`

	order, err := scanOrder(tx.QueryRow(ctx, query, id, owner))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found for lock")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to lock order")
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}

	itemsByOrder, err := r.loadItems(ctx, tx, []uuid.UUID{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = itemsByOrder[order.ID]

	return order, nil
}

// ListForOwner retrieves a seller's orders with items, newest first.
func (r *orderRepository) ListForOwner(ctx context.Context, owner uuid.UUID, filter model.OrderFilter) ([]model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE created_by = $1
	`
	args := []any{owner}

	if filter.Status != "" && filter.Status != "all" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		query += fmt.Sprintf(
			" AND (order_number ILIKE $%d OR customer_name ILIKE $%d OR customer_email ILIKE $%d)",
			n, n, n,
		)
	}

	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []model.Order
	var orderIDs []uuid.UUID
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
		orderIDs = append(orderIDs, o.ID)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	if len(orders) == 0 {
		return []model.Order{}, nil
	}

	itemsByOrder, err := r.loadItems(ctx, r.pool, orderIDs)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = itemsByOrder[orders[i].ID]
	}

	return orders, nil
}

// Update persists the patchable order fields.
func (r *orderRepository) Update(ctx context.Context, order *model.Order) error {
	query := `
		UPDATE orders
		SET status = $1, notes = $2, customer_name = $3, customer_email = $4,
			customer_phone = $5, customer_address = $6, updated_at = $7
		WHERE id = $8 AND created_by = $9
	`

	tag, err := r.pool.Exec(ctx, query,
		order.Status,
		order.Notes,
		order.CustomerName,
		order.CustomerEmail,
		order.CustomerPhone,
		order.CustomerAddress,
		order.UpdatedAt,
		order.ID,
		order.CreatedBy,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to update order")
		return fmt.Errorf("failed to update order: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}

	return nil
}

// Delete removes an order within the provided transaction; line items cascade.
func (r *orderRepository) Delete(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	query := `DELETE FROM orders WHERE id = $1`

	_, err := tx.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to delete order")
		return fmt.Errorf("failed to delete order: %w", err)
	}

	r.logger.Debug().Str("order_id", id.String()).Msg("order deleted")

	return nil
}

// StatsForOwner aggregates order counts per status and total revenue.
func (r *orderRepository) StatsForOwner(ctx context.Context, owner uuid.UUID) (*model.OrderStats, error) {
	query := `
		SELECT status, COUNT(*), COALESCE(SUM(total_amount), 0)
		FROM orders
		WHERE created_by = $1
		GROUP BY status
	`

	rows, err := r.pool.Query(ctx, query, owner)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query order stats")
		return nil, fmt.Errorf("failed to query order stats: %w", err)
	}
	defer rows.Close()

	stats := &model.OrderStats{TotalRevenue: decimal.Zero}
	for rows.Next() {
		var status model.OrderStatus
		var count int
		var revenue decimal.Decimal
		if err := rows.Scan(&status, &count, &revenue); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan stats row")
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}

		stats.TotalOrders += count
		stats.TotalRevenue = stats.TotalRevenue.Add(revenue)

		switch status {
		case model.StatusPending:
			stats.PendingOrders = count
		case model.StatusConfirmed:
			stats.ConfirmedOrders = count
		case model.StatusProcessing:
			stats.ProcessingOrders = count
		case model.StatusShipped:
			stats.ShippedOrders = count
		case model.StatusDelivered:
			stats.DeliveredOrders = count
		case model.StatusCancelled:
			stats.CancelledOrders = count
		}
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating stats rows")
		return nil, fmt.Errorf("error iterating stats: %w", err)
	}

	return stats, nil
}

// querier is the subset of pgx shared by pools and transactions.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// loadItems fetches the line items for the given orders, keyed by order ID and
// ordered by line number within each order.
func (r *orderRepository) loadItems(ctx context.Context, q querier, orderIDs []uuid.UUID) (map[uuid.UUID][]model.OrderItem, error) {
	query := `
		SELECT oi.id, oi.order_id, oi.product_id, p.name, p.category, oi.line_no,
			oi.quantity, oi.unit_price, oi.total_price, oi.created_at
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.order_id, oi.line_no
	`

	rows, err := q.Query(ctx, query, orderIDs)
	if err != nil {
		r.logger.Error().Err(err).Int("order_count", len(orderIDs)).Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	items := make(map[uuid.UUID][]model.OrderItem, len(orderIDs))
	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.ProductCategory,
			&item.LineNo,
			&item.Quantity,
			&item.UnitPrice,
			&item.TotalPrice,
			&item.CreatedAt,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items[item.OrderID] = append(items[item.OrderID], item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}
