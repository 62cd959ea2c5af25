package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/partshub/api/internal/orders/domain"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, order domain.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO orders (id, user_id, total_price, estimated_fulfillment_days, status, payment_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = tx.Exec(ctx, query,
		order.ID,
		order.UserID,
		order.TotalPrice,
		order.EstimatedFulfillmentDays,
		order.Status,
		order.PaymentStatus,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, position, part_id, quantity)
		VALUES ($1, $2, $3, $4)
	`

	for i, item := range order.LineItems {
		if _, err := tx.Exec(ctx, itemQuery, order.ID, i, item.PartID, item.Quantity); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `
		SELECT id, user_id, total_price, estimated_fulfillment_days, status, payment_status, created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select order: %w", err)
	}

	items, err := r.loadItems(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	order.LineItems = items[id]

	return order, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	query := `
		SELECT id, user_id, total_price, estimated_fulfillment_days, status, payment_status, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	var ids []string
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *order)
		ids = append(ids, order.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	if len(orders) == 0 {
		return orders, nil
	}

	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].LineItems = items[orders[i].ID]
	}

	return orders, nil
}

// MarkPaid completes payment only while it is still outstanding. The WHERE
// clause is the concurrency guard: of two racing callers exactly one matches
// the row.
func (r *Repository) MarkPaid(ctx context.Context, id string) (*domain.Order, error) {
	query := `
		UPDATE orders
		SET payment_status = $1, updated_at = $2
		WHERE id = $3 AND payment_status <> $1
		RETURNING id, user_id, total_price, estimated_fulfillment_days, status, payment_status, created_at, updated_at
	`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, domain.PaymentCompleted, time.Now().UTC(), id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.diagnosePayConflict(ctx, id)
		}
		return nil, fmt.Errorf("mark order paid: %w", err)
	}

	items, err := r.loadItems(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	order.LineItems = items[id]

	return order, nil
}

// MarkCancelled cancels the order only while it is still pending, mirroring
// the MarkPaid guard.
func (r *Repository) MarkCancelled(ctx context.Context, id string) (*domain.Order, error) {
	query := `
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
		RETURNING id, user_id, total_price, estimated_fulfillment_days, status, payment_status, created_at, updated_at
	`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, domain.StatusCancelled, time.Now().UTC(), id, domain.StatusPending))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.diagnoseCancelConflict(ctx, id)
		}
		return nil, fmt.Errorf("mark order cancelled: %w", err)
	}

	items, err := r.loadItems(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	order.LineItems = items[id]

	return order, nil
}

// SetStatus applies externally driven fulfillment transitions (shipped,
// delivered) without conditions.
func (r *Repository) SetStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	query := `
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := r.pool.Exec(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func (r *Repository) diagnosePayConflict(ctx context.Context, id string) error {
	order, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if order.PaymentStatus == domain.PaymentCompleted {
		return domain.ErrAlreadyPaid
	}
	return fmt.Errorf("mark order paid: unexpected state %q", order.PaymentStatus)
}

func (r *Repository) diagnoseCancelConflict(ctx context.Context, id string) error {
	order, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	switch order.Status {
	case domain.StatusShipped, domain.StatusDelivered:
		return domain.ErrAlreadyShipped
	case domain.StatusCancelled:
		return domain.ErrAlreadyCancelled
	}
	return fmt.Errorf("mark order cancelled: unexpected state %q", order.Status)
}

func (r *Repository) loadItems(ctx context.Context, orderIDs []string) (map[string][]domain.LineItem, error) {
	query := `
		SELECT order_id, part_id, quantity
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position
	`

	rows, err := r.pool.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	items := make(map[string][]domain.LineItem)
	for rows.Next() {
		var orderID string
		var item domain.LineItem
		if err := rows.Scan(&orderID, &item.PartID, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items[orderID] = append(items[orderID], item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}

	return items, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var order domain.Order
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.TotalPrice,
		&order.EstimatedFulfillmentDays,
		&order.Status,
		&order.PaymentStatus,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}
