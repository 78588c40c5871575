package report

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// Repository is the read-only side of reporting. It runs against the
// same database as the write path but through its own connection, so
// heavy aggregate queries never contend with checkout's pool.
type Repository interface {
	OrdersInRange(ctx context.Context, from, to time.Time) ([]OrderRow, error)
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]ProductSales, error)
	TopCustomers(ctx context.Context, from, to time.Time, limit int) ([]CustomerSales, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) OrdersInRange(ctx context.Context, from, to time.Time) ([]OrderRow, error) {
	query := `
		SELECT o.status,
		       o.total_amount,
		       COALESCE((SELECT SUM(oi.quantity) FROM order_items oi WHERE oi.order_id = o.id), 0) AS item_count,
		       o.created_at
		FROM orders o
		WHERE o.created_at >= $1 AND o.created_at < $2
		ORDER BY o.created_at`

	var rows []OrderRow
	if err := r.db.SelectContext(ctx, &rows, query, from, to); err != nil {
		return nil, fmt.Errorf("repository: failed to get orders for report: %w", err)
	}
	return rows, nil
}

func (r *repository) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]ProductSales, error) {
	query := `
		SELECT oi.product_id,
		       p.name AS product_name,
		       SUM(oi.quantity) AS quantity_sold,
		       SUM(oi.price * oi.quantity) AS revenue
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN products p ON p.id = oi.product_id
		WHERE o.created_at >= $1 AND o.created_at < $2
		  AND o.status = 'delivered'
		GROUP BY oi.product_id, p.name
		ORDER BY quantity_sold DESC
		LIMIT $3`

	var rows []ProductSales
	if err := r.db.SelectContext(ctx, &rows, query, from, to, limit); err != nil {
		return nil, fmt.Errorf("repository: failed to get top products: %w", err)
	}
	return rows, nil
}

func (r *repository) TopCustomers(ctx context.Context, from, to time.Time, limit int) ([]CustomerSales, error) {
	query := `
		SELECT o.user_id,
		       MAX(o.email) AS email,
		       COUNT(*) AS order_count,
		       SUM(o.total_amount) AS total_spent,
		       ROUND(SUM(o.total_amount) / COUNT(*), 2) AS avg_order_value
		FROM orders o
		WHERE o.created_at >= $1 AND o.created_at < $2
		  AND o.status = 'delivered'
		GROUP BY o.user_id
		ORDER BY total_spent DESC
		LIMIT $3`

	var rows []CustomerSales
	if err := r.db.SelectContext(ctx, &rows, query, from, to, limit); err != nil {
		return nil, fmt.Errorf("repository: failed to get top customers: %w", err)
	}
	return rows, nil
}
