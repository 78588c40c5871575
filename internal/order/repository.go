package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/ecommerce-core/internal/payment"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrInsufficientStock = errors.New("insufficient stock to confirm order")
	ErrPaymentNotFound   = errors.New("payment not found for order")
)

type Repository interface {
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
	// UpdateStatusSynced transitions the order and applies the payment
	// status side effect and stock adjustment in one transaction.
	UpdateStatusSynced(ctx context.Context, orderID uuid.UUID, to Status) (*Order, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const orderColumns = `
	id, order_id, user_id, status,
	first_name, last_name, email, phone,
	shipping_first_name, shipping_last_name, shipping_phone,
	shipping_address, shipping_city, shipping_state, shipping_postal_code, shipping_country,
	total_amount, shipping_cost, tax_amount, order_notes, created_at, updated_at
`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.OrderID, &o.UserID, &o.Status,
		&o.FirstName, &o.LastName, &o.Email, &o.Phone,
		&o.ShippingFirstName, &o.ShippingLastName, &o.ShippingPhone,
		&o.ShippingAddress, &o.ShippingCity, &o.ShippingState, &o.ShippingPostalCode, &o.ShippingCountry,
		&o.TotalAmount, &o.ShippingCost, &o.TaxAmount, &o.OrderNotes, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *postgresRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_id = $1`

	o, err := scanOrder(r.db.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order %s: %w", orderID, err)
	}

	if err := r.loadItems(ctx, o); err != nil {
		return nil, err
	}
	if err := r.loadCouponUse(ctx, o); err != nil {
		return nil, err
	}

	return o, nil
}

func (r *postgresRepository) loadItems(ctx context.Context, o *Order) error {
	query := `
		SELECT oi.id, oi.order_id, oi.product_id, p.name, oi.quantity, oi.price, oi.created_at
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.id
	`

	rows, err := r.db.Query(ctx, query, o.ID)
	if err != nil {
		return fmt.Errorf("repository: failed to query order items for order %s: %w", o.OrderID, err)
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		var item Item
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.Quantity, &item.Price, &item.CreatedAt)
		if err != nil {
			return fmt.Errorf("repository: failed to scan order item for order %s: %w", o.OrderID, err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("repository: error iterating order items for order %s: %w", o.OrderID, err)
	}

	o.Items = items
	return nil
}

func (r *postgresRepository) loadCouponUse(ctx context.Context, o *Order) error {
	query := `
		SELECT oc.coupon_id, c.code, oc.discount_amount
		FROM order_coupons oc
		JOIN coupons c ON c.id = oc.coupon_id
		WHERE oc.order_id = $1
	`

	var use CouponUse
	err := r.db.QueryRow(ctx, query, o.ID).Scan(&use.CouponID, &use.Code, &use.DiscountAmount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("repository: failed to select coupon use for order %s: %w", o.OrderID, err)
	}

	o.Coupon = &use
	return nil
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders for user %s: %w", userID, err)
	}
	defer rows.Close()

	ordersMap := make(map[int64]*Order)
	var orderIDs []int64
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order for user %s: %w", userID, err)
		}
		o.Items = make([]Item, 0)
		ordersMap[o.ID] = o
		orderIDs = append(orderIDs, o.ID)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating orders for user %s: %w", userID, err)
	}

	if len(orderIDs) == 0 {
		return []Order{}, nil
	}

	itemsQuery := `
		SELECT oi.id, oi.order_id, oi.product_id, p.name, oi.quantity, oi.price, oi.created_at
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1)
	`
	itemRows, err := r.db.Query(ctx, itemsQuery, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order items for user %s: %w", userID, err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item Item
		err := itemRows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.Quantity, &item.Price, &item.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order item for user %s: %w", userID, err)
		}
		if o, ok := ordersMap[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	if err = itemRows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order items for user %s: %w", userID, err)
	}

	result := make([]Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		result = append(result, *ordersMap[id])
	}

	return result, nil
}

func (r *postgresRepository) UpdateStatusSynced(ctx context.Context, orderID uuid.UUID, to Status) (o *Order, err error) {
	tx, beginErr := r.db.Begin(ctx)
	if beginErr != nil {
		return nil, fmt.Errorf("repository: failed to begin transaction: %w", beginErr)
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id", orderID).Msg("Failed to rollback after panic")
			}
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id", orderID).Msg("Failed to rollback transaction")
			}
		} else {
			if commitErr := tx.Commit(ctx); commitErr != nil {
				err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
				o = nil
			}
		}
	}()

	// Lock the order row so concurrent transitions serialize and the
	// validity check below runs against the committed status.
	var rowID int64
	var from Status
	err = tx.QueryRow(ctx, `SELECT id, status FROM orders WHERE order_id = $1 FOR UPDATE`, orderID).Scan(&rowID, &from)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("repository: failed to lock order %s: %w", orderID, err)
	}

	if !CanTransition(from, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	now := time.Now().UTC()
	if from != to {
		_, err = tx.Exec(ctx, `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`, to, now, rowID)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to update order status for %s: %w", orderID, err)
		}
	}

	if err = r.syncPayment(ctx, tx, rowID, orderID, to, now); err != nil {
		return nil, err
	}

	if err = r.adjustStock(ctx, tx, rowID, orderID, from, to); err != nil {
		return nil, err
	}

	o = &Order{ID: rowID, OrderID: orderID, Status: to, UpdatedAt: now}
	return o, nil
}

func (r *postgresRepository) syncPayment(ctx context.Context, tx pgx.Tx, rowID int64, orderID uuid.UUID, to Status, now time.Time) error {
	var paymentID int64
	var current payment.Status
	err := tx.QueryRow(ctx, `SELECT id, status FROM payments WHERE order_id = $1 FOR UPDATE`, rowID).Scan(&paymentID, &current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: order %s", ErrPaymentNotFound, orderID)
		}
		return fmt.Errorf("repository: failed to lock payment for order %s: %w", orderID, err)
	}

	next, completeNow, changed := SyncedPaymentStatus(to, current)
	if !changed {
		return nil
	}

	if completeNow {
		_, err = tx.Exec(ctx,
			`UPDATE payments SET status = $1, completed_at = $2, updated_at = $2 WHERE id = $3`,
			next, now, paymentID)
	} else {
		_, err = tx.Exec(ctx,
			`UPDATE payments SET status = $1, updated_at = $2 WHERE id = $3`,
			next, now, paymentID)
	}
	if err != nil {
		return fmt.Errorf("repository: failed to sync payment status for order %s: %w", orderID, err)
	}

	log.Info().
		Stringer("order_id", orderID).
		Str("payment_status", string(next)).
		Msg("repository: payment status synced with order status")
	return nil
}

// adjustStock decrements product stock when an order is confirmed and
// restores it when a confirmed order is cancelled. Orders cancelled
// while still pending never touched stock.
func (r *postgresRepository) adjustStock(ctx context.Context, tx pgx.Tx, rowID int64, orderID uuid.UUID, from, to Status) error {
	switch {
	case from == StatusPending && to == StatusConfirmed:
		cmdTag, err := tx.Exec(ctx, `
			UPDATE products p
			SET stock = p.stock - oi.quantity, updated_at = now()
			FROM order_items oi
			WHERE oi.order_id = $1 AND p.id = oi.product_id AND p.stock >= oi.quantity
		`, rowID)
		if err != nil {
			return fmt.Errorf("repository: failed to decrement stock for order %s: %w", orderID, err)
		}

		var itemCount int64
		if err := tx.QueryRow(ctx, `SELECT count(*) FROM order_items WHERE order_id = $1`, rowID).Scan(&itemCount); err != nil {
			return fmt.Errorf("repository: failed to count order items for %s: %w", orderID, err)
		}
		if cmdTag.RowsAffected() != itemCount {
			return fmt.Errorf("%w: order %s", ErrInsufficientStock, orderID)
		}

	case from == StatusConfirmed && to == StatusCancelled:
		_, err := tx.Exec(ctx, `
			UPDATE products p
			SET stock = p.stock + oi.quantity, updated_at = now()
			FROM order_items oi
			WHERE oi.order_id = $1 AND p.id = oi.product_id
		`, rowID)
		if err != nil {
			return fmt.Errorf("repository: failed to restore stock for order %s: %w", orderID, err)
		}
	}

	return nil
}
