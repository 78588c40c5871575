package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/vasiliy-maslov/ecommerce-core/internal/cart"
	"github.com/vasiliy-maslov/ecommerce-core/internal/coupon"
	"github.com/vasiliy-maslov/ecommerce-core/internal/order"
	"github.com/vasiliy-maslov/ecommerce-core/internal/payment"
	"github.com/vasiliy-maslov/ecommerce-core/internal/shipping"
)

// Tx is the set of storage operations available inside a checkout
// transaction. Every call sees the same snapshot and either all of
// them commit or none do.
type Tx interface {
	// LockCart locks the user's cart row, serializing concurrent
	// checkouts on the same cart.
	LockCart(ctx context.Context, userID uuid.UUID) (cartID int64, err error)
	CartItems(ctx context.Context, cartID int64) ([]cart.Item, error)
	ActiveShippingMethod(ctx context.Context, id int64) (*shipping.Method, error)
	CouponByCode(ctx context.Context, code string) (*coupon.Coupon, error)
	InsertOrder(ctx context.Context, o *order.Order) error
	InsertOrderItems(ctx context.Context, orderRowID int64, items []order.Item) error
	// RedeemCoupon increments used_count, guarded by the usage cap.
	RedeemCoupon(ctx context.Context, couponID int64) error
	InsertOrderCoupon(ctx context.Context, orderRowID, couponID int64, discount decimal.Decimal) error
	InsertPayment(ctx context.Context, p *payment.Payment) error
	ClearCart(ctx context.Context, cartID int64) error
}

// Store runs a function inside a single database transaction. The
// transaction is rolled back if fn returns an error or panics.
type Store interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type pgxStore struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) Store {
	return &pgxStore{db: db}
}

func (s *pgxStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) (err error) {
	tx, beginErr := s.db.Begin(ctx)
	if beginErr != nil {
		return fmt.Errorf("store: failed to begin transaction: %w", beginErr)
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Msg("Failed to rollback checkout transaction after panic")
			}
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Msg("Failed to rollback checkout transaction")
			}
		} else {
			if commitErr := tx.Commit(ctx); commitErr != nil {
				err = fmt.Errorf("store: failed to commit transaction: %w", commitErr)
			}
		}
	}()

	err = fn(ctx, &pgxTx{tx: tx})
	return err
}

type pgxTx struct {
	tx pgx.Tx
}

func (t *pgxTx) LockCart(ctx context.Context, userID uuid.UUID) (int64, error) {
	var cartID int64
	err := t.tx.QueryRow(ctx, `SELECT id FROM carts WHERE user_id = $1 FOR UPDATE`, userID).Scan(&cartID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, cart.ErrCartNotFound
		}
		return 0, fmt.Errorf("store: failed to lock cart for user %s: %w", userID, err)
	}

	return cartID, nil
}

func (t *pgxTx) CartItems(ctx context.Context, cartID int64) ([]cart.Item, error) {
	// Products are re-read here so stock and price checks run against
	// current values, not whatever the cart page showed earlier.
	query := `
		SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.added_at,
		       p.id, p.category_id, p.name, p.description, p.price, p.stock, p.created_at, p.updated_at
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.added_at
	`

	rows, err := t.tx.Query(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("store: failed to query cart items for cart %d: %w", cartID, err)
	}
	defer rows.Close()

	items := make([]cart.Item, 0)
	for rows.Next() {
		var item cart.Item
		err := rows.Scan(
			&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.AddedAt,
			&item.Product.ID, &item.Product.CategoryID, &item.Product.Name, &item.Product.Description,
			&item.Product.Price, &item.Product.Stock, &item.Product.CreatedAt, &item.Product.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("store: failed to scan cart item for cart %d: %w", cartID, err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("store: error iterating cart items for cart %d: %w", cartID, err)
	}

	return items, nil
}

func (t *pgxTx) ActiveShippingMethod(ctx context.Context, id int64) (*shipping.Method, error) {
	query := `
		SELECT id, name, description, cost, estimated_days, is_active, created_at
		FROM shipping_methods
		WHERE id = $1 AND is_active
	`

	var m shipping.Method
	err := t.tx.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.Name, &m.Description, &m.Cost, &m.EstimatedDays, &m.IsActive, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shipping.ErrMethodNotFound
		}
		return nil, fmt.Errorf("store: failed to select shipping method %d: %w", id, err)
	}

	return &m, nil
}

func (t *pgxTx) CouponByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	query := `
		SELECT id, code, discount_type, discount_value, minimum_amount,
		       maximum_uses, used_count, valid_from, valid_to, is_active, created_at
		FROM coupons
		WHERE code = $1
		FOR UPDATE
	`

	var c coupon.Coupon
	err := t.tx.QueryRow(ctx, query, coupon.NormalizeCode(code)).Scan(
		&c.ID, &c.Code, &c.DiscountType, &c.DiscountValue, &c.MinimumAmount,
		&c.MaximumUses, &c.UsedCount, &c.ValidFrom, &c.ValidTo, &c.IsActive, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coupon.ErrCouponNotFound
		}
		return nil, fmt.Errorf("store: failed to select coupon %q: %w", code, err)
	}

	return &c, nil
}

func (t *pgxTx) InsertOrder(ctx context.Context, o *order.Order) error {
	query := `
		INSERT INTO orders (
			order_id, user_id, status,
			first_name, last_name, email, phone,
			shipping_first_name, shipping_last_name, shipping_phone,
			shipping_address, shipping_city, shipping_state, shipping_postal_code, shipping_country,
			total_amount, shipping_cost, tax_amount, order_notes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id, created_at, updated_at
	`

	err := t.tx.QueryRow(ctx, query,
		o.OrderID, o.UserID, o.Status,
		o.FirstName, o.LastName, o.Email, o.Phone,
		o.ShippingFirstName, o.ShippingLastName, o.ShippingPhone,
		o.ShippingAddress, o.ShippingCity, o.ShippingState, o.ShippingPostalCode, o.ShippingCountry,
		o.TotalAmount, o.ShippingCost, o.TaxAmount, o.OrderNotes,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("store: failed to insert order %s: %w", o.OrderID, err)
	}

	return nil
}

func (t *pgxTx) InsertOrderItems(ctx context.Context, orderRowID int64, items []order.Item) error {
	query := `
		INSERT INTO order_items (order_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	for i := range items {
		item := &items[i]
		item.OrderID = orderRowID
		err := t.tx.QueryRow(ctx, query, orderRowID, item.ProductID, item.Quantity, item.Price).
			Scan(&item.ID, &item.CreatedAt)
		if err != nil {
			return fmt.Errorf("store: failed to insert order item for product %d: %w", item.ProductID, err)
		}
	}

	return nil
}

func (t *pgxTx) RedeemCoupon(ctx context.Context, couponID int64) error {
	// The cap guard in the WHERE clause makes a concurrent redemption
	// past maximum_uses impossible: the losing transaction affects
	// zero rows and aborts.
	query := `
		UPDATE coupons
		SET used_count = used_count + 1
		WHERE id = $1 AND used_count < maximum_uses
	`

	cmdTag, err := t.tx.Exec(ctx, query, couponID)
	if err != nil {
		return fmt.Errorf("store: failed to redeem coupon %d: %w", couponID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return coupon.ErrCouponInvalid
	}

	return nil
}

func (t *pgxTx) InsertOrderCoupon(ctx context.Context, orderRowID, couponID int64, discount decimal.Decimal) error {
	query := `INSERT INTO order_coupons (order_id, coupon_id, discount_amount) VALUES ($1, $2, $3)`

	_, err := t.tx.Exec(ctx, query, orderRowID, couponID, discount)
	if err != nil {
		return fmt.Errorf("store: failed to insert order coupon for order %d: %w", orderRowID, err)
	}

	return nil
}

func (t *pgxTx) InsertPayment(ctx context.Context, p *payment.Payment) error {
	query := `
		INSERT INTO payments (payment_id, order_id, payment_method, status, amount, transaction_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := t.tx.QueryRow(ctx, query,
		p.PaymentID, p.OrderID, p.Method, p.Status, p.Amount, p.TransactionID,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("store: failed to insert payment %s: %w", p.PaymentID, err)
	}

	return nil
}

func (t *pgxTx) ClearCart(ctx context.Context, cartID int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		return fmt.Errorf("store: failed to clear cart %d: %w", cartID, err)
	}

	return nil
}
