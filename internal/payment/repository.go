package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vasiliy-maslov/ecommerce-core/internal/postgres"
)

var ErrPaymentNotFound = errors.New("payment not found")

type Repository interface {
	GetByOrderRowID(ctx context.Context, orderID int64) (*Payment, error)
	GetByPaymentID(ctx context.Context, paymentID uuid.UUID) (*Payment, error)
}

type repository struct {
	db postgres.Querier
}

func NewRepository(db postgres.Querier) Repository {
	return &repository{db: db}
}

const paymentColumns = `
	id, payment_id, order_id, payment_method, status, amount,
	transaction_id, gateway_response, created_at, updated_at, completed_at
`

func (r *repository) scanOne(row pgx.Row) (*Payment, error) {
	var p Payment
	err := row.Scan(
		&p.ID,
		&p.PaymentID,
		&p.OrderID,
		&p.Method,
		&p.Status,
		&p.Amount,
		&p.TransactionID,
		&p.GatewayResponse,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) GetByOrderRowID(ctx context.Context, orderID int64) (*Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE order_id = $1`

	p, err := r.scanOne(r.db.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, ErrPaymentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("repository: failed to select payment for order %d: %w", orderID, err)
	}

	return p, nil
}

func (r *repository) GetByPaymentID(ctx context.Context, paymentID uuid.UUID) (*Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE payment_id = $1`

	p, err := r.scanOne(r.db.QueryRow(ctx, query, paymentID))
	if err != nil {
		if errors.Is(err, ErrPaymentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("repository: failed to select payment %s: %w", paymentID, err)
	}

	return p, nil
}
