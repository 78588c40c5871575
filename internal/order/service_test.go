package order_test

import (
	"context"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/ecommerce-core/internal/order"
	"github.com/vasiliy-maslov/ecommerce-core/internal/payment"
)

type mockRepository struct {
	getByOrderIDFunc       func(ctx context.Context, orderID uuid.UUID) (*order.Order, error)
	listByUserFunc         func(ctx context.Context, userID uuid.UUID) ([]order.Order, error)
	updateStatusSyncedFunc func(ctx context.Context, orderID uuid.UUID, to order.Status) (*order.Order, error)
}

func (m *mockRepository) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
	return m.getByOrderIDFunc(ctx, orderID)
}

func (m *mockRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]order.Order, error) {
	return m.listByUserFunc(ctx, userID)
}

func (m *mockRepository) UpdateStatusSynced(ctx context.Context, orderID uuid.UUID, to order.Status) (*order.Order, error) {
	return m.updateStatusSyncedFunc(ctx, orderID, to)
}

// mockPaymentRepository reports no payment row unless a func is set,
// so tests that do not care about payments stay short.
type mockPaymentRepository struct {
	getByOrderRowIDFunc func(ctx context.Context, orderID int64) (*payment.Payment, error)
	getByPaymentIDFunc  func(ctx context.Context, paymentID uuid.UUID) (*payment.Payment, error)
}

func (m *mockPaymentRepository) GetByOrderRowID(ctx context.Context, orderID int64) (*payment.Payment, error) {
	if m.getByOrderRowIDFunc == nil {
		return nil, payment.ErrPaymentNotFound
	}
	return m.getByOrderRowIDFunc(ctx, orderID)
}

func (m *mockPaymentRepository) GetByPaymentID(ctx context.Context, paymentID uuid.UUID) (*payment.Payment, error) {
	if m.getByPaymentIDFunc == nil {
		return nil, payment.ErrPaymentNotFound
	}
	return m.getByPaymentIDFunc(ctx, paymentID)
}

var (
	ownerID    = uuid.Must(uuid.FromString("123e4567-e89b-12d3-a456-426614174000"))
	otherID    = uuid.Must(uuid.FromString("aaaa4567-e89b-12d3-a456-426614174000"))
	anOrderID  = uuid.Must(uuid.FromString("550e8400-e29b-41d4-a716-446655440000"))
	aPaymentID = uuid.Must(uuid.FromString("bbbb8400-e29b-41d4-a716-446655440000"))
)

func TestService_MarkDelivered(t *testing.T) {
	tests := []struct {
		name          string
		currentStatus order.Status
		userID        uuid.UUID
		wantErr       error
		wantUpdated   bool
	}{
		{
			name:          "shipped_order_succeeds",
			currentStatus: order.StatusShipped,
			userID:        ownerID,
			wantUpdated:   true,
		},
		{
			name:          "pending_order_rejected",
			currentStatus: order.StatusPending,
			userID:        ownerID,
			wantErr:       order.ErrInvalidTransition,
		},
		{
			name:          "delivered_order_rejected",
			currentStatus: order.StatusDelivered,
			userID:        ownerID,
			wantErr:       order.ErrInvalidTransition,
		},
		{
			name:          "foreign_order_reported_not_found",
			currentStatus: order.StatusShipped,
			userID:        otherID,
			wantErr:       order.ErrOrderNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var updated bool

			repo := &mockRepository{
				getByOrderIDFunc: func(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
					return &order.Order{OrderID: orderID, UserID: ownerID, Status: tt.currentStatus}, nil
				},
				updateStatusSyncedFunc: func(ctx context.Context, orderID uuid.UUID, to order.Status) (*order.Order, error) {
					updated = true
					assert.Equal(t, order.StatusDelivered, to)
					return &order.Order{OrderID: orderID, UserID: ownerID, Status: to}, nil
				},
			}

			svc := order.NewService(repo, &mockPaymentRepository{})
			got, err := svc.MarkDelivered(context.Background(), tt.userID, anOrderID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.False(t, updated, "a rejected transition must have no side effects")
				assert.Nil(t, got)
				return
			}

			require.NoError(t, err)
			assert.True(t, tt.wantUpdated, updated)
			assert.Equal(t, order.StatusDelivered, got.Status)
		})
	}
}

func TestService_UpdateStatus(t *testing.T) {
	tests := []struct {
		name          string
		currentStatus order.Status
		newStatus     order.Status
		wantErr       error
	}{
		{name: "pending_to_confirmed", currentStatus: order.StatusPending, newStatus: order.StatusConfirmed},
		{name: "shipped_to_cancelled_rejected", currentStatus: order.StatusShipped, newStatus: order.StatusCancelled, wantErr: order.ErrInvalidTransition},
		{name: "unknown_status_rejected", currentStatus: order.StatusPending, newStatus: order.Status("archived"), wantErr: order.ErrInvalidTransition},
		{name: "admin_refund_from_delivered", currentStatus: order.StatusDelivered, newStatus: order.StatusRefunded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var updated bool

			repo := &mockRepository{
				getByOrderIDFunc: func(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
					return &order.Order{OrderID: orderID, UserID: ownerID, Status: tt.currentStatus}, nil
				},
				updateStatusSyncedFunc: func(ctx context.Context, orderID uuid.UUID, to order.Status) (*order.Order, error) {
					updated = true
					return &order.Order{OrderID: orderID, Status: to}, nil
				},
			}

			svc := order.NewService(repo, &mockPaymentRepository{})
			_, err := svc.UpdateStatus(context.Background(), anOrderID, tt.newStatus)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.False(t, updated)
			} else {
				require.NoError(t, err)
				assert.True(t, updated)
			}
		})
	}
}

func TestService_UpdateStatus_NotFound(t *testing.T) {
	repo := &mockRepository{
		getByOrderIDFunc: func(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
			return nil, order.ErrOrderNotFound
		},
	}

	svc := order.NewService(repo, &mockPaymentRepository{})
	_, err := svc.UpdateStatus(context.Background(), anOrderID, order.StatusConfirmed)

	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestService_Get_IncludesPayment(t *testing.T) {
	repo := &mockRepository{
		getByOrderIDFunc: func(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
			return &order.Order{ID: 42, OrderID: orderID, UserID: ownerID, Status: order.StatusConfirmed}, nil
		},
	}
	payments := &mockPaymentRepository{
		getByOrderRowIDFunc: func(ctx context.Context, orderID int64) (*payment.Payment, error) {
			assert.Equal(t, int64(42), orderID, "lookup uses the order row id, not the public uuid")
			return &payment.Payment{
				PaymentID: aPaymentID,
				OrderID:   orderID,
				Method:    payment.MethodABAPay,
				Status:    payment.StatusCompleted,
				Amount:    decimal.RequireFromString("99.99"),
			}, nil
		},
	}

	svc := order.NewService(repo, payments)
	got, err := svc.Get(context.Background(), anOrderID)

	require.NoError(t, err)
	require.NotNil(t, got.Payment)
	assert.Equal(t, aPaymentID, got.Payment.PaymentID)
	assert.Equal(t, payment.StatusCompleted, got.Payment.Status)
}

func TestService_Get_MissingPaymentTolerated(t *testing.T) {
	repo := &mockRepository{
		getByOrderIDFunc: func(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
			return &order.Order{ID: 7, OrderID: orderID, UserID: ownerID, Status: order.StatusPending}, nil
		},
	}

	svc := order.NewService(repo, &mockPaymentRepository{})
	got, err := svc.Get(context.Background(), anOrderID)

	require.NoError(t, err)
	assert.Nil(t, got.Payment)
}

func TestService_GetForUser(t *testing.T) {
	repo := &mockRepository{
		getByOrderIDFunc: func(ctx context.Context, orderID uuid.UUID) (*order.Order, error) {
			return &order.Order{OrderID: orderID, UserID: ownerID, Status: order.StatusPending}, nil
		},
	}
	svc := order.NewService(repo, &mockPaymentRepository{})

	got, err := svc.GetForUser(context.Background(), ownerID, anOrderID)
	require.NoError(t, err)
	assert.Equal(t, ownerID, got.UserID)

	// Existence of foreign orders must not leak.
	_, err = svc.GetForUser(context.Background(), otherID, anOrderID)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}
