package order_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/vasiliy-maslov/ecommerce-core/internal/order"
	"github.com/vasiliy-maslov/ecommerce-core/internal/payment"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from order.Status
		to   order.Status
		want bool
	}{
		{name: "pending_to_confirmed", from: order.StatusPending, to: order.StatusConfirmed, want: true},
		{name: "confirmed_to_processing", from: order.StatusConfirmed, to: order.StatusProcessing, want: true},
		{name: "processing_to_shipped", from: order.StatusProcessing, to: order.StatusShipped, want: true},
		{name: "shipped_to_delivered", from: order.StatusShipped, to: order.StatusDelivered, want: true},
		{name: "pending_to_cancelled", from: order.StatusPending, to: order.StatusCancelled, want: true},
		{name: "confirmed_to_cancelled", from: order.StatusConfirmed, to: order.StatusCancelled, want: true},
		{name: "processing_to_cancelled", from: order.StatusProcessing, to: order.StatusCancelled, want: false},
		{name: "shipped_to_cancelled", from: order.StatusShipped, to: order.StatusCancelled, want: false},
		{name: "pending_to_delivered", from: order.StatusPending, to: order.StatusDelivered, want: false},
		{name: "pending_to_shipped", from: order.StatusPending, to: order.StatusShipped, want: false},
		{name: "delivered_is_terminal", from: order.StatusDelivered, to: order.StatusProcessing, want: false},
		{name: "cancelled_is_terminal", from: order.StatusCancelled, to: order.StatusConfirmed, want: false},
		{name: "refunded_from_delivered", from: order.StatusDelivered, to: order.StatusRefunded, want: true},
		{name: "refunded_from_pending", from: order.StatusPending, to: order.StatusRefunded, want: true},
		{name: "reapply_same_status", from: order.StatusShipped, to: order.StatusShipped, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, order.CanTransition(tt.from, tt.to))
		})
	}
}

func TestSyncedPaymentStatus(t *testing.T) {
	tests := []struct {
		name         string
		orderStatus  order.Status
		current      payment.Status
		wantNext     payment.Status
		wantComplete bool
		wantChanged  bool
	}{
		{
			name:         "confirmed_completes_pending_payment",
			orderStatus:  order.StatusConfirmed,
			current:      payment.StatusPending,
			wantNext:     payment.StatusCompleted,
			wantComplete: true,
			wantChanged:  true,
		},
		{
			name:        "confirmed_leaves_completed_payment",
			orderStatus: order.StatusConfirmed,
			current:     payment.StatusCompleted,
			wantNext:    payment.StatusCompleted,
			wantChanged: false,
		},
		{
			name:         "shipped_completes_pending_payment",
			orderStatus:  order.StatusShipped,
			current:      payment.StatusPending,
			wantNext:     payment.StatusCompleted,
			wantComplete: true,
			wantChanged:  true,
		},
		{
			name:        "cancelled_cancels_pending_payment",
			orderStatus: order.StatusCancelled,
			current:     payment.StatusPending,
			wantNext:    payment.StatusCancelled,
			wantChanged: true,
		},
		{
			name:        "cancelled_cancels_processing_payment",
			orderStatus: order.StatusCancelled,
			current:     payment.StatusProcessing,
			wantNext:    payment.StatusCancelled,
			wantChanged: true,
		},
		{
			name:        "cancelled_leaves_completed_payment",
			orderStatus: order.StatusCancelled,
			current:     payment.StatusCompleted,
			wantNext:    payment.StatusCompleted,
			wantChanged: false,
		},
		{
			name:         "delivered_forces_completed",
			orderStatus:  order.StatusDelivered,
			current:      payment.StatusProcessing,
			wantNext:     payment.StatusCompleted,
			wantComplete: true,
			wantChanged:  true,
		},
		{
			name:        "delivered_idempotent_on_completed",
			orderStatus: order.StatusDelivered,
			current:     payment.StatusCompleted,
			wantNext:    payment.StatusCompleted,
			wantChanged: false,
		},
		{
			name:        "pending_changes_nothing",
			orderStatus: order.StatusPending,
			current:     payment.StatusPending,
			wantNext:    payment.StatusPending,
			wantChanged: false,
		},
		{
			name:        "refunded_changes_nothing",
			orderStatus: order.StatusRefunded,
			current:     payment.StatusCompleted,
			wantNext:    payment.StatusCompleted,
			wantChanged: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, completeNow, changed := order.SyncedPaymentStatus(tt.orderStatus, tt.current)
			assert.Equal(t, tt.wantNext, next)
			assert.Equal(t, tt.wantComplete, completeNow)
			assert.Equal(t, tt.wantChanged, changed)
		})
	}
}

func TestOrder_GrandTotal(t *testing.T) {
	o := order.Order{
		TotalAmount:  decimal.RequireFromString("90.00"),
		ShippingCost: decimal.RequireFromString("5.50"),
		TaxAmount:    decimal.RequireFromString("4.50"),
	}

	assert.True(t, o.GrandTotal().Equal(decimal.RequireFromString("100.00")))
}

func TestItem_TotalPrice(t *testing.T) {
	item := order.Item{Quantity: 3, Price: decimal.RequireFromString("19.99")}
	assert.Equal(t, "59.97", item.TotalPrice().StringFixed(2))
}
