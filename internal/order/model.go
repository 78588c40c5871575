package order

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"

	"github.com/vasiliy-maslov/ecommerce-core/internal/payment"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped,
		StatusDelivered, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

var allowedTransitions = map[Status]map[Status]bool{
	StatusPending:    {StatusConfirmed: true, StatusCancelled: true},
	StatusConfirmed:  {StatusProcessing: true, StatusCancelled: true},
	StatusProcessing: {StatusShipped: true},
	StatusShipped:    {StatusDelivered: true},
	StatusDelivered:  {},
	StatusCancelled:  {},
	StatusRefunded:   {},
}

// CanTransition reports whether an order may move from one status to
// another. Refunded is administrative and reachable from any state.
// Re-applying the current status is allowed; the payment sync it
// triggers is idempotent.
func CanTransition(from, to Status) bool {
	if to == StatusRefunded {
		return true
	}
	if from == to {
		return true
	}
	return allowedTransitions[from][to]
}

// SyncedPaymentStatus returns the payment status an order status change
// forces, or ok=false when the payment stays as it is. completeNow is
// set when the transition into completed must stamp completed_at.
func SyncedPaymentStatus(orderStatus Status, current payment.Status) (next payment.Status, completeNow, ok bool) {
	switch orderStatus {
	case StatusConfirmed, StatusProcessing, StatusShipped:
		if current == payment.StatusPending {
			return payment.StatusCompleted, true, true
		}
	case StatusCancelled:
		if current == payment.StatusPending || current == payment.StatusProcessing {
			return payment.StatusCancelled, false, true
		}
	case StatusDelivered:
		if current != payment.StatusCompleted {
			return payment.StatusCompleted, true, true
		}
	}
	return current, false, false
}

// Item is an order line. Price is the unit price captured at order
// time; later product price changes never touch it.
type Item struct {
	ID          int64           `json:"id" db:"id"`
	OrderID     int64           `json:"-" db:"order_id"`
	ProductID   int64           `json:"product_id" db:"product_id"`
	ProductName string          `json:"product_name" db:"product_name"`
	Quantity    int             `json:"quantity" db:"quantity"`
	Price       decimal.Decimal `json:"price" db:"price"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

func (i Item) TotalPrice() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CouponUse records which coupon an order redeemed and the exact
// discount that was applied.
type CouponUse struct {
	CouponID       int64           `json:"coupon_id" db:"coupon_id"`
	Code           string          `json:"code" db:"code"`
	DiscountAmount decimal.Decimal `json:"discount_amount" db:"discount_amount"`
}

// Order is the immutable record of a completed checkout. Billing and
// shipping fields are snapshots copied at creation, not live profile
// references. Only Status (and UpdatedAt) ever changes afterwards.
type Order struct {
	ID      int64     `json:"-" db:"id"`
	OrderID uuid.UUID `json:"order_id" db:"order_id"`
	UserID  uuid.UUID `json:"user_id" db:"user_id"`
	Status  Status    `json:"status" db:"status"`

	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`
	Email     string `json:"email" db:"email"`
	Phone     string `json:"phone" db:"phone"`

	ShippingFirstName  string `json:"shipping_first_name" db:"shipping_first_name"`
	ShippingLastName   string `json:"shipping_last_name" db:"shipping_last_name"`
	ShippingPhone      string `json:"shipping_phone" db:"shipping_phone"`
	ShippingAddress    string `json:"shipping_address" db:"shipping_address"`
	ShippingCity       string `json:"shipping_city" db:"shipping_city"`
	ShippingState      string `json:"shipping_state" db:"shipping_state"`
	ShippingPostalCode string `json:"shipping_postal_code" db:"shipping_postal_code"`
	ShippingCountry    string `json:"shipping_country" db:"shipping_country"`

	TotalAmount  decimal.Decimal `json:"total_amount" db:"total_amount"`
	ShippingCost decimal.Decimal `json:"shipping_cost" db:"shipping_cost"`
	TaxAmount    decimal.Decimal `json:"tax_amount" db:"tax_amount"`

	OrderNotes string `json:"order_notes,omitempty" db:"order_notes"`

	Items  []Item     `json:"items" db:"-"`
	Coupon *CouponUse `json:"coupon,omitempty" db:"-"`

	// Payment is attached on single-order reads; list views leave it nil.
	Payment *payment.Payment `json:"payment,omitempty" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// GrandTotal is always computed, never stored.
func (o *Order) GrandTotal() decimal.Decimal {
	return o.TotalAmount.Add(o.ShippingCost).Add(o.TaxAmount)
}

func (o *Order) TotalItems() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}
