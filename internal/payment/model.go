package payment

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

type Method string

const (
	MethodBankTransfer   Method = "bank_transfer"
	MethodCashOnDelivery Method = "cash_on_delivery"
	MethodABAPay         Method = "aba_pay"
	MethodWing           Method = "wing"
)

func (m Method) Valid() bool {
	switch m {
	case MethodBankTransfer, MethodCashOnDelivery, MethodABAPay, MethodWing:
		return true
	}
	return false
}

// Electronic reports whether the method settles through a provider.
// Providers are labels only at this stage; no gateway call is made, but
// electronic payments get a transaction id at creation.
func (m Method) Electronic() bool {
	return m != MethodCashOnDelivery
}

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
)

func (s Status) String() string {
	return string(s)
}

type Payment struct {
	ID              int64           `json:"-" db:"id"`
	PaymentID       uuid.UUID       `json:"payment_id" db:"payment_id"`
	OrderID         int64           `json:"-" db:"order_id"`
	Method          Method          `json:"payment_method" db:"payment_method"`
	Status          Status          `json:"status" db:"status"`
	Amount          decimal.Decimal `json:"amount" db:"amount"`
	TransactionID   *string         `json:"transaction_id,omitempty" db:"transaction_id"`
	GatewayResponse []byte          `json:"-" db:"gateway_response"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
	CompletedAt     *time.Time      `json:"completed_at,omitempty" db:"completed_at"`
}
