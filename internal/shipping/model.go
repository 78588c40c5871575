package shipping

import (
	"time"

	"github.com/shopspring/decimal"
)

type Method struct {
	ID            int64           `json:"id" db:"id"`
	Name          string          `json:"name" db:"name"`
	Description   string          `json:"description" db:"description"`
	Cost          decimal.Decimal `json:"cost" db:"cost"`
	EstimatedDays int             `json:"estimated_days" db:"estimated_days"`
	IsActive      bool            `json:"is_active" db:"is_active"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}
