package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vasiliy-maslov/ecommerce-core/internal/order"
)

// OrderRow is the slice of an order the aggregator reads. Reports are
// computed from these rows alone and never write back.
type OrderRow struct {
	Status      order.Status    `db:"status"`
	TotalAmount decimal.Decimal `db:"total_amount"`
	ItemCount   int             `db:"item_count"`
	CreatedAt   time.Time       `db:"created_at"`
}

// StatusStat is one row of the per-status breakdown. Revenue is only
// attributed to delivered orders; every other status carries a zero.
type StatusStat struct {
	Status  order.Status    `json:"status"`
	Count   int             `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

type DayStat struct {
	Date    string          `json:"date"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

type SalesReport struct {
	From              time.Time       `json:"from"`
	To                time.Time       `json:"to"`
	TotalOrders       int             `json:"total_orders"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	TotalItemsSold    int             `json:"total_items_sold"`
	ByStatus          []StatusStat    `json:"by_status"`
	ByDay             []DayStat       `json:"by_day"`
}

type ProductSales struct {
	ProductID    int64           `db:"product_id" json:"product_id"`
	ProductName  string          `db:"product_name" json:"product_name"`
	QuantitySold int             `db:"quantity_sold" json:"quantity_sold"`
	Revenue      decimal.Decimal `db:"revenue" json:"revenue"`
}

type CustomerSales struct {
	UserID        string          `db:"user_id" json:"user_id"`
	Email         string          `db:"email" json:"email"`
	OrderCount    int             `db:"order_count" json:"order_count"`
	TotalSpent    decimal.Decimal `db:"total_spent" json:"total_spent"`
	AvgOrderValue decimal.Decimal `db:"avg_order_value" json:"avg_order_value"`
}
