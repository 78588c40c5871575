package report_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/ecommerce-core/internal/order"
	"github.com/vasiliy-maslov/ecommerce-core/internal/report"
)

type mockRepository struct {
	ordersInRangeFunc func(ctx context.Context, from, to time.Time) ([]report.OrderRow, error)
	topProductsFunc   func(ctx context.Context, from, to time.Time, limit int) ([]report.ProductSales, error)
	topCustomersFunc  func(ctx context.Context, from, to time.Time, limit int) ([]report.CustomerSales, error)
}

func (m *mockRepository) OrdersInRange(ctx context.Context, from, to time.Time) ([]report.OrderRow, error) {
	return m.ordersInRangeFunc(ctx, from, to)
}

func (m *mockRepository) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]report.ProductSales, error) {
	return m.topProductsFunc(ctx, from, to, limit)
}

func (m *mockRepository) TopCustomers(ctx context.Context, from, to time.Time, limit int) ([]report.CustomerSales, error) {
	return m.topCustomersFunc(ctx, from, to, limit)
}

func row(status order.Status, total string, itemCount int, created string) report.OrderRow {
	t, err := time.Parse(time.RFC3339, created)
	if err != nil {
		panic(err)
	}
	return report.OrderRow{
		Status:      status,
		TotalAmount: decimal.RequireFromString(total),
		ItemCount:   itemCount,
		CreatedAt:   t,
	}
}

func TestService_Sales_DeliveredOnlyRevenue(t *testing.T) {
	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	repo := &mockRepository{
		ordersInRangeFunc: func(ctx context.Context, gotFrom, gotTo time.Time) ([]report.OrderRow, error) {
			assert.True(t, gotFrom.Equal(from))
			assert.True(t, gotTo.Equal(to))
			// The repository already applied the range filter; the
			// service only sees in-range rows.
			return []report.OrderRow{
				row(order.StatusDelivered, "100.00", 2, "2025-06-03T10:00:00Z"),
				row(order.StatusDelivered, "50.50", 1, "2025-06-03T15:00:00Z"),
				row(order.StatusPending, "999.99", 3, "2025-06-04T09:00:00Z"),
				row(order.StatusCancelled, "20.00", 1, "2025-06-05T09:00:00Z"),
			}, nil
		},
	}

	svc := report.NewService(repo)
	rep, err := svc.Sales(context.Background(), from, to)

	require.NoError(t, err)
	assert.Equal(t, 2, rep.TotalOrders, "headline count covers delivered orders only")
	assert.Equal(t, "150.50", rep.TotalRevenue.StringFixed(2), "only delivered orders count as revenue")
	assert.Equal(t, "75.25", rep.AverageOrderValue.StringFixed(2), "average divides by delivered orders, not all orders")
	assert.Equal(t, 3, rep.TotalItemsSold, "items in pending or cancelled orders were never sold")

	byStatus := make(map[order.Status]report.StatusStat)
	for _, st := range rep.ByStatus {
		byStatus[st.Status] = st
	}
	assert.Equal(t, 2, byStatus[order.StatusDelivered].Count)
	assert.Equal(t, "150.50", byStatus[order.StatusDelivered].Revenue.StringFixed(2))
	assert.Equal(t, 1, byStatus[order.StatusPending].Count)
	assert.True(t, byStatus[order.StatusPending].Revenue.IsZero(), "pending orders contribute no revenue")
	assert.True(t, byStatus[order.StatusCancelled].Revenue.IsZero())

	// The daily series follows the headline numbers: days with only
	// non-delivered orders do not appear.
	require.Len(t, rep.ByDay, 1)
	assert.Equal(t, "2025-06-03", rep.ByDay[0].Date)
	assert.Equal(t, 2, rep.ByDay[0].Orders)
	assert.Equal(t, "150.50", rep.ByDay[0].Revenue.StringFixed(2))
}

func TestService_Sales_EmptyRange(t *testing.T) {
	repo := &mockRepository{
		ordersInRangeFunc: func(ctx context.Context, from, to time.Time) ([]report.OrderRow, error) {
			return nil, nil
		},
	}

	svc := report.NewService(repo)
	rep, err := svc.Sales(context.Background(),
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	assert.Equal(t, 0, rep.TotalOrders)
	assert.True(t, rep.TotalRevenue.IsZero())
	assert.True(t, rep.AverageOrderValue.IsZero(), "no division by zero on an empty range")
	assert.Empty(t, rep.ByStatus)
	assert.Empty(t, rep.ByDay)
}

func TestService_Sales_InvalidRange(t *testing.T) {
	svc := report.NewService(&mockRepository{})

	from := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.Sales(context.Background(), from, to)

	assert.ErrorIs(t, err, report.ErrInvalidRange)
}

func TestService_TopProducts_DefaultLimit(t *testing.T) {
	var gotLimit int
	repo := &mockRepository{
		topProductsFunc: func(ctx context.Context, from, to time.Time, limit int) ([]report.ProductSales, error) {
			gotLimit = limit
			return []report.ProductSales{}, nil
		},
	}

	svc := report.NewService(repo)
	_, err := svc.TopProducts(context.Background(),
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), 0)

	require.NoError(t, err)
	assert.Equal(t, 10, gotLimit)
}
