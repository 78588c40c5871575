package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vasiliy-maslov/ecommerce-core/internal/order"
)

var ErrInvalidRange = errors.New("invalid report range")

const defaultTopLimit = 10

// statusOrder fixes the breakdown ordering so reports are stable
// across runs regardless of map iteration.
var statusOrder = []order.Status{
	order.StatusPending,
	order.StatusConfirmed,
	order.StatusProcessing,
	order.StatusShipped,
	order.StatusDelivered,
	order.StatusCancelled,
	order.StatusRefunded,
}

type Service interface {
	// Sales aggregates orders created in [from, to). The headline
	// numbers (order count, revenue, items, average) cover delivered
	// orders only; the per-status breakdown is the one view that
	// spans every status.
	Sales(ctx context.Context, from, to time.Time) (*SalesReport, error)
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]ProductSales, error)
	TopCustomers(ctx context.Context, from, to time.Time, limit int) ([]CustomerSales, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Sales(ctx context.Context, from, to time.Time) (*SalesReport, error) {
	if !to.After(from) {
		return nil, fmt.Errorf("%w: %s..%s", ErrInvalidRange, from.Format(time.DateOnly), to.Format(time.DateOnly))
	}

	rows, err := s.repo.OrdersInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	rep := &SalesReport{
		From:              from,
		To:                to,
		TotalRevenue:      decimal.Zero,
		AverageOrderValue: decimal.Zero,
	}

	statusCount := make(map[order.Status]int)
	statusRevenue := make(map[order.Status]decimal.Decimal)
	dayCount := make(map[string]int)
	dayRevenue := make(map[string]decimal.Decimal)
	var dayKeys []string

	for _, row := range rows {
		statusCount[row.Status]++

		if row.Status != order.StatusDelivered {
			continue
		}
		rep.TotalOrders++
		rep.TotalItemsSold += row.ItemCount
		rep.TotalRevenue = rep.TotalRevenue.Add(row.TotalAmount)
		statusRevenue[row.Status] = statusRevenue[row.Status].Add(row.TotalAmount)

		day := row.CreatedAt.Format(time.DateOnly)
		if _, seen := dayCount[day]; !seen {
			dayKeys = append(dayKeys, day)
			dayRevenue[day] = decimal.Zero
		}
		dayCount[day]++
		dayRevenue[day] = dayRevenue[day].Add(row.TotalAmount)
	}

	if rep.TotalOrders > 0 {
		rep.AverageOrderValue = rep.TotalRevenue.DivRound(decimal.NewFromInt(int64(rep.TotalOrders)), 2)
	}

	for _, st := range statusOrder {
		if statusCount[st] == 0 {
			continue
		}
		revenue := decimal.Zero
		if r, ok := statusRevenue[st]; ok {
			revenue = r
		}
		rep.ByStatus = append(rep.ByStatus, StatusStat{Status: st, Count: statusCount[st], Revenue: revenue})
	}

	for _, day := range dayKeys {
		rep.ByDay = append(rep.ByDay, DayStat{Date: day, Orders: dayCount[day], Revenue: dayRevenue[day]})
	}

	return rep, nil
}

func (s *service) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]ProductSales, error) {
	if !to.After(from) {
		return nil, fmt.Errorf("%w: %s..%s", ErrInvalidRange, from.Format(time.DateOnly), to.Format(time.DateOnly))
	}
	if limit <= 0 {
		limit = defaultTopLimit
	}
	return s.repo.TopProducts(ctx, from, to, limit)
}

func (s *service) TopCustomers(ctx context.Context, from, to time.Time, limit int) ([]CustomerSales, error) {
	if !to.After(from) {
		return nil, fmt.Errorf("%w: %s..%s", ErrInvalidRange, from.Format(time.DateOnly), to.Format(time.DateOnly))
	}
	if limit <= 0 {
		limit = defaultTopLimit
	}
	return s.repo.TopCustomers(ctx, from, to, limit)
}
