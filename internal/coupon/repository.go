package coupon

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/vasiliy-maslov/ecommerce-core/internal/postgres"
)

type Repository interface {
	GetByCode(ctx context.Context, code string) (*Coupon, error)
}

type repository struct {
	db postgres.Querier
}

func NewRepository(db postgres.Querier) Repository {
	return &repository{db: db}
}

// NormalizeCode upper-cases and trims a user-supplied coupon code.
// Codes are stored upper-cased, so lookups go through this too.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (r *repository) GetByCode(ctx context.Context, code string) (*Coupon, error) {
	query := `
		SELECT id, code, discount_type, discount_value, minimum_amount,
		       maximum_uses, used_count, valid_from, valid_to, is_active, created_at
		FROM coupons
		WHERE code = $1
	`

	var c Coupon
	err := r.db.QueryRow(ctx, query, NormalizeCode(code)).Scan(
		&c.ID,
		&c.Code,
		&c.DiscountType,
		&c.DiscountValue,
		&c.MinimumAmount,
		&c.MaximumUses,
		&c.UsedCount,
		&c.ValidFrom,
		&c.ValidTo,
		&c.IsActive,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("repository: failed to select coupon %q: %w", code, err)
	}

	return &c, nil
}
