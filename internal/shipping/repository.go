package shipping

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vasiliy-maslov/ecommerce-core/internal/postgres"
)

var ErrMethodNotFound = errors.New("shipping method not found")

type Repository interface {
	GetActiveByID(ctx context.Context, id int64) (*Method, error)
	ListActive(ctx context.Context) ([]Method, error)
}

type repository struct {
	db postgres.Querier
}

func NewRepository(db postgres.Querier) Repository {
	return &repository{db: db}
}

const methodColumns = `id, name, description, cost, estimated_days, is_active, created_at`

func (r *repository) GetActiveByID(ctx context.Context, id int64) (*Method, error) {
	query := `SELECT ` + methodColumns + ` FROM shipping_methods WHERE id = $1 AND is_active`

	var m Method
	err := r.db.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.Name, &m.Description, &m.Cost, &m.EstimatedDays, &m.IsActive, &m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMethodNotFound
		}
		return nil, fmt.Errorf("repository: failed to select shipping method %d: %w", id, err)
	}

	return &m, nil
}

func (r *repository) ListActive(ctx context.Context) ([]Method, error) {
	query := `SELECT ` + methodColumns + ` FROM shipping_methods WHERE is_active ORDER BY cost`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query shipping methods: %w", err)
	}
	defer rows.Close()

	methods := make([]Method, 0)
	for rows.Next() {
		var m Method
		err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.Cost, &m.EstimatedDays, &m.IsActive, &m.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan shipping method: %w", err)
		}
		methods = append(methods, m)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating shipping methods: %w", err)
	}

	return methods, nil
}
