package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vasiliy-maslov/ecommerce-core/internal/auth"
	"github.com/vasiliy-maslov/ecommerce-core/internal/postgres"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileExists   = errors.New("profile already exists")
)

type Repository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error)
	Insert(ctx context.Context, p *Profile) error
	Update(ctx context.Context, p *Profile) error
	UpdateRole(ctx context.Context, userID uuid.UUID, role auth.Role) error
}

type repository struct {
	db postgres.Querier
}

func NewRepository(db postgres.Querier) Repository {
	return &repository{db: db}
}

const profileColumns = `user_id, email, first_name, last_name, phone, address, city, state, postal_code, country, role, created_at, updated_at`

func (r *repository) GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`

	var p Profile
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&p.UserID, &p.Email, &p.FirstName, &p.LastName, &p.Phone,
		&p.Address, &p.City, &p.State, &p.PostalCode, &p.Country,
		&p.Role, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("repository: failed to get profile %s: %w", userID, err)
	}

	return &p, nil
}

func (r *repository) Insert(ctx context.Context, p *Profile) error {
	query := `
		INSERT INTO profiles (user_id, email, first_name, last_name, phone, address, city, state, postal_code, country, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		p.UserID, p.Email, p.FirstName, p.LastName, p.Phone,
		p.Address, p.City, p.State, p.PostalCode, p.Country, p.Role,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		// ON CONFLICT DO NOTHING returns no row when the profile
		// already exists; the caller treats that as success.
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrProfileExists
		}
		return fmt.Errorf("repository: failed to insert profile %s: %w", p.UserID, err)
	}

	return nil
}

func (r *repository) Update(ctx context.Context, p *Profile) error {
	query := `
		UPDATE profiles
		SET email = $2, first_name = $3, last_name = $4, phone = $5,
		    address = $6, city = $7, state = $8, postal_code = $9, country = $10,
		    updated_at = now()
		WHERE user_id = $1
	`

	tag, err := r.db.Exec(ctx, query,
		p.UserID, p.Email, p.FirstName, p.LastName, p.Phone,
		p.Address, p.City, p.State, p.PostalCode, p.Country,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to update profile %s: %w", p.UserID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProfileNotFound
	}

	return nil
}

func (r *repository) UpdateRole(ctx context.Context, userID uuid.UUID, role auth.Role) error {
	query := `UPDATE profiles SET role = $2, updated_at = now() WHERE user_id = $1`

	tag, err := r.db.Exec(ctx, query, userID, role)
	if err != nil {
		return fmt.Errorf("repository: failed to update role for %s: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProfileNotFound
	}

	return nil
}
