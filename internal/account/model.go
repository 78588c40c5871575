package account

import (
	"time"

	"github.com/gofrs/uuid"

	"github.com/vasiliy-maslov/ecommerce-core/internal/auth"
)

// Profile is the shop-side record for an externally authenticated
// user. Identity (credentials, sessions) lives outside this service;
// the profile only carries contact data and the assigned role.
type Profile struct {
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	Email      string    `json:"email" db:"email"`
	FirstName  string    `json:"first_name" db:"first_name"`
	LastName   string    `json:"last_name" db:"last_name"`
	Phone      string    `json:"phone" db:"phone"`
	Address    string    `json:"address" db:"address"`
	City       string    `json:"city" db:"city"`
	State      string    `json:"state" db:"state"`
	PostalCode string    `json:"postal_code" db:"postal_code"`
	Country    string    `json:"country" db:"country"`
	Role       auth.Role `json:"role" db:"role"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
