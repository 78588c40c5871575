package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/ecommerce-core/internal/auth"
)

var ErrInvalidRole = errors.New("invalid role")

type Service interface {
	// EnsureProfile provisions a profile for a freshly registered
	// user. The registration workflow calls it explicitly; it is
	// idempotent, so a retry after a half-failed registration is
	// safe.
	EnsureProfile(ctx context.Context, userID uuid.UUID, email string) (*Profile, error)
	Get(ctx context.Context, userID uuid.UUID) (*Profile, error)
	Update(ctx context.Context, p *Profile) (*Profile, error)
	// AssignRole changes a user's role. Only an owner may call it,
	// and every assignment is logged with the acting principal, so
	// role changes stay a deliberate, auditable operation rather
	// than a side effect of some other update.
	AssignRole(ctx context.Context, actor auth.Principal, userID uuid.UUID, role auth.Role) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) EnsureProfile(ctx context.Context, userID uuid.UUID, email string) (*Profile, error) {
	p := &Profile{
		UserID: userID,
		Email:  email,
		Role:   auth.RoleCustomer,
	}

	err := s.repo.Insert(ctx, p)
	if err == nil {
		log.Info().Stringer("user_id", userID).Msg("service: profile provisioned")
		return p, nil
	}
	if !errors.Is(err, ErrProfileExists) {
		return nil, err
	}

	return s.repo.GetByUserID(ctx, userID)
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	return s.repo.GetByUserID(ctx, userID)
}

func (s *service) Update(ctx context.Context, p *Profile) (*Profile, error) {
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return s.repo.GetByUserID(ctx, p.UserID)
}

func (s *service) AssignRole(ctx context.Context, actor auth.Principal, userID uuid.UUID, role auth.Role) error {
	if !auth.Allowed(actor.Role, auth.RoleOwner) {
		return auth.ErrUnauthorized
	}
	if _, err := auth.ParseRole(string(role)); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	if err := s.repo.UpdateRole(ctx, userID, role); err != nil {
		return err
	}

	log.Info().
		Stringer("actor_id", actor.UserID).
		Stringer("user_id", userID).
		Str("role", string(role)).
		Msg("service: role assigned")
	return nil
}
