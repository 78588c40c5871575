package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/ecommerce-core/internal/payment"
)

type Service interface {
	// GetForUser returns the order only if the user owns it. A foreign
	// order is reported as not found, never as forbidden.
	GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*Order, error)
	Get(ctx context.Context, orderID uuid.UUID) (*Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
	// UpdateStatus is the staff/owner transition entry point.
	UpdateStatus(ctx context.Context, orderID uuid.UUID, to Status) (*Order, error)
	// MarkDelivered is the customer transition, legal only from shipped.
	MarkDelivered(ctx context.Context, userID, orderID uuid.UUID) (*Order, error)
}

type service struct {
	repo     Repository
	payments payment.Repository
}

func NewService(repo Repository, payments payment.Repository) Service {
	return &service{repo: repo, payments: payments}
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	o, err := s.repo.GetByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to fetch order")
		return nil, fmt.Errorf("service: failed to fetch order: %w", err)
	}

	pay, err := s.payments.GetByOrderRowID(ctx, o.ID)
	if err != nil {
		if !errors.Is(err, payment.ErrPaymentNotFound) {
			log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to fetch order payment")
			return nil, fmt.Errorf("service: failed to fetch order payment: %w", err)
		}
	} else {
		o.Payment = pay
	}

	return o, nil
}

func (s *service) GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*Order, error) {
	o, err := s.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrOrderNotFound
	}

	return o, nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to fetch user orders")
		return nil, fmt.Errorf("service: failed to fetch user orders: %w", err)
	}

	return orders, nil
}

func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, to Status) (*Order, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}

	current, err := s.repo.GetByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Stringer("order_id", orderID).Stringer("new_status", to).Msg("service: order not found, cannot update status")
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("service: failed to get order for status update: %w", err)
	}

	if !CanTransition(current.Status, to) {
		log.Warn().
			Stringer("order_id", orderID).
			Stringer("current_status", current.Status).
			Stringer("new_status", to).
			Msg("service: invalid status transition attempt")
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, to)
	}

	updated, err := s.repo.UpdateStatusSynced(ctx, orderID, to)
	if err != nil {
		if errors.Is(err, ErrInvalidTransition) || errors.Is(err, ErrOrderNotFound) || errors.Is(err, ErrInsufficientStock) {
			return nil, err
		}
		log.Error().Err(err).Stringer("order_id", orderID).Stringer("new_status", to).Msg("service: failed to update order status")
		return nil, fmt.Errorf("service: failed to update order status: %w", err)
	}

	log.Info().
		Stringer("order_id", orderID).
		Stringer("old_status", current.Status).
		Stringer("new_status", to).
		Msg("service: order status updated")
	return updated, nil
}

func (s *service) MarkDelivered(ctx context.Context, userID, orderID uuid.UUID) (*Order, error) {
	current, err := s.GetForUser(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	if current.Status != StatusShipped {
		log.Warn().
			Stringer("order_id", orderID).
			Stringer("current_status", current.Status).
			Msg("service: mark delivered attempted on order that is not shipped")
		return nil, fmt.Errorf("%w: order must be shipped before marking as delivered", ErrInvalidTransition)
	}

	updated, err := s.repo.UpdateStatusSynced(ctx, orderID, StatusDelivered)
	if err != nil {
		if errors.Is(err, ErrInvalidTransition) || errors.Is(err, ErrOrderNotFound) {
			return nil, err
		}
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to mark order delivered")
		return nil, fmt.Errorf("service: failed to mark order delivered: %w", err)
	}

	log.Info().Stringer("order_id", orderID).Stringer("user_id", userID).Msg("service: order marked delivered by customer")
	return updated, nil
}
