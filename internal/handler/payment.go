package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"

	"github.com/vasiliy-maslov/ecommerce-core/internal/auth"
	"github.com/vasiliy-maslov/ecommerce-core/internal/payment"
)

type PaymentHandler struct {
	repo payment.Repository
}

func NewPaymentHandler(repo payment.Repository) *PaymentHandler {
	return &PaymentHandler{repo: repo}
}

// Payment lookup by public id is a back-office view; customers see
// their payment embedded in the order detail instead.
func (h *PaymentHandler) RegisterRoutes(router chi.Router) {
	router.Get("/payments/{id}", auth.Require(h.handleGetPayment, auth.RoleStaff, auth.RoleOwner))
}

func (h *PaymentHandler) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	paymentID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid payment id")
		return
	}

	p, err := h.repo.GetByPaymentID(r.Context(), paymentID)
	if err != nil {
		respondWithServiceError(w, err, "failed to get payment")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "payment": p})
}
