package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"

	"github.com/vasiliy-maslov/ecommerce-core/internal/auth"
	"github.com/vasiliy-maslov/ecommerce-core/internal/order"
)

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type OrderHandler struct {
	svc      order.Service
	validate *validator.Validate
}

func NewOrderHandler(svc order.Service) *OrderHandler {
	return &OrderHandler{svc: svc, validate: validator.New()}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router) {
	router.Get("/orders", h.handleListOrders)
	router.Get("/orders/{id}", h.handleGetOrder)
	router.Post("/orders/{id}/delivered", h.handleMarkDelivered)
	router.Post("/orders/{id}/status", auth.Require(h.handleUpdateStatus, auth.RoleStaff, auth.RoleOwner))
}

func parseOrderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid order id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *OrderHandler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	orders, err := h.svc.ListByUser(r.Context(), p.UserID)
	if err != nil {
		respondWithServiceError(w, err, "failed to list orders")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "orders": orders})
}

func (h *OrderHandler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	orderID, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	var o *order.Order
	var err error
	if auth.Allowed(p.Role, auth.RoleStaff, auth.RoleOwner) {
		o, err = h.svc.Get(r.Context(), orderID)
	} else {
		o, err = h.svc.GetForUser(r.Context(), p.UserID, orderID)
	}
	if err != nil {
		respondWithServiceError(w, err, "failed to get order")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"order":       o,
		"grand_total": o.GrandTotal().StringFixed(2),
	})
}

// handleMarkDelivered is the customer-facing confirmation; it is only
// legal on an order the caller owns and only from shipped.
func (h *OrderHandler) handleMarkDelivered(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}
	orderID, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	o, err := h.svc.MarkDelivered(r.Context(), p.UserID, orderID)
	if err != nil {
		respondWithServiceError(w, err, "failed to mark order delivered")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "order marked as delivered",
		"status":  o.Status,
	})
}

func (h *OrderHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseOrderID(w, r)
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	o, err := h.svc.UpdateStatus(r.Context(), orderID, order.Status(req.Status))
	if err != nil {
		respondWithServiceError(w, err, "failed to update order status")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "order status updated",
		"status":  o.Status,
	})
}
