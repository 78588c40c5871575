package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vasiliy-maslov/ecommerce-core/internal/checkout"
	"github.com/vasiliy-maslov/ecommerce-core/internal/payment"
	"github.com/vasiliy-maslov/ecommerce-core/internal/shipping"
)

type CheckoutRequest struct {
	FirstName string `json:"first_name" validate:"required,min=2"`
	LastName  string `json:"last_name" validate:"required,min=2"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required,min=6"`

	ShippingFirstName  string `json:"shipping_first_name" validate:"omitempty,min=2"`
	ShippingLastName   string `json:"shipping_last_name" validate:"omitempty,min=2"`
	ShippingPhone      string `json:"shipping_phone"`
	ShippingAddress    string `json:"shipping_address" validate:"required"`
	ShippingCity       string `json:"shipping_city" validate:"required"`
	ShippingState      string `json:"shipping_state"`
	ShippingPostalCode string `json:"shipping_postal_code" validate:"required"`
	ShippingCountry    string `json:"shipping_country" validate:"required"`

	ShippingMethodID int64  `json:"shipping_method_id" validate:"required,gt=0"`
	PaymentMethod    string `json:"payment_method" validate:"required"`
	CouponCode       string `json:"coupon_code"`
	OrderNotes       string `json:"order_notes" validate:"max=1000"`
}

type CouponPreviewRequest struct {
	Code string `json:"code" validate:"required"`
}

type CheckoutHandler struct {
	svc      checkout.Service
	shipping shipping.Repository
	validate *validator.Validate
}

func NewCheckoutHandler(svc checkout.Service, shippingRepo shipping.Repository) *CheckoutHandler {
	return &CheckoutHandler{svc: svc, shipping: shippingRepo, validate: validator.New()}
}

func (h *CheckoutHandler) RegisterRoutes(router chi.Router) {
	router.Get("/checkout/shipping-methods", h.handleListShippingMethods)
	router.Post("/checkout/coupon-preview", h.handlePreviewCoupon)
	router.Post("/checkout", h.handleCheckout)
}

func (h *CheckoutHandler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req CheckoutRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	in := checkout.Input{
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Email:              req.Email,
		Phone:              req.Phone,
		ShippingFirstName:  req.ShippingFirstName,
		ShippingLastName:   req.ShippingLastName,
		ShippingPhone:      req.ShippingPhone,
		ShippingAddress:    req.ShippingAddress,
		ShippingCity:       req.ShippingCity,
		ShippingState:      req.ShippingState,
		ShippingPostalCode: req.ShippingPostalCode,
		ShippingCountry:    req.ShippingCountry,
		ShippingMethodID:   req.ShippingMethodID,
		PaymentMethod:      payment.Method(req.PaymentMethod),
		CouponCode:         req.CouponCode,
		OrderNotes:         req.OrderNotes,
	}
	// The shipping snapshot falls back to the billing contact when
	// the form leaves it blank.
	if in.ShippingFirstName == "" {
		in.ShippingFirstName = in.FirstName
	}
	if in.ShippingLastName == "" {
		in.ShippingLastName = in.LastName
	}
	if in.ShippingPhone == "" {
		in.ShippingPhone = in.Phone
	}

	result, err := h.svc.PlaceOrder(r.Context(), p.UserID, in)
	if err != nil {
		respondWithServiceError(w, err, "checkout failed")
		return
	}

	// Envelope money is fixed two-decimal; decimal's own JSON drops
	// trailing zeros.
	respondWithJSON(w, http.StatusCreated, map[string]any{
		"success":     true,
		"message":     "order placed",
		"order":       result.Order,
		"payment":     result.Payment,
		"subtotal":    result.Subtotal.StringFixed(2),
		"discount":    result.Discount.StringFixed(2),
		"grand_total": result.Order.GrandTotal().StringFixed(2),
	})
}

// handlePreviewCoupon backs the live discount preview on the checkout
// page. Unlike the final submission, an unusable coupon is an error
// here.
func (h *CheckoutHandler) handlePreviewCoupon(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req CouponPreviewRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	preview, err := h.svc.PreviewCoupon(r.Context(), p.UserID, req.Code)
	if err != nil {
		respondWithServiceError(w, err, "failed to preview coupon")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"code":      preview.Code,
		"discount":  preview.Discount.StringFixed(2),
		"new_total": preview.NewTotal.StringFixed(2),
	})
}

func (h *CheckoutHandler) handleListShippingMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.shipping.ListActive(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "failed to list shipping methods")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "shipping_methods": methods})
}
