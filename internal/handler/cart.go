package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vasiliy-maslov/ecommerce-core/internal/cart"
)

type AddItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"omitempty,gt=0"`
}

type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

type WishlistRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
}

type CartHandler struct {
	svc      cart.Service
	validate *validator.Validate
}

func NewCartHandler(svc cart.Service) *CartHandler {
	return &CartHandler{svc: svc, validate: validator.New()}
}

func (h *CartHandler) RegisterRoutes(router chi.Router) {
	router.Get("/cart", h.handleGetCart)
	router.Get("/cart/count", h.handleCartCount)
	router.Post("/cart/items", h.handleAddItem)
	router.Put("/cart/items/{id}", h.handleUpdateItem)
	router.Delete("/cart/items/{id}", h.handleRemoveItem)
	router.Delete("/cart", h.handleClearCart)

	router.Get("/wishlist", h.handleGetWishlist)
	router.Post("/wishlist", h.handleAddToWishlist)
	router.Delete("/wishlist/{productID}", h.handleRemoveFromWishlist)
	router.Post("/wishlist/{productID}/move-to-cart", h.handleMoveToCart)
}

func (h *CartHandler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	view, err := h.svc.Get(r.Context(), p.UserID)
	if err != nil {
		respondWithServiceError(w, err, "failed to get cart")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "cart": view})
}

// handleCartCount backs the cart badge; it only carries the item count.
func (h *CartHandler) handleCartCount(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	view, err := h.svc.Get(r.Context(), p.UserID)
	if err != nil {
		respondWithServiceError(w, err, "failed to get cart")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "count": view.TotalItems})
}

func (h *CartHandler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req AddItemRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}
	// Quick-add from a product listing sends no quantity.
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	view, err := h.svc.AddItem(r.Context(), p.UserID, req.ProductID, req.Quantity)
	if err != nil {
		respondWithServiceError(w, err, "failed to add item to cart")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "item added to cart",
		"count":   view.TotalItems,
		"cart":    view,
	})
}

func (h *CartHandler) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	itemID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req UpdateItemRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	view, err := h.svc.UpdateItem(r.Context(), p.UserID, itemID, req.Quantity)
	if err != nil {
		respondWithServiceError(w, err, "failed to update cart item")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "cart": view})
}

func (h *CartHandler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	itemID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	view, err := h.svc.RemoveItem(r.Context(), p.UserID, itemID)
	if err != nil {
		respondWithServiceError(w, err, "failed to remove cart item")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "cart": view})
}

func (h *CartHandler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	if err := h.svc.Clear(r.Context(), p.UserID); err != nil {
		respondWithServiceError(w, err, "failed to clear cart")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "message": "cart cleared"})
}

func (h *CartHandler) handleGetWishlist(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	products, err := h.svc.Wishlist(r.Context(), p.UserID)
	if err != nil {
		respondWithServiceError(w, err, "failed to get wishlist")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "products": products})
}

func (h *CartHandler) handleAddToWishlist(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req WishlistRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	if err := h.svc.AddToWishlist(r.Context(), p.UserID, req.ProductID); err != nil {
		respondWithServiceError(w, err, "failed to add product to wishlist")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "message": "product added to wishlist"})
}

func (h *CartHandler) handleRemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.svc.RemoveFromWishlist(r.Context(), p.UserID, productID); err != nil {
		respondWithServiceError(w, err, "failed to remove product from wishlist")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "message": "product removed from wishlist"})
}

func (h *CartHandler) handleMoveToCart(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	view, err := h.svc.MoveToCart(r.Context(), p.UserID, productID)
	if err != nil {
		respondWithServiceError(w, err, "failed to move product to cart")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "product moved to cart",
		"cart":    view,
	})
}
