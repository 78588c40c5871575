package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vasiliy-maslov/ecommerce-core/internal/catalog"
)

type CatalogHandler struct {
	repo catalog.Repository
}

func NewCatalogHandler(repo catalog.Repository) *CatalogHandler {
	return &CatalogHandler{repo: repo}
}

func (h *CatalogHandler) RegisterRoutes(router chi.Router) {
	router.Get("/products", h.handleListProducts)
	router.Get("/products/{id}", h.handleGetProduct)
	router.Get("/categories", h.handleListCategories)
}

func (h *CatalogHandler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	var categoryID *int64
	if raw := r.URL.Query().Get("category"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid category id")
			return
		}
		categoryID = &id
	}

	products, err := h.repo.ListProducts(r.Context(), categoryID)
	if err != nil {
		respondWithServiceError(w, err, "failed to list products")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "products": products})
}

func (h *CatalogHandler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := h.repo.GetProductByID(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, err, "failed to get product")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "product": product})
}

func (h *CatalogHandler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.repo.ListCategories(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "failed to list categories")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "categories": categories})
}
