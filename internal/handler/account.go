package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"

	"github.com/vasiliy-maslov/ecommerce-core/internal/account"
	"github.com/vasiliy-maslov/ecommerce-core/internal/auth"
)

type EnsureProfileRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type UpdateProfileRequest struct {
	Email      string `json:"email" validate:"required,email"`
	FirstName  string `json:"first_name" validate:"required,min=2"`
	LastName   string `json:"last_name" validate:"required,min=2"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type AssignRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

type AccountHandler struct {
	svc      account.Service
	validate *validator.Validate
}

func NewAccountHandler(svc account.Service) *AccountHandler {
	return &AccountHandler{svc: svc, validate: validator.New()}
}

func (h *AccountHandler) RegisterRoutes(router chi.Router) {
	// The registration workflow calls this explicitly right after the
	// identity provider creates the user.
	router.Post("/profile", h.handleEnsureProfile)
	router.Get("/profile", h.handleGetProfile)
	router.Put("/profile", h.handleUpdateProfile)
	router.Post("/profiles/{userID}/role", auth.Require(h.handleAssignRole, auth.RoleOwner))
}

func (h *AccountHandler) handleEnsureProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req EnsureProfileRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	profile, err := h.svc.EnsureProfile(r.Context(), p.UserID, req.Email)
	if err != nil {
		respondWithServiceError(w, err, "failed to provision profile")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "profile": profile})
}

func (h *AccountHandler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	profile, err := h.svc.Get(r.Context(), p.UserID)
	if err != nil {
		respondWithServiceError(w, err, "failed to get profile")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "profile": profile})
}

func (h *AccountHandler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	updated, err := h.svc.Update(r.Context(), &account.Profile{
		UserID:     p.UserID,
		Email:      req.Email,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Phone:      req.Phone,
		Address:    req.Address,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
		Country:    req.Country,
	})
	if err != nil {
		respondWithServiceError(w, err, "failed to update profile")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "profile": updated})
}

func (h *AccountHandler) handleAssignRole(w http.ResponseWriter, r *http.Request) {
	p, ok := principal(w, r)
	if !ok {
		return
	}

	userID, err := uuid.FromString(chi.URLParam(r, "userID"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req AssignRoleRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	if err := h.svc.AssignRole(r.Context(), p, userID, auth.Role(req.Role)); err != nil {
		respondWithServiceError(w, err, "failed to assign role")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "message": "role assigned"})
}
