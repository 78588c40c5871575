package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vasiliy-maslov/ecommerce-core/internal/auth"
	"github.com/vasiliy-maslov/ecommerce-core/internal/report"
)

type ReportHandler struct {
	svc report.Service
}

func NewReportHandler(svc report.Service) *ReportHandler {
	return &ReportHandler{svc: svc}
}

func (h *ReportHandler) RegisterRoutes(router chi.Router) {
	router.Get("/reports/sales", auth.Require(h.handleSales, auth.RoleOwner))
	router.Get("/reports/top-products", auth.Require(h.handleTopProducts, auth.RoleOwner))
	router.Get("/reports/top-customers", auth.Require(h.handleTopCustomers, auth.RoleOwner))
}

// parseRange reads from/to query params as dates. A missing range
// defaults to the last 30 days through the end of today; to is
// exclusive. Both defaults sit on midnight so they carry the same
// whole-day semantics as explicit dates.
func parseRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	from := today.AddDate(0, 0, -30)
	to := today.AddDate(0, 0, 1)

	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid from date, expected YYYY-MM-DD")
			return time.Time{}, time.Time{}, false
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid to date, expected YYYY-MM-DD")
			return time.Time{}, time.Time{}, false
		}
		// An inclusive date becomes an exclusive midnight bound.
		to = parsed.AddDate(0, 0, 1)
	}

	return from, to, true
}

func (h *ReportHandler) handleSales(w http.ResponseWriter, r *http.Request) {
	from, to, ok := parseRange(w, r)
	if !ok {
		return
	}

	rep, err := h.svc.Sales(r.Context(), from, to)
	if err != nil {
		respondWithServiceError(w, err, "failed to build sales report")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "report": rep})
}

func (h *ReportHandler) handleTopProducts(w http.ResponseWriter, r *http.Request) {
	from, to, ok := parseRange(w, r)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	rows, err := h.svc.TopProducts(r.Context(), from, to, limit)
	if err != nil {
		respondWithServiceError(w, err, "failed to build top products report")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "products": rows})
}

func (h *ReportHandler) handleTopCustomers(w http.ResponseWriter, r *http.Request) {
	from, to, ok := parseRange(w, r)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	rows, err := h.svc.TopCustomers(r.Context(), from, to, limit)
	if err != nil {
		respondWithServiceError(w, err, "failed to build top customers report")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "customers": rows})
}
