package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vasiliy-maslov/ecommerce-core/internal/account"
	"github.com/vasiliy-maslov/ecommerce-core/internal/auth"
	"github.com/vasiliy-maslov/ecommerce-core/internal/cart"
	"github.com/vasiliy-maslov/ecommerce-core/internal/catalog"
	"github.com/vasiliy-maslov/ecommerce-core/internal/checkout"
	"github.com/vasiliy-maslov/ecommerce-core/internal/order"
	"github.com/vasiliy-maslov/ecommerce-core/internal/payment"
	"github.com/vasiliy-maslov/ecommerce-core/internal/report"
	"github.com/vasiliy-maslov/ecommerce-core/internal/shipping"
)

// Deps bundles everything the router wires together.
type Deps struct {
	Catalog  catalog.Repository
	Shipping shipping.Repository
	Cart     cart.Service
	Checkout checkout.Service
	Order    order.Service
	Payment  payment.Repository
	Report   report.Service
	Account  account.Service
}

// NewRouter builds the full route tree. The catalog is public; every
// other route group sits behind the auth middleware.
func NewRouter(deps Deps) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	NewCatalogHandler(deps.Catalog).RegisterRoutes(router)

	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware)

		NewCartHandler(deps.Cart).RegisterRoutes(r)
		NewCheckoutHandler(deps.Checkout, deps.Shipping).RegisterRoutes(r)
		NewOrderHandler(deps.Order).RegisterRoutes(r)
		NewPaymentHandler(deps.Payment).RegisterRoutes(r)
		NewReportHandler(deps.Report).RegisterRoutes(r)
		NewAccountHandler(deps.Account).RegisterRoutes(r)
	})

	return router
}
