package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/ecommerce-core/internal/account"
	"github.com/vasiliy-maslov/ecommerce-core/internal/cart"
	"github.com/vasiliy-maslov/ecommerce-core/internal/catalog"
	"github.com/vasiliy-maslov/ecommerce-core/internal/checkout"
	"github.com/vasiliy-maslov/ecommerce-core/internal/config"
	"github.com/vasiliy-maslov/ecommerce-core/internal/coupon"
	"github.com/vasiliy-maslov/ecommerce-core/internal/handler"
	"github.com/vasiliy-maslov/ecommerce-core/internal/order"
	"github.com/vasiliy-maslov/ecommerce-core/internal/payment"
	"github.com/vasiliy-maslov/ecommerce-core/internal/postgres"
	"github.com/vasiliy-maslov/ecommerce-core/internal/report"
	"github.com/vasiliy-maslov/ecommerce-core/internal/shipping"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "ecommerce-core").Logger()

	log.Info().Msg("Ecommerce core starting...")

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	pg, err := postgres.New(cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pg.Close()

	if err := pg.ApplyMigrations(cfg.Postgres); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}

	readDB, err := postgres.NewReadDB(cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open reporting connection")
	}
	defer readDB.Close()

	catalogRepo := catalog.NewRepository(pg.Pool)
	shippingRepo := shipping.NewRepository(pg.Pool)
	couponRepo := coupon.NewRepository(pg.Pool)
	cartRepo := cart.NewRepository(pg.Pool)
	accountRepo := account.NewRepository(pg.Pool)
	orderRepo := order.NewRepository(pg.Pool)
	paymentRepo := payment.NewRepository(pg.Pool)

	cartSvc := cart.NewService(cartRepo, catalogRepo)
	checkoutSvc := checkout.NewService(checkout.NewStore(pg.Pool), cartRepo, couponRepo)
	orderSvc := order.NewService(orderRepo, paymentRepo)
	reportSvc := report.NewService(report.NewRepository(readDB))
	accountSvc := account.NewService(accountRepo)

	router := handler.NewRouter(handler.Deps{
		Catalog:  catalogRepo,
		Shipping: shippingRepo,
		Cart:     cartSvc,
		Checkout: checkoutSvc,
		Order:    orderSvc,
		Payment:  paymentRepo,
		Report:   reportSvc,
		Account:  accountSvc,
	})

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)
	<-stopCh

	log.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Shutdown failed")
	}

	log.Info().Msg("Server stopped")
}
