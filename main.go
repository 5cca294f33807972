// main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agrilink-storefront/api"
	"agrilink-storefront/controllers"
	"agrilink-storefront/middleware"
	"agrilink-storefront/routes"
	"agrilink-storefront/stores"
	"agrilink-storefront/utils"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration from .env, the optional YAML file and the environment
	cfg, err := utils.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	logger, err := utils.NewLogger(cfg.Log)
	if err != nil {
		logrus.WithError(err).Fatal("invalid log settings")
	}
	log := logrus.NewEntry(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Open the durable local state (cart snapshot and credential)
	store, err := utils.OpenStorage(ctx, cfg.Storage)
	if err != nil {
		log.WithError(err).WithField("driver", cfg.Storage.Driver).Fatal("failed to open storage")
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			log.WithError(err).Error("failed to close storage")
		}
	}()

	client, err := api.NewClient(api.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
	}, store, log.WithField("component", "api"))
	if err != nil {
		log.WithError(err).Fatal("failed to create API client")
	}

	// Initialize stores
	session := stores.NewSession(client, store, log.WithField("component", "session"))
	session.OnUnauthenticated(func(ev stores.Event) {
		log.WithField("reason", ev.Reason).Info("session ended, redirecting to login")
	})
	cart := stores.NewCart(ctx, client, store, log.WithField("component", "cart"))
	catalog := stores.NewCatalog(client, log.WithField("component", "catalog"))
	orders := stores.NewOrders(client, log.WithField("component", "orders"))

	session.Initialize(ctx)

	// Set up the router
	router := mux.NewRouter()
	router.Use(middleware.RequestLogger(log.WithField("component", "http")))
	routes.RegisterRoutes(router, session, routes.Controllers{
		User:    controllers.NewUserController(session),
		Cart:    controllers.NewCartController(cart),
		Product: controllers.NewProductController(catalog),
		Order:   controllers.NewOrderController(orders),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("storefront is running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
