package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/campuscanteen/canteen-api/internal/account"
	"github.com/campuscanteen/canteen-api/internal/cart"
	"github.com/campuscanteen/canteen-api/internal/catalog"
	"github.com/campuscanteen/canteen-api/internal/complaint"
	"github.com/campuscanteen/canteen-api/internal/config"
	"github.com/campuscanteen/canteen-api/internal/events"
	"github.com/campuscanteen/canteen-api/internal/handlers"
	"github.com/campuscanteen/canteen-api/internal/middleware"
	"github.com/campuscanteen/canteen-api/internal/offer"
	"github.com/campuscanteen/canteen-api/internal/order"
	"github.com/campuscanteen/canteen-api/internal/payment"
	"github.com/campuscanteen/canteen-api/internal/repository"
	"github.com/campuscanteen/canteen-api/internal/session"
	"github.com/campuscanteen/canteen-api/internal/store"
	"github.com/campuscanteen/canteen-api/pkg/logger"
)

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("starting canteen api server",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"log_level", cfg.LogLevel,
	)

	ctx := context.Background()

	// Hosted database is optional: without DATABASE_URL (or when the
	// connection fails) the server runs fully on the in-memory stores.
	var remote *store.Postgres
	if cfg.Store.DatabaseURL != "" {
		remote, err = store.Connect(ctx, cfg.Store.DatabaseURL, log)
		if err != nil {
			log.Warn("hosted database unavailable, running in offline mode", "error", err)
			remote = nil
		} else {
			defer remote.Close()
			log.Info("connected to hosted database")
		}
	} else {
		log.Info("no DATABASE_URL configured, running in offline mode")
	}

	// Session backend: redis when configured, otherwise in-memory.
	var sessions session.Store
	if cfg.Store.RedisAddr != "" {
		ttl := time.Duration(cfg.Store.SessionTTLMin) * time.Minute
		rs, err := session.NewRedisStore(ctx, cfg.Store.RedisAddr, ttl)
		if err != nil {
			log.Warn("redis unavailable, falling back to in-memory sessions", "error", err)
			sessions = session.NewMemoryStore()
		} else {
			defer rs.Close()
			sessions = rs
			log.Info("using redis session store", "addr", cfg.Store.RedisAddr)
		}
	} else {
		sessions = session.NewMemoryStore()
	}

	// Catalog seed: explicit YAML file when configured, built-in otherwise.
	seed := catalog.DefaultSeed()
	if cfg.Store.SeedFile != "" {
		loaded, err := catalog.LoadSeed(cfg.Store.SeedFile)
		if err != nil {
			log.Error("failed to load seed file", "path", cfg.Store.SeedFile, "error", err)
			os.Exit(1)
		}
		seed = loaded
	}

	var catalogRemote catalog.RemoteSource
	if remote != nil {
		catalogRemote = remote
	}
	cat := catalog.New(catalogRemote, seed, log)
	log.Info("catalog ready",
		"menu_items", len(cat.AllMenuItems(ctx)),
		"offers", len(cat.Offers(ctx)),
	)

	// Repositories; when the hosted database is up they get wrapped so
	// writes mirror remotely and reads prefer the remote copy.
	orderRepo := repository.NewInMemoryOrderRepository()
	studentRepo := repository.NewInMemoryStudentRepository()
	complaintRepo := repository.NewInMemoryComplaintRepository()

	var (
		orderStore     order.Repository     = orderRepo
		studentStore   account.Repository   = studentRepo
		complaintStore complaint.Repository = complaintRepo
	)
	if remote != nil {
		orderStore = store.NewFallbackOrders(remote, orderRepo, log)
		studentStore = store.NewFallbackStudents(remote, studentRepo, log)
		complaintStore = store.NewFallbackComplaints(remote, complaintRepo, log)
	}

	// Core services
	bus := events.NewBus()
	accounts := account.NewStore(studentStore, log)
	orders := order.NewManager(orderStore, bus, log)
	engine := cart.NewEngine(sessions, orders, bus, log)
	evaluator := offer.NewEvaluator(cat, sessions, log)
	complaints := complaint.NewService(complaintStore, log)
	settlement := payment.NewSettlement(orders, accounts, sessions, bus,
		payment.NewQREncoder(cfg.Payment.CredentialSize),
		time.Duration(cfg.Payment.CaptureDelayMS)*time.Millisecond,
		log)

	// Handlers
	healthHandler := handlers.NewHealthHandler(log)
	menuHandler := handlers.NewMenuHandler(cat, log)
	cartHandler := handlers.NewCartHandler(engine, cat, log)
	offerHandler := handlers.NewOfferHandler(cat, evaluator, log)
	orderHandler := handlers.NewOrderHandler(orders, log)
	paymentHandler := handlers.NewPaymentHandler(settlement, log)
	studentHandler := handlers.NewStudentHandler(accounts, sessions, log)
	complaintHandler := handlers.NewComplaintHandler(complaints, log)
	adminHandler := handlers.NewAdminHandler(orders, cat, evaluator, accounts, complaints, log)

	// Create router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "api_key", middleware.SessionHeader},
		ExposedHeaders:   []string{"Link", middleware.SessionHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Register health check endpoint
	r.Get("/health", healthHandler.ServeHTTP)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.WithSession(sessions, log))

		// Menu and offer browsing
		r.Get("/menu", menuHandler.List)
		r.Get("/menu/{itemID}", menuHandler.Get)
		r.Get("/offers", offerHandler.ListActive)

		// Cart
		r.Get("/cart", cartHandler.Get)
		r.Post("/cart/items", cartHandler.AddItem)
		r.Put("/cart/items/{itemID}", cartHandler.SetQuantity)
		r.Delete("/cart/items/{itemID}", cartHandler.RemoveItem)
		r.Post("/cart/offer", offerHandler.Apply)
		r.Post("/cart/confirm", cartHandler.Confirm)

		// Orders
		r.Get("/orders", orderHandler.ListMine)
		r.Get("/orders/{orderID}", orderHandler.Get)

		// Payment
		r.Post("/payment/redeem", paymentHandler.Redeem)
		r.Post("/payment/settle", paymentHandler.Settle)

		// Student accounts
		r.Post("/students/register", studentHandler.Register)
		r.Post("/students/login", studentHandler.Login)
		r.Post("/students/logout", studentHandler.Logout)
		r.Get("/students/me", studentHandler.Me)

		// Complaints
		r.Post("/complaints", complaintHandler.Create)
		r.Get("/complaints", complaintHandler.ListMine)

		// Admin console
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.AdminKeyAuth(cfg.Auth))

			r.Get("/orders", adminHandler.ListOrders)
			r.Put("/orders/{orderID}/status", adminHandler.UpdateOrderStatus)

			r.Get("/menu", adminHandler.ListMenu)
			r.Post("/menu", adminHandler.CreateMenuItem)
			r.Put("/menu/{itemID}", adminHandler.UpdateMenuItem)
			r.Delete("/menu/{itemID}", adminHandler.DeleteMenuItem)

			r.Get("/offers", adminHandler.ListOffers)
			r.Post("/offers", adminHandler.CreateOffer)
			r.Put("/offers/{offerID}", adminHandler.UpdateOffer)
			r.Delete("/offers/{offerID}", adminHandler.DeleteOffer)

			r.Get("/students", adminHandler.ListStudents)

			r.Get("/complaints", adminHandler.ListComplaints)
			r.Put("/complaints/{complaintID}/status", adminHandler.UpdateComplaintStatus)
		})
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}
