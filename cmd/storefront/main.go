package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joao-fontenele/storefront/internal/auth"
	"github.com/joao-fontenele/storefront/internal/cart"
	"github.com/joao-fontenele/storefront/internal/catalog"
	"github.com/joao-fontenele/storefront/internal/config"
	"github.com/joao-fontenele/storefront/internal/domain"
	"github.com/joao-fontenele/storefront/internal/messaging"
	"github.com/joao-fontenele/storefront/internal/orders"
	"github.com/joao-fontenele/storefront/internal/telemetry"
	"github.com/joao-fontenele/storefront/internal/users"
)

const (
	serviceName    = "storefront"
	serviceVersion = "0.1.0"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := config.LoadDotEnv(); err != nil {
		logger.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.LoadStorefront()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, serviceName, serviceVersion, os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(serviceName, serviceVersion)
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	db, err := telemetry.OpenDB(ctx, cfg.PostgresURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	var publisher orders.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		producer := messaging.NewProducer(cfg.KafkaBrokers, domain.TopicOrderPlaced)
		defer func() { _ = producer.Close() }()
		publisher = producer
	} else {
		logger.Warn("KAFKA_BROKERS not set, order events are disabled")
	}

	orderService, err := orders.NewService(orders.NewOrderRepository(db), publisher, logger)
	if err != nil {
		logger.Error("failed to create order service", "error", err)
		os.Exit(1)
	}

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	mw := auth.NewMiddleware(issuer, logger)

	orderHandler := orders.NewHandler(orderService, logger)
	cartHandler := cart.NewHandler(cart.NewCartRepository(db), logger)
	catalogHandler := catalog.NewHandler(catalog.NewCatalogRepository(db), logger)
	userHandler := users.NewHandler(users.NewUserRepository(db), issuer, logger)

	mux := http.NewServeMux()
	route := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, telemetry.WithHTTPRoute(h))
	}

	route("POST /api/checkout", mw.Authenticate(orderHandler.HandleCheckout))
	route("POST /api/orders", mw.Authenticate(orderHandler.HandleCheckout))
	route("GET /api/orders", mw.Authenticate(orderHandler.HandleListMine))
	route("GET /api/orders/all", mw.RequireAdmin(orderHandler.HandleListAll))
	route("GET /api/orders/{id}", mw.RequireAdmin(orderHandler.HandleGet))
	route("PUT /api/orders/{id}/status", mw.RequireAdmin(orderHandler.HandleUpdateStatus))
	route("DELETE /api/orders/{id}", mw.RequireAdmin(orderHandler.HandleDelete))

	route("GET /api/cart", mw.Authenticate(cartHandler.HandleGet))
	route("POST /api/cart/add", mw.Authenticate(cartHandler.HandleAdd))
	route("DELETE /api/cart/{productId}", mw.Authenticate(cartHandler.HandleRemove))

	route("GET /api/products", catalogHandler.HandleListProducts)
	route("GET /api/products/{id}", catalogHandler.HandleGetProduct)
	route("POST /api/products", mw.RequireAdmin(catalogHandler.HandleCreateProduct))
	route("PUT /api/products/{id}", mw.RequireAdmin(catalogHandler.HandleUpdateProduct))
	route("DELETE /api/products/{id}", mw.RequireAdmin(catalogHandler.HandleDeleteProduct))
	route("GET /api/categories", catalogHandler.HandleListCategories)
	route("POST /api/categories", mw.RequireAdmin(catalogHandler.HandleCreateCategory))
	route("PUT /api/categories/{id}", mw.RequireAdmin(catalogHandler.HandleUpdateCategory))
	route("DELETE /api/categories/{id}", mw.RequireAdmin(catalogHandler.HandleDeleteCategory))

	route("POST /api/users/register", userHandler.HandleRegister)
	route("POST /api/users/login", userHandler.HandleLogin)
	route("GET /api/users/me", mw.Authenticate(userHandler.HandleMe))
	route("PUT /api/users/me", mw.Authenticate(userHandler.HandleUpdateMe))
	route("GET /api/admin/users", mw.RequireAdmin(userHandler.HandleList))
	route("PUT /api/admin/users/{id}", mw.RequireAdmin(userHandler.HandleUpdate))
	route("DELETE /api/admin/users/{id}", mw.RequireAdmin(userHandler.HandleDelete))

	mux.Handle("GET /metrics", metricsHandler)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      telemetry.ServerHandler(mux, serviceName),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting storefront service", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
