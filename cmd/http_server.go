package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boostify/storefront/internal"
	"github.com/boostify/storefront/internal/affiliate"
	affiliatePostgres "github.com/boostify/storefront/internal/affiliate/postgres"
	"github.com/boostify/storefront/internal/auth"
	authPostgres "github.com/boostify/storefront/internal/auth/postgres"
	"github.com/boostify/storefront/internal/catalog"
	catalogPostgres "github.com/boostify/storefront/internal/catalog/postgres"
	"github.com/boostify/storefront/internal/core/events"
	"github.com/boostify/storefront/internal/notification"
	notificationPostgres "github.com/boostify/storefront/internal/notification/postgres"
	"github.com/boostify/storefront/internal/order"
	orderPostgres "github.com/boostify/storefront/internal/order/postgres"
	"github.com/boostify/storefront/internal/payment"
	paymentPostgres "github.com/boostify/storefront/internal/payment/postgres"
	"github.com/boostify/storefront/internal/paymentgateway"
	"github.com/boostify/storefront/internal/rates"
	"github.com/boostify/storefront/internal/transport"
	"github.com/boostify/storefront/internal/transport/rest"
	"github.com/boostify/storefront/internal/upload"
	"github.com/boostify/storefront/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	Router   *chi.Mux
	Gateway  paymentgateway.Gateway
	Handlers rest.Handlers
	RBAC     *auth.RBACAuthorization
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.Handlers, deps.RBAC,
		deps.Config.Server.AllowedOrigins, deps.Config.Upload.Dir, deps.Logger)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		// The mock gateway runs a worker pool that must drain.
		if closer, ok := deps.Gateway.(interface{ Shutdown() }); ok {
			closer.Shutdown()
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	log := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	bus := events.NewEventBus(log)

	gateway := paymentgateway.New(paymentgateway.Config{
		Provider:       config.Payment.Provider,
		Enabled:        config.Payment.Enabled,
		APIURL:         config.Payment.APIURL,
		APIKey:         config.Payment.APIKey,
		ProgramID:      config.Payment.ProgramID,
		WebhookURL:     config.Payment.WebhookURL,
		RequestTimeout: config.Payment.RequestTimeout,
		MaxWorkers:     config.Payment.MaxWorkers,
		JobQueueSize:   config.Payment.JobQueueSize,
		WorkerPoolSize: config.Payment.WorkerPoolSize,
	}, log)

	ratesCache := rates.NewCache(config.Rates.FeedURL, config.Rates.RefreshInterval, config.Rates.FetchTimeout, log)

	uploadStore, err := upload.NewStore(config.Upload.Dir, config.Upload.MaxImageBytes, config.Upload.MaxAssetBytes, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize upload store: %w", err)
	}

	// Repositories.
	userRepo := authPostgres.NewUserRepository(gormDB)
	catalogRepo := catalogPostgres.NewCatalogRepository(gormDB)
	orderRepo := orderPostgres.NewOrderRepository(gormDB)
	paymentRepo := paymentPostgres.NewPaymentRepository(gormDB)
	notificationRepo := notificationPostgres.NewNotificationRepository(gormDB)
	affiliateRepo := affiliatePostgres.NewAffiliateRepository(gormDB)

	// Services.
	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(userRepo, tokenGen, config.Security.BCryptCost)
	catalogService := catalog.NewCatalogService(catalogRepo, ratesCache, log)
	orderService := order.NewService(orderRepo, catalogService, nil, log)
	paymentService := payment.NewService(paymentRepo, orderService, gateway, bus, log)
	orderService.SetPaymentRegistrar(paymentService)
	notificationService := notification.NewService(notificationRepo, log)
	affiliateService := affiliate.NewService(affiliateRepo, gateway, bus, log)

	notificationService.RegisterSubscribers(bus)
	affiliateService.RegisterSubscribers(bus)

	handlers := rest.Handlers{
		Auth:         auth.NewHandler(authService),
		Catalog:      catalog.NewHandler(catalogService, uploadStore, config.Server.BaseURL),
		Order:        order.NewHandler(orderService, uploadStore),
		Payment:      payment.NewHandler(paymentService, config.Payment.ResultURL),
		Notification: notification.NewHandler(notificationService),
		Affiliate:    affiliate.NewHandler(affiliateService),
		Rates:        rates.NewHandler(transport.NewBaseHandler(log), ratesCache),
	}

	return &Dependencies{
		Config:   config,
		DB:       db,
		Router:   chi.NewRouter(),
		Gateway:  gateway,
		Handlers: handlers,
		RBAC:     auth.NewRBACAuthorization(log),
		Logger:   log,
	}, nil
}

// initDB opens the pgx-backed connection pool.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
