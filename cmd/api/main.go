package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/rs/cors"

	"github.com/buildassist/backend/internal/admin"
	"github.com/buildassist/backend/internal/auth"
	"github.com/buildassist/backend/internal/billing"
	"github.com/buildassist/backend/internal/chat"
	"github.com/buildassist/backend/internal/cleanup"
	"github.com/buildassist/backend/internal/config"
	"github.com/buildassist/backend/internal/documents"
	"github.com/buildassist/backend/internal/ledger"
	"github.com/buildassist/backend/internal/migrations"
	"github.com/buildassist/backend/internal/payments"
	"github.com/buildassist/backend/internal/router"
	"github.com/buildassist/backend/internal/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Unable to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("Cannot reach PostgreSQL (connection refused or invalid). Ensure Postgres is running, e.g. docker-compose up -d", "error", err)
		os.Exit(1)
	}
	slog.Info("Connected to PostgreSQL database successfully!")

	// Schema migrations (goose, embedded SQL)
	if err := runMigrations(ctx, cfg.DatabaseURL); err != nil {
		slog.Error("Schema migrations failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Schema migrations applied")

	// River migrations (queue tables)
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		slog.Error("Failed to create River migrator", "error", err)
		os.Exit(1)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		slog.Error("River migrate up failed", "error", err)
		os.Exit(1)
	}
	slog.Info("River migrations applied")

	// External collaborators
	objectStore, err := storage.NewS3Storage(ctx, cfg)
	if err != nil {
		slog.Error("Failed to create object storage client", "error", err)
		os.Exit(1)
	}
	paymentProvider := payments.NewStripeProvider(cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.ClientURL)

	// Background cleanup queue
	workers := river.NewWorkers()
	river.AddWorker(workers, cleanup.NewDeleteStoredObjectWorker(objectStore, logger))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 10},
		},
		Workers: workers,
	})
	if err != nil {
		slog.Error("Failed to create River client", "error", err)
		os.Exit(1)
	}
	enqueueCleanup := func(ctx context.Context, args cleanup.DeleteStoredObjectArgs) error {
		_, err := riverClient.Insert(ctx, args, nil)
		return err
	}

	// Repositories, services, handlers
	authRepo := auth.NewRepository(pool)
	authSvc := auth.NewService(authRepo, []byte(cfg.JWTSecret))
	authHandler := auth.NewHandler(authSvc, logger)

	ledgerRepo := ledger.NewRepository(pool)
	ledgerSvc := ledger.NewService(ledgerRepo)
	ledgerHandler := ledger.NewHandler(ledgerSvc, logger)

	chatRepo := chat.NewRepository(pool)
	chatSvc := chat.NewService(chatRepo)
	chatHandler := chat.NewHandler(chatSvc, logger)

	docRepo := documents.NewRepository(pool)
	docSvc := documents.NewService(docRepo, objectStore, enqueueCleanup, logger)
	docHandler := documents.NewHandler(docSvc, logger)

	billingRepo := billing.NewRepository(pool)
	billingSvc := billing.NewService(paymentProvider, ledgerSvc, billingRepo, logger)
	billingHandler := billing.NewHandler(billingSvc, logger)

	adminRepo := admin.NewRepository(pool)
	adminHandler := admin.NewHandler(adminRepo, ledgerSvc, enqueueCleanup, logger)

	apiRouter := router.New(router.Deps{
		Auth:      authHandler,
		Chat:      chatHandler,
		Documents: docHandler,
		Billing:   billingHandler,
		Ledger:    ledgerHandler,
		Admin:     adminHandler,
		Tokens:    authSvc,
		Balances:  ledgerRepo,
		AdminKey:  cfg.AdminAPIKey,
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Stripe-Signature"},
		AllowCredentials: true,
	}).Handler(apiRouter)

	// Start River client (processes cleanup jobs)
	riverCtx, stopRiver := context.WithCancel(ctx)
	defer stopRiver()
	go func() {
		if err := riverClient.Start(riverCtx); err != nil && riverCtx.Err() == nil {
			slog.Error("River client stopped", "error", err)
		}
	}()

	serverAddr := "0.0.0.0:" + cfg.Port
	slog.Info("Starting HTTP server", "addr", serverAddr)
	if err := http.ListenAndServe(serverAddr, corsHandler); err != nil {
		slog.Error("HTTP server failed", "error", err)
		os.Exit(1)
	}
}

// runMigrations applies the embedded goose migrations over a database/sql
// connection; the pgx pool is used for everything else.
func runMigrations(ctx context.Context, databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}
