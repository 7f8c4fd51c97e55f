// Copyright 2026 The Provdir Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

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

	"github.com/provdir/provdir/internal/access"
	"github.com/provdir/provdir/internal/adapter"
	"github.com/provdir/provdir/internal/asset"
	"github.com/provdir/provdir/internal/audit"
	"github.com/provdir/provdir/internal/client"
	"github.com/provdir/provdir/internal/component"
	"github.com/provdir/provdir/internal/config"
	"github.com/provdir/provdir/internal/contact"
	"github.com/provdir/provdir/internal/credentials"
	"github.com/provdir/provdir/internal/directory"
	"github.com/provdir/provdir/internal/observability/logger"
	"github.com/provdir/provdir/internal/observability/metrics"
	"github.com/provdir/provdir/internal/observability/tracing"
	"github.com/provdir/provdir/internal/organisation"
	"github.com/provdir/provdir/internal/provisioning"
	"github.com/provdir/provdir/internal/store/memory"
	"github.com/provdir/provdir/internal/store/postgres"
	transportHTTP "github.com/provdir/provdir/internal/transport/http"
	"github.com/provdir/provdir/internal/transport/queue"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.InitLogger(logger.Config{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
	})
	slog.Info("starting provdir provisioning directory")

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrate(cfg); err != nil {
			fmt.Printf("Migration failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Initialize context
	ctx := context.Background()

	// Initialize tracer
	tracer, err := tracing.New(ctx, tracing.Config{
		Enabled:        cfg.Observability.OTELEnabled,
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		SamplingRate:   1.0,
	})
	if err != nil {
		slog.Error("failed to initialize tracer", logger.Error(err))
	}
	defer tracer.Shutdown(ctx)

	// Initialize meter
	meter, err := metrics.New(ctx, metrics.Config{
		Enabled: cfg.Observability.OTELEnabled,
	}, cfg.Observability.ServiceName)
	if err != nil {
		slog.Error("failed to initialize meter", logger.Error(err))
	}

	// Initialize the entry and credential stores
	var entryStore directory.Store
	var credentialRepo credentials.Repository
	if cfg.Store.Driver == "memory" {
		slog.Warn("using in-memory store, data will not survive a restart")
		entryStore = memory.NewEntryStore()
		credentialRepo = memory.NewCredentialStore()
	} else {
		db, err := postgres.New(ctx, postgres.Config{
			Host:         cfg.Store.Host,
			Port:         cfg.Store.Port,
			User:         cfg.Store.User,
			Password:     cfg.Store.Password,
			Database:     cfg.Store.Database,
			SSLMode:      cfg.Store.SSLMode,
			MaxOpenConns: cfg.Store.MaxOpenConns,
			MaxIdleConns: cfg.Store.MaxIdleConns,
		})
		if err != nil {
			slog.Error("failed to connect to database", logger.Error(err))
			os.Exit(1)
		}
		defer db.Close()
		slog.Info("connected to database")

		entryStore = postgres.NewEntryRepository(db)
		credentialRepo = postgres.NewCredentialRepository(db)
	}

	// Initialize helpers
	auditLogger := audit.NewSlogLogger()
	passwordHasher := credentials.NewPasswordHasher(
		cfg.Security.Argon2Memory,
		cfg.Security.Argon2Iterations,
		cfg.Security.Argon2Parallelism,
		cfg.Security.Argon2SaltLength,
		cfg.Security.Argon2KeyLength,
	)
	secretCipher, err := credentials.NewSecretCipher(cfg.Credentials.MasterSecret)
	if err != nil {
		slog.Error("failed to initialize secret cipher", logger.Error(err))
		os.Exit(1)
	}

	// Initialize services
	registry := credentials.NewService(credentialRepo, secretCipher, auditLogger)
	assetService := asset.NewService(entryStore)
	orgService := organisation.NewService(entryStore, directory.DN(cfg.Directory.OrganisationBase), assetService, auditLogger)
	clientService := client.NewService(entryStore, registry, assetService, passwordHasher, auditLogger)
	adapterService := adapter.NewService(entryStore, registry, assetService, passwordHasher, auditLogger)
	componentService := component.NewService(entryStore, directory.DN(cfg.Directory.ComponentBase), auditLogger)
	accessService := access.NewService(entryStore, clientService, auditLogger)
	contactService := contact.NewService(entryStore, directory.DN(cfg.Directory.ContactBase), auditLogger)

	// Initialize the provisioning queue
	broker := queue.NewInProcessBroker(slog.Default(), cfg.Provisioning.MaxAttempts)
	defer broker.Close()

	provisioningMetrics, err := metrics.NewProvisioningMetrics(meter)
	if err != nil {
		slog.Error("failed to register provisioning metrics", logger.Error(err))
	}

	workflow := provisioning.NewWorkflow(orgService, clientService, componentService, slog.Default())
	consumer := provisioning.NewConsumer(workflow, provisioningMetrics)
	if err := consumer.Bind(broker); err != nil {
		slog.Error("failed to bind provisioning topics", logger.Error(err))
		os.Exit(1)
	}

	requests, err := queue.NewRequestClient(broker, "client-reply")
	if err != nil {
		slog.Error("failed to initialize request client", logger.Error(err))
		os.Exit(1)
	}

	// Rate Limiter
	rateLimiter := transportHTTP.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	// Initialize HTTP handler
	handler := transportHTTP.NewHandler(
		orgService,
		assetService,
		clientService,
		adapterService,
		accessService,
		componentService,
		contactService,
		requests,
		transportHTTP.AuthConfig{JWTSecret: []byte(cfg.Auth.JWTSecret)},
		cfg.Provisioning.ReplyTimeout,
	)

	// Create router
	router := transportHTTP.NewRouter(handler, rateLimiter)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server
	go func() {
		slog.Info("starting http server", logger.Component("server"), logger.Operation("listen"))
		slog.Info(fmt.Sprintf("listening on %s", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", logger.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", logger.Error(err))
	}

	slog.Info("server stopped")
}

func runMigrate(cfg *config.Config) error {
	ctx := context.Background()
	db, err := postgres.New(ctx, postgres.Config{
		Host:         cfg.Store.Host,
		Port:         cfg.Store.Port,
		User:         cfg.Store.User,
		Password:     cfg.Store.Password,
		Database:     cfg.Store.Database,
		SSLMode:      cfg.Store.SSLMode,
		MaxOpenConns: cfg.Store.MaxOpenConns,
		MaxIdleConns: cfg.Store.MaxIdleConns,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Println("Applying initial schema...")
	if err := db.Migrate(ctx, postgres.InitialSchema); err != nil {
		return err
	}
	fmt.Println("Migration successful.")
	return nil
}
