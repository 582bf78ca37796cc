// Copyright 2026 The AuthGate Authors
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

	"github.com/erpcore/authgate/internal/audit"
	"github.com/erpcore/authgate/internal/authz"
	"github.com/erpcore/authgate/internal/config"
	"github.com/erpcore/authgate/internal/identity"
	"github.com/erpcore/authgate/internal/observability/logger"
	"github.com/erpcore/authgate/internal/observability/metrics"
	"github.com/erpcore/authgate/internal/observability/tracing"
	"github.com/erpcore/authgate/internal/store/postgres"
	"github.com/erpcore/authgate/internal/tenant"
	"github.com/erpcore/authgate/internal/token"
	transportHTTP "github.com/erpcore/authgate/internal/transport/http"
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
		OTelEnabled: cfg.Observability.OTELEnabled,
	})
	slog.Info("starting authgate authorization service")

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
		os.Exit(1)
	}
	defer tracer.Shutdown(ctx)

	// Initialize meter
	meter, err := metrics.New(ctx, metrics.Config{
		Enabled: cfg.Observability.OTELEnabled,
	}, cfg.Observability.ServiceName)
	if err != nil {
		slog.Error("failed to initialize meter", logger.Error(err))
		os.Exit(1)
	}

	// Initialize database
	db, err := postgres.New(ctx, postgres.Config{
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		Database:     cfg.Database.Database,
		SSLMode:      cfg.Database.SSLMode,
		MaxConns:     cfg.Database.MaxConns,
		MinConns:     cfg.Database.MinConns,
		ConnLifetime: cfg.Database.ConnLifetime,
	})
	if err != nil {
		slog.Error("failed to connect to database", logger.Error(err))
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("connected to database")

	// Initialize repositories
	userRepo := postgres.NewUserRepository(db)
	tenantRepo := postgres.NewTenantRepository(db)

	// Initialize helpers
	auditLogger := audit.NewSlogLogger()
	passwordHasher := identity.NewPasswordHasher(
		cfg.Security.Argon2Memory,
		cfg.Security.Argon2Iterations,
		cfg.Security.Argon2Parallelism,
		cfg.Security.Argon2SaltLength,
		cfg.Security.Argon2KeyLength,
	)

	// Signing keys come from the environment by default; the database-backed
	// provider supports rotation without a redeploy.
	var keys token.KeyProvider
	if cfg.JWT.KeysFromDB {
		keys = postgres.NewKeyRepository(db)
	} else {
		previous := make([][]byte, 0, len(cfg.JWT.PreviousKeys))
		for _, k := range cfg.JWT.PreviousKeys {
			previous = append(previous, []byte(k))
		}
		keys = token.NewStaticKeys([]byte(cfg.JWT.Secret), previous...)
	}

	// Initialize services
	codec := token.NewCodec(token.Config{
		Issuer:     cfg.JWT.Issuer,
		AccessTTL:  cfg.JWT.AccessTTL,
		RefreshTTL: cfg.JWT.RefreshTTL,
	}, keys, auditLogger)

	resolver := tenant.NewResolver(tenantRepo, auditLogger, tenant.ResolverConfig{
		HeaderName:    cfg.Tenant.HeaderName,
		PathPrefix:    cfg.Tenant.PathPrefix,
		LookupTimeout: cfg.Tenant.RegistryTimeout,
		CacheTTL:      cfg.Tenant.CacheTTL,
		Metrics:       meter,
	})
	defer resolver.Close()

	engine := authz.NewEngine()
	identityService := identity.NewService(userRepo, passwordHasher, auditLogger)

	// Rate Limiter
	rateLimiter := transportHTTP.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	// Initialize HTTP handler
	handler := transportHTTP.NewHandler(
		codec,
		resolver,
		engine,
		identityService,
		tenantRepo,
		meter,
		auditLogger,
		transportHTTP.CookieConfig{
			Name:   cfg.JWT.CookieName,
			Domain: cfg.JWT.CookieDomain,
			Secure: cfg.JWT.CookieSecure,
		},
		cfg.Tenant.HeaderName,
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
