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

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/treehousetherapy/curelia-health/config"
	v1 "github.com/treehousetherapy/curelia-health/v1"
	"github.com/treehousetherapy/curelia-health/v1/audit"
	"github.com/treehousetherapy/curelia-health/v1/auth"
	v1handlers "github.com/treehousetherapy/curelia-health/v1/handlers"
	v1middleware "github.com/treehousetherapy/curelia-health/v1/middleware"
	"github.com/treehousetherapy/curelia-health/v1/utils"
)

func main() {
	// Load .env file if it exists (optional - fails silently if not found)
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{AddSource: true}))
	slog.SetDefault(logger)

	slog.Info("Starting Curelia Health core")

	securityConfig, err := config.LoadSecurityConfig()
	if err != nil {
		slog.Error("Failed to load security configuration", "error", err)
		os.Exit(1)
	}
	if err := securityConfig.Validate(); err != nil {
		slog.Error("Invalid security configuration", "error", err)
		os.Exit(1)
	}

	dbConfig := v1.NewDatabaseConfig()
	gormDB, err := v1.ConnectGORM(dbConfig)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := v1.AutoMigrate(gormDB); err != nil {
		slog.Error("Failed to migrate database schema", "error", err)
		os.Exit(1)
	}

	ledger := audit.NewLedger(gormDB)
	tokens := auth.NewTokenService(securityConfig.JWTSecret, securityConfig.AccessTokenTTL)

	// Sessions live in Redis when an address is configured; the
	// in-process store keeps single-node deployments working.
	var sessions auth.SessionStore
	redisConfig := config.LoadRedisConfig()
	if redisConfig.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     redisConfig.Addr,
			Username: redisConfig.Username,
			Password: redisConfig.Password,
			DB:       redisConfig.DB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			slog.Error("Failed to connect to Redis", "addr", redisConfig.Addr, "error", err)
			os.Exit(1)
		}
		sessions = auth.NewRedisSessionStore(client, securityConfig.SessionIdleTimeout)
		slog.Info("Using Redis session store", "addr", redisConfig.Addr)
	} else {
		sessions = auth.NewMemorySessionStore(securityConfig.SessionIdleTimeout)
		slog.Info("Using in-memory session store")
	}

	guard := auth.NewGuard(gormDB, ledger, tokens, sessions, securityConfig)
	v1Handler := v1handlers.NewV1Handler(gormDB, guard, ledger)

	apiMux := http.NewServeMux()
	v1Handler.SetupV1Routes(apiMux)

	authMiddleware := v1middleware.AuthMiddleware(&v1middleware.AuthConfig{
		Guard:       guard,
		PublicPaths: []string{"/api/v1/auth/login"},
	})

	// Middleware chain: request context first so every later layer and
	// every audit entry can see the request id and client address.
	protectedAPIHandler := v1middleware.CORSMiddleware(
		v1middleware.SecurityHeadersMiddleware(
			v1middleware.RequestContextMiddleware()(
				v1middleware.ObservabilityMiddleware(
					authMiddleware(apiMux),
				),
			),
		),
	)

	topLevelMux := http.NewServeMux()
	topLevelMux.Handle("/api/v1/", protectedAPIHandler)
	topLevelMux.Handle("/metrics", promhttp.Handler())

	topLevelMux.Handle("/health", utils.PanicRecoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		type HealthStatus struct {
			Status   string `json:"status"`
			Service  string `json:"service"`
			Database string `json:"database"`
			Error    string `json:"error,omitempty"`
		}

		status := HealthStatus{Status: "healthy", Service: "curelia-health", Database: dbConfig.Database}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		sqlDB, err := gormDB.DB()
		if err != nil {
			status.Status = "unhealthy"
			status.Error = fmt.Sprintf("failed to get sql.DB: %v", err)
		} else if err := sqlDB.PingContext(ctx); err != nil {
			status.Status = "unhealthy"
			status.Error = err.Error()
		}

		statusCode := http.StatusOK
		if status.Status != "healthy" {
			statusCode = http.StatusServiceUnavailable
		}
		utils.RespondWithJSON(w, statusCode, status)
	})))

	port := config.GetEnvOrDefault("PORT", "3000")
	addr := ":" + port
	server := &http.Server{
		Addr:         addr,
		Handler:      topLevelMux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("Curelia Health core starting", "port", port, "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if sqlDB, err := gormDB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}

	slog.Info("Curelia Health core exited")
}
