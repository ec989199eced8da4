// Package main initializes and starts the readings API server, wiring
// configuration, logging, the database, repositories, services, and the
// HTTP router.
package main

import (
	"cmp"
	"fmt"
	"time"

	nethttp "net/http"

	"github.com/rs/cors"
	"github.com/tdnguyen/astroserve/internal/config"
	"github.com/tdnguyen/astroserve/internal/db"
	"github.com/tdnguyen/astroserve/internal/logger"
	"github.com/tdnguyen/astroserve/internal/repository"
	"github.com/tdnguyen/astroserve/internal/server/handler/http"
	"github.com/tdnguyen/astroserve/internal/service"
	"github.com/tdnguyen/astroserve/internal/token"
	"go.uber.org/zap"
)

// tokenTTL is the session token lifetime.
const tokenTTL = time.Hour

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Initialize structured logging first so config failures are visible.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init("Info"); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Parse command-line, .env, and environment configuration. The DSN
	// and token secret are mandatory; refuse to start without them.
	options, err := config.Parse()
	if err != nil {
		zapLogger.Fatal("invalid configuration", zap.Error(err))
	}

	// Initialize PostgreSQL and apply migrations.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer postgresDB.Close()

	// Repositories share the injected connection pool.
	accountRepo := repository.NewPostgresAccountRepository(postgresDB)
	meaningRepo := repository.NewPostgresMeaningRepository(postgresDB)
	astrologyRepo := repository.NewPostgresAstrologyRepository(postgresDB)
	numerologyRepo := repository.NewPostgresNumerologyRepository(postgresDB)
	dashboardRepo := repository.NewPostgresDashboardRepository(postgresDB)

	tokens := token.NewManager(options.JWTSecret, tokenTTL)

	// Business-logic services.
	authService := service.NewAuthService(accountRepo, tokens, options.ResetCode, zapLogger)
	astrologyService := service.NewAstrologyService(astrologyRepo, meaningRepo, zapLogger)
	numerologyService := service.NewNumerologyService(numerologyRepo, meaningRepo, accountRepo, zapLogger)
	usersService := service.NewUsersService(accountRepo, dashboardRepo, zapLogger)

	// HTTP handlers.
	production := options.Env == "production"
	authHandler := http.NewAuthHandler(authService, production, zapLogger)
	astrologyHandler := http.NewAstrologyHandler(astrologyService, zapLogger)
	numerologyHandler := http.NewNumerologyHandler(numerologyService, zapLogger)
	usersHandler := http.NewUsersHandler(usersService, zapLogger)

	router := http.NewRouter(authHandler, astrologyHandler, numerologyHandler, usersHandler, tokens, zapLogger)

	// The dashboard runs on a single known origin and sends the session
	// cookie, so credentials must be allowed.
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{options.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}).Handler(router)

	server := &nethttp.Server{
		Addr:         options.Addr,
		Handler:      corsHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	zapLogger.Info("starting HTTP server",
		zap.String("addr", options.Addr),
		zap.String("cors_origin", options.CORSOrigin),
	)
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
