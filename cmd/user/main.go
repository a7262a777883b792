package main

import (
	"database/sql"
	"fmt"
	"net/http"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/fati2809/ProyectoTerminado/internal/config"
	"github.com/fati2809/ProyectoTerminado/internal/db"
	"github.com/fati2809/ProyectoTerminado/internal/observability"
	"github.com/fati2809/ProyectoTerminado/internal/token"
	"github.com/fati2809/ProyectoTerminado/internal/user"
)

func main() {
	_ = godotenv.Load()

	logger := observability.NewLogger()

	databaseURL, err := config.MustEnv("DATABASE_URL")
	if err != nil {
		logger.Error("config_error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	secretKey, err := config.MustEnv("SECRET_KEY")
	if err != nil {
		logger.Error("config_error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	port := config.EnvOrDefault("PORT", "5002")

	if err := observability.InitSentry(os.Getenv("SENTRY_DSN"), config.EnvOrDefault("APP_ENV", "development")); err != nil {
		logger.Error("init_sentry_failed", map[string]any{"error": err.Error()})
	}
	defer observability.FlushSentry()

	database, err := sql.Open("pgx", databaseURL)
	if err != nil {
		logger.Error("open_database_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer database.Close()

	if err := database.Ping(); err != nil {
		logger.Error("ping_database_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	if config.EnvBoolOrDefault("RUN_MIGRATIONS", false) {
		if err := db.RunMigrations(database); err != nil {
			logger.Error("migrations_failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
	}

	tokens := token.NewService(secretKey, config.EnvMinutesOrDefault("ACCESS_TOKEN_TTL_MINUTES", 15))

	userRepo := user.NewRepository(database)
	userHandler := user.NewHandler(userRepo)

	guard := func(h http.HandlerFunc) http.Handler {
		return token.Require(tokens, h)
	}

	mux := http.NewServeMux()
	mux.Handle("GET /users", guard(userHandler.List))
	mux.Handle("GET /users/{id}", guard(userHandler.Get))
	mux.Handle("PUT /users/{id}", guard(userHandler.Edit))
	mux.Handle("PUT /users/{id}/enable", guard(userHandler.Enable))
	mux.Handle("PUT /users/{id}/disable", guard(userHandler.Disable))
	mux.HandleFunc("GET /health", observability.HealthHandler(database))

	handler := observability.RecoverMiddleware(logger, observability.RequestLoggingMiddleware(logger, mux))

	addr := fmt.Sprintf(":%s", port)
	logger.Info("user_service_start", map[string]any{"addr": addr})
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Error("server_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
