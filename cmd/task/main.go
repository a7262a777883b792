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
	"github.com/fati2809/ProyectoTerminado/internal/task"
	"github.com/fati2809/ProyectoTerminado/internal/token"
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
	port := config.EnvOrDefault("PORT", "5003")

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

	taskRepo := task.NewRepository(database)
	taskHandler := task.NewHandler(taskRepo)

	guard := func(h http.HandlerFunc) http.Handler {
		return token.Require(tokens, h)
	}

	mux := http.NewServeMux()
	mux.Handle("GET /tasks", guard(taskHandler.List))
	mux.Handle("GET /tasks/{id}", guard(taskHandler.Get))
	mux.Handle("GET /tasks/user/{created_by}", guard(taskHandler.ListByCreator))
	mux.Handle("POST /register_task", guard(taskHandler.Register))
	mux.Handle("PUT /tasks/{id}", guard(taskHandler.Edit))
	mux.Handle("DELETE /tasks/{id}", guard(taskHandler.Delete))
	mux.Handle("PUT /tasks/{id}/enable", guard(taskHandler.Enable))
	mux.Handle("PUT /tasks/{id}/disable", guard(taskHandler.Disable))
	mux.HandleFunc("GET /health", observability.HealthHandler(database))

	handler := observability.RecoverMiddleware(logger, observability.RequestLoggingMiddleware(logger, mux))

	addr := fmt.Sprintf(":%s", port)
	logger.Info("task_service_start", map[string]any{"addr": addr})
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Error("server_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
