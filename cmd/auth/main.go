package main

import (
	"database/sql"
	"fmt"
	"net/http"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/fati2809/ProyectoTerminado/internal/audit"
	"github.com/fati2809/ProyectoTerminado/internal/auth"
	"github.com/fati2809/ProyectoTerminado/internal/config"
	"github.com/fati2809/ProyectoTerminado/internal/db"
	"github.com/fati2809/ProyectoTerminado/internal/observability"
	"github.com/fati2809/ProyectoTerminado/internal/token"
	"github.com/fati2809/ProyectoTerminado/internal/totp"
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
	port := config.EnvOrDefault("PORT", "5001")

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

	if config.EnvBoolOrDefault("RUN_MIGRATIONS", true) {
		if err := db.RunMigrations(database); err != nil {
			logger.Error("migrations_failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
	}

	tokens := token.NewService(secretKey, config.EnvMinutesOrDefault("ACCESS_TOKEN_TTL_MINUTES", 15))
	totpEngine := totp.NewEngine(config.EnvOrDefault("TOTP_ISSUER", "MFA-App"))

	authRepo := auth.NewRepository(database)
	authService := auth.NewService(authRepo, totpEngine, tokens)
	authHandler := auth.NewHandler(authService)

	auditRepo := audit.NewRepository(database)
	auditHandler := audit.NewHandler(auditRepo)
	cleanupHandler := audit.NewCleanupHandler(
		auditRepo,
		logger,
		os.Getenv("CRON_SECRET"),
		config.EnvDaysOrDefault("LOG_RETENTION_DAYS", 30),
		config.EnvIntOrDefault("LOG_CLEANUP_BATCH_SIZE", 500),
	)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /register_user", authHandler.Register)
	mux.HandleFunc("POST /login", authHandler.Login)
	mux.HandleFunc("GET /logs", auditHandler.Logs)
	mux.HandleFunc("GET /internal/maintenance/cleanup", cleanupHandler.Handle)
	mux.HandleFunc("POST /internal/maintenance/cleanup", cleanupHandler.Handle)
	mux.HandleFunc("GET /health", observability.HealthHandler(database))

	handler := observability.RecoverMiddleware(logger, observability.RequestLoggingMiddleware(logger, mux))

	addr := fmt.Sprintf(":%s", port)
	logger.Info("auth_service_start", map[string]any{"addr": addr})
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Error("server_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
