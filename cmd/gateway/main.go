package main

import (
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/fati2809/ProyectoTerminado/internal/audit"
	"github.com/fati2809/ProyectoTerminado/internal/config"
	"github.com/fati2809/ProyectoTerminado/internal/db"
	"github.com/fati2809/ProyectoTerminado/internal/gateway"
	"github.com/fati2809/ProyectoTerminado/internal/observability"
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
	port := config.EnvOrDefault("PORT", "5000")

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

	backends := []gateway.Backend{
		{Name: "auth_service", Prefix: "/auth/", BaseURL: config.EnvOrDefault("AUTH_SERVICE_URL", "http://localhost:5001")},
		{Name: "user_service", Prefix: "/user/", BaseURL: config.EnvOrDefault("USER_SERVICE_URL", "http://localhost:5002")},
		{Name: "task_service", Prefix: "/task/", BaseURL: config.EnvOrDefault("TASK_SERVICE_URL", "http://localhost:5003")},
	}

	prefixLimit := config.EnvIntOrDefault("RATE_LIMIT_PREFIX_PER_MINUTE", 30)
	rules := make([]gateway.Rule, 0, len(backends))
	for _, backend := range backends {
		rules = append(rules, gateway.Rule{Prefix: backend.Prefix, Limit: gateway.PerMinute(prefixLimit)})
	}

	defaults := []gateway.Limit{
		gateway.PerDay(config.EnvIntOrDefault("RATE_LIMIT_DEFAULT_PER_DAY", 200)),
		gateway.PerHour(config.EnvIntOrDefault("RATE_LIMIT_DEFAULT_PER_HOUR", 1)),
	}

	exemptRoutes := splitRoutes(config.EnvOrDefault("RATE_LIMIT_EXEMPT_ROUTES", "/auth/logs"))
	limiter := gateway.NewRateLimiter(rules, defaults, exemptRoutes)

	tokens := token.NewService(secretKey, config.EnvMinutesOrDefault("ACCESS_TOKEN_TTL_MINUTES", 15))
	auditRepo := audit.NewRepository(database)
	auditLogger := gateway.NewAuditLogger(auditRepo, tokens, logger)

	proxy := gateway.NewProxy(backends, config.EnvSecondsOrDefault("PROXY_TIMEOUT_SECONDS", 10), logger)

	mux := http.NewServeMux()
	for _, backend := range backends {
		mux.Handle(backend.Prefix, proxy.Handler(backend))
	}
	mux.HandleFunc("GET /health", observability.HealthHandler(database))

	handler := observability.RecoverMiddleware(logger, auditLogger.Middleware(limiter.Middleware(mux)))

	addr := fmt.Sprintf(":%s", port)
	logger.Info("gateway_start", map[string]any{"addr": addr})
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Error("server_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}

func splitRoutes(raw string) []string {
	parts := strings.Split(raw, ",")
	routes := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			routes = append(routes, trimmed)
		}
	}
	return routes
}
