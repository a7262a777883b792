package gateway

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/fati2809/ProyectoTerminado/internal/api"
	"github.com/fati2809/ProyectoTerminado/internal/audit"
	"github.com/fati2809/ProyectoTerminado/internal/observability"
	"github.com/fati2809/ProyectoTerminado/internal/token"
)

type RecordStore interface {
	Append(ctx context.Context, rec audit.Record) error
}

// AuditLogger captures request timing before dispatch and appends one
// audit entry after each response, plus a structured log line with the
// same fields. Append failures are logged and swallowed: the audit store
// never fails a request.
type AuditLogger struct {
	store  RecordStore
	tokens *token.Service
	logger *observability.Logger
}

func NewAuditLogger(store RecordStore, tokens *token.Service, logger *observability.Logger) *AuditLogger {
	return &AuditLogger{store: store, tokens: tokens, logger: logger}
}

func (a *AuditLogger) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now().UTC()
		recorder := &observability.StatusRecorder{ResponseWriter: w, StatusCode: http.StatusOK}
		next.ServeHTTP(recorder, r)

		duration := time.Since(start)
		rec := audit.Record{
			Route:    r.URL.Path,
			Service:  serviceFor(r.URL.Path),
			Method:   r.Method,
			Status:   recorder.StatusCode,
			Duration: duration,
			LoggedAt: time.Now().UTC(),
			User:     a.resolveUser(r),
		}

		if err := a.store.Append(context.WithoutCancel(r.Context()), rec); err != nil {
			a.logger.Error("audit_append_failed", map[string]any{"error": err.Error()})
		}

		fields := map[string]any{
			"route":         rec.Route,
			"service":       rec.Service,
			"method":        rec.Method,
			"status":        rec.Status,
			"response_time": duration.Seconds(),
			"user":          rec.User,
			"ip":            api.ClientIP(r),
		}

		switch {
		case rec.Status >= 200 && rec.Status < 300:
			a.logger.Info("gateway_request", fields)
		case rec.Status >= 400 && rec.Status < 500:
			a.logger.Warn("gateway_request", fields)
		default:
			a.logger.Error("gateway_request", fields)
		}
	})
}

// resolveUser optimistically decodes a bearer token to attribute the
// request. It never rejects: no header means anonymous, an undecodable
// token is recorded as such.
func (a *AuditLogger) resolveUser(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return "anonymous"
	}

	claims, err := a.tokens.Verify(strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")))
	if err != nil {
		return "invalid_token"
	}
	if claims.Username == "" {
		return "anonymous"
	}

	return claims.Username
}

func serviceFor(path string) string {
	switch {
	case strings.HasPrefix(path, "/auth/"):
		return "auth_service"
	case strings.HasPrefix(path, "/user/"):
		return "user_service"
	case strings.HasPrefix(path, "/task/"):
		return "task_service"
	default:
		return "unknown_service"
	}
}
