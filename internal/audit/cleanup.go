package audit

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/fati2809/ProyectoTerminado/internal/api"
	"github.com/fati2809/ProyectoTerminado/internal/observability"
)

type cleanupStore interface {
	CleanupOldEntries(ctx context.Context, retention time.Duration, batchSize int) (int64, error)
}

// CleanupHandler prunes old request logs on demand, driven by an external
// scheduler. It stays disabled (404) until CRON_SECRET is configured.
type CleanupHandler struct {
	store      cleanupStore
	logger     *observability.Logger
	cronSecret string
	retention  time.Duration
	batchSize  int
}

func NewCleanupHandler(store cleanupStore, logger *observability.Logger, cronSecret string, retention time.Duration, batchSize int) *CleanupHandler {
	return &CleanupHandler{
		store:      store,
		logger:     logger,
		cronSecret: strings.TrimSpace(cronSecret),
		retention:  retention,
		batchSize:  batchSize,
	}
}

func (h *CleanupHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.cronSecret == "" {
		api.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) != h.cronSecret {
		api.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	deleted, err := h.store.CleanupOldEntries(r.Context(), h.retention, h.batchSize)
	if err != nil {
		h.logger.Error("log_cleanup_failed", map[string]any{"error": err.Error()})
		api.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "cleanup failed"})
		return
	}

	h.logger.Info("log_cleanup_completed", map[string]any{"deleted_entries": deleted})

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"deleted_entries": deleted,
	})
}
