package audit

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/fati2809/ProyectoTerminado/internal/api"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

type LogStore interface {
	Query(ctx context.Context, filter Filter) ([]Entry, error)
}

type Handler struct {
	store LogStore
}

func NewHandler(store LogStore) *Handler {
	return &Handler{store: store}
}

// Logs serves GET /logs with optional user/route/status/start_date/end_date
// filters. Date filters only apply when both bounds are present.
func (h *Handler) Logs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := Filter{
		User:  strings.TrimSpace(query.Get("user")),
		Route: strings.TrimSpace(query.Get("route")),
	}

	if raw := strings.TrimSpace(query.Get("status")); raw != "" {
		status, err := strconv.Atoi(raw)
		if err != nil {
			api.WriteEnvelope(w, http.StatusBadRequest, "El status debe ser un número entero", nil)
			return
		}
		filter.Status = &status
	}

	startRaw := strings.TrimSpace(query.Get("start_date"))
	endRaw := strings.TrimSpace(query.Get("end_date"))
	if startRaw != "" && endRaw != "" {
		start, okStart := parseDate(startRaw)
		end, okEnd := parseDate(endRaw)
		if !okStart || !okEnd {
			api.WriteEnvelope(w, http.StatusBadRequest, "Formato de fecha incorrecto. Use YYYY-MM-DD o ISO 8601.", nil)
			return
		}
		filter.Start = &start
		filter.End = &end
	}

	entries, err := h.store.Query(r.Context(), filter)
	if err != nil {
		sentry.CaptureException(err)
		api.WriteEnvelope(w, http.StatusInternalServerError, "Error al recuperar los logs", nil)
		return
	}

	api.WriteEnvelope(w, http.StatusOK, "Logs recuperados exitosamente", entries)
}

func parseDate(raw string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC(), true
		}
	}
	return time.Time{}, false
}
