package task

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"

	"github.com/fati2809/ProyectoTerminado/internal/api"
)

const maxJSONBodyBytes = 1 << 20

type Store interface {
	List(ctx context.Context) ([]Task, error)
	ListByCreator(ctx context.Context, createdBy string) ([]Task, error)
	Get(ctx context.Context, id string) (Task, error)
	Create(ctx context.Context, t Task) error
	Update(ctx context.Context, id string, t Task) error
	Delete(ctx context.Context, id string) error
	SetAlive(ctx context.Context, id string, alive bool) error
}

type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

type taskRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	CreatedAt   *string `json:"created_at"`
	DeadLine    *string `json:"dead_line"`
	Status      *string `json:"status"`
	IsAlive     *bool   `json:"is_alive"`
	CreatedBy   *string `json:"created_by"`
}

func (req taskRequest) complete() bool {
	return req.Name != nil && req.Description != nil && req.CreatedAt != nil &&
		req.DeadLine != nil && req.Status != nil && req.IsAlive != nil && req.CreatedBy != nil
}

func (req taskRequest) toTask() Task {
	return Task{
		Name:        *req.Name,
		Description: *req.Description,
		CreatedAt:   *req.CreatedAt,
		DeadLine:    *req.DeadLine,
		Status:      *req.Status,
		IsAlive:     *req.IsAlive,
		CreatedBy:   *req.CreatedBy,
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.store.List(r.Context())
	if err != nil {
		sentry.CaptureException(err)
		api.WriteEnvelope(w, http.StatusInternalServerError, "Failed to retrieve tasks", nil)
		return
	}

	api.WriteEnvelope(w, http.StatusOK, "Tasks retrieved successfully", tasks)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	t, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			api.WriteEnvelope(w, http.StatusNotFound, "Task not found", nil)
			return
		}
		sentry.CaptureException(err)
		api.WriteEnvelope(w, http.StatusInternalServerError, "Failed to retrieve task", nil)
		return
	}

	api.WriteEnvelope(w, http.StatusOK, "Task retrieved successfully", t)
}

func (h *Handler) ListByCreator(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.store.ListByCreator(r.Context(), r.PathValue("created_by"))
	if err != nil {
		sentry.CaptureException(err)
		api.WriteEnvelope(w, http.StatusInternalServerError, "Failed to retrieve tasks", nil)
		return
	}

	if len(tasks) == 0 {
		api.WriteEnvelope(w, http.StatusNotFound, "No tasks found for this user", []Task{})
		return
	}

	api.WriteEnvelope(w, http.StatusOK, "Tasks retrieved successfully", tasks)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)

	var body taskRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || !body.complete() {
		api.WriteJSON(w, http.StatusBadRequest, map[string]string{
			"message": "Todos los campos son requeridos",
			"status":  "error",
		})
		return
	}

	if !validDate(*body.CreatedAt) || !validDate(*body.DeadLine) {
		api.WriteEnvelope(w, http.StatusBadRequest, "Invalid date format (YYYY-MM-DD)", nil)
		return
	}

	id, err := uuid.NewV7()
	if err != nil {
		sentry.CaptureException(err)
		api.WriteEnvelope(w, http.StatusInternalServerError, "Failed to register task", nil)
		return
	}

	t := body.toTask()
	t.ID = id.String()

	if err := h.store.Create(r.Context(), t); err != nil {
		if errors.Is(err, ErrDuplicateName) {
			api.WriteEnvelope(w, http.StatusConflict, "Task name already registered", nil)
			return
		}
		sentry.CaptureException(err)
		api.WriteEnvelope(w, http.StatusInternalServerError, "Failed to register task", nil)
		return
	}

	api.WriteEnvelope(w, http.StatusCreated, "Task registered successfully", nil)
}

func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)

	var body taskRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || !body.complete() {
		api.WriteEnvelope(w, http.StatusBadRequest, "All fields are required", nil)
		return
	}

	if !validDate(*body.CreatedAt) || !validDate(*body.DeadLine) {
		api.WriteEnvelope(w, http.StatusBadRequest, "Invalid date format (YYYY-MM-DD)", nil)
		return
	}

	if err := h.store.Update(r.Context(), id, body.toTask()); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			api.WriteEnvelope(w, http.StatusNotFound, "Task not found", nil)
		case errors.Is(err, ErrDuplicateName):
			api.WriteEnvelope(w, http.StatusConflict, "Task name already registered", nil)
		default:
			sentry.CaptureException(err)
			api.WriteEnvelope(w, http.StatusInternalServerError, "Failed to edit task", nil)
		}
		return
	}

	api.WriteEnvelope(w, http.StatusOK, "Task edited successfully", nil)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			api.WriteEnvelope(w, http.StatusNotFound, "Task not found", nil)
			return
		}
		sentry.CaptureException(err)
		api.WriteEnvelope(w, http.StatusInternalServerError, "Failed to delete task", nil)
		return
	}

	api.WriteEnvelope(w, http.StatusOK, "Task deleted successfully", nil)
}

func (h *Handler) Enable(w http.ResponseWriter, r *http.Request) {
	h.setAlive(w, r, true, "Task enabled successfully")
}

func (h *Handler) Disable(w http.ResponseWriter, r *http.Request) {
	h.setAlive(w, r, false, "Task disabled successfully")
}

func (h *Handler) setAlive(w http.ResponseWriter, r *http.Request, alive bool, message string) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}

	if err := h.store.SetAlive(r.Context(), id, alive); err != nil {
		if errors.Is(err, ErrNotFound) {
			api.WriteEnvelope(w, http.StatusNotFound, "Task not found", nil)
			return
		}
		sentry.CaptureException(err)
		api.WriteEnvelope(w, http.StatusInternalServerError, "Failed to update task", nil)
		return
	}

	api.WriteEnvelope(w, http.StatusOK, message, nil)
}

func taskID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		api.WriteEnvelope(w, http.StatusBadRequest, "Invalid task ID format", nil)
		return "", false
	}
	return id, true
}
