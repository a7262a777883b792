package user

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"

	"github.com/getsentry/sentry-go"

	"github.com/fati2809/ProyectoTerminado/internal/api"
)

const (
	maxJSONBodyBytes  = 1 << 20
	minPasswordLength = 8
)

var usernameRegex = regexp.MustCompile(`^[A-Za-z0-9_]{3,50}$`)

type Store interface {
	List(ctx context.Context) ([]PublicUser, error)
	Get(ctx context.Context, id string) (PublicUser, error)
	SetStatus(ctx context.Context, id string, status int) error
	UpdateCredentials(ctx context.Context, id, username, plainPassword string) error
}

type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.List(r.Context())
	if err != nil {
		sentry.CaptureException(err)
		writeError(w, http.StatusInternalServerError, "Error al recuperar los usuarios")
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"users":  users,
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "Usuario no encontrado")
			return
		}
		sentry.CaptureException(err)
		writeError(w, http.StatusInternalServerError, "Error al recuperar el usuario")
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"user":   u,
	})
}

func (h *Handler) Enable(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, 1, "Usuario habilitado correctamente")
}

func (h *Handler) Disable(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, 0, "Usuario deshabilitado correctamente")
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request, status int, message string) {
	if err := h.store.SetStatus(r.Context(), r.PathValue("id"), status); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "Usuario no encontrado")
			return
		}
		sentry.CaptureException(err)
		writeError(w, http.StatusInternalServerError, "Error al actualizar el usuario")
		return
	}

	writeSuccess(w, message)
}

type editRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)

	var body editRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Todos los campos son requeridos")
		return
	}
	if body.Username == nil || body.Password == nil {
		writeError(w, http.StatusBadRequest, "Todos los campos son requeridos")
		return
	}

	if !usernameRegex.MatchString(*body.Username) {
		writeError(w, http.StatusBadRequest, "Nombre de usuario inválido (3-50 caracteres, solo letras, números y guiones bajos)")
		return
	}
	if len(*body.Password) < minPasswordLength {
		writeError(w, http.StatusBadRequest, "La contraseña debe tener al menos 8 caracteres")
		return
	}

	err := h.store.UpdateCredentials(r.Context(), r.PathValue("id"), *body.Username, *body.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			writeError(w, http.StatusNotFound, "Usuario no encontrado")
		case errors.Is(err, ErrDuplicateUsername):
			writeError(w, http.StatusBadRequest, "Nombre de usuario ya registrado")
		default:
			sentry.CaptureException(err)
			writeError(w, http.StatusInternalServerError, "Error al actualizar el usuario")
		}
		return
	}

	writeSuccess(w, "Usuario editado correctamente")
}

func writeError(w http.ResponseWriter, status int, message string) {
	api.WriteJSON(w, status, map[string]string{
		"message": message,
		"status":  "error",
	})
}

func writeSuccess(w http.ResponseWriter, message string) {
	api.WriteJSON(w, http.StatusOK, map[string]string{
		"message": message,
		"status":  "success",
	})
}
