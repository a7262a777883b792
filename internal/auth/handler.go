package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"

	"github.com/fati2809/ProyectoTerminado/internal/api"
)

const maxJSONBodyBytes = 1 << 20

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type registerRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
	Status   *int    `json:"status"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	OTP      string `json:"otp"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)

	var body registerRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteEnvelope(w, http.StatusBadRequest, "Todos los campos son requeridos", nil)
		return
	}
	if body.Username == nil || body.Password == nil || body.Status == nil {
		api.WriteEnvelope(w, http.StatusBadRequest, "Todos los campos son requeridos", nil)
		return
	}

	enrollment, err := h.service.Register(r.Context(), *body.Username, *body.Password, *body.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidUsername):
			api.WriteEnvelope(w, http.StatusBadRequest, "Nombre de usuario inválido (3-50 caracteres, solo letras, números y guiones bajos)", nil)
		case errors.Is(err, ErrWeakPassword):
			api.WriteEnvelope(w, http.StatusBadRequest, "La contraseña debe tener al menos 8 caracteres", nil)
		case errors.Is(err, ErrDuplicateUsername):
			api.WriteEnvelope(w, http.StatusBadRequest, "Nombre de usuario ya registrado", nil)
		default:
			sentry.CaptureException(err)
			api.WriteEnvelope(w, http.StatusInternalServerError, "Error al registrar el usuario", nil)
		}
		return
	}

	api.WriteEnvelope(w, http.StatusCreated, "Usuario registrado exitosamente", enrollment)
}

// loginEnvelope carries the token under intData.token rather than
// intData.data; existing clients depend on that key.
type loginEnvelope struct {
	StatusCode int `json:"statusCode"`
	IntData    struct {
		Message string `json:"message"`
		Token   string `json:"token"`
	} `json:"intData"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)

	var body loginRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteEnvelope(w, http.StatusBadRequest, "Usuario, contraseña y OTP son requeridos", nil)
		return
	}
	if body.Username == "" || body.Password == "" || body.OTP == "" {
		api.WriteEnvelope(w, http.StatusBadRequest, "Usuario, contraseña y OTP son requeridos", nil)
		return
	}

	issued, err := h.service.Login(r.Context(), body.Username, body.Password, body.OTP)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			api.WriteEnvelope(w, http.StatusUnauthorized, "Credenciales incorrectas", nil)
		case errors.Is(err, ErrInvalidOTP):
			api.WriteEnvelope(w, http.StatusUnauthorized, "Código OTP inválido", nil)
		default:
			sentry.CaptureException(err)
			api.WriteEnvelope(w, http.StatusInternalServerError, "Error al iniciar sesión", nil)
		}
		return
	}

	var resp loginEnvelope
	resp.StatusCode = http.StatusOK
	resp.IntData.Message = "Login exitoso"
	resp.IntData.Token = issued
	api.WriteJSON(w, http.StatusOK, resp)
}
