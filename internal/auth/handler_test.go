package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ptotp "github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSON(t *testing.T, handler http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	handler(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (int, string, any) {
	t.Helper()
	var body struct {
		StatusCode int `json:"statusCode"`
		IntData    struct {
			Message string `json:"message"`
			Data    any    `json:"data"`
		} `json:"intData"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.StatusCode, body.IntData.Message, body.IntData.Data
}

func TestRegisterHandlerMissingFields(t *testing.T) {
	handler := NewHandler(newTestService(newFakeStore()))

	cases := []string{
		``,
		`{}`,
		`{"username":"alice123","password":"Sup3rSecret!"}`,
		`{"username":"alice123","status":1}`,
		`{"password":"Sup3rSecret!","status":1}`,
	}

	for _, body := range cases {
		rec := postJSON(t, handler.Register, "/register_user", body)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		statusCode, message, _ := decodeEnvelope(t, rec)
		assert.Equal(t, http.StatusBadRequest, statusCode)
		assert.Equal(t, "Todos los campos son requeridos", message)
	}
}

func TestRegisterHandlerHappyPathThenDuplicate(t *testing.T) {
	handler := NewHandler(newTestService(newFakeStore()))

	rec := postJSON(t, handler.Register, "/register_user", `{"username":"alice123","password":"Sup3rSecret!","status":1}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	statusCode, message, data := decodeEnvelope(t, rec)
	assert.Equal(t, http.StatusCreated, statusCode)
	assert.Equal(t, "Usuario registrado exitosamente", message)

	payload, ok := data.(map[string]any)
	require.True(t, ok)
	secret, _ := payload["secret"].(string)
	qrCode, _ := payload["qr_code"].(string)
	assert.NotEmpty(t, secret)
	assert.True(t, strings.HasPrefix(qrCode, "data:image/png;base64,"))

	rec = postJSON(t, handler.Register, "/register_user", `{"username":"alice123","password":"Sup3rSecret!","status":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	_, message, _ = decodeEnvelope(t, rec)
	assert.Equal(t, "Nombre de usuario ya registrado", message)
}

func TestLoginHandlerMissingFields(t *testing.T) {
	handler := NewHandler(newTestService(newFakeStore()))

	rec := postJSON(t, handler.Login, "/login", `{"username":"alice123","password":"Sup3rSecret!"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	_, message, _ := decodeEnvelope(t, rec)
	assert.Equal(t, "Usuario, contraseña y OTP son requeridos", message)
}

func TestLoginHandlerWrongOTP(t *testing.T) {
	svc := newTestService(newFakeStore())
	handler := NewHandler(svc)

	rec := postJSON(t, handler.Register, "/register_user", `{"username":"alice123","password":"Sup3rSecret!","status":1}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, handler.Login, "/login", `{"username":"alice123","password":"Sup3rSecret!","otp":"000000"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	statusCode, message, _ := decodeEnvelope(t, rec)
	assert.Equal(t, http.StatusUnauthorized, statusCode)
	assert.Equal(t, "Código OTP inválido", message)
}

func TestLoginHandlerReturnsTokenKey(t *testing.T) {
	svc := newTestService(newFakeStore())
	handler := NewHandler(svc)

	rec := postJSON(t, handler.Register, "/register_user", `{"username":"alice123","password":"Sup3rSecret!","status":1}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	_, _, data := decodeEnvelope(t, rec)
	secret := data.(map[string]any)["secret"].(string)

	code, err := ptotp.GenerateCode(secret, time.Now())
	require.NoError(t, err)

	rec = postJSON(t, handler.Login, "/login", `{"username":"alice123","password":"Sup3rSecret!","otp":"`+code+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		StatusCode int `json:"statusCode"`
		IntData    struct {
			Message string `json:"message"`
			Token   string `json:"token"`
		} `json:"intData"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusOK, body.StatusCode)
	assert.Equal(t, "Login exitoso", body.IntData.Message)
	assert.NotEmpty(t, body.IntData.Token, "token must live under intData.token")
}
