package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteEnvelopeMirrorsStatusCode(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteEnvelope(rec, http.StatusNotFound, "Task not found", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"statusCode":404,"intData":{"message":"Task not found","data":null}}`, rec.Body.String())
}

func TestWriteTokenErrorShape(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteTokenError(rec, "Token requerido")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"Token requerido","status":"error"}`, rec.Body.String())
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "10.0.0.1:1234", ClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", ClientIP(req), "first forwarded hop wins")
}
