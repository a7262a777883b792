package api

import (
	"encoding/json"
	"net/http"
	"strings"
)

// IntData is the inner payload of the standard response envelope.
type IntData struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// Envelope is the response shape shared by the auth, task and gateway
// services: {"statusCode": N, "intData": {"message": ..., "data": ...}}.
type Envelope struct {
	StatusCode int     `json:"statusCode"`
	IntData    IntData `json:"intData"`
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteEnvelope writes the standard envelope. The HTTP status always
// mirrors statusCode.
func WriteEnvelope(w http.ResponseWriter, status int, message string, data any) {
	WriteJSON(w, status, Envelope{
		StatusCode: status,
		IntData:    IntData{Message: message, Data: data},
	})
}

// WriteTokenError writes the 401 body used by token-gated routes:
// {"message": ..., "status": "error"}.
func WriteTokenError(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusUnauthorized, map[string]string{
		"message": message,
		"status":  "error",
	})
}

func ClientIP(r *http.Request) string {
	xForwardedFor := strings.TrimSpace(r.Header.Get("X-Forwarded-For"))
	if xForwardedFor != "" {
		parts := strings.Split(xForwardedFor, ",")
		if len(parts) > 0 {
			ip := strings.TrimSpace(parts[0])
			if ip != "" {
				return ip
			}
		}
	}

	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}

	return "unknown"
}
