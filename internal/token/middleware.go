package token

import (
	"errors"
	"net/http"
	"strings"

	"github.com/fati2809/ProyectoTerminado/internal/api"
)

// Require gates a handler behind a valid bearer token. Without a valid
// token the wrapped handler never executes; verified claims are injected
// into the request context for handlers that need the acting user.
func Require(svc *Service, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if header == "" {
			api.WriteTokenError(w, "Token requerido")
			return
		}

		raw := header
		if parts := strings.SplitN(header, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			raw = strings.TrimSpace(parts[1])
		}

		claims, err := svc.Verify(raw)
		if err != nil {
			if errors.Is(err, ErrTokenExpired) {
				api.WriteTokenError(w, "Token expirado")
				return
			}
			api.WriteTokenError(w, "Token inválido")
			return
		}

		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), claims)))
	})
}
