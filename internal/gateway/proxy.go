package gateway

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fati2809/ProyectoTerminado/internal/api"
	"github.com/fati2809/ProyectoTerminado/internal/observability"
)

// Backend is one reverse-proxy target, resolved by path prefix.
type Backend struct {
	Name    string
	Prefix  string
	BaseURL string
}

// Proxy forwards requests to the backend service owning the path prefix
// and relays the response verbatim, whatever its body looks like. The
// shared client carries a bounded timeout; a hung backend becomes a 504
// instead of a hung client.
type Proxy struct {
	client   *http.Client
	backends []Backend
	logger   *observability.Logger
}

func NewProxy(backends []Backend, timeout time.Duration, logger *observability.Logger) *Proxy {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Proxy{
		client:   &http.Client{Timeout: timeout},
		backends: backends,
		logger:   logger,
	}
}

// Handler returns the http.Handler forwarding to one backend. Register it
// under the backend's prefix pattern.
func (p *Proxy) Handler(backend Backend) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.forward(w, r, backend)
	})
}

func (p *Proxy) forward(w http.ResponseWriter, r *http.Request, backend Backend) {
	target := strings.TrimSuffix(backend.BaseURL, "/") + "/" + strings.TrimPrefix(r.URL.Path, backend.Prefix)

	var body io.Reader
	if r.Method != http.MethodGet {
		body = r.Body
	}

	req, err := http.NewRequestWithContext(r.Context(), r.Method, target, body)
	if err != nil {
		api.WriteEnvelope(w, http.StatusBadGateway, "Error al contactar el servicio", nil)
		return
	}

	if r.Method == http.MethodGet {
		req.URL.RawQuery = r.URL.RawQuery
	}

	for key, values := range r.Header {
		if strings.EqualFold(key, "Host") {
			continue
		}
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		status := http.StatusBadGateway
		message := "Servicio no disponible"
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			status = http.StatusGatewayTimeout
			message = "Tiempo de espera agotado al contactar el servicio"
		}

		p.logger.Error("proxy_dispatch_failed", map[string]any{
			"service": backend.Name,
			"target":  target,
			"error":   err.Error(),
		})
		api.WriteEnvelope(w, status, message, nil)
		return
	}
	defer resp.Body.Close()

	// Verbatim passthrough: status, headers and body bytes exactly as
	// the backend sent them, JSON or not.
	for key, values := range resp.Header {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = io.Copy(w, resp.Body)
}
