package gateway

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fati2809/ProyectoTerminado/internal/api"
)

// Limit is a named admission threshold. The name appears verbatim in the
// 429 body so clients see which limit they hit.
type Limit struct {
	Name   string
	Max    int
	Window time.Duration
}

func PerMinute(max int) Limit {
	return Limit{Name: fmt.Sprintf("%d peticiones por minuto", max), Max: max, Window: time.Minute}
}

func PerHour(max int) Limit {
	return Limit{Name: fmt.Sprintf("%d peticiones por hora", max), Max: max, Window: time.Hour}
}

func PerDay(max int) Limit {
	return Limit{Name: fmt.Sprintf("%d peticiones por día", max), Max: max, Window: 24 * time.Hour}
}

// Rule binds a path prefix to its own limit, replacing the defaults for
// matching requests.
type Rule struct {
	Prefix string
	Limit  Limit
}

// RateLimiter admits requests against sliding windows keyed by client IP
// and limit name. Counters live in process memory only: running several
// gateway instances multiplies the effective limit, which is accepted.
type RateLimiter struct {
	mu        sync.Mutex
	rules     []Rule
	defaults  []Limit
	exempt    map[string]struct{}
	hits      map[string][]time.Time
	maxMemory int
	now       func() time.Time
}

func NewRateLimiter(rules []Rule, defaults []Limit, exemptRoutes []string) *RateLimiter {
	exempt := make(map[string]struct{}, len(exemptRoutes))
	for _, route := range exemptRoutes {
		exempt[route] = struct{}{}
	}

	return &RateLimiter{
		rules:     rules,
		defaults:  defaults,
		exempt:    exempt,
		hits:      make(map[string][]time.Time),
		maxMemory: 5000,
		now:       time.Now,
	}
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := l.exempt[r.URL.Path]; ok {
			next.ServeHTTP(w, r)
			return
		}

		ip := api.ClientIP(r)
		limits := l.limitsFor(r.URL.Path)

		exceeded, retryAfter, ok := l.admit(ip, limits, l.now().UTC())
		if !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
			api.WriteJSON(w, http.StatusTooManyRequests, map[string]any{
				"error":      "Límite de peticiones excedido",
				"message":    fmt.Sprintf("Has alcanzado el límite de peticiones: %s. Por favor, intenta de nuevo más tarde.", exceeded.Name),
				"statusCode": http.StatusTooManyRequests,
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// limitsFor returns the limit set applying to a path: the first matching
// prefix rule, or the global defaults when no prefix matches.
func (l *RateLimiter) limitsFor(path string) []Limit {
	for _, rule := range l.rules {
		if strings.HasPrefix(path, rule.Prefix) {
			return []Limit{rule.Limit}
		}
	}
	return l.defaults
}

// admit checks every applicable limit before recording the hit, so a
// rejected request does not consume budget on the limits it passed.
func (l *RateLimiter) admit(ip string, limits []Limit, now time.Time) (Limit, time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	type bucket struct {
		key      string
		filtered []time.Time
	}
	buckets := make([]bucket, 0, len(limits))

	for _, limit := range limits {
		key := ip + "|" + limit.Name
		threshold := now.Add(-limit.Window)

		hits := l.hits[key]
		filtered := make([]time.Time, 0, len(hits)+1)
		for _, hit := range hits {
			if hit.After(threshold) {
				filtered = append(filtered, hit)
			}
		}

		if len(filtered) >= limit.Max {
			retryAfter := filtered[0].Add(limit.Window).Sub(now)
			if retryAfter < time.Second {
				retryAfter = time.Second
			}
			l.hits[key] = filtered
			return limit, retryAfter, false
		}

		buckets = append(buckets, bucket{key: key, filtered: filtered})
	}

	for _, b := range buckets {
		l.hits[b.key] = append(b.filtered, now)
	}

	if len(l.hits) > l.maxMemory {
		l.evictStale(now)
	}

	return Limit{}, 0, true
}

func (l *RateLimiter) evictStale(now time.Time) {
	longest := time.Minute
	for _, limit := range l.defaults {
		if limit.Window > longest {
			longest = limit.Window
		}
	}
	for _, rule := range l.rules {
		if rule.Limit.Window > longest {
			longest = rule.Limit.Window
		}
	}

	threshold := now.Add(-longest)
	for key, value := range l.hits {
		if len(value) == 0 || value[len(value)-1].Before(threshold) {
			delete(l.hits, key)
		}
	}
}
