package chimux

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// Middleware is an alias for the chi middleware handler function
type Middleware func(http.Handler) http.Handler

// corsMiddleware answers preflight requests itself and stamps the CORS
// headers on responses to allowed origins. Headers are computed once from
// the config.
func (m *ChiMuxModule) corsMiddleware() Middleware {
	anyOrigin := slices.Contains(m.config.AllowedOrigins, "*")
	origins := make(map[string]struct{}, len(m.config.AllowedOrigins))
	for _, o := range m.config.AllowedOrigins {
		origins[o] = struct{}{}
	}

	fixed := http.Header{}
	if len(m.config.AllowedMethods) > 0 {
		fixed.Set("Access-Control-Allow-Methods", strings.Join(m.config.AllowedMethods, ", "))
	}
	if len(m.config.AllowedHeaders) > 0 {
		fixed.Set("Access-Control-Allow-Headers", strings.Join(m.config.AllowedHeaders, ", "))
	}
	if m.config.MaxAge > 0 {
		fixed.Set("Access-Control-Max-Age", strconv.Itoa(m.config.MaxAge))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if _, ok := origins[origin]; origin != "" && (ok || anyOrigin) {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
				for k, v := range fixed {
					h[k] = v
				}
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger logs each request with its chi request id, status and
// duration.
func (m *ChiMuxModule) requestLogger() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				m.logger.Debug("Request",
					"id", middleware.GetReqID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"duration", time.Since(start))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
