package middleware

import (
	"net/http"
	"strings"

	"carbook/pkg/logger"
)

// ContentTypeValidation rejects write requests whose body is not JSON.
func ContentTypeValidation(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
				if r.ContentLength > 0 {
					contentType := r.Header.Get("Content-Type")
					if !strings.HasPrefix(contentType, "application/json") {
						log.Warn("Rejected request with unsupported content type",
							"method", r.Method,
							"path", r.URL.Path,
							"content_type", contentType,
						)
						w.Header().Set("Content-Type", "application/json")
						w.WriteHeader(http.StatusUnsupportedMediaType)
						_, _ = w.Write([]byte(`{"error":"Content-Type must be application/json"}`))
						return
					}
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// MaxRequestSize caps request body size to protect the JSON decoder.
func MaxRequestSize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
