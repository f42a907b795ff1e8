package middleware

import (
	"encoding/json"
	"net/http"

	"navaid/internal/dto"
	"navaid/internal/logger"
)

// RecoveryMiddleware turns a panic in any handler into a 500 JSON response.
func RecoveryMiddleware(logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("Panic recovered on %s %s (request %s): %v", r.Method, r.URL.Path, GetRequestID(r.Context()), err)

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(dto.ErrorResponse{Error: "Internal server error"})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
