package middleware

import (
	"context"
	"net/http"
	"time"
)

// ExtendedTimeout applies a longer context deadline to endpoints that do
// heavy work, such as batch PDF generation. The server's WriteTimeout
// still bounds the response.
func ExtendedTimeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
