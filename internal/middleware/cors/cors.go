// Package cors configures cross-origin access for browser clients.
package cors

import (
	"net/http"
	"strings"

	"github.com/rs/cors"
)

// Headers the API reads from browser clients.
var allowedHeaders = []string{"Origin", "Content-Type", "Accept", "Idempotency-Key", "X-Request-ID"}

// Middleware allows the comma-separated origins in origin, or any origin
// when origin is empty or "*".
func Middleware(origin string) func(http.Handler) http.Handler {
	return cors.New(Options(origin)).Handler
}

// Options builds the cors configuration for origin.
func Options(origin string) cors.Options {
	origins := []string{"*"}
	if o := strings.TrimSpace(origin); o != "" && o != "*" {
		origins = origins[:0]
		for _, part := range strings.Split(o, ",") {
			if p := strings.TrimSpace(part); p != "" {
				origins = append(origins, p)
			}
		}
	}

	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   []string{"Idempotent-Replayed", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           600,
	}
}
