package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/medsupply/cotizaciones-api/pkg/config"
)

// CORS applies the configured origin policy. A wildcard origin disables
// credentialed requests, which browsers reject in that combination.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	credentials := true
	for _, origin := range origins {
		if origin == "*" {
			credentials = false
			break
		}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id", "Content-Disposition"},
		AllowCredentials: credentials,
		MaxAge:           300,
	}).Handler
}
