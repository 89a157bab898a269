package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows browser clients on the given origins to call the API with
// credentials. The CSRF header is exposed so the frontend can send it.
// With no origins configured only same-origin requests are served.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		// cors treats an empty list as "allow all".
		return func(next http.Handler) http.Handler { return next }
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", CSRFHeaderName},
		ExposedHeaders:   []string{"X-Cache"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
