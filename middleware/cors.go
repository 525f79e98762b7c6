package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS wraps the router with the allowed origins of the admin console.
func CORS(allowedOrigins []string, next http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Session-ID"},
		AllowCredentials: true,
	})

	return c.Handler(next)
}
