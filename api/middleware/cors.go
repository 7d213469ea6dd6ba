package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// TokenHeader carries the freshly minted access token on sign-in and refresh.
const TokenHeader = "X-Wishboard-Token"

// CORS returns middleware that applies the configured allowed origin policy.
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", TokenHeader, "Idempotency-Key", "X-Request-Id", "X-Requested-With"},
		ExposedHeaders:   []string{TokenHeader, "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
