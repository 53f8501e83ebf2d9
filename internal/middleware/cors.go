package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS builds the cors.Options for the admin API. go-chi/cors treats an
// empty origin list as allow-all, so no configured origins must map to
// an explicit deny; the API then serves same-origin and non-browser
// clients only. A wildcard origin forces AllowCredentials off; browsers
// reject the credentialed wildcard combination.
func CORS(allowedOrigins []string) cors.Options {
	if len(allowedOrigins) == 0 {
		return cors.Options{
			AllowOriginFunc: func(*http.Request, string) bool { return false },
		}
	}

	allowCreds := true
	for _, o := range allowedOrigins {
		if o == "*" {
			allowCreds = false
			break
		}
	}

	return cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: allowCreds,
		MaxAge:           300,
	}
}
