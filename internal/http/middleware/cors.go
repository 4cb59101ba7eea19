package middleware

import (
	"net/http"
	"os"
	"strings"
)

// CORSMiddleware handles CORS headers for all requests.
// CORS_ALLOW_ORIGIN holds "*" (the default) or a comma separated list of origins.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowedOrigin(os.Getenv("CORS_ALLOW_ORIGIN"), r.Header.Get("Origin")))
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Request-ID")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		// Preflight requests stop here
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func allowedOrigin(setting, origin string) string {
	if setting == "" || setting == "*" {
		return "*"
	}

	origins := strings.Split(setting, ",")
	for _, o := range origins {
		if strings.TrimSpace(o) == origin && origin != "" {
			return origin
		}
	}
	return strings.TrimSpace(origins[0])
}
