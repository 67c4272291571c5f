package middleware

import (
	"net/http"
	"strings"
)

// TrimSlash returns middleware that redirects GET requests with trailing
// slashes to their canonical form without the slash. The root path "/" is
// preserved; other methods pass through so request bodies are not lost.
func TrimSlash() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(r.URL.Path) > 1 && strings.HasSuffix(r.URL.Path, "/") && r.Method == http.MethodGet {
				target := strings.TrimSuffix(r.URL.Path, "/")
				if r.URL.RawQuery != "" {
					target += "?" + r.URL.RawQuery
				}
				http.Redirect(w, r, target, http.StatusMovedPermanently)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
