package middleware

import (
	"log"
	"net/http"

	"horizon-server/sessioncookie"
)

// EnsureSession is a middleware function which fails closed when no session
// cookie accompanies the request. The cookie's secret is still validated
// against the identity service downstream; this only rejects requests that
// cannot possibly be authenticated.
func EnsureSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, found := sessioncookie.New(w, r).Get(); !found {
			log.Println("authenticated route requested with no session cookie:", r.URL.Path)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
