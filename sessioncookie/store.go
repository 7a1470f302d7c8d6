// Package sessioncookie adapts the identity service's opaque session secret
// to an HTTP cookie. A Store is bound to one request/response pair and is
// passed explicitly into handlers, so nothing reads session state from
// ambient globals.
package sessioncookie

import "net/http"

// Name is the cookie carrying the identity service session secret.
const Name = "session-token"

// Store reads and writes the session cookie for a single request.
type Store struct {
	w http.ResponseWriter
	r *http.Request
}

// New binds a store to the current request/response pair.
func New(w http.ResponseWriter, r *http.Request) *Store {
	return &Store{w: w, r: r}
}

// Set writes the session cookie. Expiry is left to the identity service's
// session lifetime; the cookie itself carries none.
func (s *Store) Set(secret string) {
	http.SetCookie(s.w, &http.Cookie{
		Name:     Name,
		Value:    secret,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   true,
	})
}

// Get returns the session secret, or false when no session cookie is
// present.
func (s *Store) Get() (string, bool) {
	c, err := s.r.Cookie(Name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// Clear expires the cookie. Safe to call when no session exists.
func (s *Store) Clear() {
	http.SetCookie(s.w, &http.Cookie{
		Name:     Name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   true,
		MaxAge:   -1,
	})
}
