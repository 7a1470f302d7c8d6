package models

// Session is the identity service's session as returned from a credential
// exchange. The secret is the opaque value stored in the session cookie; it
// is never persisted anywhere else.
type Session struct {
	Secret string `json:"secret"`
	UserID string `json:"userId"`
}
