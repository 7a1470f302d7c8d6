package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	uuid "github.com/satori/go.uuid"

	"horizon-server/models"
)

// IdentityConfig locates one project on the hosted identity service. Key is
// the server API key used for admin-scoped calls (account creation, document
// writes); session-scoped calls authenticate with the session secret
// instead.
type IdentityConfig struct {
	Endpoint       string
	Project        string
	Key            string
	DatabaseID     string
	UserCollection string
	BankCollection string
}

// Identity is the REST shim for the identity service: password accounts,
// sessions, and the document store holding user profiles and linked bank
// accounts.
type Identity struct {
	hc  *http.Client
	cfg IdentityConfig
}

// NewIdentity takes an initialized HTTP client and the project coordinates.
func NewIdentity(hc *http.Client, cfg IdentityConfig) *Identity {
	return &Identity{hc: hc, cfg: cfg}
}

func (c *Identity) adminHeader() http.Header {
	h := http.Header{}
	h.Set("X-Project", c.cfg.Project)
	h.Set("X-Key", c.cfg.Key)
	return h
}

func (c *Identity) sessionHeader(secret string) http.Header {
	h := http.Header{}
	h.Set("X-Project", c.cfg.Project)
	h.Set("X-Session", secret)
	return h
}

// CreateAccount registers a password account and returns the service-issued
// user id. Duplicate emails and weak passwords are rejected by the service,
// not here.
func (c *Identity) CreateAccount(ctx context.Context, email, password, name string) (string, error) {
	body := map[string]string{
		"userId":   uuid.NewV4().String(),
		"email":    email,
		"password": password,
		"name":     name,
	}
	resp, err := doJSON(ctx, c.hc, http.MethodPost, c.cfg.Endpoint+"/v1/account", c.adminHeader(), body)
	if err != nil {
		return "", err
	}
	if !ok(resp.StatusCode) {
		defer resp.Body.Close()
		return "", serviceError("identity service", resp)
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := decodeJSON(resp, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// CreateSession exchanges a credential pair for a session. Every rejection
// collapses to the same error so callers cannot tell an unknown email from a
// wrong password.
func (c *Identity) CreateSession(ctx context.Context, email, password string) (*models.Session, error) {
	body := map[string]string{"email": email, "password": password}
	resp, err := doJSON(ctx, c.hc, http.MethodPost, c.cfg.Endpoint+"/v1/account/sessions", c.adminHeader(), body)
	if err != nil {
		return nil, err
	}
	if !ok(resp.StatusCode) {
		defer resp.Body.Close()
		return nil, fmt.Errorf("identity service rejected the credential")
	}
	var s models.Session
	if err := decodeJSON(resp, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetSession resolves a session secret to the user id it belongs to.
func (c *Identity) GetSession(ctx context.Context, secret string) (string, error) {
	resp, err := doJSON(ctx, c.hc, http.MethodGet, c.cfg.Endpoint+"/v1/account/sessions/current", c.sessionHeader(secret), nil)
	if err != nil {
		return "", err
	}
	if !ok(resp.StatusCode) {
		defer resp.Body.Close()
		return "", serviceError("identity service", resp)
	}
	var out struct {
		UserID string `json:"userId"`
	}
	if err := decodeJSON(resp, &out); err != nil {
		return "", err
	}
	return out.UserID, nil
}

// DeleteSession invalidates the session behind the secret.
func (c *Identity) DeleteSession(ctx context.Context, secret string) error {
	resp, err := doJSON(ctx, c.hc, http.MethodDelete, c.cfg.Endpoint+"/v1/account/sessions/current", c.sessionHeader(secret), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if !ok(resp.StatusCode) {
		return serviceError("identity service", resp)
	}
	return nil
}

// CreateUserProfile stores the profile as a document in the user collection
// and returns the stored form.
func (c *Identity) CreateUserProfile(ctx context.Context, p *models.UserProfile) (*models.UserProfile, error) {
	var out models.UserProfile
	if err := c.createDocument(ctx, c.cfg.UserCollection, p, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UserProfileByUserID looks up the profile document for a service-issued
// user id.
func (c *Identity) UserProfileByUserID(ctx context.Context, userID string) (*models.UserProfile, error) {
	var out struct {
		Documents []models.UserProfile `json:"documents"`
	}
	if err := c.listDocuments(ctx, c.cfg.UserCollection, url.Values{"userId": {userID}}, &out); err != nil {
		return nil, err
	}
	if len(out.Documents) == 0 {
		return nil, fmt.Errorf("no profile document for user %s", userID)
	}
	return &out.Documents[0], nil
}

// CreateLinkedAccount stores a linked bank account document.
func (c *Identity) CreateLinkedAccount(ctx context.Context, b *models.LinkedBankAccount) (*models.LinkedBankAccount, error) {
	var out models.LinkedBankAccount
	if err := c.createDocument(ctx, c.cfg.BankCollection, b, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LinkedAccountsByUserID returns every bank document belonging to a user.
func (c *Identity) LinkedAccountsByUserID(ctx context.Context, userID string) ([]models.LinkedBankAccount, error) {
	var out struct {
		Documents []models.LinkedBankAccount `json:"documents"`
	}
	if err := c.listDocuments(ctx, c.cfg.BankCollection, url.Values{"userId": {userID}}, &out); err != nil {
		return nil, err
	}
	return out.Documents, nil
}

// LinkedAccountByID returns a single bank document by its document id.
func (c *Identity) LinkedAccountByID(ctx context.Context, documentID string) (*models.LinkedBankAccount, error) {
	var out struct {
		Documents []models.LinkedBankAccount `json:"documents"`
	}
	if err := c.listDocuments(ctx, c.cfg.BankCollection, url.Values{"documentId": {documentID}}, &out); err != nil {
		return nil, err
	}
	if len(out.Documents) == 0 {
		return nil, fmt.Errorf("no bank document %s", documentID)
	}
	return &out.Documents[0], nil
}

func (c *Identity) documentsURL(collection string) string {
	return fmt.Sprintf("%s/v1/databases/%s/collections/%s/documents", c.cfg.Endpoint, c.cfg.DatabaseID, collection)
}

func (c *Identity) createDocument(ctx context.Context, collection string, fields, out interface{}) error {
	body := map[string]interface{}{
		"documentId": uuid.NewV4().String(),
		"data":       fields,
	}
	resp, err := doJSON(ctx, c.hc, http.MethodPost, c.documentsURL(collection), c.adminHeader(), body)
	if err != nil {
		return err
	}
	if !ok(resp.StatusCode) {
		defer resp.Body.Close()
		return serviceError("identity service", resp)
	}
	return decodeJSON(resp, out)
}

// listDocuments queries a collection by field equality. Filters translate
// straight to query parameters.
func (c *Identity) listDocuments(ctx context.Context, collection string, filters url.Values, out interface{}) error {
	u := c.documentsURL(collection)
	if len(filters) > 0 {
		u += "?" + filters.Encode()
	}
	resp, err := doJSON(ctx, c.hc, http.MethodGet, u, c.adminHeader(), nil)
	if err != nil {
		return err
	}
	if !ok(resp.StatusCode) {
		defer resp.Body.Close()
		return serviceError("identity service", resp)
	}
	return decodeJSON(resp, out)
}
