package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"

	"horizon-server/models"
)

// tokenSlack is subtracted from the bearer token's expiry so a token is
// never used right at its deadline.
const tokenSlack = 30 * time.Second

// TransferConfig carries the client-credential pair for the funds transfer
// service's OAuth token endpoint.
type TransferConfig struct {
	Endpoint string
	Key      string
	Secret   string
}

// Transfer is the REST shim for the funds transfer service: payment
// customers and funding sources. It holds a cached bearer token and
// refreshes it when the token approaches its expiry.
type Transfer struct {
	hc  *http.Client
	cfg TransferConfig

	mu       sync.Mutex
	token    string
	tokenExp time.Time
}

// NewTransfer takes an initialized HTTP client and the API credential.
func NewTransfer(hc *http.Client, cfg TransferConfig) *Transfer {
	return &Transfer{hc: hc, cfg: cfg}
}

// bearer returns a valid bearer token, fetching a fresh one from the token
// endpoint when the cached one is missing or near expiry.
func (c *Transfer) bearer(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && time.Now().Before(c.tokenExp.Add(-tokenSlack)) {
		return c.token, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.cfg.Key, c.cfg.Secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.hc.Do(req)
	if err != nil {
		return "", err
	}
	if !ok(resp.StatusCode) {
		defer resp.Body.Close()
		return "", serviceError("transfer service", resp)
	}
	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := decodeJSON(resp, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("transfer service returned an empty access token")
	}

	c.token = out.AccessToken
	c.tokenExp = tokenExpiry(out.AccessToken, out.ExpiresIn)
	return c.token, nil
}

// tokenExpiry prefers the exp claim embedded in the token; the claim is read
// without signature verification since only the issuer can verify it and we
// only need the deadline. Falls back to expires_in.
func tokenExpiry(token string, expiresIn int64) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err == nil {
		if exp, found := claims["exp"].(float64); found {
			return time.Unix(int64(exp), 0)
		}
	}
	return time.Now().Add(time.Duration(expiresIn) * time.Second)
}

func (c *Transfer) postForLocation(ctx context.Context, path string, body interface{}) (string, error) {
	token, err := c.bearer(ctx)
	if err != nil {
		return "", err
	}
	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)
	resp, err := doJSON(ctx, c.hc, http.MethodPost, c.cfg.Endpoint+path, h, body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if !ok(resp.StatusCode) {
		return "", serviceError("transfer service", resp)
	}
	loc := resp.Header.Get("Location")
	if loc == "" {
		return "", fmt.Errorf("transfer service response carried no Location header")
	}
	return loc, nil
}

// CreateCustomer registers a personal payment customer from the profile and
// returns the customer resource URL.
func (c *Transfer) CreateCustomer(ctx context.Context, p *models.UserProfile) (string, error) {
	return c.postForLocation(ctx, "/customers", map[string]string{
		"firstName":   p.FirstName,
		"lastName":    p.LastName,
		"email":       p.Email,
		"type":        "personal",
		"address1":    p.Address,
		"city":        p.City,
		"state":       p.State,
		"postalCode":  p.PostalCode,
		"dateOfBirth": p.DateOfBirth,
		"ssn":         p.SSN,
	})
}

// CreateFundingSource registers a bank account as a money-movement endpoint
// for an existing customer and returns the funding source URL.
func (c *Transfer) CreateFundingSource(ctx context.Context, customerID, processorToken, bankName string) (string, error) {
	path := fmt.Sprintf("/customers/%s/funding-sources", customerID)
	return c.postForLocation(ctx, path, map[string]string{
		"plaidToken": processorToken,
		"name":       bankName,
	})
}
