package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"horizon-server/models"
	"horizon-server/onboarding"
	"horizon-server/sessioncookie"
	"horizon-server/shareable"
)

// The controllers are exercised against a real Workflow wired from stubbed
// service clients, so the tests cover the handler plus the workflow's error
// mapping end to end.

type stubIdentity struct {
	rejectCredential bool
	profilesByUser   map[string]models.UserProfile
	banksByUser      map[string][]models.LinkedBankAccount
	createdBanks     int
}

func (s *stubIdentity) CreateAccount(ctx context.Context, email, password, name string) (string, error) {
	return "user-1", nil
}

func (s *stubIdentity) CreateSession(ctx context.Context, email, password string) (*models.Session, error) {
	if s.rejectCredential {
		return nil, errors.New("rejected")
	}
	return &models.Session{Secret: "s3cret", UserID: "user-1"}, nil
}

func (s *stubIdentity) GetSession(ctx context.Context, secret string) (string, error) {
	if secret != "s3cret" {
		return "", errors.New("unknown session")
	}
	return "user-1", nil
}

func (s *stubIdentity) DeleteSession(ctx context.Context, secret string) error { return nil }

func (s *stubIdentity) CreateUserProfile(ctx context.Context, p *models.UserProfile) (*models.UserProfile, error) {
	stored := *p
	stored.DocumentID = "doc-1"
	s.profilesByUser[stored.UserID] = stored
	return &stored, nil
}

func (s *stubIdentity) UserProfileByUserID(ctx context.Context, userID string) (*models.UserProfile, error) {
	p, found := s.profilesByUser[userID]
	if !found {
		return nil, errors.New("no profile")
	}
	return &p, nil
}

func (s *stubIdentity) CreateLinkedAccount(ctx context.Context, b *models.LinkedBankAccount) (*models.LinkedBankAccount, error) {
	stored := *b
	stored.DocumentID = "bank-doc-1"
	s.createdBanks++
	s.banksByUser[b.UserID] = append(s.banksByUser[b.UserID], stored)
	return &stored, nil
}

func (s *stubIdentity) LinkedAccountsByUserID(ctx context.Context, userID string) ([]models.LinkedBankAccount, error) {
	return s.banksByUser[userID], nil
}

func (s *stubIdentity) LinkedAccountByID(ctx context.Context, documentID string) (*models.LinkedBankAccount, error) {
	for _, banks := range s.banksByUser {
		for _, b := range banks {
			if b.DocumentID == documentID {
				return &b, nil
			}
		}
	}
	return nil, errors.New("no bank document")
}

type stubAggregator struct {
	exchangeErr error
}

func (s *stubAggregator) CreateLinkToken(ctx context.Context, userID, clientName string) (string, error) {
	return "link-token-1", nil
}

func (s *stubAggregator) ExchangePublicToken(ctx context.Context, publicToken string) (string, string, error) {
	if s.exchangeErr != nil {
		return "", "", s.exchangeErr
	}
	return "access-1", "item-1", nil
}

func (s *stubAggregator) GetAccounts(ctx context.Context, accessToken string) ([]models.Account, error) {
	return []models.Account{{AccountID: "acct-1", Name: "Checking"}}, nil
}

func (s *stubAggregator) CreateProcessorToken(ctx context.Context, accessToken, accountID string) (string, error) {
	return "processor-1", nil
}

func (s *stubAggregator) GetTransactions(ctx context.Context, accessToken string) ([]models.Transaction, error) {
	return nil, nil
}

type stubTransfer struct{}

func (stubTransfer) CreateCustomer(ctx context.Context, p *models.UserProfile) (string, error) {
	return "https://transfer.example.com/customers/cust-42", nil
}

func (stubTransfer) CreateFundingSource(ctx context.Context, customerID, processorToken, bankName string) (string, error) {
	return "https://transfer.example.com/funding-sources/fs-7", nil
}

type memProgress struct {
	checkpoints map[string]onboarding.Checkpoint
}

func (s *memProgress) Load(ctx context.Context, email string) (*onboarding.Checkpoint, error) {
	cp, found := s.checkpoints[email]
	if !found {
		return nil, nil
	}
	return &cp, nil
}

func (s *memProgress) Save(ctx context.Context, cp *onboarding.Checkpoint) error {
	s.checkpoints[cp.Email] = *cp
	return nil
}

func (s *memProgress) Clear(ctx context.Context, email string) error {
	delete(s.checkpoints, email)
	return nil
}

type memCache struct{ entries map[string][]byte }

func (c *memCache) Get(userID string) ([]byte, bool) {
	b, found := c.entries[userID]
	return b, found
}

func (c *memCache) Set(userID string, payload []byte) error {
	c.entries[userID] = payload
	return nil
}

func (c *memCache) Invalidate(userID string) error {
	delete(c.entries, userID)
	return nil
}

func newTestFlow(t *testing.T, identity *stubIdentity, aggregator *stubAggregator) *onboarding.Workflow {
	t.Helper()
	enc, err := shareable.New(strings.Repeat("ab", 32))
	if err != nil {
		t.Fatalf("shareable.New failed: %v", err)
	}
	return onboarding.New(
		identity,
		aggregator,
		stubTransfer{},
		&memProgress{checkpoints: map[string]onboarding.Checkpoint{}},
		&memCache{entries: map[string][]byte{}},
		enc,
	)
}

func newStubIdentity() *stubIdentity {
	return &stubIdentity{
		profilesByUser: map[string]models.UserProfile{},
		banksByUser:    map[string][]models.LinkedBankAccount{},
	}
}

const signUpBody = `{
	"email":"a@x.com","password":"password1",
	"firstName":"Jane","lastName":"Doe",
	"address1":"1 Main St","city":"Chicago","state":"IL",
	"postalCode":"60601","dateOfBirth":"1990-01-01","ssn":"1234"
}`

func TestRegisterSetsSessionCookie(t *testing.T) {
	flow := newTestFlow(t, newStubIdentity(), &stubAggregator{})
	ac := NewAuthController(flow)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(signUpBody))
	ac.Register(w, r)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != sessioncookie.Name || cookies[0].Value != "s3cret" {
		t.Errorf("cookies = %v", cookies)
	}
	var profile models.UserProfile
	if err := json.Unmarshal(w.Body.Bytes(), &profile); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if profile.UserID == "" || profile.CustomerID == "" || profile.CustomerURL == "" {
		t.Errorf("profile is missing onboarding ids: %+v", profile)
	}
	if profile.SSN != "" {
		t.Error("response leaked the ssn")
	}
}

func TestRegisterValidatesInput(t *testing.T) {
	flow := newTestFlow(t, newStubIdentity(), &stubAggregator{})
	ac := NewAuthController(flow)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(`{"email":"a@x.com","password":"short"}`))
	ac.Register(w, r)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestLoginRejectionIsUnauthorized(t *testing.T) {
	identity := newStubIdentity()
	identity.rejectCredential = true
	ac := NewAuthController(newTestFlow(t, identity, &stubAggregator{}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"a@x.com","password":"password1"}`))
	ac.Login(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("no cookie may be set on a rejected login")
	}
}

func TestLogoutWithoutSession(t *testing.T) {
	ac := NewAuthController(newTestFlow(t, newStubIdentity(), &stubAggregator{}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	ac.Logout(w, r)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
}

func withSession(r *http.Request) *http.Request {
	r.AddCookie(&http.Cookie{Name: sessioncookie.Name, Value: "s3cret"})
	return r
}

func TestMeWithoutSession(t *testing.T) {
	anc := NewAccountController(newTestFlow(t, newStubIdentity(), &stubAggregator{}))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	anc.Me(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestExchangePersistsAndScrubs(t *testing.T) {
	identity := newStubIdentity()
	identity.profilesByUser["user-1"] = models.UserProfile{UserID: "user-1", CustomerID: "cust-42"}
	lc := NewLinkController(newTestFlow(t, identity, &stubAggregator{}))

	w := httptest.NewRecorder()
	r := withSession(httptest.NewRequest(http.MethodPost, "/api/link/exchange", strings.NewReader(`{"publicToken":"public-1"}`)))
	lc.Exchange(w, r)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body)
	}
	var record models.LinkedBankAccount
	if err := json.Unmarshal(w.Body.Bytes(), &record); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if record.AccessToken != "" {
		t.Error("response leaked the aggregator access token")
	}
	if record.FundingSourceURL == "" || record.ShareableID == "" {
		t.Errorf("record = %+v", record)
	}
	if identity.createdBanks != 1 {
		t.Errorf("persisted %d bank documents, want 1", identity.createdBanks)
	}
}

func TestExchangeFailureIsBadGateway(t *testing.T) {
	identity := newStubIdentity()
	identity.profilesByUser["user-1"] = models.UserProfile{UserID: "user-1", CustomerID: "cust-42"}
	lc := NewLinkController(newTestFlow(t, identity, &stubAggregator{exchangeErr: errors.New("expired")}))

	w := httptest.NewRecorder()
	r := withSession(httptest.NewRequest(http.MethodPost, "/api/link/exchange", strings.NewReader(`{"publicToken":"public-1"}`)))
	lc.Exchange(w, r)

	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", w.Code)
	}
	if identity.createdBanks != 0 {
		t.Error("no bank document may be persisted after an exchange failure")
	}
}

func TestBanksReturnsOwnRecordsOnly(t *testing.T) {
	identity := newStubIdentity()
	identity.profilesByUser["user-1"] = models.UserProfile{UserID: "user-1"}
	identity.banksByUser["user-1"] = []models.LinkedBankAccount{{DocumentID: "bank-doc-1", UserID: "user-1", AccessToken: "access-1"}}
	identity.banksByUser["user-2"] = []models.LinkedBankAccount{{DocumentID: "bank-doc-2", UserID: "user-2"}}
	anc := NewAccountController(newTestFlow(t, identity, &stubAggregator{}))

	// Listing only covers the session's user.
	w := httptest.NewRecorder()
	anc.Banks(w, withSession(httptest.NewRequest(http.MethodGet, "/api/banks", nil)))
	var banks []models.LinkedBankAccount
	if err := json.Unmarshal(w.Body.Bytes(), &banks); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if len(banks) != 1 || banks[0].DocumentID != "bank-doc-1" {
		t.Errorf("banks = %+v", banks)
	}
	if banks[0].AccessToken != "" {
		t.Error("response leaked an access token")
	}

	// Fetching another user's document by id is a 404, not a leak.
	w = httptest.NewRecorder()
	anc.Banks(w, withSession(httptest.NewRequest(http.MethodGet, "/api/banks?id=bank-doc-2", nil)))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
