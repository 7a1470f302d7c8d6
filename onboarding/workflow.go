// Package onboarding drives a new user from submitted registration data to
// an authenticated session with an externally registered payment identity,
// and attaches linked bank accounts afterward. It is the only place the
// three hosted services are coordinated; everything above it sees plain
// models and the step-error taxonomy.
package onboarding

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"horizon-server/models"
	"horizon-server/shareable"
)

// IdentityService is the slice of the identity client the workflow needs.
type IdentityService interface {
	CreateAccount(ctx context.Context, email, password, name string) (string, error)
	CreateSession(ctx context.Context, email, password string) (*models.Session, error)
	GetSession(ctx context.Context, secret string) (string, error)
	DeleteSession(ctx context.Context, secret string) error
	CreateUserProfile(ctx context.Context, p *models.UserProfile) (*models.UserProfile, error)
	UserProfileByUserID(ctx context.Context, userID string) (*models.UserProfile, error)
	CreateLinkedAccount(ctx context.Context, b *models.LinkedBankAccount) (*models.LinkedBankAccount, error)
	LinkedAccountsByUserID(ctx context.Context, userID string) ([]models.LinkedBankAccount, error)
	LinkedAccountByID(ctx context.Context, documentID string) (*models.LinkedBankAccount, error)
}

// Aggregator is the slice of the bank data aggregator client the workflow
// needs.
type Aggregator interface {
	CreateLinkToken(ctx context.Context, userID, clientName string) (string, error)
	ExchangePublicToken(ctx context.Context, publicToken string) (accessToken, itemID string, err error)
	GetAccounts(ctx context.Context, accessToken string) ([]models.Account, error)
	CreateProcessorToken(ctx context.Context, accessToken, accountID string) (string, error)
	GetTransactions(ctx context.Context, accessToken string) ([]models.Transaction, error)
}

// TransferService is the slice of the funds transfer client the workflow
// needs.
type TransferService interface {
	CreateCustomer(ctx context.Context, p *models.UserProfile) (string, error)
	CreateFundingSource(ctx context.Context, customerID, processorToken, bankName string) (string, error)
}

// DashboardCache invalidation keeps home-view reads consistent with newly
// linked accounts.
type DashboardCache interface {
	Get(userID string) ([]byte, bool)
	Set(userID string, payload []byte) error
	Invalidate(userID string) error
}

// Workflow coordinates the three hosted services, the progress checkpoints,
// and the dashboard cache.
type Workflow struct {
	identity   IdentityService
	aggregator Aggregator
	transfer   TransferService
	progress   ProgressStore
	cache      DashboardCache
	encrypter  *shareable.Encrypter
}

// New wires a workflow from its collaborators.
func New(identity IdentityService, aggregator Aggregator, transfer TransferService, progress ProgressStore, cache DashboardCache, encrypter *shareable.Encrypter) *Workflow {
	return &Workflow{
		identity:   identity,
		aggregator: aggregator,
		transfer:   transfer,
		progress:   progress,
		cache:      cache,
		encrypter:  encrypter,
	}
}

// RegisterUser runs the fixed onboarding sequence: identity account, then
// transfer customer, then profile document, then session. Each step's output
// feeds the next, so the order never changes; the session comes last on
// purpose, so a half-onboarded user is inspectable without being logged in.
//
// Progress is checkpointed per email. On failure the returned error is a
// StageError naming the last completed stage, and a retry for the same email
// resumes from the checkpoint instead of re-creating the identity or
// customer.
func (w *Workflow) RegisterUser(ctx context.Context, req models.SignUpRequest) (*models.UserProfile, string, error) {
	profile := req.Profile()

	cp, err := w.progress.Load(ctx, req.Email)
	if err != nil {
		log.Println("could not load onboarding checkpoint, starting clean:", err)
	}
	if cp == nil {
		cp = &Checkpoint{Email: req.Email, Stage: StageUnregistered}
	}

	if cp.UserID == "" {
		userID, err := w.identity.CreateAccount(ctx, req.Email, req.Password, profile.FullName())
		if err != nil {
			log.Println("identity account creation failed for", req.Email, ":", err)
			return nil, "", stageErr(StageUnregistered, ErrIdentityCreationFailed, err)
		}
		cp.UserID = userID
		cp.Stage = StageIdentityCreated
		w.checkpoint(ctx, cp)
	}
	profile.UserID = cp.UserID

	if cp.CustomerURL == "" {
		customerURL, err := w.transfer.CreateCustomer(ctx, profile)
		if err != nil {
			log.Println("transfer customer creation failed for", req.Email, ":", err)
			return nil, "", stageErr(StageIdentityCreated, ErrCustomerCreationFailed, err)
		}
		// The customer exists at the transfer service from this point on,
		// so the url is checkpointed before the id extraction: a retry
		// must never mint a second customer even when the url is unusable.
		cp.CustomerURL = customerURL
		w.checkpoint(ctx, cp)
	}
	if cp.CustomerID == "" {
		customerID, ok := extractCustomerID(cp.CustomerURL)
		if !ok {
			return nil, "", stageErr(StageIdentityCreated, ErrMalformedCustomerURL, nil)
		}
		cp.CustomerID = customerID
		cp.Stage = StageCustomerCreated
		w.checkpoint(ctx, cp)
	}
	profile.CustomerID = cp.CustomerID
	profile.CustomerURL = cp.CustomerURL

	// A checkpoint past the persist step means a profile document already
	// exists; writing another would leave duplicates behind.
	var stored *models.UserProfile
	if cp.Stage == StageProfilePersisted {
		stored, err = w.identity.UserProfileByUserID(ctx, cp.UserID)
		if err != nil {
			log.Println("checkpointed profile document missing for", req.Email, ", persisting again:", err)
			stored = nil
		}
	}
	if stored == nil {
		stored, err = w.identity.CreateUserProfile(ctx, profile)
		if err != nil {
			log.Println("profile document persist failed for", req.Email, ":", err)
			return nil, "", stageErr(StageCustomerCreated, ErrProfilePersistFailed, err)
		}
		cp.Stage = StageProfilePersisted
		w.checkpoint(ctx, cp)
	}

	session, err := w.identity.CreateSession(ctx, req.Email, req.Password)
	if err != nil {
		log.Println("session creation failed for", req.Email, ":", err)
		return nil, "", stageErr(StageProfilePersisted, ErrSessionCreationFailed, err)
	}

	if err := w.progress.Clear(ctx, req.Email); err != nil {
		log.Println("could not clear onboarding checkpoint for", req.Email, ":", err)
	}
	return stored, session.Secret, nil
}

// AuthenticateUser exchanges the credential for a session and returns the
// matching profile. Every rejection surfaces as the same
// ErrAuthenticationFailed so callers cannot probe which emails exist.
func (w *Workflow) AuthenticateUser(ctx context.Context, req models.SignInRequest) (*models.UserProfile, string, error) {
	session, err := w.identity.CreateSession(ctx, req.Email, req.Password)
	if err != nil {
		log.Println("sign-in rejected for", req.Email)
		return nil, "", ErrAuthenticationFailed
	}
	profile, err := w.identity.UserProfileByUserID(ctx, session.UserID)
	if err != nil {
		log.Println("no profile for authenticated user", session.UserID, ":", err)
		return nil, "", ErrAuthenticationFailed
	}
	return profile, session.Secret, nil
}

// CurrentUser resolves a session secret to the profile it belongs to.
func (w *Workflow) CurrentUser(ctx context.Context, sessionSecret string) (*models.UserProfile, error) {
	if sessionSecret == "" {
		return nil, ErrNoActiveSession
	}
	userID, err := w.identity.GetSession(ctx, sessionSecret)
	if err != nil {
		return nil, ErrNoActiveSession
	}
	profile, err := w.identity.UserProfileByUserID(ctx, userID)
	if err != nil {
		return nil, ErrNoActiveSession
	}
	return profile, nil
}

// Logout deletes the remote session. Already-gone sessions are fine.
func (w *Workflow) Logout(ctx context.Context, sessionSecret string) {
	if sessionSecret == "" {
		return
	}
	if err := w.identity.DeleteSession(ctx, sessionSecret); err != nil {
		log.Println("remote session delete failed:", err)
	}
}

// CreateLinkToken requests a link token scoped to this user for the
// browser-side linking widget.
func (w *Workflow) CreateLinkToken(ctx context.Context, user *models.UserProfile) (string, error) {
	return w.aggregator.CreateLinkToken(ctx, user.UserID, user.FullName())
}

// LinkBankAccount turns a temporary public token into a persisted
// LinkedBankAccount: exchange, account fetch, processor token, funding
// source, then the document write. No record is persisted unless both the
// processor token and the funding source URL were obtained in this same
// invocation.
//
// When the exchanged item carries several accounts only the first is linked;
// one funding source per exchange keeps the failure states linear.
func (w *Workflow) LinkBankAccount(ctx context.Context, user *models.UserProfile, publicToken string) (*models.LinkedBankAccount, error) {
	accessToken, itemID, err := w.aggregator.ExchangePublicToken(ctx, publicToken)
	if err != nil {
		log.Println("public token exchange failed for user", user.UserID, ":", err)
		return nil, wrap(ErrTokenExchangeFailed, err)
	}

	accounts, err := w.aggregator.GetAccounts(ctx, accessToken)
	if err != nil {
		log.Println("accounts fetch failed for user", user.UserID, ":", err)
		return nil, wrap(ErrAccountFetchFailed, err)
	}
	if len(accounts) == 0 {
		return nil, ErrAccountFetchFailed
	}
	account := accounts[0]

	processorToken, err := w.aggregator.CreateProcessorToken(ctx, accessToken, account.AccountID)
	if err != nil {
		log.Println("processor token creation failed for user", user.UserID, ":", err)
		return nil, wrap(ErrProcessorTokenFailed, err)
	}

	fundingSourceURL, err := w.transfer.CreateFundingSource(ctx, user.CustomerID, processorToken, account.Name)
	if err != nil {
		log.Println("funding source creation failed for user", user.UserID, ":", err)
		return nil, wrap(ErrFundingSourceFailed, err)
	}

	record := &models.LinkedBankAccount{
		UserID:           user.UserID,
		BankItemID:       itemID,
		AccountID:        account.AccountID,
		AccessToken:      accessToken,
		FundingSourceURL: fundingSourceURL,
		ShareableID:      w.encrypter.EncryptID(account.AccountID),
	}
	stored, err := w.identity.CreateLinkedAccount(ctx, record)
	if err != nil {
		log.Println("linked account persist failed for user", user.UserID, ":", err)
		return nil, wrap(ErrLinkedAccountPersistFailed, err)
	}

	if err := w.cache.Invalidate(user.UserID); err != nil {
		log.Println("dashboard cache invalidation failed for user", user.UserID, ":", err)
	}
	return stored, nil
}

// Banks returns every linked bank account document for a user.
func (w *Workflow) Banks(ctx context.Context, userID string) ([]models.LinkedBankAccount, error) {
	return w.identity.LinkedAccountsByUserID(ctx, userID)
}

// Bank returns one linked bank account document by id.
func (w *Workflow) Bank(ctx context.Context, documentID string) (*models.LinkedBankAccount, error) {
	return w.identity.LinkedAccountByID(ctx, documentID)
}

// recentTransactionLimit caps the dashboard's transaction feed.
const recentTransactionLimit = 10

// Dashboard assembles the home view for a user: all accounts across their
// linked banks, the balance total, and the most recent transactions. The
// assembled payload is cached per user until the next link invalidates it.
func (w *Workflow) Dashboard(ctx context.Context, user *models.UserProfile) (*models.Dashboard, error) {
	if payload, found := w.cache.Get(user.UserID); found {
		var d models.Dashboard
		if err := json.Unmarshal(payload, &d); err == nil {
			return &d, nil
		}
		// Unreadable entry; rebuild below.
		_ = w.cache.Invalidate(user.UserID)
	}

	banks, err := w.identity.LinkedAccountsByUserID(ctx, user.UserID)
	if err != nil {
		return nil, err
	}

	d := &models.Dashboard{
		TotalBanks:         len(banks),
		Accounts:           []models.Account{},
		RecentTransactions: []models.Transaction{},
	}
	for _, bank := range banks {
		accounts, err := w.aggregator.GetAccounts(ctx, bank.AccessToken)
		if err != nil {
			log.Println("accounts fetch failed for bank", bank.BankItemID, ":", err)
			continue
		}
		for _, a := range accounts {
			d.Accounts = append(d.Accounts, a)
			d.TotalCurrentBalance = d.TotalCurrentBalance.Add(a.CurrentBalance)
		}
	}
	if len(banks) > 0 {
		txs, err := w.aggregator.GetTransactions(ctx, banks[0].AccessToken)
		if err != nil {
			log.Println("transactions fetch failed for bank", banks[0].BankItemID, ":", err)
		} else {
			if len(txs) > recentTransactionLimit {
				txs = txs[:recentTransactionLimit]
			}
			now := time.Now()
			for i := range txs {
				txs[i].Status = txs[i].StatusAt(now)
			}
			d.RecentTransactions = txs
		}
	}

	if payload, err := json.Marshal(d); err == nil {
		if err := w.cache.Set(user.UserID, payload); err != nil {
			log.Println("dashboard cache write failed for user", user.UserID, ":", err)
		}
	}
	return d, nil
}

func (w *Workflow) checkpoint(ctx context.Context, cp *Checkpoint) {
	cp.Updated = time.Now()
	if err := w.progress.Save(ctx, cp); err != nil {
		log.Println("could not save onboarding checkpoint for", cp.Email, ":", err)
	}
}

// extractCustomerID pulls the trailing path segment out of a customer URL.
func extractCustomerID(customerURL string) (string, bool) {
	trimmed := strings.TrimRight(customerURL, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 || idx == len(trimmed)-1 {
		return "", false
	}
	id := trimmed[idx+1:]
	if id == "" || strings.Contains(id, ":") {
		return "", false
	}
	return id, true
}

func wrap(kind, cause error) error {
	if cause == nil {
		return kind
	}
	return fmt.Errorf("%w: %v", kind, cause)
}
