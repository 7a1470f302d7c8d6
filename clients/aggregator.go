package clients

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"horizon-server/models"
)

// Link tokens are always requested for the auth product, US institutions,
// English flow.
var (
	linkProducts     = []string{"auth"}
	linkCountryCodes = []string{"US"}
)

const linkLanguage = "en"

// AggregatorConfig carries the credential pair the aggregator expects inside
// every request body.
type AggregatorConfig struct {
	Endpoint string
	ClientID string
	Secret   string
}

// Aggregator is the REST shim for the bank data aggregator: link tokens,
// public-token exchange, account metadata, processor tokens, and the
// transaction feed backing the dashboard.
type Aggregator struct {
	hc  *http.Client
	cfg AggregatorConfig
}

// NewAggregator takes an initialized HTTP client and the API credential.
func NewAggregator(hc *http.Client, cfg AggregatorConfig) *Aggregator {
	return &Aggregator{hc: hc, cfg: cfg}
}

func (c *Aggregator) post(ctx context.Context, path string, body map[string]interface{}, out interface{}) error {
	body["client_id"] = c.cfg.ClientID
	body["secret"] = c.cfg.Secret
	resp, err := doJSON(ctx, c.hc, http.MethodPost, c.cfg.Endpoint+path, nil, body)
	if err != nil {
		return err
	}
	if !ok(resp.StatusCode) {
		defer resp.Body.Close()
		return serviceError("aggregator", resp)
	}
	return decodeJSON(resp, out)
}

// CreateLinkToken mints a short-lived token that the browser-side link
// widget needs to start the linking flow for this user.
func (c *Aggregator) CreateLinkToken(ctx context.Context, userID, clientName string) (string, error) {
	var out struct {
		LinkToken string `json:"link_token"`
	}
	err := c.post(ctx, "/link/token/create", map[string]interface{}{
		"user":          map[string]string{"client_user_id": userID},
		"client_name":   clientName,
		"products":      linkProducts,
		"language":      linkLanguage,
		"country_codes": linkCountryCodes,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.LinkToken, nil
}

// ExchangePublicToken trades the widget's temporary public token for a
// durable access token and the item id it belongs to.
func (c *Aggregator) ExchangePublicToken(ctx context.Context, publicToken string) (accessToken, itemID string, err error) {
	var out struct {
		AccessToken string `json:"access_token"`
		ItemID      string `json:"item_id"`
	}
	err = c.post(ctx, "/item/public_token/exchange", map[string]interface{}{
		"public_token": publicToken,
	}, &out)
	if err != nil {
		return "", "", err
	}
	return out.AccessToken, out.ItemID, nil
}

type wireAccount struct {
	AccountID    string `json:"account_id"`
	Name         string `json:"name"`
	OfficialName string `json:"official_name"`
	Mask         string `json:"mask"`
	Type         string `json:"type"`
	Subtype      string `json:"subtype"`
	Balances     struct {
		Current   decimal.Decimal `json:"current"`
		Available decimal.Decimal `json:"available"`
	} `json:"balances"`
}

func (w wireAccount) account() models.Account {
	return models.Account{
		AccountID:        w.AccountID,
		Name:             w.Name,
		OfficialName:     w.OfficialName,
		Mask:             w.Mask,
		Type:             w.Type,
		Subtype:          w.Subtype,
		CurrentBalance:   w.Balances.Current,
		AvailableBalance: w.Balances.Available,
	}
}

// GetAccounts returns the metadata for every account under an access token.
func (c *Aggregator) GetAccounts(ctx context.Context, accessToken string) ([]models.Account, error) {
	var out struct {
		Accounts []wireAccount `json:"accounts"`
	}
	err := c.post(ctx, "/accounts/get", map[string]interface{}{
		"access_token": accessToken,
	}, &out)
	if err != nil {
		return nil, err
	}
	accounts := make([]models.Account, 0, len(out.Accounts))
	for _, w := range out.Accounts {
		accounts = append(accounts, w.account())
	}
	return accounts, nil
}

// CreateProcessorToken mints a token from an access token and account id
// that is only usable by the funds transfer partner.
func (c *Aggregator) CreateProcessorToken(ctx context.Context, accessToken, accountID string) (string, error) {
	var out struct {
		ProcessorToken string `json:"processor_token"`
	}
	err := c.post(ctx, "/processor/token/create", map[string]interface{}{
		"access_token": accessToken,
		"account_id":   accountID,
		"processor":    "dwolla",
	}, &out)
	if err != nil {
		return "", err
	}
	return out.ProcessorToken, nil
}

type wireTransaction struct {
	TransactionID  string          `json:"transaction_id"`
	Name           string          `json:"name"`
	Amount         decimal.Decimal `json:"amount"`
	Date           string          `json:"date"`
	PaymentChannel string          `json:"payment_channel"`
	Category       []string        `json:"category"`
}

// GetTransactions returns the recent transaction feed for an access token,
// newest first. The aggregator reports outflows as positive amounts; those
// become debits, inflows become credits.
func (c *Aggregator) GetTransactions(ctx context.Context, accessToken string) ([]models.Transaction, error) {
	var out struct {
		Transactions []wireTransaction `json:"transactions"`
	}
	err := c.post(ctx, "/transactions/get", map[string]interface{}{
		"access_token": accessToken,
	}, &out)
	if err != nil {
		return nil, err
	}
	txs := make([]models.Transaction, 0, len(out.Transactions))
	for _, w := range out.Transactions {
		t := models.Transaction{
			ID:      w.TransactionID,
			Name:    w.Name,
			Amount:  w.Amount,
			Type:    "debit",
			Channel: w.PaymentChannel,
		}
		if w.Amount.IsNegative() {
			t.Type = "credit"
			t.Amount = w.Amount.Abs()
		}
		if len(w.Category) > 0 {
			t.Category = w.Category[0]
		}
		if d, err := time.Parse("2006-01-02", w.Date); err == nil {
			t.Date = d
		}
		txs = append(txs, t)
	}
	return txs, nil
}
