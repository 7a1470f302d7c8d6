package models

import "github.com/shopspring/decimal"

// LinkedBankAccount is the document persisted after a successful link-token
// exchange and funding-source creation. A user may hold several of these,
// one per linked institution.
type LinkedBankAccount struct {
	DocumentID       string `json:"documentId" bson:"documentId"`
	UserID           string `json:"userId" bson:"userId"`
	BankItemID       string `json:"bankId" bson:"bankId"`
	AccountID        string `json:"accountId" bson:"accountId"`
	AccessToken      string `json:"accessToken,omitempty" bson:"accessToken"`
	FundingSourceURL string `json:"fundingSourceUrl" bson:"fundingSourceUrl"`
	// ShareableID is a deterministic encryption of AccountID, safe to hand
	// out as an external reference.
	ShareableID string `json:"shareableId" bson:"shareableId"`
}

// Scrub blanks the durable aggregator token before the record leaves the
// server.
func (b *LinkedBankAccount) Scrub() {
	b.AccessToken = ""
}

// Account is the aggregator's view of one bank account under a linked item.
// Read-only; never stored.
type Account struct {
	AccountID        string          `json:"account_id"`
	Name             string          `json:"name"`
	OfficialName     string          `json:"official_name,omitempty"`
	Mask             string          `json:"mask,omitempty"`
	Type             string          `json:"type"`
	Subtype          string          `json:"subtype,omitempty"`
	CurrentBalance   decimal.Decimal `json:"current_balance"`
	AvailableBalance decimal.Decimal `json:"available_balance"`
}
