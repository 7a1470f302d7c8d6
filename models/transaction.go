package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction statuses shown on the dashboard. A transaction still inside
// the aggregator's settlement window is Processing; everything older is
// Success.
const (
	TransactionProcessing = "Processing"
	TransactionSuccess    = "Success"

	settlementWindow = 48 * time.Hour
)

// Transaction is a display-only row sourced from the aggregator. Nothing in
// this system mutates or stores it.
type Transaction struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount"`
	Date     time.Time       `json:"date"`
	Type     string          `json:"type"` // debit or credit
	Channel  string          `json:"channel"`
	Category string          `json:"category"`
	Status   string          `json:"status,omitempty"`
}

// StatusAt reports whether the transaction has cleared the settlement
// window at the given time. Dashboard assembly stamps the result into
// Status.
func (t Transaction) StatusAt(now time.Time) string {
	if now.Sub(t.Date) < settlementWindow {
		return TransactionProcessing
	}
	return TransactionSuccess
}

// Dashboard is the assembled home view: every linked account, the balance
// total across them, and the most recent transactions.
type Dashboard struct {
	TotalBanks          int             `json:"totalBanks"`
	TotalCurrentBalance decimal.Decimal `json:"totalCurrentBalance"`
	Accounts            []Account       `json:"accounts"`
	RecentTransactions  []Transaction   `json:"recentTransactions"`
}
