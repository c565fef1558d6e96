package model

import (
	"github.com/shopspring/decimal"
)

// DefaultCategory is used when a transaction carries no category of its own.
const DefaultCategory = "Other"

// Transaction is a single ledger entry against one account.
type Transaction struct {
	ID        string
	AccountID string
	Date      string          // "YYYY-MM-DD", or the raw statement text when it could not be parsed
	Merchant  string
	Amount    decimal.Decimal // negative = expense, positive = income
	Category  string
	Note      string
	Hash      string // content hash of the imported statement row; empty for manual entries
}

// Imported reports whether the transaction came from a statement import.
func (t Transaction) Imported() bool {
	return t.Hash != ""
}
