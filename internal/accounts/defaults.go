package accounts

import (
	"github.com/shopspring/decimal"

	"github.com/pocketledger/pocketledger/internal/model"
)

// DefaultAccounts returns the accounts a fresh ledger starts with.
func DefaultAccounts(currency string) []model.Account {
	if currency == "" {
		currency = "USD"
	}
	return []model.Account{
		{ID: "checking", Name: "Main Checking", Currency: currency, Balance: decimal.Zero},
		{ID: "savings", Name: "Savings", Currency: currency, Balance: decimal.Zero},
	}
}
