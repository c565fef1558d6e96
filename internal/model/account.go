package model

import "github.com/shopspring/decimal"

// Account is a ledger account. Balance is kept in the account's own currency.
type Account struct {
	ID       string
	Name     string
	Currency string // ISO 4217, e.g. "USD"
	Balance  decimal.Decimal
}
