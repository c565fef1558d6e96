package accounts

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocketledger/pocketledger/internal/model"
)

func TestRoundTrip(t *testing.T) {
	accounts := []model.Account{
		{ID: "checking", Name: "Main Checking", Currency: "USD", Balance: decimal.RequireFromString("5240.50")},
		{ID: "dubai", Name: "Emirates NBD, Current", Currency: "AED", Balance: decimal.RequireFromString("-12.3")},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteAccounts(&buf, accounts))

	got, err := ReadAccounts(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "checking", got[0].ID)
	assert.Equal(t, "Main Checking", got[0].Name)
	assert.Equal(t, "USD", got[0].Currency)
	assert.True(t, got[0].Balance.Equal(decimal.RequireFromString("5240.50")))

	assert.Equal(t, "Emirates NBD, Current", got[1].Name)
	assert.Equal(t, "-12.30", got[1].Balance.StringFixed(2))
}

func TestReadAccounts_Empty(t *testing.T) {
	got, err := ReadAccounts(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReadAccounts_HeaderOnly(t *testing.T) {
	got, err := ReadAccounts(strings.NewReader("account_id,name,currency,balance\n"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUnmarshalAccount_Errors(t *testing.T) {
	tests := []struct {
		name   string
		record []string
		want   string
	}{
		{"short", []string{"a", "b"}, "expected 4 fields"},
		{"empty id", []string{"", "b", "USD", "0"}, "empty account_id"},
		{"bad balance", []string{"a", "b", "USD", "lots"}, "parsing balance"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalAccount(tt.record)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestUnmarshalAccount_EmptyBalance(t *testing.T) {
	acct, err := UnmarshalAccount([]string{"a", "Cash", "EUR", ""})
	require.NoError(t, err)
	assert.True(t, acct.Balance.IsZero())
}

func TestDefaultAccounts(t *testing.T) {
	accts := DefaultAccounts("AED")
	require.Len(t, accts, 2)
	for _, a := range accts {
		assert.NotEmpty(t, a.ID)
		assert.NotEmpty(t, a.Name)
		assert.Equal(t, "AED", a.Currency)
		assert.True(t, a.Balance.IsZero())
	}

	assert.Equal(t, "USD", DefaultAccounts("")[0].Currency)
}
