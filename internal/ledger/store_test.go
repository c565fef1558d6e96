package ledger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocketledger/pocketledger/internal/accounts"
	"github.com/pocketledger/pocketledger/internal/config"
	"github.com/pocketledger/pocketledger/internal/model"
)

// backends returns a fresh, seeded store per backend.
func backends(t *testing.T) map[string]func() Store {
	t.Helper()
	seed := func(s Store) Store {
		for _, a := range accounts.DefaultAccounts("USD") {
			require.NoError(t, s.AddAccount(a))
		}
		return s
	}
	return map[string]func() Store{
		"memory": func() Store {
			return NewMemoryStore(accounts.DefaultAccounts("USD"))
		},
		"csv": func() Store {
			s, err := OpenFileStore(filepath.Join(t.TempDir(), "ledger"))
			require.NoError(t, err)
			return seed(s)
		},
		"sqlite": func() Store {
			s, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "ledger.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return seed(s)
		},
	}
}

func txn(id, account, amount string) model.Transaction {
	return model.Transaction{
		ID:        id,
		AccountID: account,
		Date:      "2026-02-01",
		Merchant:  "Coffee Shop",
		Amount:    decimal.RequireFromString(amount),
		Category:  model.DefaultCategory,
	}
}

func balanceOf(t *testing.T, s Store, id string) decimal.Decimal {
	t.Helper()
	accts, err := s.List()
	require.NoError(t, err)
	for _, a := range accts {
		if a.ID == id {
			return a.Balance
		}
	}
	t.Fatalf("account %s not found", id)
	return decimal.Zero
}

func TestStore_AppendAdjustsBalance(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open()
			require.NoError(t, s.Append(txn("t1", "checking", "-4.50")))
			require.NoError(t, s.Append(txn("t2", "checking", "1000")))

			assert.Equal(t, "995.50", balanceOf(t, s, "checking").StringFixed(2))
			assert.True(t, balanceOf(t, s, "savings").IsZero())
		})
	}
}

func TestStore_AllKeepsOrderAndFields(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open()
			a := txn("t1", "checking", "-4.5")
			a.Hash = "abc123"
			a.Note = "morning, latte"
			b := txn("t2", "savings", "12.50")
			b.Date = "not-a-date"

			require.NoError(t, s.Append(a))
			require.NoError(t, s.Append(b))

			all, err := s.All()
			require.NoError(t, err)
			require.Len(t, all, 2)

			assert.Equal(t, "t1", all[0].ID)
			assert.Equal(t, "abc123", all[0].Hash)
			assert.Equal(t, "morning, latte", all[0].Note)
			assert.True(t, all[0].Amount.Equal(decimal.RequireFromString("-4.5")))

			assert.Equal(t, "t2", all[1].ID)
			assert.Equal(t, "not-a-date", all[1].Date)
			assert.Empty(t, all[1].Hash)
		})
	}
}

func TestStore_RejectsUnknownAccount(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open()
			err := s.Append(txn("t1", "nope", "-1"))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidTransaction)

			all, err := s.All()
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestStore_RejectsDuplicateID(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open()
			require.NoError(t, s.Append(txn("t1", "checking", "-1")))

			err := s.Append(txn("t1", "checking", "-2"))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDuplicateID)

			assert.Equal(t, "-1.00", balanceOf(t, s, "checking").StringFixed(2))
		})
	}
}

func TestStore_DuplicateAccount(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open()
			err := s.AddAccount(model.Account{ID: "checking", Name: "Again", Currency: "USD"})
			assert.Error(t, err)
		})
	}
}

func TestStore_DeleteReversesBalance(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open()
			require.NoError(t, s.Append(txn("t1", "checking", "-4.50")))
			require.NoError(t, s.Append(txn("t2", "checking", "1000")))
			require.NoError(t, s.Append(txn("t3", "checking", "-20")))

			require.NoError(t, s.Delete("t2"))

			all, err := s.All()
			require.NoError(t, err)
			require.Len(t, all, 2)
			assert.Equal(t, "t1", all[0].ID)
			assert.Equal(t, "t3", all[1].ID)
			assert.Equal(t, "-24.50", balanceOf(t, s, "checking").StringFixed(2))

			err = s.Delete("t2")
			assert.ErrorIs(t, err, ErrNotFound)

			// The ID is free again.
			require.NoError(t, s.Append(txn("t2", "checking", "1")))
		})
	}
}

func TestFileStore_FailedAppendLeavesNoTrace(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ledger")
	s, err := OpenFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.AddAccount(model.Account{ID: "cash", Name: "Cash", Currency: "USD"}))
	require.NoError(t, s.Append(txn("t1", "cash", "-5")))

	// A directory in place of transactions.csv makes the row write fail.
	require.NoError(t, os.Rename(filepath.Join(dir, TransactionsFile), filepath.Join(dir, "saved.csv")))
	require.NoError(t, os.Mkdir(filepath.Join(dir, TransactionsFile), 0o755))

	err = s.Append(txn("t2", "cash", "-100"))
	require.Error(t, err)
	assert.Equal(t, "-5.00", balanceOf(t, s, "cash").StringFixed(2))

	require.NoError(t, os.Remove(filepath.Join(dir, TransactionsFile)))
	require.NoError(t, os.Rename(filepath.Join(dir, "saved.csv"), filepath.Join(dir, TransactionsFile)))

	// The balance on disk was restored and the ID was never taken.
	reopened, err := OpenFileStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "-5.00", balanceOf(t, reopened, "cash").StringFixed(2))
	all, err := reopened.All()
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, s.Append(txn("t2", "cash", "-100")))
	assert.Equal(t, "-105.00", balanceOf(t, s, "cash").StringFixed(2))
}

func TestFileStore_DuplicateIDAfterReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ledger")
	s, err := OpenFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.AddAccount(model.Account{ID: "cash", Name: "Cash", Currency: "USD"}))
	require.NoError(t, s.Append(txn("t1", "cash", "-5")))

	reopened, err := OpenFileStore(dir)
	require.NoError(t, err)
	assert.ErrorIs(t, reopened.Append(txn("t1", "cash", "-5")), ErrDuplicateID)
}

func TestFileStore_Reopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "ledger")
	s, err := OpenFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.AddAccount(model.Account{ID: "cash", Name: "Cash", Currency: "EUR"}))
	require.NoError(t, s.Append(txn("t1", "cash", "-7.25")))

	s2, err := OpenFileStore(dir)
	require.NoError(t, err)
	all, err := s2.All()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "-7.25", balanceOf(t, s2, "cash").StringFixed(2))
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	s, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.AddAccount(model.Account{ID: "cash", Name: "Cash", Currency: "EUR"}))
	require.NoError(t, s.Append(txn("t1", "cash", "-7.25")))
	require.NoError(t, s.Close())

	s2, err := OpenSQLiteStore(path)
	require.NoError(t, err)
	defer s2.Close()
	all, err := s2.All()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "-7.25", balanceOf(t, s2, "cash").StringFixed(2))
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(config.BackendCSV, filepath.Join(dir, "csv"))
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	s, err = Open(config.BackendSQLite, filepath.Join(dir, "ledger.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open("postgres", dir)
	assert.Error(t, err)
}
