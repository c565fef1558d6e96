package ledger

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/pocketledger/pocketledger/internal/model"
)

// SQLiteStore keeps the ledger in a single SQLite database file.
// Amounts and balances are stored as decimal text.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS accounts (
	seq      INTEGER PRIMARY KEY AUTOINCREMENT,
	id       TEXT NOT NULL UNIQUE,
	name     TEXT NOT NULL,
	currency TEXT NOT NULL,
	balance  TEXT NOT NULL DEFAULT '0'
);
CREATE TABLE IF NOT EXISTS transactions (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	id         TEXT NOT NULL UNIQUE,
	account_id TEXT NOT NULL REFERENCES accounts(id),
	date       TEXT NOT NULL,
	merchant   TEXT NOT NULL,
	amount     TEXT NOT NULL,
	category   TEXT NOT NULL DEFAULT '',
	note       TEXT NOT NULL DEFAULT '',
	hash       TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_transactions_hash ON transactions(hash);
`

// OpenSQLiteStore opens (or creates) the database at path and ensures the schema exists.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One writer at a time; avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Append validates txn, inserts it and adjusts the account balance in one
// SQL transaction.
func (s *SQLiteStore) Append(txn model.Transaction) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback is a no-op after commit

	if err := joinErrors(Validate(txn, txAccounts{tx})); err != nil {
		return err
	}

	var taken int
	err = tx.QueryRow(`SELECT COUNT(*) FROM transactions WHERE id = ?`, txn.ID).Scan(&taken)
	if err != nil {
		return fmt.Errorf("check id: %w", err)
	}
	if taken > 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateID, txn.ID)
	}

	var rawBalance string
	if err := tx.QueryRow(`SELECT balance FROM accounts WHERE id = ?`, txn.AccountID).Scan(&rawBalance); err != nil {
		return fmt.Errorf("read balance: %w", err)
	}
	balance, err := decimal.NewFromString(rawBalance)
	if err != nil {
		return fmt.Errorf("parsing balance %q: %w", rawBalance, err)
	}

	_, err = tx.Exec(`
		INSERT INTO transactions (id, account_id, date, merchant, amount, category, note, hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, txn.ID, txn.AccountID, txn.Date, txn.Merchant, txn.Amount.String(), txn.Category, txn.Note, txn.Hash)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	_, err = tx.Exec(`UPDATE accounts SET balance = ? WHERE id = ?`, balance.Add(txn.Amount).String(), txn.AccountID)
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Delete removes a transaction and reverses its balance change in one SQL
// transaction.
func (s *SQLiteStore) Delete(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback is a no-op after commit

	var accountID, rawAmount string
	err = tx.QueryRow(`SELECT account_id, amount FROM transactions WHERE id = ?`, id).Scan(&accountID, &rawAmount)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("read transaction: %w", err)
	}
	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		return fmt.Errorf("parsing amount %q of %s: %w", rawAmount, id, err)
	}

	var rawBalance string
	if err := tx.QueryRow(`SELECT balance FROM accounts WHERE id = ?`, accountID).Scan(&rawBalance); err != nil {
		return fmt.Errorf("read balance: %w", err)
	}
	balance, err := decimal.NewFromString(rawBalance)
	if err != nil {
		return fmt.Errorf("parsing balance %q: %w", rawBalance, err)
	}

	if _, err := tx.Exec(`DELETE FROM transactions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if _, err := tx.Exec(`UPDATE accounts SET balance = ? WHERE id = ?`, balance.Sub(amount).String(), accountID); err != nil {
		return fmt.Errorf("update balance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// All retrieves every transaction ordered by insertion.
func (s *SQLiteStore) All() ([]model.Transaction, error) {
	rows, err := s.db.Query(`
		SELECT id, account_id, date, merchant, amount, category, note, hash
		FROM transactions
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []model.Transaction
	for rows.Next() {
		var t model.Transaction
		var amount string
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Date, &t.Merchant, &amount, &t.Category, &t.Note, &t.Hash); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("parsing amount %q of %s: %w", amount, t.ID, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// List retrieves all accounts ordered by insertion.
func (s *SQLiteStore) List() ([]model.Account, error) {
	rows, err := s.db.Query(`SELECT id, name, currency, balance FROM accounts ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var out []model.Account
	for rows.Next() {
		var a model.Account
		var balance string
		if err := rows.Scan(&a.ID, &a.Name, &a.Currency, &balance); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		a.Balance, err = decimal.NewFromString(balance)
		if err != nil {
			return nil, fmt.Errorf("parsing balance %q of %s: %w", balance, a.ID, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// AddAccount inserts a new account.
func (s *SQLiteStore) AddAccount(acct model.Account) error {
	if acct.ID == "" {
		return fmt.Errorf("account ID must not be empty")
	}
	_, err := s.db.Exec(`INSERT INTO accounts (id, name, currency, balance) VALUES (?, ?, ?, ?)`,
		acct.ID, acct.Name, acct.Currency, acct.Balance.String())
	if err != nil {
		return fmt.Errorf("insert account %q: %w", acct.ID, err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// txAccounts checks account existence inside an open SQL transaction.
type txAccounts struct {
	tx *sql.Tx
}

func (a txAccounts) Exists(id string) bool {
	var one int
	err := a.tx.QueryRow(`SELECT 1 FROM accounts WHERE id = ?`, id).Scan(&one)
	return err == nil
}
