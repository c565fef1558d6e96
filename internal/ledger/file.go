package ledger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/pocketledger/pocketledger/internal/accounts"
	"github.com/pocketledger/pocketledger/internal/model"
)

// TransactionsFile is the transactions file inside a CSV ledger directory.
const TransactionsFile = "transactions.csv"

// FileStore keeps the ledger as accounts.csv and transactions.csv in a
// directory. Transactions are appended; accounts.csv is rewritten on every
// balance change.
//
// A balance change is written before the transaction row and rolled back
// if the row cannot be written, so a refused transaction never stays in
// the ledger.
type FileStore struct {
	mu       sync.Mutex
	dir      string
	accounts *accounts.Service
	ids      map[string]bool
}

// OpenFileStore opens (or prepares) a CSV ledger in dir.
func OpenFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger dir: %w", err)
	}
	accts, err := accounts.Load(dir)
	if err != nil {
		return nil, err
	}

	s := &FileStore{dir: dir, accounts: accts, ids: make(map[string]bool)}
	txns, err := s.readAll()
	if err != nil {
		return nil, err
	}
	for _, t := range txns {
		s.ids[t.ID] = true
	}
	return s, nil
}

// Append validates txn, updates the account balance in accounts.csv and
// appends txn to transactions.csv.
func (s *FileStore) Append(txn model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := joinErrors(Validate(txn, s.accounts)); err != nil {
		return err
	}
	if s.ids[txn.ID] {
		return fmt.Errorf("%w: %s", ErrDuplicateID, txn.ID)
	}

	next, err := s.saveAdjusted(txn.AccountID, txn.Amount)
	if err != nil {
		return err
	}
	if err := s.appendRow(txn); err != nil {
		return s.rollback(err)
	}

	s.accounts = next
	s.ids[txn.ID] = true
	return nil
}

// Delete removes a transaction and reverses its effect on the balance.
func (s *FileStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ids[id] {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	txns, err := s.readAll()
	if err != nil {
		return err
	}

	kept := make([]model.Transaction, 0, len(txns))
	var removed *model.Transaction
	for i := range txns {
		if txns[i].ID == id && removed == nil {
			removed = &txns[i]
			continue
		}
		kept = append(kept, txns[i])
	}
	if removed == nil {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	next, err := s.saveAdjusted(removed.AccountID, removed.Amount.Neg())
	if err != nil {
		return err
	}
	if err := s.rewrite(kept); err != nil {
		return s.rollback(err)
	}

	s.accounts = next
	delete(s.ids, id)
	return nil
}

// All reads every transaction from transactions.csv.
func (s *FileStore) All() ([]model.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAll()
}

// List returns all accounts.
func (s *FileStore) List() ([]model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts.List(), nil
}

// AddAccount registers an account and saves accounts.csv.
func (s *FileStore) AddAccount(acct model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.accounts.Clone()
	if err := next.Add(acct); err != nil {
		return err
	}
	if err := next.Save(s.dir); err != nil {
		return err
	}
	s.accounts = next
	return nil
}

// Close is a no-op; every write is flushed when it happens.
func (s *FileStore) Close() error { return nil }

// saveAdjusted writes accounts.csv with delta applied to accountID and
// returns the adjusted accounts. s.accounts is left untouched.
func (s *FileStore) saveAdjusted(accountID string, delta decimal.Decimal) (*accounts.Service, error) {
	next := s.accounts.Clone()
	if _, err := next.Adjust(accountID, delta); err != nil {
		return nil, err
	}
	if err := next.Save(s.dir); err != nil {
		return nil, fmt.Errorf("saving balance: %w", err)
	}
	return next, nil
}

// rollback restores accounts.csv from s.accounts after a failed write.
func (s *FileStore) rollback(cause error) error {
	if err := s.accounts.Save(s.dir); err != nil {
		return fmt.Errorf("%w (restoring balance: %v)", cause, err)
	}
	return cause
}

func (s *FileStore) appendRow(txn model.Transaction) error {
	path := s.transactionsPath()
	isNew := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		isNew = true
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening transactions: %w", err)
	}
	if isNew {
		err = WriteTransactions(f, []model.Transaction{txn})
	} else {
		err = AppendTransactions(f, []model.Transaction{txn})
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("appending transaction: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing transactions: %w", err)
	}
	return nil
}

// rewrite replaces transactions.csv with txns via a temp file and rename.
func (s *FileStore) rewrite(txns []model.Transaction) error {
	f, err := os.CreateTemp(s.dir, TransactionsFile+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating transactions file: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp) // no-op after a successful rename

	if err := WriteTransactions(f, txns); err != nil {
		f.Close()
		return fmt.Errorf("writing transactions: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing transactions file: %w", err)
	}
	if err := os.Rename(tmp, s.transactionsPath()); err != nil {
		return fmt.Errorf("replacing transactions file: %w", err)
	}
	return nil
}

func (s *FileStore) readAll() ([]model.Transaction, error) {
	path := s.transactionsPath()
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening transactions %s: %w", path, err)
	}
	defer f.Close()

	txns, err := ReadTransactions(f)
	if err != nil {
		return nil, fmt.Errorf("reading transactions %s: %w", path, err)
	}
	return txns, nil
}

func (s *FileStore) transactionsPath() string {
	return filepath.Join(s.dir, TransactionsFile)
}
