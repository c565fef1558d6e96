package accounts

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"github.com/pocketledger/pocketledger/internal/model"
)

// FileName is the accounts file inside a CSV ledger directory.
const FileName = "accounts.csv"

// Service provides in-memory lookup over a list of accounts.
// It is not safe for concurrent use; callers guard it.
type Service struct {
	accounts []model.Account
	byID     map[string]int
}

// NewService creates a Service from a slice of accounts. Entries with an
// empty or repeated ID are skipped; Load reports them instead.
func NewService(accounts []model.Account) *Service {
	s := &Service{byID: make(map[string]int, len(accounts))}
	for _, a := range accounts {
		_ = s.Add(a)
	}
	return s
}

// Load reads accounts.csv from dir. A missing file yields an empty Service.
func Load(dir string) (*Service, error) {
	path := filepath.Join(dir, FileName)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return NewService(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening accounts: %w", err)
	}
	defer f.Close()

	accts, err := ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("reading accounts: %w", err)
	}

	svc := NewService(nil)
	for i, a := range accts {
		if err := svc.Add(a); err != nil {
			return nil, fmt.Errorf("%s row %d: %w", FileName, i+2, err)
		}
	}
	return svc, nil
}

// List returns a copy of all accounts in insertion order.
func (s *Service) List() []model.Account {
	out := make([]model.Account, len(s.accounts))
	copy(out, s.accounts)
	return out
}

// Clone returns an independent copy of the Service.
func (s *Service) Clone() *Service {
	c := &Service{
		accounts: s.List(),
		byID:     make(map[string]int, len(s.byID)),
	}
	for id, i := range s.byID {
		c.byID[id] = i
	}
	return c
}

// Get returns an account by ID.
func (s *Service) Get(id string) (model.Account, bool) {
	i, ok := s.byID[id]
	if !ok {
		return model.Account{}, false
	}
	return s.accounts[i], true
}

// Exists reports whether an account ID exists.
func (s *Service) Exists(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// Add appends a new account. Fails on an empty or duplicate ID.
func (s *Service) Add(acct model.Account) error {
	if acct.ID == "" {
		return fmt.Errorf("account ID must not be empty")
	}
	if _, ok := s.byID[acct.ID]; ok {
		return fmt.Errorf("duplicate account %q", acct.ID)
	}
	s.byID[acct.ID] = len(s.accounts)
	s.accounts = append(s.accounts, acct)
	return nil
}

// Adjust adds delta to an account's balance and returns the new balance.
func (s *Service) Adjust(id string, delta decimal.Decimal) (decimal.Decimal, error) {
	i, ok := s.byID[id]
	if !ok {
		return decimal.Zero, fmt.Errorf("unknown account %q", id)
	}
	s.accounts[i].Balance = s.accounts[i].Balance.Add(delta)
	return s.accounts[i].Balance, nil
}

// Save writes accounts.csv into dir, replacing it atomically.
func (s *Service) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating ledger dir: %w", err)
	}

	f, err := os.CreateTemp(dir, FileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating accounts file: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp) // no-op after a successful rename

	if err := WriteAccounts(f, s.accounts); err != nil {
		f.Close()
		return fmt.Errorf("writing accounts: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing accounts file: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(dir, FileName)); err != nil {
		return fmt.Errorf("replacing accounts file: %w", err)
	}
	return nil
}
