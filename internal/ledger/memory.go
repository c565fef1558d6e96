package ledger

import (
	"fmt"
	"sync"

	"github.com/pocketledger/pocketledger/internal/accounts"
	"github.com/pocketledger/pocketledger/internal/model"
)

// MemoryStore keeps the ledger in memory.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts *accounts.Service
	txns     []model.Transaction
	ids      map[string]bool
}

// NewMemoryStore creates a MemoryStore seeded with accts.
func NewMemoryStore(accts []model.Account) *MemoryStore {
	return &MemoryStore{
		accounts: accounts.NewService(accts),
		ids:      make(map[string]bool),
	}
}

// Append validates txn, stores it and adjusts the account balance.
func (s *MemoryStore) Append(txn model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := joinErrors(Validate(txn, s.accounts)); err != nil {
		return err
	}
	if s.ids[txn.ID] {
		return fmt.Errorf("%w: %s", ErrDuplicateID, txn.ID)
	}
	if _, err := s.accounts.Adjust(txn.AccountID, txn.Amount); err != nil {
		return err
	}
	s.ids[txn.ID] = true
	s.txns = append(s.txns, txn)
	return nil
}

// Delete removes a transaction and reverses its balance change.
func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.txns {
		if t.ID != id {
			continue
		}
		if _, err := s.accounts.Adjust(t.AccountID, t.Amount.Neg()); err != nil {
			return err
		}
		s.txns = append(s.txns[:i], s.txns[i+1:]...)
		delete(s.ids, id)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// All returns a copy of every stored transaction in append order.
func (s *MemoryStore) All() ([]model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Transaction, len(s.txns))
	copy(out, s.txns)
	return out, nil
}

// List returns all accounts.
func (s *MemoryStore) List() ([]model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accounts.List(), nil
}

// AddAccount registers a new account.
func (s *MemoryStore) AddAccount(acct model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts.Add(acct)
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
