package ledger

import (
	"errors"
	"fmt"

	"github.com/pocketledger/pocketledger/internal/config"
	"github.com/pocketledger/pocketledger/internal/model"
)

var (
	// ErrInvalidTransaction is returned by Append when validation fails.
	ErrInvalidTransaction = errors.New("invalid transaction")
	// ErrDuplicateID is returned by Append when the transaction ID is taken.
	ErrDuplicateID = errors.New("duplicate transaction id")
	// ErrNotFound is returned by Delete for an unknown transaction ID.
	ErrNotFound = errors.New("transaction not found")
)

// Store persists accounts and transactions. Append adjusts the owning
// account's balance by the transaction amount in the same step, and Delete
// reverses it.
type Store interface {
	Append(txn model.Transaction) error
	Delete(id string) error
	All() ([]model.Transaction, error)
	List() ([]model.Account, error)
	AddAccount(acct model.Account) error
	Close() error
}

// Open opens the store for a backend at path.
func Open(backend, path string) (Store, error) {
	switch backend {
	case config.BackendCSV:
		return OpenFileStore(path)
	case config.BackendSQLite:
		return OpenSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown ledger backend %q", backend)
	}
}
