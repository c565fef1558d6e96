package ledger

import (
	"fmt"
	"strings"

	"github.com/pocketledger/pocketledger/internal/model"
)

// ValidationError describes a single rule a transaction breaks.
type ValidationError struct {
	TxnID       string
	Field       string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s [%s]: %s", e.Field, e.TxnID, e.Description)
}

// AccountChecker tests whether an account ID exists.
type AccountChecker interface {
	Exists(id string) bool
}

// Validate checks a transaction before it is appended.
func Validate(txn model.Transaction, accounts AccountChecker) []ValidationError {
	var errs []ValidationError

	if txn.ID == "" {
		errs = append(errs, ValidationError{Field: "id", TxnID: txn.ID, Description: "must not be empty"})
	}
	if !accounts.Exists(txn.AccountID) {
		errs = append(errs, ValidationError{
			Field:       "account_id",
			TxnID:       txn.ID,
			Description: fmt.Sprintf("unknown account %q", txn.AccountID),
		})
	}
	if strings.TrimSpace(txn.Merchant) == "" {
		errs = append(errs, ValidationError{Field: "merchant", TxnID: txn.ID, Description: "must not be empty"})
	}

	return errs
}

// joinErrors folds validation errors into a single error, or nil.
func joinErrors(verrs []ValidationError) error {
	if len(verrs) == 0 {
		return nil
	}
	msgs := make([]string, len(verrs))
	for i, ve := range verrs {
		msgs[i] = ve.Error()
	}
	return fmt.Errorf("%w: %s", ErrInvalidTransaction, strings.Join(msgs, "; "))
}
