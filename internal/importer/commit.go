package importer

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/pocketledger/pocketledger/internal/id"
	"github.com/pocketledger/pocketledger/internal/model"
)

// RowError records a row the store refused.
type RowError struct {
	Row int // 0-based data row index
	Err error
}

func (e RowError) Error() string {
	// +2: 1-based, after the header line.
	return fmt.Sprintf("line %d: %v", e.Row+2, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// CommitResult counts what a commit did.
type CommitResult struct {
	Imported int
	Skipped  int // duplicates found at commit time
	Failed   []RowError
}

// CommitRequest is everything a commit needs from a session.
type CommitRequest struct {
	AccountID string
	Rows      []RawRow
	Mapping   ColumnMapping
	Preview   *Preview
}

// Committer appends previewed rows to the store.
type Committer struct {
	store  TransactionStore
	ids    id.Generator
	logger *log.Logger
}

// NewCommitter creates a Committer.
func NewCommitter(store TransactionStore, ids id.Generator, logger *log.Logger) *Committer {
	return &Committer{store: store, ids: ids, logger: logger}
}

// Commit appends every row whose hash is not in the store right now. The
// hash set is read fresh, since the store may have changed after the
// preview. Rows are appended independently: a refused row is recorded in
// Failed and the rest still go in. The error is non-nil only when nothing
// could be attempted.
func (c *Committer) Commit(req CommitRequest) (*CommitResult, error) {
	n, err := NewNormalizer(req.Mapping)
	if err != nil {
		return nil, err
	}
	existing, err := ExistingHashes(c.store)
	if err != nil {
		return nil, err
	}
	catCol, hasCat := req.Mapping.First(RoleCategory)

	res := &CommitResult{}
	for i, row := range req.Rows {
		hash := HashRow(row)
		if existing.Has(hash) {
			c.logger.Debug("skipping duplicate row", "line", i+2)
			res.Skipped++
			continue
		}

		cand, ok := req.Preview.CandidateAt(i)
		if !ok {
			// Duplicate at preview time but gone from the store since.
			cand = n.Normalize(row)
		}

		category := model.DefaultCategory
		if hasCat && row.Field(catCol) != "" {
			category = row.Field(catCol)
		}

		txn := model.Transaction{
			ID:        c.ids.NewID(),
			AccountID: req.AccountID,
			Date:      cand.Date,
			Merchant:  cand.Merchant,
			Amount:    cand.Amount,
			Category:  category,
			Hash:      hash,
		}
		if err := c.store.Append(txn); err != nil {
			c.logger.Warn("row not imported", "line", i+2, "err", err)
			res.Failed = append(res.Failed, RowError{Row: i, Err: err})
			continue
		}
		res.Imported++
	}

	c.logger.Info("import committed",
		"account", req.AccountID,
		"imported", res.Imported,
		"skipped", res.Skipped,
		"failed", len(res.Failed))
	return res, nil
}
