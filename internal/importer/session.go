package importer

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/pocketledger/pocketledger/internal/id"
)

var (
	// ErrWrongStep is returned when an operation is invoked from a step that
	// does not allow it.
	ErrWrongStep = errors.New("operation not allowed in this step")
	// ErrUnknownAccount is returned when the target account is not in the directory.
	ErrUnknownAccount = errors.New("unknown account")
	// ErrColumnOutOfRange is returned for a column the header does not have.
	ErrColumnOutOfRange = errors.New("column out of range")
)

// Step is where a Session is in the import flow.
type Step int

const (
	StepUpload Step = iota
	StepMap
	StepPreview
	StepDone
)

func (s Step) String() string {
	switch s {
	case StepUpload:
		return "upload"
	case StepMap:
		return "map"
	case StepPreview:
		return "preview"
	case StepDone:
		return "done"
	default:
		return fmt.Sprintf("Step(%d)", int(s))
	}
}

// Session walks one statement file through upload → map → preview → done.
// A Session is used from a single goroutine.
type Session struct {
	store     TransactionStore
	accounts  AccountDirectory
	committer *Committer
	logger    *log.Logger

	step      Step
	accountID string
	header    []string
	rows      []RawRow
	mapping   ColumnMapping
	preview   *Preview
	result    *CommitResult
}

// NewSession creates a Session targeting the first account in accounts.
func NewSession(store TransactionStore, accounts AccountDirectory, ids id.Generator, logger *log.Logger) (*Session, error) {
	accts, err := accounts.List()
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	s := &Session{
		store:     store,
		accounts:  accounts,
		committer: NewCommitter(store, ids, logger),
		logger:    logger,
	}
	if len(accts) > 0 {
		s.accountID = accts[0].ID
	}
	s.Reset()
	return s, nil
}

// Step returns the current step.
func (s *Session) Step() Step { return s.step }

// AccountID returns the target account.
func (s *Session) AccountID() string { return s.accountID }

// Header returns the statement header.
func (s *Session) Header() []string { return s.header }

// Rows returns the data rows (header excluded).
func (s *Session) Rows() []RawRow { return s.rows }

// Mapping returns a copy of the current column mapping.
func (s *Session) Mapping() ColumnMapping { return s.mapping.Clone() }

// LastPreview returns the preview built on entering StepPreview, or nil.
func (s *Session) LastPreview() *Preview { return s.preview }

// Result returns the commit result once in StepDone, or nil.
func (s *Session) Result() *CommitResult { return s.result }

// SelectAccount sets the account imported rows are booked to.
func (s *Session) SelectAccount(accountID string) error {
	if s.step == StepDone {
		return fmt.Errorf("%w: select account in %s", ErrWrongStep, s.step)
	}
	accts, err := s.accounts.List()
	if err != nil {
		return fmt.Errorf("listing accounts: %w", err)
	}
	for _, a := range accts {
		if a.ID == accountID {
			s.accountID = accountID
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownAccount, accountID)
}

// LoadFile reads a statement file and loads it.
func (s *Session) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading statement: %w", err)
	}
	return s.Load(string(data))
}

// LoadReader reads a statement from r and loads it.
func (s *Session) LoadReader(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading statement: %w", err)
	}
	return s.Load(string(data))
}

// Load discards any previous state, parses text and auto-detects the
// column mapping. On success the session moves to StepMap; on
// ErrTooFewLines it stays in StepUpload with nothing loaded.
func (s *Session) Load(text string) error {
	s.Reset()

	rows, err := Parse(text)
	if err != nil {
		return err
	}
	s.header = rows[0]
	s.rows = rows[1:]
	s.mapping = AutoDetect(s.header)
	s.step = StepMap

	s.logger.Debug("statement loaded", "columns", len(s.header), "rows", len(s.rows))
	return nil
}

// SetMapping assigns role to column col. Only allowed in StepMap.
func (s *Session) SetMapping(col int, role Role) error {
	if s.step != StepMap {
		return fmt.Errorf("%w: set mapping in %s", ErrWrongStep, s.step)
	}
	if col < 0 || col >= len(s.header) {
		return fmt.Errorf("%w: %d (have %d columns)", ErrColumnOutOfRange, col, len(s.header))
	}
	if _, err := ParseRole(string(role)); err != nil {
		return err
	}
	s.mapping.Set(col, role)
	return nil
}

// Preview normalizes the rows and drops those already in the store. With
// an incomplete mapping it returns ErrIncompleteMapping and the session
// stays in StepMap.
func (s *Session) Preview() (*Preview, error) {
	if s.step != StepMap {
		return nil, fmt.Errorf("%w: preview in %s", ErrWrongStep, s.step)
	}
	existing, err := ExistingHashes(s.store)
	if err != nil {
		return nil, err
	}
	p, err := BuildPreview(s.rows, s.mapping, existing)
	if err != nil {
		return nil, err
	}

	s.preview = p
	s.step = StepPreview
	s.logger.Debug("preview built", "new", len(p.Candidates), "duplicates", p.DuplicateCount)
	return p, nil
}

// Commit appends the previewed rows to the store and moves to StepDone.
func (s *Session) Commit() (*CommitResult, error) {
	if s.step != StepPreview {
		return nil, fmt.Errorf("%w: commit in %s", ErrWrongStep, s.step)
	}
	if s.accountID == "" {
		return nil, fmt.Errorf("%w: no account selected", ErrUnknownAccount)
	}

	res, err := s.committer.Commit(CommitRequest{
		AccountID: s.accountID,
		Rows:      s.rows,
		Mapping:   s.mapping,
		Preview:   s.preview,
	})
	if err != nil {
		return nil, err
	}

	s.result = res
	s.step = StepDone
	return res, nil
}

// Back returns to the previous step: preview → map, map → upload.
func (s *Session) Back() {
	switch s.step {
	case StepPreview:
		s.preview = nil
		s.step = StepMap
	case StepMap:
		s.step = StepUpload
	}
}

// Reset drops the loaded statement and returns to StepUpload. The target
// account is kept.
func (s *Session) Reset() {
	s.step = StepUpload
	s.header = nil
	s.rows = nil
	s.mapping = make(ColumnMapping)
	s.preview = nil
	s.result = nil
}
