package id

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Generator hands out unique transaction identifiers.
type Generator interface {
	NewID() string
}

// UUID generates random version 4 UUIDs.
type UUID struct{}

// NewID returns a fresh UUID string.
func (UUID) NewID() string { return uuid.NewString() }

// Sequence generates predictable IDs like "txn-0001", "txn-0002".
// Not safe for concurrent use.
type Sequence struct {
	Prefix string
	next   int
}

// NewSequence returns a Sequence starting at 1.
func NewSequence(prefix string) *Sequence {
	return &Sequence{Prefix: prefix, next: 1}
}

// ResumeSequence returns a Sequence for prefix that continues after the
// highest ID in existing carrying that prefix. Other IDs are ignored.
func ResumeSequence(prefix string, existing []string) *Sequence {
	s := NewSequence(prefix)
	for _, e := range existing {
		p, n, err := ParseSequenceID(e)
		if err != nil || p != prefix {
			continue
		}
		if n >= s.next {
			s.next = n + 1
		}
	}
	return s
}

// NewID returns the next ID in the sequence.
func (s *Sequence) NewID() string {
	if s.next == 0 {
		s.next = 1
	}
	id := FormatSequenceID(s.Prefix, s.next)
	s.next++
	return id
}

// FormatSequenceID returns an ID like "txn-0007".
func FormatSequenceID(prefix string, n int) string {
	return fmt.Sprintf("%s-%04d", prefix, n)
}

// ParseSequenceID parses "txn-0007" into its prefix and number.
func ParseSequenceID(id string) (prefix string, n int, err error) {
	i := strings.LastIndex(id, "-")
	if i <= 0 || i == len(id)-1 {
		return "", 0, fmt.Errorf("invalid sequence ID format: %q", id)
	}

	n, err = strconv.Atoi(id[i+1:])
	if err != nil {
		return "", 0, fmt.Errorf("invalid number in sequence ID %q: %w", id, err)
	}
	return id[:i], n, nil
}
