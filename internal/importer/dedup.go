package importer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// HashRow returns the content hash of a statement row. Fields are compared
// case-insensitively with whitespace runs collapsed, so re-exports of the
// same statement line hash equal. The column mapping plays no part.
func HashRow(row RawRow) string {
	parts := make([]string, len(row))
	for i, f := range row {
		parts[i] = strings.Join(strings.Fields(strings.ToLower(f)), " ")
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// HashSet is a set of content hashes.
type HashSet map[string]struct{}

// Has reports whether hash is in the set.
func (s HashSet) Has(hash string) bool {
	_, ok := s[hash]
	return ok
}

// Add puts hash in the set.
func (s HashSet) Add(hash string) {
	s[hash] = struct{}{}
}

// ExistingHashes collects the hashes of every stored transaction that has
// one. Manually entered transactions carry no hash and never match.
func ExistingHashes(store TransactionStore) (HashSet, error) {
	txns, err := store.All()
	if err != nil {
		return nil, fmt.Errorf("reading existing transactions: %w", err)
	}
	set := make(HashSet, len(txns))
	for _, t := range txns {
		if t.Hash != "" {
			set.Add(t.Hash)
		}
	}
	return set, nil
}

// FilterResult holds the rows that survived deduplication.
type FilterResult struct {
	Accepted       []RawRow
	Positions      []int // index into the input rows of each accepted row
	DuplicateCount int
}

// FilterNew drops rows whose hash is already in existing. Rows are only
// compared against existing, not against each other.
func FilterNew(rows []RawRow, existing HashSet) FilterResult {
	var res FilterResult
	for i, row := range rows {
		if existing.Has(HashRow(row)) {
			res.DuplicateCount++
			continue
		}
		res.Accepted = append(res.Accepted, row)
		res.Positions = append(res.Positions, i)
	}
	return res
}
