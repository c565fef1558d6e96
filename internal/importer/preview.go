package importer

import "sort"

// Preview is what an import would add: one candidate per net-new row.
type Preview struct {
	Candidates     []Candidate
	Positions      []int // row index each candidate was built from
	DuplicateCount int
}

// BuildPreview normalizes every row of rows not already present in existing.
// It fails only when mapping is incomplete.
func BuildPreview(rows []RawRow, mapping ColumnMapping, existing HashSet) (*Preview, error) {
	n, err := NewNormalizer(mapping)
	if err != nil {
		return nil, err
	}

	filtered := FilterNew(rows, existing)
	p := &Preview{
		Candidates:     make([]Candidate, len(filtered.Accepted)),
		Positions:      filtered.Positions,
		DuplicateCount: filtered.DuplicateCount,
	}
	for i, row := range filtered.Accepted {
		p.Candidates[i] = n.Normalize(row)
	}
	return p, nil
}

// CandidateAt returns the candidate built from row index pos.
func (p *Preview) CandidateAt(pos int) (Candidate, bool) {
	if p == nil {
		return Candidate{}, false
	}
	i := sort.SearchInts(p.Positions, pos)
	if i < len(p.Positions) && p.Positions[i] == pos {
		return p.Candidates[i], true
	}
	return Candidate{}, false
}
