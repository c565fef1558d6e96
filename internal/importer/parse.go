package importer

import (
	"errors"
	"strings"
)

// ErrTooFewLines is returned when a statement lacks a header line or data.
var ErrTooFewLines = errors.New("statement needs a header line and at least one data line")

// RawRow is one statement line split into fields, in column order.
type RawRow []string

// Field returns field i, or "" when the row is too short.
func (r RawRow) Field(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

// Parse splits statement text into rows of trimmed, comma-separated fields.
// A double quote toggles quoted mode, in which commas are literal. There is
// no escape for a quote inside a quoted field: every quote toggles.
// The first row is returned like any other; callers treat it as the header.
func Parse(text string) ([]RawRow, error) {
	text = strings.TrimSpace(strings.TrimPrefix(text, "\ufeff"))
	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return nil, ErrTooFewLines
	}

	rows := make([]RawRow, len(lines))
	for i, line := range lines {
		rows[i] = splitLine(strings.TrimSuffix(line, "\r"))
	}
	return rows, nil
}

func splitLine(line string) RawRow {
	var fields RawRow
	var cur strings.Builder
	inQuotes := false
	for _, ch := range line {
		switch {
		case ch == '"':
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(ch)
		}
	}
	return append(fields, strings.TrimSpace(cur.String()))
}
