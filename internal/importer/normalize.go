package importer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrIncompleteMapping is returned when a mapping lacks a required role.
var ErrIncompleteMapping = errors.New("column mapping incomplete")

// UnknownMerchant stands in for an empty merchant field.
const UnknownMerchant = "Unknown"

// isoDate is the normalized date layout.
const isoDate = "2006-01-02"

// dateLayouts are tried in order. Slash dates are month first.
var dateLayouts = []string{
	isoDate,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
	"2006/1/2",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04:05",
	"01/02/06",
	"1/2/06",
	"01-02-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"2 January 2006",
	"02-Jan-2006",
	"2-Jan-2006",
	"02-Jan-06",
	"Mon, 02 Jan 2006",
	"Mon Jan 2 2006",
	time.RFC1123,
	time.RFC1123Z,
}

// Candidate is a normalized statement row awaiting commit.
type Candidate struct {
	Date     string
	Merchant string
	Amount   decimal.Decimal // negative = expense, positive = income
}

// Normalizer converts raw rows into candidates for one column mapping.
type Normalizer struct {
	date, merchant int
	amount         int // -1 in debit/credit mode
	debit, credit  int // -1 when unmapped
}

// NewNormalizer checks that mapping has a date, a merchant and either an
// amount or a debit column. When several columns share a role the lowest
// index is used. An amount column takes precedence over debit/credit.
func NewNormalizer(mapping ColumnMapping) (*Normalizer, error) {
	if missing := MissingRoles(mapping); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrIncompleteMapping, strings.Join(missing, ", "))
	}

	n := &Normalizer{amount: -1, debit: -1, credit: -1}
	n.date, _ = mapping.First(RoleDate)
	n.merchant, _ = mapping.First(RoleMerchant)
	if i, ok := mapping.First(RoleAmount); ok {
		n.amount = i
	}
	if i, ok := mapping.First(RoleDebit); ok {
		n.debit = i
	}
	if i, ok := mapping.First(RoleCredit); ok {
		n.credit = i
	}
	return n, nil
}

// MissingRoles names the required roles mapping lacks.
func MissingRoles(mapping ColumnMapping) []string {
	var missing []string
	if _, ok := mapping.First(RoleDate); !ok {
		missing = append(missing, string(RoleDate))
	}
	if _, ok := mapping.First(RoleMerchant); !ok {
		missing = append(missing, string(RoleMerchant))
	}
	_, hasAmount := mapping.First(RoleAmount)
	_, hasDebit := mapping.First(RoleDebit)
	if !hasAmount && !hasDebit {
		missing = append(missing, "amount or debit")
	}
	return missing
}

// Normalize converts one row. It never fails: unparseable amounts become
// zero and unparseable dates are kept as written.
func (n *Normalizer) Normalize(row RawRow) Candidate {
	var amount decimal.Decimal
	if n.amount >= 0 {
		amount = ParseAmount(row.Field(n.amount))
	} else {
		debit := parseUnsigned(row.Field(n.debit))
		credit := decimal.Zero
		if n.credit >= 0 {
			credit = parseUnsigned(row.Field(n.credit))
		}
		amount = credit.Sub(debit)
	}

	merchant := row.Field(n.merchant)
	if merchant == "" {
		merchant = UnknownMerchant
	}

	return Candidate{
		Date:     NormalizeDate(row.Field(n.date)),
		Merchant: merchant,
		Amount:   amount,
	}
}

// ParseAmount reads a signed amount such as "-$1,234.50". Everything but
// digits, '.' and '-' is dropped, then the leading number is parsed.
// Returns zero when there is no number.
func ParseAmount(raw string) decimal.Decimal {
	return leadingNumber(keep(raw, "0123456789.-"))
}

// parseUnsigned reads a debit or credit cell; signs are ignored.
func parseUnsigned(raw string) decimal.Decimal {
	return leadingNumber(keep(raw, "0123456789."))
}

func keep(s, allowed string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(allowed, r) {
			return r
		}
		return -1
	}, s)
}

// leadingNumber parses -?digits[.digits] at the start of s and ignores the rest.
func leadingNumber(s string) decimal.Decimal {
	i := 0
	neg := false
	if i < len(s) && s[i] == '-' {
		neg = true
		i++
	}
	start := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	whole := s[start:i]
	frac := ""
	if i < len(s) && s[i] == '.' {
		i++
		fracStart := i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		frac = s[fracStart:i]
	}
	if whole == "" && frac == "" {
		return decimal.Zero
	}
	if whole == "" {
		whole = "0"
	}
	num := whole
	if frac != "" {
		num += "." + frac
	}

	d, err := decimal.NewFromString(num)
	if err != nil {
		return decimal.Zero
	}
	if neg {
		d = d.Neg()
	}
	return d
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// NormalizeDate rewrites a recognizable date as YYYY-MM-DD (UTC). Anything
// else is returned unchanged.
func NormalizeDate(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return raw
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format(isoDate)
		}
	}
	return raw
}
