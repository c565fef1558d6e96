package importer

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Role is the meaning a user assigns to a statement column.
type Role string

const (
	RoleDate     Role = "date"
	RoleMerchant Role = "merchant"
	RoleAmount   Role = "amount"
	RoleDebit    Role = "debit"
	RoleCredit   Role = "credit"
	RoleCategory Role = "category"
	RoleIgnore   Role = "ignore"
)

// Roles lists every assignable role in display order.
var Roles = []Role{RoleDate, RoleMerchant, RoleAmount, RoleDebit, RoleCredit, RoleCategory, RoleIgnore}

// ParseRole converts a role name (case-insensitive) to a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Roles {
		if r == known {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown column role %q", s)
}

// ColumnMapping assigns roles to column indices. Columns without an entry
// are ignored.
type ColumnMapping map[int]Role

// Role returns the role of column i.
func (m ColumnMapping) Role(i int) Role {
	if r, ok := m[i]; ok {
		return r
	}
	return RoleIgnore
}

// Set assigns role to column i, replacing any earlier assignment.
func (m ColumnMapping) Set(i int, role Role) {
	m[i] = role
}

// First returns the lowest column index holding role.
func (m ColumnMapping) First(role Role) (int, bool) {
	found := -1
	for i, r := range m {
		if r == role && (found < 0 || i < found) {
			found = i
		}
	}
	return found, found >= 0
}

// Columns returns the mapped column indices in ascending order.
func (m ColumnMapping) Columns() []int {
	cols := make([]int, 0, len(m))
	for i := range m {
		cols = append(cols, i)
	}
	sort.Ints(cols)
	return cols
}

// Clone returns an independent copy.
func (m ColumnMapping) Clone() ColumnMapping {
	out := make(ColumnMapping, len(m))
	for i, r := range m {
		out[i] = r
	}
	return out
}

// AutoDetect guesses a role for each header cell from its name.
// Cells that match nothing are left unmapped.
func AutoDetect(header []string) ColumnMapping {
	m := make(ColumnMapping)
	for i, h := range header {
		if role := detectRole(h); role != RoleIgnore {
			m[i] = role
		}
	}
	return m
}

// detectRole applies the header rules in priority order; first match wins.
func detectRole(header string) Role {
	h := strings.ToLower(header)
	switch {
	case strings.Contains(h, "date"):
		return RoleDate
	case containsAny(h, "merchant", "description", "payee", "name"):
		return RoleMerchant
	case strings.Contains(h, "amount"):
		return RoleAmount
	case strings.Contains(h, "debit"):
		return RoleDebit
	case strings.Contains(h, "credit"):
		return RoleCredit
	case containsAny(h, "category", "type"):
		return RoleCategory
	default:
		return RoleIgnore
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// ColumnIndex resolves a column reference against header: either a 0-based
// index or a header name (case-insensitive).
func ColumnIndex(header []string, ref string) (int, error) {
	ref = strings.TrimSpace(ref)
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 0 || n >= len(header) {
			return 0, fmt.Errorf("%w: %d (have %d columns)", ErrColumnOutOfRange, n, len(header))
		}
		return n, nil
	}
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), ref) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: no column named %q", ErrColumnOutOfRange, ref)
}

// ParseOverride parses a "column=role" mapping override, e.g. "2=debit" or
// "Withdrawals=debit".
func ParseOverride(header []string, s string) (int, Role, error) {
	ref, name, ok := strings.Cut(s, "=")
	if !ok {
		return 0, "", fmt.Errorf("invalid mapping %q (want column=role)", s)
	}
	col, err := ColumnIndex(header, ref)
	if err != nil {
		return 0, "", err
	}
	role, err := ParseRole(name)
	if err != nil {
		return 0, "", err
	}
	return col, role, nil
}
