package records

import (
	"fmt"
	"strconv"
	"strings"
)

// FieldRef refers to a column by zero-based position or by header name.
// The zero value refers to nothing and marks an optional column as unused.
type FieldRef struct {
	name     string
	index    int
	hasIndex bool
}

// ColumnIndex refers to the zero-based column i.
func ColumnIndex(i int) FieldRef {
	return FieldRef{index: i, hasIndex: true}
}

// ColumnName refers to the column whose header text is name.
func ColumnName(name string) FieldRef {
	return FieldRef{name: name}
}

// ParseFieldRef reads the command-line form of a column reference: digits
// are a one-based position, anything else is a header name, and an empty
// string is unused.
func ParseFieldRef(s string) (FieldRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return FieldRef{}, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return ColumnName(s), nil
	}
	if n < 1 {
		return FieldRef{}, fmt.Errorf("column position %d must be 1 or greater", n)
	}
	return ColumnIndex(n - 1), nil
}

// IsZero reports whether the reference is unused.
func (f FieldRef) IsZero() bool {
	return f.name == "" && !f.hasIndex
}

// Index returns the explicit position, if one was given.
func (f FieldRef) Index() (int, bool) {
	return f.index, f.hasIndex
}

// Name returns the header name, if one was given.
func (f FieldRef) Name() string {
	return f.name
}

// Resolve finds the column position in src. Explicit positions win; names
// resolve only against a source with a header row.
func (f FieldRef) Resolve(src Source) (int, bool) {
	if f.hasIndex {
		return f.index, true
	}
	if f.name != "" && src.HasHeaders() {
		if i := src.Ordinal(f.name); i >= 0 {
			return i, true
		}
	}
	return -1, false
}

// Describe renders the reference for report headers: the quoted header
// name when known, the bare position for headerless input, "unknown" for a
// position past the header row, and "unused" for the zero value.
func (f FieldRef) Describe(src Source) string {
	if f.name != "" {
		return "'" + f.name + "'"
	}
	if !f.hasIndex {
		return "unused"
	}
	if src != nil && src.HasHeaders() {
		name, ok := src.Name(f.index)
		if !ok {
			return "unknown"
		}
		return "'" + name + "'"
	}
	return strconv.Itoa(f.index)
}

func (f FieldRef) String() string {
	switch {
	case f.name != "":
		return f.name
	case f.hasIndex:
		return "#" + strconv.Itoa(f.index)
	default:
		return ""
	}
}
