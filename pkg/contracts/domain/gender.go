package domain

import (
	"fmt"
	"unicode/utf8"
)

// Gender is the single-character estimate attached to every enriched row.
type Gender rune

const (
	Woman         Gender = 'F' // confident estimate: woman
	Man           Gender = 'M' // confident estimate: man
	Indeterminate Gender = 'I' // tied candidates, or conflicting rows for one person
	Unknown       Gender = '?' // the dictionary marks the name as unknown
	NotAvailable  Gender = '-' // no dictionary entry for the name/country pair
)

// ParseGender takes the first character of a dictionary gender cell.
// Empty cells are Unknown.
func ParseGender(s string) Gender {
	if s == "" {
		return Unknown
	}
	r, _ := utf8.DecodeRuneInString(s)
	return Gender(r)
}

// String returns the single-character form written to output files.
func (g Gender) String() string {
	return string(rune(g))
}

// IsWoman reports whether g is a confident woman estimate.
func (g Gender) IsWoman() bool { return g == Woman }

// IsMan reports whether g is a confident man estimate.
func (g Gender) IsMan() bool { return g == Man }

// IsUndetermined reports whether g is anything other than Woman or Man.
func (g Gender) IsUndetermined() bool { return g != Woman && g != Man }

// Label is a human readable name for the code.
func (g Gender) Label() string {
	switch g {
	case Woman:
		return "woman"
	case Man:
		return "man"
	case Indeterminate:
		return "indeterminate"
	case Unknown:
		return "unknown"
	case NotAvailable:
		return "not available"
	default:
		return "other"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (g Gender) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *Gender) UnmarshalText(text []byte) error {
	if utf8.RuneCount(text) != 1 {
		return fmt.Errorf("gender must be a single character, got %q", text)
	}
	*g = ParseGender(string(text))
	return nil
}
