package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DataRecord is the dictionary's answer for one name/country pair.
// Values are immutable; use WithGender to derive a changed copy.
type DataRecord struct {
	FirstName   string          `json:"first_name"`
	CountryCode string          `json:"country_code"`
	Gender      Gender          `json:"gender"`
	Accuracy    decimal.Decimal `json:"accuracy"`
}

// NotFound is returned for pairs missing from the dictionary.
var NotFound = DataRecord{Gender: NotAvailable, Accuracy: decimal.Zero}

// WithGender returns a copy of r carrying g.
func (r DataRecord) WithGender(g Gender) DataRecord {
	r.Gender = g
	return r
}

// IsNotFound reports whether r is the NotFound sentinel.
func (r DataRecord) IsNotFound() bool {
	return r.FirstName == "" && r.CountryCode == "" && r.Gender == NotAvailable && r.Accuracy.IsZero()
}

// Equal compares records by value, treating accuracies numerically.
func (r DataRecord) Equal(o DataRecord) bool {
	return r.FirstName == o.FirstName &&
		r.CountryCode == o.CountryCode &&
		r.Gender == o.Gender &&
		r.Accuracy.Equal(o.Accuracy)
}

// AccuracyText renders the accuracy with the scale it was parsed with, so a
// dictionary weight of 1.0 prints as 1.0 rather than 1.
func (r DataRecord) AccuracyText() string {
	if exp := r.Accuracy.Exponent(); exp < 0 {
		return r.Accuracy.StringFixed(-exp)
	}
	return r.Accuracy.String()
}

// String renders the record the way mismatch diagnostics print it.
func (r DataRecord) String() string {
	return fmt.Sprintf("[%s]-[%s] => %s, %s", r.FirstName, r.CountryCode, r.Gender, r.AccuracyText())
}

// Mismatch is raised when one person id is seen with two different genders.
type Mismatch struct {
	PersonID string
	Old      DataRecord
	New      DataRecord
}

func (m Mismatch) String() string {
	return fmt.Sprintf("Person [%s] has mismatched entries: %s vs. %s", m.PersonID, m.Old, m.New)
}
