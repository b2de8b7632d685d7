package dictionary

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"gnecli/pkg/contracts/domain"
)

// Resolver collapses weighted dictionary rows into one record per
// name/country pair.
//
// Rows must arrive grouped by name and country code; only adjacent rows
// with identical raw name and code are compared. Within a group the
// greatest weight wins, and a tie for the greatest weight turns the winner
// Indeterminate. The resolver never re-sorts its input.
type Resolver struct {
	winner  domain.DataRecord
	entries map[string]domain.DataRecord
	rows    int
}

// NewResolver creates an empty resolver.
func NewResolver() *Resolver {
	return &Resolver{entries: make(map[string]domain.DataRecord)}
}

// Add feeds the next dictionary row.
func (r *Resolver) Add(rec domain.DataRecord) {
	r.rows++
	if rec.FirstName == r.winner.FirstName && rec.CountryCode == r.winner.CountryCode {
		switch rec.Accuracy.Cmp(r.winner.Accuracy) {
		case 1:
			r.winner = rec
		case 0:
			r.winner = r.winner.WithGender(domain.Indeterminate)
		}
		return
	}
	r.commit()
	r.winner = rec
}

// Rows returns the number of rows fed since the last Table call.
func (r *Resolver) Rows() int { return r.rows }

// Table commits the pending winner and returns the resolved table. The
// resolver is reset and may be reused.
func (r *Resolver) Table() *Table {
	r.commit()
	t := &Table{entries: r.entries}
	r.entries = make(map[string]domain.DataRecord)
	r.winner = domain.DataRecord{}
	r.rows = 0
	return t
}

func (r *Resolver) commit() {
	if r.winner.FirstName == "" {
		return
	}
	r.entries[Key(r.winner.FirstName, r.winner.CountryCode)] = r.winner
}

// ParseWeight reads a dictionary weight: an exact decimal when possible,
// otherwise a float, otherwise zero.
func ParseWeight(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	if d, err := decimal.NewFromString(s); err == nil {
		return d
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}
