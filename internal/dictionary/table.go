package dictionary

import (
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"gnecli/pkg/contracts/domain"
)

const keySeparator = "\x1f"

// A Caser keeps state between calls, so lookups borrow one each.
var lowerPool = sync.Pool{
	New: func() any {
		c := cases.Lower(language.Und, cases.HandleFinalSigma(false))
		return &c
	},
}

// Key normalizes a name/country pair into a table key. Both parts are
// trimmed and lower-cased; case mapping is one rune to one rune, so "ß"
// does not match "ss".
func Key(firstName, countryCode string) string {
	c := lowerPool.Get().(*cases.Caser)
	defer lowerPool.Put(c)
	return c.String(strings.TrimSpace(firstName)) + keySeparator + c.String(strings.TrimSpace(countryCode))
}

// Table is a resolved dictionary. It is read-only once built and safe for
// concurrent readers.
type Table struct {
	entries map[string]domain.DataRecord
}

// Lookup returns the record for the pair, or NotFound.
func (t *Table) Lookup(firstName, countryCode string) (domain.DataRecord, bool) {
	if t == nil {
		return domain.NotFound, false
	}
	rec, ok := t.entries[Key(firstName, countryCode)]
	if !ok {
		return domain.NotFound, false
	}
	return rec, true
}

// Len returns the number of resolved entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Records returns every entry sorted by name then country code, the order
// the resolver expects its input in.
func (t *Table) Records() []domain.DataRecord {
	if t == nil {
		return nil
	}
	out := make([]domain.DataRecord, 0, len(t.entries))
	for _, rec := range t.entries {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FirstName != out[j].FirstName {
			return out[i].FirstName < out[j].FirstName
		}
		return out[i].CountryCode < out[j].CountryCode
	})
	return out
}
