package dataprocessing

import (
	"iter"
	"strings"
	"sync/atomic"

	"gnecli/internal/records"
	"gnecli/pkg/contracts/domain"
)

// Dictionary resolves a name/country pair. *dictionary.Table satisfies it.
type Dictionary interface {
	Lookup(firstName, countryCode string) (domain.DataRecord, bool)
}

// Enricher attaches dictionary records to input rows. It may be shared by
// concurrent passes over different sources.
type Enricher struct {
	dict   Dictionary
	hits   atomic.Int64
	misses atomic.Int64
}

// NewEnricher creates an enricher over dict.
func NewEnricher(dict Dictionary) *Enricher {
	return &Enricher{dict: dict}
}

// Lookup trims both parts and returns the matching record or NotFound.
func (e *Enricher) Lookup(firstName, countryCode string) domain.DataRecord {
	rec, ok := e.dict.Lookup(strings.TrimSpace(firstName), strings.TrimSpace(countryCode))
	if !ok {
		e.misses.Add(1)
		return domain.NotFound
	}
	e.hits.Add(1)
	return rec
}

// Process yields one record per remaining row of src, in row order. The
// sequence advances src and can be consumed once.
func (e *Enricher) Process(src records.Source, firstNameIndex, countryCodeIndex int) iter.Seq[domain.DataRecord] {
	return func(yield func(domain.DataRecord) bool) {
		for src.Next() {
			first, _ := src.Field(firstNameIndex)
			country, _ := src.Field(countryCodeIndex)
			if !yield(e.Lookup(first, country)) {
				return
			}
		}
	}
}

// Hits is the number of lookups that found an entry.
func (e *Enricher) Hits() int64 { return e.hits.Load() }

// Misses is the number of lookups that returned NotFound.
func (e *Enricher) Misses() int64 { return e.misses.Load() }
