package dataprocessing

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"gnecli/pkg/contracts/domain"
)

const idSeparator = "\x1f"

// MismatchFunc observes a person seen with two different genders.
type MismatchFunc func(domain.Mismatch)

type personEntry struct {
	id     string
	record domain.DataRecord
}

type disclosureEntry struct {
	id     string
	people []string // folded person keys, unique
	seen   map[string]struct{}
}

// SummaryInfo aggregates enriched rows into people and disclosures.
//
// Person and disclosure ids compare case-insensitively. A row without a
// person id is attributed to its name and country; a row without a
// disclosure id forms a disclosure of its own. SummaryInfo is not safe for
// concurrent use.
type SummaryInfo struct {
	people      map[string]*personEntry
	disclosures map[string]*disclosureEntry
	order       []*disclosureEntry
	rowCount    int
	mismatches  int
	listeners   []MismatchFunc
	fold        cases.Caser
}

// NewSummaryInfo creates an empty aggregation.
func NewSummaryInfo() *SummaryInfo {
	return &SummaryInfo{
		people:      make(map[string]*personEntry),
		disclosures: make(map[string]*disclosureEntry),
		fold:        cases.Lower(language.Und, cases.HandleFinalSigma(false)),
	}
}

// OnMismatch registers fn to run synchronously inside Add whenever a known
// person shows up with a different gender.
func (s *SummaryInfo) OnMismatch(fn MismatchFunc) {
	if fn != nil {
		s.listeners = append(s.listeners, fn)
	}
}

// Add records one enriched row.
func (s *SummaryInfo) Add(personID, disclosureID string, rec domain.DataRecord) {
	s.rowCount++

	if personID == "" {
		personID = strings.TrimSpace(rec.FirstName) + idSeparator + strings.TrimSpace(rec.CountryCode)
	}
	personKey := s.fold.String(personID)
	if current, ok := s.people[personKey]; ok {
		if current.record.Gender != rec.Gender {
			s.mismatches++
			m := domain.Mismatch{PersonID: personID, Old: current.record, New: rec}
			for _, fn := range s.listeners {
				fn(m)
			}
			current.record = current.record.WithGender(domain.Indeterminate)
		}
	} else {
		s.people[personKey] = &personEntry{id: personID, record: rec}
	}

	if disclosureID == "" {
		disclosureID = strconv.Itoa(s.rowCount) + idSeparator
	}
	disclosureKey := s.fold.String(disclosureID)
	d, ok := s.disclosures[disclosureKey]
	if !ok {
		d = &disclosureEntry{id: disclosureID, seen: make(map[string]struct{})}
		s.disclosures[disclosureKey] = d
		s.order = append(s.order, d)
	}
	if _, dup := d.seen[personKey]; !dup {
		d.seen[personKey] = struct{}{}
		d.people = append(d.people, personKey)
	}
}

// RowCount is the number of rows added.
func (s *SummaryInfo) RowCount() int { return s.rowCount }

// UniquePeople is the number of distinct person ids.
func (s *SummaryInfo) UniquePeople() int { return len(s.people) }

// UniqueDisclosures is the number of distinct disclosure ids.
func (s *SummaryInfo) UniqueDisclosures() int { return len(s.disclosures) }

// Mismatches is the number of mismatch notifications raised.
func (s *SummaryInfo) Mismatches() int { return s.mismatches }

// Person returns the stored record for a person id.
func (s *SummaryInfo) Person(id string) (domain.DataRecord, bool) {
	p, ok := s.people[s.fold.String(id)]
	if !ok {
		return domain.DataRecord{}, false
	}
	return p.record, true
}

// DisclosurePeople returns the person ids listed under a disclosure id, in
// first-seen order.
func (s *SummaryInfo) DisclosurePeople(id string) []string {
	d, ok := s.disclosures[s.fold.String(id)]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(d.people))
	for _, key := range d.people {
		ids = append(ids, s.people[key].id)
	}
	return ids
}

func (s *SummaryInfo) isWoman(key string) bool {
	p, ok := s.people[key]
	return ok && p.record.Gender.IsWoman()
}

func (s *SummaryInfo) isMan(key string) bool {
	p, ok := s.people[key]
	return ok && p.record.Gender.IsMan()
}

// An unknown person counts as undetermined.
func (s *SummaryInfo) isUndetermined(key string) bool {
	p, ok := s.people[key]
	return !ok || p.record.Gender.IsUndetermined()
}

func (s *SummaryInfo) peopleWhere(pred func(domain.Gender) bool) domain.CountAndPercentage {
	n := 0
	for _, p := range s.people {
		if pred(p.record.Gender) {
			n++
		}
	}
	return domain.Share(n, len(s.people))
}

// InventorRate classifies unique people by gender.
func (s *SummaryInfo) InventorRate() domain.InventorRate {
	return domain.InventorRate{
		All:          domain.All(len(s.people)),
		Women:        s.peopleWhere(domain.Gender.IsWoman),
		Men:          s.peopleWhere(domain.Gender.IsMan),
		Undetermined: s.peopleWhere(domain.Gender.IsUndetermined),
	}
}

func anyPerson(people []string, pred func(string) bool) bool {
	for _, key := range people {
		if pred(key) {
			return true
		}
	}
	return false
}

func (s *SummaryInfo) disclosuresWhere(pred func([]string) bool) domain.CountAndPercentage {
	n := 0
	for _, d := range s.order {
		if pred(d.people) {
			n++
		}
	}
	return domain.Share(n, len(s.order))
}

// DisclosureOutput classifies disclosures by the genders of their people.
func (s *SummaryInfo) DisclosureOutput() domain.DisclosureOutput {
	return domain.DisclosureOutput{
		All:                    domain.All(len(s.order)),
		AtLeastOneWoman:        s.disclosuresWhere(func(p []string) bool { return anyPerson(p, s.isWoman) }),
		AtLeastOneMan:          s.disclosuresWhere(func(p []string) bool { return anyPerson(p, s.isMan) }),
		AtLeastOneUndetermined: s.disclosuresWhere(func(p []string) bool { return anyPerson(p, s.isUndetermined) }),
		SoloWoman:              s.disclosuresWhere(func(p []string) bool { return len(p) == 1 && s.isWoman(p[0]) }),
		SoloMan:                s.disclosuresWhere(func(p []string) bool { return len(p) == 1 && s.isMan(p[0]) }),
	}
}

func (s *SummaryInfo) weightedSum(pred func(string) bool) float64 {
	var sum float64
	for _, d := range s.order {
		if len(d.people) == 0 {
			continue
		}
		n := 0
		for _, key := range d.people {
			if pred(key) {
				n++
			}
		}
		sum += float64(n) / float64(len(d.people))
	}
	return sum
}

// FractionalInventorship sums, over all disclosures, the share of each
// disclosure's people in each gender class.
func (s *SummaryInfo) FractionalInventorship() domain.FractionalInventorship {
	return domain.FractionalInventorship{
		All:          float64(len(s.order)),
		Women:        s.weightedSum(s.isWoman),
		Men:          s.weightedSum(s.isMan),
		Undetermined: s.weightedSum(s.isUndetermined),
	}
}

// Snapshot captures the counts and statistics for report writers.
func (s *SummaryInfo) Snapshot() domain.SummarySnapshot {
	return domain.SummarySnapshot{
		RowCount:               s.rowCount,
		UniquePeople:           len(s.people),
		UniqueDisclosures:      len(s.disclosures),
		Mismatches:             s.mismatches,
		InventorRate:           s.InventorRate(),
		DisclosureOutput:       s.DisclosureOutput(),
		FractionalInventorship: s.FractionalInventorship(),
	}
}
