package dataprocessing

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gnecli/internal/dictionary"
	"gnecli/internal/records"
	"gnecli/pkg/contracts/domain"
)

const testDictionary = "name,code,gender,wgt\njohn,US,M,1\nmary,US,F,1\npat,US,F,0.5\npat,US,M,0.5\n"

func testTable(t *testing.T) *dictionary.Table {
	t.Helper()
	src, err := records.NewCSVReader(strings.NewReader(testDictionary), records.DefaultCSVOptions())
	require.NoError(t, err)
	table, err := dictionary.Load(context.Background(), src)
	require.NoError(t, err)
	return table
}

func csvSource(t *testing.T, data string, headers bool) records.Source {
	t.Helper()
	opts := records.DefaultCSVOptions()
	opts.HasHeaders = headers
	src, err := records.NewCSVReader(strings.NewReader(data), opts)
	require.NoError(t, err)
	return src
}

func rec(name, code string, g domain.Gender, acc string) domain.DataRecord {
	return domain.DataRecord{FirstName: name, CountryCode: code, Gender: g, Accuracy: decimal.RequireFromString(acc)}
}

func TestEnricher_Lookup(t *testing.T) {
	e := NewEnricher(testTable(t))

	got := e.Lookup(" John ", "us")
	assert.Equal(t, domain.Man, got.Gender)
	assert.True(t, decimal.NewFromInt(1).Equal(got.Accuracy))

	missing := e.Lookup("nobody", "US")
	assert.True(t, missing.IsNotFound())
	assert.Equal(t, domain.NotAvailable, missing.Gender)

	assert.Equal(t, int64(1), e.Hits())
	assert.Equal(t, int64(1), e.Misses())
}

func TestEnricher_Process(t *testing.T) {
	e := NewEnricher(testTable(t))
	src := csvSource(t, "John,US,1\nMary,US,2\nPat,US,3\nZed,US,4\n", false)

	var genders []domain.Gender
	for r := range e.Process(src, 0, 1) {
		genders = append(genders, r.Gender)
	}
	assert.Equal(t, []domain.Gender{domain.Man, domain.Woman, domain.Indeterminate, domain.NotAvailable}, genders)
}

func TestEnricher_ProcessStopsEarly(t *testing.T) {
	e := NewEnricher(testTable(t))
	src := csvSource(t, "John,US\nMary,US\n", false)

	for range e.Process(src, 0, 1) {
		break
	}
	require.True(t, src.Next())
	v, _ := src.Field(0)
	assert.Equal(t, "Mary", v)
}

func TestPipeline_EndToEnd(t *testing.T) {
	p := NewPipeline(testTable(t))
	src := csvSource(t, "first,country,other\nJohn,US,1\nMary,US,2\nPat,US,3", true)

	run, err := p.Prepare(src, Columns{
		FirstName:   records.ColumnName("first"),
		CountryCode: records.ColumnName("country"),
	})
	require.NoError(t, err)

	var got []string
	for r, err := range run.Records(context.Background()) {
		require.NoError(t, err)
		got = append(got, r.Gender.String()+","+r.Accuracy.String())
	}
	assert.Equal(t, []string{"M,1", "F,1", "I,0.5"}, got)

	s := run.Summary()
	assert.Equal(t, 3, s.RowCount())
	assert.Equal(t, 3, s.UniquePeople())
	assert.Equal(t, 3, s.UniqueDisclosures())

	rate := s.InventorRate()
	assert.InDelta(t, 1.0/3, rate.Women.Percentage, 1e-9)
	assert.InDelta(t, 1.0/3, rate.Men.Percentage, 1e-9)
	assert.InDelta(t, 1.0/3, rate.Undetermined.Percentage, 1e-9)
}

func TestPipeline_RequiredColumns(t *testing.T) {
	p := NewPipeline(testTable(t))

	_, err := p.Prepare(csvSource(t, "first,country\n", true), Columns{
		FirstName:   records.ColumnName("missing"),
		CountryCode: records.ColumnName("country"),
	})
	assert.ErrorContains(t, err, "first name")

	_, err = p.Prepare(csvSource(t, "first,country\n", true), Columns{
		FirstName:   records.ColumnName("first"),
		CountryCode: records.ColumnName("missing"),
	})
	assert.ErrorContains(t, err, "country code")

	_, err = p.Prepare(csvSource(t, "John,US\n", false), Columns{
		FirstName:   records.ColumnName("first"),
		CountryCode: records.ColumnIndex(1),
	})
	assert.Error(t, err)
}

func TestPipeline_OptionalColumns(t *testing.T) {
	p := NewPipeline(testTable(t))
	src := csvSource(t, "first,country,inventor,patent\nJohn,US,j1,P1\nMary,US,m1,P1\nJohn,US,J1,P2\n", true)

	run, err := p.Prepare(src, Columns{
		FirstName:    records.ColumnName("first"),
		CountryCode:  records.ColumnName("country"),
		PersonID:     records.ColumnName("inventor"),
		DisclosureID: records.ColumnName("patent"),
	})
	require.NoError(t, err)
	for _, err := range run.Records(context.Background()) {
		require.NoError(t, err)
	}

	s := run.Summary()
	assert.Equal(t, 3, s.RowCount())
	assert.Equal(t, 2, s.UniquePeople())
	assert.Equal(t, 2, s.UniqueDisclosures())
	assert.Equal(t, []string{"j1", "m1"}, s.DisclosurePeople("p1"))
}

func TestPipeline_UnresolvedOptionalColumnIsUnused(t *testing.T) {
	p := NewPipeline(testTable(t))
	src := csvSource(t, "first,country\nJohn,US\nJohn,US\n", true)

	run, err := p.Prepare(src, Columns{
		FirstName:    records.ColumnName("first"),
		CountryCode:  records.ColumnName("country"),
		DisclosureID: records.ColumnName("patent"),
	})
	require.NoError(t, err)
	for range run.Records(context.Background()) {
	}
	assert.Equal(t, 1, run.Summary().UniquePeople())
	assert.Equal(t, 2, run.Summary().UniqueDisclosures())
}

func TestPipeline_Cancellation(t *testing.T) {
	p := NewPipeline(testTable(t))
	src := csvSource(t, "John,US\nMary,US\nPat,US\n", false)
	run, err := p.Prepare(src, Columns{FirstName: records.ColumnIndex(0), CountryCode: records.ColumnIndex(1)})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rows := 0
	var last error
	for _, err := range run.Records(ctx) {
		if err != nil {
			last = err
			break
		}
		rows++
		cancel()
	}
	assert.Equal(t, 1, rows)
	assert.ErrorIs(t, last, context.Canceled)
	assert.Equal(t, 1, run.Summary().RowCount())
}

type fakeRecorder struct {
	rows       int
	mismatches []domain.Mismatch
}

func (f *fakeRecorder) RecordRow(context.Context, domain.DataRecord) { f.rows++ }

func (f *fakeRecorder) RecordMismatch(_ context.Context, m domain.Mismatch) {
	f.mismatches = append(f.mismatches, m)
}

func TestPipeline_Recorder(t *testing.T) {
	recorder := &fakeRecorder{}
	p := NewPipeline(testTable(t), WithRecorder(recorder))
	src := csvSource(t, "John,US,x\nMary,US,x\n", false)
	run, err := p.Prepare(src, Columns{
		FirstName:   records.ColumnIndex(0),
		CountryCode: records.ColumnIndex(1),
		PersonID:    records.ColumnIndex(2),
	})
	require.NoError(t, err)
	for range run.Records(context.Background()) {
	}

	assert.Equal(t, 2, recorder.rows)
	require.Len(t, recorder.mismatches, 1)
	assert.Equal(t, "x", recorder.mismatches[0].PersonID)
}

func TestSummaryInfo_MismatchCoercesToIndeterminate(t *testing.T) {
	s := NewSummaryInfo()
	var events []domain.Mismatch
	s.OnMismatch(func(m domain.Mismatch) { events = append(events, m) })

	s.Add("", "", rec("Pat", "US", domain.Woman, "1"))
	s.Add("", "", rec(" Pat ", "US ", domain.Man, "1"))

	require.Len(t, events, 1)
	assert.Equal(t, domain.Woman, events[0].Old.Gender)
	assert.Equal(t, domain.Man, events[0].New.Gender)

	stored, ok := s.Person("Pat\x1fUS")
	require.True(t, ok)
	assert.Equal(t, domain.Indeterminate, stored.Gender)
	assert.Equal(t, 1, s.UniquePeople())
	assert.Equal(t, 2, s.UniqueDisclosures())
	assert.Equal(t, 1, s.Mismatches())
}

func TestSummaryInfo_SameGenderIsNotMismatch(t *testing.T) {
	s := NewSummaryInfo()
	called := false
	s.OnMismatch(func(domain.Mismatch) { called = true })

	s.Add("p1", "d1", rec("Ann", "US", domain.Woman, "1"))
	s.Add("P1", "D1", rec("Ann", "GB", domain.Woman, "0.9"))

	assert.False(t, called)
	assert.Equal(t, 1, s.UniquePeople())
	assert.Equal(t, 1, s.UniqueDisclosures())
	assert.Equal(t, []string{"p1"}, s.DisclosurePeople("d1"))
}

func TestSummaryInfo_NotFoundRowsShareOnePerson(t *testing.T) {
	s := NewSummaryInfo()
	s.Add("", "", domain.NotFound)
	s.Add("", "", domain.NotFound)

	assert.Equal(t, 1, s.UniquePeople())
	assert.Equal(t, 2, s.UniqueDisclosures())
}

func TestSummaryInfo_Statistics(t *testing.T) {
	s := NewSummaryInfo()
	// d1: woman + man, d2: solo woman, d3: solo man, d4: woman + unknown + man
	s.Add("w1", "d1", rec("Ann", "US", domain.Woman, "1"))
	s.Add("m1", "d1", rec("Bob", "US", domain.Man, "1"))
	s.Add("w2", "d2", rec("Cat", "US", domain.Woman, "1"))
	s.Add("m2", "d3", rec("Dan", "US", domain.Man, "1"))
	s.Add("w1", "d4", rec("Ann", "US", domain.Woman, "1"))
	s.Add("u1", "d4", domain.NotFound)
	s.Add("m1", "d4", rec("Bob", "US", domain.Man, "1"))

	assert.Equal(t, 7, s.RowCount())

	rate := s.InventorRate()
	assert.Equal(t, domain.All(5), rate.All)
	assert.Equal(t, 2, rate.Women.Count)
	assert.InDelta(t, 0.4, rate.Women.Percentage, 1e-9)
	assert.Equal(t, 2, rate.Men.Count)
	assert.Equal(t, 1, rate.Undetermined.Count)

	out := s.DisclosureOutput()
	assert.Equal(t, domain.All(4), out.All)
	assert.Equal(t, 3, out.AtLeastOneWoman.Count)
	assert.InDelta(t, 0.75, out.AtLeastOneWoman.Percentage, 1e-9)
	assert.Equal(t, 3, out.AtLeastOneMan.Count)
	assert.Equal(t, 1, out.AtLeastOneUndetermined.Count)
	assert.Equal(t, 1, out.SoloWoman.Count)
	assert.Equal(t, 1, out.SoloMan.Count)

	frac := s.FractionalInventorship()
	assert.Equal(t, 4.0, frac.All)
	assert.InDelta(t, 0.5+1+0+1.0/3, frac.Women, 1e-9)
	assert.InDelta(t, 0.5+0+1+1.0/3, frac.Men, 1e-9)
	assert.InDelta(t, 1.0/3, frac.Undetermined, 1e-9)
	assert.InDelta(t, frac.All, frac.Women+frac.Men+frac.Undetermined, 1e-9)

	snap := s.Snapshot()
	assert.Equal(t, 5, snap.UniquePeople)
	assert.Equal(t, 4, snap.UniqueDisclosures)
	assert.Equal(t, rate, snap.InventorRate)
}

func TestSummaryInfo_Empty(t *testing.T) {
	s := NewSummaryInfo()
	rate := s.InventorRate()
	assert.Equal(t, 0, rate.All.Count)
	assert.Equal(t, 0.0, rate.Women.Percentage)
	assert.Equal(t, 0.0, s.FractionalInventorship().Women)
}
