package exporter

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"gnecli/pkg/contracts/domain"
)

const (
	// ResultsSheet is the name of the summary worksheet added to workbooks.
	ResultsSheet = "Results"

	percentFormat    = "0.0%"
	fractionalFormat = "0.0"
	dateFormat       = "mmmm d, yyyy"
	linkColor        = "3366CC"
	firstSectionRow  = 12
)

func cell(col string, row int) string {
	return col + strconv.Itoa(row)
}

// uniqueSheetName returns name, or name with a numeric suffix when the
// workbook already has a sheet by that name.
func uniqueSheetName(f *excelize.File, name string) string {
	candidate := name
	for n := 2; ; n++ {
		if idx, err := f.GetSheetIndex(candidate); err == nil && idx < 0 {
			return candidate
		}
		candidate = fmt.Sprintf("%s (%d)", name, n)
	}
}

// WriteResultsSheet adds the report as a new worksheet and makes it the
// active sheet. It returns the sheet name used.
func WriteResultsSheet(f *excelize.File, r Report) (string, error) {
	sheet := uniqueSheetName(f, ResultsSheet)
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return "", fmt.Errorf("failed to add %s sheet: %w", sheet, err)
	}
	w := &sheetWriter{f: f, sheet: sheet}
	w.init()

	w.set("A1", ReportTitle)
	w.style("A1", "A1", w.titleStyle)

	w.set("A2", "Generated")
	w.set("B2", r.Generated)
	w.style("B2", "B2", w.dateStyle)

	w.set("A3", "Dictionary")
	w.set("B3", r.Dictionary)
	w.set("A4", "Data source")
	w.set("B4", r.DataSource)
	w.set("A5", "Columns Used")
	w.set("B5", r.Columns)

	w.set("A7", ProgramNotice)
	w.link("A8", ProgramURL)
	w.set("A10", PledgeNotice)
	w.link("A11", PledgeURL)

	row := firstSectionRow
	for _, s := range r.Sections {
		row++
		w.set(cell("A", row), s.Title)
		w.style(cell("A", row), cell("A", row), w.headingStyle)
		row++

		percent := ""
		if s.Percent {
			percent = "Percent"
		}
		w.set(cell("B", row), "Item")
		w.set(cell("C", row), "Total")
		w.set(cell("D", row), percent)
		w.set(cell("E", row), "Comments")
		w.style(cell("B", row), cell("E", row), w.underlineStyle)
		row++

		for _, rr := range s.Rows {
			switch rr.Kind {
			case RowBlank:
			case RowCount:
				w.set(cell("B", row), rr.Item)
				w.set(cell("C", row), rr.Count)
				w.set(cell("E", row), rr.Comment)
			case RowPercent:
				w.set(cell("B", row), rr.Item)
				w.set(cell("C", row), rr.Count)
				w.set(cell("D", row), rr.Percentage)
				w.style(cell("D", row), cell("D", row), w.percentStyle)
				w.set(cell("E", row), rr.Comment)
			case RowFractional:
				w.set(cell("B", row), rr.Item)
				w.set(cell("C", row), rr.Total)
				w.style(cell("C", row), cell("C", row), w.fractionalStyle)
				w.set(cell("E", row), rr.Comment)
			}
			row++
		}
	}

	for col, width := range map[string]float64{"A": 14, "B": 46, "C": 10, "D": 10, "E": 90} {
		if w.err == nil {
			w.err = f.SetColWidth(sheet, col, col, width)
		}
	}
	if w.err != nil {
		return "", fmt.Errorf("failed to write %s sheet: %w", sheet, w.err)
	}

	f.SetActiveSheet(idx)
	return sheet, nil
}

// sheetWriter keeps the first error of a run of cell writes.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	err   error

	titleStyle      int
	headingStyle    int
	underlineStyle  int
	linkStyle       int
	dateStyle       int
	percentStyle    int
	fractionalStyle int
}

func (w *sheetWriter) newStyle(s *excelize.Style) int {
	if w.err != nil {
		return 0
	}
	id, err := w.f.NewStyle(s)
	w.err = err
	return id
}

func (w *sheetWriter) init() {
	date, percent, fractional := dateFormat, percentFormat, fractionalFormat
	w.titleStyle = w.newStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Underline: "single", Size: 22}})
	w.headingStyle = w.newStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Underline: "single"}})
	w.underlineStyle = w.newStyle(&excelize.Style{Font: &excelize.Font{Underline: "single"}})
	w.linkStyle = w.newStyle(&excelize.Style{Font: &excelize.Font{Underline: "single", Color: linkColor}})
	w.dateStyle = w.newStyle(&excelize.Style{
		CustomNumFmt: &date,
		Alignment:    &excelize.Alignment{Horizontal: "left"},
	})
	w.percentStyle = w.newStyle(&excelize.Style{CustomNumFmt: &percent})
	w.fractionalStyle = w.newStyle(&excelize.Style{CustomNumFmt: &fractional})
}

func (w *sheetWriter) set(ref string, v interface{}) {
	if w.err == nil {
		w.err = w.f.SetCellValue(w.sheet, ref, v)
	}
}

func (w *sheetWriter) style(from, to string, id int) {
	if w.err == nil {
		w.err = w.f.SetCellStyle(w.sheet, from, to, id)
	}
}

func (w *sheetWriter) link(ref, url string) {
	w.set(ref, url)
	if w.err == nil {
		w.err = w.f.SetCellHyperLink(w.sheet, ref, url, "External")
	}
	w.style(ref, ref, w.linkStyle)
}

// EstimateColumns writes the Gender and Accuracy columns to the right of a
// worksheet's used range.
type EstimateColumns struct {
	f           *excelize.File
	sheet       string
	genderCol   int
	accuracyCol int
}

// NewEstimateColumns places the columns after lastUsedCol (1-based).
func NewEstimateColumns(f *excelize.File, sheet string, lastUsedCol int) *EstimateColumns {
	return &EstimateColumns{f: f, sheet: sheet, genderCol: lastUsedCol + 1, accuracyCol: lastUsedCol + 2}
}

// Columns returns the 1-based gender and accuracy column numbers.
func (e *EstimateColumns) Columns() (gender, accuracy int) {
	return e.genderCol, e.accuracyCol
}

func (e *EstimateColumns) ref(col, row int) (string, error) {
	return excelize.CoordinatesToCellName(col, row)
}

// WriteHeader labels the columns on the header row.
func (e *EstimateColumns) WriteHeader(row int) error {
	return e.writePair(row, "Gender", "Accuracy")
}

// WriteRecord writes the estimate for one worksheet row.
func (e *EstimateColumns) WriteRecord(row int, rec domain.DataRecord) error {
	return e.writePair(row, rec.Gender.String(), rec.Accuracy.InexactFloat64())
}

func (e *EstimateColumns) writePair(row int, gender, accuracy interface{}) error {
	g, err := e.ref(e.genderCol, row)
	if err != nil {
		return err
	}
	a, err := e.ref(e.accuracyCol, row)
	if err != nil {
		return err
	}
	if err := e.f.SetCellValue(e.sheet, g, gender); err != nil {
		return err
	}
	return e.f.SetCellValue(e.sheet, a, accuracy)
}

// Format styles the data rows firstRow..lastRow: gender centred, accuracy
// right aligned as a percentage.
func (e *EstimateColumns) Format(firstRow, lastRow int) error {
	if lastRow < firstRow {
		return nil
	}
	percent := percentFormat
	center, err := e.f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{Horizontal: "center"}})
	if err != nil {
		return err
	}
	right, err := e.f.NewStyle(&excelize.Style{
		Alignment:    &excelize.Alignment{Horizontal: "right"},
		CustomNumFmt: &percent,
	})
	if err != nil {
		return err
	}

	from, _ := e.ref(e.genderCol, firstRow)
	to, _ := e.ref(e.genderCol, lastRow)
	if err := e.f.SetCellStyle(e.sheet, from, to, center); err != nil {
		return err
	}
	from, _ = e.ref(e.accuracyCol, firstRow)
	to, _ = e.ref(e.accuracyCol, lastRow)
	return e.f.SetCellStyle(e.sheet, from, to, right)
}

// AutoFilter adds a filter over the header row from firstCol through the
// accuracy column.
func (e *EstimateColumns) AutoFilter(headerRow, firstCol int) error {
	from, err := e.ref(firstCol, headerRow)
	if err != nil {
		return err
	}
	to, err := e.ref(e.accuracyCol, headerRow)
	if err != nil {
		return err
	}
	return e.f.AutoFilter(e.sheet, from+":"+to, nil)
}
