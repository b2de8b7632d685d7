package records

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "gnecli/internal/errors"
)

// XLSXOptions configures an XLSXReader.
type XLSXOptions struct {
	HasHeaderRow bool
	RowsToSkip   int
	RowsToTrim   int
	// Worksheet selects the sheet by position or case-insensitive name.
	// The zero value selects the workbook's active sheet.
	Worksheet FieldRef
}

// XLSXReader is a Source over the used range of one worksheet. Rows whose
// cells are all empty are skipped.
type XLSXReader struct {
	rowListeners

	file     *excelize.File
	ownsFile bool
	sheet    string
	grid     [][]string

	startRow, endRow int
	startCol, endCol int
	headerRow        int
	finalRow         int
	current          int

	hasHeaders bool
	headers    *headerIndex
	values     []string
	done       bool
	err        error
}

// OpenXLSX opens the workbook at path. The reader owns the workbook and
// closes it in Close.
func OpenXLSX(path string, opts XLSXOptions) (*XLSXReader, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open workbook", err).WithContext("path", path)
	}
	r, err := NewXLSXReader(f, opts)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.ownsFile = true
	return r, nil
}

// NewXLSXReader reads a worksheet of an already open workbook.
func NewXLSXReader(f *excelize.File, opts XLSXOptions) (*XLSXReader, error) {
	if opts.RowsToSkip < 0 || opts.RowsToTrim < 0 {
		return nil, apperrors.NewConfigError("rows to skip and rows to trim must be >= 0", nil)
	}

	sheet, err := selectSheet(f, opts.Worksheet)
	if err != nil {
		return nil, err
	}
	grid, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read worksheet", err).WithContext("sheet", sheet)
	}

	r := &XLSXReader{
		file:       f,
		sheet:      sheet,
		grid:       grid,
		hasHeaders: opts.HasHeaderRow,
		headers:    newHeaderIndex(),
	}
	r.measure()

	r.current = r.startRow + opts.RowsToSkip - 1
	r.headerRow = r.current
	r.finalRow = r.endRow - opts.RowsToTrim

	if r.hasHeaders && r.advance() {
		r.headerRow = r.current
		for col := r.startCol; col <= r.endCol; col++ {
			title := r.cell(r.headerRow, col)
			if strings.TrimSpace(title) == "" {
				title = columnLetter(col)
			}
			r.headers.add(title, col-r.startCol)
		}
	} else {
		r.values = make([]string, r.width())
		for col := r.startCol; col <= r.endCol; col++ {
			r.headers.add(columnLetter(col), col-r.startCol)
		}
	}
	return r, nil
}

func selectSheet(f *excelize.File, ref FieldRef) (string, error) {
	sheets := f.GetSheetList()
	if i, ok := ref.Index(); ok {
		if i < 0 || i >= len(sheets) {
			return "", apperrors.NewConfigError(fmt.Sprintf("worksheet %d does not exist", i+1), nil).
				WithContext("sheets", len(sheets))
		}
		return sheets[i], nil
	}
	if name := ref.Name(); name != "" {
		for _, s := range sheets {
			if strings.EqualFold(s, name) {
				return s, nil
			}
		}
		return "", apperrors.NewConfigError(fmt.Sprintf("worksheet %q does not exist", name), nil)
	}
	active := f.GetSheetName(f.GetActiveSheetIndex())
	if active == "" {
		if len(sheets) == 0 {
			return "", apperrors.NewConfigError("workbook has no worksheets", nil)
		}
		active = sheets[0]
	}
	return active, nil
}

// measure finds the used range: the smallest rectangle holding every
// non-empty cell. An empty sheet yields an empty range.
func (r *XLSXReader) measure() {
	r.startRow, r.endRow, r.startCol, r.endCol = 1, 0, 1, 0
	first := true
	for i, row := range r.grid {
		for j, text := range row {
			if text == "" {
				continue
			}
			rowNum, colNum := i+1, j+1
			if first {
				r.startRow, r.endRow, r.startCol, r.endCol = rowNum, rowNum, colNum, colNum
				first = false
				continue
			}
			r.startRow = min(r.startRow, rowNum)
			r.endRow = max(r.endRow, rowNum)
			r.startCol = min(r.startCol, colNum)
			r.endCol = max(r.endCol, colNum)
		}
	}
}

func (r *XLSXReader) width() int {
	return max(r.endCol-r.startCol+1, 0)
}

func (r *XLSXReader) cell(row, col int) string {
	if row < 1 || row > len(r.grid) {
		return ""
	}
	cells := r.grid[row-1]
	if col < 1 || col > len(cells) {
		return ""
	}
	return cells[col-1]
}

// advance moves to the next non-empty row without notifying listeners.
func (r *XLSXReader) advance() bool {
	for r.current < r.finalRow {
		r.current++
		values := make([]string, 0, r.width())
		nonEmpty := false
		for col := r.startCol; col <= r.endCol; col++ {
			text := r.cell(r.current, col)
			if text != "" {
				nonEmpty = true
			}
			values = append(values, text)
		}
		if nonEmpty {
			r.values = values
			return true
		}
	}
	return false
}

// Next advances to the next non-empty data row.
func (r *XLSXReader) Next() bool {
	if r.done {
		return false
	}
	if !r.advance() {
		r.done = true
		return false
	}
	r.notify(r)
	return true
}

func (r *XLSXReader) Err() error { return r.err }

func (r *XLSXReader) Field(i int) (string, bool) { return fieldAt(r.values, i) }

func (r *XLSXReader) FieldCount() int { return len(r.values) }

func (r *XLSXReader) Values() []string { return append([]string(nil), r.values...) }

func (r *XLSXReader) HasHeaders() bool { return r.hasHeaders }

// Ordinal resolves header text, or a column letter when the sheet has no
// header row.
func (r *XLSXReader) Ordinal(name string) int { return r.headers.ordinal(name) }

func (r *XLSXReader) Name(i int) (string, bool) { return r.headers.name(i) }

// RowIndex is the 1-based worksheet row of the current row.
func (r *XLSXReader) RowIndex() int { return r.current }

// RowCount is the number of rows between the header and the trimmed end,
// empty rows included.
func (r *XLSXReader) RowCount() int { return r.finalRow - r.headerRow }

// Sheet returns the worksheet name.
func (r *XLSXReader) Sheet() string { return r.sheet }

// File returns the workbook the reader reads from.
func (r *XLSXReader) File() *excelize.File { return r.file }

// HeaderRow is the worksheet row holding the headers. Without a header row
// it is the row before the first data row.
func (r *XLSXReader) HeaderRow() int { return r.headerRow }

// LastRow is the final worksheet row read, after trimming.
func (r *XLSXReader) LastRow() int { return r.finalRow }

// Columns returns the first and last used columns, 1-based.
func (r *XLSXReader) Columns() (first, last int) { return r.startCol, r.endCol }

// Close closes the workbook when the reader opened it.
func (r *XLSXReader) Close() error {
	r.done = true
	if !r.ownsFile || r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

func columnLetter(col int) string {
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return fmt.Sprintf("C%d", col)
	}
	return name
}
