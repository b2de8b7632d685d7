package records

import (
	"fmt"
	"io"
	"os"

	apperrors "gnecli/internal/errors"
)

// CSVOptions configures a CSVReader.
type CSVOptions struct {
	HasHeaders bool
	Delimiter  rune
	Quote      rune
}

// DefaultCSVOptions reads comma separated, double-quoted text with a
// header row.
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{HasHeaders: true, Delimiter: ',', Quote: '"'}
}

// CSVReader is a Source over delimited text.
type CSVReader struct {
	rowListeners

	tok        *Tokenizer
	closer     io.Closer
	hasHeaders bool
	headers    *headerIndex
	rawHeader  string
	haveHeader bool
	rowIndex   int
	done       bool
	err        error
}

// OpenCSV opens path and reads its header row when configured to.
func OpenCSV(path string, opts CSVOptions) (*CSVReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open CSV file", err).WithContext("path", path)
	}
	r, err := newCSVReader(f, f, opts)
	if err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

// NewCSVReader reads from r without taking ownership of it.
func NewCSVReader(r io.Reader, opts CSVOptions) (*CSVReader, error) {
	return newCSVReader(r, nil, opts)
}

func newCSVReader(r io.Reader, closer io.Closer, opts CSVOptions) (*CSVReader, error) {
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	if opts.Quote == 0 {
		opts.Quote = '"'
	}
	if opts.Delimiter == opts.Quote || isTerminator(opts.Delimiter) || isTerminator(opts.Quote) {
		return nil, apperrors.NewConfigError(
			fmt.Sprintf("invalid delimiter %q / quote %q combination", opts.Delimiter, opts.Quote), nil)
	}

	c := &CSVReader{
		tok:        NewTokenizer(r, opts.Delimiter, opts.Quote),
		closer:     closer,
		hasHeaders: opts.HasHeaders,
		rowIndex:   -1,
	}
	if !c.hasHeaders {
		return c, nil
	}

	ok, err := c.tok.Read()
	if err != nil {
		return nil, apperrors.NewStorageError("failed to read header row", err)
	}
	if ok {
		c.rowIndex++
		c.haveHeader = true
		c.rawHeader = c.tok.RawLine()
		c.headers = newHeaderIndex()
		for i, name := range c.tok.Fields() {
			c.headers.add(name, i)
		}
	}
	return c, nil
}

// Next advances to the next data row.
func (c *CSVReader) Next() bool {
	if c.done {
		return false
	}
	ok, err := c.tok.Read()
	if err != nil {
		c.err = fmt.Errorf("read record after row %d: %w", c.rowIndex, err)
		c.done = true
		return false
	}
	if !ok {
		c.done = true
		return false
	}
	c.rowIndex++
	c.notify(c)
	return true
}

func (c *CSVReader) Err() error { return c.err }

func (c *CSVReader) Field(i int) (string, bool) { return fieldAt(c.tok.Fields(), i) }

func (c *CSVReader) FieldCount() int { return len(c.tok.Fields()) }

func (c *CSVReader) Values() []string {
	return append([]string(nil), c.tok.Fields()...)
}

func (c *CSVReader) HasHeaders() bool { return c.hasHeaders }

func (c *CSVReader) Ordinal(name string) int { return c.headers.ordinal(name) }

func (c *CSVReader) Name(i int) (string, bool) { return c.headers.name(i) }

// RowIndex counts records from zero, the header row included.
func (c *CSVReader) RowIndex() int { return c.rowIndex }

// RawLine is the raw text of the current row, or after exhaustion the
// trailing text that did not form a row.
func (c *CSVReader) RawLine() string { return c.tok.RawLine() }

// RawHeaderLine is the raw text of the header row, when one was read.
func (c *CSVReader) RawHeaderLine() (string, bool) { return c.rawHeader, c.haveHeader }

// Delimiter returns the field delimiter.
func (c *CSVReader) Delimiter() rune { return c.tok.Delimiter() }

// Close releases the underlying file when the reader opened it.
func (c *CSVReader) Close() error {
	c.done = true
	if c.closer == nil {
		return nil
	}
	err := c.closer.Close()
	c.closer = nil
	return err
}
