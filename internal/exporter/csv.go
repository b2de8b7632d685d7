package exporter

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gnecli/internal/records"
	"gnecli/pkg/contracts/domain"
)

// Output column headers appended to every input.
const (
	GenderHeader   = "Gender"
	AccuracyHeader = "Accuracy"
)

// CSVAppender copies delimited input through to a new file, appending the
// gender and accuracy fields to each record. Input framing is preserved:
// every record keeps its original text, blank lines and terminator.
type CSVAppender struct {
	file      *os.File
	w         *bufio.Writer
	delimiter string
	path      string
	rows      int
}

// CreateCSVAppender creates (or truncates) the output file.
func CreateCSVAppender(path string, delimiter rune) (*CSVAppender, error) {
	slog.Debug("Creating CSV appender", slog.String("file_path", path))

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	return &CSVAppender{
		file:      file,
		w:         bufio.NewWriter(file),
		delimiter: string(delimiter),
		path:      path,
	}, nil
}

func (a *CSVAppender) write(raw string, fields ...string) error {
	body, terminator := records.SplitRawLine(raw)
	a.w.WriteString(body)
	for _, f := range fields {
		a.w.WriteString(a.delimiter)
		a.w.WriteString(f)
	}
	_, err := a.w.WriteString(terminator)
	return err
}

// WriteHeader writes the raw header line with the output column names.
func (a *CSVAppender) WriteHeader(raw string) error {
	return a.write(raw, GenderHeader, AccuracyHeader)
}

// WriteRecord writes one raw input record followed by its estimate.
func (a *CSVAppender) WriteRecord(raw string, rec domain.DataRecord) error {
	a.rows++
	return a.write(raw, rec.Gender.String(), rec.AccuracyText())
}

// WriteTrailer copies text left after the last record.
func (a *CSVAppender) WriteTrailer(raw string) error {
	_, err := a.w.WriteString(raw)
	return err
}

// Rows returns the number of records written.
func (a *CSVAppender) Rows() int { return a.rows }

// Path returns the output path.
func (a *CSVAppender) Path() string { return a.path }

// Close flushes and closes the output file.
func (a *CSVAppender) Close() error {
	if err := a.w.Flush(); err != nil {
		a.file.Close()
		return err
	}
	return a.file.Close()
}

// WriteTextFile renders the report into a new text file at path.
func WriteTextFile(path string, r Report) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	if err := WriteText(file, r); err != nil {
		file.Close()
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return file.Close()
}
