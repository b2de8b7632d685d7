package fileprocessor

import (
	"log/slog"
	"time"

	"gnecli/internal/dataprocessing"
	"gnecli/internal/files"
	"gnecli/internal/records"
	"gnecli/internal/validation"
)

// Options configures one file run. Zero values of the output paths are
// derived from the input path.
type Options struct {
	InputFile   string `json:"input_file" validate:"required"`
	OutputFile  string `json:"output_file"`
	SummaryFile string `json:"summary_file"`
	HasHeaders  bool   `json:"has_headers"`
	Delimiter   rune   `json:"delimiter" validate:"omitempty,delimiter"`

	Columns dataprocessing.Columns `json:"-"`

	// XLSX only.
	RowsToSkip int              `json:"rows_to_skip" validate:"min=0"`
	RowsToTrim int              `json:"rows_to_trim" validate:"min=0"`
	Worksheet  records.FieldRef `json:"-"`

	OnRowRead  records.RowReadFunc         `json:"-"`
	OnMismatch dataprocessing.MismatchFunc `json:"-"`

	// Now stamps the summary; time.Now when nil.
	Now    func() time.Time `json:"-"`
	Logger *slog.Logger     `json:"-"`
}

// DefaultOutputFile names the enriched copy of input: "<name>-appended<ext>".
func DefaultOutputFile(input string) string {
	return files.DerivedPath(input, files.AppendedSuffix, "")
}

// DefaultSummaryFile names the text summary of input: "<name>-summary.txt".
func DefaultSummaryFile(input string) string {
	return files.DerivedPath(input, files.SummarySuffix, ".txt")
}

var structValidator = validation.NewStructValidator()

// normalize validates o, fills in derived defaults and checks that the
// input is readable and the output directory writable.
func (o Options) normalize() (Options, error) {
	if err := structValidator.Struct(o); err != nil {
		return o, configError(err)
	}
	if o.OutputFile == "" {
		o.OutputFile = DefaultOutputFile(o.InputFile)
	}
	if o.SummaryFile == "" {
		o.SummaryFile = DefaultSummaryFile(o.InputFile)
	}
	if o.Delimiter == 0 {
		o.Delimiter = ','
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}

	fv := validation.NewFileValidator(o.Logger)
	if err := fv.ValidateInputFile(o.InputFile); err != nil {
		return o, err
	}
	if err := fv.ValidateOutputFile(o.OutputFile); err != nil {
		return o, err
	}
	return o, nil
}
