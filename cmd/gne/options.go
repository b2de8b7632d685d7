package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gnecli/internal/dataprocessing"
	"gnecli/internal/fileprocessor"
	"gnecli/internal/files"
	"gnecli/internal/records"
	"gnecli/internal/validation"
)

const description = `GnE (pronounced "Genie" - the Gender-Name Estimator) takes an incoming XLSX or CSV file
and outputs an appended version with additional columns for Gender and Accuracy based upon
incoming columns for First Name and Country of Origin along with a summarized analysis of results.

Usage: gne [options] <file|directory>...`

// cliOptions holds the parsed command line.
type cliOptions struct {
	firstName  string
	country    string
	person     string
	disclosure string
	dataFile   string
	output     string
	summary    string
	noHeaders  bool
	rowsToSkip int
	rowsToTrim int
	worksheet  string
	version    bool

	inputs []string
}

func stringFlag(fs *flag.FlagSet, p *string, usage string, names ...string) {
	fs.StringVar(p, names[0], "", usage)
	for _, alias := range names[1:] {
		fs.StringVar(p, alias, "", "alias for --"+names[0])
	}
}

func intFlag(fs *flag.FlagSet, p *int, usage string, names ...string) {
	fs.IntVar(p, names[0], 0, usage)
	for _, alias := range names[1:] {
		fs.IntVar(p, alias, 0, "alias for --"+names[0])
	}
}

func boolFlag(fs *flag.FlagSet, p *bool, usage string, names ...string) {
	fs.BoolVar(p, names[0], false, usage)
	for _, alias := range names[1:] {
		fs.BoolVar(p, alias, false, "alias for --"+names[0])
	}
}

func newFlagSet(opts *cliOptions, output io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("gne", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintln(output, description)
		fmt.Fprintln(output)
		fs.PrintDefaults()
	}

	stringFlag(fs, &opts.firstName, "The name or index of the column containing the first name (required)",
		"firstNameColumn", "firstName", "fnc", "fn", "f")
	stringFlag(fs, &opts.country, "The name or index of the column containing the two-character code for the country of origin (required)",
		"countryColumn", "country", "cc", "c")
	stringFlag(fs, &opts.person, "The name or index of the column containing the unique person identifier. If not supplied, the combination of first name and country code are assumed to be unique",
		"personColumn", "person", "per")
	stringFlag(fs, &opts.disclosure, "The name or index of the column containing the unique disclosure / patent identifier",
		"disclosureColumn", "disclosure", "dis", "patentColumn", "patent", "pat")
	stringFlag(fs, &opts.dataFile, "The path to the World Gender-Name Dictionary name-gender-code CSV file. It defaults to the configured dictionary",
		"dataFile", "data", "d")
	stringFlag(fs, &opts.output, `The path to the output file. It defaults to the input file name with "-appended" before the extension`,
		"output", "o")
	stringFlag(fs, &opts.summary, `The path to the output summary file. It defaults to the input file name with "-summary.txt" in place of the extension. CSV only`,
		"summary", "s")
	boolFlag(fs, &opts.noHeaders, "Indicates that the input file does not have a header row",
		"no-headers", "nh", "n")
	intFlag(fs, &opts.rowsToSkip, "The number of input rows to skip. XLSX only, must be >= 0",
		"rows-to-skip", "skip")
	intFlag(fs, &opts.rowsToTrim, "The number of input rows to trim from the end of the data set. XLSX only, must be >= 0",
		"rows-to-trim", "trim")
	stringFlag(fs, &opts.worksheet, "The name or index of the worksheet to process. XLSX only, defaults to the active worksheet",
		"worksheet", "sheet", "w")
	boolFlag(fs, &opts.version, "Print the version and exit", "version")
	return fs
}

// parseArgs parses args. Options may appear anywhere among the input
// paths.
func parseArgs(args []string, output io.Writer) (*cliOptions, error) {
	opts := &cliOptions{}
	fs := newFlagSet(opts, output)

	rest := args
	for {
		if err := fs.Parse(rest); err != nil {
			return nil, err
		}
		rest = fs.Args()
		if len(rest) == 0 {
			break
		}
		opts.inputs = append(opts.inputs, rest[0])
		rest = rest[1:]
	}

	if opts.version {
		return opts, nil
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

func (o *cliOptions) validate() error {
	var errs []error
	if strings.TrimSpace(o.firstName) == "" {
		errs = append(errs, errors.New("option --firstName is required"))
	}
	if strings.TrimSpace(o.country) == "" {
		errs = append(errs, errors.New("option --country is required"))
	}
	if len(o.inputs) == 0 {
		errs = append(errs, errors.New("an input file or directory is required"))
	}
	if o.dataFile != "" && !strings.EqualFold(filepath.Ext(o.dataFile), validation.ExtCSV) {
		errs = append(errs, errors.New("--dataFile: Only CSV data files are supported"))
	}
	if o.rowsToSkip < 0 {
		errs = append(errs, errors.New("--rows-to-skip: Value must be >= 0"))
	}
	if o.rowsToTrim < 0 {
		errs = append(errs, errors.New("--rows-to-trim: Value must be >= 0"))
	}
	return errors.Join(errs...)
}

// columns parses the column references.
func (o *cliOptions) columns() (dataprocessing.Columns, error) {
	var cols dataprocessing.Columns
	var err error
	refs := []struct {
		flag string
		raw  string
		dst  *records.FieldRef
	}{
		{"--firstName", o.firstName, &cols.FirstName},
		{"--country", o.country, &cols.CountryCode},
		{"--person", o.person, &cols.PersonID},
		{"--disclosure", o.disclosure, &cols.DisclosureID},
	}
	for _, ref := range refs {
		if *ref.dst, err = records.ParseFieldRef(ref.raw); err != nil {
			return cols, fmt.Errorf("%s: %w", ref.flag, err)
		}
	}
	return cols, nil
}

// expandInputs replaces directory arguments with the CSV and XLSX files
// they contain.
func (o *cliOptions) expandInputs() ([]string, error) {
	discovery := files.NewDiscovery("", validation.ExtCSV, validation.ExtXLSX)

	var inputs []string
	for _, in := range o.inputs {
		info, err := os.Stat(in)
		if err != nil {
			return nil, fmt.Errorf("input %q: %w", in, err)
		}
		if !info.IsDir() {
			inputs = append(inputs, in)
			continue
		}
		found, err := discovery.FindInputs(in)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("no CSV or XLSX files found in %q", in)
		}
		for _, f := range found {
			inputs = append(inputs, f.Path)
		}
	}
	return inputs, nil
}

// jobs builds one set of processing options per input file and rejects
// options that do not apply to a file's type.
func (o *cliOptions) jobs(hasHeaders bool) ([]fileprocessor.Options, error) {
	inputs, err := o.expandInputs()
	if err != nil {
		return nil, err
	}
	if len(inputs) > 1 && (o.output != "" || o.summary != "") {
		return nil, errors.New("--output and --summary can only be used with a single input file")
	}

	cols, err := o.columns()
	if err != nil {
		return nil, err
	}
	worksheet, err := records.ParseFieldRef(o.worksheet)
	if err != nil {
		return nil, fmt.Errorf("--worksheet: %w", err)
	}

	jobs := make([]fileprocessor.Options, 0, len(inputs))
	for _, in := range inputs {
		abs, err := filepath.Abs(in)
		if err != nil {
			return nil, err
		}
		ext := strings.ToLower(filepath.Ext(abs))
		switch ext {
		case validation.ExtCSV:
			if o.worksheet != "" || o.rowsToSkip > 0 || o.rowsToTrim > 0 {
				return nil, fmt.Errorf("%q: --worksheet, --rows-to-skip and --rows-to-trim are only valid for XLSX files", in)
			}
		case validation.ExtXLSX:
			if o.summary != "" {
				return nil, fmt.Errorf("%q: --summary is only valid for CSV files", in)
			}
		default:
			return nil, fmt.Errorf("%q: Only CSV and XLSX input files are supported", in)
		}

		job := fileprocessor.Options{
			InputFile:  abs,
			HasHeaders: hasHeaders && !o.noHeaders,
			Columns:    cols,
			RowsToSkip: o.rowsToSkip,
			RowsToTrim: o.rowsToTrim,
			Worksheet:  worksheet,
		}
		if o.output != "" {
			if job.OutputFile, err = filepath.Abs(o.output); err != nil {
				return nil, err
			}
		}
		if o.summary != "" {
			if job.SummaryFile, err = filepath.Abs(o.summary); err != nil {
				return nil, err
			}
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}
