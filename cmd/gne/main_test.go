package main

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gnecli/internal/infrastructure"
	"gnecli/internal/records"
	"gnecli/internal/shared/testutil"
)

// setupRun isolates a CLI run from any config file and keeps logs and
// metrics off disk.
func setupRun(t *testing.T) string {
	t.Helper()
	t.Setenv("GNE_CONFIG", "")
	t.Setenv("GNE_LOGGING_OUTPUT", "console")
	t.Setenv("GNE_LOGGING_LEVEL", "error")
	t.Setenv("GNE_TELEMETRY_ENABLE_METRICS", "false")
	infrastructure.ResetLoggerForTesting()
	t.Cleanup(infrastructure.ResetLoggerForTesting)

	dir := t.TempDir()
	testutil.WriteDictionary(t, dir)
	return dir
}

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want cliOptions
	}{
		{
			name: "long names",
			args: []string{"--firstName", "first", "--country", "cc", "in.csv"},
			want: cliOptions{firstName: "first", country: "cc", inputs: []string{"in.csv"}},
		},
		{
			name: "short aliases after the file",
			args: []string{"in.xlsx", "-f", "2", "-c", "3", "-w", "Data", "--skip", "1", "--trim", "2", "-n"},
			want: cliOptions{firstName: "2", country: "3", worksheet: "Data", rowsToSkip: 1, rowsToTrim: 2, noHeaders: true, inputs: []string{"in.xlsx"}},
		},
		{
			name: "original aliases",
			args: []string{"--firstNameColumn=first", "--cc=cc", "--patent", "pid", "--per", "inv", "--data", "d.csv", "a.csv", "b.csv"},
			want: cliOptions{firstName: "first", country: "cc", disclosure: "pid", person: "inv", dataFile: "d.csv", inputs: []string{"a.csv", "b.csv"}},
		},
		{
			name: "output and summary",
			args: []string{"-f", "1", "-c", "2", "-o", "out.csv", "-s", "sum.txt", "in.csv"},
			want: cliOptions{firstName: "1", country: "2", output: "out.csv", summary: "sum.txt", inputs: []string{"in.csv"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseArgs(tt.args, &bytes.Buffer{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestParseArgsErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing first name", []string{"-c", "2", "in.csv"}, "option --firstName is required"},
		{"missing country", []string{"-f", "1", "in.csv"}, "option --country is required"},
		{"missing input", []string{"-f", "1", "-c", "2"}, "an input file or directory is required"},
		{"non csv dictionary", []string{"-f", "1", "-c", "2", "-d", "dict.xlsx", "in.csv"}, "Only CSV data files are supported"},
		{"negative skip", []string{"-f", "1", "-c", "2", "--skip", "-1", "in.xlsx"}, "Value must be >= 0"},
		{"unknown flag", []string{"--bogus", "in.csv"}, "flag provided but not defined"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseArgs(tt.args, &bytes.Buffer{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	opts, err := parseArgs([]string{"--version"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.True(t, opts.version)

	var usage bytes.Buffer
	_, err = parseArgs([]string{"-h"}, &usage)
	assert.ErrorIs(t, err, flag.ErrHelp)
	assert.Contains(t, usage.String(), "Gender-Name Estimator")
}

func TestJobs(t *testing.T) {
	dir := t.TempDir()
	csvPath := testutil.WriteFile(t, dir, "people.csv", "first,country\n")
	xlsxPath := testutil.WriteFile(t, dir, "people.xlsx", "")
	testutil.WriteFile(t, dir, "people-appended.csv", "")
	testutil.WriteFile(t, dir, "notes.txt", "")

	t.Run("directory expands to inputs", func(t *testing.T) {
		opts := &cliOptions{firstName: "first", country: "2", person: "id", inputs: []string{dir}}
		jobs, err := opts.jobs(true)
		require.NoError(t, err)
		require.Len(t, jobs, 2)

		var inputs []string
		for _, job := range jobs {
			inputs = append(inputs, job.InputFile)
			assert.True(t, job.HasHeaders)
			assert.Equal(t, records.ColumnName("first"), job.Columns.FirstName)
			assert.Equal(t, records.ColumnIndex(1), job.Columns.CountryCode)
			assert.Equal(t, records.ColumnName("id"), job.Columns.PersonID)
			assert.True(t, job.Columns.DisclosureID.IsZero())
		}
		assert.ElementsMatch(t, []string{csvPath, xlsxPath}, inputs)
	})

	t.Run("no headers", func(t *testing.T) {
		opts := &cliOptions{firstName: "1", country: "2", noHeaders: true, inputs: []string{csvPath}}
		jobs, err := opts.jobs(true)
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.False(t, jobs[0].HasHeaders)
	})

	errorTests := []struct {
		name    string
		opts    cliOptions
		wantErr string
	}{
		{"worksheet on csv", cliOptions{firstName: "1", country: "2", worksheet: "1", inputs: []string{csvPath}}, "only valid for XLSX files"},
		{"skip on csv", cliOptions{firstName: "1", country: "2", rowsToSkip: 2, inputs: []string{csvPath}}, "only valid for XLSX files"},
		{"summary on xlsx", cliOptions{firstName: "1", country: "2", summary: "s.txt", inputs: []string{xlsxPath}}, "--summary is only valid for CSV files"},
		{"output with several inputs", cliOptions{firstName: "1", country: "2", output: "o.csv", inputs: []string{csvPath, xlsxPath}}, "single input file"},
		{"unsupported extension", cliOptions{firstName: "1", country: "2", inputs: []string{filepath.Join(dir, "notes.txt")}}, "Only CSV and XLSX input files are supported"},
		{"missing input", cliOptions{firstName: "1", country: "2", inputs: []string{filepath.Join(dir, "absent.csv")}}, "absent.csv"},
		{"zero column", cliOptions{firstName: "0", country: "2", inputs: []string{csvPath}}, "--firstName"},
	}
	for _, tt := range errorTests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.opts.jobs(true)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRunCSV(t *testing.T) {
	dir := setupRun(t)
	input := testutil.WriteFile(t, dir, "people.csv", "first,country,id\nJohn,US,p1\nMary,US,p2\nPat,US,p3\n")

	var stdout, stderr bytes.Buffer
	code := run([]string{input, "-f", "first", "--country", "country", "--person", "id",
		"--dataFile", filepath.Join(dir, "dictionary.csv")}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	output := filepath.Join(dir, "people-appended.csv")
	summary := filepath.Join(dir, "people-summary.txt")
	assert.Contains(t, stdout.String(), `Processing "`+input+`"`)
	assert.Contains(t, stdout.String(), `Results written to "`+output+`"`)
	assert.Contains(t, stdout.String(), `Summary written to "`+summary+`"`)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "first,country,id,Gender,Accuracy\nJohn,US,p1,M,1\nMary,US,p2,F,1\nPat,US,p3,I,0.5\n", string(data))

	report, err := os.ReadFile(summary)
	require.NoError(t, err)
	assert.Contains(t, string(report), "GnE Results\n")
	assert.Contains(t, string(report), "Person ID = 'id'")
}

func TestRunReportsMismatches(t *testing.T) {
	dir := setupRun(t)
	input := testutil.WriteFile(t, dir, "people.csv", "first,country,id\nJohn,US,p1\nMary,US,p1\n")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-f", "first", "-c", "country", "--person", "id",
		"-d", filepath.Join(dir, "dictionary.csv"), input}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())
	assert.Contains(t, stderr.String(), "Person [p1] has mismatched entries")
}

func TestRunBatchDirectory(t *testing.T) {
	dir := setupRun(t)
	inputs := filepath.Join(dir, "inputs")
	require.NoError(t, os.Mkdir(inputs, 0755))
	testutil.WriteFile(t, inputs, "a.csv", "first,country\nJohn,US\n")
	testutil.WriteFile(t, inputs, "b.csv", "first,country\nMary,US\n")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-f", "first", "-c", "country", "-d", filepath.Join(dir, "dictionary.csv"), inputs}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	a, err := os.ReadFile(filepath.Join(inputs, "a-appended.csv"))
	require.NoError(t, err)
	assert.Equal(t, "first,country,Gender,Accuracy\nJohn,US,M,1\n", string(a))

	b, err := os.ReadFile(filepath.Join(inputs, "b-appended.csv"))
	require.NoError(t, err)
	assert.Equal(t, "first,country,Gender,Accuracy\nMary,US,F,1\n", string(b))
}

func TestRunFailures(t *testing.T) {
	dir := setupRun(t)
	input := testutil.WriteFile(t, dir, "people.csv", "first,country\nJohn,US\n")

	t.Run("version", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		assert.Equal(t, exitOK, run([]string{"--version"}, &stdout, &stderr))
		assert.Contains(t, stdout.String(), "GnE Gender-Name Estimator v")
	})

	t.Run("usage", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		assert.Equal(t, exitUsage, run([]string{input}, &stdout, &stderr))
		assert.Contains(t, stderr.String(), "option --firstName is required")
	})

	t.Run("missing dictionary", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		code := run([]string{"-f", "first", "-c", "country", "-d", filepath.Join(dir, "absent.csv"), input}, &stdout, &stderr)
		assert.Equal(t, exitError, code)
		assert.Contains(t, stderr.String(), "Failed to load dictionary")
	})

	t.Run("output overwrites input", func(t *testing.T) {
		for _, flagName := range []string{"-o", "-s"} {
			var stdout, stderr bytes.Buffer
			code := run([]string{"-f", "first", "-c", "country", "-d", filepath.Join(dir, "dictionary.csv"),
				flagName, input, input}, &stdout, &stderr)
			assert.Equal(t, exitError, code, flagName)
			assert.Contains(t, stderr.String(), "[CONFIG]", flagName)

			data, err := os.ReadFile(input)
			require.NoError(t, err)
			assert.Equal(t, "first,country\nJohn,US\n", string(data), flagName)
		}
	})

	t.Run("unknown column", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		code := run([]string{"-f", "given", "-c", "country", "-d", filepath.Join(dir, "dictionary.csv"), input}, &stdout, &stderr)
		assert.Equal(t, exitError, code)
		assert.Contains(t, stderr.String(), `Error processing`)
		assert.NoFileExists(t, filepath.Join(dir, "people-appended.csv"))
	})
}
