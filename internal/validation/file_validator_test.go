package validation

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "gnecli/internal/errors"
)

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("name,code\n"), 0644))
	return path
}

func TestFileValidator_ValidateInputFile(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name          string
		path          string
		wantErr       bool
		wantType      apperrors.ErrorType
		errorContains string
	}{
		{name: "csv file", path: writeFile(t, dir, "people.csv")},
		{name: "upper case extension", path: writeFile(t, dir, "PEOPLE.CSV")},
		{name: "xlsx file", path: writeFile(t, dir, "people.xlsx")},
		{name: "lock file", path: writeFile(t, dir, "~$people.xlsx"), wantErr: true, errorContains: "temporary"},
		{name: "legacy xls", path: writeFile(t, dir, "people.xls"), wantErr: true, errorContains: "not a CSV or XLSX"},
		{name: "text file", path: writeFile(t, dir, "people.txt"), wantErr: true, errorContains: "not a CSV or XLSX"},
		{name: "missing", path: filepath.Join(dir, "missing.csv"), wantErr: true, wantType: apperrors.ErrTypeNotFound, errorContains: "not found"},
		{name: "directory", path: dir + string(os.PathSeparator) + ".", wantErr: true},
	}

	v := NewFileValidator(slog.Default())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateInputFile(tt.path)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			wantType := tt.wantType
			if wantType == "" {
				wantType = apperrors.ErrTypeConfig
			}
			assert.True(t, apperrors.IsType(err, wantType), "got %v", err)
			if tt.errorContains != "" {
				assert.Contains(t, err.Error(), tt.errorContains)
			}
		})
	}
}

func TestFileValidator_ValidateFileRejectsDirectory(t *testing.T) {
	v := NewFileValidator(nil)
	err := v.ValidateFile(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a directory")
}

func TestFileValidator_ValidateDictionaryFile(t *testing.T) {
	dir := t.TempDir()
	v := NewFileValidator(nil)

	assert.NoError(t, v.ValidateDictionaryFile(writeFile(t, dir, "dict.csv")))

	err := v.ValidateDictionaryFile(filepath.Join(dir, "absent.csv"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
	assert.Contains(t, err.Error(), "dictionary file is not readable")
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	v := NewFileValidator(nil)
	dir := filepath.Join(t.TempDir(), "nested", "out")

	require.NoError(t, v.ValidateOutputDirectory(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFileValidator_ValidateOutputFile(t *testing.T) {
	v := NewFileValidator(nil)
	dir := t.TempDir()

	assert.NoError(t, v.ValidateOutputFile(filepath.Join(dir, "out.csv")))
	assert.Error(t, v.ValidateOutputFile(dir))
}
