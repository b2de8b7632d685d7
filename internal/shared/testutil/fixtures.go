package testutil

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gnecli/internal/dictionary"
	"gnecli/internal/records"
)

// Dictionary is a small name-gender-code file: john is a man, mary a
// woman, and pat a tie resolved as indeterminate.
const Dictionary = `name,code,gender,wgt
john,US,M,1
mary,US,F,1
pat,US,F,0.5
pat,US,M,0.5
`

// WriteFile writes content to dir/name and returns the path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// WriteDictionary writes Dictionary to dir/dictionary.csv.
func WriteDictionary(t *testing.T, dir string) string {
	t.Helper()
	return WriteFile(t, dir, "dictionary.csv", Dictionary)
}

// LoadDictionary resolves Dictionary in memory. The info block is filled
// with fixed values.
func LoadDictionary(t *testing.T) *dictionary.Dictionary {
	t.Helper()
	src, err := records.NewCSVReader(strings.NewReader(Dictionary), records.DefaultCSVOptions())
	require.NoError(t, err)
	table, err := dictionary.Load(context.Background(), src)
	require.NoError(t, err)
	return &dictionary.Dictionary{
		Table: table,
		Info: dictionary.Info{
			Path:        "memory.csv",
			Entries:     table.Len(),
			SourceRows:  4,
			Fingerprint: "abc123",
		},
	}
}

// DiscardLogger drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
