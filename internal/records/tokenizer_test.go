package records

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, input string) ([][]string, []string, string) {
	t.Helper()
	tok := NewTokenizer(strings.NewReader(input), ',', '"')
	var rows [][]string
	var raws []string
	for {
		ok, err := tok.Read()
		require.NoError(t, err)
		if !ok {
			return rows, raws, tok.RawLine()
		}
		rows = append(rows, append([]string(nil), tok.Fields()...))
		raws = append(raws, tok.RawLine())
	}
}

func TestTokenizer_Fields(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  [][]string
	}{
		{"simple", "abc,1,3.5", [][]string{{"abc", "1", "3.5"}}},
		{"quoted", `"abc",1,3.5`, [][]string{{"abc", "1", "3.5"}}},
		{"escaped quote", `"ab""c",1`, [][]string{{`ab"c`, "1"}}},
		{"escaped quote then fields", `"ab""c",1,3.5`, [][]string{{`ab"c`, "1", "3.5"}}},
		{"malformed quote kept literally", `"ab"c"`, [][]string{{`ab"c"`}}},
		{"malformed quote then fields", `"ab"c",1,3.5`, [][]string{{`ab"c"`, "1", "3.5"}}},
		{"delimiter inside quotes", `"a,b",c`, [][]string{{"a,b", "c"}}},
		{"empty fields", ",,", [][]string{{"", "", ""}}},
		{"trailing delimiter", "a,\n", [][]string{{"a", ""}}},
		{"leading terminators", "\r\n\n\rabc,1,3.5", [][]string{{"abc", "1", "3.5"}}},
		{"crlf records", "a,b\r\nc,d\r\n", [][]string{{"a", "b"}, {"c", "d"}}},
		{"bare cr records", "a\rb\r", [][]string{{"a"}, {"b"}}},
		{"spaces kept", " John , US ,1", [][]string{{" John ", " US ", "1"}}},
		{"byte order mark", "\ufeffname,code", [][]string{{"name", "code"}}},
		{"empty input", "", nil},
		{"only blank lines", "\n\r\n\r", nil},
		{"lf", "\n", nil},
		{"crlf", "\r\n", nil},
		{"lfcr", "\n\r", nil},
		{"two lf", "\n\n", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, _, _ := readAll(t, tt.input)
			assert.Equal(t, tt.want, rows)
		})
	}
}

func TestTokenizer_RawLinePreservesInput(t *testing.T) {
	input := "\nfirst,country\r\n\r\nJohn,US\nMary,US\n\n"
	rows, raws, trailing := readAll(t, input)

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"\nfirst,country\r", "\n\r\nJohn,US\n", "Mary,US\n"}, raws)
	assert.Equal(t, "\n", trailing)
	assert.Equal(t, input, strings.Join(raws, "")+trailing)
}

func TestTokenizer_CustomDelimiter(t *testing.T) {
	tok := NewTokenizer(strings.NewReader("a;'b;c'\n"), ';', '\'')
	ok, err := tok.Read()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b;c"}, tok.Fields())
	assert.Equal(t, ';', tok.Delimiter())
	assert.Equal(t, '\'', tok.Quote())
}

func TestSplitRawLine(t *testing.T) {
	body, term := SplitRawLine("\nJohn,US\r")
	assert.Equal(t, "\nJohn,US", body)
	assert.Equal(t, "\r", term)

	body, term = SplitRawLine("Pat,US")
	assert.Equal(t, "Pat,US", body)
	assert.Empty(t, term)
}
