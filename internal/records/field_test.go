package records

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFieldRef(t *testing.T) {
	ref, err := ParseFieldRef("3")
	require.NoError(t, err)
	i, ok := ref.Index()
	assert.True(t, ok)
	assert.Equal(t, 2, i)

	ref, err = ParseFieldRef(" first ")
	require.NoError(t, err)
	assert.Equal(t, "first", ref.Name())

	ref, err = ParseFieldRef("")
	require.NoError(t, err)
	assert.True(t, ref.IsZero())

	_, err = ParseFieldRef("0")
	assert.Error(t, err)
}

func TestFieldRef_Resolve(t *testing.T) {
	withHeaders, err := NewCSVReader(strings.NewReader("first,country\nJohn,US\n"), DefaultCSVOptions())
	require.NoError(t, err)

	i, ok := ColumnName("country").Resolve(withHeaders)
	assert.True(t, ok)
	assert.Equal(t, 1, i)

	_, ok = ColumnName("missing").Resolve(withHeaders)
	assert.False(t, ok)

	noHeaders, err := NewCSVReader(strings.NewReader("John,US\n"), CSVOptions{})
	require.NoError(t, err)
	_, ok = ColumnName("country").Resolve(noHeaders)
	assert.False(t, ok)

	i, ok = ColumnIndex(1).Resolve(noHeaders)
	assert.True(t, ok)
	assert.Equal(t, 1, i)
}

func TestFieldRef_Describe(t *testing.T) {
	withHeaders, err := NewCSVReader(strings.NewReader("first,country\n"), DefaultCSVOptions())
	require.NoError(t, err)
	noHeaders, err := NewCSVReader(strings.NewReader(""), CSVOptions{})
	require.NoError(t, err)

	assert.Equal(t, "'first'", ColumnName("first").Describe(withHeaders))
	assert.Equal(t, "'country'", ColumnIndex(1).Describe(withHeaders))
	assert.Equal(t, "unknown", ColumnIndex(5).Describe(withHeaders))
	assert.Equal(t, "unused", FieldRef{}.Describe(withHeaders))
	assert.Equal(t, "0", ColumnIndex(0).Describe(noHeaders))
}
