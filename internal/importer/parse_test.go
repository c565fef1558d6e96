package importer

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_RowCount(t *testing.T) {
	data, err := os.ReadFile("testdata/checking.csv")
	require.NoError(t, err)

	rows, err := Parse(string(data))
	require.NoError(t, err)
	// Header plus six data lines.
	assert.Len(t, rows, 7)
	assert.Equal(t, "Posting Date", rows[0][1])
}

func TestParse_QuotedComma(t *testing.T) {
	rows, err := Parse("h1,h2,h3\na,\"b,c\",d")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, RawRow{"a", "b,c", "d"}, rows[1])
}

func TestParse_QuotesToggleWithoutEscape(t *testing.T) {
	// "" closes and reopens the quoted section; no literal quote survives.
	rows, err := Parse("h\n\"say \"\"hi\"\", ok\"")
	require.NoError(t, err)
	assert.Equal(t, RawRow{"say hi, ok"}, rows[1])
}

func TestParse_TrimsFields(t *testing.T) {
	rows, err := Parse("  a , b \n 1 ,  2  ")
	require.NoError(t, err)
	assert.Equal(t, RawRow{"a", "b"}, rows[0])
	assert.Equal(t, RawRow{"1", "2"}, rows[1])
}

func TestParse_CRLF(t *testing.T) {
	rows, err := Parse("Date,Amount\r\n2026-01-01,5\r\n2026-01-02,6\r\n")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, RawRow{"2026-01-02", "6"}, rows[2])
}

func TestParse_StripsBOM(t *testing.T) {
	rows, err := Parse("\ufeffDate,Amount\n2026-01-01,5")
	require.NoError(t, err)
	assert.Equal(t, "Date", rows[0][0])
}

func TestParse_TooFewLines(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"whitespace", "  \n\n  "},
		{"header only", "Date,Description,Amount"},
		{"header with trailing newline", "Date,Description,Amount\n\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			assert.ErrorIs(t, err, ErrTooFewLines)
		})
	}
}

func TestParse_RaggedRows(t *testing.T) {
	rows, err := Parse("a,b,c\n1\n1,2,3,4")
	require.NoError(t, err)
	assert.Len(t, rows[1], 1)
	assert.Len(t, rows[2], 4)
}

func TestRawRow_Field(t *testing.T) {
	r := RawRow{"x", "y"}
	assert.Equal(t, "y", r.Field(1))
	assert.Equal(t, "", r.Field(2))
	assert.Equal(t, "", r.Field(-1))
}
