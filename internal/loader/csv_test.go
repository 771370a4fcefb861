package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/divrep/divrep/internal/testhelper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := testhelper.WriteFile(t, "cfp.csv", "Name,Gender,Employment_Status,status\n"+
		"Ada,Female,Employed,Accepted\n"+
		"\"Hopper, Grace\",female,,Rejected\n")

	table, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, table.Path)
	assert.Equal(t, []string{"Name", "Gender", "Employment_Status", "status"}, table.Header)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, 4, table.Width())
	assert.Equal(t, "Hopper, Grace", table.Get(1, "name"))
	assert.Equal(t, "Female", table.Get(0, "gender"))
	assert.Equal(t, "Employed", table.Get(0, "employment status"))
	assert.Equal(t, "Accepted", table.Get(0, "STATUS"))
	assert.Equal(t, "", table.Get(0, "age"))
	assert.Equal(t, 2, table.Line(0))
	assert.Equal(t, 3, table.Line(1))
	assert.Equal(t, 0, table.Line(7))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)

	var fileErr *FileError
	require.ErrorAs(t, err, &fileErr)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Contains(t, err.Error(), "nope.csv")
}

func TestReadFormatErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantLine int
	}{
		{name: "empty", input: "", wantLine: 0},
		{name: "inconsistent field count", input: "a,b\n1,2\n1,2,3\n", wantLine: 3},
		{name: "bad quoting", input: "a,b\n1,\"x\"y\n", wantLine: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input), "input.csv")
			require.Error(t, err)

			var formatErr *FormatError
			require.ErrorAs(t, err, &formatErr)
			assert.Equal(t, "input.csv", formatErr.Path)
			assert.Equal(t, tt.wantLine, formatErr.Line)
		})
	}
}

func TestReadSkipsBOM(t *testing.T) {
	table, err := Read(strings.NewReader("\xEF\xBB\xBFgender,status\nmale,Accepted\n"), "bom.csv")
	require.NoError(t, err)

	assert.Equal(t, "gender", table.Header[0])
	_, ok := table.Column("gender")
	assert.True(t, ok)
}

func TestReadHeaderOnly(t *testing.T) {
	table, err := Read(strings.NewReader("gender,status\n"), "header.csv")
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
}

func TestInt(t *testing.T) {
	table, err := Read(strings.NewReader("label,count\nbadge 1, 12 \nbadge 2,many\nbadge 3,-4\n"), "totals.csv")
	require.NoError(t, err)

	n, err := table.Int(0, 1)
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	for _, row := range []int{1, 2} {
		_, err = table.Int(row, 1)
		var formatErr *FormatError
		require.ErrorAs(t, err, &formatErr)
		assert.Equal(t, row+2, formatErr.Line)
		assert.Contains(t, err.Error(), "expected a count")
	}

	_, err = table.Int(0, 4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected at least 5 columns")
}

func TestRecord(t *testing.T) {
	table, err := Read(strings.NewReader("gender,status\nmale,Pending\n"), "r.csv")
	require.NoError(t, err)
	assert.Equal(t, `{gender: "male", status: "Pending"}`, table.Record(0))
}
