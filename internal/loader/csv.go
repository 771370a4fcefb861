// Package loader reads the CSV exports a report is built from into memory.
package loader

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/divrep/divrep/internal/demographics"
	"github.com/rs/zerolog/log"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is a fully loaded CSV file: a header row and the data rows below it.
// Every row has exactly as many cells as the header.
type Table struct {
	Path   string
	Header []string
	Rows   [][]string

	lines []int
	index map[string]int
}

// Load opens path and reads it as a Table.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}
	defer f.Close()

	table, err := Read(f, path)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("file", path).
		Int("rows", table.Len()).
		Strs("header", table.Header).
		Msg("Loaded CSV file")
	return table, nil
}

// Read parses CSV from r. name is only used in errors.
func Read(r io.Reader, name string) (*Table, error) {
	br := bufio.NewReader(r)
	if prefix, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(prefix, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = 0

	table := &Table{Path: name, index: make(map[string]int)}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, formatErrorFrom(name, err)
		}

		if table.Header == nil {
			table.Header = record
			for i, column := range record {
				key := demographics.NormalizeName(column)
				if _, dup := table.index[key]; !dup {
					table.index[key] = i
				}
			}
			continue
		}

		line, _ := reader.FieldPos(0)
		table.Rows = append(table.Rows, record)
		table.lines = append(table.lines, line)
	}

	if table.Header == nil {
		return nil, &FormatError{Path: name, Err: errors.New("file is empty, expected a header row")}
	}
	return table, nil
}

func formatErrorFrom(name string, err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return &FormatError{Path: name, Line: parseErr.Line, Err: parseErr.Err}
	}
	return &FileError{Path: name, Err: err}
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Width returns the number of columns.
func (t *Table) Width() int {
	return len(t.Header)
}

// Line returns the 1-based line a data row starts on.
func (t *Table) Line(row int) int {
	if row < 0 || row >= len(t.lines) {
		return 0
	}
	return t.lines[row]
}

// Column looks a column up by name. Lookup ignores case, surrounding
// whitespace and the difference between "_" and " ".
func (t *Table) Column(name string) (int, bool) {
	i, ok := t.index[demographics.NormalizeName(name)]
	return i, ok
}

// Get returns the cell of row in the named column, or "" if there is no
// such column.
func (t *Table) Get(row int, column string) string {
	i, ok := t.Column(column)
	if !ok {
		return ""
	}
	return t.Rows[row][i]
}

// Int parses the cell at row/col as a non-negative integer.
func (t *Table) Int(row, col int) (int, error) {
	if col >= t.Width() {
		return 0, &FormatError{
			Path: t.Path,
			Line: t.Line(row),
			Err:  fmt.Errorf("expected at least %d columns, found %d", col+1, t.Width()),
		}
	}

	cell := strings.TrimSpace(t.Rows[row][col])
	n, err := strconv.Atoi(cell)
	if err != nil || n < 0 {
		return 0, &FormatError{
			Path: t.Path,
			Line: t.Line(row),
			Err:  fmt.Errorf("column %d (%s): expected a count, got %q", col+1, t.Header[col], cell),
		}
	}
	return n, nil
}

// Record renders a row as "column: value" pairs for error messages.
func (t *Table) Record(row int) string {
	parts := make([]string, len(t.Header))
	for i, column := range t.Header {
		parts[i] = fmt.Sprintf("%s: %q", column, t.Rows[row][i])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
