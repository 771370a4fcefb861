package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/divrep/divrep/internal/parser"
	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

// Format is an output format.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatSimple Format = "simple"
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
)

// Formats lists the accepted output types.
var Formats = []Format{FormatCSV, FormatSimple, FormatJSON, FormatYAML}

// ErrSimpleUnsupported is returned when simple output is requested for
// registration data.
var ErrSimpleUnsupported = errors.New("simple output is not implemented for registration data")

var simpleLabels = map[parser.Status]string{
	parser.Totals:  "Submissions",
	parser.Accepts: "Accepts",
	parser.Rejects: "Rejects",
}

// Write renders r in format to w. Nothing is written unless the whole report
// renders.
func Write(w io.Writer, r *Report, format Format) error {
	var buf bytes.Buffer

	switch format {
	case FormatCSV:
		writeCSV(&buf, r)
	case FormatSimple:
		if r.Mode == ModeRegistration {
			return ErrSimpleUnsupported
		}
		writeSimple(&buf, r, headerColor(w))
	case FormatJSON:
		encoder := json.NewEncoder(&buf)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(r); err != nil {
			return fmt.Errorf("encoding JSON report: %w", err)
		}
	case FormatYAML:
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(r); err != nil {
			return fmt.Errorf("encoding YAML report: %w", err)
		}
		if err := encoder.Close(); err != nil {
			return fmt.Errorf("encoding YAML report: %w", err)
		}
	default:
		return fmt.Errorf("unknown output type %q", format)
	}

	_, err := buf.WriteTo(w)
	return err
}

// headerColor bolds section headers, but only when w is the terminal.
func headerColor(w io.Writer) *color.Color {
	c := color.New(color.Bold)
	if _, ok := w.(*os.File); !ok {
		c.DisableColor()
	}
	return c
}

func joinValues(values []Value) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

func writeCSV(w io.Writer, r *Report) {
	for _, t := range r.Types {
		fmt.Fprintln(w, strings.ToUpper(t.Type))
		fmt.Fprintf(w, "# %s\n", strings.Join(t.Fields, ", "))
		fmt.Fprintln(w, joinValues(t.Values))
		fmt.Fprintln(w)
	}
}

func writeSimple(w io.Writer, r *Report, header *color.Color) {
	for _, t := range r.Types {
		fmt.Fprintln(w, header.Sprint(strings.ToUpper(t.Type)))
		fmt.Fprintf(w, "\tPossible values: %s\n", strings.Join(t.answers, ", "))
		for _, status := range parser.Statuses {
			fmt.Fprintf(w, "\t%s:\n", simpleLabels[status])
			fmt.Fprintf(w, "\t%s\n", joinValues(t.counts[status]))
		}
		fmt.Fprintln(w)
	}
}
