// Package report lays the calculated numbers out as report blocks, one per
// demographic category, and renders them in the supported output formats.
package report

import (
	"strconv"
	"strings"

	"github.com/divrep/divrep/internal/calc"
	"github.com/divrep/divrep/internal/demographics"
	"github.com/divrep/divrep/internal/parser"
	"gopkg.in/yaml.v3"
)

// Mode identifies the kind of input a report was built from.
type Mode string

const (
	ModeCFP          Mode = "cfp"
	ModeRegistration Mode = "reg"
)

// Modes lists the accepted input types.
var Modes = []Mode{ModeCFP, ModeRegistration}

// Value is one rendered report cell: a count or a one-decimal percentage.
// It encodes as a bare number in JSON and YAML so "50.0" keeps its decimal.
type Value string

func (v Value) MarshalJSON() ([]byte, error) {
	return []byte(v), nil
}

func (v Value) MarshalYAML() (interface{}, error) {
	tag := "!!int"
	if strings.Contains(string(v), ".") {
		tag = "!!float"
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: string(v)}, nil
}

// Report is the whole output of a run.
type Report struct {
	Mode  Mode         `json:"mode" yaml:"mode"`
	Types []TypeReport `json:"types" yaml:"types"`
}

// TypeReport is the block for one demographic category. Fields and Values
// line up index by index.
type TypeReport struct {
	Type   string   `json:"type" yaml:"type"`
	Fields []string `json:"fields" yaml:"fields"`
	Values []Value  `json:"values" yaml:"values"`

	// answers and counts back the simple format, which only CFP supports.
	answers []string
	counts  map[parser.Status][]Value
}

func count(n int) Value {
	return Value(strconv.Itoa(n))
}

func pct(p calc.Pct) Value {
	return Value(p.String())
}

func (r *TypeReport) add(field string, v Value) {
	r.Fields = append(r.Fields, field)
	r.Values = append(r.Values, v)
}

// CFP builds the block for t from a parsed CFP export. fields is the
// reconciled answer order.
func CFP(res *parser.CFPResult, t demographics.Type, fields []string) TypeReport {
	r := TypeReport{
		Type:    t.String(),
		answers: append([]string(nil), fields...),
		counts:  make(map[parser.Status][]Value, len(parser.Statuses)),
	}

	for _, status := range parser.Statuses {
		for _, n := range res.Tally.Counts(status, t, fields) {
			r.counts[status] = append(r.counts[status], count(n))
		}
	}

	for _, status := range []parser.Status{parser.Totals, parser.Accepts} {
		for i, value := range fields {
			r.add(string(status)+":"+value, r.counts[status][i])
		}
	}

	r.add("total submissions", count(res.Submissions))
	r.add("total accepts", count(res.Accepts))

	rates := calc.CFP(res, t, fields)
	for _, metric := range calc.CFPMetrics {
		for _, value := range fields {
			r.add(metric+":"+value, pct(rates.Get(metric, value)))
		}
	}
	return r
}

// Registration builds the block for t from parsed registration exports.
func Registration(res *parser.RegistrationResult, t demographics.Type, fields []string) TypeReport {
	r := TypeReport{Type: t.String()}

	for _, value := range fields {
		r.add(value, count(res.Count(t, value)))
	}

	rates := calc.Registration(res, t, fields)
	for _, value := range fields {
		r.add(calc.AttendeePct+":"+value, pct(rates.Get(calc.AttendeePct, value)))
	}
	for _, value := range fields {
		if value == demographics.NoResponse {
			continue
		}
		r.add(calc.ReplyPct+":"+value, pct(rates.Get(calc.ReplyPct, value)))
	}
	return r
}
