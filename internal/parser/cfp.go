// Package parser turns loaded CSV exports into per-category tallies: CFP
// submissions with an acceptance status, or pre-aggregated registration
// answer counts.
package parser

import (
	"strings"

	"github.com/divrep/divrep/internal/demographics"
	"github.com/divrep/divrep/internal/loader"
	"github.com/rs/zerolog/log"
)

const statusColumn = "status"

// CFPResult accumulates everything read from a CFP export.
type CFPResult struct {
	Types  []demographics.Type
	Tally  *Tally
	Values map[demographics.Type]*demographics.ValueSet

	Submissions int
	Accepts     int
}

// NewCFPResult returns an empty result for the given categories.
func NewCFPResult(types []demographics.Type) *CFPResult {
	res := &CFPResult{
		Types:  types,
		Tally:  NewTally(),
		Values: make(map[demographics.Type]*demographics.ValueSet, len(types)),
	}
	for _, t := range types {
		res.Values[t] = &demographics.ValueSet{}
	}
	return res
}

// classifyStatus maps a CFP status to the bucket it counts toward.
func classifyStatus(status string) (Status, bool) {
	switch strings.TrimSpace(status) {
	case "Accepted", "Hold":
		return Accepts, true
	case "Rejected", "":
		return Rejects, true
	default:
		return "", false
	}
}

// ParseCFP adds every row of table to res. It stops at the first row with an
// unknown status, returning an *UnexpectedValueError.
func ParseCFP(table *loader.Table, res *CFPResult) error {
	if _, ok := table.Column(statusColumn); !ok {
		return &MissingColumnError{Column: statusColumn, Path: table.Path}
	}
	for _, t := range res.Types {
		if _, ok := table.Column(t.String()); !ok {
			log.Warn().
				Str("file", table.Path).
				Str("type", t.String()).
				Msgf("No %q column, every row counts as %q", t.String(), demographics.NoResponse)
		}
	}

	for row := 0; row < table.Len(); row++ {
		status := table.Get(row, statusColumn)
		bucket, ok := classifyStatus(status)
		if !ok {
			return &UnexpectedValueError{
				Status: status,
				Path:   table.Path,
				Line:   table.Line(row),
				Record: table.Record(row),
			}
		}

		res.Submissions++
		if bucket == Accepts {
			res.Accepts++
		}

		for _, t := range res.Types {
			value := demographics.NormalizeValue(table.Get(row, t.String()))
			res.Values[t].Add(value)
			log.Debug().
				Str("type", t.String()).
				Str("value", value).
				Str("status", status).
				Msg("Logging a submission")

			res.Tally.Inc(bucket, t, value)
			res.Tally.Inc(Totals, t, value)
		}
	}

	log.Info().
		Int("submissions", res.Submissions).
		Int("accepts", res.Accepts).
		Msg("Parsed CFP data")
	return nil
}
