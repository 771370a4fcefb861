package parser

import (
	"fmt"
	"strings"

	"github.com/divrep/divrep/internal/demographics"
	"github.com/divrep/divrep/internal/loader"
	"github.com/rs/zerolog/log"
)

// Column positions in the registration exports. The demographics export is
// question_id, question_text, answer_id, answer_text, num_attendees; the
// totals export is badge_type_id, count.
const (
	regTypeColumn     = 1
	regValueColumn    = 3
	regCountColumn    = 4
	totalsCountColumn = 1
)

// RegistrationResult holds the pre-aggregated answer counts from the
// registration system.
type RegistrationResult struct {
	Types  []demographics.Type
	Counts map[demographics.Type]map[string]int
	Values map[demographics.Type]*demographics.ValueSet

	// Total is the number of valid attendees across all badge types.
	Total int
	// TypeTotals is the number of attendees who answered each question.
	TypeTotals map[demographics.Type]int
}

// NewRegistrationResult returns an empty result for the given categories.
func NewRegistrationResult(types []demographics.Type) *RegistrationResult {
	res := &RegistrationResult{
		Types:      types,
		Counts:     make(map[demographics.Type]map[string]int, len(types)),
		Values:     make(map[demographics.Type]*demographics.ValueSet, len(types)),
		TypeTotals: make(map[demographics.Type]int, len(types)),
	}
	for _, t := range types {
		res.Counts[t] = make(map[string]int)
		res.Values[t] = &demographics.ValueSet{}
	}
	return res
}

// Count returns the attendee count for t/value.
func (r *RegistrationResult) Count(t demographics.Type, value string) int {
	return r.Counts[t][value]
}

// ParseRegistration reads the demographics export and the badge totals
// export into res.
//
// Registration only records answers people gave, so once the rows are read
// each category gets a synthetic "no response" bucket holding everyone who
// skipped the question.
func ParseRegistration(demo, totals *loader.Table, res *RegistrationResult) error {
	if totals.Width() <= totalsCountColumn {
		return &loader.FormatError{
			Path: totals.Path,
			Err:  fmt.Errorf("expected at least %d columns, found %d", totalsCountColumn+1, totals.Width()),
		}
	}
	if demo.Width() <= regCountColumn {
		return &loader.FormatError{
			Path: demo.Path,
			Err:  fmt.Errorf("expected at least %d columns, found %d", regCountColumn+1, demo.Width()),
		}
	}

	res.Total = 0
	for row := 0; row < totals.Len(); row++ {
		n, err := totals.Int(row, totalsCountColumn)
		if err != nil {
			return err
		}
		res.Total += n
	}

	for row := 0; row < demo.Len(); row++ {
		typ := demographics.Type(demographics.NormalizeName(demo.Rows[row][regTypeColumn]))
		value := strings.ToLower(strings.TrimSpace(demo.Rows[row][regValueColumn]))
		log.Debug().Str("type", typ.String()).Str("value", value).Msg("Logging a registration answer")

		if !demographics.Contains(res.Types, typ) {
			return &UnrecognizedTypeError{
				Type:   typ.String(),
				Path:   demo.Path,
				Line:   demo.Line(row),
				Active: res.Types,
			}
		}

		count, err := demo.Int(row, regCountColumn)
		if err != nil {
			return err
		}

		res.Values[typ].Add(value)
		res.TypeTotals[typ] += count
		res.Counts[typ][value] = count
	}

	for _, t := range res.Types {
		missing := res.Total - res.TypeTotals[t]
		if missing < 0 {
			log.Warn().
				Str("type", t.String()).
				Int("total", res.Total).
				Int("answered", res.TypeTotals[t]).
				Msg("More answers than attendees, no response bucket set to 0")
			missing = 0
		}
		res.Counts[t][demographics.NoResponse] = missing
		res.Values[t].Add(demographics.NoResponse)
	}

	log.Info().
		Int("attendees", res.Total).
		Int("answers", demo.Len()).
		Msg("Parsed registration data")
	return nil
}
