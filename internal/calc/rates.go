package calc

import (
	"github.com/divrep/divrep/internal/demographics"
	"github.com/divrep/divrep/internal/parser"
	"github.com/rs/zerolog/log"
)

// Metric names, also used as report field prefixes.
const (
	AcceptRate    = "accept_rate"
	SubmissionPct = "submission_pct"
	AcceptPct     = "accept_pct"
	AttendeePct   = "pct"
	ReplyPct      = "pct_replies"
)

// CFPMetrics lists the CFP metrics in report order.
var CFPMetrics = []string{AcceptRate, SubmissionPct, AcceptPct}

// Rates maps metric name → answer → percentage.
type Rates map[string]map[string]Pct

// Get returns the percentage for metric/value, zero if absent.
func (r Rates) Get(metric, value string) Pct {
	return r[metric][value]
}

// percent wraps Percent with the zero-denominator policy: the result is 0.0
// and the occurrence is logged at debug level.
func percent(t demographics.Type, metric, value string, num, den int) Pct {
	p, ok := Percent(num, den)
	if !ok {
		log.Debug().
			Str("type", t.String()).
			Str("metric", metric).
			Str("value", value).
			Msg("Zero denominator, reporting 0.0")
	}
	return p
}

// CFP computes, for every answer in fields:
//
//	accept_rate    share of that answer's submissions that were accepted
//	submission_pct share of all submissions that gave that answer
//	accept_pct     share of all accepted submissions that gave that answer
func CFP(res *parser.CFPResult, t demographics.Type, fields []string) Rates {
	rates := Rates{
		AcceptRate:    make(map[string]Pct, len(fields)),
		SubmissionPct: make(map[string]Pct, len(fields)),
		AcceptPct:     make(map[string]Pct, len(fields)),
	}

	for _, value := range fields {
		log.Debug().Str("type", t.String()).Str("value", value).Msg("Crunching numbers")

		accepts := res.Tally.Count(parser.Accepts, t, value)
		totals := res.Tally.Count(parser.Totals, t, value)

		rates[AcceptRate][value] = percent(t, AcceptRate, value, accepts, totals)
		rates[SubmissionPct][value] = percent(t, SubmissionPct, value, totals, res.Submissions)
		rates[AcceptPct][value] = percent(t, AcceptPct, value, accepts, res.Accepts)
	}
	return rates
}

// Registration computes, for every answer in fields, its share of all
// attendees (pct) and, except for "no response", its share of the attendees
// who answered the question (pct_replies).
func Registration(res *parser.RegistrationResult, t demographics.Type, fields []string) Rates {
	rates := Rates{
		AttendeePct: make(map[string]Pct, len(fields)),
		ReplyPct:    make(map[string]Pct, len(fields)),
	}

	for _, value := range fields {
		n := res.Count(t, value)
		rates[AttendeePct][value] = percent(t, AttendeePct, value, n, res.Total)
		if value == demographics.NoResponse {
			continue
		}
		rates[ReplyPct][value] = percent(t, ReplyPct, value, n, res.TypeTotals[t])
	}
	return rates
}
