package parser

import "github.com/divrep/divrep/internal/demographics"

// Status buckets a CFP submission is counted under.
type Status string

const (
	Accepts Status = "accepts"
	Rejects Status = "rejects"
	Totals  Status = "totals"
)

// Statuses lists the buckets in the order the simple report prints them.
var Statuses = []Status{Totals, Accepts, Rejects}

// Tally counts submissions per status, demographic type and answer. Unseen
// keys count as zero.
type Tally struct {
	counts map[Status]map[demographics.Type]map[string]int
}

// NewTally returns an empty tally.
func NewTally() *Tally {
	return &Tally{counts: make(map[Status]map[demographics.Type]map[string]int)}
}

// Inc adds one to the count for status/t/value.
func (t *Tally) Inc(status Status, typ demographics.Type, value string) {
	byType, ok := t.counts[status]
	if !ok {
		byType = make(map[demographics.Type]map[string]int)
		t.counts[status] = byType
	}
	byValue, ok := byType[typ]
	if !ok {
		byValue = make(map[string]int)
		byType[typ] = byValue
	}
	byValue[value]++
}

// Count returns the count for status/t/value.
func (t *Tally) Count(status Status, typ demographics.Type, value string) int {
	return t.counts[status][typ][value]
}

// Counts returns the counts for status/t in the given value order.
func (t *Tally) Counts(status Status, typ demographics.Type, values []string) []int {
	out := make([]int, len(values))
	for i, v := range values {
		out[i] = t.Count(status, typ, v)
	}
	return out
}

// Values returns every answer with a non-zero count for status/t, in no
// particular order.
func (t *Tally) Values(status Status, typ demographics.Type) []string {
	var values []string
	for v, n := range t.counts[status][typ] {
		if n > 0 {
			values = append(values, v)
		}
	}
	return values
}
