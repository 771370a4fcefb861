// Package metrics exports the parsed tallies as a Prometheus textfile, for
// the node exporter textfile collector.
package metrics

import (
	"fmt"

	"github.com/divrep/divrep/internal/demographics"
	"github.com/divrep/divrep/internal/parser"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/stoewer/go-strcase"
)

// Status label used for registration answers, which carry no CFP status.
const attendeesStatus = "attendees"

// Recorder holds one gauge per reported count.
type Recorder struct {
	registry *prometheus.Registry

	responses *prometheus.GaugeVec
	totals    *prometheus.GaugeVec
}

// NewRecorder creates a recorder with a private registry, so the textfile
// only carries divrep series.
func NewRecorder() *Recorder {
	return NewRecorderWithRegistry(prometheus.NewRegistry())
}

// NewRecorderWithRegistry creates a recorder registered with registry.
func NewRecorderWithRegistry(registry *prometheus.Registry) *Recorder {
	r := &Recorder{
		registry: registry,
		responses: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "divrep_responses",
			Help: "Number of responses per demographic answer",
		}, []string{"mode", "type", "value", "status"}),
		totals: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "divrep_total",
			Help: "Run-wide totals (submissions, accepts, attendees)",
		}, []string{"mode", "name"}),
	}

	registry.MustRegister(r.responses)
	registry.MustRegister(r.totals)

	return r
}

// label turns a category name into a label value: "marital status" becomes
// "marital_status".
func label(t demographics.Type) string {
	return strcase.SnakeCase(t.String())
}

// ObserveCFP records every CFP tally in res.
func (r *Recorder) ObserveCFP(res *parser.CFPResult) {
	const mode = "cfp"

	r.totals.WithLabelValues(mode, "submissions").Set(float64(res.Submissions))
	r.totals.WithLabelValues(mode, "accepts").Set(float64(res.Accepts))

	for _, t := range res.Types {
		for _, value := range res.Values[t].Values() {
			for _, status := range parser.Statuses {
				r.responses.
					WithLabelValues(mode, label(t), value, string(status)).
					Set(float64(res.Tally.Count(status, t, value)))
			}
		}
	}
}

// ObserveRegistration records every registration count in res, including the
// synthetic "no response" buckets.
func (r *Recorder) ObserveRegistration(res *parser.RegistrationResult) {
	const mode = "reg"

	r.totals.WithLabelValues(mode, "attendees").Set(float64(res.Total))

	for _, t := range res.Types {
		r.totals.WithLabelValues(mode, "answered_"+label(t)).Set(float64(res.TypeTotals[t]))
		for _, value := range res.Values[t].Values() {
			r.responses.
				WithLabelValues(mode, label(t), value, attendeesStatus).
				Set(float64(res.Count(t, value)))
		}
	}
}

// WriteTextfile atomically writes every recorded series to path.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	log.Debug().Str("file", path).Msg("Wrote metrics textfile")
	return nil
}
