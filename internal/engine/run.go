// Package engine runs one report: load, parse, reconcile, calculate, render.
package engine

import (
	"fmt"
	"time"

	"github.com/divrep/divrep/internal/config"
	"github.com/divrep/divrep/internal/demographics"
	"github.com/divrep/divrep/internal/execcontext"
	"github.com/divrep/divrep/internal/loader"
	"github.com/divrep/divrep/internal/metrics"
	"github.com/divrep/divrep/internal/parser"
	"github.com/divrep/divrep/internal/report"
	"github.com/rs/zerolog/log"
)

// RunResult describes a completed run.
type RunResult struct {
	Report    *report.Report
	StartTime time.Time
	Duration  time.Duration
	// Warnings counts categories whose preferred order did not match the
	// data.
	Warnings int
}

// Runner executes report runs.
type Runner struct {
	newRecorder func() *metrics.Recorder
}

// RunnerOption is a function that can be used to configure a Runner.
type RunnerOption func(*Runner)

// WithRecorderFunc sets how the metrics recorder is created when a metrics
// file is requested.
func WithRecorderFunc(newRecorder func() *metrics.Recorder) RunnerOption {
	return func(r *Runner) {
		r.newRecorder = newRecorder
	}
}

// NewRunner creates a runner.
func NewRunner(options ...RunnerOption) *Runner {
	r := &Runner{
		newRecorder: metrics.NewRecorder,
	}

	for _, option := range options {
		option(r)
	}

	return r
}

// Run produces the report described by opts on ctx.StdOut. On error nothing
// is written to ctx.StdOut.
func (r *Runner) Run(ctx execcontext.RunContext, opts *config.Options) (*RunResult, error) {
	result := &RunResult{StartTime: time.Now()}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefs := opts.Preferences
	if prefs == nil {
		prefs = demographics.DefaultPreferences()
	}

	data, err := loader.Load(opts.DataFile)
	if err != nil {
		return nil, err
	}

	var (
		rep     = &report.Report{Mode: opts.InputType}
		observe func(*metrics.Recorder)
	)

	switch opts.InputType {
	case report.ModeCFP:
		res := parser.NewCFPResult(opts.DemoTypes)
		if err := parser.ParseCFP(data, res); err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for _, t := range opts.DemoTypes {
			rec := prefs.Reconcile(t, res.Values[t])
			result.Warnings += rec.Warnings()
			rep.Types = append(rep.Types, report.CFP(res, t, rec.Fields))
		}
		observe = func(m *metrics.Recorder) { m.ObserveCFP(res) }

	case report.ModeRegistration:
		totals, err := loader.Load(opts.TotalsCSV)
		if err != nil {
			return nil, err
		}
		res := parser.NewRegistrationResult(opts.DemoTypes)
		if err := parser.ParseRegistration(data, totals, res); err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		prefs = prefs.ForRegistration()
		for _, t := range opts.DemoTypes {
			rec := prefs.Reconcile(t, res.Values[t])
			result.Warnings += rec.Warnings()
			rep.Types = append(rep.Types, report.Registration(res, t, rec.Fields))
		}
		observe = func(m *metrics.Recorder) { m.ObserveRegistration(res) }

	default:
		return nil, fmt.Errorf("unknown input type %q", opts.InputType)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := report.Write(ctx, rep, opts.OutputType); err != nil {
		return nil, err
	}

	if opts.MetricsFile != "" {
		recorder := r.newRecorder()
		observe(recorder)
		if err := recorder.WriteTextfile(opts.MetricsFile); err != nil {
			return nil, err
		}
	}

	result.Report = rep
	result.Duration = time.Since(result.StartTime)

	log.Info().
		Str("mode", string(opts.InputType)).
		Int("types", len(rep.Types)).
		Dur("duration", result.Duration).
		Msg("Report complete")

	return result, nil
}
