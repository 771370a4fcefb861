package engine

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/divrep/divrep/internal/config"
	"github.com/divrep/divrep/internal/demographics"
	"github.com/divrep/divrep/internal/execcontext"
	"github.com/divrep/divrep/internal/loader"
	"github.com/divrep/divrep/internal/metrics"
	"github.com/divrep/divrep/internal/parser"
	"github.com/divrep/divrep/internal/report"
	"github.com/divrep/divrep/internal/testhelper"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cfpData = `name,gender,age,status
A,Male,25-34,Accepted
B,Female,18-24,Rejected
C,Male,25-34,Hold
`

func runContext(ctx context.Context) (execcontext.RunContext, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return execcontext.RunContext{
		Context: ctx,
		StdOut:  out,
		StdErr:  &bytes.Buffer{},
	}, out
}

func cfpOptions(t *testing.T, data string) *config.Options {
	t.Helper()
	return &config.Options{
		DataFile:    testhelper.WriteFile(t, "cfp.csv", data),
		DemoTypes:   []demographics.Type{demographics.Gender},
		OutputType:  report.FormatCSV,
		InputType:   report.ModeCFP,
		Preferences: demographics.Preferences{demographics.Gender: {"male", "female"}},
	}
}

func TestRunCFP(t *testing.T) {
	ctx, out := runContext(context.Background())

	result, err := NewRunner().Run(ctx, cfpOptions(t, cfpData))
	require.NoError(t, err)

	expected := "GENDER\n" +
		"# totals:male, totals:female, accepts:male, accepts:female, total submissions, total accepts, " +
		"accept_rate:male, accept_rate:female, submission_pct:male, submission_pct:female, accept_pct:male, accept_pct:female\n" +
		"2, 1, 2, 0, 3, 2, 100.0, 0.0, 66.7, 33.3, 100.0, 0.0\n" +
		"\n"
	assert.Equal(t, expected, out.String())
	require.Len(t, result.Report.Types, 1)
	assert.Zero(t, result.Warnings)
}

func TestRunCFPAllTypesInOrder(t *testing.T) {
	ctx, out := runContext(context.Background())
	opts := cfpOptions(t, cfpData)
	opts.DemoTypes = []demographics.Type{demographics.Age, demographics.Gender}
	opts.Preferences = nil

	result, err := NewRunner().Run(ctx, opts)
	require.NoError(t, err)

	require.Len(t, result.Report.Types, 2)
	assert.Equal(t, "age", result.Report.Types[0].Type)
	assert.Equal(t, "gender", result.Report.Types[1].Type)
	assert.Regexp(t, `^AGE\n`, out.String())
	assert.Contains(t, out.String(), "\n\nGENDER\n")
	// age: preferred answers nobody gave; gender: other, prefer not to say, non-binary
	assert.Equal(t, 2, result.Warnings)
}

func TestRunUnexpectedStatusWritesNothing(t *testing.T) {
	ctx, out := runContext(context.Background())
	opts := cfpOptions(t, "name,gender,status\nA,Male,Accepted\nB,Female,Pending\n")

	_, err := NewRunner().Run(ctx, opts)

	var unexpected *parser.UnexpectedValueError
	require.ErrorAs(t, err, &unexpected)
	assert.Equal(t, "Pending", unexpected.Status)
	assert.Equal(t, 3, unexpected.Line)
	assert.Empty(t, out.String())
}

func TestRunMissingFile(t *testing.T) {
	ctx, out := runContext(context.Background())
	opts := cfpOptions(t, cfpData)
	opts.DataFile = filepath.Join(t.TempDir(), "nope.csv")

	_, err := NewRunner().Run(ctx, opts)

	var fileErr *loader.FileError
	require.ErrorAs(t, err, &fileErr)
	assert.Equal(t, opts.DataFile, fileErr.Path)
	assert.Empty(t, out.String())
}

func TestRunCancelled(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	ctx, out := runContext(cancelled)

	_, err := NewRunner().Run(ctx, cfpOptions(t, cfpData))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.String())
}

func registrationOptions(t *testing.T) *config.Options {
	t.Helper()
	return &config.Options{
		DataFile: testhelper.WriteFile(t, "demo_data.csv", `question_id,question_text,answer_id,answer_text,num_attendees
4,Gender,1,Male,50
4,Gender,2,Female,30
`),
		TotalsCSV:  testhelper.WriteFile(t, "totals.csv", "badge_type_id,count\n1,75\n2,25\n"),
		DemoTypes:  []demographics.Type{demographics.Gender},
		OutputType: report.FormatCSV,
		InputType:  report.ModeRegistration,
	}
}

func TestRunRegistration(t *testing.T) {
	ctx, out := runContext(context.Background())

	result, err := NewRunner().Run(ctx, registrationOptions(t))
	require.NoError(t, err)

	expected := "GENDER\n" +
		"# male, female, other, no response, prefer not to say, non-binary, " +
		"pct:male, pct:female, pct:other, pct:no response, pct:prefer not to say, pct:non-binary, " +
		"pct_replies:male, pct_replies:female, pct_replies:other, pct_replies:prefer not to say, pct_replies:non-binary\n" +
		"50, 30, 0, 20, 0, 0, 50.0, 30.0, 0.0, 20.0, 0.0, 0.0, 62.5, 37.5, 0.0, 0.0, 0.0\n" +
		"\n"
	assert.Equal(t, expected, out.String())
	assert.Equal(t, report.ModeRegistration, result.Report.Mode)
}

func TestRunRegistrationSimpleUnsupported(t *testing.T) {
	ctx, out := runContext(context.Background())
	opts := registrationOptions(t)
	opts.OutputType = report.FormatSimple

	_, err := NewRunner().Run(ctx, opts)

	assert.ErrorIs(t, err, report.ErrSimpleUnsupported)
	assert.Empty(t, out.String())
}

func TestRunRegistrationMissingTotals(t *testing.T) {
	ctx, out := runContext(context.Background())
	opts := registrationOptions(t)
	opts.TotalsCSV = filepath.Join(t.TempDir(), "totals.csv")

	_, err := NewRunner().Run(ctx, opts)

	var fileErr *loader.FileError
	require.ErrorAs(t, err, &fileErr)
	assert.Empty(t, out.String())
}

func TestRunWritesMetrics(t *testing.T) {
	ctx, _ := runContext(context.Background())
	opts := cfpOptions(t, cfpData)
	opts.MetricsFile = filepath.Join(t.TempDir(), "divrep.prom")

	registry := prometheus.NewRegistry()
	runner := NewRunner(WithRecorderFunc(func() *metrics.Recorder {
		return metrics.NewRecorderWithRegistry(registry)
	}))

	_, err := runner.Run(ctx, opts)
	require.NoError(t, err)

	content, err := os.ReadFile(opts.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), `divrep_total{mode="cfp",name="submissions"} 3`)
	assert.Contains(t, string(content), `divrep_responses{mode="cfp",status="accepts",type="gender",value="male"} 2`)

	families, err := registry.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 2)
}

func TestRunWithoutMetricsFileSkipsRecorder(t *testing.T) {
	ctx, _ := runContext(context.Background())
	called := false
	runner := NewRunner(WithRecorderFunc(func() *metrics.Recorder {
		called = true
		return metrics.NewRecorder()
	}))

	_, err := runner.Run(ctx, cfpOptions(t, cfpData))
	require.NoError(t, err)
	assert.False(t, called)
}
