// Package config turns flags, environment and the optional config file into
// validated run options.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/divrep/divrep/internal/demographics"
	"github.com/divrep/divrep/internal/report"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Viper keys. Flags share these names; the environment uses DIVREP_ plus the
// upper-cased key with dashes turned into underscores.
const (
	KeyDemoType         = "demo-type"
	KeyLogLevel         = "log-level"
	KeyOutputType       = "output-type"
	KeyInputType        = "input-type"
	KeyTotalsCSV        = "totals-csv"
	KeyMetricsFile      = "metrics-file"
	KeyQuiet            = "quiet"
	KeyOrderPreferences = "order_preferences"
)

// Options is everything a report run needs.
type Options struct {
	DataFile    string
	DemoTypes   []demographics.Type
	OutputType  report.Format
	InputType   report.Mode
	TotalsCSV   string
	MetricsFile string
	LogLevel    zerolog.Level
	Quiet       bool
	Preferences demographics.Preferences
}

// UsageError reports an invalid invocation. Nothing has been read when one is
// returned.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string {
	return e.Err.Error()
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

func usagef(format string, args ...any) error {
	return &UsageError{Err: fmt.Errorf(format, args...)}
}

// CheckArgs requires exactly one positional data file.
func CheckArgs(args []string) error {
	if len(args) != 1 {
		return usagef("expected exactly one data file, got %d", len(args))
	}
	return nil
}

// IsUsageError reports whether err is, or wraps, a *UsageError.
func IsUsageError(err error) bool {
	var usage *UsageError
	return errors.As(err, &usage)
}

// Defaults holds the value used for each key nothing else sets.
var Defaults = map[string]any{
	KeyLogLevel:   "info",
	KeyOutputType: string(report.FormatCSV),
	KeyInputType:  string(report.ModeCFP),
}

// SetDefaults registers Defaults with v.
func SetDefaults(v *viper.Viper) {
	for key, value := range Defaults {
		v.SetDefault(key, value)
	}
}

// FromViper builds Options from v and the positional arguments.
func FromViper(v *viper.Viper, args []string) (*Options, error) {
	if err := CheckArgs(args); err != nil {
		return nil, err
	}

	opts := &Options{
		DataFile:    args[0],
		TotalsCSV:   v.GetString(KeyTotalsCSV),
		MetricsFile: v.GetString(KeyMetricsFile),
		Quiet:       v.GetBool(KeyQuiet),
	}

	level, err := ParseLogLevel(v.GetString(KeyLogLevel))
	if err != nil {
		return nil, err
	}
	opts.LogLevel = level

	output := report.Format(strings.ToLower(strings.TrimSpace(v.GetString(KeyOutputType))))
	if !slices.Contains(report.Formats, output) {
		return nil, usagef("invalid output type %q (possibilities: %s)", output, join(report.Formats))
	}
	opts.OutputType = output

	input := report.Mode(strings.ToLower(strings.TrimSpace(v.GetString(KeyInputType))))
	if !slices.Contains(report.Modes, input) {
		return nil, usagef("invalid input type %q (possibilities: %s)", input, join(report.Modes))
	}
	opts.InputType = input

	if input == report.ModeRegistration && opts.TotalsCSV == "" {
		return nil, usagef("--%s is required when --%s is %s", KeyTotalsCSV, KeyInputType, report.ModeRegistration)
	}

	types, err := demographics.ParseTypes(splitList(v.GetStringSlice(KeyDemoType)))
	if err != nil {
		return nil, &UsageError{Err: err}
	}
	opts.DemoTypes = types

	prefs, err := preferences(v)
	if err != nil {
		return nil, err
	}
	opts.Preferences = prefs

	return opts, nil
}

// ParseLogLevel accepts the zerolog level names. An empty string means info.
func ParseLogLevel(s string) (zerolog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(s)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.NoLevel, usagef("invalid log level %q (possibilities: debug, info, warn, error, disabled)", s)
	}
	return level, nil
}

// preferences applies the config file's order_preferences overrides to the
// built-in order table.
func preferences(v *viper.Viper) (demographics.Preferences, error) {
	raw := v.GetStringMapStringSlice(KeyOrderPreferences)
	if len(raw) == 0 {
		return demographics.DefaultPreferences(), nil
	}

	overrides := make(map[demographics.Type][]string, len(raw))
	for name, values := range raw {
		t, err := demographics.ParseType(name)
		if err != nil {
			return nil, usagef("%s: %v", KeyOrderPreferences, err)
		}
		overrides[t] = values
	}
	return demographics.DefaultPreferences().With(overrides), nil
}

// splitList flattens comma separated entries, so DIVREP_DEMO_TYPE=gender,age
// works like repeated flags.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		out = append(out, strings.Split(v, ",")...)
	}
	return out
}

func join[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
