package cli

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/divrep/divrep/internal/config"
	"github.com/divrep/divrep/internal/demographics"
	"github.com/divrep/divrep/internal/engine"
	"github.com/divrep/divrep/internal/execcontext"
	"github.com/divrep/divrep/internal/report"
	"github.com/divrep/divrep/internal/style"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd(viper.New())

func newRootCmd(v *viper.Viper) *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "divrep [flags] DATA.csv",
		Short: "Demographic breakdowns of CFP and registration exports",
		Long: `divrep reads a CSV export of CFP submissions or event registrations and prints,
for each demographic category, the counts, percentages and acceptance rates
of every answer.

CFP exports need a "status" column (Accepted, Hold, Rejected or empty) and one
column per demographic category. Registration mode reads the demographics
export together with the badge totals export given by --totals-csv.`,
		Example: `
  divrep cfp.csv                                   # all categories, csv output
  divrep -t gender -t age -o simple cfp.csv        # human-readable counts
  divrep -i reg -T totals.csv demo_data.csv        # registration data
  divrep --metrics-file divrep.prom cfp.csv        # also write Prometheus metrics`,
		Version:      getVersion(),
		SilenceUsage: true,
		Args: func(cmd *cobra.Command, args []string) error {
			return config.CheckArgs(args)
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(cmd.ErrOrStderr(), v, cfgFile); err != nil {
				return err
			}
			return initLogging(cmd.ErrOrStderr(), v)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := config.FromViper(v, args)
			if err != nil {
				return err
			}

			runCtx := execcontext.RunContext{
				Context: cmd.Context(),
				StdOut:  cmd.OutOrStdout(),
				StdErr:  cmd.ErrOrStderr(),
			}
			if runCtx.Context == nil {
				runCtx.Context = context.Background()
			}

			result, err := engine.NewRunner().Run(runCtx, opts)
			if err != nil {
				return err
			}

			if opts.Quiet {
				return nil
			}
			if result.Warnings > 0 {
				style.Warning(runCtx.StdErr, fmt.Sprintf("%d field order mismatch(es), see the warnings above", result.Warnings))
			}
			if opts.MetricsFile != "" {
				style.Success(runCtx.StdErr, "Metrics written to "+style.FormatFilePath(opts.MetricsFile))
			}
			return nil
		},
	}

	cmd.SetGlobalNormalizationFunc(normalizeFlagName)

	flags := cmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./divrep.yaml if present)")
	flags.StringP(config.KeyLogLevel, "l", "info", "log level (debug, info, warn, error, disabled)")
	flags.BoolP(config.KeyQuiet, "q", false, "suppress non-essential output")

	local := cmd.Flags()
	local.StringSliceP(config.KeyDemoType, "t", nil,
		fmt.Sprintf("demographic types to report, repeatable (default all: %s)", strings.Join(demographics.Names(demographics.AllTypes), ", ")))
	local.StringP(config.KeyOutputType, "o", string(report.FormatCSV), "output type (csv, simple, json, yaml)")
	local.StringP(config.KeyInputType, "i", string(report.ModeCFP), "input type (cfp, reg)")
	local.StringP(config.KeyTotalsCSV, "T", "", "registration badge totals CSV, required with --input-type reg")
	local.String(config.KeyMetricsFile, "", "also write the tallies to this Prometheus textfile")

	config.SetDefaults(v)
	for _, name := range []string{config.KeyLogLevel, config.KeyQuiet} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}
	for _, name := range []string{config.KeyDemoType, config.KeyOutputType, config.KeyInputType, config.KeyTotalsCSV, config.KeyMetricsFile} {
		_ = v.BindPFlag(name, local.Lookup(name))
	}

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newSchemaCmd())

	return cmd
}

// normalizeFlagName lets --demo_type stand in for --demo-type.
func normalizeFlagName(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return fang.Execute(ctx, rootCmd, fang.WithColorSchemeFunc(func(lightDark lipgloss.LightDarkFunc) fang.ColorScheme {
		return fang.ColorScheme{
			Base:           style.PrimaryTextColor,
			Title:          style.AccentColor,
			Description:    style.PrimaryTextColor,
			Codeblock:      style.CodeColor,
			Program:        style.AccentColor,
			DimmedArgument: style.MutedColor,
			Comment:        style.MutedColor,
			Flag:           style.InfoColor,
			FlagDefault:    style.MutedColor,
			Command:        style.SuccessColor,
			QuotedString:   style.WarningColor,
			Argument:       style.PrimaryTextColor,
			Help:           style.InfoColor,
			Dash:           style.MutedColor,
			ErrorHeader:    [2]color.Color{style.ErrorColor, style.ErrorBgColor},
			ErrorDetails:   style.ErrorColor,
		}
	}), fang.WithVersion(getVersion()))
}

// defaultConfigFile is read from the working directory when --config is not
// given.
const defaultConfigFile = "divrep.yaml"

// initConfig reads in the .env file, the config file and ENV variables.
func initConfig(stderr io.Writer, v *viper.Viper, cfgFile string) error {
	_ = godotenv.Load()

	// Environment variables
	v.SetEnvPrefix("DIVREP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	explicit := cfgFile != ""
	if !explicit {
		// Only the exact file name: a bare "divrep" next to it is the binary.
		if info, err := os.Stat(defaultConfigFile); err != nil || info.IsDir() {
			return nil
		}
		cfgFile = defaultConfigFile
	}
	v.SetConfigFile(cfgFile)

	if err := v.ReadInConfig(); err != nil {
		if !explicit {
			style.Warning(stderr, fmt.Sprintf("Ignoring unreadable config file %s: %v", style.FormatFilePath(cfgFile), err))
			return nil
		}
		return &config.UsageError{Err: fmt.Errorf("reading config file: %w", err)}
	}

	if !v.GetBool(config.KeyQuiet) {
		style.Info(stderr, "Using config file: "+style.FormatFilePath(v.ConfigFileUsed()))
	}
	return nil
}

// initLogging configures the global logger
func initLogging(stderr io.Writer, v *viper.Viper) error {
	level, err := config.ParseLogLevel(v.GetString(config.KeyLogLevel))
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(level)

	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:          stderr,
		NoColor:      !isTerminal(stderr),
		PartsExclude: []string{zerolog.TimestampFieldName},
	})
	return nil
}

// isTerminal reports whether w is a terminal, so redirected logs stay free of
// colour codes.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// getVersion returns the version information
func getVersion() string {
	return fmt.Sprintf("%s (commit: %s, built: %s, go: %s)", Version, Commit, Date, GoVersion)
}
