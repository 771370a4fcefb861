package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/divrep/divrep/internal/style"
	"github.com/spf13/cobra"
)

// Build-time variables (set by goreleaser or build scripts)
var (
	Version   = "dev"
	Commit    = "unknown"
	Date      = "unknown"
	BuiltBy   = "unknown"
	GoVersion = runtime.Version()
)

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version information for divrep, including build details.`,
		Example: `
  divrep version                # Show basic version info
  divrep version --output json  # Show version info as JSON`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("output")
			return showVersion(cmd.OutOrStdout(), format)
		},
	}
	cmd.Flags().String("output", "text", "output format (text, json, yaml)")
	return cmd
}

// VersionInfo represents version information
type VersionInfo struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	Date      string `json:"date" yaml:"date"`
	BuiltBy   string `json:"built_by" yaml:"built_by"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

func showVersion(w io.Writer, format string) error {
	versionInfo := VersionInfo{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		BuiltBy:   BuiltBy,
		GoVersion: GoVersion,
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}

	switch format {
	case "json":
		style.PrintJSON(w, versionInfo)
	case "yaml":
		style.PrintYAML(w, versionInfo)
	case "text", "":
		printText(w, versionInfo)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
	return nil
}

func printText(w io.Writer, info VersionInfo) {
	fmt.Fprintf(w, "%s\n", info.Version)
}
