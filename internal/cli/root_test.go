package cli

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ansi = "[\u001B\u009B][[\\]()#;?]*(?:(?:(?:[a-zA-Z\\d]*(?:;[a-zA-Z\\d]*)*)?\u0007)|(?:(?:\\d{1,4}(?:;\\d{0,4})*)?[\\dA-PRZcf-ntqry=><~]))"

var (
	// use the rewrite-golden flag to rewrite the golden files
	rewriteGolden = flag.Bool("rewrite-golden", false, "rewrite the golden files")

	re = regexp.MustCompile(ansi)
)

func TestMain(m *testing.M) {
	flag.Parse()
	os.Exit(m.Run())
}

func executeCommand(root *cobra.Command, args ...string) (stdout string, stderr string, err error) {
	out := new(bytes.Buffer)
	errOut := new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(errOut)
	if args == nil {
		// cobra falls back to os.Args on nil
		args = []string{}
	}
	root.SetArgs(args)

	err = root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestRootCommand(t *testing.T) {
	stdout, _, err := executeCommand(newRootCmd(viper.New()), "--help")
	assert.NoError(t, err)
	assert.Contains(t, stdout, "divrep reads a CSV export")
	assert.Contains(t, stdout, "Available Commands:")
	assert.Contains(t, stdout, "--totals-csv")
}

func TestGlobalFlags(t *testing.T) {
	root := newRootCmd(viper.New())

	flag := root.PersistentFlags().Lookup("config")
	require.NotNil(t, flag)
	assert.Equal(t, "string", flag.Value.Type())

	flag = root.PersistentFlags().Lookup("log-level")
	require.NotNil(t, flag)
	assert.Equal(t, "info", flag.DefValue)
	assert.Equal(t, "l", flag.Shorthand)

	flag = root.PersistentFlags().Lookup("quiet")
	require.NotNil(t, flag)
	assert.Equal(t, "bool", flag.Value.Type())

	tests := []struct {
		name      string
		shorthand string
		def       string
	}{
		{"demo-type", "t", "[]"},
		{"output-type", "o", "csv"},
		{"input-type", "i", "cfp"},
		{"totals-csv", "T", ""},
		{"metrics-file", "", ""},
	}
	for _, tt := range tests {
		flag := root.Flags().Lookup(tt.name)
		require.NotNil(t, flag, tt.name)
		assert.Equal(t, tt.shorthand, flag.Shorthand, tt.name)
		assert.Equal(t, tt.def, flag.DefValue, tt.name)
	}
}

func TestCommandAvailability(t *testing.T) {
	root := newRootCmd(viper.New())
	for _, cmdName := range []string{"version", "schema"} {
		cmd, _, err := root.Find([]string{cmdName})
		assert.NoError(t, err, "Command %s should be available", cmdName)
		assert.Equal(t, cmdName, cmd.Name(), "Command name should match")
	}
}

func TestSchemaCommand(t *testing.T) {
	stdout, _, err := executeCommand(newRootCmd(viper.New()), "schema")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"title": "divrep report"`)
	assert.Contains(t, stdout, `"type_report"`)
}

// newReportGoldenTest runs the root command with args, where {dir} stands for
// the test's testdata directory, and compares stdout with its golden file.
func newReportGoldenTest(t *testing.T, args ...string) {
	t.Helper()

	// get the function name from the caller (i.e. the function that called this function)
	pc, _, _, _ := runtime.Caller(1)
	funcName := runtime.FuncForPC(pc).Name()
	if idx := strings.LastIndex(funcName, "."); idx != -1 {
		funcName = funcName[idx+1:]
	}

	funcName = strings.TrimPrefix(funcName, "Test_")
	directory := filepath.Join("testdata", "report", camelToSnake(funcName))

	expanded := make([]string, len(args))
	for i, arg := range args {
		expanded[i] = strings.ReplaceAll(arg, "{dir}", directory)
	}

	stdout, stderr, err := executeCommand(newRootCmd(viper.New()), expanded...)
	require.NoError(t, err, "stderr:\n%s", stderr)

	assertGoldenFile(t, directory, stdout)
}

func assertGoldenFile(t *testing.T, directory string, stdout string) {
	t.Helper()

	goldenFile := filepath.Join(directory, "golden.txt")
	golden, err := os.ReadFile(goldenFile)

	// Remove ANSI codes
	actual := re.ReplaceAllString(stdout, "")

	if os.IsNotExist(err) {
		golden = []byte(actual)
		err = os.WriteFile(goldenFile, golden, 0644)
		require.NoError(t, err)
	} else {
		require.NoError(t, err)
	}

	if *rewriteGolden {
		_ = os.WriteFile(goldenFile, []byte(actual), 0644)
		return
	}

	if !assert.Equal(t, string(golden), actual) {
		dmp := diffmatchpatch.New()
		t.Logf("golden diff:\n%s", dmp.DiffPrettyText(dmp.DiffMain(string(golden), actual, false)))
		_ = os.WriteFile(filepath.Join(directory, "actual.txt"), []byte(actual), 0644)
	}
}

func camelToSnake(s string) string {
	if len(s) == 0 {
		return s
	}

	var result []rune
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result = append(result, '_')
		}
		result = append(result, r)
	}

	return strings.ToLower(string(result))
}

func TestUnderscoreFlagNames(t *testing.T) {
	data := filepath.Join("testdata", "report", "cfp_gender", "data.csv")

	stdout, _, err := executeCommand(newRootCmd(viper.New()), "--demo_type", "gender", "--output_type", "csv", data)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "GENDER\n"))
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, isTerminal(&bytes.Buffer{}))

	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()
	assert.False(t, isTerminal(w), "a redirected stderr is not a terminal")
}
