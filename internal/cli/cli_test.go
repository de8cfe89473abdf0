package cli

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/Davincible/rscodec/pkg/config"
	"github.com/Davincible/rscodec/pkg/gf"
	"github.com/Davincible/rscodec/pkg/trial"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var gf16Codeword = []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 3, 3, 12, 12}

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// useTempConfig points the config manager at a fresh file for one test
func useTempConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	t.Setenv("RSCODEC_CONFIG", path)
	return path
}

func newTestRoot() *cobra.Command {
	root := &cobra.Command{Use: "rscodec", SilenceUsage: true, SilenceErrors: true}
	root.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
	root.AddCommand(
		NewFieldCommand(),
		NewEncodeCommand(),
		NewDecodeCommand(),
		NewTrialCommand(),
		NewReportCommand(),
		NewConfigCommand(),
	)
	return root
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newTestRoot()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func executeJSON(t *testing.T, v any, args ...string) error {
	t.Helper()
	out, err := execute(t, append([]string{"--json"}, args...)...)
	if out != "" {
		require.NoError(t, json.Unmarshal([]byte(out), v), "output: %s", out)
	}
	return err
}

func TestFieldCommand(t *testing.T) {
	useTempConfig(t)

	var info FieldInfo
	require.NoError(t, executeJSON(t, &info, "field", "--poly", "19"))
	assert.True(t, info.Primitive)
	assert.Equal(t, 16, info.Order)
	assert.Equal(t, 4, info.Power)
	assert.Equal(t, []int{1, 2, 4, 8, 3, 6, 12, 11, 5, 10, 7, 14, 15, 13, 9}, info.Table)

	out, err := execute(t, "field", "--poly", "11", "--hex")
	require.NoError(t, err)
	assert.Contains(t, out, "order 8")
	assert.Contains(t, out, "0x")
}

func TestFieldCommand_NotPrimitive(t *testing.T) {
	useTempConfig(t)

	var info FieldInfo
	err := executeJSON(t, &info, "field", "--poly", "31")
	assert.ErrorIs(t, err, gf.ErrNotPrimitive)
	assert.False(t, info.Primitive)
	assert.Equal(t, 2, info.Repetitions)

	_, err = execute(t, "field", "--poly", "20")
	assert.ErrorIs(t, err, gf.ErrEvenGenerator)
}

func TestEncodeCommand(t *testing.T) {
	useTempConfig(t)

	var result EncodeResult
	require.NoError(t, executeJSON(t, &result, "encode", "--poly", "19", "--parity", "4",
		"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11"))
	assert.Equal(t, gf16Codeword, result.Codeword)
	assert.Equal(t, []int{3, 3, 12, 12}, result.Parity)

	// Parity defaults to block - message from the config
	result = EncodeResult{}
	require.NoError(t, executeJSON(t, &result, "encode", "1,2,3,4,5,6,7,8,9,10,0xb"))
	assert.Equal(t, gf16Codeword, result.Codeword)

	out, err := execute(t, "encode", "--parity", "4", "1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11")
	require.NoError(t, err)
	assert.Contains(t, out, "RS(GF(2^4, poly=0x13), fcr=0, roots=4)")
	assert.Contains(t, out, "3 3 12 12")
}

func TestEncodeCommand_Errors(t *testing.T) {
	useTempConfig(t)

	tests := []struct {
		name string
		args []string
	}{
		{"Symbol out of range", []string{"encode", "--parity", "4", "1", "16"}},
		{"Not a number", []string{"encode", "--parity", "4", "1", "x"}},
		{"Block too long", []string{"encode", "--parity", "4", "1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12"}},
		{"Too many roots", []string{"encode", "--parity", "15", "1"}},
		{"Non-primitive field", []string{"encode", "--poly", "31", "--parity", "4", "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestDecodeCommand(t *testing.T) {
	useTempConfig(t)

	var result DecodeResult
	require.NoError(t, executeJSON(t, &result, "decode", "--parity", "4",
		"1 2 0 4 5 6 7 8 9 10 11 3 3 12 0"))
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Corrected)
	assert.Equal(t, gf16Codeword, result.Block)
	assert.Equal(t, gf16Codeword[:11], result.Message)
	assert.ElementsMatch(t, []int{2, 14}, result.Positions)
	assert.ElementsMatch(t, []int{3, 12}, result.Magnitudes)

	out, err := execute(t, "decode", "--parity", "4", "1 2 3 4 5 6 7 8 9 10 11 3 3 12 12")
	require.NoError(t, err)
	assert.Contains(t, out, "No errors found")
}

func TestDecodeCommand_InvalidBlock(t *testing.T) {
	useTempConfig(t)

	_, err := execute(t, "decode", "--parity", "4", "1", "2", "3")
	assert.Error(t, err)
}

func TestTrialCommand(t *testing.T) {
	useTempConfig(t)
	output := filepath.Join(t.TempDir(), "reports", "gf16.json")

	var report trial.Report
	require.NoError(t, executeJSON(t, &report, "trial", "--poly", "19", "--block", "15", "--message", "11",
		"--runs", "25", "--workers", "3", "--seed", "7", "--output", output))

	require.Len(t, report.Rows, 5)
	assert.Equal(t, 5*25, report.Total())
	assert.Equal(t, uint64(7), report.Config.Seed)
	for _, row := range report.CorrectableRows() {
		assert.Equal(t, 25, row.Successes, "error count %d", row.ErrorCount)
		assert.Zero(t, row.DecoderFailures, "error count %d", row.ErrorCount)
	}

	var saved trial.Report
	require.NoError(t, executeJSON(t, &saved, "report", output))
	assert.Equal(t, report.Rows, saved.Rows)

	out, err := execute(t, "report", output)
	require.NoError(t, err)
	assert.Contains(t, out, "RS(15,11) over GF(2^4)")
	assert.Contains(t, out, "undetected")

	_, err = execute(t, "report", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestTrialCommand_InvalidConfig(t *testing.T) {
	useTempConfig(t)

	_, err := execute(t, "trial", "--block", "16", "--message", "11", "--runs", "1")
	assert.Error(t, err)

	_, err = execute(t, "trial", "--block", "15", "--message", "15", "--runs", "1")
	assert.Error(t, err)
}

func TestConfigCommand(t *testing.T) {
	path := useTempConfig(t)

	_, err := execute(t, "config", "set", "poly", "285")
	require.NoError(t, err)
	_, err = execute(t, "config", "set", "block", "40")
	require.NoError(t, err)

	var cfg config.Config
	require.NoError(t, executeJSON(t, &cfg, "config", "show"))
	assert.Equal(t, 285, cfg.Defaults.GeneratorPoly)
	assert.Equal(t, 40, cfg.Defaults.BlockSize)

	var info FieldInfo
	require.NoError(t, executeJSON(t, &info, "field"))
	assert.Equal(t, 256, info.Order)

	_, err = execute(t, "config", "set", "message", "40")
	assert.Error(t, err, "message must stay below block size")
	_, err = execute(t, "config", "set", "unknown", "1")
	assert.Error(t, err)

	out, err := execute(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, path)

	_, err = execute(t, "config", "reset")
	require.NoError(t, err)
	require.NoError(t, executeJSON(t, &cfg, "config", "show"))
	assert.Equal(t, 19, cfg.Defaults.GeneratorPoly)
}

func TestConfigProfiles(t *testing.T) {
	useTempConfig(t)

	_, err := execute(t, "config", "profile", "add", "gf16-fcr1",
		"--poly", "19", "--first-root", "1", "--block", "15", "--message", "11",
		"--description", "first root one", "--tags", "small,test")
	require.NoError(t, err)

	var profiles []*config.Profile
	require.NoError(t, executeJSON(t, &profiles, "config", "profile", "list"))
	require.Len(t, profiles, 1)
	assert.Equal(t, "gf16-fcr1", profiles[0].Name)
	assert.Equal(t, []string{"small", "test"}, profiles[0].Tags)

	var result EncodeResult
	require.NoError(t, executeJSON(t, &result, "encode", "--profile", "gf16-fcr1",
		"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11"))
	assert.Equal(t, []int{11, 10, 14, 6}, result.Parity)

	_, err = execute(t, "config", "profile", "add", "bad", "--poly", "31")
	assert.Error(t, err)

	_, err = execute(t, "config", "profile", "delete", "gf16-fcr1")
	require.NoError(t, err)
	_, err = execute(t, "encode", "--profile", "gf16-fcr1", "1")
	assert.ErrorIs(t, err, config.ErrProfileNotFound)
}

func TestSetConfigValue(t *testing.T) {
	tests := []struct {
		key, value string
		check      func(*config.Config) bool
		wantError  bool
	}{
		{"poly", "37", func(c *config.Config) bool { return c.Defaults.GeneratorPoly == 37 }, false},
		{"FIRST-ROOT", "3", func(c *config.Config) bool { return c.Defaults.FirstRoot == 3 }, false},
		{"runs", "50", func(c *config.Config) bool { return c.Trial.Runs == 50 }, false},
		{"seed", "18446744073709551615", func(c *config.Config) bool { return c.Trial.Seed == ^uint64(0) }, false},
		{"color", "false", func(c *config.Config) bool { return !c.UI.UseColor }, false},
		{"progress", "0", func(c *config.Config) bool { return !c.UI.Progress }, false},
		{"workers", "four", nil, true},
		{"color", "maybe", nil, true},
		{"seed", "-1", nil, true},
		{"verbosity", "2", nil, true},
		{"verbosity", "Quiet", func(c *config.Config) bool { return c.UI.Verbosity == config.VerbosityQuiet }, false},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			cfg := config.DefaultConfig()
			err := setConfigValue(cfg, tt.key, tt.value)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.check(cfg))
		})
	}
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		verbosity string
		verbose   bool
		want      slog.Level
	}{
		{"", false, slog.LevelWarn},
		{config.VerbosityNormal, false, slog.LevelWarn},
		{config.VerbosityQuiet, false, slog.LevelError},
		{config.VerbosityVerbose, false, slog.LevelDebug},
		{config.VerbosityQuiet, true, slog.LevelDebug},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LogLevel(tt.verbosity, tt.verbose), "verbosity=%q verbose=%t", tt.verbosity, tt.verbose)
	}
}

func TestConfiguredLogLevel(t *testing.T) {
	useTempConfig(t)
	assert.Equal(t, slog.LevelWarn, ConfiguredLogLevel(false))

	_, err := execute(t, "config", "set", "verbosity", "quiet")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelError, ConfiguredLogLevel(false))
	assert.Equal(t, slog.LevelDebug, ConfiguredLogLevel(true))

	_, err = execute(t, "config", "set", "verbosity", "loud")
	assert.ErrorIs(t, err, config.ErrVerbosity)

	var cfg config.Config
	require.NoError(t, executeJSON(t, &cfg, "config", "show"))
	assert.Equal(t, config.VerbosityQuiet, cfg.UI.Verbosity)
}
