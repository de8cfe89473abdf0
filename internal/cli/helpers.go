package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Davincible/rscodec/internal/validation"
	"github.com/Davincible/rscodec/pkg/config"
	"github.com/Davincible/rscodec/pkg/gf"
	"github.com/Davincible/rscodec/pkg/rs"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// codecFlags are the field and code parameters shared by every command
type codecFlags struct {
	poly      int
	firstRoot int
	block     int
	message   int
	parity    int
	profile   string
}

func (f *codecFlags) register(cmd *cobra.Command, withSizes bool) {
	cmd.Flags().IntVarP(&f.poly, "poly", "p", 0, "Generator polynomial in binary, e.g. 19 = x^4+x+1 (default from config)")
	cmd.Flags().IntVarP(&f.firstRoot, "first-root", "r", 0, "First consecutive root of the code generator polynomial")
	cmd.Flags().StringVar(&f.profile, "profile", "", "Use a saved codec profile")
	if withSizes {
		cmd.Flags().IntVarP(&f.block, "block", "b", 0, "Block size in symbols (default from config)")
		cmd.Flags().IntVarP(&f.message, "message", "m", 0, "Message size in symbols (default from config)")
	} else {
		cmd.Flags().IntVar(&f.parity, "parity", 0, "Number of parity symbols (default: block - message from config)")
	}
}

// resolve merges config defaults, an optional profile and explicit flags,
// in increasing order of precedence
func (f *codecFlags) resolve(cmd *cobra.Command, cm *config.ConfigManager) (config.CodecSettings, error) {
	settings := cm.GetConfig().Defaults
	if f.profile != "" {
		p, err := cm.GetProfile(f.profile)
		if err != nil {
			return settings, err
		}
		settings = p.Codec
	}

	flags := cmd.Flags()
	if flags.Changed("poly") {
		settings.GeneratorPoly = f.poly
	}
	if flags.Changed("first-root") {
		settings.FirstRoot = f.firstRoot
	}
	if flags.Changed("block") {
		settings.BlockSize = f.block
	}
	if flags.Changed("message") {
		settings.MessageSize = f.message
	}
	cm.ApplyDefaults(&settings)

	if err := validation.ValidateGeneratorPoly(settings.GeneratorPoly); err != nil {
		return settings, err
	}
	return settings, nil
}

func (f *codecFlags) parityFor(cmd *cobra.Command, settings config.CodecSettings) int {
	if cmd.Flags().Changed("parity") {
		return f.parity
	}
	return settings.BlockSize - settings.MessageSize
}

func loadConfigManager() (*config.ConfigManager, error) {
	cm, err := config.NewConfigManager()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if !cm.GetConfig().UI.UseColor {
		color.NoColor = true
	}
	return cm, nil
}

// LogLevel maps the configured verbosity to a slog level. verbose (the
// --verbose flag) always selects debug.
func LogLevel(verbosity string, verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch verbosity {
	case config.VerbosityQuiet:
		return slog.LevelError
	case config.VerbosityVerbose:
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

// ConfiguredLogLevel reads the verbosity from the config file. A config that
// cannot be loaded leaves the default warn level.
func ConfiguredLogLevel(verbose bool) slog.Level {
	cm, err := config.NewConfigManager()
	if err != nil {
		return LogLevel("", verbose)
	}
	return LogLevel(cm.GetConfig().UI.Verbosity, verbose)
}

func buildCodec(poly, firstRoot, parity int) (*rs.Codec, error) {
	field, err := gf.NewPrimitive(poly)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize field: %w", err)
	}

	codec, err := rs.New(field, firstRoot, parity)
	if err != nil {
		return nil, fmt.Errorf("failed to build codec: %w", err)
	}

	slog.Debug("Codec ready", "field", field.String(), "first_root", codec.FirstRoot(), "parity", parity)
	return codec, nil
}

func parseArgsSymbols(args []string, order int) ([]int, error) {
	return validation.ParseSymbols(strings.Join(args, " "), order)
}

func jsonOutput(cmd *cobra.Command) bool {
	v, err := cmd.Flags().GetBool("json")
	return err == nil && v
}

func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// displayCodec prints the code parameters shared by encode and decode output
func displayCodec(w io.Writer, codec *rs.Codec) {
	cyan := color.New(color.FgCyan, color.Bold)

	cyan.Fprintf(w, "%s\n", codec)
	fmt.Fprintf(w, "  Corrects up to %d symbol errors\n", codec.Capability())
	fmt.Fprintf(w, "  Generator: %s\n", validation.FormatSymbols(codec.GeneratorPoly(), false))
}
