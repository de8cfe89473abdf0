package cli

import (
	"fmt"
	"log/slog"

	"github.com/Davincible/rscodec/internal/validation"
	"github.com/Davincible/rscodec/pkg/rs"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type DecodeResult struct {
	Corrected  int    `json:"corrected"`
	Success    bool   `json:"success"`
	Block      []int  `json:"block"`
	Message    []int  `json:"message"`
	Positions  []int  `json:"positions,omitempty"`
	Magnitudes []int  `json:"magnitudes,omitempty"`
	Residual   int    `json:"residual,omitempty"`
	Error      string `json:"error,omitempty"`
}

func NewDecodeCommand() *cobra.Command {
	var (
		flags   codecFlags
		showHex bool
	)

	cmd := &cobra.Command{
		Use:   "decode [symbols...]",
		Short: "Correct a received Reed-Solomon block",
		Long: `Decode a received block (message followed by parity), correcting up
to parity/2 symbol errors at unknown positions.

The command fails when the corrected block still has nonzero syndromes.
Blocks with more errors than the code can correct are usually detected this
way, but may occasionally be corrected to a different codeword.`,
		Example: `  # Correct two errors in an RS(15,11) block
  rscodec decode --poly 19 --parity 4 1 2 0 4 5 6 7 8 9 10 11 3 3 12 0`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cm, err := loadConfigManager()
			if err != nil {
				return err
			}
			settings, err := flags.resolve(cmd, cm)
			if err != nil {
				return err
			}

			codec, err := buildCodec(settings.GeneratorPoly, settings.FirstRoot, flags.parityFor(cmd, settings))
			if err != nil {
				return err
			}

			block, err := parseArgsSymbols(args, codec.FieldOrder())
			if err != nil {
				return fmt.Errorf("invalid block: %w", err)
			}

			session := codec.DecodeSession(block)
			slog.Debug("Block decoded", "block_size", len(block), "result", session.Result, "located", session.ErrorCount)

			if session.Result == rs.InvalidBlock {
				return fmt.Errorf("failed to decode: %w", session.Err)
			}

			result := DecodeResult{
				Corrected:  session.Result,
				Success:    !session.Failed(),
				Block:      block,
				Message:    block[:len(block)-codec.NumRoots()],
				Positions:  session.ErrorPositions,
				Magnitudes: session.ErrorMagnitudes,
				Residual:   session.Residual,
			}
			if session.Err != nil {
				result.Error = session.Err.Error()
			}

			if jsonOutput(cmd) {
				if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
					return err
				}
			} else {
				outputDecodeText(cmd, codec, result, showHex)
			}

			if session.Failed() {
				return fmt.Errorf("failed to decode: %w", session.Err)
			}
			return nil
		},
	}

	flags.register(cmd, false)
	cmd.Flags().BoolVar(&showHex, "hex", false, "Print symbols in hexadecimal")

	return cmd
}

func outputDecodeText(cmd *cobra.Command, codec *rs.Codec, result DecodeResult, showHex bool) {
	w := cmd.OutOrStdout()
	green := color.New(color.FgGreen, color.Bold)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed, color.Bold)

	fmt.Fprintln(w)
	displayCodec(w, codec)
	fmt.Fprintln(w)

	if !result.Success {
		red.Fprintln(w, "✗ Decode failed")
		fmt.Fprintf(w, "  %d syndromes remain nonzero after correction\n", result.Residual)
		if len(result.Positions) > 0 {
			fmt.Fprintf(w, "  Attempted locations: %s\n", validation.FormatSymbols(result.Positions, false))
		}
		return
	}

	if result.Corrected == 0 {
		green.Fprintln(w, "✓ No errors found")
	} else {
		green.Fprintf(w, "✓ Corrected %d errors\n", result.Corrected)
		fmt.Fprintf(w, "  Locations:  %s\n", validation.FormatSymbols(result.Positions, false))
		fmt.Fprintf(w, "  Magnitudes: %s\n", validation.FormatSymbols(result.Magnitudes, showHex))
	}

	fmt.Fprintln(w)
	yellow.Fprintln(w, "Message:")
	fmt.Fprintln(w, validation.FormatSymbols(result.Message, showHex))
	yellow.Fprintln(w, "Corrected block:")
	fmt.Fprintln(w, validation.FormatSymbols(result.Block, showHex))
}
