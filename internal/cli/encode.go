package cli

import (
	"fmt"
	"log/slog"

	"github.com/Davincible/rscodec/internal/validation"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type EncodeResult struct {
	Message  []int `json:"message"`
	Parity   []int `json:"parity"`
	Codeword []int `json:"codeword"`
}

func NewEncodeCommand() *cobra.Command {
	var (
		flags   codecFlags
		showHex bool
	)

	cmd := &cobra.Command{
		Use:   "encode [symbols...]",
		Short: "Append Reed-Solomon parity to a message",
		Long: `Encode a message of field symbols into a systematic Reed-Solomon
codeword. The message is kept as is and the parity symbols are appended.

Symbols may be decimal or 0x-prefixed hexadecimal, separated by spaces,
commas or semicolons.`,
		Example: `  # RS(15,11) over GF(16)
  rscodec encode --poly 19 --parity 4 1 2 3 4 5 6 7 8 9 10 11

  # RS over GF(256) with first root 1
  rscodec encode --poly 285 --first-root 1 --parity 8 "0x48,0x65,0x6c,0x6c,0x6f"`,
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

			message, err := parseArgsSymbols(args, codec.FieldOrder())
			if err != nil {
				return fmt.Errorf("invalid message: %w", err)
			}

			buf := make([]int, len(message)+codec.NumRoots())
			copy(buf, message)
			if err := codec.Encode(buf, len(message)); err != nil {
				return fmt.Errorf("failed to encode: %w", err)
			}
			slog.Debug("Message encoded", "message_size", len(message), "block_size", len(buf))

			result := EncodeResult{
				Message:  message,
				Parity:   buf[len(message):],
				Codeword: buf,
			}

			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), result)
			}

			w := cmd.OutOrStdout()
			yellow := color.New(color.FgYellow)
			green := color.New(color.FgGreen, color.Bold)

			fmt.Fprintln(w)
			displayCodec(w, codec)
			fmt.Fprintln(w)
			yellow.Fprintln(w, "Parity:")
			fmt.Fprintln(w, validation.FormatSymbols(result.Parity, showHex))
			fmt.Fprintln(w)
			green.Fprintf(w, "Codeword (%d symbols):\n", len(buf))
			fmt.Fprintln(w, validation.FormatSymbols(result.Codeword, showHex))

			return nil
		},
	}

	flags.register(cmd, false)
	cmd.Flags().BoolVar(&showHex, "hex", false, "Print symbols in hexadecimal")

	return cmd
}
