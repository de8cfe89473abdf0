package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Davincible/rscodec/internal/cli"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	level := new(slog.LevelVar)
	level.Set(slog.LevelWarn)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	rootCmd := &cobra.Command{
		Use:   "rscodec",
		Short: "Reed-Solomon error correction over GF(2^m)",
		Long: `rscodec encodes and decodes Reed-Solomon codes over a Galois Field
GF(2^m), 2 <= m <= 16, chosen by its generator polynomial.

Features:
- Systematic encoding with a configurable first consecutive root
- Correction of up to parity/2 symbol errors at unknown positions
- Detection of most blocks with more errors than can be corrected
- Randomized trials measuring decoder success and failure rates
- Saved codec profiles and configurable defaults`,
		Version: fmt.Sprintf("%s (built %s, commit %s)", Version, BuildTime, GitCommit),
	}
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		level.Set(cli.ConfiguredLogLevel(verbose))
	}

	rootCmd.AddCommand(
		cli.NewFieldCommand(),
		cli.NewEncodeCommand(),
		cli.NewDecodeCommand(),
		cli.NewTrialCommand(),
		cli.NewReportCommand(),
		cli.NewConfigCommand(),
	)

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")

	if err := rootCmd.Execute(); err != nil {
		slog.Error("Command execution failed", "error", err)
		os.Exit(1)
	}
}
