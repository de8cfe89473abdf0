package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/Davincible/rscodec/internal/validation"
	"github.com/Davincible/rscodec/pkg/storage"
	"github.com/Davincible/rscodec/pkg/trial"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func NewTrialCommand() *cobra.Command {
	var (
		flags   codecFlags
		runs    int
		seed    uint64
		workers int
		output  string
		quiet   bool
	)

	cmd := &cobra.Command{
		Use:   "trial",
		Short: "Measure decoder behaviour with random error patterns",
		Long: `Run randomized encode/corrupt/decode trials for every error count from
zero up to the number of parity symbols, and tally the outcomes.

For each error count the report lists:
  - successes:   the decoded block matches the transmitted codeword
  - decoder:     the decoder reported a failure
  - actual:      the decoded block differs from the transmitted codeword
  - undetected:  the block differs but the decoder reported success

Trials are seeded per error count and run, so a report is reproducible
for a given seed regardless of the number of workers.`,
		Example: `  # RS(15,11) over GF(16), 1000 runs per error count
  rscodec trial --poly 19 --block 15 --message 11 --runs 1000

  # CCSDS-sized code on 8 workers, saving the report
  rscodec trial --poly 285 --block 255 --message 223 --workers 8 -o report.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cm, err := loadConfigManager()
			if err != nil {
				return err
			}
			settings, err := flags.resolve(cmd, cm)
			if err != nil {
				return err
			}

			cfg := cm.TrialConfig(settings)
			if cmd.Flags().Changed("runs") {
				cfg.Runs = runs
			}
			if cmd.Flags().Changed("seed") {
				cfg.Seed = seed
			}
			if cmd.Flags().Changed("workers") {
				cfg.Workers = workers
			}
			if err := validation.ValidateRuns(cfg.Runs); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
			defer stop()

			var progress trial.ProgressFunc
			stderr := cmd.ErrOrStderr()
			showProgress := !quiet && !jsonOutput(cmd) && cm.GetConfig().UI.Progress && isTerminal(stderr)
			if showProgress {
				progress = progressPrinter(stderr)
			}

			slog.Debug("Starting trial", "poly", cfg.GeneratorPoly, "block", cfg.BlockSize,
				"message", cfg.MessageSize, "runs", cfg.Runs, "workers", cfg.Workers)

			report, runErr := trial.Run(ctx, cfg, progress)
			if showProgress {
				fmt.Fprintln(stderr)
			}
			if report == nil {
				return fmt.Errorf("trial failed: %w", runErr)
			}
			if runErr != nil && !errors.Is(runErr, context.Canceled) {
				return fmt.Errorf("trial failed: %w", runErr)
			}

			slog.Debug("Trial finished", "trials", report.Total(), "duration", report.Duration)

			if output != "" {
				if err := storage.NewReportFile(output).Save(report); err != nil {
					return fmt.Errorf("failed to save report: %w", err)
				}
			}

			if jsonOutput(cmd) {
				if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
			} else {
				outputTrialText(cmd.OutOrStdout(), report, output)
			}

			return runErr
		},
	}

	flags.register(cmd, true)
	cmd.Flags().IntVarP(&runs, "runs", "n", 0, "Trials per error count (default from config)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed (default from config)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Number of worker goroutines (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Save the report as JSON to this file")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not show the progress counter")

	return cmd
}

func progressPrinter(w io.Writer) trial.ProgressFunc {
	last := -1
	return func(done, total int) {
		pct := done * 100 / total
		if pct == last {
			return
		}
		last = pct
		fmt.Fprintf(w, "\r  %d/%d trials (%d%%)", done, total, pct)
	}
}

func outputTrialText(w io.Writer, report *trial.Report, output string) {
	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)

	cfg := report.Config
	fmt.Fprintln(w)
	cyan.Fprintf(w, "RS(%d,%d) over GF(2^%d), generator polynomial %d, first root %d\n",
		cfg.BlockSize, cfg.MessageSize, report.FieldPower, cfg.GeneratorPoly, cfg.FirstRoot)
	fmt.Fprintf(w, "  %d runs per error count, seed %d, %d trials in %s\n\n",
		cfg.Runs, cfg.Seed, report.Total(), report.Duration.Round(time.Millisecond))

	fmt.Fprintf(w, "  %6s  %8s  %10s  %8s  %8s  %10s\n",
		"errors", "trials", "successes", "decoder", "actual", "undetected")
	capability := cfg.ParitySize() / 2
	for _, row := range report.Rows {
		line := fmt.Sprintf("  %6d  %8d  %10d  %8d  %8d  %10d",
			row.ErrorCount, row.Trials, row.Successes, row.DecoderFailures, row.ActualFailures, row.UndetectedFailures)
		switch {
		case row.ErrorCount <= capability && row.ActualFailures > 0:
			red.Fprintln(w, line)
		case row.ErrorCount <= capability:
			green.Fprintln(w, line)
		case row.UndetectedFailures > 0:
			yellow.Fprintln(w, line)
		default:
			fmt.Fprintln(w, line)
		}
	}

	if report.Total() < (cfg.ParitySize()+1)*cfg.Runs {
		yellow.Fprintln(w, "\n⚠️  Trial interrupted, report is partial")
	}
	if output != "" {
		fmt.Fprintf(w, "\nReport saved to %s\n", output)
	}
}

func NewReportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "report <file>",
		Short: "Print a trial report saved with 'trial --output'",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := storage.NewReportFile(args[0])
			if !file.Exists() {
				return fmt.Errorf("report file not found: %s", file.Path())
			}

			var report trial.Report
			if err := file.Load(&report); err != nil {
				return fmt.Errorf("failed to load report: %w", err)
			}
			if len(report.Rows) == 0 {
				return fmt.Errorf("report %s contains no rows", file.Path())
			}

			if jsonOutput(cmd) {
				return writeJSON(cmd.OutOrStdout(), &report)
			}
			outputTrialText(cmd.OutOrStdout(), &report, "")
			return nil
		},
	}
}
