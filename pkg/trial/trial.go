// Package trial runs randomized encode/corrupt/decode experiments against a
// Reed-Solomon configuration and tallies the outcomes per injected error
// count.
package trial

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Davincible/rscodec/pkg/gf"
	"github.com/Davincible/rscodec/pkg/rs"
)

var ErrInvalidConfig = errors.New("invalid trial configuration")

// Config describes one experiment. ParitySize is BlockSize-MessageSize.
type Config struct {
	GeneratorPoly int    `json:"generator_poly"`
	MessageSize   int    `json:"message_size"`
	BlockSize     int    `json:"block_size"`
	FirstRoot     int    `json:"first_root"`
	Runs          int    `json:"runs"`
	Seed          uint64 `json:"seed"`
	Workers       int    `json:"workers"`
}

func (c Config) ParitySize() int {
	return c.BlockSize - c.MessageSize
}

func (c Config) Validate() error {
	if c.MessageSize < 1 {
		return fmt.Errorf("%w: message size must be positive, got %d", ErrInvalidConfig, c.MessageSize)
	}
	if c.BlockSize <= c.MessageSize {
		return fmt.Errorf("%w: message size %d must be less than block size %d", ErrInvalidConfig, c.MessageSize, c.BlockSize)
	}
	if c.Runs < 1 {
		return fmt.Errorf("%w: runs must be positive, got %d", ErrInvalidConfig, c.Runs)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers cannot be negative, got %d", ErrInvalidConfig, c.Workers)
	}
	return nil
}

// Setup builds the field and codec for c.
func Setup(c Config) (*rs.Codec, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	field, err := gf.NewPrimitive(c.GeneratorPoly)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize field: %w", err)
	}
	if c.BlockSize > field.Order()-1 {
		return nil, fmt.Errorf("%w: block size %d is too large, must be less than field order %d",
			ErrInvalidConfig, c.BlockSize, field.Order())
	}

	codec, err := rs.New(field, c.FirstRoot, c.ParitySize())
	if err != nil {
		return nil, fmt.Errorf("failed to build codec: %w", err)
	}
	return codec, nil
}

// Row holds the tallies for one injected error count.
type Row struct {
	ErrorCount         int `json:"error_count"`
	Trials             int `json:"trials"`
	Successes          int `json:"successes"`
	DecoderFailures    int `json:"decoder_failures"`
	ActualFailures     int `json:"actual_failures"`
	UndetectedFailures int `json:"undetected_failures"`
}

// Report is the outcome of Run.
type Report struct {
	Config        Config        `json:"config"`
	FieldOrder    int           `json:"field_order"`
	FieldPower    int           `json:"field_power"`
	GeneratorPoly []int         `json:"generator_poly"`
	Rows          []Row         `json:"rows"`
	Started       time.Time     `json:"started"`
	Duration      time.Duration `json:"duration"`
}

// Row returns the tallies for errorCount.
func (r *Report) Row(errorCount int) (Row, bool) {
	if errorCount < 0 || errorCount >= len(r.Rows) {
		return Row{}, false
	}
	return r.Rows[errorCount], true
}

// CorrectableRows returns the rows whose error count is within the code's
// guaranteed capability.
func (r *Report) CorrectableRows() []Row {
	t := r.Config.ParitySize() / 2
	if t+1 > len(r.Rows) {
		return r.Rows
	}
	return r.Rows[:t+1]
}

// Total returns the number of trials tallied.
func (r *Report) Total() int {
	n := 0
	for _, row := range r.Rows {
		n += row.Trials
	}
	return n
}

// ProgressFunc is called from the collecting goroutine after every trial.
type ProgressFunc func(done, total int)

type job struct {
	errorCount int
	run        int
}

type outcome struct {
	errorCount int
	corrected  int
	diff       int
	err        error
}

// Run performs cfg.Runs trials for every error count from 0 to the parity
// size. Trials are spread over cfg.Workers goroutines sharing one codec.
// If ctx is cancelled the partial report is returned with the context error.
func Run(ctx context.Context, cfg Config, progress ProgressFunc) (*Report, error) {
	codec, err := Setup(cfg)
	if err != nil {
		return nil, err
	}

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	parity := cfg.ParitySize()
	report := &Report{
		Config:        cfg,
		FieldOrder:    codec.FieldOrder(),
		FieldPower:    codec.Field().Power(),
		GeneratorPoly: codec.GeneratorPoly(),
		Rows:          make([]Row, parity+1),
		Started:       time.Now(),
	}
	for i := range report.Rows {
		report.Rows[i].ErrorCount = i
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan job)
	results := make(chan outcome)

	go func() {
		defer close(jobs)
		for e := 0; e <= parity; e++ {
			for r := 1; r <= cfg.Runs; r++ {
				select {
				case jobs <- job{errorCount: e, run: r}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results <- runOne(codec, cfg, j)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	total := (parity + 1) * cfg.Runs
	done := 0
	var firstErr error
	for o := range results {
		if o.err != nil {
			if firstErr == nil {
				firstErr = o.err
				cancel()
			}
			continue
		}
		report.Rows[o.errorCount].tally(o)
		done++
		if progress != nil {
			progress(done, total)
		}
	}
	report.Duration = time.Since(report.Started)

	if firstErr != nil {
		return report, firstErr
	}
	if done < total {
		return report, fmt.Errorf("trial stopped after %d of %d runs: %w", done, total, ctx.Err())
	}
	return report, nil
}

func (row *Row) tally(o outcome) {
	row.Trials++
	if o.corrected < 0 {
		row.DecoderFailures++
	}
	if o.diff > 0 {
		row.ActualFailures++
		if o.corrected >= 0 {
			row.UndetectedFailures++
		}
	} else {
		row.Successes++
	}
}

func runOne(codec *rs.Codec, cfg Config, j job) outcome {
	rng := NewRNG(cfg.Seed, j.errorCount, j.run)
	mask := codec.Field().Mask()

	block := make([]int, cfg.BlockSize)
	copy(block, RandomMessage(rng, mask, cfg.MessageSize))
	if err := codec.Encode(block, cfg.MessageSize); err != nil {
		return outcome{err: fmt.Errorf("failed to encode: %w", err)}
	}

	errs, err := ErrorVector(rng, mask, cfg.BlockSize, j.errorCount)
	if err != nil {
		return outcome{err: err}
	}

	received := Combine(block, errs)
	corrected := codec.Decode(received)

	return outcome{
		errorCount: j.errorCount,
		corrected:  corrected,
		diff:       Compare(received, block),
	}
}
