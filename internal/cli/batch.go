package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/earningscheck/internal/model"
	"github.com/ppiankov/earningscheck/internal/pipeline"
	"github.com/ppiankov/earningscheck/internal/worker"
)

var (
	concurrency  int
	tickersFile  string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch [TICKER...]",
	Short: "Verify every transcript in the claims directory in parallel",
	Long: `Batch discovers every claims file in the claims directory and verifies
the transcripts concurrently:
- Optionally restrict to the given tickers (or a file of tickers)
- Transcripts whose claims, facts and metadata are unchanged are served
  from the result cache unless --no-cache is given
- One JSON (and Markdown) verdict file is written per transcript

Example:
  earningscheck batch
  earningscheck batch AAPL MSFT --workers 4
  earningscheck batch --tickers-file watchlist.txt --no-cache`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "workers", 0, "transcripts verified in parallel (default: config concurrency.workers)")
	batchCmd.Flags().StringVar(&tickersFile, "tickers-file", "", "file with one ticker per line")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := runConfig()
	if err != nil {
		return err
	}
	if concurrency > 0 {
		cfg.Concurrency.Workers = concurrency
	}

	tickers := args
	if tickersFile != "" {
		fromFile, err := worker.ReadTickersFromFile(tickersFile)
		if err != nil {
			return fmt.Errorf("read tickers: %w", err)
		}
		tickers = append(tickers, fromFile...)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  earningscheck Batch Verification\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Claims dir:   %s\n", cfg.Data.ClaimsDir)
	if len(tickers) > 0 {
		fmt.Fprintf(os.Stderr, "  Tickers:      %s\n", strings.Join(tickers, ", "))
	}
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", cfg.Data.VerdictsDir)
	fmt.Fprintf(os.Stderr, "  Cache:        %v\n", cfg.Cache.Enabled)
	fmt.Fprintf(os.Stderr, "\n")

	runner := pipeline.NewRunner(cfg, pipeline.WithLogger(logger))
	processor := worker.NewBatchProcessor(runner, cfg.Concurrency.Workers, logger)
	start := time.Now()
	outcomes, err := processor.ProcessDir(ctx, cfg.Data.ClaimsDir, tickers...)
	if err != nil {
		return err
	}

	for _, o := range outcomes {
		switch {
		case o.Skipped():
			if verbose {
				fmt.Fprintf(os.Stderr, "- %s: no claims\n", o.Ref.Key())
			}
		case o.Error != nil:
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", o.Ref.Key(), o.Error)
		default:
			s := o.Result.Summary
			fmt.Fprintf(os.Stderr, "✓ %s (%d claims: %d verified, %d mismatch, %d misleading)\n",
				o.Ref.Key(), s.Total, s.Verified, s.Mismatch, s.Misleading)
		}
	}

	s := worker.Summarize(outcomes)
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Transcripts: %d\n", s.Transcripts)
	fmt.Fprintf(os.Stderr, "  Success:     %d\n", s.Succeeded)
	fmt.Fprintf(os.Stderr, "  Skipped:     %d\n", s.Skipped)
	fmt.Fprintf(os.Stderr, "  Failures:    %d\n", s.Failed)
	fmt.Fprintf(os.Stderr, "  Took:        %v\n", time.Since(start).Round(time.Millisecond))
	fmt.Fprintf(os.Stderr, "\n")
	printSummary(cmd.OutOrStdout(), s.Claims)

	if s.Failed > 0 {
		return fmt.Errorf("%d of %d transcripts failed", s.Failed, s.Transcripts)
	}
	return nil
}

func printSummary(w io.Writer, s model.Summary) {
	for _, l := range model.Labels {
		fmt.Fprintf(w, "  %-13s %d\n", l, s.Count(l))
	}
	fmt.Fprintf(w, "  %-13s %d\n", "total", s.Total)
}
