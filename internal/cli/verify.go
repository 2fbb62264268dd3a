package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/earningscheck/internal/model"
	"github.com/ppiankov/earningscheck/internal/pipeline"
)

var (
	verifyJSON    bool
	verifyTimeout time.Duration
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <claims-file | TICKER_Q<q>_<year>>",
	Short: "Verify the claims of one transcript",
	Long: `Verify checks every claim extracted from one earnings call transcript
against the ticker's financial facts and writes the verdict files.

Example:
  earningscheck verify AAPL_Q1_2025
  earningscheck verify data/claims/AAPL_Q1_2025_claims.json --json`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().BoolVar(&verifyJSON, "json", false, "print the result as JSON instead of a summary")
	verifyCmd.Flags().DurationVar(&verifyTimeout, "timeout", 2*time.Minute, "verification timeout")
}

// resolveRef accepts either a claims file path or a transcript key.
func resolveRef(arg, claimsDir string) (pipeline.TranscriptRef, error) {
	if _, err := os.Stat(arg); err == nil {
		if ref, ok := pipeline.ParseClaimsFilename(arg); ok {
			return ref, nil
		}
		return pipeline.TranscriptRef{}, fmt.Errorf("%s: claims file name must look like TICKER_Q1_2025_claims.json", arg)
	}
	if ref, ok := pipeline.ParseClaimsFilename(filepath.Join(claimsDir, arg+"_claims.json")); ok {
		return ref, nil
	}
	return pipeline.TranscriptRef{}, fmt.Errorf("%s: not a claims file or transcript key", arg)
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, err := runConfig()
	if err != nil {
		return err
	}
	ref, err := resolveRef(args[0], cfg.Data.ClaimsDir)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), verifyTimeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Verifying: %s\n", ref.Key())
		fmt.Fprintf(os.Stderr, "Claims:    %s\n", ref.ClaimsPath)
		fmt.Fprintf(os.Stderr, "Cache:     %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	runner := pipeline.NewRunner(cfg, pipeline.WithLogger(logger))
	res, err := runner.RunTranscript(ctx, ref)
	if err != nil {
		return fmt.Errorf("verify failed: %w", err)
	}

	if verifyJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	printResult(cmd, res)
	fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", runner.OutputPath(ref))
	return nil
}

func printResult(cmd *cobra.Command, res *model.TranscriptResult) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s  (%d claims)\n\n", res.Key, res.Summary.Total)
	for _, it := range res.ClaimsWithVerdicts {
		fmt.Fprintf(w, "  %-13s %-28s %s\n", it.Verification.Label, it.Claim.Metric, it.Claim.Period)
		if verbose && it.Verification.Explanation != "" {
			fmt.Fprintf(w, "  %13s %s\n", "", it.Verification.Explanation)
		}
	}
	fmt.Fprintln(w)
	printSummary(w, res.Summary)
}
