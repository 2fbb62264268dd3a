package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/earningscheck/internal/model"
)

var (
	noCache    bool
	noMarkdown bool
)

// addDataFlags registers the input/output location flags on the root
// command and binds them to their config keys. Each key is bound once, so
// the flags live on the root rather than on every subcommand.
func addDataFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.String("claims-dir", "", "directory of <TICKER>_Q<q>_<year>_claims.json files")
	f.String("financials-dir", "", "directory of <TICKER>_facts.json files")
	f.String("transcripts-dir", "", "directory of transcript metadata files")
	f.String("verdicts-dir", "", "output directory for verdict files")
	f.Int("claim-workers", 0, "claims verified in parallel per transcript")
	f.BoolVar(&noCache, "no-cache", false, "verify every transcript even if its inputs are unchanged")
	f.BoolVar(&noMarkdown, "no-markdown", false, "skip the Markdown report")

	for key, flag := range map[string]string{
		"data.claims_dir":           "claims-dir",
		"data.financials_dir":       "financials-dir",
		"data.transcripts_dir":      "transcripts-dir",
		"data.verdicts_dir":         "verdicts-dir",
		"concurrency.claim_workers": "claim-workers",
	} {
		_ = viper.BindPFlag(key, f.Lookup(flag))
	}
}

// runConfig loads the config and applies the boolean opt-out flags.
func runConfig() (*model.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if noMarkdown {
		cfg.Output.Markdown = false
	}
	return cfg, nil
}
