package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ppiankov/earningscheck/internal/model"
	"github.com/ppiankov/earningscheck/internal/verify"
)

// version is set at build time with -ldflags "-X ...cli.version=..."
var version = "v0.1.0"

var (
	cfgFile string
	verbose bool
	logger  = zap.NewNop()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "earningscheck",
	Short: "earningscheck - verify earnings call claims against reported financials",
	Long: `earningscheck checks the quantitative claims executives make on earnings
calls against the company's reported financial statements.

Every claim receives one of five verdicts (verified, close_match, mismatch,
misleading, unverifiable) together with the computation that produced it.
Claims that cannot be checked are reported as unverifiable with a reason,
never guessed.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command. Cancelling ctx stops verification in
// progress.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and the decision rules version.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("earningscheck %s (rules %s)\n", version, verify.Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.earningscheck/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	addDataFlags(rootCmd)

	rootCmd.AddCommand(versionCmd)
}

// configDir returns ~/.earningscheck
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error finding home directory: %w", err)
	}
	return filepath.Join(home, ".earningscheck"), nil
}

// initConfig reads in .env, the config file and ENV variables
func initConfig() {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return
		}
		viper.AddConfigPath(dir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// EARNINGSCHECK_DATA_CLAIMS_DIR overrides data.claims_dir, and so on.
	viper.SetEnvPrefix("EARNINGSCHECK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults(model.DefaultConfig())

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key so that AutomaticEnv can see it
// during Unmarshal.
func setDefaults(d *model.Config) {
	viper.SetDefault("data.claims_dir", d.Data.ClaimsDir)
	viper.SetDefault("data.financials_dir", d.Data.FinancialsDir)
	viper.SetDefault("data.transcripts_dir", d.Data.TranscriptsDir)
	viper.SetDefault("data.verdicts_dir", d.Data.VerdictsDir)
	viper.SetDefault("concurrency.workers", d.Concurrency.Workers)
	viper.SetDefault("concurrency.claim_workers", d.Concurrency.ClaimWorkers)
	viper.SetDefault("cache.enabled", d.Cache.Enabled)
	viper.SetDefault("cache.memory_ttl", d.Cache.MemoryTTL)
	viper.SetDefault("cache.disk_dir", d.Cache.DiskDir)
	viper.SetDefault("cache.disk_ttl", d.Cache.DiskTTL)
	viper.SetDefault("output.verbose", d.Output.Verbose)
	viper.SetDefault("output.markdown", d.Output.Markdown)
}

// loadConfig resolves the effective configuration: flags, then environment,
// then config file, then defaults.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}
