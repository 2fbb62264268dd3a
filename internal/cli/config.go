package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/earningscheck/internal/model"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage earningscheck configuration",
	Long: `Manage earningscheck configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (EARNINGSCHECK_*, also read from .env)
3. Config file (~/.earningscheck/config.yaml)
4. Defaults

Tolerances are part of the decision rules and cannot be configured.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration after applying defaults, config file, env vars and flags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if configFile := viper.ConfigFileUsed(); configFile != "" {
			fmt.Fprintf(os.Stderr, "Configuration file: %s\n\n", configFile)
		} else {
			fmt.Fprintf(os.Stderr, "No configuration file found (using defaults)\n\n")
		}

		yamlData, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}

		fmt.Println("═══════════════════════════════════════════════════════════")
		fmt.Println("  Current Configuration")
		fmt.Println("═══════════════════════════════════════════════════════════")
		fmt.Println()
		fmt.Println(string(yamlData))
		fmt.Println("═══════════════════════════════════════════════════════════")
		fmt.Println()
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration file",
	Long:  `Create a default configuration file at ~/.earningscheck/config.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := configDir()
		if err != nil {
			return err
		}
		configPath := filepath.Join(dir, "config.yaml")

		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config file already exists: %s\nUse 'earningscheck config show' to view it, or delete it first to recreate", configPath)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("error creating config directory: %w", err)
		}

		if err := os.WriteFile(configPath, defaultConfigFile(), 0o644); err != nil {
			return fmt.Errorf("error writing config: %w", err)
		}

		fmt.Printf("✓ Created default configuration: %s\n", configPath)
		fmt.Printf("\nTo view the configuration:\n")
		fmt.Printf("  earningscheck config show\n")
		fmt.Printf("\nTo customize, edit the file with your preferred editor:\n")
		fmt.Printf("  $EDITOR %s\n\n", configPath)
		return nil
	},
}

// defaultConfigFile renders the defaults as a commented YAML document.
func defaultConfigFile() []byte {
	var doc yaml.Node
	// Marshal/decode round trip gives a node tree to hang comments on.
	data, err := yaml.Marshal(model.DefaultConfig())
	if err == nil {
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil || len(doc.Content) == 0 {
		return data
	}
	doc.HeadComment = "earningscheck configuration\n\n" +
		"Configuration hierarchy (highest to lowest priority):\n" +
		"  1. CLI flags\n" +
		"  2. Environment variables (EARNINGSCHECK_*, e.g. EARNINGSCHECK_DATA_CLAIMS_DIR)\n" +
		"  3. This config file\n" +
		"  4. Built-in defaults"

	comments := map[string]string{
		"data":        "Input and output locations",
		"concurrency": "workers: transcripts in flight; claim_workers: claims per transcript",
		"cache":       "Result cache; unchanged transcripts are not verified again",
		"output":      "Rendering options",
	}
	root := doc.Content[0]
	for i := 0; i+1 < len(root.Content); i += 2 {
		if c, ok := comments[root.Content[i].Value]; ok {
			root.Content[i].HeadComment = c
		}
	}

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return data
	}
	return out
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
