package model

import (
	"runtime"
	"time"
)

// Config holds all runtime settings for earningscheck
type Config struct {
	Data        DataConfig        `yaml:"data" mapstructure:"data"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// DataConfig locates the inputs produced by ingestion and extraction
type DataConfig struct {
	ClaimsDir      string `yaml:"claims_dir" mapstructure:"claims_dir"`           // <TICKER>_Q<q>_<year>_claims.json
	FinancialsDir  string `yaml:"financials_dir" mapstructure:"financials_dir"`   // <TICKER>_facts.json
	TranscriptsDir string `yaml:"transcripts_dir" mapstructure:"transcripts_dir"` // <TICKER>_Q<q>_<year>.json (metadata only)
	VerdictsDir    string `yaml:"verdicts_dir" mapstructure:"verdicts_dir"`       // output
}

// ConcurrencyConfig controls parallel verification
type ConcurrencyConfig struct {
	Workers      int `yaml:"workers" mapstructure:"workers"`             // Transcripts in flight
	ClaimWorkers int `yaml:"claim_workers" mapstructure:"claim_workers"` // Claims in flight per transcript
}

// CacheConfig controls the fact-store memo and the incremental result cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskDir   string        `yaml:"disk_dir" mapstructure:"disk_dir"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose  bool `yaml:"verbose" mapstructure:"verbose"`
	Markdown bool `yaml:"markdown" mapstructure:"markdown"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			ClaimsDir:      "data/claims",
			FinancialsDir:  "data/financials",
			TranscriptsDir: "data/transcripts",
			VerdictsDir:    "data/verdicts",
		},
		Concurrency: ConcurrencyConfig{
			Workers:      runtime.NumCPU(),
			ClaimWorkers: 8,
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: 30 * time.Minute,
			DiskDir:   ".earningscheck-cache",
			DiskTTL:   7 * 24 * time.Hour,
		},
		Output: OutputConfig{
			Verbose:  false,
			Markdown: true,
		},
	}
}
