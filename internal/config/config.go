// Package config loads the engine's configuration: chunking options, the
// three-level priority tables, fallback paths, direct triggers, and guard
// thresholds. Configuration is plain data read once at startup; nothing in
// this package is consulted mid-file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dshills/codechunk/internal/guard"
	"github.com/dshills/codechunk/internal/priority"
	"github.com/dshills/codechunk/internal/selector"
	"github.com/dshills/codechunk/internal/strategy"
	"github.com/dshills/codechunk/pkg/types"
)

// Config is the full engine configuration.
type Config struct {
	Chunking ChunkingConfig `yaml:"chunking"`
	Cache    CacheConfig    `yaml:"cache"`
	Guard    GuardConfig    `yaml:"guard"`

	// Priorities holds the layered priority tables; absent entries inherit
	// from the next broader level.
	Priorities PrioritiesConfig `yaml:"priorities"`

	// FallbackPaths maps a strategy name to its configured retry list.
	FallbackPaths map[string][]string `yaml:"fallback_paths"`

	// GenericFallbackPath is used for strategies with no configured list.
	GenericFallbackPath []string `yaml:"generic_fallback_path"`

	// DirectTriggers maps file extensions to strategy names.
	DirectTriggers map[string]string `yaml:"direct_triggers"`

	// TestFilePatterns maps file-name suffixes to strategy names.
	TestFilePatterns map[string]string `yaml:"test_file_patterns"`

	// Weights blend speed and success into the performance score.
	Weights WeightsConfig `yaml:"weights"`

	// Workers sizes the batch worker pool.
	Workers int `yaml:"workers"`
}

// ChunkingConfig mirrors types.ChunkingOptions in YAML form.
type ChunkingConfig struct {
	MaxChunkSize      int  `yaml:"max_chunk_size"`
	MinChunkSize      int  `yaml:"min_chunk_size"`
	OverlapSize       int  `yaml:"overlap_size"`
	EnableCaching     bool `yaml:"enable_caching"`
	EnableFallback    bool `yaml:"enable_fallback"`
	MaxRetries        int  `yaml:"max_retries"`
	StrategyTimeoutMs int  `yaml:"strategy_timeout_ms"`
	TotalTimeoutMs    int  `yaml:"total_timeout_ms"`
}

// CacheConfig bounds the execution cache.
type CacheConfig struct {
	Capacity   int `yaml:"capacity"`
	TTLSeconds int `yaml:"ttl_seconds"`
}

// GuardConfig mirrors guard.Config in YAML form.
type GuardConfig struct {
	SoftMemoryLimitMB  uint64 `yaml:"soft_memory_limit_mb"`
	HardMemoryLimitMB  uint64 `yaml:"hard_memory_limit_mb"`
	ErrorThreshold     int    `yaml:"error_threshold"`
	ErrorWindowSeconds int    `yaml:"error_window_seconds"`
}

// PrioritiesConfig holds the three priority tables.
type PrioritiesConfig struct {
	Default  map[string]int            `yaml:"default"`
	Language map[string]map[string]int `yaml:"language"`
	FileType map[string]map[string]int `yaml:"file_type"`
}

// WeightsConfig holds the performance-score weights.
type WeightsConfig struct {
	Speed   float64 `yaml:"speed"`
	Success float64 `yaml:"success"`
}

// Default returns the built-in configuration.
func Default() *Config {
	sel := selector.DefaultConfig()
	return &Config{
		Chunking: ChunkingConfig{
			MaxChunkSize:      2000,
			MinChunkSize:      100,
			OverlapSize:       0,
			EnableCaching:     true,
			EnableFallback:    true,
			MaxRetries:        3,
			StrategyTimeoutMs: 5000,
			TotalTimeoutMs:    30000,
		},
		Cache: CacheConfig{Capacity: 1024, TTLSeconds: 300},
		Guard: GuardConfig{
			SoftMemoryLimitMB:  1024,
			HardMemoryLimitMB:  1536,
			ErrorThreshold:     10,
			ErrorWindowSeconds: 60,
		},
		Priorities: PrioritiesConfig{
			Default: map[string]int{
				strategy.NameAST:      1,
				strategy.NameFunction: 2,
				strategy.NameMarkdown: 2,
				strategy.NameXML:      2,
				strategy.NameSemantic: 3,
				strategy.NameBracket:  4,
				strategy.NameLine:     10,
			},
		},
		FallbackPaths: map[string][]string{
			strategy.NameAST:      {strategy.NameFunction, strategy.NameSemantic, strategy.NameBracket},
			strategy.NameFunction: {strategy.NameSemantic, strategy.NameBracket},
			strategy.NameMarkdown: {strategy.NameSemantic},
			strategy.NameXML:      {strategy.NameSemantic},
			strategy.NameSemantic: {strategy.NameBracket},
		},
		GenericFallbackPath: []string{strategy.NameSemantic, strategy.NameBracket, strategy.NameLine},
		DirectTriggers:      sel.DirectTriggers,
		TestFilePatterns:    sel.TestFilePatterns,
		Weights:             WeightsConfig{Speed: 1, Success: 1},
		Workers:             4,
	}
}

// Load reads a YAML file over the defaults. Absent keys keep their default
// values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Options converts the chunking section to engine options.
func (c *Config) Options() types.ChunkingOptions {
	return types.ChunkingOptions{
		MaxChunkSize:    c.Chunking.MaxChunkSize,
		MinChunkSize:    c.Chunking.MinChunkSize,
		OverlapSize:     c.Chunking.OverlapSize,
		EnableCaching:   c.Chunking.EnableCaching,
		EnableFallback:  c.Chunking.EnableFallback,
		MaxRetries:      c.Chunking.MaxRetries,
		StrategyTimeout: time.Duration(c.Chunking.StrategyTimeoutMs) * time.Millisecond,
		TotalTimeout:    time.Duration(c.Chunking.TotalTimeoutMs) * time.Millisecond,
	}.Normalize()
}

// PriorityConfig converts the priority sections for the priority manager.
func (c *Config) PriorityConfig() priority.Config {
	return priority.Config{
		Tables: priority.Tables{
			Default:  c.Priorities.Default,
			Language: c.Priorities.Language,
			FileType: c.Priorities.FileType,
		},
		Weights:       priority.Weights{Speed: c.Weights.Speed, Success: c.Weights.Success},
		FallbackPaths: c.FallbackPaths,
		GenericPath:   c.GenericFallbackPath,
	}
}

// GuardOptions converts the guard section.
func (c *Config) GuardOptions() guard.Config {
	return guard.Config{
		SoftMemoryLimitMB: c.Guard.SoftMemoryLimitMB,
		HardMemoryLimitMB: c.Guard.HardMemoryLimitMB,
		ErrorThreshold:    c.Guard.ErrorThreshold,
		ErrorWindow:       time.Duration(c.Guard.ErrorWindowSeconds) * time.Second,
	}
}

// SelectorConfig converts the trigger sections.
func (c *Config) SelectorConfig() selector.Config {
	return selector.Config{
		DirectTriggers:   c.DirectTriggers,
		TestFilePatterns: c.TestFilePatterns,
	}
}

// CacheTTL returns the cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}
