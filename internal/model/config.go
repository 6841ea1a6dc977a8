package model

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"
)

// ErrInvalidConfig is returned when a configuration value is out of range
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete notechunk configuration.
// Field tags serve both viper (mapstructure) and the YAML dump of "config show".
type Config struct {
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Chunking    ChunkingConfig    `yaml:"chunking" mapstructure:"chunking"`
	Noise       NoiseConfig       `yaml:"noise" mapstructure:"noise"`
	Paths       PathsConfig       `yaml:"paths" mapstructure:"paths"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	Logging     LoggingConfig     `yaml:"logging" mapstructure:"logging"`
}

// LLMConfig configures the model used for semantic splitting
type LLMConfig struct {
	Provider          string  `yaml:"provider" mapstructure:"provider"` // groq, openai, anthropic, ollama, none
	Model             string  `yaml:"model" mapstructure:"model"`
	APIKey            string  `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL           string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout           int     `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens         int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Retries           int     `yaml:"retries" mapstructure:"retries"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
	HTTPProxy         string  `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy        string  `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
}

// ChunkingConfig holds the chunking thresholds
type ChunkingConfig struct {
	MaxWords      int `yaml:"max_words" mapstructure:"max_words"`             // budget for one semantic unit
	MinChunkWords int `yaml:"min_chunk_words" mapstructure:"min_chunk_words"` // shorter chunks are dropped
	MinSplitWords int `yaml:"min_split_words" mapstructure:"min_split_words"` // shorter paragraphs are kept whole
	MinLineChars  int `yaml:"min_line_chars" mapstructure:"min_line_chars"`   // shorter lines are noise
}

// NoiseConfig extends the built-in noise rules
type NoiseConfig struct {
	SpeakerLabels []string `yaml:"speaker_labels" mapstructure:"speaker_labels"`
	FooterMarkers []string `yaml:"footer_markers" mapstructure:"footer_markers"`
	ExtraPatterns []string `yaml:"extra_patterns,omitempty" mapstructure:"extra_patterns"`
}

// PathsConfig locates the pipeline directories
type PathsConfig struct {
	RawDir       string   `yaml:"raw_dir" mapstructure:"raw_dir"`
	OutputDir    string   `yaml:"output_dir" mapstructure:"output_dir"`
	ExtractedDir string   `yaml:"extracted_dir" mapstructure:"extracted_dir"`
	ChunksDir    string   `yaml:"chunks_dir" mapstructure:"chunks_dir"`
	CacheFile    string   `yaml:"cache_file" mapstructure:"cache_file"`
	CleanDirs    []string `yaml:"clean_dirs" mapstructure:"clean_dirs"` // relative to output_dir
	Include      []string `yaml:"include" mapstructure:"include"`       // glob patterns inside raw_dir
}

// CacheConfig controls the split cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig controls parallelism across documents
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// OutputConfig holds optional secondary outputs
type OutputConfig struct {
	SQLitePath  string `yaml:"sqlite_path,omitempty" mapstructure:"sqlite_path"`
	MetricsFile string `yaml:"metrics_file,omitempty" mapstructure:"metrics_file"`
	Verbose     bool   `yaml:"verbose" mapstructure:"verbose"`
}

// LoggingConfig controls the structured logger
type LoggingConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	JSON  bool   `yaml:"json" mapstructure:"json"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	outputDir := filepath.Join("data", "output")
	return &Config{
		LLM: LLMConfig{
			Provider:          "groq",
			Model:             "llama-3.1-8b-instant",
			Timeout:           30,
			MaxTokens:         1024,
			Retries:           2,
			RequestsPerSecond: 0.5,
			Burst:             2,
		},
		Chunking: ChunkingConfig{
			MaxWords:      35,
			MinChunkWords: 5,
			MinSplitWords: 6,
			MinLineChars:  4,
		},
		Noise: NoiseConfig{
			SpeakerLabels: []string{
				"Almatech", "Client", "Consultant", "Intervenant", "Réunion", "Pause",
				"Merci", "Merci beaucoup", "OK", "D'accord", "Bonjour", "Salut", "Au revoir",
			},
			FooterMarkers: []string{"Confidentiel", "Almatech Consulting"},
		},
		Paths: PathsConfig{
			RawDir:       filepath.Join("data", "notes_raw"),
			OutputDir:    outputDir,
			ExtractedDir: filepath.Join(outputDir, "extracted"),
			ChunksDir:    filepath.Join(outputDir, "chunks"),
			CacheFile:    filepath.Join(outputDir, "pipeline_cache.json"),
			CleanDirs:    []string{"extracted", "chunks", "embeddings", "index", "fad_generated"},
			Include:      []string{"*"},
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: time.Hour,
			DiskTTL:   30 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 1,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks the thresholds that the chunker relies on
func (c *Config) Validate() error {
	if c.Chunking.MaxWords <= 0 {
		return fmt.Errorf("%w: chunking.max_words must be positive, got %d", ErrInvalidConfig, c.Chunking.MaxWords)
	}
	if c.Chunking.MinChunkWords < 0 {
		return fmt.Errorf("%w: chunking.min_chunk_words cannot be negative", ErrInvalidConfig)
	}
	if c.Chunking.MinSplitWords < 0 {
		return fmt.Errorf("%w: chunking.min_split_words cannot be negative", ErrInvalidConfig)
	}
	if c.LLM.Timeout < 0 {
		return fmt.Errorf("%w: llm.timeout cannot be negative", ErrInvalidConfig)
	}
	if c.LLM.Retries < 0 {
		return fmt.Errorf("%w: llm.retries cannot be negative", ErrInvalidConfig)
	}
	if c.Concurrency.Workers <= 0 {
		return fmt.Errorf("%w: concurrency.workers must be positive, got %d", ErrInvalidConfig, c.Concurrency.Workers)
	}
	return nil
}

// FillDerivedPaths sets empty intermediate paths relative to Paths.OutputDir
func (c *Config) FillDerivedPaths() {
	if c.Paths.ExtractedDir == "" {
		c.Paths.ExtractedDir = filepath.Join(c.Paths.OutputDir, "extracted")
	}
	if c.Paths.ChunksDir == "" {
		c.Paths.ChunksDir = filepath.Join(c.Paths.OutputDir, "chunks")
	}
	if c.Paths.CacheFile == "" {
		c.Paths.CacheFile = filepath.Join(c.Paths.OutputDir, "pipeline_cache.json")
	}
}
