package cli

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/notechunk/internal/model"
)

func newTestViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	require.NoError(t, registerDefaults(v, model.DefaultConfig()))
	v.SetEnvPrefix("NOTECHUNK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(newTestViper(t))
	require.NoError(t, err)

	want := model.DefaultConfig()
	assert.Equal(t, want.LLM, cfg.LLM)
	assert.Equal(t, want.Chunking, cfg.Chunking)
	assert.Equal(t, want.Noise.SpeakerLabels, cfg.Noise.SpeakerLabels)
	assert.Equal(t, want.Paths.ExtractedDir, cfg.Paths.ExtractedDir)
	assert.Equal(t, want.Paths.ChunksDir, cfg.Paths.ChunksDir)
	assert.Equal(t, want.Paths.CacheFile, cfg.Paths.CacheFile)
	assert.Equal(t, time.Hour, cfg.Cache.MemoryTTL)
	assert.Equal(t, 1, cfg.Concurrency.Workers)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("NOTECHUNK_LLM_PROVIDER", "none")
	t.Setenv("NOTECHUNK_CHUNKING_MAX_WORDS", "50")
	t.Setenv("NOTECHUNK_CONCURRENCY_WORKERS", "4")
	t.Setenv("NOTECHUNK_CACHE_MEMORY_TTL", "15m")
	t.Setenv("NOTECHUNK_OUTPUT_SQLITE_PATH", "chunks.db")

	cfg, err := loadConfig(newTestViper(t))
	require.NoError(t, err)

	assert.Equal(t, "none", cfg.LLM.Provider)
	assert.Equal(t, 50, cfg.Chunking.MaxWords)
	assert.Equal(t, 4, cfg.Concurrency.Workers)
	assert.Equal(t, 15*time.Minute, cfg.Cache.MemoryTTL)
	assert.Equal(t, "chunks.db", cfg.Output.SQLitePath)
}

func TestLoadConfig_DerivedPathsFollowOutputDir(t *testing.T) {
	v := newTestViper(t)
	v.Set("paths.output_dir", "out")

	cfg, err := loadConfig(v)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("out", "extracted"), cfg.Paths.ExtractedDir)
	assert.Equal(t, filepath.Join("out", "chunks"), cfg.Paths.ChunksDir)
	assert.Equal(t, filepath.Join("out", "pipeline_cache.json"), cfg.Paths.CacheFile)
}

func TestLoadConfig_Invalid(t *testing.T) {
	v := newTestViper(t)
	v.Set("concurrency.workers", 0)

	_, err := loadConfig(v)
	assert.True(t, errors.Is(err, model.ErrInvalidConfig), "got %v", err)
}

func TestLoadConfig_OllamaBaseURLFromEnv(t *testing.T) {
	t.Setenv("OLLAMA_BASE_URL", "http://gpu-box:11434")
	v := newTestViper(t)
	v.Set("llm.provider", "ollama")

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "http://gpu-box:11434", cfg.LLM.BaseURL)
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notechunk", "config.yaml")
	require.NoError(t, writeDefaultConfig(path))

	v := newTestViper(t)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultConfig().Chunking, cfg.Chunking)
	assert.Equal(t, model.DefaultConfig().Paths.ChunksDir, cfg.Paths.ChunksDir)

	err = writeDefaultConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestFlatten(t *testing.T) {
	got := flatten("", map[string]any{
		"llm":   map[string]any{"provider": "groq", "timeout": 30},
		"paths": map[string]any{"include": []any{"*"}},
	})
	assert.Equal(t, map[string]any{
		"llm.provider":  "groq",
		"llm.timeout":   30,
		"paths.include": []any{"*"},
	}, got)
}
