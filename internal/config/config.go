// Package config provides configuration loading and structs for emnet.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Indexer   IndexerConfig   `yaml:"indexer"`
	Search    SearchConfig    `yaml:"search"`
	Server    ServerConfig    `yaml:"server"`
	Watch     WatchConfig     `yaml:"watch"`
}

// CorpusConfig locates the documents and the persisted index.
type CorpusConfig struct {
	// Root is the corpus directory. Empty means the current working directory.
	Root string `yaml:"root"`
	// Pattern is the file glob matched in Root (non-recursive).
	Pattern string `yaml:"pattern"`
	// StoreDir is the subdirectory of Root holding the vector mapping and index.
	StoreDir string `yaml:"store_dir"`
}

// StorePath returns the absolute directory of the persisted index.
func (c *CorpusConfig) StorePath() string {
	return filepath.Join(c.Root, c.StoreDir)
}

// EmbeddingConfig holds embedding model settings.
type EmbeddingConfig struct {
	// Provider is "onnx" (default) or "hash" (deterministic, no model file).
	Provider   string `yaml:"provider"`
	ModelPath  string `yaml:"model_path"`
	// VocabPath is the WordPiece vocabulary of the model. Empty means vocab.txt next to ModelPath.
	VocabPath  string `yaml:"vocab_path"`
	Dimensions int    `yaml:"dimensions"`
	MaxTokens  int    `yaml:"max_tokens"`
	CacheSize  int    `yaml:"cache_size"`
}

// Vocab returns the vocabulary path, defaulting to vocab.txt in the model's directory.
func (e *EmbeddingConfig) Vocab() string {
	if e.VocabPath != "" {
		return e.VocabPath
	}
	return filepath.Join(filepath.Dir(e.ModelPath), "vocab.txt")
}

// IndexerConfig holds document embedding settings.
type IndexerConfig struct {
	ChunkSize int `yaml:"chunk_size"`
	Workers   int `yaml:"workers"`
}

// SearchConfig holds ranking settings.
type SearchConfig struct {
	TopK int `yaml:"top_k"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// WatchConfig holds corpus watch settings.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	if err := resolvePaths(&cfg, filepath.Dir(path)); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads path when it exists. A missing file yields the defaults with the
// corpus rooted at the current working directory.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return Default()
}

// Default returns the default configuration with the corpus rooted at the current working directory.
func Default() (*Config, error) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	if err := resolvePaths(cfg, cwd); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func resolvePaths(cfg *Config, configDir string) error {
	if cfg.Corpus.Root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		cfg.Corpus.Root = cwd
	} else {
		cfg.Corpus.Root = expandPath(cfg.Corpus.Root, configDir)
	}
	cfg.Corpus.Root = filepath.Clean(cfg.Corpus.Root)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	cfg.Embedding.VocabPath = expandPath(cfg.Embedding.VocabPath, configDir)
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// "~/" and other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	path = strings.TrimPrefix(path, "~/")
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
