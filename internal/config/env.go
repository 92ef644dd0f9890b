package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that override file configuration.
const (
	EnvCorpus    = "EMNET_CORPUS"
	EnvModelPath = "EMNET_MODEL_PATH"
	EnvVocabPath = "EMNET_VOCAB_PATH"
	EnvProvider  = "EMNET_PROVIDER"
	EnvDebug     = "EMNET_DEBUG"
)

// LoadDotEnv loads variables from the given .env files (default ".env") into the
// process environment. Missing files are ignored; existing variables are not overwritten.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg with EMNET_* environment variables. Paths from the
// environment are resolved against the working directory.
func ApplyEnv(cfg *Config) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	if v := os.Getenv(EnvCorpus); v != "" {
		cfg.Corpus.Root = envPath(v, cwd)
	}
	if v := os.Getenv(EnvModelPath); v != "" {
		cfg.Embedding.ModelPath = envPath(v, cwd)
	}
	if v := os.Getenv(EnvVocabPath); v != "" {
		cfg.Embedding.VocabPath = envPath(v, cwd)
	}
	if v := os.Getenv(EnvProvider); v != "" {
		cfg.Embedding.Provider = v
	}
	if v := os.Getenv(EnvDebug); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvDebug, err)
		}
		cfg.Debug = debug
	}
	return nil
}

// envPath resolves a path from the environment: "~/" is home-relative, anything else
// relative is taken from the working directory.
func envPath(path, cwd string) string {
	if strings.HasPrefix(path, "~/") {
		return expandPath(path, cwd)
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(cwd, path)
}
