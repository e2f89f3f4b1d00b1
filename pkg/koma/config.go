package koma

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	EncodingUTF8     = "utf-8"
	EncodingShiftJIS = "shift_jis"
)

type Config struct {
	Encoding string `json:"encoding"`
	Schema   string `json:"schema"`
	Parallel int    `json:"parallel"`
}

// DefaultConfig is used when no config.json is found.
func DefaultConfig() Config {
	return Config{
		Encoding: EncodingUTF8,
		Schema:   filepath.Join("schema", "piece_table.json"),
		Parallel: 1,
	}
}

const configName = "config.json"

// FindConfigPath looks for config.json in the working directory and its
// parents. It returns the file and the directory holding it.
func FindConfigPath() (string, string, error) {
	start, err := filepath.Abs(".")
	if err != nil {
		return "", "", err
	}
	for dir := start; ; {
		path := filepath.Join(dir, configName)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", "", fmt.Errorf("%s not found in %s or its parents", configName, start)
		}
		dir = parent
	}
}

// LoadConfig reads path over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Encoding {
	case EncodingUTF8, EncodingShiftJIS:
	default:
		return fmt.Errorf("unknown encoding %q", c.Encoding)
	}
	if c.Parallel <= 0 {
		return fmt.Errorf("parallel must be > 0, got %d", c.Parallel)
	}
	return nil
}

// ResolvePath makes a config-relative path absolute against root.
func ResolvePath(path, root string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
