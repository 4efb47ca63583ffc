// Package config holds runtime configuration, loaded from an optional YAML
// file with environment overrides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the runtime configuration.
type Config struct {
	// Model is the Gemini model name used for every stage.
	Model string `yaml:"model"`
	// DataDir is where the analysis history lives.
	DataDir string `yaml:"data_dir"`
	// ListenAddr is the REST server bind address.
	ListenAddr string `yaml:"listen_addr"`
	// VerifyConcurrency caps concurrent fact-check calls; 0 = unbounded.
	VerifyConcurrency int `yaml:"verify_concurrency"`
	// URLCacheSize is how many recent URL analyses the server keeps.
	URLCacheSize int `yaml:"url_cache_size"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Model:        "gemini-2.5-flash",
		DataDir:      "./data",
		ListenAddr:   ":8080",
		URLCacheSize: 32,
	}
}

// Load reads the config file at path (optional; missing file means
// defaults) and applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		cfg.Model = model
	}
	if dir := os.Getenv("DECONSTRUCTOR_DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.ListenAddr = ":" + port
	}
	return cfg, nil
}
