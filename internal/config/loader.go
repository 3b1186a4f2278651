package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// GetConfigPath returns the default config file path (~/.attendant/config.yaml).
func GetConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".attendant", "config.yaml")
}

// Load reads configuration from a YAML file. A .env file in the working
// directory is loaded first so secrets can live outside the config file.
// If path is empty, the default config path is used; a missing file yields
// DefaultConfig().
func Load(path string) (Config, error) {
	// A missing .env is fine.
	_ = godotenv.Load()

	if path == "" {
		path = GetConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return DefaultConfig(), err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), err
	}
	applyEnv(&cfg)
	return cfg, nil
}

// Save writes configuration to a YAML file, creating parent directories.
func Save(cfg Config, path string) error {
	if path == "" {
		path = GetConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// applyEnv fills secrets from the environment when the file left them empty.
func applyEnv(cfg *Config) {
	if cfg.Completion.APIKey == "" {
		cfg.Completion.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Storage.RedisURL == "" {
		cfg.Storage.RedisURL = os.Getenv("ATTENDANT_REDIS_URL")
	}
	if cfg.Chat.Token == "" {
		cfg.Chat.Token = os.Getenv("ATTENDANT_CHAT_TOKEN")
	}
}
