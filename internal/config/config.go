// Package config handles configuration loading and schema definition.
// Settings come from a YAML file, with secrets filled from the environment
// (a local .env file is honored when present).
package config

// Config is the top-level attendant configuration.
type Config struct {
	Assistant  AssistantConfig  `yaml:"assistant"`
	Storage    StorageConfig    `yaml:"storage"`
	Completion CompletionConfig `yaml:"completion"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	API        APIConfig        `yaml:"api"`
	Console    ConsoleConfig    `yaml:"console"`
	Chat       ChatConfig       `yaml:"chat"`
}

// AssistantConfig holds persona and command settings.
type AssistantConfig struct {
	Persona      string `yaml:"persona"`
	ClearCommand string `yaml:"clearCommand"`
}

// StorageConfig selects and configures the key-value backend.
type StorageConfig struct {
	Backend       string `yaml:"backend"` // pebble | redis | memory
	Path          string `yaml:"path"`
	RedisURL      string `yaml:"redisUrl"`
	RedisPassword string `yaml:"redisPassword"`
	RedisDB       int    `yaml:"redisDb"`
}

// CompletionConfig holds completion gateway settings.
type CompletionConfig struct {
	APIKey      string  `yaml:"apiKey"`
	APIBase     string  `yaml:"apiBase"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
}

// RetrievalConfig holds retrieval-augmentation policy.
type RetrievalConfig struct {
	// ClearCacheAfterUse drops retrieval caches once their fragments have
	// been used in a completion instead of keeping them across turns.
	ClearCacheAfterUse bool `yaml:"clearCacheAfterUse"`
}

// APIConfig holds the webhook receiver settings.
type APIConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// ConsoleConfig holds the interactive text server settings.
type ConsoleConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// ChatConfig holds the chat-protocol client settings.
type ChatConfig struct {
	GatewayURL string `yaml:"gatewayUrl"`
	Token      string `yaml:"token"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Assistant: AssistantConfig{
			ClearCommand: "//clear.",
		},
		Storage: StorageConfig{
			Backend: "pebble",
		},
		Completion: CompletionConfig{
			Temperature: 0.7,
		},
		Retrieval: RetrievalConfig{
			ClearCacheAfterUse: false,
		},
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 18900,
		},
		Console: ConsoleConfig{
			Host: "127.0.0.1",
			Port: 18901,
		},
	}
}
