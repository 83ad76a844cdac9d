package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// expandEnvVars expands environment variables in the format ${VAR} or $VAR
func expandEnvVars(data []byte) []byte {
	return []byte(os.ExpandEnv(string(data)))
}

// WebConfig represents the web frontend configuration
type WebConfig struct {
	Server    HTTPServer      `yaml:"server"`
	Backend   BackendConfig   `yaml:"backend"`
	Identity  IdentityConfig  `yaml:"identity"`
	Session   SessionConfig   `yaml:"session"`
	Templates TemplatesConfig `yaml:"templates"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// HTTPServer holds HTTP server configuration
type HTTPServer struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// BackendConfig holds the marketplace REST backend location
type BackendConfig struct {
	BaseURL string `yaml:"base_url"`
}

// IdentityConfig holds the identity provider endpoint and API key
type IdentityConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`
}

// SessionConfig holds session cookie configuration
type SessionConfig struct {
	Secret string `yaml:"secret"` // 32-byte base64-encoded string
}

// TemplatesConfig holds template loading configuration
type TemplatesConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// DefaultConfigPaths defines the default locations to search for config files
var DefaultConfigPaths = []string{
	"./config.yaml",
	"./config.yml",
	"./configs/web.yaml",
	"./configs/web.yml",
	"/etc/bazaar/config.yaml",
	"/etc/bazaar/config.yml",
}

// Load loads the web configuration from the specified file or default locations
func Load(configPath string) (*WebConfig, error) {
	config := &WebConfig{
		Server: HTTPServer{
			Host: "localhost",
			Port: 8080,
		},
		Backend: BackendConfig{
			BaseURL: "http://localhost:8000/api/v1",
		},
		Templates: TemplatesConfig{
			Path: "web/templates",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" && fileExists(configPath) {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		data = expandEnvVars(data)

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Environment variables take precedence over the file
	if baseURL := os.Getenv("BACKEND_BASE_URL"); baseURL != "" {
		config.Backend.BaseURL = baseURL
	}
	if endpoint := os.Getenv("IDENTITY_ENDPOINT"); endpoint != "" {
		config.Identity.Endpoint = endpoint
	}
	if apiKey := os.Getenv("IDENTITY_API_KEY"); apiKey != "" {
		config.Identity.APIKey = apiKey
	}

	if err := validate(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// findConfigFile searches for a configuration file in default locations
func findConfigFile() string {
	for _, path := range DefaultConfigPaths {
		if fileExists(path) {
			return path
		}
	}
	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return !info.IsDir()
}

// validate performs basic validation on the web configuration
func validate(config *WebConfig) error {
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if config.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url cannot be empty")
	}
	return nil
}
