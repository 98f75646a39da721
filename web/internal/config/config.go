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

// WebServerConfig represents the web server configuration
type WebServerConfig struct {
	Server    HTTPServer      `yaml:"server"`
	Backend   BackendConfig   `yaml:"backend"`
	Session   SessionConfig   `yaml:"session"`
	Templates TemplatesConfig `yaml:"templates"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// HTTPServer holds HTTP server configuration
type HTTPServer struct {
	Host string `yaml:"host" default:"localhost"`
	Port int    `yaml:"port" default:"8080"`
}

// BackendConfig holds the REST backend connection info
type BackendConfig struct {
	BaseURL string `yaml:"base_url" default:"http://localhost:5000/api"`
}

// SessionConfig holds session cookie configuration
type SessionConfig struct {
	Secret string `yaml:"secret"` // 32-byte base64-encoded string
	Secure bool   `yaml:"secure"` // set true when serving over HTTPS
}

// TemplatesConfig holds template loading configuration
type TemplatesConfig struct {
	Path string `yaml:"path" default:"web/templates"` // Path to templates directory
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" default:"info"`  // Log level: debug, info, warn, error
	Format string `yaml:"format" default:"json"` // Log format: json, text
}

// DefaultConfigPaths defines the default locations to search for web configuration files
var DefaultConfigPaths = []string{
	"./config.yaml",
	"./config.yml",
	"./configs/web.yaml",
	"./configs/web.yml",
	"./configs/development.yaml",
	"/etc/lente/config.yaml",
	"/etc/lente/config.yml",
}

// Load loads the web server configuration from the specified file or default locations
func Load(configPath string) (*WebServerConfig, error) {
	// Set default values
	config := &WebServerConfig{
		Server: HTTPServer{
			Host: "localhost",
			Port: 8080,
		},
		Backend: BackendConfig{
			BaseURL: "http://localhost:5000/api",
		},
		Templates: TemplatesConfig{
			Path: "web/templates",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	// If no config path is provided, search in default locations
	if configPath == "" {
		configPath = findConfigFile()
	}

	// Load configuration from file if it exists
	if configPath != "" && fileExists(configPath) {
		fmt.Printf("[CONFIG] Loading web config from: %s\n", configPath)
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		// Expand environment variables in the config
		data = expandEnvVars(data)

		// Parse YAML
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else {
		fmt.Printf("[CONFIG] No web config file found, using defaults\n")
	}

	// Environment variables take precedence
	if baseURL := os.Getenv("BACKEND_BASE_URL"); baseURL != "" {
		config.Backend.BaseURL = baseURL
		fmt.Printf("[CONFIG] Using backend base URL from environment: %s\n", baseURL)
	}

	// Validate
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
func validate(config *WebServerConfig) error {
	// Validate HTTP port is reasonable
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	// Validate backend base URL is not empty
	if config.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url cannot be empty")
	}

	return nil
}
