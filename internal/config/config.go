package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port      int    `koanf:"port"`
		JWTSecret string `koanf:"jwt_secret"`
	} `koanf:"server"`

	Database struct {
		URL string `koanf:"url"`
	} `koanf:"database"`

	Comments struct {
		Namespace     string  `koanf:"namespace"`
		WriteRateRPS  float64 `koanf:"write_rate_rps"`
		RemoteBaseURL string  `koanf:"remote_base_url"`
		RemoteToken   string  `koanf:"remote_token"`
	} `koanf:"comments"`

	SceneConfig struct {
		BaseURL  string `koanf:"base_url"`
		Language string `koanf:"language"`
	} `koanf:"sceneconfig"`

	Storage struct {
		Dir string `koanf:"dir"`
	} `koanf:"storage"`

	Log struct {
		Level  string `koanf:"level"`
		Pretty bool   `koanf:"pretty"`
	} `koanf:"log"`
}

// LoadConfig loads the configuration from a file
func LoadConfig(configPath string) (*Config, error) {
	var k = koanf.New(".")

	// Set up default configuration
	k.Load(confmap.Provider(map[string]interface{}{
		"server.port":            8787,
		"comments.write_rate_rps": 20.0,
		"sceneconfig.language":   "en-US",
		"log.level":              "info",
	}, "."), nil)

	// Load from TOML file if it exists
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	} else {
		// Try to load from default locations
		defaultPaths := []string{"./scenecast.toml", "$HOME/.scenecast.toml"}
		for _, path := range defaultPaths {
			path = os.ExpandEnv(path)
			if _, err := os.Stat(path); err == nil {
				if err := k.Load(file.Provider(path), toml.Parser()); err == nil {
					break
				}
			}
		}
	}

	// Load from environment variables with prefix SCENECAST_
	k.Load(env.Provider("SCENECAST_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "SCENECAST_")), "_", ".", -1)
	}), nil)

	// Unmarshal into Config struct
	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	return &config, nil
}

// InitConfig initializes a new configuration file
func InitConfig(configPath string) error {
	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists at %s", configPath)
	}

	// Create sample configuration
	sampleConfig := `# SceneCast Configuration

[server]
port = 8787
# Shared secret for Bearer tokens on mutating comment routes.
# Leave empty to disable auth (local development only).
jwt_secret = ""

[database]
# Postgres URL for comment persistence. Leave empty to run the comment
# store purely in memory.
url = ""

[comments]
# Partition prefix when several content sets share one store.
namespace = ""
write_rate_rps = 20.0
# Point the player at a SceneCast API instead of Postgres directly.
remote_base_url = ""
remote_token = ""

[sceneconfig]
# Remote endpoint for saved scene configurations.
base_url = ""
language = "en-US"

[storage]
# Directory for the durable author-identity store. Empty = in memory.
dir = ""

[log]
level = "info"
pretty = true
`

	return os.WriteFile(configPath, []byte(sampleConfig), 0644)
}

// Validate validates the configuration
func Validate(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", config.Server.Port)
	}

	if config.SceneConfig.BaseURL != "" && config.SceneConfig.Language == "" {
		return fmt.Errorf("sceneconfig language is required when base_url is set")
	}

	if config.Comments.WriteRateRPS <= 0 {
		return fmt.Errorf("comments write_rate_rps must be positive")
	}

	return nil
}
