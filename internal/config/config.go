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
	Store struct {
		Path string `koanf:"path"`
	} `koanf:"store"`

	Browser struct {
		DevtoolsURL     string `koanf:"devtools_url"`
		WaitIntervalMS  int    `koanf:"wait_interval_ms"`
		WaitMaxAttempts int    `koanf:"wait_max_attempts"`
	} `koanf:"browser"`

	Bridge struct {
		Port int `koanf:"port"`
	} `koanf:"bridge"`

	GitHub struct {
		ClientID string `koanf:"client_id"`
		APIURL   string `koanf:"api_url"`
	} `koanf:"github"`

	Prompt struct {
		AssetBaseURL string `koanf:"asset_base_url"`
	} `koanf:"prompt"`

	Telemetry struct {
		Endpoint string `koanf:"endpoint"`
	} `koanf:"telemetry"`
}

// LoadConfig loads the configuration from a file
func LoadConfig(configPath string) (*Config, error) {
	var k = koanf.New(".")

	// Set up default configuration
	k.Load(confmap.Provider(map[string]interface{}{
		"store.path":                "zennit.db",
		"browser.devtools_url":      "http://127.0.0.1:9222",
		"browser.wait_interval_ms":  500,
		"browser.wait_max_attempts": 240,
		"bridge.port":               8729,
		"github.api_url":            "https://api.github.com",
	}, "."), nil)

	// Load from TOML file if it exists
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	} else {
		// Try to load from default locations
		defaultPaths := []string{"./zennit.toml", "$HOME/.zennit.toml"}
		for _, path := range defaultPaths {
			path = os.ExpandEnv(path)
			if _, err := os.Stat(path); err == nil {
				if err := k.Load(file.Provider(path), toml.Parser()); err == nil {
					break
				}
			}
		}
	}

	// Load from environment variables with prefix ZENNIT_
	k.Load(env.Provider("ZENNIT_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "ZENNIT_")), "_", ".", 1)
	}), nil)

	// Unmarshal into Config struct
	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	return &config, nil
}

// InitConfig writes a sample configuration file. An existing file is left
// alone unless force is set.
func InitConfig(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists at %s", configPath)
	}

	// Create sample configuration
	sampleConfig := `# zennit configuration

[store]
path = "zennit.db"

[browser]
# Chrome must be running with --remote-debugging-port=9222
devtools_url = "http://127.0.0.1:9222"
wait_interval_ms = 500
wait_max_attempts = 240

[bridge]
port = 8729

[github]
# OAuth app client id used for the device flow
client_id = ""

[prompt]
# Optional: serve default prompts from a URL instead of the bundled copies
asset_base_url = ""

[telemetry]
# Leave empty to disable
endpoint = ""
`

	return os.WriteFile(configPath, []byte(sampleConfig), 0644)
}

// Validate validates the configuration
func Validate(config *Config) error {
	if config.Store.Path == "" {
		return fmt.Errorf("store path is required")
	}
	if config.Browser.DevtoolsURL == "" {
		return fmt.Errorf("browser devtools_url is required")
	}
	if config.Browser.WaitIntervalMS <= 0 {
		return fmt.Errorf("browser wait_interval_ms must be positive")
	}
	if config.Browser.WaitMaxAttempts <= 0 {
		return fmt.Errorf("browser wait_max_attempts must be positive")
	}
	if config.Bridge.Port <= 0 || config.Bridge.Port > 65535 {
		return fmt.Errorf("bridge port must be a valid TCP port")
	}
	if config.GitHub.APIURL == "" {
		return fmt.Errorf("github api_url is required")
	}
	return nil
}
