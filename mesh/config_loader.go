package mesh

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfig returns the settings used when no config file is given
func DefaultConfig() *Config {
	return &Config{
		Alignment: AlignmentConfig{
			MinOverlap: MinOverlap,
			Root:       0,
			Workers:    0,
		},
		MQTT: MQTTConfig{
			ClientID:      "beaconmesh",
			InputTopic:    "beaconmesh/scans",
			PublishPrefix: "beaconmesh",
		},
		Render: RenderConfig{
			Scale:       0.5,
			Padding:     100,
			GridSpacing: 500,
			Resolution:  50,
		},
	}
}

// LoadConfig loads the configuration from a YAML file. Fields missing from
// the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadConfigOrDefault loads path if it exists and falls back to
// DefaultConfig otherwise. Parse and validation errors are still returned.
func LoadConfigOrDefault(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.Alignment.MinOverlap < 3 {
		return fmt.Errorf("alignment.minOverlap must be at least 3, got %d", c.Alignment.MinOverlap)
	}
	if c.Alignment.Root < 0 {
		return fmt.Errorf("alignment.root must not be negative, got %d", c.Alignment.Root)
	}
	if c.Alignment.CacheMaxAge < 0 {
		return fmt.Errorf("alignment.cacheMaxAge must not be negative, got %v", c.Alignment.CacheMaxAge)
	}
	if c.Alignment.Workers < 0 {
		return fmt.Errorf("alignment.workers must not be negative, got %d", c.Alignment.Workers)
	}
	if c.Render.Scale <= 0 {
		return fmt.Errorf("render.scale must be positive, got %g", c.Render.Scale)
	}
	if c.Render.Padding < 0 {
		return fmt.Errorf("render.padding must not be negative, got %g", c.Render.Padding)
	}
	return nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(path string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshaling config YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// ResolveBroker returns the broker address, MQTT_BROKER taking precedence
// over the config file
func (c *Config) ResolveBroker() string {
	if broker := os.Getenv("MQTT_BROKER"); broker != "" {
		return broker
	}
	return c.MQTT.Broker
}
