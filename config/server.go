package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// ServerConfig is the server configuration file.
type ServerConfig struct {
	Server  ServerSection  `toml:"server"`
	Storage StorageSection `toml:"storage"`
	Jobs    JobsSection    `toml:"jobs"`
	Log     LogSection     `toml:"log"`
}

type ServerSection struct {
	Port            int   `toml:"port"`
	MaxRequestBytes int64 `toml:"max_request_bytes"`
}

type StorageSection struct {
	DataDir string `toml:"data_dir"`
}

type JobsSection struct {
	MaxWorkers int `toml:"max_workers"`
}

type LogSection struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"` // text, logfmt or json
	Timestamps bool   `toml:"timestamps"`
}

// DefaultServerConfig returns the configuration used when no file is given.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Port:            8080,
			MaxRequestBytes: 32 << 20,
		},
		Storage: StorageSection{
			DataDir: "./term_data",
		},
		Jobs: JobsSection{
			MaxWorkers: 4,
		},
		Log: LogSection{
			Level:      "info",
			Format:     "text",
			Timestamps: true,
		},
	}
}

// LoadServerConfig reads path over the defaults. A missing file yields the
// defaults; a malformed or invalid one is an error.
func LoadServerConfig(path string) (*ServerConfig, error) {
	cfg := DefaultServerConfig()
	if path == "" {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535 (got %d)", c.Server.Port)
	}
	if c.Server.MaxRequestBytes < 1 {
		return fmt.Errorf("server.max_request_bytes must be positive (got %d)", c.Server.MaxRequestBytes)
	}
	if c.Storage.DataDir == "" {
		return errors.New("storage.data_dir must not be empty")
	}
	if c.Jobs.MaxWorkers < 1 {
		return fmt.Errorf("jobs.max_workers must be at least 1 (got %d)", c.Jobs.MaxWorkers)
	}
	return nil
}
