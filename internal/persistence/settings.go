package persistence

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/gcbaptista/go-term-index/config"
)

// SaveSettings writes index settings to path as TOML.
func SaveSettings(path string, settings config.IndexSettings) error {
	return writeAtomic(path, func(w io.Writer) error {
		if err := toml.NewEncoder(w).Encode(settings); err != nil {
			return fmt.Errorf("failed to encode settings to %s: %w", path, err)
		}
		return nil
	})
}

// LoadSettings reads index settings from path. A missing file returns
// os.ErrNotExist so callers can tell it apart from a broken one.
func LoadSettings(path string) (config.IndexSettings, error) {
	var settings config.IndexSettings
	if _, err := toml.DecodeFile(path, &settings); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, os.ErrNotExist
		}
		return settings, fmt.Errorf("failed to decode settings from %s: %w", path, err)
	}
	return settings, nil
}
