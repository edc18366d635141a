package engine

import (
	"fmt"
	"strings"

	"github.com/gcbaptista/go-term-index/config"
	"github.com/gcbaptista/go-term-index/internal/errors"
)

// UpdateIndexSettings replaces the settings of an index and rebuilds its services.
// The name cannot change here; use RenameIndex.
//
// Words already stored are kept as they are. Switching case_sensitive off does
// not fold existing words; rebuild the index for that.
func (e *Engine) UpdateIndexSettings(name string, newSettings config.IndexSettings) error {
	if newSettings.Name != "" && newSettings.Name != name {
		return errors.NewValidationError("name", fmt.Sprintf("cannot change index name from '%s' to '%s' during settings update", name, newSettings.Name))
	}
	newSettings.Name = name
	newSettings.ApplyDefaults()
	if problems := newSettings.Validate(); len(problems) > 0 {
		return errors.NewValidationError("settings", strings.Join(problems, "; "))
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	instance, exists := e.indexes[name]
	if !exists {
		return errors.NewIndexNotFoundError(name)
	}

	instance.mu.Lock()
	defer instance.mu.Unlock()

	oldSettings := instance.settings
	if err := instance.applySettings(newSettings); err != nil {
		return err
	}
	if err := saveSettings(instance.dir, newSettings); err != nil {
		if rerr := instance.applySettings(oldSettings); rerr != nil {
			e.logger.Error("Failed to restore settings after save failure", "index", name, "err", rerr)
		}
		return err
	}

	if oldSettings.CaseSensitive != newSettings.CaseSensitive {
		e.logger.Warn("Case policy changed; existing words keep their case", "index", name, "case_sensitive", newSettings.CaseSensitive)
	}
	e.logger.Info("Settings updated", "index", name)
	return nil
}
