package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gcbaptista/go-term-index/config"
	"github.com/gcbaptista/go-term-index/internal/errors"
	"github.com/gcbaptista/go-term-index/store"
)

// CreateIndex creates a new, empty index and saves its settings.
func (e *Engine) CreateIndex(settings config.IndexSettings) error {
	settings.ApplyDefaults()
	if problems := settings.Validate(); len(problems) > 0 {
		return errors.NewValidationError("settings", strings.Join(problems, "; "))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.indexes[settings.Name]; exists {
		return errors.NewIndexAlreadyExistsError(settings.Name)
	}

	dir := e.indexDir(settings.Name)
	instance, err := NewIndexInstance(settings, dir, store.NewTermStore(nil), nil, e.logger.With("index", settings.Name), e.metrics)
	if err != nil {
		return fmt.Errorf("failed to create new index instance for '%s': %w", settings.Name, err)
	}
	// A directory left behind by an index that failed to load must not
	// resurface its node stream on the next start.
	for _, leftover := range []string{trieFile, manifestFile} {
		if err := os.Remove(filepath.Join(dir, leftover)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to clear stale %s for index %s: %w", leftover, settings.Name, err)
		}
	}
	if err := saveSettings(dir, settings); err != nil {
		return err
	}

	e.indexes[settings.Name] = instance
	e.metrics.SetIndexSize(settings.Name, 1, 0)
	e.logger.Info("Index created", "index", settings.Name)
	return nil
}

// DeleteIndex removes an index from memory and its directory from disk.
func (e *Engine) DeleteIndex(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	instance, exists := e.indexes[name]
	if !exists {
		return errors.NewIndexNotFoundError(name)
	}

	instance.persistMu.Lock()
	defer instance.persistMu.Unlock()

	delete(e.indexes, name)
	instance.removed = true

	dir := e.indexDir(name)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove index directory %s: %w", dir, err)
	}

	e.metrics.ForgetIndex(name)
	e.logger.Info("Index deleted", "index", name)
	return nil
}

// RenameIndex moves an index to a new name, including its directory.
func (e *Engine) RenameIndex(oldName, newName string) error {
	if oldName == newName {
		return errors.NewValidationError("new_name", fmt.Sprintf("index is already named '%s'", oldName))
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	instance, exists := e.indexes[oldName]
	if !exists {
		return errors.NewIndexNotFoundError(oldName)
	}
	if _, exists := e.indexes[newName]; exists {
		return errors.NewIndexAlreadyExistsError(newName)
	}

	newSettings := instance.Settings()
	newSettings.Name = newName
	if problems := newSettings.Validate(); len(problems) > 0 {
		return errors.NewValidationError("new_name", strings.Join(problems, "; "))
	}

	instance.persistMu.Lock()
	defer instance.persistMu.Unlock()

	oldDir, newDir := e.indexDir(oldName), e.indexDir(newName)
	if err := os.Rename(oldDir, newDir); err != nil {
		return fmt.Errorf("failed to move index directory %s: %w", oldDir, err)
	}
	if err := saveSettings(newDir, newSettings); err != nil {
		// Put the directory back so the old name keeps loading.
		if rerr := os.Rename(newDir, oldDir); rerr != nil {
			e.logger.Error("Failed to restore index directory after rename failure", "from", newDir, "to", oldDir, "err", rerr)
		}
		return err
	}

	instance.mu.Lock()
	instance.dir = newDir
	instance.logger = e.logger.With("index", newName)
	err := instance.applySettings(newSettings)
	instance.mu.Unlock()
	if err != nil {
		return err
	}

	e.indexes[newName] = instance
	delete(e.indexes, oldName)

	stats := instance.Stats()
	e.metrics.ForgetIndex(oldName)
	e.metrics.SetIndexSize(newName, stats.Nodes, stats.Words)
	e.logger.Info("Index renamed", "from", oldName, "to", newName)
	return nil
}

// MergeIndex adds every word of source to target and returns how many were
// new. Source words are normalized with target's case policy.
func (e *Engine) MergeIndex(target, source string) (int, error) {
	targetInstance, err := e.instance(target)
	if err != nil {
		return 0, err
	}
	sourceInstance, err := e.instance(source)
	if err != nil {
		return 0, err
	}

	snapshot := sourceInstance.store.Snapshot()
	indexer := targetInstance.indexing()

	var added int
	if sourceInstance.Settings().CaseSensitive && !targetInstance.Settings().CaseSensitive {
		added = indexer.AddWords(snapshot.Words())
	} else {
		added = indexer.Merge(snapshot)
	}

	e.logger.Info("Merged index", "target", target, "source", source, "added", added)
	return added, nil
}
