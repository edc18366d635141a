package engine

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gcbaptista/go-term-index/config"
	"github.com/gcbaptista/go-term-index/internal/persistence"
	"github.com/gcbaptista/go-term-index/store"
)

// loadIndexesFromDisk loads every index directory under the data directory.
// A directory whose settings cannot be read is skipped. A node stream that
// fails verification is ignored and the index starts empty.
func (e *Engine) loadIndexesFromDisk() {
	e.logger.Info("Loading indexes from disk", "dir", e.dataDir)

	items, err := os.ReadDir(e.dataDir)
	if err != nil {
		e.logger.Warn("Failed to read data directory; no indexes loaded", "dir", e.dataDir, "err", err)
		return
	}

	for _, item := range items {
		if !item.IsDir() {
			continue
		}
		instance, err := e.loadIndex(item.Name())
		if err != nil {
			e.logger.Warn("Skipping index directory", "index", item.Name(), "err", err)
			continue
		}
		e.indexes[item.Name()] = instance

		stats := instance.Stats()
		e.metrics.SetIndexSize(stats.Name, stats.Nodes, stats.Words)
		e.logger.Info("Loaded index", "index", stats.Name, "words", stats.Words, "nodes", stats.Nodes, "persisted", stats.Persisted)
	}
}

func (e *Engine) loadIndex(name string) (*IndexInstance, error) {
	dir := e.indexDir(name)

	settings, err := persistence.LoadSettings(filepath.Join(dir, settingsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if settings.Name != name {
		return nil, fmt.Errorf("index name in settings ('%s') does not match directory name", settings.Name)
	}
	settings.ApplyDefaults()
	if problems := settings.Validate(); len(problems) > 0 {
		return nil, fmt.Errorf("invalid settings: %s", strings.Join(problems, "; "))
	}

	termStore, manifest := e.loadTrie(name, dir)
	return NewIndexInstance(settings, dir, termStore, manifest, e.logger.With("index", name), e.metrics)
}

// loadTrie decodes the index's node stream. A missing or damaged stream
// yields an empty store and a nil manifest.
func (e *Engine) loadTrie(name, dir string) (*store.TermStore, *persistence.Manifest) {
	manifest, err := persistence.LoadManifest(filepath.Join(dir, manifestFile))
	if err != nil {
		if !stderrors.Is(err, os.ErrNotExist) {
			e.logger.Warn("Unreadable manifest; starting empty", "index", name, "err", err)
		}
		return store.NewTermStore(nil), nil
	}

	trie, err := persistence.ReadTrie(filepath.Join(dir, trieFile), manifest)
	if err != nil {
		e.logger.Warn("Node stream failed verification; starting empty", "index", name, "err", err)
		return store.NewTermStore(nil), nil
	}
	return store.NewPersistedTermStore(trie), &manifest
}

// saveSettings writes an index's settings file, creating its directory.
func saveSettings(dir string, settings config.IndexSettings) error {
	if err := persistence.SaveSettings(filepath.Join(dir, settingsFile), settings); err != nil {
		return fmt.Errorf("failed to save settings for index %s: %w", settings.Name, err)
	}
	return nil
}

// PersistIndexData encodes an index's trie into its node stream file.
func (e *Engine) PersistIndexData(indexName string) error {
	instance, err := e.instance(indexName)
	if err != nil {
		return err
	}

	manifest, err := instance.persist()
	if err != nil {
		if e.metrics != nil {
			e.metrics.PersistsTotal.WithLabelValues("error").Inc()
		}
		return fmt.Errorf("failed to persist index '%s': %w", indexName, err)
	}

	if e.metrics != nil {
		e.metrics.PersistsTotal.WithLabelValues("ok").Inc()
	}
	e.logger.Info("Persisted index", "index", indexName, "nodes", manifest.Nodes, "words", manifest.Words, "bytes", manifest.Bytes)
	return nil
}
