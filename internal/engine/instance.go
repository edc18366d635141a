package engine

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/gcbaptista/go-term-index/config"
	"github.com/gcbaptista/go-term-index/index"
	"github.com/gcbaptista/go-term-index/internal/errors"
	"github.com/gcbaptista/go-term-index/internal/indexing"
	"github.com/gcbaptista/go-term-index/internal/metrics"
	"github.com/gcbaptista/go-term-index/internal/persistence"
	"github.com/gcbaptista/go-term-index/internal/search"
	"github.com/gcbaptista/go-term-index/services"
	"github.com/gcbaptista/go-term-index/store"
)

// IndexInstance holds all components and services for a single term index.
// It implements the services.IndexAccessor interface.
type IndexInstance struct {
	mu       sync.RWMutex
	settings config.IndexSettings
	dir      string
	manifest *persistence.Manifest // nil until a node stream exists
	indexer  *indexing.Service
	searcher *search.Service

	// persistMu serializes node stream writes with directory renames and removal.
	persistMu sync.Mutex
	removed   bool

	store   *store.TermStore
	logger  *log.Logger
	metrics *metrics.Metrics
}

// NewIndexInstance creates an instance over termStore. manifest describes the
// node stream in dir, or is nil when none was written yet.
func NewIndexInstance(settings config.IndexSettings, dir string, termStore *store.TermStore, manifest *persistence.Manifest, l *log.Logger, m *metrics.Metrics) (*IndexInstance, error) {
	if settings.Name == "" {
		return nil, fmt.Errorf("index name cannot be empty in settings")
	}
	instance := &IndexInstance{
		dir:      dir,
		manifest: manifest,
		store:    termStore,
		logger:   l,
		metrics:  m,
	}
	if err := instance.applySettings(settings); err != nil {
		return nil, err
	}
	return instance, nil
}

// applySettings swaps in services built for settings. Callers hold mu or own the instance.
func (i *IndexInstance) applySettings(settings config.IndexSettings) error {
	indexer, err := indexing.NewService(i.store, settings, i.logger, i.metrics)
	if err != nil {
		return fmt.Errorf("failed to create indexing service for '%s': %w", settings.Name, err)
	}
	searcher, err := search.NewService(i.store, i.openStream, settings, i.logger, i.metrics)
	if err != nil {
		return fmt.Errorf("failed to create search service for '%s': %w", settings.Name, err)
	}
	i.settings = settings
	i.indexer = indexer
	i.searcher = searcher
	return nil
}

// AddWords delegates to the indexing service.
func (i *IndexInstance) AddWords(words []string) int {
	return i.indexing().AddWords(words)
}

// AddText delegates to the indexing service.
func (i *IndexInstance) AddText(text string) int {
	return i.indexing().AddText(text)
}

// ClearWords removes every word from memory. The node stream keeps its
// content until the next persist.
func (i *IndexInstance) ClearWords() int {
	removed := i.store.Clear()
	if i.metrics != nil {
		nodes, words := i.store.Stats()
		i.metrics.SetIndexSize(i.Settings().Name, nodes, words)
	}
	return removed
}

// Query delegates to the search service.
func (i *IndexInstance) Query(query services.TermQuery) (services.TermQueryResult, error) {
	i.mu.RLock()
	searcher := i.searcher
	i.mu.RUnlock()
	return searcher.Query(query)
}

// Settings returns the configuration settings for this index.
func (i *IndexInstance) Settings() config.IndexSettings {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.settings
}

// Stats reports the size of the trie and the state of its node stream.
func (i *IndexInstance) Stats() services.IndexStats {
	nodes, words := i.store.Stats()

	i.mu.RLock()
	defer i.mu.RUnlock()

	stats := services.IndexStats{
		Name:  i.settings.Name,
		Words: words,
		Nodes: nodes,
		Dirty: i.store.Dirty(),
	}
	if i.manifest != nil {
		createdAt := i.manifest.CreatedAt
		stats.Persisted = true
		stats.StreamBytes = i.manifest.Bytes
		stats.PersistedAt = &createdAt
	}
	return stats
}

func (i *IndexInstance) indexing() *indexing.Service {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.indexer
}

// openStream opens the node stream for one query.
func (i *IndexInstance) openStream() (*persistence.TrieFile, error) {
	i.mu.RLock()
	persisted := i.manifest != nil
	name, dir := i.settings.Name, i.dir
	i.mu.RUnlock()

	if !persisted {
		return nil, errors.NewIndexNotPersistedError(name)
	}
	return persistence.OpenTrieFile(filepath.Join(dir, trieFile))
}

// persist writes the trie as a node stream plus its manifest.
func (i *IndexInstance) persist() (persistence.Manifest, error) {
	i.persistMu.Lock()
	defer i.persistMu.Unlock()

	if i.removed {
		return persistence.Manifest{}, fmt.Errorf("index '%s' was deleted", i.Settings().Name)
	}

	i.mu.RLock()
	dir := i.dir
	i.mu.RUnlock()

	var manifest persistence.Manifest
	err := i.store.Persist(func(t *index.Trie) error {
		m, err := persistence.WriteTrie(filepath.Join(dir, trieFile), t)
		if err != nil {
			return err
		}
		if err := persistence.SaveManifest(filepath.Join(dir, manifestFile), m); err != nil {
			return err
		}
		manifest = m
		return nil
	})
	if err != nil {
		return persistence.Manifest{}, err
	}

	i.mu.Lock()
	i.manifest = &manifest
	i.mu.Unlock()
	return manifest, nil
}
