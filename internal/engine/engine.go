package engine

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/gcbaptista/go-term-index/config"
	"github.com/gcbaptista/go-term-index/internal/errors"
	"github.com/gcbaptista/go-term-index/internal/jobs"
	"github.com/gcbaptista/go-term-index/internal/logger"
	"github.com/gcbaptista/go-term-index/internal/metrics"
	"github.com/gcbaptista/go-term-index/model"
	"github.com/gcbaptista/go-term-index/services"
)

const (
	dataDirPerm  = 0750
	settingsFile = "settings.toml"
	trieFile     = "terms.trie"
	manifestFile = "manifest.msgpack"

	defaultMaxWorkers = 4
)

// Engine manages multiple term indexes.
// It implements the services.AsyncIndexManager and services.JobManager interfaces.
type Engine struct {
	mu         sync.RWMutex
	indexes    map[string]*IndexInstance
	dataDir    string
	jobManager *jobs.Manager
	maxWorkers int
	logger     *log.Logger
	metrics    *metrics.Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger; the default discards output.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics makes the engine and its services record Prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithMaxWorkers bounds how many background jobs run at once.
func WithMaxWorkers(n int) Option {
	return func(e *Engine) { e.maxWorkers = n }
}

// NewEngine creates a term index engine rooted at dataDir and loads every
// index found there.
func NewEngine(dataDir string, opts ...Option) *Engine {
	eng := &Engine{
		indexes:    make(map[string]*IndexInstance),
		dataDir:    dataDir,
		maxWorkers: defaultMaxWorkers,
		logger:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(eng)
	}

	eng.jobManager = jobs.NewManager(eng.maxWorkers,
		jobs.WithLogger(eng.logger.WithPrefix("jobs")),
		jobs.WithMetrics(eng.metrics))
	eng.jobManager.Start()

	if err := os.MkdirAll(dataDir, dataDirPerm); err != nil {
		eng.logger.Warn("Could not create data directory; new indexes cannot be persisted", "dir", dataDir, "err", err)
	}
	eng.loadIndexesFromDisk()
	return eng
}

// Close stops background jobs. Indexes are not persisted implicitly.
func (e *Engine) Close() {
	e.jobManager.Stop()
}

// GetIndex retrieves an index by its name.
func (e *Engine) GetIndex(name string) (services.IndexAccessor, error) {
	return e.instance(name)
}

// GetIndexSettings retrieves the settings for a specific index.
func (e *Engine) GetIndexSettings(name string) (config.IndexSettings, error) {
	instance, err := e.instance(name)
	if err != nil {
		return config.IndexSettings{}, err
	}
	return instance.Settings(), nil
}

// ListIndexes returns the names of all loaded indexes in sorted order.
func (e *Engine) ListIndexes() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.indexes))
	for name := range e.indexes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetJob returns a job by ID.
func (e *Engine) GetJob(jobID string) (*model.Job, error) {
	return e.jobManager.GetJob(jobID)
}

// ListJobs returns the jobs of an index, optionally filtered by status.
func (e *Engine) ListJobs(indexName string, status *model.JobStatus) []*model.Job {
	return e.jobManager.ListJobs(indexName, status)
}

// WaitForJob blocks until a job finishes or ctx is done.
func (e *Engine) WaitForJob(ctx context.Context, jobID string) (*model.Job, error) {
	return e.jobManager.WaitForJob(ctx, jobID)
}

// GetJobMetrics returns the in-process job statistics.
func (e *Engine) GetJobMetrics() jobs.JobStatsData {
	return e.jobManager.GetMetrics()
}

// GetJobSuccessRate returns the share of finished jobs that completed.
func (e *Engine) GetJobSuccessRate() float64 {
	return e.jobManager.GetJobSuccessRate()
}

// GetCurrentWorkload returns the number of pending and running jobs.
func (e *Engine) GetCurrentWorkload() int64 {
	return e.jobManager.GetCurrentWorkload()
}

func (e *Engine) instance(name string) (*IndexInstance, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	instance, exists := e.indexes[name]
	if !exists {
		return nil, errors.NewIndexNotFoundError(name)
	}
	return instance, nil
}

func (e *Engine) indexDir(name string) string {
	return filepath.Join(e.dataDir, name)
}
