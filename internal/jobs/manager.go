// Package jobs runs long index operations (sharded builds, merges, persists)
// in the background and tracks their status.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/gcbaptista/go-term-index/internal/errors"
	"github.com/gcbaptista/go-term-index/internal/logger"
	"github.com/gcbaptista/go-term-index/internal/metrics"
	"github.com/gcbaptista/go-term-index/model"
)

// Manager handles background job execution and tracking
type Manager struct {
	mu       sync.RWMutex
	jobs     map[string]*model.Job
	done     map[string]chan struct{} // closed when the job reaches a terminal status
	workers  chan struct{}            // Limits concurrent jobs
	ctx      context.Context          // cancelled by Stop
	cancel   context.CancelFunc
	stopOnce sync.Once
	wg       sync.WaitGroup
	stats    *JobStats
	logger   *log.Logger
	metrics  *metrics.Metrics
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger; the default discards output.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithMetrics records finished jobs in the term_index_jobs_total counter.
func WithMetrics(reg *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = reg }
}

// NewManager creates a new job manager with specified worker count
func NewManager(maxWorkers int, opts ...Option) *Manager {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		jobs:    make(map[string]*model.Job),
		done:    make(map[string]chan struct{}),
		workers: make(chan struct{}, maxWorkers),
		ctx:     ctx,
		cancel:  cancel,
		stats:   NewJobStats(),
		logger:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start begins the job manager and starts background cleanup
func (m *Manager) Start() {
	m.logger.Info("Job manager started", "max_workers", cap(m.workers))
	go m.cleanupRoutine()
}

// Stop cancels running jobs and waits for them to return. Calling it again is a no-op.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		m.cancel()
		m.wg.Wait()
		m.logger.Info("Job manager stopped")
	})
}

// CreateJob creates a new job and returns its ID
func (m *Manager) CreateJob(jobType model.JobType, indexName string, metadata map[string]string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	job := &model.Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		Status:    model.JobStatusPending,
		IndexName: indexName,
		CreatedAt: time.Now(),
		Metadata:  metadata,
	}

	m.jobs[job.ID] = job
	m.done[job.ID] = make(chan struct{})
	m.stats.RecordJobCreated(jobType)
	m.logger.Debug("Created job", "id", job.ID, "type", job.Type, "index", job.IndexName)
	return job.ID
}

// GetJob retrieves a copy of a job by ID
func (m *Manager) GetJob(jobID string) (*model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return nil, errors.NewJobNotFoundError(jobID)
	}
	return copyJob(job), nil
}

// ListJobs returns all jobs for a specific index, optionally filtered by status
func (m *Manager) ListJobs(indexName string, status *model.JobStatus) []*model.Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*model.Job, 0)
	for _, job := range m.jobs {
		if job.IndexName != indexName {
			continue
		}
		if status == nil || job.Status == *status {
			result = append(result, copyJob(job))
		}
	}
	return result
}

// WaitForJob blocks until the job finishes or ctx is done and returns the
// job as last seen.
func (m *Manager) WaitForJob(ctx context.Context, jobID string) (*model.Job, error) {
	m.mu.RLock()
	_, exists := m.jobs[jobID]
	done := m.done[jobID]
	m.mu.RUnlock()

	if !exists {
		return nil, errors.NewJobNotFoundError(jobID)
	}
	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return m.GetJob(jobID)
}

// ExecuteJob marks the job running and runs jobFunc in a goroutine once a
// worker slot is free.
// The context passed to jobFunc is cancelled when the manager stops.
func (m *Manager) ExecuteJob(jobID string, jobFunc func(ctx context.Context, job *model.Job) error) error {
	if err := m.ctx.Err(); err != nil {
		return fmt.Errorf("job manager is shutting down")
	}

	m.mu.Lock()
	job, exists := m.jobs[jobID]
	if !exists {
		m.mu.Unlock()
		return errors.NewJobNotFoundError(jobID)
	}
	if job.Status != model.JobStatusPending {
		m.mu.Unlock()
		return fmt.Errorf("job with ID '%s' is not in pending status (current: %s)", jobID, job.Status)
	}
	now := time.Now()
	job.StartedAt = &now
	m.stats.RecordJobStatusChange(job.Status, model.JobStatusRunning)
	job.Status = model.JobStatusRunning
	snapshot := copyJob(job)
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()

		// Acquire worker slot
		select {
		case m.workers <- struct{}{}:
		case <-m.ctx.Done():
			m.finish(snapshot, model.JobStatusCancelled, "job manager shutting down", 0)
			return
		}
		defer func() { <-m.workers }()

		startTime := time.Now()

		err := jobFunc(m.ctx, snapshot)

		executionTime := time.Since(startTime)
		switch {
		case err != nil && m.ctx.Err() != nil:
			m.finish(snapshot, model.JobStatusCancelled, err.Error(), executionTime)
		case err != nil:
			m.finish(snapshot, model.JobStatusFailed, err.Error(), executionTime)
		default:
			m.finish(snapshot, model.JobStatusCompleted, "", executionTime)
		}
	}()

	return nil
}

// UpdateJobProgress updates the progress of a running job
func (m *Manager) UpdateJobProgress(jobID string, current, total int, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return
	}
	if job.Progress == nil {
		job.Progress = &model.JobProgress{}
	}
	job.Progress.Current = current
	job.Progress.Total = total
	job.Progress.Message = message
}

// finish moves a job to a terminal status and wakes its waiters.
func (m *Manager) finish(job *model.Job, status model.JobStatus, errorMsg string, took time.Duration) {
	switch status {
	case model.JobStatusCompleted:
		m.stats.RecordJobCompleted(job.Type, took)
		m.logger.Info("Job completed", "id", job.ID, "type", job.Type, "index", job.IndexName, "took", took)
	case model.JobStatusFailed:
		m.stats.RecordJobFailed(job.Type)
		m.logger.Error("Job failed", "id", job.ID, "type", job.Type, "index", job.IndexName, "took", took, "err", errorMsg)
	default:
		m.logger.Warn("Job cancelled", "id", job.ID, "type", job.Type, "index", job.IndexName, "reason", errorMsg)
	}
	if m.metrics != nil {
		m.metrics.JobsTotal.WithLabelValues(string(job.Type), string(status)).Inc()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if stored, exists := m.jobs[job.ID]; exists {
		m.stats.RecordJobStatusChange(stored.Status, status)
		stored.Status = status
		stored.Error = errorMsg
		now := time.Now()
		stored.CompletedAt = &now
	}
	if done, ok := m.done[job.ID]; ok {
		close(done)
		delete(m.done, job.ID)
	}
}

// cleanupRoutine runs periodic job cleanup
func (m *Manager) cleanupRoutine() {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.CleanupOldJobs(24 * time.Hour)
		case <-m.ctx.Done():
			return
		}
	}
}

// CleanupOldJobs removes finished jobs older than maxAge
func (m *Manager) CleanupOldJobs(maxAge time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	cleaned := 0
	for jobID, job := range m.jobs {
		if job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(m.jobs, jobID)
			cleaned++
		}
	}
	if cleaned > 0 {
		m.logger.Info("Cleaned up old jobs", "count", cleaned)
	}
}

// GetMetrics returns current job statistics
func (m *Manager) GetMetrics() JobStatsData {
	return m.stats.Snapshot()
}

// GetJobSuccessRate returns the overall job success rate
func (m *Manager) GetJobSuccessRate() float64 {
	return m.stats.SuccessRate()
}

// GetCurrentWorkload returns the number of pending and running jobs
func (m *Manager) GetCurrentWorkload() int64 {
	return m.stats.Workload()
}

func copyJob(job *model.Job) *model.Job {
	jobCopy := *job
	if job.Progress != nil {
		progressCopy := *job.Progress
		jobCopy.Progress = &progressCopy
	}
	if job.Metadata != nil {
		jobCopy.Metadata = make(map[string]string, len(job.Metadata))
		for k, v := range job.Metadata {
			jobCopy.Metadata[k] = v
		}
	}
	return &jobCopy
}
