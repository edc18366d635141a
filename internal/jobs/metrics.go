package jobs

import (
	"sync"
	"time"

	"github.com/gcbaptista/go-term-index/model"
)

// JobStatsData is a point-in-time copy of JobStats, safe to serialize.
type JobStatsData struct {
	JobsCreated          int64                     `json:"jobs_created"`
	JobsCompleted        int64                     `json:"jobs_completed"`
	JobsFailed           int64                     `json:"jobs_failed"`
	TotalExecutionTime   time.Duration             `json:"total_execution_time_ns"`
	AverageExecutionTime time.Duration             `json:"average_execution_time_ns"`
	AverageByType        map[model.JobType]int64   `json:"average_execution_time_ns_by_type"`
	JobsByType           map[model.JobType]int64   `json:"jobs_by_type"`
	JobsByStatus         map[model.JobStatus]int64 `json:"jobs_by_status"`
	SuccessRate          float64                   `json:"success_rate"`
	LastUpdated          time.Time                 `json:"last_updated"`
}

// JobStats keeps the in-process job counters served by GET /jobs/metrics.
// Prometheus counters live in internal/metrics.
type JobStats struct {
	mu              sync.Mutex
	created         int64
	completed       int64
	failed          int64
	totalTime       time.Duration
	byType          map[model.JobType]int64
	byStatus        map[model.JobStatus]int64
	timeByType      map[model.JobType]time.Duration
	completedByType map[model.JobType]int64
	lastUpdated     time.Time
}

// NewJobStats creates an empty stats collector
func NewJobStats() *JobStats {
	return &JobStats{
		byType:          make(map[model.JobType]int64),
		byStatus:        make(map[model.JobStatus]int64),
		timeByType:      make(map[model.JobType]time.Duration),
		completedByType: make(map[model.JobType]int64),
		lastUpdated:     time.Now(),
	}
}

func (s *JobStats) RecordJobCreated(jobType model.JobType) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.created++
	s.byType[jobType]++
	s.byStatus[model.JobStatusPending]++
	s.lastUpdated = time.Now()
}

func (s *JobStats) RecordJobStatusChange(oldStatus, newStatus model.JobStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if oldStatus != "" && s.byStatus[oldStatus] > 0 {
		s.byStatus[oldStatus]--
	}
	s.byStatus[newStatus]++
	s.lastUpdated = time.Now()
}

func (s *JobStats) RecordJobCompleted(jobType model.JobType, took time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.completed++
	s.totalTime += took
	s.timeByType[jobType] += took
	s.completedByType[jobType]++
	s.lastUpdated = time.Now()
}

func (s *JobStats) RecordJobFailed(jobType model.JobType) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failed++
	s.lastUpdated = time.Now()
}

// SuccessRate returns completed / (completed + failed), or 1 before any job finished.
func (s *JobStats) SuccessRate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.successRateLocked()
}

func (s *JobStats) successRateLocked() float64 {
	finished := s.completed + s.failed
	if finished == 0 {
		return 1.0
	}
	return float64(s.completed) / float64(finished)
}

// Workload returns the number of pending and running jobs.
func (s *JobStats) Workload() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byStatus[model.JobStatusPending] + s.byStatus[model.JobStatusRunning]
}

// Snapshot copies the current counters.
func (s *JobStats) Snapshot() JobStatsData {
	s.mu.Lock()
	defer s.mu.Unlock()

	data := JobStatsData{
		JobsCreated:        s.created,
		JobsCompleted:      s.completed,
		JobsFailed:         s.failed,
		TotalExecutionTime: s.totalTime,
		AverageByType:      make(map[model.JobType]int64, len(s.timeByType)),
		JobsByType:         make(map[model.JobType]int64, len(s.byType)),
		JobsByStatus:       make(map[model.JobStatus]int64, len(s.byStatus)),
		SuccessRate:        s.successRateLocked(),
		LastUpdated:        s.lastUpdated,
	}
	if s.completed > 0 {
		data.AverageExecutionTime = s.totalTime / time.Duration(s.completed)
	}
	for jobType, total := range s.timeByType {
		data.AverageByType[jobType] = int64(total) / s.completedByType[jobType]
	}
	for k, v := range s.byType {
		data.JobsByType[k] = v
	}
	for k, v := range s.byStatus {
		data.JobsByStatus[k] = v
	}
	return data
}
