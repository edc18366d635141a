package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/gcbaptista/go-term-index/internal/metrics"
	"github.com/gcbaptista/go-term-index/model"
)

func waitFor(t *testing.T, manager *Manager, jobID string) *model.Job {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	job, err := manager.WaitForJob(ctx, jobID)
	if err != nil {
		t.Fatalf("Failed to wait for job %s: %v", jobID, err)
	}
	return job
}

func TestJobManager_CreateJob(t *testing.T) {
	manager := NewManager(2)
	defer manager.Stop()

	jobID := manager.CreateJob(model.JobTypeBuildIndex, "test-index", map[string]string{
		"operation": "test",
	})

	if jobID == "" {
		t.Error("Expected non-empty job ID")
	}

	job, err := manager.GetJob(jobID)
	if err != nil {
		t.Fatalf("Failed to get created job: %v", err)
	}

	if job.Type != model.JobTypeBuildIndex {
		t.Errorf("Expected job type %s, got %s", model.JobTypeBuildIndex, job.Type)
	}

	if job.Status != model.JobStatusPending {
		t.Errorf("Expected job status %s, got %s", model.JobStatusPending, job.Status)
	}

	if job.IndexName != "test-index" {
		t.Errorf("Expected index name 'test-index', got %s", job.IndexName)
	}

	job.Metadata["operation"] = "changed"
	again, _ := manager.GetJob(jobID)
	if again.Metadata["operation"] != "test" {
		t.Error("Expected GetJob to return an independent copy")
	}
}

func TestJobManager_ExecuteJob(t *testing.T) {
	manager := NewManager(2)
	manager.Start()
	defer manager.Stop()

	jobID := manager.CreateJob(model.JobTypeBuildIndex, "test-index", nil)

	err := manager.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error {
		manager.UpdateJobProgress(jobID, 50, 100, "Halfway done")
		manager.UpdateJobProgress(jobID, 100, 100, "Completed")
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to execute job: %v", err)
	}

	job := waitFor(t, manager, jobID)

	if job.Status != model.JobStatusCompleted {
		t.Errorf("Expected job status %s, got %s", model.JobStatusCompleted, job.Status)
	}
	if job.StartedAt == nil || job.CompletedAt == nil {
		t.Error("Expected start and completion times to be set")
	}
	if job.Progress == nil {
		t.Fatal("Expected job progress to be set")
	}
	if job.Progress.Current != 100 || job.Progress.Total != 100 {
		t.Errorf("Expected progress 100/100, got %d/%d", job.Progress.Current, job.Progress.Total)
	}
	if job.Progress.GetProgressPercentage() != 100 {
		t.Errorf("Expected 100%%, got %f", job.Progress.GetProgressPercentage())
	}

	if err := manager.ExecuteJob(jobID, func(context.Context, *model.Job) error { return nil }); err == nil {
		t.Error("Expected a finished job to be rejected")
	}
}

func TestJobManager_FailedJob(t *testing.T) {
	reg := metrics.New()
	manager := NewManager(1, WithMetrics(reg))
	defer manager.Stop()

	jobID := manager.CreateJob(model.JobTypeMergeIndex, "test-index", nil)
	if err := manager.ExecuteJob(jobID, func(context.Context, *model.Job) error {
		return errors.New("source index vanished")
	}); err != nil {
		t.Fatalf("Failed to execute job: %v", err)
	}

	job := waitFor(t, manager, jobID)
	if job.Status != model.JobStatusFailed {
		t.Errorf("Expected job status %s, got %s", model.JobStatusFailed, job.Status)
	}
	if job.Error != "source index vanished" {
		t.Errorf("Expected error message to be kept, got %q", job.Error)
	}

	if got := testutil.ToFloat64(reg.JobsTotal.WithLabelValues("merge_index", "failed")); got != 1 {
		t.Errorf("Expected one failed merge job counted, got %f", got)
	}

	stats := manager.GetMetrics()
	if stats.JobsFailed != 1 || stats.JobsCreated != 1 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
	if manager.GetJobSuccessRate() != 0 {
		t.Errorf("Expected success rate 0, got %f", manager.GetJobSuccessRate())
	}
	if manager.GetCurrentWorkload() != 0 {
		t.Errorf("Expected no workload, got %d", manager.GetCurrentWorkload())
	}
}

func TestJobManager_WorkerLimit(t *testing.T) {
	manager := NewManager(1)
	defer manager.Stop()

	release := make(chan struct{})
	started := make(chan string, 2)

	first := manager.CreateJob(model.JobTypePersistIndex, "a", nil)
	second := manager.CreateJob(model.JobTypePersistIndex, "b", nil)

	for _, id := range []string{first, second} {
		if err := manager.ExecuteJob(id, func(context.Context, *model.Job) error {
			started <- id
			<-release
			return nil
		}); err != nil {
			t.Fatalf("Failed to execute job: %v", err)
		}
	}

	<-started
	select {
	case id := <-started:
		t.Fatalf("Job %s started while the only worker was busy", id)
	case <-time.After(50 * time.Millisecond):
	}

	if manager.GetCurrentWorkload() != 2 {
		t.Errorf("Expected workload 2, got %d", manager.GetCurrentWorkload())
	}

	close(release)
	waitFor(t, manager, first)
	waitFor(t, manager, second)
}

func TestJobManager_StopCancelsRunningJobs(t *testing.T) {
	manager := NewManager(1)

	running := make(chan struct{})
	jobID := manager.CreateJob(model.JobTypeBuildIndex, "test-index", nil)
	if err := manager.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error {
		close(running)
		<-ctx.Done()
		return ctx.Err()
	}); err != nil {
		t.Fatalf("Failed to execute job: %v", err)
	}

	<-running
	manager.Stop()
	manager.Stop()

	job, err := manager.GetJob(jobID)
	if err != nil {
		t.Fatalf("Failed to get job: %v", err)
	}
	if job.Status != model.JobStatusCancelled {
		t.Errorf("Expected job status %s, got %s", model.JobStatusCancelled, job.Status)
	}

	late := manager.CreateJob(model.JobTypeBuildIndex, "test-index", nil)
	if err := manager.ExecuteJob(late, func(context.Context, *model.Job) error { return nil }); err == nil {
		t.Error("Expected a stopped manager to refuse new jobs")
	}
}

func TestJobManager_ListAndCleanup(t *testing.T) {
	manager := NewManager(2)
	defer manager.Stop()

	done := manager.CreateJob(model.JobTypePersistIndex, "words", nil)
	manager.CreateJob(model.JobTypeBuildIndex, "words", nil)
	manager.CreateJob(model.JobTypeBuildIndex, "other", nil)

	if err := manager.ExecuteJob(done, func(context.Context, *model.Job) error { return nil }); err != nil {
		t.Fatalf("Failed to execute job: %v", err)
	}
	waitFor(t, manager, done)

	if jobs := manager.ListJobs("words", nil); len(jobs) != 2 {
		t.Errorf("Expected 2 jobs for 'words', got %d", len(jobs))
	}
	pending := model.JobStatusPending
	if jobs := manager.ListJobs("words", &pending); len(jobs) != 1 {
		t.Errorf("Expected 1 pending job for 'words', got %d", len(jobs))
	}

	manager.CleanupOldJobs(-time.Minute)
	if _, err := manager.GetJob(done); err == nil {
		t.Error("Expected finished job to be cleaned up")
	}
	if jobs := manager.ListJobs("words", nil); len(jobs) != 1 {
		t.Errorf("Expected the pending job to survive cleanup, got %d jobs", len(jobs))
	}
}

func TestJobManager_WaitForUnknownJob(t *testing.T) {
	manager := NewManager(1)
	defer manager.Stop()

	if _, err := manager.WaitForJob(context.Background(), "missing"); err == nil {
		t.Error("Expected an error for an unknown job")
	}
}
