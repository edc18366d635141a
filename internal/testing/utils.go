// Package testing provides utilities and helpers for testing the term index engine.
package testing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/go-term-index/config"
	"github.com/gcbaptista/go-term-index/internal/engine"
	"github.com/gcbaptista/go-term-index/model"
	"github.com/gcbaptista/go-term-index/services"
)

// SampleWords is a small vocabulary with shared prefixes and near neighbours.
var SampleWords = []string{"bad", "baby", "b", "bank", "rambo", "raiders", "rain", "rainier"}

// CreateTestEngine creates an engine in a temporary directory. The engine is
// closed when the test ends.
func CreateTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	eng := engine.NewEngine(t.TempDir())
	t.Cleanup(eng.Close)
	return eng
}

// CreateTestIndex creates a test index with default settings
func CreateTestIndex(t *testing.T, eng *engine.Engine, indexName string) config.IndexSettings {
	t.Helper()
	settings := config.IndexSettings{
		Name:          indexName,
		MaxEditsLimit: 2,
		BuildShards:   3,
	}

	err := eng.CreateIndex(settings)
	require.NoError(t, err, "Failed to create test index")

	settings.ApplyDefaults()
	return settings
}

// AddTestWords adds SampleWords to an index and returns them.
func AddTestWords(t *testing.T, eng *engine.Engine, indexName string) []string {
	t.Helper()
	indexAccessor, err := eng.GetIndex(indexName)
	require.NoError(t, err, "Failed to get index accessor")

	added := indexAccessor.AddWords(SampleWords)
	require.Equal(t, len(SampleWords), added, "Sample words should all be new")

	return SampleWords
}

// JobPollingOptions configures how long to wait for a job
type JobPollingOptions struct {
	Timeout     time.Duration
	LogProgress bool
}

// DefaultJobPollingOptions returns sensible defaults for job waiting
func DefaultJobPollingOptions() JobPollingOptions {
	return JobPollingOptions{
		Timeout:     10 * time.Second,
		LogProgress: true,
	}
}

// WaitForJobCompletion blocks until a job finishes or the timeout expires.
// A failed or cancelled job fails the test.
func WaitForJobCompletion(t *testing.T, jobManager services.JobManager, jobID string, opts JobPollingOptions) *model.Job {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()

	job, err := jobManager.WaitForJob(ctx, jobID)
	require.NoError(t, err, "Job %s did not complete within %v", jobID, opts.Timeout)

	switch job.Status {
	case model.JobStatusCompleted:
		if opts.LogProgress && job.CompletedAt != nil {
			t.Logf("Job %s completed successfully in %v", jobID, job.CompletedAt.Sub(job.CreatedAt))
		}
	case model.JobStatusFailed, model.JobStatusCancelled:
		t.Fatalf("Job %s ended %s: %s", jobID, job.Status, job.Error)
	}
	return job
}

// AssertJobCompleted verifies that a job completed successfully
func AssertJobCompleted(t *testing.T, job *model.Job, expectedType model.JobType, expectedIndex string) {
	t.Helper()
	assert.Equal(t, model.JobStatusCompleted, job.Status, "Job should be completed")
	assert.Equal(t, expectedType, job.Type, "Job type should match")
	assert.Equal(t, expectedIndex, job.IndexName, "Job index name should match")
	assert.NotNil(t, job.CompletedAt, "Job should have completion timestamp")
	assert.Empty(t, job.Error, "Job should not have error")
}

// AsyncOperationTest represents a test case for async operations
type AsyncOperationTest struct {
	Name            string
	SetupFunc       func(t *testing.T, eng *engine.Engine) string                   // Returns index name
	OperationFunc   func(t *testing.T, eng *engine.Engine, indexName string) string // Returns job ID
	ValidateFunc    func(t *testing.T, eng *engine.Engine, indexName string, job *model.Job)
	ExpectedJobType model.JobType
}

// RunAsyncOperationTests runs a suite of async operation tests
func RunAsyncOperationTests(t *testing.T, tests []AsyncOperationTest) {
	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			eng := CreateTestEngine(t)

			indexName := tt.SetupFunc(t, eng)

			jobID := tt.OperationFunc(t, eng, indexName)
			require.NotEmpty(t, jobID, "Job ID should not be empty")

			job := WaitForJobCompletion(t, eng, jobID, DefaultJobPollingOptions())
			AssertJobCompleted(t, job, tt.ExpectedJobType, indexName)

			if tt.ValidateFunc != nil {
				tt.ValidateFunc(t, eng, indexName, job)
			}
		})
	}
}

// QueryTestCase represents a test case for term queries
type QueryTestCase struct {
	Name          string
	Query         services.TermQuery
	ExpectedFound *bool    // has only
	ExpectedWords []string // prefix and near; nil skips the check
	ValidateFunc  func(t *testing.T, result *services.TermQueryResult)
}

// RunQueryTests runs a suite of queries against an index
func RunQueryTests(t *testing.T, indexAccessor services.IndexAccessor, tests []QueryTestCase) {
	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			result, err := indexAccessor.Query(tt.Query)
			require.NoError(t, err, "Query should not fail")

			if tt.ExpectedFound != nil {
				require.NotNil(t, result.Found, "has queries report found")
				assert.Equal(t, *tt.ExpectedFound, *result.Found)
			}
			if tt.ExpectedWords != nil {
				values := make([]string, len(result.Words))
				for i, w := range result.Words {
					values[i] = w.Value
				}
				assert.ElementsMatch(t, tt.ExpectedWords, values)
			}

			if tt.ValidateFunc != nil {
				tt.ValidateFunc(t, &result)
			}
		})
	}
}
