package engine

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gcbaptista/go-term-index/model"
)

// BuildIndexAsync inserts words into an index with a sharded parallel build
// running as a background job.
func (e *Engine) BuildIndexAsync(name string, words []string) (string, error) {
	instance, err := e.instance(name)
	if err != nil {
		return "", err
	}

	jobID := e.jobManager.CreateJob(model.JobTypeBuildIndex, name, map[string]string{
		"words":  strconv.Itoa(len(words)),
		"shards": strconv.Itoa(instance.Settings().BuildShards),
	})

	err = e.jobManager.ExecuteJob(jobID, func(ctx context.Context, job *model.Job) error {
		return e.executeBuildJob(ctx, instance, words, jobID)
	})
	if err != nil {
		return "", fmt.Errorf("failed to start build job: %w", err)
	}
	return jobID, nil
}

func (e *Engine) executeBuildJob(ctx context.Context, instance *IndexInstance, words []string, jobID string) error {
	e.jobManager.UpdateJobProgress(jobID, 0, len(words), "Starting sharded build")

	added, err := instance.indexing().BuildSharded(ctx, words, func(done, total int) {
		e.jobManager.UpdateJobProgress(jobID, done, total, fmt.Sprintf("Inserted %d of %d words", done, total))
	})
	if err != nil {
		return err
	}

	e.jobManager.UpdateJobProgress(jobID, len(words), len(words), fmt.Sprintf("Build finished, %d new words", added))
	return nil
}

// MergeIndexAsync merges source into target as a background job.
func (e *Engine) MergeIndexAsync(target, source string) (string, error) {
	if _, err := e.instance(target); err != nil {
		return "", err
	}
	if _, err := e.instance(source); err != nil {
		return "", err
	}

	jobID := e.jobManager.CreateJob(model.JobTypeMergeIndex, target, map[string]string{
		"source": source,
	})

	err := e.jobManager.ExecuteJob(jobID, func(_ context.Context, job *model.Job) error {
		added, err := e.MergeIndex(target, source)
		if err != nil {
			return err
		}
		e.jobManager.UpdateJobProgress(jobID, 1, 1, fmt.Sprintf("Merged '%s', %d new words", source, added))
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to start merge job: %w", err)
	}
	return jobID, nil
}

// PersistIndexAsync writes an index's node stream as a background job.
func (e *Engine) PersistIndexAsync(name string) (string, error) {
	if _, err := e.instance(name); err != nil {
		return "", err
	}

	jobID := e.jobManager.CreateJob(model.JobTypePersistIndex, name, nil)

	err := e.jobManager.ExecuteJob(jobID, func(_ context.Context, job *model.Job) error {
		return e.PersistIndexData(name)
	})
	if err != nil {
		return "", fmt.Errorf("failed to start persist job: %w", err)
	}
	return jobID, nil
}

// DeleteIndexAsync deletes an index as a background job.
func (e *Engine) DeleteIndexAsync(name string) (string, error) {
	if _, err := e.instance(name); err != nil {
		return "", err
	}

	jobID := e.jobManager.CreateJob(model.JobTypeDeleteIndex, name, nil)

	err := e.jobManager.ExecuteJob(jobID, func(_ context.Context, job *model.Job) error {
		return e.DeleteIndex(name)
	})
	if err != nil {
		return "", fmt.Errorf("failed to start delete job: %w", err)
	}
	return jobID, nil
}
