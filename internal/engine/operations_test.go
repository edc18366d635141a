package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/go-term-index/internal/engine"
	testutil "github.com/gcbaptista/go-term-index/internal/testing"
	"github.com/gcbaptista/go-term-index/model"
	"github.com/gcbaptista/go-term-index/services"
)

func boolPtr(b bool) *bool { return &b }

func intPtr(i int) *int { return &i }

func TestQueries_SampleVocabulary(t *testing.T) {
	eng := testutil.CreateTestEngine(t)
	testutil.CreateTestIndex(t, eng, "sample")
	testutil.AddTestWords(t, eng, "sample")

	indexAccessor, err := eng.GetIndex("sample")
	require.NoError(t, err)

	testutil.RunQueryTests(t, indexAccessor, []testutil.QueryTestCase{
		{
			Name:          "has stored word",
			Query:         services.TermQuery{Op: services.QueryOpHas, Term: "Rainier"},
			ExpectedFound: boolPtr(true),
		},
		{
			Name:          "has inner prefix",
			Query:         services.TermQuery{Op: services.QueryOpHas, Term: "rai"},
			ExpectedFound: boolPtr(false),
		},
		{
			Name:          "prefix",
			Query:         services.TermQuery{Op: services.QueryOpPrefix, Term: "rai"},
			ExpectedWords: []string{"raiders", "rain", "rainier"},
		},
		{
			Name:          "near one edit",
			Query:         services.TermQuery{Op: services.QueryOpNear, Term: "bay", MaxEdits: intPtr(1)},
			ExpectedWords: []string{"bad", "baby"},
		},
		{
			Name:          "near exact only",
			Query:         services.TermQuery{Op: services.QueryOpNear, Term: "rain", MaxEdits: intPtr(0)},
			ExpectedWords: []string{"rain"},
			ValidateFunc: func(t *testing.T, result *services.TermQueryResult) {
				assert.Equal(t, 0, result.Words[0].Distance)
			},
		},
	})
}

func TestAsyncOperations(t *testing.T) {
	testutil.RunAsyncOperationTests(t, []testutil.AsyncOperationTest{
		{
			Name: "build",
			SetupFunc: func(t *testing.T, eng *engine.Engine) string {
				testutil.CreateTestIndex(t, eng, "build")
				return "build"
			},
			OperationFunc: func(t *testing.T, eng *engine.Engine, indexName string) string {
				jobID, err := eng.BuildIndexAsync(indexName, testutil.SampleWords)
				require.NoError(t, err)
				return jobID
			},
			ValidateFunc: func(t *testing.T, eng *engine.Engine, indexName string, job *model.Job) {
				indexAccessor, err := eng.GetIndex(indexName)
				require.NoError(t, err)
				assert.Equal(t, len(testutil.SampleWords), indexAccessor.Stats().Words)
				require.NotNil(t, job.Progress)
				assert.Equal(t, job.Progress.Total, job.Progress.Current)
			},
			ExpectedJobType: model.JobTypeBuildIndex,
		},
		{
			Name: "merge",
			SetupFunc: func(t *testing.T, eng *engine.Engine) string {
				testutil.CreateTestIndex(t, eng, "target")
				testutil.CreateTestIndex(t, eng, "source")
				testutil.AddTestWords(t, eng, "source")
				return "target"
			},
			OperationFunc: func(t *testing.T, eng *engine.Engine, indexName string) string {
				jobID, err := eng.MergeIndexAsync(indexName, "source")
				require.NoError(t, err)
				return jobID
			},
			ValidateFunc: func(t *testing.T, eng *engine.Engine, indexName string, job *model.Job) {
				indexAccessor, err := eng.GetIndex(indexName)
				require.NoError(t, err)
				assert.Equal(t, len(testutil.SampleWords), indexAccessor.Stats().Words)
			},
			ExpectedJobType: model.JobTypeMergeIndex,
		},
		{
			Name: "persist",
			SetupFunc: func(t *testing.T, eng *engine.Engine) string {
				testutil.CreateTestIndex(t, eng, "persist")
				testutil.AddTestWords(t, eng, "persist")
				return "persist"
			},
			OperationFunc: func(t *testing.T, eng *engine.Engine, indexName string) string {
				jobID, err := eng.PersistIndexAsync(indexName)
				require.NoError(t, err)
				return jobID
			},
			ValidateFunc: func(t *testing.T, eng *engine.Engine, indexName string, job *model.Job) {
				indexAccessor, err := eng.GetIndex(indexName)
				require.NoError(t, err)
				stats := indexAccessor.Stats()
				assert.True(t, stats.Persisted)
				assert.False(t, stats.Dirty)

				result, err := indexAccessor.Query(services.TermQuery{
					Op:     services.QueryOpPrefix,
					Term:   "ba",
					Source: services.QuerySourceStream,
				})
				require.NoError(t, err)
				assert.Equal(t, 3, result.Total)
			},
			ExpectedJobType: model.JobTypePersistIndex,
		},
	})
}
