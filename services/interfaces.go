package services

import (
	"context"
	"time"

	"github.com/gcbaptista/go-term-index/config"
	"github.com/gcbaptista/go-term-index/index"
	"github.com/gcbaptista/go-term-index/model"
)

// QueryOp names one of the three trie queries.
type QueryOp string

const (
	QueryOpHas    QueryOp = "has"
	QueryOpPrefix QueryOp = "prefix"
	QueryOpNear   QueryOp = "near"
)

// QuerySource selects what a query traverses: the live in-memory trie or
// the persisted node stream file.
type QuerySource string

const (
	QuerySourceMemory QuerySource = "memory"
	QuerySourceStream QuerySource = "stream"
)

// TermQuery is a single query against a term index.
type TermQuery struct {
	Op       QueryOp     `json:"op"`
	Term     string      `json:"term"`
	MaxEdits *int        `json:"max_edits,omitempty"` // near only; nil uses the index default
	Source   QuerySource `json:"source,omitempty"`    // empty means memory
	Limit    int         `json:"limit,omitempty"`     // 0 uses the index max_results
}

// TermQueryResult is the answer to a TermQuery.
type TermQueryResult struct {
	Op        QueryOp      `json:"op"`
	Term      string       `json:"term"` // the term after normalization
	Source    QuerySource  `json:"source"`
	Found     *bool        `json:"found,omitempty"` // has only
	Words     []index.Word `json:"words,omitempty"` // prefix and near only
	Total     int          `json:"total"`           // matches before the limit was applied
	Truncated bool         `json:"truncated"`
	Took      int64        `json:"took"`     // microseconds
	QueryId   string       `json:"query_id"` // unique UUID for this query
}

// IndexStats describes the size and persistence state of an index.
type IndexStats struct {
	Name        string     `json:"name"`
	Words       int        `json:"words"`
	Nodes       int        `json:"nodes"`
	Dirty       bool       `json:"dirty"` // changed since the last persist
	Persisted   bool       `json:"persisted"`
	StreamBytes int64      `json:"stream_bytes,omitempty"`
	PersistedAt *time.Time `json:"persisted_at,omitempty"`
}

// WordAdder defines operations for adding words to an index
type WordAdder interface {
	AddWords(words []string) int
	AddText(text string) int
	ClearWords() int
}

// Querier defines operations for querying an index
type Querier interface {
	Query(query TermQuery) (TermQueryResult, error)
}

type IndexAccessor interface {
	WordAdder
	Querier
	Settings() config.IndexSettings
	Stats() IndexStats
}

// IndexManager manages the lifecycle of indices
type IndexManager interface {
	CreateIndex(settings config.IndexSettings) error
	GetIndex(name string) (IndexAccessor, error)
	GetIndexSettings(name string) (config.IndexSettings, error)
	UpdateIndexSettings(name string, settings config.IndexSettings) error
	RenameIndex(oldName, newName string) error
	DeleteIndex(name string) error
	ListIndexes() []string
	PersistIndexData(indexName string) error
	MergeIndex(target, source string) (int, error)
}

// AsyncIndexManager runs the long operations of IndexManager as background jobs.
// Each method returns the job ID.
type AsyncIndexManager interface {
	IndexManager
	BuildIndexAsync(name string, words []string) (string, error)
	MergeIndexAsync(target, source string) (string, error)
	PersistIndexAsync(name string) (string, error)
	DeleteIndexAsync(name string) (string, error)
}

// JobManager defines operations for managing background jobs
type JobManager interface {
	GetJob(jobID string) (*model.Job, error)
	ListJobs(indexName string, status *model.JobStatus) []*model.Job
	WaitForJob(ctx context.Context, jobID string) (*model.Job, error)
}
