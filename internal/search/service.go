package search

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/gcbaptista/go-term-index/config"
	"github.com/gcbaptista/go-term-index/index"
	"github.com/gcbaptista/go-term-index/internal/errors"
	"github.com/gcbaptista/go-term-index/internal/logger"
	"github.com/gcbaptista/go-term-index/internal/metrics"
	"github.com/gcbaptista/go-term-index/internal/persistence"
	"github.com/gcbaptista/go-term-index/services"
	"github.com/gcbaptista/go-term-index/store"
)

// StreamOpener opens the persisted node stream of an index for one query.
// The caller closes the returned file.
type StreamOpener func() (*persistence.TrieFile, error)

// wordQuerier is what both the in-memory trie and a stream reader answer.
type wordQuerier interface {
	HasWord(word string) (bool, error)
	StartsWith(prefix string) ([]index.Word, error)
	Near(word string, maxEdits int) ([]index.Word, error)
}

// Service implements the query logic for a single index.
// It fulfills the services.Querier interface.
type Service struct {
	store      *store.TermStore
	openStream StreamOpener
	settings   config.IndexSettings
	logger     *log.Logger
	metrics    *metrics.Metrics
}

// NewService creates a new search Service. openStream may be nil, in which
// case stream queries report the index as not persisted.
func NewService(termStore *store.TermStore, openStream StreamOpener, settings config.IndexSettings, l *log.Logger, m *metrics.Metrics) (*Service, error) {
	if termStore == nil {
		return nil, fmt.Errorf("term store cannot be nil")
	}
	if settings.MaxResults < 1 {
		return nil, fmt.Errorf("settings must allow at least one result (max_results=%d)", settings.MaxResults)
	}
	if l == nil {
		l = logger.Discard()
	}
	return &Service{
		store:      termStore,
		openStream: openStream,
		settings:   settings,
		logger:     l,
		metrics:    m,
	}, nil
}

// Query runs one has, prefix or near query.
func (s *Service) Query(query services.TermQuery) (services.TermQueryResult, error) {
	startTime := time.Now()

	if query.Source == "" {
		query.Source = services.QuerySourceMemory
	}
	if err := s.validate(query); err != nil {
		return services.TermQueryResult{}, err
	}

	maxEdits := s.settings.DefaultMaxEdits
	if query.Op == services.QueryOpNear && query.MaxEdits != nil {
		maxEdits = *query.MaxEdits
		if maxEdits > s.settings.MaxEditsLimit {
			return services.TermQueryResult{}, errors.NewInvalidArgumentErrorWithReason(
				string(query.Op), "max_edits",
				fmt.Sprintf("must not exceed %d (got %d)", s.settings.MaxEditsLimit, maxEdits))
		}
	}

	limit := s.settings.MaxResults
	if query.Limit > 0 && query.Limit < limit {
		limit = query.Limit
	}

	result := services.TermQueryResult{
		Op:      query.Op,
		Term:    s.settings.Normalize(strings.TrimSpace(query.Term)),
		Source:  query.Source,
		QueryId: uuid.New().String(),
	}

	execute := func(q wordQuerier) error {
		return s.execute(q, &result, maxEdits)
	}

	var err error
	switch query.Source {
	case services.QuerySourceStream:
		err = s.withStream(execute)
	default:
		err = s.store.View(func(t *index.Trie) error { return execute(t) })
	}

	took := time.Since(startTime)
	s.metrics.ObserveQuery(string(query.Op), string(query.Source), result.Total, took, err)
	if err != nil {
		s.logger.Debug("Query failed", "op", query.Op, "source", query.Source, "term", result.Term, "err", err)
		return services.TermQueryResult{}, err
	}

	if len(result.Words) > limit {
		result.Words = result.Words[:limit]
		result.Truncated = true
	}
	result.Took = took.Microseconds()
	return result, nil
}

func (s *Service) validate(query services.TermQuery) error {
	switch query.Op {
	case services.QueryOpHas, services.QueryOpPrefix, services.QueryOpNear:
	default:
		return errors.NewValidationError("op", fmt.Sprintf("must be one of 'has', 'prefix' or 'near' (got '%s')", query.Op))
	}
	switch query.Source {
	case services.QuerySourceMemory, services.QuerySourceStream:
	default:
		return errors.NewValidationError("source", fmt.Sprintf("must be 'memory' or 'stream' (got '%s')", query.Source))
	}
	if query.Limit < 0 {
		return errors.NewValidationError("limit", fmt.Sprintf("must not be negative (got %d)", query.Limit))
	}
	return nil
}

// execute runs the query and fills result. Total counts matches before any limit.
func (s *Service) execute(q wordQuerier, result *services.TermQueryResult, maxEdits int) error {
	switch result.Op {
	case services.QueryOpHas:
		found, err := q.HasWord(result.Term)
		if err != nil {
			return err
		}
		result.Found = &found
		if found {
			result.Total = 1
		}
	case services.QueryOpPrefix:
		words, err := q.StartsWith(result.Term)
		if err != nil {
			return err
		}
		result.Words, result.Total = words, len(words)
	case services.QueryOpNear:
		words, err := q.Near(result.Term, maxEdits)
		if err != nil {
			return err
		}
		result.Words, result.Total = words, len(words)
	}
	return nil
}

// withStream opens the node stream for the duration of fn.
func (s *Service) withStream(fn func(q wordQuerier) error) error {
	if s.openStream == nil {
		return errors.NewIndexNotPersistedError(s.settings.Name)
	}
	file, err := s.openStream()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			s.logger.Warn("Failed to close node stream", "index", s.settings.Name, "err", cerr)
		}
	}()
	return fn(file.Reader())
}
