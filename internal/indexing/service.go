package indexing

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/gcbaptista/go-term-index/config"
	"github.com/gcbaptista/go-term-index/index"
	"github.com/gcbaptista/go-term-index/internal/logger"
	"github.com/gcbaptista/go-term-index/internal/metrics"
	"github.com/gcbaptista/go-term-index/internal/tokenizer"
	"github.com/gcbaptista/go-term-index/store"
)

// cancelCheckInterval is how many words a shard inserts between context checks.
const cancelCheckInterval = 1024

// ProgressFunc receives how many words of a build have been inserted so far.
type ProgressFunc func(done, total int)

// Service implements word ingestion for a single term index.
// It fulfills the services.WordAdder interface.
type Service struct {
	store    *store.TermStore
	settings config.IndexSettings
	logger   *log.Logger
	metrics  *metrics.Metrics
}

// NewService creates a new indexing Service. A nil logger discards output;
// a nil metrics records nothing.
func NewService(termStore *store.TermStore, settings config.IndexSettings, l *log.Logger, m *metrics.Metrics) (*Service, error) {
	if termStore == nil {
		return nil, fmt.Errorf("term store cannot be nil")
	}
	if settings.Name == "" {
		return nil, fmt.Errorf("index settings must carry a name")
	}
	if l == nil {
		l = logger.Discard()
	}
	return &Service{
		store:    termStore,
		settings: settings,
		logger:   l,
		metrics:  m,
	}, nil
}

// AddWords inserts words after applying the index's case policy.
// Blank entries are skipped. Returns how many words were new.
func (s *Service) AddWords(words []string) int {
	normalized := s.normalize(words)
	if len(normalized) == 0 {
		return 0
	}

	added := s.store.Insert(normalized)
	s.recordInsert(len(normalized))
	s.logger.Debug("Inserted words", "index", s.settings.Name, "submitted", len(normalized), "added", added)
	return added
}

// AddText splits raw text into words and inserts each distinct one.
func (s *Service) AddText(text string) int {
	return s.AddWords(tokenizer.Unique(tokenizer.Split(text)))
}

// Merge adds every word of other to the index. Returns how many were new.
func (s *Service) Merge(other *index.Trie) int {
	if other == nil {
		return 0
	}
	added := s.store.Merge(other)
	s.recordInsert(other.Len())
	return added
}

// BuildSharded inserts a large word list by splitting it into contiguous
// shards, building one trie per shard concurrently and merging the shards in
// order into the index. The result is the same trie that inserting the words
// one by one would give.
//
// Nothing reaches the index unless every shard finished; a cancelled ctx
// leaves the index untouched.
func (s *Service) BuildSharded(ctx context.Context, words []string, progress ProgressFunc) (int, error) {
	normalized := s.normalize(words)
	total := len(normalized)
	if total == 0 {
		return 0, nil
	}

	start := time.Now()
	shards := partition(normalized, s.settings.BuildShards)
	tries := make([]*index.Trie, len(shards))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	for i, shard := range shards {
		i, shard := i, shard
		g.Go(func() error {
			trie := index.New()
			for j, w := range shard {
				if j%cancelCheckInterval == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				trie.Insert(w)
			}
			tries[i] = trie

			n := done.Add(int64(len(shard)))
			if progress != nil {
				progress(int(n), total)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, fmt.Errorf("sharded build of index '%s' failed: %w", s.settings.Name, err)
	}

	merged := tries[0]
	for _, t := range tries[1:] {
		merged.Merge(t)
	}

	added := s.store.Merge(merged)
	s.recordInsert(total)
	s.logger.Info("Sharded build completed",
		"index", s.settings.Name,
		"words", total,
		"added", added,
		"shards", len(shards),
		"took", time.Since(start))
	return added, nil
}

// normalize trims and case-folds words, dropping blank ones.
func (s *Service) normalize(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		out = append(out, s.settings.Normalize(w))
	}
	return out
}

func (s *Service) recordInsert(submitted int) {
	if s.metrics == nil {
		return
	}
	s.metrics.WordsInsertedTotal.WithLabelValues(s.settings.Name).Add(float64(submitted))
	nodes, words := s.store.Stats()
	s.metrics.SetIndexSize(s.settings.Name, nodes, words)
}

// partition splits words into at most n contiguous, non-empty shards of near-equal size.
func partition(words []string, n int) [][]string {
	if n < 1 {
		n = 1
	}
	if n > len(words) {
		n = len(words)
	}
	shards := make([][]string, 0, n)
	size, rest := len(words)/n, len(words)%n
	for i, lo := 0, 0; i < n; i++ {
		hi := lo + size
		if i < rest {
			hi++
		}
		shards = append(shards, words[lo:hi])
		lo = hi
	}
	return shards
}
