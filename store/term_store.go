// Package store holds the live trie of one term index behind a read/write lock.
package store

import (
	"io"
	"sync"

	"github.com/gcbaptista/go-term-index/index"
)

// TermStore guards an index's trie. Inserts and merges take the write lock;
// queries and encoding take the read lock, so a Trie is never mutated while
// it is being read.
//
// Every change bumps a generation counter. Persisting records the generation
// it wrote, which is how the store knows whether memory and disk agree.
type TermStore struct {
	mu             sync.RWMutex
	trie           *index.Trie
	generation     uint64
	persistedAtGen uint64
	persisted      bool
}

// NewTermStore wraps t; a nil t starts an empty trie.
func NewTermStore(t *index.Trie) *TermStore {
	if t == nil {
		t = index.New()
	}
	return &TermStore{trie: t}
}

// NewPersistedTermStore wraps a trie that was just loaded from its node stream.
func NewPersistedTermStore(t *index.Trie) *TermStore {
	s := NewTermStore(t)
	s.persisted = true
	return s
}

// Insert adds words and returns how many of them were new.
func (s *TermStore) Insert(words []string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.trie.Len()
	for _, w := range words {
		s.trie.Insert(w)
	}
	added := s.trie.Len() - before
	if added > 0 {
		s.generation++
	}
	return added
}

// Merge adds every word of other and returns how many were new.
// other must not be changed concurrently.
func (s *TermStore) Merge(other *index.Trie) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.trie.Len()
	s.trie.Merge(other)
	added := s.trie.Len() - before
	if added > 0 {
		s.generation++
	}
	return added
}

// Clear drops every word. Returns how many words were removed.
func (s *TermStore) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.trie.Len()
	if s.trie.Weight() > 1 {
		s.trie = index.New()
		s.generation++
	}
	return removed
}

// Snapshot returns an independent copy of the current trie.
func (s *TermStore) Snapshot() *index.Trie {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clone := index.New()
	clone.Merge(s.trie)
	return clone
}

// View runs fn with the trie under the read lock. fn must not keep the trie.
func (s *TermStore) View(fn func(t *index.Trie) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.trie)
}

// Encode writes the trie as a node stream and returns the generation written.
func (s *TermStore) Encode(w io.Writer) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation, index.Encode(w, s.trie)
}

// Persist runs write with the trie under the read lock and, if it succeeds,
// records the current generation as persisted.
func (s *TermStore) Persist(write func(t *index.Trie) error) error {
	s.mu.RLock()
	gen := s.generation
	err := write(s.trie)
	s.mu.RUnlock()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen >= s.persistedAtGen {
		s.persistedAtGen = gen
		s.persisted = true
	}
	return nil
}

// Stats returns the node and word counts.
func (s *TermStore) Stats() (nodes, words int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.trie.Weight(), s.trie.Len()
}

// Persisted reports whether a node stream has been written for this store.
func (s *TermStore) Persisted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persisted
}

// Dirty reports whether the trie changed since it was last persisted.
func (s *TermStore) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.persisted || s.generation != s.persistedAtGen
}
