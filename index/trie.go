package index

import (
	"io"
	"unicode/utf8"
)

// noNode marks a missing child or sibling. The root lives at index 0 and is
// nobody's child or sibling, so 0 is free to mean "none".
const noNode int32 = 0

// trieNode is an arena slot. child and sibling are arena indexes.
type trieNode struct {
	value     rune
	depth     int32
	weight    int
	child     int32
	sibling   int32
	endOfWord bool
}

// Trie is a mutable left-child/right-sibling trie stored in an arena.
//
// Every node keeps its weight: the number of nodes in its LCRS subtree
// (itself, its child's subtree and its sibling's subtree). Weights are kept
// current by Insert, so readers never mutate the trie.
//
// A Trie is single-writer. Concurrent queries are safe as long as no Insert
// or Merge runs at the same time; the Trie holds no lock of its own.
type Trie struct {
	nodes []trieNode
	words int
}

// New creates an empty trie holding only the root sentinel.
func New() *Trie {
	t := &Trie{}
	t.init()
	return t
}

func (t *Trie) init() {
	if len(t.nodes) == 0 {
		t.nodes = append(t.nodes, trieNode{weight: 1})
	}
}

// Weight returns the number of nodes in the trie including the root sentinel.
func (t *Trie) Weight() int {
	if len(t.nodes) == 0 {
		return 1
	}
	return t.nodes[0].weight
}

// Len returns the number of distinct words stored.
func (t *Trie) Len() int {
	return t.words
}

// Insert adds word to the trie. New characters are appended at the end of
// their sibling chain, so siblings keep insertion order. Inserting a word
// that is already present, or the empty word, changes nothing.
func (t *Trie) Insert(word string) {
	if word == "" {
		return
	}
	t.init()

	// path holds every node walked through, in LCRS order: each entry is an
	// ancestor (via child or sibling link) of all entries after it.
	path := make([]int32, 1, utf8.RuneCountInString(word)+1)
	firstNew := -1
	cur := int32(0)
	depth := int32(0)

	for _, r := range word {
		depth++
		next := t.nodes[cur].child
		if next == noNode {
			next = t.appendNode(r, depth)
			t.nodes[cur].child = next
			if firstNew < 0 {
				firstNew = len(path)
			}
			path = append(path, next)
			cur = next
			continue
		}

		for {
			path = append(path, next)
			if t.nodes[next].value == r {
				break
			}
			sibling := t.nodes[next].sibling
			if sibling == noNode {
				sibling = t.appendNode(r, depth)
				t.nodes[next].sibling = sibling
				if firstNew < 0 {
					firstNew = len(path)
				}
				path = append(path, sibling)
				next = sibling
				break
			}
			next = sibling
		}
		cur = next
	}

	if firstNew >= 0 {
		// Nodes created by this insert form the tail of path, each one the
		// LCRS parent of the next.
		created := len(path) - firstNew
		for i, idx := range path {
			if i < firstNew {
				t.nodes[idx].weight += created
			} else {
				t.nodes[idx].weight = len(path) - i
			}
		}
	}

	if !t.nodes[cur].endOfWord {
		t.nodes[cur].endOfWord = true
		t.words++
	}
}

func (t *Trie) appendNode(r rune, depth int32) int32 {
	t.nodes = append(t.nodes, trieNode{value: r, depth: depth, weight: 1})
	return int32(len(t.nodes) - 1)
}

// Merge adds every word of other to t. The result holds the union of both
// word sets regardless of argument order. Merging a trie into itself is a no-op.
func (t *Trie) Merge(other *Trie) {
	if other == nil {
		return
	}
	// Snapshot first: other may be t.
	for _, word := range other.Words() {
		t.Insert(word)
	}
}

// Words returns every stored word in preorder.
func (t *Trie) Words() []string {
	words := make([]string, 0, t.words)
	var path []rune
	_ = t.Walk(func(n Node) error {
		if n.Depth == 0 {
			return nil
		}
		// In preorder the latest node seen at each shallower depth is an ancestor.
		path = append(path[:n.position()], n.Value)
		if n.EndOfWord {
			words = append(words, string(path))
		}
		return nil
	})
	return words
}

// Walk calls fn for every node in preorder: a node, then its child's
// subtree, then its sibling's subtree. The root sentinel comes first.
func (t *Trie) Walk(fn func(Node) error) error {
	cursor := t.Cursor()
	for {
		n, err := cursor.Step()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(n); err != nil {
			return err
		}
	}
}

// Cursor returns a Source walking the trie in preorder. The cursor reads the
// trie without modifying it; it must not be used across a concurrent Insert.
func (t *Trie) Cursor() Source {
	c := &trieCursor{trie: t}
	_ = c.Reset()
	return c
}

// HasWord reports whether word was inserted.
func (t *Trie) HasWord(word string) (bool, error) {
	return NewReader(t.Cursor()).HasWord(word)
}

// StartsWith returns every stored word that has prefix as a prefix, prefix included.
func (t *Trie) StartsWith(prefix string) ([]Word, error) {
	return NewReader(t.Cursor()).StartsWith(prefix)
}

// Near returns every stored word within maxEdits edits of word, closest first.
func (t *Trie) Near(word string, maxEdits int) ([]Word, error) {
	return NewReader(t.Cursor()).Near(word, maxEdits)
}

func (t *Trie) node(idx int32) Node {
	n := t.nodes[idx]
	return Node{
		Value:      n.value,
		Depth:      int(n.depth),
		Weight:     n.weight,
		EndOfWord:  n.endOfWord,
		HasChild:   n.child != noNode,
		HasSibling: n.sibling != noNode,
	}
}
