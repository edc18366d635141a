package index

import (
	"io"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/gcbaptista/go-term-index/internal/errors"
	"github.com/gcbaptista/go-term-index/internal/typoutil"
)

// Source yields trie nodes one record at a time in preorder.
type Source interface {
	// Step returns the next node and consumes it. It returns io.EOF once
	// every node has been read.
	Step() (Node, error)

	// Skip moves past the next count nodes without returning them.
	// Skip(n.Weight-1) right after Step returned n jumps over n's subtree.
	Skip(count int) error

	// Reset positions the source back on the root node.
	Reset() error
}

// maxEdits larger than this are clamped; no stored word is that far from anything.
const maxEditsCap = math.MaxInt32 / 2

// Reader answers exact, prefix and near queries against any Source without
// materializing the trie. It keeps the last node read and can hand it back
// once more after a rewind.
//
// A Reader is not safe for concurrent use. Every query starts by resetting
// the source, so queries can run back to back on the same Reader.
type Reader struct {
	source   Source
	lastRead Node
	replay   bool
}

// NewReader creates a Reader on top of source.
func NewReader(source Source) *Reader {
	return &Reader{source: source}
}

// step returns the next node. ok is false at the end of the source.
func (r *Reader) step() (node Node, ok bool, err error) {
	if r.replay {
		r.replay = false
		return r.lastRead, true, nil
	}
	node, err = r.source.Step()
	if err == io.EOF {
		return Node{}, false, nil
	}
	if err != nil {
		return Node{}, false, err
	}
	r.lastRead = node
	return node, true, nil
}

// rewind makes the next step return the last node read again.
func (r *Reader) rewind() {
	r.replay = true
}

func (r *Reader) skip(count int) error {
	if count <= 0 {
		return nil
	}
	if r.replay {
		// The pending node counts as the first skipped record.
		r.replay = false
		count--
	}
	return r.source.Skip(count)
}

// begin resets the source and reads the root sentinel.
func (r *Reader) begin() (Node, error) {
	r.replay = false
	if err := r.source.Reset(); err != nil {
		return Node{}, err
	}
	root, ok, err := r.step()
	if err != nil {
		return Node{}, err
	}
	if !ok {
		return Node{}, errors.NewCorruptStreamError("step", 0, io.ErrUnexpectedEOF)
	}
	return root, nil
}

// locate walks down to the node spelling query. The cursor is left right
// after that node.
func (r *Reader) locate(query []rune) (Node, bool, error) {
	root, err := r.begin()
	if err != nil || !root.HasChild {
		return Node{}, false, err
	}

	i := 0
	for {
		node, ok, err := r.step()
		if err != nil || !ok {
			return Node{}, false, err
		}

		pos := node.position()
		if pos > i {
			// First child of a mismatched node: its weight covers every
			// descendant of that node.
			if err := r.skip(node.Weight - 1); err != nil {
				return Node{}, false, err
			}
			continue
		}
		if pos < i {
			return Node{}, false, nil
		}

		if node.Value != query[i] {
			if !node.HasSibling {
				return Node{}, false, nil
			}
			continue
		}
		if i == len(query)-1 {
			return node, true, nil
		}
		if !node.HasChild {
			return Node{}, false, nil
		}
		i++
	}
}

// HasWord reports whether word is stored.
func (r *Reader) HasWord(word string) (bool, error) {
	if isBlank(word) {
		return false, errors.NewInvalidArgumentError("has word", word)
	}
	node, found, err := r.locate([]rune(word))
	if err != nil {
		return false, err
	}
	return found && node.EndOfWord, nil
}

// StartsWith returns every stored word beginning with prefix, prefix itself
// included, in traversal order. The result is empty, not nil, when nothing matches.
func (r *Reader) StartsWith(prefix string) ([]Word, error) {
	if isBlank(prefix) {
		return nil, errors.NewInvalidArgumentError("starts with", prefix)
	}
	query := []rune(prefix)
	node, found, err := r.locate(query)
	if err != nil {
		return nil, err
	}
	words := []Word{}
	if !found {
		return words, nil
	}
	if node.EndOfWord {
		words = append(words, Word{Value: prefix})
	}
	if !node.HasChild {
		return words, nil
	}

	// A frame resumes the walk at a pending sibling: depth and path are those
	// of the sibling's parent.
	type frame struct {
		depth int
		path  []rune
	}
	stack := []frame{{depth: node.Depth, path: slices.Clip(query)}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		depth, path := f.depth, f.path

		for {
			next, ok, err := r.step()
			if err != nil {
				return nil, err
			}
			if !ok {
				break
			}
			if next.Depth <= depth {
				// Back up at a pending sibling, or out of the prefix subtree.
				r.rewind()
				break
			}
			if next.HasSibling {
				stack = append(stack, frame{depth: depth, path: slices.Clip(path)})
			}
			path = append(path, next.Value)
			if next.EndOfWord {
				words = append(words, Word{Value: string(path)})
			}
			depth = next.Depth
		}
	}
	return words, nil
}

// Near returns every stored word within maxEdits Levenshtein edits of word,
// tagged with its distance and ordered by ascending distance. Words at the
// same distance keep traversal order.
func (r *Reader) Near(word string, maxEdits int) ([]Word, error) {
	if isBlank(word) {
		return nil, errors.NewInvalidArgumentError("near", word)
	}
	if maxEdits < 0 {
		return nil, errors.NewInvalidArgumentErrorWithReason("near", strconv.Itoa(maxEdits), "max edits must not be negative")
	}
	if maxEdits > maxEditsCap {
		maxEdits = maxEditsCap
	}

	query := []rune(word)
	minDepth := 0
	if maxEdits > 0 {
		minDepth = len(query) - 1 - maxEdits
	}
	maxDepth := len(query) + maxEdits

	root, err := r.begin()
	if err != nil {
		return nil, err
	}
	words := []Word{}
	if !root.HasChild {
		return words, nil
	}

	// rows[d] is the edit distance row of the candidate's first d characters.
	rows := [][]int{typoutil.FirstLevenshteinRow(query, nil)}
	var test []rune

	// A frame is the next record the walk expects: its character position,
	// and whether its parent already ruled out every extension.
	type frame struct {
		pos  int
		stop bool
	}
	stack := []frame{{pos: 0}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node, ok, err := r.step()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.NewCorruptStreamError("step", 0, io.ErrUnexpectedEOF)
		}

		if f.stop || f.pos >= maxDepth {
			// Node, descendants and later siblings all lie past the budget.
			if err := r.skip(node.Weight - 1); err != nil {
				return nil, err
			}
			continue
		}

		test = append(test[:f.pos], node.Value)
		if len(rows) <= f.pos+1 {
			rows = append(rows, nil)
		}
		row, minimum := typoutil.NextLevenshteinRow(query, rows[f.pos], node.Value, rows[f.pos+1])
		rows[f.pos+1] = row

		distance := row[len(query)]
		if f.pos >= minDepth && distance <= maxEdits && node.EndOfWord {
			words = append(words, Word{Value: string(test), Distance: distance})
		}

		if node.HasSibling {
			stack = append(stack, frame{pos: f.pos})
		}
		if node.HasChild {
			// No cell of the row is within budget, so no extension can be.
			stack = append(stack, frame{pos: f.pos + 1, stop: minimum > maxEdits})
		}
	}

	sortByDistance(words)
	return words, nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
