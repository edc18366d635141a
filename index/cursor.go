package index

import (
	"io"

	"github.com/gcbaptista/go-term-index/internal/errors"
)

// trieCursor yields the nodes of an in-memory Trie in preorder. The stack
// holds the arena indexes still to be visited, top last.
type trieCursor struct {
	trie  *Trie
	stack []int32
	index int64 // preorder position of the next node
}

func (c *trieCursor) Step() (Node, error) {
	if len(c.stack) == 0 {
		return Node{}, io.EOF
	}
	idx := c.pop()
	c.visit(idx)
	c.index++
	return c.trie.node(idx), nil
}

func (c *trieCursor) Skip(count int) error {
	for count > 0 {
		if len(c.stack) == 0 {
			return errors.NewCorruptStreamError("skip", c.index*RecordSize, io.ErrUnexpectedEOF)
		}
		top := c.stack[len(c.stack)-1]
		if weight := c.trie.nodes[top].weight; weight <= count {
			// Whole subtree lies inside the skipped range.
			c.pop()
			count -= weight
			c.index += int64(weight)
			continue
		}
		c.pop()
		c.visit(top)
		count--
		c.index++
	}
	return nil
}

func (c *trieCursor) Reset() error {
	c.trie.init()
	c.stack = append(c.stack[:0], 0)
	c.index = 0
	return nil
}

func (c *trieCursor) pop() int32 {
	idx := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	return idx
}

// visit schedules the node's sibling after its child.
func (c *trieCursor) visit(idx int32) {
	n := c.trie.nodes[idx]
	if n.sibling != noNode {
		c.stack = append(c.stack, n.sibling)
	}
	if n.child != noNode {
		c.stack = append(c.stack, n.child)
	}
}
