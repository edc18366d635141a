// Package index implements the term index: a left-child/right-sibling trie
// over runes, its flat preorder node stream encoding, and a traversal engine
// that answers exact, prefix and near (edit distance) queries one node record
// at a time, either over the in-memory trie or directly over an encoded stream.
package index

// Node is one trie node as seen by a traversal: a decoded node stream record,
// or a snapshot of an in-memory node.
type Node struct {
	Value      rune // the node's character; 0 for the root sentinel
	Depth      int  // distance from the root along the child chain (root = 0)
	Weight     int  // nodes in the subtree rooted here, including itself
	EndOfWord  bool // the path from the root to here spells a stored word
	HasChild   bool
	HasSibling bool
}

// position returns the 0-based character position the node occupies in a word.
func (n Node) position() int {
	return n.Depth - 1
}
