package index

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/gcbaptista/go-term-index/internal/errors"
)

// RecordSize is the size in bytes of one encoded node. The stream has no
// header, so record i starts at byte i*RecordSize.
//
// Layout, little-endian:
//
//	[0:4]   value (rune)
//	[4:8]   depth
//	[8:12]  weight
//	[12]    flags
//	[13:16] reserved, zero
const RecordSize = 16

const (
	flagEndOfWord byte = 1 << iota
	flagHasChild
	flagHasSibling

	knownFlags = flagEndOfWord | flagHasChild | flagHasSibling
)

// EncodeNode writes n into dst, which must hold at least RecordSize bytes.
func EncodeNode(dst []byte, n Node) {
	_ = dst[RecordSize-1]
	binary.LittleEndian.PutUint32(dst[0:4], uint32(n.Value))
	binary.LittleEndian.PutUint32(dst[4:8], uint32(n.Depth))
	binary.LittleEndian.PutUint32(dst[8:12], uint32(n.Weight))

	var flags byte
	if n.EndOfWord {
		flags |= flagEndOfWord
	}
	if n.HasChild {
		flags |= flagHasChild
	}
	if n.HasSibling {
		flags |= flagHasSibling
	}
	dst[12] = flags
	dst[13], dst[14], dst[15] = 0, 0, 0
}

// DecodeNode reads one record. It looks at nothing but the record itself.
func DecodeNode(record []byte) (Node, error) {
	if len(record) != RecordSize {
		return Node{}, fmt.Errorf("record is %d bytes, want %d", len(record), RecordSize)
	}
	flags := record[12]
	if flags&^knownFlags != 0 {
		return Node{}, fmt.Errorf("unknown flags %#x", flags)
	}
	if record[13] != 0 || record[14] != 0 || record[15] != 0 {
		return Node{}, fmt.Errorf("reserved bytes are not zero")
	}

	value := binary.LittleEndian.Uint32(record[0:4])
	if value > utf8.MaxRune {
		return Node{}, fmt.Errorf("value %#x is not a valid rune", value)
	}
	n := Node{
		Value:      rune(value),
		Depth:      int(binary.LittleEndian.Uint32(record[4:8])),
		Weight:     int(binary.LittleEndian.Uint32(record[8:12])),
		EndOfWord:  flags&flagEndOfWord != 0,
		HasChild:   flags&flagHasChild != 0,
		HasSibling: flags&flagHasSibling != 0,
	}
	if n.Weight < 1 {
		return Node{}, fmt.Errorf("weight %d is below 1", n.Weight)
	}
	return n, nil
}

// Encode writes t as a node stream: one record per node in preorder, root first.
func Encode(w io.Writer, t *Trie) error {
	bw := bufio.NewWriter(w)
	var record [RecordSize]byte
	err := t.Walk(func(n Node) error {
		EncodeNode(record[:], n)
		_, err := bw.Write(record[:])
		return err
	})
	if err != nil {
		return err
	}
	return bw.Flush()
}

// Decode rebuilds a Trie from a node stream, checking that the records form
// a well-shaped preorder and that every stored weight is right.
func Decode(r io.Reader) (*Trie, error) {
	br := bufio.NewReader(r)
	t := &Trie{}

	var (
		record       [RecordSize]byte
		awaiting     []int32 // nodes whose sibling has not been read yet
		prevHasChild bool
	)

	for index := int64(0); ; index++ {
		offset := index * RecordSize
		_, err := io.ReadFull(br, record[:])
		if err == io.EOF {
			if index == 0 {
				return nil, errors.NewCorruptStreamError("decode", offset, io.ErrUnexpectedEOF)
			}
			if prevHasChild || len(awaiting) > 0 {
				return nil, errors.NewCorruptStreamError("decode", offset, fmt.Errorf("stream ends with %d subtrees still open", len(awaiting)+boolToInt(prevHasChild)))
			}
			break
		}
		if err == io.ErrUnexpectedEOF {
			return nil, errors.NewCorruptStreamError("decode", offset, err)
		}
		if err != nil {
			return nil, err
		}

		n, err := DecodeNode(record[:])
		if err != nil {
			return nil, errors.NewCorruptStreamError("decode", offset, err)
		}

		idx := int32(len(t.nodes))
		switch {
		case index == 0:
			if n.Depth != 0 || n.Value != 0 || n.EndOfWord || n.HasSibling {
				return nil, errors.NewCorruptStreamError("decode", offset, fmt.Errorf("first record is not a root"))
			}
		case prevHasChild:
			parent := idx - 1
			if n.Depth != int(t.nodes[parent].depth)+1 {
				return nil, errors.NewCorruptStreamError("decode", offset, fmt.Errorf("child at depth %d under depth %d", n.Depth, t.nodes[parent].depth))
			}
			t.nodes[parent].child = idx
		default:
			if len(awaiting) == 0 {
				return nil, errors.NewCorruptStreamError("decode", offset, fmt.Errorf("record past the end of the trie"))
			}
			prev := awaiting[len(awaiting)-1]
			awaiting = awaiting[:len(awaiting)-1]
			if n.Depth != int(t.nodes[prev].depth) {
				return nil, errors.NewCorruptStreamError("decode", offset, fmt.Errorf("sibling at depth %d next to depth %d", n.Depth, t.nodes[prev].depth))
			}
			t.nodes[prev].sibling = idx
		}

		t.nodes = append(t.nodes, trieNode{
			value:     n.Value,
			depth:     int32(n.Depth),
			weight:    n.Weight,
			endOfWord: n.EndOfWord,
		})
		if n.EndOfWord {
			t.words++
		}
		if n.HasSibling {
			awaiting = append(awaiting, idx)
		}
		prevHasChild = n.HasChild
	}

	// Children and siblings always come later in preorder, so a reverse pass
	// sees them first.
	for i := len(t.nodes) - 1; i >= 0; i-- {
		n := t.nodes[i]
		want := 1
		if n.child != noNode {
			want += t.nodes[n.child].weight
		}
		if n.sibling != noNode {
			want += t.nodes[n.sibling].weight
		}
		if n.weight != want {
			return nil, errors.NewCorruptStreamError("decode", int64(i)*RecordSize, fmt.Errorf("weight %d, subtree holds %d nodes", n.weight, want))
		}
	}
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
