package persistence

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/gcbaptista/go-term-index/index"
	"github.com/gcbaptista/go-term-index/internal/errors"
)

// countingWriter counts the bytes written through it.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// WriteTrie encodes t into path as a node stream and returns the manifest
// describing what was written. The caller must keep t unchanged meanwhile.
func WriteTrie(path string, t *index.Trie) (Manifest, error) {
	m := Manifest{
		FormatVersion: FormatVersion,
		RecordSize:    index.RecordSize,
		Nodes:         t.Weight(),
		Words:         t.Len(),
	}

	err := writeAtomic(path, func(w io.Writer) error {
		digest := xxhash.New()
		cw := &countingWriter{w: io.MultiWriter(w, digest)}
		if err := index.Encode(cw, t); err != nil {
			return fmt.Errorf("failed to encode node stream to %s: %w", path, err)
		}
		m.Bytes = cw.n
		m.Checksum = digest.Sum64()
		return nil
	})
	if err != nil {
		return Manifest{}, err
	}
	m.CreatedAt = time.Now().UTC()
	return m, nil
}

// ReadTrie decodes the node stream at path and checks it against m.
func ReadTrie(path string, m Manifest) (*index.Trie, error) {
	if m.FormatVersion != FormatVersion || m.RecordSize != index.RecordSize {
		return nil, fmt.Errorf("unsupported node stream format %d with %d-byte records", m.FormatVersion, m.RecordSize)
	}

	file, err := os.Open(path) // #nosec G304 -- path is built by the engine from the index name
	if err != nil {
		return nil, fmt.Errorf("failed to open node stream %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat node stream %s: %w", path, err)
	}
	if info.Size() != m.Bytes {
		return nil, errors.NewCorruptStreamError("decode", info.Size(), fmt.Errorf("file holds %d bytes, manifest says %d", info.Size(), m.Bytes))
	}

	digest := xxhash.New()
	t, err := index.Decode(io.TeeReader(file, digest))
	if err != nil {
		return nil, err
	}
	if sum := digest.Sum64(); sum != m.Checksum {
		return nil, errors.NewCorruptStreamError("decode", m.Bytes, fmt.Errorf("checksum %016x, manifest says %016x", sum, m.Checksum))
	}
	if t.Weight() != m.Nodes || t.Len() != m.Words {
		return nil, errors.NewCorruptStreamError("decode", m.Bytes, fmt.Errorf("stream holds %d nodes and %d words, manifest says %d and %d", t.Weight(), t.Len(), m.Nodes, m.Words))
	}
	return t, nil
}

// TrieFile is an open node stream file. Queries read it in place.
type TrieFile struct {
	file *os.File
	size int64
}

// OpenTrieFile opens the node stream at path. A missing or unreadable file
// fails here rather than on the first query.
func OpenTrieFile(path string) (*TrieFile, error) {
	file, err := os.Open(path) // #nosec G304 -- path is built by the engine from the index name
	if err != nil {
		return nil, fmt.Errorf("failed to open node stream %s: %w", path, err)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to stat node stream %s: %w", path, err)
	}
	return &TrieFile{file: file, size: info.Size()}, nil
}

// Reader returns a fresh query reader over the file.
func (f *TrieFile) Reader() *index.Reader {
	return index.Open(f.file, f.size)
}

// Size returns the stream length in bytes.
func (f *TrieFile) Size() int64 {
	return f.size
}

// Close releases the file. Queries running on its readers fail afterwards.
func (f *TrieFile) Close() error {
	return f.file.Close()
}
