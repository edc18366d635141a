package persistence

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// FormatVersion identifies the node stream layout written by WriteTrie.
const FormatVersion = 1

// Manifest describes a node stream file. It is written after the stream and
// checked when the stream is loaded back.
type Manifest struct {
	FormatVersion int       `msgpack:"format_version" json:"format_version"`
	RecordSize    int       `msgpack:"record_size" json:"record_size"`
	Nodes         int       `msgpack:"nodes" json:"nodes"`
	Words         int       `msgpack:"words" json:"words"`
	Bytes         int64     `msgpack:"bytes" json:"bytes"`
	Checksum      uint64    `msgpack:"checksum" json:"checksum"` // xxhash64 of the stream
	CreatedAt     time.Time `msgpack:"created_at" json:"created_at"`
}

// SaveManifest writes m to path as msgpack.
func SaveManifest(path string, m Manifest) error {
	return writeAtomic(path, func(w io.Writer) error {
		if err := msgpack.NewEncoder(w).Encode(&m); err != nil {
			return fmt.Errorf("failed to encode manifest to %s: %w", path, err)
		}
		return nil
	})
}

// LoadManifest reads a manifest. A missing file returns os.ErrNotExist.
func LoadManifest(path string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(path) // #nosec G304 -- path is built by the engine from the index name
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return m, os.ErrNotExist
		}
		return m, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	if err := msgpack.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("failed to decode manifest %s: %w", path, err)
	}
	return m, nil
}
