package index

import (
	"fmt"
	"io"

	"github.com/gcbaptista/go-term-index/internal/errors"
)

// readAhead is how many bytes a StreamSource fetches per read.
const readAhead = 256 * RecordSize

// StreamSource is a Source reading records straight from an encoded node
// stream. Skip is a seek: skipped records are never read.
//
// The caller owns r and must close it; a closed file makes the next Step fail.
type StreamSource struct {
	r    io.ReaderAt
	size int64
	off  int64

	buf    []byte
	bufOff int64 // stream offset of buf[0]
}

// NewStreamSource reads the node stream of size bytes held by r.
func NewStreamSource(r io.ReaderAt, size int64) *StreamSource {
	return &StreamSource{r: r, size: size}
}

// Open returns a Reader over the node stream held by r.
func Open(r io.ReaderAt, size int64) *Reader {
	return NewReader(NewStreamSource(r, size))
}

func (s *StreamSource) Step() (Node, error) {
	if s.off >= s.size {
		return Node{}, io.EOF
	}
	if s.off+RecordSize > s.size {
		return Node{}, errors.NewCorruptStreamError("step", s.off, io.ErrUnexpectedEOF)
	}

	record, err := s.record()
	if err != nil {
		return Node{}, err
	}
	n, err := DecodeNode(record)
	if err != nil {
		return Node{}, errors.NewCorruptStreamError("step", s.off, err)
	}
	s.off += RecordSize
	return n, nil
}

func (s *StreamSource) Skip(count int) error {
	if count < 0 {
		return fmt.Errorf("skip: negative count %d", count)
	}
	target := s.off + int64(count)*RecordSize
	if target > s.size {
		return errors.NewCorruptStreamError("skip", s.off, fmt.Errorf("%d records past the end of the stream", (target-s.size+RecordSize-1)/RecordSize))
	}
	s.off = target
	return nil
}

func (s *StreamSource) Reset() error {
	s.off = 0
	return nil
}

// record returns the bytes of the record at s.off, refilling the read-ahead
// buffer when it does not hold them.
func (s *StreamSource) record() ([]byte, error) {
	start := s.off - s.bufOff
	if s.buf != nil && start >= 0 && start+RecordSize <= int64(len(s.buf)) {
		return s.buf[start : start+RecordSize], nil
	}

	want := min(int64(readAhead), s.size-s.off)
	if cap(s.buf) < readAhead {
		s.buf = make([]byte, readAhead)
	}
	s.buf = s.buf[:want]

	n, err := s.r.ReadAt(s.buf, s.off)
	if int64(n) < want {
		s.buf = nil
		if err == io.EOF || err == nil {
			return nil, errors.NewCorruptStreamError("step", s.off, io.ErrUnexpectedEOF)
		}
		return nil, err
	}
	s.bufOff = s.off
	return s.buf[:RecordSize], nil
}
