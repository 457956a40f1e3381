package wsidicom

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/jpfielding/wsidicom/pkg/wsidicom/tag"
)

// byteReader wraps a seekable byte source and tracks the current offset so
// that every ParseError can report exactly where the stream was when the
// failure was detected. All multi-byte fields on the wire are little-endian
// (spec §4.1); this parser runs on little-endian and big-endian hosts alike
// because it always decodes through encoding/binary rather than reading
// native-endian words.
type byteReader struct {
	r   io.ReadSeeker
	pos int64
}

func newByteReader(r io.ReadSeeker) *byteReader {
	return &byteReader{r: r}
}

// tell returns the current byte offset.
func (b *byteReader) tell() int64 {
	return b.pos
}

// readExact reads exactly n bytes or returns an Io ParseError.
func (b *byteReader) readExact(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(b.r, buf); err != nil {
		return nil, newParseError(Io, b.pos, fmt.Errorf("read %d bytes: %w", n, err))
	}
	b.pos += int64(n)
	return buf, nil
}

// skip advances n bytes without retaining them, preferring Seek over a
// discard copy when the underlying source supports it.
func (b *byteReader) skip(n int64) error {
	if n == 0 {
		return nil
	}
	if _, err := b.r.Seek(n, io.SeekCurrent); err != nil {
		if _, cerr := io.CopyN(io.Discard, b.r, n); cerr != nil {
			return newParseError(Io, b.pos, fmt.Errorf("skip %d bytes: %w", n, cerr))
		}
		b.pos += n
		return nil
	}
	b.pos += n
	return nil
}

func (b *byteReader) readUint16() (uint16, error) {
	buf, err := b.readExact(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf), nil
}

func (b *byteReader) readUint32() (uint32, error) {
	buf, err := b.readExact(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

// readTag reads a 4-byte (group, element) pair.
func (b *byteReader) readTag() (tag.Tag, error) {
	group, err := b.readUint16()
	if err != nil {
		return tag.Tag{}, err
	}
	element, err := b.readUint16()
	if err != nil {
		return tag.Tag{}, err
	}
	return tag.New(group, element), nil
}

// readTagOrEOF behaves like readTag except a clean end-of-stream (no bytes
// read at all) is reported as io.EOF rather than wrapped in a ParseError.
// Only the top-level dataset loop uses this: it is the one place the
// grammar is allowed to terminate on exhaustion instead of failing.
func (b *byteReader) readTagOrEOF() (tag.Tag, error) {
	var buf [4]byte
	n, err := io.ReadFull(b.r, buf[:])
	if n == 0 && err != nil {
		return tag.Tag{}, io.EOF
	}
	if err != nil {
		return tag.Tag{}, newParseError(Io, b.pos, fmt.Errorf("read tag: %w", err))
	}
	b.pos += 4
	return tag.New(binary.LittleEndian.Uint16(buf[0:2]), binary.LittleEndian.Uint16(buf[2:4])), nil
}
