package wsidicom

import (
	"fmt"

	"github.com/jpfielding/wsidicom/pkg/wsidicom/tag"
	"github.com/jpfielding/wsidicom/pkg/wsidicom/vr"
)

// Undefined is the VL sentinel meaning "undefined length", terminated by an
// end-of-item or end-of-sequence marker rather than a byte count.
const Undefined uint32 = 0xFFFFFFFF

// ElementHeader is a decoded (tag, VR, VL) triple. The value bytes
// themselves are left in the stream; a caller who wants them gets a
// boundedView.
type ElementHeader struct {
	Tag tag.Tag
	VR  vr.VR
	VL  uint32
}

// decodeExplicitHeader reads a full explicit-VR element header: 2-byte
// group, 2-byte element, 2-byte VR, then either a 2-byte length or 2
// reserved bytes + a 4-byte length depending on the VR's length family
// (spec §4.3).
func decodeExplicitHeader(br *byteReader) (ElementHeader, error) {
	start := br.tell()
	t, err := br.readTag()
	if err != nil {
		return ElementHeader{}, err
	}
	return decodeExplicitHeaderTail(br, t, start)
}

func decodeExplicitHeaderTail(br *byteReader, t tag.Tag, start int64) (ElementHeader, error) {
	vrBytes, err := br.readExact(2)
	if err != nil {
		return ElementHeader{}, err
	}
	vrStr := string(vrBytes)
	if !vr.Valid(vrStr) {
		return ElementHeader{}, newParseError(MalformedHeader, start,
			fmt.Errorf("tag %04X,%04X: invalid VR %q", t.Group, t.Element, vrStr))
	}
	v := vr.VR(vrStr)

	if v.IsLongLength() {
		reserved, err := br.readExact(2)
		if err != nil {
			return ElementHeader{}, err
		}
		if reserved[0] != 0 || reserved[1] != 0 {
			return ElementHeader{}, newParseError(MalformedHeader, start,
				fmt.Errorf("tag %04X,%04X: non-zero reserved padding", t.Group, t.Element))
		}
		vl, err := br.readUint32()
		if err != nil {
			return ElementHeader{}, err
		}
		return ElementHeader{Tag: t, VR: v, VL: vl}, nil
	}

	vl16, err := br.readUint16()
	if err != nil {
		return ElementHeader{}, err
	}
	return ElementHeader{Tag: t, VR: v, VL: uint32(vl16)}, nil
}

// decodeExplicitHeaderOrEOF behaves like decodeExplicitHeader except a
// clean end-of-stream before any bytes of the next header are read is
// reported as io.EOF. Only the top-level dataset loop uses this: it is the
// sole place the grammar is allowed to terminate on exhaustion.
func decodeExplicitHeaderOrEOF(br *byteReader) (ElementHeader, error) {
	start := br.tell()
	t, err := br.readTagOrEOF()
	if err != nil {
		return ElementHeader{}, err
	}
	return decodeExplicitHeaderTail(br, t, start)
}

// decodeExplicitOrEndItemHeader is decodeExplicitHeader generalized for use
// inside undefined-length items: when the tag is the item delimiter
// (FFFE,E00D) it skips the (nonexistent) VR, reads a 4-byte VL that must be
// zero, and synthesizes VR "none" (spec §4.3).
func decodeExplicitOrEndItemHeader(br *byteReader) (ElementHeader, error) {
	start := br.tell()
	t, err := br.readTag()
	if err != nil {
		return ElementHeader{}, err
	}
	if t.Equals(tag.ItemDelimitationItem) {
		vl, err := br.readUint32()
		if err != nil {
			return ElementHeader{}, err
		}
		if vl != 0 {
			return ElementHeader{}, newParseError(MalformedHeader, start,
				fmt.Errorf("item delimitation item: non-zero VL %d", vl))
		}
		return ElementHeader{Tag: t, VR: vr.None, VL: vl}, nil
	}
	return decodeExplicitHeaderTail(br, t, start)
}

// decodeTagOnlyHeader reads a tag followed directly by a 4-byte VL, no VR
// field at all. Used for item and sequence/item delimiter markers.
func decodeTagOnlyHeader(br *byteReader) (ElementHeader, error) {
	t, err := br.readTag()
	if err != nil {
		return ElementHeader{}, err
	}
	vl, err := br.readUint32()
	if err != nil {
		return ElementHeader{}, err
	}
	return ElementHeader{Tag: t, VR: vr.None, VL: vl}, nil
}
