package wsidicom

import (
	"errors"
	"fmt"
	"io"

	"github.com/jpfielding/wsidicom/pkg/wsidicom/tag"
)

// walker drives the grammar described in spec §4.5. It is a pure
// depth-first traversal; its only mutable state across frames is the tag
// path stack and the underlying reader's file offset.
type walker struct {
	br      *byteReader
	path    pathStack
	targets *targetPathSet
	handler Handler
}

// walkDataset is the top-level loop: decode one explicit header, dispatch
// it, repeat until EOF.
func (w *walker) walkDataset() error {
	for {
		header, err := decodeExplicitHeaderOrEOF(w.br)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if err := w.dispatch(header); err != nil {
			return err
		}
	}
}

// dispatch implements the five-way branch spec §4.5 assigns to every
// non-sentinel element encountered at any depth.
func (w *walker) dispatch(de ElementHeader) error {
	offset := w.br.tell()
	if err := w.path.push(de.Tag, offset); err != nil {
		return err
	}
	defer w.path.pop()

	switch {
	case de.VL == Undefined:
		if de.Tag.Equals(tag.PixelData) {
			w.handler.OnAttribute(w.path.snapshot(), de, nil)
			return w.walkEncapsulatedPixelData()
		}
		if !de.VR.IsSequence() {
			return newParseError(UnsupportedUndefinedUnknown, offset,
				fmt.Errorf("tag %04X,%04X: undefined length on non-sequence VR %q", de.Tag.Group, de.Tag.Element, de.VR))
		}
		w.handler.OnAttribute(w.path.snapshot(), de, nil)
		return w.walkSequenceUndefined()

	case de.VR.IsSequence():
		if w.targets.containsPrefixOf(w.path.snapshot()) {
			return w.walkSequenceDefined(de.VL)
		}
		return w.br.skip(int64(de.VL))

	default:
		view := newBoundedView(w.br, de.VL)
		w.handler.OnAttribute(w.path.snapshot(), de, view)
		return view.drainToEnd()
	}
}

// walkSequenceUndefined loops decoding tag-only item markers until the
// sequence delimitation item is found.
func (w *walker) walkSequenceUndefined() error {
	for {
		offset := w.br.tell()
		marker, err := decodeTagOnlyHeader(w.br)
		if err != nil {
			return err
		}
		if marker.Tag.Equals(tag.SequenceDelimitationItem) {
			if marker.VL != 0 {
				return newParseError(MalformedHeader, offset, fmt.Errorf("sequence delimitation item: non-zero VL %d", marker.VL))
			}
			return nil
		}
		if !marker.Tag.Equals(tag.Item) {
			return newParseError(MalformedHeader, offset, fmt.Errorf("expected item start, got %04X,%04X", marker.Tag.Group, marker.Tag.Element))
		}
		if err := w.enterItem(marker.VL); err != nil {
			return err
		}
	}
}

// walkSequenceDefined is walkSequenceUndefined generalized to stop on
// accumulated byte count instead of a delimiter.
func (w *walker) walkSequenceDefined(seqLen uint32) error {
	start := w.br.tell()
	for {
		consumed := w.br.tell() - start
		if consumed == int64(seqLen) {
			return nil
		}
		if consumed > int64(seqLen) {
			return newParseError(MalformedLength, w.br.tell(), fmt.Errorf("sequence overran declared length %d by %d bytes", seqLen, consumed-int64(seqLen)))
		}
		offset := w.br.tell()
		marker, err := decodeTagOnlyHeader(w.br)
		if err != nil {
			return err
		}
		if !marker.Tag.Equals(tag.Item) {
			return newParseError(MalformedHeader, offset, fmt.Errorf("expected item start, got %04X,%04X", marker.Tag.Group, marker.Tag.Element))
		}
		if err := w.enterItem(marker.VL); err != nil {
			return err
		}
	}
}

// enterItem applies the item-level policy shared by both sequence forms:
// undefined-length items are always entered (their terminator must be
// found by scanning); defined-length items are entered only when the
// current path is prefix-matched by the target set, otherwise skipped.
func (w *walker) enterItem(itemLen uint32) error {
	if itemLen == Undefined {
		return w.walkItemUndefined()
	}
	if w.targets.containsPrefixOf(w.path.snapshot()) {
		return w.walkItemDefined(itemLen)
	}
	return w.br.skip(int64(itemLen))
}

// walkItemUndefined loops decoding explicit-or-end-item headers, dispatching
// every element as at the top level, until the item delimitation item.
func (w *walker) walkItemUndefined() error {
	for {
		header, err := decodeExplicitOrEndItemHeader(w.br)
		if err != nil {
			return err
		}
		if header.Tag.Equals(tag.ItemDelimitationItem) {
			return nil
		}
		if err := w.dispatch(header); err != nil {
			return err
		}
	}
}

// walkItemDefined is walkItemUndefined generalized to stop on accumulated
// byte count instead of a delimiter.
func (w *walker) walkItemDefined(itemLen uint32) error {
	start := w.br.tell()
	for {
		consumed := w.br.tell() - start
		if consumed == int64(itemLen) {
			return nil
		}
		if consumed > int64(itemLen) {
			return newParseError(MalformedLength, w.br.tell(), fmt.Errorf("item overran declared length %d by %d bytes", itemLen, consumed-int64(itemLen)))
		}
		header, err := decodeExplicitHeader(w.br)
		if err != nil {
			return err
		}
		if err := w.dispatch(header); err != nil {
			return err
		}
	}
}

// walkEncapsulatedPixelData loops decoding tag-only item markers, invoking
// OnPixelItem for each item (the first of which is the basic offset table)
// and skipping its bytes, until the sequence delimitation item.
func (w *walker) walkEncapsulatedPixelData() error {
	for {
		offset := w.br.tell()
		marker, err := decodeTagOnlyHeader(w.br)
		if err != nil {
			return err
		}
		if marker.Tag.Equals(tag.SequenceDelimitationItem) {
			if marker.VL != 0 {
				return newParseError(MalformedHeader, offset, fmt.Errorf("sequence delimitation item: non-zero VL %d", marker.VL))
			}
			return nil
		}
		if !marker.Tag.Equals(tag.Item) {
			return newParseError(MalformedHeader, offset, fmt.Errorf("expected pixel item, got %04X,%04X", marker.Tag.Group, marker.Tag.Element))
		}
		if marker.VL == Undefined {
			return newParseError(MalformedLength, w.br.tell(), fmt.Errorf("pixel data item has undefined length"))
		}
		w.handler.OnPixelItem(w.br.tell(), marker.VL)
		if err := w.br.skip(int64(marker.VL)); err != nil {
			return err
		}
	}
}
