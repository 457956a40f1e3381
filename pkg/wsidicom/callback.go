package wsidicom

import (
	"io"

	"github.com/jpfielding/wsidicom/pkg/wsidicom/tag"
)

// Handler is the two-entry contract the walker invokes while it descends a
// dataset (spec §4.6). It is deliberately small — a capability set of
// {OnAttribute, OnPixelItem} — so the walker can be driven in tests by a
// recording mock instead of a real callback consumer.
type Handler interface {
	// OnAttribute is invoked once per non-sentinel element the walker
	// delivers: leaves with a bounded view of their value, and
	// undefined-length sequences (which the walker must always descend
	// into to find their terminator) and the undefined-length pixel-data
	// element with a nil value. Defined-length sequences that are skipped
	// or descended into do not themselves produce a call; the children of
	// a descended one do.
	OnAttribute(path []tag.Tag, header ElementHeader, value io.Reader)
	// OnPixelItem is invoked once per item inside encapsulated pixel
	// data, including the basic offset table.
	OnPixelItem(offset int64, length uint32)
}

// HandlerFunc adapts a pair of plain functions to the Handler interface,
// for callers who only care about one hook.
type HandlerFunc struct {
	AttributeFunc func(path []tag.Tag, header ElementHeader, value io.Reader)
	PixelItemFunc func(offset int64, length uint32)
}

func (h HandlerFunc) OnAttribute(path []tag.Tag, header ElementHeader, value io.Reader) {
	if h.AttributeFunc != nil {
		h.AttributeFunc(path, header, value)
	}
}

func (h HandlerFunc) OnPixelItem(offset int64, length uint32) {
	if h.PixelItemFunc != nil {
		h.PixelItemFunc(offset, length)
	}
}
