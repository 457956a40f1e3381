package wsidicom

import (
	"fmt"
	"io"
)

// boundedView is a read-cursor limited to a declared byte length. It is the
// only mechanism by which an element's value bytes reach a callback
// (spec §4.2): the walker constructs one per leaf attribute, hands it to
// on_attribute, then advances the underlying reader to the view's end
// regardless of how much the callback actually consumed.
type boundedView struct {
	br       *byteReader
	declared uint32
	consumed uint32
}

func newBoundedView(br *byteReader, declaredLength uint32) *boundedView {
	return &boundedView{br: br, declared: declaredLength}
}

// size returns the view's declared length.
func (v *boundedView) size() uint32 {
	return v.declared
}

// Read satisfies io.Reader, handing out bytes from the underlying reader
// without ever crossing the declared length.
func (v *boundedView) Read(p []byte) (int, error) {
	remaining := v.declared - v.consumed
	if remaining == 0 {
		return 0, io.EOF
	}
	if uint32(len(p)) > remaining {
		p = p[:remaining]
	}
	buf, err := v.br.readExact(len(p))
	if err != nil {
		return 0, err
	}
	n := copy(p, buf)
	v.consumed += uint32(n)
	return n, nil
}

// skip discards n bytes from the view, used by the walker to drain
// whatever the callback left unread.
func (v *boundedView) skip(n uint32) error {
	if n == 0 {
		return nil
	}
	if err := v.br.skip(int64(n)); err != nil {
		return err
	}
	v.consumed += n
	return nil
}

// drainToEnd advances the reader past any bytes of the view the callback
// did not consume, guaranteeing the cursor lands exactly at the view's end
// (spec §4.2's core guarantee).
func (v *boundedView) drainToEnd() error {
	remaining := v.declared - v.consumed
	if remaining == 0 {
		return nil
	}
	if err := v.br.skip(int64(remaining)); err != nil {
		return fmt.Errorf("draining bounded view: %w", err)
	}
	v.consumed = v.declared
	return nil
}
