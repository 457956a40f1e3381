package wsidicom

import (
	"encoding/binary"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jpfielding/wsidicom/pkg/wsidicom/tag"
)

// iconCodeValue is the optical-path code value the reference decoder uses
// to distinguish a label/macro icon frame from a tissue frame. The
// distilled observable spec.md describes stops at reporting the code
// value; this heuristic is a supplemented feature pulled from the
// original implementation.
const iconCodeValue = "A-00118"

// WSIAttributes is the set of root-level scalar attributes and pixel-item
// geometry a whole-slide image instance exposes (spec §6's "Observables
// for a whole-slide image").
type WSIAttributes struct {
	StudyInstanceUID        string
	NumberOfFrames          int
	Rows                    uint16
	Columns                 uint16
	TotalPixelMatrixColumns uint32
	TotalPixelMatrixRows    uint32
	OpticalPathCodeValue    string
	// IsIcon is true when OpticalPathCodeValue names the label/macro icon
	// optical path rather than a tissue-imaging one.
	IsIcon bool
	// FrameOffsets and FrameLengths report every encapsulated pixel item
	// after the basic offset table, in on-wire order.
	FrameOffsets []int64
	FrameLengths []uint32
}

// TileGrid returns the number of tiles across and down the total pixel
// matrix, using the same integer ceiling-division the reference decoder
// uses to derive a level's tile grid from its image and tile dimensions.
func (a *WSIAttributes) TileGrid() (across, down int) {
	tw, th := int64(a.Columns), int64(a.Rows)
	iw, ih := int64(a.TotalPixelMatrixColumns), int64(a.TotalPixelMatrixRows)
	if tw == 0 || th == 0 {
		return 0, 0
	}
	across = int(iw/tw) + ceilingRemainder(iw, tw)
	down = int(ih/th) + ceilingRemainder(ih, th)
	return across, down
}

func ceilingRemainder(a, b int64) int {
	if a%b != 0 {
		return 1
	}
	return 0
}

// ExtractWSIAttributes parses p, collecting the whole-slide scalar root
// attributes and the encapsulated pixel item offsets. The first
// encapsulated pixel item is the basic offset table and is discarded here
// (spec §6: "the caller decides"), never reported in FrameOffsets.
func ExtractWSIAttributes(p *Parser) (*WSIAttributes, error) {
	a := &WSIAttributes{}

	p.AddTargetPath(tag.StudyInstanceUID)
	p.AddTargetPath(tag.NumberOfFrames)
	p.AddTargetPath(tag.Rows)
	p.AddTargetPath(tag.Columns)
	p.AddTargetPath(tag.TotalPixelMatrixColumns)
	p.AddTargetPath(tag.TotalPixelMatrixRows)
	p.AddTargetPath(tag.OpticalPathSequence, tag.IlluminationLensesCodeSequence, tag.CodeValue)

	var decodeErr error
	p.SetAttributeHandler(func(path []tag.Tag, h ElementHeader, value io.Reader) {
		if value == nil || decodeErr != nil {
			return
		}
		raw, err := io.ReadAll(value)
		if err != nil {
			decodeErr = fmt.Errorf("reading value for %v: %w", path, err)
			return
		}
		last := path[len(path)-1]
		switch {
		case last.Equals(tag.StudyInstanceUID):
			a.StudyInstanceUID = trimPadding(raw)
		case last.Equals(tag.NumberOfFrames):
			n, err := strconv.Atoi(strings.TrimSpace(string(raw)))
			if err != nil {
				decodeErr = fmt.Errorf("number of frames %q: %w", raw, err)
				return
			}
			a.NumberOfFrames = n
		case last.Equals(tag.Rows):
			a.Rows = decodeU16(raw)
		case last.Equals(tag.Columns):
			a.Columns = decodeU16(raw)
		case last.Equals(tag.TotalPixelMatrixColumns):
			a.TotalPixelMatrixColumns = decodeU32(raw)
		case last.Equals(tag.TotalPixelMatrixRows):
			a.TotalPixelMatrixRows = decodeU32(raw)
		case last.Equals(tag.CodeValue):
			a.OpticalPathCodeValue = trimPadding(raw)
		}
	})

	bot := true
	p.SetPixelItemHandler(func(offset int64, length uint32) {
		if bot {
			bot = false
			return
		}
		a.FrameOffsets = append(a.FrameOffsets, offset)
		a.FrameLengths = append(a.FrameLengths, length)
	})

	if err := p.Run(); err != nil {
		return nil, err
	}
	if decodeErr != nil {
		return nil, decodeErr
	}

	a.IsIcon = a.OpticalPathCodeValue == iconCodeValue
	return a, nil
}

func decodeU16(raw []byte) uint16 {
	if len(raw) < 2 {
		return 0
	}
	return binary.LittleEndian.Uint16(raw)
}

func decodeU32(raw []byte) uint32 {
	if len(raw) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(raw)
}
