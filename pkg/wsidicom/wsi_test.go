package wsidicom

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildWSIFixture assembles a synthetic whole-slide instance exercising
// every scalar root attribute the observable in spec.md §6 names, plus an
// encapsulated pixel data stream with a basic offset table and nFrames
// frames of increasing size.
func buildWSIFixture(codeValue string, nFrames int) []byte {
	b := newDicomBuilder().preambleAndMeta(explicitVRLittleEndianUID)
	b.short(0x0020, 0x000D, "UI", []byte("1.2.840.99999.1"))
	b.short(0x0028, 0x0008, "IS", []byte("3 "))
	b.short(0x0028, 0x0010, "US", le16(512))
	b.short(0x0028, 0x0011, "US", le16(512))
	b.short(0x0048, 0x0006, "UL", le32(2048))
	b.short(0x0048, 0x0007, "UL", le32(1536))

	b.undefinedLong(0x0048, 0x0105, "SQ")
	b.itemStart(Undefined)
	b.undefinedLong(0x0022, 0x0019, "SQ")
	b.itemStart(Undefined)
	b.short(0x0008, 0x0100, "SH", []byte(codeValue))
	b.itemDelim()
	b.seqDelim()
	b.itemDelim()
	b.seqDelim()

	b.undefinedLong(0x7FE0, 0x0010, "OB")
	b.itemStart(0) // basic offset table, empty
	for i := 0; i < nFrames; i++ {
		payload := bytes.Repeat([]byte{byte(i + 1)}, 4+i*2)
		b.itemStart(uint32(len(payload)))
		b.raw(payload)
	}
	b.seqDelim()
	return b.bytes()
}

// TestWSIAttributes covers the full root-attribute observable: study
// instance UID, frame count, rows/columns, total pixel-matrix dimensions,
// nested optical-path code value, tile-grid derivation, and the
// supplemented is-icon heuristic.
func TestWSIAttributes(t *testing.T) {
	data := buildWSIFixture("A-00118", 3)
	p := NewParser(bytes.NewReader(data))
	attrs, err := ExtractWSIAttributes(p)
	require.NoError(t, err)

	assert.Equal(t, "1.2.840.99999.1", attrs.StudyInstanceUID)
	assert.Equal(t, 3, attrs.NumberOfFrames)
	assert.Equal(t, uint16(512), attrs.Rows)
	assert.Equal(t, uint16(512), attrs.Columns)
	assert.Equal(t, uint32(2048), attrs.TotalPixelMatrixColumns)
	assert.Equal(t, uint32(1536), attrs.TotalPixelMatrixRows)
	assert.Equal(t, "A-00118", attrs.OpticalPathCodeValue)
	assert.True(t, attrs.IsIcon)

	across, down := attrs.TileGrid()
	assert.Equal(t, 4, across) // ceil(2048/512)
	assert.Equal(t, 3, down)   // ceil(1536/512)
}

// A tissue optical path (any code value other than the icon sentinel)
// must not be flagged as an icon.
func TestWSIAttributesTissueIsNotIcon(t *testing.T) {
	data := buildWSIFixture("A-00119", 1)
	p := NewParser(bytes.NewReader(data))
	attrs, err := ExtractWSIAttributes(p)
	require.NoError(t, err)
	assert.False(t, attrs.IsIcon)
}

// TestPixelItemOffsetsMonotonic generalizes scenario 4 over varying frame
// counts: the basic offset table is always discarded, and the remaining
// offsets are always strictly increasing.
func TestPixelItemOffsetsMonotonic(t *testing.T) {
	for _, nFrames := range []int{0, 1, 3, 8} {
		data := buildWSIFixture("A-00119", nFrames)
		p := NewParser(bytes.NewReader(data))
		attrs, err := ExtractWSIAttributes(p)
		require.NoError(t, err)

		require.Len(t, attrs.FrameOffsets, nFrames)
		require.Len(t, attrs.FrameLengths, nFrames)
		for i := 1; i < len(attrs.FrameOffsets); i++ {
			assert.Greater(t, attrs.FrameOffsets[i], attrs.FrameOffsets[i-1])
		}
	}
}

// A tile grid cannot be computed when the tile dimensions are zero; the
// derivation must not divide by zero.
func TestTileGridZeroTileDimension(t *testing.T) {
	attrs := &WSIAttributes{TotalPixelMatrixColumns: 100, TotalPixelMatrixRows: 100}
	across, down := attrs.TileGrid()
	assert.Equal(t, 0, across)
	assert.Equal(t, 0, down)
}
