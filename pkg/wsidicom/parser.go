// Package wsidicom implements a narrow, dictionary-free recursive-descent
// parser for the DICOM Part-10 container format, specialized for
// whole-slide microscopy image instances and DICOMDIR directory-index
// files. It supports only the Explicit VR Little Endian transfer syntax;
// it never interprets attribute values beyond raw byte extraction, and it
// has no write path. Callers drive it with a set of target tag paths and a
// Handler; image-tile decoding, caching, and multi-file container glue are
// left to external collaborators.
package wsidicom

import (
	"fmt"
	"io"
	"os"

	"github.com/jpfielding/wsidicom/pkg/wsidicom/tag"
	"github.com/jpfielding/wsidicom/pkg/wsidicom/transfer"
)

const preambleSize = 128

var dicmMagic = [4]byte{'D', 'I', 'C', 'M'}

// Parser parses a single DICOM Part-10 stream. It holds no package-level
// state: every parse owns its own reader and must be Closed.
type Parser struct {
	br      *byteReader
	closer  io.Closer
	targets targetPathSet
	handler HandlerFunc
}

// Open opens path and returns a Parser reading from it. The caller must
// Close the returned Parser.
func Open(path string) (*Parser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wsidicom: open %s: %w", path, err)
	}
	p := NewParser(f)
	p.closer = f
	return p, nil
}

// NewParser wraps an already-open seekable stream. The caller is
// responsible for closing r if it needs closing; Close on the returned
// Parser is then a no-op.
func NewParser(r io.ReadSeeker) *Parser {
	return &Parser{br: newByteReader(r)}
}

// AddTargetPath registers a tag path that selects which defined-length
// sequences and items the parser descends into: every container whose path
// is a prefix of (or equal to) a registered path is walked, the others are
// skipped. Leaf attributes the walk reaches are delivered whether or not a
// target path names them.
func (p *Parser) AddTargetPath(path ...tag.Tag) {
	p.targets.add(TargetPath(path))
}

// SetAttributeHandler installs the attribute callback. See Handler for the
// delivery rules.
func (p *Parser) SetAttributeHandler(fn func(path []tag.Tag, h ElementHeader, value io.Reader)) {
	p.handler.AttributeFunc = fn
}

// SetPixelItemHandler installs the pixel-item callback, invoked once per
// item inside encapsulated pixel data, including the basic offset table.
func (p *Parser) SetPixelItemHandler(fn func(offset int64, length uint32)) {
	p.handler.PixelItemFunc = fn
}

// Run parses the preamble, file-meta group, and dataset, delivering
// callbacks as it goes. It returns a *ParseError on any protocol
// violation; no partial state is exposed to the caller beyond whatever
// the callbacks themselves already observed.
func (p *Parser) Run() error {
	if err := p.readPreambleAndMagic(); err != nil {
		return err
	}
	syntax, err := p.readFileMeta()
	if err != nil {
		return err
	}
	if !syntax.Supported() {
		return newParseError(MalformedMeta, p.br.tell(),
			fmt.Errorf("unsupported transfer syntax %q", syntax))
	}
	w := &walker{br: p.br, targets: &p.targets, handler: p.handler}
	return w.walkDataset()
}

// Close releases the underlying file, if Open (rather than NewParser)
// created it.
func (p *Parser) Close() error {
	if p.closer != nil {
		return p.closer.Close()
	}
	return nil
}

func (p *Parser) readPreambleAndMagic() error {
	if err := p.br.skip(preambleSize); err != nil {
		return newParseError(MalformedMagic, p.br.tell(), fmt.Errorf("reading preamble: %w", err))
	}
	magic, err := p.br.readExact(4)
	if err != nil {
		return newParseError(MalformedMagic, p.br.tell(), fmt.Errorf("reading magic: %w", err))
	}
	if magic[0] != dicmMagic[0] || magic[1] != dicmMagic[1] || magic[2] != dicmMagic[2] || magic[3] != dicmMagic[3] {
		return newParseError(MalformedMagic, p.br.tell()-4, fmt.Errorf("expected DICM, got %q", magic))
	}
	return nil
}

// readFileMeta decodes the single file-meta-group-length element, skips
// the meta group it describes, and returns the transfer syntax it declares
// the dataset uses. The meta group itself is never delivered to the
// caller (spec §4.5 "Preamble and file-meta group").
func (p *Parser) readFileMeta() (transfer.Syntax, error) {
	start := p.br.tell()
	header, err := decodeExplicitHeader(p.br)
	if err != nil {
		return "", err
	}
	if !header.Tag.Equals(tag.FileMetaInformationGroupLength) {
		return "", newParseError(MalformedMeta, start, fmt.Errorf("expected (0002,0000), got %04X,%04X", header.Tag.Group, header.Tag.Element))
	}
	if header.VR != "UL" {
		return "", newParseError(MalformedMeta, start, fmt.Errorf("file meta group length element has VR %q, want \"UL\"", header.VR))
	}
	if header.VL != 4 {
		return "", newParseError(MalformedMeta, start, fmt.Errorf("file meta group length element has VL %d, want 4", header.VL))
	}
	groupLength, err := p.br.readUint32()
	if err != nil {
		return "", newParseError(MalformedMeta, p.br.tell(), fmt.Errorf("reading meta group length: %w", err))
	}
	syntax, err := p.scanMetaForTransferSyntax(groupLength)
	if err != nil {
		return "", err
	}
	return syntax, nil
}

// scanMetaForTransferSyntax walks the groupLength-byte meta group looking
// for TransferSyntaxUID, then skips any remaining meta bytes. The meta
// group is always Explicit VR Little Endian regardless of what the
// dataset itself declares. A zero-length (or transfer-syntax-free) meta
// group is not an error (spec §8: "File meta group length = 0 → dataset
// begins immediately; must still succeed") — it defaults to Explicit VR
// Little Endian, the only syntax this walker can decode anyway.
func (p *Parser) scanMetaForTransferSyntax(groupLength uint32) (transfer.Syntax, error) {
	end := p.br.tell() + int64(groupLength)
	syntax := transfer.ExplicitVRLittleEndian
	for p.br.tell() < end {
		header, err := decodeExplicitHeader(p.br)
		if err != nil {
			return "", err
		}
		if header.Tag.Equals(tag.TransferSyntaxUID) {
			raw, err := p.br.readExact(int(header.VL))
			if err != nil {
				return "", err
			}
			syntax = transfer.FromUID(trimUID(raw))
			continue
		}
		if err := p.br.skip(int64(header.VL)); err != nil {
			return "", err
		}
	}
	if p.br.tell() != end {
		return "", newParseError(MalformedMeta, p.br.tell(), fmt.Errorf("meta group overran declared length"))
	}
	return syntax, nil
}

// trimUID strips the trailing NUL or space padding DICOM UIDs are
// even-length-padded with.
func trimUID(b []byte) string {
	s := string(b)
	for len(s) > 0 && (s[len(s)-1] == 0 || s[len(s)-1] == ' ') {
		s = s[:len(s)-1]
	}
	return s
}
