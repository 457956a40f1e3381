package wsidicom

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/jpfielding/wsidicom/pkg/wsidicom/tag"
)

// AttributeSet accumulates every attribute value a parse delivers, keyed
// by its tag path. It is a thin accumulator built on top of the Handler
// contract — never a replacement for it — so CLI commands are not forced
// to hand-write callback plumbing for every query.
type AttributeSet struct {
	values map[string][]byte
}

func newAttributeSet() *AttributeSet {
	return &AttributeSet{values: make(map[string][]byte)}
}

func pathKey(path []tag.Tag) string {
	parts := make([]string, len(path))
	for i, t := range path {
		parts[i] = fmt.Sprintf("(%04X,%04X)", t.Group, t.Element)
	}
	return strings.Join(parts, ">")
}

// Raw returns the raw bytes delivered for path, and whether any were.
func (a *AttributeSet) Raw(path ...tag.Tag) ([]byte, bool) {
	v, ok := a.values[pathKey(path)]
	return v, ok
}

// GetString returns the value at path decoded as an ASCII string with
// trailing space/NUL padding trimmed.
func (a *AttributeSet) GetString(path ...tag.Tag) (string, bool) {
	v, ok := a.Raw(path...)
	if !ok {
		return "", false
	}
	return trimPadding(v), true
}

// GetUint16 returns the value at path decoded as a little-endian uint16.
func (a *AttributeSet) GetUint16(path ...tag.Tag) (uint16, bool) {
	v, ok := a.Raw(path...)
	if !ok || len(v) < 2 {
		return 0, false
	}
	return binary.LittleEndian.Uint16(v), true
}

// GetUint32 returns the value at path decoded as a little-endian uint32.
func (a *AttributeSet) GetUint32(path ...tag.Tag) (uint32, bool) {
	v, ok := a.Raw(path...)
	if !ok || len(v) < 4 {
		return 0, false
	}
	return binary.LittleEndian.Uint32(v), true
}

// trimPadding strips the trailing NUL or space bytes DICOM string VRs are
// even-length-padded with.
func trimPadding(v []byte) string {
	s := string(v)
	for len(s) > 0 && (s[len(s)-1] == 0 || s[len(s)-1] == ' ') {
		s = s[:len(s)-1]
	}
	return s
}

// CollectAttributes runs p, buffering every delivered attribute value into
// an AttributeSet. The caller must have already registered target paths
// with AddTargetPath for any sequence it wants descended into; every leaf
// delivered while walking the resulting tree is recorded, keyed by its
// full tag path.
func CollectAttributes(p *Parser) (*AttributeSet, error) {
	set := newAttributeSet()
	p.SetAttributeHandler(func(path []tag.Tag, _ ElementHeader, value io.Reader) {
		if value == nil {
			return
		}
		buf, err := io.ReadAll(value)
		if err != nil {
			return
		}
		set.values[pathKey(path)] = buf
	})
	if err := p.Run(); err != nil {
		return nil, err
	}
	return set, nil
}

// CollectStrings is CollectAttributes with every value decoded as a
// trimmed string and keyed by its path's textual form, for callers that
// just want to print or grep a dataset. Repeated tags at the same path
// (inside a sequence's repeated items, say) accumulate in delivery order.
func CollectStrings(p *Parser) (map[string][]string, error) {
	out := make(map[string][]string)
	p.SetAttributeHandler(func(path []tag.Tag, _ ElementHeader, value io.Reader) {
		if value == nil {
			return
		}
		buf, err := io.ReadAll(value)
		if err != nil {
			return
		}
		key := pathKey(path)
		out[key] = append(out[key], trimPadding(buf))
	})
	if err := p.Run(); err != nil {
		return nil, err
	}
	return out, nil
}
