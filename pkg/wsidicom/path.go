package wsidicom

import (
	"fmt"

	"github.com/jpfielding/wsidicom/pkg/wsidicom/tag"
)

// maxPathDepth bounds the tag path stack. The format does not nest deeply
// in practice; 16 is the original reference implementation's literal
// (a fixed-size array of 16 tags), generalized here into a recoverable
// PathOverflow instead of a fatal assertion.
const maxPathDepth = 16

// pathStack is the parser's current nested tag path, maintained as a
// fixed-capacity stack.
type pathStack struct {
	tags [maxPathDepth]tag.Tag
	n    int
}

// push appends t to the path. Returns PathOverflow if the stack is already
// at capacity.
func (p *pathStack) push(t tag.Tag, offset int64) error {
	if p.n >= maxPathDepth {
		return newParseError(PathOverflow, offset,
			fmt.Errorf("tag path exceeds depth %d at tag %04X,%04X", maxPathDepth, t.Group, t.Element))
	}
	p.tags[p.n] = t
	p.n++
	return nil
}

// pop removes the most recently pushed tag. It is a programming error to
// call pop on an empty stack; the walker always pairs push/pop within one
// dispatch, so this never happens on a well-formed call sequence.
func (p *pathStack) pop() {
	p.n--
}

// length returns the current path depth.
func (p *pathStack) length() int {
	return p.n
}

// last returns the most recently pushed tag and whether the stack is
// non-empty.
func (p *pathStack) last() (tag.Tag, bool) {
	if p.n == 0 {
		return tag.Tag{}, false
	}
	return p.tags[p.n-1], true
}

// snapshot returns a copy of the current path, suitable for handing to a
// callback that may retain it past the call (the stack itself is mutated
// on every push/pop).
func (p *pathStack) snapshot() []tag.Tag {
	out := make([]tag.Tag, p.n)
	copy(out, p.tags[:p.n])
	return out
}

// clear resets the path to empty.
func (p *pathStack) clear() {
	p.n = 0
}

// TargetPath is an ordered sequence of tags a caller supplies to select
// attributes for delivery and sequences for descent.
type TargetPath []tag.Tag

// targetPathSet is an unordered collection of target paths, built once by
// the caller before a parse and read-only for its duration.
type targetPathSet struct {
	paths []TargetPath
}

func (s *targetPathSet) add(path TargetPath) {
	cp := make(TargetPath, len(path))
	copy(cp, path)
	s.paths = append(s.paths, cp)
}

// containsEqual reports whether current exactly equals some target path —
// the current element's value must be delivered.
func (s *targetPathSet) containsEqual(current []tag.Tag) bool {
	for _, target := range s.paths {
		if pathEquals(target, current) {
			return true
		}
	}
	return false
}

// containsPrefixOf reports whether current is a prefix of, or equal to,
// some registered target path — the walker must descend into this
// container rather than skip it, because the target it is looking for
// lies somewhere beneath it. This is a genuine prefix comparison: a
// target path that is merely the same length but differs at any
// position, or of which current is a suffix rather than a prefix, must
// NOT match.
func (s *targetPathSet) containsPrefixOf(current []tag.Tag) bool {
	for _, target := range s.paths {
		if len(current) > len(target) {
			continue
		}
		if pathEquals(current, target[:len(current)]) {
			return true
		}
	}
	return false
}

func pathEquals(a, b []tag.Tag) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equals(b[i]) {
			return false
		}
	}
	return true
}
