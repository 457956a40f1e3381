package wsidicom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpfielding/wsidicom/pkg/wsidicom/tag"
)

func TestPathStackPushPop(t *testing.T) {
	var s pathStack
	require.NoError(t, s.push(tag.StudyInstanceUID, 0))
	require.NoError(t, s.push(tag.Rows, 0))
	assert.Equal(t, 2, s.length())

	last, ok := s.last()
	assert.True(t, ok)
	assert.Equal(t, tag.Rows, last)

	s.pop()
	assert.Equal(t, 1, s.length())
	last, ok = s.last()
	assert.True(t, ok)
	assert.Equal(t, tag.StudyInstanceUID, last)

	s.pop()
	assert.Equal(t, 0, s.length())
	_, ok = s.last()
	assert.False(t, ok)
}

func TestPathStackOverflow(t *testing.T) {
	var s pathStack
	for i := 0; i < maxPathDepth; i++ {
		require.NoError(t, s.push(tag.Tag{Group: 0x0009, Element: uint16(i)}, 0))
	}
	err := s.push(tag.Tag{Group: 0x0009, Element: 0xFFFF}, 123)
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, PathOverflow, perr.Kind)
	assert.Equal(t, int64(123), perr.Offset)
}

func TestContainsEqualExactMatchOnly(t *testing.T) {
	var s targetPathSet
	s.add(TargetPath{tag.OpticalPathSequence, tag.CodeValue})

	assert.True(t, s.containsEqual([]tag.Tag{tag.OpticalPathSequence, tag.CodeValue}))
	assert.False(t, s.containsEqual([]tag.Tag{tag.OpticalPathSequence}))
	assert.False(t, s.containsEqual([]tag.Tag{tag.OpticalPathSequence, tag.CodeValue, tag.Rows}))
	assert.False(t, s.containsEqual([]tag.Tag{tag.Rows, tag.CodeValue}))
}

// A current path that is a genuine prefix of (or equal to) the target path
// matches; one that merely shares a suffix with it, or diverges from it at
// any position, must not. A shortcut implementation that always returns
// true (or that compares only path length, or only the last element)
// would pass the first assertion here but fail the rest.
func TestContainsPrefixOfRejectsSuffixAndMismatch(t *testing.T) {
	var s targetPathSet
	s.add(TargetPath{tag.OpticalPathSequence, tag.IlluminationLensesCodeSequence, tag.CodeValue})

	// Genuine prefix: matches.
	assert.True(t, s.containsPrefixOf([]tag.Tag{tag.OpticalPathSequence}))
	assert.True(t, s.containsPrefixOf([]tag.Tag{tag.OpticalPathSequence, tag.IlluminationLensesCodeSequence}))
	assert.True(t, s.containsPrefixOf([]tag.Tag{tag.OpticalPathSequence, tag.IlluminationLensesCodeSequence, tag.CodeValue}))

	// Same length as target, but the current path's tail (suffix) equals
	// the target's tail while the head diverges — not a prefix match.
	assert.False(t, s.containsPrefixOf([]tag.Tag{tag.Rows, tag.IlluminationLensesCodeSequence, tag.CodeValue}))

	// current is a strict suffix of target, not a prefix of it.
	assert.False(t, s.containsPrefixOf([]tag.Tag{tag.IlluminationLensesCodeSequence, tag.CodeValue}))

	// Unrelated path entirely.
	assert.False(t, s.containsPrefixOf([]tag.Tag{tag.StudyInstanceUID}))

	// Same length as the target but diverging at the second position: not
	// a match.
	assert.False(t, s.containsPrefixOf([]tag.Tag{tag.OpticalPathSequence, tag.Rows, tag.CodeValue}))
}

func TestContainsPrefixOfEmptyTargetSet(t *testing.T) {
	var s targetPathSet
	assert.False(t, s.containsPrefixOf([]tag.Tag{tag.OpticalPathSequence}))
	assert.False(t, s.containsPrefixOf(nil))
}
