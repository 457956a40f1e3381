package wsidicom

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestResolveDirectory covers the directory-index scenario: a
// ReferencedFileID using the DICOM backslash path-component separator and
// trailing space padding resolves to a clean, joinable relative path.
func TestResolveDirectory(t *testing.T) {
	dir := t.TempDir()

	b := newDicomBuilder().preambleAndMeta(explicitVRLittleEndianUID)
	b.long(0x0004, 0x1220, "SQ", func() []byte {
		var item dicomBuilder
		item.short(0x0004, 0x1500, "CS", []byte(`WSI\0001\FRAME001 `))
		var wrapped dicomBuilder
		wrapped.itemStart(uint32(len(item.bytes())))
		wrapped.raw(item.bytes())
		return wrapped.bytes()
	}())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "DICOMDIR"), b.bytes(), 0o644))

	idx, err := ResolveDirectory(dir)
	require.NoError(t, err)
	require.Len(t, idx.Files, 1)
	assert.Equal(t, filepath.Join(dir, "WSI", "0001", "FRAME001"), idx.Files[0])
	assert.Equal(t, dir, idx.Dir)
}

// The cache tag is derived from the resolved file list alone: two indexes
// listing the same files share a tag even with different Dir values, and a
// different file list yields a different tag.
func TestDirectoryIndexCacheTagStable(t *testing.T) {
	idx1 := &DirectoryIndex{Dir: "/a", Files: []string{"x", "y"}}
	idx2 := &DirectoryIndex{Dir: "/b", Files: []string{"x", "y"}}
	idx3 := &DirectoryIndex{Dir: "/a", Files: []string{"x", "z"}}

	assert.Equal(t, idx1.CacheTag(), idx2.CacheTag())
	assert.NotEqual(t, idx1.CacheTag(), idx3.CacheTag())
}

func TestNormalizeReferencedFileID(t *testing.T) {
	assert.Equal(t, "A/B/C", normalizeReferencedFileID(`A\B\C `))
	assert.Equal(t, "A", normalizeReferencedFileID("A\x00"))
}

func TestResolveDirectoryMissingFile(t *testing.T) {
	dir := t.TempDir()
	_, err := ResolveDirectory(dir)
	require.Error(t, err)
}
