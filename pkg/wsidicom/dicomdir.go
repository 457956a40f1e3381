package wsidicom

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jpfielding/wsidicom/pkg/wsidicom/tag"
	"github.com/jpfielding/wsidicom/pkg/util"
)

// DirectoryIndex is the result of resolving a DICOMDIR file: the path of
// every referenced instance file joined onto Dir (absolute only when Dir
// is), plus a stable CacheTag an
// external collaborator can use to key a listing cache.
type DirectoryIndex struct {
	Dir   string
	Files []string
}

// CacheTag returns a content-derived UUID for this resolution, so a caller
// can detect whether a previously cached listing for dir is still valid
// without re-reading DICOMDIR.
func (d *DirectoryIndex) CacheTag() uuid.UUID {
	id, err := uuid.Parse(util.HashUUID(d.Files))
	if err != nil {
		return uuid.Nil
	}
	return id
}

// ResolveDirectory opens "<dir>/DICOMDIR", parses it, and returns the
// path of every file it references, joined onto dir (absolute only when
// dir is). It implements spec §6's
// directory-index observable directly: target path (0004,1220)>(0004,1500),
// backslash-to-forward-slash translation, ASCII space trimming — grounded
// line-for-line on the reference decoder's directory-record walk.
func ResolveDirectory(dir string) (*DirectoryIndex, error) {
	p, err := Open(filepath.Join(dir, "DICOMDIR"))
	if err != nil {
		return nil, err
	}
	defer p.Close()

	p.AddTargetPath(tag.DirectoryRecordSequence, tag.ReferencedFileID)

	var components []string
	p.SetAttributeHandler(func(path []tag.Tag, _ ElementHeader, value io.Reader) {
		if value == nil || len(path) != 2 || !path[1].Equals(tag.ReferencedFileID) {
			return
		}
		raw, err := io.ReadAll(value)
		if err != nil {
			return
		}
		components = append(components, normalizeReferencedFileID(string(raw)))
	})

	if err := p.Run(); err != nil {
		return nil, err
	}

	idx := &DirectoryIndex{Dir: dir}
	for _, c := range components {
		idx.Files = append(idx.Files, filepath.Join(dir, filepath.FromSlash(c)))
	}
	return idx, nil
}

// normalizeReferencedFileID translates the backslash path-component
// separator DICOM uses into a forward slash and trims the ASCII space
// padding the CS value representation pads odd-length values with.
func normalizeReferencedFileID(raw string) string {
	return trimPadding([]byte(strings.ReplaceAll(raw, `\`, "/")))
}
