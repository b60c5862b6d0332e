package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
)

// maxEntrySize bounds the decompressed size of a single archive entry.
const maxEntrySize int64 = 64 * 1024 * 1024

// Archive entries used by the converter.
const (
	documentEntry = "word/document.xml"
	stylesEntry   = "word/styles.xml"
	coreEntry     = "docProps/core.xml"
)

// archive is an opened DOCX package.
type archive struct {
	files map[string]*zip.File
	limit int64
}

func openArchive(data []byte, limit int64) (*archive, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	a := &archive{files: make(map[string]*zip.File, len(zr.File)), limit: limit}
	for _, f := range zr.File {
		a.files[f.Name] = f
	}
	return a, nil
}

// has reports whether the archive contains name.
func (a *archive) has(name string) bool {
	_, ok := a.files[name]
	return ok
}

// read returns the decompressed contents of name, enforcing the size limit
// against both the declared and the actual size.
func (a *archive) read(name string) ([]byte, error) {
	f, ok := a.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidDocument, name)
	}
	if f.UncompressedSize64 > uint64(a.limit) {
		return nil, fmt.Errorf("%w: %s declares %d bytes (max %d)", ErrEntryTooLarge, name, f.UncompressedSize64, a.limit)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrInvalidDocument, name, err)
	}
	defer rc.Close()

	// Read one byte past the limit to catch forged size headers.
	data, err := io.ReadAll(io.LimitReader(rc, a.limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrInvalidDocument, name, err)
	}
	if int64(len(data)) > a.limit {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrEntryTooLarge, name, a.limit)
	}
	return data, nil
}
