package assets

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed styles/*.css templates/*.html
var builtin embed.FS

// maxAssetBytes caps a single template or stylesheet.
const maxAssetBytes = 1 << 20

// Library reads assets from a single source.
type Library struct {
	origin string
	open   func(name string) (io.ReadCloser, error)
	list   func(dir string) ([]fs.DirEntry, error)
}

var builtinLibrary = &Library{
	origin: "embedded",
	open:   func(name string) (io.ReadCloser, error) { return builtin.Open(name) },
	list:   func(dir string) ([]fs.DirEntry, error) { return fs.ReadDir(builtin, dir) },
}

// Builtin returns the library compiled into the binary.
func Builtin() *Library {
	return builtinLibrary
}

// Styles lists the built-in house styles.
func Styles() []string {
	return builtinLibrary.Names(KindStyle)
}

// OpenDir returns a library reading from basePath.
// Returns ErrInvalidBasePath unless basePath is a readable directory.
func OpenDir(basePath string) (*Library, error) {
	if basePath == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	if _, err := os.ReadDir(abs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}

	return &Library{
		origin: abs,
		open: func(name string) (io.ReadCloser, error) {
			return os.OpenInRoot(abs, filepath.FromSlash(name))
		},
		list: func(dir string) ([]fs.DirEntry, error) {
			return os.ReadDir(filepath.Join(abs, dir))
		},
	}, nil
}

// Origin describes where the library reads from.
func (l *Library) Origin() string {
	return l.origin
}

// Load returns the named asset of kind k.
func (l *Library) Load(k Kind, name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}

	f, err := l.open(k.path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %q", k.notFound, name)
		}
		return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, maxAssetBytes+1))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	if len(data) > maxAssetBytes {
		return "", fmt.Errorf("%w: %s exceeds %d bytes", ErrAssetTooLarge, k.path(name), maxAssetBytes)
	}
	return string(data), nil
}

// Names returns the sorted names of every valid asset of kind k.
// A missing family directory yields no names.
func (l *Library) Names(k Kind) []string {
	entries, err := l.list(k.dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), k.ext)
		if !ok || e.IsDir() || ValidateAssetName(name) != nil {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
