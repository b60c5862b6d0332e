package assets

import (
	"fmt"
	"regexp"
)

// ManuscriptTemplate is the name of the document template.
const ManuscriptTemplate = "manuscript"

// Kind selects an asset family: where it lives and how it is named.
type Kind struct {
	dir      string
	ext      string
	notFound error
}

// Asset families.
var (
	KindStyle    = Kind{dir: "styles", ext: ".css", notFound: ErrStyleNotFound}
	KindTemplate = Kind{dir: "templates", ext: ".html", notFound: ErrTemplateNotFound}
)

// String returns the family directory name.
func (k Kind) String() string {
	return k.dir
}

// path returns the slash-separated location of name within a library.
func (k Kind) path(name string) string {
	return k.dir + "/" + name + k.ext
}

// maxAssetNameLength bounds asset names used as file names.
const maxAssetNameLength = 64

var assetNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateAssetName checks that an asset name is safe for use as a filename:
// non-empty, at most 64 bytes, letters, digits, hyphens and underscores.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if len(name) > maxAssetNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidAssetName, maxAssetNameLength)
	}
	if !assetNamePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
