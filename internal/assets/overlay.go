package assets

import (
	"errors"
	"sort"
)

// Overlay searches a press directory first and the built-in library second.
// Only a missing asset falls through; invalid names and read errors stop
// the search.
type Overlay struct {
	layers []*Library
}

// NewOverlay builds an overlay over the built-in library. An empty basePath
// uses the built-in library alone.
func NewOverlay(basePath string) (*Overlay, error) {
	if basePath == "" {
		return &Overlay{layers: []*Library{Builtin()}}, nil
	}
	dir, err := OpenDir(basePath)
	if err != nil {
		return nil, err
	}
	return &Overlay{layers: []*Library{dir, Builtin()}}, nil
}

// Load returns the first layer's copy of the asset.
func (o *Overlay) Load(k Kind, name string) (string, error) {
	var err error
	for _, l := range o.layers {
		var content string
		content, err = l.Load(k, name)
		if err == nil || !errors.Is(err, k.notFound) {
			return content, err
		}
	}
	return "", err
}

// Names merges the asset names of every layer.
func (o *Overlay) Names(k Kind) []string {
	seen := make(map[string]bool)
	var names []string
	for _, l := range o.layers {
		for _, n := range l.Names(k) {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	sort.Strings(names)
	return names
}

// HasOverrides reports whether a press directory is layered in.
func (o *Overlay) HasOverrides() bool {
	return len(o.layers) > 1
}

// Origins lists the layers in search order.
func (o *Overlay) Origins() []string {
	origins := make([]string, len(o.layers))
	for i, l := range o.layers {
		origins[i] = l.Origin()
	}
	return origins
}
