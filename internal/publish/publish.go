// Package publish stores finished PDFs and hands back their public URLs.
package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/literatipub/typeset/internal/fileutil"
)

// Sentinel errors for publishing.
var (
	// ErrInvalidJobID indicates a job id that is not a UUID and therefore
	// cannot name an artifact file.
	ErrInvalidJobID = errors.New("invalid job id")

	// ErrWrite indicates the artifact could not be stored.
	ErrWrite = errors.New("failed to write artifact")
)

// artifactExt is the extension of every published artifact.
const artifactExt = ".pdf"

// Publisher persists a job's PDF and returns where it can be fetched.
type Publisher interface {
	Publish(ctx context.Context, jobID string, pdf []byte) (string, error)
	Remove(ctx context.Context, jobID string) error
}

// Compile-time interface check.
var _ Publisher = (*DirPublisher)(nil)

// DirPublisher writes artifacts to a local directory served under baseURL.
type DirPublisher struct {
	dir     string
	baseURL string
}

// NewDirPublisher creates dir if needed.
func NewDirPublisher(dir, baseURL string) (*DirPublisher, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty storage directory", ErrWrite)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return &DirPublisher{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir returns the storage directory.
func (p *DirPublisher) Dir() string {
	return p.dir
}

// Publish writes <dir>/<jobID>.pdf atomically and returns
// <baseURL>/<jobID>.pdf. A failed write leaves any existing file intact.
func (p *DirPublisher) Publish(ctx context.Context, jobID string, pdf []byte) (string, error) {
	name, err := artifactName(jobID)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := fileutil.WriteFileAtomic(filepath.Join(p.dir, name), pdf, 0o644); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return p.baseURL + "/" + name, nil
}

// Remove deletes a job's artifact. A missing artifact is not an error.
func (p *DirPublisher) Remove(ctx context.Context, jobID string) error {
	name, err := artifactName(jobID)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(p.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing artifact: %w", err)
	}
	return nil
}

// artifactName maps a job id to its file name.
func artifactName(jobID string) (string, error) {
	id, err := uuid.Parse(jobID)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidJobID, jobID)
	}
	return id.String() + artifactExt, nil
}
