package jobs

import (
	"time"

	"github.com/google/uuid"

	"github.com/literatipub/typeset"
)

// Status is the coarse lifecycle state of a print job.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Stage names beyond the typesetter's own stages.
const (
	StagePublishing = "publishing"
	StageQueued     = "queued"
)

// Request describes one print job submission.
type Request struct {
	ProjectID string
	SourceURL string // empty for uploads and inline content
	Content   []byte
	Source    typeset.SourceKind
	Format    typeset.Format
	Font      string
	Title     string
}

// PrintJob is the stored record of a submission.
type PrintJob struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"projectId"`
	Status      Status     `json:"status"`
	Stage       string     `json:"stage"`
	Source      string     `json:"sourceKind"`
	SourceURL   string     `json:"sourceUrl,omitempty"`
	Format      string     `json:"format"`
	Font        string     `json:"font"`
	Title       string     `json:"title,omitempty"`
	PDFURL      string     `json:"pdfUrl,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// newPrintJob creates a processing job with a fresh id.
func newPrintJob(req Request, now time.Time) PrintJob {
	return PrintJob{
		ID:        uuid.NewString(),
		ProjectID: req.ProjectID,
		Status:    StatusProcessing,
		Stage:     typeset.StageRequested.String(),
		Source:    req.Source.String(),
		SourceURL: req.SourceURL,
		Format:    req.Format.String(),
		Font:      typeset.ResolveProfile(req.Format, req.Font).Font.Key,
		Title:     req.Title,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// isValidTransition enforces the job state machine edges.
func isValidTransition(from, to Status) bool {
	switch from {
	case StatusProcessing:
		return to == StatusCompleted || to == StatusFailed
	default:
		return false
	}
}
