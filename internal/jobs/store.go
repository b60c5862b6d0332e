package jobs

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// Store persists print jobs. Implementations serialize updates.
type Store interface {
	Create(job PrintJob) error
	Get(id string) (PrintJob, error)
	List(projectID string) []PrintJob
	Update(id string, fn func(*PrintJob) error) (PrintJob, error)
	Delete(id string) error
}

// Compile-time interface check.
var _ Store = (*MemoryStore)(nil)

// DefaultRetention is how long a job record survives its last update.
const DefaultRetention = 24 * time.Hour

// MemoryStore keeps jobs in a TTL cache. Records expire Retention after
// their last update.
type MemoryStore struct {
	mu    sync.Mutex
	cache *cache.Cache
}

// NewMemoryStore creates a store whose records expire after retention.
// A non-positive retention uses DefaultRetention.
func NewMemoryStore(retention time.Duration) *MemoryStore {
	if retention <= 0 {
		retention = DefaultRetention
	}
	cleanup := retention / 4
	if cleanup < time.Minute {
		cleanup = time.Minute
	}
	return &MemoryStore{cache: cache.New(retention, cleanup)}
}

// Create stores a new job.
func (s *MemoryStore) Create(job PrintJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Add(job.ID, job, cache.DefaultExpiration)
}

// Get returns a copy of the job.
func (s *MemoryStore) Get(id string) (PrintJob, error) {
	v, ok := s.cache.Get(id)
	if !ok {
		return PrintJob{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	return v.(PrintJob), nil
}

// List returns the project's jobs, newest first.
func (s *MemoryStore) List(projectID string) []PrintJob {
	var out []PrintJob
	for _, item := range s.cache.Items() {
		job := item.Object.(PrintJob)
		if job.ProjectID == projectID {
			out = append(out, job)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Update applies fn to a copy of the job and stores the result unless fn
// fails. Updates are serialized.
func (s *MemoryStore) Update(id string, fn func(*PrintJob) error) (PrintJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.cache.Get(id)
	if !ok {
		return PrintJob{}, fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	job := v.(PrintJob)
	if err := fn(&job); err != nil {
		return PrintJob{}, err
	}
	s.cache.Set(id, job, cache.DefaultExpiration)
	return job, nil
}

// Delete removes the job.
func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cache.Get(id); !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	s.cache.Delete(id)
	return nil
}

// transition moves the job to status, stamping the time.
func transition(job *PrintJob, to Status, now time.Time) error {
	if !isValidTransition(job.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, job.Status, to)
	}
	job.Status = to
	job.UpdatedAt = now
	if to.Terminal() {
		job.CompletedAt = &now
	}
	return nil
}
