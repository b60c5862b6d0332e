package jobs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/literatipub/typeset"
	"github.com/literatipub/typeset/internal/publish"
)

// Typesetter is the part of typeset.Typesetter the runner needs.
type Typesetter interface {
	Typeset(ctx context.Context, input typeset.Input) (*typeset.Result, error)
}

// Compile-time interface check.
var _ Typesetter = (*typeset.Typesetter)(nil)

// DefaultJobTimeout bounds one job from slot acquisition to publication.
const DefaultJobTimeout = 2 * time.Minute

// Runner accepts print jobs and executes them in the background.
type Runner struct {
	ts        Typesetter
	store     Store
	bus       *Bus
	publisher publish.Publisher
	pool      *typeset.Pool
	timeout   time.Duration
	logger    *slog.Logger
	now       func() time.Time

	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
	active map[string]*activeJob
}

// activeJob tracks a running job's goroutine.
type activeJob struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithPool bounds concurrent renders. Defaults to ResolvePoolSize(0) slots.
func WithPool(p *typeset.Pool) RunnerOption {
	return func(r *Runner) {
		if p != nil {
			r.pool = p
		}
	}
}

// WithJobTimeout sets the per-job deadline.
// Panics if d <= 0.
func WithJobTimeout(d time.Duration) RunnerOption {
	if d <= 0 {
		panic("jobs: WithJobTimeout duration must be positive")
	}
	return func(r *Runner) {
		r.timeout = d
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner creates a Runner.
func NewRunner(ts Typesetter, store Store, bus *Bus, publisher publish.Publisher, opts ...RunnerOption) *Runner {
	r := &Runner{
		ts:        ts,
		store:     store,
		bus:       bus,
		publisher: publisher,
		timeout:   DefaultJobTimeout,
		logger:    slog.New(slog.DiscardHandler),
		now:       func() time.Time { return time.Now().UTC() },
		active:    make(map[string]*activeJob),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.pool == nil {
		r.pool = typeset.NewPool(typeset.ResolvePoolSize(0))
	}
	return r
}

// Submit validates req, records a processing job and starts it.
// Input errors are returned before any job exists.
func (r *Runner) Submit(ctx context.Context, req Request) (PrintJob, error) {
	if err := validateRequest(&req); err != nil {
		return PrintJob{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return PrintJob{}, ErrRunnerClosed
	}

	job := newPrintJob(req, r.now())
	if err := r.store.Create(job); err != nil {
		return PrintJob{}, fmt.Errorf("creating job: %w", err)
	}
	r.bus.Publish(Event{JobID: job.ID, Type: EventTypeStage, Stage: job.Stage, Status: job.Status})

	// Jobs outlive the submitting request.
	jobCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	aj := &activeJob{cancel: cancel, done: make(chan struct{})}
	r.active[job.ID] = aj
	r.wg.Add(1)
	go func() {
		defer close(aj.done)
		r.run(jobCtx, job.ID, req)
	}()

	r.logger.Info("print job accepted",
		"job_id", job.ID,
		"project_id", job.ProjectID,
		"source", job.Source,
		"format", job.Format,
		"font", job.Font,
	)
	return job, nil
}

// validateRequest rejects requests that could never typeset and fills in
// the default format.
func validateRequest(req *Request) error {
	if len(bytes.TrimSpace(req.Content)) == 0 {
		return typeset.ErrEmptyContent
	}
	if _, err := req.Source.MarshalText(); err != nil {
		return err
	}
	if req.Format == 0 {
		req.Format = typeset.FormatPrint
	}
	if !req.Format.Valid() {
		return fmt.Errorf("%w: %d", typeset.ErrUnknownFormat, int(req.Format))
	}
	return nil
}

// run executes one job to a terminal state.
func (r *Runner) run(ctx context.Context, id string, req Request) {
	defer r.wg.Done()
	defer r.forget(id)

	start := r.now()
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if r.pool.InUse() >= r.pool.Size() {
		r.setStage(id, StageQueued)
	}
	if err := r.pool.Acquire(ctx); err != nil {
		r.fail(id, fmt.Errorf("waiting for render slot: %w", err))
		return
	}
	defer r.pool.Release()

	result, err := r.ts.Typeset(ctx, typeset.Input{
		Content: req.Content,
		Source:  req.Source,
		Format:  req.Format,
		Font:    req.Font,
		Title:   req.Title,
		Observer: func(s typeset.Stage) {
			switch s {
			case typeset.StageRequested:
				// Already recorded by Submit.
			case typeset.StageCompleted, typeset.StageFailed:
				// Reported once the artifact is published.
			default:
				r.setStage(id, s.String())
			}
		},
	})
	if err != nil {
		r.fail(id, err)
		return
	}

	r.setStage(id, StagePublishing)
	url, err := r.publisher.Publish(ctx, id, result.PDF)
	if err != nil {
		r.fail(id, fmt.Errorf("publishing artifact: %w", err))
		return
	}

	if !r.complete(id, url, result.Title) {
		return
	}
	r.logger.Info("print job completed",
		"job_id", id,
		"pdf_url", url,
		"pdf_bytes", len(result.PDF),
		"duration", r.now().Sub(start),
	)
}

// setStage records progress on a job that is still processing.
func (r *Runner) setStage(id, stage string) {
	job, err := r.store.Update(id, func(j *PrintJob) error {
		if j.Status.Terminal() {
			return fmt.Errorf("%w: %s is %s", ErrInvalidTransition, id, j.Status)
		}
		j.Stage = stage
		j.UpdatedAt = r.now()
		return nil
	})
	if err != nil {
		r.logger.Debug("stage not recorded", "job_id", id, "stage", stage, "error", err)
		return
	}
	r.bus.Publish(Event{JobID: id, Type: EventTypeStage, Stage: stage, Status: job.Status})
}

// complete marks the job completed with its artifact URL and reports whether
// it was recorded. An artifact whose record is gone is removed.
func (r *Runner) complete(id, url, title string) bool {
	job, err := r.store.Update(id, func(j *PrintJob) error {
		if err := transition(j, StatusCompleted, r.now()); err != nil {
			return err
		}
		j.Stage = typeset.StageCompleted.String()
		j.PDFURL = url
		if j.Title == "" {
			j.Title = title
		}
		return nil
	})
	if err != nil {
		r.logger.Warn("job completion not recorded", "job_id", id, "error", err)
		if errors.Is(err, ErrJobNotFound) {
			if err := r.publisher.Remove(context.Background(), id); err != nil {
				r.logger.Warn("orphaned artifact not removed", "job_id", id, "error", err)
			}
		}
		return false
	}
	r.bus.Publish(Event{JobID: id, Type: EventTypeCompleted, Stage: job.Stage, Status: job.Status, PDFURL: url})
	return true
}

// fail marks the job failed.
func (r *Runner) fail(id string, cause error) {
	job, err := r.store.Update(id, func(j *PrintJob) error {
		if err := transition(j, StatusFailed, r.now()); err != nil {
			return err
		}
		j.Stage = typeset.StageFailed.String()
		j.Error = cause.Error()
		return nil
	})
	if err != nil {
		r.logger.Warn("job failure not recorded", "job_id", id, "cause", cause, "error", err)
		return
	}
	r.bus.Publish(Event{JobID: id, Type: EventTypeFailed, Stage: job.Stage, Status: job.Status, Error: job.Error})
	r.logger.Warn("print job failed", "job_id", id, "error", cause)
}

// forget drops the job's tracking entry once it has finished.
func (r *Runner) forget(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if aj, ok := r.active[id]; ok {
		aj.cancel()
		delete(r.active, id)
	}
}

// Get returns a job by id.
func (r *Runner) Get(id string) (PrintJob, error) {
	return r.store.Get(id)
}

// List returns a project's jobs, newest first.
func (r *Runner) List(projectID string) []PrintJob {
	return r.store.List(projectID)
}

// Bus returns the event bus jobs publish on.
func (r *Runner) Bus() *Bus {
	return r.bus
}

// Delete cancels the job if it is running and waits for it to stop, then
// removes its record and artifact.
func (r *Runner) Delete(ctx context.Context, id string) error {
	if _, err := r.store.Get(id); err != nil {
		return err
	}

	r.mu.Lock()
	aj, running := r.active[id]
	r.mu.Unlock()
	if running {
		aj.cancel()
		select {
		case <-aj.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if err := r.store.Delete(id); err != nil && !errors.Is(err, ErrJobNotFound) {
		return err
	}
	if err := r.publisher.Remove(ctx, id); err != nil {
		return fmt.Errorf("removing artifact: %w", err)
	}
	r.logger.Info("print job deleted", "job_id", id, "was_running", running)
	return nil
}

// Shutdown stops accepting jobs and waits for running ones. When ctx ends
// first, running jobs are canceled and Shutdown returns ctx.Err().
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.pool.Close()
		return nil
	case <-ctx.Done():
		r.mu.Lock()
		for _, aj := range r.active {
			aj.cancel()
		}
		r.mu.Unlock()
		r.pool.Close()
		<-done
		return ctx.Err()
	}
}
