package typeset

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Render prints doc to PDF on a freshly launched engine instance.
// The instance is released exactly once on every path. DefaultTimeout bounds
// the render; an earlier ctx deadline wins. Expiry yields ErrRenderTimeout.
func Render(ctx context.Context, engine Engine, doc StyledDocument, p Profile) ([]byte, error) {
	return render(ctx, engine, doc, p, DefaultTimeout)
}

// render implements Render with a configurable render deadline.
func render(ctx context.Context, engine Engine, doc StyledDocument, p Profile, fallback time.Duration) ([]byte, error) {
	if engine == nil {
		return nil, fmt.Errorf("%w: no render engine configured", ErrBrowserConnect)
	}

	ctx, cancel := context.WithTimeout(ctx, fallback)
	defer cancel()
	if err := ctx.Err(); err != nil {
		return nil, contextError(err)
	}

	h, err := engine.Launch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, contextError(ctx.Err())
		}
		if errors.Is(err, ErrBrowserConnect) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	// Release errors never mask a rendered PDF or an earlier failure.
	defer func() { _ = engine.Release(h) }()

	type result struct {
		pdf []byte
		err error
	}
	done := make(chan result, 1)

	// Paginate runs in a goroutine so a stuck engine cannot outlive the
	// deadline. Release then tears the browser down underneath it.
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("%w: engine panic: %v", ErrPDFGeneration, r)}
			}
		}()
		pdf, err := engine.Paginate(ctx, h, doc, p)
		done <- result{pdf: pdf, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, contextError(ctx.Err())
	case r := <-done:
		if r.err != nil {
			if ctx.Err() != nil && !errors.Is(r.err, ErrRenderTimeout) {
				return nil, contextError(ctx.Err())
			}
			return nil, r.err
		}
		return r.pdf, nil
	}
}

// contextError maps a context error to the render taxonomy: deadline expiry
// becomes ErrRenderTimeout, cancellation passes through.
func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrRenderTimeout, err)
	}
	return err
}

// deadlineOr classifies a browser failure. Failures caused by the context
// ending are reported as such; anything else is wrapped in sentinel.
func deadlineOr(ctx context.Context, sentinel, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return contextError(ctxErr)
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}
