package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"

	"github.com/literatipub/typeset"
	"github.com/literatipub/typeset/internal/jobs"
	"github.com/literatipub/typeset/internal/publish"
	"github.com/literatipub/typeset/internal/server"
)

// Server lifecycle timeouts.
const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func newServeCmd(a *app) *cobra.Command {
	f := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the print job HTTP API",
		Long: `Serve accepts manuscripts over HTTP, typesets them in the background and
publishes the PDFs under the storage directory.

On SIGINT or SIGTERM it stops accepting jobs and waits for running ones.`,
		Example: `  # Listen on :8080 with artifacts in ./artifacts
  typeset serve

  # Custom address and four concurrent browsers
  typeset serve --addr 127.0.0.1:9000 --workers 4`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runServe(cmd.Context(), cmd.Flags(), f)
		},
	}

	addServeFlags(cmd.Flags(), f)
	return cmd
}

func (a *app) runServe(ctx context.Context, fs *flag.FlagSet, f *serveFlags) error {
	addr := a.cfg.Server.Addr
	if fs.Changed("addr") {
		addr = f.addr
	}
	workers := a.cfg.Render.Workers
	if fs.Changed("workers") {
		if f.workers < 0 || f.workers > typeset.MaxPoolSize {
			return fmt.Errorf("%w: --workers must be 0-%d, got %d", ErrUsage, typeset.MaxPoolSize, f.workers)
		}
		workers = f.workers
	}
	storageDir := a.cfg.Storage.Dir
	if fs.Changed("storage") {
		storageDir = f.storage
	}

	timeout := a.cfg.RenderTimeout()
	if timeout == 0 {
		timeout = typeset.DefaultTimeout
	}
	ts, err := a.newTypesetter(renderParams{
		timeout:   timeout,
		style:     a.cfg.Assets.Style,
		assetPath: a.cfg.Assets.BasePath,
	})
	if err != nil {
		return withHints(err)
	}

	pub, err := publish.NewDirPublisher(storageDir, a.cfg.Storage.BaseURL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}

	pool := typeset.NewPool(typeset.ResolvePoolSize(workers))
	runner := jobs.NewRunner(ts, jobs.NewMemoryStore(a.cfg.JobRetention()), jobs.NewBus(0), pub,
		jobs.WithPool(pool),
		jobs.WithJobTimeout(max(jobs.DefaultJobTimeout, 2*timeout)),
		jobs.WithLogger(a.logger),
	)

	opts := []server.Option{
		server.WithLogger(a.logger),
		server.WithMaxUpload(a.cfg.MaxUploadBytes()),
		server.WithRateLimit(a.cfg.Server.RateLimit),
		server.WithDefaults(a.cfg.DefaultFormat(), a.cfg.Defaults.Font),
		server.WithPrivateSources(a.cfg.Server.AllowPrivateSources),
	}
	if strings.HasPrefix(a.cfg.Storage.BaseURL, "/files") {
		opts = append(opts, server.WithFilesDir(pub.Dir()))
	}

	ln, err := a.env.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	httpServer := &http.Server{
		Handler:           server.New(runner, opts...).Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		a.logger.Info("print job API listening",
			"addr", ln.Addr().String(),
			"workers", pool.Size(),
			"storage", pub.Dir(),
		)
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutting down")
	case err := <-serverErr:
		_ = runner.Shutdown(context.Background())
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("server shutdown failed", "error", err)
	}
	if err := runner.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("running jobs canceled", "error", err)
	}
	a.logger.Info("server stopped")
	return nil
}
