package main

import (
	"bytes"
	"context"
	"net"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/literatipub/typeset"
)

var fakePDF = []byte("%PDF-1.7\nfake interior\n%%EOF")

// syncBuffer is a bytes.Buffer safe for concurrent writers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// fakeEngine returns fakePDF without a browser.
type fakeEngine struct {
	mu        sync.Mutex
	launchErr error
	launches  int
	releases  int
}

func (e *fakeEngine) Launch(context.Context) (typeset.EngineHandle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.launches++
	if e.launchErr != nil {
		return nil, e.launchErr
	}
	return e, nil
}

func (e *fakeEngine) Paginate(context.Context, typeset.EngineHandle, typeset.StyledDocument, typeset.Profile) ([]byte, error) {
	return fakePDF, nil
}

func (e *fakeEngine) Release(typeset.EngineHandle) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.releases++
	return nil
}

func (e *fakeEngine) counts() (launches, releases int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.launches, e.releases
}

type testIO struct {
	env    *Environment
	stdout *syncBuffer
	stderr *syncBuffer
	engine *fakeEngine
}

// newTestIO returns an environment with vars as the process environment.
func newTestIO(t *testing.T, vars map[string]string) *testIO {
	t.Helper()

	tio := &testIO{stdout: &syncBuffer{}, stderr: &syncBuffer{}, engine: &fakeEngine{}}
	tio.env = &Environment{
		Now:    time.Now,
		Stdout: tio.stdout,
		Stderr: tio.stderr,
		Getenv: func(key string) string { return vars[key] },
		Environ: func() []string {
			environ := make([]string, 0, len(vars))
			for k, v := range vars {
				environ = append(environ, k+"="+v)
			}
			sort.Strings(environ)
			return environ
		},
		Listen: net.Listen,
		Engine: tio.engine,
	}
	return tio
}

// execute runs the root command without fang so errors come back raw.
func (tio *testIO) execute(ctx context.Context, args ...string) error {
	root := newRootCmd(tio.env)
	root.SetArgs(args)
	root.SetOut(tio.stdout)
	root.SetErr(tio.stderr)
	return root.ExecuteContext(ctx)
}

func readFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	return string(data)
}
