package process

// Real kill behavior is covered by the browser integration test in the root
// package, which asserts the Chrome process is gone after release.

import (
	"os"
	"testing"
)

func TestKillProcessGroup_InvalidPID(t *testing.T) {
	t.Parallel()

	// Must not panic. PID 0 and negatives are ignored rather than signalling
	// the current process group.
	KillProcessGroup(999999999)
	KillProcessGroup(0)
	KillProcessGroup(-1)
}

func TestRunning(t *testing.T) {
	t.Parallel()

	if !Running(os.Getpid()) {
		t.Error("Running(self) = false, want true")
	}
	if Running(0) {
		t.Error("Running(0) = true, want false")
	}
	if Running(999999999) {
		t.Error("Running(999999999) = true, want false")
	}
}
