package extractor

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Watcher:
// - Writing a matching file triggers a run
// - A burst of writes is debounced into a single run
// - Files outside the include patterns do not trigger runs
// - Files in new subdirectories are picked up
// - Stop is idempotent and ends the event loop
// - Cancelling the context ends the event loop

const testDebounce = 50 * time.Millisecond

type countingRunner struct {
	runs atomic.Int32
}

func (r *countingRunner) Run(ctx context.Context) (*Stats, error) {
	r.runs.Add(1)
	return &Stats{}, nil
}

func newTestWatcher(t *testing.T) (string, *countingRunner, chan struct{}, *Watcher) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "node_modules"), 0755))

	fd, err := NewFileDiscovery(dir, []string{"**/*.ts"}, []string{"node_modules/**"})
	require.NoError(t, err)

	runner := &countingRunner{}
	ran := make(chan struct{}, 16)
	w, err := NewWatcher(runner, fd, testDebounce, WithOnRun(func(*Stats, error) {
		ran <- struct{}{}
	}))
	require.NoError(t, err)
	t.Cleanup(w.Stop)

	return dir, runner, ran, w
}

func writeSource(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func waitForRun(t *testing.T, ran <-chan struct{}) {
	t.Helper()
	select {
	case <-ran:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for extraction run")
	}
}

func assertNoRun(t *testing.T, ran <-chan struct{}) {
	t.Helper()
	select {
	case <-ran:
		t.Fatal("unexpected extraction run")
	case <-time.After(4 * testDebounce):
	}
}

func TestWatcher_TriggersOnMatchingFile(t *testing.T) {
	t.Parallel()

	dir, runner, ran, w := newTestWatcher(t)
	w.Start(context.Background())

	writeSource(t, filepath.Join(dir, "a.ts"), "export type A = string;\n")

	waitForRun(t, ran)
	assert.Equal(t, int32(1), runner.runs.Load())
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	t.Parallel()

	dir, runner, ran, w := newTestWatcher(t)
	w.Start(context.Background())

	for i := 0; i < 5; i++ {
		writeSource(t, filepath.Join(dir, "a.ts"), "export type A = string;\n")
	}

	waitForRun(t, ran)
	assertNoRun(t, ran)
	assert.Equal(t, int32(1), runner.runs.Load())
}

func TestWatcher_IgnoresNonMatchingFiles(t *testing.T) {
	t.Parallel()

	dir, runner, ran, w := newTestWatcher(t)
	w.Start(context.Background())

	writeSource(t, filepath.Join(dir, "readme.md"), "# readme\n")
	writeSource(t, filepath.Join(dir, "node_modules", "pkg.ts"), "export type A = string;\n")

	assertNoRun(t, ran)
	assert.Equal(t, int32(0), runner.runs.Load())
}

func TestWatcher_WatchesNewDirectories(t *testing.T) {
	t.Parallel()

	dir, _, ran, w := newTestWatcher(t)
	w.Start(context.Background())

	sub := filepath.Join(dir, "models")
	require.NoError(t, os.MkdirAll(sub, 0755))
	// The directory creation itself is not a source change.
	assertNoRun(t, ran)

	writeSource(t, filepath.Join(sub, "user.ts"), "export class User {}\n")
	waitForRun(t, ran)
}

func TestWatcher_Stop(t *testing.T) {
	t.Parallel()

	_, _, _, w := newTestWatcher(t)
	w.Start(context.Background())

	w.Stop()
	w.Stop()

	select {
	case <-w.Done():
	default:
		t.Fatal("event loop still running after Stop")
	}
}

func TestWatcher_ContextCancel(t *testing.T) {
	t.Parallel()

	_, _, _, w := newTestWatcher(t)
	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)

	cancel()

	select {
	case <-w.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("event loop did not exit after cancel")
	}
}
