package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func waitReason(t *testing.T, ch <-chan string, want string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case got := <-ch:
			if got == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %q build", want)
		}
	}
}

func TestWatcher_DebouncedChangeBuild(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	reasons := make(chan string, 16)
	w := New(Config{
		Targets:  []Target{{Dir: dir, Glob: "*.vue"}},
		Debounce: 20 * time.Millisecond,
	}, func(_ context.Context, reason string) error {
		reasons <- reason
		return nil
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	waitReason(t, reasons, ReasonStartup)

	for _, name := range []string{"a.vue", "b.vue", "c.vue"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}
	waitReason(t, reasons, ReasonChange)

	select {
	case r := <-reasons:
		t.Fatalf("burst should coalesce into one build, got extra %q", r)
	case <-time.After(100 * time.Millisecond):
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("x"), 0o600))
	select {
	case r := <-reasons:
		t.Fatalf("unrelated file triggered %q build", r)
	case <-time.After(100 * time.Millisecond):
	}

	cancel()
	require.NoError(t, <-done)
}

func TestWatcher_IntervalBuild(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	reasons := make(chan string, 16)
	w := New(Config{
		Targets:  []Target{{Dir: t.TempDir(), Glob: "*.vue"}},
		Interval: 30 * time.Millisecond,
	}, func(_ context.Context, reason string) error {
		reasons <- reason
		return nil
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	waitReason(t, reasons, ReasonStartup)
	waitReason(t, reasons, ReasonInterval)

	cancel()
	require.NoError(t, <-done)
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w := New(Config{Targets: []Target{{Dir: filepath.Join(t.TempDir(), "missing")}}}, func(context.Context, string) error {
		return nil
	}, nil)
	require.Error(t, w.Run(t.Context()))
}

func TestRelevant(t *testing.T) {
	dir := t.TempDir()
	w := New(Config{Targets: []Target{{Dir: dir, Glob: "*.vue"}, {Dir: filepath.Join(dir, "gen"), Glob: ""}}}, nil, nil)

	assert.True(t, w.relevant(fsnotify.Event{Name: filepath.Join(dir, "a.vue"), Op: fsnotify.Write}))
	assert.True(t, w.relevant(fsnotify.Event{Name: filepath.Join(dir, "a.vue"), Op: fsnotify.Remove}))
	assert.False(t, w.relevant(fsnotify.Event{Name: filepath.Join(dir, "a.vue"), Op: fsnotify.Chmod}))
	assert.False(t, w.relevant(fsnotify.Event{Name: filepath.Join(dir, "a.md"), Op: fsnotify.Write}))
	assert.True(t, w.relevant(fsnotify.Event{Name: filepath.Join(dir, "gen", "x.js"), Op: fsnotify.Create}))
	assert.False(t, w.relevant(fsnotify.Event{Name: filepath.Join(dir, "other", "a.vue"), Op: fsnotify.Write}))
}
