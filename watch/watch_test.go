package watch

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// start runs watcher in background returning channel of batches and a stop
// function waiting for Run to return.
func start(t *testing.T, w *Watcher) (<-chan []string, func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	batches := make(chan []string, 16)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(_ context.Context, changed []string) {
			batches <- changed
		})
	}()
	return batches, func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run returned %v", err)
		}
		if err := w.Close(); err != nil {
			t.Errorf("Close returned %v", err)
		}
	}
}

// waitFor returns the first batch containing path.
func waitFor(t *testing.T, batches <-chan []string, path string) []string {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case b := <-batches:
			if slices.Contains(b, path) {
				return b
			}
		case <-deadline:
			t.Fatalf("no change reported for %s", path)
			return nil
		}
	}
}

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWatchDirectory(t *testing.T) {
	dir := t.TempDir()
	w, err := New(zaptest.NewLogger(t), nil)
	if err != nil {
		t.Fatal(err)
	}
	w.Debounce = 50 * time.Millisecond
	if err := w.Add(dir); err != nil {
		t.Fatal(err)
	}
	batches, stop := start(t, w)
	defer stop()

	a := filepath.Join(dir, "a.css")
	b := filepath.Join(dir, "b.png")
	write(t, a, ".a{}")
	write(t, b, "png")

	got := waitFor(t, batches, a)
	if !slices.Contains(got, b) {
		// events may be split over two batches on slow machines
		waitFor(t, batches, b)
	}
}

func TestWatchNewSubdirectory(t *testing.T) {
	dir := t.TempDir()
	w, err := New(zaptest.NewLogger(t), nil)
	if err != nil {
		t.Fatal(err)
	}
	w.Debounce = 50 * time.Millisecond
	if err := w.Add(dir); err != nil {
		t.Fatal(err)
	}
	batches, stop := start(t, w)
	defer stop()

	sub := filepath.Join(dir, "img")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	waitFor(t, batches, sub)

	icon := filepath.Join(sub, "icon.png")
	write(t, icon, "png")
	waitFor(t, batches, icon)
}

func TestWatchIgnore(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	if err := os.Mkdir(out, 0o755); err != nil {
		t.Fatal(err)
	}
	ignore := func(path string) bool {
		return path == out || strings.HasPrefix(path, out+string(filepath.Separator))
	}
	w, err := New(zaptest.NewLogger(t), ignore)
	if err != nil {
		t.Fatal(err)
	}
	w.Debounce = 50 * time.Millisecond
	if err := w.Add(dir); err != nil {
		t.Fatal(err)
	}
	batches, stop := start(t, w)
	defer stop()

	write(t, filepath.Join(out, "sprite.png"), "png")
	marker := filepath.Join(dir, "marker.css")
	write(t, marker, ".m{}")

	got := waitFor(t, batches, marker)
	for _, p := range got {
		if ignore(p) {
			t.Errorf("ignored path reported: %s", p)
		}
	}
}

func TestWatchSingleFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "main.css")
	other := filepath.Join(dir, "other.css")
	write(t, target, ".a{}")

	w, err := New(zaptest.NewLogger(t), nil)
	if err != nil {
		t.Fatal(err)
	}
	w.Debounce = 50 * time.Millisecond
	if err := w.Add(target); err != nil {
		t.Fatal(err)
	}
	batches, stop := start(t, w)
	defer stop()

	write(t, other, ".b{}")
	write(t, target, ".a{color:red}")

	got := waitFor(t, batches, target)
	if slices.Contains(got, other) {
		t.Errorf("unrelated file reported: %v", got)
	}
}

func TestAddMissing(t *testing.T) {
	w, err := New(zaptest.NewLogger(t), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if err := w.Add(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing path")
	}
}
