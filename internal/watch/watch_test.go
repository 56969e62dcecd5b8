package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func startWatcher(t *testing.T, dir string, batches chan []string) (context.CancelFunc, chan error) {
	t.Helper()
	w, err := New([]string{dir}, 50*time.Millisecond, nil, func(ctx context.Context, files []string) error {
		batches <- files
		return nil
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	// Give the watcher a moment to register before events start.
	time.Sleep(100 * time.Millisecond)
	return cancel, done
}

func stopWatcher(t *testing.T, cancel context.CancelFunc, done chan error) {
	t.Helper()
	cancel()
	select {
	case err := <-done:
		if err != nil && err != context.Canceled {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatchBatchesPythonChanges(t *testing.T) {
	dir := t.TempDir()
	batches := make(chan []string, 4)
	cancel, done := startWatcher(t, dir, batches)
	defer stopWatcher(t, cancel, done)

	pyPath := filepath.Join(dir, "a.py")
	if err := os.WriteFile(pyPath, []byte("pass\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case files := <-batches:
		if len(files) != 1 || files[0] != pyPath {
			t.Errorf("got batch %v", files)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no batch received")
	}
}

func TestWatchDebouncesRapidSaves(t *testing.T) {
	dir := t.TempDir()
	batches := make(chan []string, 4)
	cancel, done := startWatcher(t, dir, batches)
	defer stopWatcher(t, cancel, done)

	a := filepath.Join(dir, "a.py")
	b := filepath.Join(dir, "b.py")
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(a, []byte("pass\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(b, []byte("pass\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case files := <-batches:
		if len(files) != 2 {
			t.Errorf("rapid saves should fold into one batch, got %v", files)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no batch received")
	}

	// No second batch should follow.
	select {
	case files := <-batches:
		t.Errorf("unexpected extra batch %v", files)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatchPicksUpNewDirectories(t *testing.T) {
	dir := t.TempDir()
	batches := make(chan []string, 4)
	cancel, done := startWatcher(t, dir, batches)
	defer stopWatcher(t, cancel, done)

	sub := filepath.Join(dir, "pkg")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	// Let the create event register the new directory.
	time.Sleep(200 * time.Millisecond)

	pyPath := filepath.Join(sub, "mod.py")
	if err := os.WriteFile(pyPath, []byte("pass\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case files := <-batches:
		if len(files) != 1 || files[0] != pyPath {
			t.Errorf("got batch %v", files)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no batch for the new directory")
	}
}

func TestWatchMissingPath(t *testing.T) {
	if _, err := New([]string{"/does/not/exist"}, time.Second, nil, nil); err == nil {
		t.Error("expected an error for a missing path")
	}
}
