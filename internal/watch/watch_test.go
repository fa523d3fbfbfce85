package watch

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"
)

func TestDebouncer_Coalesces(t *testing.T) {
	got := make(chan []string, 4)
	d := NewDebouncer(20*time.Millisecond, func(paths []string) { got <- paths })
	defer d.Stop()

	d.Add("b.yaml")
	d.Add("a.yaml")
	d.Add("b.yaml")

	select {
	case paths := <-got:
		if want := []string{"a.yaml", "b.yaml"}; !slices.Equal(paths, want) {
			t.Errorf("callback paths = %v, want %v", paths, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("callback not called")
	}

	select {
	case paths := <-got:
		t.Errorf("unexpected second callback with %v", paths)
	case <-time.After(60 * time.Millisecond):
	}
}

func TestDebouncer_Stop(t *testing.T) {
	called := make(chan struct{}, 1)
	d := NewDebouncer(20*time.Millisecond, func([]string) { called <- struct{}{} })

	d.Add("a.yaml")
	d.Stop()
	d.Add("b.yaml")

	select {
	case <-called:
		t.Error("callback ran after Stop")
	case <-time.After(80 * time.Millisecond):
	}
}

func TestDebouncer_DefaultDelay(t *testing.T) {
	d := NewDebouncer(0, nil)
	if d.delay != DefaultDelay {
		t.Errorf("delay = %v, want %v", d.delay, DefaultDelay)
	}
}

func TestWatcher_Run(t *testing.T) {
	dir := t.TempDir()
	watched := filepath.Join(dir, "api.yaml")
	other := filepath.Join(dir, "other.yaml")
	for _, f := range []string{watched, other} {
		if err := os.WriteFile(f, []byte("types: {}\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	var mu sync.Mutex
	var changes [][]string
	w, err := New([]string{watched}, 20*time.Millisecond, nil, func(paths []string) {
		mu.Lock()
		defer mu.Unlock()
		changes = append(changes, paths)
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(other, []byte("types: {a: {kind: String}}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(watched, []byte("types: {a: {kind: String}}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := len(changes)
		mu.Unlock()
		if n > 0 || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(changes) == 0 {
		t.Fatal("no change reported")
	}
	abs, _ := filepath.Abs(watched)
	for _, batch := range changes {
		for _, p := range batch {
			if p != abs {
				t.Errorf("reported unwatched path %s", p)
			}
		}
	}
}

func TestNew_MissingDirectory(t *testing.T) {
	_, err := New([]string{filepath.Join(t.TempDir(), "missing", "api.yaml")}, 0, nil, func([]string) {})
	if err == nil {
		t.Error("New() succeeded for a file in a missing directory")
	}
}

func TestWatcher_SetFiles(t *testing.T) {
	first := filepath.Join(t.TempDir(), "a.yaml")
	later := filepath.Join(t.TempDir(), "b.yaml")
	for _, f := range []string{first, later} {
		if err := os.WriteFile(f, []byte("types: {}\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	got := make(chan []string, 8)
	w, err := New([]string{first}, 20*time.Millisecond, nil, func(paths []string) { got <- paths })
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.SetFiles([]string{later}); err != nil {
		t.Fatalf("SetFiles() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(first, []byte("types: {a: {kind: String}}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(later, []byte("types: {a: {kind: String}}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	abs, _ := filepath.Abs(later)
	select {
	case paths := <-got:
		if !slices.Equal(paths, []string{abs}) {
			t.Errorf("callback paths = %v, want [%s]", paths, abs)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("file added by SetFiles not reported")
	}
}

func TestWatcher_SetFilesMissingDirectory(t *testing.T) {
	w, err := New([]string{filepath.Join(t.TempDir(), "api.yaml")}, 0, nil, func([]string) {})
	if err != nil {
		t.Fatal(err)
	}
	defer w.fs.Close()
	if err := w.SetFiles([]string{filepath.Join(t.TempDir(), "missing", "api.yaml")}); err == nil {
		t.Error("SetFiles() succeeded for a file in a missing directory")
	}
}
