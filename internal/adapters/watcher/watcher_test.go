package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestFsnotifyOpToOperation(t *testing.T) {
	tests := []struct {
		name     string
		op       fsnotify.Op
		expected Operation
	}{
		{
			name:     "Remove returns OpDelete",
			op:       fsnotify.Remove,
			expected: OpDelete,
		},
		{
			name:     "Rename returns OpDelete",
			op:       fsnotify.Rename,
			expected: OpDelete,
		},
		{
			name:     "Create returns OpCreate",
			op:       fsnotify.Create,
			expected: OpCreate,
		},
		{
			name:     "Write returns OpModify",
			op:       fsnotify.Write,
			expected: OpModify,
		},
		{
			name:     "Chmod returns OpModify",
			op:       fsnotify.Chmod,
			expected: OpModify,
		},
		{
			name:     "Remove takes precedence over Write",
			op:       fsnotify.Remove | fsnotify.Write,
			expected: OpDelete,
		},
		{
			name:     "Create takes precedence over Write",
			op:       fsnotify.Create | fsnotify.Write,
			expected: OpCreate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := fsnotifyOpToOperation(tt.op)
			if result != tt.expected {
				t.Errorf("fsnotifyOpToOperation(%v) = %v, want %v", tt.op, result, tt.expected)
			}
		})
	}
}

func TestOperationString(t *testing.T) {
	tests := []struct {
		op       Operation
		expected string
	}{
		{OpCreate, "create"},
		{OpModify, "modify"},
		{OpDelete, "delete"},
		{Operation(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.op.String(); got != tt.expected {
				t.Errorf("Operation.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUpdatePendingEvent(t *testing.T) {
	tests := []struct {
		name     string
		existing Operation
		newOp    Operation
		expected Operation
	}{
		{"modify after create stays create", OpCreate, OpModify, OpCreate},
		{"delete wins", OpModify, OpDelete, OpDelete},
		{"recreate after delete", OpDelete, OpCreate, OpCreate},
		{"write after delete", OpDelete, OpModify, OpCreate},
		{"modify after modify", OpModify, OpModify, OpModify},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &pendingEvent{op: tt.existing}
			updatePendingEvent(p, tt.newOp)
			if p.op != tt.expected {
				t.Errorf("op = %v, want %v", p.op, tt.expected)
			}
			if p.timestamp.IsZero() {
				t.Error("timestamp should be refreshed")
			}
		})
	}
}

func TestRelevant(t *testing.T) {
	dir := t.TempDir()
	single := filepath.Join(t.TempDir(), "candidate.json")
	if err := os.WriteFile(single, []byte("[]"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := New(Config{Paths: []string{dir, single}}, nil, testLogger())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer func() { _ = w.Stop() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	tests := []struct {
		path string
		want bool
	}{
		{filepath.Join(dir, "sbas.json"), true},
		{filepath.Join(dir, "sbas.sqlite"), true},
		{filepath.Join(dir, "notes.txt"), false},
		{single, true},
		{filepath.Join(filepath.Dir(single), "sibling.json"), false},
		{"/elsewhere/sbas.json", false},
	}

	for _, tt := range tests {
		t.Run(filepath.Base(tt.path), func(t *testing.T) {
			if got := w.relevant(tt.path); got != tt.want {
				t.Errorf("relevant(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestWatcherDebouncesEvents(t *testing.T) {
	dir := t.TempDir()
	events := make(chan Event, 10)

	handler := func(_ context.Context, e Event) error {
		events <- e
		return nil
	}

	w, err := New(Config{Paths: []string{dir}, Debounce: 50 * time.Millisecond}, handler, testLogger())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer func() { _ = w.Stop() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	path := filepath.Join(dir, "sbas.json")
	for i := range 3 {
		if err := os.WriteFile(path, []byte{byte('0' + i)}, 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case e := <-events:
		if e.Path != path {
			t.Errorf("event path = %q, want %q", e.Path, path)
		}
		if e.Operation != OpCreate {
			t.Errorf("event operation = %v, want create", e.Operation)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
	}

	select {
	case e := <-events:
		t.Errorf("unexpected second event %+v", e)
	case <-time.After(300 * time.Millisecond):
	}
}
