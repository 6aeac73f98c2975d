package logbook

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestTailReturnsRecentLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journey.log")
	book, err := New(path)
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	defer book.Close()
	for i := 0; i < 5; i++ {
		book.Info("entry-%d", i)
	}
	lines := book.Tail(3)
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	for idx, want := range []string{"entry-2", "entry-3", "entry-4"} {
		if !strings.Contains(lines[idx], want) {
			t.Fatalf("line %d = %q, missing %s", idx, lines[idx], want)
		}
	}
}

func TestLevelsAppearInEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journey.log")
	book, err := New(path)
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	defer book.Close()
	book.Info("upload ok")
	book.Warn("backend slow")
	book.Error("audit failed")
	lines := book.Tail(10)
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want 3", len(lines))
	}
	for idx, level := range []string{"INFO", "WARN", "ERROR"} {
		if !strings.Contains(lines[idx], level) {
			t.Fatalf("line %d = %q, missing level %s", idx, lines[idx], level)
		}
	}
}

func TestNilLogbookIsNoOp(t *testing.T) {
	var book *Logbook
	book.Info("ignored")
	book.Warn("ignored")
	book.Error("ignored")
	if lines := book.Tail(5); lines != nil {
		t.Fatalf("nil logbook Tail = %v, want nil", lines)
	}
	if book.Path() != "" {
		t.Fatalf("nil logbook Path = %q, want empty", book.Path())
	}
	if err := book.Close(); err != nil {
		t.Fatalf("nil logbook Close: %v", err)
	}
}
