package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLogger_KeepsMessagesAndAppendsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "session.txt")
	l := NewAt(path)
	l.now = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }

	if _, ok := l.Last(); ok {
		t.Fatalf("empty logger has a last message")
	}
	l.Log("cmd mode hinge")
	l.Warning("Dropped 1 hinge references")
	if got := l.Lines(); len(got) != 2 || got[0] != "cmd mode hinge" {
		t.Fatalf("lines=%v", got)
	}
	last, ok := l.Last()
	if !ok || last.Level != LevelWarning || last.Text != "Dropped 1 hinge references" {
		t.Fatalf("last=%+v", last)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := "[2026-03-04 05:06:07] cmd mode hinge\n[2026-03-04 05:06:07] warning: Dropped 1 hinge references\n"
	if string(data) != want {
		t.Fatalf("file=%q", data)
	}
}

func TestLogger_MemoryOnly(t *testing.T) {
	l := NewAt("")
	l.Error("boom")
	l.Success("ok")
	if got := strings.Join(l.Lines(), ","); got != "boom,ok" {
		t.Fatalf("lines=%s", got)
	}
	if LevelSuccess.String() != "success" || Level(42).String() != "info" {
		t.Fatalf("level names")
	}
}

func TestLogger_Tail(t *testing.T) {
	l := NewAt("")
	if got := l.Tail(3); len(got) != 0 {
		t.Fatalf("empty tail=%v", got)
	}
	l.Info("a")
	l.Warning("b")
	l.Error("c")
	got := l.Tail(2)
	if len(got) != 2 || got[0].Text != "b" || got[1].Level != LevelError {
		t.Fatalf("tail=%v", got)
	}
	if len(l.Tail(10)) != 3 {
		t.Fatalf("tail larger than buffer")
	}
}
