package terminal

import "testing"

func TestEditor_InsertBackspaceSubmit(t *testing.T) {
	var e editor
	e.insert("cmd fiz")
	e.backspace()
	e.insert("x")
	if got := e.text(); got != "cmd fix" {
		t.Fatalf("text: got %q", got)
	}
	line, ok := e.submit()
	if !ok || line != "cmd fix" {
		t.Fatalf("submit: got %q %v", line, ok)
	}
	if e.text() != "" {
		t.Fatalf("buffer not cleared: %q", e.text())
	}
	if _, ok := e.submit(); ok {
		t.Fatalf("empty line submitted")
	}
}

func TestEditor_BackspaceMultibyte(t *testing.T) {
	var e editor
	e.insert("hé")
	e.backspace()
	if got := e.text(); got != "h" {
		t.Fatalf("got %q", got)
	}
	e.backspace()
	e.backspace()
	if got := e.text(); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestEditor_HistoryRecall(t *testing.T) {
	var e editor
	for _, l := range []string{"cmd mode hinge", "cmd save", "cmd save"} {
		e.insert(l)
		e.submit()
	}
	if len(e.history) != 2 {
		t.Fatalf("history: got %v", e.history)
	}

	e.insert("cmd la")
	e.prev()
	if got := e.text(); got != "cmd save" {
		t.Fatalf("prev 1: got %q", got)
	}
	e.prev()
	e.prev()
	if got := e.text(); got != "cmd mode hinge" {
		t.Fatalf("prev at oldest: got %q", got)
	}
	e.next()
	if got := e.text(); got != "cmd save" {
		t.Fatalf("next: got %q", got)
	}
	e.next()
	if got := e.text(); got != "cmd la" {
		t.Fatalf("draft not restored: got %q", got)
	}
	e.next()
	if got := e.text(); got != "cmd la" {
		t.Fatalf("next past draft: got %q", got)
	}
}

func TestEditor_HistoryLimit(t *testing.T) {
	var e editor
	for i := 0; i < historyLimit+10; i++ {
		e.insert(string(rune('a' + i%26)))
		e.insert(string(rune('0' + i%10)))
		e.insert(string(rune('A' + i/26)))
		e.submit()
	}
	if len(e.history) != historyLimit {
		t.Fatalf("got %d entries", len(e.history))
	}
}
