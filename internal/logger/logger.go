package logger

import (
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LogFilePath is the session log, relative to the working directory.
const LogFilePath = "logs/session.txt"

// Level is the severity of a status message.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	}
	return "info"
}

// Message is one stored status line.
type Message struct {
	Level Level
	Text  string
	Time  time.Time
}

// Logger stores status messages and console lines in memory and appends them to a file on disk.
// The console draws Lines; the HUD shows Last.
type Logger struct {
	mu       sync.Mutex
	path     string
	now      func() time.Time
	messages []Message
}

// New returns a Logger writing to LogFilePath and ensures the logs directory exists.
func New() *Logger {
	return NewAt(LogFilePath)
}

// NewAt returns a Logger appending to path. An empty path keeps messages in memory only.
func NewAt(path string) *Logger {
	if path != "" {
		_ = os.MkdirAll(filepath.Dir(path), 0755)
	}
	return &Logger{path: path, now: time.Now}
}

// Log appends an info line. Each entry is prefixed with [timestamp] in the file.
func (l *Logger) Log(line string) { l.add(LevelInfo, line) }

func (l *Logger) Info(msg string)    { l.add(LevelInfo, msg) }
func (l *Logger) Success(msg string) { l.add(LevelSuccess, msg) }
func (l *Logger) Warning(msg string) { l.add(LevelWarning, msg) }
func (l *Logger) Error(msg string)   { l.add(LevelError, msg) }

func (l *Logger) add(level Level, text string) {
	m := Message{Level: level, Text: text, Time: l.now()}
	stamped := "[" + m.Time.Format("2006-01-02 15:04:05") + "] " + text
	if level != LevelInfo {
		stamped = "[" + m.Time.Format("2006-01-02 15:04:05") + "] " + level.String() + ": " + text
	}

	l.mu.Lock()
	l.messages = append(l.messages, m)
	l.mu.Unlock()

	if l.path == "" {
		return
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	_, _ = f.WriteString(stamped + "\n")
	_ = f.Close()
}

// Lines returns every message text, oldest first.
func (l *Logger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.messages))
	for i, m := range l.messages {
		out[i] = m.Text
	}
	return out
}

// Last returns the newest message.
func (l *Logger) Last() (Message, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.messages) == 0 {
		return Message{}, false
	}
	return l.messages[len(l.messages)-1], true
}

// Tail returns up to n of the newest messages, oldest first.
func (l *Logger) Tail(n int) []Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n > len(l.messages) {
		n = len(l.messages)
	}
	return append([]Message(nil), l.messages[len(l.messages)-n:]...)
}
