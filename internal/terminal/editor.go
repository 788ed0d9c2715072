package terminal

// historyLimit caps the remembered console lines.
const historyLimit = 50

// editor is the console input line with Up/Down recall of submitted lines.
type editor struct {
	buf     []rune
	history []string
	// cursor into history while recalling; len(history) means the fresh line
	recall int
	draft  string
}

func (e *editor) insert(s string) {
	e.buf = append(e.buf, []rune(s)...)
}

func (e *editor) backspace() {
	if len(e.buf) > 0 {
		e.buf = e.buf[:len(e.buf)-1]
	}
}

func (e *editor) text() string { return string(e.buf) }

// submit returns the current line and remembers it. Empty lines are not submitted.
func (e *editor) submit() (string, bool) {
	line := string(e.buf)
	e.buf = e.buf[:0]
	e.draft = ""
	if line == "" {
		e.recall = len(e.history)
		return "", false
	}
	if n := len(e.history); n == 0 || e.history[n-1] != line {
		e.history = append(e.history, line)
		if len(e.history) > historyLimit {
			e.history = e.history[len(e.history)-historyLimit:]
		}
	}
	e.recall = len(e.history)
	return line, true
}

// prev replaces the line with the previous history entry.
func (e *editor) prev() {
	if e.recall == 0 {
		return
	}
	if e.recall == len(e.history) {
		e.draft = string(e.buf)
	}
	e.recall--
	e.buf = []rune(e.history[e.recall])
}

// next moves toward the newest entry and finally back to the unsent draft.
func (e *editor) next() {
	if e.recall >= len(e.history) {
		return
	}
	e.recall++
	if e.recall == len(e.history) {
		e.buf = []rune(e.draft)
		return
	}
	e.buf = []rune(e.history[e.recall])
}
