package scenestate

import (
	"context"
	"io"
	"log"
	"sync"
	"time"

	"github.com/jinzhu/copier"
)

// MemoryStore keeps the latest encoded scene in memory.
type MemoryStore struct {
	mu    sync.Mutex
	data  []byte
	saves int
}

func (m *MemoryStore) Save(_ context.Context, s *SceneState) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data = data
	m.saves++
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Load(_ context.Context) (*SceneState, error) {
	m.mu.Lock()
	data := m.data
	m.mu.Unlock()
	if data == nil {
		return nil, ErrNotFound
	}
	return Decode(data)
}

// Saves returns how many times Save succeeded.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *MemoryStore) Close() error { return nil }

// Clone returns a deep copy of s.
func Clone(s *SceneState) (*SceneState, error) {
	out := &SceneState{}
	if err := copier.CopyWithOption(out, s, copier.Option{DeepCopy: true}); err != nil {
		return nil, err
	}
	return out, nil
}

// AutoSaver debounces save requests. Each request replaces the pending scene; the store is
// written once the requests stop for the configured delay, or on Flush and Close.
// Writes never overlap, so the store always ends with the newest scene taken.
type AutoSaver struct {
	store Store
	delay time.Duration
	log   *log.Logger

	// held across taking pending and the store write
	writeMu sync.Mutex

	mu      sync.Mutex
	pending *SceneState
	timer   *time.Timer
	closed  bool
	saved   []func(*SceneState)
}

// NewAutoSaver returns a saver over store. A delay of zero saves on every request.
func NewAutoSaver(store Store, delay time.Duration, logger *log.Logger) *AutoSaver {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &AutoSaver{store: store, delay: delay, log: logger}
}

// OnSaved registers fn to receive every scene written to the store.
func (a *AutoSaver) OnSaved(fn func(*SceneState)) {
	a.mu.Lock()
	a.saved = append(a.saved, fn)
	a.mu.Unlock()
}

// Request schedules s to be saved. s is copied, so the caller may keep mutating its own value.
func (a *AutoSaver) Request(s *SceneState) {
	cp, err := Clone(s)
	if err != nil {
		a.log.Printf("copy scene: %v", err)
		return
	}
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.pending = cp
	if a.delay <= 0 {
		a.mu.Unlock()
		if err := a.Flush(context.Background()); err != nil {
			a.log.Printf("save: %v", err)
		}
		return
	}
	if a.timer == nil {
		a.timer = time.AfterFunc(a.delay, a.fire)
	} else {
		a.timer.Reset(a.delay)
	}
	a.mu.Unlock()
}

func (a *AutoSaver) fire() {
	if err := a.Flush(context.Background()); err != nil {
		a.log.Printf("save: %v", err)
	}
}

// Flush writes the pending scene now, after any write already in progress. It does nothing
// when no request is pending.
func (a *AutoSaver) Flush(ctx context.Context) error {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	a.mu.Lock()
	s := a.pending
	a.pending = nil
	hooks := append([]func(*SceneState){}, a.saved...)
	a.mu.Unlock()
	if s == nil {
		return nil
	}
	if err := a.store.Save(ctx, s); err != nil {
		return err
	}
	for _, fn := range hooks {
		fn(s)
	}
	return nil
}

// Pending reports whether a request is waiting to be written.
func (a *AutoSaver) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending != nil
}

// Close stops the timer, waits for a write in progress and writes any pending scene. Later
// requests are ignored.
func (a *AutoSaver) Close() error {
	a.mu.Lock()
	a.closed = true
	if a.timer != nil {
		a.timer.Stop()
	}
	a.mu.Unlock()
	return a.Flush(context.Background())
}
