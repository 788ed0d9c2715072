// Package mode is the interaction state machine. It owns the mode, the build layer and the
// cube selection, and turns user actions into grid, hinge and physics operations.
package mode

import (
	"errors"
	"fmt"
	"strings"
)

// Mode is the interaction context.
type Mode int

const (
	Create Mode = iota
	Hinge
	Demo
)

var (
	// ErrWrongMode is returned for an action the current mode does not allow.
	ErrWrongMode = errors.New("mode: action not valid in this mode")
	// ErrUnknownMode is returned by Parse.
	ErrUnknownMode = errors.New("mode: unknown mode")
	// ErrInvalidLayer is returned for negative layers.
	ErrInvalidLayer = errors.New("mode: layer must be zero or more")
)

func (m Mode) String() string {
	switch m {
	case Create:
		return "CREATE"
	case Hinge:
		return "HINGE"
	case Demo:
		return "DEMO"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Parse reads a mode name, ignoring case.
func Parse(s string) (Mode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CREATE":
		return Create, nil
	case "HINGE":
		return Hinge, nil
	case "DEMO":
		return Demo, nil
	}
	return Create, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Status receives user-facing messages.
type Status interface {
	Info(msg string)
	Success(msg string)
	Warning(msg string)
	Error(msg string)
}

type noStatus struct{}

func (noStatus) Info(string)    {}
func (noStatus) Success(string) {}
func (noStatus) Warning(string) {}
func (noStatus) Error(string)   {}
