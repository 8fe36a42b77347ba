package window

import (
	"context"
	"errors"

	"github.com/bryanchriswhite/swaysplit/internal/layout"
)

// ErrShutdown is returned from the event loop when the window manager exits
var ErrShutdown = errors.New("window manager is shutting down")

// EventKind classifies window manager events the daemon cares about
type EventKind int

const (
	// EventOther is any event that needs no action
	EventOther EventKind = iota
	// EventFocus is a window focus change
	EventFocus
	// EventShutdown is the window manager exiting
	EventShutdown
)

func (k EventKind) String() string {
	switch k {
	case EventFocus:
		return "focus"
	case EventShutdown:
		return "shutdown"
	default:
		return "other"
	}
}

// Event is a window manager event reduced to what the daemon needs
type Event struct {
	Kind EventKind
	// Change is the raw change field reported by the window manager
	Change string
}

// EventHandler is called for every event in the order they arrive. Returning
// an error stops the subscription.
type EventHandler func(ctx context.Context, ev Event) error

// Conn is a short-lived connection used to query the tree and send commands
type Conn interface {
	layout.CommandRunner

	// GetTree returns a snapshot of the current window tree
	GetTree(ctx context.Context) (*layout.Node, error)

	// Close releases the connection
	Close() error
}

// Backend defines the interface for window manager IPC backends
type Backend interface {
	// Dial opens a new connection for tree queries and commands
	Dial(ctx context.Context) (Conn, error)

	// WatchFocus subscribes to window and shutdown events and calls handler
	// for each of them. It blocks until ctx is done, the subscription fails,
	// or handler returns an error, which is then returned.
	WatchFocus(ctx context.Context, handler EventHandler) error

	// Name returns the backend name (e.g., "sway")
	Name() string
}
