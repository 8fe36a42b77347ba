package window

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bryanchriswhite/swaysplit/internal/layout"
	"github.com/bryanchriswhite/swaysplit/internal/logger"
)

// Decision records what was done for one focus change
type Decision struct {
	Command layout.Command `json:"command" yaml:"command"`
	State   layout.State   `json:"state" yaml:"state"`
	Sent    bool           `json:"sent" yaml:"sent"`
	Error   string         `json:"error,omitempty" yaml:"error,omitempty"`
	Time    time.Time      `json:"time" yaml:"time"`
}

// Stats counts how focus events were handled
type Stats struct {
	Events   uint64 `json:"events"`
	Commands uint64 `json:"commands"`
	Skipped  uint64 `json:"skipped"`
	Failures uint64 `json:"failures"`
}

// Manager runs the focus event loop against a backend
type Manager struct {
	backend Backend
	log     *zerolog.Logger

	mu        sync.RWMutex
	stats     Stats
	last      *Decision
	listeners []chan Decision

	now func() time.Time
}

// NewManager creates a manager for the given backend
func NewManager(backend Backend) *Manager {
	return &Manager{
		backend:   backend,
		log:       logger.WithComponent("window"),
		listeners: make([]chan Decision, 0),
		now:       time.Now,
	}
}

// BackendName returns the name of the active backend
func (m *Manager) BackendName() string {
	return m.backend.Name()
}

// Run processes events until ctx is done or the window manager shuts down.
// Setup failures and shutdown are returned; per-event failures are logged and
// the loop moves on.
func (m *Manager) Run(ctx context.Context) error {
	m.log.Info().Str("backend", m.backend.Name()).Msg("Watching focus changes")

	err := m.backend.WatchFocus(ctx, m.HandleEvent)
	if errors.Is(err, ErrShutdown) {
		m.log.Warn().Msg("Window manager shut down, stopping")
	}
	return err
}

// HandleEvent processes a single event. Only ErrShutdown is returned.
func (m *Manager) HandleEvent(ctx context.Context, ev Event) error {
	switch ev.Kind {
	case EventShutdown:
		return fmt.Errorf("%w (%s)", ErrShutdown, ev.Change)
	case EventFocus:
		m.processFocus(ctx)
	default:
		m.log.Debug().Str("change", ev.Change).Msg("Ignoring event")
	}
	return nil
}

// processFocus fetches a fresh tree, computes the state and sends the layout
// command. Failures only affect this event.
func (m *Manager) processFocus(ctx context.Context) {
	m.mu.Lock()
	m.stats.Events++
	m.mu.Unlock()

	decision, err := m.Evaluate(ctx, true)
	if err != nil {
		m.log.Warn().Err(err).Msg("Skipping focus event")
		m.recordFailure(decision)
		return
	}

	if !decision.Sent {
		m.log.Debug().Msg("No focused or master window, nothing to do")
		m.mu.Lock()
		m.stats.Skipped++
		m.mu.Unlock()
		return
	}

	m.log.Debug().
		Str("command", string(decision.Command)).
		Interface("focused", decision.State.Focused).
		Interface("master", decision.State.Master).
		Msg("Layout command sent")

	m.mu.Lock()
	m.stats.Commands++
	m.mu.Unlock()
	m.record(*decision)
}

// Evaluate opens a connection, walks the current tree and decides on a
// command. The command is only sent when apply is true. A non-nil decision is
// returned alongside a dispatch error so the failure can be reported.
func (m *Manager) Evaluate(ctx context.Context, apply bool) (*Decision, error) {
	conn, err := m.backend.Dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	tree, err := conn.GetTree(ctx)
	if err != nil {
		return nil, err
	}

	decision := &Decision{
		State: layout.Walk(tree),
		Time:  m.now(),
	}

	if !apply {
		decision.Command, _ = layout.Decide(decision.State)
		return decision, nil
	}

	cmd, sent, err := layout.Dispatch(ctx, conn, decision.State)
	decision.Command = cmd
	decision.Sent = sent && err == nil
	if err != nil {
		decision.Error = err.Error()
		return decision, err
	}
	return decision, nil
}

func (m *Manager) recordFailure(decision *Decision) {
	m.mu.Lock()
	m.stats.Failures++
	m.mu.Unlock()

	if decision != nil {
		m.record(*decision)
	}
}

func (m *Manager) record(decision Decision) {
	m.mu.Lock()
	m.last = &decision
	m.mu.Unlock()

	m.notifyListeners(decision)
}

// LastDecision returns the most recent decision, or nil before the first one
func (m *Manager) LastDecision() *Decision {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.last == nil {
		return nil
	}
	d := *m.last
	return &d
}

// Stats returns a copy of the event counters
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats
}

// Subscribe adds a listener for decisions
func (m *Manager) Subscribe() chan Decision {
	ch := make(chan Decision, 10)
	m.mu.Lock()
	m.listeners = append(m.listeners, ch)
	m.mu.Unlock()
	return ch
}

// Unsubscribe removes a listener
func (m *Manager) Unsubscribe(ch chan Decision) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, listener := range m.listeners {
		if listener == ch {
			m.listeners = append(m.listeners[:i], m.listeners[i+1:]...)
			close(ch)
			break
		}
	}
}

// notifyListeners notifies all listeners of a new decision
func (m *Manager) notifyListeners(decision Decision) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, listener := range m.listeners {
		select {
		case listener <- decision:
		default:
			// Skip if channel is full
		}
	}
}
