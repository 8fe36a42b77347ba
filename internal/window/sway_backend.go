package window

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	sway "github.com/joshuarubin/go-sway"

	"github.com/bryanchriswhite/swaysplit/internal/layout"
	"github.com/bryanchriswhite/swaysplit/internal/logger"
)

const swaySocketEnv = "SWAYSOCK"

// SwayBackend talks to sway over its IPC socket
type SwayBackend struct {
	socketPath string
}

// NewSwayBackend creates a sway backend. An empty socketPath uses $SWAYSOCK.
func NewSwayBackend(socketPath string) (*SwayBackend, error) {
	if socketPath == "" {
		socketPath = os.Getenv(swaySocketEnv)
	}
	if socketPath == "" {
		return nil, fmt.Errorf("no sway socket: set %s or socket_path", swaySocketEnv)
	}
	return &SwayBackend{socketPath: socketPath}, nil
}

// Name returns the backend name
func (b *SwayBackend) Name() string {
	return "sway"
}

// SocketPath returns the IPC socket in use
func (b *SwayBackend) SocketPath() string {
	return b.socketPath
}

// Dial opens a fresh IPC connection. The socket stays open until Close.
func (b *SwayBackend) Dial(ctx context.Context) (Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", b.socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sway at %s: %w", b.socketPath, err)
	}
	return &swayConn{conn: conn}, nil
}

// WatchFocus subscribes to window and shutdown events
func (b *SwayBackend) WatchFocus(ctx context.Context, handler EventHandler) error {
	// sway.Subscribe only reads the socket from the environment. The daemon
	// owns its environment, so point it at the configured socket.
	if os.Getenv(swaySocketEnv) != b.socketPath {
		if err := os.Setenv(swaySocketEnv, b.socketPath); err != nil {
			return fmt.Errorf("failed to set %s: %w", swaySocketEnv, err)
		}
	}

	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	h := &swayEventHandler{
		EventHandler: sway.NoOpEventHandler(),
		handler:      handler,
		cancel:       cancel,
	}

	err := sway.Subscribe(subCtx, h, sway.EventTypeWindow, sway.EventTypeShutdown)
	if herr := h.Err(); herr != nil {
		return herr
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("sway subscription failed: %w", err)
	}
	return nil
}

// swayEventHandler adapts sway events onto an EventHandler. sway delivers
// events from a single reader, so calls never overlap.
type swayEventHandler struct {
	sway.EventHandler

	handler EventHandler
	cancel  context.CancelFunc

	mu  sync.Mutex
	err error
}

func (h *swayEventHandler) Window(ctx context.Context, e sway.WindowEvent) {
	change := string(e.Change)

	kind := EventOther
	if change == "focus" {
		kind = EventFocus
	}
	h.dispatch(ctx, Event{Kind: kind, Change: change})
}

func (h *swayEventHandler) Shutdown(ctx context.Context, e sway.ShutdownEvent) {
	h.dispatch(ctx, Event{Kind: EventShutdown, Change: string(e.Change)})
}

func (h *swayEventHandler) dispatch(ctx context.Context, ev Event) {
	if h.Err() != nil {
		return
	}
	if err := h.handler(ctx, ev); err != nil {
		h.mu.Lock()
		h.err = err
		h.mu.Unlock()
		h.cancel()
	}
}

// Err returns the error that stopped the subscription, if any
func (h *swayEventHandler) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// swayConn sends get_tree and run_command on its own socket. The tree is
// decoded straight into layout.Node because sway reports an unset pid as -1.
type swayConn struct {
	mu   sync.Mutex
	conn net.Conn
}

func (c *swayConn) roundTrip(ctx context.Context, t ipcMessageType, payload []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// unblock the read when ctx ends
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetDeadline(time.Now())
	})
	defer stop()

	if err := writeMessage(c.conn, t, payload); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}

	rt, reply, err := readMessage(c.conn)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	if rt != t {
		return nil, fmt.Errorf("unexpected reply type %d to message type %d", rt, t)
	}
	return reply, nil
}

func (c *swayConn) GetTree(ctx context.Context) (*layout.Node, error) {
	reply, err := c.roundTrip(ctx, ipcGetTree, nil)
	if err != nil {
		return nil, fmt.Errorf("get_tree failed: %w", err)
	}
	return decodeTree(reply)
}

func (c *swayConn) RunCommand(ctx context.Context, command string) error {
	reply, err := c.roundTrip(ctx, ipcRunCommand, []byte(command))
	if err != nil {
		return err
	}

	var replies []sway.RunCommandReply
	if err := json.Unmarshal(reply, &replies); err != nil {
		return fmt.Errorf("failed to decode run_command reply: %w", err)
	}

	var failures []string
	for _, r := range replies {
		if !r.Success {
			failures = append(failures, r.Error)
		}
	}
	if len(failures) > 0 {
		return fmt.Errorf("sway rejected %q: %s", command, strings.Join(failures, "; "))
	}

	logger.WithComponent("sway").Debug().
		Str("command", command).
		Msg("Command accepted")
	return nil
}

func (c *swayConn) Close() error {
	return c.conn.Close()
}

// decodeTree decodes a get_tree reply
func decodeTree(data []byte) (*layout.Node, error) {
	var root *layout.Node
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to decode tree: %w", err)
	}
	if root == nil {
		return nil, fmt.Errorf("get_tree returned no root")
	}
	return root, nil
}
