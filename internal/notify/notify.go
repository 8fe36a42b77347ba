// Package notify sends desktop notifications over the session bus.
package notify

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	notificationsService   = "org.freedesktop.Notifications"
	notificationsPath      = "/org/freedesktop/Notifications"
	notificationsInterface = "org.freedesktop.Notifications"

	appName = "swaysplit"
)

// Caller is the subset of a dbus object used to post a notification
type Caller interface {
	Call(method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// Notifier posts notifications to the freedesktop notification daemon
type Notifier struct {
	conn *dbus.Conn
	obj  Caller
}

// New connects to the session bus
func New() (*Notifier, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &Notifier{
		conn: conn,
		obj:  conn.Object(notificationsService, dbus.ObjectPath(notificationsPath)),
	}, nil
}

// NewWithCaller builds a notifier on an existing bus object
func NewWithCaller(obj Caller) *Notifier {
	return &Notifier{obj: obj}
}

// Send posts a notification and returns its id
func (n *Notifier) Send(summary, body string) (uint32, error) {
	call := n.obj.Call(notificationsInterface+".Notify", 0,
		appName,
		uint32(0),
		"",
		summary,
		body,
		[]string{},
		map[string]dbus.Variant{},
		int32(-1),
	)
	if call.Err != nil {
		return 0, fmt.Errorf("notify failed: %w", call.Err)
	}

	var id uint32
	if err := call.Store(&id); err != nil {
		return 0, fmt.Errorf("failed to read notification id: %w", err)
	}
	return id, nil
}

// Close closes the bus connection
func (n *Notifier) Close() error {
	if n.conn == nil {
		return nil
	}
	return n.conn.Close()
}
