package layout

import (
	"context"
	"fmt"
)

// Command is a layout command understood by the window manager
type Command string

const (
	// SplitH is sent when the focused window is the master
	SplitH Command = "splith"
	// SplitV is sent for every other focused window
	SplitV Command = "splitv"
)

// CommandRunner sends a command string to the window manager
type CommandRunner interface {
	RunCommand(ctx context.Context, command string) error
}

// Decide maps a state to a command. It returns false when the state is missing
// the focused or the master window, in which case nothing should be sent.
func Decide(s State) (Command, bool) {
	if !s.Complete() {
		return "", false
	}
	if s.Focused.PID == s.Master.PID {
		return SplitH, true
	}
	return SplitV, true
}

// Dispatch decides on a command for s and sends it through r. The returned
// bool is false when there was nothing to send.
func Dispatch(ctx context.Context, r CommandRunner, s State) (Command, bool, error) {
	cmd, ok := Decide(s)
	if !ok {
		return "", false, nil
	}
	if err := r.RunCommand(ctx, string(cmd)); err != nil {
		return cmd, true, fmt.Errorf("failed to run %s: %w", cmd, err)
	}
	return cmd, true, nil
}
