// Package layout computes the focused and master windows of a sway tree and
// decides which split the focused container should use next.
package layout

// NodeType is the kind of a node in the window manager's tree
type NodeType string

const (
	NodeRoot        NodeType = "root"
	NodeOutput      NodeType = "output"
	NodeWorkspace   NodeType = "workspace"
	NodeCon         NodeType = "con"
	NodeFloatingCon NodeType = "floating_con"
)

// NoPID is reported for nodes that have no owning process
const NoPID int64 = -1

// Rect is a node's geometry in layout coordinates
type Rect struct {
	X      int64 `json:"x" yaml:"x"`
	Y      int64 `json:"y" yaml:"y"`
	Width  int64 `json:"width" yaml:"width"`
	Height int64 `json:"height" yaml:"height"`
}

// Node is one element of a get_tree snapshot. Only the fields needed to pick
// the focused and master windows are decoded.
type Node struct {
	ID      int64    `json:"id"`
	Name    string   `json:"name,omitempty"`
	Type    NodeType `json:"type"`
	Visible *bool    `json:"visible,omitempty"`
	Focused bool     `json:"focused"`
	PID     *int64   `json:"pid,omitempty"`
	Rect    Rect     `json:"rect"`
	Nodes   []*Node  `json:"nodes,omitempty"`
}

// IsVisible reports the visible flag, treating an unknown value as false
func (n *Node) IsVisible() bool {
	return n.Visible != nil && *n.Visible
}

// ProcessID returns the owning process, or false when there is none
func (n *Node) ProcessID() (int64, bool) {
	if n.PID == nil || *n.PID == NoPID {
		return 0, false
	}
	return *n.PID, true
}

// Eligible reports whether the node is an application window that takes part
// in focus and master selection.
func (n *Node) Eligible() bool {
	if n.Type != NodeCon || !n.IsVisible() {
		return false
	}
	_, ok := n.ProcessID()
	return ok
}

// Window returns the identity of the node as used for comparisons
func (n *Node) Window() Window {
	pid, _ := n.ProcessID()
	return Window{X: n.Rect.X, PID: pid}
}
