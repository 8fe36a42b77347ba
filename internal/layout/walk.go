package layout

// Window identifies an application window across tree snapshots. Node IDs are
// not stable between snapshots, so windows are compared by owning process.
type Window struct {
	X   int64 `json:"x" yaml:"x"`
	PID int64 `json:"pid" yaml:"pid"`
}

// State is the result of one traversal. Either field is nil when no eligible
// node qualified for it.
type State struct {
	Focused *Window `json:"focused" yaml:"focused"`
	Master  *Window `json:"master" yaml:"master"`
}

// Complete reports whether both the focused and master windows were found
func (s State) Complete() bool {
	return s.Focused != nil && s.Master != nil
}

// Walk visits every node under root once, depth-first pre-order, and returns
// the focused window and the master (leftmost eligible) window.
//
// When more than one eligible node is focused the last one visited wins. When
// several share the smallest X the first one visited stays master.
func Walk(root *Node) State {
	var state State
	if root == nil {
		return state
	}

	stack := []*Node{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		// push in reverse so children come off the stack in order
		for i := len(node.Nodes) - 1; i >= 0; i-- {
			if child := node.Nodes[i]; child != nil {
				stack = append(stack, child)
			}
		}

		if !node.Eligible() {
			continue
		}

		w := node.Window()
		if node.Focused {
			focused := w
			state.Focused = &focused
		}
		if state.Master == nil || w.X < state.Master.X {
			master := w
			state.Master = &master
		}
	}

	return state
}
