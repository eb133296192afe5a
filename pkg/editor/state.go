package editor

import "fmt"

// DragPhase enumerates the states of the drag state machine.
type DragPhase int

const (
	Idle DragPhase = iota
	Dragging
)

func (p DragPhase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// DragState is the transient drag session. Index is the dragged control
// point while Dragging and -1 while Idle.
type DragState struct {
	Phase DragPhase `json:"phase"`
	Index int       `json:"index"`
}

var idleState = DragState{Phase: Idle, Index: -1}

// IdleState returns the state of an editor with no drag target.
func IdleState() DragState { return idleState }

// DraggingState returns the state of an editor dragging control point i.
func DraggingState(i int) DragState { return DragState{Phase: Dragging, Index: i} }

// Active returns the dragged index and true while Dragging.
func (s DragState) Active() (int, bool) {
	if s.Phase != Dragging {
		return -1, false
	}
	return s.Index, true
}

func (s DragState) String() string {
	if i, ok := s.Active(); ok {
		return fmt.Sprintf("dragging(%d)", i)
	}
	return s.Phase.String()
}

// StateListener is called on every drag state transition.
type StateListener func(prev, next DragState)
