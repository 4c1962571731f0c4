package samples

import "fmt"

// State is the lifecycle of one judging run over a set.
type State int

const (
	Idle State = iota
	Compiling
	Running
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Compiling:
		return "compiling"
	case Running:
		return "running"
	case Done:
		return "done"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s State) busy() bool {
	return s == Compiling || s == Running
}

// allowed transitions; Begin handles Idle/Done -> Compiling
var transitions = map[State][]State{
	Compiling: {Running, Done},
	Running:   {Done},
}

func canAdvance(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
