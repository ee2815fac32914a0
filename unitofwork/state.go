package unitofwork

// State is a position in the unit-of-work lifecycle:
//
//	Unopened -> Open -> Committed | RolledBack -> Closed -> Open ...
type State int

const (
	// Unopened is the state of a unit of work that never began a scope.
	Unopened State = iota

	// Open means a session is active and the repositories are bound to it.
	Open

	// Committed means the session's changes are durable. Only End is allowed next.
	Committed

	// RolledBack means the session's changes were discarded. Only End is allowed next.
	RolledBack

	// Closed means the last scope ended. Begin may start a new one.
	Closed
)

func (s State) String() string {
	switch s {
	case Unopened:
		return "unopened"
	case Open:
		return "open"
	case Committed:
		return "committed"
	case RolledBack:
		return "rolled back"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Lifecycle tracks the State of a unit of work and whether its last scope committed.
// Engines check a transition with Allowed, do the storage work, and then record it with Set.
type Lifecycle struct {
	state     State
	committed bool
}

// State returns the current state.
func (l *Lifecycle) State() State {
	return l.state
}

// Committed reports whether the current or last scope committed.
func (l *Lifecycle) Committed() bool {
	return l.committed
}

// IsOpen reports whether a session is active and may still commit or roll back.
func (l *Lifecycle) IsOpen() bool {
	return l.state == Open
}

// HasSession reports whether a session exists that End has to close.
func (l *Lifecycle) HasSession() bool {
	return l.state == Open || l.state == Committed || l.state == RolledBack
}

// Allowed checks whether the unit of work may move to the given state.
func (l *Lifecycle) Allowed(to State) error {
	switch to {
	case Open:
		if l.HasSession() {
			return ErrAlreadyOpen
		}
	case Committed, RolledBack:
		if !l.IsOpen() {
			return ErrNotOpen
		}
	case Closed:
		return nil
	default:
		return ErrNotOpen
	}

	return nil
}

// Set records the transition to the given state. Opening resets the committed flag.
func (l *Lifecycle) Set(to State) {
	switch to {
	case Open:
		l.committed = false
	case Committed:
		l.committed = true
	}

	l.state = to
}
