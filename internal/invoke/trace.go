package invoke

import "strings"

// State is one step of an invocation.
type State string

const (
	StateStart                      State = "Start"
	StateProtocolChosen             State = "ProtocolChosen"
	StateInvoked                    State = "Invoked"
	StateFlattened                  State = "Flattened"
	StateRecoverableFailureDetected State = "RecoverableFailureDetected"
	StateRepaired                   State = "Repaired"
	StateRetried                    State = "Retried"
	StateNonRecoverableFailure      State = "NonRecoverableFailure"
	StateSuccess                    State = "Success"
	StateFailed                     State = "Failed"
)

// Protocol is the way a handle was called.
type Protocol string

const (
	ProtocolNone     Protocol = "none"
	ProtocolPredict  Protocol = "predict"
	ProtocolFunction Protocol = "function"
)

// Trace records the path one invocation took.
type Trace struct {
	States   []State
	Protocol Protocol
	// Calls counts calls into the handle, retries included.
	Calls int
	// Repairs is 0 or 1.
	Repairs int
	// Flattened is set when the 1-D form of the input was used.
	Flattened bool
}

func (t *Trace) enter(s State) { t.States = append(t.States, s) }

// Terminal returns the final state, StateSuccess or StateFailed once Invoke returns.
func (t *Trace) Terminal() State {
	if len(t.States) == 0 {
		return ""
	}
	return t.States[len(t.States)-1]
}

// Has reports whether the invocation passed through s.
func (t *Trace) Has(s State) bool {
	for _, x := range t.States {
		if x == s {
			return true
		}
	}
	return false
}

func (t *Trace) String() string {
	parts := make([]string, len(t.States))
	for i, s := range t.States {
		parts[i] = string(s)
	}
	return strings.Join(parts, " -> ")
}
