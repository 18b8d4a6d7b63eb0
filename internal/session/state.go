package session

import (
	"errors"
	"time"

	"github.com/vietddude/artbid/internal/core/domain"
)

// State is an alias for domain.SessionStatus for internal use.
type State = domain.SessionStatus

// ErrInvalidTransition is returned when an invalid state transition is attempted.
var ErrInvalidTransition = errors.New("invalid state transition")

// ValidTransitions defines allowed state transitions.
// Key is the current state, value is the list of valid next states.
var ValidTransitions = map[State][]State{
	domain.SessionDisconnected: {domain.SessionConnecting},
	domain.SessionConnecting: {
		domain.SessionConnected,
		domain.SessionFailed,
		domain.SessionDisconnected,
	},
	domain.SessionConnected: {domain.SessionDisconnected},
	domain.SessionFailed:    {domain.SessionConnecting, domain.SessionDisconnected},
}

// CanTransition checks if a transition from one state to another is valid.
func CanTransition(from, to State) bool {
	validTargets, ok := ValidTransitions[from]
	if !ok {
		return false
	}

	for _, target := range validTargets {
		if target == to {
			return true
		}
	}
	return false
}

// Transition represents a state change with metadata.
type Transition struct {
	From      State
	To        State
	Attempt   string
	Reason    string
	Timestamp time.Time
}

// NewTransition creates a new transition record.
func NewTransition(from, to State, attempt, reason string) Transition {
	return Transition{
		From:      from,
		To:        to,
		Attempt:   attempt,
		Reason:    reason,
		Timestamp: time.Now(),
	}
}

// IsValid returns true if this transition is allowed by the state machine.
func (t Transition) IsValid() bool {
	return CanTransition(t.From, t.To)
}

// StateDescription returns a human-readable description of a state.
func StateDescription(s State) string {
	switch s {
	case domain.SessionDisconnected:
		return "Disconnected - no wallet session"
	case domain.SessionConnecting:
		return "Connecting - waiting for wallet authorization"
	case domain.SessionConnected:
		return "Connected - account and contract resolved"
	case domain.SessionFailed:
		return "Failed - last connection attempt did not succeed"
	default:
		return "Unknown state"
	}
}
