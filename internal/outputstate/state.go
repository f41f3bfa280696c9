// Package outputstate models the lifecycle state of a generated example
// output and the filename conventions that encode it on disk.
package outputstate

import (
	"fmt"
	"strings"
)

// State is the lifecycle position of one example's generated output.
type State int

const (
	Unknown State = iota
	NeedsReview
	Todo
	Finalized
	Deprecated
)

var stateNames = map[State]string{
	Unknown:     "unknown",
	NeedsReview: "needs_review",
	Todo:        "todo",
	Finalized:   "finalized",
	Deprecated:  "deprecated",
}

// All lists the known states in lifecycle order.
var All = []State{NeedsReview, Todo, Finalized, Deprecated}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Parse maps a state name (case-insensitive, '-' accepted for '_') to a State.
func Parse(name string) (State, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	for s, n := range stateNames {
		if s != Unknown && n == key {
			return s, nil
		}
	}
	return Unknown, fmt.Errorf("unknown output state %q", name)
}

// InCorpus reports whether ids in this state are part of the published
// corpus (index, metadata, stubs).
func (s State) InCorpus() bool {
	return s == Finalized || s == NeedsReview
}

// CanTransition reports whether moving from s to next is a forward step.
// Staying in the same state is allowed.
func (s State) CanTransition(next State) bool {
	if next == Unknown {
		return false
	}
	return s == Unknown || next >= s
}
