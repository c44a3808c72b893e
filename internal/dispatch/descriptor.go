// Package dispatch batches change descriptors and flushes them to a
// backing store on a fixed cadence, with at most one flush in flight.
package dispatch

import (
	"errors"
	"fmt"

	"tasktree/internal/service"
)

// TopicDispatch is the bus topic carrying Descriptor payloads.
const TopicDispatch = "dispatch"

// Action is the kind of change a descriptor carries.
type Action string

const (
	ActionAdd    Action = "ADD"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

var (
	// ErrEmptyDescriptor is returned for descriptors with no payloads.
	ErrEmptyDescriptor = errors.New("descriptor has no payloads")

	// ErrUnknownAction is returned for actions other than ADD, UPDATE
	// and DELETE.
	ErrUnknownAction = errors.New("unknown descriptor action")

	// ErrAlreadyStarted is returned by Start on an armed coordinator.
	ErrAlreadyStarted = errors.New("coordinator already started")

	// ErrUnexpectedPayload is returned by the bus subscriber for payloads
	// that are not descriptors.
	ErrUnexpectedPayload = errors.New("unexpected dispatch payload")

	// ErrFlushPanic wraps a panic recovered from the flush function.
	ErrFlushPanic = errors.New("flush panicked")
)

// Descriptor describes one batch of additions, updates or deletions.
type Descriptor struct {
	Action   Action
	Payloads []service.Task
}

// Validate reports whether the descriptor carries a meaningful action.
func (d Descriptor) Validate() error {
	if len(d.Payloads) == 0 {
		return ErrEmptyDescriptor
	}
	switch d.Action {
	case ActionAdd, ActionUpdate, ActionDelete:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownAction, d.Action)
}
