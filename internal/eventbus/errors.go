package eventbus

import (
	"errors"
	"fmt"
)

// ErrSubscriberPanic wraps panics recovered from subscribers.
var ErrSubscriberPanic = errors.New("subscriber panicked")

// SubscriberError reports a subscriber that failed during Emit.
type SubscriberError struct {
	Topic      string
	Subscriber string
	Err        error

	// Stack is set when the subscriber panicked.
	Stack string
}

func (e *SubscriberError) Error() string {
	return fmt.Sprintf("subscriber %q on topic %q: %v", e.Subscriber, e.Topic, e.Err)
}

// Unwrap returns the underlying error.
func (e *SubscriberError) Unwrap() error {
	return e.Err
}
