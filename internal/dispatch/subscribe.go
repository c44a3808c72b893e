package dispatch

import (
	"context"
	"fmt"

	"tasktree/internal/eventbus"
)

// Subscribe registers the coordinator on bus under TopicDispatch. The
// subscriber accepts Descriptor, *Descriptor and []Descriptor payloads;
// invalid descriptors are dropped like in Enqueue. The returned
// subscriber can be passed to bus.Off.
func (c *Coordinator) Subscribe(bus *eventbus.Bus) *eventbus.Subscriber {
	return bus.On(TopicDispatch, eventbus.NewSubscriber("dispatch-coordinator", c.receive))
}

func (c *Coordinator) receive(_ context.Context, data any) error {
	switch d := data.(type) {
	case Descriptor:
		c.Enqueue(d)
	case *Descriptor:
		if d != nil {
			c.Enqueue(*d)
		}
	case []Descriptor:
		for _, each := range d {
			c.Enqueue(each)
		}
	default:
		return fmt.Errorf("%w: %T", ErrUnexpectedPayload, data)
	}
	return nil
}
