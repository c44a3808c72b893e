// Package session composes the task tree, the event bus and the dispatch
// coordinator for one task list.
//
// A session loads the list once, applies edits to the local tree, and
// publishes every change on the bus. The coordinator, subscribed to the
// dispatch topic, batches the changes and writes them through a sink on
// its own cadence. Close drains whatever is still queued.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"tasktree/internal/clock"
	"tasktree/internal/config"
	"tasktree/internal/dispatch"
	"tasktree/internal/eventbus"
	"tasktree/internal/service"
	"tasktree/internal/sink"
	"tasktree/internal/tree"
)

// TopicRemoved carries the keys ([]string) of nodes that left the open
// view, through completion or deletion.
const TopicRemoved = "removed"

var (
	// ErrClosed is returned by operations on a closed session.
	ErrClosed = errors.New("session closed")

	// ErrTaskNotFound is returned when a reference matches no task.
	ErrTaskNotFound = errors.New("task not found")
)

// Session is an open task list.
type Session struct {
	listID string
	tree   *tree.Tree
	bus    *eventbus.Bus
	coord  *dispatch.Coordinator
	sink   *sink.Sink
	sub    *eventbus.Subscriber
	logger *slog.Logger

	// mu is held shared by edits from their closed check until their
	// descriptors are published, and exclusively by Close.
	mu     sync.RWMutex
	closed bool
}

// Option configures Open.
type Option func(*options)

type options struct {
	clock clock.Clock
}

// WithClock sets the clock driving the coordinator.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// Open loads every open task of listID and starts the coordinator.
func Open(ctx context.Context, svc service.Service, listID string, settings config.Settings, logger *slog.Logger, opts ...Option) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	o := options{clock: clock.Real()}
	for _, opt := range opts {
		opt(&o)
	}

	tasks, err := svc.ListTasks(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("loading tasks: %w", err)
	}
	forest, err := tree.FromTasks(tasks)
	if err != nil {
		return nil, fmt.Errorf("building tree: %w", err)
	}
	t, err := tree.New(forest, settings.Renumber)
	if err != nil {
		return nil, fmt.Errorf("building tree: %w", err)
	}

	logger = logger.With("list", listID)
	s := &Session{
		listID: listID,
		tree:   t,
		bus:    eventbus.New(eventbus.WithLogger(logger)),
		sink:   sink.New(svc, listID, logger),
		logger: logger,
	}
	s.coord = dispatch.NewCoordinator(s.sink.Flush,
		dispatch.WithClock(o.clock),
		dispatch.WithLogger(logger),
		dispatch.WithFlushTimeout(settings.FlushTimeout))
	s.sub = s.coord.Subscribe(s.bus)
	if err := s.coord.Start(settings.FlushInterval); err != nil {
		return nil, err
	}

	logger.Debug("session opened", "tasks", t.Len())
	return s, nil
}

// ListID returns the ID of the open list.
func (s *Session) ListID() string { return s.listID }

// Bus returns the session's event bus.
func (s *Session) Bus() *eventbus.Bus { return s.bus }

// Snapshot returns a copy of the forest.
func (s *Session) Snapshot() []*tree.Node { return s.tree.Snapshot() }

// Pending returns the number of descriptors waiting for a flush.
func (s *Session) Pending() int { return s.coord.Len() }

// Resolve maps a reference to a node key. A reference is either a dotted
// path such as "2.1" or a task key.
func (s *Session) Resolve(ref string) (string, error) {
	if p, err := tree.ParsePath(ref); err == nil {
		if n, ok := p.Resolve(s.tree.Snapshot()); ok {
			return n.Key, nil
		}
	}
	if _, ok := s.tree.Lookup(ref); ok {
		return ref, nil
	}
	return "", fmt.Errorf("%w: %s", ErrTaskNotFound, ref)
}

// Move relocates a node as a drop gesture would and publishes an UPDATE
// for the moved node and every renumbered sibling. Dropping a node on
// itself changes nothing and publishes nothing.
func (s *Session) Move(ctx context.Context, req tree.DropRequest) (tree.Move, error) {
	done, err := s.begin()
	if err != nil {
		return tree.Move{}, err
	}
	defer done()
	mv, err := s.tree.Relocate(req)
	if err != nil {
		return tree.Move{}, err
	}
	if req.DragKey == req.DropKey {
		return mv, nil
	}

	moved := tree.ToTask(mv.Node, mv.ParentKey, mv.PreviousKey)
	moved.Moved = true
	payloads := []service.Task{moved}
	for _, n := range mv.Renumbered {
		if n.Key != mv.Node.Key {
			payloads = append(payloads, tree.ToTask(n, "", ""))
		}
	}
	return mv, s.publish(ctx, dispatch.ActionUpdate, payloads)
}

// Add appends a new task under parentKey, or at the top level when
// parentKey is empty, and publishes an ADD. The node carries a
// provisional key until the backend assigns an ID.
func (s *Session) Add(ctx context.Context, parentKey, title string) (*tree.Node, error) {
	done, err := s.begin()
	if err != nil {
		return nil, err
	}
	defer done()
	node := &tree.Node{
		Key:    "local-" + uuid.NewString(),
		Title:  title,
		Status: service.StatusNeedsAction,
	}
	mv, err := s.tree.Add(parentKey, node, -1)
	if err != nil {
		return nil, err
	}

	payloads := []service.Task{tree.ToTask(mv.Node, mv.ParentKey, mv.PreviousKey)}
	for _, n := range mv.Renumbered {
		if n.Key != mv.Node.Key {
			payloads = append(payloads, tree.ToTask(n, "", ""))
		}
	}
	if err := s.publish(ctx, dispatch.ActionAdd, payloads[:1]); err != nil {
		return mv.Node, err
	}
	if len(payloads) > 1 {
		return mv.Node, s.publish(ctx, dispatch.ActionUpdate, payloads[1:])
	}
	return mv.Node, nil
}

// Rename changes a task's title and publishes an UPDATE.
func (s *Session) Rename(ctx context.Context, key, title string) (*tree.Node, error) {
	done, err := s.begin()
	if err != nil {
		return nil, err
	}
	defer done()
	n, err := s.tree.Update(key, func(n *tree.Node) {
		n.Title = title
	})
	if err != nil {
		return nil, err
	}
	return n, s.publish(ctx, dispatch.ActionUpdate, []service.Task{{ID: n.Key, Title: n.Title, Order: n.Order}})
}

// SetExpanded records whether a container is shown open. Expansion is
// view state: it affects later drops but is never written to the backend.
func (s *Session) SetExpanded(key string, expanded bool) error {
	done, err := s.begin()
	if err != nil {
		return err
	}
	defer done()
	_, err = s.tree.Update(key, func(n *tree.Node) {
		n.Expanded = expanded
	})
	return err
}

// Complete marks a task and its subtasks completed. They leave the open
// view; their keys are published on TopicRemoved.
func (s *Session) Complete(ctx context.Context, key string) (tree.Removal, error) {
	done, err := s.begin()
	if err != nil {
		return tree.Removal{}, err
	}
	defer done()
	rm, err := s.tree.Delete(key)
	if err != nil {
		return tree.Removal{}, err
	}

	payloads := make([]service.Task, 0, len(rm.Removed))
	for _, n := range rm.Removed {
		payloads = append(payloads, service.Task{ID: n.Key, Status: service.StatusCompleted})
	}
	return rm, s.afterRemoval(ctx, dispatch.ActionUpdate, payloads, rm)
}

// Remove deletes a task and its subtasks and publishes a DELETE. Their
// keys are published on TopicRemoved.
func (s *Session) Remove(ctx context.Context, key string) (tree.Removal, error) {
	done, err := s.begin()
	if err != nil {
		return tree.Removal{}, err
	}
	defer done()
	rm, err := s.tree.Delete(key)
	if err != nil {
		return tree.Removal{}, err
	}

	payloads := make([]service.Task, 0, len(rm.Removed))
	for _, n := range rm.Removed {
		payloads = append(payloads, service.Task{ID: n.Key})
	}
	return rm, s.afterRemoval(ctx, dispatch.ActionDelete, payloads, rm)
}

func (s *Session) afterRemoval(ctx context.Context, action dispatch.Action, payloads []service.Task, rm tree.Removal) error {
	errs := []error{s.publish(ctx, action, payloads)}
	if len(rm.Renumbered) > 0 {
		renumbered := make([]service.Task, len(rm.Renumbered))
		for i, n := range rm.Renumbered {
			renumbered[i] = tree.ToTask(n, "", "")
		}
		errs = append(errs, s.publish(ctx, dispatch.ActionUpdate, renumbered))
	}
	errs = append(errs, s.bus.Emit(ctx, TopicRemoved, rm.Keys()))
	return errors.Join(errs...)
}

// Flush writes queued changes now, waiting for any flush in flight.
func (s *Session) Flush(ctx context.Context) error {
	return s.coord.Drain(ctx)
}

// Close waits for edits in progress, stops the coordinator and writes
// whatever is still queued. Calling Close more than once is a no-op.
// Bus subscribers must not call Close.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.coord.Stop()
	s.bus.Off(dispatch.TopicDispatch, s.sub)
	err := s.coord.Drain(ctx)
	s.logger.Debug("session closed", "error", err)
	return err
}

// begin keeps the session open until the returned func is called.
func (s *Session) begin() (func(), error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, ErrClosed
	}
	return s.mu.RUnlock, nil
}

func (s *Session) publish(ctx context.Context, action dispatch.Action, payloads []service.Task) error {
	if err := s.bus.Emit(ctx, dispatch.TopicDispatch, dispatch.Descriptor{Action: action, Payloads: payloads}); err != nil {
		return fmt.Errorf("publishing %s: %w", action, err)
	}
	return nil
}
