// Package sink applies dispatch batches to a task backend.
package sink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"tasktree/internal/dispatch"
	"tasktree/internal/service"
)

// Sink writes descriptors to one task list. It is the coordinator's flush
// function.
//
// Tasks created locally carry a provisional key until the backend assigns
// an ID. Sink remembers the mapping so later records that reference the
// provisional key (as ID, Parent or Previous) reach the right task.
type Sink struct {
	svc    service.Service
	listID string
	logger *slog.Logger

	mu      sync.Mutex
	aliases map[string]string // provisional key -> backend ID
}

// New returns a Sink for listID.
func New(svc service.Service, listID string, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{
		svc:     svc,
		listID:  listID,
		logger:  logger,
		aliases: make(map[string]string),
	}
}

// Resolve returns the backend ID for key.
func (s *Sink) Resolve(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.aliases[key]; ok {
		return id
	}
	return key
}

// Flush applies every record of every descriptor in order. A failing
// record does not stop the rest; all failures are returned joined.
func (s *Sink) Flush(ctx context.Context, batch []dispatch.Descriptor) error {
	var errs []error
	for _, d := range batch {
		for _, task := range d.Payloads {
			if err := s.apply(ctx, d.Action, task); err != nil {
				s.logger.Warn("write failed",
					"action", d.Action,
					"task", task.ID,
					"error", err)
				errs = append(errs, fmt.Errorf("%s %s: %w", d.Action, task.ID, err))
			}
		}
	}
	return errors.Join(errs...)
}

func (s *Sink) apply(ctx context.Context, action dispatch.Action, task service.Task) error {
	key := task.ID
	task.ID = s.Resolve(task.ID)
	task.Parent = s.Resolve(task.Parent)
	task.Previous = s.Resolve(task.Previous)

	switch action {
	case dispatch.ActionAdd:
		created, err := s.svc.InsertTask(ctx, s.listID, task)
		if err != nil {
			return err
		}
		if created.ID != key {
			s.mu.Lock()
			s.aliases[key] = created.ID
			s.mu.Unlock()
		}
		s.logger.Debug("task created", "key", key, "id", created.ID)
		return nil

	case dispatch.ActionUpdate:
		if err := s.svc.UpdateTask(ctx, s.listID, task); err != nil {
			return err
		}
		if task.Moved {
			return s.svc.MoveTask(ctx, s.listID, task.ID, task.Parent, task.Previous)
		}
		return nil

	case dispatch.ActionDelete:
		err := s.svc.DeleteTask(ctx, s.listID, task.ID)
		// Deleting a parent removes its subtasks, so later records of the
		// same subtree may already be gone.
		if errors.Is(err, service.ErrNotFound) {
			return nil
		}
		return err
	}
	return fmt.Errorf("%w: %q", dispatch.ErrUnknownAction, action)
}
