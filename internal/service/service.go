// Package service defines the backend-agnostic interface for task operations.
package service

import "context"

// Service defines the interface for task backend operations.
// All Google Tasks API calls go through this interface.
// Nothing outside internal/backend imports the Google SDK.
type Service interface {
	// DefaultList returns the user's default task list.
	DefaultList(ctx context.Context) (TaskList, error)

	// ListLists returns all task lists in API order.
	ListLists(ctx context.Context) ([]TaskList, error)

	// ResolveList finds a list by name (case-insensitive, trimmed).
	// Returns error if not found or ambiguous.
	ResolveList(ctx context.Context, name string) (TaskList, error)

	// ListTasks returns every open task of a list, following all pages.
	// Results carry Parent and Position so callers can rebuild the hierarchy.
	ListTasks(ctx context.Context, listID string) ([]Task, error)

	// InsertTask creates a task under task.Parent after task.Previous and
	// returns the stored record with its backend ID.
	InsertTask(ctx context.Context, listID string, task Task) (Task, error)

	// UpdateTask patches title and status of an existing task.
	UpdateTask(ctx context.Context, listID string, task Task) error

	// MoveTask reparents and/or reorders a task. Empty parentID moves the
	// task to the top level; empty previousID makes it the first sibling.
	MoveTask(ctx context.Context, listID, taskID, parentID, previousID string) error

	// DeleteTask deletes a task. The backend removes its subtasks too.
	DeleteTask(ctx context.Context, listID, taskID string) error
}
