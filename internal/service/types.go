// Package service defines the backend-agnostic interface for task operations.
package service

import "errors"

var (
	// ErrNotFound is returned when a list or task does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAmbiguous is returned when a name matches more than one list.
	ErrAmbiguous = errors.New("ambiguous")
)

// Task status values as reported by Google Tasks.
const (
	StatusNeedsAction = "needsAction"
	StatusCompleted   = "completed"
)

// Task represents a single task record.
type Task struct {
	ID    string
	Title string

	// Parent is the ID of the parent task; empty for top-level tasks.
	Parent string

	// Previous is the ID of the preceding sibling; empty when the task is
	// first among its siblings. Only meaningful on writes.
	Previous string

	// Position is the backend's lexicographic ordering key among siblings.
	Position string

	// Order is the client-side sibling index.
	Order int

	// Moved marks a write whose Parent and Previous must be applied.
	// Top-level first position is expressed by Moved with both empty.
	Moved bool

	Status string // "needsAction" or "completed"
}

// TaskList represents a task list.
type TaskList struct {
	ID        string
	Title     string
	IsDefault bool
}
