// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"tasktree/internal/service"
)

// DefaultListID is the ID used for the default list.
const DefaultListID = "@default"

// ErrNotFound is returned when a resource is not found.
var ErrNotFound = service.ErrNotFound

// ErrAmbiguous is returned when multiple matches are found.
var ErrAmbiguous = service.ErrAmbiguous

// Call records one mutating call made against the FakeService.
type Call struct {
	Method   string
	ListID   string
	TaskID   string
	Parent   string
	Previous string
	Title    string
}

// FakeService is an in-memory implementation of service.Service for testing.
//
// Tasks of a list are kept in one slice; the relative order of tasks that
// share a parent is their sibling order, like Google Tasks positions.
type FakeService struct {
	mu     sync.RWMutex
	lists  []service.TaskList
	tasks  map[string][]service.Task // listID -> tasks
	calls  []Call
	nextID int

	// Error injection for testing
	DefaultListErr error
	ListListsErr   error
	ResolveListErr error
	ListTasksErr   map[string]error // listID -> error
	InsertTaskErr  error
	UpdateTaskErr  error
	MoveTaskErr    error
	DeleteTaskErr  error
}

// NewFakeService creates a new FakeService with a default list.
func NewFakeService() *FakeService {
	fs := &FakeService{
		tasks:        make(map[string][]service.Task),
		ListTasksErr: make(map[string]error),
	}
	// Add default list
	fs.lists = []service.TaskList{
		{ID: DefaultListID, Title: "My Tasks", IsDefault: true},
	}
	fs.tasks[DefaultListID] = nil
	return fs
}

// AddList adds a list to the fake service.
func (f *FakeService) AddList(id, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists = append(f.lists, service.TaskList{ID: id, Title: title, IsDefault: false})
	if f.tasks[id] == nil {
		f.tasks[id] = nil
	}
}

// AddTask appends a top-level task to a list.
func (f *FakeService) AddTask(listID, taskID, title string) {
	f.AddSubtask(listID, "", taskID, title)
}

// AddSubtask appends a task as the last child of parentID.
func (f *FakeService) AddSubtask(listID, parentID, taskID, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[listID] = append(f.tasks[listID], service.Task{
		ID:     taskID,
		Title:  title,
		Parent: parentID,
		Status: service.StatusNeedsAction,
	})
}

// Task returns a stored task, including completed ones.
func (f *FakeService) Task(listID, taskID string) (service.Task, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, t := range f.tasks[listID] {
		if t.ID == taskID {
			return t, true
		}
	}
	return service.Task{}, false
}

// Children returns the IDs of parentID's children in sibling order.
func (f *FakeService) Children(listID, parentID string) []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var ids []string
	for _, t := range f.tasks[listID] {
		if t.Parent == parentID {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// Calls returns the mutating calls made so far.
func (f *FakeService) Calls() []Call {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]Call(nil), f.calls...)
}

// DefaultList implements service.Service.
func (f *FakeService) DefaultList(ctx context.Context) (service.TaskList, error) {
	if f.DefaultListErr != nil {
		return service.TaskList{}, f.DefaultListErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, l := range f.lists {
		if l.IsDefault {
			return l, nil
		}
	}
	return service.TaskList{}, errors.New("no default list")
}

// ListLists implements service.Service.
func (f *FakeService) ListLists(ctx context.Context) ([]service.TaskList, error) {
	if f.ListListsErr != nil {
		return nil, f.ListListsErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	result := make([]service.TaskList, len(f.lists))
	copy(result, f.lists)
	return result, nil
}

// ResolveList implements service.Service.
func (f *FakeService) ResolveList(ctx context.Context, name string) (service.TaskList, error) {
	if f.ResolveListErr != nil {
		return service.TaskList{}, f.ResolveListErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	name = strings.TrimSpace(name)
	nameLower := strings.ToLower(name)

	var matches []service.TaskList
	for _, l := range f.lists {
		if strings.ToLower(strings.TrimSpace(l.Title)) == nameLower {
			matches = append(matches, l)
		}
	}

	switch len(matches) {
	case 0:
		return service.TaskList{}, fmt.Errorf("list %w: %s", ErrNotFound, name)
	case 1:
		return matches[0], nil
	default:
		return service.TaskList{}, fmt.Errorf("%w list name: %s", ErrAmbiguous, name)
	}
}

// ListTasks implements service.Service. Positions are zero-padded sibling
// indexes, so they sort like Google Tasks positions.
func (f *FakeService) ListTasks(ctx context.Context, listID string) ([]service.Task, error) {
	if err, ok := f.ListTasksErr[listID]; ok && err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	tasks, ok := f.tasks[listID]
	if !ok {
		return nil, ErrNotFound
	}

	seen := make(map[string]int)
	var open []service.Task
	for _, t := range tasks {
		pos := seen[t.Parent]
		seen[t.Parent]++
		if t.Status != service.StatusNeedsAction {
			continue
		}
		t.Position = fmt.Sprintf("%020d", pos)
		open = append(open, t)
	}
	return open, nil
}

// InsertTask implements service.Service.
func (f *FakeService) InsertTask(ctx context.Context, listID string, task service.Task) (service.Task, error) {
	if f.InsertTaskErr != nil {
		return service.Task{}, f.InsertTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.tasks[listID]; !ok {
		return service.Task{}, ErrNotFound
	}
	if task.Parent != "" && f.indexLocked(listID, task.Parent) < 0 {
		return service.Task{}, ErrNotFound
	}

	f.nextID++
	created := service.Task{
		ID:     fmt.Sprintf("srv-%d", f.nextID),
		Title:  task.Title,
		Parent: task.Parent,
		Status: task.Status,
	}
	if created.Status == "" {
		created.Status = service.StatusNeedsAction
	}
	f.placeLocked(listID, created, task.Previous)
	f.calls = append(f.calls, Call{Method: "InsertTask", ListID: listID, TaskID: created.ID, Parent: task.Parent, Previous: task.Previous, Title: task.Title})
	return created, nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, listID string, task service.Task) error {
	if f.UpdateTaskErr != nil {
		return f.UpdateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.indexLocked(listID, task.ID)
	if i < 0 {
		return ErrNotFound
	}
	if task.Title != "" {
		f.tasks[listID][i].Title = task.Title
	}
	if task.Status != "" {
		f.tasks[listID][i].Status = task.Status
	}
	f.calls = append(f.calls, Call{Method: "UpdateTask", ListID: listID, TaskID: task.ID, Title: task.Title})
	return nil
}

// MoveTask implements service.Service.
func (f *FakeService) MoveTask(ctx context.Context, listID, taskID, parentID, previousID string) error {
	if f.MoveTaskErr != nil {
		return f.MoveTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.indexLocked(listID, taskID)
	if i < 0 {
		return ErrNotFound
	}
	if parentID != "" && f.indexLocked(listID, parentID) < 0 {
		return ErrNotFound
	}
	task := f.tasks[listID][i]
	f.tasks[listID] = append(f.tasks[listID][:i], f.tasks[listID][i+1:]...)
	task.Parent = parentID
	f.placeLocked(listID, task, previousID)
	f.calls = append(f.calls, Call{Method: "MoveTask", ListID: listID, TaskID: taskID, Parent: parentID, Previous: previousID})
	return nil
}

// DeleteTask implements service.Service. Subtasks are deleted with their
// parent.
func (f *FakeService) DeleteTask(ctx context.Context, listID, taskID string) error {
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.indexLocked(listID, taskID) < 0 {
		return ErrNotFound
	}
	doomed := map[string]bool{taskID: true}
	for changed := true; changed; {
		changed = false
		for _, t := range f.tasks[listID] {
			if doomed[t.Parent] && !doomed[t.ID] {
				doomed[t.ID] = true
				changed = true
			}
		}
	}
	kept := f.tasks[listID][:0]
	for _, t := range f.tasks[listID] {
		if !doomed[t.ID] {
			kept = append(kept, t)
		}
	}
	f.tasks[listID] = kept
	f.calls = append(f.calls, Call{Method: "DeleteTask", ListID: listID, TaskID: taskID})
	return nil
}

func (f *FakeService) indexLocked(listID, taskID string) int {
	for i, t := range f.tasks[listID] {
		if t.ID == taskID {
			return i
		}
	}
	return -1
}

// placeLocked inserts task right after previousID, or before the first
// existing sibling when previousID is empty.
func (f *FakeService) placeLocked(listID string, task service.Task, previousID string) {
	tasks := f.tasks[listID]
	at := len(tasks)
	if previousID != "" {
		if i := f.indexLocked(listID, previousID); i >= 0 {
			at = i + 1
		}
	} else {
		for i, t := range tasks {
			if t.Parent == task.Parent {
				at = i
				break
			}
		}
	}
	tasks = append(tasks, service.Task{})
	copy(tasks[at+1:], tasks[at:])
	tasks[at] = task
	f.tasks[listID] = tasks
}
