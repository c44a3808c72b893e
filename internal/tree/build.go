package tree

import (
	"sort"

	"tasktree/internal/service"
)

// FromTasks builds a forest from flat backend records. Siblings are
// ordered by Position, falling back to input order on ties. Tasks whose
// parent is not in the input become roots. Tasks with subtasks become
// containers; the rest are leaves.
func FromTasks(tasks []service.Task) ([]*Node, error) {
	byID := make(map[string]service.Task, len(tasks))
	index := make(map[string]int, len(tasks))
	for i, t := range tasks {
		if t.ID == "" {
			return nil, ErrEmptyKey
		}
		if _, dup := byID[t.ID]; dup {
			return nil, &DuplicateKeyError{Key: t.ID}
		}
		byID[t.ID] = t
		index[t.ID] = i
	}

	children := make(map[string][]service.Task)
	var roots []service.Task
	for _, t := range tasks {
		if _, ok := byID[t.Parent]; t.Parent != "" && ok {
			children[t.Parent] = append(children[t.Parent], t)
		} else {
			roots = append(roots, t)
		}
	}

	byPosition := func(s []service.Task) {
		sort.SliceStable(s, func(i, j int) bool {
			if s[i].Position != s[j].Position {
				return s[i].Position < s[j].Position
			}
			return index[s[i].ID] < index[s[j].ID]
		})
	}

	visited := make(map[string]bool, len(tasks))
	var build func(t service.Task, order int) *Node
	build = func(t service.Task, order int) *Node {
		visited[t.ID] = true
		n := &Node{Key: t.ID, Title: t.Title, Status: t.Status, Order: order}
		kids := children[t.ID]
		if len(kids) == 0 {
			return n
		}
		byPosition(kids)
		n.Children = make([]*Node, 0, len(kids))
		for _, k := range kids {
			if visited[k.ID] {
				continue
			}
			n.Children = append(n.Children, build(k, len(n.Children)))
		}
		return n
	}

	byPosition(roots)
	forest := make([]*Node, 0, len(roots))
	for _, t := range roots {
		forest = append(forest, build(t, len(forest)))
	}
	// Parent cycles leave tasks unreachable from any root; surface them
	// at the top level instead of dropping them.
	for _, t := range tasks {
		if !visited[t.ID] {
			forest = append(forest, build(t, len(forest)))
		}
	}
	return forest, nil
}

// ToTask maps a node back to a backend record.
func ToTask(n *Node, parentKey, previousKey string) service.Task {
	return service.Task{
		ID:       n.Key,
		Title:    n.Title,
		Parent:   parentKey,
		Previous: previousKey,
		Order:    n.Order,
		Status:   n.Status,
	}
}
