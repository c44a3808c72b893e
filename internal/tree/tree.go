package tree

import "sync"

// Tree owns a forest. Every mutation is computed on a copy and swapped in
// only on success, so readers never observe a half-applied change. Nodes
// handed out by Tree are copies; callers cannot alias the owned forest.
type Tree struct {
	mu     sync.RWMutex
	roots  []*Node
	policy RenumberPolicy
}

// New takes ownership of a deep copy of roots. Keys must be non-empty and
// unique across the forest.
func New(roots []*Node, policy RenumberPolicy) (*Tree, error) {
	if err := validate(roots); err != nil {
		return nil, err
	}
	return &Tree{roots: Clone(roots), policy: policy}, nil
}

// Snapshot returns a deep copy of the forest.
func (t *Tree) Snapshot() []*Node {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Clone(t.roots)
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Count(t.roots)
}

// Entry is a detached view of a node and its position.
type Entry struct {
	Node        *Node
	ParentKey   string
	PreviousKey string
	Index       int
	Depth       int
}

// Lookup returns a copy of the node stored under key.
func (t *Tree) Lookup(key string) (Entry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	loc, ok := Find(t.roots, key)
	if !ok {
		return Entry{}, false
	}
	return Entry{
		Node:        loc.Node.Clone(),
		ParentKey:   loc.ParentKey(),
		PreviousKey: previousKey(*siblingsOf(&t.roots, loc), loc.Index),
		Index:       loc.Index,
		Depth:       loc.Depth,
	}, true
}

// Relocate applies a drop request. See the package-level Relocate.
func (t *Tree) Relocate(req DropRequest) (Move, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	roots, mv, err := Relocate(t.roots, req, t.policy)
	if err != nil {
		return Move{}, err
	}
	t.roots = roots
	return detachMove(mv), nil
}

// Add inserts node (and any children it carries) under parentKey, or at
// the top level when parentKey is empty. A negative index appends. A parent
// that was a leaf becomes a container.
func (t *Tree) Add(parentKey string, node *Node, index int) (Move, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	roots := Clone(t.roots)
	n := node.Clone()
	if err := validate(append(roots[:len(roots):len(roots)], n)); err != nil {
		return Move{}, err
	}

	to := &roots
	if parentKey != "" {
		parent, ok := Find(roots, parentKey)
		if !ok {
			return Move{}, &NodeNotFoundError{Key: parentKey, Role: "parent"}
		}
		if parent.Node.Children == nil {
			parent.Node.Children = []*Node{}
		}
		to = &parent.Node.Children
	}
	if index < 0 || index > len(*to) {
		index = len(*to)
	}
	n.Order = index
	*to = insertAt(*to, index, n)

	mv := Move{
		Node:        n,
		ParentKey:   parentKey,
		PreviousKey: previousKey(*to, index),
		Placement:   PlaceAfter,
	}
	if t.policy.onStructuralChange() {
		mv.Renumbered = renumber(*to)
	}
	t.roots = roots
	return detachMove(mv), nil
}

// Removal reports the outcome of Delete.
type Removal struct {
	// Removed holds the deleted node and its descendants in pre-order.
	Removed []*Node

	ParentKey string

	// Renumbered lists remaining siblings whose Order changed.
	Renumbered []*Node
}

// Keys returns the keys of every removed node.
func (r Removal) Keys() []string {
	keys := make([]string, len(r.Removed))
	for i, n := range r.Removed {
		keys[i] = n.Key
	}
	return keys
}

// Delete removes key and its subtree.
func (t *Tree) Delete(key string) (Removal, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	roots := Clone(t.roots)
	loc, ok := Find(roots, key)
	if !ok {
		return Removal{}, &NodeNotFoundError{Key: key}
	}
	from := siblingsOf(&roots, loc)
	*from = removeAt(*from, loc.Index)

	var rm Removal
	rm.ParentKey = loc.ParentKey()
	Walk([]*Node{loc.Node}, func(n, _ *Node, _ int) bool {
		rm.Removed = append(rm.Removed, n.Clone())
		return true
	})
	if t.policy.onDelete() {
		for _, n := range renumber(*from) {
			rm.Renumbered = append(rm.Renumbered, n.Clone())
		}
	}
	t.roots = roots
	return rm, nil
}

// Update applies fn to a copy of the node and stores the content fields
// (Title, Status, Expanded). Key and structure cannot be changed through
// Update. Returns the updated node.
func (t *Tree) Update(key string, fn func(n *Node)) (*Node, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	roots := Clone(t.roots)
	loc, ok := Find(roots, key)
	if !ok {
		return nil, &NodeNotFoundError{Key: key}
	}
	edit := loc.Node.Clone()
	fn(edit)
	if edit.Key != key {
		return nil, ErrKeyChanged
	}
	loc.Node.Title = edit.Title
	loc.Node.Status = edit.Status
	loc.Node.Expanded = edit.Expanded
	t.roots = roots
	return loc.Node.Clone(), nil
}

func detachMove(mv Move) Move {
	out := mv
	out.Node = mv.Node.Clone()
	out.Renumbered = make([]*Node, len(mv.Renumbered))
	for i, n := range mv.Renumbered {
		out.Renumbered[i] = n.Clone()
	}
	return out
}
