// Package tree holds the hierarchical task forest and the relocation
// algorithm that backs drag-and-drop reordering and reparenting.
//
// A forest is an ordered slice of root nodes. Every node key is unique
// across the whole forest, since lookups are global. A node with a nil
// Children slice is a leaf; a non-nil slice, even an empty one, marks an
// expandable container.
package tree

// Node is one task in the forest.
type Node struct {
	Key      string  `json:"key"`
	Title    string  `json:"title"`
	Status   string  `json:"status,omitempty"`
	Order    int     `json:"order"`
	Expanded bool    `json:"expanded,omitempty"`
	Children []*Node `json:"children"`
}

// IsContainer reports whether the node carries a child slice.
func (n *Node) IsContainer() bool {
	return n.Children != nil
}

// Clone returns a deep copy of the node and its subtree. Leaf and empty
// container states are preserved.
func (n *Node) Clone() *Node {
	c := *n
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	return &c
}

// Clone returns a deep copy of a forest. The result shares no nodes or
// slices with the input.
func Clone(forest []*Node) []*Node {
	out := make([]*Node, len(forest))
	for i, n := range forest {
		out[i] = n.Clone()
	}
	return out
}

// Walk visits every node in pre-order. fn receives the node, its parent
// (nil for roots) and its depth. Returning false stops the walk.
func Walk(forest []*Node, fn func(n, parent *Node, depth int) bool) {
	walk(forest, nil, 0, fn)
}

func walk(siblings []*Node, parent *Node, depth int, fn func(n, parent *Node, depth int) bool) bool {
	for _, n := range siblings {
		if !fn(n, parent, depth) {
			return false
		}
		if !walk(n.Children, n, depth+1, fn) {
			return false
		}
	}
	return true
}

// Count returns the number of nodes in the forest.
func Count(forest []*Node) int {
	n := 0
	Walk(forest, func(*Node, *Node, int) bool {
		n++
		return true
	})
	return n
}

// Keys returns every key in pre-order.
func Keys(forest []*Node) []string {
	var keys []string
	Walk(forest, func(n, _ *Node, _ int) bool {
		keys = append(keys, n.Key)
		return true
	})
	return keys
}

// validate checks that keys are non-empty and unique.
func validate(forest []*Node) error {
	seen := make(map[string]struct{})
	var err error
	Walk(forest, func(n, _ *Node, _ int) bool {
		if n.Key == "" {
			err = ErrEmptyKey
			return false
		}
		if _, dup := seen[n.Key]; dup {
			err = &DuplicateKeyError{Key: n.Key}
			return false
		}
		seen[n.Key] = struct{}{}
		return true
	})
	return err
}
