package tree

// Location is the result of a lookup: the node, where it sits, and how
// deep.
type Location struct {
	Node *Node

	// Parent is nil for root nodes.
	Parent *Node

	// Index is the position in the parent's child slice, or in the forest
	// for roots.
	Index int

	Depth int
}

// ParentKey returns the parent's key, or "" for roots.
func (l Location) ParentKey() string {
	if l.Parent == nil {
		return ""
	}
	return l.Parent.Key
}

// Find locates key with a pre-order depth-first search. The first match
// is authoritative.
func Find(forest []*Node, key string) (Location, bool) {
	return find(forest, nil, 0, key)
}

func find(siblings []*Node, parent *Node, depth int, key string) (Location, bool) {
	for i, n := range siblings {
		if n.Key == key {
			return Location{Node: n, Parent: parent, Index: i, Depth: depth}, true
		}
		if len(n.Children) > 0 {
			if loc, ok := find(n.Children, n, depth+1, key); ok {
				return loc, true
			}
		}
	}
	return Location{}, false
}

// siblingsOf returns a mutable handle to the slice holding loc.Node:
// either the forest itself or the parent's child slice.
func siblingsOf(roots *[]*Node, loc Location) *[]*Node {
	if loc.Parent == nil {
		return roots
	}
	return &loc.Parent.Children
}

// previousKey returns the key of the sibling before index i, or "".
func previousKey(siblings []*Node, i int) string {
	if i <= 0 || i > len(siblings) {
		return ""
	}
	return siblings[i-1].Key
}

func removeAt(s []*Node, i int) []*Node {
	return append(s[:i], s[i+1:]...)
}

func insertAt(s []*Node, i int, n *Node) []*Node {
	if i >= len(s) {
		return append(s, n)
	}
	s = append(s, nil)
	copy(s[i+1:], s[i:])
	s[i] = n
	return s
}
