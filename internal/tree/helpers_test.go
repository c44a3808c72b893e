package tree

import (
	"strings"
)

func leaf(key string) *Node {
	return &Node{Key: key, Title: key}
}

func container(key string, children ...*Node) *Node {
	if children == nil {
		children = []*Node{}
	}
	return &Node{Key: key, Title: key, Children: children}
}

func expanded(n *Node) *Node {
	n.Expanded = true
	return n
}

// shape renders a forest as "A(B,C[]),D": parentheses list children,
// "[]" marks an empty container.
func shape(forest []*Node) string {
	parts := make([]string, len(forest))
	for i, n := range forest {
		switch {
		case n.Children == nil:
			parts[i] = n.Key
		case len(n.Children) == 0:
			parts[i] = n.Key + "[]"
		default:
			parts[i] = n.Key + "(" + shape(n.Children) + ")"
		}
	}
	return strings.Join(parts, ",")
}

func orders(siblings []*Node) []int {
	out := make([]int, len(siblings))
	for i, n := range siblings {
		out[i] = n.Order
	}
	return out
}

// sample is:
//
//	A
//	  A1
//	  A2
//	B
//	C
//	  C1
//	    C1a
//
// Every sibling slice is numbered from zero.
func sample() []*Node {
	return numbered([]*Node{
		container("A", leaf("A1"), leaf("A2")),
		leaf("B"),
		container("C", container("C1", leaf("C1a"))),
	})
}

func numbered(forest []*Node) []*Node {
	for i, n := range forest {
		n.Order = i
		numbered(n.Children)
	}
	return forest
}
