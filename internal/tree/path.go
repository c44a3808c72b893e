package tree

import (
	"fmt"
	"strconv"
	"strings"
)

// Path addresses a node by 1-based sibling indexes from the top level,
// written "2.1.3".
type Path []int

// String formats the path with dots.
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, n := range p {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ".")
}

// ParsePath parses a dotted path such as "2.1.3".
func ParsePath(s string) (Path, error) {
	if s == "" {
		return nil, fmt.Errorf("invalid task reference: %q", s)
	}
	parts := strings.Split(s, ".")
	p := make(Path, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 || strings.HasPrefix(part, "+") {
			return nil, fmt.Errorf("invalid task reference: %s", s)
		}
		p[i] = n
	}
	return p, nil
}

// Resolve returns the node addressed by p.
func (p Path) Resolve(forest []*Node) (*Node, bool) {
	siblings := forest
	var n *Node
	for _, i := range p {
		if i < 1 || i > len(siblings) {
			return nil, false
		}
		n = siblings[i-1]
		siblings = n.Children
	}
	return n, n != nil
}

// PathOf returns the path of key, or nil when absent.
func PathOf(forest []*Node, key string) Path {
	for i, n := range forest {
		if n.Key == key {
			return Path{i + 1}
		}
		if sub := PathOf(n.Children, key); sub != nil {
			return append(Path{i + 1}, sub...)
		}
	}
	return nil
}
