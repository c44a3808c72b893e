package tree

import (
	"errors"
	"fmt"
)

var (
	// ErrNodeNotFound matches every *NodeNotFoundError.
	ErrNodeNotFound = errors.New("node not found")

	// ErrDuplicateKey matches every *DuplicateKeyError.
	ErrDuplicateKey = errors.New("duplicate node key")

	// ErrDropIntoDescendant is returned when the drop target lies inside
	// the dragged subtree.
	ErrDropIntoDescendant = errors.New("cannot drop a node into its own subtree")

	// ErrEmptyKey is returned for nodes without a key.
	ErrEmptyKey = errors.New("node key is empty")

	// ErrKeyChanged is returned when an update tries to rename a key.
	ErrKeyChanged = errors.New("node key cannot change")
)

// NodeNotFoundError reports a key absent from the forest. Role names the
// part of the request that referenced it ("drag", "drop", "parent", or
// empty for plain lookups).
type NodeNotFoundError struct {
	Key  string
	Role string
}

func (e *NodeNotFoundError) Error() string {
	if e.Role == "" {
		return fmt.Sprintf("node not found: %s", e.Key)
	}
	return fmt.Sprintf("%s node not found: %s", e.Role, e.Key)
}

// Is makes errors.Is(err, ErrNodeNotFound) true.
func (e *NodeNotFoundError) Is(target error) bool {
	return target == ErrNodeNotFound
}

// DuplicateKeyError reports a key that occurs twice.
type DuplicateKeyError struct {
	Key string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate node key: %s", e.Key)
}

// Is makes errors.Is(err, ErrDuplicateKey) true.
func (e *DuplicateKeyError) Is(target error) bool {
	return target == ErrDuplicateKey
}
