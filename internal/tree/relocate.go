package tree

// DropRequest describes the end of a drag gesture.
type DropRequest struct {
	// DragKey is the node being moved.
	DragKey string

	// DropKey is the node the gesture ended on.
	DropKey string

	// DropToGap is true when the gesture targeted the space between rows
	// instead of a row body.
	DropToGap bool

	// DropPosition is the offset between the cursor and the target's own
	// nesting level: -1 means before the target, 1 just below it.
	DropPosition int
}

// Placement is where a relocated node ends up relative to the target.
type Placement int

const (
	// PlaceFirstChild inserts the node as the target's first child.
	PlaceFirstChild Placement = iota

	// PlaceBefore inserts the node immediately before the target.
	PlaceBefore

	// PlaceAfter inserts the node immediately after the target.
	PlaceAfter
)

func (p Placement) String() string {
	switch p {
	case PlaceFirstChild:
		return "first-child"
	case PlaceBefore:
		return "before"
	case PlaceAfter:
		return "after"
	default:
		return "unknown"
	}
}

// Classify decides the placement of a drop on target. The cases are
// evaluated in order:
//
//  1. a drop on the row body makes the node the target's first child;
//  2. a gap drop just below an expanded target with children
//     (DropPosition == 1) also makes it the first child;
//  3. any other gap drop makes it a sibling, before the target when
//     DropPosition is -1 and after it otherwise.
func Classify(target *Node, req DropRequest) Placement {
	switch {
	case !req.DropToGap:
		return PlaceFirstChild
	case len(target.Children) > 0 && target.Expanded && req.DropPosition == 1:
		return PlaceFirstChild
	case req.DropPosition == -1:
		return PlaceBefore
	default:
		return PlaceAfter
	}
}

// Move reports the outcome of a relocation.
type Move struct {
	// Node is the relocated node.
	Node *Node

	// ParentKey is the new parent's key, "" for the top level.
	ParentKey string

	// PreviousKey is the key of the new preceding sibling, "" when first.
	PreviousKey string

	Placement Placement

	// Renumbered lists nodes whose Order changed, the moved node included.
	Renumbered []*Node
}

// Relocate moves req.DragKey according to the drop semantics of Classify
// and returns the new forest. The input forest is never modified: the
// result is built on a deep copy, so a failed or abandoned relocation
// leaves no partial state behind.
//
// Unknown keys fail with a *NodeNotFoundError and dropping a node inside
// its own subtree fails with ErrDropIntoDescendant; in both cases the
// input forest is returned. Dropping a node onto itself is a no-op.
func Relocate(forest []*Node, req DropRequest, policy RenumberPolicy) ([]*Node, Move, error) {
	dragLoc, ok := Find(forest, req.DragKey)
	if !ok {
		return forest, Move{}, &NodeNotFoundError{Key: req.DragKey, Role: "drag"}
	}
	dropLoc, ok := Find(forest, req.DropKey)
	if !ok {
		return forest, Move{}, &NodeNotFoundError{Key: req.DropKey, Role: "drop"}
	}

	roots := Clone(forest)

	if req.DragKey == req.DropKey {
		loc, _ := Find(roots, req.DragKey)
		return roots, Move{
			Node:        loc.Node,
			ParentKey:   loc.ParentKey(),
			PreviousKey: previousKey(*siblingsOf(&roots, loc), loc.Index),
			Placement:   PlaceAfter,
		}, nil
	}
	if _, inside := Find(dragLoc.Node.Children, req.DropKey); inside {
		return forest, Move{}, ErrDropIntoDescendant
	}

	// Classify against the target as the gesture saw it, before the
	// dragged node is detached from it.
	placement := Classify(dropLoc.Node, req)

	// Detach.
	drag, _ := Find(roots, req.DragKey)
	from := siblingsOf(&roots, drag)
	*from = removeAt(*from, drag.Index)

	// Re-locate the target: detaching may have shifted its index.
	drop, _ := Find(roots, req.DropKey)
	var (
		to        *[]*Node
		at        int
		parentKey string
	)
	switch placement {
	case PlaceFirstChild:
		if drop.Node.Children == nil {
			drop.Node.Children = []*Node{}
		}
		to, at, parentKey = &drop.Node.Children, 0, drop.Node.Key
	case PlaceBefore:
		to, at, parentKey = siblingsOf(&roots, drop), drop.Index, drop.ParentKey()
	default:
		to, at, parentKey = siblingsOf(&roots, drop), drop.Index+1, drop.ParentKey()
	}
	*to = insertAt(*to, at, drag.Node)

	mv := Move{
		Node:        drag.Node,
		ParentKey:   parentKey,
		PreviousKey: previousKey(*to, at),
		Placement:   placement,
	}
	if policy.onStructuralChange() {
		mv.Renumbered = appendUnique(mv.Renumbered, renumber(*from)...)
		mv.Renumbered = appendUnique(mv.Renumbered, renumber(*to)...)
	}
	return roots, mv, nil
}
