package tree

import "fmt"

// RenumberPolicy decides when sibling Order fields are rewritten to be
// contiguous from zero. Relocation, insertion and deletion all share the
// same renumbering routine; the policy only decides whether it runs.
type RenumberPolicy int

const (
	// RenumberAlways renumbers after every structural change.
	RenumberAlways RenumberPolicy = iota

	// RenumberOnDelete renumbers only the siblings left behind by a delete.
	RenumberOnDelete

	// RenumberNever leaves Order untouched.
	RenumberNever
)

// String returns the configuration name of the policy.
func (p RenumberPolicy) String() string {
	switch p {
	case RenumberAlways:
		return "always"
	case RenumberOnDelete:
		return "on-delete"
	case RenumberNever:
		return "never"
	default:
		return fmt.Sprintf("RenumberPolicy(%d)", int(p))
	}
}

// ParseRenumberPolicy parses "always", "on-delete" or "never".
func ParseRenumberPolicy(s string) (RenumberPolicy, error) {
	switch s {
	case "always", "":
		return RenumberAlways, nil
	case "on-delete":
		return RenumberOnDelete, nil
	case "never":
		return RenumberNever, nil
	}
	return 0, fmt.Errorf("invalid renumber policy: %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (p RenumberPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *RenumberPolicy) UnmarshalText(text []byte) error {
	v, err := ParseRenumberPolicy(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

func (p RenumberPolicy) onStructuralChange() bool { return p == RenumberAlways }

func (p RenumberPolicy) onDelete() bool {
	return p == RenumberAlways || p == RenumberOnDelete
}

// renumber sets Order to each sibling's index and returns the nodes whose
// Order changed.
func renumber(siblings []*Node) []*Node {
	var changed []*Node
	for i, n := range siblings {
		if n.Order != i {
			n.Order = i
			changed = append(changed, n)
		}
	}
	return changed
}

// appendUnique appends nodes not already present (by pointer).
func appendUnique(dst []*Node, nodes ...*Node) []*Node {
	for _, n := range nodes {
		dup := false
		for _, d := range dst {
			if d == n {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, n)
		}
	}
	return dst
}
