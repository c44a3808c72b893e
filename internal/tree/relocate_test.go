package tree

import (
	"errors"
	"testing"
)

func TestRelocate_EndToEndDropOnBody(t *testing.T) {
	forest := []*Node{container("A", leaf("A1")), leaf("B")}

	got, mv, err := Relocate(forest, DropRequest{DragKey: "B", DropKey: "A"}, RenumberNever)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s := shape(got); s != "A(B,A1)" {
		t.Errorf("expected A(B,A1), got %s", s)
	}
	if mv.ParentKey != "A" || mv.PreviousKey != "" || mv.Placement != PlaceFirstChild {
		t.Errorf("unexpected move: %+v", mv)
	}
	if s := shape(forest); s != "A(A1),B" {
		t.Errorf("input forest was modified: %s", s)
	}
}

func TestRelocate_Placements(t *testing.T) {
	tests := []struct {
		name string
		req  DropRequest
		want string
		prev string
	}{
		{
			name: "body of leaf creates children",
			req:  DropRequest{DragKey: "A1", DropKey: "B"},
			want: "A(A2),B(A1),C(C1(C1a))",
		},
		{
			name: "body of container becomes first child",
			req:  DropRequest{DragKey: "B", DropKey: "C1"},
			want: "A(A1,A2),C(C1(B,C1a))",
		},
		{
			name: "gap before target",
			req:  DropRequest{DragKey: "C", DropKey: "A", DropToGap: true, DropPosition: -1},
			want: "C(C1(C1a)),A(A1,A2),B",
		},
		{
			name: "gap after target",
			req:  DropRequest{DragKey: "A", DropKey: "B", DropToGap: true, DropPosition: 1},
			want: "B,A(A1,A2),C(C1(C1a))",
			prev: "B",
		},
		{
			name: "gap with position zero is after",
			req:  DropRequest{DragKey: "B", DropKey: "A1", DropToGap: true, DropPosition: 0},
			want: "A(A1,B,A2),C(C1(C1a))",
			prev: "A1",
		},
		{
			name: "gap below collapsed container is after",
			req:  DropRequest{DragKey: "B", DropKey: "C", DropToGap: true, DropPosition: 1},
			want: "A(A1,A2),C(C1(C1a)),B",
			prev: "C",
		},
		{
			name: "reparent from nested to top level",
			req:  DropRequest{DragKey: "C1a", DropKey: "A", DropToGap: true, DropPosition: -1},
			want: "C1a,A(A1,A2),B,C(C1[])",
		},
		{
			name: "reorder within same parent moving down",
			req:  DropRequest{DragKey: "A1", DropKey: "A2", DropToGap: true, DropPosition: 1},
			want: "A(A2,A1),B,C(C1(C1a))",
			prev: "A2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forest := sample()
			got, mv, err := Relocate(forest, tt.req, RenumberAlways)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s := shape(got); s != tt.want {
				t.Errorf("expected %s, got %s", tt.want, s)
			}
			if mv.PreviousKey != tt.prev {
				t.Errorf("expected previous %q, got %q", tt.prev, mv.PreviousKey)
			}
			if mv.Node == nil || mv.Node.Key != tt.req.DragKey {
				t.Errorf("expected moved node %s, got %+v", tt.req.DragKey, mv.Node)
			}
			if Count(got) != Count(forest) {
				t.Errorf("expected %d nodes, got %d", Count(forest), Count(got))
			}
		})
	}
}

func TestRelocate_GapBelowExpandedParentIsFirstChild(t *testing.T) {
	forest := []*Node{expanded(container("A", leaf("A1"))), leaf("B")}

	got, mv, err := Relocate(forest, DropRequest{DragKey: "B", DropKey: "A", DropToGap: true, DropPosition: 1}, RenumberAlways)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s := shape(got); s != "A(B,A1)" {
		t.Errorf("expected A(B,A1), got %s", s)
	}
	if mv.Placement != PlaceFirstChild {
		t.Errorf("expected first-child placement, got %s", mv.Placement)
	}
}

func TestRelocate_GapBelowExpandedEmptyContainerIsSibling(t *testing.T) {
	forest := []*Node{expanded(container("A")), leaf("B")}

	got, _, err := Relocate(forest, DropRequest{DragKey: "B", DropKey: "A", DropToGap: true, DropPosition: 1}, RenumberAlways)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s := shape(got); s != "A[],B" {
		t.Errorf("expected A[],B, got %s", s)
	}
}

func TestRelocate_ExpandedParentOtherPositionsAreSiblings(t *testing.T) {
	forest := []*Node{leaf("X"), expanded(container("A", leaf("A1")))}

	got, _, err := Relocate(forest, DropRequest{DragKey: "X", DropKey: "A", DropToGap: true, DropPosition: 2}, RenumberAlways)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s := shape(got); s != "A(A1),X" {
		t.Errorf("expected A(A1),X, got %s", s)
	}
}

func TestRelocate_ExpandedOnlyChildDraggedBelowParent(t *testing.T) {
	// The gesture saw A with one child, so the drop keeps A1 as first child.
	forest := []*Node{expanded(container("A", leaf("A1"))), leaf("B")}

	got, _, err := Relocate(forest, DropRequest{DragKey: "A1", DropKey: "A", DropToGap: true, DropPosition: 1}, RenumberAlways)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s := shape(got); s != "A(A1),B" {
		t.Errorf("expected A(A1),B, got %s", s)
	}
}

func TestRelocate_UnknownKeyFailsClosed(t *testing.T) {
	tests := []struct {
		name string
		req  DropRequest
		role string
	}{
		{"missing drag", DropRequest{DragKey: "missing", DropKey: "A"}, "drag"},
		{"missing drop", DropRequest{DragKey: "A", DropKey: "missing", DropToGap: true}, "drop"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forest := sample()
			got, _, err := Relocate(forest, tt.req, RenumberAlways)
			if !errors.Is(err, ErrNodeNotFound) {
				t.Fatalf("expected ErrNodeNotFound, got %v", err)
			}
			var nf *NodeNotFoundError
			if !errors.As(err, &nf) || nf.Key != "missing" || nf.Role != tt.role {
				t.Errorf("unexpected error detail: %v", err)
			}
			if shape(got) != shape(sample()) || shape(forest) != shape(sample()) {
				t.Errorf("forest changed: %s", shape(got))
			}
		})
	}
}

func TestRelocate_DropIntoDescendantRejected(t *testing.T) {
	forest := sample()
	got, _, err := Relocate(forest, DropRequest{DragKey: "C", DropKey: "C1a"}, RenumberAlways)
	if !errors.Is(err, ErrDropIntoDescendant) {
		t.Fatalf("expected ErrDropIntoDescendant, got %v", err)
	}
	if shape(got) != shape(sample()) {
		t.Errorf("forest changed: %s", shape(got))
	}
}

func TestRelocate_DropOnSelfIsNoop(t *testing.T) {
	forest := sample()
	got, mv, err := Relocate(forest, DropRequest{DragKey: "A2", DropKey: "A2"}, RenumberAlways)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if shape(got) != shape(forest) {
		t.Errorf("expected unchanged forest, got %s", shape(got))
	}
	if mv.ParentKey != "A" || mv.PreviousKey != "A1" {
		t.Errorf("unexpected move: %+v", mv)
	}
	got[0].Title = "changed"
	if forest[0].Title != "A" {
		t.Error("result aliases the input forest")
	}
}

func TestRelocate_PreservesCountAndUniqueness(t *testing.T) {
	keys := Keys(sample())
	for _, drag := range keys {
		for _, drop := range keys {
			for _, gap := range []bool{false, true} {
				for _, pos := range []int{-1, 0, 1, 2} {
					forest := sample()
					req := DropRequest{DragKey: drag, DropKey: drop, DropToGap: gap, DropPosition: pos}
					got, _, err := Relocate(forest, req, RenumberAlways)
					if errors.Is(err, ErrDropIntoDescendant) {
						continue
					}
					if err != nil {
						t.Fatalf("%+v: unexpected error: %v", req, err)
					}
					if Count(got) != len(keys) {
						t.Fatalf("%+v: expected %d nodes, got %d (%s)", req, len(keys), Count(got), shape(got))
					}
					if err := validate(got); err != nil {
						t.Fatalf("%+v: %v (%s)", req, err, shape(got))
					}
				}
			}
		}
	}
}

func TestRelocate_RenumberPolicies(t *testing.T) {
	req := DropRequest{DragKey: "A1", DropKey: "B", DropToGap: true, DropPosition: 1}

	t.Run("always", func(t *testing.T) {
		got, mv, err := Relocate(sample(), req, RenumberAlways)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// A(A2), B, A1, C
		if o := orders(got); !equalInts(o, []int{0, 1, 2, 3}) {
			t.Errorf("unexpected root orders %v", o)
		}
		if o := orders(got[0].Children); !equalInts(o, []int{0}) {
			t.Errorf("unexpected child orders %v", o)
		}
		changed := map[string]bool{}
		for _, n := range mv.Renumbered {
			changed[n.Key] = true
		}
		for _, k := range []string{"A2", "A1", "C"} {
			if !changed[k] {
				t.Errorf("expected %s in renumbered set, got %v", k, changed)
			}
		}
	})

	for _, policy := range []RenumberPolicy{RenumberOnDelete, RenumberNever} {
		t.Run(policy.String(), func(t *testing.T) {
			got, mv, err := Relocate(sample(), req, policy)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(mv.Renumbered) != 0 {
				t.Errorf("expected no renumbering, got %d", len(mv.Renumbered))
			}
			// A1 keeps its old index among its new siblings.
			if o := orders(got); !equalInts(o, []int{0, 1, 0, 2}) {
				t.Errorf("unexpected root orders %v", o)
			}
			if o := orders(got[0].Children); !equalInts(o, []int{1}) {
				t.Errorf("unexpected child orders %v", o)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	withKids := expanded(container("T", leaf("x")))
	collapsed := container("T", leaf("x"))

	tests := []struct {
		name   string
		target *Node
		req    DropRequest
		want   Placement
	}{
		{"body", leaf("T"), DropRequest{}, PlaceFirstChild},
		{"body ignores position", leaf("T"), DropRequest{DropPosition: -1}, PlaceFirstChild},
		{"expanded below", withKids, DropRequest{DropToGap: true, DropPosition: 1}, PlaceFirstChild},
		{"collapsed below", collapsed, DropRequest{DropToGap: true, DropPosition: 1}, PlaceAfter},
		{"before", withKids, DropRequest{DropToGap: true, DropPosition: -1}, PlaceBefore},
		{"after leaf", leaf("T"), DropRequest{DropToGap: true, DropPosition: 1}, PlaceAfter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.target, tt.req); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
