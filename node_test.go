package virnet

import (
	"math"
	"slices"
	"testing"
)

// testNode builds a node at (x, y) with no neighbors
func testNode(id int, x, y float64) *Node {
	return &Node{id: id, pos: []float64{x, y}, neighbors: make([]int, 0)}
}

func TestStateTransitions(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{Susceptible, Infected, true},
		{Susceptible, Resistant, false},
		{Infected, Resistant, true},
		{Infected, Susceptible, true},
		{Resistant, Susceptible, false},
		{Resistant, Infected, false},
	}
	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			if got := tt.from.canBecome(tt.to); got != tt.want {
				t.Errorf("canBecome = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStateText(t *testing.T) {
	for _, s := range []State{Susceptible, Infected, Resistant} {
		text, err := s.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%d) error: %v", s, err)
		}
		var back State
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q) error: %v", text, err)
		}
		if back != s {
			t.Errorf("round trip of %s gave %s", s, back)
		}
	}

	var s State
	if err := s.UnmarshalText([]byte("INFECTED")); err != nil || s != Infected {
		t.Errorf("UnmarshalText(INFECTED) = %s, %v", s, err)
	}
	if err := s.UnmarshalText([]byte("zombie")); err == nil {
		t.Error("UnmarshalText(zombie) succeeded")
	}
	if _, err := State(9).MarshalText(); err == nil {
		t.Error("MarshalText(9) succeeded")
	}
	if got := State(9).String(); got != "State(9)" {
		t.Errorf("String() = %q", got)
	}
}

func TestLinkWith(t *testing.T) {
	a := testNode(0, 0, 0)
	b := testNode(3, 1, 0)
	c := testNode(1, 2, 0)

	if !a.linkWith(b) {
		t.Fatal("first link 0-3 not added")
	}
	if a.linkWith(b) || b.linkWith(a) {
		t.Error("duplicate link added")
	}
	if a.linkWith(a) {
		t.Error("self link added")
	}
	if !a.linkWith(c) {
		t.Fatal("link 0-1 not added")
	}

	if !slices.Equal(a.neighborIDs(), []int{1, 3}) {
		t.Errorf("neighbors of 0 = %v, want [1 3]", a.neighborIDs())
	}
	if !b.hasNeighbor(0) || !c.hasNeighbor(0) {
		t.Error("links are not symmetric")
	}
	if b.hasNeighbor(1) {
		t.Error("3 reports a link to 1")
	}
	if a.degree() != 2 {
		t.Errorf("degree() = %d, want 2", a.degree())
	}

	nbrs := a.neighborIDs()
	nbrs[0] = 99
	if a.hasNeighbor(99) {
		t.Error("Neighbors() exposed the internal slice")
	}
}

func TestDistanceTo(t *testing.T) {
	a := testNode(0, 1, 1)
	b := testNode(1, 4, 5)
	if d := a.distanceTo(b); math.Abs(d-5) > 1e-12 {
		t.Errorf("DistanceTo = %v, want 5", d)
	}
	if d := b.distanceTo(a); math.Abs(d-5) > 1e-12 {
		t.Errorf("DistanceTo reversed = %v, want 5", d)
	}
}

func TestCreateNode(t *testing.T) {
	tests := []struct {
		name string
		grid bool
	}{
		{"continuous", false},
		{"grid", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := DefaultParams()
			params.SpaceWidth = 12
			params.SpaceHeight = 7
			params.VirusCheckFrequency = 4
			params.GridPlacement = tt.grid
			rs := CreateRandStream(5)

			for id := 0; id < 200; id++ {
				node := createNode(id, &params, rs)
				if node.id != id || node.state != Susceptible || node.degree() != 0 {
					t.Fatalf("node %d created as %+v", id, node.view())
				}
				if node.pos[0] < 0 || node.pos[0] >= 12 || node.pos[1] < 0 || node.pos[1] >= 7 {
					t.Fatalf("node %d placed at (%v, %v)", id, node.pos[0], node.pos[1])
				}
				if tt.grid && (node.pos[0] != math.Trunc(node.pos[0]) || node.pos[1] != math.Trunc(node.pos[1])) {
					t.Fatalf("grid node %d placed off lattice at (%v, %v)", id, node.pos[0], node.pos[1])
				}
				if node.checkTimer < 0 || node.checkTimer >= 4 {
					t.Fatalf("node %d check timer %d", id, node.checkTimer)
				}
			}
		})
	}
}
