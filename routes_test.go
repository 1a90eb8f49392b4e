package virnet

import (
	"errors"
	"slices"
	"testing"
)

func TestShortestPath(t *testing.T) {
	m := newTestModel(t, 31, func(p *Params) { p.NumberOfNodes = 40; p.AverageNodeDegree = 4 })

	checked := 0
	for dst := 1; dst < 40; dst++ {
		route, err := m.ShortestPath(0, dst)
		if err != nil {
			t.Fatalf("ShortestPath(0, %d): %v", dst, err)
		}
		if route == nil {
			continue
		}
		checked += 1
		if route[0] != 0 || route[len(route)-1] != dst {
			t.Fatalf("path %s does not run from 0 to %d", ShowPath(route), dst)
		}
		for i := 1; i < len(route); i++ {
			if !m.nodes[route[i-1]].hasNeighbor(route[i]) {
				t.Fatalf("path %s uses missing link %d-%d", ShowPath(route), route[i-1], route[i])
			}
		}

		// the cached tree rooted at 0 answers the reverse query
		back, err := m.ShortestPath(dst, 0)
		if err != nil {
			t.Fatalf("ShortestPath(%d, 0): %v", dst, err)
		}
		rev := slices.Clone(route)
		slices.Reverse(rev)
		if !slices.Equal(back, rev) {
			t.Errorf("reverse path %s, want %s", ShowPath(back), ShowPath(rev))
		}
	}
	if checked == 0 {
		t.Fatal("node 0 reaches no other node")
	}

	self, err := m.ShortestPath(7, 7)
	if err != nil || !slices.Equal(self, []int{7}) {
		t.Errorf("ShortestPath(7, 7) = %v, %v", self, err)
	}
}

func TestShortestPathErrors(t *testing.T) {
	m, err := NewModel(DefaultParams().WithSeed(1))
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	if _, err := m.ShortestPath(0, 1); !errors.Is(err, ErrNotSetup) {
		t.Errorf("ShortestPath before Setup error = %v", err)
	}

	m = newTestModel(t, 1, func(p *Params) { p.NumberOfNodes = 5; p.AverageNodeDegree = 0 })
	if _, err := m.ShortestPath(0, 5); err == nil {
		t.Error("ShortestPath to unknown node succeeded")
	}
	route, err := m.ShortestPath(0, 1)
	if err != nil || route != nil {
		t.Errorf("ShortestPath without links = %v, %v; want nil, nil", route, err)
	}
}

func TestNetworkSummary(t *testing.T) {
	t.Run("no links", func(t *testing.T) {
		m := newTestModel(t, 1, func(p *Params) { p.NumberOfNodes = 5; p.AverageNodeDegree = 0 })
		ns, err := m.NetworkSummary()
		if err != nil {
			t.Fatalf("NetworkSummary: %v", err)
		}
		want := NetworkSummary{Nodes: 5, Edges: 0, MeanDegree: 0, MaxDegree: 0, Isolated: 5, Components: 5, LargestComponent: 1}
		if ns != want {
			t.Errorf("NetworkSummary() = %+v, want %+v", ns, want)
		}
	})

	t.Run("complete", func(t *testing.T) {
		m := newTestModel(t, 1, func(p *Params) { p.NumberOfNodes = 6; p.AverageNodeDegree = 5 })
		ns, err := m.NetworkSummary()
		if err != nil {
			t.Fatalf("NetworkSummary: %v", err)
		}
		want := NetworkSummary{Nodes: 6, Edges: 15, MeanDegree: 5, MaxDegree: 5, Isolated: 0, Components: 1, LargestComponent: 6}
		if ns != want {
			t.Errorf("NetworkSummary() = %+v, want %+v", ns, want)
		}
	})

	t.Run("default", func(t *testing.T) {
		m := newTestModel(t, 9, nil)
		ns, err := m.NetworkSummary()
		if err != nil {
			t.Fatalf("NetworkSummary: %v", err)
		}
		if ns.Edges != m.Network().Edges {
			t.Errorf("summary has %d links, network report %d", ns.Edges, m.Network().Edges)
		}
		if ns.MeanDegree != 6 {
			t.Errorf("MeanDegree = %v, want 6", ns.MeanDegree)
		}
		if ns.LargestComponent > ns.Nodes || ns.Components < 1 {
			t.Errorf("components %+v", ns)
		}
	})
}

func TestShowPath(t *testing.T) {
	tests := []struct {
		route []int
		want  string
	}{
		{nil, ""},
		{[]int{4}, "4"},
		{[]int{0, 12, 7}, "0,12,7"},
	}
	for _, tt := range tests {
		if got := ShowPath(tt.route); got != tt.want {
			t.Errorf("ShowPath(%v) = %q, want %q", tt.route, got, tt.want)
		}
	}
}
