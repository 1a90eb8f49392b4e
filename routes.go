package virnet

// routes.go provides analysis of the built network through the gonum graph
// packages: shortest hop paths between nodes and a structural summary.
//
// The model's adjacency lists are converted once into a gonum undirected
// graph; links never change after Setup, so the conversion and every
// shortest-path tree computed from it are cached on the model.  With unit
// edge weights a shortest path minimizes the number of hops, the number of
// transmissions an infection needs to travel between two nodes.

import (
	"fmt"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/stat"
	"strconv"
	"strings"
)

// routeCache holds the gonum representation of the network and the
// shortest path trees already computed, keyed by root node id
type routeCache struct {
	connGraph *simple.UndirectedGraph
	cachedSP  map[int]path.Shortest
}

// buildConnGraph returns a gonum graph with one node per model node and one
// edge per link
func buildConnGraph(nodes []*Node) *simple.UndirectedGraph {
	connGraph := simple.NewUndirectedGraph()
	for _, node := range nodes {
		connGraph.AddNode(simple.Node(node.id))
	}

	// each link appears in both adjacency lists, set it once from the lower id
	for _, node := range nodes {
		for _, nbrID := range node.neighbors {
			if nbrID > node.id {
				connGraph.SetEdge(simple.Edge{F: simple.Node(node.id), T: simple.Node(nbrID)})
			}
		}
	}
	return connGraph
}

// routing returns the model's route cache, building it on first use
func (m *Model) routing() (*routeCache, error) {
	if !m.ready {
		return nil, ErrNotSetup
	}
	if m.routes == nil {
		m.routes = &routeCache{connGraph: buildConnGraph(m.nodes), cachedSP: make(map[int]path.Shortest)}
	}
	return m.routes, nil
}

// getSPTree returns the shortest path tree rooted in from.  If the tree is found
// in the cache it is returned, if not it is computed, saved, and returned.
func (rc *routeCache) getSPTree(from int) path.Shortest {
	spTree, present := rc.cachedSP[from]
	if present {
		return spTree
	}
	spTree = path.DijkstraFrom(simple.Node(from), rc.connGraph)
	rc.cachedSP[from] = spTree
	return spTree
}

// convertNodeSeq extracts the node ids from a sequence of graph nodes
func convertNodeSeq(nsQ []graph.Node) []int {
	rtn := make([]int, 0, len(nsQ))
	for _, node := range nsQ {
		rtn = append(rtn, int(node.ID()))
	}
	return rtn
}

// ShortestPath returns the ids of the nodes on a least-hop path from src to dst,
// both included.  The path is nil when dst cannot be reached from src.
func (m *Model) ShortestPath(src, dst int) ([]int, error) {
	rc, err := m.routing()
	if err != nil {
		return nil, err
	}
	for _, id := range []int{src, dst} {
		if id < 0 || id >= len(m.nodes) {
			return nil, fmt.Errorf("no node with id %d", id)
		}
	}

	// a tree rooted at either end will do, by symmetry the path from the
	// other end is the same sequence reversed
	if _, present := rc.cachedSP[src]; !present {
		if spTree, present := rc.cachedSP[dst]; present {
			revNodeSeq, _ := spTree.To(int64(src))
			route := convertNodeSeq(revNodeSeq)
			for i, j := 0, len(route)-1; i < j; i, j = i+1, j-1 {
				route[i], route[j] = route[j], route[i]
			}
			return nilIfEmpty(route), nil
		}
	}

	nodeSeq, _ := rc.getSPTree(src).To(int64(dst))
	return nilIfEmpty(convertNodeSeq(nodeSeq)), nil
}

func nilIfEmpty(route []int) []int {
	if len(route) == 0 {
		return nil
	}
	return route
}

// ShowPath renders a path of node ids as a comma separated list
func ShowPath(route []int) string {
	pathString := make([]string, 0, len(route))
	for _, id := range route {
		pathString = append(pathString, strconv.Itoa(id))
	}
	return strings.Join(pathString, ",")
}

// NetworkSummary describes the structure of the built network
type NetworkSummary struct {
	Nodes            int     `json:"nodes" yaml:"nodes"`
	Edges            int     `json:"edges" yaml:"edges"`
	MeanDegree       float64 `json:"meandegree" yaml:"meandegree"`
	MaxDegree        int     `json:"maxdegree" yaml:"maxdegree"`
	Isolated         int     `json:"isolated" yaml:"isolated"`
	Components       int     `json:"components" yaml:"components"`
	LargestComponent int     `json:"largestcomponent" yaml:"largestcomponent"`
}

// NetworkSummary computes degree statistics and the connected components of
// the network
func (m *Model) NetworkSummary() (NetworkSummary, error) {
	rc, err := m.routing()
	if err != nil {
		return NetworkSummary{}, err
	}

	ns := NetworkSummary{Nodes: len(m.nodes), Edges: rc.connGraph.Edges().Len()}
	degrees := make([]float64, len(m.nodes))
	for idx, node := range m.nodes {
		degree := node.degree()
		degrees[idx] = float64(degree)
		if degree > ns.MaxDegree {
			ns.MaxDegree = degree
		}
		if degree == 0 {
			ns.Isolated += 1
		}
	}
	ns.MeanDegree = stat.Mean(degrees, nil)

	components := topo.ConnectedComponents(rc.connGraph)
	ns.Components = len(components)
	for _, comp := range components {
		if len(comp) > ns.LargestComponent {
			ns.LargestComponent = len(comp)
		}
	}
	return ns, nil
}
