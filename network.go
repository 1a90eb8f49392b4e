package virnet

// network.go builds the spatially clustered network.  Links are formed one
// at a time: a node drawn uniformly at random is linked to the closest node
// it is not yet linked to, so geographically close nodes end up connected.

// NetworkReport describes the outcome of network construction
type NetworkReport struct {
	// TargetEdges is floor(averageNodeDegree * numberOfNodes / 2)
	TargetEdges int `json:"targetedges" yaml:"targetedges"`

	// Edges is the number of undirected links actually built
	Edges int `json:"edges" yaml:"edges"`

	// Draws counts the random node draws made, including those that added no link
	Draws int `json:"draws" yaml:"draws"`

	// Saturated is set when the builder stopped short of TargetEdges
	// because every pair of nodes was already linked
	Saturated bool `json:"saturated" yaml:"saturated"`
}

// buildSpatialNetwork links the nodes until target edges exist or the graph is
// complete.  A drawn node whose candidate set is empty adds nothing and the loop
// continues; only a complete graph stops it early, since any other graph has a
// node with candidates that a later draw will find.
func buildSpatialNetwork(nodes []*Node, target int, rs *RandStream) NetworkReport {
	numNodes := len(nodes)
	maxEdges := numNodes * (numNodes - 1) / 2
	rpt := NetworkReport{TargetEdges: target}

	for rpt.Edges < target {
		rpt.Draws += 1
		from := nodes[rs.Choice(numNodes)]

		to := nearestUnlinked(from, nodes)
		if to == nil {
			if rpt.Edges >= maxEdges {
				rpt.Saturated = true
				break
			}
			continue
		}

		if from.linkWith(to) {
			rpt.Edges += 1
		}
	}
	return rpt
}

// nearestUnlinked returns the node closest to from among those that are neither
// from itself nor already linked to it, or nil if there are none.  Candidates are
// visited in ascending id order and only a strictly smaller distance replaces the
// current choice, so among equidistant candidates the lowest id wins.
func nearestUnlinked(from *Node, nodes []*Node) *Node {
	var nearest *Node
	var nearestDist float64

	// from.neighbors is ascending, so walk it alongside the ascending candidate ids
	nbrIdx := 0
	nbrs := from.neighbors

	for _, cand := range nodes {
		for nbrIdx < len(nbrs) && nbrs[nbrIdx] < cand.id {
			nbrIdx += 1
		}
		if cand.id == from.id || (nbrIdx < len(nbrs) && nbrs[nbrIdx] == cand.id) {
			continue
		}

		dist := from.distanceTo(cand)
		if nearest == nil || dist < nearestDist {
			nearest = cand
			nearestDist = dist
		}
	}
	return nearest
}
