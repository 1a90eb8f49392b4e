package virnet

// node.go holds the Node record, its epidemiological State and the
// read-only NodeView handed to collaborators

import (
	"fmt"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/floats"
	"strings"
)

// State is the epidemiological state of a node.  Exactly one holds at any time.
type State int

const (
	Susceptible State = iota
	Infected
	Resistant
)

var stateToStr = map[State]string{Susceptible: "susceptible", Infected: "infected", Resistant: "resistant"}

// String returns the lower case name of the state
func (s State) String() string {
	str, present := stateToStr[s]
	if !present {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return str
}

// MarshalText lets states appear by name in yaml and json output
func (s State) MarshalText() ([]byte, error) {
	str, present := stateToStr[s]
	if !present {
		return nil, fmt.Errorf("unknown state %d", int(s))
	}
	return []byte(str), nil
}

// UnmarshalText accepts the names produced by MarshalText, in any case
func (s *State) UnmarshalText(text []byte) error {
	name := strings.ToLower(string(text))
	for state, str := range stateToStr {
		if str == name {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", string(text))
}

// canBecome reports whether the SIR transition s -> to is permitted.
// Resistant is terminal.
func (s State) canBecome(to State) bool {
	switch s {
	case Susceptible:
		return to == Infected
	case Infected:
		return to == Resistant || to == Susceptible
	default:
		return false
	}
}

// Node is one agent of the model.  Its id and position never change after
// creation; its neighbor list only grows, and only during network construction.
type Node struct {
	id         int
	pos        []float64 // x, y
	state      State
	checkTimer int

	// ids of linked nodes, kept in ascending order so that iteration and
	// permutation of the neighbor set are reproducible
	neighbors []int
}

// createNode is a constructor.  The draw order (x, y, check timer) is part of the
// reproducibility contract.
func createNode(id int, params *Params, rs *RandStream) *Node {
	node := new(Node)
	node.id = id
	node.pos = make([]float64, 2)
	if params.GridPlacement {
		node.pos[0] = float64(rs.IntN(0, int(params.SpaceWidth)))
		node.pos[1] = float64(rs.IntN(0, int(params.SpaceHeight)))
	} else {
		node.pos[0] = rs.Float(0, params.SpaceWidth)
		node.pos[1] = rs.Float(0, params.SpaceHeight)
	}
	node.state = Susceptible
	node.checkTimer = rs.IntN(0, params.VirusCheckFrequency)
	node.neighbors = make([]int, 0)
	return node
}

// degree is the number of neighbors
func (node *Node) degree() int {
	return len(node.neighbors)
}

// neighborIDs returns a copy of the neighbor ids in ascending order
func (node *Node) neighborIDs() []int {
	nbrs := make([]int, len(node.neighbors))
	copy(nbrs, node.neighbors)
	return nbrs
}

// hasNeighbor reports whether the node is linked to the node with the given id
func (node *Node) hasNeighbor(id int) bool {
	_, found := slices.BinarySearch(node.neighbors, id)
	return found
}

// distanceTo is the Euclidean distance between the two nodes' positions
func (node *Node) distanceTo(other *Node) float64 {
	return floats.Distance(node.pos, other.pos, 2)
}

// linkWith creates the undirected link node <-> other.  Self links and
// duplicates are ignored; the return flags whether a link was added.
func (node *Node) linkWith(other *Node) bool {
	if node.id == other.id || node.hasNeighbor(other.id) {
		return false
	}
	node.insertNeighbor(other.id)
	other.insertNeighbor(node.id)
	return true
}

func (node *Node) insertNeighbor(id int) {
	at, _ := slices.BinarySearch(node.neighbors, id)
	node.neighbors = slices.Insert(node.neighbors, at, id)
}

// NodeView is the read-only description of a node given to collaborators
type NodeView struct {
	ID          int     `json:"id" yaml:"id"`
	X           float64 `json:"x" yaml:"x"`
	Y           float64 `json:"y" yaml:"y"`
	State       State   `json:"state" yaml:"state"`
	NeighborIDs []int   `json:"neighbors" yaml:"neighbors"`
}

// view captures the node's current values
func (node *Node) view() NodeView {
	return NodeView{ID: node.id, X: node.pos[0], Y: node.pos[1], State: node.state, NeighborIDs: node.neighborIDs()}
}
