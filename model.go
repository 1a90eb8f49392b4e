package virnet

// model.go holds the Model, which owns the node population, the network,
// the random stream and the simulation clock

import (
	"fmt"
	"iter"
	"log/slog"
)

// Counts is the aggregate state of the population at one tick
type Counts struct {
	Tick        int `json:"tick" yaml:"tick"`
	Infected    int `json:"infected" yaml:"infected"`
	Resistant   int `json:"resistant" yaml:"resistant"`
	Susceptible int `json:"susceptible" yaml:"susceptible"`
}

// Total is the number of nodes the counts cover
func (c Counts) Total() int {
	return c.Infected + c.Resistant + c.Susceptible
}

// Model is one simulation run.  It is built with NewModel, populated by Setup
// and advanced by Step.  A Model is not safe for concurrent use.
type Model struct {
	params Params
	seed   int64
	rs     *RandStream

	// nodes[i].id == i, creation order
	nodes []*Node

	tick    int
	byState [3]int
	network NetworkReport

	// attempted is set once Setup starts, ready once it has succeeded
	attempted bool
	ready     bool

	// tick that transitions made now are attributed to: 0 during Setup,
	// tick+1 while a step runs
	eventTick int

	trace  *TraceManager
	logger *slog.Logger

	// gonum view of the network, built lazily by the analysis functions
	routes *routeCache
}

// NewModel validates the parameters and creates a model with its random stream.
// No node exists until Setup is called.  If params.Seed is nil a seed is drawn
// from secure entropy; either way it is retained and reported by Seed.
func NewModel(params Params) (*Model, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var seed int64
	if params.Seed != nil {
		seed = *params.Seed
	} else {
		var err error
		seed, err = NewSeed()
		if err != nil {
			return nil, err
		}
	}
	params.Seed = &seed

	m := new(Model)
	m.params = params
	m.seed = seed
	m.rs = CreateRandStream(seed)
	m.nodes = make([]*Node, 0, params.NumberOfNodes)
	m.logger = slog.New(slog.DiscardHandler)
	return m, nil
}

// SetLogger directs the model's diagnostics to logger
func (m *Model) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m.logger = logger
}

// SetTraceManager attaches a trace manager that records every state transition
func (m *Model) SetTraceManager(tm *TraceManager) {
	m.trace = tm
}

// Params returns the model's parameters, with Seed set to the seed in use
func (m *Model) Params() Params {
	p := m.params
	seed := m.seed
	p.Seed = &seed
	return p
}

func (m *Model) Seed() int64 {
	return m.seed
}

func (m *Model) Tick() int {
	return m.tick
}

// Network returns the report of the network construction done by Setup
func (m *Model) Network() NetworkReport {
	return m.network
}

// NumNodes is the size of the population, zero before Setup
func (m *Model) NumNodes() int {
	return len(m.nodes)
}

// Setup creates the nodes, builds the spatially clustered network and infects
// the initial outbreak.  A *SampleSizeError (outbreak larger than the
// population) is fatal.  A *NetworkSaturatedError is not: setup completes with
// the partial network, the model can be stepped, and the caller decides
// whether to go on.  Setup runs at most once; after a fatal error the model
// cannot be used.
func (m *Model) Setup() error {
	if m.attempted {
		return ErrAlreadySetup
	}
	m.attempted = true
	if m.trace != nil {
		m.trace.start(m)
	}

	for id := 0; id < m.params.NumberOfNodes; id++ {
		m.nodes = append(m.nodes, createNode(id, &m.params, m.rs))
	}
	m.byState = [3]int{len(m.nodes), 0, 0}
	if m.trace != nil {
		m.trace.addNodes(m.nodes)
	}

	m.network = buildSpatialNetwork(m.nodes, m.params.TargetEdges(), m.rs)
	m.logger.Debug("network built", "edges", m.network.Edges, "target", m.network.TargetEdges,
		"draws", m.network.Draws)

	ids := make([]int, len(m.nodes))
	for idx := range ids {
		ids[idx] = idx
	}
	outbreak, err := m.rs.Sample(ids, m.params.InitialOutbreakSize)
	if err != nil {
		return fmt.Errorf("seeding initial outbreak: %w", err)
	}
	for _, id := range outbreak {
		m.setState(m.nodes[id], Infected, -1)
	}

	m.ready = true
	m.logger.Info("model set up", "seed", m.seed, "nodes", len(m.nodes), "edges", m.network.Edges,
		"infected", m.byState[Infected])

	if m.network.Saturated {
		m.logger.Warn("network saturated", "edges", m.network.Edges, "target", m.network.TargetEdges)
		return &NetworkSaturatedError{Target: m.network.TargetEdges, Built: m.network.Edges}
	}
	return nil
}

// Counts reports the current tick and the number of nodes in each state
func (m *Model) Counts() Counts {
	return Counts{
		Tick:        m.tick,
		Infected:    m.byState[Infected],
		Resistant:   m.byState[Resistant],
		Susceptible: m.byState[Susceptible],
	}
}

// Nodes yields a read-only view of every node in id order
func (m *Model) Nodes() iter.Seq[NodeView] {
	return func(yield func(NodeView) bool) {
		for _, node := range m.nodes {
			if !yield(node.view()) {
				return
			}
		}
	}
}

// Node returns the view of the node with the given id
func (m *Model) Node(id int) (NodeView, bool) {
	if id < 0 || id >= len(m.nodes) {
		return NodeView{}, false
	}
	return m.nodes[id].view(), true
}

// setState moves node to state to, keeping the per-state counts and the trace
// current.  source is the id of the infecting neighbor, -1 if there is none.
// Setting a node to the state it already holds does nothing.
func (m *Model) setState(node *Node, to State, source int) {
	from := node.state
	if from == to {
		return
	}
	if !from.canBecome(to) {
		panic(fmt.Sprintf("virnet: illegal transition %s -> %s for node %d", from, to, node.id))
	}
	node.state = to
	m.byState[from] -= 1
	m.byState[to] += 1
	if m.trace != nil {
		m.trace.addTransition(m.eventTick, node.id, from, to, source)
	}
}
