package virnet

import (
	"encoding/json"
	"fmt"
	"gopkg.in/yaml.v3"
	"os"
	"path"
)

// TransitionTrace records one change of a node's state.  Tick is the tick
// whose counts first show the change (0 for the initial outbreak).
type TransitionTrace struct {
	Tick   int   `json:"tick" yaml:"tick"`
	NodeID int   `json:"nodeid" yaml:"nodeid"`
	From   State `json:"from" yaml:"from"`
	To     State `json:"to" yaml:"to"`

	// Source is the id of the infecting neighbor, -1 for outbreak seeding and recovery
	Source int `json:"source" yaml:"source"`
}

// Position is an entry in the dictionary that maps node ids to coordinates
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// TraceManager gathers information about a model and an execution of that
// model: the node dictionary, every state transition and the per-tick counts.
type TraceManager struct {
	// experiment uses trace
	InUse bool `json:"inuse" yaml:"inuse"`

	// name of experiment
	ExpName string `json:"expname" yaml:"expname"`

	Seed   int64  `json:"seed" yaml:"seed"`
	Params Params `json:"params" yaml:"params"`

	// position associated with each node id
	PosByID map[int]Position `json:"posbyid" yaml:"posbyid"`

	// all transitions, in the order they happened
	Transitions []TransitionTrace `json:"transitions" yaml:"transitions"`

	// counts after setup and after every step
	Counts []Counts `json:"counts" yaml:"counts"`
}

// CreateTraceManager is a constructor.  An inactive manager ignores every
// record offered to it, so a model can always be given one.
func CreateTraceManager(expName string, active bool) *TraceManager {
	tm := new(TraceManager)
	tm.InUse = active
	tm.ExpName = expName
	tm.PosByID = make(map[int]Position)
	tm.Transitions = make([]TransitionTrace, 0)
	tm.Counts = make([]Counts, 0)
	return tm
}

// Active tells the caller whether the Trace Manager is actively being used
func (tm *TraceManager) Active() bool {
	return tm.InUse
}

// start remembers the configuration of the model being traced
func (tm *TraceManager) start(m *Model) {
	if !tm.InUse {
		return
	}
	tm.Seed = m.seed
	tm.Params = m.Params()
}

// addNodes enters the position of every node into the dictionary
func (tm *TraceManager) addNodes(nodes []*Node) {
	if !tm.InUse {
		return
	}
	for _, node := range nodes {
		_, present := tm.PosByID[node.id]
		if present {
			panic("duplicated id in addNodes")
		}
		tm.PosByID[node.id] = Position{X: node.pos[0], Y: node.pos[1]}
	}
}

// addTransition creates a record of a state change and stores it
func (tm *TraceManager) addTransition(tick, nodeID int, from, to State, source int) {
	if !tm.InUse {
		return
	}
	tm.Transitions = append(tm.Transitions,
		TransitionTrace{Tick: tick, NodeID: nodeID, From: from, To: to, Source: source})
}

// Observe records the counts of a snapshot.  It lets a TraceManager be
// handed to a Runner as an Observer.
func (tm *TraceManager) Observe(snap Snapshot) error {
	if !tm.InUse {
		return nil
	}
	tm.Counts = append(tm.Counts, snap.Counts())
	return nil
}

// TransitionsOf returns the transitions of one node, in order
func (tm *TraceManager) TransitionsOf(nodeID int) []TransitionTrace {
	trs := make([]TransitionTrace, 0)
	for _, tr := range tm.Transitions {
		if tr.NodeID == nodeID {
			trs = append(trs, tr)
		}
	}
	return trs
}

// SecondaryInfections maps the id of every node that infected at least one
// neighbor to the number of infections it caused
func (tm *TraceManager) SecondaryInfections() map[int]int {
	caused := make(map[int]int)
	for _, tr := range tm.Transitions {
		if tr.To == Infected && tr.Source >= 0 {
			caused[tr.Source] += 1
		}
	}
	return caused
}

// WriteToFile stores the TraceManager struct to the file whose name is given.
// Serialization to json or to yaml is selected based on the extension of this name.
// Nothing is written by an inactive manager.
func (tm *TraceManager) WriteToFile(filename string) (bool, error) {
	if !tm.InUse {
		return false, nil
	}
	pathExt := path.Ext(filename)
	var bytes []byte
	var merr error

	switch pathExt {
	case ".yaml", ".YAML", ".yml":
		bytes, merr = yaml.Marshal(*tm)
	case ".json", ".JSON":
		bytes, merr = json.MarshalIndent(*tm, "", "\t")
	default:
		return false, fmt.Errorf("trace file %s: extension must be .yaml, .yml or .json", filename)
	}
	if merr != nil {
		return false, merr
	}

	if err := os.WriteFile(filename, bytes, 0644); err != nil {
		return false, err
	}
	return true, nil
}

// ReadTraceManager deserializes a trace written by WriteToFile.  If dict is empty the
// file whose name is given is read to acquire the bytes.
func ReadTraceManager(filename string, useYAML bool, dict []byte) (*TraceManager, error) {
	var err error
	if len(dict) == 0 {
		dict, err = os.ReadFile(filename)
		if err != nil {
			return nil, err
		}
	}

	example := TraceManager{}
	if useYAML {
		err = yaml.Unmarshal(dict, &example)
	} else {
		err = json.Unmarshal(dict, &example)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding trace from %s: %w", filename, err)
	}
	return &example, nil
}
