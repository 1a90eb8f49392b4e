package virnet

// epidemic.go holds the per-step state transition rules.  A step runs three
// phases in a fixed order, each visiting nodes in a permutation freshly drawn
// from the model's stream:
//   - clock update: every node's check timer advances
//   - spread: infected nodes try to infect their non-resistant neighbors
//   - virus check: infected nodes whose timer is zero may recover
// The order of draws is part of the reproducibility contract.

import (
	"context"
	"log/slog"
)

// LevelTrace is the slog level of the per-step record, below Debug
const LevelTrace = slog.LevelDebug - 4

// Step advances the model one tick.  It returns false, without drawing from the
// stream or advancing the tick, when no node is infected: the run is over.
func (m *Model) Step() (bool, error) {
	if !m.ready {
		return false, ErrNotSetup
	}
	if m.byState[Infected] == 0 {
		m.logger.Debug("no infected nodes", "tick", m.tick)
		return false, nil
	}

	m.eventTick = m.tick + 1
	m.advanceClocks()
	m.spreadVirus()
	m.doVirusCheck()
	m.tick += 1
	m.logger.Log(context.Background(), LevelTrace, "step", "tick", m.tick,
		"infected", m.byState[Infected], "resistant", m.byState[Resistant])
	return true, nil
}

// advanceClocks increments every node's check timer, wrapping to zero on
// reaching the check frequency.  No randomness is consumed.
func (m *Model) advanceClocks() {
	freq := m.params.VirusCheckFrequency
	for _, node := range m.nodes {
		node.checkTimer += 1
		if node.checkTimer >= freq {
			node.checkTimer = 0
		}
	}
}

// spreadVirus visits the nodes infected when the phase begins in random order.
// Each visits its non-resistant neighbors in random order and infects each
// with probability virusSpreadChance percent.  A neighbor infected here is
// not added to the set being visited; drawing an already infected neighbor
// consumes a draw and changes nothing.
func (m *Model) spreadVirus() {
	chance := m.params.VirusSpreadChance
	infected := m.idsWhere(func(node *Node) bool { return node.state == Infected })

	for _, id := range m.rs.Permute(infected) {
		node := m.nodes[id]

		exposed := make([]int, 0, len(node.neighbors))
		for _, nbrID := range node.neighbors {
			if m.nodes[nbrID].state != Resistant {
				exposed = append(exposed, nbrID)
			}
		}

		for _, nbrID := range m.rs.Permute(exposed) {
			if m.rs.Float(0, 100) < chance {
				m.setState(m.nodes[nbrID], Infected, id)
			}
		}
	}
}

// doVirusCheck visits, in random order, the infected nodes whose check timer is
// zero.  With probability recoveryChance percent a node stops being infected,
// and then becomes resistant with probability gainResistanceChance percent,
// susceptible otherwise.
func (m *Model) doVirusCheck() {
	recovery := m.params.RecoveryChance
	resistance := m.params.GainResistanceChance
	due := m.idsWhere(func(node *Node) bool { return node.state == Infected && node.checkTimer == 0 })

	for _, id := range m.rs.Permute(due) {
		if !(m.rs.Float(0, 100) < recovery) {
			continue
		}
		if m.rs.Float(0, 100) < resistance {
			m.setState(m.nodes[id], Resistant, -1)
		} else {
			m.setState(m.nodes[id], Susceptible, -1)
		}
	}
}

// idsWhere lists, in ascending order, the ids of the nodes satisfying test
func (m *Model) idsWhere(test func(*Node) bool) []int {
	ids := make([]int, 0)
	for _, node := range m.nodes {
		if test(node) {
			ids = append(ids, node.id)
		}
	}
	return ids
}
