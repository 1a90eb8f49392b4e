// Package viz holds the visualization collaborators of a simulation run: a
// plot of the network colored by node state, a chart of the susceptible,
// infected and resistant counts over time, and an MJPEG animation of a run.
// Nothing in the simulation core depends on this package.
package viz

import (
	"image/color"

	"github.com/iti/virnet"
)

// Node colors follow the usual SIR convention: red infected, green resistant,
// grey susceptible.
var (
	colorInfected    = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	colorResistant   = color.RGBA{R: 44, G: 160, B: 44, A: 255}
	colorSusceptible = color.RGBA{R: 127, G: 127, B: 127, A: 255}
	colorEdge        = color.RGBA{R: 255, G: 200, B: 150, A: 255}
	colorBackground  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	colorText        = color.RGBA{R: 0, G: 0, B: 0, A: 255}
)

// StateColor returns the color a node in state s is drawn with.
func StateColor(s virnet.State) color.RGBA {
	switch s {
	case virnet.Infected:
		return colorInfected
	case virnet.Resistant:
		return colorResistant
	default:
		return colorSusceptible
	}
}

// collectNodes gathers the views of a snapshot into a slice indexed by node id.
func collectNodes(snap virnet.Snapshot) []virnet.NodeView {
	views := make([]virnet.NodeView, 0)
	for view := range snap.Nodes() {
		views = append(views, view)
	}
	return views
}
