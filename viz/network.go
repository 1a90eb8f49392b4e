package viz

import (
	"fmt"
	"strconv"

	"github.com/iti/virnet"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// NetworkPlotOptions controls PlotNetwork.
type NetworkPlotOptions struct {
	// SpaceWidth and SpaceHeight fix the axes to the placement area.
	SpaceWidth  float64
	SpaceHeight float64

	// Size is the side of the square image.
	Size vg.Length

	// ShowIDs annotates every node with its id.
	ShowIDs bool
}

// DefaultNetworkPlotOptions returns options matching the default 40x40 space.
func DefaultNetworkPlotOptions() NetworkPlotOptions {
	return NetworkPlotOptions{SpaceWidth: 40, SpaceHeight: 40, Size: 6 * vg.Inch}
}

// NetworkPlot builds the plot of the network in snap: every link as a dashed
// line and every node as a dot colored by its state.
func NetworkPlot(snap virnet.Snapshot, opts NetworkPlotOptions) (*plot.Plot, error) {
	views := collectNodes(snap)
	counts := snap.Counts()

	p := plot.New()
	p.Title.Text = fmt.Sprintf("tick %d", counts.Tick)
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.X.Min, p.X.Max = 0, opts.SpaceWidth
	p.Y.Min, p.Y.Max = 0, opts.SpaceHeight

	for _, view := range views {
		for _, nbrID := range view.NeighborIDs {
			// draw every link once, from its lower id end
			if nbrID < view.ID {
				continue
			}
			nbr := views[nbrID]
			line, err := plotter.NewLine(plotter.XYs{{X: view.X, Y: view.Y}, {X: nbr.X, Y: nbr.Y}})
			if err != nil {
				return nil, fmt.Errorf("failed to create link %d-%d: %w", view.ID, nbrID, err)
			}
			line.LineStyle.Color = colorEdge
			line.LineStyle.Width = vg.Points(0.5)
			line.LineStyle.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
			p.Add(line)
		}
	}

	for _, state := range []virnet.State{virnet.Susceptible, virnet.Infected, virnet.Resistant} {
		xys := make(plotter.XYs, 0)
		for _, view := range views {
			if view.State == state {
				xys = append(xys, plotter.XY{X: view.X, Y: view.Y})
			}
		}
		if len(xys) == 0 {
			continue
		}
		scatter, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s scatter: %w", state, err)
		}
		scatter.GlyphStyle.Color = StateColor(state)
		scatter.GlyphStyle.Radius = vg.Points(3)
		scatter.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(scatter)
		p.Legend.Add(fmt.Sprintf("%s (%d)", state, len(xys)), scatter)
	}

	if opts.ShowIDs && len(views) > 0 {
		labels := plotter.XYLabels{XYs: make(plotter.XYs, len(views)), Labels: make([]string, len(views))}
		for idx, view := range views {
			labels.XYs[idx] = plotter.XY{X: view.X + 0.2, Y: view.Y + 0.2}
			labels.Labels[idx] = strconv.Itoa(view.ID)
		}
		lbls, err := plotter.NewLabels(labels)
		if err != nil {
			return nil, fmt.Errorf("failed to create labels: %w", err)
		}
		p.Add(lbls)
	}

	return p, nil
}

// PlotNetwork saves the plot of the network in snap to file. The image
// format follows the extension (png, svg, pdf, ...).
func PlotNetwork(snap virnet.Snapshot, file string, opts NetworkPlotOptions) error {
	p, err := NetworkPlot(snap, opts)
	if err != nil {
		return err
	}
	if err := p.Save(opts.Size, opts.Size, file); err != nil {
		return fmt.Errorf("failed to save network plot: %w", err)
	}
	return nil
}
