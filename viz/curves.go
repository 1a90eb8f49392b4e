package viz

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/iti/virnet"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrEmptyLog is returned when there are no counts to chart.
var ErrEmptyLog = errors.New("no counts to chart")

func chartColor(s virnet.State) drawing.Color {
	c := StateColor(s)
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

// CurvesChart builds the chart of the infected, resistant and susceptible
// counts of a run log against the tick.
func CurvesChart(log []virnet.Counts) (*chart.Chart, error) {
	if len(log) == 0 {
		return nil, ErrEmptyLog
	}

	ticks := make([]float64, len(log))
	perState := map[virnet.State][]float64{
		virnet.Infected:    make([]float64, len(log)),
		virnet.Resistant:   make([]float64, len(log)),
		virnet.Susceptible: make([]float64, len(log)),
	}
	for idx, c := range log {
		ticks[idx] = float64(c.Tick)
		perState[virnet.Infected][idx] = float64(c.Infected)
		perState[virnet.Resistant][idx] = float64(c.Resistant)
		perState[virnet.Susceptible][idx] = float64(c.Susceptible)
	}

	// fixed ranges keep a one-entry log or a flat curve renderable
	xMax := max(ticks[len(ticks)-1], 1)
	yMax := float64(max(log[0].Total(), 1))

	series := make([]chart.Series, 0, 3)
	for _, state := range []virnet.State{virnet.Infected, virnet.Resistant, virnet.Susceptible} {
		series = append(series, chart.ContinuousSeries{
			Name:    state.String(),
			XValues: ticks,
			YValues: perState[state],
			Style: chart.Style{
				StrokeColor: chartColor(state),
				StrokeWidth: 3.0,
			},
		})
	}

	graph := &chart.Chart{
		Width:  800,
		Height: 480,
		XAxis: chart.XAxis{
			Name:  "tick",
			Style: chart.Style{FontSize: 10.0},
			Range: &chart.ContinuousRange{Min: 0, Max: xMax},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%d", int(v.(float64)))
			},
		},
		YAxis: chart.YAxis{
			Name:  "nodes",
			Style: chart.Style{FontSize: 10.0},
			Range: &chart.ContinuousRange{Min: 0, Max: yMax},
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("%d", int(v.(float64)))
			},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(graph)}
	return graph, nil
}

// RenderCurves writes the chart of log to w as a PNG image.
func RenderCurves(log []virnet.Counts, w io.Writer) error {
	graph, err := CurvesChart(log)
	if err != nil {
		return err
	}
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render curves: %w", err)
	}
	return nil
}

// PlotCurves writes the chart of log to a PNG file.
func PlotCurves(log []virnet.Counts, file string) error {
	f, err := os.Create(file)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", file, err)
	}
	if err := RenderCurves(log, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
