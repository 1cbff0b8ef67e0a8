package viz

import (
	"fmt"
	"math"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/metrics"
	"github.com/san-kum/threebody/internal/trajectory"
)

var seriesColors = []asciigraph.AnsiColor{asciigraph.Blue, asciigraph.Red, asciigraph.Green, asciigraph.Yellow, asciigraph.Magenta, asciigraph.Cyan}

// Coordinates extracts one series per body: axis 0 for x, 1 for y.
func Coordinates(traj *trajectory.Store, axis int) [][]float64 {
	if traj.Len() == 0 {
		return nil
	}
	n := traj.At(0).Len()
	series := make([][]float64, n)
	for i := range series {
		series[i] = make([]float64, 0, traj.Len())
	}
	for step := range traj.All() {
		for i := 0; i < n; i++ {
			p := step.Body(i).Position
			v := p.X
			if axis == 1 {
				v = p.Y
			}
			series[i] = append(series[i], v)
		}
	}
	return series
}

// Energies is the total energy of every retained step.
func Energies(traj *trajectory.Store, p dynamo.Potential) []float64 {
	out := make([]float64, 0, traj.Len())
	for step := range traj.All() {
		out = append(out, metrics.TotalEnergy(p, step.Bodies()))
	}
	return out
}

// PlotBodies draws the chosen coordinate of every body on one chart.
func PlotBodies(traj *trajectory.Store, axis int, width, height int) string {
	series := Coordinates(traj, axis)
	if len(series) == 0 || len(series[0]) == 0 {
		return ""
	}
	name := "x"
	if axis == 1 {
		name = "y"
	}
	colors := make([]asciigraph.AnsiColor, len(series))
	for i := range colors {
		colors[i] = seriesColors[i%len(seriesColors)]
	}
	return asciigraph.PlotMany(downsampleAll(series, width),
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(colors...),
		asciigraph.Caption(fmt.Sprintf("%s position per body vs step", name)),
	)
}

// PlotEnergy draws total energy against retained step.
func PlotEnergy(traj *trajectory.Store, p dynamo.Potential, width, height int) string {
	data := finiteOnly(Energies(traj, p))
	if len(data) == 0 {
		return ""
	}
	return asciigraph.Plot(downsample(data, width),
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption("total energy"),
	)
}

func downsampleAll(series [][]float64, width int) [][]float64 {
	out := make([][]float64, len(series))
	for i, s := range series {
		out[i] = downsample(s, width)
	}
	return out
}

// downsample keeps at most width evenly spaced points.
func downsample(data []float64, width int) []float64 {
	if width < 2 || len(data) <= width {
		return data
	}
	out := make([]float64, width)
	for i := range out {
		out[i] = data[i*(len(data)-1)/(width-1)]
	}
	return out
}

func finiteOnly(data []float64) []float64 {
	out := data[:0:0]
	for _, v := range data {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}
