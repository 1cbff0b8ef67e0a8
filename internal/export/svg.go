package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/threebody/internal/trajectory"
)

// DefaultStrokes are the path colours used when a run carries none.
var DefaultStrokes = []string{"#4488ff", "#ff4444", "#44ff44", "#ffaa00", "#ff00ff", "#00ffff"}

// bounds is the padded bounding box of every body position in traj.
func bounds(traj *trajectory.Store) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for step := range traj.All() {
		for i := 0; i < step.Len(); i++ {
			p := step.Body(i).Position
			minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
			minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
		}
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	return minX - rangeX*0.1, minY - rangeY*0.1, maxX + rangeX*0.1, maxY + rangeY*0.1
}

// TrajectorySVG draws the path of every body as one SVG path, scaled to fit
// width x height with y up. strokes[i] colours body i; missing entries fall
// back to DefaultStrokes.
func TrajectorySVG(w io.Writer, traj *trajectory.Store, strokes []string, width, height int) error {
	if traj.Len() < 2 {
		return fmt.Errorf("export: need at least 2 steps, got %d", traj.Len())
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("export: invalid size %dx%d", width, height)
	}

	minX, minY, maxX, maxY := bounds(traj)
	rangeX, rangeY := maxX-minX, maxY-minY
	first := traj.At(0)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	for i := 0; i < first.Len(); i++ {
		stroke := DefaultStrokes[i%len(DefaultStrokes)]
		if i < len(strokes) && strokes[i] != "" {
			stroke = strokes[i]
		}
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="`, stroke)

		k := 0
		for step := range traj.All() {
			p := step.Body(i).Position
			x := (p.X - minX) / rangeX * float64(width)
			y := float64(height) - (p.Y-minY)/rangeY*float64(height)
			if k == 0 {
				fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			}
			k++
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}
