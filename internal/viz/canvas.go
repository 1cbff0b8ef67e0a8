package viz

import (
	"math"
	"strings"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Canvas is a braille grid of Width x Height cells, each holding 2x4 dots,
// that plots world coordinates in [-Extent, Extent] on both axes.
type Canvas struct {
	Width, Height int
	Extent        float64
	Grid          [][]rune
}

func NewCanvas(w, h int, extent float64) *Canvas {
	if !(extent > 0) {
		extent = 1
	}
	c := &Canvas{
		Width:  w,
		Height: h,
		Extent: extent,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set sets the dot at sub-pixel (x, y); the canvas is (Width*2) x (Height*4) dots.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= pixelMap[y%4][x%2]
}

// Project maps world coordinates to sub-pixels, y up.
func (c *Canvas) Project(wx, wy float64) (int, int) {
	dw, dh := float64(c.Width*2-1), float64(c.Height*4-1)
	x := (wx + c.Extent) / (2 * c.Extent) * dw
	y := (c.Extent - wy) / (2 * c.Extent) * dh
	return int(math.Round(x)), int(math.Round(y))
}

// Plot sets the dot under a world coordinate.
func (c *Canvas) Plot(wx, wy float64) {
	c.Set(c.Project(wx, wy))
}

// Marker draws a 2x2 dot block centred on a world coordinate.
func (c *Canvas) Marker(wx, wy float64) {
	x, y := c.Project(wx, wy)
	for dy := 0; dy < 2; dy++ {
		for dx := 0; dx < 2; dx++ {
			c.Set(x+dx, y+dy)
		}
	}
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}
