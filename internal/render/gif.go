package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"iter"
	"math"
	"os"
	"path/filepath"

	"github.com/san-kum/threebody/internal/dynamo"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Renderer consumes an ordered sequence of steps and produces an artifact.
type Renderer interface {
	Render(ctx context.Context, steps iter.Seq[dynamo.Step]) error
}

var (
	meshColor = color.RGBA{0xe0, 0xe0, 0xe0, 0xff}
	axisColor = color.RGBA{0x80, 0x80, 0x80, 0xff}

	DefaultColors = []color.Color{
		color.RGBA{0x00, 0x00, 0xff, 0xff},
		color.RGBA{0xff, 0x00, 0x00, 0xff},
		color.RGBA{0x00, 0xff, 0x00, 0xff},
	}
)

type Options struct {
	Path         string
	FPS          int
	Width        int
	Height       int
	Scale        float64
	AxisMin      float64
	AxisMax      float64
	Colors       []color.Color
	MarkerRadius int
	// MaxFrames caps the number of frames; 0 renders every step offered.
	MaxFrames int
	// Total is the number of steps the sequence will yield, if known.
	// It lets MaxFrames pick an even frame stride.
	Total int
}

func DefaultOptions() Options {
	return Options{
		Path:         "three_body.gif",
		FPS:          180,
		Width:        250,
		Height:       250,
		Scale:        100,
		AxisMin:      -100,
		AxisMax:      100,
		Colors:       DefaultColors,
		MarkerRadius: 2,
	}
}

// GIF renders steps into an animated GIF, one frame per step.
type GIF struct {
	opts    Options
	palette color.Palette
}

func NewGIF(opts Options) (*GIF, error) {
	if opts.Path == "" || opts.FPS <= 0 || opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("render: invalid options %+v", opts)
	}
	if !(opts.AxisMax > opts.AxisMin) || !(opts.Scale > 0) {
		return nil, fmt.Errorf("render: invalid axis range %v..%v or scale %v", opts.AxisMin, opts.AxisMax, opts.Scale)
	}
	if len(opts.Colors) == 0 {
		opts.Colors = DefaultColors
	}
	pal := color.Palette{color.White, color.Black, meshColor, axisColor}
	pal = append(pal, opts.Colors...)
	if len(pal) > 256 {
		return nil, fmt.Errorf("render: too many body colours (%d)", len(opts.Colors))
	}
	return &GIF{opts: opts, palette: pal}, nil
}

// Delay is the per-frame delay in 100ths of a second.
func (g *GIF) Delay() int {
	return max(1, int(math.Round(100/float64(g.opts.FPS))))
}

// FrameStride is how many offered steps map to one frame.
func (g *GIF) FrameStride() int {
	if g.opts.MaxFrames <= 0 || g.opts.Total <= g.opts.MaxFrames {
		return 1
	}
	return (g.opts.Total + g.opts.MaxFrames - 1) / g.opts.MaxFrames
}

// Render encodes every frame and replaces Path only after a complete
// encode. On error or cancellation nothing is left at Path.
func (g *GIF) Render(ctx context.Context, steps iter.Seq[dynamo.Step]) (err error) {
	stride := g.FrameStride()
	anim := gif.GIF{LoopCount: 0}
	delay := g.Delay()

	i := 0
	for step := range steps {
		if ctx.Err() != nil {
			return fmt.Errorf("render: %w", ctx.Err())
		}
		if i%stride == 0 && (g.opts.MaxFrames <= 0 || len(anim.Image) < g.opts.MaxFrames) {
			anim.Image = append(anim.Image, g.Frame(step))
			anim.Delay = append(anim.Delay, delay)
		}
		i++
	}
	if ctx.Err() != nil {
		return fmt.Errorf("render: %w", ctx.Err())
	}
	if len(anim.Image) == 0 {
		return fmt.Errorf("render: no steps to draw")
	}

	dir := filepath.Dir(g.opts.Path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(g.opts.Path)+".*")
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := gif.EncodeAll(tmp, &anim); err != nil {
		return fmt.Errorf("render: encode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := os.Rename(tmp.Name(), g.opts.Path); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

// Frame draws one step: mesh, axes, body markers and the elapsed time.
func (g *GIF) Frame(step dynamo.Step) *image.Paletted {
	img := image.NewPaletted(image.Rect(0, 0, g.opts.Width, g.opts.Height), g.palette)
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	g.drawMesh(img)

	for i := 0; i < step.Len(); i++ {
		pos := step.Body(i).Position
		px, py := g.ToPixel(pos.X, pos.Y)
		fillCircle(img, px, py, g.opts.MarkerRadius, g.colorFor(i))
	}

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(5, 5+basicfont.Face7x13.Ascent),
	}
	d.DrawString(fmt.Sprintf("T : %d", uint64(math.Round(step.Time))))

	return img
}

// ToPixel maps a simulation position to image coordinates. Positions are
// scaled and rounded to whole axis units first; y grows upwards.
func (g *GIF) ToPixel(x, y float64) (int, int) {
	ax := math.Round(x * g.opts.Scale)
	ay := math.Round(y * g.opts.Scale)
	span := g.opts.AxisMax - g.opts.AxisMin
	px := (ax - g.opts.AxisMin) / span * float64(g.opts.Width-1)
	py := (g.opts.AxisMax - ay) / span * float64(g.opts.Height-1)
	return int(math.Round(px)), int(math.Round(py))
}

func (g *GIF) colorFor(i int) color.Color {
	if i < len(g.opts.Colors) {
		return g.opts.Colors[i]
	}
	return color.Black
}

func (g *GIF) drawMesh(img *image.Paletted) {
	const lines = 10
	span := g.opts.AxisMax - g.opts.AxisMin
	for k := 0; k <= lines; k++ {
		v := g.opts.AxisMin + span*float64(k)/lines
		px, py := g.ToPixel(v/g.opts.Scale, v/g.opts.Scale)
		c := color.Color(meshColor)
		if v == 0 {
			c = axisColor
		}
		for y := 0; y < g.opts.Height; y++ {
			img.Set(px, y, c)
		}
		for x := 0; x < g.opts.Width; x++ {
			img.Set(x, py, c)
		}
	}
}

func fillCircle(img *image.Paletted, cx, cy, r int, c color.Color) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				img.Set(cx+dx, cy+dy, c)
			}
		}
	}
}
