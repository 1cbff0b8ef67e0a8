package config

import (
	"fmt"
	"math"
	"os"

	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPreset     = "classic"
	DefaultIntegrator = "symplectic"
	DefaultStride     = 1000
	DefaultOutput     = "three_body.gif"
	DefaultFPS        = 180
	DefaultCanvas     = 250
	DefaultScale      = 100.0
	DefaultAxis       = 100.0
	DefaultMaxFrames  = 1800
)

type Config struct {
	Preset        string       `yaml:"preset,omitempty"`
	Integrator    string       `yaml:"integrator"`
	Dt            float64      `yaml:"dt"`
	Steps         int          `yaml:"steps"`
	G             float64      `yaml:"g"`
	MinSeparation float64      `yaml:"min_separation"`
	Stride        int          `yaml:"stride"`
	Bodies        []BodyConfig `yaml:"bodies"`
	Render        RenderConfig `yaml:"render"`
}

type BodyConfig struct {
	Name     string     `yaml:"name,omitempty"`
	Mass     float64    `yaml:"mass"`
	Position [2]float64 `yaml:"position,flow"`
	Velocity [2]float64 `yaml:"velocity,flow"`
	Color    string     `yaml:"color,omitempty"`
}

type RenderConfig struct {
	Output    string  `yaml:"output"`
	FPS       int     `yaml:"fps"`
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	Scale     float64 `yaml:"scale"`
	AxisMin   float64 `yaml:"axis_min"`
	AxisMax   float64 `yaml:"axis_max"`
	MaxFrames int     `yaml:"max_frames"`
}

func DefaultRender() RenderConfig {
	return RenderConfig{
		Output:    DefaultOutput,
		FPS:       DefaultFPS,
		Width:     DefaultCanvas,
		Height:    DefaultCanvas,
		Scale:     DefaultScale,
		AxisMin:   -DefaultAxis,
		AxisMax:   DefaultAxis,
		MaxFrames: DefaultMaxFrames,
	}
}

// DefaultConfig is the classic three-body setup.
func DefaultConfig() *Config {
	return GetPreset(DefaultPreset)
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	var probe struct {
		Preset string `yaml:"preset"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	if probe.Preset != "" {
		cfg = GetPreset(probe.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("%w: unknown preset %q", dynamo.ErrInvalidConfig, probe.Preset)
		}
	}
	bodies := cfg.Bodies
	cfg.Bodies = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Bodies == nil {
		cfg.Bodies = bodies
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects configurations that could only fail mid-run.
func (c *Config) Validate() error {
	if c.Steps <= 0 || int64(c.Steps) > math.MaxUint32 {
		return fmt.Errorf("%w: steps must be in 1..%d, got %d", dynamo.ErrInvalidConfig, uint32(math.MaxUint32), c.Steps)
	}
	if err := c.SimConfig().Validate(); err != nil {
		return err
	}
	if c.Stride < 1 {
		return fmt.Errorf("%w: stride must be at least 1, got %d", dynamo.ErrInvalidConfig, c.Stride)
	}
	if err := c.Gravity().Validate(); err != nil {
		return err
	}
	if _, err := c.InitialBodies(); err != nil {
		return err
	}
	r := c.Render
	if r.FPS <= 0 || r.Width <= 0 || r.Height <= 0 || !(r.AxisMax > r.AxisMin) || !(r.Scale > 0) || r.MaxFrames < 0 {
		return fmt.Errorf("%w: invalid render settings %+v", dynamo.ErrInvalidConfig, r)
	}
	return nil
}

func (c *Config) SimConfig() dynamo.Config {
	return dynamo.Config{Dt: c.Dt, Steps: uint32(c.Steps)}
}

func (c *Config) Gravity() *physics.Gravity {
	return &physics.Gravity{G: c.G, MinSeparation: c.MinSeparation}
}

// InitialBodies builds the body arena in configuration order.
func (c *Config) InitialBodies() ([]dynamo.Body, error) {
	if len(c.Bodies) == 0 {
		return nil, fmt.Errorf("%w: no bodies configured", dynamo.ErrInvalidConfig)
	}
	bodies := make([]dynamo.Body, len(c.Bodies))
	for i, bc := range c.Bodies {
		b, err := dynamo.NewBody(bc.Mass,
			r2.Vec{X: bc.Position[0], Y: bc.Position[1]},
			r2.Vec{X: bc.Velocity[0], Y: bc.Velocity[1]})
		if err != nil {
			return nil, fmt.Errorf("body %d (%s): %w", i, bc.Name, err)
		}
		bodies[i] = b
	}
	return bodies, nil
}

// Masses lists body masses in configuration order.
func (c *Config) Masses() []float64 {
	m := make([]float64, len(c.Bodies))
	for i, b := range c.Bodies {
		m[i] = b.Mass
	}
	return m
}
