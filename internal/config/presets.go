package config

import (
	"sort"

	"github.com/san-kum/threebody/internal/dynamo"
)

// Presets maps a preset name to a constructor so callers always receive a
// fresh, mutable copy.
var Presets = map[string]func() *Config{
	// Masses and positions of the classic three-body animation, SI units.
	"classic": func() *Config {
		return &Config{
			Preset: "classic", Integrator: DefaultIntegrator,
			Dt: dynamo.DefaultDt, Steps: dynamo.DefaultSteps, G: dynamo.GravitationConstant,
			Stride: DefaultStride,
			Bodies: []BodyConfig{
				{Name: "A", Mass: 1.0, Position: [2]float64{0.3089693008, 0.4236727692}, Color: "#0000ff"},
				{Name: "B", Mass: 10.0, Position: [2]float64{-0.5, 0.0}, Color: "#ff0000"},
				{Name: "C", Mass: 1.0, Position: [2]float64{0.5, 0.0}, Color: "#00ff00"},
			},
			Render: DefaultRender(),
		}
	},
	// Chenciner-Montgomery figure-eight choreography, G = 1.
	"figure8": func() *Config {
		return &Config{
			Preset: "figure8", Integrator: DefaultIntegrator,
			Dt: 0.001, Steps: 6326, G: 1.0, Stride: 10,
			Bodies: []BodyConfig{
				{Name: "A", Mass: 1, Position: [2]float64{-0.97000436, 0.24308753}, Velocity: [2]float64{0.466203685, 0.43236573}, Color: "#0000ff"},
				{Name: "B", Mass: 1, Position: [2]float64{0.97000436, -0.24308753}, Velocity: [2]float64{0.466203685, 0.43236573}, Color: "#ff0000"},
				{Name: "C", Mass: 1, Position: [2]float64{0, 0}, Velocity: [2]float64{-0.93240737, -0.86473146}, Color: "#00ff00"},
			},
			Render: DefaultRender(),
		}
	},
	// Two equal masses on a circular orbit of unit separation, G = 1.
	"binary": func() *Config {
		return &Config{
			Preset: "binary", Integrator: DefaultIntegrator,
			Dt: 0.001, Steps: 4443, G: 1.0, Stride: 10,
			Bodies: []BodyConfig{
				{Name: "A", Mass: 1, Position: [2]float64{-0.5, 0}, Velocity: [2]float64{0, -0.7071067811865476}, Color: "#0000ff"},
				{Name: "B", Mass: 1, Position: [2]float64{0.5, 0}, Velocity: [2]float64{0, 0.7071067811865476}, Color: "#ff0000"},
			},
			Render: DefaultRender(),
		}
	},
	// Star, planet and moon with zero total momentum, G = 1.
	"hierarchical": func() *Config {
		return &Config{
			Preset: "hierarchical", Integrator: DefaultIntegrator,
			Dt: 0.0005, Steps: 20000, G: 1.0, Stride: 20,
			Bodies: []BodyConfig{
				{Name: "star", Mass: 1, Velocity: [2]float64{0, -0.0011193}, Color: "#ffaa00"},
				{Name: "planet", Mass: 1e-3, Position: [2]float64{0.8, 0}, Velocity: [2]float64{0, 1.118034}, Color: "#0000ff"},
				{Name: "moon", Mass: 1e-6, Position: [2]float64{0.85, 0}, Velocity: [2]float64{0, 1.2594}, Color: "#808080"},
			},
			Render: DefaultRender(),
		}
	},
}

func GetPreset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
