package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/threebody/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Gravity evaluates pairwise Newtonian attraction.
// Pairs closer than MinSeparation are reported as degenerate.
type Gravity struct {
	G             float64
	MinSeparation float64
}

func NewGravity(g float64) *Gravity {
	return &Gravity{G: g}
}

func (g *Gravity) Validate() error {
	if !(g.G > 0) || math.IsInf(g.G, 0) {
		return fmt.Errorf("%w: gravitational constant must be positive and finite, got %v", dynamo.ErrInvalidConfig, g.G)
	}
	if !(g.MinSeparation >= 0) {
		return fmt.Errorf("%w: min separation must be non-negative, got %v", dynamo.ErrInvalidConfig, g.MinSeparation)
	}
	return nil
}

// Accelerations implements dynamo.ForceField. Every pair is evaluated
// against the positions in bodies; acc is fully overwritten. If any pair is
// degenerate the contents of acc are unspecified.
func (g *Gravity) Accelerations(bodies []dynamo.Body, acc []r2.Vec) error {
	for i := range acc {
		acc[i] = r2.Vec{}
	}

	n := len(bodies)
	for i := 0; i < n; i++ {
		bi := bodies[i]
		for j := i + 1; j < n; j++ {
			bj := bodies[j]

			dx := bj.Position.X - bi.Position.X
			dy := bj.Position.Y - bi.Position.Y
			r := math.Sqrt(dx*dx + dy*dy)
			if r <= g.MinSeparation || r == 0 || math.IsNaN(r) || math.IsInf(r, 0) {
				return &dynamo.DegenerateConfigurationError{I: i, J: j, Distance: r}
			}

			force := g.G * bi.Mass() * bj.Mass() / (r * r)
			sin, cos := math.Sincos(math.Atan2(dy, dx))
			f := r2.Vec{X: force * cos, Y: force * sin}

			acc[i] = r2.Add(acc[i], r2.Scale(1/bi.Mass(), f))
			acc[j] = r2.Sub(acc[j], r2.Scale(1/bj.Mass(), f))
		}
	}

	return nil
}

// PotentialEnergy implements dynamo.Potential.
func (g *Gravity) PotentialEnergy(bodies []dynamo.Body) float64 {
	e := 0.0
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			r := r2.Norm(r2.Sub(bodies[j].Position, bodies[i].Position))
			e -= g.G * bodies[i].Mass() * bodies[j].Mass() / r
		}
	}
	return e
}

// CircularVelocity returns the relative speed of two bodies of total mass m
// on a circular orbit of radius r.
func (g *Gravity) CircularVelocity(m, r float64) float64 {
	return math.Sqrt(g.G * m / r)
}
