package integrators

import (
	"github.com/san-kum/threebody/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Euler is the explicit Euler method: positions advance with the velocity
// from the start of the step. It drifts in energy and is kept as a
// reference for comparisons.
type Euler struct {
	acc []r2.Vec
}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(field dynamo.ForceField, bodies []dynamo.Body, dt float64, next []dynamo.Body) error {
	if len(e.acc) != len(bodies) {
		e.acc = make([]r2.Vec, len(bodies))
	}

	if err := field.Accelerations(bodies, e.acc); err != nil {
		return err
	}

	for i, b := range bodies {
		pos := r2.Add(b.Position, r2.Scale(dt, b.Velocity))
		vel := r2.Add(b.Velocity, r2.Scale(dt, e.acc[i]))
		next[i] = b.Advance(pos, vel)
	}

	return checkFinite(next)
}
