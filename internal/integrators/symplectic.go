package integrators

import (
	"github.com/san-kum/threebody/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// SemiImplicitEuler updates every velocity from the pre-step accelerations,
// then every position from the new velocity.
type SemiImplicitEuler struct {
	acc []r2.Vec
}

func NewSemiImplicitEuler() *SemiImplicitEuler {
	return &SemiImplicitEuler{}
}

func (s *SemiImplicitEuler) ensureScratch(n int) {
	if len(s.acc) != n {
		s.acc = make([]r2.Vec, n)
	}
}

func (s *SemiImplicitEuler) Step(field dynamo.ForceField, bodies []dynamo.Body, dt float64, next []dynamo.Body) error {
	s.ensureScratch(len(bodies))

	if err := field.Accelerations(bodies, s.acc); err != nil {
		return err
	}

	for i, b := range bodies {
		vel := r2.Add(b.Velocity, r2.Scale(dt, s.acc[i]))
		pos := r2.Add(b.Position, r2.Scale(dt, vel))
		next[i] = b.Advance(pos, vel)
	}

	return checkFinite(next)
}

func checkFinite(bodies []dynamo.Body) error {
	for _, b := range bodies {
		if !b.IsValid() {
			return dynamo.ErrInvalidState
		}
	}
	return nil
}
