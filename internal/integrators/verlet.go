package integrators

import (
	"github.com/san-kum/threebody/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Verlet is velocity Verlet: a full position step from the current
// velocity and acceleration, then a velocity step from the average of the
// old and new accelerations. Two force evaluations per step.
type Verlet struct {
	acc     []r2.Vec
	accNew  []r2.Vec
	scratch []dynamo.Body
}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) ensureScratch(n int) {
	if len(v.acc) != n {
		v.acc = make([]r2.Vec, n)
		v.accNew = make([]r2.Vec, n)
		v.scratch = make([]dynamo.Body, n)
	}
}

func (v *Verlet) Step(field dynamo.ForceField, bodies []dynamo.Body, dt float64, next []dynamo.Body) error {
	v.ensureScratch(len(bodies))

	if err := field.Accelerations(bodies, v.acc); err != nil {
		return err
	}

	dt2 := 0.5 * dt * dt
	for i, b := range bodies {
		pos := r2.Add(b.Position, r2.Add(r2.Scale(dt, b.Velocity), r2.Scale(dt2, v.acc[i])))
		v.scratch[i] = b.Advance(pos, b.Velocity)
	}

	if err := field.Accelerations(v.scratch, v.accNew); err != nil {
		return err
	}

	halfDt := 0.5 * dt
	for i, b := range v.scratch {
		vel := r2.Add(b.Velocity, r2.Scale(halfDt, r2.Add(v.acc[i], v.accNew[i])))
		next[i] = b.Advance(b.Position, vel)
	}

	return checkFinite(next)
}

// Leapfrog is the kick-drift-kick form: half a velocity step, a full
// position step, then the second half velocity step at the new positions.
type Leapfrog struct {
	acc     []r2.Vec
	scratch []dynamo.Body
}

func NewLeapfrog() *Leapfrog {
	return &Leapfrog{}
}

func (l *Leapfrog) Step(field dynamo.ForceField, bodies []dynamo.Body, dt float64, next []dynamo.Body) error {
	n := len(bodies)
	if len(l.acc) != n {
		l.acc = make([]r2.Vec, n)
		l.scratch = make([]dynamo.Body, n)
	}

	if err := field.Accelerations(bodies, l.acc); err != nil {
		return err
	}

	halfDt := dt * 0.5
	for i, b := range bodies {
		vel := r2.Add(b.Velocity, r2.Scale(halfDt, l.acc[i]))
		pos := r2.Add(b.Position, r2.Scale(dt, vel))
		l.scratch[i] = b.Advance(pos, vel)
	}

	if err := field.Accelerations(l.scratch, l.acc); err != nil {
		return err
	}

	for i, b := range l.scratch {
		vel := r2.Add(b.Velocity, r2.Scale(halfDt, l.acc[i]))
		next[i] = b.Advance(b.Position, vel)
	}

	return checkFinite(next)
}
