package integrators

import (
	"github.com/san-kum/threebody/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// RK4 is the classical fourth-order Runge-Kutta method over positions and
// velocities. Accurate per step but not symplectic: energy drifts slowly
// over long runs.
type RK4 struct {
	ka, kb, kc, kd []r2.Vec // accelerations at the four stages
	va, vb, vc, vd []r2.Vec // velocities at the four stages
	scratch        []dynamo.Body
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.ka) != n {
		r.ka = make([]r2.Vec, n)
		r.kb = make([]r2.Vec, n)
		r.kc = make([]r2.Vec, n)
		r.kd = make([]r2.Vec, n)
		r.va = make([]r2.Vec, n)
		r.vb = make([]r2.Vec, n)
		r.vc = make([]r2.Vec, n)
		r.vd = make([]r2.Vec, n)
		r.scratch = make([]dynamo.Body, n)
	}
}

// stage sets scratch to bodies displaced by h along (vel, acc) and
// evaluates the field there.
func (r *RK4) stage(field dynamo.ForceField, bodies []dynamo.Body, h float64, vel, acc, outVel, outAcc []r2.Vec) error {
	for i, b := range bodies {
		pos := r2.Add(b.Position, r2.Scale(h, vel[i]))
		v := r2.Add(b.Velocity, r2.Scale(h, acc[i]))
		r.scratch[i] = b.Advance(pos, v)
		outVel[i] = v
	}
	return field.Accelerations(r.scratch, outAcc)
}

func (r *RK4) Step(field dynamo.ForceField, bodies []dynamo.Body, dt float64, next []dynamo.Body) error {
	n := len(bodies)
	r.ensureScratch(n)

	for i, b := range bodies {
		r.va[i] = b.Velocity
	}
	if err := field.Accelerations(bodies, r.ka); err != nil {
		return err
	}
	if err := r.stage(field, bodies, dt*0.5, r.va, r.ka, r.vb, r.kb); err != nil {
		return err
	}
	if err := r.stage(field, bodies, dt*0.5, r.vb, r.kb, r.vc, r.kc); err != nil {
		return err
	}
	if err := r.stage(field, bodies, dt, r.vc, r.kc, r.vd, r.kd); err != nil {
		return err
	}

	w := dt / 6.0
	for i, b := range bodies {
		dp := r2.Add(r2.Add(r.va[i], r2.Scale(2, r.vb[i])), r2.Add(r2.Scale(2, r.vc[i]), r.vd[i]))
		dv := r2.Add(r2.Add(r.ka[i], r2.Scale(2, r.kb[i])), r2.Add(r2.Scale(2, r.kc[i]), r.kd[i]))
		next[i] = b.Advance(r2.Add(b.Position, r2.Scale(w, dp)), r2.Add(b.Velocity, r2.Scale(w, dv)))
	}

	return checkFinite(next)
}
