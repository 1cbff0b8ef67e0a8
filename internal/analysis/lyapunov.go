package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/threebody/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// ctxCheckInterval is how many steps run between context checks.
const ctxCheckInterval = 1024

// Separation is the phase-space distance between two arenas of the same
// size: positions and velocities of every body taken together.
func Separation(a, b []dynamo.Body) float64 {
	sum := 0.0
	for i := range a {
		sum += r2.Norm2(r2.Sub(b[i].Position, a[i].Position))
		sum += r2.Norm2(r2.Sub(b[i].Velocity, a[i].Velocity))
	}
	return math.Sqrt(sum)
}

// LyapunovExponent estimates the largest Lyapunov exponent by the
// two-trajectory method. A copy of initial with body 0 displaced by
// perturbation along x is integrated next to the reference; after every
// step the log growth of their separation is accumulated and the copy is
// pulled back to distance perturbation along the same direction.
//
// A positive value indicates chaos. Integrators hold scratch buffers, so
// newInteg must return a fresh one per call.
func LyapunovExponent(
	ctx context.Context,
	field dynamo.ForceField,
	newInteg func() dynamo.Integrator,
	initial []dynamo.Body,
	cfg dynamo.Config,
	perturbation float64,
) (float64, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}
	if len(initial) == 0 {
		return 0, fmt.Errorf("%w: no bodies", dynamo.ErrInvalidConfig)
	}
	if !(perturbation > 0) || math.IsInf(perturbation, 0) {
		return 0, fmt.Errorf("%w: perturbation must be positive and finite, got %v", dynamo.ErrInvalidConfig, perturbation)
	}

	n := len(initial)
	x := append([]dynamo.Body(nil), initial...)
	xp := append([]dynamo.Body(nil), initial...)
	xp[0] = xp[0].Advance(r2.Add(xp[0].Position, r2.Vec{X: perturbation}), xp[0].Velocity)
	next, nextp := make([]dynamo.Body, n), make([]dynamo.Body, n)

	integ, integp := newInteg(), newInteg()
	d0 := perturbation
	sumLog := 0.0

	for k := uint32(1); k <= cfg.Steps; k++ {
		if k%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return 0, fmt.Errorf("%w at step %d: %w", dynamo.ErrCanceled, k, err)
			}
		}

		if err := integ.Step(field, x, cfg.Dt, next); err != nil {
			return 0, fmt.Errorf("analysis: reference step %d: %w", k, err)
		}
		if err := integp.Step(field, xp, cfg.Dt, nextp); err != nil {
			return 0, fmt.Errorf("analysis: perturbed step %d: %w", k, err)
		}
		x, next = next, x
		xp, nextp = nextp, xp

		sep := Separation(x, xp)
		if sep == 0 {
			// trajectories merged to rounding; restart the perturbation
			xp[0] = xp[0].Advance(r2.Add(x[0].Position, r2.Vec{X: d0}), x[0].Velocity)
			continue
		}
		sumLog += math.Log(sep / d0)

		scale := d0 / sep
		for i := range xp {
			pos := r2.Add(x[i].Position, r2.Scale(scale, r2.Sub(xp[i].Position, x[i].Position)))
			vel := r2.Add(x[i].Velocity, r2.Scale(scale, r2.Sub(xp[i].Velocity, x[i].Velocity)))
			xp[i] = xp[i].Advance(pos, vel)
		}
	}

	return sumLog / cfg.Duration(), nil
}
