package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/integrators"
	"github.com/san-kum/threebody/internal/metrics"
)

type Registry struct {
	integrators map[string]func() dynamo.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func() dynamo.Integrator),
	}

	r.integrators["symplectic"] = func() dynamo.Integrator { return integrators.NewSemiImplicitEuler() }
	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["verlet"] = func() dynamo.Integrator { return integrators.NewVerlet() }
	r.integrators["leapfrog"] = func() dynamo.Integrator { return integrators.NewLeapfrog() }
	r.integrators["rk4"] = func() dynamo.Integrator { return integrators.NewRK4() }

	return r
}

// GetIntegrator returns a fresh integrator; integrators hold scratch
// buffers and must not be shared between runs.
func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown integrator: %s (available: %v)", dynamo.ErrInvalidConfig, name, r.Integrators())
	}
	return fn(), nil
}

func (r *Registry) Integrators() []string {
	names := make([]string, 0, len(r.integrators))
	for name := range r.integrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics tracks energy, conservation drift and how long the bodies
// stay inside radius.
func (r *Registry) DefaultMetrics(p dynamo.Potential, radius float64) []dynamo.Metric {
	return []dynamo.Metric{
		metrics.NewEnergy(p),
		metrics.NewEnergyDrift(p),
		metrics.NewMomentumDrift(),
		metrics.NewStability(radius),
	}
}
