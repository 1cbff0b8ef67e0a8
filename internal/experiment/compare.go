package experiment

import (
	"context"
	"time"

	"github.com/san-kum/threebody/internal/config"
	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/metrics"
	"golang.org/x/sync/errgroup"
)

type Comparison struct {
	Integrator    string
	EnergyDrift   float64
	MomentumDrift float64
	Final         dynamo.Step
	StepsTaken    uint32
	Elapsed       time.Duration
	Err           error
}

// Compare runs the same configuration once per integrator, concurrently.
// A failing integrator is reported in its Comparison; only an unknown
// integrator name fails the whole comparison.
func Compare(ctx context.Context, cfg *config.Config, registry *Registry, names []string) ([]Comparison, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	bodies, err := cfg.InitialBodies()
	if err != nil {
		return nil, err
	}

	integs := make([]dynamo.Integrator, len(names))
	for i, name := range names {
		if integs[i], err = registry.GetIntegrator(name); err != nil {
			return nil, err
		}
	}

	results := make([]Comparison, len(names))
	g, gctx := errgroup.WithContext(ctx)

	for i, name := range names {
		g.Go(func() error {
			gravity := cfg.Gravity()
			sim := dynamo.New(gravity, integs[i])
			momentum := metrics.NewMomentumDrift()
			sim.AddMetric(momentum)

			start := time.Now()
			res, err := sim.Run(gctx, bodies, cfg.SimConfig(), nil)
			results[i] = Comparison{
				Integrator:    name,
				EnergyDrift:   res.EnergyDrift,
				MomentumDrift: momentum.Value(),
				Final:         res.Final,
				StepsTaken:    res.StepsTaken,
				Elapsed:       time.Since(start),
				Err:           err,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, ctx.Err()
}
