package experiment

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"time"

	"github.com/san-kum/threebody/internal/config"
	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/physics"
	"github.com/san-kum/threebody/internal/render"
	"github.com/san-kum/threebody/internal/trajectory"
	"golang.org/x/sync/errgroup"
)

// Experiment is one configured simulation: bodies, force field, integrator
// and metrics, ready to run.
type Experiment struct {
	cfg       *config.Config
	gravity   *physics.Gravity
	bodies    []dynamo.Body
	simulator *dynamo.Simulator
	logger    *slog.Logger
}

func New(cfg *config.Config, registry *Registry, logger *slog.Logger) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	integ, err := registry.GetIntegrator(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	bodies, err := cfg.InitialBodies()
	if err != nil {
		return nil, err
	}

	gravity := cfg.Gravity()
	sim := dynamo.New(gravity, integ)
	radius := max(-cfg.Render.AxisMin, cfg.Render.AxisMax) / cfg.Render.Scale
	for _, m := range registry.DefaultMetrics(gravity, radius) {
		sim.AddMetric(m)
	}

	e := &Experiment{
		cfg:       cfg,
		gravity:   gravity,
		bodies:    bodies,
		simulator: sim,
		logger:    logger,
	}
	sim.AddObserver(newProgress(logger, cfg.SimConfig()))
	return e, nil
}

func (e *Experiment) Config() *config.Config { return e.cfg }

// Simulator returns the underlying simulator for adding observers.
func (e *Experiment) Simulator() *dynamo.Simulator { return e.simulator }

func (e *Experiment) Bodies() []dynamo.Body {
	c := make([]dynamo.Body, len(e.bodies))
	copy(c, e.bodies)
	return c
}

// Run simulates to completion and keeps every stride-th step in memory.
func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, *trajectory.Store, error) {
	simCfg := e.cfg.SimConfig()
	store, err := trajectory.WithCapacity(e.cfg.Stride, simCfg.Steps)
	if err != nil {
		return nil, nil, err
	}

	e.logger.Info("simulation started", "preset", e.cfg.Preset, "bodies", len(e.bodies), "steps", simCfg.Steps, "dt", simCfg.Dt, "integrator", e.cfg.Integrator)
	start := time.Now()
	result, err := e.simulator.Run(ctx, e.bodies, simCfg, store)
	if err != nil {
		e.logger.Error("simulation failed", "err", err, "steps_taken", stepsTaken(result))
		return result, store, err
	}
	e.logger.Info("simulation finished", "elapsed", time.Since(start), "retained", store.Len())
	return result, store, nil
}

// RunPipelined streams retained steps into r while the simulation runs.
// The first failure on either side stops both; r never sees the end of a
// failed run as a normal end of stream.
func (e *Experiment) RunPipelined(ctx context.Context, r render.Renderer, buffer int) (*dynamo.Result, error) {
	stream, err := trajectory.NewStream(e.cfg.Stride, buffer)
	if err != nil {
		return nil, err
	}

	parent := ctx
	ctx, cancel := context.WithCancelCause(parent)
	defer cancel(nil)

	g, gctx := errgroup.WithContext(ctx)
	var result *dynamo.Result

	g.Go(func() error {
		res, err := e.simulator.Run(gctx, e.bodies, e.cfg.SimConfig(), stream)
		result = res
		if err != nil {
			cancel(err)
			stream.Cancel()
			return err
		}
		stream.Close()
		return nil
	})
	g.Go(func() error {
		err := r.Render(gctx, stream.All())
		if err != nil {
			cancel(err)
		}
		stream.Cancel()
		return err
	})

	e.logger.Info("pipelined run started", "preset", e.cfg.Preset, "steps", e.cfg.Steps, "stride", e.cfg.Stride)
	if err := g.Wait(); err != nil {
		// the side that failed first set the cause; the other only saw
		// the cancellation it triggered
		if cause := context.Cause(ctx); cause != nil && cause != context.Cause(parent) {
			err = cause
		}
		e.logger.Error("pipelined run failed", "err", err, "steps_taken", stepsTaken(result))
		return result, err
	}
	return result, nil
}

// RenderOptions maps the render section of the config onto GIF options.
func (e *Experiment) RenderOptions() (render.Options, error) {
	rc := e.cfg.Render
	opts := render.DefaultOptions()
	opts.Path = rc.Output
	opts.FPS = rc.FPS
	opts.Width, opts.Height = rc.Width, rc.Height
	opts.Scale = rc.Scale
	opts.AxisMin, opts.AxisMax = rc.AxisMin, rc.AxisMax
	opts.MaxFrames = rc.MaxFrames
	opts.Total = trajectory.RetainedCount(uint32(e.cfg.Steps), e.cfg.Stride)

	colors := make([]color.Color, len(e.cfg.Bodies))
	for i, b := range e.cfg.Bodies {
		c, err := render.ParseColor(b.Color, i)
		if err != nil {
			return opts, fmt.Errorf("body %d (%s): %w", i, b.Name, err)
		}
		colors[i] = c
	}
	opts.Colors = colors
	return opts, nil
}

func stepsTaken(r *dynamo.Result) uint32 {
	if r == nil {
		return 0
	}
	return r.StepsTaken
}
