package experiment

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/san-kum/threebody/internal/config"
	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/trajectory"
)

func binaryConfig() *config.Config {
	cfg := config.GetPreset("binary")
	cfg.Steps = 200
	cfg.Stride = 10
	return cfg
}

// recordingRenderer keeps every step it is handed and notes whether the
// sequence ended normally.
type recordingRenderer struct {
	steps    []dynamo.Step
	failAt   int
	err      error
	finished bool
}

func (r *recordingRenderer) Render(ctx context.Context, steps iter.Seq[dynamo.Step]) error {
	for s := range steps {
		if r.err != nil && len(r.steps) == r.failAt {
			return r.err
		}
		r.steps = append(r.steps, s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	r.finished = true
	return nil
}

func TestExperimentRun(t *testing.T) {
	exp, err := New(binaryConfig(), NewRegistry(), nil)
	if err != nil {
		t.Fatal(err)
	}

	result, traj, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.StepsTaken != 200 {
		t.Errorf("expected 200 steps, got %d", result.StepsTaken)
	}
	if traj.Len() != trajectory.RetainedCount(200, 10) {
		t.Errorf("expected %d retained steps, got %d", trajectory.RetainedCount(200, 10), traj.Len())
	}
	for _, name := range []string{"energy", "energy_drift", "momentum_drift", "stability"} {
		if _, ok := result.Metrics[name]; !ok {
			t.Errorf("missing metric %q", name)
		}
	}
	if result.Metrics["stability"] != 1 {
		t.Errorf("binary left the frame: stability %v", result.Metrics["stability"])
	}
}

func TestExperimentInvalid(t *testing.T) {
	cfg := binaryConfig()
	cfg.Integrator = "nope"
	if _, err := New(cfg, NewRegistry(), nil); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}

	cfg = binaryConfig()
	cfg.Dt = 0
	if _, err := New(cfg, NewRegistry(), nil); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestRunPipelinedMatchesSerial(t *testing.T) {
	serial, err := New(binaryConfig(), NewRegistry(), nil)
	if err != nil {
		t.Fatal(err)
	}
	_, traj, err := serial.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	piped, err := New(binaryConfig(), NewRegistry(), nil)
	if err != nil {
		t.Fatal(err)
	}
	r := &recordingRenderer{}
	result, err := piped.RunPipelined(context.Background(), r, 4)
	if err != nil {
		t.Fatalf("pipelined run failed: %v", err)
	}

	if !r.finished {
		t.Error("renderer did not see a normal end of stream")
	}
	if result.StepsTaken != 200 {
		t.Errorf("expected 200 steps, got %d", result.StepsTaken)
	}
	if len(r.steps) != traj.Len() {
		t.Fatalf("expected %d steps, got %d", traj.Len(), len(r.steps))
	}
	for i, s := range r.steps {
		want := traj.At(i)
		if s.ID != want.ID {
			t.Fatalf("step %d: id %d, want %d", i, s.ID, want.ID)
		}
		for j := 0; j < s.Len(); j++ {
			if s.Body(j) != want.Body(j) {
				t.Errorf("step %d body %d differs from serial run", s.ID, j)
			}
		}
	}
}

func TestRunPipelinedRendererFailure(t *testing.T) {
	exp, err := New(binaryConfig(), NewRegistry(), nil)
	if err != nil {
		t.Fatal(err)
	}
	boom := errors.New("disk full")
	r := &recordingRenderer{failAt: 3, err: boom}

	_, err = exp.RunPipelined(context.Background(), r, 0)
	if !errors.Is(err, boom) {
		t.Fatalf("expected renderer error, got %v", err)
	}
}

func TestRunPipelinedSimulationFailure(t *testing.T) {
	cfg := binaryConfig()
	cfg.Bodies[1].Position = cfg.Bodies[0].Position
	exp, err := New(cfg, NewRegistry(), nil)
	if err != nil {
		t.Fatal(err)
	}
	r := &recordingRenderer{}

	_, err = exp.RunPipelined(context.Background(), r, 4)
	if !errors.Is(err, dynamo.ErrDegenerateConfiguration) {
		t.Fatalf("expected degenerate configuration, got %v", err)
	}
	if r.finished {
		t.Error("renderer treated a failed run as complete")
	}
}

func TestRenderOptions(t *testing.T) {
	cfg := binaryConfig()
	cfg.Render.MaxFrames = 5
	exp, err := New(cfg, NewRegistry(), nil)
	if err != nil {
		t.Fatal(err)
	}

	opts, err := exp.RenderOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts.Total != 21 || opts.MaxFrames != 5 {
		t.Errorf("unexpected frame settings total=%d max=%d", opts.Total, opts.MaxFrames)
	}
	if len(opts.Colors) != 2 {
		t.Errorf("expected 2 colours, got %d", len(opts.Colors))
	}

	cfg.Bodies[0].Color = "blue"
	if _, err := exp.RenderOptions(); err == nil {
		t.Error("expected error for invalid colour")
	}
}

func TestCompare(t *testing.T) {
	registry := NewRegistry()
	results, err := Compare(context.Background(), binaryConfig(), registry, registry.Integrators())
	if err != nil {
		t.Fatal(err)
	}

	if len(results) != len(registry.Integrators()) {
		t.Fatalf("expected %d results, got %d", len(registry.Integrators()), len(results))
	}
	for _, c := range results {
		if c.Err != nil {
			t.Errorf("%s failed: %v", c.Integrator, c.Err)
		}
		if c.StepsTaken != 200 || c.Final.ID != 200 {
			t.Errorf("%s: expected 200 steps, got %d", c.Integrator, c.StepsTaken)
		}
		if c.MomentumDrift > 1e-12 {
			t.Errorf("%s: momentum drift %g", c.Integrator, c.MomentumDrift)
		}
	}
}

func TestCompareUnknownIntegrator(t *testing.T) {
	_, err := Compare(context.Background(), binaryConfig(), NewRegistry(), []string{"symplectic", "magic"})
	if !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}
