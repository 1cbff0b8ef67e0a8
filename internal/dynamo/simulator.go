package dynamo

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

var errStop = errors.New("dynamo: consumer stopped")

type Simulator struct {
	field      ForceField
	integrator Integrator
	metrics    []Metric
	observers  []Observer
}

func New(field ForceField, integrator Integrator) *Simulator {
	return &Simulator{
		field:      field,
		integrator: integrator,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run integrates cfg.Steps steps from initial and hands every emitted step,
// starting with step 0, to rec. rec may be nil. On error the partial result
// is returned; a step that failed to integrate is never recorded.
func (s *Simulator) Run(ctx context.Context, initial []Body, cfg Config, rec Recorder) (*Result, error) {
	for _, m := range s.metrics {
		m.Reset()
	}

	result := &Result{Metrics: make(map[string]float64)}
	initialEnergy, haveEnergy := s.energy(initial)

	err := s.advance(ctx, initial, cfg, func(step Step) error {
		for _, m := range s.metrics {
			m.Observe(step)
		}
		for _, obs := range s.observers {
			obs.OnStep(step)
		}
		if rec != nil {
			if err := rec.Record(step); err != nil {
				return err
			}
		}
		result.StepsTaken = step.ID
		result.Final = step
		return nil
	})

	if haveEnergy && result.Final.Len() > 0 && initialEnergy != 0 {
		finalEnergy, _ := s.energy(result.Final.bodies)
		result.EnergyDrift = math.Abs(finalEnergy-initialEnergy) / math.Abs(initialEnergy)
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, err
}

// Steps returns the run as a lazy, forward-only sequence. Every range over
// the sequence restarts from initial. The sequence ends after the final
// step, after yielding an error, or when the consumer stops.
func (s *Simulator) Steps(ctx context.Context, initial []Body, cfg Config) iter.Seq2[Step, error] {
	return func(yield func(Step, error) bool) {
		err := s.advance(ctx, initial, cfg, func(step Step) error {
			if !yield(step, nil) {
				return errStop
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStop) {
			yield(Step{}, err)
		}
	}
}

func (s *Simulator) advance(ctx context.Context, initial []Body, cfg Config, emit func(Step) error) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := s.validateBodies(initial); err != nil {
		return err
	}

	cur := make([]Body, len(initial))
	copy(cur, initial)
	next := make([]Body, len(initial))

	if err := emit(NewStep(0, cfg.Dt, cur)); err != nil {
		return err
	}

	for k := uint64(1); k <= uint64(cfg.Steps); k++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w at step %d: %w", ErrCanceled, k, ctx.Err())
		default:
		}

		id := uint32(k)
		if err := s.integrator.Step(s.field, cur, cfg.Dt, next); err != nil {
			return stepError(id, cfg.Dt, err)
		}
		for i := range next {
			if !next[i].IsValid() {
				return stepError(id, cfg.Dt, ErrInvalidState)
			}
		}
		cur, next = next, cur

		if err := emit(NewStep(id, cfg.Dt, cur)); err != nil {
			return err
		}
	}

	return nil
}

// validateBodies rejects an empty arena, unset bodies and an initial
// configuration the force field cannot evaluate.
func (s *Simulator) validateBodies(bodies []Body) error {
	if len(bodies) == 0 {
		return invalidConfig("no bodies")
	}
	for i, b := range bodies {
		if !(b.mass > 0) {
			return invalidConfig("body %d has no mass; construct bodies with NewBody", i)
		}
		if !b.IsValid() {
			return invalidConfig("body %d has non-finite state", i)
		}
	}
	probe := make([]r2.Vec, len(bodies))
	if err := s.field.Accelerations(bodies, probe); err != nil {
		return stepError(0, 0, err)
	}
	return nil
}

func stepError(id uint32, dt float64, err error) error {
	var de *DegenerateConfigurationError
	if errors.As(err, &de) {
		de.Step = id
	}
	return &SimulationError{Step: id, Time: float64(id) * dt, Wrapped: err}
}

func (s *Simulator) energy(bodies []Body) (float64, bool) {
	p, ok := s.field.(Potential)
	if !ok {
		return 0, false
	}
	e := p.PotentialEnergy(bodies)
	for _, b := range bodies {
		e += b.KineticEnergy()
	}
	return e, true
}
