package dynamo

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

const (
	// GravitationConstant is Newton's G in m^3 kg^-1 s^-2.
	GravitationConstant = 6.67430e-11
	DefaultDt           = 20.0
	DefaultSteps        = 1_000_000
)

// Body is a point mass. Its mass is fixed at construction.
type Body struct {
	mass     float64
	Position r2.Vec
	Velocity r2.Vec
}

// NewBody returns a body with the given mass, position and velocity.
func NewBody(mass float64, pos, vel r2.Vec) (Body, error) {
	if !(mass > 0) || math.IsInf(mass, 0) {
		return Body{}, invalidConfig("mass must be positive and finite, got %v", mass)
	}
	if !finite(pos) || !finite(vel) {
		return Body{}, invalidConfig("position and velocity must be finite")
	}
	return Body{mass: mass, Position: pos, Velocity: vel}, nil
}

// AtRest returns a body with zero initial velocity.
func AtRest(mass float64, pos r2.Vec) (Body, error) {
	return NewBody(mass, pos, r2.Vec{})
}

func (b Body) Mass() float64 { return b.mass }

// Advance returns the same body moved to a new position and velocity.
func (b Body) Advance(pos, vel r2.Vec) Body {
	return Body{mass: b.mass, Position: pos, Velocity: vel}
}

// Momentum returns mass * velocity.
func (b Body) Momentum() r2.Vec { return r2.Scale(b.mass, b.Velocity) }

func (b Body) KineticEnergy() float64 {
	return 0.5 * b.mass * r2.Norm2(b.Velocity)
}

func (b Body) IsValid() bool {
	return finite(b.Position) && finite(b.Velocity)
}

func finite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) && !math.IsNaN(v.Y) && !math.IsInf(v.Y, 0)
}

// Step is an immutable snapshot of all bodies at one simulated instant.
type Step struct {
	ID     uint32
	Time   float64
	bodies []Body
}

// NewStep copies bodies into a new snapshot with Time = id*dt.
func NewStep(id uint32, dt float64, bodies []Body) Step {
	c := make([]Body, len(bodies))
	copy(c, bodies)
	return Step{ID: id, Time: float64(id) * dt, bodies: c}
}

func (s Step) Len() int { return len(s.bodies) }

func (s Step) Body(i int) Body { return s.bodies[i] }

// Bodies returns a copy of the snapshot's bodies.
func (s Step) Bodies() []Body {
	c := make([]Body, len(s.bodies))
	copy(c, s.bodies)
	return c
}

// IsValid reports whether every body has finite state.
func (s Step) IsValid() bool {
	for _, b := range s.bodies {
		if !b.IsValid() {
			return false
		}
	}
	return true
}

// ForceField computes the acceleration of every body for a fixed snapshot.
// Implementations must read positions only from bodies and write acc only.
type ForceField interface {
	Accelerations(bodies []Body, acc []r2.Vec) error
}

// Potential is implemented by force fields with a potential energy.
type Potential interface {
	PotentialEnergy(bodies []Body) float64
}

// Integrator advances bodies by one step of dt, writing the result into next.
// On error next must not be used.
type Integrator interface {
	Step(field ForceField, bodies []Body, dt float64, next []Body) error
}

// Recorder receives the steps of a run in ascending ID order.
type Recorder interface {
	Record(s Step) error
}

type Metric interface {
	Name() string
	Observe(s Step)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s Step)
}

type Config struct {
	Dt    float64
	Steps uint32
}

func DefaultConfig() Config {
	return Config{
		Dt:    DefaultDt,
		Steps: DefaultSteps,
	}
}

func (c Config) Validate() error {
	if !(c.Dt > 0) || math.IsInf(c.Dt, 0) {
		return invalidConfig("dt must be positive and finite, got %v", c.Dt)
	}
	if c.Steps == 0 {
		return invalidConfig("steps must be positive")
	}
	return nil
}

// Duration is the simulated time covered by the run.
func (c Config) Duration() float64 { return float64(c.Steps) * c.Dt }

type Result struct {
	StepsTaken  uint32
	Final       Step
	Metrics     map[string]float64
	EnergyDrift float64
}
