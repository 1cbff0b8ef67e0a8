package metrics

import (
	"math"

	"github.com/san-kum/threebody/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

// TotalEnergy is kinetic plus potential energy of bodies.
func TotalEnergy(p dynamo.Potential, bodies []dynamo.Body) float64 {
	e := p.PotentialEnergy(bodies)
	for _, b := range bodies {
		e += b.KineticEnergy()
	}
	return e
}

// TotalMomentum is the sum of mass * velocity.
func TotalMomentum(bodies []dynamo.Body) r2.Vec {
	var p r2.Vec
	for _, b := range bodies {
		p = r2.Add(p, b.Momentum())
	}
	return p
}

// Energy reports the mean total energy over the observed steps.
type Energy struct {
	name        string
	potential   dynamo.Potential
	samples     int
	totalEnergy float64
}

func NewEnergy(p dynamo.Potential) *Energy {
	return &Energy{name: "energy", potential: p}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(s dynamo.Step) {
	e.totalEnergy += TotalEnergy(e.potential, s.Bodies())
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift reports the largest relative deviation from the energy of the
// first observed step.
type EnergyDrift struct {
	name          string
	potential     dynamo.Potential
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(p dynamo.Potential) *EnergyDrift {
	return &EnergyDrift{name: "energy_drift", potential: p}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(s dynamo.Step) {
	energy := TotalEnergy(e.potential, s.Bodies())

	if e.samples == 0 {
		e.initialEnergy = energy
	}

	e.currentEnergy = energy
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

// MomentumDrift reports the largest absolute change of total momentum from
// the first observed step.
type MomentumDrift struct {
	initial  r2.Vec
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{}
}

func (m *MomentumDrift) Name() string { return "momentum_drift" }

func (m *MomentumDrift) Observe(s dynamo.Step) {
	p := TotalMomentum(s.Bodies())
	if m.samples == 0 {
		m.initial = p
	}
	m.samples++
	m.maxDrift = math.Max(m.maxDrift, r2.Norm(r2.Sub(p, m.initial)))
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initial = r2.Vec{}
	m.maxDrift = 0
	m.samples = 0
}
