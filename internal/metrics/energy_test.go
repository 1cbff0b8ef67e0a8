package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

func pair(t *testing.T, sep, v float64) dynamo.Step {
	t.Helper()
	a, err := dynamo.NewBody(1, r2.Vec{X: -sep / 2}, r2.Vec{Y: -v})
	if err != nil {
		t.Fatal(err)
	}
	b, err := dynamo.NewBody(1, r2.Vec{X: sep / 2}, r2.Vec{Y: v})
	if err != nil {
		t.Fatal(err)
	}
	return dynamo.NewStep(0, 1, []dynamo.Body{a, b})
}

func TestTotalEnergy(t *testing.T) {
	g := physics.NewGravity(1)
	s := pair(t, 1, 0.5)

	// kinetic 2 * 0.5 * 0.25, potential -1
	expected := 0.25 - 1
	if got := TotalEnergy(g, s.Bodies()); math.Abs(got-expected) > 1e-15 {
		t.Errorf("expected energy %f, got %f", expected, got)
	}
}

func TestEnergyMean(t *testing.T) {
	g := physics.NewGravity(1)
	m := NewEnergy(g)

	m.Observe(pair(t, 1, 0))
	m.Observe(pair(t, 2, 0))

	expected := (-1 + -0.5) / 2
	if math.Abs(m.Value()-expected) > 1e-15 {
		t.Errorf("expected mean energy %f, got %f", expected, m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Errorf("expected 0 after reset, got %f", m.Value())
	}
	m.Observe(pair(t, 1, 0))
	if math.Abs(m.Value()+1) > 1e-15 {
		t.Errorf("expected -1 after reset, got %f", m.Value())
	}
}

func TestEnergyDrift(t *testing.T) {
	g := physics.NewGravity(1)
	m := NewEnergyDrift(g)

	m.Observe(pair(t, 1, 0))   // -1
	m.Observe(pair(t, 2, 0))   // -0.5, drift 0.5
	m.Observe(pair(t, 1, 0.1)) // -0.99, drift 0.01

	if math.Abs(m.Value()-0.5) > 1e-12 {
		t.Errorf("expected max drift 0.5, got %f", m.Value())
	}
	if m.Name() != "energy_drift" {
		t.Errorf("unexpected name %q", m.Name())
	}

	m.Reset()
	m.Observe(pair(t, 2, 0))
	if m.Value() != 0 {
		t.Errorf("expected 0 drift after reset, got %f", m.Value())
	}
}

func TestMomentumDrift(t *testing.T) {
	m := NewMomentumDrift()
	m.Observe(pair(t, 1, 0.5))

	a, _ := dynamo.NewBody(1, r2.Vec{X: -1}, r2.Vec{X: 0.3})
	b, _ := dynamo.NewBody(1, r2.Vec{X: 1}, r2.Vec{X: 0.1})
	m.Observe(dynamo.NewStep(1, 1, []dynamo.Body{a, b}))

	if math.Abs(m.Value()-0.4) > 1e-15 {
		t.Errorf("expected drift 0.4, got %f", m.Value())
	}
	if got := TotalMomentum(pair(t, 1, 0.5).Bodies()); got != (r2.Vec{}) {
		t.Errorf("expected zero momentum, got %v", got)
	}
}

func TestStability(t *testing.T) {
	m := NewStability(1)
	if m.Value() != 1 {
		t.Errorf("expected 1 with no samples, got %f", m.Value())
	}

	m.Observe(pair(t, 1, 0))
	m.Observe(pair(t, 4, 0))
	m.Observe(pair(t, 2, 0))
	m.Observe(pair(t, 1.5, 0))

	if math.Abs(m.Value()-0.75) > 1e-15 {
		t.Errorf("expected stability 0.75, got %f", m.Value())
	}

	m.Reset()
	m.Observe(pair(t, 3, 0))
	if m.Value() != 0 {
		t.Errorf("expected 0 after a violation, got %f", m.Value())
	}
}
