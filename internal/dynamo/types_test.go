package dynamo

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestNewBody(t *testing.T) {
	tests := []struct {
		name    string
		mass    float64
		pos     r2.Vec
		vel     r2.Vec
		wantErr bool
	}{
		{"valid", 1, r2.Vec{X: 1}, r2.Vec{Y: 1}, false},
		{"zero mass", 0, r2.Vec{}, r2.Vec{}, true},
		{"negative mass", -1, r2.Vec{}, r2.Vec{}, true},
		{"nan mass", math.NaN(), r2.Vec{}, r2.Vec{}, true},
		{"inf mass", math.Inf(1), r2.Vec{}, r2.Vec{}, true},
		{"nan position", 1, r2.Vec{X: math.NaN()}, r2.Vec{}, true},
		{"inf velocity", 1, r2.Vec{}, r2.Vec{Y: math.Inf(-1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBody(tt.mass, tt.pos, tt.vel)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if b.Mass() != tt.mass || b.Position != tt.pos || b.Velocity != tt.vel {
				t.Errorf("unexpected body %+v", b)
			}
		})
	}
}

func TestBodyAdvanceKeepsMass(t *testing.T) {
	b, _ := AtRest(3, r2.Vec{X: 1, Y: 2})
	moved := b.Advance(r2.Vec{X: 5}, r2.Vec{Y: -1})

	if moved.Mass() != 3 {
		t.Errorf("expected mass 3, got %v", moved.Mass())
	}
	if b.Position != (r2.Vec{X: 1, Y: 2}) {
		t.Error("Advance modified the receiver")
	}
	if got := moved.Momentum(); got != (r2.Vec{Y: -3}) {
		t.Errorf("expected momentum (0, -3), got %v", got)
	}
	if got := moved.KineticEnergy(); got != 1.5 {
		t.Errorf("expected kinetic energy 1.5, got %v", got)
	}
}

func TestStepSnapshot(t *testing.T) {
	a, _ := AtRest(1, r2.Vec{X: 1})
	b, _ := AtRest(2, r2.Vec{X: -1})
	bodies := []Body{a, b}

	s := NewStep(4, 0.5, bodies)
	bodies[0] = b

	if s.ID != 4 || s.Time != 2 {
		t.Errorf("expected id 4 at t=2, got %d at %v", s.ID, s.Time)
	}
	if s.Body(0) != a {
		t.Error("step aliases the caller's slice")
	}

	out := s.Bodies()
	out[1] = a
	if s.Body(1) != b {
		t.Error("Bodies exposes internal storage")
	}
	if s.Len() != 2 || !s.IsValid() {
		t.Errorf("unexpected step %+v", s)
	}
}

func TestStepIsValid(t *testing.T) {
	a, _ := AtRest(1, r2.Vec{})
	bad := a.Advance(r2.Vec{X: math.NaN()}, r2.Vec{})

	if NewStep(0, 1, []Body{a, bad}).IsValid() {
		t.Error("expected step with NaN position to be invalid")
	}
}

func TestConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Dt != DefaultDt || cfg.Steps != DefaultSteps {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
	if got := cfg.Duration(); got != 2e7 {
		t.Errorf("expected duration 2e7, got %v", got)
	}
	if err := (Config{Dt: math.Inf(1), Steps: 1}).Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for infinite dt, got %v", err)
	}
}

func TestErrorMessages(t *testing.T) {
	err := error(&SimulationError{
		Step:    7,
		Time:    140,
		Wrapped: &DegenerateConfigurationError{Step: 7, I: 0, J: 2},
	})

	want := "step 7 (t=140.0000): dynamo: degenerate configuration at step 7: bodies 0 and 2 are 0 apart"
	if err.Error() != want {
		t.Errorf("got %q", err.Error())
	}
	if !errors.Is(err, ErrDegenerateConfiguration) {
		t.Error("expected errors.Is to reach the sentinel")
	}
}
