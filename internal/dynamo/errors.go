package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrDegenerateConfiguration indicates two bodies too close to evaluate their attraction.
	ErrDegenerateConfiguration = errors.New("dynamo: degenerate configuration (coincident bodies)")

	// ErrInvalidConfig indicates a configuration rejected before the run starts.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrInvalidState indicates a state with NaN or Inf components.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrCanceled indicates the simulation was interrupted.
	ErrCanceled = errors.New("dynamo: simulation canceled by context")
)

// DegenerateConfigurationError reports the pair of bodies whose separation
// fell to or below the minimum separation.
type DegenerateConfigurationError struct {
	Step     uint32
	I, J     int
	Distance float64
}

func (e *DegenerateConfigurationError) Error() string {
	return fmt.Sprintf("dynamo: degenerate configuration at step %d: bodies %d and %d are %g apart", e.Step, e.I, e.J, e.Distance)
}

func (e *DegenerateConfigurationError) Unwrap() error {
	return ErrDegenerateConfiguration
}

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    uint32
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

func invalidConfig(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
