package trajectory

import (
	"errors"
	"fmt"
	"iter"

	"github.com/san-kum/threebody/internal/dynamo"
)

var (
	ErrOutOfOrder = errors.New("trajectory: step out of order")
	ErrClosed     = errors.New("trajectory: stream closed")
	ErrStride     = errors.New("trajectory: stride must be at least 1")
)

// policy decides which offered steps are retained and enforces ascending IDs.
type policy struct {
	stride  uint32
	offered bool
	lastID  uint32
}

func newPolicy(stride int) (policy, error) {
	if stride < 1 {
		return policy{}, fmt.Errorf("%w, got %d", ErrStride, stride)
	}
	return policy{stride: uint32(stride)}, nil
}

func (p *policy) admit(s dynamo.Step) (bool, error) {
	if p.offered && s.ID <= p.lastID {
		return false, fmt.Errorf("%w: step %d after step %d", ErrOutOfOrder, s.ID, p.lastID)
	}
	p.offered = true
	p.lastID = s.ID
	return s.ID%p.stride == 0, nil
}

// Store is an append-only, in-memory trajectory keeping every stride-th step.
type Store struct {
	policy
	steps []dynamo.Step
}

func New(stride int) (*Store, error) {
	p, err := newPolicy(stride)
	if err != nil {
		return nil, err
	}
	return &Store{policy: p, steps: make([]dynamo.Step, 0)}, nil
}

// WithCapacity preallocates room for the steps a run of n integrations retains.
func WithCapacity(stride int, n uint32) (*Store, error) {
	s, err := New(stride)
	if err != nil {
		return nil, err
	}
	s.steps = make([]dynamo.Step, 0, RetainedCount(n, stride))
	return s, nil
}

// Record implements dynamo.Recorder.
func (s *Store) Record(step dynamo.Step) error {
	keep, err := s.admit(step)
	if err != nil || !keep {
		return err
	}
	s.steps = append(s.steps, step)
	return nil
}

func (s *Store) Stride() int { return int(s.stride) }

func (s *Store) Len() int { return len(s.steps) }

func (s *Store) At(i int) dynamo.Step { return s.steps[i] }

func (s *Store) Last() (dynamo.Step, bool) {
	if len(s.steps) == 0 {
		return dynamo.Step{}, false
	}
	return s.steps[len(s.steps)-1], true
}

// All iterates the retained steps in ascending order.
func (s *Store) All() iter.Seq[dynamo.Step] {
	return func(yield func(dynamo.Step) bool) {
		for _, step := range s.steps {
			if !yield(step) {
				return
			}
		}
	}
}

// RetainedCount is the number of steps kept from a run of n integrations
// (steps 0..n) at the given stride.
func RetainedCount(n uint32, stride int) int {
	if stride < 1 {
		return 0
	}
	return int(n)/stride + 1
}
