package trajectory

import (
	"iter"
	"sync"

	"github.com/san-kum/threebody/internal/dynamo"
)

// Stream hands retained steps from one producer to one consumer.
// The producer calls Record and finally Close; the consumer ranges over All
// once. Cancel unblocks a producer whose consumer has gone away.
type Stream struct {
	policy
	ch     chan dynamo.Step
	done   chan struct{}
	once   sync.Once
	cancel sync.Once
}

func NewStream(stride, buffer int) (*Stream, error) {
	p, err := newPolicy(stride)
	if err != nil {
		return nil, err
	}
	if buffer < 0 {
		buffer = 0
	}
	return &Stream{
		policy: p,
		ch:     make(chan dynamo.Step, buffer),
		done:   make(chan struct{}),
	}, nil
}

// Record implements dynamo.Recorder. It blocks while the buffer is full.
func (s *Stream) Record(step dynamo.Step) error {
	select {
	case <-s.done:
		return ErrClosed
	default:
	}

	keep, err := s.admit(step)
	if err != nil || !keep {
		return err
	}

	select {
	case s.ch <- step:
		return nil
	case <-s.done:
		return ErrClosed
	}
}

// Close marks the end of the producer's steps.
func (s *Stream) Close() {
	s.once.Do(func() { close(s.ch) })
}

// Cancel stops the stream from the consumer side; pending and future
// Record calls fail with ErrClosed.
func (s *Stream) Cancel() {
	s.cancel.Do(func() { close(s.done) })
}

// All yields steps until the producer closes the stream. Breaking out of
// the loop cancels the stream.
func (s *Stream) All() iter.Seq[dynamo.Step] {
	return func(yield func(dynamo.Step) bool) {
		for {
			select {
			case step, ok := <-s.ch:
				if !ok {
					return
				}
				if !yield(step) {
					s.Cancel()
					return
				}
			case <-s.done:
				return
			}
		}
	}
}
