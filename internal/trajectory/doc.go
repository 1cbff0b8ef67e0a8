// Package trajectory stores and streams the steps emitted by a simulation.
//
// Both [Store] and [Stream] implement [dynamo.Recorder] with the same
// retention policy: a step is kept when its ID is a multiple of the stride,
// so step 0 is always kept and a run of N integrations retains N/stride+1
// steps. Steps must be offered in strictly ascending ID order; anything
// else fails with [ErrOutOfOrder].
//
// [Store] keeps retained steps in memory. [Stream] is a single-producer,
// single-consumer handoff for rendering while the simulation runs, so only
// the channel buffer is resident at once.
package trajectory
