// Package dynamo provides the core primitives of the gravitational simulation.
//
// The package defines the value types and interfaces shared by the force
// evaluator, the integrators and the trajectory store:
//
//   - [Body]: a point mass with immutable mass and a position/velocity pair
//   - [Step]: an immutable snapshot of every body at one simulated instant
//   - [ForceField]: computes per-body accelerations for a fixed snapshot
//   - [Integrator]: advances all bodies by one fixed time step
//   - [Recorder]: receives the steps emitted by a run
//   - [Simulator]: orchestrates simulation runs
//
// # Example
//
//	sim := dynamo.New(physics.NewGravity(dynamo.GravitationConstant), integrators.NewSemiImplicitEuler())
//	store, _ := trajectory.New(1000)
//	result, err := sim.Run(ctx, bodies, dynamo.DefaultConfig(), store)
//
// # Step numbering
//
// Step 0 holds the initial conditions. Every integration emits the next
// step, so a run of N integrations emits N+1 steps. The simulated time of a
// step is always ID*Dt, computed by multiplication.
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. A run owns its body state
// exclusively; steps handed to a [Recorder] are copies and may be shared
// freely once emitted.
package dynamo
