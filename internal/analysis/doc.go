// Package analysis characterizes runs beyond conservation metrics.
//
//   - [LyapunovExponent]: largest Lyapunov exponent via two nearby
//     trajectories, renormalized every step
//   - [Separation]: phase-space distance between two body arenas
package analysis
