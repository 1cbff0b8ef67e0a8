// Package physics provides the gravitational force evaluator.
//
// [Gravity] implements [dynamo.ForceField] and [dynamo.Potential]. For each
// unordered pair of bodies it computes
//
//	F = G * m_i * m_j / r^2
//
// along the direction atan2(dy, dx) and applies +F/m_i to body i and
// -F/m_j to body j. All pairs are evaluated against the same snapshot, so
// the result does not depend on body order.
//
// # Degenerate configurations
//
// Coincident bodies (r == 0, or r <= MinSeparation) make the force
// undefined. Accelerations returns a [dynamo.DegenerateConfigurationError]
// naming the pair instead of producing NaN or Inf:
//
//	var de *dynamo.DegenerateConfigurationError
//	if errors.As(err, &de) {
//	    fmt.Println(de.I, de.J)
//	}
package physics
