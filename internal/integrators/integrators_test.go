package integrators_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/threebody/internal/dynamo"
	"github.com/san-kum/threebody/internal/integrators"
	"github.com/san-kum/threebody/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

func mustBody(m, x, y, vx, vy float64) dynamo.Body {
	b, err := dynamo.NewBody(m, r2.Vec{X: x, Y: y}, r2.Vec{X: vx, Y: vy})
	Expect(err).NotTo(HaveOccurred())
	return b
}

func classicBodies() []dynamo.Body {
	return []dynamo.Body{
		mustBody(1.0, 0.3089693008, 0.4236727692, 0, 0),
		mustBody(10.0, -0.5, 0, 0, 0),
		mustBody(1.0, 0.5, 0, 0, 0),
	}
}

func binaryBodies() []dynamo.Body {
	v := math.Sqrt(0.5)
	return []dynamo.Body{
		mustBody(1, -0.5, 0, 0, -v),
		mustBody(1, 0.5, 0, 0, v),
	}
}

func figureEightBodies() []dynamo.Body {
	return []dynamo.Body{
		mustBody(1, -0.97000436, 0.24308753, 0.466203685, 0.43236573),
		mustBody(1, 0.97000436, -0.24308753, 0.466203685, 0.43236573),
		mustBody(1, 0, 0, -0.93240737, -0.86473146),
	}
}

func advance(integ dynamo.Integrator, field dynamo.ForceField, bodies []dynamo.Body, dt float64, n int) []dynamo.Body {
	cur := append([]dynamo.Body(nil), bodies...)
	next := make([]dynamo.Body, len(bodies))
	for k := 0; k < n; k++ {
		Expect(integ.Step(field, cur, dt, next)).To(Succeed())
		cur, next = next, cur
	}
	return cur
}

func energy(g *physics.Gravity, bodies []dynamo.Body) float64 {
	e := g.PotentialEnergy(bodies)
	for _, b := range bodies {
		e += b.KineticEnergy()
	}
	return e
}

func momentum(bodies []dynamo.Body) r2.Vec {
	var p r2.Vec
	for _, b := range bodies {
		p = r2.Add(p, b.Momentum())
	}
	return p
}

type failingField struct{ err error }

func (f failingField) Accelerations([]dynamo.Body, []r2.Vec) error { return f.err }

func relClose(want float64) OmegaMatcher {
	return BeNumerically("~", want, math.Abs(want)*1e-12+1e-300)
}

var _ = Describe("SemiImplicitEuler", func() {
	var (
		integ *integrators.SemiImplicitEuler
		field *physics.Gravity
	)

	BeforeEach(func() {
		integ = integrators.NewSemiImplicitEuler()
		field = physics.NewGravity(dynamo.GravitationConstant)
	})

	It("reproduces the hand-computed first step of the classic configuration", func() {
		next := advance(integ, field, classicBodies(), 20.0, 1)

		want := []struct{ vx, vy, x, y float64 }{
			{-1.1639611558000084e-08, -1.3060224182480984e-08, 0.30896906800776885, 0.42367250799551637},
			{2.7528507802250794e-09, 7.426290218478312e-10, -0.4999999449429844, 1.4852580436956626e-08},
			{-1.588889624425071e-08, 5.633933964002671e-09, 0.49999968222207514, 1.1267867928005342e-07},
		}
		for i, w := range want {
			Expect(next[i].Velocity.X).To(relClose(w.vx), "vx of body %d", i)
			Expect(next[i].Velocity.Y).To(relClose(w.vy), "vy of body %d", i)
			Expect(next[i].Position.X).To(relClose(w.x), "x of body %d", i)
			Expect(next[i].Position.Y).To(relClose(w.y), "y of body %d", i)
		}
	})

	It("preserves masses", func() {
		bodies := classicBodies()
		next := advance(integ, field, bodies, 20.0, 3)
		for i := range bodies {
			Expect(next[i].Mass()).To(Equal(bodies[i].Mass()))
		}
	})

	It("does not depend on the order of the bodies", func() {
		bodies := classicBodies()
		reversed := []dynamo.Body{bodies[2], bodies[1], bodies[0]}

		a := advance(integ, field, bodies, 20.0, 50)
		b := advance(integrators.NewSemiImplicitEuler(), field, reversed, 20.0, 50)

		for i := range a {
			j := len(a) - 1 - i
			Expect(b[j].Position.X).To(BeNumerically("~", a[i].Position.X, 1e-12))
			Expect(b[j].Position.Y).To(BeNumerically("~", a[i].Position.Y, 1e-12))
			Expect(b[j].Velocity.X).To(BeNumerically("~", a[i].Velocity.X, 1e-17))
			Expect(b[j].Velocity.Y).To(BeNumerically("~", a[i].Velocity.Y, 1e-17))
		}
	})

	It("conserves total momentum", func() {
		g := physics.NewGravity(1)
		bodies := figureEightBodies()
		p0 := momentum(bodies)

		final := advance(integ, g, bodies, 0.001, 1000)
		Expect(r2.Norm(r2.Sub(momentum(final), p0))).To(BeNumerically("<", 1e-12))
	})

	It("keeps a circular binary bound and near its starting point after one period", func() {
		g := physics.NewGravity(1)
		bodies := binaryBodies()
		period := 2 * math.Pi / math.Sqrt(2)
		dt := 0.001
		n := int(math.Round(period / dt))

		final := advance(integ, g, bodies, dt, n)
		for i := range bodies {
			Expect(r2.Norm(r2.Sub(final[i].Position, bodies[i].Position))).To(BeNumerically("<", 0.02))
		}
		e0 := energy(g, bodies)
		Expect(math.Abs((energy(g, final) - e0) / e0)).To(BeNumerically("<", 1e-2))
	})

	It("drifts less in energy than explicit Euler", func() {
		g := physics.NewGravity(1)
		bodies := binaryBodies()
		e0 := energy(g, bodies)

		symplectic := advance(integ, g, bodies, 0.001, 40000)
		explicit := advance(integrators.NewEuler(), g, bodies, 0.001, 40000)

		dSym := math.Abs((energy(g, symplectic) - e0) / e0)
		dExp := math.Abs((energy(g, explicit) - e0) / e0)
		Expect(dSym).To(BeNumerically("<", 1e-2))
		Expect(dExp).To(BeNumerically(">", 5*dSym))
	})

	It("propagates force field errors", func() {
		boom := errors.New("boom")
		next := make([]dynamo.Body, 2)
		err := integ.Step(failingField{boom}, binaryBodies(), 0.1, next)
		Expect(err).To(MatchError(boom))
	})

	It("reports coincident bodies as degenerate", func() {
		bodies := []dynamo.Body{mustBody(1, 0, 0, 0, 0), mustBody(1, 0, 0, 0, 0)}
		err := integ.Step(field, bodies, 1, make([]dynamo.Body, 2))
		Expect(errors.Is(err, dynamo.ErrDegenerateConfiguration)).To(BeTrue())
	})
})

var _ = Describe("Euler", func() {
	It("advances positions with the velocity from the start of the step", func() {
		g := physics.NewGravity(1)
		bodies := binaryBodies()
		next := advance(integrators.NewEuler(), g, bodies, 0.1, 1)

		for i := range bodies {
			Expect(next[i].Position.X).To(BeNumerically("~", bodies[i].Position.X+0.1*bodies[i].Velocity.X, 1e-15))
			Expect(next[i].Position.Y).To(BeNumerically("~", bodies[i].Position.Y+0.1*bodies[i].Velocity.Y, 1e-15))
		}
		// separation 1, G = 1, m = 1: |a| = 1 toward the partner
		Expect(next[0].Velocity.X).To(BeNumerically("~", 0.1, 1e-15))
		Expect(next[1].Velocity.X).To(BeNumerically("~", -0.1, 1e-15))
	})
})

var _ = DescribeTable("second and higher order integrators",
	func(newInteg func() dynamo.Integrator) {
		g := physics.NewGravity(1)
		bodies := binaryBodies()
		e0 := energy(g, bodies)
		p0 := momentum(bodies)
		period := 2 * math.Pi / math.Sqrt(2)
		dt := 0.001
		n := int(math.Round(period / dt))

		final := advance(newInteg(), g, bodies, dt, n)

		for i := range bodies {
			Expect(r2.Norm(r2.Sub(final[i].Position, bodies[i].Position))).To(BeNumerically("<", 0.01))
			Expect(final[i].Mass()).To(Equal(bodies[i].Mass()))
		}
		Expect(math.Abs((energy(g, final) - e0) / e0)).To(BeNumerically("<", 1e-5))
		Expect(r2.Norm(r2.Sub(momentum(final), p0))).To(BeNumerically("<", 1e-12))
	},
	Entry("verlet", func() dynamo.Integrator { return integrators.NewVerlet() }),
	Entry("leapfrog", func() dynamo.Integrator { return integrators.NewLeapfrog() }),
	Entry("rk4", func() dynamo.Integrator { return integrators.NewRK4() }),
)
