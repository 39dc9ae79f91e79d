package landing_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/quadsim/internal/flight"
	"github.com/san-kum/quadsim/internal/landing"
)

var _ = Describe("Supervisor", func() {
	var sup *landing.Supervisor
	push := flight.Disturbance{Roll: 1, Pitch: -2, Yaw: 1.3, Altitude: 0.05}

	BeforeEach(func() {
		sup = landing.NewSupervisor(0.1, 0.05)
	})

	Context("while the battery is healthy", func() {
		It("starts flying", func() {
			Expect(sup.State()).To(Equal(landing.StateFlying))
			_, ok := sup.TriggeredAt()
			Expect(ok).To(BeFalse())
		})

		It("passes disturbances through and holds the target", func() {
			Expect(sup.Evaluate(0.5, 1)).To(BeFalse())
			Expect(sup.Filter(push)).To(Equal(push))
			Expect(sup.Descend(1.0)).To(Equal(1.0))
		})
	})

	Context("when remaining crosses the threshold", func() {
		It("transitions exactly once", func() {
			transitions := 0
			for i, remaining := range []float64{0.3, 0.2, 0.11, 0.1, 0.05, 0.2, -0.3} {
				if sup.Evaluate(remaining, float64(i)) {
					transitions++
				}
			}
			Expect(transitions).To(Equal(1))
			at, ok := sup.TriggeredAt()
			Expect(ok).To(BeTrue())
			Expect(at).To(Equal(3.0))
		})

		It("fires at exactly the threshold", func() {
			Expect(sup.Evaluate(0.1, 0)).To(BeTrue())
			Expect(sup.Landing()).To(BeTrue())
		})

		It("stays landing when remaining recovers", func() {
			sup.Evaluate(0.05, 0)
			Expect(sup.Evaluate(0.9, 1)).To(BeFalse())
			Expect(sup.State()).To(Equal(landing.StateSafeLanding))
		})
	})

	Context("while landing", func() {
		BeforeEach(func() {
			sup.Evaluate(0, 0)
		})

		It("zeroes every disturbance", func() {
			Expect(sup.Filter(push).IsZero()).To(BeTrue())
		})

		It("strictly lowers the target every tick", func() {
			target := 1.0
			for i := 0; i < 100; i++ {
				next := sup.Descend(target)
				Expect(next).To(BeNumerically("<", target))
				Expect(next).To(BeNumerically("~", target-0.05, 1e-12))
				target = next
			}
		})

		It("returns to flying on reset", func() {
			sup.Reset()
			Expect(sup.State()).To(Equal(landing.StateFlying))
			Expect(sup.Filter(push)).To(Equal(push))
		})
	})

	It("falls back to the default step", func() {
		s := landing.NewSupervisor(0.2, 0)
		s.Evaluate(0.1, 0)
		Expect(s.Descend(1)).To(BeNumerically("~", 1-landing.DefaultDescentStep, 1e-12))
		Expect(s.State().String()).To(Equal("safe_landing"))
	})
})
