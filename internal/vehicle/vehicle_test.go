package vehicle_test

import (
	"bytes"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"

	"github.com/san-kum/quadsim/internal/device"
	"github.com/san-kum/quadsim/internal/flight"
	"github.com/san-kum/quadsim/internal/input"
	"github.com/san-kum/quadsim/internal/landing"
	"github.com/san-kum/quadsim/internal/vehicle"
)

var _ = Describe("Vehicle", func() {
	var (
		r    *rig
		src  *scripted
		sink *recordingSink
		logs *bytes.Buffer
		v    *vehicle.Vehicle
	)

	BeforeEach(func() {
		r = newRig()
		src = &scripted{}
		sink = &recordingSink{}
		logs = &bytes.Buffer{}

		var err error
		v, err = vehicle.New(vehicle.DefaultConfig(), r.bindings(), src, r,
			vehicle.WithLogger(zerolog.New(logs).Level(zerolog.DebugLevel)),
			vehicle.WithSinks(sink),
			vehicle.WithRunID("run-1"),
		)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("construction", func() {
		It("refuses to build without a GPS", func() {
			var bs []device.Binding
			for _, b := range r.bindings() {
				if b.Kind != device.KindGPS {
					bs = append(bs, b)
				}
			}
			veh, err := vehicle.New(vehicle.DefaultConfig(), bs, src, r)
			Expect(veh).To(BeNil())
			Expect(errors.Is(err, device.ErrConfiguration)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("GPS"))
		})

		It("rejects an invalid battery", func() {
			cfg := vehicle.DefaultConfig()
			cfg.Battery.EnergyWh = 0
			_, err := vehicle.New(cfg, r.bindings(), src, r)
			Expect(err).To(HaveOccurred())
		})

		It("logs the device bound to each requirement", func() {
			Expect(logs.String()).To(ContainSubstring(`"device":"gps"`))
			Expect(logs.String()).To(ContainSubstring(`"device":"rear right propeller"`))
		})

		It("requires a source and a probe", func() {
			_, err := vehicle.New(vehicle.DefaultConfig(), r.bindings(), nil, r)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("a healthy tick", func() {
		It("hovers with baseline thrust", func() {
			st, err := v.Step(0.008)
			Expect(err).NotTo(HaveOccurred())
			Expect(st.State).To(Equal(landing.StateFlying))

			thrust := flight.DefaultConstants().VerticalThrust
			Expect(r.propellers[device.RoleFrontLeft].velocity).To(BeNumerically("~", thrust, 1e-9))
			Expect(r.propellers[device.RoleFrontRight].velocity).To(BeNumerically("~", -thrust, 1e-9))
			Expect(r.propellers[device.RoleRearLeft].velocity).To(BeNumerically("~", -thrust, 1e-9))
			Expect(r.propellers[device.RoleRearRight].velocity).To(BeNumerically("~", thrust, 1e-9))
		})

		It("passes sensor readings to the input source", func() {
			r.gps.a, r.gps.c = 3, -4
			v.Step(1)
			Expect(src.got).To(HaveLen(1))
			tick := src.got[0]
			Expect(tick.Time).To(Equal(1.0))
			Expect(tick.Position).To(Equal(input.Position{X: 3, Altitude: 1.6, Z: -4}))
			Expect(tick.TargetAltitude).To(Equal(1.0))
		})

		It("applies disturbances and altitude adjustments", func() {
			src.d = flight.Disturbance{Pitch: 2, Altitude: 0.05}
			st, _ := v.Step(1)
			Expect(st.Disturbance.Pitch).To(Equal(2.0))
			Expect(st.TargetAltitude).To(BeNumerically("~", 1.05, 1e-12))
			Expect(v.Controller().TargetAltitude()).To(BeNumerically("~", 1.05, 1e-12))
		})

		It("moves the camera against body rates", func() {
			r.gyro.a, r.gyro.b = 2, -3
			v.Step(1)
			Expect(r.cameras[device.RoleCameraRoll].position).To(BeNumerically("~", -0.23, 1e-12))
			Expect(r.cameras[device.RoleCameraPitch].position).To(BeNumerically("~", 0.3, 1e-12))
		})

		It("lights the first LED in odd seconds", func() {
			v.Step(0.5)
			Expect(r.leds[0].on).To(BeFalse())
			Expect(r.leds[1].on).To(BeTrue())
			v.Step(1.5)
			Expect(r.leds[0].on).To(BeTrue())
			Expect(r.leds[1].on).To(BeFalse())
		})

		It("fails only on a non-finite time", func() {
			_, err := v.Step(math.NaN())
			Expect(err).To(HaveOccurred())
			Expect(r.propellers[device.RoleFrontLeft].velocitySet).To(Equal(0))
		})
	})

	Describe("input failures", func() {
		It("flies the tick with no disturbance", func() {
			src.d = flight.Disturbance{Pitch: 2}
			src.err = errSensor
			st, err := v.Step(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(st.Disturbance.IsZero()).To(BeTrue())
			Expect(st.InputErr).To(MatchError(errSensor))
			Expect(v.InputErrors()).To(Equal(1))
			Expect(r.propellers[device.RoleFrontLeft].velocitySet).To(Equal(1))
		})

		It("drops malformed disturbances", func() {
			src.d = flight.Disturbance{Yaw: math.NaN()}
			st, _ := v.Step(1)
			Expect(errors.Is(st.InputErr, input.ErrMalformed)).To(BeTrue())
			Expect(st.Disturbance.IsZero()).To(BeTrue())
		})
	})

	Describe("energy", func() {
		It("drains the battery as usage grows", func() {
			first, _ := v.Step(1)
			r.usage.Flight, r.usage.Hover = 600, 600
			second, _ := v.Step(2)
			Expect(second.Remaining).To(BeNumerically("<", first.Remaining))
			Expect(second.Energy.Total).To(BeNumerically(">", first.Energy.Total))
		})

		It("estimates hover time from what is left", func() {
			full := 59.29 * 3600 / 95.02
			Expect(v.HoverTimeLeft()).To(BeNumerically("~", full, 1e-6))
			v.Step(1)
			Expect(v.HoverTimeLeft()).To(BeNumerically("<", full))
		})

		It("warns on idle underflow and keeps flying", func() {
			r.usage.CPUActive = r.usage.Flight + 1
			_, err := v.Step(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(v.Underflows()).To(Equal(1))
			Expect(logs.String()).To(ContainSubstring("energy underflow"))
		})
	})

	Describe("safe landing", func() {
		It("switches on the tick the battery crosses the threshold", func() {
			src.d = flight.Disturbance{Roll: 1, Pitch: 2, Yaw: 1.3, Altitude: 0.5}
			v.Step(1)
			Expect(v.Supervisor().State()).To(Equal(landing.StateFlying))

			r.drain()
			st, _ := v.Step(2)
			Expect(st.LandingTriggered).To(BeTrue())
			Expect(st.State).To(Equal(landing.StateSafeLanding))
			Expect(st.Disturbance.IsZero()).To(BeTrue())
			Expect(st.TargetAltitude).To(BeNumerically("~", 1.5-0.05, 1e-12))
			Expect(logs.String()).To(ContainSubstring("safe landing"))
		})

		It("lowers the target every tick and never recovers", func() {
			r.drain()
			prev := math.Inf(1)
			transitions := 0
			for i := 1; i <= 50; i++ {
				st, _ := v.Step(float64(i) * 0.1)
				if st.LandingTriggered {
					transitions++
				}
				Expect(st.TargetAltitude).To(BeNumerically("<", prev))
				prev = st.TargetAltitude
			}
			Expect(transitions).To(Equal(1))

			r.usage.Flight, r.usage.Hover, r.usage.CPUActive = 1, 1, 0
			st, _ := v.Step(6)
			Expect(st.State).To(Equal(landing.StateSafeLanding))
		})

		It("starts over on reset", func() {
			r.drain()
			v.Step(1)
			v.Reset()
			Expect(v.Supervisor().State()).To(Equal(landing.StateFlying))
			Expect(v.Controller().TargetAltitude()).To(Equal(1.0))
			Expect(v.Battery().Remaining()).To(Equal(1.0))
		})

		It("restarts the flight plan on reset", func() {
			plan, err := input.NewFlightPlan([]input.Waypoint{{X: 0, Z: 0, Altitude: 1}}, 1, false)
			Expect(err).NotTo(HaveOccurred())
			pv, err := vehicle.New(vehicle.DefaultConfig(), r.bindings(), plan, r)
			Expect(err).NotTo(HaveOccurred())

			pv.Step(1)
			Expect(plan.Done()).To(BeTrue())
			pv.Reset()
			Expect(plan.Done()).To(BeFalse())
			Expect(plan.Next()).To(Equal(0))
		})
	})

	Describe("telemetry", func() {
		It("emits a record every five simulated seconds", func() {
			for i := 1; i <= 120; i++ {
				v.Step(float64(i) * 0.1)
			}
			Expect(sink.records).To(HaveLen(2))
			Expect(sink.records[0].SimulationTime).To(BeNumerically("~", 5, 1e-9))
			Expect(sink.records[0].RunID).To(Equal("run-1"))
			Expect(sink.records[0].State).To(Equal("flying"))
			Expect(sink.records[1].SimulationTime).To(BeNumerically("~", 10, 1e-9))
			Expect(logs.String()).To(ContainSubstring(`"message":"energy"`))
		})

		It("logs sink failures without failing the tick", func() {
			sink.err = errors.New("disk full")
			_, err := v.Step(5)
			Expect(err).NotTo(HaveOccurred())
			Expect(logs.String()).To(ContainSubstring("telemetry sink failed"))
		})
	})
})
