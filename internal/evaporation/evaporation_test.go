package evaporation_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/sigmalab/internal/blackhole"
	"github.com/san-kum/sigmalab/internal/constants"
	"github.com/san-kum/sigmalab/internal/dynamo"
	"github.com/san-kum/sigmalab/internal/evaporation"
)

var _ = Describe("Evaporator", func() {
	var (
		ev    *evaporation.Evaporator
		ctx   context.Context
		solar float64
		mp    float64
	)

	BeforeEach(func() {
		ev = evaporation.New(blackhole.Default)
		ctx = context.Background()
		solar = constants.Default.SolarMass
		mp = constants.Default.PlanckMass()
	})

	Describe("Semiclassical", func() {
		It("evaporates completely at tau and loses information linearly", func() {
			run, err := ev.Semiclassical(solar, 500)
			Expect(err).NotTo(HaveOccurred())
			Expect(run.Len()).To(Equal(500))

			last := run.Len() - 1
			Expect(run.Times[last]).To(BeNumerically("~", run.Tau, run.Tau*1e-12))
			Expect(run.Mass[0]).To(Equal(solar))
			Expect(run.Mass[last]).To(BeNumerically("~", 0, 1e-6*solar))
			Expect(run.RadiationEntropy[last]).To(BeNumerically("~", run.Entropy[0], run.Entropy[0]*1e-12))
			for _, temp := range run.Temperature {
				Expect(math.IsInf(temp, 0)).To(BeFalse())
			}
		})

		It("rejects a non-positive mass", func() {
			_, err := ev.Semiclassical(-1, 10)
			Expect(err).To(MatchError(blackhole.ErrNonPositiveMass))
		})

		It("rejects a single-point grid", func() {
			_, err := ev.Semiclassical(solar, 1)
			Expect(err).To(MatchError(evaporation.ErrTooFewSteps))
		})
	})

	Describe("Quantized", func() {
		var p evaporation.Params

		BeforeEach(func() {
			p = evaporation.DefaultParams()
			p.Steps = 400
		})

		It("never drops below the remnant and respects the Planck temperature cap", func() {
			run, err := ev.Quantized(ctx, solar, p)
			Expect(err).NotTo(HaveOccurred())

			tcap := constants.Default.PlanckTemperatureCap()
			for i := range run.Mass {
				Expect(run.Mass[i]).To(BeNumerically(">=", mp))
				Expect(run.Temperature[i]).To(BeNumerically("<=", tcap))
				if i > 0 {
					Expect(run.Mass[i]).To(BeNumerically("<=", run.Mass[i-1]))
				}
			}
		})

		It("keeps radiation entropy below half the initial entropy and ends at the remnant entropy", func() {
			run, err := ev.Quantized(ctx, solar, p)
			Expect(err).NotTo(HaveOccurred())

			s0 := run.Entropy[0]
			for _, s := range run.RadiationEntropy {
				Expect(s).To(BeNumerically("<=", 0.5*s0*(1+1e-12)))
			}
			Expect(run.TauEff).To(BeNumerically("<=", run.Times[run.Len()-1]))
			Expect(run.RadiationEntropy[run.Len()-1]).To(Equal(run.RemnantEntropy))
			Expect(run.RemnantEntropy).To(Equal(blackhole.Default.Entropy(mp)))
		})

		It("cuts the series at the remnant index unless the tail is kept", func() {
			p.Recycle = true

			cut, err := ev.Quantized(ctx, solar, p)
			Expect(err).NotTo(HaveOccurred())
			Expect(cut.Len()).To(Equal(cut.RemnantIndex + 1))
			Expect(cut.RemnantIndex).To(BeNumerically("<", p.Steps-1))

			p.KeepTail = true
			full, err := ev.Quantized(ctx, solar, p)
			Expect(err).NotTo(HaveOccurred())
			Expect(full.Len()).To(Equal(p.Steps))
			Expect(full.RemnantIndex).To(Equal(cut.RemnantIndex))
			for _, m := range full.Mass[full.RemnantIndex+1:] {
				Expect(m).To(Equal(mp))
			}
		})

		It("moves the remnant index to the last landing when the core is recycled", func() {
			p.Recycle = true
			p.RecycleRate = 1e-60

			run, err := ev.Quantized(ctx, solar, p)
			Expect(err).NotTo(HaveOccurred())
			Expect(run.Len()).To(Equal(run.RemnantIndex + 1))
			Expect(run.RemnantIndex).To(BeNumerically(">=", p.Steps-2))
			Expect(run.TauEff / run.Tau0).To(BeNumerically(">", 1.2))

			floor, regrown := false, false
			for _, m := range run.Mass {
				Expect(m).To(BeNumerically(">=", mp))
				if m == mp {
					floor = true
				} else if floor {
					regrown = true
				}
			}
			Expect(regrown).To(BeTrue())
			Expect(run.RadiationEntropy[run.Len()-1]).To(Equal(run.RemnantEntropy))
		})

		It("reports a diverged integration instead of a short series", func() {
			p.Alpha = math.NaN()
			run, err := ev.Quantized(ctx, solar, p)
			Expect(err).To(MatchError(dynamo.ErrInvalidState))
			Expect(run).To(BeNil())
		})

		It("returns a single point when started at the remnant", func() {
			run, err := ev.Quantized(ctx, mp, p)
			Expect(err).NotTo(HaveOccurred())
			Expect(run.Len()).To(Equal(1))
			Expect(run.TauEff).To(BeZero())
		})
	})

	Describe("FullQuantum", func() {
		It("reaches the remnant inside the stretched window and returns to the remnant entropy", func() {
			run, err := ev.FullQuantum(ctx, solar, 600)
			Expect(err).NotTo(HaveOccurred())
			Expect(run.Len()).To(Equal(600))
			Expect(run.Times[run.Len()-1]).To(BeNumerically("~", 1.3*run.Tau0, 1e-9*run.Tau0))

			Expect(run.RemnantIndex).To(BeNumerically(">", 0))
			Expect(run.RemnantIndex).To(BeNumerically("<", run.Len()-1))
			Expect(run.Mass[run.Len()-1]).To(Equal(mp))
			Expect(run.RadiationEntropy[run.Len()-1]).To(Equal(run.RemnantEntropy))

			k := constants.Default
			tcap := k.InteractionQuantum() / (k.SigmaP() * k.KB)
			for _, temp := range run.Temperature {
				Expect(temp).To(BeNumerically("<=", tcap))
			}
		})
	})

	Describe("RemnantCycles", func() {
		It("restarts each cycle from the requested mass and attaches the qubit toy", func() {
			cp := evaporation.DefaultCycleParams()
			cp.Steps = 100
			cp.Cycles = 2
			cp.QMSteps = 32
			cp.StartMass = solar

			cycles, err := ev.RemnantCycles(ctx, mp, cp)
			Expect(err).NotTo(HaveOccurred())
			Expect(cycles).To(HaveLen(2))
			for i, c := range cycles {
				Expect(c.Index).To(Equal(i))
				Expect(c.Run.Mass[0]).To(Equal(solar))
				Expect(c.QM.Entropy).To(HaveLen(32))
			}
		})

		It("restarts at the remnant when no start mass is given", func() {
			cp := evaporation.DefaultCycleParams()
			cp.Steps = 50
			cycles, err := ev.RemnantCycles(ctx, mp, cp)
			Expect(err).NotTo(HaveOccurred())
			Expect(cycles).To(HaveLen(3))
			Expect(cycles[0].Run.Mass).To(Equal([]float64{mp}))
		})

		It("clamps a start mass below the remnant up to the remnant", func() {
			cp := evaporation.DefaultCycleParams()
			cp.Steps = 50
			cp.Cycles = 1
			cp.StartMass = mp / 10
			cycles, err := ev.RemnantCycles(ctx, mp, cp)
			Expect(err).NotTo(HaveOccurred())
			Expect(cycles[0].Run.Mass[0]).To(Equal(mp))
		})
	})
})
