package cosmology_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/sigmalab/internal/constants"
	"github.com/san-kum/sigmalab/internal/cosmology"
	"github.com/san-kum/sigmalab/internal/dynamo"
)

var _ = Describe("Equation of state", func() {
	It("vanishes at the critical temperature and saturates at +-1", func() {
		Expect(cosmology.EquationOfState(1, 1, 3.5)).To(BeZero())
		Expect(cosmology.EquationOfState(10, 1, 3.5)).To(BeNumerically("~", 1, 1e-12))
		Expect(cosmology.EquationOfState(-10, 1, 3.5)).To(BeNumerically("~", -1, 1e-12))
	})

	It("labels phases strictly above T_c as expansion", func() {
		p := cosmology.DefaultParams()
		Expect(p.Phase(1.0001)).To(Equal(cosmology.Expansion))
		Expect(p.Phase(1)).To(Equal(cosmology.Deflation))
	})
})

var _ = Describe("Model", func() {
	var m *cosmology.Model

	BeforeEach(func() {
		m = cosmology.NewModel(cosmology.DefaultParams())
	})

	It("evaluates the field equations", func() {
		d := m.Derive(dynamo.State{1, 0.6, 1.2}, nil, 0)
		w := math.Tanh(3.5 * 0.2)
		Expect(d[0]).To(BeNumerically("~", 0.6, 1e-15))
		Expect(d[1]).To(BeNumerically("~", -(1+w)/(1+1e-6)+0.01/(1+1e-6)-0.2*0.6, 1e-12))
		Expect(d[2]).To(BeNumerically("~", -0.9*0.6*1.2+0.4*(1-1.2)+0.05*math.Exp(-1), 1e-12))
	})

	It("exposes tunable parameters", func() {
		Expect(m.SetParam("alpha", 2)).To(Succeed())
		Expect(m.GetParams()).To(HaveKeyWithValue("alpha", 2.0))
		Expect(m.SetParam("omega", 1)).NotTo(Succeed())
	})

	Describe("Simulate", func() {
		var sol *cosmology.Solution

		BeforeEach(func() {
			var err error
			sol, err = m.Simulate(context.Background(), 0, 200, nil, 2001, nil)
			Expect(err).NotTo(HaveOccurred())
		})

		It("samples exactly at the requested times", func() {
			Expect(sol.Len()).To(Equal(2001))
			Expect(sol.Times[0]).To(BeZero())
			Expect(sol.Times[1000]).To(BeNumerically("~", 100, 1e-12))
			Expect(sol.Times[2000]).To(BeNumerically("~", 200, 1e-9))
		})

		It("matches a fine fixed-step reference through the bounce", func() {
			i := 150
			Expect(sol.Times[i]).To(BeNumerically("~", 15, 1e-12))
			Expect(sol.A[i]).To(BeNumerically("~", 7.8185624, 1e-3))
			Expect(sol.H[i]).To(BeNumerically("~", 1.7678273, 1e-4))
			Expect(sol.T[i]).To(BeNumerically("~", 0.1975982, 1e-4))

			i = 300
			Expect(sol.A[i] / 34731.0280).To(BeNumerically("~", 1, 1e-4))
			Expect(sol.H[i]).To(BeNumerically("~", 0.0880130, 1e-4))
			Expect(sol.T[i]).To(BeNumerically("~", 0.7692100, 1e-4))
		})

		It("keeps the scale factor positive and relaxes to T_c", func() {
			for _, a := range sol.A {
				Expect(a).To(BeNumerically(">", 0))
			}
			Expect(sol.T[sol.Len()-1]).To(BeNumerically("~", 1, 1e-6))
		})

		It("visits both phases", func() {
			r, err := sol.Analyze()
			Expect(err).NotTo(HaveOccurred())
			Expect(r.ExpansionFraction).To(BeNumerically(">", 0))
			Expect(r.ExpansionFraction).To(BeNumerically("<", 1))
			Expect(r.Tension).To(BeNumerically("~", math.Abs(r.HExpansion-r.HDeflation), 1e-12))
			Expect(r.HMean).To(BeNumerically(">=", 0))

			var cold, hot []float64
			for i, h := range sol.PhysicalH() {
				switch {
				case sol.T[i] < sol.P.TCritical:
					cold = append(cold, math.Abs(h))
				case sol.T[i] > sol.P.TCritical:
					hot = append(hot, math.Abs(h))
				}
			}
			Expect(cold).NotTo(BeEmpty())
			Expect(hot).NotTo(BeEmpty())
			Expect(sol.MeasuredH("CMB")).To(BeNumerically("~", stat.Mean(cold, nil), 1e-9))
			Expect(sol.MeasuredH("SNe")).To(BeNumerically("~", stat.Mean(hot, nil), 1e-9))
			Expect(sol.MeasuredH("AVG")).To(BeNumerically("~", r.HMean, 1e-12))
		})

		It("finds the return to the hot phase", func() {
			tr := sol.Transitions()
			Expect(tr).NotTo(BeEmpty())
			Expect(tr[0]).To(BeNumerically("~", 12.6, 0.1))
			for _, t := range tr {
				Expect(t).To(BeNumerically(">", 0))
				Expect(t).To(BeNumerically("<", 200))
			}
		})

		It("builds a redshift curve anchored at z = 0", func() {
			c, err := sol.Redshift(73)
			Expect(err).NotTo(HaveOccurred())
			Expect(c.Z).NotTo(BeEmpty())
			Expect(c.Z).To(ContainElement(0.0))
			for _, z := range c.Z {
				Expect(z).To(BeNumerically(">=", 0))
				Expect(z).To(BeNumerically("<", 10))
			}

			j := cosmology.Jerk(c.Z, c.H)
			Expect(len(j.DHdz)).To(Equal(len(j.Z)))
			for i := 1; i < len(j.Z); i++ {
				Expect(j.Z[i]).To(BeNumerically(">", j.Z[i-1]))
			}
		})

		It("reports a finite dominant period", func() {
			p, err := sol.DominantPeriod()
			Expect(err).NotTo(HaveOccurred())
			Expect(p).To(BeNumerically(">", 0))
			Expect(p).To(BeNumerically("<=", 200.1))
		})
	})

	It("rejects a degenerate time span", func() {
		_, err := m.Simulate(context.Background(), 10, 10, nil, 100, nil)
		Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
	})
})

var _ = Describe("Fallback measurement operators", func() {
	It("returns the reference values when a phase is never sampled", func() {
		sol := &cosmology.Solution{
			P:     cosmology.DefaultParams(),
			Times: []float64{0, 1},
			A:     []float64{1, 1},
			H:     []float64{1, 1},
			T:     []float64{2, 2},
		}
		Expect(sol.MeasuredH("CMB")).To(Equal(67.0))
		Expect(sol.MeasuredH("SNe")).To(Equal(70.0))
	})

	It("leaves samples at exactly the critical temperature out of both averages", func() {
		sol := &cosmology.Solution{
			P:     cosmology.DefaultParams(),
			Times: []float64{0, 1, 2},
			A:     []float64{1, 1, 1},
			H:     []float64{1, 2, 3},
			T:     []float64{0.5, 1, 1.5},
		}
		Expect(sol.MeasuredH("CMB")).To(BeNumerically("~", 70.0, 1e-12))
		Expect(sol.MeasuredH("SNe")).To(BeNumerically("~", 210.0, 1e-12))
		Expect(sol.MeasuredH("AVG")).To(BeNumerically("~", 140.0, 1e-12))

		atCritical := &cosmology.Solution{
			P:     cosmology.DefaultParams(),
			Times: []float64{0},
			A:     []float64{1},
			H:     []float64{1},
			T:     []float64{1},
		}
		Expect(atCritical.MeasuredH("CMB")).To(Equal(67.0))
	})
})

var _ = Describe("SI cross check", func() {
	It("scales the curvature ratio as the fourth power of H", func() {
		c := cosmology.SICrossCheck(constants.Default, 73, 67)
		Expect(c.Chi73 / c.Chi67).To(BeNumerically("~", math.Pow(73.0/67.0, 4), 1e-12))
		Expect(c.Chi73).To(BeNumerically("<", 1e-200))
		Expect(c.KCrit).To(BeNumerically(">", 1e130))
	})
})

var _ = Describe("Parameter sweeps", func() {
	It("samples the late-time H for every alpha", func() {
		m := cosmology.NewModel(cosmology.DefaultParams())
		pts, err := m.SweepAlpha(context.Background(), 2, 5, 3, 50, 501)
		Expect(err).NotTo(HaveOccurred())
		Expect(pts).To(HaveLen(3))
		Expect(pts[0].Param).To(Equal(2.0))
		Expect(pts[2].Param).To(Equal(5.0))
		for _, p := range pts {
			Expect(p.Values).NotTo(BeEmpty())
		}
		Expect(m.P.Alpha).To(Equal(3.5))
	})

	It("estimates a finite Lyapunov exponent", func() {
		m := cosmology.NewModel(cosmology.DefaultParams())
		l := m.Lyapunov(nil, 0.001, 5)
		Expect(math.IsNaN(l)).To(BeFalse())
		Expect(math.IsInf(l, 0)).To(BeFalse())
	})
})
