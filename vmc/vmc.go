package vmc

import (
	"log"
	"math"
	"math/cmplx"
	"math/rand/v2"
	"time"

	"github.com/pkg/errors"

	"nqs"
	"nqs/ansatz"
	"nqs/runlog"
)

// Options are options for a variational Monte Carlo run.
type Options struct {
	iterations   int
	samples      int
	thermalize   int
	decorrelate  int
	learningRate float64
	shift        float64
	seed         uint64
}

// NewOptions returns the default run options.
func NewOptions() Options {
	opt := Options{}
	opt.iterations = 300
	opt.samples = 1024
	opt.thermalize = 64
	opt.decorrelate = 1
	opt.learningRate = 0.02
	opt.shift = 0.1
	opt.seed = 1
	return opt
}

// Iterations sets the number of optimization iterations.
func (opt Options) Iterations(i int) Options {
	opt.iterations = i
	return opt
}

// Samples sets the number of Monte Carlo samples per iteration.
func (opt Options) Samples(s int) Options {
	opt.samples = s
	return opt
}

// Thermalize sets the number of sweeps before the first sample is kept.
func (opt Options) Thermalize(s int) Options {
	opt.thermalize = s
	return opt
}

// Decorrelate sets the number of sweeps between kept samples.
func (opt Options) Decorrelate(s int) Options {
	opt.decorrelate = s
	return opt
}

// LearningRate sets the gradient step size.
func (opt Options) LearningRate(lr float64) Options {
	opt.learningRate = lr
	return opt
}

// Shift sets the diagonal shift of the stochastic reconfiguration metric.
func (opt Options) Shift(shift float64) Options {
	opt.shift = shift
	return opt
}

// Seed sets the random number generator seed.
func (opt Options) Seed(seed uint64) Options {
	opt.seed = seed
	return opt
}

// Run initializes wf and trains it to minimize the energy of h, appending
// one energy record per iteration to lg.
func Run(h *nqs.Heisenberg, wf ansatz.Wavefunction, lg *runlog.Log, options ...Options) error {
	opt := NewOptions()
	if len(options) > 0 {
		opt = options[0]
	}

	rng := rand.New(rand.NewPCG(opt.seed, opt.seed))
	wf.Init(rng)
	sampler := NewSampler(h.Chain(), h.Sector(), wf, rng)
	for range opt.thermalize {
		sampler.Sweep()
	}

	p := wf.NumParams()
	sr := newReconfigurer(p)
	derivs := make([]complex128, p)
	delta := make([]complex128, p)
	prog := newProgress(10 * time.Second)

	for itrtn := 0; itrtn < opt.iterations; itrtn++ {
		sr.reset()
		var eSum complex128
		var e2Sum float64
		for range opt.samples {
			for range opt.decorrelate {
				sampler.Sweep()
			}

			cfg := sampler.Config()
			eLoc := h.LocalEnergy(cfg, wf.LogAmp)
			wf.LogDerivs(derivs, cfg)

			sr.accumulate(derivs, eLoc)
			eSum += eLoc
			e2Sum += real(eLoc)*real(eLoc) + imag(eLoc)*imag(eLoc)
		}

		inv := 1 / float64(opt.samples)
		eMean := eSum * complex(inv, 0)
		eVar := e2Sum*inv - (real(eMean)*real(eMean) + imag(eMean)*imag(eMean))
		if isNaN(eMean) || math.IsNaN(eVar) {
			return errors.Errorf("%d %f %f", itrtn, eMean, eVar)
		}

		if err := sr.solve(delta, eMean, opt.samples, opt.shift); err != nil {
			return errors.Wrap(err, lg.Name)
		}
		for k := range delta {
			delta[k] *= complex(opt.learningRate, 0)
		}
		wf.Shift(delta)
		sampler.Refresh()

		lg.Append(itrtn, eMean, eVar)
		if prog.ok() {
			log.Printf("%s %d/%d energy %f variance %f acceptance %.2f",
				lg.Name, itrtn, opt.iterations, real(eMean), eVar, sampler.AcceptanceRate())
		}
	}
	return nil
}

func isNaN(z complex128) bool {
	return cmplx.IsNaN(z) || cmplx.IsInf(z)
}

// progress throttles log lines in long running loops.
type progress struct {
	d    time.Duration
	last time.Time
}

func newProgress(d time.Duration) *progress {
	return &progress{d: d, last: time.Date(0, 0, 0, 0, 0, 0, 0, time.UTC)}
}

func (p *progress) ok() bool {
	now := time.Now()
	if now.Before(p.last.Add(p.d)) {
		return false
	}
	p.last = now
	return true
}
