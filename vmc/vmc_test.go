package vmc

import (
	"math"
	"math/cmplx"
	"math/rand/v2"
	"testing"

	"nqs"
	"nqs/ansatz"
	"nqs/runlog"
)

// flat is the constant wave-function psi(s) = 1.
type flat struct{ n int }

func (f flat) Sites() int                             { return f.n }
func (f flat) NumParams() int                         { return 0 }
func (f flat) Init(rng *rand.Rand)                    {}
func (f flat) LogAmp(cfg []int8) complex128           { return 0 }
func (f flat) LogDerivs(dst []complex128, cfg []int8) {}
func (f flat) Shift(delta []complex128)               {}

func TestSamplerSector(t *testing.T) {
	t.Parallel()
	chain, err := nqs.NewChain(8, true)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	sector, err := nqs.ZeroMagnetization(8)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	rng := rand.New(rand.NewPCG(7, 7))
	wf := ansatz.NewRBM(8, 2)
	wf.Init(rng)

	s := NewSampler(chain, sector, wf, rng)
	for i := 0; i < 200; i++ {
		s.Sweep()
		cfg := s.Config()
		ups := 0
		for _, v := range cfg {
			switch v {
			case 1:
				ups++
			case -1:
			default:
				t.Fatalf("%d %v", i, cfg)
			}
		}
		if ups != sector.Ups() {
			t.Fatalf("%d %v", i, cfg)
		}
	}
}

func TestSamplerLogAmp(t *testing.T) {
	t.Parallel()
	chain, err := nqs.NewChain(6, true)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	sector, err := nqs.ZeroMagnetization(6)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	rng := rand.New(rand.NewPCG(3, 3))
	wf := ansatz.NewJastrow(6)
	wf.Init(rng)

	s := NewSampler(chain, sector, wf, rng)
	for i := 0; i < 50; i++ {
		s.Sweep()
		if got, want := s.LogAmp(), wf.LogAmp(s.Config()); cmplx.Abs(got-want) > 1e-12 {
			t.Fatalf("%f, expected %f", got, want)
		}
	}
}

func TestSamplerAcceptFlat(t *testing.T) {
	t.Parallel()
	chain, err := nqs.NewChain(6, true)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	sector, err := nqs.ZeroMagnetization(6)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	rng := rand.New(rand.NewPCG(1, 1))

	// For a constant wave-function every antiparallel exchange is accepted.
	s := NewSampler(chain, sector, flat{n: 6}, rng)
	for i := 0; i < 100; i++ {
		s.Sweep()
	}
	if s.proposed == 0 || s.accepted != s.proposed {
		t.Fatalf("%d/%d", s.accepted, s.proposed)
	}
	if rate := s.AcceptanceRate(); rate != 1 {
		t.Fatalf("%f", rate)
	}
}

func TestReconfigurerSolve(t *testing.T) {
	t.Parallel()
	// Two parameters, four samples. The solution is verified by
	// substituting it back into (S + shift*I) delta = F.
	samples := []struct {
		derivs []complex128
		eLoc   complex128
	}{
		{derivs: []complex128{1, 1i}, eLoc: -1},
		{derivs: []complex128{complex(0.5, -0.5), 2}, eLoc: complex(-2, 0.1)},
		{derivs: []complex128{-1, complex(0.3, 0.7)}, eLoc: -0.5},
		{derivs: []complex128{1i, -0.25}, eLoc: complex(-1.5, -0.2)},
	}
	const shift = 0.05

	r := newReconfigurer(2)
	r.reset()
	var eSum complex128
	for _, s := range samples {
		r.accumulate(s.derivs, s.eLoc)
		eSum += s.eLoc
	}
	n := len(samples)
	eMean := eSum * complex(1/float64(n), 0)

	delta := make([]complex128, 2)
	if err := r.solve(delta, eMean, n, shift); err != nil {
		t.Fatalf("%+v", err)
	}

	// Recompute the moments independently.
	inv := 1 / float64(n)
	oMean := make([]complex128, 2)
	for _, s := range samples {
		for k, o := range s.derivs {
			oMean[k] += o * complex(inv, 0)
		}
	}
	var sMat [2][2]complex128
	fVec := make([]complex128, 2)
	for k := 0; k < 2; k++ {
		for l := 0; l < 2; l++ {
			var oo complex128
			for _, s := range samples {
				oo += cmplx.Conj(s.derivs[k]) * s.derivs[l] * complex(inv, 0)
			}
			sMat[k][l] = oo - cmplx.Conj(oMean[k])*oMean[l]
		}
		sMat[k][k] += complex(shift, 0)
		var eo complex128
		for _, s := range samples {
			eo += cmplx.Conj(s.derivs[k]) * s.eLoc * complex(inv, 0)
		}
		fVec[k] = eo - cmplx.Conj(oMean[k])*eMean
	}

	for k := 0; k < 2; k++ {
		var got complex128
		for l := 0; l < 2; l++ {
			got += sMat[k][l] * delta[l]
		}
		if cmplx.Abs(got-fVec[k]) > 1e-10 {
			t.Fatalf("row %d: %f, expected %f", k, got, fVec[k])
		}
	}
}

func TestRun(t *testing.T) {
	t.Parallel()
	chain, err := nqs.NewChain(4, true)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	sector, err := nqs.ZeroMagnetization(4)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	h, err := nqs.NewHeisenberg(chain, sector, 1)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	wf := ansatz.NewJastrow(4)

	lg := runlog.New("jastrow")
	opt := NewOptions().Iterations(80).Samples(256).Thermalize(32).Seed(5)
	if err := Run(h, wf, lg, opt); err != nil {
		t.Fatalf("%+v", err)
	}

	if len(lg.Records) != 80 {
		t.Fatalf("%d", len(lg.Records))
	}
	bound := h.EnergyBound()
	var first, last float64
	for i, r := range lg.Records {
		e := real(r.Energy)
		if math.IsNaN(e) || math.Abs(e) > bound {
			t.Fatalf("%d %f", i, e)
		}
		if r.Variance < -1e-9 {
			t.Fatalf("%d %f", i, r.Variance)
		}
		if i < 10 {
			first += e / 10
		}
		if i >= len(lg.Records)-10 {
			last += e / 10
		}
	}

	// The exact ground energy of the 4-site ring is -2. The short run need
	// not converge fully, but it must descend.
	if last >= first {
		t.Fatalf("first %f last %f", first, last)
	}
	if last > -1 {
		t.Fatalf("%f", last)
	}
}
