// Package vmc trains variational wave-functions by stochastic variational
// Monte Carlo with natural-gradient (stochastic reconfiguration)
// preconditioning.
package vmc

import (
	"math"
	"math/rand/v2"

	"nqs"
	"nqs/ansatz"
)

// Sampler is a Metropolis-Hastings Markov chain over a fixed magnetization
// sector. A proposal swaps the two site values of a random lattice bond,
// which preserves the total magnetization; antiparallel swaps are accepted
// with the Born rule probability |psi(s')/psi(s)|^2.
//
// The chain owns its configuration exclusively. Refresh must be called after
// every wave-function parameter update.
type Sampler struct {
	sector nqs.Sector
	edges  [][2]int
	wf     ansatz.Wavefunction
	rng    *rand.Rand

	cfg    []int8
	buf    []int8
	logAmp complex128

	proposed int
	accepted int
}

// NewSampler creates a sampler starting from a random sector configuration.
func NewSampler(chain nqs.Chain, sector nqs.Sector, wf ansatz.Wavefunction, rng *rand.Rand) *Sampler {
	s := &Sampler{sector: sector, edges: chain.Edges(), wf: wf, rng: rng}
	s.cfg = sector.Rand(rng)
	s.buf = make([]int8, len(s.cfg))
	s.logAmp = wf.LogAmp(s.cfg)
	return s
}

// Config returns the current configuration, which callers must not modify.
func (s *Sampler) Config() []int8 { return s.cfg }

// LogAmp returns the cached log-amplitude of the current configuration.
func (s *Sampler) LogAmp() complex128 { return s.logAmp }

// Refresh recomputes the cached log-amplitude after a parameter update.
func (s *Sampler) Refresh() {
	s.logAmp = s.wf.LogAmp(s.cfg)
}

// Sweep performs one proposal per site.
func (s *Sampler) Sweep() {
	for range len(s.cfg) {
		s.step()
	}
}

func (s *Sampler) step() {
	e := s.edges[s.rng.IntN(len(s.edges))]
	// Swapping a parallel bond is the identity.
	if s.cfg[e[0]] == s.cfg[e[1]] {
		return
	}
	s.proposed++

	copy(s.buf, s.cfg)
	s.buf[e[0]], s.buf[e[1]] = s.buf[e[1]], s.buf[e[0]]
	la := s.wf.LogAmp(s.buf)

	if math.Log(s.rng.Float64()) < 2*real(la-s.logAmp) {
		s.cfg, s.buf = s.buf, s.cfg
		s.logAmp = la
		s.accepted++
	}
}

// AcceptanceRate returns the fraction of accepted exchange proposals.
func (s *Sampler) AcceptanceRate() float64 {
	if s.proposed == 0 {
		return 0
	}
	return float64(s.accepted) / float64(s.proposed)
}
