package nqs

import (
	"math"
	"math/cmplx"

	"github.com/pkg/errors"

	"nqs/mat"
)

// Heisenberg is the Heisenberg Hamiltonian H = J sum_<ij> S_i.S_j over the
// bonds of a chain, restricted to a fixed magnetization sector.
// J > 0 is the antiferromagnet.
//
// A Heisenberg owns internal scratch buffers and must not be shared between
// goroutines.
type Heisenberg struct {
	chain  Chain
	sector Sector
	j      float64

	edges [][2]int
	// buf holds the exchanged configuration during row enumeration.
	buf []int8
}

// NewHeisenberg creates the Hamiltonian of a chain with coupling strength j.
func NewHeisenberg(chain Chain, sector Sector, j float64) (*Heisenberg, error) {
	if chain.N != sector.Sites() {
		return nil, errors.Errorf("%d %d", chain.N, sector.Sites())
	}
	h := &Heisenberg{chain: chain, sector: sector, j: j}
	h.edges = chain.Edges()
	h.buf = make([]int8, chain.N)
	return h, nil
}

// Chain returns the underlying lattice.
func (h *Heisenberg) Chain() Chain { return h.chain }

// Sector returns the configuration space the Hamiltonian acts on.
func (h *Heisenberg) Sector() Sector { return h.sector }

// J returns the coupling strength.
func (h *Heisenberg) J() float64 { return h.j }

// EnergyBound returns an upper bound on the magnitude of any eigenvalue.
// Every bond operator S_i.S_j has spectral radius 3/4.
func (h *Heisenberg) EnergyBound() float64 {
	return 0.75 * math.Abs(h.j) * float64(len(h.edges))
}

// Matrix builds the sector-restricted Hamiltonian into m.
// In the S^z basis, a bond contributes J/4*s_i*s_j on the diagonal, and for
// antiparallel bonds an exchange element J/2 towards the swapped
// configuration.
func (h *Heisenberg) Matrix(m *mat.COO) {
	dim := h.sector.Dim()
	m.Zeros(dim, dim)

	cfg := make([]int8, h.chain.N)
	for row := 0; row < dim; row++ {
		h.sector.Config(cfg, row)

		var diag float64
		for _, e := range h.edges {
			si, sj := cfg[e[0]], cfg[e[1]]
			if si == sj {
				diag += h.j / 4
				continue
			}
			diag -= h.j / 4

			copy(h.buf, cfg)
			h.buf[e[0]], h.buf[e[1]] = sj, si
			m.Append(h.j/2, row, h.sector.Index(h.buf))
		}
		if diag != 0 {
			m.Append(diag, row, row)
		}
	}
	m.Compact()
}

// LocalEnergy returns E(s) = sum_s' <s|H|s'> psi(s')/psi(s), where logAmp is
// the log-amplitude of the wave-function psi. The configurations connected to
// s are exactly the single-bond exchanges of s.
func (h *Heisenberg) LocalEnergy(cfg []int8, logAmp func([]int8) complex128) complex128 {
	la := logAmp(cfg)

	var diag float64
	var exchange complex128
	for _, e := range h.edges {
		si, sj := cfg[e[0]], cfg[e[1]]
		if si == sj {
			diag += h.j / 4
			continue
		}
		diag -= h.j / 4

		copy(h.buf, cfg)
		h.buf[e[0]], h.buf[e[1]] = sj, si
		exchange += cmplx.Exp(logAmp(h.buf) - la)
	}
	return complex(diag, 0) + complex(h.j/2, 0)*exchange
}
