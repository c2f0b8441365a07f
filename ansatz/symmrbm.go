package ansatz

import (
	"math/cmplx"
	"math/rand/v2"
)

// SymmRBM is a restricted Boltzmann wave-function constrained to be
// invariant under lattice translations: alpha independent filters are
// broadcast over all n translations of the chain,
//
//	log psi = a*sum_i s_i + sum_f sum_t log cosh(b_f + sum_i F_f[i]*s_(i+t)),
//
// so the independent parameter count is 1 + alpha + alpha*n instead of the
// unconstrained n + alpha*n + alpha*n*n.
type SymmRBM struct {
	n     int
	alpha int
	// theta holds the single visible bias, the per-filter hidden biases
	// (alpha), and the row-major filters (alpha by n).
	theta []complex128

	// z caches the filter arguments, one per filter and translation.
	z []complex128
}

// NewSymmRBM creates a translation-invariant restricted Boltzmann
// wave-function over n sites with alpha filters.
func NewSymmRBM(n, alpha int) *SymmRBM {
	return &SymmRBM{
		n:     n,
		alpha: alpha,
		theta: make([]complex128, 1+alpha+alpha*n),
		z:     make([]complex128, alpha*n),
	}
}

func (r *SymmRBM) Sites() int     { return r.n }
func (r *SymmRBM) NumParams() int { return len(r.theta) }

func (r *SymmRBM) Init(rng *rand.Rand) { initParams(r.theta, rng) }

func (r *SymmRBM) Shift(delta []complex128) { shiftParams(r.theta, delta) }

func (r *SymmRBM) hidden(cfg []int8) []complex128 {
	b, f := r.theta[1:1+r.alpha], r.theta[1+r.alpha:]
	for a := 0; a < r.alpha; a++ {
		filter := f[a*r.n : (a+1)*r.n]
		for t := 0; t < r.n; t++ {
			z := b[a]
			for i, w := range filter {
				z += w * complex(float64(cfg[(i+t)%r.n]), 0)
			}
			r.z[a*r.n+t] = z
		}
	}
	return r.z
}

func (r *SymmRBM) LogAmp(cfg []int8) complex128 {
	checkSites(cfg, r.n)

	var mag complex128
	for _, s := range cfg {
		mag += complex(float64(s), 0)
	}
	la := r.theta[0] * mag
	for _, z := range r.hidden(cfg) {
		la += logCosh(z)
	}
	return la
}

func (r *SymmRBM) LogDerivs(dst []complex128, cfg []int8) {
	checkSites(cfg, r.n)
	for i := range dst {
		dst[i] = 0
	}
	db, df := dst[1:1+r.alpha], dst[1+r.alpha:]

	for _, s := range cfg {
		dst[0] += complex(float64(s), 0)
	}
	z := r.hidden(cfg)
	for a := 0; a < r.alpha; a++ {
		row := df[a*r.n : (a+1)*r.n]
		for t := 0; t < r.n; t++ {
			tz := cmplx.Tanh(z[a*r.n+t])
			db[a] += tz
			for i := range row {
				row[i] += tz * complex(float64(cfg[(i+t)%r.n]), 0)
			}
		}
	}
}
