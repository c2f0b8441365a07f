package ansatz

import (
	"math/rand/v2"

	"math/cmplx"
)

// RBM is the restricted Boltzmann wave-function
// log psi = sum_i a_i s_i + sum_j log cosh(b_j + sum_i W_ji s_i),
// with m hidden units.
type RBM struct {
	n int
	m int
	// theta holds the visible biases a (n), the hidden biases b (m), and the
	// row-major weights W (m by n).
	theta []complex128

	// z caches the hidden unit arguments of the last evaluation.
	z []complex128
}

// NewRBM creates a restricted Boltzmann wave-function over n sites with
// hidden unit density alpha, so that there are alpha*n hidden units.
func NewRBM(n, alpha int) *RBM {
	m := alpha * n
	return &RBM{n: n, m: m, theta: make([]complex128, n+m+m*n), z: make([]complex128, m)}
}

func (r *RBM) Sites() int     { return r.n }
func (r *RBM) NumParams() int { return len(r.theta) }

func (r *RBM) Init(rng *rand.Rand) { initParams(r.theta, rng) }

func (r *RBM) Shift(delta []complex128) { shiftParams(r.theta, delta) }

func (r *RBM) hidden(cfg []int8) []complex128 {
	b, w := r.theta[r.n:r.n+r.m], r.theta[r.n+r.m:]
	for j := range r.z {
		z := b[j]
		row := w[j*r.n : (j+1)*r.n]
		for i, s := range cfg {
			z += row[i] * complex(float64(s), 0)
		}
		r.z[j] = z
	}
	return r.z
}

func (r *RBM) LogAmp(cfg []int8) complex128 {
	checkSites(cfg, r.n)
	a := r.theta[:r.n]

	var la complex128
	for i, s := range cfg {
		la += a[i] * complex(float64(s), 0)
	}
	for _, z := range r.hidden(cfg) {
		la += logCosh(z)
	}
	return la
}

func (r *RBM) LogDerivs(dst []complex128, cfg []int8) {
	checkSites(cfg, r.n)
	da, db, dw := dst[:r.n], dst[r.n:r.n+r.m], dst[r.n+r.m:]

	for i, s := range cfg {
		da[i] = complex(float64(s), 0)
	}
	for j, z := range r.hidden(cfg) {
		tz := cmplx.Tanh(z)
		db[j] = tz
		row := dw[j*r.n : (j+1)*r.n]
		for i, s := range cfg {
			row[i] = tz * complex(float64(s), 0)
		}
	}
}
