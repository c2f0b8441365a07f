package ansatz

import (
	"math/rand/v2"
)

// Jastrow is the pairwise-coupling wave-function
// log psi = sum_i a_i s_i + sum_ij s_i W_ij s_j,
// with a dense coupling matrix W of side Sites.
type Jastrow struct {
	n int
	// theta holds the visible biases followed by the row-major coupling
	// matrix.
	theta []complex128
}

// NewJastrow creates a Jastrow wave-function over n sites with zero
// parameters.
func NewJastrow(n int) *Jastrow {
	return &Jastrow{n: n, theta: make([]complex128, n+n*n)}
}

func (j *Jastrow) Sites() int     { return j.n }
func (j *Jastrow) NumParams() int { return len(j.theta) }

func (j *Jastrow) Init(rng *rand.Rand) { initParams(j.theta, rng) }

func (j *Jastrow) Shift(delta []complex128) { shiftParams(j.theta, delta) }

func (j *Jastrow) LogAmp(cfg []int8) complex128 {
	checkSites(cfg, j.n)
	a, w := j.theta[:j.n], j.theta[j.n:]

	var la complex128
	for i, s := range cfg {
		si := complex(float64(s), 0)
		la += a[i] * si
		for k, s2 := range cfg {
			la += si * w[i*j.n+k] * complex(float64(s2), 0)
		}
	}
	return la
}

func (j *Jastrow) LogDerivs(dst []complex128, cfg []int8) {
	checkSites(cfg, j.n)
	da, dw := dst[:j.n], dst[j.n:]
	for i, s := range cfg {
		si := complex(float64(s), 0)
		da[i] = si
		for k, s2 := range cfg {
			dw[i*j.n+k] = si * complex(float64(s2), 0)
		}
	}
}
