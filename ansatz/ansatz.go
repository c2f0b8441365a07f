// Package ansatz provides variational wave-functions over spin
// configurations.
//
// A wave-function maps a configuration of +-1 spins to a complex
// log-amplitude log psi(s). All parameters are complex, the mapping is
// holomorphic in them, and the log-derivatives O_k = d log psi / d theta_k
// are analytic, which is what the stochastic reconfiguration optimizer
// consumes.
package ansatz

import (
	"fmt"
	"math/cmplx"
	"math/rand/v2"
)

// initScale is the standard deviation of freshly drawn parameters.
const initScale = 0.01

// A Wavefunction is a parameterized map from spin configurations to complex
// log-amplitudes, differentiable with respect to its own parameters.
// Parameters are owned exclusively by the instance.
type Wavefunction interface {
	// Sites returns the expected configuration length.
	Sites() int
	// NumParams returns the number of complex parameters.
	NumParams() int
	// Init draws small random initial parameters.
	Init(rng *rand.Rand)
	// LogAmp returns log psi of a single configuration.
	LogAmp(cfg []int8) complex128
	// LogDerivs writes d log psi / d theta_k into dst, which must have
	// length NumParams.
	LogDerivs(dst []complex128, cfg []int8)
	// Shift applies the update theta_k <- theta_k - delta_k.
	Shift(delta []complex128)
}

// EvalBatch evaluates a batch of configurations independently of each other,
// one log-amplitude per configuration.
func EvalBatch(dst []complex128, w Wavefunction, batch [][]int8) []complex128 {
	if len(dst) != len(batch) {
		dst = make([]complex128, len(batch))
	}
	for i, cfg := range batch {
		dst[i] = w.LogAmp(cfg)
	}
	return dst
}

// logCosh is the log(cosh(x)) activation, computed without overflowing for
// large arguments.
func logCosh(z complex128) complex128 {
	// cosh is even.
	if real(z) < 0 {
		z = -z
	}
	return z + cmplx.Log((1+cmplx.Exp(-2*z))/2)
}

func initParams(theta []complex128, rng *rand.Rand) {
	for i := range theta {
		theta[i] = complex(rng.NormFloat64(), rng.NormFloat64()) * initScale
	}
}

func shiftParams(theta, delta []complex128) {
	if len(delta) != len(theta) {
		panic(fmt.Sprintf("%d %d", len(delta), len(theta)))
	}
	for i, d := range delta {
		theta[i] -= d
	}
}

func checkSites(cfg []int8, n int) {
	if len(cfg) != n {
		panic(fmt.Sprintf("%d %d", len(cfg), n))
	}
}
