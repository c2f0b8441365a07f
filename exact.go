package nqs

import (
	"math"

	"github.com/pkg/errors"

	"nqs/mat"
)

// denseLimit is the largest sector dimension solved by dense
// eigendecomposition. Above it, the iterative Lanczos solver is used.
const denseLimit = 1 << 12

// Ground computes the exact ground state of the Hamiltonian by sparse
// eigen-decomposition, returning its energy and normalized eigenvector in the
// sector basis.
func (h *Heisenberg) Ground(options ...mat.LanczosOptions) (float64, []float64, error) {
	m := mat.Zeros(1, 1)
	h.Matrix(m)

	if m.Rows() <= denseLimit {
		vvs := m.EigenSym()
		return vvs[0].Val, vvs[0].Vec, nil
	}

	val, vec, err := mat.Lanczos(m, options...)
	if err != nil {
		return 0, nil, errors.Wrap(err, "")
	}
	return val, vec, nil
}

// Statistics are observables of a ground state.
type Statistics struct {
	Energy        float64
	EnergyPerSite float64
	// Correlation[d] is the spin correlation <S^z_0 S^z_d>.
	Correlation []float64
}

// GroundStatistics computes observables from a ground state vector in the
// sector basis.
func (h *Heisenberg) GroundStatistics(energy float64, vec []float64) (Statistics, error) {
	dim := h.sector.Dim()
	if len(vec) != dim {
		return Statistics{}, errors.Errorf("%d %d", len(vec), dim)
	}

	stats := Statistics{Energy: energy, EnergyPerSite: energy / float64(h.chain.N)}
	stats.Correlation = make([]float64, h.chain.N)

	cfg := make([]int8, h.chain.N)
	var totalProb float64
	for i, amplitude := range vec {
		h.sector.Config(cfg, i)
		probability := amplitude * amplitude
		totalProb += probability

		for d := range stats.Correlation {
			stats.Correlation[d] += probability * float64(cfg[0]) * float64(cfg[d]) / 4
		}
	}
	if math.Abs(totalProb-1) > 1e-3 {
		return Statistics{}, errors.Errorf("%f", totalProb)
	}

	return stats, nil
}
