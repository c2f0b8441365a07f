package nqs

import (
	"fmt"
	"math"
	"math/cmplx"
	"testing"

	"nqs/mat"
)

func TestHeisenbergMatrix(t *testing.T) {
	t.Parallel()
	// Open chain of 4 sites, zero magnetization. The basis is ordered by the
	// positions of the up spins: {0,1}, {0,2}, {0,3}, {1,2}, {1,3}, {2,3}.
	expected := mat.M([][]float64{
		{0.25, 0.5, 0, 0, 0, 0},
		{0.5, -0.75, 0.5, 0.5, 0, 0},
		{0, 0.5, -0.25, 0, 0.5, 0},
		{0, 0.5, 0, -0.25, 0.5, 0},
		{0, 0, 0.5, 0.5, -0.75, 0.5},
		{0, 0, 0, 0, 0.5, 0.25},
	})

	h := newHeisenberg(t, 4, false)
	m := mat.Zeros(1, 1)
	h.Matrix(m)

	if !m.Equal(expected) {
		t.Fatalf("\n%s, expected \n\n%s", m, expected)
	}
}

func TestHeisenbergGround(t *testing.T) {
	t.Parallel()
	tests := []struct {
		n        int
		periodic bool
		energy   float64
	}{
		// Two-site singlet.
		{n: 2, periodic: false, energy: -0.75},
		// Three-site open chain.
		{n: 3, periodic: false, energy: -1},
		// Four-site ring.
		{n: 4, periodic: true, energy: -2},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%d %v", test.n, test.periodic), func(t *testing.T) {
			t.Parallel()
			chain, err := NewChain(test.n, test.periodic)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			sector, err := NewSector(test.n, test.n/2)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			h, err := NewHeisenberg(chain, sector, 1)
			if err != nil {
				t.Fatalf("%+v", err)
			}

			energy, vec, err := h.Ground()
			if err != nil {
				t.Fatalf("%+v", err)
			}
			if math.Abs(energy-test.energy) > 1e-10 {
				t.Fatalf("%f, expected %f", energy, test.energy)
			}
			var norm2 float64
			for _, v := range vec {
				norm2 += v * v
			}
			if math.Abs(norm2-1) > 1e-10 {
				t.Fatalf("%f", norm2)
			}
		})
	}
}

// TestHeisenbergLanczos checks that the iterative solver agrees with the
// dense one on the 8 site ring sector.
func TestHeisenbergLanczos(t *testing.T) {
	t.Parallel()
	h := newHeisenberg(t, 8, true)
	m := mat.Zeros(1, 1)
	h.Matrix(m)

	exact := m.EigenSym()[0]
	val, vec, err := mat.Lanczos(m, mat.NewLanczosOptions().MaxIterations(m.Rows()))
	if err != nil {
		t.Fatalf("%+v", err)
	}

	if math.Abs(val-exact.Val) > 1e-8 {
		t.Fatalf("%f, expected %f", val, exact.Val)
	}
	var overlap float64
	for i, v := range vec {
		overlap += v * exact.Vec[i]
	}
	if math.Abs(math.Abs(overlap)-1) > 1e-6 {
		t.Fatalf("%f", overlap)
	}
}

// TestLocalEnergy checks the estimator against the matrix row sum
// E(s) = sum_s' H_ss' psi(s')/psi(s) for a generic wave-function.
func TestLocalEnergy(t *testing.T) {
	t.Parallel()
	h := newHeisenberg(t, 6, true)
	sector := h.Sector()

	logAmp := func(cfg []int8) complex128 {
		var la complex128
		for i, s := range cfg {
			la += complex(0.03*float64(i+1), 0.07*float64(i)) * complex(float64(s), 0)
			j := (i + 1) % len(cfg)
			la += complex(0.01, -0.02) * complex(float64(s)*float64(cfg[j]), 0)
		}
		return la
	}

	m := mat.Zeros(1, 1)
	h.Matrix(m)
	dense := m.Dense()

	cfg := make([]int8, sector.Sites())
	other := make([]int8, sector.Sites())
	for row := 0; row < sector.Dim(); row++ {
		sector.Config(cfg, row)
		got := h.LocalEnergy(cfg, logAmp)

		var expected complex128
		for col, v := range dense[row] {
			if v == 0 {
				continue
			}
			sector.Config(other, col)
			expected += complex(v, 0) * cmplx.Exp(logAmp(other)-logAmp(cfg))
		}

		if cmplx.Abs(got-expected) > 1e-10 {
			t.Fatalf("%d %f, expected %f", row, got, expected)
		}
	}
}

func TestGroundStatistics(t *testing.T) {
	t.Parallel()
	h := newHeisenberg(t, 2, false)
	energy, vec, err := h.Ground()
	if err != nil {
		t.Fatalf("%+v", err)
	}

	stats, err := h.GroundStatistics(energy, vec)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if math.Abs(stats.EnergyPerSite+0.375) > 1e-10 {
		t.Fatalf("%f", stats.EnergyPerSite)
	}
	// In the singlet, <S^z_0 S^z_0> = 1/4 and <S^z_0 S^z_1> = -1/4.
	if math.Abs(stats.Correlation[0]-0.25) > 1e-10 {
		t.Fatalf("%f", stats.Correlation[0])
	}
	if math.Abs(stats.Correlation[1]+0.25) > 1e-10 {
		t.Fatalf("%f", stats.Correlation[1])
	}
}

func TestEnergyBound(t *testing.T) {
	t.Parallel()
	h := newHeisenberg(t, 4, true)
	m := mat.Zeros(1, 1)
	h.Matrix(m)
	vvs := m.EigenSym()

	bound := h.EnergyBound()
	if bound != 3 {
		t.Fatalf("%f", bound)
	}
	for _, vv := range vvs {
		if math.Abs(vv.Val) > bound+1e-10 {
			t.Fatalf("%f %f", vv.Val, bound)
		}
	}
}

func newHeisenberg(t *testing.T, n int, periodic bool) *Heisenberg {
	chain, err := NewChain(n, periodic)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	sector, err := ZeroMagnetization(n)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	h, err := NewHeisenberg(chain, sector, 1)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	return h
}
