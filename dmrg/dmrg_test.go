package dmrg

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/fumin/tensor"

	"nqs"
)

func TestHeisenbergMPO(t *testing.T) {
	t.Parallel()
	mpo := Heisenberg(2, 1)
	if !slices.Equal(mpo[0].Shape(), []int{1, 5, 2, 2}) {
		t.Fatalf("%#v", mpo[0].Shape())
	}
	if !slices.Equal(mpo[1].Shape(), []int{5, 1, 2, 2}) {
		t.Fatalf("%#v", mpo[1].Shape())
	}

	// Contract the two site MPO into the full Hamiltonian, in the basis
	// {uu, ud, du, dd}.
	h := tensor.Product(tensor.Zeros(1), mpo[0], mpo[1], [][2]int{{mpoRight, mpoLeft}})
	expected := [4][4]complex64{
		{0.25, 0, 0, 0},
		{0, -0.25, 0.5, 0},
		{0, 0.5, -0.25, 0},
		{0, 0, 0, 0.25},
	}
	for u1 := range 2 {
		for u2 := range 2 {
			for d1 := range 2 {
				for d2 := range 2 {
					got := h.At(0, u1, d1, 0, u2, d2)
					want := expected[u1*2+u2][d1*2+d2]
					if got != want {
						t.Fatalf("<%d%d|H|%d%d> = %f, expected %f", u1, u2, d1, d2, got, want)
					}
				}
			}
		}
	}
}

func TestGroundState(t *testing.T) {
	t.Parallel()
	tests := []struct {
		n       int
		bondDim int
	}{
		{n: 4, bondDim: 4},
		{n: 6, bondDim: 8},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%d", test.n), func(t *testing.T) {
			t.Parallel()
			chain, err := nqs.NewChain(test.n, false)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			sector, err := nqs.ZeroMagnetization(test.n)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			hamiltonian, err := nqs.NewHeisenberg(chain, sector, 1)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			exact, _, err := hamiltonian.Ground()
			if err != nil {
				t.Fatalf("%+v", err)
			}

			mpo := Heisenberg(test.n, 1)
			fs := make([]*tensor.Dense, 0, len(mpo))
			for range mpo {
				fs = append(fs, tensor.Zeros(1))
			}
			var bufs [10]*tensor.Dense
			for i := range len(bufs) {
				bufs[i] = tensor.Zeros(1)
			}

			rng := rand.New(rand.NewPCG(1, 1))
			state := Random(mpo, test.bondDim, rng)
			energy, err := GroundState(fs, mpo, state, bufs)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			if math.Abs(float64(real(energy))-exact) > 5e-3 {
				t.Fatalf("%f, expected %f", energy, exact)
			}
			if math.Abs(float64(imag(energy))) > 1e-3 {
				t.Fatalf("%f", energy)
			}

			bufs2 := [2]*tensor.Dense(bufs[:2])
			e := Energy(fs, mpo, state, bufs2)
			if abs(e-energy) > 1e-3 {
				t.Fatalf("%f, expected %f", e, energy)
			}
		})
	}
}
