package mat

import (
	"fmt"
	"math"
	"math/rand/v2"
	"testing"
)

func TestLanczos(t *testing.T) {
	t.Parallel()
	tests := []struct {
		n       int
		density float64
	}{
		{n: 16, density: 0.5},
		{n: 40, density: 0.2},
		{n: 64, density: 0.1},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%d %.1f", test.n, test.density), func(t *testing.T) {
			t.Parallel()
			m := randSym(test.n, test.density, 1)

			vvs := m.EigenSym()
			exact := vvs[0]

			val, vec, err := Lanczos(m, NewLanczosOptions().MaxIterations(test.n))
			if err != nil {
				t.Fatalf("%+v", err)
			}

			if math.Abs(val-exact.Val) > 1e-8*math.Max(math.Abs(exact.Val), 1) {
				t.Fatalf("%f, expected %f", val, exact.Val)
			}
			// Eigenvectors agree up to sign.
			if math.Abs(math.Abs(dot(vec, exact.Vec))-1) > 1e-6 {
				t.Fatalf("%f", dot(vec, exact.Vec))
			}
		})
	}
}

func TestLanczosNonSquare(t *testing.T) {
	t.Parallel()
	if _, _, err := Lanczos(Zeros(2, 3)); err == nil {
		t.Fatalf("expected error")
	}
}

// randSym creates a random sparse symmetric matrix with nonzero diagonal.
func randSym(n int, density float64, seed uint64) *COO {
	rng := rand.New(rand.NewPCG(seed, seed))
	dense := make([][]float64, n)
	for i := range dense {
		dense[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		dense[i][i] = rng.Float64()*2 - 1
		for j := i + 1; j < n; j++ {
			if rng.Float64() > density {
				continue
			}
			v := rng.Float64()*2 - 1
			dense[i][j] = v
			dense[j][i] = v
		}
	}
	return M(dense)
}
