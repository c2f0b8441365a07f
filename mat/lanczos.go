package mat

import (
	"math"
	"math/rand/v2"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// LanczosOptions are options for the Lanczos ground state solver.
type LanczosOptions struct {
	maxIterations int
	tol           float64
	seed          uint64
}

// NewLanczosOptions returns the default Lanczos options.
func NewLanczosOptions() LanczosOptions {
	opt := LanczosOptions{}
	opt.maxIterations = 512
	opt.tol = 1e-10
	opt.seed = 1
	return opt
}

// MaxIterations sets the maximum Krylov space dimension.
func (opt LanczosOptions) MaxIterations(i int) LanczosOptions {
	opt.maxIterations = i
	return opt
}

// Tol sets the relative tolerance of the convergence criterion on the
// smallest Ritz value.
func (opt LanczosOptions) Tol(tol float64) LanczosOptions {
	opt.tol = tol
	return opt
}

// Seed sets the seed of the random starting vector.
func (opt LanczosOptions) Seed(seed uint64) LanczosOptions {
	opt.seed = seed
	return opt
}

// Lanczos computes the smallest eigenpair of a symmetric sparse matrix by
// Lanczos iteration with full reorthogonalization.
// The returned eigenvector is normalized.
func Lanczos(m *COO, options ...LanczosOptions) (float64, []float64, error) {
	opt := NewLanczosOptions()
	if len(options) > 0 {
		opt = options[0]
	}
	n := m.rows
	if n != m.cols {
		return 0, nil, errors.Errorf("%d %d", n, m.cols)
	}
	steps := min(opt.maxIterations, n)

	rng := rand.New(rand.NewPCG(opt.seed, opt.seed))
	v := make([]float64, n)
	for i := range v {
		v[i] = rng.Float64()*2 - 1
	}
	scale(v, 1/norm(v))

	basis := make([][]float64, 0, steps)
	alphas := make([]float64, 0, steps)
	betas := make([]float64, 0, steps)
	w := make([]float64, n)
	convergence := struct {
		ok      bool
		val     float64
		prevVal float64
	}{prevVal: math.Inf(1)}
	for k := 0; k < steps; k++ {
		vk := make([]float64, n)
		copy(vk, v)
		basis = append(basis, vk)

		m.MatVec(w, v)
		alpha := dot(w, v)
		alphas = append(alphas, alpha)

		axpy(w, -alpha, v)
		if k > 0 {
			axpy(w, -betas[k-1], basis[k-1])
		}
		// Reorthogonalize against the whole basis to suppress ghost pairs.
		for _, b := range basis {
			axpy(w, -dot(w, b), b)
		}
		beta := norm(w)

		// The convergence test costs a small dense eigendecomposition,
		// so run it sparingly.
		exhausted := beta < 1e-13 || k == steps-1
		if exhausted || (k+1)%10 == 0 {
			val, _ := tridiagGround(alphas, betas)
			convergence.val = val
			if math.Abs(val-convergence.prevVal) < opt.tol*math.Max(math.Abs(val), 1) || exhausted {
				convergence.ok = true
				break
			}
			convergence.prevVal = val
		}

		betas = append(betas, beta)
		for i := range v {
			v[i] = w[i] / beta
		}
	}
	if !convergence.ok {
		return 0, nil, errors.Errorf("%#v", convergence)
	}

	val, y := tridiagGround(alphas, betas)
	vec := make([]float64, n)
	for k, b := range basis[:len(y)] {
		axpy(vec, y[k], b)
	}
	scale(vec, 1/norm(vec))
	return val, vec, nil
}

// tridiagGround returns the smallest eigenpair of the symmetric tridiagonal
// matrix with the given diagonal and off-diagonal.
func tridiagGround(alphas, betas []float64) (float64, []float64) {
	k := len(alphas)
	tri := mat.NewSymDense(k, nil)
	for i, a := range alphas {
		tri.SetSym(i, i, a)
		if i+1 < k && i < len(betas) {
			tri.SetSym(i, i+1, betas[i])
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(tri, true); !ok {
		panic("eig.Factorize failed")
	}
	vals := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	ground := 0
	for i := 1; i < len(vals); i++ {
		if vals[i] < vals[ground] {
			ground = i
		}
	}
	y := make([]float64, k)
	for i := range y {
		y[i] = vecs.At(i, ground)
	}
	return vals[ground], y
}

func dot(a, b []float64) float64 {
	var s float64
	for i, v := range a {
		s += v * b[i]
	}
	return s
}

func norm(a []float64) float64 {
	return math.Sqrt(dot(a, a))
}

// axpy computes dst += c*x.
func axpy(dst []float64, c float64, x []float64) {
	for i, v := range x {
		dst[i] += c * v
	}
}

func scale(a []float64, c float64) {
	for i := range a {
		a[i] *= c
	}
}
