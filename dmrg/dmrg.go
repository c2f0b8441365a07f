// Package dmrg approximates ground states of spin chains with matrix product
// states, optimized by the single site density matrix renormalization group.
//
// References:
//   - The density-matrix renormalization group in the age of matrix product states, Ulrich Schollwock
package dmrg

import (
	"fmt"
	"math/cmplx"
	"math/rand/v2"
	"slices"

	"github.com/fumin/tensor"
	"github.com/pkg/errors"
)

const (
	// stateLeft is the axis of a_{l-1} in Figure 6, Ulrich Schollwock.
	stateLeft  = 0
	stateUp    = 1
	stateRight = 2
	// mpoLeft is the axis of b_{l-1} in Figure 35, Ulrich Schollwock.
	mpoLeft  = 0
	mpoRight = 1
	mpoUp    = 2
	mpoDown  = 3

	// Machine precision.
	epsilon = 0x1p-23
)

// Random creates a random matrix product state compatible with mpo.
// maxD is the maximum bond dimension, which is D in the discussion below
// equation 71 in section 4.1.4, Ulrich Schollwock.
func Random(mpo []*tensor.Dense, maxD int, rng *rand.Rand) []*tensor.Dense {
	sites := make([]*tensor.Dense, 0, len(mpo))

	physD := mpo[0].Shape()[mpoDown]
	leftD := physD
	sites = append(sites, randTensor(rng, 1, physD, min(physD, maxD)))

	for i := 1; i <= len(mpo)-2; i++ {
		physD := mpo[i].Shape()[mpoDown]
		var rightD int
		switch {
		case i < len(mpo)/2:
			rightD = leftD * physD
		case i > len(mpo)/2:
			rightD = leftD / physD
		case len(mpo)%2 == 0:
			rightD = leftD / physD
		default:
			rightD = leftD
		}
		leftD = rightD

		si1 := sites[i-1].Shape()
		sites = append(sites, randTensor(rng, si1[stateRight], physD, min(rightD, maxD)))
	}

	physD = mpo[len(mpo)-1].Shape()[mpoDown]
	si1 := sites[len(mpo)-2].Shape()
	sites = append(sites, randTensor(rng, si1[stateRight], physD, 1))

	return sites
}

// InnerProduct computes the inner product between the states x and y.
// See Section 4.2.1 Efficient evaluation of contractions, Ulrich Schollwock.
func InnerProduct(x, y []*tensor.Dense, bufs [2]*tensor.Dense) complex64 {
	if len(x) != len(y) {
		panic(fmt.Sprintf("%d %d", len(x), len(y)))
	}

	f := ones(bufs[0], 1, 1)
	const fTop, fBottom = 0, 1
	for i, xi := range x {
		yi := y[i]

		fyi := tensor.Product(bufs[1], f, yi, [][2]int{{fBottom, stateLeft}})
		tensor.Product(f, xi.Conj(), fyi, [][2]int{{stateLeft, fTop}, {stateUp, stateUp}})
	}

	if !slices.Equal(f.Shape(), []int{1, 1}) {
		panic(fmt.Sprintf("%#v", f.Shape()))
	}
	return f.At(0, 0)
}

// Energy returns <ms|ws|ms> / <ms|ms>.
func Energy(fs, ws, ms []*tensor.Dense, bufs [2]*tensor.Dense) complex64 {
	norm2 := InnerProduct(ms, ms, bufs)
	return leftContractAll(fs, ws, ms, bufs) / norm2
}

// leftContractAll builds the L expressions of Equation 192, Section 6.2,
// Ulrich Schollwock, and returns the full contraction <ms|ws|ms>.
func leftContractAll(fs, ws, ms []*tensor.Dense, bufs [2]*tensor.Dense) complex64 {
	if len(fs) != len(ws) || len(ws) != len(ms) {
		panic(fmt.Sprintf("%d %d %d", len(fs), len(ws), len(ms)))
	}

	fi1 := ones(fs[0], 1, 1, 1)
	for i, w := range ws {
		fi1 = contractLeft(fs[i], fi1, w, ms[i], bufs[:])
	}

	if !slices.Equal(fi1.Shape(), []int{1, 1, 1}) {
		panic(fmt.Sprintf("%#v", fi1.Shape()))
	}
	return fi1.At(0, 0, 0)
}

func rightContractAll(fs, ws, ms []*tensor.Dense, bufs [2]*tensor.Dense) complex64 {
	if len(fs) != len(ws) || len(ws) != len(ms) {
		panic(fmt.Sprintf("%d %d %d", len(fs), len(ws), len(ms)))
	}

	fi1 := ones(fs[len(fs)-1], 1, 1, 1)
	for i := len(fs) - 1; i >= 0; i-- {
		fi1 = contractRight(fs[i], fi1, ws[i], ms[i], bufs[:])
	}

	if !slices.Equal(fi1.Shape(), []int{1, 1, 1}) {
		panic(fmt.Sprintf("%#v", fi1.Shape()))
	}
	return fi1.At(0, 0, 0)
}

func contractLeft(fi, fi1, w, m *tensor.Dense, bufs []*tensor.Dense) *tensor.Dense {
	// fi1 is of shape {fTop, fMid, fBot}.
	// fm is of shape {fTop, fMid, stateTop, stateRight}.
	fm := tensor.Product(bufs[0], fi1, m, [][2]int{{2, stateLeft}})

	// wfm is of shape {mpoRight, mpoUp, fTop, stateRight}.
	wfm := tensor.Product(bufs[1], w, fm, [][2]int{{mpoDown, 2}, {mpoLeft, 1}})

	// fi is of shape {stateRight.conj, mpoRight, stateRight}.
	tensor.Product(fi, m.Conj(), wfm, [][2]int{{stateLeft, 2}, {stateUp, 1}})

	return fi
}

func contractRight(fi, fi1, w, m *tensor.Dense, bufs []*tensor.Dense) *tensor.Dense {
	// fi1 is of shape {fTop, fMid, fBot}.
	// fm is of shape {fTop, fMid, stateLeft, stateTop}.
	fm := tensor.Product(bufs[0], fi1, m, [][2]int{{2, stateRight}})

	// wfm is of shape {mpoLeft, mpoUp, fTop, stateLeft}.
	wfm := tensor.Product(bufs[1], w, fm, [][2]int{{mpoDown, 3}, {mpoRight, 1}})

	// fi is of shape {stateLeft.conj, mpoLeft, stateLeft}.
	tensor.Product(fi, m.Conj(), wfm, [][2]int{{stateRight, 2}, {stateUp, 1}})

	return fi
}

// expectH2 returns <ms|ws^2|ms>.
// See Figure 44, Section 6.4, Ulrich Schollwock for a graphical explanation.
func expectH2(ws, ms []*tensor.Dense, bufs [2]*tensor.Dense) complex64 {
	if len(ws) != len(ms) {
		panic(fmt.Sprintf("%d %d", len(ws), len(ms)))
	}

	// fi1 is the F expression at site i-1, of shape {fTop, fMid2, fMid, fBot}.
	fi1 := ones(bufs[0], 1, 1, 1, 1)
	for i, w := range ws {
		m := ms[i]

		// fm is of shape {fTop, fMid2, fMid, stateTop, stateRight}.
		fm := tensor.Product(bufs[1], fi1, m, [][2]int{{3, stateLeft}})

		// wfm is of shape {mpoRight, mpoUp, fTop, fMid2, stateRight}.
		wfm := tensor.Product(bufs[0], w, fm, [][2]int{{mpoDown, 3}, {mpoLeft, 2}})

		// wwfm is of shape {mpoRight2, mpoUp2, mpoRight, fTop, stateRight}.
		wwfm := tensor.Product(bufs[1], w, wfm, [][2]int{{mpoDown, 1}, {mpoLeft, 3}})

		// fi1 is of shape {stateRight.conj, mpoRight2, mpoRight, stateRight}.
		fi1 = tensor.Product(bufs[0], m.Conj(), wwfm, [][2]int{{stateLeft, 3}, {stateUp, 1}})
	}

	if !slices.Equal(fi1.Shape(), []int{1, 1, 1, 1}) {
		panic(fmt.Sprintf("%#v", fi1.Shape()))
	}
	return fi1.At(0, 0, 0, 0)
}

// Options are options for the ground state search.
type Options struct {
	maxIterations int
	tol           float32
}

// NewOptions returns the default ground state search options.
func NewOptions() Options {
	opt := Options{}
	opt.maxIterations = 32
	opt.tol = 1e-6
	return opt
}

// MaxIterations sets the maximum number of full sweeps.
func (opt Options) MaxIterations(i int) Options {
	opt.maxIterations = i
	return opt
}

// Tol sets the tolerance of the convergence criterion <H^2> - (<H>)^2.
func (opt Options) Tol(tol float32) Options {
	opt.tol = tol
	return opt
}

// GroundState sweeps ms towards the ground state of ws and returns its
// energy. See Section 6.3 Iterative ground state search, Ulrich Schollwock.
func GroundState(fs, ws, ms []*tensor.Dense, bufs [10]*tensor.Dense, options ...Options) (complex64, error) {
	opt := NewOptions()
	if len(options) > 0 {
		opt = options[0]
	}

	normalizeRightAll(ms, bufs[:3])
	rightContractAll(fs, ws, ms, [2]*tensor.Dense(bufs[:2]))
	convergence := struct {
		ok bool
		h  complex64
		h2 complex64
	}{}
	for i := range opt.maxIterations {
		if err := sweepRight(fs, ws, ms, bufs); err != nil {
			return 0, errors.Wrap(err, fmt.Sprintf("%d", i))
		}
		if err := sweepLeft(fs, ws, ms, bufs); err != nil {
			return 0, errors.Wrap(err, fmt.Sprintf("%d", i))
		}

		bufs2 := [2]*tensor.Dense(bufs[:2])
		norm2 := InnerProduct(ms, ms, bufs2)
		if abs(norm2) < epsilon {
			return 0, errors.Errorf("%f", norm2)
		}
		// sweepLeft built the R expressions down to fs[1], so only fs[0]
		// remains.
		contractRight(fs[0], fs[1], ws[0], ms[0], bufs[:])
		convergence.h = fs[0].At(0, 0, 0) / norm2
		h2 := expectH2(ws, ms, bufs2) / norm2
		convergence.h2 = h2 - convergence.h*convergence.h
		if abs(convergence.h2) < opt.tol*max(abs(h2), 1) {
			convergence.ok = true
			break
		}
	}
	if !convergence.ok {
		return 0, errors.Errorf("%#v", convergence)
	}
	return convergence.h, nil
}

func sweepLeft(fs, ws, ms []*tensor.Dense, bufs [10]*tensor.Dense) error {
	for l := len(ms) - 1; l >= 1; l-- {
		fRight := ones(fs[l], 1, 1, 1)
		if l+1 <= len(ms)-1 {
			fRight = fs[l+1]
		}
		h := localHamiltonian(bufs[0], fs[l-1], fRight, ws[l], bufs[1:])

		eigvals, eigvecs := bufs[1], bufs[2]
		abufs := [7]*tensor.Dense(bufs[3:])
		if err := tensor.Arnoldi(eigvals, eigvecs, h, 1, abufs); err != nil {
			return errors.Wrap(err, "")
		}
		resetCopy(ms[l], eigvecs.Reshape(ms[l].Shape()...))

		// Right normalize ms[l], and multiply into ms[l-1].
		// Since ms[l-1] is modified, reset fs[l-1].
		normalizeRight(ms, l, bufs[:3])
		fs[l-1].Reset(1)

		contractRight(fs[l], fRight, ws[l], ms[l], bufs[:2])
	}
	return nil
}

func sweepRight(fs, ws, ms []*tensor.Dense, bufs [10]*tensor.Dense) error {
	for l := range len(ms) - 1 {
		fLeft := ones(fs[l], 1, 1, 1)
		if l-1 >= 0 {
			fLeft = fs[l-1]
		}
		h := localHamiltonian(bufs[0], fLeft, fs[l+1], ws[l], bufs[1:])

		eigvals, eigvecs := bufs[1], bufs[2]
		abufs := [7]*tensor.Dense(bufs[3:])
		if err := tensor.Arnoldi(eigvals, eigvecs, h, 1, abufs); err != nil {
			return errors.Wrap(err, "")
		}
		resetCopy(ms[l], eigvecs.Reshape(ms[l].Shape()...))

		// Left normalize ms[l], and multiply into ms[l+1].
		// Since ms[l+1] is modified, reset fs[l+1].
		// Keeping ms[:l-1] left-normalized and ms[l:] right-normalized
		// reduces the generalized eigenvalue problem to the ordinary one
		// solved here. See Equation 211, Section 6.3, Ulrich Schollwock.
		normalizeLeft(ms, l, bufs[:3])
		fs[l+1].Reset(1)

		contractLeft(fs[l], fLeft, ws[l], ms[l], bufs[:2])
	}
	return nil
}

// localHamiltonian returns the single site effective Hamiltonian of Equation
// 210, Section 6.3 Iterative ground state search, Ulrich Schollwock.
func localHamiltonian(h, left, right, w *tensor.Dense, bufs []*tensor.Dense) *tensor.Dense {
	// right is of shape {rightTop, rightMid, rightBot}.
	// wRight is of shape {mpoLeft, mpoUp, mpoDown, rightTop, rightBot}.
	wRight := tensor.Product(bufs[0], w, right, [][2]int{{mpoRight, 1}})

	// left is of shape {leftTop, leftMid, leftBot}.
	// lwr is of shape {leftTop, leftBot, mpoUp, mpoDown, rightTop, rightBot}.
	lwr := tensor.Product(bufs[1], left, wRight, [][2]int{{1, 0}})

	// h is of shape {leftTop, mpoUp, rightTop, leftBot, mpoDown, rightBot}.
	resetCopy(h, lwr.Transpose(0, 2, 4, 1, 3, 5))

	ls, ws, rs := left.Shape(), w.Shape(), right.Shape()
	if ls[0] != ls[2] || ws[mpoUp] != ws[mpoDown] || rs[0] != rs[2] {
		panic(fmt.Sprintf("%#v %#v %#v", ls, ws, rs))
	}
	return h.Reshape(ls[0]*ws[mpoUp]*rs[0], ls[2]*ws[mpoDown]*rs[2])
}

func normalizeRightAll(ms []*tensor.Dense, bufs []*tensor.Dense) {
	for i := len(ms) - 1; i >= 1; i-- {
		normalizeRight(ms, i, bufs)
	}
}

// normalizeRight normalizes a site from the right.
// See Section 4.4.2 Generation of a right-canonical MPS, Ulrich Schollwock.
func normalizeRight(ms []*tensor.Dense, i int, bufs []*tensor.Dense) {
	s := ms[i].Shape()
	dUp, dRight := s[stateUp], s[stateRight]

	// Decompose ms[i] = l @ q.H.
	mi := ms[i].Reshape(s[stateLeft], dUp*dRight)
	q, lqbufs := bufs[0], [2]*tensor.Dense(bufs[1:])
	l := lq(q, mi, lqbufs)

	// ms[i-1] = ms[i-1] @ l.
	axes := [][2]int{{stateRight, 0}}
	resetCopy(ms[i-1], tensor.Product(bufs[1], ms[i-1], l, axes))

	// ms[i] = q.H.
	ms[i] = resetCopy(ms[i], q.H()).Reshape(-1, dUp, dRight)
}

func normalizeLeft(ms []*tensor.Dense, i int, bufs []*tensor.Dense) {
	s := ms[i].Shape()
	dLeft, dUp := s[stateLeft], s[stateUp]

	// Decompose ms[i] = q @ r.
	mi := ms[i].Reshape(dLeft*dUp, s[stateRight])
	q, qrbufs := bufs[0], [2]*tensor.Dense(bufs[1:])
	r := tensor.QR(q, mi, qrbufs)

	// ms[i+1] = r @ ms[i+1].
	axes := [][2]int{{1, stateLeft}}
	resetCopy(ms[i+1], tensor.Product(bufs[1], r, ms[i+1], axes))

	// ms[i] = q.
	ms[i] = resetCopy(ms[i], q).Reshape(dLeft, dUp, -1)
}

func lq(q, a *tensor.Dense, bufs [2]*tensor.Dense) *tensor.Dense {
	r := tensor.QR(q, a.H(), bufs)
	return r.H()
}

func resetCopy(dst, src *tensor.Dense) *tensor.Dense {
	shape := src.Shape()
	zeroDigit := make([]int, len(shape))
	dst.Reset(shape...).Set(zeroDigit, src)
	return dst
}

func ones(t *tensor.Dense, shape ...int) *tensor.Dense {
	t.Reset(shape...)
	for ijk := range t.All() {
		t.SetAt(ijk, 1)
	}
	return t
}

func randTensor(rng *rand.Rand, shape ...int) *tensor.Dense {
	t := tensor.Zeros(shape...)
	for ijk := range t.All() {
		v := complex(rng.Float32()*2-1, rng.Float32()*2-1)
		t.SetAt(ijk, v)
	}
	return t
}

func abs(x complex64) float32 {
	return float32(cmplx.Abs(complex128(x)))
}
