package vmc

import (
	"math/cmplx"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// reconfigurer preconditions energy gradients with the stochastic
// reconfiguration (natural-gradient) metric
//
//	S_kl = <conj(O_k) O_l> - conj(<O_k>) <O_l>,
//
// where O_k are the log-derivatives of the wave-function over a Monte Carlo
// batch. Buffers are reused across iterations.
type reconfigurer struct {
	p int

	oMean []complex128 // <O_k>
	oo    []complex128 // <conj(O_k) O_l>, row-major p by p
	eo    []complex128 // <conj(O_k) E>

	// Real 2p by 2p embedding of the shifted complex system.
	a *mat.Dense
	b *mat.VecDense
	x *mat.VecDense
}

func newReconfigurer(p int) *reconfigurer {
	return &reconfigurer{
		p:     p,
		oMean: make([]complex128, p),
		oo:    make([]complex128, p*p),
		eo:    make([]complex128, p),
		a:     mat.NewDense(2*p, 2*p, nil),
		b:     mat.NewVecDense(2*p, nil),
		x:     mat.NewVecDense(2*p, nil),
	}
}

func (r *reconfigurer) reset() {
	clear(r.oMean)
	clear(r.oo)
	clear(r.eo)
}

// accumulate records one sample's log-derivatives and local energy.
func (r *reconfigurer) accumulate(derivs []complex128, eLoc complex128) {
	for k, ok := range derivs {
		ck := cmplx.Conj(ok)
		r.oMean[k] += ok
		r.eo[k] += ck * eLoc
		row := r.oo[k*r.p : (k+1)*r.p]
		for l, ol := range derivs {
			row[l] += ck * ol
		}
	}
}

// solve finishes the moments over numSamples samples and solves
// (S + shift*I) delta = F for the preconditioned update direction, where
// F_k = <conj(O_k) E> - conj(<O_k>) <E> is the energy gradient.
func (r *reconfigurer) solve(delta []complex128, eMean complex128, numSamples int, shift float64) error {
	inv := 1 / float64(numSamples)
	p := r.p

	for k := 0; k < p; k++ {
		ck := cmplx.Conj(r.oMean[k]) * complex(inv, 0)
		f := r.eo[k]*complex(inv, 0) - ck*eMean

		row := r.oo[k*p : (k+1)*p]
		for l := 0; l < p; l++ {
			s := row[l]*complex(inv, 0) - ck*(r.oMean[l]*complex(inv, 0))
			if k == l {
				s += complex(shift, 0)
			}
			// The complex system maps to the real embedding
			// [[Re S, -Im S], [Im S, Re S]].
			r.a.Set(k, l, real(s))
			r.a.Set(k, p+l, -imag(s))
			r.a.Set(p+k, l, imag(s))
			r.a.Set(p+k, p+l, real(s))
		}
		r.b.SetVec(k, real(f))
		r.b.SetVec(p+k, imag(f))
	}

	if err := r.x.SolveVec(r.a, r.b); err != nil {
		return errors.Wrap(err, "")
	}
	for k := 0; k < p; k++ {
		delta[k] = complex(r.x.AtVec(k), r.x.AtVec(p+k))
	}
	return nil
}
