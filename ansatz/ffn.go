package ansatz

import (
	"math/cmplx"
	"math/rand/v2"
)

// FFN is a feed-forward wave-function: each affine layer is followed by the
// log cosh activation, and the log-amplitude is the coordinate-wise sum
// after the final activation.
type FFN struct {
	n      int
	widths []int
	// theta holds, per layer, the row-major weights followed by the biases.
	theta []complex128

	// Forward pass caches, indexed by layer.
	zs [][]complex128 // pre-activations
	hs [][]complex128 // activations, hs[0] is the input
	gs [][]complex128 // backpropagated activation gradients
}

// NewFFN creates a feed-forward wave-function over n sites with the given
// hidden layer widths.
func NewFFN(n int, widths ...int) *FFN {
	f := &FFN{n: n, widths: widths}

	numParams := 0
	in := n
	f.hs = append(f.hs, make([]complex128, n))
	for _, out := range widths {
		numParams += out*in + out
		f.zs = append(f.zs, make([]complex128, out))
		f.hs = append(f.hs, make([]complex128, out))
		f.gs = append(f.gs, make([]complex128, out))
		in = out
	}
	f.theta = make([]complex128, numParams)

	return f
}

func (f *FFN) Sites() int     { return f.n }
func (f *FFN) NumParams() int { return len(f.theta) }

func (f *FFN) Init(rng *rand.Rand) { initParams(f.theta, rng) }

func (f *FFN) Shift(delta []complex128) { shiftParams(f.theta, delta) }

// layer returns the weights and biases of layer l.
func (f *FFN) layer(l int) ([]complex128, []complex128) {
	off := 0
	in := f.n
	for i := 0; i < l; i++ {
		off += f.widths[i]*in + f.widths[i]
		in = f.widths[i]
	}
	out := f.widths[l]
	w := f.theta[off : off+out*in]
	b := f.theta[off+out*in : off+out*in+out]
	return w, b
}

func (f *FFN) forward(cfg []int8) {
	x := f.hs[0]
	for i, s := range cfg {
		x[i] = complex(float64(s), 0)
	}

	in := f.n
	for l, out := range f.widths {
		w, b := f.layer(l)
		z, h := f.zs[l], f.hs[l+1]
		for j := 0; j < out; j++ {
			zj := b[j]
			row := w[j*in : (j+1)*in]
			for i, v := range f.hs[l] {
				zj += row[i] * v
			}
			z[j] = zj
			h[j] = logCosh(zj)
		}
		in = out
	}
}

func (f *FFN) LogAmp(cfg []int8) complex128 {
	checkSites(cfg, f.n)
	f.forward(cfg)

	var la complex128
	for _, h := range f.hs[len(f.hs)-1] {
		la += h
	}
	return la
}

func (f *FFN) LogDerivs(dst []complex128, cfg []int8) {
	checkSites(cfg, f.n)
	f.forward(cfg)

	// The sum over the final activations has unit gradient, so the last
	// layer's activation gradient is tanh of its pre-activation.
	last := len(f.widths) - 1
	for j, z := range f.zs[last] {
		f.gs[last][j] = cmplx.Tanh(z)
	}
	in := f.inWidth(last)
	for l := last; l >= 1; l-- {
		w, _ := f.layer(l)
		g, gPrev := f.gs[l], f.gs[l-1]
		for k := range gPrev {
			var s complex128
			for j, gj := range g {
				s += gj * w[j*in+k]
			}
			gPrev[k] = s * cmplx.Tanh(f.zs[l-1][k])
		}
		in = f.inWidth(l - 1)
	}

	// Parameter gradients: dW_l[j,k] = g_l[j]*h_l[k], dB_l[j] = g_l[j].
	off := 0
	in = f.n
	for l, out := range f.widths {
		g, h := f.gs[l], f.hs[l]
		for j := 0; j < out; j++ {
			row := dst[off+j*in : off+(j+1)*in]
			for k, hk := range h {
				row[k] = g[j] * hk
			}
		}
		for j := 0; j < out; j++ {
			dst[off+out*in+j] = g[j]
		}
		off += out*in + out
		in = out
	}
}

// inWidth returns the input width of layer l.
func (f *FFN) inWidth(l int) int {
	if l == 0 {
		return f.n
	}
	return f.widths[l-1]
}
