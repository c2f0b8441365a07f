package dmrg

import (
	"fmt"

	"github.com/fumin/tensor"
)

// Spin-1/2 operators in the basis {up, down}.
var (
	spinZ     = [][]complex64{{0.5, 0}, {0, -0.5}}
	spinPlus  = [][]complex64{{0, 1}, {0, 0}}
	spinMinus = [][]complex64{{0, 0}, {1, 0}}
	identity  = [][]complex64{{1, 0}, {0, 1}}
)

// Heisenberg returns the matrix product operator of the open Heisenberg chain
//
//	H = J sum_i [Sz_i Sz_i+1 + (S+_i S-_i+1 + S-_i S+_i+1)/2].
func Heisenberg(n int, j complex64) []*tensor.Dense {
	if n < 2 {
		panic(fmt.Sprintf("%d", n))
	}

	bulk := [][][][]complex64{
		{identity, nil, nil, nil, nil},
		{spinPlus, nil, nil, nil, nil},
		{spinMinus, nil, nil, nil, nil},
		{spinZ, nil, nil, nil, nil},
		{nil, scale(j/2, spinMinus), scale(j/2, spinPlus), scale(j, spinZ), identity},
	}
	// The first site keeps only the last row of the bulk tensor, and the
	// last site only the first column.
	first := [][][][]complex64{bulk[len(bulk)-1]}
	last := make([][][][]complex64, 0, len(bulk))
	for _, row := range bulk {
		last = append(last, [][][]complex64{row[0]})
	}

	mpo := make([]*tensor.Dense, 0, n)
	mpo = append(mpo, mpoTensor(first))
	w := mpoTensor(bulk)
	for range n - 2 {
		mpo = append(mpo, w)
	}
	mpo = append(mpo, mpoTensor(last))
	return mpo
}

// mpoTensor packs a block matrix of single site operators into a rank 4
// tensor of shape {left, right, up, down}. nil blocks are zero.
func mpoTensor(blocks [][][][]complex64) *tensor.Dense {
	rows, cols := len(blocks), len(blocks[0])
	w := tensor.Zeros(rows, cols, 2, 2)
	for r, row := range blocks {
		for c, op := range row {
			if op == nil {
				continue
			}
			for u := range 2 {
				for d := range 2 {
					w.SetAt([]int{r, c, u, d}, op[u][d])
				}
			}
		}
	}
	return w
}

func scale(c complex64, op [][]complex64) [][]complex64 {
	scaled := make([][]complex64, len(op))
	for u, row := range op {
		scaled[u] = make([]complex64, len(row))
		for d, v := range row {
			scaled[u][d] = c * v
		}
	}
	return scaled
}
