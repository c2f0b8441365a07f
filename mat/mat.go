// Package mat provides the sparse symmetric matrices behind the exact
// reference solver.
package mat

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Entry is a nonzero matrix element.
type Entry struct {
	V   float64
	Row int
	Col int
}

// COO is a real sparse matrix in coordinate format.
// Data is kept sorted in row-major order by Compact.
type COO struct {
	rows int
	cols int
	Data []Entry
}

// M creates a sparse matrix from a dense one.
func M(dense [][]float64) *COO {
	m := &COO{rows: len(dense), cols: len(dense[0]), Data: make([]Entry, 0)}
	for i, row := range dense {
		for j, v := range row {
			if v == 0 {
				continue
			}
			m.Data = append(m.Data, Entry{V: v, Row: i, Col: j})
		}
	}
	return m
}

// Zeros creates an empty matrix of the given shape.
func Zeros(rows, cols int) *COO {
	return &COO{rows: rows, cols: cols, Data: make([]Entry, 0)}
}

// Rows returns the number of rows.
func (m *COO) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *COO) Cols() int { return m.cols }

// Zeros resets the matrix to the given shape, reusing storage.
func (m *COO) Zeros(rows, cols int) {
	m.rows, m.cols = rows, cols
	m.Data = m.Data[:0]
}

// Append records one nonzero element.
func (m *COO) Append(v float64, row, col int) {
	m.Data = append(m.Data, Entry{V: v, Row: row, Col: col})
}

// Compact sorts the elements in row-major order, merging duplicate
// coordinates and dropping zeros.
func (m *COO) Compact() {
	slices.SortFunc(m.Data, rowMajor)

	compacted := m.Data[:0]
	for _, e := range m.Data {
		last := len(compacted) - 1
		if last >= 0 && compacted[last].Row == e.Row && compacted[last].Col == e.Col {
			compacted[last].V += e.V
			continue
		}
		compacted = append(compacted, e)
	}
	m.Data = slices.DeleteFunc(compacted, func(e Entry) bool {
		return e.V == 0
	})
}

// Equal reports whether two matrices have identical shape and elements.
func (a *COO) Equal(b *COO) bool {
	if a.rows != b.rows {
		return false
	}
	if a.cols != b.cols {
		return false
	}
	if len(a.Data) != len(b.Data) {
		return false
	}
	for i, av := range a.Data {
		if av != b.Data[i] {
			return false
		}
	}
	return true
}

// Slice returns the submatrix within the given row and column bounds.
// Negative bounds count from the end.
func (m *COO) Slice(yBoundN, xBoundN [2]int) *COO {
	yBound, xBound := yBoundN, xBoundN
	for i := 0; i < 2; i++ {
		if yBound[i] < 0 {
			yBound[i] += m.rows
		}
		if xBound[i] < 0 {
			xBound[i] += m.cols
		}
	}

	s := &COO{rows: yBound[1] - yBound[0], cols: xBound[1] - xBound[0], Data: make([]Entry, 0)}
	for _, e := range m.Data {
		if e.Row < yBound[0] {
			continue
		}
		if e.Row >= yBound[1] {
			break
		}
		if e.Col < xBound[0] || e.Col >= xBound[1] {
			continue
		}
		s.Data = append(s.Data, Entry{V: e.V, Row: e.Row - yBound[0], Col: e.Col - xBound[0]})
	}
	return s
}

// Dense returns the dense form of the matrix.
func (m *COO) Dense() [][]float64 {
	dense := make([][]float64, m.rows)
	for i := range dense {
		dense[i] = make([]float64, m.cols)
	}
	for _, e := range m.Data {
		dense[e.Row][e.Col] += e.V
	}
	return dense
}

// MatVec computes dst = m*x.
func (m *COO) MatVec(dst, x []float64) {
	if len(dst) != m.rows || len(x) != m.cols {
		panic(fmt.Sprintf("%d %d %d %d", len(dst), m.rows, len(x), m.cols))
	}
	for i := range dst {
		dst[i] = 0
	}
	for _, e := range m.Data {
		dst[e.Row] += e.V * x[e.Col]
	}
}

func (m *COO) String() string {
	dense := m.Dense()
	lines := make([]string, 0, m.rows)
	for _, row := range dense {
		cs := make([]string, 0, m.cols)
		for _, v := range row {
			cs = append(cs, format(v))
		}
		lines = append(lines, strings.Join(cs, "\t"))
	}
	return strings.Join(lines, "\n")
}

// ValVec is an eigenpair.
type ValVec struct {
	Val float64
	Vec []float64
}

// EigenSym computes all eigenpairs of a symmetric matrix,
// sorted by ascending eigenvalue.
func (m *COO) EigenSym() []ValVec {
	if m.rows != m.cols {
		panic(fmt.Sprintf("%d %d", m.rows, m.cols))
	}
	sym := mat.NewSymDense(m.rows, nil)
	for _, e := range m.Data {
		// The strict lower triangle mirrors the upper one.
		if e.Row <= e.Col {
			sym.SetSym(e.Row, e.Col, e.V)
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(sym, true); !ok {
		panic("eig.Factorize failed")
	}
	vals := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	vvs := make([]ValVec, 0, len(vals))
	for i, v := range vals {
		vec := make([]float64, 0, m.rows)
		for j := 0; j < m.rows; j++ {
			vec = append(vec, vecs.At(j, i))
		}
		vvs = append(vvs, ValVec{Val: v, Vec: vec})
	}
	slices.SortFunc(vvs, func(a, b ValVec) int { return cmp.Compare(a.Val, b.Val) })

	return vvs
}

func rowMajor(a, b Entry) int {
	if c := cmp.Compare(a.Row, b.Row); c != 0 {
		return c
	}
	return cmp.Compare(a.Col, b.Col)
}

func format(v float64) string {
	// If v is 0 or -0, return "0" immediately to avoid returning "-0".
	if v == 0 {
		return " 0"
	}

	s := fmt.Sprintf("%v", v)

	// Add a space before non-negative numbers to align with other negative numbers in the same column.
	if v >= 0 {
		s = " " + s
	}

	return s
}
