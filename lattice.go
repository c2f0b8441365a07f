// Package nqs approximates the ground state energy of the spin-1/2
// Heisenberg antiferromagnet on a 1-D chain with variational wave-functions
// trained by stochastic variational Monte Carlo.
//
// References:
//   - Carleo and Troyer, Solving the quantum many-body problem with artificial neural networks.
package nqs

import (
	"github.com/pkg/errors"
)

// Chain is a finite 1-D lattice of sites with nearest-neighbor bonds.
type Chain struct {
	// N is the number of sites.
	N int
	// Periodic adds the wrap-around bond between the last and first site.
	Periodic bool
}

// NewChain creates a chain of n sites.
func NewChain(n int, periodic bool) (Chain, error) {
	if n < 2 {
		return Chain{}, errors.Errorf("%d", n)
	}
	// For n == 2, the wrap-around bond coincides with the interior bond.
	if periodic && n == 2 {
		return Chain{}, errors.Errorf("%d", n)
	}
	return Chain{N: n, Periodic: periodic}, nil
}

// Edges returns the nearest-neighbor bonds of the chain.
func (c Chain) Edges() [][2]int {
	edges := make([][2]int, 0, c.N)
	for i := 0; i+1 < c.N; i++ {
		edges = append(edges, [2]int{i, i + 1})
	}
	if c.Periodic {
		edges = append(edges, [2]int{c.N - 1, 0})
	}
	return edges
}
