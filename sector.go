package nqs

import (
	"math/rand/v2"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/combin"
)

// Sector is the set of spin configurations with a fixed total magnetization.
// A configuration assigns either +1 or -1 to every site.
// Configurations are ordered lexicographically by the positions of their up
// spins, and Index and Config convert between a configuration and its rank
// in that order.
type Sector struct {
	n   int
	ups int
}

// NewSector creates the sector of n sites with the given number of up spins.
func NewSector(n, ups int) (Sector, error) {
	if n < 1 || ups < 0 || ups > n {
		return Sector{}, errors.Errorf("%d %d", n, ups)
	}
	return Sector{n: n, ups: ups}, nil
}

// ZeroMagnetization returns the zero total magnetization sector,
// where exactly half of the spins point up.
func ZeroMagnetization(n int) (Sector, error) {
	if n%2 != 0 {
		return Sector{}, errors.Errorf("%d", n)
	}
	return NewSector(n, n/2)
}

// Sites returns the number of sites.
func (s Sector) Sites() int { return s.n }

// Ups returns the fixed number of up spins.
func (s Sector) Ups() int { return s.ups }

// Dim returns the number of configurations in the sector.
func (s Sector) Dim() int {
	return combin.Binomial(s.n, s.ups)
}

// Contains reports whether cfg satisfies the magnetization constraint.
func (s Sector) Contains(cfg []int8) bool {
	if len(cfg) != s.n {
		return false
	}
	ups := 0
	for _, v := range cfg {
		switch v {
		case 1:
			ups++
		case -1:
		default:
			return false
		}
	}
	return ups == s.ups
}

// Index returns the rank of cfg within the sector.
func (s Sector) Index(cfg []int8) int {
	comb := make([]int, 0, s.ups)
	for i, v := range cfg {
		if v == 1 {
			comb = append(comb, i)
		}
	}
	return combin.CombinationIndex(comb, s.n, s.ups)
}

// Config writes the configuration of the given rank into dst.
func (s Sector) Config(dst []int8, index int) []int8 {
	if len(dst) != s.n {
		dst = make([]int8, s.n)
	}
	for i := range dst {
		dst[i] = -1
	}
	for _, i := range combin.IndexToCombination(nil, index, s.n, s.ups) {
		dst[i] = 1
	}
	return dst
}

// Rand draws a uniformly random configuration from the sector.
func (s Sector) Rand(rng *rand.Rand) []int8 {
	cfg := make([]int8, s.n)
	for i := range cfg {
		switch {
		case i < s.ups:
			cfg[i] = 1
		default:
			cfg[i] = -1
		}
	}
	rng.Shuffle(len(cfg), func(i, j int) { cfg[i], cfg[j] = cfg[j], cfg[i] })
	return cfg
}
