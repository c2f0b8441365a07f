package nqs

import (
	"fmt"
	"math/rand/v2"
	"testing"
)

func TestSectorDim(t *testing.T) {
	t.Parallel()
	tests := []struct {
		n   int
		ups int
		dim int
	}{
		{n: 2, ups: 1, dim: 2},
		{n: 4, ups: 2, dim: 6},
		{n: 8, ups: 4, dim: 70},
		{n: 22, ups: 11, dim: 705432},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%d %d", test.n, test.ups), func(t *testing.T) {
			t.Parallel()
			sector, err := NewSector(test.n, test.ups)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			if sector.Dim() != test.dim {
				t.Fatalf("%d, expected %d", sector.Dim(), test.dim)
			}
		})
	}
}

func TestSectorIndexRoundTrip(t *testing.T) {
	t.Parallel()
	sector, err := NewSector(6, 3)
	if err != nil {
		t.Fatalf("%+v", err)
	}

	cfg := make([]int8, sector.Sites())
	for index := 0; index < sector.Dim(); index++ {
		sector.Config(cfg, index)
		if !sector.Contains(cfg) {
			t.Fatalf("%d %v", index, cfg)
		}
		if got := sector.Index(cfg); got != index {
			t.Fatalf("%d, expected %d", got, index)
		}
	}
}

func TestSectorContains(t *testing.T) {
	t.Parallel()
	sector, err := ZeroMagnetization(4)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	tests := []struct {
		cfg []int8
		ok  bool
	}{
		{cfg: []int8{1, 1, -1, -1}, ok: true},
		{cfg: []int8{1, -1, 1, -1}, ok: true},
		{cfg: []int8{1, 1, 1, -1}, ok: false},
		{cfg: []int8{1, 1, -1}, ok: false},
		{cfg: []int8{1, 1, -1, 0}, ok: false},
	}
	for _, test := range tests {
		if got := sector.Contains(test.cfg); got != test.ok {
			t.Fatalf("%v %v, expected %v", test.cfg, got, test.ok)
		}
	}
}

func TestSectorRand(t *testing.T) {
	t.Parallel()
	sector, err := ZeroMagnetization(10)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	rng := rand.New(rand.NewPCG(1, 1))
	for range 100 {
		cfg := sector.Rand(rng)
		if !sector.Contains(cfg) {
			t.Fatalf("%v", cfg)
		}
	}
}

func TestZeroMagnetizationOdd(t *testing.T) {
	t.Parallel()
	if _, err := ZeroMagnetization(5); err == nil {
		t.Fatalf("expected error")
	}
}
