package nqs

import (
	"fmt"
	"testing"
)

func TestChainEdges(t *testing.T) {
	t.Parallel()
	tests := []struct {
		n        int
		periodic bool
		edges    [][2]int
	}{
		{n: 2, periodic: false, edges: [][2]int{{0, 1}}},
		{n: 4, periodic: false, edges: [][2]int{{0, 1}, {1, 2}, {2, 3}}},
		{n: 4, periodic: true, edges: [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}}},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%d %v", test.n, test.periodic), func(t *testing.T) {
			t.Parallel()
			chain, err := NewChain(test.n, test.periodic)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			edges := chain.Edges()
			if len(edges) != len(test.edges) {
				t.Fatalf("%#v, expected %#v", edges, test.edges)
			}
			for i, e := range edges {
				if e != test.edges[i] {
					t.Fatalf("%#v, expected %#v", edges, test.edges)
				}
			}
		})
	}
}

func TestNewChainInvalid(t *testing.T) {
	t.Parallel()
	if _, err := NewChain(1, false); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := NewChain(2, true); err == nil {
		t.Fatalf("expected error")
	}
}
