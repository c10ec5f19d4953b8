package intervaltree

import (
	"math/rand"
	"sort"
	"testing"
)

func TestQuery(t *testing.T) {
	tree := New()
	tree.Add(0, 10, 1)
	tree.Add(5, 15, 2)
	tree.Add(-3, 2, 3)
	tree.Add(20, 30, 4)

	tests := []struct {
		name string
		x    float64
		want []int
	}{
		{"inside first and third", 1, []int{1, 3}},
		{"overlap of first and second", 7, []int{1, 2}},
		{"lower bound inclusive", 0, []int{1, 3}},
		{"upper bound inclusive", 15, []int{2}},
		{"gap", 17, nil},
		{"far left", -10, nil},
		{"isolated interval", 25, []int{4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tree.Query(tt.x)
			sort.Ints(got)
			if len(got) != len(tt.want) {
				t.Fatalf("Query(%f) = %v, want %v", tt.x, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("Query(%f) = %v, want %v", tt.x, got, tt.want)
				}
			}
		})
	}
}

func TestDegenerateIntervalSkipped(t *testing.T) {
	tree := New()
	tree.Add(5, 5, 1)
	if tree.Len() != 0 {
		t.Fatalf("degenerate interval stored, Len() = %d", tree.Len())
	}
	if got := tree.Query(5); len(got) != 0 {
		t.Fatalf("Query(5) = %v, want empty", got)
	}
}

func TestReversedBoundsSwapped(t *testing.T) {
	tree := New()
	tree.Add(10, 0, 1)
	if got := tree.Query(5); len(got) != 1 || got[0] != 1 {
		t.Fatalf("Query(5) = %v, want [1]", got)
	}
}

func TestAddAfterQuery(t *testing.T) {
	tree := New()
	tree.Add(0, 10, 1)
	if got := tree.Query(5); len(got) != 1 {
		t.Fatalf("Query(5) = %v, want one hit", got)
	}

	tree.Add(4, 6, 2)
	got := tree.Query(5)
	sort.Ints(got)
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("Query(5) after second Add = %v, want [1 2]", got)
	}
}

func TestQueryAgainstBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	type span struct{ lo, hi float64 }
	var spans []span
	tree := New()
	for i := 0; i < 500; i++ {
		lo := rng.Float64()*200 - 100
		hi := lo + rng.Float64()*30
		spans = append(spans, span{lo, hi})
		tree.Add(lo, hi, i)
	}

	for q := 0; q < 200; q++ {
		x := rng.Float64()*240 - 120
		var want []int
		for i, s := range spans {
			if x >= s.lo && x <= s.hi {
				want = append(want, i)
			}
		}
		got := tree.Query(x)
		sort.Ints(got)
		if len(got) != len(want) {
			t.Fatalf("Query(%f): got %d hits, want %d", x, len(got), len(want))
		}
		for i := range got {
			if got[i] != want[i] {
				t.Fatalf("Query(%f): got %v, want %v", x, got, want)
			}
		}
	}
}
