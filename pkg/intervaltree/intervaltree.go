// Package intervaltree implements a centered interval tree for stabbing
// queries over closed intervals. Payloads are integer indices into the
// caller's backing slice, so the tree never owns the referenced objects.
package intervaltree

import "sort"

type interval struct {
	lo      float64
	hi      float64
	payload int
}

// Tree answers "which intervals contain x" queries. Add and Query may be
// interleaved; the tree structure is rebuilt lazily on the first query after
// a mutation. A Tree is not safe for concurrent mutation.
type Tree struct {
	intervals []interval
	root      *node
	dirty     bool
}

type node struct {
	center float64
	byLo   []interval // overlapping the center, ascending lo
	byHi   []interval // overlapping the center, descending hi
	left   *node
	right  *node
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{}
}

// Add inserts [lo, hi] with the given payload. Degenerate intervals with
// lo == hi are skipped. Bounds given in reverse order are swapped.
func (t *Tree) Add(lo, hi float64, payload int) {
	if lo == hi {
		return
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	t.intervals = append(t.intervals, interval{lo: lo, hi: hi, payload: payload})
	t.dirty = true
}

// Len returns the number of stored intervals.
func (t *Tree) Len() int {
	return len(t.intervals)
}

// Query returns the payloads of all intervals containing x. Both interval
// bounds are inclusive. The result order is unspecified.
func (t *Tree) Query(x float64) []int {
	if t.dirty {
		t.root = build(append([]interval(nil), t.intervals...))
		t.dirty = false
	}

	var result []int
	for n := t.root; n != nil; {
		switch {
		case x < n.center:
			for _, iv := range n.byLo {
				if iv.lo > x {
					break
				}
				result = append(result, iv.payload)
			}
			n = n.left
		case x > n.center:
			for _, iv := range n.byHi {
				if iv.hi < x {
					break
				}
				result = append(result, iv.payload)
			}
			n = n.right
		default:
			for _, iv := range n.byLo {
				result = append(result, iv.payload)
			}
			n = nil
		}
	}
	return result
}

func build(intervals []interval) *node {
	if len(intervals) == 0 {
		return nil
	}

	center := medianEndpoint(intervals)

	var left, right, overlapping []interval
	for _, iv := range intervals {
		switch {
		case iv.hi < center:
			left = append(left, iv)
		case iv.lo > center:
			right = append(right, iv)
		default:
			overlapping = append(overlapping, iv)
		}
	}

	n := &node{center: center}
	n.byLo = append([]interval(nil), overlapping...)
	sort.Slice(n.byLo, func(i, j int) bool { return n.byLo[i].lo < n.byLo[j].lo })
	n.byHi = append([]interval(nil), overlapping...)
	sort.Slice(n.byHi, func(i, j int) bool { return n.byHi[i].hi > n.byHi[j].hi })
	n.left = build(left)
	n.right = build(right)
	return n
}

func medianEndpoint(intervals []interval) float64 {
	endpoints := make([]float64, 0, 2*len(intervals))
	for _, iv := range intervals {
		endpoints = append(endpoints, iv.lo, iv.hi)
	}
	sort.Float64s(endpoints)
	return endpoints[len(endpoints)/2]
}
