package oaem

import (
	"math"

	"github.com/gereon-t/oaemapi/pkg/edge"
	"github.com/gereon-t/oaemapi/pkg/intervaltree"
)

// FromEdges computes the elevation mask for viewpoint from a set of roof
// edges. The input slice is not modified; every edge is bound to the
// viewpoint on a private copy. An empty edge set yields the zero mask.
func FromEdges(edges []edge.Edge, viewpoint edge.Point3, res float64) *Oaem {
	if res <= 0 {
		res = DefaultRes
	}
	if len(edges) == 0 {
		return Zero(res)
	}

	bound := make([]edge.Edge, len(edges))
	copy(bound, edges)

	tree := intervaltree.New()
	for i := range bound {
		bound[i].SetPosition(viewpoint)
		for _, iv := range bound[i].Intervals() {
			tree.Add(iv.Lo, iv.Hi, i)
		}
	}

	azimuth := grid(res)
	elevation := make([]float64, len(azimuth))
	for k, az := range azimuth {
		var el float64
		for _, i := range tree.Query(az) {
			el = math.Max(el, bound[i].Elevation(az))
		}
		elevation[k] = el
	}

	o, _ := New(azimuth, elevation)
	return o
}
