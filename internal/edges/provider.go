// Package edges resolves building roof edges in the neighborhood of a
// position, either from local CityGML tiles or from a remote WFS endpoint.
package edges

import (
	"context"
	"errors"
	"math"

	"github.com/gereon-t/oaemapi/pkg/citygml"
	"github.com/gereon-t/oaemapi/pkg/coord"
	"github.com/gereon-t/oaemapi/pkg/edge"
)

// ErrUpstream indicates a failed WFS request (non-200 status, network error
// or timeout). Handlers surface it as a gateway error.
var ErrUpstream = errors.New("upstream WFS request failed")

// Provider yields all edges whose endpoints lie within the neighborhood
// radius of a position. Implementations memoize on the (pre-rounded)
// position, so callers discretize before querying.
type Provider interface {
	GetEdges(ctx context.Context, pos coord.Coord) ([]edge.Edge, error)
	EPSG() int
}

// Cache sizes per provider instance.
const (
	queryCacheSize = 512
	tileCacheSize  = 128
)

// edgesFromCoords converts parsed coordinate rows into edges, dropping
// degenerate rows with coincident endpoints.
func edgesFromCoords(coords []citygml.EdgeCoords) []edge.Edge {
	result := make([]edge.Edge, 0, len(coords))
	for _, c := range coords {
		start := edge.Point3{X: c[0], Y: c[1], Z: c[2]}
		end := edge.Point3{X: c[3], Y: c[4], Z: c[5]}
		if math.Hypot(end.X-start.X, end.Y-start.Y) < 1e-9 {
			continue
		}
		result = append(result, edge.New(start, end))
	}
	return result
}
