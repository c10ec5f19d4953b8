// Package edge models building roof edges and their elevation as seen from a
// viewpoint. Azimuths follow the compass convention throughout: north is zero,
// east is +π/2, computed as atan2(Δx, Δy) on easting/northing coordinates.
package edge

import "math"

// Point3 is a position in the working CRS (easting, northing, height).
type Point3 struct {
	X float64
	Y float64
	Z float64
}

// Interval is one azimuth range covered by an edge.
type Interval struct {
	Lo float64
	Hi float64
}

// Edge is a single roof edge. SetPosition must be called before Elevation or
// Intervals are used. Edges are small value types; callers that bind different
// viewpoints concurrently work on their own copies.
type Edge struct {
	Start Point3
	End   Point3

	dx float64
	dy float64
	dz float64

	viewpoint    Point3
	startAzimuth float64
	endAzimuth   float64
	bound        bool
}

// New returns an edge between the two endpoints.
func New(start, end Point3) Edge {
	return Edge{Start: start, End: end}
}

// SetPosition binds the viewpoint and precomputes the endpoint azimuths and
// the segment deltas used by Elevation.
func (e *Edge) SetPosition(v Point3) {
	e.viewpoint = v
	e.dx = e.End.X - e.Start.X
	e.dy = e.End.Y - e.Start.Y
	e.dz = e.End.Z - e.Start.Z
	e.startAzimuth = math.Atan2(e.Start.X-v.X, e.Start.Y-v.Y)
	e.endAzimuth = math.Atan2(e.End.X-v.X, e.End.Y-v.Y)
	e.bound = true
}

// StartAzimuth returns the compass azimuth of the start point from the bound
// viewpoint.
func (e *Edge) StartAzimuth() float64 { return e.startAzimuth }

// EndAzimuth returns the compass azimuth of the end point from the bound
// viewpoint.
func (e *Edge) EndAzimuth() float64 { return e.endAzimuth }

// Intervals returns the azimuth interval(s) covered by the edge. An edge whose
// endpoint azimuths lie on opposite sides of the ±π seam and spread more than
// π contributes two intervals, [−π, min] and [max, π]; all other edges
// contribute one, [min, max].
func (e *Edge) Intervals() []Interval {
	lo := math.Min(e.startAzimuth, e.endAzimuth)
	hi := math.Max(e.startAzimuth, e.endAzimuth)

	if sign(e.startAzimuth) != sign(e.endAzimuth) && hi-lo > math.Pi {
		return []Interval{{Lo: -math.Pi, Hi: lo}, {Lo: hi, Hi: math.Pi}}
	}
	return []Interval{{Lo: lo, Hi: hi}}
}

// Elevation returns the elevation angle of the edge at bearing az as seen from
// the bound viewpoint. The edge is parameterized as P(t) = start + t·(end−start)
// and t is solved from sin(az)·(P(t).y − v.y) = cos(az)·(P(t).x − v.x), then
// clamped to [0, 1]. Degenerate geometry yields 0.
func (e *Edge) Elevation(az float64) float64 {
	if !e.bound {
		return 0
	}

	ax := e.Start.X - e.viewpoint.X
	ay := e.Start.Y - e.viewpoint.Y

	sinAz, cosAz := math.Sincos(az)
	den := sinAz*e.dy - cosAz*e.dx

	var t float64
	if math.Abs(den) < 1e-12 {
		// Bearing line parallel to the edge: the nearer endpoint governs.
		t = e.nearerEndpoint()
	} else {
		t = (cosAz*ax - sinAz*ay) / den
	}
	t = math.Max(0, math.Min(1, t))

	px := ax + t*e.dx
	py := ay + t*e.dy
	d := math.Hypot(px, py)
	if d == 0 {
		return 0
	}

	pz := e.Start.Z + t*e.dz - e.viewpoint.Z
	return math.Max(0, math.Atan2(pz, d))
}

func (e *Edge) nearerEndpoint() float64 {
	ds := math.Hypot(e.Start.X-e.viewpoint.X, e.Start.Y-e.viewpoint.Y)
	de := math.Hypot(e.End.X-e.viewpoint.X, e.End.Y-e.viewpoint.Y)
	if de < ds {
		return 1
	}
	return 0
}

// sign mirrors the convention of the interval construction: the wrap case
// requires the endpoint azimuths on strictly opposite sides of zero.
func sign(v float64) int {
	if v < 0 {
		return -1
	}
	if v > 0 {
		return 1
	}
	return 0
}
