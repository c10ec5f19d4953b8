// Package coord provides positions tagged with their coordinate reference
// system, reprojection between EPSG codes, and discretization for cache keys.
package coord

import (
	"fmt"
	"math"
)

// Coord is a 3-D position in the CRS identified by EPSG. For projected
// systems X is easting and Y is northing; for geographic systems X is
// longitude and Y is latitude, both in degrees.
type Coord struct {
	X    float64
	Y    float64
	Z    float64
	EPSG int
}

// Key identifies a Coord in cache maps. Two Coords that were rounded to the
// same resolution produce equal keys iff they fall into the same cell.
type Key struct {
	X    float64
	Y    float64
	Z    float64
	EPSG int
}

// New returns a Coord at (x, y, z) in the given EPSG.
func New(x, y, z float64, epsg int) Coord {
	return Coord{X: x, Y: y, Z: z, EPSG: epsg}
}

// Reprojected returns the coordinate transformed into the target EPSG.
// Reprojecting into the coordinate's own EPSG is a no-op.
func (c Coord) Reprojected(epsg int) (Coord, error) {
	if epsg == c.EPSG {
		return c, nil
	}
	x, y, z, err := transform(c.EPSG, epsg, c.X, c.Y, c.Z)
	if err != nil {
		return Coord{}, fmt.Errorf("reprojecting %d -> %d: %w", c.EPSG, epsg, err)
	}
	return Coord{X: x, Y: y, Z: z, EPSG: epsg}, nil
}

// RoundTo returns the coordinate with each component rounded to the nearest
// multiple of res. Rounding is idempotent.
func (c Coord) RoundTo(res float64) Coord {
	if res <= 0 {
		return c
	}
	return Coord{
		X:    math.Round(c.X/res) * res,
		Y:    math.Round(c.Y/res) * res,
		Z:    math.Round(c.Z/res) * res,
		EPSG: c.EPSG,
	}
}

// Key returns the comparable cache key of the coordinate. Callers are
// expected to round first so that nearby positions coalesce.
func (c Coord) Key() Key {
	return Key{X: c.X, Y: c.Y, Z: c.Z, EPSG: c.EPSG}
}

func (c Coord) String() string {
	return fmt.Sprintf("[%.3f, %.3f, %.3f] EPSG:%d", c.X, c.Y, c.Z, c.EPSG)
}
