// Package geoid interpolates geoid undulation values from a scattered
// (lon, lat, N) grid so that ellipsoidal heights can be reduced to
// orthometric heights comparable with building roof heights.
package geoid

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/dhconnelly/rtreego"
	"github.com/fogleman/delaunay"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gereon-t/oaemapi/pkg/coord"
)

// Interpolation selects how undulations are derived from the grid.
type Interpolation int

const (
	// Nearest returns the undulation of the closest grid point.
	Nearest Interpolation = iota
	// Linear triangulates the grid and interpolates barycentrically. Queries
	// outside the convex hull yield NaN.
	Linear
)

const cacheSize = 2048

// ParseInterpolation maps a configuration tag to an Interpolation mode.
func ParseInterpolation(tag string) (Interpolation, error) {
	switch strings.ToUpper(tag) {
	case "NEAREST":
		return Nearest, nil
	case "LINEAR":
		return Linear, nil
	default:
		return 0, fmt.Errorf("unknown interpolator %q", tag)
	}
}

// Geoid holds the reprojected undulation grid and its interpolator. It is
// immutable after construction and safe for concurrent use.
type Geoid struct {
	interp interpolator
	cache  *lru.Cache[coord.Key, float64]
	points int
}

type interpolator interface {
	at(x, y float64) float64
}

// New reads a whitespace-separated three-column file (lon, lat, N) in the
// given EPSG, reprojects the grid into workEPSG and builds the interpolator.
// An empty filename yields a zero geoid: no undulation is applied.
func New(filename string, epsg, workEPSG int, mode Interpolation) (*Geoid, error) {
	cache, err := lru.New[coord.Key, float64](cacheSize)
	if err != nil {
		return nil, err
	}

	if filename == "" {
		return &Geoid{interp: zeroInterpolator{}, cache: cache}, nil
	}

	xs, ys, ns, err := readGrid(filename, epsg, workEPSG)
	if err != nil {
		return nil, err
	}

	g := &Geoid{cache: cache, points: len(xs)}
	switch mode {
	case Nearest:
		g.interp = newNearestInterpolator(xs, ys, ns)
	case Linear:
		g.interp, err = newLinearInterpolator(xs, ys, ns)
		if err != nil {
			return nil, fmt.Errorf("triangulating geoid grid: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown interpolation mode %d", mode)
	}
	return g, nil
}

// NumPoints returns the number of grid points loaded.
func (g *Geoid) NumPoints() int {
	return g.points
}

// Interpolate returns the undulation N at pos, which must already be in the
// working CRS. Callers round pos to the geoid resolution first so that
// requests within one tile share a cache entry.
func (g *Geoid) Interpolate(pos coord.Coord) float64 {
	key := pos.Key()
	if n, ok := g.cache.Get(key); ok {
		return n
	}
	n := g.interp.at(pos.X, pos.Y)
	g.cache.Add(key, n)
	return n
}

func readGrid(filename string, epsg, workEPSG int) (xs, ys, ns []float64, err error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening geoid file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 3 {
			return nil, nil, nil, fmt.Errorf("geoid file line %d: expected 3 columns, got %d", line, len(fields))
		}

		var row [3]float64
		for i := 0; i < 3; i++ {
			row[i], err = strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("geoid file line %d: %w", line, err)
			}
		}

		p, err := coord.New(row[0], row[1], row[2], epsg).Reprojected(workEPSG)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("geoid file line %d: %w", line, err)
		}
		xs = append(xs, p.X)
		ys = append(ys, p.Y)
		ns = append(ns, row[2])
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, nil, fmt.Errorf("reading geoid file: %w", err)
	}
	if len(xs) == 0 {
		return nil, nil, nil, fmt.Errorf("geoid file %s contains no grid points", filename)
	}
	return xs, ys, ns, nil
}

type zeroInterpolator struct{}

func (zeroInterpolator) at(x, y float64) float64 { return 0 }

// nearestInterpolator answers queries from an R-tree over the grid points.
type nearestInterpolator struct {
	tree *rtreego.Rtree
}

type gridPoint struct {
	x float64
	y float64
	n float64
}

func (p *gridPoint) Bounds() rtreego.Rect {
	return rtreego.Point{p.x, p.y}.ToRect(1e-9)
}

func newNearestInterpolator(xs, ys, ns []float64) *nearestInterpolator {
	points := make([]rtreego.Spatial, len(xs))
	for i := range xs {
		points[i] = &gridPoint{x: xs[i], y: ys[i], n: ns[i]}
	}
	return &nearestInterpolator{tree: rtreego.NewTree(2, 25, 50, points...)}
}

func (ni *nearestInterpolator) at(x, y float64) float64 {
	nearest := ni.tree.NearestNeighbor(rtreego.Point{x, y})
	if nearest == nil {
		return math.NaN()
	}
	return nearest.(*gridPoint).n
}

// linearInterpolator triangulates the grid once and interpolates
// barycentrically inside the containing triangle. Triangle lookup goes
// through an R-tree over triangle bounding boxes.
type linearInterpolator struct {
	tri  *delaunay.Triangulation
	ns   []float64
	tree *rtreego.Rtree
}

type triangleEntry struct {
	index int // offset into tri.Triangles, multiple of 3
	rect  rtreego.Rect
}

func (t *triangleEntry) Bounds() rtreego.Rect { return t.rect }

func newLinearInterpolator(xs, ys, ns []float64) (*linearInterpolator, error) {
	points := make([]delaunay.Point, len(xs))
	for i := range xs {
		points[i] = delaunay.Point{X: xs[i], Y: ys[i]}
	}

	tri, err := delaunay.Triangulate(points)
	if err != nil {
		return nil, err
	}

	li := &linearInterpolator{tri: tri, ns: ns, tree: rtreego.NewTree(2, 25, 50)}
	for t := 0; t < len(tri.Triangles); t += 3 {
		a := tri.Points[tri.Triangles[t]]
		b := tri.Points[tri.Triangles[t+1]]
		c := tri.Points[tri.Triangles[t+2]]

		minX := math.Min(a.X, math.Min(b.X, c.X))
		minY := math.Min(a.Y, math.Min(b.Y, c.Y))
		maxX := math.Max(a.X, math.Max(b.X, c.X))
		maxY := math.Max(a.Y, math.Max(b.Y, c.Y))

		rect, err := rtreego.NewRect(rtreego.Point{minX, minY}, []float64{maxX - minX + 1e-9, maxY - minY + 1e-9})
		if err != nil {
			return nil, err
		}
		li.tree.Insert(&triangleEntry{index: t, rect: rect})
	}
	return li, nil
}

func (li *linearInterpolator) at(x, y float64) float64 {
	candidates := li.tree.SearchIntersect(rtreego.Point{x, y}.ToRect(1e-9))
	for _, candidate := range candidates {
		t := candidate.(*triangleEntry).index
		ia, ib, ic := li.tri.Triangles[t], li.tri.Triangles[t+1], li.tri.Triangles[t+2]
		a, b, c := li.tri.Points[ia], li.tri.Points[ib], li.tri.Points[ic]

		wa, wb, wc, ok := barycentric(x, y, a, b, c)
		if !ok {
			continue
		}
		return wa*li.ns[ia] + wb*li.ns[ib] + wc*li.ns[ic]
	}
	return math.NaN()
}

// barycentric returns the weights of (x, y) with respect to triangle abc and
// whether the point lies inside it (within a small tolerance).
func barycentric(x, y float64, a, b, c delaunay.Point) (wa, wb, wc float64, inside bool) {
	det := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
	if det == 0 {
		return 0, 0, 0, false
	}
	wa = ((b.Y-c.Y)*(x-c.X) + (c.X-b.X)*(y-c.Y)) / det
	wb = ((c.Y-a.Y)*(x-c.X) + (a.X-c.X)*(y-c.Y)) / det
	wc = 1 - wa - wb

	const tol = 1e-9
	inside = wa >= -tol && wb >= -tol && wc >= -tol
	return wa, wb, wc, inside
}
