package edge

import (
	"math"
	"testing"
)

func TestAzimuthConvention(t *testing.T) {
	// Compass convention: north zero, east +π/2.
	tests := []struct {
		name  string
		point Point3
		want  float64
	}{
		{"north", Point3{X: 0, Y: 10}, 0},
		{"east", Point3{X: 10, Y: 0}, math.Pi / 2},
		{"west", Point3{X: -10, Y: 0}, -math.Pi / 2},
		{"north-east", Point3{X: 10, Y: 10}, math.Pi / 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(tt.point, Point3{X: tt.point.X + 0.1, Y: tt.point.Y})
			e.SetPosition(Point3{})
			if got := e.StartAzimuth(); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("azimuth of %v: got %f, want %f", tt.point, got, tt.want)
			}
		})
	}
}

func TestElevation(t *testing.T) {
	viewpoint := Point3{X: 5, Y: 0, Z: 0}
	e := New(Point3{X: 0, Y: 10, Z: 5}, Point3{X: 10, Y: 10, Z: 5})
	e.SetPosition(viewpoint)

	tests := []struct {
		name string
		az   float64
		want float64
	}{
		{"perpendicular foot", 0, math.Atan2(5, 10)},
		{"towards start corner", math.Atan2(-5, 10), math.Atan2(5, math.Hypot(5, 10))},
		{"towards end corner", math.Atan2(5, 10), math.Atan2(5, math.Hypot(5, 10))},
		// Bearing past the end corner: t clamps to 1, so the foot and its
		// horizontal distance are those of the end corner.
		{"past end corner", math.Atan2(7, 10), math.Atan2(5, math.Hypot(5, 10))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Elevation(tt.az); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Elevation(%f): got %f, want %f", tt.az, got, tt.want)
			}
		})
	}
}

func TestElevationClampedAtZero(t *testing.T) {
	// Edge below the viewpoint must not produce negative elevations.
	e := New(Point3{X: 0, Y: 10, Z: -5}, Point3{X: 10, Y: 10, Z: -5})
	e.SetPosition(Point3{X: 5, Y: 0, Z: 0})
	if got := e.Elevation(0); got != 0 {
		t.Errorf("Elevation below horizon: got %f, want 0", got)
	}
}

func TestElevationDegenerate(t *testing.T) {
	// Viewpoint directly under the edge start: horizontal distance zero.
	e := New(Point3{X: 0, Y: 0, Z: 10}, Point3{X: 0, Y: 0, Z: 20})
	e.SetPosition(Point3{})
	if got := e.Elevation(0); got != 0 {
		t.Errorf("degenerate edge: got %f, want 0", got)
	}
}

func TestElevationUnbound(t *testing.T) {
	e := New(Point3{X: 0, Y: 10, Z: 5}, Point3{X: 10, Y: 10, Z: 5})
	if got := e.Elevation(0); got != 0 {
		t.Errorf("unbound edge: got %f, want 0", got)
	}
}

func TestIntervals(t *testing.T) {
	tests := []struct {
		name  string
		start Point3
		end   Point3
		want  []Interval
	}{
		{
			name:  "plain interval north",
			start: Point3{X: -5, Y: 10},
			end:   Point3{X: 5, Y: 10},
			want:  []Interval{{Lo: math.Atan2(-5, 10), Hi: math.Atan2(5, 10)}},
		},
		{
			name:  "wrap across the seam",
			start: Point3{X: -1, Y: -10},
			end:   Point3{X: 1, Y: -10},
			want: []Interval{
				{Lo: -math.Pi, Hi: math.Atan2(-1, -10)},
				{Lo: math.Atan2(1, -10), Hi: math.Pi},
			},
		},
		{
			name:  "both azimuths negative",
			start: Point3{X: -10, Y: -1},
			end:   Point3{X: -10, Y: 1},
			want:  []Interval{{Lo: math.Atan2(-10, -1), Hi: math.Atan2(-10, 1)}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(tt.start, tt.end)
			e.SetPosition(Point3{})
			got := e.Intervals()
			if len(got) != len(tt.want) {
				t.Fatalf("got %d intervals, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if math.Abs(got[i].Lo-tt.want[i].Lo) > 1e-9 || math.Abs(got[i].Hi-tt.want[i].Hi) > 1e-9 {
					t.Errorf("interval %d: got [%f, %f], want [%f, %f]",
						i, got[i].Lo, got[i].Hi, tt.want[i].Lo, tt.want[i].Hi)
				}
			}
		})
	}
}
