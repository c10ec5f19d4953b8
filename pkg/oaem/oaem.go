// Package oaem computes and represents Obstruction Adaptive Elevation Masks:
// for every azimuth the highest elevation angle at which nearby building roof
// edges occlude the sky.
package oaem

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/interp"
)

// DefaultRes is the default azimuth grid resolution of one degree.
var DefaultRes = math.Pi / 180

// Oaem is a sampled elevation mask. Azimuth is strictly ascending in
// [−π, π), Elevation is non-negative and of equal length. The mask is
// periodic: queries past the seam wrap around.
type Oaem struct {
	Azimuth   []float64
	Elevation []float64

	predictor interp.PiecewiseLinear
}

// Zero returns an all-zero mask on the default grid with resolution res.
func Zero(res float64) *Oaem {
	azimuth := grid(res)
	o, _ := New(azimuth, make([]float64, len(azimuth)))
	return o
}

// New builds a mask from equal-length sample arrays. Azimuth must be
// strictly ascending within [−π, π).
func New(azimuth, elevation []float64) (*Oaem, error) {
	if len(azimuth) != len(elevation) {
		return nil, fmt.Errorf("azimuth and elevation length mismatch: %d != %d", len(azimuth), len(elevation))
	}
	if len(azimuth) < 2 {
		return nil, fmt.Errorf("mask needs at least two samples, got %d", len(azimuth))
	}
	if azimuth[0] < -math.Pi || azimuth[len(azimuth)-1] >= math.Pi {
		return nil, fmt.Errorf("azimuth samples outside [-pi, pi)")
	}

	o := &Oaem{Azimuth: azimuth, Elevation: elevation}

	// The interpolant carries a wrap sample at +π equal to the first sample
	// so that queries between the last grid point and the seam interpolate
	// across it. The public arrays stay within [−π, π).
	xs := make([]float64, len(azimuth), len(azimuth)+2)
	ys := make([]float64, len(elevation), len(elevation)+2)
	copy(xs, azimuth)
	copy(ys, elevation)
	if xs[0] > -math.Pi {
		// Grid not anchored at the seam: prepend the wrapped last sample.
		lastX := xs[len(xs)-1] - 2*math.Pi
		lastY := ys[len(ys)-1]
		xs = append([]float64{lastX}, xs...)
		ys = append([]float64{lastY}, ys...)
	}
	xs = append(xs, math.Pi)
	ys = append(ys, ys[0])

	if err := o.predictor.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("fitting mask interpolant: %w", err)
	}
	return o, nil
}

// Query returns the linearly interpolated mask elevation at azimuth az.
// Azimuths outside [−π, π) are wrapped first, so Query(φ + 2πk) == Query(φ).
func (o *Oaem) Query(az float64) float64 {
	return o.predictor.Predict(wrapToPi(az))
}

// AzElStr renders the wire format: "az:el," per sample with three decimals,
// including the trailing comma.
func (o *Oaem) AzElStr() string {
	var b strings.Builder
	b.Grow(len(o.Azimuth) * 14)
	for i := range o.Azimuth {
		fmt.Fprintf(&b, "%.3f:%.3f,", o.Azimuth[i], o.Elevation[i])
	}
	return b.String()
}

// grid returns the azimuth sample grid {−π + k·res} within [−π, π).
func grid(res float64) []float64 {
	if res <= 0 {
		res = DefaultRes
	}
	n := int(math.Round(2 * math.Pi / res))
	azimuth := make([]float64, 0, n)
	for k := 0; k < n; k++ {
		az := -math.Pi + float64(k)*res
		if az >= math.Pi {
			break
		}
		azimuth = append(azimuth, az)
	}
	return azimuth
}

// wrapToPi maps an angle to [−π, π).
func wrapToPi(az float64) float64 {
	az = math.Mod(az+math.Pi, 2*math.Pi)
	if az < 0 {
		az += 2 * math.Pi
	}
	return az - math.Pi
}
