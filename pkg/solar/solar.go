// Package solar computes the apparent position of the sun for a timestamp
// and geographic location.
package solar

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/unit"
)

// Position holds the apparent solar position. Azimuth follows the compass
// convention (north zero, east positive) wrapped to [−π, π); elevation is the
// refraction-corrected angle above the horizon. Both in radians.
type Position struct {
	Azimuth   float64
	Elevation float64
}

// fixAngle normalizes angle to [0, 360)
func fixAngle(a float64) float64 { return a - 360.0*math.Floor(a/360.0) }

// PositionAt returns the solar position at t for an observer at the given
// geodetic latitude and longitude (degrees, east positive).
func PositionAt(lat, lon float64, t time.Time) Position {
	t = t.UTC()
	jd := julian.TimeToJD(t)
	T := (jd - 2451545.0) / 36525.0 // centuries since J2000

	// Solar coordinates
	L0 := fixAngle(280.46646 + T*(36000.76983+T*0.0003032)) // mean longitude
	M := fixAngle(357.52911 + T*(35999.05029-T*0.0001537))  // mean anomaly
	e := 0.016708634 - T*(0.000042037+T*0.0000001267)       // eccentricity
	C := math.Sin(unit.AngleFromDeg(M).Rad())*(1.914602-T*(0.004817+T*0.000014)) +
		math.Sin(unit.AngleFromDeg(2*M).Rad())*(0.019993-T*0.000101) +
		math.Sin(unit.AngleFromDeg(3*M).Rad())*0.000289 // center equation
	sunLong := L0 + C                                                             // true longitude
	node := 125.04 - 1934.136*T                                                   // node longitude
	lambda := sunLong - 0.00569 - 0.00478*math.Sin(unit.AngleFromDeg(node).Rad()) // corrected longitude
	eps0 := 23 + (26+(21.448-T*(46.815+T*(0.00059-T*0.001813)))/60)/60            // obliquity
	decl := math.Asin(math.Sin(unit.AngleFromDeg(eps0).Rad()) * math.Sin(unit.AngleFromDeg(lambda).Rad()))

	// Equation of time
	y := math.Tan(unit.AngleFromDeg(eps0).Rad()/2) * math.Tan(unit.AngleFromDeg(eps0).Rad()/2)
	eqTimeMin := unit.Angle(y*math.Sin(unit.AngleFromDeg(2*L0).Rad())-
		2*e*math.Sin(unit.AngleFromDeg(M).Rad())+
		4*e*y*math.Sin(unit.AngleFromDeg(M).Rad())*math.Cos(unit.AngleFromDeg(2*L0).Rad())-
		0.5*y*y*math.Sin(unit.AngleFromDeg(4*L0).Rad())-
		1.25*e*e*math.Sin(unit.AngleFromDeg(2*M).Rad())).Deg() * 4

	// Hour angle
	utcMin := float64(t.Hour()*60+t.Minute()) + float64(t.Second())/60.0
	timeOffset := 4*lon + eqTimeMin
	tst := utcMin + timeOffset
	ha := tst/4 - 180
	haRad := unit.AngleFromDeg(ha).Rad()

	// Zenith and elevation
	latRad := unit.AngleFromDeg(lat).Rad()
	cosZen := math.Sin(latRad)*math.Sin(decl) + math.Cos(latRad)*math.Cos(decl)*math.Cos(haRad)
	cosZen = math.Max(-1, math.Min(1, cosZen))
	zenRad := math.Acos(cosZen)
	elDeg := 90 - unit.Angle(zenRad).Deg() + 0.5667 // refraction correction

	// Azimuth
	azDeg := 180.0
	sinZen := math.Sin(zenRad)
	if math.Abs(sinZen) > 1e-12 && math.Abs(math.Cos(latRad)) > 1e-12 {
		azNum := math.Sin(decl) - math.Sin(latRad)*cosZen
		azDen := math.Cos(latRad) * sinZen
		ratio := math.Max(-1, math.Min(1, azNum/azDen))
		azDeg = unit.Angle(math.Acos(ratio)).Deg()
		// Adjust azimuth for post-noon times (ha > 0)
		if ha > 0 {
			azDeg = 360 - azDeg
		}
	}

	return Position{
		Azimuth:   wrapToPi(unit.AngleFromDeg(azDeg).Rad()),
		Elevation: unit.AngleFromDeg(elDeg).Rad(),
	}
}

func wrapToPi(az float64) float64 {
	az = math.Mod(az+math.Pi, 2*math.Pi)
	if az < 0 {
		az += 2 * math.Pi
	}
	return az - math.Pi
}
