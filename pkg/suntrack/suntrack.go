// Package suntrack samples the solar trajectory over a day and intersects it
// with an elevation mask to derive sun visibility intervals.
package suntrack

import (
	"fmt"
	"sort"
	"time"

	"github.com/gereon-t/oaemapi/pkg/coord"
	"github.com/gereon-t/oaemapi/pkg/oaem"
	"github.com/gereon-t/oaemapi/pkg/solar"
)

// DefaultFreq is the default sampling interval of the sun track.
const DefaultFreq = time.Minute

// Sample is one point of the solar trajectory. Angles in radians, azimuth in
// compass convention wrapped to [−π, π).
type Sample struct {
	Time      time.Time
	Azimuth   float64
	Elevation float64
}

// VisChange marks a toggle of sun visibility: Visible is the new state that
// begins at Time.
type VisChange struct {
	Time    time.Time
	Visible bool
}

// Track computes solar positions for one geographic position. Tracks are
// per-request objects; IntersectWithOaem mutates only the receiving track.
type Track struct {
	lat float64
	lon float64
	alt float64

	visChanges []VisChange

	// Injection points for tests.
	now      func() time.Time
	position func(lat, lon float64, t time.Time) solar.Position
}

// New creates a track for the given position, which is reprojected to
// geographic coordinates (EPSG 4326).
func New(pos coord.Coord) (*Track, error) {
	geo, err := pos.Reprojected(4326)
	if err != nil {
		return nil, fmt.Errorf("reprojecting sun track position: %w", err)
	}
	return &Track{
		lat:      geo.Y,
		lon:      geo.X,
		alt:      geo.Z,
		now:      time.Now,
		position: solar.PositionAt,
	}, nil
}

// Samples returns the solar trajectory for the day of date, sampled every
// freq from local midnight to 23:59. With daylightOnly set, samples at or
// below the horizon are dropped.
func (tr *Track) Samples(date time.Time, freq time.Duration, daylightOnly bool) []Sample {
	if freq <= 0 {
		freq = DefaultFreq
	}

	loc := date.Location()
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	end := start.Add(24*time.Hour - time.Minute)

	var samples []Sample
	for t := start; !t.After(end); t = t.Add(freq) {
		p := tr.position(tr.lat, tr.lon, t)
		if daylightOnly && p.Elevation <= 0 {
			continue
		}
		samples = append(samples, Sample{Time: t, Azimuth: p.Azimuth, Elevation: p.Elevation})
	}
	return samples
}

// CurrentSunPos returns the solar azimuth and elevation right now.
func (tr *Track) CurrentSunPos() (azimuth, elevation float64) {
	p := tr.position(tr.lat, tr.lon, tr.now())
	return p.Azimuth, p.Elevation
}

// IntersectWithOaem samples today's trajectory, compares each sample against
// the mask and records every visibility toggle. A sample is visible when the
// solar elevation exceeds the mask elevation at the solar azimuth.
func (tr *Track) IntersectWithOaem(o *oaem.Oaem) {
	samples := tr.Samples(tr.now(), DefaultFreq, false)
	tr.visChanges = intersect(samples, o)
}

func intersect(samples []Sample, o *oaem.Oaem) []VisChange {
	var changes []VisChange
	prev := false
	for i, s := range samples {
		visible := s.Elevation > o.Query(s.Azimuth)
		if i > 0 && visible != prev {
			changes = append(changes, VisChange{Time: s.Time, Visible: visible})
		}
		prev = visible
	}
	return changes
}

// VisChanges returns the recorded visibility toggles in ascending time order.
func (tr *Track) VisChanges() []VisChange {
	return tr.visChanges
}

// Since returns the time of the most recent visibility change at or before
// now, or nil if no change has happened yet.
func (tr *Track) Since() *time.Time {
	if len(tr.visChanges) == 0 {
		return nil
	}
	idx := tr.firstAfterNow()
	if idx == 0 {
		return nil
	}
	t := tr.visChanges[idx-1].Time
	return &t
}

// Until returns the time of the first visibility change after now, or nil if
// the current state lasts for the rest of the day.
func (tr *Track) Until() *time.Time {
	if len(tr.visChanges) == 0 {
		return nil
	}
	idx := tr.firstAfterNow()
	if idx == len(tr.visChanges) {
		return nil
	}
	t := tr.visChanges[idx].Time
	return &t
}

// firstAfterNow returns the index of the first change strictly after now, so
// a change happening exactly now belongs to Since, not Until.
func (tr *Track) firstAfterNow() int {
	now := tr.now()
	return sort.Search(len(tr.visChanges), func(i int) bool {
		return tr.visChanges[i].Time.After(now)
	})
}
