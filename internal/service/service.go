// Package service composes geoid correction, edge resolution and the mask
// engine into the single compute entrypoint of the API.
package service

import (
	"context"
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gereon-t/oaemapi/internal/area"
	"github.com/gereon-t/oaemapi/internal/edges"
	"github.com/gereon-t/oaemapi/internal/log"
	"github.com/gereon-t/oaemapi/pkg/coord"
	"github.com/gereon-t/oaemapi/pkg/edge"
	"github.com/gereon-t/oaemapi/pkg/geoid"
	"github.com/gereon-t/oaemapi/pkg/oaem"
)

const resultCacheSize = 16384

// Result bundles a computed mask with the area-of-operation verdict. Masks
// for positions outside the area are all-zero.
type Result struct {
	Oaem       *oaem.Oaem
	WithinArea bool
}

// Config wires the collaborators and discretization resolutions.
type Config struct {
	Geoid    *geoid.Geoid
	Provider edges.Provider
	Area     *area.Area
	WorkEPSG int
	OaemRes  float64
	GeoidRes float64
	NRes     float64
}

// Service is the request-level facade. It is safe for concurrent use; all
// shared state lives in lock-protected caches.
type Service struct {
	cfg     Config
	results *lru.Cache[coord.Key, *Result]
}

// New creates the facade.
func New(cfg Config) (*Service, error) {
	if cfg.Geoid == nil {
		return nil, fmt.Errorf("service requires a geoid")
	}
	if cfg.Provider == nil {
		return nil, fmt.Errorf("service requires an edge provider")
	}
	results, err := lru.New[coord.Key, *Result](resultCacheSize)
	if err != nil {
		return nil, err
	}
	return &Service{cfg: cfg, results: results}, nil
}

// ComputeOaem computes the elevation mask for a viewpoint given in an
// arbitrary EPSG. Results are memoized on the raw request coordinates.
func (s *Service) ComputeOaem(ctx context.Context, x, y, z float64, epsg int) (*Result, error) {
	key := coord.Key{X: x, Y: y, Z: z, EPSG: epsg}
	if cached, ok := s.results.Get(key); ok {
		return cached, nil
	}

	pos, err := coord.New(x, y, z, epsg).Reprojected(s.cfg.WorkEPSG)
	if err != nil {
		return nil, err
	}

	if !s.cfg.Area.Contains(pos.X, pos.Y) {
		log.Warnf("position %s is outside the area of operation", pos)
		result := &Result{Oaem: oaem.Zero(s.cfg.OaemRes), WithinArea: false}
		s.results.Add(key, result)
		return result, nil
	}

	undulation := s.cfg.Geoid.Interpolate(pos.RoundTo(s.cfg.GeoidRes))
	if math.IsNaN(undulation) {
		// Outside the geoid grid hull: leave the height uncorrected.
		undulation = 0
	}
	pos.Z -= undulation
	log.Debugf("orthometric position %s (undulation %.3f)", pos, undulation)

	edgeList, err := s.cfg.Provider.GetEdges(ctx, pos.RoundTo(s.cfg.NRes))
	if err != nil {
		return nil, err
	}

	viewpoint := edge.Point3{X: pos.X, Y: pos.Y, Z: pos.Z}
	result := &Result{
		Oaem:       oaem.FromEdges(edgeList, viewpoint, s.cfg.OaemRes),
		WithinArea: true,
	}
	s.results.Add(key, result)
	return result, nil
}
