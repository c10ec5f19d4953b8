package edges

import (
	"context"
	"fmt"
	"math"

	"github.com/dhconnelly/rtreego"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gereon-t/oaemapi/internal/log"
	"github.com/gereon-t/oaemapi/pkg/citygml"
	"github.com/gereon-t/oaemapi/pkg/coord"
	"github.com/gereon-t/oaemapi/pkg/edge"
)

// LocalProvider serves edges from CityGML tile files on disk. Parsed tile
// sets and per-position query results are memoized in bounded LRU caches.
type LocalProvider struct {
	dataPath string
	epsg     int
	lod      int
	utmZone  int
	nRange   float64

	tiles   *lru.Cache[string, *tileData]
	queries *lru.Cache[coord.Key, []edge.Edge]
}

// LocalConfig parameterizes a LocalProvider.
type LocalConfig struct {
	DataPath string
	EPSG     int
	LOD      int
	UTMZone  int
	NRange   float64
}

// NewLocal creates a provider reading LoD{1,2} tiles under cfg.DataPath.
func NewLocal(cfg LocalConfig) (*LocalProvider, error) {
	tiles, err := lru.New[string, *tileData](tileCacheSize)
	if err != nil {
		return nil, err
	}
	queries, err := lru.New[coord.Key, []edge.Edge](queryCacheSize)
	if err != nil {
		return nil, err
	}
	return &LocalProvider{
		dataPath: cfg.DataPath,
		epsg:     cfg.EPSG,
		lod:      cfg.LOD,
		utmZone:  cfg.UTMZone,
		nRange:   cfg.NRange,
		tiles:    tiles,
		queries:  queries,
	}, nil
}

// EPSG returns the CRS the provider works in.
func (p *LocalProvider) EPSG() int { return p.epsg }

// GetEdges returns all edges with an endpoint within the neighborhood radius
// of pos.
func (p *LocalProvider) GetEdges(ctx context.Context, pos coord.Coord) ([]edge.Edge, error) {
	pos, err := pos.Reprojected(p.epsg)
	if err != nil {
		return nil, err
	}

	if cached, ok := p.queries.Get(pos.Key()); ok {
		return cached, nil
	}

	list := citygml.PickTiles(p.dataPath, pos.X, pos.Y, p.utmZone, p.lod, p.nRange)
	data, err := p.tileData(ctx, list)
	if err != nil {
		return nil, err
	}

	result := data.query(pos.X, pos.Y, p.nRange)
	p.queries.Add(pos.Key(), result)
	return result, nil
}

func (p *LocalProvider) tileData(ctx context.Context, list citygml.TileList) (*tileData, error) {
	key := list.Key()
	if cached, ok := p.tiles.Get(key); ok {
		return cached, nil
	}

	var coords []citygml.EdgeCoords
	for _, file := range list.Files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tileCoords, err := citygml.ParseFile(file, p.lod)
		if err != nil {
			return nil, fmt.Errorf("loading tile: %w", err)
		}
		coords = append(coords, tileCoords...)
	}
	log.Debugf("parsed %d edges from %d tile(s)", len(coords), len(list.Files))

	data := newTileData(coords)
	p.tiles.Add(key, data)
	return data, nil
}

// tileData indexes the edges of one tile set. Both endpoints of every edge
// are inserted, so a radius hit on either end selects the row.
type tileData struct {
	edges []edge.Edge
	tree  *rtreego.Rtree
}

type endpointEntry struct {
	row int
	x   float64
	y   float64
}

func (e *endpointEntry) Bounds() rtreego.Rect {
	return rtreego.Point{e.x, e.y}.ToRect(1e-9)
}

func newTileData(coords []citygml.EdgeCoords) *tileData {
	edgeList := edgesFromCoords(coords)

	entries := make([]rtreego.Spatial, 0, 2*len(edgeList))
	for i, e := range edgeList {
		entries = append(entries,
			&endpointEntry{row: i, x: e.Start.X, y: e.Start.Y},
			&endpointEntry{row: i, x: e.End.X, y: e.End.Y},
		)
	}

	return &tileData{
		edges: edgeList,
		tree:  rtreego.NewTree(2, 25, 50, entries...),
	}
}

// query returns the unique edges with an endpoint within radius r of (x, y).
func (d *tileData) query(x, y, r float64) []edge.Edge {
	if len(d.edges) == 0 {
		return nil
	}

	rect, err := rtreego.NewRect(rtreego.Point{x - r, y - r}, []float64{2 * r, 2 * r})
	if err != nil {
		return nil
	}

	seen := make(map[int]struct{})
	var result []edge.Edge
	for _, hit := range d.tree.SearchIntersect(rect) {
		entry := hit.(*endpointEntry)
		if math.Hypot(entry.x-x, entry.y-y) > r {
			continue
		}
		if _, ok := seen[entry.row]; ok {
			continue
		}
		seen[entry.row] = struct{}{}
		result = append(result, d.edges[entry.row])
	}
	return result
}
