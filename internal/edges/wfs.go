package edges

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/beevik/etree"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gereon-t/oaemapi/internal/log"
	"github.com/gereon-t/oaemapi/pkg/citygml"
	"github.com/gereon-t/oaemapi/pkg/coord"
	"github.com/gereon-t/oaemapi/pkg/edge"
)

const wfsTimeout = 10 * time.Second

// WFSProvider fetches LoD1 building models from an OGC Web Feature Service
// via bounding-box queries around the requested position.
type WFSProvider struct {
	url    string
	epsg   int
	nRange float64
	client *http.Client

	queries *lru.Cache[coord.Key, []edge.Edge]
}

// WFSConfig parameterizes a WFSProvider.
type WFSConfig struct {
	URL    string
	EPSG   int
	NRange float64
}

// NewWFS creates a provider querying the given WFS endpoint.
func NewWFS(cfg WFSConfig) (*WFSProvider, error) {
	queries, err := lru.New[coord.Key, []edge.Edge](queryCacheSize)
	if err != nil {
		return nil, err
	}
	return &WFSProvider{
		url:     cfg.URL,
		epsg:    cfg.EPSG,
		nRange:  cfg.NRange,
		client:  &http.Client{Timeout: wfsTimeout},
		queries: queries,
	}, nil
}

// EPSG returns the CRS the provider works in.
func (p *WFSProvider) EPSG() int { return p.epsg }

// GetEdges requests the neighborhood bounding box from the WFS endpoint and
// parses the LoD1 response. The request is bounded by the context deadline
// and the provider timeout, whichever is tighter.
func (p *WFSProvider) GetEdges(ctx context.Context, pos coord.Coord) ([]edge.Edge, error) {
	pos, err := pos.Reprojected(p.epsg)
	if err != nil {
		return nil, err
	}

	if cached, ok := p.queries.Get(pos.Key()); ok {
		return cached, nil
	}

	url := p.requestURL(pos)
	log.Debugf("requesting %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrUpstream, err)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, fmt.Errorf("parsing WFS response: %w", err)
	}

	result := edgesFromCoords(citygml.ParseLoD1(doc))
	log.Debugf("received %d edges from WFS", len(result))

	p.queries.Add(pos.Key(), result)
	return result, nil
}

func (p *WFSProvider) requestURL(pos coord.Coord) string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	bbox := fmt.Sprintf("%s,%s,%s,%s,urn:ogc:def:crs:EPSG::%d",
		f(pos.X-p.nRange), f(pos.Y-p.nRange), f(pos.X+p.nRange), f(pos.Y+p.nRange), p.epsg)
	return fmt.Sprintf("%s?Service=WFS&REQUEST=GetFeature&VERSION=1.1.0&TYPENAME=bldg:Building&BBOX=%s", p.url, bbox)
}
