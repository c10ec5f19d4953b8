package citygml

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"
)

// TileList is the ordered set of tile files relevant for one position. The
// Key is stable under ordering and usable as a cache key.
type TileList struct {
	Files []string
}

// Key returns a canonical string identifying the tile set.
func (t TileList) Key() string {
	sorted := append([]string(nil), t.Files...)
	sort.Strings(sorted)
	return strings.Join(sorted, "|")
}

// PickTiles returns the CityGML tiles covering the neighborhood of (x, y).
// Tiles are 1 km × 1 km and named LoD{lod}_{zone}_{Xkm}_{Ykm}_1_NW.gml. When
// the position lies within nRange meters of a tile border, the neighbor tile
// on that side is included as well.
func PickTiles(dataPath string, x, y float64, utmZone, lod int, nRange float64) TileList {
	xKm := int(math.Floor(x / 1000))
	yKm := int(math.Floor(y / 1000))

	list := TileList{}
	add := func(xk, yk int) {
		name := fmt.Sprintf("LoD%d_%d_%d_%d_1_NW.gml", lod, utmZone, xk, yk)
		list.Files = append(list.Files, filepath.Join(dataPath, name))
	}

	add(xKm, yKm)

	if x-float64(xKm)*1000 < nRange {
		add(xKm-1, yKm)
	}
	if y-float64(yKm)*1000 < nRange {
		add(xKm, yKm-1)
	}
	if x-float64(xKm)*1000 > 1000-nRange {
		add(xKm+1, yKm)
	}
	if y-float64(yKm)*1000 > 1000-nRange {
		add(xKm, yKm+1)
	}

	return list
}
