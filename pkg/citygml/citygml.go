// Package citygml extracts building roof edges from CityGML 1.0 documents.
// Both LoD1 block models (lod1Solid) and LoD2 roof geometry (lod2MultiSurface)
// are supported. Elements are matched by local name so the usual namespace
// prefixes (core:, bldg:, gml:) and their variants all resolve.
package citygml

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// EdgeCoords holds one roof edge as (x1, y1, z1, x2, y2, z2).
type EdgeCoords [6]float64

// ParseFile reads a CityGML file and extracts roof edges at the given LOD.
// A missing file is not an error: tiles at the border of the dataset simply
// do not exist, and the neighborhood they would contribute stays empty.
func ParseFile(path string, lod int) ([]EdgeCoords, error) {
	if !strings.HasSuffix(path, ".gml") {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	switch lod {
	case 1:
		return ParseLoD1(doc), nil
	case 2:
		return ParseLoD2(doc), nil
	default:
		return nil, fmt.Errorf("unsupported LOD %d", lod)
	}
}

// ParseLoD1 walks CityModel → cityObjectMember → Building and extracts every
// polygon of each lod1Solid, including solids nested in building parts.
// Malformed or incomplete elements contribute nothing.
func ParseLoD1(doc *etree.Document) []EdgeCoords {
	var coords []EdgeCoords
	for _, building := range buildings(doc) {
		if solid := childByLocal(building, "lod1Solid"); solid != nil {
			coords = append(coords, lod1SolidEdges(solid)...)
		}
		for _, part := range buildingParts(building) {
			if solid := childByLocal(part, "lod1Solid"); solid != nil {
				coords = append(coords, lod1SolidEdges(solid)...)
			}
		}
	}
	return coords
}

// ParseLoD2 walks the same building hierarchy but reads surfaces from
// boundedBy → <surface> → lod2MultiSurface → MultiSurface → surfaceMember.
func ParseLoD2(doc *etree.Document) []EdgeCoords {
	var coords []EdgeCoords
	for _, building := range buildings(doc) {
		coords = append(coords, lod2BuildingEdges(building)...)
		for _, part := range buildingParts(building) {
			coords = append(coords, lod2BuildingEdges(part)...)
		}
	}
	return coords
}

func buildings(doc *etree.Document) []*etree.Element {
	root := doc.Root()
	if root == nil || localName(root) != "CityModel" {
		return nil
	}

	var result []*etree.Element
	for _, member := range childrenByLocal(root, "cityObjectMember") {
		if b := childByLocal(member, "Building"); b != nil {
			result = append(result, b)
		}
	}
	return result
}

func buildingParts(building *etree.Element) []*etree.Element {
	var result []*etree.Element
	for _, consists := range childrenByLocal(building, "consistsOfBuildingPart") {
		if part := childByLocal(consists, "BuildingPart"); part != nil {
			result = append(result, part)
		}
	}
	return result
}

// lod1SolidEdges descends Solid → exterior → CompositeSurface → surfaceMember.
func lod1SolidEdges(lod1Solid *etree.Element) []EdgeCoords {
	composite := descend(lod1Solid, "Solid", "exterior", "CompositeSurface")
	if composite == nil {
		return nil
	}

	var coords []EdgeCoords
	for _, member := range childrenByLocal(composite, "surfaceMember") {
		coords = append(coords, surfaceMemberEdges(member)...)
	}
	return coords
}

func lod2BuildingEdges(building *etree.Element) []EdgeCoords {
	var coords []EdgeCoords
	for _, bounded := range childrenByLocal(building, "boundedBy") {
		// The thematic surface (RoofSurface, WallSurface, ...) is the
		// single element child of boundedBy, whatever its name.
		for _, surface := range bounded.ChildElements() {
			multi := descend(surface, "lod2MultiSurface", "MultiSurface")
			if multi == nil {
				continue
			}
			for _, member := range childrenByLocal(multi, "surfaceMember") {
				coords = append(coords, surfaceMemberEdges(member)...)
			}
		}
	}
	return coords
}

// surfaceMemberEdges extracts the exterior ring of the member's polygon and
// emits one edge per consecutive vertex pair. Coordinate lists that are not
// a multiple of three values, or describe fewer than two vertices, are
// dropped.
func surfaceMemberEdges(member *etree.Element) []EdgeCoords {
	posList := descend(member, "Polygon", "exterior", "LinearRing", "posList")
	if posList == nil {
		// Some producers inline the polygon directly under the member.
		posList = descend(member, "exterior", "LinearRing", "posList")
	}
	if posList == nil {
		return nil
	}

	fields := strings.Fields(posList.Text())
	if len(fields)%3 != 0 || len(fields) < 6 {
		return nil
	}

	values := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil
		}
		values[i] = v
	}

	var coords []EdgeCoords
	for i := 0; i+6 <= len(values); i += 3 {
		coords = append(coords, EdgeCoords{
			values[i], values[i+1], values[i+2],
			values[i+3], values[i+4], values[i+5],
		})
	}
	return coords
}

// descend follows a chain of single children by local name, returning nil as
// soon as a step is missing.
func descend(el *etree.Element, names ...string) *etree.Element {
	for _, name := range names {
		if el == nil {
			return nil
		}
		el = childByLocal(el, name)
	}
	return el
}

func childByLocal(el *etree.Element, name string) *etree.Element {
	for _, child := range el.ChildElements() {
		if localName(child) == name {
			return child
		}
	}
	return nil
}

func childrenByLocal(el *etree.Element, name string) []*etree.Element {
	var result []*etree.Element
	for _, child := range el.ChildElements() {
		if localName(child) == name {
			result = append(result, child)
		}
	}
	return result
}

func localName(el *etree.Element) string {
	return el.Tag
}
