package citygml

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/beevik/etree"
)

const lod1Fixture = `<?xml version="1.0" encoding="UTF-8"?>
<core:CityModel xmlns:core="http://www.opengis.net/citygml/1.0"
                xmlns:bldg="http://www.opengis.net/citygml/building/1.0"
                xmlns:gml="http://www.opengis.net/gml">
  <core:cityObjectMember>
    <bldg:Building>
      <bldg:lod1Solid>
        <gml:Solid>
          <gml:exterior>
            <gml:CompositeSurface>
              <gml:surfaceMember>
                <gml:Polygon>
                  <gml:exterior>
                    <gml:LinearRing>
                      <gml:posList>0 0 10 10 0 10 10 10 10 0 10 10 0 0 10</gml:posList>
                    </gml:LinearRing>
                  </gml:exterior>
                </gml:Polygon>
              </gml:surfaceMember>
            </gml:CompositeSurface>
          </gml:exterior>
        </gml:Solid>
      </bldg:lod1Solid>
    </bldg:Building>
  </core:cityObjectMember>
</core:CityModel>`

const lod2Fixture = `<?xml version="1.0" encoding="UTF-8"?>
<core:CityModel xmlns:core="http://www.opengis.net/citygml/1.0"
                xmlns:bldg="http://www.opengis.net/citygml/building/1.0"
                xmlns:gml="http://www.opengis.net/gml">
  <core:cityObjectMember>
    <bldg:Building>
      <bldg:boundedBy>
        <bldg:RoofSurface>
          <bldg:lod2MultiSurface>
            <gml:MultiSurface>
              <gml:surfaceMember>
                <gml:Polygon>
                  <gml:exterior>
                    <gml:LinearRing>
                      <gml:posList>0 0 12 5 0 12 5 5 12 0 0 12</gml:posList>
                    </gml:LinearRing>
                  </gml:exterior>
                </gml:Polygon>
              </gml:surfaceMember>
              <gml:surfaceMember>
                <gml:Polygon>
                  <gml:exterior>
                    <gml:LinearRing>
                      <gml:posList>1 2 3</gml:posList>
                    </gml:LinearRing>
                  </gml:exterior>
                </gml:Polygon>
              </gml:surfaceMember>
            </gml:MultiSurface>
          </bldg:lod2MultiSurface>
        </bldg:RoofSurface>
      </bldg:boundedBy>
      <bldg:boundedBy>
        <bldg:WallSurface>
          <bldg:lod2MultiSurface>
            <gml:MultiSurface>
              <gml:surfaceMember>
                <gml:Polygon>
                  <gml:exterior>
                    <gml:LinearRing>
                      <gml:posList>0 0 0 0 0 12 5 0 12 5 0 0</gml:posList>
                    </gml:LinearRing>
                  </gml:exterior>
                </gml:Polygon>
              </gml:surfaceMember>
            </gml:MultiSurface>
          </bldg:lod2MultiSurface>
        </bldg:WallSurface>
      </bldg:boundedBy>
    </bldg:Building>
  </core:cityObjectMember>
</core:CityModel>`

const buildingPartFixture = `<?xml version="1.0" encoding="UTF-8"?>
<core:CityModel xmlns:core="http://www.opengis.net/citygml/1.0"
                xmlns:bldg="http://www.opengis.net/citygml/building/1.0"
                xmlns:gml="http://www.opengis.net/gml">
  <core:cityObjectMember>
    <bldg:Building>
      <bldg:consistsOfBuildingPart>
        <bldg:BuildingPart>
          <bldg:lod1Solid>
            <gml:Solid>
              <gml:exterior>
                <gml:CompositeSurface>
                  <gml:surfaceMember>
                    <gml:Polygon>
                      <gml:exterior>
                        <gml:LinearRing>
                          <gml:posList>0 0 8 4 0 8 4 4 8</gml:posList>
                        </gml:LinearRing>
                      </gml:exterior>
                    </gml:Polygon>
                  </gml:surfaceMember>
                </gml:CompositeSurface>
              </gml:exterior>
            </gml:Solid>
          </bldg:lod1Solid>
        </bldg:BuildingPart>
      </bldg:consistsOfBuildingPart>
    </bldg:Building>
  </core:cityObjectMember>
</core:CityModel>`

func parseDoc(t *testing.T, s string) *etree.Document {
	t.Helper()
	doc := etree.NewDocument()
	if err := doc.ReadFromString(s); err != nil {
		t.Fatalf("parsing fixture: %v", err)
	}
	return doc
}

func TestParseLoD1(t *testing.T) {
	coords := ParseLoD1(parseDoc(t, lod1Fixture))

	// Five vertices in the ring yield four consecutive-pair edges.
	if len(coords) != 4 {
		t.Fatalf("got %d edges, want 4", len(coords))
	}
	first := EdgeCoords{0, 0, 10, 10, 0, 10}
	if coords[0] != first {
		t.Errorf("first edge = %v, want %v", coords[0], first)
	}
}

func TestParseLoD2(t *testing.T) {
	coords := ParseLoD2(parseDoc(t, lod2Fixture))

	// Roof ring: 3 edges. Wall ring: 3 edges. The malformed 3-value posList
	// contributes nothing.
	if len(coords) != 6 {
		t.Fatalf("got %d edges, want 6", len(coords))
	}
	first := EdgeCoords{0, 0, 12, 5, 0, 12}
	if coords[0] != first {
		t.Errorf("first edge = %v, want %v", coords[0], first)
	}
}

func TestParseLoD1BuildingPart(t *testing.T) {
	coords := ParseLoD1(parseDoc(t, buildingPartFixture))
	if len(coords) != 2 {
		t.Fatalf("got %d edges, want 2", len(coords))
	}
}

func TestParseRobustness(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not a city model", `<foo><bar/></foo>`},
		{"empty city model", `<core:CityModel xmlns:core="urn:x"/>`},
		{"member without building", `<core:CityModel xmlns:core="urn:x"><core:cityObjectMember/></core:CityModel>`},
		{"building without solid", `<core:CityModel xmlns:core="urn:x"><core:cityObjectMember><bldg:Building xmlns:bldg="urn:y"/></core:cityObjectMember></core:CityModel>`},
		{
			"count not divisible by three",
			strings.Replace(lod1Fixture, "0 0 10 10 0 10 10 10 10 0 10 10 0 0 10", "0 0 10 10", 1),
		},
		{
			"non-numeric coordinate",
			strings.Replace(lod1Fixture, "0 0 10 10 0 10 10 10 10 0 10 10 0 0 10", "a b c d e f", 1),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLoD1(parseDoc(t, tt.doc)); len(got) != 0 {
				t.Errorf("got %d edges, want 0", len(got))
			}
			if got := ParseLoD2(parseDoc(t, tt.doc)); len(got) != 0 {
				t.Errorf("LoD2: got %d edges, want 0", len(got))
			}
		})
	}
}

func TestPickTiles(t *testing.T) {
	tests := []struct {
		name string
		x    float64
		y    float64
		want []string
	}{
		{
			name: "center of tile",
			x:    364500, y: 5621500,
			want: []string{"LoD2_32_364_5621_1_NW.gml"},
		},
		{
			name: "near west border",
			x:    364050, y: 5621500,
			want: []string{"LoD2_32_364_5621_1_NW.gml", "LoD2_32_363_5621_1_NW.gml"},
		},
		{
			name: "near north-east corner",
			x:    364950, y: 5621950,
			want: []string{
				"LoD2_32_364_5621_1_NW.gml",
				"LoD2_32_365_5621_1_NW.gml",
				"LoD2_32_364_5622_1_NW.gml",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := PickTiles("data", tt.x, tt.y, 32, 2, 150)
			if len(list.Files) != len(tt.want) {
				t.Fatalf("got %d files %v, want %d", len(list.Files), list.Files, len(tt.want))
			}
			got := make(map[string]bool, len(list.Files))
			for _, f := range list.Files {
				got[filepath.Base(f)] = true
			}
			for _, name := range tt.want {
				if !got[name] {
					t.Errorf("missing tile %s in %v", name, list.Files)
				}
			}
			if filepath.Base(list.Files[0]) != tt.want[0] {
				t.Errorf("primary tile = %s, want %s", filepath.Base(list.Files[0]), tt.want[0])
			}
		})
	}
}

func TestTileListKeyStableUnderOrder(t *testing.T) {
	a := TileList{Files: []string{"b.gml", "a.gml"}}
	b := TileList{Files: []string{"a.gml", "b.gml"}}
	if a.Key() != b.Key() {
		t.Errorf("keys differ: %q vs %q", a.Key(), b.Key())
	}
}
