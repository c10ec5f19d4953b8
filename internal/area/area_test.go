package area

import (
	"os"
	"path/filepath"
	"testing"
)

const areaFixture = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {},
      "geometry": {
        "type": "Polygon",
        "coordinates": [[[0, 0], [1000, 0], [1000, 1000], [0, 1000], [0, 0]]]
      }
    }
  ]
}`

func writeArea(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "area.geojson")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNilAreaContainsEverything(t *testing.T) {
	a, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if a != nil {
		t.Fatal("empty filename must yield a nil area")
	}
	if !a.Contains(1e9, -1e9) {
		t.Error("nil area must contain every point")
	}
}

func TestContains(t *testing.T) {
	a, err := Load(writeArea(t, areaFixture))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{"inside", 500, 500, true},
		{"outside east", 1500, 500, false},
		{"outside south", 500, -10, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Contains(tt.x, tt.y); got != tt.want {
				t.Errorf("Contains(%f, %f) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load("/nonexistent/area.geojson"); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := Load(writeArea(t, "{not json")); err == nil {
		t.Error("expected error for malformed file")
	}
	empty := `{"type": "FeatureCollection", "features": []}`
	if _, err := Load(writeArea(t, empty)); err == nil {
		t.Error("expected error for area without polygons")
	}
}
