package server

import (
	"bytes"
	"encoding/base64"
	"image/color"
	"net/http"
	"strconv"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/gereon-t/oaemapi/pkg/oaem"
	"github.com/gereon-t/oaemapi/pkg/suntrack"
)

const degPerRad = 180 / 3.14159265358979323846

func (s *Server) handlePlot(w http.ResponseWriter, r *http.Request) {
	q, err := parsePositionQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	width := intQuery(r, "width", 600)
	height := intQuery(r, "height", 600)
	heading, _ := strconv.ParseFloat(r.URL.Query().Get("heading"), 64)

	result, track, err := s.computeWithTrack(r, q)
	if err != nil {
		s.writeComputeError(w, err)
		return
	}

	sunAz, sunEl := track.CurrentSunPos()
	visible := sunEl > result.Oaem.Query(sunAz)

	png, err := renderSkyPlot(result.Oaem, track, heading, width, height)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"data":    base64.StdEncoding.EncodeToString(png),
		"visible": pythonBool(visible),
		"since":   formatChange(track.Since()),
		"until":   formatChange(track.Until()),
	})
}

// renderSkyPlot draws the mask and today's daylight sun track over azimuth.
// The heading is rendered as a vertical marker so a user can orient the
// mask against their viewing direction.
func renderSkyPlot(o *oaem.Oaem, track *suntrack.Track, heading float64, width, height int) ([]byte, error) {
	p := plot.New()
	p.Title.Text = "Obstruction Adaptive Elevation Mask"
	p.X.Label.Text = "azimuth [deg]"
	p.Y.Label.Text = "elevation [deg]"
	p.X.Min = -180
	p.X.Max = 180
	p.Y.Min = 0
	p.Y.Max = 90

	maskXYs := make(plotter.XYs, len(o.Azimuth))
	for i := range o.Azimuth {
		maskXYs[i].X = o.Azimuth[i] * degPerRad
		maskXYs[i].Y = o.Elevation[i] * degPerRad
	}
	maskLine, err := plotter.NewLine(maskXYs)
	if err != nil {
		return nil, err
	}
	maskLine.Color = color.RGBA{R: 70, G: 70, B: 70, A: 255}
	p.Add(maskLine)
	p.Legend.Add("mask", maskLine)

	samples := track.Samples(time.Now(), suntrack.DefaultFreq, true)
	if len(samples) > 0 {
		sunXYs := make(plotter.XYs, len(samples))
		for i, sample := range samples {
			sunXYs[i].X = sample.Azimuth * degPerRad
			sunXYs[i].Y = sample.Elevation * degPerRad
		}
		sunScatter, err := plotter.NewScatter(sunXYs)
		if err != nil {
			return nil, err
		}
		sunScatter.Color = color.RGBA{R: 230, G: 160, B: 0, A: 255}
		sunScatter.Radius = vg.Points(1)
		p.Add(sunScatter)
		p.Legend.Add("sun", sunScatter)
	}

	if heading != 0 {
		headingXYs := plotter.XYs{{X: heading, Y: 0}, {X: heading, Y: 90}}
		headingLine, err := plotter.NewLine(headingXYs)
		if err != nil {
			return nil, err
		}
		headingLine.Color = color.RGBA{R: 0, G: 90, B: 180, A: 255}
		headingLine.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
		p.Add(headingLine)
		p.Legend.Add("heading", headingLine)
	}

	wt, err := p.WriterTo(pixels(width), pixels(height), "png")
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// pixels converts a pixel count to a vg length at 96 dpi.
func pixels(px int) vg.Length {
	return vg.Length(px) * vg.Inch / 96
}

func intQuery(r *http.Request, key string, fallback int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}
