package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gereon-t/oaemapi/internal/edges"
	"github.com/gereon-t/oaemapi/internal/log"
	"github.com/gereon-t/oaemapi/internal/service"
	"github.com/gereon-t/oaemapi/pkg/coord"
	"github.com/gereon-t/oaemapi/pkg/suntrack"
)

// positionQuery holds the common query parameters of all endpoints.
type positionQuery struct {
	x    float64
	y    float64
	z    float64
	epsg int
}

func parsePositionQuery(r *http.Request) (positionQuery, error) {
	var q positionQuery
	var err error

	values := r.URL.Query()
	if q.x, err = strconv.ParseFloat(values.Get("pos_x"), 64); err != nil {
		return q, fmt.Errorf("invalid pos_x: %w", err)
	}
	if q.y, err = strconv.ParseFloat(values.Get("pos_y"), 64); err != nil {
		return q, fmt.Errorf("invalid pos_y: %w", err)
	}
	if q.z, err = strconv.ParseFloat(values.Get("pos_z"), 64); err != nil {
		return q, fmt.Errorf("invalid pos_z: %w", err)
	}
	if q.epsg, err = strconv.Atoi(values.Get("epsg")); err != nil {
		return q, fmt.Errorf("invalid epsg: %w", err)
	}
	return q, nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "oaemapi",
		"version": s.version,
	})
}

func (s *Server) handleOaem(w http.ResponseWriter, r *http.Request) {
	q, err := parsePositionQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.service.ComputeOaem(r.Context(), q.x, q.y, q.z, q.epsg)
	if err != nil {
		s.writeComputeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"data": result.Oaem.AzElStr(),
	})
}

func (s *Server) handleSunVis(w http.ResponseWriter, r *http.Request) {
	q, err := parsePositionQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, track, err := s.computeWithTrack(r, q)
	if err != nil {
		s.writeComputeError(w, err)
		return
	}

	sunAz, sunEl := track.CurrentSunPos()
	visible := sunEl > result.Oaem.Query(sunAz)

	writeJSON(w, http.StatusOK, map[string]string{
		"visible": pythonBool(visible),
		"since":   formatChange(track.Since()),
		"until":   formatChange(track.Until()),
	})
}

func (s *Server) computeWithTrack(r *http.Request, q positionQuery) (*service.Result, *suntrack.Track, error) {
	result, err := s.service.ComputeOaem(r.Context(), q.x, q.y, q.z, q.epsg)
	if err != nil {
		return nil, nil, err
	}

	pos, err := coord.New(q.x, q.y, q.z, q.epsg).Reprojected(s.workEPSG)
	if err != nil {
		return nil, nil, err
	}

	track, err := suntrack.New(pos)
	if err != nil {
		return nil, nil, err
	}
	track.IntersectWithOaem(result.Oaem)
	return result, track, nil
}

func (s *Server) writeComputeError(w http.ResponseWriter, err error) {
	if errors.Is(err, edges.ErrUpstream) {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeError(w, http.StatusInternalServerError, err)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	log.Errorf("request failed: %v", err)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// pythonBool renders booleans the way the original API did.
func pythonBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}

// formatChange renders a visibility change timestamp, "None" when absent.
func formatChange(t *time.Time) string {
	if t == nil {
		return "None"
	}
	return t.Format(time.RFC3339)
}
