package controllers

import "github.com/lintang-b-s/raptorx/pkg/pathoutput"

// JourneyService is the boundary between the HTTP layer and the
// engine: a geo-expanded single-departure query and its profile
// (multi-departure) counterpart, spec.md §6's `compute`/`compute_all`
// and the profile `compute_all(..., list<dt>, ...)` variant.
type JourneyService interface {
	ComputeJourney(originLat, originLon, destLat, destLon float64, departureUnix int64, forbidden []Forbidden) ([]pathoutput.Path, error)
	ComputeProfile(originLat, originLon, destLat, destLon float64, departuresUnix []int64, forbidden []Forbidden) ([][]pathoutput.Path, error)
}

// StreamService is the narrower surface the websocket handler drives:
// one profile query per connected client, pushed back incrementally as
// each departure's search completes instead of waiting for the whole
// batch.
type StreamService interface {
	ComputeProfileStream(originLat, originLon, destLat, destLon float64, departuresUnix []int64, forbidden []Forbidden, onResult func(departureUnix int64, paths []pathoutput.Path)) error
}

// Forbidden mirrors raptor.Forbidden at the HTTP boundary so the
// controllers package has no dependency on the engine's internal query
// types.
type Forbidden struct {
	Category string `json:"category"`
	Code     string `json:"code"`
}
