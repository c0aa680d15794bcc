package controllers

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	helper "github.com/lintang-b-s/raptorx/pkg/http/router/routerhelper"
	"go.uber.org/zap"
)

// journeysAPI exposes the query driver over HTTP, grounded on the
// teacher's routingAPI shape (one struct holding the service + logger,
// a Routes method registering its endpoints on a RouteGroup).
type journeysAPI struct {
	journeys JourneyService
	log      *zap.Logger
}

func New(journeys JourneyService, log *zap.Logger) *journeysAPI {
	return &journeysAPI{journeys: journeys, log: log}
}

func (api *journeysAPI) Routes(group *helper.RouteGroup) {
	group.POST("/journeys", api.computeJourney)
	group.POST("/journeys/profile", api.computeProfile)
}

// computeJourney implements spec.md §6's `compute`/`compute_all`: a
// single earliest-arrival search from origin to destination departing
// at departure_unix.
func (api *journeysAPI) computeJourney(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req journeyRequest
	if err := decodeAndValidate(r, &req); err != nil {
		api.badRequestResponse(w, err)
		return
	}

	paths, err := api.journeys.ComputeJourney(req.OriginLat, req.OriginLon, req.DestinationLat, req.DestinationLon, req.DepartureUnix, nil)
	if err != nil {
		api.internalErrorResponse(w, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{"data": newJourneyResponse(paths)})
}

// computeProfile implements spec.md §6's profile `compute_all(...,
// list<dt>, bound)`: one Pareto front per departure in the batch.
func (api *journeysAPI) computeProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req profileRequest
	if err := decodeAndValidate(r, &req); err != nil {
		api.badRequestResponse(w, err)
		return
	}

	results, err := api.journeys.ComputeProfile(req.OriginLat, req.OriginLon, req.DestinationLat, req.DestinationLon, req.DeparturesUnix, nil)
	if err != nil {
		api.internalErrorResponse(w, err)
		return
	}

	out := make([]profileResultEnvelope, len(results))
	for i, paths := range results {
		out[i] = profileResultEnvelope{DepartureUnix: req.DeparturesUnix[i], Paths: paths}
	}
	writeJSON(w, http.StatusOK, envelope{"data": out})
}
