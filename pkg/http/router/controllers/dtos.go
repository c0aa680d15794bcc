package controllers

import "github.com/lintang-b-s/raptorx/pkg/pathoutput"

type journeyRequest struct {
	OriginLat      float64 `json:"origin_lat" validate:"required,min=-90,max=90"`
	OriginLon      float64 `json:"origin_lon" validate:"required,min=-180,max=180"`
	DestinationLat float64 `json:"destination_lat" validate:"required,min=-90,max=90"`
	DestinationLon float64 `json:"destination_lon" validate:"required,min=-180,max=180"`
	DepartureUnix  int64   `json:"departure_unix" validate:"required"`
}

type journeyResponse struct {
	Paths []pathoutput.Path `json:"paths"`
}

func newJourneyResponse(paths []pathoutput.Path) journeyResponse {
	return journeyResponse{Paths: paths}
}

type profileRequest struct {
	OriginLat      float64 `json:"origin_lat" validate:"required,min=-90,max=90"`
	OriginLon      float64 `json:"origin_lon" validate:"required,min=-180,max=180"`
	DestinationLat float64 `json:"destination_lat" validate:"required,min=-90,max=90"`
	DestinationLon float64 `json:"destination_lon" validate:"required,min=-180,max=180"`
	DeparturesUnix []int64 `json:"departures_unix" validate:"required,min=1"`
}

type profileResultEnvelope struct {
	DepartureUnix int64             `json:"departure_unix"`
	Paths         []pathoutput.Path `json:"paths"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
