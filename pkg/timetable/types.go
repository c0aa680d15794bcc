// Package timetable is the immutable, read-only transit data model the
// RAPTOR core consumes: stops, routes, trips, stop-times, calendars,
// foot-paths and route-point connections (spec.md §1 "external
// collaborator", §3, §6). Nothing in this package mutates once a
// Timetable is built; concurrent RAPTOR sessions may share one
// Timetable safely (spec.md §5).
package timetable

// Dense, zero-based index spaces, per spec.md §3.
type (
	StopPointIdx  int32
	RouteIdx      int32
	RoutePointIdx int32
	TripIdx       int32
	StopTimeIdx   int32
)

const (
	InvalidStopPoint  StopPointIdx  = -1
	InvalidRoute      RouteIdx      = -1
	InvalidRoutePoint RoutePointIdx = -1
	InvalidTrip       TripIdx       = -1
	InvalidStopTime   StopTimeIdx   = -1

	// UnsetZone is the sentinel local_traffic_zone value meaning "no
	// zone restriction applies to this stop-time".
	UnsetZone = -1
)

// ConnectionKind distinguishes the two route-point connection flavors
// of spec.md §4.3.
type ConnectionKind uint8

const (
	ConnectionExtension ConnectionKind = iota
	ConnectionGuarantee
)

// StopPoint is a physical boarding location.
type StopPoint struct {
	ExternalCode string
	Name         string
	Lat, Lon     float64
}

// Route is an ordered sequence of stops served identically by one or
// more trips.
type Route struct {
	ExternalCode string
	LineCode     string
	Mode         string
}

// RoutePoint is a (route, position) coordinate: one stop as served by
// one route.
type RoutePoint struct {
	Route    RouteIdx
	Position int32
	Stop     StopPointIdx
}

// Trip is one timetabled traversal of a route.
type Trip struct {
	Route       RouteIdx
	ExternalCode string
	CalendarID  int32
	// StopTimesFirst/Count index into StopTimeTable.Flat, the trip's
	// contiguous run of stop-times in route-position order.
	StopTimesFirst int32
	StopTimesCount int32
}

// StopTime is the (trip, position) tuple of spec.md §3/§6. ArrivalS and
// DepartureS are seconds elapsed since midnight of the trip's service
// date; per GTFS convention they may exceed 86400 for trips that run
// past midnight.
type StopTime struct {
	ArrivalS         int32
	DepartureS       int32
	DropOffAllowed   bool
	PickUpAllowed    bool
	LocalTrafficZone int32 // UnsetZone if none
}

// FootPath is a precomputed pedestrian transfer to DestinationSP taking
// DurationS seconds.
type FootPath struct {
	DestinationSP StopPointIdx
	DurationS     int32
}

// Connection is a scheduled route-point → route-point link with a fixed
// duration and kind (spec.md §4.3 "Route-path connections").
type Connection struct {
	DestinationRP RoutePointIdx
	DurationS     int32
	Kind          ConnectionKind
}
