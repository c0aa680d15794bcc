package timetable

// StopTimeTable stores, for every trip, its contiguous run of
// stop-times in route-position order (spec.md §6 "Per-trip stop-time
// arrays indexable as a flat vector"), plus, for every route, its trips
// listed in ascending departure order at the route's first stop. RAPTOR
// assumes the FIFO property (trips of a route never overtake one
// another), so that same order is valid for a binary search at any
// position along the route, which is what the round scanner's
// earliest/tardiest-trip lookup (spec.md §4.4) relies on.
type StopTimeTable struct {
	Trips []Trip
	Flat  []StopTime

	routeTripOffsets []int32 // CSR offsets into routeTrips, len = numRoutes+1
	routeTrips       []TripIdx
}

type StopTimeTableBuilder struct {
	trips        []Trip
	flat         []StopTime
	perRouteTrip [][]TripIdx
}

func NewStopTimeTableBuilder(numRoutes int) *StopTimeTableBuilder {
	return &StopTimeTableBuilder{perRouteTrip: make([][]TripIdx, numRoutes)}
}

// AddTrip appends a trip and its ordered stop-times, returning the new
// trip's dense TripIdx. stopTimes must already be in ascending
// route-position order.
func (b *StopTimeTableBuilder) AddTrip(route RouteIdx, externalCode string, calendarID int32, stopTimes []StopTime) TripIdx {
	idx := TripIdx(len(b.trips))
	first := int32(len(b.flat))
	b.flat = append(b.flat, stopTimes...)
	b.trips = append(b.trips, Trip{
		Route:          route,
		ExternalCode:   externalCode,
		CalendarID:     calendarID,
		StopTimesFirst: first,
		StopTimesCount: int32(len(stopTimes)),
	})
	b.perRouteTrip[route] = append(b.perRouteTrip[route], idx)
	return idx
}

// Build freezes the table, sorting each route's trips by departure time
// at the route's first stop (the FIFO order the round scanner's
// binary search assumes).
func (b *StopTimeTableBuilder) Build() *StopTimeTable {
	for _, trips := range b.perRouteTrip {
		sortTripsByFirstDeparture(trips, b.trips, b.flat)
	}
	routeTrips, offsets := buildCSR[int32](b.perRouteTrip)

	return &StopTimeTable{
		Trips:            b.trips,
		Flat:             b.flat,
		routeTripOffsets: offsets,
		routeTrips:       routeTrips,
	}
}

func sortTripsByFirstDeparture(trips []TripIdx, allTrips []Trip, flat []StopTime) {
	firstDeparture := func(t TripIdx) int32 {
		trip := allTrips[t]
		return flat[trip.StopTimesFirst].DepartureS
	}
	// insertion sort: route trip counts are small relative to network
	// size and this keeps the builder dependency-free.
	for i := 1; i < len(trips); i++ {
		j := i
		for j > 0 && firstDeparture(trips[j-1]) > firstDeparture(trips[j]) {
			trips[j-1], trips[j] = trips[j], trips[j-1]
			j--
		}
	}
}

// TripsForRoute returns route r's trips in ascending departure order.
func (t *StopTimeTable) TripsForRoute(r RouteIdx) []TripIdx {
	first := t.routeTripOffsets[r]
	last := t.routeTripOffsets[r+1]
	return t.routeTrips[first:last]
}

// StopTimeAt returns the stop-time of trip at route-position pos.
func (t *StopTimeTable) StopTimeAt(trip TripIdx, pos int32) StopTime {
	tr := t.Trips[trip]
	return t.Flat[tr.StopTimesFirst+pos]
}

// StopTimeIdxAt returns the dense StopTimeIdx of trip at route-position pos.
func (t *StopTimeTable) StopTimeIdxAt(trip TripIdx, pos int32) StopTimeIdx {
	tr := t.Trips[trip]
	return StopTimeIdx(tr.StopTimesFirst + pos)
}

// TripOf returns the trip owning the flat stop-time at st, and its
// route-position within that trip. Trips are appended to Flat in order,
// so a binary search on StopTimesFirst locates the owner. Needed by path
// reconstruction (spec.md §4.7), which only carries an alighting
// StopTimeIdx and must walk the rest of that trip's stop-times.
func (t *StopTimeTable) TripOf(st StopTimeIdx) (TripIdx, int32) {
	lo, hi := 0, len(t.Trips)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if t.Trips[mid].StopTimesFirst <= int32(st) {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return TripIdx(lo), int32(st) - t.Trips[lo].StopTimesFirst
}
