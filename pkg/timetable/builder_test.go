package timetable

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildSmallNetwork constructs a two-route, three-stop network used by
// the timetable-level tests in this package: route A runs stop0 ->
// stop1, route B runs stop1 -> stop2, and stop1 has a 60 s foot-path
// to itself.
func buildSmallNetwork(t *testing.T) *Timetable {
	t.Helper()
	b := NewBuilder(3, 2)

	stop0 := b.AddStopPoint(StopPoint{ExternalCode: "S0", Name: "Origin"}, "AREA0")
	stop1 := b.AddStopPoint(StopPoint{ExternalCode: "S1", Name: "Interchange"}, "AREA1")
	stop2 := b.AddStopPoint(StopPoint{ExternalCode: "S2", Name: "Destination"}, "AREA2")

	routeA := b.AddRoute(Route{ExternalCode: "A", LineCode: "L1", Mode: "bus"})
	routeB := b.AddRoute(Route{ExternalCode: "B", LineCode: "L2", Mode: "bus"})

	b.AddRouteStop(routeA, stop0)
	b.AddRouteStop(routeA, stop1)
	b.AddRouteStop(routeB, stop1)
	b.AddRouteStop(routeB, stop2)

	cal := b.AddCalendar(Calendar{StartDay: 0, EndDay: 10, Weekdays: 0xFF, WeekdayOf: func(int32) int { return 0 }})

	b.AddTrip(routeA, "A1", cal, []StopTime{
		{ArrivalS: 8 * 3600, DepartureS: 8 * 3600, PickUpAllowed: true, LocalTrafficZone: UnsetZone},
		{ArrivalS: 8*3600 + 600, DepartureS: 8*3600 + 600, DropOffAllowed: true, LocalTrafficZone: UnsetZone},
	})
	b.AddTrip(routeB, "B1", cal, []StopTime{
		{ArrivalS: 8*3600 + 900, DepartureS: 8*3600 + 900, PickUpAllowed: true, LocalTrafficZone: UnsetZone},
		{ArrivalS: 8*3600 + 1500, DepartureS: 8*3600 + 1500, DropOffAllowed: true, LocalTrafficZone: UnsetZone},
	})

	b.AddFootPath(stop1, FootPath{DestinationSP: stop1, DurationS: 60})

	return b.Build()
}

func TestBuilderProducesConsistentIndexSpaces(t *testing.T) {
	tt := buildSmallNetwork(t)

	require.Equal(t, 3, tt.NumStopPoints())
	require.Equal(t, 2, tt.NumRoutes())
	require.Equal(t, 4, tt.NumRoutePoints())

	first, count := tt.RoutePoints.RouteSlice(0)
	assert.Equal(t, int32(0), first)
	assert.Equal(t, int32(2), count)

	assert.Equal(t, StopPointIdx(0), tt.RoutePoints.Get(0).Stop)
	assert.Equal(t, StopPointIdx(1), tt.RoutePoints.Get(1).Stop)
}

func TestBuilderStopAreaExpansion(t *testing.T) {
	tt := buildSmallNetwork(t)
	assert.Equal(t, []StopPointIdx{0}, tt.StopArea("AREA0"))
	assert.Nil(t, tt.StopArea("UNKNOWN"))
}

func TestBuilderRoutePointsAtStop(t *testing.T) {
	tt := buildSmallNetwork(t)
	rps := tt.RoutePointsAtStop(1) // stop1 is served by both routes
	assert.Len(t, rps, 2)
}

func TestBuilderTripsForRouteFirstStopDeparture(t *testing.T) {
	tt := buildSmallNetwork(t)
	trips := tt.StopTimes.TripsForRoute(0)
	require.Len(t, trips, 1)
	st := tt.StopTimes.StopTimeAt(trips[0], 0)
	assert.Equal(t, int32(8*3600), st.DepartureS)
}

func TestBuilderFootPathsFrom(t *testing.T) {
	tt := buildSmallNetwork(t)
	fps := tt.FootPaths.FootPathsFrom(1)
	require.Len(t, fps, 1)
	assert.Equal(t, int32(60), fps[0].DurationS)
}

func TestBuilderDateFromTimeUsesEpoch(t *testing.T) {
	b := NewBuilder(1, 0)
	b.SetEpoch(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	tt := b.Build()

	day, sec := tt.DateFromTime(time.Date(2026, 3, 4, 7, 30, 0, 0, time.UTC))
	assert.Equal(t, int32(3), day)
	assert.Equal(t, 7*3600+30*60, sec)
}

func TestBuilderDateFromTimeSameDayIsZero(t *testing.T) {
	b := NewBuilder(1, 0)
	epoch := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	b.SetEpoch(epoch)
	tt := b.Build()

	day, sec := tt.DateFromTime(epoch)
	assert.Equal(t, int32(0), day)
	assert.Equal(t, 0, sec)
}
