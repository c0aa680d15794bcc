package timetable

import (
	"testing"
	"time"

	gtfs "github.com/OneBusAway/go-gtfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptrFloat(f float64) *float64 { return &f }
func ptrString(s string) *string  { return &s }
func ptrInt(i int32) *int32       { return &i }
func mustDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// buildStaticFixture assembles a tiny two-stop, one-route GTFS static
// feed entirely in memory, so FromStatic's conversion logic can be
// exercised without a network fetch or the sqlite parse cache.
func buildStaticFixture() *gtfs.Static {
	stop0 := gtfs.Stop{Id: "stop0", Name: "Origin", Latitude: ptrFloat(-6.20), Longitude: ptrFloat(106.81)}
	stop1 := gtfs.Stop{Id: "stop1", Name: "Destination", Latitude: ptrFloat(-6.21), Longitude: ptrFloat(106.82)}

	route := gtfs.Route{Id: "R1", ShortName: "1", Type: 3}
	service := gtfs.Service{
		Id:        "WEEKDAY",
		StartDate: mustDate(2026, 1, 1),
		EndDate:   mustDate(2026, 12, 31),
		Monday:    true, Tuesday: true, Wednesday: true, Thursday: true, Friday: true,
	}

	trip := gtfs.ScheduledTrip{
		ID:      "T1",
		Route:   &route,
		Service: &service,
		StopTimes: []gtfs.ScheduledStopTime{
			{ArrivalTime: 8 * 3600, DepartureTime: 8 * 3600, Stop: &stop0},
			{ArrivalTime: 8*3600 + 600, DepartureTime: 8*3600 + 600, Stop: &stop1},
		},
	}

	return &gtfs.Static{
		Stops:    []gtfs.Stop{stop0, stop1},
		Routes:   []gtfs.Route{route},
		Services: []gtfs.Service{service},
		Trips:    []gtfs.ScheduledTrip{trip},
		Transfers: []gtfs.Transfer{
			{From: &stop0, To: &stop1, MinTransferTime: ptrInt(90)},
		},
	}
}

func TestFromStaticBuildsTimetable(t *testing.T) {
	tt := FromStatic(buildStaticFixture())

	require.Equal(t, 2, tt.NumStopPoints())
	require.Equal(t, 1, tt.NumRoutes())
	require.Equal(t, 2, tt.NumRoutePoints())

	trips := tt.StopTimes.TripsForRoute(0)
	require.Len(t, trips, 1)
	st := tt.StopTimes.StopTimeAt(trips[0], 0)
	assert.Equal(t, int32(8*3600), st.DepartureS)

	fps := tt.FootPaths.FootPathsFrom(0)
	require.Len(t, fps, 1)
	assert.Equal(t, int32(90), fps[0].DurationS)

	require.Len(t, tt.Calendars, 1)
	assert.True(t, tt.Calendars[0].Check(tt.Calendars[0].StartDay))
}

func TestFromStaticGroupsTripsByStopPattern(t *testing.T) {
	static := buildStaticFixture()

	stop2 := gtfs.Stop{Id: "stop2", Name: "Branch", Latitude: ptrFloat(-6.22), Longitude: ptrFloat(106.83)}
	static.Stops = append(static.Stops, stop2)

	branchTrip := gtfs.ScheduledTrip{
		ID:      "T2",
		Route:   &static.Routes[0],
		Service: &static.Services[0],
		StopTimes: []gtfs.ScheduledStopTime{
			{ArrivalTime: 9 * 3600, DepartureTime: 9 * 3600, Stop: &static.Stops[0]},
			{ArrivalTime: 9*3600 + 900, DepartureTime: 9*3600 + 900, Stop: &stop2},
		},
	}
	static.Trips = append(static.Trips, branchTrip)

	tt := FromStatic(static)

	// Same GTFS route_id, two different stop patterns -> two RAPTOR routes.
	assert.Equal(t, 2, tt.NumRoutes())
}
