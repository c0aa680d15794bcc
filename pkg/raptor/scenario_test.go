package raptor

import (
	"testing"

	"github.com/lintang-b-s/raptorx/pkg/timetable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// buildTwoLegNetwork builds a three-stop, two-route network requiring
// exactly one interchange: route A (stop0 -> stop1) departs 08:00,
// route B (stop1 -> stop2) departs 08:15, connected only by an
// intra-stop transfer at stop1.
func buildTwoLegNetwork(t *testing.T) *timetable.Timetable {
	t.Helper()
	b := timetable.NewBuilder(3, 2)

	stop0 := b.AddStopPoint(timetable.StopPoint{ExternalCode: "S0"}, "")
	stop1 := b.AddStopPoint(timetable.StopPoint{ExternalCode: "S1"}, "")
	stop2 := b.AddStopPoint(timetable.StopPoint{ExternalCode: "S2"}, "")

	routeA := b.AddRoute(timetable.Route{ExternalCode: "A", LineCode: "L1", Mode: "bus"})
	routeB := b.AddRoute(timetable.Route{ExternalCode: "B", LineCode: "L2", Mode: "bus"})

	b.AddRouteStop(routeA, stop0)
	b.AddRouteStop(routeA, stop1)
	b.AddRouteStop(routeB, stop1)
	b.AddRouteStop(routeB, stop2)

	cal := b.AddCalendar(timetable.Calendar{StartDay: 0, EndDay: 30, Weekdays: 0xFF, WeekdayOf: func(int32) int { return 0 }})

	b.AddTrip(routeA, "A1", cal, []timetable.StopTime{
		{ArrivalS: 8 * 3600, DepartureS: 8 * 3600, PickUpAllowed: true, LocalTrafficZone: timetable.UnsetZone},
		{ArrivalS: 8*3600 + 600, DepartureS: 8*3600 + 600, DropOffAllowed: true, LocalTrafficZone: timetable.UnsetZone},
	})
	b.AddTrip(routeB, "B1", cal, []timetable.StopTime{
		{ArrivalS: 8*3600 + 900, DepartureS: 8*3600 + 900, PickUpAllowed: true, LocalTrafficZone: timetable.UnsetZone},
		{ArrivalS: 8*3600 + 1500, DepartureS: 8*3600 + 1500, DropOffAllowed: true, LocalTrafficZone: timetable.UnsetZone},
	})

	return b.Build()
}

func TestQueryDriverComputeFindsTwoLegJourney(t *testing.T) {
	tt := buildTwoLegNetwork(t)
	qd, err := NewQueryDriver(tt, zap.NewNop())
	require.NoError(t, err)

	q := Query{
		Origins:      []OriginOffer{{Stop: 0, Instant: NewDateTime(0, 7*3600+50*60)}},
		Destinations: []DestinationOffer{{Stop: 2, EgressMeters: 0}},
		Day:          0,
	}
	paths := qd.Compute(q)
	require.NotEmpty(t, paths)

	best := paths[len(paths)-1]
	assert.Equal(t, NewDateTime(0, 8*3600+1500), best.Instant)

	var vehicleLegs int
	for _, item := range best.Items {
		if item.Kind == KindVehicle {
			vehicleLegs++
		}
	}
	assert.Equal(t, 2, vehicleLegs)
}

func TestQueryDriverComputeWithStatsCountsVisitedStopPoints(t *testing.T) {
	tt := buildTwoLegNetwork(t)
	qd, err := NewQueryDriver(tt, zap.NewNop())
	require.NoError(t, err)

	q := Query{
		Origins:      []OriginOffer{{Stop: 0, Instant: NewDateTime(0, 7*3600+50*60)}},
		Destinations: []DestinationOffer{{Stop: 2, EgressMeters: 0}},
		Day:          0,
	}
	paths, visited, total := qd.ComputeWithStats(q)
	require.NotEmpty(t, paths)
	assert.Equal(t, 3, total, "buildTwoLegNetwork has 3 stop-points")
	// The search boards at stop0, interchanges at stop1 and alights at
	// stop2, so every stop-point in this tiny network gets visited.
	assert.Equal(t, 3, visited)
}

func TestQueryDriverForbiddenLineExcludesRoute(t *testing.T) {
	tt := buildTwoLegNetwork(t)
	qd, err := NewQueryDriver(tt, zap.NewNop())
	require.NoError(t, err)

	q := Query{
		Origins:      []OriginOffer{{Stop: 0, Instant: NewDateTime(0, 7*3600+50*60)}},
		Destinations: []DestinationOffer{{Stop: 2, EgressMeters: 0}},
		Forbidden:    []Forbidden{{Category: "line", Code: "L2"}},
		Day:          0,
	}
	paths := qd.Compute(q)
	assert.Empty(t, paths, "stop2 is only served by forbidden route B")
}

func TestQueryDriverNoPathReturnsEmptySuccess(t *testing.T) {
	tt := buildTwoLegNetwork(t)
	qd, err := NewQueryDriver(tt, zap.NewNop())
	require.NoError(t, err)

	q := Query{
		Origins:      []OriginOffer{{Stop: 0, Instant: NewDateTime(0, 7*3600+50*60)}},
		Destinations: []DestinationOffer{{Stop: 2, EgressMeters: 0}},
		Day:          99, // outside every calendar's validity window
	}
	paths := qd.Compute(q)
	assert.Empty(t, paths)
}

func TestQueryDriverComputeReverseFindsLatestDeparture(t *testing.T) {
	tt := buildTwoLegNetwork(t)
	qd, err := NewQueryDriver(tt, zap.NewNop())
	require.NoError(t, err)

	// In reverse search, "origin" is the rider's actual destination and
	// "destination" is their actual origin: find the latest departure
	// from stop0 that still arrives at stop2 by 09:00.
	q := Query{
		Origins:      []OriginOffer{{Stop: 2, Instant: NewDateTime(0, 9*3600)}},
		Destinations: []DestinationOffer{{Stop: 0, EgressMeters: 0}},
		Day:          0,
	}
	paths := qd.ComputeReverse(q)
	require.NotEmpty(t, paths)
	best := paths[len(paths)-1]
	assert.Equal(t, NewDateTime(0, 8*3600), best.Instant)
}

func TestQueryDriverComputeReverseItemsAreInChronologicalOrder(t *testing.T) {
	tt := buildTwoLegNetwork(t)
	qd, err := NewQueryDriver(tt, zap.NewNop())
	require.NoError(t, err)

	q := Query{
		Origins:      []OriginOffer{{Stop: 2, Instant: NewDateTime(0, 9*3600)}},
		Destinations: []DestinationOffer{{Stop: 0, EgressMeters: 0}},
		Day:          0,
	}
	paths := qd.ComputeReverse(q)
	require.NotEmpty(t, paths)

	best := paths[len(paths)-1]
	require.NotEmpty(t, best.Items)
	require.Equal(t, KindOrigin, best.Items[0].Kind, "the real origin must lead the item list, not trail it")

	for i := 1; i < len(best.Items); i++ {
		prev, cur := best.Items[i-1].Instant, best.Items[i].Instant
		assert.False(t, ForwardDirection.Better(cur, prev),
			"item %d (%v) must not precede item %d (%v) in wall-clock time", i, cur, i-1, prev)
	}
}

func TestQueryDriverComputeRefinesOriginSideSlack(t *testing.T) {
	tt := buildTwoLegNetwork(t)
	qd, err := NewQueryDriver(tt, zap.NewNop())
	require.NoError(t, err)

	// Depart well ahead of the route A trip at stop0; the forward
	// upper-bound pass still finds the same 08:25 arrival, and the
	// reverse-anchored refine pass must not invent a different arrival
	// or transfer count while tightening the origin-side boarding.
	q := Query{
		Origins:      []OriginOffer{{Stop: 0, Instant: NewDateTime(0, 6*3600)}},
		Destinations: []DestinationOffer{{Stop: 2, EgressMeters: 0}},
		Day:          0,
	}
	paths := qd.Compute(q)
	require.NotEmpty(t, paths)

	best := paths[len(paths)-1]
	assert.Equal(t, NewDateTime(0, 8*3600+1500), best.Instant)
	assert.Equal(t, KindOrigin, best.Items[0].Kind)
	assert.Equal(t, StopPointIdx(2), tt.StopOf(best.Items[len(best.Items)-1].RoutePoint))
}

func TestQueryDriverComputeAddsDestinationEgressToReportedInstant(t *testing.T) {
	tt := buildTwoLegNetwork(t)
	qd, err := NewQueryDriver(tt, zap.NewNop())
	require.NoError(t, err)

	const egressMeters = 276.0 // 200s at WalkingSpeedMPS (1.38 m/s)

	q := Query{
		Origins:      []OriginOffer{{Stop: 0, Instant: NewDateTime(0, 7*3600+50*60)}},
		Destinations: []DestinationOffer{{Stop: 2, EgressMeters: egressMeters}},
		Day:          0,
	}
	paths := qd.Compute(q)
	require.NotEmpty(t, paths)

	best := paths[len(paths)-1]
	labelArrival := NewDateTime(0, 8*3600+1500)
	egressSeconds := int(egressMeters / WalkingSpeedMPS)
	want := ForwardDirection.Combine(labelArrival, egressSeconds)
	assert.Equal(t, want, best.Instant,
		"the reported instant must equal label.arrival + distance/1.38")

	require.NotEmpty(t, best.Items)
	last := best.Items[len(best.Items)-1]
	assert.Equal(t, KindTransferWalk, last.Kind, "an egress leg must be appended at the destination end")
	assert.Equal(t, want, last.Instant)
}

func TestQueryDriverComputeProfileOrdersResultsByDeparture(t *testing.T) {
	tt := buildTwoLegNetwork(t)
	qd, err := NewQueryDriver(tt, zap.NewNop())
	require.NoError(t, err)

	base := Query{
		Destinations: []DestinationOffer{{Stop: 2, EgressMeters: 0}},
		Day:          0,
	}
	base.Origins = []OriginOffer{{Stop: 0}}

	departures := []DateTime{
		NewDateTime(0, 7*3600+50*60),
		NewDateTime(0, 6*3600),
	}
	results := qd.ComputeProfile(base, departures, 0, 2)
	require.Len(t, results, 2)
	require.NotEmpty(t, results[0])
	require.NotEmpty(t, results[1])
}
