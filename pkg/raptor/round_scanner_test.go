package raptor

import (
	"testing"

	"github.com/lintang-b-s/raptorx/pkg/timetable"
	"github.com/stretchr/testify/assert"
)

// TestRoundScannerImprovesHonorsGlobalPruning verifies spec.md §4.4's
// `bound = global_pruning ? destination_tracker.best : B[rp]`: with
// globalPruning false, a candidate worse than the tracker's bound but
// still better than the route-stop's own uninitialized B[rp] must be
// accepted, since the tracker bound must not be consulted at all.
func TestRoundScannerImprovesHonorsGlobalPruning(t *testing.T) {
	tt := timetable.NewBuilder(1, 1).Build()
	scanner := NewRoundScanner(ForwardDirection, tt)
	store := NewLabelStore(ForwardDirection, 1, 1)
	store.EnsureRound(0)

	tracker := NewDestinationTracker(ForwardDirection, 1)
	tracker.SetEgress(0, 0)
	tracker.Consider(0, NewDateTime(0, 100)) // bound = 100

	worseThanBound := NewDateTime(0, 500)

	assert.False(t, scanner.improves(store, tracker, 0, 0, worseThanBound, true),
		"with global pruning on, a candidate worse than the tracker bound must be pruned")
	assert.True(t, scanner.improves(store, tracker, 0, 0, worseThanBound, false),
		"with global pruning off, the tracker bound must not be consulted at all")
}

// TestRoundScannerScanRouteRejectsAlightingWhenDropOffForbidden verifies
// spec.md §4.4's gate on the alight step: a stop-time with
// DropOffAllowed false must never produce a VEHICLE label, even though
// it otherwise improves on the route-stop's current best.
func TestRoundScannerScanRouteRejectsAlightingWhenDropOffForbidden(t *testing.T) {
	b := timetable.NewBuilder(2, 1)
	s0 := b.AddStopPoint(timetable.StopPoint{ExternalCode: "S0"}, "")
	s1 := b.AddStopPoint(timetable.StopPoint{ExternalCode: "S1"}, "")
	route := b.AddRoute(timetable.Route{ExternalCode: "A"})
	b.AddRouteStop(route, s0)
	b.AddRouteStop(route, s1)
	cal := b.AddCalendar(timetable.Calendar{StartDay: 0, EndDay: 30, Weekdays: 0xFF, WeekdayOf: func(int32) int { return 0 }})
	b.AddTrip(route, "T1", cal, []timetable.StopTime{
		{ArrivalS: 8 * 3600, DepartureS: 8 * 3600, PickUpAllowed: true, LocalTrafficZone: timetable.UnsetZone},
		{ArrivalS: 8*3600 + 600, DepartureS: 8*3600 + 600, DropOffAllowed: false, LocalTrafficZone: timetable.UnsetZone},
	})
	tt := b.Build()

	scanner := NewRoundScanner(ForwardDirection, tt)
	store := NewLabelStore(ForwardDirection, tt.NumRoutePoints(), tt.NumStopPoints())
	store.EnsureRound(0)

	originRP := tt.RoutePointsAtStop(s0)[0]
	store.Set(0, originRP, Label{Arrival: NewDateTime(0, 7*3600+50*60), Kind: KindOrigin})
	store.MarkRP(originRP)
	store.MarkSP(s0)

	store.EnsureRound(1)
	store.CopyRound(0, 1)
	scanner.Scan(store, nil, 1, false)

	destRP := tt.RoutePointsAtStop(s1)[0]
	assert.Equal(t, KindUninitialized, store.Get(1, destRP).Kind,
		"a stop-time with DropOffAllowed false must not produce a VEHICLE label")
}
