package raptor

import (
	"testing"

	"github.com/lintang-b-s/raptorx/pkg/timetable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildOfferFixture(t *testing.T) *timetable.Timetable {
	t.Helper()
	b := timetable.NewBuilder(2, 1)
	s0 := b.AddStopPoint(timetable.StopPoint{ExternalCode: "S0"}, "")
	s1 := b.AddStopPoint(timetable.StopPoint{ExternalCode: "S1"}, "")
	route := b.AddRoute(timetable.Route{ExternalCode: "A"})
	b.AddRouteStop(route, s0)
	b.AddRouteStop(route, s1)
	return b.Build()
}

// TestTransferRelaxerReverseOfferTieBreak verifies that the reverse
// direction resolves an equal-instant candidate the same way the
// forward direction does — via the transfer relaxer's shared offer()
// guard, which never overwrites a tie — while still preferring the
// later departure.
func TestTransferRelaxerReverseOfferTieBreak(t *testing.T) {
	tt := buildOfferFixture(t)
	relaxer := NewTransferRelaxer(ReverseDirection, tt)
	store := NewLabelStore(ReverseDirection, tt.NumRoutePoints(), tt.NumStopPoints())
	store.EnsureRound(0)

	rp := RoutePointIdx(1)
	first := NewDateTime(0, 1000)
	relaxer.offer(store, nil, 0, rp, first, KindTransferExtension, InvalidRoutePoint, InvalidStopTime)
	require.Equal(t, first, store.Get(0, rp).Instant(ReverseDirection))

	// Equal instant on a route-point that already holds a real label:
	// must NOT overwrite (equality-write-on-first-discovery, Open
	// Question 3).
	relaxer.offer(store, nil, 0, rp, first, KindTransferGuarantee, InvalidRoutePoint, InvalidStopTime)
	assert.Equal(t, KindTransferExtension, store.Get(0, rp).Kind)

	// A strictly earlier departure is worse for the reverse
	// (latest-departure) direction, so it must NOT overwrite either.
	worse := NewDateTime(0, 500)
	relaxer.offer(store, nil, 0, rp, worse, KindTransferGuarantee, InvalidRoutePoint, InvalidStopTime)
	assert.Equal(t, first, store.Get(0, rp).Instant(ReverseDirection))

	// A strictly later departure is better for the reverse direction
	// and must overwrite.
	better := NewDateTime(0, 1500)
	relaxer.offer(store, nil, 0, rp, better, KindTransferGuarantee, InvalidRoutePoint, InvalidStopTime)
	assert.Equal(t, better, store.Get(0, rp).Instant(ReverseDirection))
	assert.Equal(t, KindTransferGuarantee, store.Get(0, rp).Kind)
}

// TestTransferRelaxerOfferEqualOrBetterAcceptsTie verifies spec.md
// §4.3(b)'s explicit footpath equality rule: unlike offer, which never
// overwrites a tie, offerEqualOrBetter must still write (and mark) a
// route-point whose candidate instant merely ties the label already
// there, so a second foot-path landing at the same instant is captured
// for reconstruction.
func TestTransferRelaxerOfferEqualOrBetterAcceptsTie(t *testing.T) {
	tt := buildOfferFixture(t)
	relaxer := NewTransferRelaxer(ForwardDirection, tt)
	store := NewLabelStore(ForwardDirection, tt.NumRoutePoints(), tt.NumStopPoints())
	store.EnsureRound(0)

	rp := RoutePointIdx(1)
	first := NewDateTime(0, 1000)
	relaxer.offer(store, nil, 0, rp, first, KindTransferExtension, InvalidRoutePoint, InvalidStopTime)

	tie := NewDateTime(0, 1000)
	relaxer.offerEqualOrBetter(store, nil, 0, rp, tie, KindTransferWalk, InvalidRoutePoint, InvalidStopTime)
	assert.Equal(t, KindTransferWalk, store.Get(0, rp).Kind, "equal-instant footpath must overwrite with the new label")

	worse := NewDateTime(0, 1500)
	relaxer.offerEqualOrBetter(store, nil, 0, rp, worse, KindTransferGuarantee, InvalidRoutePoint, InvalidStopTime)
	assert.Equal(t, KindTransferWalk, store.Get(0, rp).Kind, "strictly worse candidate must still be rejected")
}

// TestTransferRelaxerBestInstantAtStopIgnoresStaleTransferLabels verifies
// spec.md §4.3(a) step 1: the minimum-dwell anchor search must skip a
// route-point carrying a carried-forward TRANSFER_* label and fall back
// to one with a genuine VEHICLE/ORIGIN label at the same stop.
func TestTransferRelaxerBestInstantAtStopIgnoresStaleTransferLabels(t *testing.T) {
	tt := buildOfferFixture(t)
	relaxer := NewTransferRelaxer(ForwardDirection, tt)
	store := NewLabelStore(ForwardDirection, tt.NumRoutePoints(), tt.NumStopPoints())
	store.EnsureRound(0)

	stale := RoutePointIdx(0)
	vehicle := RoutePointIdx(1)
	store.Set(0, stale, Label{Arrival: NewDateTime(0, 100), Kind: KindTransferWalk})
	store.Set(0, vehicle, Label{Arrival: NewDateTime(0, 5000), Kind: KindVehicle})

	best := relaxer.bestInstantAtStop(store, 0, []RoutePointIdx{stale, vehicle})
	assert.Equal(t, NewDateTime(0, 5000), best, "stale transfer label must not anchor the dwell search")
}

// TestTransferRelaxerBestInstantAtStopWorstWhenOnlyStale verifies that
// a stop with nothing but carried-forward transfer labels yields no
// anchor at all, rather than falling back to one of them.
func TestTransferRelaxerBestInstantAtStopWorstWhenOnlyStale(t *testing.T) {
	tt := buildOfferFixture(t)
	relaxer := NewTransferRelaxer(ForwardDirection, tt)
	store := NewLabelStore(ForwardDirection, tt.NumRoutePoints(), tt.NumStopPoints())
	store.EnsureRound(0)

	rp := RoutePointIdx(0)
	store.Set(0, rp, Label{Arrival: NewDateTime(0, 100), Kind: KindTransferExtension})

	best := relaxer.bestInstantAtStop(store, 0, []RoutePointIdx{rp})
	assert.True(t, best.Equal(ForwardDirection.Worst()))
}

// TestTransferRelaxerRelaxConnectionsOnlyPropagatesFromVehicleLabels
// verifies spec.md §4.3's "For each currently marked route-stop whose
// label has kind VEHICLE, apply every outgoing connection": a
// route-point carrying a TRANSFER_WALK label must not propagate its
// outgoing connections, even though it is marked.
func TestTransferRelaxerRelaxConnectionsOnlyPropagatesFromVehicleLabels(t *testing.T) {
	b := timetable.NewBuilder(2, 1)
	s0 := b.AddStopPoint(timetable.StopPoint{ExternalCode: "S0"}, "")
	s1 := b.AddStopPoint(timetable.StopPoint{ExternalCode: "S1"}, "")
	route := b.AddRoute(timetable.Route{ExternalCode: "A"})
	b.AddRouteStop(route, s0)
	b.AddRouteStop(route, s1)

	src := RoutePointIdx(0)
	dst := RoutePointIdx(1)
	b.AddForwardConnection(src, timetable.Connection{DestinationRP: dst, DurationS: 60, Kind: timetable.ConnectionExtension})
	tt := b.Build()

	relaxer := NewTransferRelaxer(ForwardDirection, tt)
	store := NewLabelStore(ForwardDirection, tt.NumRoutePoints(), tt.NumStopPoints())
	store.EnsureRound(0)
	store.Set(0, src, Label{Arrival: NewDateTime(0, 1000), Kind: KindTransferWalk})

	relaxer.relaxConnections(store, nil, 0, src)

	assert.Equal(t, KindUninitialized, store.Get(0, dst).Kind,
		"a TRANSFER_WALK label must not propagate its outgoing connections")
}
