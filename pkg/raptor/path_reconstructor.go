package raptor

import "github.com/lintang-b-s/raptorx/pkg/timetable"

// StopVisit is one intermediate stop-point a vehicle leg passes through,
// with the arrival/departure instants replayed from the trip's raw
// stop-times (spec.md §4.7).
type StopVisit struct {
	Stop      StopPointIdx
	Arrival   DateTime
	Departure DateTime
}

// PathItem is one hop of a reconstructed journey: the route-point it
// arrives at (or, in reverse search, departs from), the instant of
// that event, and how it was reached. Vehicle legs additionally carry
// the trip ridden and every intermediate stop-point visited between
// boarding and alighting, per spec.md §4.7 and §6's PathItem output
// shape (`stop_points[]`, `arrivals[]`, `departures[]`, `vj_idx`).
type PathItem struct {
	RoutePoint RoutePointIdx
	Instant    DateTime
	Kind       LabelKind
	StopTime   StopTimeIdx

	Trip  TripIdx     // InvalidTrip unless Kind == KindVehicle
	Stops []StopVisit // boarding through alighting, inclusive, in stop order; empty unless Kind == KindVehicle
}

// PathReconstructor walks a label's Predecessor chain back to its
// KindOrigin root, per spec.md §4.7. Vehicle legs consume a round (the
// predecessor's own label lives one round earlier); transfer legs of
// every flavor do not (the predecessor's label lives in the same
// round), since transfers happen after a round's route scan but before
// the round counter advances.
type PathReconstructor struct {
	tt *timetable.Timetable
}

func NewPathReconstructor(tt *timetable.Timetable) PathReconstructor {
	return PathReconstructor{tt: tt}
}

// Reconstruct returns the journey ending at (round, rp) in wall-clock
// chronological order regardless of search direction: a forward
// search's walk is flipped to get there, a reverse search's walk
// already arrives in that order.
func (pr PathReconstructor) Reconstruct(store *LabelStore, round int, rp RoutePointIdx) []PathItem {
	var items []PathItem
	r, cur := round, rp

	for {
		l := store.Get(r, cur)
		item := PathItem{RoutePoint: cur, Instant: l.Instant(store.dir), Kind: l.Kind, StopTime: l.StopTime, Trip: timetable.InvalidTrip}
		if l.Kind == KindVehicle && pr.tt != nil && l.Predecessor != InvalidRoutePoint {
			item.Trip, item.Stops = pr.walkTrip(store.dir, l, cur)
		}
		items = append(items, item)
		if l.Kind == KindOrigin || l.Predecessor == InvalidRoutePoint {
			break
		}
		if l.Kind == KindVehicle {
			r--
		}
		cur = l.Predecessor
	}

	// Forward search walks predecessors from destination back to origin,
	// so items accumulate in reverse wall-clock order and need flipping
	// (spec.md §4.7). Reverse search walks the mirror image: its
	// predecessor chain already runs origin-to-destination in wall-clock
	// order (ReverseDirection's predecessor points to the real-world
	// later route-stop), so re-reversing it would undo that.
	if store.dir.Forward() {
		reverseItems(items)
	}
	return items
}

// walkTrip replays spec.md §4.7's intermediate-stop collection: starting
// from the alighting stop-time recorded in the label, step backward
// along the trip's stop-times (toward lower route-position forward,
// higher reverse — i.e. toward the boarding point) until reaching the
// route-point recorded as the label's predecessor, recording every
// stop-point's arrival/departure as we go.
func (pr PathReconstructor) walkTrip(dir Direction, l Label, alightRP RoutePointIdx) (TripIdx, []StopVisit) {
	trip, alightPos := pr.tt.StopTimes.TripOf(l.StopTime)
	boardPos := pr.tt.RoutePoints.Get(l.Predecessor).Position

	lo, hi := boardPos, alightPos
	if lo > hi {
		lo, hi = hi, lo
	}

	// l.Instant(dir) is already the correctly-dated alighting instant;
	// anchor recovers the dense-day reference that turns every other
	// position's raw (possibly midnight-spanning) seconds-of-day figure
	// into a real DateTime, the same arithmetic the round scanner used
	// when it first wrote this label (spec.md §4.4's working_dt replay).
	alightRaw := pr.tt.StopTimes.StopTimeAt(trip, alightPos)
	anchorSeconds := alightRaw.ArrivalS
	if !dir.Forward() {
		anchorSeconds = alightRaw.DepartureS
	}
	anchor := l.Instant(dir).Date - anchorSeconds/secondsPerDay

	route := pr.tt.RouteOf(alightRP)
	stops := make([]StopVisit, 0, hi-lo+1)
	for p := lo; p <= hi; p++ {
		st := pr.tt.StopTimes.StopTimeAt(trip, p)
		rp := pr.tt.RoutePoints.RoutePointAt(route, p)
		stops = append(stops, StopVisit{
			Stop:      pr.tt.StopOf(rp),
			Arrival:   FromAnchor(anchor, st.ArrivalS),
			Departure: FromAnchor(anchor, st.DepartureS),
		})
	}
	return trip, stops
}

// ReconstructBest reconstructs the journey ending at whichever round
// Best(rp) was recorded in.
func (pr PathReconstructor) ReconstructBest(store *LabelStore, rp RoutePointIdx) []PathItem {
	return pr.Reconstruct(store, store.BestRound(rp), rp)
}

func reverseItems(items []PathItem) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}
