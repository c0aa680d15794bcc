package raptor

import "github.com/lintang-b-s/raptorx/pkg/timetable"

// TransferRelaxer performs the three transfer flavors of spec.md §4.3
// after each round's route scan: intra-stop transfers (a flat
// MinTransferSeconds dwell between two route-points sharing a physical
// stop), inter-stop foot-paths (precomputed walking legs), and
// route-path connections (precomputed EXTENSION/GUARANTEE links between
// specific route-points, e.g. a guaranteed correspondence or an
// operator-declared line extension). None of these consume a round:
// their results feed back into the same round's label array and mark
// set so the next round's route scan can board from them.
type TransferRelaxer struct {
	dir Direction
	tt  *timetable.Timetable
}

func NewTransferRelaxer(dir Direction, tt *timetable.Timetable) *TransferRelaxer {
	return &TransferRelaxer{dir: dir, tt: tt}
}

// Relax runs all three transfer flavors for round k, reading and
// writing store's round-k label array and marking newly-improved
// route-points/stop-points for the following route scan.
func (r *TransferRelaxer) Relax(store *LabelStore, tracker *DestinationTracker, k int) {
	// Snapshot the stops marked by this round's route scan; relaxation
	// below may mark further stops but those are for a later round's
	// intra-stop pass, not this one (a stop directly reached this round
	// already saw every route-point at it evaluated).
	var stops []StopPointIdx
	store.MarkedStopPoints(func(sp StopPointIdx) { stops = append(stops, sp) })

	for _, sp := range stops {
		r.relaxIntraStop(store, tracker, k, sp)
	}
	for _, sp := range stops {
		r.relaxFootPaths(store, tracker, k, sp)
	}

	var routePoints []RoutePointIdx
	store.MarkedRoutePoints(func(rp RoutePointIdx) { routePoints = append(routePoints, rp) })
	for _, rp := range routePoints {
		r.relaxConnections(store, tracker, k, rp)
	}
}

// relaxIntraStop offers every route-point at sp the best instant
// reached at sp this round, plus the fixed minimum dwell.
func (r *TransferRelaxer) relaxIntraStop(store *LabelStore, tracker *DestinationTracker, k int, sp StopPointIdx) {
	rps := r.tt.RoutePointsAtStop(sp)
	best, bestRP := r.bestAtStop(store, k, rps)
	if best.Equal(r.dir.Worst()) {
		return
	}
	candidate := r.dir.Combine(best, MinTransferSeconds)
	for _, rp := range rps {
		r.offer(store, tracker, k, rp, candidate, KindTransferWalk, bestRP, InvalidStopTime)
	}
}

// relaxFootPaths offers every route-point at each foot-path
// destination the best instant reached at sp this round, plus the
// foot-path's walking duration.
func (r *TransferRelaxer) relaxFootPaths(store *LabelStore, tracker *DestinationTracker, k int, sp StopPointIdx) {
	rps := r.tt.RoutePointsAtStop(sp)
	best, bestRP := r.bestAtStop(store, k, rps)
	if best.Equal(r.dir.Worst()) {
		return
	}
	for _, fp := range r.tt.FootPaths.FootPathsFrom(sp) {
		candidate := r.dir.Combine(best, int(fp.DurationS))
		for _, rp := range r.tt.RoutePointsAtStop(fp.DestinationSP) {
			r.offerEqualOrBetter(store, tracker, k, rp, candidate, KindTransferWalk, bestRP, InvalidStopTime)
		}
	}
}

// relaxConnections offers the destination of each precomputed
// route-path connection out of rp the instant reached at rp plus the
// connection's fixed duration. Restricted to route-points whose label
// has kind VEHICLE (spec.md §4.3: "For each currently marked route-stop
// whose label has kind VEHICLE, apply every outgoing connection") — a
// route-point carrying an ORIGIN or TRANSFER_* label does not extend
// via route-path connections.
func (r *TransferRelaxer) relaxConnections(store *LabelStore, tracker *DestinationTracker, k int, rp RoutePointIdx) {
	label := store.Get(k, rp)
	if label.Kind != KindVehicle {
		return
	}
	instant := label.Instant(r.dir)

	conns := r.tt.ConnectionsForward
	if !r.dir.Forward() {
		conns = r.tt.ConnectionsBackward
	}
	for _, c := range conns.ConnectionsFrom(rp) {
		candidate := r.dir.Combine(instant, int(c.DurationS))
		kind := KindTransferExtension
		if c.Kind == timetable.ConnectionGuarantee {
			kind = KindTransferGuarantee
		}
		r.offer(store, tracker, k, c.DestinationRP, candidate, kind, rp, InvalidStopTime)
	}
}

// bestInstantAtStop returns the best (per direction) instant among rps'
// round-k labels, restricted to labels of kind VEHICLE or ORIGIN, or the
// direction's Worst() sentinel if none qualify. spec.md §4.3(a) step 1
// anchors the minimum-dwell transfer search on a genuine vehicle
// alighting or the query's origin only; a route-point still carrying a
// TRANSFER_WALK/EXTENSION/GUARANTEE label from an earlier round (via
// LabelStore.CopyRound) must not re-seed the dwell, or a transfer would
// stack its own minimum dwell on top of an already-produced transfer.
func (r *TransferRelaxer) bestInstantAtStop(store *LabelStore, k int, rps []RoutePointIdx) DateTime {
	best, _ := r.bestAtStop(store, k, rps)
	return best
}

// bestAtStop is bestInstantAtStop that also returns the route-point
// holding the best instant (InvalidRoutePoint if none qualify), which
// the transfer labels seeded from it record as their predecessor.
func (r *TransferRelaxer) bestAtStop(store *LabelStore, k int, rps []RoutePointIdx) (DateTime, RoutePointIdx) {
	best := r.dir.Worst()
	bestRP := InvalidRoutePoint
	seen := false
	for _, rp := range rps {
		l := store.Get(k, rp)
		if l.Kind != KindVehicle && l.Kind != KindOrigin {
			continue
		}
		instant := l.Instant(r.dir)
		if !seen || r.dir.Better(instant, best) {
			best = instant
			bestRP = rp
			seen = true
		}
	}
	if !seen {
		return r.dir.Worst(), InvalidRoutePoint
	}
	return best, bestRP
}

func (r *TransferRelaxer) offer(store *LabelStore, tracker *DestinationTracker, k int, rp RoutePointIdx, instant DateTime, kind LabelKind, pred RoutePointIdx, st StopTimeIdx) {
	cur := store.Get(k, rp)
	if cur.Kind != KindUninitialized && !r.dir.Better(instant, cur.Instant(r.dir)) {
		return
	}
	r.write(store, tracker, k, rp, instant, kind, pred, st)
}

// offerEqualOrBetter is offer's footpath-specific sibling: spec.md
// §4.3(b) requires a TRANSFER_WALK label to be written "if u strictly
// improves B[rp_dest] or is equal to it", not just on strict
// improvement. The equality case lets two foot-paths that land on the
// same instant both be captured, which reconstruction depends on for
// correct tiebreaking.
func (r *TransferRelaxer) offerEqualOrBetter(store *LabelStore, tracker *DestinationTracker, k int, rp RoutePointIdx, instant DateTime, kind LabelKind, pred RoutePointIdx, st StopTimeIdx) {
	cur := store.Get(k, rp)
	if cur.Kind != KindUninitialized && r.dir.Better(cur.Instant(r.dir), instant) {
		return
	}
	r.write(store, tracker, k, rp, instant, kind, pred, st)
}

// write records a newly improved label at rp and, per spec.md §4.2's
// offer contract, marks rp/sp(rp) for the next route scan only if the
// destination tracker did not consume it (ground truth
// original_source/source/routing/raptor.cpp:493-496's
// `if(!raptor.b_dest.ajouter_best(...)) { mark... }`).
func (r *TransferRelaxer) write(store *LabelStore, tracker *DestinationTracker, k int, rp RoutePointIdx, instant DateTime, kind LabelKind, pred RoutePointIdx, st StopTimeIdx) {
	l := Label{Predecessor: pred, StopTime: st, Kind: kind}
	if r.dir.Forward() {
		l.Arrival = instant
	} else {
		l.Departure = instant
	}
	store.Set(k, rp, l)
	store.UpdateBest(k, rp, l)
	consumed := tracker != nil && tracker.Consider(r.tt.StopOf(rp), instant)
	if !consumed {
		store.MarkRP(rp)
		store.MarkSP(r.tt.StopOf(rp))
	}
}
