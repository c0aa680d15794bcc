package raptor

// OriginOffer is one seed label for the round driver: a stop-point
// reached at instant before any round of vehicle boarding, e.g. the
// query's origin itself, or a stop-area member reached after an access
// walk from the true origin (spec.md §4.6 step 1).
type OriginOffer struct {
	Stop    StopPointIdx
	Instant DateTime
}

// RoundDriver runs the round-based label-correcting search of spec.md
// §4.2/§4.5: seed round 0 from the origin offers, relax transfers out
// of it, then alternate route scans and transfer relaxations until
// either a round makes no improvement (fixed-point convergence) or
// MaxRounds is reached as a safety margin.
type RoundDriver struct {
	dir Direction
}

func NewRoundDriver(dir Direction) *RoundDriver {
	return &RoundDriver{dir: dir}
}

// Run seeds session's label store from origins and drives rounds until
// convergence, returning the number of rounds actually run. globalPruning
// is forwarded to every round's scan (spec.md §4.5's `round_scanner(k,
// global_pruning)`); pass false to run the search without destination-
// bound pruning, e.g. the forward upper-bound pass of spec.md §4.6 step 3.
func (d *RoundDriver) Run(session *Session, tt timetableRoutePoints, origins []OriginOffer, globalPruning bool) int {
	store := session.Store
	tracker := session.Tracker

	store.EnsureRound(0)
	for _, o := range origins {
		for _, rp := range tt.RoutePointsAtStop(o.Stop) {
			l := Label{Predecessor: InvalidRoutePoint, StopTime: InvalidStopTime, Kind: KindOrigin}
			if d.dir.Forward() {
				l.Arrival = o.Instant
			} else {
				l.Departure = o.Instant
			}
			store.Set(0, rp, l)
			store.UpdateBest(0, rp, l)
			if !tracker.Consider(o.Stop, o.Instant) {
				store.MarkRP(rp)
				store.MarkSP(o.Stop)
			}
		}
	}
	session.Relaxer.Relax(store, tracker, 0)

	round := 0
	for round < MaxRounds {
		anyMarkedBefore := false
		store.MarkedStopPoints(func(StopPointIdx) { anyMarkedBefore = true })
		if !anyMarkedBefore {
			break
		}

		round++
		store.CopyRound(round-1, round)
		session.Scanner.Scan(store, tracker, round, globalPruning)

		anyMark := false
		store.MarkedRoutePoints(func(RoutePointIdx) { anyMark = true })
		if !anyMark {
			break
		}

		session.Relaxer.Relax(store, tracker, round)
	}

	session.rounds = round
	return round
}

// timetableRoutePoints is the narrow slice of *timetable.Timetable the
// round driver needs, kept as an interface so tests can seed origins
// against a fake without constructing a full Timetable.
type timetableRoutePoints interface {
	RoutePointsAtStop(sp StopPointIdx) []RoutePointIdx
}
