package raptor

import "github.com/lintang-b-s/raptorx/pkg/timetable"

// RoundScanner implements the route-scanning inner loop of spec.md
// §4.4: for every route touched by a stop marked in the previous round,
// walk the route from the earliest (forward) or latest (reverse) marked
// position, maintaining a currently-boarded trip and re-boarding a
// better trip whenever a previous round's label allows it.
// Local-traffic-zone exclusion and the earliest/tardiest-trip binary
// search (assuming the FIFO property: trips of one route never overtake
// each other, per Vector-Hector-bifrost's ordered trip search) both
// live here.
type RoundScanner struct {
	dir Direction
	tt  *timetable.Timetable

	// validRoutes restricts the scan to the current query's
	// routes_valides bitset (spec.md §4.6 step 2: calendar validity for
	// the query date, minus any user-forbidden lines/routes/modes). A
	// nil bitset means every route is eligible.
	validRoutes *Bitset
}

func NewRoundScanner(dir Direction, tt *timetable.Timetable) *RoundScanner {
	return &RoundScanner{dir: dir, tt: tt}
}

// SetValidRoutes installs the current query's routes_valides bitset.
func (s *RoundScanner) SetValidRoutes(valid *Bitset) {
	s.validRoutes = valid
}

// boarding tracks the trip currently ridden while walking a route, and
// the day anchor needed to turn its stop-times' possibly-past-midnight
// seconds-of-day back into real DateTimes.
type boarding struct {
	trip       TripIdx
	pos        int32
	rp         RoutePointIdx
	anchorDate int32
}

// Scan runs one round's route scan. It reads the marks left by the
// previous round (or by origin initialization for round 1), clears
// them, and writes L[k] plus fresh marks for whatever this round's
// route scan improves. tracker may be nil when no destination pruning
// bound is active yet. globalPruning selects the bound spec.md §4.4
// compares against: the destination tracker's bound when true, or the
// route-stop's own current best B[rp] when false — the query driver's
// forward upper-bound pass runs with this set to false so an as-yet
// unestablished destination bound cannot cut off the very labels that
// would establish it.
func (s *RoundScanner) Scan(store *LabelStore, tracker *DestinationTracker, k int, globalPruning bool) {
	entries := s.buildQueue(store)
	store.ClearMarks()

	for route, entryPos := range entries {
		s.scanRoute(store, tracker, k, route, entryPos, globalPruning)
	}
}

// buildQueue finds, for every route serving a currently-marked stop,
// the single best entry position to start scanning from: the smallest
// route-position for forward search, the largest for reverse search.
func (s *RoundScanner) buildQueue(store *LabelStore) map[RouteIdx]int32 {
	entries := make(map[RouteIdx]int32)
	store.MarkedStopPoints(func(sp StopPointIdx) {
		for _, rp := range s.tt.RoutePointsAtStop(sp) {
			route := s.tt.RouteOf(rp)
			if s.validRoutes != nil && !s.validRoutes.Test(int(route)) {
				continue
			}
			point := s.tt.RoutePoints.Get(rp)
			if cur, ok := entries[route]; !ok || s.betterEntry(point.Position, cur) {
				entries[route] = point.Position
			}
		}
	})
	return entries
}

func (s *RoundScanner) betterEntry(candidate, current int32) bool {
	if s.dir.Forward() {
		return candidate < current
	}
	return candidate > current
}

func (s *RoundScanner) scanRoute(store *LabelStore, tracker *DestinationTracker, k int, route RouteIdx, entryPos int32, globalPruning bool) {
	_, count := s.tt.RoutePoints.RouteSlice(route)

	var boarded *boarding

	for _, pos := range s.positionsFrom(entryPos, count) {
		rp := s.tt.RoutePoints.RoutePointAt(route, pos)

		if boarded != nil && s.alightingAllowed(boarded.trip, pos) && !s.excludedByZone(boarded.trip, boarded.pos, pos) {
			st := s.tt.StopTimes.StopTimeAt(boarded.trip, pos)
			candidate := s.instantAt(boarded.anchorDate, s.alightSeconds(st))
			if s.improves(store, tracker, k, rp, candidate, globalPruning) {
				s.write(store, tracker, k, rp, candidate, KindVehicle, boarded.rp, s.tt.StopTimes.StopTimeIdxAt(boarded.trip, pos))
			}
		}

		if prev := previousRoundLabel(store, k, rp); prev.Kind != KindUninitialized {
			if newBoarding, ok := s.tryBoard(route, pos, rp, prev.Instant(s.dir), boarded); ok {
				boarded = newBoarding
			}
		}
	}
}

// positionsFrom returns the route-position sequence to walk starting at
// entryPos: ascending to the last position for forward search,
// descending to zero for reverse search.
func (s *RoundScanner) positionsFrom(entryPos int32, count int32) []int32 {
	var out []int32
	if s.dir.Forward() {
		for p := entryPos; p < count; p++ {
			out = append(out, p)
		}
	} else {
		for p := entryPos; p >= 0; p-- {
			out = append(out, p)
		}
	}
	return out
}

// boardSeconds/alightSeconds pick the field a rider boards/alights on
// for this direction: forward search boards on departure and alights
// on arrival; reverse search does the mirror image, since it walks
// time backward from the destination.
func (s *RoundScanner) boardSeconds(st timetable.StopTime) int32 {
	if s.dir.Forward() {
		return st.DepartureS
	}
	return st.ArrivalS
}

func (s *RoundScanner) alightSeconds(st timetable.StopTime) int32 {
	if s.dir.Forward() {
		return st.ArrivalS
	}
	return st.DepartureS
}

// instantAt turns a stop-time's (possibly >= 86400 or negative,
// past-midnight) seconds-of-day figure into a real DateTime relative to
// anchorDate, the service date of the stop-time at route-position 0 of
// the seconds-of-day scale.
func (s *RoundScanner) instantAt(anchorDate int32, seconds int32) DateTime {
	return FromAnchor(anchorDate, seconds)
}

// alightingAllowed reports whether the stop-time at pos on trip permits
// setting a rider down: DropOffAllowed for forward search, since a
// forward rider alights there, or PickUpAllowed for reverse search,
// since a reverse rider is really boarding there when walked backward
// in time (spec.md §4.4; ground truth
// original_source/source/routing/raptor.cpp:492,591).
func (s *RoundScanner) alightingAllowed(trip TripIdx, pos int32) bool {
	st := s.tt.StopTimes.StopTimeAt(trip, pos)
	if s.dir.Forward() {
		return st.DropOffAllowed
	}
	return st.PickUpAllowed
}

// excludedByZone reports whether boarding at boardedAtPos and alighting
// at pos both fall in the same non-default local traffic zone, which
// spec.md §4.4 forbids (a same-zone hop is not a valid vehicle leg).
func (s *RoundScanner) excludedByZone(trip TripIdx, boardedAtPos, pos int32) bool {
	boardZone := s.tt.StopTimes.StopTimeAt(trip, boardedAtPos).LocalTrafficZone
	alightZone := s.tt.StopTimes.StopTimeAt(trip, pos).LocalTrafficZone
	if boardZone == timetable.UnsetZone || alightZone == timetable.UnsetZone {
		return false
	}
	return boardZone == alightZone
}

// improves reports whether candidate is worth writing to L[k][rp]:
// spec.md §4.4's `bound = global_pruning ? destination_tracker.best :
// B[rp]` compares against the destination tracker's bound only when
// globalPruning is set; otherwise the route-stop's own current best is
// the only thing candidate must beat, since no destination bound is
// trustworthy yet (the forward upper-bound pass of spec.md §4.6 step 3
// runs with globalPruning false for exactly this reason).
func (s *RoundScanner) improves(store *LabelStore, tracker *DestinationTracker, k int, rp RoutePointIdx, candidate DateTime, globalPruning bool) bool {
	cur := store.Get(k, rp)
	if cur.Kind != KindUninitialized && !s.dir.Better(candidate, cur.Instant(s.dir)) {
		return false
	}
	if globalPruning && tracker != nil && tracker.Prune(candidate) {
		return false
	}
	return true
}

// write records a newly improved label at rp and, per spec.md §4.2's
// offer contract, marks rp/sp(rp) for the next route scan only if the
// destination tracker did not consume it (ground truth
// original_source/source/routing/raptor.cpp:493-496's
// `if(!raptor.b_dest.ajouter_best(...)) { mark... }`): a label the
// tracker already absorbed as an improved destination bound needs no
// further propagation.
func (s *RoundScanner) write(store *LabelStore, tracker *DestinationTracker, k int, rp RoutePointIdx, instant DateTime, kind LabelKind, pred RoutePointIdx, st StopTimeIdx) {
	l := Label{Predecessor: pred, StopTime: st, Kind: kind}
	if s.dir.Forward() {
		l.Arrival = instant
	} else {
		l.Departure = instant
	}
	store.Set(k, rp, l)
	store.UpdateBest(k, rp, l)
	consumed := tracker != nil && tracker.Consider(s.tt.StopOf(rp), instant)
	if !consumed {
		store.MarkRP(rp)
		store.MarkSP(s.tt.StopOf(rp))
	}
}

// tryBoard looks for a trip at route-position pos strictly better than
// the one already boarded (or any trip at all, if none is boarded yet)
// that can be caught no earlier (forward) / no later (reverse) than
// boardInstant, per spec.md §4.4's re-binding rule.
func (s *RoundScanner) tryBoard(route RouteIdx, pos int32, rp RoutePointIdx, boardInstant DateTime, current *boarding) (*boarding, bool) {
	trips := s.tt.StopTimes.TripsForRoute(route)
	if len(trips) == 0 {
		return nil, false
	}

	idx, ok := s.searchTrips(trips, pos, boardInstant.Sec)
	if !ok {
		return nil, false
	}
	candidate := trips[idx]
	candSt := s.tt.StopTimes.StopTimeAt(candidate, pos)
	candSeconds := s.boardSeconds(candSt)

	if current != nil {
		curSt := s.tt.StopTimes.StopTimeAt(current.trip, pos)
		curSeconds := s.boardSeconds(curSt)
		if s.dir.Forward() && candSeconds >= curSeconds {
			return nil, false
		}
		if !s.dir.Forward() && candSeconds <= curSeconds {
			return nil, false
		}
	}

	anchor := boardInstant.Date - candSeconds/secondsPerDay
	return &boarding{trip: candidate, pos: pos, rp: rp, anchorDate: anchor}, true
}

// searchTrips binary searches trips (sorted ascending by first-stop
// departure, and by the FIFO assumption also ascending at pos) for the
// earliest trip boardable at or after secOfDay (forward) or the latest
// trip boardable at or before secOfDay (reverse).
func (s *RoundScanner) searchTrips(trips []TripIdx, pos int32, secOfDay int32) (int, bool) {
	instantAt := func(i int) int32 {
		return s.boardSeconds(s.tt.StopTimes.StopTimeAt(trips[i], pos))
	}

	if s.dir.Forward() {
		lo, hi := 0, len(trips)
		for lo < hi {
			mid := (lo + hi) / 2
			if instantAt(mid) < secOfDay {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		if lo == len(trips) {
			return 0, false
		}
		return lo, true
	}

	lo, hi := -1, len(trips)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if instantAt(mid) > secOfDay {
			hi = mid - 1
		} else {
			lo = mid
		}
	}
	if lo < 0 {
		return 0, false
	}
	return lo, true
}

// previousRoundLabel returns the best-so-far label at rp from strictly
// before round k, used as the boarding instant so a route-stop only
// boards using a label reached with fewer trips than round k's own
// scan is producing (spec.md §4.2 round semantics).
func previousRoundLabel(store *LabelStore, k int, rp RoutePointIdx) Label {
	if k == 0 {
		return UninitializedLabel
	}
	return store.Get(k-1, rp)
}
