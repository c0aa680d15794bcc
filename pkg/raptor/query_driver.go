package raptor

import (
	"github.com/lintang-b-s/raptorx/pkg/concurrent"
	"github.com/lintang-b-s/raptorx/pkg/timetable"
	"go.uber.org/zap"
)

// DestinationOffer is one stop-point within walking distance of the
// query's actual destination, in meters, per spec.md §4.6 step 1.
type DestinationOffer struct {
	Stop         StopPointIdx
	EgressMeters float64
}

// Forbidden excludes a line, route or mode from routes_valides for one
// query, per spec.md §4.6 step 2's "minus any user-forbidden lines".
type Forbidden struct {
	Category string // "line", "route", or "mode"
	Code     string
}

// Query is one journey request: an already geo-expanded set of
// candidate origin and destination stop-points (pkg/geoindex is
// responsible for that expansion; the core only ever sees stop-points
// and durations, per spec.md's external-collaborator boundary), a
// service day, and any line/route/mode exclusions.
type Query struct {
	Origins      []OriginOffer
	Destinations []DestinationOffer
	Forbidden    []Forbidden
	Day          int32
}

// Path is one Pareto-optimal itinerary: increasing round (trip count)
// paired with the arrival/departure instant it achieves, plus the
// label chain to reconstruct it.
type Path struct {
	Round   int
	Instant DateTime
	Items   []PathItem
}

// QueryDriver is the five-step orchestrator of spec.md §4.6: expand
// (done by the caller/pkg/geoindex before Query is built), compute
// routes_valides, seed the destination tracker, run the round driver,
// and reconstruct the Pareto-optimal front at the destination.
type QueryDriver struct {
	tt   *timetable.Timetable
	pool *SessionPool
	log  *zap.Logger
}

func NewQueryDriver(tt *timetable.Timetable, log *zap.Logger) (*QueryDriver, error) {
	if tt == nil {
		return nil, ErrNilTimetable
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &QueryDriver{tt: tt, pool: NewSessionPool(tt), log: log}, nil
}

// Compute runs a single earliest-arrival search (spec.md §6 `compute`).
func (d *QueryDriver) Compute(q Query) []Path {
	session := d.pool.GetForward()
	defer d.pool.PutForward(session)
	return d.run(session, ForwardDirection, q)
}

// ComputeWithStats runs the same search as Compute but also reports how
// many of the timetable's stop-points have an initialized best label at
// one of their route-points (including a destination whose label the
// destination tracker consumed without marking it), the numerator
// callers need for spec.md §4.7's percent_visited diagnostic field.
func (d *QueryDriver) ComputeWithStats(q Query) ([]Path, int, int) {
	session := d.pool.GetForward()
	defer d.pool.PutForward(session)
	paths := d.run(session, ForwardDirection, q)
	visited := 0
	for sp := 0; sp < d.tt.NumStopPoints(); sp++ {
		for _, rp := range d.tt.RoutePointsAtStop(StopPointIdx(sp)) {
			if session.Store.Best(rp).Kind != KindUninitialized {
				visited++
				break
			}
		}
	}
	return paths, visited, d.tt.NumStopPoints()
}

// ComputeReverse runs a single latest-departure search anchored on the
// destination (spec.md §6 `compute_reverse_all`), with Origins/
// Destinations swapped by the caller (the destination becomes the
// search's origin in reverse-search terms).
func (d *QueryDriver) ComputeReverse(q Query) []Path {
	session := d.pool.GetBackward()
	defer d.pool.PutBackward(session)
	return d.run(session, ReverseDirection, q)
}

// ComputeProfile runs Compute once per departure in departures,
// parallelized across a worker pool sized workers wide (spec.md §6
// `compute_all(..., list<dt>, bound)`), returning results in the same
// order as departures regardless of completion order. bound caps how
// many Pareto-optimal paths are kept per departure; 0 means unbounded.
func (d *QueryDriver) ComputeProfile(base Query, departures []DateTime, bound int, workers int) [][]Path {
	if workers <= 0 {
		workers = 4
	}

	type job struct {
		index     int
		departure DateTime
	}
	type result struct {
		index int
		paths []Path
	}

	pool := concurrent.NewWorkerPool[job, result](workers, len(departures))
	pool.Start(func(j job) result {
		q := base
		q.Origins = withDeparture(base.Origins, j.departure)
		paths := d.Compute(q)
		if bound > 0 && len(paths) > bound {
			paths = paths[:bound]
		}
		return result{index: j.index, paths: paths}
	})

	for i, dep := range departures {
		pool.AddJob(job{index: i, departure: dep})
	}
	pool.Close()

	pool.Wait()
	out := make([][]Path, len(departures))
	for r := range pool.CollectResults() {
		out[r.index] = r.paths
	}
	return out
}

// withDeparture reuses origins' stop-points with departure substituted
// for the instant, since a profile query varies only the departure time
// across an otherwise identical origin set.
func withDeparture(origins []OriginOffer, departure DateTime) []OriginOffer {
	out := make([]OriginOffer, len(origins))
	for i, o := range origins {
		out[i] = OriginOffer{Stop: o.Stop, Instant: departure}
	}
	return out
}

// run implements the two-phase algorithm of spec.md §4.6 steps 3-5:
// first a pass in dir with global_pruning disabled to establish an
// upper bound at the destination, then, per surviving destination
// candidate, a reverse-anchored pass that tightens the origin-side
// departure (or, for a reverse-anchored query, a forward-anchored pass
// that tightens the destination-side arrival) before reconstruction.
func (d *QueryDriver) run(session *Session, dir Direction, q Query) []Path {
	valid := d.routesValid(q)
	session.Scanner.SetValidRoutes(valid)

	for _, dst := range q.Destinations {
		session.Tracker.SetEgress(dst.Stop, dst.EgressMeters)
	}

	driver := NewRoundDriver(dir)
	rounds := driver.Run(session, d.tt, q.Origins, false)

	d.log.Debug("query complete", zap.Int("rounds", rounds), zap.Bool("forward", dir.Forward()))

	upperBound := d.paretoFront(session, dir, q.Destinations, rounds)
	refined := d.refine(dir, q, upperBound)
	return d.applyEgress(dir, q.Destinations, refined)
}

// refine runs step 4 of spec.md §4.6: for each destination candidate
// the upper-bound pass found, anchor a search in the opposite direction
// at that exact instant, seeded with the original query's origins as
// the anchored search's own destinations, to minimize the slack between
// the true origin and the journey's first boarding. The anchored
// search's Pareto-best result replaces the candidate's items; its round
// and instant (the values the upper-bound pass already established) are
// kept as-is, since refine only tightens the journey's interior, not
// its headline arrival/departure.
func (d *QueryDriver) refine(dir Direction, q Query, candidates []Path) []Path {
	if len(candidates) == 0 {
		return candidates
	}

	refineDir, getSession, putSession := d.opposite(dir)
	valid := d.routesValid(q)

	anchorDestinations := make([]DestinationOffer, len(q.Origins))
	for i, o := range q.Origins {
		anchorDestinations[i] = DestinationOffer{Stop: o.Stop, EgressMeters: 0}
	}

	refined := make([]Path, len(candidates))
	for i, cand := range candidates {
		if len(cand.Items) == 0 {
			refined[i] = cand
			continue
		}

		// The computed (searched-for) end of the journey is what refine
		// anchors on; the end seeded from q.Origins's fixed instant is
		// left alone. path_reconstructor.Reconstruct only reverses a
		// forward search's walk into chronological order, so that end
		// lands last for a forward primary search but first for a
		// reverse one (fix for path_reconstructor.go's unconditional
		// reversal left the reverse case's walk order untouched).
		anchorIdx := 0
		if dir.Forward() {
			anchorIdx = len(cand.Items) - 1
		}
		anchor := cand.Items[anchorIdx]
		session := getSession()
		session.Scanner.SetValidRoutes(valid)
		for _, o := range q.Origins {
			session.Tracker.SetEgress(o.Stop, 0)
		}

		anchorOrigins := []OriginOffer{{Stop: d.tt.StopOf(anchor.RoutePoint), Instant: anchor.Instant}}
		anchorRounds := NewRoundDriver(refineDir).Run(session, d.tt, anchorOrigins, true)
		front := d.paretoFront(session, refineDir, anchorDestinations, anchorRounds)

		if len(front) == 0 {
			putSession(session)
			refined[i] = cand
			continue
		}

		best := front[len(front)-1]
		putSession(session)
		refined[i] = Path{Round: cand.Round, Instant: cand.Instant, Items: best.Items}
	}
	return refined
}

// opposite returns the search direction, session borrow and return
// functions for the refine pass's anchored search, the mirror image of
// dir (a forward upper-bound pass is refined with a reverse-anchored
// pass, per spec.md line 144's symmetric "reverse loop, then
// forward-refine" wording for reverse-anchored queries).
func (d *QueryDriver) opposite(dir Direction) (Direction, func() *Session, func(*Session)) {
	if dir.Forward() {
		return ReverseDirection, d.pool.GetBackward, d.pool.PutBackward
	}
	return ForwardDirection, d.pool.GetForward, d.pool.PutForward
}

// routesValid implements spec.md §4.6 step 2: a route is valid for this
// query when at least one of its trips runs on the query day (or, for
// trips spanning midnight, day-1) and the route is not excluded by
// Forbidden.
func (d *QueryDriver) routesValid(q Query) *Bitset {
	valid := NewBitset(d.tt.NumRoutes())
	forbiddenLines := map[string]bool{}
	forbiddenRoutes := map[string]bool{}
	forbiddenModes := map[string]bool{}
	for _, f := range q.Forbidden {
		switch f.Category {
		case "line":
			forbiddenLines[f.Code] = true
		case "route":
			forbiddenRoutes[f.Code] = true
		case "mode":
			forbiddenModes[f.Code] = true
		}
	}

	for r := 0; r < d.tt.NumRoutes(); r++ {
		route := d.tt.Routes[r]
		if forbiddenRoutes[route.ExternalCode] || forbiddenLines[route.LineCode] || forbiddenModes[route.Mode] {
			continue
		}
		for _, trip := range d.tt.StopTimes.TripsForRoute(RouteIdx(r)) {
			cal := d.tt.Calendars[d.tt.StopTimes.Trips[trip].CalendarID]
			if cal.Check2(q.Day) {
				valid.Set(r)
				break
			}
		}
	}
	return valid
}

// paretoFront collects, for every round the driver ran, the best
// instant reached at any destination stop-point's route-points, keeping
// only rounds that strictly improve on every earlier round kept —
// spec.md §4.7's Pareto-optimal set trading arrival time against
// transfer count. The returned instants are the raw route-stop labels;
// refine() anchors on these directly, so egress is applied afterward by
// applyEgress rather than here.
func (d *QueryDriver) paretoFront(session *Session, dir Direction, destinations []DestinationOffer, rounds int) []Path {
	store := session.Store
	pr := NewPathReconstructor(d.tt)

	var front []Path
	for k := 0; k <= rounds; k++ {
		best := dir.Worst()
		var bestRP RoutePointIdx = InvalidRoutePoint
		found := false
		for _, dst := range destinations {
			for _, rp := range d.tt.RoutePointsAtStop(dst.Stop) {
				l := store.Get(k, rp)
				if l.Kind == KindUninitialized {
					continue
				}
				instant := l.Instant(dir)
				if !found || dir.Better(instant, best) {
					best, bestRP, found = instant, rp, true
				}
			}
		}
		if !found {
			continue
		}
		if len(front) > 0 && !dir.Better(best, front[len(front)-1].Instant) {
			continue
		}
		front = append(front, Path{Round: k, Instant: best, Items: pr.Reconstruct(store, k, bestRP)})
	}
	return front
}

// applyEgress adds each path's destination-stop egress duration to its
// reported Instant and appends a walking leg covering it, per spec.md
// §8 Invariant 4: "the final time reported for any destination equals
// label.arrival + distance/1.38". Run after refine(), since refine
// anchors on the raw (un-egress-adjusted) route-stop label.
func (d *QueryDriver) applyEgress(dir Direction, destinations []DestinationOffer, paths []Path) []Path {
	egress := make(map[StopPointIdx]float64, len(destinations))
	for _, dst := range destinations {
		egress[dst.Stop] = dst.EgressMeters
	}

	out := make([]Path, len(paths))
	for i, p := range paths {
		if len(p.Items) == 0 {
			out[i] = p
			continue
		}
		idx := len(p.Items) - 1
		if !dir.Forward() {
			idx = 0
		}
		destRP := p.Items[idx].RoutePoint
		meters := egress[d.tt.StopOf(destRP)]
		final := withEgress(dir, p.Instant, meters)
		out[i] = Path{Round: p.Round, Instant: final, Items: appendEgressLeg(dir, destRP, final, meters, p.Items)}
	}
	return out
}

// withEgress advances (forward search) or recedes (reverse search)
// instant by distanceMeters' walking duration, converted via
// WalkingSpeedMPS the same way DestinationTracker.SetEgress does.
func withEgress(dir Direction, instant DateTime, distanceMeters float64) DateTime {
	if distanceMeters <= 0 {
		return instant
	}
	seconds := int(distanceMeters / WalkingSpeedMPS)
	return dir.Combine(instant, seconds)
}

// appendEgressLeg appends a walking PathItem covering the destination's
// egress duration at whichever end of items the destination leg
// occupies: last for a forward search (already reversed into
// chronological order by path_reconstructor.go), first for a reverse
// search (already in that order) — the same end refine()'s anchorIdx
// targets.
func appendEgressLeg(dir Direction, destRP RoutePointIdx, finalInstant DateTime, distanceMeters float64, items []PathItem) []PathItem {
	if distanceMeters <= 0 || len(items) == 0 {
		return items
	}
	leg := PathItem{RoutePoint: destRP, Instant: finalInstant, Kind: KindTransferWalk, StopTime: InvalidStopTime, Trip: InvalidTrip}
	if dir.Forward() {
		return append(items, leg)
	}
	out := make([]PathItem, len(items)+1)
	out[0] = leg
	copy(out[1:], items)
	return out
}
