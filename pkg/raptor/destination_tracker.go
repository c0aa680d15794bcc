package raptor

// DestinationTracker implements the global pruning bound of spec.md §4.6
// / §9 Open Question 1: for every stop-point reachable within walking
// distance of the actual destination, an egress duration in seconds is
// precomputed as distance / WalkingSpeedMPS. Whenever a route-stop
// label improves, the tracker projects it forward (or backward, in
// reverse search) by that stop's egress duration and, if the projected
// instant improves on the current best bound, remembers it. Any label
// that cannot possibly beat the bound even after crediting it with the
// best remaining egress is dead and can be skipped without touching the
// per-route-stop label arrays.
//
// Per spec.md §9 Open Question 1, this tracker intentionally does NOT
// reproduce the original implementation's reported units confusion
// between meters and the walking-speed constant: distances here are
// always meters, converted once via WalkingSpeedMPS, consistently.
type DestinationTracker struct {
	dir Direction

	// egressSeconds[sp] is the walking duration from stop-point sp to
	// the query's actual destination, or -1 if sp cannot reach it on
	// foot at all.
	egressSeconds []int32

	bound DateTime
}

func NewDestinationTracker(dir Direction, numStopPoints int) *DestinationTracker {
	t := &DestinationTracker{
		dir:           dir,
		egressSeconds: make([]int32, numStopPoints),
		bound:         dir.Worst(),
	}
	for i := range t.egressSeconds {
		t.egressSeconds[i] = -1
	}
	return t
}

// Reset clears the egress table and bound for reuse across queries.
func (t *DestinationTracker) Reset() {
	for i := range t.egressSeconds {
		t.egressSeconds[i] = -1
	}
	t.bound = t.dir.Worst()
}

// SetEgress records that stop-point sp can walk to the destination in
// distanceMeters, converting to seconds via WalkingSpeedMPS.
func (t *DestinationTracker) SetEgress(sp StopPointIdx, distanceMeters float64) {
	t.egressSeconds[sp] = int32(distanceMeters / WalkingSpeedMPS)
}

// HasEgress reports whether sp has a recorded walking egress to the
// destination.
func (t *DestinationTracker) HasEgress(sp StopPointIdx) bool {
	return t.egressSeconds[sp] >= 0
}

// Consider projects a newly improved label at stop sp forward (or
// backward) by sp's egress duration, updating the global bound if it
// improves. Returns whether the bound improved.
func (t *DestinationTracker) Consider(sp StopPointIdx, instant DateTime) bool {
	egress := t.egressSeconds[sp]
	if egress < 0 {
		return false
	}
	projected := t.dir.Combine(instant, int(egress))
	if t.bound.Equal(t.dir.Worst()) || t.dir.Better(projected, t.bound) {
		t.bound = projected
		return true
	}
	return false
}

// Bound returns the current best known instant at the actual
// destination, or the direction's Worst() sentinel if no candidate has
// been found yet.
func (t *DestinationTracker) Bound() DateTime {
	return t.bound
}

// Prune reports whether instant can be discarded because even in the
// best case (crediting it with the target's own egress, already baked
// into Bound via Consider) it cannot beat the current bound. A label
// exactly matching the bound is not pruned, mirroring spec.md's
// equality-write-on-first-discovery rule elsewhere in the core.
func (t *DestinationTracker) Prune(instant DateTime) bool {
	if t.bound == t.dir.Worst() {
		return false
	}
	return !t.dir.Better(instant, t.bound) && !instant.Equal(t.bound)
}
