package raptor

// Direction abstracts everything that differs between a forward
// (earliest-arrival, departing-after) and reverse (latest-departure,
// arriving-before) search, per spec.md §4.1/§9: which label field is the
// "instant", how two instants compare, which one is worse, and how a
// duration combines with an instant. The round scanner, transfer
// relaxer and destination tracker are written once against this
// interface instead of being duplicated per direction.
type Direction interface {
	// Forward reports whether this is the earliest-arrival direction.
	Forward() bool

	// Worst returns the sentinel instant meaning "not yet reached":
	// DateTimeMIN for forward search, DateTimeINF for reverse search.
	Worst() DateTime

	// Better reports whether a strictly improves on b (a is later than
	// b's opposite direction... concretely: earlier for forward search,
	// later for reverse search).
	Better(a, b DateTime) bool

	// NotWorseThan reports whether a is at least as good as b in this
	// direction (a equal to b, or a better than b), i.e. whether
	// continuing to explore from a is worthwhile given a known best
	// bound b. Equivalent to !Better(b, a) but named for pruning call
	// sites.
	NotWorseThan(a, b DateTime) bool

	// Combine advances an instant by a non-negative duration in this
	// direction's sense of "forward in the search": Add for forward
	// search, Sub for reverse search.
	Combine(instant DateTime, seconds int) DateTime

	// UpdateToClock rolls instant to the next (forward) or previous
	// (reverse) occurrence of the daily clock time secondsOfDay.
	UpdateToClock(instant DateTime, secondsOfDay int) DateTime

	// StopTimeInstant extracts the instant field of a timetable
	// StopTime relevant to this direction: departure for forward
	// search (boarding), arrival for reverse search (alighting).
	StopTimeInstant(dep, arr int32) int32
}

// forwardDirection is the earliest-arrival search direction.
type forwardDirection struct{}

// reverseDirection is the latest-departure search direction.
type reverseDirection struct{}

// ForwardDirection and ReverseDirection are the two stateless Direction
// implementations; sessions hold one or the other for their lifetime.
var (
	ForwardDirection Direction = forwardDirection{}
	ReverseDirection Direction = reverseDirection{}
)

func (forwardDirection) Forward() bool     { return true }
func (forwardDirection) Worst() DateTime   { return DateTimeMIN }
func (forwardDirection) Better(a, b DateTime) bool {
	return a.Less(b)
}
func (forwardDirection) NotWorseThan(a, b DateTime) bool {
	return !b.Less(a)
}
func (forwardDirection) Combine(instant DateTime, seconds int) DateTime {
	return instant.Add(seconds)
}
func (forwardDirection) UpdateToClock(instant DateTime, secondsOfDay int) DateTime {
	return instant.Update(secondsOfDay)
}
func (forwardDirection) StopTimeInstant(dep, arr int32) int32 { return dep }

func (reverseDirection) Forward() bool   { return false }
func (reverseDirection) Worst() DateTime { return DateTimeINF }
func (reverseDirection) Better(a, b DateTime) bool {
	return b.Less(a)
}
func (reverseDirection) NotWorseThan(a, b DateTime) bool {
	return !a.Less(b)
}
func (reverseDirection) Combine(instant DateTime, seconds int) DateTime {
	return instant.Sub(seconds)
}
func (reverseDirection) UpdateToClock(instant DateTime, secondsOfDay int) DateTime {
	return instant.UpdateReverse(secondsOfDay)
}
func (reverseDirection) StopTimeInstant(dep, arr int32) int32 { return arr }
