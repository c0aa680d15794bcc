package raptor

import "errors"

// The core never returns an error to mean "no itinerary found" — that
// is success with an empty result list (spec.md §7). Errors are
// reserved for precondition violations at the boundary.
var (
	// ErrNilTimetable is returned when a QueryDriver or Session is
	// constructed against a nil *timetable.Timetable.
	ErrNilTimetable = errors.New("raptor: nil timetable")

	// ErrInvalidIndex reports a StopPointIdx, RouteIdx or RoutePointIdx
	// outside the timetable's dense index space. No function in this
	// package returns it: the query methods do not check the indices
	// they are given.
	ErrInvalidIndex = errors.New("raptor: index out of range")

	// ErrUnknownStopArea is returned when a query names an origin or
	// destination stop-area with no matching stop-points.
	ErrUnknownStopArea = errors.New("raptor: unknown stop area")
)
