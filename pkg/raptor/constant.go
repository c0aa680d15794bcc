package raptor

import (
	"math"

	"github.com/lintang-b-s/raptorx/pkg/timetable"
)

// The dense index spaces are owned by pkg/timetable (spec.md §3); raptor
// aliases them so the core reads the same as the spec's vocabulary
// without introducing an import cycle back from timetable into raptor.
type (
	StopPointIdx  = timetable.StopPointIdx
	RouteIdx      = timetable.RouteIdx
	RoutePointIdx = timetable.RoutePointIdx
	TripIdx       = timetable.TripIdx
	StopTimeIdx   = timetable.StopTimeIdx
)

const (
	InvalidStopPoint  = timetable.InvalidStopPoint
	InvalidRoute      = timetable.InvalidRoute
	InvalidRoutePoint = timetable.InvalidRoutePoint
	InvalidTrip       = timetable.InvalidTrip
	InvalidStopTime   = timetable.InvalidStopTime

	// UnsetZone is the sentinel local_traffic_zone meaning "no zone",
	// which never triggers the zone-exclusion rule in the round scanner.
	UnsetZone = timetable.UnsetZone
)

const (
	// WalkingSpeedMPS is the effective pedestrian speed used to convert
	// access/egress/foot-path distances (meters) into durations
	// (seconds): distance / WalkingSpeedMPS.
	WalkingSpeedMPS = 1.38

	// MinTransferSeconds is the constant minimum dwell enforced between
	// two route-stops at the same physical stop-point (spec.md §4.3a).
	MinTransferSeconds = 120

	// MaxRounds bounds the round driver as a safety margin on top of
	// natural fixed-point convergence (spec.md §4.5); urban networks
	// converge within about 8 rounds.
	MaxRounds = 32
)

// sentinelMinDay / sentinelMaxDay bound the julian-day component of a DateTime
// sentinel far enough from any real query date that comparisons never
// confuse a sentinel with a real instant.
const (
	sentinelMinDay = math.MinInt32
	sentinelMaxDay = math.MaxInt32
)
