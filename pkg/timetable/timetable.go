package timetable

import "time"

// Timetable aggregates every read-only table the RAPTOR core consumes.
// It is built once (see gtfsload.go or the manual Builder below) and
// then shared, read-only, across every search session (spec.md §5).
type Timetable struct {
	StopPoints []StopPoint
	Routes     []Route
	Calendars  []Calendar

	RoutePoints         *RoutePointTable
	StopTimes           *StopTimeTable
	FootPaths           *FootPathTable
	ConnectionsForward  *ConnectionTable
	ConnectionsBackward *ConnectionTable

	// Epoch is midnight of dense day index 0, in UTC. Builders that
	// don't care about wall-clock conversion (tests constructing a
	// Timetable by hand) leave it zero; DateFromTime is only meaningful
	// when a loader such as FromStatic has set it.
	Epoch time.Time

	stopRoutePoints [][]RoutePointIdx
	stopAreas       map[string][]StopPointIdx
}

// DateFromTime splits a wall-clock instant into the dense day index and
// seconds-of-day pair the RAPTOR core's DateTime uses, relative to
// Epoch.
func (t *Timetable) DateFromTime(at time.Time) (day int32, secondsOfDay int) {
	at = at.UTC()
	midnight := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC)
	day = int32(midnight.Sub(t.Epoch).Hours() / 24)
	secondsOfDay = at.Hour()*3600 + at.Minute()*60 + at.Second()
	return day, secondsOfDay
}

// NumStopPoints returns the dense StopPointIdx space size.
func (t *Timetable) NumStopPoints() int { return len(t.StopPoints) }

// NumRoutes returns the dense RouteIdx space size.
func (t *Timetable) NumRoutes() int { return t.RoutePoints.NumRoutes() }

// NumRoutePoints returns the dense RoutePointIdx space size.
func (t *Timetable) NumRoutePoints() int { return t.RoutePoints.NumRoutePoints() }

// RoutePointsAtStop returns every route-point located at physical stop
// sp, needed by the intra-stop transfer relaxer (spec.md §4.3a).
func (t *Timetable) RoutePointsAtStop(sp StopPointIdx) []RoutePointIdx {
	return t.stopRoutePoints[sp]
}

// StopArea returns the stop-points belonging to a named stop-area, for
// origin/destination expansion (spec.md §4.6 step 1). Unknown areas
// return nil.
func (t *Timetable) StopArea(externalCode string) []StopPointIdx {
	return t.stopAreas[externalCode]
}

// StopOf returns the physical stop-point served by a route-point.
func (t *Timetable) StopOf(rp RoutePointIdx) StopPointIdx {
	return t.RoutePoints.Get(rp).Stop
}

// RouteOf returns the route a route-point belongs to.
func (t *Timetable) RouteOf(rp RoutePointIdx) RouteIdx {
	return t.RoutePoints.Get(rp).Route
}

// Builder assembles a Timetable from in-memory fixtures (used by tests
// and by gtfsload.go once it has parsed a feed into plain structs).
type Builder struct {
	StopPoints []StopPoint
	Routes     []Route
	Calendars  []Calendar

	// Epoch is midnight of dense day index 0, set by SetEpoch; zero
	// means the caller never cares about wall-clock conversion.
	Epoch time.Time

	routePoints *RoutePointTableBuilder
	stopTimes   *StopTimeTableBuilder
	footPaths   *FootPathTableBuilder
	connFwd     *ConnectionTableBuilder
	connBwd     *ConnectionTableBuilder

	stopAreas map[string][]StopPointIdx
}

func NewBuilder(numStopPoints, numRoutes int) *Builder {
	return &Builder{
		routePoints: NewRoutePointTable(numRoutes),
		stopTimes:   NewStopTimeTableBuilder(numRoutes),
		footPaths:   NewFootPathTableBuilder(numStopPoints),
		stopAreas:   make(map[string][]StopPointIdx),
	}
}

func (b *Builder) AddStopPoint(sp StopPoint, areaCode string) StopPointIdx {
	idx := StopPointIdx(len(b.StopPoints))
	b.StopPoints = append(b.StopPoints, sp)
	if areaCode != "" {
		b.stopAreas[areaCode] = append(b.stopAreas[areaCode], idx)
	}
	return idx
}

func (b *Builder) AddRoute(r Route) RouteIdx {
	idx := RouteIdx(len(b.Routes))
	b.Routes = append(b.Routes, r)
	return idx
}

// SetEpoch records the wall-clock instant dense day index 0 denotes, so
// the built Timetable's DateFromTime can convert real timestamps into
// the core's DateTime space.
func (b *Builder) SetEpoch(epoch time.Time) {
	b.Epoch = epoch
}

func (b *Builder) AddCalendar(c Calendar) int32 {
	idx := int32(len(b.Calendars))
	b.Calendars = append(b.Calendars, c)
	return idx
}

func (b *Builder) AddRouteStop(route RouteIdx, stop StopPointIdx) {
	b.routePoints.AddStop(route, stop)
}

func (b *Builder) AddTrip(route RouteIdx, externalCode string, calendarID int32, stopTimes []StopTime) TripIdx {
	return b.stopTimes.AddTrip(route, externalCode, calendarID, stopTimes)
}

func (b *Builder) AddFootPath(from StopPointIdx, fp FootPath) {
	b.footPaths.Add(from, fp)
}

func (b *Builder) AddForwardConnection(from RoutePointIdx, c Connection) {
	b.ensureConnBuilders()
	b.connFwd.Add(from, c)
}

func (b *Builder) AddBackwardConnection(from RoutePointIdx, c Connection) {
	b.ensureConnBuilders()
	b.connBwd.Add(from, c)
}

func (b *Builder) ensureConnBuilders() {
	if b.connFwd == nil {
		n := b.routePoints.Build().NumRoutePoints()
		b.connFwd = NewConnectionTableBuilder(n)
		b.connBwd = NewConnectionTableBuilder(n)
	}
}

func (b *Builder) Build() *Timetable {
	routePoints := b.routePoints.Build()
	stopTimes := b.stopTimes.Build()
	footPaths := b.footPaths.Build()

	var connFwd, connBwd *ConnectionTable
	if b.connFwd != nil {
		connFwd = b.connFwd.Build()
		connBwd = b.connBwd.Build()
	} else {
		connFwd = NewConnectionTableBuilder(routePoints.NumRoutePoints()).Build()
		connBwd = NewConnectionTableBuilder(routePoints.NumRoutePoints()).Build()
	}

	stopRoutePoints := make([][]RoutePointIdx, len(b.StopPoints))
	for i, rp := range routePoints.RouteStops {
		stopRoutePoints[rp.Stop] = append(stopRoutePoints[rp.Stop], RoutePointIdx(i))
	}

	return &Timetable{
		StopPoints:          b.StopPoints,
		Routes:              b.Routes,
		Calendars:           b.Calendars,
		RoutePoints:         routePoints,
		StopTimes:           stopTimes,
		FootPaths:           footPaths,
		ConnectionsForward:  connFwd,
		ConnectionsBackward: connBwd,
		Epoch:               b.Epoch,
		stopRoutePoints:     stopRoutePoints,
		stopAreas:           b.stopAreas,
	}
}
