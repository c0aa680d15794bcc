package timetable

// RoutePointTable stores route-stops in Compressed Row Storage layout:
// RouteStops holds every route's stops back to back, in route-position
// order, and RouteOffsets gives the (first, count) slice for each
// route. This mirrors the teacher's compressed_sparse_row.go CRS
// documentation, specialized here to a single fixed "row length per
// route" instead of a general sparse matrix — routes never gain or
// lose stops after the table is built.
type RoutePointTable struct {
	RouteStops   []RoutePoint
	routeOffsets []int32 // len = numRoutes+1; routeOffsets[r+1]-routeOffsets[r] gives the route's stop count
}

func NewRoutePointTable(numRoutes int) *RoutePointTableBuilder {
	return &RoutePointTableBuilder{
		perRoute: make([][]RoutePoint, numRoutes),
	}
}

// RoutePointTableBuilder accumulates route-stops per route before the
// CSR layout is frozen with Build.
type RoutePointTableBuilder struct {
	perRoute [][]RoutePoint
}

// AddStop appends stop to the end of route's stop sequence. The
// resulting RoutePointIdx is only known once Build lays every route out
// contiguously; look it up afterwards with RoutePointAt.
func (b *RoutePointTableBuilder) AddStop(route RouteIdx, stop StopPointIdx) {
	pos := int32(len(b.perRoute[route]))
	b.perRoute[route] = append(b.perRoute[route], RoutePoint{Route: route, Position: pos, Stop: stop})
}

func (b *RoutePointTableBuilder) Build() *RoutePointTable {
	flat, offsets := buildCSR[int32](b.perRoute)
	return &RoutePointTable{RouteStops: flat, routeOffsets: offsets}
}

// NumRoutes returns the number of routes in the table.
func (t *RoutePointTable) NumRoutes() int {
	return len(t.routeOffsets) - 1
}

// NumRoutePoints returns the total number of route-stops across every
// route — the dense index space size for RoutePointIdx.
func (t *RoutePointTable) NumRoutePoints() int {
	return len(t.RouteStops)
}

// RouteSlice returns the [first, first+count) range, in the dense
// RoutePointIdx space, of the given route's stops, in ascending
// position order.
func (t *RoutePointTable) RouteSlice(r RouteIdx) (first, count int32) {
	first = t.routeOffsets[r]
	count = t.routeOffsets[r+1] - t.routeOffsets[r]
	return
}

// RoutePointAt returns the RoutePointIdx of route r's stop at position
// pos (0-based).
func (t *RoutePointTable) RoutePointAt(r RouteIdx, pos int32) RoutePointIdx {
	return RoutePointIdx(t.routeOffsets[r] + pos)
}

// Get returns the RoutePoint record for a dense RoutePointIdx.
func (t *RoutePointTable) Get(rp RoutePointIdx) RoutePoint {
	return t.RouteStops[rp]
}
