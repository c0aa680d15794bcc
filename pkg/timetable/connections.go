package timetable

// ConnectionTable is the forward or backward route-point connection
// table of spec.md §4.3/§6: for each route-point, its outgoing (or, for
// the backward table, incoming) scheduled connections.
type ConnectionTable struct {
	entries []Connection
	offsets []int32 // len = numRoutePoints+1
}

type ConnectionTableBuilder struct {
	perRP [][]Connection
}

func NewConnectionTableBuilder(numRoutePoints int) *ConnectionTableBuilder {
	return &ConnectionTableBuilder{perRP: make([][]Connection, numRoutePoints)}
}

func (b *ConnectionTableBuilder) Add(from RoutePointIdx, c Connection) {
	b.perRP[from] = append(b.perRP[from], c)
}

func (b *ConnectionTableBuilder) Build() *ConnectionTable {
	entries, offsets := buildCSR[int32](b.perRP)
	return &ConnectionTable{entries: entries, offsets: offsets}
}

// ConnectionsFrom returns route-point rp's outgoing (or incoming, for a
// backward table) connections.
func (t *ConnectionTable) ConnectionsFrom(rp RoutePointIdx) []Connection {
	first := t.offsets[rp]
	last := t.offsets[rp+1]
	return t.entries[first:last]
}
