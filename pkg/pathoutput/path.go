// Package pathoutput turns a raptor.Path — the core's internal label
// chain — into the wire-shaped result spec.md §6 promises callers:
// ordered PathItems typed public_transport/walking/extension/guarantee,
// each carrying its stop-point and time lists, plus the aggregate
// duration/nb_changes/percent_visited fields. This is the "result
// serialization" spec.md §1 explicitly places OUT OF SCOPE for the
// core, so it lives in its own package consuming raptor's output types
// read-only.
package pathoutput

import (
	"github.com/lintang-b-s/raptorx/pkg/metrics"
	"github.com/lintang-b-s/raptorx/pkg/raptor"
	"github.com/lintang-b-s/raptorx/pkg/timetable"
	"github.com/twpayne/go-polyline"
)

// ItemType names the four leg flavors spec.md §6 defines.
type ItemType string

const (
	ItemPublicTransport ItemType = "public_transport"
	ItemWalking         ItemType = "walking"
	ItemExtension       ItemType = "extension"
	ItemGuarantee       ItemType = "guarantee"
)

// PathItem is the wire-shaped leg of an itinerary.
type PathItem struct {
	Type       ItemType          `json:"type"`
	StopPoints []string          `json:"stop_points"`
	Arrivals   []raptor.DateTime `json:"arrivals"`
	Departures []raptor.DateTime `json:"departures"`
	VJIdx      *int32            `json:"vj_idx,omitempty"`
	Polyline   string            `json:"polyline,omitempty"`
}

// Path is the wire-shaped itinerary: an ordered list of legs plus the
// aggregate fields spec.md §6/§4.7 defines.
type Path struct {
	Items          []PathItem `json:"items"`
	DurationS      int64      `json:"duration_s"`
	NbChanges      int        `json:"nb_changes"`
	PercentVisited float64    `json:"percent_visited"`
}

// itemType maps a raptor.LabelKind to its wire ItemType.
func itemType(k raptor.LabelKind) ItemType {
	switch k {
	case raptor.KindVehicle:
		return ItemPublicTransport
	case raptor.KindTransferExtension:
		return ItemExtension
	case raptor.KindTransferGuarantee:
		return ItemGuarantee
	default:
		return ItemWalking
	}
}

// Build converts one raptor.Path into its wire shape. tt supplies
// stop-point external codes and coordinates for polyline encoding;
// initializedBestLabels/totalStopPoints feed spec.md §4.7's diagnostic
// percent_visited field.
func Build(tt *timetable.Timetable, p raptor.Path, initializedBestLabels, totalStopPoints int) Path {
	out := Path{PercentVisited: metrics.PercentVisited(initializedBestLabels, totalStopPoints)}

	var legs []raptor.PathItem
	for _, it := range p.Items {
		if it.Kind == raptor.KindOrigin {
			continue
		}
		legs = append(legs, it)
	}
	if len(legs) == 0 {
		return out
	}

	out.Items = make([]PathItem, len(legs))
	for i, leg := range legs {
		out.Items[i] = buildItem(tt, leg)
		// A walking leg landing on the same route-point as its neighbor
		// is the destination's egress tail (or, in a reverse-anchored
		// path, head) raptor.QueryDriver appends for spec.md §8
		// Invariant 4, not a genuine interchange: it never left the
		// route-point it reports, so it does not count as a change.
		if leg.Kind.IsTransfer() && itemType(leg.Kind) == ItemWalking && !sharesRoutePointWithNeighbor(legs, i) {
			out.NbChanges++
		}
	}

	first := out.Items[0]
	last := out.Items[len(out.Items)-1]
	if len(first.Departures) > 0 && len(last.Arrivals) > 0 {
		out.DurationS = int64(secondsBetween(first.Departures[0], last.Arrivals[len(last.Arrivals)-1]))
	}
	return out
}

func buildItem(tt *timetable.Timetable, leg raptor.PathItem) PathItem {
	item := PathItem{Type: itemType(leg.Kind)}

	if leg.Kind == raptor.KindVehicle && len(leg.Stops) > 0 {
		item.StopPoints = make([]string, len(leg.Stops))
		item.Arrivals = make([]raptor.DateTime, len(leg.Stops))
		item.Departures = make([]raptor.DateTime, len(leg.Stops))
		var coords [][]float64
		for i, sv := range leg.Stops {
			sp := tt.StopPoints[sv.Stop]
			item.StopPoints[i] = sp.ExternalCode
			item.Arrivals[i] = sv.Arrival
			item.Departures[i] = sv.Departure
			coords = append(coords, []float64{sp.Lat, sp.Lon})
		}
		vj := int32(leg.Trip)
		item.VJIdx = &vj
		item.Polyline = string(polyline.EncodeCoords(coords))
		return item
	}

	// Transfer legs (walking/extension/guarantee): only this leg's own
	// stop-point is listed, with the leg's one recorded instant as both
	// its arrival and its departure per spec.md §4.3 (the
	// transfer's departure and arrival coincide in the label; the wait
	// absorbed beforehand is visible as the gap to the previous leg's
	// arrival instead).
	sp := tt.StopOf(leg.RoutePoint)
	item.StopPoints = []string{tt.StopPoints[sp].ExternalCode}
	item.Arrivals = []raptor.DateTime{leg.Instant}
	item.Departures = []raptor.DateTime{leg.Instant}
	return item
}

// sharesRoutePointWithNeighbor reports whether legs[i] lands on the
// same route-point as the leg immediately before or after it.
func sharesRoutePointWithNeighbor(legs []raptor.PathItem, i int) bool {
	if i > 0 && legs[i].RoutePoint == legs[i-1].RoutePoint {
		return true
	}
	if i < len(legs)-1 && legs[i].RoutePoint == legs[i+1].RoutePoint {
		return true
	}
	return false
}

func secondsBetween(a, b raptor.DateTime) int {
	return int(b.Date-a.Date)*86400 + int(b.Sec-a.Sec)
}
