// Package geoindex expands geographic queries — a named stop-area code
// or a raw (lat, lon) — into the stop-point sets and access/egress
// durations the RAPTOR query driver needs, per spec.md §4.6 step 1's
// "out of scope, external collaborator" boundary. It is built on the
// teacher's rtree/S2 primitives (pkg/spatialindex, pkg/geo), repointed
// from OSM graph edges to transit stop-points.
package geoindex

import (
	"sort"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
	"github.com/lintang-b-s/raptorx/pkg/geo"
	"github.com/lintang-b-s/raptorx/pkg/raptor"
	"github.com/lintang-b-s/raptorx/pkg/spatialindex"
	"github.com/lintang-b-s/raptorx/pkg/timetable"
	"go.uber.org/zap"
)

// s2CoarseFilterThreshold is the stop-point count above which
// StopIndex prefilters candidates through an S2 cell-covering lookup
// before falling back to the exact rtree radius search, avoiding a
// haversine check against every stop in the bounding box on very large
// feeds.
const s2CoarseFilterThreshold = 20000

// s2CellLevel is the S2 cell level used to bucket stop-points for the
// coarse filter; level 13 cells are roughly 1.3km wide, comfortably
// larger than a typical walking-access radius.
const s2CellLevel = 13

// Nearby is one candidate stop-point found by a radius search.
type Nearby struct {
	Stop           timetable.StopPointIdx
	DistanceMeters float64
}

// StopIndex answers "which stops are within walking distance of this
// point" and "which stops belong to this named stop-area", the two
// forms of origin/destination expansion spec.md §4.6 step 1 requires.
type StopIndex struct {
	tt   *timetable.Timetable
	tree *spatialindex.Rtree

	cellBuckets map[s2.CellID][]timetable.StopPointIdx
}

// NewStopIndex builds the spatial index over every stop-point in tt.
func NewStopIndex(tt *timetable.Timetable, log *zap.Logger) *StopIndex {
	idx := &StopIndex{tt: tt, tree: spatialindex.NewRtree()}

	// A generous 5km bounding box comfortably covers any realistic
	// pedestrian access/egress radius query against this index.
	idx.tree.Build(tt.NumStopPoints(), func(yield func(index int, lat, lon float64)) {
		for i, sp := range tt.StopPoints {
			yield(i, sp.Lat, sp.Lon)
		}
	}, 5.0, log)

	if tt.NumStopPoints() > s2CoarseFilterThreshold {
		idx.cellBuckets = make(map[s2.CellID][]timetable.StopPointIdx)
		for i, sp := range tt.StopPoints {
			cell := s2.CellIDFromLatLng(s2.LatLngFromDegrees(sp.Lat, sp.Lon)).Parent(s2CellLevel)
			idx.cellBuckets[cell] = append(idx.cellBuckets[cell], timetable.StopPointIdx(i))
		}
		log.Info("built S2 coarse-filter buckets for large feed", zap.Int("cells", len(idx.cellBuckets)))
	}

	return idx
}

// StopArea returns the stop-points belonging to a named stop-area,
// unmodified from the timetable's own lookup.
func (idx *StopIndex) StopArea(externalCode string) ([]timetable.StopPointIdx, error) {
	stops := idx.tt.StopArea(externalCode)
	if len(stops) == 0 {
		return nil, raptor.ErrUnknownStopArea
	}
	return stops, nil
}

// NearbyStops returns every stop-point within radiusMeters of (lat,
// lon), sorted by ascending distance.
func (idx *StopIndex) NearbyStops(lat, lon, radiusMeters float64) []Nearby {
	radiusKM := radiusMeters / 1000.0

	var candidates []spatialindex.StopEntry
	if idx.cellBuckets != nil {
		candidates = idx.coarseCandidates(lat, lon, radiusKM)
	} else {
		candidates = idx.tree.SearchWithinRadius(lat, lon, radiusKM, 0)
	}

	out := make([]Nearby, 0, len(candidates))
	for _, c := range candidates {
		distKM := geo.CalculateHaversineDistance(lat, lon, c.Lat, c.Lon)
		if distKM*1000 <= radiusMeters {
			out = append(out, Nearby{Stop: timetable.StopPointIdx(c.Index), DistanceMeters: distKM * 1000})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DistanceMeters < out[j].DistanceMeters })
	return out
}

// coarseCandidates uses an S2 cap covering to shortlist which stops
// even need a haversine check, for feeds large enough that a full rtree
// bounding-box scan would return too many false positives.
func (idx *StopIndex) coarseCandidates(lat, lon, radiusKM float64) []spatialindex.StopEntry {
	center := s2.PointFromLatLng(s2.LatLngFromDegrees(lat, lon))
	cap := s2.CapFromCenterAngle(center, s1.Angle(radiusKM/geo.EarthRadiusKM))
	coverer := &s2.RegionCoverer{MaxLevel: s2CellLevel, MinLevel: s2CellLevel, MaxCells: 32}
	covering := coverer.Covering(cap)

	seen := make(map[timetable.StopPointIdx]bool)
	var out []spatialindex.StopEntry
	for _, cell := range covering {
		for _, sp := range idx.cellBuckets[cell] {
			if seen[sp] {
				continue
			}
			seen[sp] = true
			stop := idx.tt.StopPoints[sp]
			out = append(out, spatialindex.StopEntry{Index: int(sp), Lat: stop.Lat, Lon: stop.Lon})
		}
	}
	return out
}

// OriginOffers converts a radius search around the rider's real origin
// into raptor.OriginOffer values: each stop is reached at the requested
// departure plus the access walk's duration at raptor.WalkingSpeedMPS.
func OriginOffers(nearby []Nearby, departure raptor.DateTime) []raptor.OriginOffer {
	offers := make([]raptor.OriginOffer, len(nearby))
	for i, n := range nearby {
		accessSeconds := int(n.DistanceMeters / raptor.WalkingSpeedMPS)
		offers[i] = raptor.OriginOffer{Stop: n.Stop, Instant: departure.Add(accessSeconds)}
	}
	return offers
}

// DestinationOffers converts a radius search around the rider's real
// destination into raptor.DestinationOffer values for the destination
// tracker.
func DestinationOffers(nearby []Nearby) []raptor.DestinationOffer {
	offers := make([]raptor.DestinationOffer, len(nearby))
	for i, n := range nearby {
		offers[i] = raptor.DestinationOffer{Stop: n.Stop, EgressMeters: n.DistanceMeters}
	}
	return offers
}
