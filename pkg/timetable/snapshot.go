package timetable

import (
	"bufio"
	"encoding/gob"
	"os"
	"time"

	"github.com/dsnet/compress/bzip2"
)

// snapshotDoc is the on-disk image of a Timetable. It mirrors the
// teacher's compressed_sparse_row.go WriteToFile/ReadSparseMatrixFromFile
// pair: gob takes the place of the teacher's hand-rolled
// whitespace-separated value/row/col lines, and bzip2 still does the
// actual compression. Calendar.WeekdayOf is a func value and gob
// cannot encode those, so calendars travel through calendarDoc instead
// and WeekdayOf is rebuilt from Epoch on load.
type snapshotDoc struct {
	StopPoints []StopPoint
	Routes     []Route
	Calendars  []calendarDoc
	Epoch      time.Time
	StopAreas  map[string][]StopPointIdx

	RouteStops   []RoutePoint
	RouteOffsets []int32

	Trips            []Trip
	Flat             []StopTime
	RouteTripOffsets []int32
	RouteTrips       []TripIdx

	FootEntries []FootPath
	FootOffsets []int32

	FwdEntries []Connection
	FwdOffsets []int32
	BwdEntries []Connection
	BwdOffsets []int32
}

type calendarDoc struct {
	StartDay int32
	EndDay   int32
	Weekdays uint8
	Added    []int32
	Removed  []int32
}

// SaveSnapshot writes a bzip2-compressed, gob-encoded image of t to
// filename, so a later process can skip re-fetching and re-parsing a
// GTFS feed and rebuild its Timetable straight from disk.
func (t *Timetable) SaveSnapshot(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	bz, err := bzip2.NewWriter(f, &bzip2.WriterConfig{})
	if err != nil {
		return err
	}
	defer bz.Close()

	calendars := make([]calendarDoc, len(t.Calendars))
	for i, c := range t.Calendars {
		calendars[i] = calendarDoc{
			StartDay: c.StartDay,
			EndDay:   c.EndDay,
			Weekdays: c.Weekdays,
			Added:    c.Added,
			Removed:  c.Removed,
		}
	}

	doc := snapshotDoc{
		StopPoints: t.StopPoints,
		Routes:     t.Routes,
		Calendars:  calendars,
		Epoch:      t.Epoch,
		StopAreas:  t.stopAreas,

		RouteStops:   t.RoutePoints.RouteStops,
		RouteOffsets: t.RoutePoints.routeOffsets,

		Trips:            t.StopTimes.Trips,
		Flat:             t.StopTimes.Flat,
		RouteTripOffsets: t.StopTimes.routeTripOffsets,
		RouteTrips:       t.StopTimes.routeTrips,

		FootEntries: t.FootPaths.entries,
		FootOffsets: t.FootPaths.offsets,

		FwdEntries: t.ConnectionsForward.entries,
		FwdOffsets: t.ConnectionsForward.offsets,
		BwdEntries: t.ConnectionsBackward.entries,
		BwdOffsets: t.ConnectionsBackward.offsets,
	}

	w := bufio.NewWriter(bz)
	if err := gob.NewEncoder(w).Encode(&doc); err != nil {
		return err
	}
	return w.Flush()
}

// LoadSnapshot reads back a Timetable written by SaveSnapshot.
func LoadSnapshot(filename string) (*Timetable, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bz, err := bzip2.NewReader(f, nil)
	if err != nil {
		return nil, err
	}

	var doc snapshotDoc
	if err := gob.NewDecoder(bufio.NewReader(bz)).Decode(&doc); err != nil {
		return nil, err
	}

	weekdayOf := WeekdayOfEpoch(doc.Epoch)
	calendars := make([]Calendar, len(doc.Calendars))
	for i, c := range doc.Calendars {
		calendars[i] = Calendar{
			StartDay:  c.StartDay,
			EndDay:    c.EndDay,
			Weekdays:  c.Weekdays,
			Added:     c.Added,
			Removed:   c.Removed,
			WeekdayOf: weekdayOf,
		}
	}

	stopRoutePoints := make([][]RoutePointIdx, len(doc.StopPoints))
	for i, rp := range doc.RouteStops {
		stopRoutePoints[rp.Stop] = append(stopRoutePoints[rp.Stop], RoutePointIdx(i))
	}

	return &Timetable{
		StopPoints: doc.StopPoints,
		Routes:     doc.Routes,
		Calendars:  calendars,
		Epoch:      doc.Epoch,

		RoutePoints: &RoutePointTable{
			RouteStops:   doc.RouteStops,
			routeOffsets: doc.RouteOffsets,
		},
		StopTimes: &StopTimeTable{
			Trips:            doc.Trips,
			Flat:             doc.Flat,
			routeTripOffsets: doc.RouteTripOffsets,
			routeTrips:       doc.RouteTrips,
		},
		FootPaths: &FootPathTable{
			entries: doc.FootEntries,
			offsets: doc.FootOffsets,
		},
		ConnectionsForward: &ConnectionTable{
			entries: doc.FwdEntries,
			offsets: doc.FwdOffsets,
		},
		ConnectionsBackward: &ConnectionTable{
			entries: doc.BwdEntries,
			offsets: doc.BwdOffsets,
		},

		stopRoutePoints: stopRoutePoints,
		stopAreas:       doc.StopAreas,
	}, nil
}
