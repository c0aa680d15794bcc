package timetable

import (
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	gtfs "github.com/OneBusAway/go-gtfs"
	lru "github.com/hashicorp/golang-lru/v2"
	_ "modernc.org/sqlite"
	"go.uber.org/zap"
)

// FeedSource names where to fetch a GTFS static feed: an http(s) URL or
// a local file path, the same "is it a URL" split the ambient GTFS
// tooling in this ecosystem uses to decide whether to poll for updates.
type FeedSource struct {
	URL string
}

// GTFSLoaderConfig configures the cache a GTFSLoader keeps between calls.
type GTFSLoaderConfig struct {
	// CachePath is the sqlite database file backing the parsed-feed
	// cache. Empty opens an in-memory database, which loses the cache
	// across process restarts but still dedupes repeated Load calls
	// within one process.
	CachePath string
	// MaxHotFeeds bounds how many parsed *gtfs.Static blobs stay in the
	// in-memory LRU at once, mirroring the sizing the teacher gives its
	// own reusable-buffer caches (pkg/engine/engine.go's puCache).
	MaxHotFeeds int
}

// GTFSLoader builds Timetables from GTFS static feeds. The expensive
// step — parsing the feed's CSV tables into gtfs.Static — is cached in
// sqlite keyed by a checksum of the raw feed bytes, so re-fetching an
// unchanged feed never re-parses it; a small in-memory LRU keeps the
// hottest parsed feeds available without a database round trip.
type GTFSLoader struct {
	db     *sql.DB
	hot    *lru.Cache[string, *gtfs.Static]
	log    *zap.Logger
	client *http.Client
}

func NewGTFSLoader(cfg GTFSLoaderConfig, log *zap.Logger) (*GTFSLoader, error) {
	path := cfg.CachePath
	if path == "" {
		path = ":memory:"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("timetable: opening gtfs cache database: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS feed_cache (
		checksum TEXT PRIMARY KEY,
		fetched_at INTEGER NOT NULL,
		payload BLOB NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("timetable: preparing gtfs cache schema: %w", err)
	}

	maxHot := cfg.MaxHotFeeds
	if maxHot <= 0 {
		maxHot = 4
	}
	hot, err := lru.New[string, *gtfs.Static](maxHot)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("timetable: sizing gtfs feed LRU: %w", err)
	}

	if log == nil {
		log = zap.NewNop()
	}
	return &GTFSLoader{db: db, hot: hot, log: log, client: &http.Client{Timeout: 60 * time.Second}}, nil
}

func (l *GTFSLoader) Close() error {
	return l.db.Close()
}

// Load fetches source, parses it as a GTFS static feed (or reuses a
// cached parse keyed by the raw content's checksum), and builds a
// Timetable from the result.
func (l *GTFSLoader) Load(ctx context.Context, source FeedSource) (*Timetable, error) {
	content, err := l.fetch(ctx, source.URL)
	if err != nil {
		return nil, fmt.Errorf("timetable: fetching gtfs feed: %w", err)
	}

	sum := sha256.Sum256(content)
	checksum := hex.EncodeToString(sum[:])

	static, err := l.parsedFeed(ctx, checksum, content)
	if err != nil {
		return nil, err
	}
	return FromStatic(static), nil
}

func (l *GTFSLoader) parsedFeed(ctx context.Context, checksum string, content []byte) (*gtfs.Static, error) {
	if static, ok := l.hot.Get(checksum); ok {
		return static, nil
	}

	if static, err := l.loadCached(ctx, checksum); err == nil {
		l.hot.Add(checksum, static)
		return static, nil
	}

	static, err := gtfs.ParseStatic(content, gtfs.ParseStaticOptions{})
	if err != nil {
		return nil, fmt.Errorf("timetable: parsing gtfs feed: %w", err)
	}

	if err := l.storeCached(ctx, checksum, static); err != nil {
		l.log.Warn("failed to cache parsed gtfs feed", zap.Error(err))
	}
	l.hot.Add(checksum, static)
	return static, nil
}

func (l *GTFSLoader) loadCached(ctx context.Context, checksum string) (*gtfs.Static, error) {
	var payload []byte
	err := l.db.QueryRowContext(ctx, `SELECT payload FROM feed_cache WHERE checksum = ?`, checksum).Scan(&payload)
	if err != nil {
		return nil, err
	}
	var static gtfs.Static
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&static); err != nil {
		return nil, fmt.Errorf("timetable: decoding cached gtfs feed: %w", err)
	}
	return &static, nil
}

func (l *GTFSLoader) storeCached(ctx context.Context, checksum string, static *gtfs.Static) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(static); err != nil {
		return fmt.Errorf("timetable: encoding gtfs feed for cache: %w", err)
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO feed_cache (checksum, fetched_at, payload) VALUES (?, ?, ?)
		 ON CONFLICT(checksum) DO NOTHING`,
		checksum, time.Now().Unix(), buf.Bytes())
	return err
}

func (l *GTFSLoader) fetch(ctx context.Context, source string) ([]byte, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, err
		}
		resp, err := l.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("timetable: gtfs feed fetch returned status %d", resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	}
	return os.ReadFile(source)
}

// gtfsTransferFootpathSeconds is the fallback foot-path duration for a
// GTFS transfers.txt row that doesn't specify min_transfer_time,
// matching the intra-stop dwell the round-based core otherwise enforces
// (spec.md §4.3a); kept as a local constant rather than importing
// pkg/raptor, which already imports this package.
const gtfsTransferFootpathSeconds = 120

// FromStatic converts a parsed GTFS static feed into a Timetable.
// Trips are grouped into routes by the feed's route_id together with
// their exact ordered stop-id sequence, not by route_id alone, since one
// GTFS route commonly covers several branches/patterns that the round
// scanner's route-point model requires to be split apart (a "route" in
// spec.md §3 vocabulary is one such pattern).
func FromStatic(static *gtfs.Static) *Timetable {
	b := NewBuilder(len(static.Stops), 0)

	stopIdx := make(map[string]StopPointIdx, len(static.Stops))
	for _, s := range static.Stops {
		areaCode := ""
		if s.Parent != nil {
			areaCode = s.Parent.Id
		}
		stopIdx[s.Id] = b.AddStopPoint(StopPoint{
			ExternalCode: s.Id,
			Name:         stopName(s),
			Lat:          stopLat(s),
			Lon:          stopLon(s),
		}, areaCode)
	}

	calendarIdx := buildCalendars(b, static.Services)

	type pattern struct {
		route RouteIdx
		stops []string
	}
	patterns := make(map[string]pattern)

	trips := make([]gtfs.ScheduledTrip, len(static.Trips))
	copy(trips, static.Trips)
	sort.SliceStable(trips, func(i, j int) bool { return trips[i].ID < trips[j].ID })

	for _, trip := range trips {
		if len(trip.StopTimes) == 0 {
			continue
		}
		stopIDs := make([]string, len(trip.StopTimes))
		for i, st := range trip.StopTimes {
			stopIDs[i] = st.Stop.Id
		}
		key := trip.Route.Id + "|" + strings.Join(stopIDs, ",")

		pat, ok := patterns[key]
		if !ok {
			route := b.AddRoute(Route{
				ExternalCode: trip.Route.Id,
				LineCode:     routeLineCode(trip.Route),
				Mode:         routeModeName(trip.Route),
			})
			for _, id := range stopIDs {
				b.AddRouteStop(route, stopIdx[id])
			}
			pat = pattern{route: route, stops: stopIDs}
			patterns[key] = pat
		}

		stopTimes := make([]StopTime, len(trip.StopTimes))
		for i, st := range trip.StopTimes {
			stopTimes[i] = StopTime{
				ArrivalS:         int32(st.ArrivalTime),
				DepartureS:       int32(st.DepartureTime),
				PickUpAllowed:    st.PickupType == 0,
				DropOffAllowed:   st.DropOffType == 0,
				LocalTrafficZone: UnsetZone,
			}
		}

		serviceID := ""
		if trip.Service != nil {
			serviceID = trip.Service.Id
		}
		b.AddTrip(pat.route, trip.ID, calendarIdx[serviceID], stopTimes)
	}

	for _, tr := range static.Transfers {
		if tr.From == nil || tr.To == nil {
			continue
		}
		from, ok1 := stopIdx[tr.From.Id]
		to, ok2 := stopIdx[tr.To.Id]
		if !ok1 || !ok2 || from == to {
			continue
		}
		duration := int32(gtfsTransferFootpathSeconds)
		if tr.MinTransferTime != nil {
			duration = int32(*tr.MinTransferTime)
		}
		b.AddFootPath(from, FootPath{DestinationSP: to, DurationS: duration})
	}

	return b.Build()
}

func stopName(s gtfs.Stop) string {
	if s.Name != "" {
		return s.Name
	}
	return s.Id
}

func stopLat(s gtfs.Stop) float64 {
	if s.Latitude != nil {
		return *s.Latitude
	}
	return 0
}

func stopLon(s gtfs.Stop) float64 {
	if s.Longitude != nil {
		return *s.Longitude
	}
	return 0
}

func routeLineCode(r *gtfs.Route) string {
	if r == nil {
		return ""
	}
	if r.ShortName != "" {
		return r.ShortName
	}
	return r.LongName
}

// routeModeName maps a GTFS route_type code (route_type values, GTFS
// reference, extended values collapsed to their base category) to a
// short mode name.
func routeModeName(r *gtfs.Route) string {
	if r == nil {
		return "unknown"
	}
	switch int(r.Type) {
	case 0:
		return "tram"
	case 1:
		return "subway"
	case 2:
		return "rail"
	case 3:
		return "bus"
	case 4:
		return "ferry"
	case 5:
		return "cable_tram"
	case 6:
		return "aerial_lift"
	case 7:
		return "funicular"
	default:
		return "other"
	}
}

// buildCalendars converts every GTFS service into a Calendar over a
// dense day-index space anchored at the earliest service start date in
// the feed, and returns the service-id -> calendar-index lookup
// AddTrip's callers need.
func buildCalendars(b *Builder, services []gtfs.Service) map[string]int32 {
	idx := make(map[string]int32, len(services))
	if len(services) == 0 {
		return idx
	}

	epoch := services[0].StartDate
	for _, svc := range services {
		if svc.StartDate.Before(epoch) {
			epoch = svc.StartDate
		}
	}
	epoch = time.Date(epoch.Year(), epoch.Month(), epoch.Day(), 0, 0, 0, 0, time.UTC)
	b.SetEpoch(epoch)

	dayIndex := func(t time.Time) int32 {
		t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return int32(t.Sub(epoch).Hours() / 24)
	}
	weekdayOf := WeekdayOfEpoch(epoch)

	for _, svc := range services {
		var weekdays uint8
		if svc.Monday {
			weekdays |= 1 << 0
		}
		if svc.Tuesday {
			weekdays |= 1 << 1
		}
		if svc.Wednesday {
			weekdays |= 1 << 2
		}
		if svc.Thursday {
			weekdays |= 1 << 3
		}
		if svc.Friday {
			weekdays |= 1 << 4
		}
		if svc.Saturday {
			weekdays |= 1 << 5
		}
		if svc.Sunday {
			weekdays |= 1 << 6
		}

		added := make([]int32, len(svc.AddedDates))
		for i, d := range svc.AddedDates {
			added[i] = dayIndex(d)
		}
		sort.Slice(added, func(i, j int) bool { return added[i] < added[j] })

		removed := make([]int32, len(svc.RemovedDates))
		for i, d := range svc.RemovedDates {
			removed[i] = dayIndex(d)
		}
		sort.Slice(removed, func(i, j int) bool { return removed[i] < removed[j] })

		cal := Calendar{
			StartDay:  dayIndex(svc.StartDate),
			EndDay:    dayIndex(svc.EndDate),
			Weekdays:  weekdays,
			Added:     added,
			Removed:   removed,
			WeekdayOf: weekdayOf,
		}
		idx[svc.Id] = b.AddCalendar(cal)
	}
	return idx
}
