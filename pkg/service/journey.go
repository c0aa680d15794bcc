// Package service adapts the RAPTOR core, the geo expansion layer and
// the wire-output converter into the two interfaces the HTTP/websocket
// controllers depend on, the way the teacher's pkg/http/usecases turned
// its routing engine + spatial index into RoutingService for the API
// layer to call.
package service

import (
	"fmt"
	"time"

	"github.com/lintang-b-s/raptorx/pkg/geoindex"
	"github.com/lintang-b-s/raptorx/pkg/http/router/controllers"
	"github.com/lintang-b-s/raptorx/pkg/metrics"
	"github.com/lintang-b-s/raptorx/pkg/pathoutput"
	"github.com/lintang-b-s/raptorx/pkg/raptor"
	"github.com/lintang-b-s/raptorx/pkg/timetable"
	"github.com/lintang-b-s/raptorx/pkg/util"
	"go.uber.org/zap"
)

// defaultAccessRadiusMeters bounds the access/egress walk a rider is
// willing to make to/from a stop-point, spec.md §4.6 step 1's "expand
// to a stop-point set" input the HTTP boundary supplies when the caller
// gives a raw (lat, lon) instead of a named stop-area code.
const defaultAccessRadiusMeters = 750.0

// JourneyService implements controllers.JourneyService and
// controllers.StreamService: it expands a (lat, lon) pair into
// candidate stop-points via pkg/geoindex, runs the query through
// pkg/raptor.QueryDriver, and serializes the result through
// pkg/pathoutput, the three collaborators spec.md §1 calls out as
// outside the RAPTOR core's boundary.
type JourneyService struct {
	tt     *timetable.Timetable
	idx    *geoindex.StopIndex
	driver *raptor.QueryDriver
	metric *metrics.Metric
	log    *zap.Logger

	accessRadiusMeters float64
}

func New(tt *timetable.Timetable, idx *geoindex.StopIndex, driver *raptor.QueryDriver, metric *metrics.Metric, log *zap.Logger) *JourneyService {
	return &JourneyService{
		tt:                 tt,
		idx:                idx,
		driver:             driver,
		metric:             metric,
		log:                log,
		accessRadiusMeters: defaultAccessRadiusMeters,
	}
}

func forbiddenFrom(fs []controllers.Forbidden) []raptor.Forbidden {
	if len(fs) == 0 {
		return nil
	}
	out := make([]raptor.Forbidden, len(fs))
	for i, f := range fs {
		out[i] = raptor.Forbidden{Category: f.Category, Code: f.Code}
	}
	return out
}

// expand turns a raw origin/destination (lat, lon) pair into the
// raptor.Query's Origins/Destinations fields, per spec.md §4.6 step 1.
func (s *JourneyService) expand(originLat, originLon, destLat, destLon float64, departure raptor.DateTime, forbidden []controllers.Forbidden) (raptor.Query, error) {
	origins := s.idx.NearbyStops(originLat, originLon, s.accessRadiusMeters)
	if len(origins) == 0 {
		return raptor.Query{}, util.WrapErrorf(raptor.ErrUnknownStopArea, util.ErrNotFound,
			fmt.Sprintf("no stop-point within %.0fm of origin %f,%f", s.accessRadiusMeters, originLat, originLon))
	}
	destinations := s.idx.NearbyStops(destLat, destLon, s.accessRadiusMeters)
	if len(destinations) == 0 {
		return raptor.Query{}, util.WrapErrorf(raptor.ErrUnknownStopArea, util.ErrNotFound,
			fmt.Sprintf("no stop-point within %.0fm of destination %f,%f", s.accessRadiusMeters, destLat, destLon))
	}

	return raptor.Query{
		Origins:      geoindex.OriginOffers(origins, departure),
		Destinations: geoindex.DestinationOffers(destinations),
		Forbidden:    forbiddenFrom(forbidden),
		Day:          departure.Date,
	}, nil
}

func (s *JourneyService) departureAt(unixSeconds int64) raptor.DateTime {
	day, sec := s.tt.DateFromTime(time.Unix(unixSeconds, 0))
	return raptor.NewDateTime(day, sec)
}

// ComputeJourney implements controllers.JourneyService, spec.md §6's
// `compute`.
func (s *JourneyService) ComputeJourney(originLat, originLon, destLat, destLon float64, departureUnix int64, forbidden []controllers.Forbidden) ([]pathoutput.Path, error) {
	start := time.Now()
	departure := s.departureAt(departureUnix)

	q, err := s.expand(originLat, originLon, destLat, destLon, departure, forbidden)
	if err != nil {
		return nil, err
	}

	paths, visited, total := s.driver.ComputeWithStats(q)
	s.metric.RecordQuery(len(paths), time.Since(start).Nanoseconds(), len(paths) == 0)

	out := make([]pathoutput.Path, len(paths))
	for i, p := range paths {
		out[i] = pathoutput.Build(s.tt, p, visited, total)
	}
	return out, nil
}

// ComputeProfile implements controllers.JourneyService, spec.md §6's
// profile `compute_all(..., list<dt>, bound)`.
func (s *JourneyService) ComputeProfile(originLat, originLon, destLat, destLon float64, departuresUnix []int64, forbidden []controllers.Forbidden) ([][]pathoutput.Path, error) {
	if len(departuresUnix) == 0 {
		return nil, nil
	}

	first := s.departureAt(departuresUnix[0])
	base, err := s.expand(originLat, originLon, destLat, destLon, first, forbidden)
	if err != nil {
		return nil, err
	}

	departures := make([]raptor.DateTime, len(departuresUnix))
	for i, u := range departuresUnix {
		departures[i] = s.departureAt(u)
	}

	start := time.Now()
	results := s.driver.ComputeProfile(base, departures, 0, 0)
	s.metric.RecordQuery(len(results), time.Since(start).Nanoseconds(), len(results) == 0)

	out := make([][]pathoutput.Path, len(results))
	for i, paths := range results {
		converted := make([]pathoutput.Path, len(paths))
		for j, p := range paths {
			converted[j] = pathoutput.Build(s.tt, p, 0, s.tt.NumStopPoints())
		}
		out[i] = converted
	}
	return out, nil
}

// ComputeProfileStream implements controllers.StreamService: the same
// profile search as ComputeProfile, but onResult fires as each
// departure's search finishes instead of waiting for the whole batch —
// the websocket handler's reason for existing over the plain HTTP
// /journeys/profile endpoint.
func (s *JourneyService) ComputeProfileStream(originLat, originLon, destLat, destLon float64, departuresUnix []int64, forbidden []controllers.Forbidden, onResult func(departureUnix int64, paths []pathoutput.Path)) error {
	if len(departuresUnix) == 0 {
		return nil
	}

	first := s.departureAt(departuresUnix[0])
	base, err := s.expand(originLat, originLon, destLat, destLon, first, forbidden)
	if err != nil {
		return err
	}

	for _, u := range departuresUnix {
		q := base
		q.Origins = withDeparture(base.Origins, s.departureAt(u))

		start := time.Now()
		paths, visited, total := s.driver.ComputeWithStats(q)
		s.metric.RecordQuery(len(paths), time.Since(start).Nanoseconds(), len(paths) == 0)

		out := make([]pathoutput.Path, len(paths))
		for i, p := range paths {
			out[i] = pathoutput.Build(s.tt, p, visited, total)
		}
		onResult(u, out)
	}
	return nil
}

func withDeparture(origins []raptor.OriginOffer, departure raptor.DateTime) []raptor.OriginOffer {
	out := make([]raptor.OriginOffer, len(origins))
	for i, o := range origins {
		out[i] = raptor.OriginOffer{Stop: o.Stop, Instant: departure}
	}
	return out
}
