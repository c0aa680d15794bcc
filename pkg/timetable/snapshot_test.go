package timetable

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTripsTimetable(t *testing.T) {
	tt := buildSmallNetwork(t)

	path := filepath.Join(t.TempDir(), "tt.snapshot")
	require.NoError(t, tt.SaveSnapshot(path))

	got, err := LoadSnapshot(path)
	require.NoError(t, err)

	require.Equal(t, tt.NumStopPoints(), got.NumStopPoints())
	require.Equal(t, tt.NumRoutes(), got.NumRoutes())
	require.Equal(t, tt.NumRoutePoints(), got.NumRoutePoints())

	first, count := got.RoutePoints.RouteSlice(0)
	assert.Equal(t, int32(0), first)
	assert.Equal(t, int32(2), count)

	fps := got.FootPaths.FootPathsFrom(1)
	require.Len(t, fps, 1)
	assert.Equal(t, int32(60), fps[0].DurationS)

	assert.Equal(t, []StopPointIdx{0}, got.StopArea("AREA0"))
	assert.Equal(t, tt.RoutePointsAtStop(1), got.RoutePointsAtStop(1))

	require.Len(t, got.Calendars, 1)
	assert.True(t, got.Calendars[0].Check(got.Calendars[0].StartDay), "WeekdayOf must be rebuilt on load, not nil")
}

func TestSnapshotRoundTripPreservesEpoch(t *testing.T) {
	b := NewBuilder(1, 1)
	stop := b.AddStopPoint(StopPoint{ExternalCode: "S0"}, "")
	route := b.AddRoute(Route{ExternalCode: "R0"})
	b.AddRouteStop(route, stop)
	epoch := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b.SetEpoch(epoch)
	tt := b.Build()

	path := filepath.Join(t.TempDir(), "tt.snapshot")
	require.NoError(t, tt.SaveSnapshot(path))

	got, err := LoadSnapshot(path)
	require.NoError(t, err)

	day, sec := got.DateFromTime(time.Date(2026, 1, 3, 1, 2, 3, 0, time.UTC))
	assert.Equal(t, int32(2), day)
	assert.Equal(t, 1*3600+2*60+3, sec)
}
