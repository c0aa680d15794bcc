package main

import (
	"context"
	"flag"

	"github.com/lintang-b-s/raptorx/pkg/logger"
	"github.com/lintang-b-s/raptorx/pkg/timetable"
	"go.uber.org/zap"
)

// This entrypoint warms the GTFS parse cache ahead of time: it fetches
// and parses the feed once, so cmd/engine's first Load call hits the
// sqlite cache instead of re-parsing a possibly large feed on the
// critical path of process startup. It also writes the parsed
// timetable as a bzip2-compressed snapshot to -snapshot.
var (
	gtfsFeed      = flag.String("gtfs_feed", "./data/gtfs.zip", "GTFS static feed URL or local file path")
	gtfsCachePath = flag.String("gtfs_cache", "./data/gtfs_cache.db", "sqlite cache path for parsed GTFS feeds")
	snapshotPath  = flag.String("snapshot", "./data/timetable.snapshot", "bzip2-compressed timetable snapshot to write after parsing")
)

func main() {
	flag.Parse()

	log, err := logger.New()
	if err != nil {
		panic(err)
	}

	loader, err := timetable.NewGTFSLoader(timetable.GTFSLoaderConfig{
		CachePath:   *gtfsCachePath,
		MaxHotFeeds: 1,
	}, log)
	if err != nil {
		panic(err)
	}
	defer loader.Close()

	tt, err := loader.Load(context.Background(), timetable.FeedSource{URL: *gtfsFeed})
	if err != nil {
		panic(err)
	}

	if err := tt.SaveSnapshot(*snapshotPath); err != nil {
		log.Warn("failed to write timetable snapshot", zap.Error(err))
	}

	log.Info("gtfs feed parsed and cached",
		zap.String("feed", *gtfsFeed),
		zap.Int("stop_points", tt.NumStopPoints()),
		zap.Int("routes", tt.NumRoutes()),
		zap.Int("route_points", tt.NumRoutePoints()),
	)
}
