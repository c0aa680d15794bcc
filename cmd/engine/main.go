package main

import (
	"context"
	"flag"

	"github.com/lintang-b-s/raptorx/pkg/geoindex"
	httpapi "github.com/lintang-b-s/raptorx/pkg/http"
	"github.com/lintang-b-s/raptorx/pkg/logger"
	"github.com/lintang-b-s/raptorx/pkg/metrics"
	"github.com/lintang-b-s/raptorx/pkg/raptor"
	"github.com/lintang-b-s/raptorx/pkg/service"
	"github.com/lintang-b-s/raptorx/pkg/timetable"
	"github.com/lintang-b-s/raptorx/pkg/util"
	"go.uber.org/zap"
)

var (
	gtfsFeed      = flag.String("gtfs_feed", "./data/gtfs.zip", "GTFS static feed URL or local file path")
	gtfsCachePath = flag.String("gtfs_cache", "./data/gtfs_cache.db", "sqlite cache path for parsed GTFS feeds")
	snapshotPath  = flag.String("snapshot", "./data/timetable.snapshot", "bzip2-compressed timetable snapshot; read on startup if present, rewritten after a fresh GTFS load")
	useRateLimit  = flag.Bool("rate_limit", true, "enable per-client rate limiting on the journeys API")
)

func main() {
	flag.Parse()

	log, err := logger.New()
	if err != nil {
		panic(err)
	}

	if err := util.ReadConfig(); err != nil {
		log.Warn("no config file found, continuing with defaults/env", zap.Error(err))
	}

	ctx, cleanup, err := NewContext()
	if err != nil {
		panic(err)
	}

	tt, err := timetable.LoadSnapshot(*snapshotPath)
	if err != nil {
		log.Info("no usable timetable snapshot, loading from GTFS feed", zap.Error(err))

		loader, lerr := timetable.NewGTFSLoader(timetable.GTFSLoaderConfig{
			CachePath:   *gtfsCachePath,
			MaxHotFeeds: 4,
		}, log)
		if lerr != nil {
			panic(lerr)
		}
		defer loader.Close()

		tt, err = loader.Load(ctx, timetable.FeedSource{URL: *gtfsFeed})
		if err != nil {
			panic(err)
		}
		if serr := tt.SaveSnapshot(*snapshotPath); serr != nil {
			log.Warn("failed to write timetable snapshot", zap.Error(serr))
		}
	}
	log.Info("loaded timetable",
		zap.Int("stop_points", tt.NumStopPoints()),
		zap.Int("routes", tt.NumRoutes()),
		zap.Int("route_points", tt.NumRoutePoints()),
	)

	stopIndex := geoindex.NewStopIndex(tt, log)

	driver, err := raptor.NewQueryDriver(tt, log)
	if err != nil {
		panic(err)
	}

	metric := metrics.New()
	journeys := service.New(tt, stopIndex, driver, metric, log)

	api := httpapi.NewServer(log)
	if _, err := api.Use(ctx, log, *useRateLimit, journeys, journeys); err != nil {
		panic(err)
	}

	signal := httpapi.GracefulShutdown()
	log.Info("raptorx journey engine stopped", zap.String("signal", signal.String()))
	cleanup()
}

func NewContext() (context.Context, func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	cb := func() {
		cancel()
	}
	return ctx, cb, nil
}
