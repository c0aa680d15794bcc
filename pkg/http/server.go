package http

import (
	"context"
	"os"

	http_router "github.com/lintang-b-s/raptorx/pkg/http/router"
	"github.com/lintang-b-s/raptorx/pkg/http/router/controllers"
	http_server "github.com/lintang-b-s/raptorx/pkg/http/server"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	Log *zap.Logger
}

func NewServer(log *zap.Logger) *Server {
	return &Server{Log: log}
}

func (s *Server) Use(
	ctx context.Context,
	log *zap.Logger,

	useRateLimit bool,
	journeyService controllers.JourneyService,
	streamService controllers.StreamService,

) (*Server, error) {
	viper.SetDefault("API_PORT", 6060)
	viper.SetDefault("WEBSOCKET_PORT", 6666)

	viper.SetDefault("API_TIMEOUT", "1000s")

	config := http_server.Config{
		Port:          viper.GetInt("API_PORT"),
		WebsocketPort: viper.GetInt("WEBSOCKET_PORT"),
		Timeout:       viper.GetDuration("API_TIMEOUT"),
		ProxyPort:     6767,
	}

	server := http_router.NewAPI(log)

	g := errgroup.Group{}

	g.Go(func() error {
		return server.Run(
			ctx, config, log,
			useRateLimit, journeyService, streamService,
		)
	})

	return s, nil
}

// GracefulShutdown blocks until SIGINT/SIGTERM and returns the signal
// received, re-exported from pkg/http/server so cmd/engine doesn't need
// a second import just to wait on it.
func GracefulShutdown() os.Signal {
	return http_server.GracefulShutdown()
}
