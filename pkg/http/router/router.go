package router

import (
	"context"
	"fmt"
	"net/http"

	"github.com/lintang-b-s/raptorx/pkg/http/router/controllers"
	router_helper "github.com/lintang-b-s/raptorx/pkg/http/router/routerhelper"
	http_server "github.com/lintang-b-s/raptorx/pkg/http/server"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
	"github.com/rs/cors"
	"go.uber.org/zap"

	_ "github.com/swaggo/http-swagger"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "net/http/pprof"
)

// API is the HTTP front-end over the journey engine: an httprouter
// mux for the synchronous /api/journeys* endpoints, plus a sibling
// websocket listener streaming profile-query results incrementally
// (pkg/http/router/controllers.Hub).
type API struct {
	log *zap.Logger
	hub *controllers.Hub
}

func NewAPI(log *zap.Logger) *API {
	return &API{log: log}
}

//	@title			raptorx journey planner API
//	@version		1.0
//	@description	RAPTOR-based public transit journey planning engine.

//	@contact.name	raptorx maintainers
//	@contact.url	_

//	@license.name	BSD License
//	@license.url	https://opensource.org/license/bsd-2-clause

// @host		localhost
// @BasePath	/api
func (api *API) Run(
	ctx context.Context,
	config http_server.Config,
	log *zap.Logger,

	useRateLimit bool,
	journeyService controllers.JourneyService,
	streamService controllers.StreamService,
) error {
	log.Info("starting journeys API")

	router := httprouter.New()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	router.GET("/doc/*any", swaggerHandler)
	router.Handler(http.MethodGet, "/debug/pprof/*item", http.DefaultServeMux)

	group := router_helper.NewRouteGroup(router, "/api")
	journeyRoutes := controllers.New(journeyService, log)
	journeyRoutes.Routes(group)

	api.hub = controllers.NewHub(streamService)

	errChan := make(chan error, 1)
	go api.runWebsocket(ctx, config, errChan)

	var mwChain []alice.Constructor
	mwChain = append(mwChain, corsHandler.Handler, EnforceJSONHandler, api.recoverPanic, RealIP, Heartbeat("healthz"), Logger(log), Labels)
	if useRateLimit {
		mwChain = append(mwChain, Limit)
	}
	mainMwChain := alice.New(mwChain...).Then(router)

	srv := http_server.New(ctx, mainMwChain, config, false)
	log.Info(fmt.Sprintf("journeys API running on port %d", config.Port))

	serverErr := make(chan error, 1)
	go func() { serverErr <- srv.ListenAndServe() }()

	select {
	case err := <-errChan:
		log.Error("websocket listener error, shutting down", zap.Error(err))
		_ = srv.Shutdown(ctx)
		return err
	case err := <-serverErr:
		log.Info("HTTP server stopped", zap.Error(err))
		return err
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
		_ = srv.Shutdown(context.Background())
		return ctx.Err()
	}
}

func swaggerHandler(res http.ResponseWriter, req *http.Request, _ httprouter.Params) {
	httpSwagger.WrapHandler(res, req)
}
