package application

import (
	"compress/flate"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/rs/cors"

	"github.com/jahama808/MDU-Looking-Glass/internal/pkg/infrastructure/logging"
	"github.com/jahama808/MDU-Looking-Glass/internal/pkg/infrastructure/repositories/database"
)

type RequestRouter struct {
	impl *chi.Mux
}

//Get accepts a pattern that should be routed to the handlerFn on a GET request
func (router *RequestRouter) Get(pattern string, handlerFn http.HandlerFunc) {
	router.impl.Get(pattern, handlerFn)
}

func newRequestRouter() *RequestRouter {
	router := &RequestRouter{impl: chi.NewRouter()}

	router.impl.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowCredentials: true,
		Debug:            false,
	}).Handler)

	// Enable gzip compression for the dashboard's json responses
	compressor := middleware.NewCompressor(flate.DefaultCompression, "application/json")
	router.impl.Use(compressor.Handler)
	router.impl.Use(middleware.Logger)

	return router
}

func createRequestRouter(log logging.Logger, db database.Datastore, outageThresholdPercent float64) *RequestRouter {
	router := newRequestRouter()

	api := &api{db: db, log: log, outageThresholdPercent: outageThresholdPercent}

	router.Get("/api/properties", api.getProperties)
	router.Get("/api/property/{propertyID}", api.getProperty)
	router.Get("/api/property/{propertyID}/hourly", api.getPropertyHourly)
	router.Get("/api/property/{propertyID}/networks", api.getPropertyNetworks)
	router.Get("/api/network/{networkID}", api.getNetwork)
	router.Get("/api/network/{networkID}/hourly", api.getNetworkHourly)
	router.Get("/api/stats", api.getStats)
	router.Get("/api/search", api.search)
	router.Get("/api/xpon-shelves", api.getXponShelves)
	router.Get("/api/xpon-shelf/{shelfID}", api.getXponShelf)
	router.Get("/api/7x50s", api.getRouters)
	router.Get("/api/7x50/{routerID}", api.getRouter)
	router.Get("/api/ongoing-outages", api.getOngoingOutages)
	router.Get("/api/ongoing-outages/count", api.getOngoingOutagesCount)
	router.Get("/api/property-wide-outages", api.getPropertyWideOutages)

	return router
}

//CreateRouterAndStartServing sets up the dashboard API router and starts serving requests
func CreateRouterAndStartServing(log logging.Logger, db database.Datastore, port string, outageThresholdPercent float64) {
	router := createRequestRouter(log, db, outageThresholdPercent)

	log.Infof("Starting mdu-looking-glass api on port %s.", port)
	log.Fatal(http.ListenAndServe(":"+port, router.impl))
}
