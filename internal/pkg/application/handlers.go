package application

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"

	"github.com/jahama808/MDU-Looking-Glass/internal/pkg/infrastructure/logging"
	"github.com/jahama808/MDU-Looking-Glass/internal/pkg/infrastructure/repositories/database"
)

type api struct {
	db                     database.Datastore
	log                    logging.Logger
	outageThresholdPercent float64
}

func (a *api) respond(w http.ResponseWriter, payload interface{}, err error) {
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		a.log.Errorf("Query failed: %s", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func uintParam(r *http.Request, name string) (uint, error) {
	value, err := strconv.ParseUint(chi.URLParam(r, name), 10, 32)
	return uint(value), err
}

func (a *api) getProperties(w http.ResponseWriter, r *http.Request) {
	properties, err := a.db.GetProperties()
	a.respond(w, properties, err)
}

func (a *api) getProperty(w http.ResponseWriter, r *http.Request) {
	propertyID, err := uintParam(r, "propertyID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid property id")
		return
	}

	property, err := a.db.GetPropertyByID(propertyID)
	if err != nil {
		a.respond(w, nil, err)
		return
	}

	shelves, err := a.db.GetPropertyShelves(propertyID)
	if err != nil {
		a.respond(w, nil, err)
		return
	}

	routers, err := a.db.GetPropertyRouters(propertyID)
	if err != nil {
		a.respond(w, nil, err)
		return
	}

	a.respond(w, map[string]interface{}{
		"property":     property,
		"xpon_shelves": shelves,
		"routers_7x50": routers,
	}, nil)
}

func (a *api) getPropertyHourly(w http.ResponseWriter, r *http.Request) {
	propertyID, err := uintParam(r, "propertyID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid property id")
		return
	}

	since := sinceParam(r, 24*time.Hour)
	hours, err := a.db.GetPropertyHourlyOutages(propertyID, since)
	a.respond(w, hours, err)
}

func (a *api) getPropertyNetworks(w http.ResponseWriter, r *http.Request) {
	propertyID, err := uintParam(r, "propertyID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid property id")
		return
	}

	networks, err := a.db.GetPropertyNetworks(propertyID)
	a.respond(w, networks, err)
}

func (a *api) getNetwork(w http.ResponseWriter, r *http.Request) {
	networkID, err := strconv.ParseInt(chi.URLParam(r, "networkID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid network id")
		return
	}

	network, err := a.db.GetNetworkByID(networkID)
	a.respond(w, network, err)
}

func (a *api) getNetworkHourly(w http.ResponseWriter, r *http.Request) {
	networkID, err := strconv.ParseInt(chi.URLParam(r, "networkID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid network id")
		return
	}

	since := sinceParam(r, 24*time.Hour)
	hours, err := a.db.GetNetworkHourlyOutages(networkID, since)
	a.respond(w, hours, err)
}

func (a *api) getStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.db.GetStats()
	a.respond(w, stats, err)
}

func (a *api) search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}

	properties, err := a.db.SearchProperties(query)
	a.respond(w, properties, err)
}

func (a *api) getXponShelves(w http.ResponseWriter, r *http.Request) {
	shelves, err := a.db.GetXponShelves()
	a.respond(w, shelves, err)
}

func (a *api) getXponShelf(w http.ResponseWriter, r *http.Request) {
	shelfID, err := uintParam(r, "shelfID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid shelf id")
		return
	}

	shelf, err := a.db.GetXponShelfByID(shelfID)
	a.respond(w, shelf, err)
}

func (a *api) getRouters(w http.ResponseWriter, r *http.Request) {
	routers, err := a.db.GetRouters()
	a.respond(w, routers, err)
}

func (a *api) getRouter(w http.ResponseWriter, r *http.Request) {
	routerID, err := uintParam(r, "routerID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid router id")
		return
	}

	router, err := a.db.GetRouterByID(routerID)
	a.respond(w, router, err)
}

func (a *api) getOngoingOutages(w http.ResponseWriter, r *http.Request) {
	outages, err := a.db.GetOngoingOutages()
	a.respond(w, outages, err)
}

func (a *api) getOngoingOutagesCount(w http.ResponseWriter, r *http.Request) {
	count, err := a.db.CountOngoingOutages()
	a.respond(w, map[string]int64{"count": count}, err)
}

func (a *api) getPropertyWideOutages(w http.ResponseWriter, r *http.Request) {
	since := sinceParam(r, 24*time.Hour)
	outages, err := a.db.GetPropertyWideOutages(since, a.outageThresholdPercent)
	a.respond(w, outages, err)
}

//sinceParam reads an optional ?hours=N window, falling back to the given default
func sinceParam(r *http.Request, fallback time.Duration) time.Time {
	window := fallback
	if hours, err := strconv.Atoi(r.URL.Query().Get("hours")); err == nil && hours > 0 {
		window = time.Duration(hours) * time.Hour
	}
	return time.Now().UTC().Add(-window)
}
