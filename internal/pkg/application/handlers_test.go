package application

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/jahama808/MDU-Looking-Glass/internal/pkg/infrastructure/logging"
	"github.com/jahama808/MDU-Looking-Glass/internal/pkg/infrastructure/repositories/database"
	"github.com/jahama808/MDU-Looking-Glass/internal/pkg/infrastructure/repositories/models"
)

func TestMain(m *testing.M) {
	os.Exit(m.Run())
}

func serveRequest(t *testing.T, db database.Datastore, url string) *httptest.ResponseRecorder {
	router := createRequestRouter(logging.NewLogger(), db, 75)

	req, _ := http.NewRequest("GET", url, nil)
	w := httptest.NewRecorder()
	router.impl.ServeHTTP(w, req)
	return w
}

func TestGetProperties(t *testing.T) {
	db := &dbMock{
		properties: []models.Property{
			{ID: 1, Name: "Waikiki Shores", TotalNetworks: 2, TotalOutages: 3, Island: "Oahu"},
		},
	}

	w := serveRequest(t, db, "/api/properties")

	if w.Code != http.StatusOK {
		t.Fatalf("request failed with status %d", w.Code)
	}

	returned := []models.Property{}
	if err := json.Unmarshal(w.Body.Bytes(), &returned); err != nil {
		t.Fatal("failed to decode response:", err.Error())
	}
	if len(returned) != 1 || returned[0].Name != "Waikiki Shores" {
		t.Errorf("unexpected response body: %s", w.Body.String())
	}
}

func TestGetProperty(t *testing.T) {
	db := &dbMock{
		property: &models.Property{ID: 1, Name: "Waikiki Shores", Island: "Oahu"},
		shelves:  []database.PropertyShelfInfo{{ShelfID: 1, ShelfName: "HNLLHIMNOL7", NetworkCount: 2}},
	}

	w := serveRequest(t, db, "/api/property/1")

	if w.Code != http.StatusOK {
		t.Fatalf("request failed with status %d", w.Code)
	}

	body := map[string]json.RawMessage{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal("failed to decode response:", err.Error())
	}
	for _, key := range []string{"property", "xpon_shelves", "routers_7x50"} {
		if _, ok := body[key]; !ok {
			t.Errorf("response is missing the %s key", key)
		}
	}
}

func TestThatGetPropertyReturns404ForUnknownID(t *testing.T) {
	db := &dbMock{propertyError: database.ErrNotFound}

	w := serveRequest(t, db, "/api/property/4711")

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestThatGetPropertyRejectsNonNumericID(t *testing.T) {
	db := &dbMock{}

	w := serveRequest(t, db, "/api/property/droptables")

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestGetNetwork(t *testing.T) {
	db := &dbMock{network: &models.Network{NetworkID: 7339641, PropertyID: 1}}

	w := serveRequest(t, db, "/api/network/7339641")

	if w.Code != http.StatusOK {
		t.Fatalf("request failed with status %d", w.Code)
	}

	network := models.Network{}
	if err := json.Unmarshal(w.Body.Bytes(), &network); err != nil {
		t.Fatal("failed to decode response:", err.Error())
	}
	if network.NetworkID != 7339641 {
		t.Errorf("unexpected network returned: %+v", network)
	}
}

func TestThatGetNetworkReturns404ForUnknownID(t *testing.T) {
	db := &dbMock{networkError: database.ErrNotFound}

	w := serveRequest(t, db, "/api/network/999999")

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestGetNetworkHourlyPassesTheRequestedWindow(t *testing.T) {
	db := &dbMock{}

	w := serveRequest(t, db, "/api/network/7339641/hourly?hours=48")

	if w.Code != http.StatusOK {
		t.Fatalf("request failed with status %d", w.Code)
	}

	expected := time.Now().UTC().Add(-48 * time.Hour)
	if db.sinceSeen.IsZero() || db.sinceSeen.Sub(expected) > time.Minute || expected.Sub(db.sinceSeen) > time.Minute {
		t.Errorf("expected a 48 hour window, got since=%v", db.sinceSeen)
	}
}

func TestGetStats(t *testing.T) {
	db := &dbMock{stats: &database.Stats{TotalProperties: 2, TotalNetworks: 3, TotalOutages: 5}}

	w := serveRequest(t, db, "/api/stats")

	if w.Code != http.StatusOK {
		t.Fatalf("request failed with status %d", w.Code)
	}

	stats := database.Stats{}
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatal("failed to decode response:", err.Error())
	}
	if stats.TotalOutages != 5 {
		t.Errorf("unexpected stats returned: %+v", stats)
	}
}

func TestThatSearchRequiresAQuery(t *testing.T) {
	db := &dbMock{}

	w := serveRequest(t, db, "/api/search")

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without a query, got %d", w.Code)
	}
}

func TestSearch(t *testing.T) {
	db := &dbMock{properties: []models.Property{{ID: 1, Name: "Waikiki Shores"}}}

	w := serveRequest(t, db, "/api/search?q=Waikiki")

	if w.Code != http.StatusOK {
		t.Fatalf("request failed with status %d", w.Code)
	}
	if db.searchQuery != "Waikiki" {
		t.Errorf("expected the query to be passed through, got %q", db.searchQuery)
	}
}

func TestGetOngoingOutagesCount(t *testing.T) {
	db := &dbMock{ongoingCount: 4}

	w := serveRequest(t, db, "/api/ongoing-outages/count")

	if w.Code != http.StatusOK {
		t.Fatalf("request failed with status %d", w.Code)
	}

	body := map[string]int64{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal("failed to decode response:", err.Error())
	}
	if body["count"] != 4 {
		t.Errorf("expected count 4, got %d", body["count"])
	}
}

func TestGetPropertyWideOutagesUsesConfiguredThreshold(t *testing.T) {
	db := &dbMock{
		wideOutages: []database.PropertyWideOutage{
			{PropertyName: "Stormy Towers", TotalNetworks: 4, NetworksDown: 3, OutagePercentage: 75},
		},
	}

	w := serveRequest(t, db, "/api/property-wide-outages")

	if w.Code != http.StatusOK {
		t.Fatalf("request failed with status %d", w.Code)
	}
	if db.thresholdSeen != 75 {
		t.Errorf("expected the configured threshold to be used, got %f", db.thresholdSeen)
	}
}

type dbMock struct {
	properties    []models.Property
	property      *models.Property
	propertyError error
	network       *models.Network
	networkError  error
	stats         *database.Stats
	shelves       []database.PropertyShelfInfo
	routers       []database.PropertyRouterInfo
	ongoingCount  int64
	wideOutages   []database.PropertyWideOutage

	searchQuery   string
	sinceSeen     time.Time
	thresholdSeen float64
}

func (db *dbMock) GetProperties() ([]models.Property, error) {
	return db.properties, nil
}

func (db *dbMock) GetPropertyByID(propertyID uint) (*models.Property, error) {
	return db.property, db.propertyError
}

func (db *dbMock) GetPropertyNetworks(propertyID uint) ([]models.Network, error) {
	return []models.Network{}, nil
}

func (db *dbMock) GetPropertyHourlyOutages(propertyID uint, since time.Time) ([]models.PropertyHourlyOutage, error) {
	db.sinceSeen = since
	return []models.PropertyHourlyOutage{}, nil
}

func (db *dbMock) GetPropertyShelves(propertyID uint) ([]database.PropertyShelfInfo, error) {
	return db.shelves, nil
}

func (db *dbMock) GetPropertyRouters(propertyID uint) ([]database.PropertyRouterInfo, error) {
	return db.routers, nil
}

func (db *dbMock) GetNetworkByID(networkID int64) (*models.Network, error) {
	return db.network, db.networkError
}

func (db *dbMock) GetNetworkHourlyOutages(networkID int64, since time.Time) ([]models.NetworkHourlyOutage, error) {
	db.sinceSeen = since
	return []models.NetworkHourlyOutage{}, nil
}

func (db *dbMock) GetStats() (*database.Stats, error) {
	return db.stats, nil
}

func (db *dbMock) SearchProperties(query string) ([]models.Property, error) {
	db.searchQuery = query
	return db.properties, nil
}

func (db *dbMock) GetXponShelves() ([]models.XponShelf, error) {
	return []models.XponShelf{}, nil
}

func (db *dbMock) GetXponShelfByID(shelfID uint) (*models.XponShelf, error) {
	return &models.XponShelf{}, nil
}

func (db *dbMock) GetRouters() ([]models.Router7x50, error) {
	return []models.Router7x50{}, nil
}

func (db *dbMock) GetRouterByID(routerID uint) (*models.Router7x50, error) {
	return &models.Router7x50{}, nil
}

func (db *dbMock) GetOngoingOutages() ([]database.OngoingOutageInfo, error) {
	return []database.OngoingOutageInfo{}, nil
}

func (db *dbMock) CountOngoingOutages() (int64, error) {
	return db.ongoingCount, nil
}

func (db *dbMock) GetPropertyWideOutages(since time.Time, thresholdPercent float64) ([]database.PropertyWideOutage, error) {
	db.sinceSeen = since
	db.thresholdSeen = thresholdPercent
	return db.wideOutages, nil
}
