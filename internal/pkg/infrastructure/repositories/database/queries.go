package database

import (
	"time"

	"github.com/jahama808/MDU-Looking-Glass/internal/pkg/infrastructure/repositories/models"
)

//Stats is the dashboard-wide summary exposed on /api/stats
type Stats struct {
	PropertiesWithOutages int64             `json:"properties_with_outages"`
	TotalProperties       int64             `json:"total_properties"`
	TotalNetworks         int64             `json:"total_networks"`
	NetworksWithOutages   int64             `json:"networks_with_outages"`
	TotalOutages          int64             `json:"total_outages"`
	TopProperties         []models.Property `json:"top_properties"`
}

//PropertyShelfInfo is one xPON shelf serving a property, with the per-property detail
type PropertyShelfInfo struct {
	ShelfID      uint   `json:"shelf_id"`
	ShelfName    string `json:"shelf_name"`
	NetworkCount int    `json:"network_count"`
	Slots        string `json:"slots"`
	Pons         string `json:"pons"`
}

//PropertyRouterInfo is one 7x50 router serving a property
type PropertyRouterInfo struct {
	RouterID     uint   `json:"router_id"`
	RouterName   string `json:"router_name"`
	NetworkCount int    `json:"network_count"`
	Saps         string `json:"saps"`
}

//OngoingOutageInfo is an unresolved outage joined with its network and property context
type OngoingOutageInfo struct {
	NetworkID     int64     `json:"network_id"`
	WanDownStart  time.Time `json:"wan_down_start"`
	Reason        string    `json:"reason"`
	FirstDetected time.Time `json:"first_detected"`
	LastChecked   time.Time `json:"last_checked"`
	StreetAddress string    `json:"street_address"`
	Subloc        string    `json:"subloc"`
	PropertyName  string    `json:"property_name"`
}

//PropertyWideOutage reports a property where a large share of networks went down recently
type PropertyWideOutage struct {
	PropertyName     string  `json:"property_name"`
	Island           string  `json:"island"`
	TotalNetworks    int     `json:"total_networks"`
	NetworksDown     int     `json:"networks_down"`
	OutagePercentage float64 `json:"outage_percentage"`
}

func (db *Database) GetProperties() ([]models.Property, error) {
	properties := []models.Property{}
	result := db.impl.Order("total_outages DESC, property_name ASC").Find(&properties)
	return properties, result.Error
}

func (db *Database) GetPropertyByID(propertyID uint) (*models.Property, error) {
	property := &models.Property{}
	if err := db.takeByID(property, "property_id = ?", propertyID); err != nil {
		return nil, err
	}
	return property, nil
}

func (db *Database) GetPropertyNetworks(propertyID uint) ([]models.Network, error) {
	networks := []models.Network{}
	result := db.impl.Where("property_id = ?", propertyID).Order("street_address ASC").Find(&networks)
	return networks, result.Error
}

func (db *Database) GetPropertyHourlyOutages(propertyID uint, since time.Time) ([]models.PropertyHourlyOutage, error) {
	hours := []models.PropertyHourlyOutage{}
	result := db.impl.
		Where("property_id = ? AND outage_hour >= ?", propertyID, since).
		Order("outage_hour ASC").
		Find(&hours)
	return hours, result.Error
}

func (db *Database) GetPropertyShelves(propertyID uint) ([]PropertyShelfInfo, error) {
	shelves := []PropertyShelfInfo{}
	result := db.impl.Raw(`
		SELECT xs.shelf_id, xs.shelf_name, pxs.network_count, pxs.slots, pxs.pons
		FROM property_xpon_shelves pxs
		JOIN xpon_shelves xs ON pxs.shelf_id = xs.shelf_id
		WHERE pxs.property_id = ?
		ORDER BY xs.shelf_name`, propertyID).Scan(&shelves)
	return shelves, result.Error
}

func (db *Database) GetPropertyRouters(propertyID uint) ([]PropertyRouterInfo, error) {
	routers := []PropertyRouterInfo{}
	result := db.impl.Raw(`
		SELECT r.router_id, r.router_name, p7.network_count, p7.saps
		FROM property_7x50s p7
		JOIN router_7x50s r ON p7.router_id = r.router_id
		WHERE p7.property_id = ?
		ORDER BY r.router_name`, propertyID).Scan(&routers)
	return routers, result.Error
}

func (db *Database) GetNetworkByID(networkID int64) (*models.Network, error) {
	network := &models.Network{}
	if err := db.takeByID(network, "network_id = ?", networkID); err != nil {
		return nil, err
	}
	return network, nil
}

func (db *Database) GetNetworkHourlyOutages(networkID int64, since time.Time) ([]models.NetworkHourlyOutage, error) {
	hours := []models.NetworkHourlyOutage{}
	result := db.impl.
		Where("network_id = ? AND outage_hour >= ?", networkID, since).
		Order("outage_hour ASC").
		Find(&hours)
	return hours, result.Error
}

func (db *Database) GetStats() (*Stats, error) {
	stats := &Stats{}

	counts := []struct {
		dest  *int64
		model interface{}
		query string
	}{
		{&stats.PropertiesWithOutages, &models.Property{}, "total_outages > 0"},
		{&stats.TotalProperties, &models.Property{}, ""},
		{&stats.TotalNetworks, &models.Network{}, ""},
		{&stats.NetworksWithOutages, &models.Network{}, "total_outages > 0"},
		{&stats.TotalOutages, &models.Outage{}, ""},
	}

	for _, c := range counts {
		q := db.impl.Model(c.model)
		if c.query != "" {
			q = q.Where(c.query)
		}
		if err := q.Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	result := db.impl.Order("total_outages DESC").Limit(10).Find(&stats.TopProperties)
	return stats, result.Error
}

func (db *Database) SearchProperties(query string) ([]models.Property, error) {
	properties := []models.Property{}
	result := db.impl.
		Where("property_name LIKE ?", "%"+query+"%").
		Order("property_name ASC").
		Find(&properties)
	return properties, result.Error
}

func (db *Database) GetXponShelves() ([]models.XponShelf, error) {
	shelves := []models.XponShelf{}
	result := db.impl.Order("shelf_name ASC").Find(&shelves)
	return shelves, result.Error
}

func (db *Database) GetXponShelfByID(shelfID uint) (*models.XponShelf, error) {
	shelf := &models.XponShelf{}
	if err := db.takeByID(shelf, "shelf_id = ?", shelfID); err != nil {
		return nil, err
	}
	return shelf, nil
}

func (db *Database) GetRouters() ([]models.Router7x50, error) {
	routers := []models.Router7x50{}
	result := db.impl.Order("router_name ASC").Find(&routers)
	return routers, result.Error
}

func (db *Database) GetRouterByID(routerID uint) (*models.Router7x50, error) {
	router := &models.Router7x50{}
	if err := db.takeByID(router, "router_id = ?", routerID); err != nil {
		return nil, err
	}
	return router, nil
}

func (db *Database) GetOngoingOutages() ([]OngoingOutageInfo, error) {
	outages := []OngoingOutageInfo{}
	result := db.impl.Raw(`
		SELECT oo.network_id, oo.wan_down_start, oo.reason, oo.first_detected, oo.last_checked,
		       n.street_address, n.subloc, p.property_name
		FROM ongoing_outages oo
		JOIN networks n ON oo.network_id = n.network_id
		JOIN properties p ON n.property_id = p.property_id
		WHERE oo.wan_down_end IS NULL
		ORDER BY oo.wan_down_start ASC`).Scan(&outages)
	return outages, result.Error
}

func (db *Database) CountOngoingOutages() (int64, error) {
	var count int64
	result := db.impl.Model(&models.OngoingOutage{}).Where("wan_down_end IS NULL").Count(&count)
	return count, result.Error
}

//GetPropertyWideOutages finds properties where at least thresholdPercent of the networks
//reported an outage starting after since
func (db *Database) GetPropertyWideOutages(since time.Time, thresholdPercent float64) ([]PropertyWideOutage, error) {
	outages := []PropertyWideOutage{}
	result := db.impl.Raw(`
		SELECT
			p.property_name,
			p.island,
			p.total_networks,
			COUNT(DISTINCT n.network_id) AS networks_down,
			CAST(COUNT(DISTINCT n.network_id) AS FLOAT) / p.total_networks * 100 AS outage_percentage
		FROM properties p
		JOIN networks n ON p.property_id = n.property_id
		JOIN outages o ON n.network_id = o.network_id
		WHERE o.wan_down_start >= ? AND p.total_networks > 0
		GROUP BY p.property_id, p.property_name, p.island, p.total_networks
		HAVING CAST(COUNT(DISTINCT n.network_id) AS FLOAT) / p.total_networks * 100 >= ?
		ORDER BY outage_percentage DESC`, since, thresholdPercent).Scan(&outages)
	return outages, result.Error
}
