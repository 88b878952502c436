package models

import (
	"time"
)

//Property is the database model for an MDU property aggregated from the discovery feed
type Property struct {
	ID            uint      `gorm:"primaryKey;column:property_id" json:"property_id"`
	Name          string    `gorm:"column:property_name;uniqueIndex;not null" json:"property_name"`
	TotalNetworks int       `gorm:"column:total_networks" json:"total_networks"`
	TotalOutages  int       `gorm:"column:total_outages" json:"total_outages"`
	Island        string    `gorm:"column:island" json:"island"`
	LastUpdated   time.Time `gorm:"column:last_updated" json:"last_updated"`
}

//TableName keeps the table name compatible with the dashboard schema
func (Property) TableName() string {
	return "properties"
}

//Network is the database model for a single customer network belonging to a property.
//The primary key is the network identifier assigned by the upstream discovery feed.
type Network struct {
	NetworkID        int64    `gorm:"primaryKey;column:network_id;autoIncrement:false" json:"network_id"`
	PropertyID       uint     `gorm:"column:property_id;not null;index:idx_networks_property" json:"property_id"`
	StreetAddress    string   `gorm:"column:street_address" json:"street_address"`
	Subloc           string   `gorm:"column:subloc" json:"subloc"`
	CustomerName     string   `gorm:"column:customer_name" json:"customer_name"`
	TotalOutages     int      `gorm:"column:total_outages" json:"total_outages"`
	DownloadTarget   *float64 `gorm:"column:download_target" json:"download_target"`
	UploadTarget     *float64 `gorm:"column:upload_target" json:"upload_target"`
	GatewaySpeedDown *float64 `gorm:"column:gateway_speed_down" json:"gateway_speed_down"`
	GatewaySpeedUp   *float64 `gorm:"column:gateway_speed_up" json:"gateway_speed_up"`
	SpeedTestDate    string   `gorm:"column:speed_test_date" json:"speed_test_date"`
	CountryCode      string   `gorm:"column:country_code" json:"country_code"`
	CountryName      string   `gorm:"column:country_name" json:"country_name"`
	City             string   `gorm:"column:city" json:"city"`
	Region           string   `gorm:"column:region" json:"region"`
	Latitude         *float64 `gorm:"column:latitude" json:"latitude"`
	Longitude        *float64 `gorm:"column:longitude" json:"longitude"`
	Timezone         string   `gorm:"column:timezone" json:"timezone"`
	PostalCode       string   `gorm:"column:postal_code" json:"postal_code"`
	RegionName       string   `gorm:"column:region_name" json:"region_name"`
}

func (Network) TableName() string {
	return "networks"
}

//Outage is a raw outage fact row. The unique index over (network, start, end) is what
//makes re-processing the same outages file a no-op instead of a duplication.
type Outage struct {
	OutageID     uint      `gorm:"primaryKey;column:outage_id" json:"outage_id"`
	NetworkID    int64     `gorm:"column:network_id;index:idx_outages_network;uniqueIndex:idx_outage_occurrence" json:"network_id"`
	WanDownStart time.Time `gorm:"column:wan_down_start;index:idx_outages_start;uniqueIndex:idx_outage_occurrence" json:"wan_down_start"`
	WanDownEnd   time.Time `gorm:"column:wan_down_end;uniqueIndex:idx_outage_occurrence" json:"wan_down_end"`
	Duration     float64   `gorm:"column:duration" json:"duration"`
	Reason       string    `gorm:"column:reason" json:"reason"`
}

func (Outage) TableName() string {
	return "outages"
}

//NetworkHourlyOutage holds the outage count for one network in one hour bucket
type NetworkHourlyOutage struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	NetworkID   int64     `gorm:"column:network_id;index:idx_network_hourly_network;uniqueIndex:idx_network_hour" json:"network_id"`
	OutageHour  time.Time `gorm:"column:outage_hour;index:idx_network_hourly_hour;uniqueIndex:idx_network_hour" json:"outage_hour"`
	OutageCount int       `gorm:"column:outage_count" json:"outage_count"`
}

func (NetworkHourlyOutage) TableName() string {
	return "network_hourly_outages"
}

//PropertyHourlyOutage holds the summed outage count for one property in one hour bucket
type PropertyHourlyOutage struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	PropertyID       uint      `gorm:"column:property_id;index:idx_property_hourly_property;uniqueIndex:idx_property_hour" json:"property_id"`
	OutageHour       time.Time `gorm:"column:outage_hour;index:idx_property_hourly_hour;uniqueIndex:idx_property_hour" json:"outage_hour"`
	TotalOutageCount int       `gorm:"column:total_outage_count" json:"total_outage_count"`
}

func (PropertyHourlyOutage) TableName() string {
	return "property_hourly_outages"
}

//XponShelf is an xPON shelf parsed out of the ONT equipment names in the discovery feed
type XponShelf struct {
	ShelfID         uint   `gorm:"primaryKey;column:shelf_id" json:"shelf_id"`
	ShelfName       string `gorm:"column:shelf_name;uniqueIndex;not null" json:"shelf_name"`
	TotalProperties int    `gorm:"column:total_properties" json:"total_properties"`
	TotalNetworks   int    `gorm:"column:total_networks" json:"total_networks"`
}

func (XponShelf) TableName() string {
	return "xpon_shelves"
}

//Router7x50 is a 7x50 service router referenced by discovery records
type Router7x50 struct {
	RouterID        uint   `gorm:"primaryKey;column:router_id" json:"router_id"`
	RouterName      string `gorm:"column:router_name;uniqueIndex;not null" json:"router_name"`
	TotalProperties int    `gorm:"column:total_properties" json:"total_properties"`
	TotalNetworks   int    `gorm:"column:total_networks" json:"total_networks"`
}

func (Router7x50) TableName() string {
	return "router_7x50s"
}

//PropertyXponShelf links a property to an xPON shelf with per-property slot/PON detail
type PropertyXponShelf struct {
	PropertyID   uint   `gorm:"primaryKey;column:property_id;autoIncrement:false" json:"property_id"`
	ShelfID      uint   `gorm:"primaryKey;column:shelf_id;autoIncrement:false" json:"shelf_id"`
	NetworkCount int    `gorm:"column:network_count" json:"network_count"`
	Slots        string `gorm:"column:slots" json:"slots"`
	Pons         string `gorm:"column:pons" json:"pons"`
}

func (PropertyXponShelf) TableName() string {
	return "property_xpon_shelves"
}

//Property7x50 links a property to a 7x50 router with the SAP lags seen for it
type Property7x50 struct {
	PropertyID   uint   `gorm:"primaryKey;column:property_id;autoIncrement:false" json:"property_id"`
	RouterID     uint   `gorm:"primaryKey;column:router_id;autoIncrement:false" json:"router_id"`
	NetworkCount int    `gorm:"column:network_count" json:"network_count"`
	Saps         string `gorm:"column:saps" json:"saps"`
}

func (Property7x50) TableName() string {
	return "property_7x50s"
}

//OngoingOutage tracks an outage that has been observed but has not resolved yet
type OngoingOutage struct {
	ID            uint       `gorm:"primaryKey;column:ongoing_outage_id" json:"ongoing_outage_id"`
	NetworkID     int64      `gorm:"column:network_id;uniqueIndex:idx_ongoing_occurrence" json:"network_id"`
	WanDownStart  time.Time  `gorm:"column:wan_down_start;not null;uniqueIndex:idx_ongoing_occurrence" json:"wan_down_start"`
	WanDownEnd    *time.Time `gorm:"column:wan_down_end" json:"wan_down_end"`
	Reason        string     `gorm:"column:reason" json:"reason"`
	FirstDetected time.Time  `gorm:"column:first_detected;not null" json:"first_detected"`
	LastChecked   time.Time  `gorm:"column:last_checked;not null" json:"last_checked"`
}

func (OngoingOutage) TableName() string {
	return "ongoing_outages"
}
