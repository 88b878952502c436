package pipeline

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jahama808/MDU-Looking-Glass/internal/pkg/infrastructure/logging"
	"github.com/jahama808/MDU-Looking-Glass/internal/pkg/infrastructure/repositories/models"
	"github.com/jahama808/MDU-Looking-Glass/internal/pkg/island"
	"github.com/jahama808/MDU-Looking-Glass/internal/pkg/parsing"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//ReconciliationSummary reports what one discovery pass changed in the entity tables
type ReconciliationSummary struct {
	PropertiesAdded   int `json:"properties_added"`
	PropertiesUpdated int `json:"properties_updated"`
	NetworksAdded     int `json:"networks_added"`
	NetworksUpdated   int `json:"networks_updated"`
	NetworksRemoved   int `json:"networks_removed"`
}

//Reconcile upserts the Property, Network and equipment entities described by one discovery
//file. Networks are never deleted here: a network with zero outages is a healthy network,
//and the only path that removes entities is the rebuild-mode truncation in the Processor.
func Reconcile(tx *gorm.DB, rows []parsing.DiscoveryRow, now time.Time, log logging.Logger) (ReconciliationSummary, error) {
	summary := ReconciliationSummary{}

	byProperty := map[string][]parsing.DiscoveryRow{}
	order := []string{}
	for _, row := range rows {
		key := normalizePropertyKey(row.PropertyName)
		if _, seen := byProperty[key]; !seen {
			order = append(order, key)
		}
		byProperty[key] = append(byProperty[key], row)
	}
	sort.Strings(order)

	for _, key := range order {
		propertyRows := byProperty[key]

		property, created, err := upsertProperty(tx, propertyRows, now)
		if err != nil {
			return summary, fmt.Errorf("failed to upsert property %q: %w", propertyRows[0].PropertyName, err)
		}
		if created {
			summary.PropertiesAdded++
		} else {
			summary.PropertiesUpdated++
		}

		added, updated, err := upsertNetworks(tx, property.ID, propertyRows)
		if err != nil {
			return summary, fmt.Errorf("failed to upsert networks for property %q: %w", property.Name, err)
		}
		summary.NetworksAdded += added
		summary.NetworksUpdated += updated

		if err := upsertEquipment(tx, property.ID, propertyRows); err != nil {
			return summary, fmt.Errorf("failed to upsert equipment for property %q: %w", property.Name, err)
		}
	}

	if err := updateEquipmentTotals(tx); err != nil {
		return summary, err
	}

	log.Infof("Reconciled discovery data: %d properties added, %d updated, %d networks added, %d updated",
		summary.PropertiesAdded, summary.PropertiesUpdated, summary.NetworksAdded, summary.NetworksUpdated)

	return summary, nil
}

func normalizePropertyKey(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

func upsertProperty(tx *gorm.DB, rows []parsing.DiscoveryRow, now time.Time) (*models.Property, bool, error) {
	name := strings.TrimSpace(rows[0].PropertyName)

	detected := ""
	for _, row := range rows {
		detected = island.Detect(row.City, row.Zip, nil, nil)
		if detected != "" {
			break
		}
	}
	if detected == "" {
		detected = island.FromPropertyName(name)
	}

	property := models.Property{}
	result := tx.Where("UPPER(property_name) = ?", normalizePropertyKey(name)).Limit(1).Find(&property)
	if result.Error != nil {
		return nil, false, result.Error
	}

	if result.RowsAffected == 0 {
		property = models.Property{
			Name:        name,
			Island:      detected,
			LastUpdated: now,
		}
		if err := tx.Create(&property).Error; err != nil {
			return nil, false, err
		}
		return &property, true, nil
	}

	property.LastUpdated = now
	if detected != "" {
		property.Island = detected
	}
	if err := tx.Save(&property).Error; err != nil {
		return nil, false, err
	}

	return &property, false, nil
}

//backfillIslands resolves the island for properties still missing one, using the location
//columns their networks picked up from the outages feed. Discovery rows carry no
//coordinates, so lat/long detection only becomes possible after ingestion has run.
func backfillIslands(tx *gorm.DB) error {
	properties := []models.Property{}
	if err := tx.Where("island = '' OR island IS NULL").Find(&properties).Error; err != nil {
		return err
	}

	for _, property := range properties {
		networks := []models.Network{}
		if err := tx.Where("property_id = ?", property.ID).Find(&networks).Error; err != nil {
			return err
		}

		detected := ""
		for _, network := range networks {
			detected = island.Detect(network.City, network.PostalCode, network.Latitude, network.Longitude)
			if detected != "" {
				break
			}
		}
		if detected == "" {
			detected = island.FromPropertyName(property.Name)
		}
		if detected == "" {
			continue
		}

		err := tx.Model(&models.Property{}).
			Where("property_id = ?", property.ID).
			Update("island", detected).Error
		if err != nil {
			return err
		}
	}

	return nil
}

func upsertNetworks(tx *gorm.DB, propertyID uint, rows []parsing.DiscoveryRow) (added, updated int, err error) {
	seen := map[int64]bool{}

	for _, row := range rows {
		if seen[row.NetworkID] {
			continue
		}
		seen[row.NetworkID] = true

		downloadTarget, uploadTarget := parsing.ParseServiceConfigSpeeds(row.ServiceConfigName)

		network := models.Network{}
		result := tx.Where("network_id = ?", row.NetworkID).Limit(1).Find(&network)
		if result.Error != nil {
			return added, updated, result.Error
		}
		isNew := result.RowsAffected == 0

		// Last write wins for address and customer fields; a network that migrated to
		// another property is re-parented here, never duplicated.
		network.NetworkID = row.NetworkID
		network.PropertyID = propertyID
		network.StreetAddress = row.StreetAddress
		network.Subloc = row.Subloc
		network.CustomerName = row.CustomerName
		network.DownloadTarget = downloadTarget
		network.UploadTarget = uploadTarget
		network.GatewaySpeedDown = parsing.ParseSpeedValue(row.GatewaySpeedDown)
		network.GatewaySpeedUp = parsing.ParseSpeedValue(row.GatewaySpeedUp)
		network.SpeedTestDate = row.GatewaySpeedDate
		if row.City != "" {
			network.City = row.City
		}
		if row.Zip != "" {
			network.PostalCode = row.Zip
		}

		if isNew {
			if err := tx.Create(&network).Error; err != nil {
				return added, updated, err
			}
			added++
		} else {
			if err := tx.Save(&network).Error; err != nil {
				return added, updated, err
			}
			updated++
		}
	}

	return added, updated, nil
}

type shelfAggregate struct {
	count int
	slots map[string]bool
	pons  map[string]bool
}

type routerAggregate struct {
	count int
	saps  map[string]bool
}

func upsertEquipment(tx *gorm.DB, propertyID uint, rows []parsing.DiscoveryRow) error {
	shelves := map[string]*shelfAggregate{}
	routers := map[string]*routerAggregate{}

	for _, row := range rows {
		if shelfName, slot, pon, ok := parsing.ParseONTName(row.EquipName); ok {
			agg := shelves[shelfName]
			if agg == nil {
				agg = &shelfAggregate{slots: map[string]bool{}, pons: map[string]bool{}}
				shelves[shelfName] = agg
			}
			agg.count++
			if slot != "" {
				agg.slots[slot] = true
			}
			if pon != "" {
				agg.pons[pon] = true
			}
		}

		routerName := strings.TrimSpace(row.RouterName)
		if routerName != "" {
			agg := routers[routerName]
			if agg == nil {
				agg = &routerAggregate{saps: map[string]bool{}}
				routers[routerName] = agg
			}
			agg.count++
			if lag := parsing.ParseSAPLag(row.SAP); lag != "" {
				agg.saps[lag] = true
			}
		}
	}

	for _, shelfName := range sortedKeys(shelves) {
		agg := shelves[shelfName]

		shelf := models.XponShelf{ShelfName: shelfName}
		if err := tx.Where("shelf_name = ?", shelfName).FirstOrCreate(&shelf).Error; err != nil {
			return err
		}

		link := models.PropertyXponShelf{
			PropertyID:   propertyID,
			ShelfID:      shelf.ShelfID,
			NetworkCount: agg.count,
			Slots:        joinSortedNumeric(agg.slots),
			Pons:         joinSortedNumeric(agg.pons),
		}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&link).Error; err != nil {
			return err
		}
	}

	for _, routerName := range sortedKeys(routers) {
		agg := routers[routerName]

		router := models.Router7x50{RouterName: routerName}
		if err := tx.Where("router_name = ?", routerName).FirstOrCreate(&router).Error; err != nil {
			return err
		}

		link := models.Property7x50{
			PropertyID:   propertyID,
			RouterID:     router.RouterID,
			NetworkCount: agg.count,
			Saps:         joinSorted(agg.saps),
		}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&link).Error; err != nil {
			return err
		}
	}

	return nil
}

func updateEquipmentTotals(tx *gorm.DB) error {
	err := tx.Exec(`
		UPDATE xpon_shelves
		SET total_properties = (
			SELECT COUNT(DISTINCT property_id)
			FROM property_xpon_shelves
			WHERE shelf_id = xpon_shelves.shelf_id
		),
		total_networks = (
			SELECT COALESCE(SUM(network_count), 0)
			FROM property_xpon_shelves
			WHERE shelf_id = xpon_shelves.shelf_id
		)`).Error
	if err != nil {
		return err
	}

	return tx.Exec(`
		UPDATE router_7x50s
		SET total_properties = (
			SELECT COUNT(DISTINCT property_id)
			FROM property_7x50s
			WHERE router_id = router_7x50s.router_id
		),
		total_networks = (
			SELECT COALESCE(SUM(network_count), 0)
			FROM property_7x50s
			WHERE router_id = router_7x50s.router_id
		)`).Error
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func joinSorted(set map[string]bool) string {
	return strings.Join(sortedKeys(set), ",")
}

func joinSortedNumeric(set map[string]bool) string {
	keys := sortedKeys(set)
	sort.Slice(keys, func(i, j int) bool {
		return numericValue(keys[i]) < numericValue(keys[j])
	})
	return strings.Join(keys, ",")
}

func numericValue(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}
