package pipeline

import (
	"fmt"
	"time"

	"github.com/jahama808/MDU-Looking-Glass/internal/pkg/infrastructure/repositories/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//RecomputeRollups refreshes exactly the hourly buckets touched by newly inserted outages.
//Each bucket is set to the exact count of raw rows in its hour, so running this after a
//partial re-ingest produces the same result as a full rebuild would.
func RecomputeRollups(tx *gorm.DB, touched []Bucket) error {
	propertyBuckets := map[propertyBucket]bool{}

	for _, bucket := range touched {
		var count int64
		err := tx.Model(&models.Outage{}).
			Where("network_id = ? AND wan_down_start >= ? AND wan_down_start < ?",
				bucket.NetworkID, bucket.Hour, bucket.Hour.Add(time.Hour)).
			Count(&count).Error
		if err != nil {
			return err
		}

		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "network_id"}, {Name: "outage_hour"}},
			DoUpdates: clause.AssignmentColumns([]string{"outage_count"}),
		}).Create(&models.NetworkHourlyOutage{
			NetworkID:   bucket.NetworkID,
			OutageHour:  bucket.Hour,
			OutageCount: int(count),
		}).Error
		if err != nil {
			return err
		}

		network := models.Network{}
		if err := tx.Select("property_id").Where("network_id = ?", bucket.NetworkID).First(&network).Error; err != nil {
			return fmt.Errorf("failed to resolve property for network %d: %w", bucket.NetworkID, err)
		}
		propertyBuckets[propertyBucket{PropertyID: network.PropertyID, Hour: bucket.Hour}] = true
	}

	for bucket := range propertyBuckets {
		var count int64
		err := tx.Model(&models.Outage{}).
			Joins("JOIN networks ON networks.network_id = outages.network_id").
			Where("networks.property_id = ? AND outages.wan_down_start >= ? AND outages.wan_down_start < ?",
				bucket.PropertyID, bucket.Hour, bucket.Hour.Add(time.Hour)).
			Count(&count).Error
		if err != nil {
			return err
		}

		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "property_id"}, {Name: "outage_hour"}},
			DoUpdates: clause.AssignmentColumns([]string{"total_outage_count"}),
		}).Create(&models.PropertyHourlyOutage{
			PropertyID:       bucket.PropertyID,
			OutageHour:       bucket.Hour,
			TotalOutageCount: int(count),
		}).Error
		if err != nil {
			return err
		}
	}

	return nil
}

type propertyBucket struct {
	PropertyID uint
	Hour       time.Time
}

//RebuildAllRollups discards and recomputes every hourly bucket from the raw fact table
func RebuildAllRollups(tx *gorm.DB) error {
	if err := tx.Where("1 = 1").Delete(&models.NetworkHourlyOutage{}).Error; err != nil {
		return err
	}
	if err := tx.Where("1 = 1").Delete(&models.PropertyHourlyOutage{}).Error; err != nil {
		return err
	}

	outages := []models.Outage{}
	if err := tx.Find(&outages).Error; err != nil {
		return err
	}

	touched := map[Bucket]bool{}
	for _, outage := range outages {
		touched[Bucket{NetworkID: outage.NetworkID, Hour: outage.WanDownStart.Truncate(time.Hour)}] = true
	}

	buckets := make([]Bucket, 0, len(touched))
	for bucket := range touched {
		buckets = append(buckets, bucket)
	}

	return RecomputeRollups(tx, buckets)
}

//RefreshTotals recomputes the denormalized outage and network counters from the fact
//tables. Totals are never incremented in place anywhere, so they cannot drift as long as
//this runs in the same transaction as the fact mutations.
func RefreshTotals(tx *gorm.DB) error {
	err := tx.Exec(`
		UPDATE networks
		SET total_outages = (
			SELECT COUNT(*) FROM outages WHERE outages.network_id = networks.network_id
		)`).Error
	if err != nil {
		return err
	}

	return tx.Exec(`
		UPDATE properties
		SET total_networks = (
			SELECT COUNT(*) FROM networks WHERE networks.property_id = properties.property_id
		),
		total_outages = (
			SELECT COUNT(*)
			FROM outages o
			JOIN networks n ON o.network_id = n.network_id
			WHERE n.property_id = properties.property_id
		)`).Error
}

//CounterDrift describes one denormalized counter that no longer matches its fact table
type CounterDrift struct {
	Entity   string
	ID       int64
	Cached   int64
	Recount  int64
	ColumnOf string
}

//CheckCounterConsistency recounts the raw facts behind every denormalized counter and
//returns the mismatches. An empty result is the expected steady state.
func CheckCounterConsistency(tx *gorm.DB) ([]CounterDrift, error) {
	drifts := []CounterDrift{}

	networkRows := []struct {
		NetworkID int64
		Cached    int64
		Recount   int64
	}{}
	err := tx.Raw(`
		SELECT n.network_id, n.total_outages AS cached,
		       (SELECT COUNT(*) FROM outages o WHERE o.network_id = n.network_id) AS recount
		FROM networks n`).Scan(&networkRows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range networkRows {
		if row.Cached != row.Recount {
			drifts = append(drifts, CounterDrift{
				Entity: "network", ID: row.NetworkID,
				Cached: row.Cached, Recount: row.Recount, ColumnOf: "total_outages",
			})
		}
	}

	propertyRows := []struct {
		PropertyID     int64
		CachedOutages  int64
		RecountOutages int64
		CachedNetworks int64
		RecountNets    int64
	}{}
	err = tx.Raw(`
		SELECT p.property_id,
		       p.total_outages AS cached_outages,
		       (SELECT COUNT(*) FROM outages o JOIN networks n ON o.network_id = n.network_id
		        WHERE n.property_id = p.property_id) AS recount_outages,
		       p.total_networks AS cached_networks,
		       (SELECT COUNT(*) FROM networks n WHERE n.property_id = p.property_id) AS recount_nets
		FROM properties p`).Scan(&propertyRows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range propertyRows {
		if row.CachedOutages != row.RecountOutages {
			drifts = append(drifts, CounterDrift{
				Entity: "property", ID: row.PropertyID,
				Cached: row.CachedOutages, Recount: row.RecountOutages, ColumnOf: "total_outages",
			})
		}
		if row.CachedNetworks != row.RecountNets {
			drifts = append(drifts, CounterDrift{
				Entity: "property", ID: row.PropertyID,
				Cached: row.CachedNetworks, Recount: row.RecountNets, ColumnOf: "total_networks",
			})
		}
	}

	return drifts, nil
}
