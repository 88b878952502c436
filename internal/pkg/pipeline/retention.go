package pipeline

import (
	"time"

	"github.com/jahama808/MDU-Looking-Glass/internal/pkg/infrastructure/repositories/models"

	"gorm.io/gorm"
)

//RetentionSummary reports what one retention pass pruned
type RetentionSummary struct {
	OutagesDeleted int64 `json:"outages_deleted"`
	RollupsDeleted int64 `json:"rollups_deleted"`
}

//EnforceRetention prunes raw outages and hourly rollups older than retainDays and then
//refreshes the denormalized counters to the reduced fact set. It touches fact tables
//only: a Network or Property whose outage count drops to zero stays in the store.
func EnforceRetention(tx *gorm.DB, retainDays int, now time.Time) (RetentionSummary, error) {
	summary := RetentionSummary{}
	cutoff := now.AddDate(0, 0, -retainDays)

	result := tx.Where("wan_down_start < ?", cutoff).Delete(&models.Outage{})
	if result.Error != nil {
		return summary, result.Error
	}
	summary.OutagesDeleted = result.RowsAffected

	//a bucket spans a whole hour, so a mid-hour cutoff must not take the boundary
	//bucket with it while raw rows later in that hour survive
	cutoffHour := cutoff.Truncate(time.Hour)

	result = tx.Where("outage_hour < ?", cutoffHour).Delete(&models.NetworkHourlyOutage{})
	if result.Error != nil {
		return summary, result.Error
	}
	summary.RollupsDeleted += result.RowsAffected

	result = tx.Where("outage_hour < ?", cutoffHour).Delete(&models.PropertyHourlyOutage{})
	if result.Error != nil {
		return summary, result.Error
	}
	summary.RollupsDeleted += result.RowsAffected

	if err := recountBoundaryHour(tx, cutoffHour, &summary); err != nil {
		return summary, err
	}

	if err := RefreshTotals(tx); err != nil {
		return summary, err
	}

	return summary, nil
}

//recountBoundaryHour sets the buckets of the cutoff hour to the exact count of the raw
//rows that survived pruning, and drops the buckets that emptied out. After this a full
//rollup rebuild produces byte-identical bucket tables.
func recountBoundaryHour(tx *gorm.DB, cutoffHour time.Time, summary *RetentionSummary) error {
	networkIDs := []int64{}
	err := tx.Model(&models.NetworkHourlyOutage{}).
		Where("outage_hour = ?", cutoffHour).
		Pluck("network_id", &networkIDs).Error
	if err != nil {
		return err
	}
	if len(networkIDs) == 0 {
		return nil
	}

	buckets := make([]Bucket, 0, len(networkIDs))
	for _, networkID := range networkIDs {
		buckets = append(buckets, Bucket{NetworkID: networkID, Hour: cutoffHour})
	}
	if err := RecomputeRollups(tx, buckets); err != nil {
		return err
	}

	result := tx.Where("outage_hour = ? AND outage_count = 0", cutoffHour).
		Delete(&models.NetworkHourlyOutage{})
	if result.Error != nil {
		return result.Error
	}
	summary.RollupsDeleted += result.RowsAffected

	result = tx.Where("outage_hour = ? AND total_outage_count = 0", cutoffHour).
		Delete(&models.PropertyHourlyOutage{})
	if result.Error != nil {
		return result.Error
	}
	summary.RollupsDeleted += result.RowsAffected

	return nil
}
