package pipeline

import (
	"fmt"
	"time"

	"github.com/jahama808/MDU-Looking-Glass/internal/pkg/infrastructure/logging"
	"github.com/jahama808/MDU-Looking-Glass/internal/pkg/infrastructure/repositories/models"
	"github.com/jahama808/MDU-Looking-Glass/internal/pkg/parsing"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//IngestSummary reports what one outages pass did with the raw fact table
type IngestSummary struct {
	Inserted              int `json:"inserted"`
	SkippedUnknownNetwork int `json:"skipped_unknown_network"`
	DuplicatesSkipped     int `json:"duplicates_skipped"`
}

//Bucket identifies one (network, hour) rollup bucket touched by an ingest pass
type Bucket struct {
	NetworkID int64
	Hour      time.Time
}

//Ingest appends raw outage rows for networks that exist in the store. Outages referencing
//unknown networks are dropped and counted; they never create a placeholder property. The
//unique (network, start, end) key turns a re-run over the same file into counted no-ops.
func Ingest(tx *gorm.DB, rows []parsing.OutageRow, log logging.Logger) (IngestSummary, []Bucket, error) {
	summary := IngestSummary{}

	knownNetworks, err := loadNetworkIDs(tx)
	if err != nil {
		return summary, nil, err
	}

	touched := map[Bucket]bool{}
	locations := map[int64]parsing.Location{}

	for _, row := range rows {
		if !knownNetworks[row.NetworkID] {
			summary.SkippedUnknownNetwork++
			continue
		}

		outage := models.Outage{
			NetworkID:    row.NetworkID,
			WanDownStart: row.StartTime,
			WanDownEnd:   row.EndTime,
			Duration:     row.Duration,
			Reason:       row.Reason,
		}

		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&outage)
		if result.Error != nil {
			return summary, nil, fmt.Errorf("failed to insert outage for network %d: %w", row.NetworkID, result.Error)
		}

		if result.RowsAffected == 0 {
			summary.DuplicatesSkipped++
			continue
		}

		summary.Inserted++
		touched[Bucket{NetworkID: row.NetworkID, Hour: row.OutageHour()}] = true

		if _, seen := locations[row.NetworkID]; !seen {
			locations[row.NetworkID] = row.Location
		}
	}

	if err := backfillNetworkLocations(tx, locations); err != nil {
		return summary, nil, err
	}

	if summary.SkippedUnknownNetwork > 0 {
		log.Warnf("Skipped %d outages for networks not in the discovery set", summary.SkippedUnknownNetwork)
	}

	buckets := make([]Bucket, 0, len(touched))
	for bucket := range touched {
		buckets = append(buckets, bucket)
	}

	return summary, buckets, nil
}

//UpsertOngoing records outage rows that have no end time yet. An existing row just gets
//its last_checked refreshed; first_detected is preserved from the first sighting.
func UpsertOngoing(tx *gorm.DB, rows []parsing.OutageRow, now time.Time) (int, error) {
	knownNetworks, err := loadNetworkIDs(tx)
	if err != nil {
		return 0, err
	}

	stored := 0
	for _, row := range rows {
		if !knownNetworks[row.NetworkID] {
			continue
		}

		ongoing := models.OngoingOutage{
			NetworkID:     row.NetworkID,
			WanDownStart:  row.StartTime,
			Reason:        row.Reason,
			FirstDetected: now,
			LastChecked:   now,
		}

		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "network_id"}, {Name: "wan_down_start"}},
			DoUpdates: clause.AssignmentColumns([]string{"last_checked", "reason"}),
		}).Create(&ongoing)
		if result.Error != nil {
			return stored, result.Error
		}
		stored++
	}

	return stored, nil
}

//ReconcileOngoing removes ongoing outages that have since shown up as completed raw
//outages, returning the number of rows resolved this way.
func ReconcileOngoing(tx *gorm.DB) (int64, error) {
	result := tx.Exec(`
		DELETE FROM ongoing_outages
		WHERE wan_down_end IS NULL
		AND EXISTS (
			SELECT 1 FROM outages o
			WHERE o.network_id = ongoing_outages.network_id
			AND o.wan_down_start = ongoing_outages.wan_down_start
		)`)
	return result.RowsAffected, result.Error
}

func loadNetworkIDs(tx *gorm.DB) (map[int64]bool, error) {
	ids := []int64{}
	if err := tx.Model(&models.Network{}).Pluck("network_id", &ids).Error; err != nil {
		return nil, err
	}

	known := make(map[int64]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}
	return known, nil
}

//backfillNetworkLocations fills still-empty location columns from the outages feed.
//Known values are kept; the discovery feed stays authoritative for city and postal code.
func backfillNetworkLocations(tx *gorm.DB, locations map[int64]parsing.Location) error {
	for networkID, loc := range locations {
		err := tx.Exec(`
			UPDATE networks SET
				country_code = COALESCE(NULLIF(country_code, ''), ?),
				country_name = COALESCE(NULLIF(country_name, ''), ?),
				city = COALESCE(NULLIF(city, ''), ?),
				region = COALESCE(NULLIF(region, ''), ?),
				latitude = COALESCE(latitude, ?),
				longitude = COALESCE(longitude, ?),
				timezone = COALESCE(NULLIF(timezone, ''), ?),
				postal_code = COALESCE(NULLIF(postal_code, ''), ?),
				region_name = COALESCE(NULLIF(region_name, ''), ?)
			WHERE network_id = ?`,
			loc.CountryCode, loc.CountryName, loc.City, loc.Region,
			loc.Latitude, loc.Longitude, loc.Timezone, loc.PostalCode, loc.RegionName,
			networkID).Error
		if err != nil {
			return err
		}
	}
	return nil
}
