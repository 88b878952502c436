package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/jahama808/MDU-Looking-Glass/internal/pkg/feed"
	"github.com/jahama808/MDU-Looking-Glass/internal/pkg/infrastructure/logging"
	"github.com/jahama808/MDU-Looking-Glass/internal/pkg/infrastructure/repositories/database"
	"github.com/jahama808/MDU-Looking-Glass/internal/pkg/infrastructure/repositories/models"

	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//OutageHistory supplies the authoritative outage history of one network
type OutageHistory interface {
	NetworkOutages(ctx context.Context, networkID int64, start time.Time) ([]feed.NetworkOutage, error)
}

//ResolveSummary reports what one resolution pass changed
type ResolveSummary struct {
	Checked   int `json:"checked"`
	Resolved  int `json:"resolved"`
	Corrected int `json:"corrected"`
	Failed    int `json:"failed"`
}

//throttle between per-network history requests
const apiPause = 500 * time.Millisecond

//Resolver closes out outages whose real end times the daily exports cannot carry. An
//export covers one day, so an outage spanning days surfaces either as an open ongoing
//row or as a row whose end was guessed at the export boundary. The per-network history
//endpoint knows what actually happened.
type Resolver struct {
	db    *database.Database
	api   OutageHistory
	log   logging.Logger
	clock clockwork.Clock
	pause time.Duration
}

//NewResolver assembles a Resolver around an open store handle and a history source
func NewResolver(db *database.Database, api OutageHistory, log logging.Logger, clock clockwork.Clock) *Resolver {
	return &Resolver{
		db:    db,
		api:   api,
		log:   log,
		clock: clock,
		pause: apiPause,
	}
}

//Run re-checks every potentially unresolved outage that started within the trailing
//daysBack days: open ongoing rows, and completed rows whose recorded duration exceeds a
//day. Changed hours are recounted and the denormalized totals refreshed in the same
//transaction.
func (r *Resolver) Run(ctx context.Context, daysBack int) (*ResolveSummary, error) {
	now := r.clock.Now().UTC()
	cutoff := now.AddDate(0, 0, -daysBack)
	summary := &ResolveSummary{}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		ongoing := []models.OngoingOutage{}
		err := tx.Where("wan_down_end IS NULL AND wan_down_start >= ?", cutoff).Find(&ongoing).Error
		if err != nil {
			return err
		}

		longOutages := []models.Outage{}
		err = tx.Where("wan_down_start >= ? AND duration > ?", cutoff, (24 * time.Hour).Seconds()).
			Find(&longOutages).Error
		if err != nil {
			return err
		}

		r.log.Infof("Checking %d ongoing and %d multi-day outages against the history endpoint",
			len(ongoing), len(longOutages))

		touched := map[Bucket]bool{}

		for _, row := range ongoing {
			summary.Checked++
			record, err := r.lookup(ctx, row.NetworkID, row.WanDownStart)
			if err != nil {
				summary.Failed++
				r.log.Errorf("History lookup for network %d failed: %s", row.NetworkID, err.Error())
				continue
			}

			if record == nil || record.End.IsZero() {
				err := tx.Model(&models.OngoingOutage{}).
					Where("ongoing_outage_id = ?", row.ID).
					Update("last_checked", now).Error
				if err != nil {
					return err
				}
				continue
			}

			reason := record.Reason
			if reason == "" {
				reason = row.Reason
			}
			outage := models.Outage{
				NetworkID:    row.NetworkID,
				WanDownStart: row.WanDownStart,
				WanDownEnd:   record.End,
				Duration:     record.End.Sub(row.WanDownStart).Seconds(),
				Reason:       reason,
			}
			result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&outage)
			if result.Error != nil {
				return fmt.Errorf("failed to store resolved outage for network %d: %w", row.NetworkID, result.Error)
			}
			if err := tx.Delete(&models.OngoingOutage{}, row.ID).Error; err != nil {
				return err
			}

			touched[Bucket{NetworkID: row.NetworkID, Hour: row.WanDownStart.Truncate(time.Hour)}] = true
			summary.Resolved++
			r.log.Infof("Resolved ongoing outage for network %d: down %s, up %s",
				row.NetworkID, row.WanDownStart.Format(time.RFC3339), record.End.Format(time.RFC3339))
		}

		for _, row := range longOutages {
			summary.Checked++
			record, err := r.lookup(ctx, row.NetworkID, row.WanDownStart)
			if err != nil {
				summary.Failed++
				r.log.Errorf("History lookup for network %d failed: %s", row.NetworkID, err.Error())
				continue
			}

			if record == nil || record.End.IsZero() || record.End.Equal(row.WanDownEnd) {
				continue
			}

			updates := map[string]interface{}{
				"wan_down_end": record.End,
				"duration":     record.End.Sub(row.WanDownStart).Seconds(),
			}
			if record.Reason != "" {
				updates["reason"] = record.Reason
			}
			err = tx.Model(&models.Outage{}).Where("outage_id = ?", row.OutageID).Updates(updates).Error
			if err != nil {
				return err
			}

			summary.Corrected++
			r.log.Infof("Corrected end time for network %d outage starting %s: %s -> %s",
				row.NetworkID, row.WanDownStart.Format(time.RFC3339),
				row.WanDownEnd.Format(time.RFC3339), record.End.Format(time.RFC3339))
		}

		if len(touched) == 0 {
			return nil
		}

		buckets := make([]Bucket, 0, len(touched))
		for bucket := range touched {
			buckets = append(buckets, bucket)
		}
		if err := RecomputeRollups(tx, buckets); err != nil {
			return fmt.Errorf("failed to recompute rollups: %w", err)
		}
		return RefreshTotals(tx)
	})
	if err != nil {
		return nil, err
	}

	r.log.Infof("Resolution pass complete: %d checked, %d resolved, %d corrected, %d failed",
		summary.Checked, summary.Resolved, summary.Corrected, summary.Failed)

	return summary, nil
}

//lookup fetches the history of one network and returns the record matching the given
//start time, or nil when the API does not know the outage
func (r *Resolver) lookup(ctx context.Context, networkID int64, start time.Time) (*feed.NetworkOutage, error) {
	history, err := r.api.NetworkOutages(ctx, networkID, start.Add(-time.Minute))
	if err != nil {
		return nil, err
	}
	time.Sleep(r.pause)

	for i := range history {
		if history[i].Start.Equal(start) {
			return &history[i], nil
		}
	}
	return nil, nil
}
