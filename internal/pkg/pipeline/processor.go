package pipeline

import (
	"fmt"
	"time"

	"github.com/jahama808/MDU-Looking-Glass/internal/pkg/infrastructure/logging"
	"github.com/jahama808/MDU-Looking-Glass/internal/pkg/infrastructure/repositories/database"
	"github.com/jahama808/MDU-Looking-Glass/internal/pkg/infrastructure/repositories/models"
	"github.com/jahama808/MDU-Looking-Glass/internal/pkg/parsing"

	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
)

//Mode selects between incremental and full-replace processing
type Mode string

const (
	//ModeAppend upserts and inserts without clearing anything first
	ModeAppend Mode = "append"
	//ModeRebuild truncates every entity and fact table before processing the file pair
	ModeRebuild Mode = "rebuild"
)

//ParseMode validates a mode string from the CLI
func ParseMode(value string) (Mode, error) {
	switch Mode(value) {
	case ModeAppend, ModeRebuild:
		return Mode(value), nil
	}
	return "", fmt.Errorf("invalid mode %q: must be append or rebuild", value)
}

//RunOptions are the parameters for processing one file pair
type RunOptions struct {
	OutagesFile   string
	DiscoveryFile string
	Mode          Mode
	RetainDays    int
}

//RunSummary aggregates everything one processing run did
type RunSummary struct {
	Mode                Mode                          `json:"mode"`
	OutagesFile         string                        `json:"outages_file"`
	DiscoveryFile       string                        `json:"discovery_file"`
	RowsSkipped         int                           `json:"rows_skipped"`
	Reconciliation      ReconciliationSummary         `json:"reconciliation"`
	Ingest              IngestSummary                 `json:"ingest"`
	Retention           RetentionSummary              `json:"retention"`
	OngoingStored       int                           `json:"ongoing_stored"`
	OngoingResolved     int64                         `json:"ongoing_resolved"`
	FinalNetworkCount   int64                         `json:"final_network_count"`
	FinalPropertyCount  int64                         `json:"final_property_count"`
	PropertyWideOutages []database.PropertyWideOutage `json:"property_wide_outages"`
}

//Processor runs the reconciliation and ingestion pipeline for one input file pair at a
//time. All writes for a run happen inside one transaction on the injected store handle.
type Processor struct {
	db        *database.Database
	log       logging.Logger
	clock     clockwork.Clock
	reportDir string
	//percentage of a property's networks that must report an outage within the
	//trailing 24 hours before the property counts as having a property-wide outage
	outageThresholdPercent float64
}

//NewProcessor assembles a Processor around an open store handle
func NewProcessor(db *database.Database, log logging.Logger, clock clockwork.Clock, reportDir string, outageThresholdPercent float64) *Processor {
	return &Processor{
		db:                     db,
		log:                    log,
		clock:                  clock,
		reportDir:              reportDir,
		outageThresholdPercent: outageThresholdPercent,
	}
}

//Run processes one outages file and an optional discovery file. Fatal file-format
//problems abort before anything is written; row-level problems are skipped, counted and
//reported in the returned summary.
func (p *Processor) Run(opts RunOptions) (*RunSummary, error) {
	now := p.clock.Now().UTC()

	outageTable, err := parsing.ParseOutagesFile(opts.OutagesFile, p.log)
	if err != nil {
		return nil, err
	}
	p.log.Infof("Loaded %d outage records from %s (%d skipped, %d ongoing)",
		len(outageTable.Rows), opts.OutagesFile, outageTable.SkippedRows, len(outageTable.OngoingRows))

	var discoveryTable *parsing.DiscoveryTable
	if opts.DiscoveryFile != "" {
		discoveryTable, err = parsing.ParseDiscoveryFile(opts.DiscoveryFile, p.log)
		if err != nil {
			return nil, err
		}
		p.log.Infof("Loaded %d discovery records from %s (%d skipped)",
			len(discoveryTable.Rows), opts.DiscoveryFile, discoveryTable.SkippedRows)
	}

	summary := &RunSummary{
		Mode:          opts.Mode,
		OutagesFile:   opts.OutagesFile,
		DiscoveryFile: opts.DiscoveryFile,
		RowsSkipped:   outageTable.SkippedRows,
	}
	if discoveryTable != nil {
		summary.RowsSkipped += discoveryTable.SkippedRows
	}

	err = p.db.Transaction(func(tx *gorm.DB) error {
		var priorNetworkIDs map[int64]bool

		if opts.Mode == ModeRebuild {
			priorNetworkIDs, err = loadNetworkIDs(tx)
			if err != nil {
				return err
			}
			if err := truncateAll(tx); err != nil {
				return fmt.Errorf("failed to clear store for rebuild: %w", err)
			}
			p.log.Infof("All existing data cleared (full rebuild mode)")
		} else {
			summary.Retention, err = EnforceRetention(tx, opts.RetainDays, now)
			if err != nil {
				return fmt.Errorf("failed to enforce retention: %w", err)
			}
			p.log.Infof("Removed data older than %d days: %d outages, %d rollup buckets",
				opts.RetainDays, summary.Retention.OutagesDeleted, summary.Retention.RollupsDeleted)
		}

		if discoveryTable != nil {
			summary.Reconciliation, err = Reconcile(tx, discoveryTable.Rows, now, p.log)
			if err != nil {
				return err
			}
		}

		var networkCount int64
		if err := tx.Model(&models.Network{}).Count(&networkCount).Error; err != nil {
			return err
		}

		if networkCount == 0 {
			p.log.Warnf("No networks in store; process a discovery file first. Skipping outage ingestion.")
		} else {
			var buckets []Bucket
			summary.Ingest, buckets, err = Ingest(tx, outageTable.Rows, p.log)
			if err != nil {
				return err
			}

			if err := RecomputeRollups(tx, buckets); err != nil {
				return fmt.Errorf("failed to recompute rollups: %w", err)
			}

			summary.OngoingStored, err = UpsertOngoing(tx, outageTable.OngoingRows, now)
			if err != nil {
				return err
			}

			summary.OngoingResolved, err = ReconcileOngoing(tx)
			if err != nil {
				return err
			}

			//locations only arrive with the outages feed, so properties the discovery
			//file could not place get a second detection pass here
			if err := backfillIslands(tx); err != nil {
				return fmt.Errorf("failed to backfill islands: %w", err)
			}
		}

		if err := RefreshTotals(tx); err != nil {
			return fmt.Errorf("failed to refresh totals: %w", err)
		}

		if opts.Mode == ModeRebuild {
			current, err := loadNetworkIDs(tx)
			if err != nil {
				return err
			}
			for id := range priorNetworkIDs {
				if !current[id] {
					summary.Reconciliation.NetworksRemoved++
				}
			}
		}

		if err := tx.Model(&models.Network{}).Count(&summary.FinalNetworkCount).Error; err != nil {
			return err
		}
		return tx.Model(&models.Property{}).Count(&summary.FinalPropertyCount).Error
	})
	if err != nil {
		return nil, err
	}

	summary.PropertyWideOutages, err = p.db.GetPropertyWideOutages(now.Add(-24*time.Hour), p.outageThresholdPercent)
	if err != nil {
		return nil, fmt.Errorf("failed to check for property-wide outages: %w", err)
	}
	if len(summary.PropertyWideOutages) > 0 {
		p.log.Warnf("Found %d property-wide outages (>= %.0f%% of networks down)",
			len(summary.PropertyWideOutages), p.outageThresholdPercent)
	}

	if p.reportDir != "" {
		reportPath, err := WriteReport(summary, p.reportDir, now)
		if err != nil {
			p.log.Errorf("Failed to write processing report: %s", err.Error())
		} else {
			p.log.Infof("Processing report saved to %s", reportPath)
		}
	}

	p.log.Infof("Processing complete: %d outages inserted, %d duplicates skipped, %d unknown-network rows skipped",
		summary.Ingest.Inserted, summary.Ingest.DuplicatesSkipped, summary.Ingest.SkippedUnknownNetwork)

	return summary, nil
}

//truncateAll clears every entity and fact table. This is the one legitimate path that
//removes Network and Property rows, and it is only reachable from rebuild mode.
func truncateAll(tx *gorm.DB) error {
	tables := []interface{}{
		&models.Outage{},
		&models.NetworkHourlyOutage{},
		&models.PropertyHourlyOutage{},
		&models.OngoingOutage{},
		&models.PropertyXponShelf{},
		&models.Property7x50{},
		&models.Network{},
		&models.Property{},
		&models.XponShelf{},
		&models.Router7x50{},
	}

	for _, table := range tables {
		if err := tx.Where("1 = 1").Delete(table).Error; err != nil {
			return err
		}
	}
	return nil
}
