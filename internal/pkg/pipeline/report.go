package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

//WriteReport writes a plain-text processing report into reportDir and returns its path
func WriteReport(summary *RunSummary, reportDir string, now time.Time) (string, error) {
	if err := os.MkdirAll(reportDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	path := filepath.Join(reportDir, fmt.Sprintf("processing_report_%s.txt", now.Format("2006-01-02_150405")))

	divider := strings.Repeat("=", 80)
	var b strings.Builder

	fmt.Fprintln(&b, divider)
	fmt.Fprintln(&b, "NETWORK PROCESSING REPORT")
	fmt.Fprintln(&b, divider)
	fmt.Fprintf(&b, "Generated: %s\n", now.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Processing Mode: %s\n\n", summary.Mode)

	fmt.Fprintln(&b, "FILES PROCESSED:")
	fmt.Fprintf(&b, "  Outages File: %s\n", summary.OutagesFile)
	discovery := summary.DiscoveryFile
	if discovery == "" {
		discovery = "Not provided"
	}
	fmt.Fprintf(&b, "  Discovery File: %s\n\n", discovery)

	fmt.Fprintln(&b, "RECONCILIATION:")
	fmt.Fprintf(&b, "  Properties Added: %d\n", summary.Reconciliation.PropertiesAdded)
	fmt.Fprintf(&b, "  Properties Updated: %d\n", summary.Reconciliation.PropertiesUpdated)
	fmt.Fprintf(&b, "  Networks Added: %d\n", summary.Reconciliation.NetworksAdded)
	fmt.Fprintf(&b, "  Networks Updated: %d\n", summary.Reconciliation.NetworksUpdated)
	fmt.Fprintf(&b, "  Networks Removed: %d\n\n", summary.Reconciliation.NetworksRemoved)

	fmt.Fprintln(&b, "INGESTION:")
	fmt.Fprintf(&b, "  Outages Inserted: %d\n", summary.Ingest.Inserted)
	fmt.Fprintf(&b, "  Duplicates Skipped: %d\n", summary.Ingest.DuplicatesSkipped)
	fmt.Fprintf(&b, "  Unknown Network Rows Skipped: %d\n", summary.Ingest.SkippedUnknownNetwork)
	fmt.Fprintf(&b, "  Malformed Rows Skipped: %d\n\n", summary.RowsSkipped)

	fmt.Fprintln(&b, "RETENTION:")
	fmt.Fprintf(&b, "  Outages Deleted: %d\n", summary.Retention.OutagesDeleted)
	fmt.Fprintf(&b, "  Rollup Buckets Deleted: %d\n\n", summary.Retention.RollupsDeleted)

	fmt.Fprintln(&b, "SUMMARY STATISTICS:")
	fmt.Fprintf(&b, "  Networks in Database (after processing): %d\n", summary.FinalNetworkCount)
	fmt.Fprintf(&b, "  Properties in Database (after processing): %d\n", summary.FinalPropertyCount)
	fmt.Fprintf(&b, "  Ongoing Outages Stored: %d\n", summary.OngoingStored)
	fmt.Fprintf(&b, "  Ongoing Outages Resolved: %d\n", summary.OngoingResolved)

	if len(summary.PropertyWideOutages) > 0 {
		fmt.Fprintln(&b, "")
		fmt.Fprintln(&b, "PROPERTY-WIDE OUTAGES:")
		for _, pwo := range summary.PropertyWideOutages {
			fmt.Fprintf(&b, "  %s (%s): %d of %d networks down (%.1f%%)\n",
				pwo.PropertyName, pwo.Island, pwo.NetworksDown, pwo.TotalNetworks, pwo.OutagePercentage)
		}
	}

	fmt.Fprintln(&b, divider)

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	return path, nil
}
