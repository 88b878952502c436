package parsing

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jahama808/MDU-Looking-Glass/internal/pkg/infrastructure/logging"
)

func writeTestFile(t *testing.T, name, contents string) string {
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal("failed to write test file:", err.Error())
	}
	return path
}

func TestParseTimestampHandlesFeedFormats(t *testing.T) {
	values := []string{
		"2026-08-18 03:15:00",
		"2026-08-18T03:15:00Z",
		"2026-08-18T03:15:00",
	}

	for _, value := range values {
		ts, err := ParseTimestamp(value)
		if err != nil {
			t.Error("ParseTimestamp failed for", value, ":", err.Error())
			continue
		}
		if ts.Hour() != 3 || ts.Minute() != 15 {
			t.Errorf("ParseTimestamp returned wrong instant for %s: %v", value, ts)
		}
		if ts.Location() != time.UTC {
			t.Errorf("ParseTimestamp should normalize to UTC, got %v", ts.Location())
		}
	}
}

func TestThatParseTimestampRejectsGarbage(t *testing.T) {
	if _, err := ParseTimestamp("not a time"); err == nil {
		t.Error("expected an error for an unparseable timestamp")
	}
	if _, err := ParseTimestamp(""); err == nil {
		t.Error("expected an error for an empty timestamp")
	}
}

func TestParseDiscoveryFile(t *testing.T) {
	path := writeTestFile(t, "discovery.csv",
		"MDU Name,Eero Network ID,Street Address,City,Zip,Equip Name,7x50,SAP,Service Config Name\n"+
			"Waikiki Shores,7339641,445 Seaside Ave,Honolulu,96815,ONT-HNLLHIMNOL7-01-10-13-25,HNLLHIMED51,lag-26.3001.694,NG-HSI.600MB.600MB.XGSPON\n"+
			"Waikiki Shores,7339642,445 Seaside Ave,Honolulu,96815,,,,\n")

	table, err := ParseDiscoveryFile(path, logging.NewLogger())
	if err != nil {
		t.Fatal("ParseDiscoveryFile failed:", err.Error())
	}

	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table.Rows))
	}

	row := table.Rows[0]
	if row.PropertyName != "Waikiki Shores" || row.NetworkID != 7339641 {
		t.Errorf("unexpected first row: %+v", row)
	}
	if row.EquipName != "ONT-HNLLHIMNOL7-01-10-13-25" || row.SAP != "lag-26.3001.694" {
		t.Errorf("equipment columns not preserved: %+v", row)
	}
}

func TestThatDiscoveryRowsWithoutKeyFieldsAreSkipped(t *testing.T) {
	path := writeTestFile(t, "discovery.csv",
		"MDU Name,Eero Network ID\n"+
			"Waikiki Shores,7339641\n"+
			",7339642\n"+
			"Kona Palms,not-a-number\n")

	table, err := ParseDiscoveryFile(path, logging.NewLogger())
	if err != nil {
		t.Fatal("ParseDiscoveryFile failed:", err.Error())
	}

	if len(table.Rows) != 1 {
		t.Errorf("expected 1 valid row, got %d", len(table.Rows))
	}
	if table.SkippedRows != 2 {
		t.Errorf("expected 2 skipped rows, got %d", table.SkippedRows)
	}
}

func TestThatDiscoveryFileMissingColumnsIsAValidationError(t *testing.T) {
	path := writeTestFile(t, "discovery.csv", "MDU Name,Street Address\nWaikiki Shores,445 Seaside Ave\n")

	_, err := ParseDiscoveryFile(path, logging.NewLogger())

	validationErr := &ValidationError{}
	if !errors.As(err, &validationErr) {
		t.Fatal("expected a ValidationError, got:", err)
	}
	if len(validationErr.MissingColumns) != 1 || validationErr.MissingColumns[0] != "Eero Network ID" {
		t.Errorf("unexpected missing columns: %v", validationErr.MissingColumns)
	}
}

func TestParseOutagesFile(t *testing.T) {
	path := writeTestFile(t, "outages.csv",
		"network_id,start_time,end_time,duration,reason,city,postal_code\n"+
			"7339641,2026-08-18 03:15:00,2026-08-18 03:45:00,1800,wan_down,Honolulu,96815\n"+
			"7339641,2026-08-18 05:00:00,2026-08-18 05:10:00,,,,\n")

	table, err := ParseOutagesFile(path, logging.NewLogger())
	if err != nil {
		t.Fatal("ParseOutagesFile failed:", err.Error())
	}

	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table.Rows))
	}

	first := table.Rows[0]
	if first.Duration != 1800 {
		t.Errorf("expected 1800 second duration, got %f", first.Duration)
	}
	if first.Reason != "wan_down" {
		t.Errorf("expected reason wan_down, got %s", first.Reason)
	}
	if first.Location.City != "Honolulu" || first.Location.PostalCode != "96815" {
		t.Errorf("location columns not preserved: %+v", first.Location)
	}

	second := table.Rows[1]
	if second.Duration != 600 {
		t.Errorf("missing duration should fall back to end-start, got %f", second.Duration)
	}
	if second.Reason != ReasonUnknown {
		t.Errorf("missing reason should default to %s, got %s", ReasonUnknown, second.Reason)
	}
}

func TestThatOutageRowsWithoutEndTimeAreCollectedAsOngoing(t *testing.T) {
	path := writeTestFile(t, "outages.csv",
		"network_id,start_time,end_time,duration,reason\n"+
			"7339641,2026-08-18 03:15:00,,,wan_down\n"+
			"7339642,2026-08-18 04:00:00,2026-08-18 04:30:00,1800,wan_down\n")

	table, err := ParseOutagesFile(path, logging.NewLogger())
	if err != nil {
		t.Fatal("ParseOutagesFile failed:", err.Error())
	}

	if len(table.Rows) != 1 {
		t.Errorf("expected 1 completed row, got %d", len(table.Rows))
	}
	if len(table.OngoingRows) != 1 {
		t.Fatalf("expected 1 ongoing row, got %d", len(table.OngoingRows))
	}
	if table.OngoingRows[0].NetworkID != 7339641 {
		t.Errorf("wrong network collected as ongoing: %d", table.OngoingRows[0].NetworkID)
	}
	if !table.OngoingRows[0].EndTime.IsZero() {
		t.Error("ongoing rows should have a zero end time")
	}
}

func TestThatOutageRowsWithBadTimestampsAreSkipped(t *testing.T) {
	path := writeTestFile(t, "outages.csv",
		"network_id,start_time,end_time\n"+
			"7339641,yesterday,2026-08-18 03:45:00\n"+
			"7339641,2026-08-18 03:15:00,later\n"+
			"not-a-number,2026-08-18 03:15:00,2026-08-18 03:45:00\n")

	table, err := ParseOutagesFile(path, logging.NewLogger())
	if err != nil {
		t.Fatal("ParseOutagesFile failed:", err.Error())
	}

	if len(table.Rows) != 0 || len(table.OngoingRows) != 0 {
		t.Errorf("expected no valid rows, got %d completed and %d ongoing", len(table.Rows), len(table.OngoingRows))
	}
	if table.SkippedRows != 3 {
		t.Errorf("expected 3 skipped rows, got %d", table.SkippedRows)
	}
}

func TestThatOutagesFileMissingColumnsIsAValidationError(t *testing.T) {
	path := writeTestFile(t, "outages.csv", "network_id,reason\n7339641,wan_down\n")

	_, err := ParseOutagesFile(path, logging.NewLogger())

	validationErr := &ValidationError{}
	if !errors.As(err, &validationErr) {
		t.Fatal("expected a ValidationError, got:", err)
	}
	if len(validationErr.MissingColumns) != 2 {
		t.Errorf("unexpected missing columns: %v", validationErr.MissingColumns)
	}
}

func TestOutageHourTruncation(t *testing.T) {
	start, _ := ParseTimestamp("2026-08-18 03:47:12")
	row := OutageRow{StartTime: start}

	hour := row.OutageHour()
	if hour.Minute() != 0 || hour.Second() != 0 || hour.Hour() != 3 {
		t.Errorf("expected hour bucket 03:00:00, got %v", hour)
	}
}
