package parsing

import (
	"strconv"
	"time"

	"github.com/jahama808/MDU-Looking-Glass/internal/pkg/infrastructure/logging"
)

//Column names as they appear in the network_outages export
const (
	colNetworkID   = "network_id"
	colStartTime   = "start_time"
	colEndTime     = "end_time"
	colDuration    = "duration"
	colReason      = "reason"
	colCountryCode = "country_code"
	colCountryName = "country_name"
	colOutageCity  = "city"
	colRegion      = "region"
	colLatitude    = "latitude"
	colLongitude   = "longitude"
	colTimezone    = "timezone"
	colPostalCode  = "postal_code"
	colRegionName  = "region_name"
)

//ReasonUnknown is stored when the feed does not provide a reason code
const ReasonUnknown = "UNKNOWN"

//Location carries the optional geo columns from the outages feed
type Location struct {
	CountryCode string
	CountryName string
	City        string
	Region      string
	Latitude    *float64
	Longitude   *float64
	Timezone    string
	PostalCode  string
	RegionName  string
}

//OutageRow is one parsed record from the outages feed
type OutageRow struct {
	NetworkID int64
	StartTime time.Time
	EndTime   time.Time
	//Duration of the outage in seconds
	Duration float64
	Reason   string
	Location Location
}

//OutageHour returns the start of the outage truncated to its hour bucket
func (r OutageRow) OutageHour() time.Time {
	return r.StartTime.Truncate(time.Hour)
}

//OutageTable is the typed in-memory form of one outages file. Rows without an end time
//are still unresolved and are collected separately as ongoing outages.
type OutageTable struct {
	Rows        []OutageRow
	OngoingRows []OutageRow
	SkippedRows int
}

//ParseOutagesFile reads an outages CSV into an OutageTable. A file missing the key columns
//is a fatal ValidationError; individual rows with unparseable timestamps or network ids are
//skipped and counted.
func ParseOutagesFile(path string, log logging.Logger) (*OutageTable, error) {
	f, r, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cols, err := readHeader(r, path, []string{colNetworkID, colStartTime, colEndTime})
	if err != nil {
		return nil, err
	}

	table := &OutageTable{}

	err = forEachRecord(r, func(record []string) {
		networkID, idErr := strconv.ParseInt(cols.get(record, colNetworkID), 10, 64)
		start, startErr := ParseTimestamp(cols.get(record, colStartTime))

		if idErr != nil || startErr != nil {
			log.Warnf("Skipping outage row with unparseable key fields: %v", record)
			table.SkippedRows++
			return
		}

		reason := cols.get(record, colReason)
		if reason == "" {
			reason = ReasonUnknown
		}

		endValue := cols.get(record, colEndTime)
		if endValue == "" {
			// No end time yet means the outage is still in progress
			table.OngoingRows = append(table.OngoingRows, OutageRow{
				NetworkID: networkID,
				StartTime: start,
				Reason:    reason,
			})
			return
		}

		end, endErr := ParseTimestamp(endValue)
		if endErr != nil {
			log.Warnf("Skipping outage row with unparseable end time: %v", record)
			table.SkippedRows++
			return
		}

		duration, durErr := strconv.ParseFloat(cols.get(record, colDuration), 64)
		if durErr != nil {
			duration = end.Sub(start).Seconds()
		}

		table.Rows = append(table.Rows, OutageRow{
			NetworkID: networkID,
			StartTime: start,
			EndTime:   end,
			Duration:  duration,
			Reason:    reason,
			Location: Location{
				CountryCode: cols.get(record, colCountryCode),
				CountryName: cols.get(record, colCountryName),
				City:        cols.get(record, colOutageCity),
				Region:      cols.get(record, colRegion),
				Latitude:    parseOptionalFloat(cols.get(record, colLatitude)),
				Longitude:   parseOptionalFloat(cols.get(record, colLongitude)),
				Timezone:    cols.get(record, colTimezone),
				PostalCode:  cols.get(record, colPostalCode),
				RegionName:  cols.get(record, colRegionName),
			},
		})
	})

	if err != nil {
		return nil, err
	}

	return table, nil
}

func parseOptionalFloat(value string) *float64 {
	if value == "" {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	return &f
}
