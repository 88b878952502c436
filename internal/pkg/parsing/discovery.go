package parsing

import (
	"strconv"

	"github.com/jahama808/MDU-Looking-Glass/internal/pkg/infrastructure/logging"
)

//Column names as they appear in the Eero discovery export
const (
	colMDUName           = "MDU Name"
	colEeroNetworkID     = "Eero Network ID"
	colStreetAddress     = "Street Address"
	colSubloc            = "Subloc"
	colCustomerName      = "Customer Name"
	colEquipName         = "Equip Name"
	colRouter7x50        = "7x50"
	colSAP               = "SAP"
	colServiceConfigName = "Service Config Name"
	colGatewaySpeedDown  = "Gateway Speed Down"
	colGatewaySpeedUp    = "Gateway Speed Up"
	colGatewaySpeedDate  = "Gateway Speed Date"
	colCity              = "City"
	colZip               = "Zip"
)

//DiscoveryRow is one parsed record from the discovery feed
type DiscoveryRow struct {
	PropertyName      string
	NetworkID         int64
	StreetAddress     string
	Subloc            string
	CustomerName      string
	EquipName         string
	RouterName        string
	SAP               string
	ServiceConfigName string
	GatewaySpeedDown  string
	GatewaySpeedUp    string
	GatewaySpeedDate  string
	City              string
	Zip               string
}

//DiscoveryTable is the typed in-memory form of one discovery file
type DiscoveryTable struct {
	Rows        []DiscoveryRow
	SkippedRows int
}

//ParseDiscoveryFile reads a discovery CSV into a DiscoveryTable. Rows without a property
//name or a numeric network identifier are skipped and counted, never fatal.
func ParseDiscoveryFile(path string, log logging.Logger) (*DiscoveryTable, error) {
	f, r, err := openCSV(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cols, err := readHeader(r, path, []string{colMDUName, colEeroNetworkID})
	if err != nil {
		return nil, err
	}

	table := &DiscoveryTable{}

	err = forEachRecord(r, func(record []string) {
		propertyName := cols.get(record, colMDUName)
		networkID, idErr := strconv.ParseInt(cols.get(record, colEeroNetworkID), 10, 64)

		if propertyName == "" || idErr != nil {
			log.Warnf("Skipping discovery row with missing property name or network id: %v", record)
			table.SkippedRows++
			return
		}

		table.Rows = append(table.Rows, DiscoveryRow{
			PropertyName:      propertyName,
			NetworkID:         networkID,
			StreetAddress:     cols.get(record, colStreetAddress),
			Subloc:            cols.get(record, colSubloc),
			CustomerName:      cols.get(record, colCustomerName),
			EquipName:         cols.get(record, colEquipName),
			RouterName:        cols.get(record, colRouter7x50),
			SAP:               cols.get(record, colSAP),
			ServiceConfigName: cols.get(record, colServiceConfigName),
			GatewaySpeedDown:  cols.get(record, colGatewaySpeedDown),
			GatewaySpeedUp:    cols.get(record, colGatewaySpeedUp),
			GatewaySpeedDate:  cols.get(record, colGatewaySpeedDate),
			City:              cols.get(record, colCity),
			Zip:               cols.get(record, colZip),
		})
	})

	if err != nil {
		return nil, err
	}

	if len(table.Rows) == 0 && table.SkippedRows > 0 {
		log.Warnf("Discovery file %s contained no valid rows (%d skipped)", path, table.SkippedRows)
	}

	return table, nil
}
