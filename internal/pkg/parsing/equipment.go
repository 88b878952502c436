package parsing

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	serviceSpeedPattern = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)(G|MB)$`)
	speedValuePattern   = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)\s*Mbps$`)
)

//ParseONTName extracts the xPON shelf name, slot and PON from an ONT equipment name.
//The expected format is ONT-{SHELF_NAME}-{SHELF#}-{SLOT}-{PON}-{ONT},
//e.g. ONT-HNLLHIMNOL7-01-10-13-25 yields ("HNLLHIMNOL7", "10", "13").
func ParseONTName(ontName string) (shelfName, slot, pon string, ok bool) {
	parts := strings.Split(ontName, "-")
	if len(parts) < 6 || parts[0] != "ONT" {
		return "", "", "", false
	}

	return parts[1], parts[3], parts[4], true
}

//ParseSAPLag extracts the lag portion of a SAP field, e.g. "lag-26.3001.694" yields "lag-26"
func ParseSAPLag(sap string) string {
	if !strings.HasPrefix(sap, "lag-") {
		return ""
	}

	return strings.SplitN(sap, ".", 2)[0]
}

//ParseServiceConfigSpeeds extracts download and upload targets in Mbps from a service
//config name such as "NG-HSI.600MB.600MB.XGSPON" or "NGTV+HSI.1G.600MB".
func ParseServiceConfigSpeeds(serviceConfig string) (download, upload *float64) {
	speeds := []float64{}

	for _, part := range strings.Split(serviceConfig, ".") {
		match := serviceSpeedPattern.FindStringSubmatch(part)
		if match == nil {
			continue
		}

		value, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			continue
		}

		if strings.EqualFold(match[2], "G") {
			value *= 1000
		}

		speeds = append(speeds, value)
	}

	if len(speeds) < 2 {
		return nil, nil
	}

	return &speeds[0], &speeds[1]
}

//ParseSpeedValue extracts a numeric Mbps value from a measured speed string like "625.42 Mbps"
func ParseSpeedValue(speed string) *float64 {
	match := speedValuePattern.FindStringSubmatch(strings.TrimSpace(speed))
	if match == nil {
		return nil
	}

	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return nil
	}

	return &value
}
