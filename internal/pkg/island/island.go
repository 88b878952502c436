//Package island determines which Hawaiian island a property or network is on,
//based on city name, ZIP code or geographic coordinates.
package island

import (
	"strings"
)

var cityToIsland = map[string]string{
	// Oahu
	"HONOLULU": "Oahu", "WAIKIKI": "Oahu", "AIEA": "Oahu", "EWA BEACH": "Oahu",
	"KAPOLEI": "Oahu", "PEARL CITY": "Oahu", "WAIPAHU": "Oahu", "MILILANI": "Oahu",
	"MILILANI TOWN": "Oahu", "WAHIAWA": "Oahu", "KANEOHE": "Oahu", "KAILUA": "Oahu",
	"HALEIWA": "Oahu", "WAIANAE": "Oahu", "MAKAHA": "Oahu", "HAWAII KAI": "Oahu",
	"HAUULA": "Oahu", "WAIMANALO": "Oahu", "LAIE": "Oahu", "KAHUKU": "Oahu",

	// Maui
	"LAHAINA": "Maui", "KAHULUI": "Maui", "WAILUKU": "Maui", "KIHEI": "Maui",
	"WAILEA": "Maui", "MAKAWAO": "Maui", "PAIA": "Maui", "HANA": "Maui",
	"KAANAPALI": "Maui", "KAPALUA": "Maui", "MAALAEA": "Maui", "PUKALANI": "Maui",
	"KULA": "Maui", "HAIKU": "Maui",

	// Hawaii (Big Island)
	"HILO": "Hawaii", "KONA": "Hawaii", "KAILUA-KONA": "Hawaii", "KAILUA KONA": "Hawaii",
	"WAIKOLOA": "Hawaii", "KAMUELA": "Hawaii", "CAPTAIN COOK": "Hawaii",
	"VOLCANO": "Hawaii", "PAHOA": "Hawaii", "NAALEHU": "Hawaii", "HONOKAA": "Hawaii",
	"KAPAAU": "Hawaii", "HOLUALOA": "Hawaii", "KEAUHOU": "Hawaii", "KEALAKEKUA": "Hawaii",
	"PAHALA": "Hawaii",

	// Kauai
	"LIHUE": "Kauai", "KAPAA": "Kauai", "POIPU": "Kauai", "PRINCEVILLE": "Kauai",
	"HANALEI": "Kauai", "KOLOA": "Kauai", "KALAHEO": "Kauai", "HANAPEPE": "Kauai",
	"WAIMEA": "Kauai", "KEKAHA": "Kauai", "KILAUEA": "Kauai", "ANAHOLA": "Kauai",
	"ELEELE": "Kauai",

	// Molokai
	"KAUNAKAKAI": "Molokai", "HOOLEHUA": "Molokai", "MAUNALOA": "Molokai",

	// Lanai
	"LANAI CITY": "Lanai",
}

var zipToIsland = map[string]string{
	// Oahu
	"96701": "Oahu", "96706": "Oahu", "96707": "Oahu", "96709": "Oahu",
	"96712": "Oahu", "96717": "Oahu", "96730": "Oahu", "96731": "Oahu",
	"96734": "Oahu", "96744": "Oahu", "96762": "Oahu", "96782": "Oahu",
	"96786": "Oahu", "96789": "Oahu", "96791": "Oahu", "96792": "Oahu",
	"96797": "Oahu", "96801": "Oahu", "96802": "Oahu", "96803": "Oahu",
	"96804": "Oahu", "96805": "Oahu", "96806": "Oahu", "96807": "Oahu",
	"96808": "Oahu", "96809": "Oahu", "96810": "Oahu", "96811": "Oahu",
	"96812": "Oahu", "96813": "Oahu", "96814": "Oahu", "96815": "Oahu",
	"96816": "Oahu", "96817": "Oahu", "96818": "Oahu", "96819": "Oahu",
	"96820": "Oahu", "96821": "Oahu", "96822": "Oahu", "96823": "Oahu",
	"96824": "Oahu", "96825": "Oahu", "96826": "Oahu", "96828": "Oahu",
	"96830": "Oahu", "96836": "Oahu", "96837": "Oahu", "96838": "Oahu",
	"96839": "Oahu", "96840": "Oahu", "96841": "Oahu", "96843": "Oahu",
	"96844": "Oahu", "96846": "Oahu", "96847": "Oahu", "96848": "Oahu",
	"96849": "Oahu", "96850": "Oahu", "96853": "Oahu", "96854": "Oahu",
	"96857": "Oahu", "96858": "Oahu", "96859": "Oahu", "96860": "Oahu",
	"96861": "Oahu", "96863": "Oahu", "96898": "Oahu",

	// Maui
	"96708": "Maui", "96713": "Maui", "96732": "Maui", "96753": "Maui",
	"96761": "Maui", "96768": "Maui", "96779": "Maui", "96790": "Maui",
	"96793": "Maui",

	// Hawaii (Big Island)
	"96704": "Hawaii", "96710": "Hawaii", "96719": "Hawaii", "96720": "Hawaii",
	"96721": "Hawaii", "96725": "Hawaii", "96726": "Hawaii", "96727": "Hawaii",
	"96728": "Hawaii", "96737": "Hawaii", "96738": "Hawaii", "96740": "Hawaii",
	"96743": "Hawaii", "96749": "Hawaii", "96750": "Hawaii", "96755": "Hawaii",
	"96760": "Hawaii", "96764": "Hawaii", "96771": "Hawaii", "96776": "Hawaii",
	"96777": "Hawaii", "96778": "Hawaii", "96780": "Hawaii", "96781": "Hawaii",
	"96783": "Hawaii", "96785": "Hawaii",

	// Kauai
	"96703": "Kauai", "96705": "Kauai", "96714": "Kauai", "96716": "Kauai",
	"96722": "Kauai", "96741": "Kauai", "96742": "Kauai", "96746": "Kauai",
	"96751": "Kauai", "96752": "Kauai", "96754": "Kauai", "96756": "Kauai",
	"96765": "Kauai", "96766": "Kauai", "96769": "Kauai", "96796": "Kauai",

	// Molokai
	"96729": "Molokai", "96748": "Molokai", "96757": "Molokai", "96770": "Molokai",

	// Lanai
	"96763": "Lanai",
}

type boundingBox struct {
	minLat, maxLat, minLon, maxLon float64
}

// Approximate island bounding boxes
var islandBoundaries = map[string]boundingBox{
	"Oahu":    {21.25, 21.72, -158.28, -157.65},
	"Maui":    {20.57, 21.03, -156.69, -155.96},
	"Hawaii":  {18.91, 20.27, -156.07, -154.81},
	"Kauai":   {21.87, 22.23, -159.79, -159.29},
	"Molokai": {21.08, 21.21, -157.33, -156.75},
	"Lanai":   {20.72, 20.91, -157.08, -156.78},
}

//FromCity returns the island for a city name, or "" if unknown
func FromCity(city string) string {
	return cityToIsland[strings.ToUpper(strings.TrimSpace(city))]
}

//FromZip returns the island for a ZIP code, or "" if unknown
func FromZip(postalCode string) string {
	zip := strings.TrimSpace(postalCode)
	if len(zip) > 5 {
		zip = zip[:5]
	}
	return zipToIsland[zip]
}

//FromCoordinates returns the island whose bounding box contains the coordinates, or ""
func FromCoordinates(latitude, longitude *float64) string {
	if latitude == nil || longitude == nil {
		return ""
	}

	for name, box := range islandBoundaries {
		if *latitude >= box.minLat && *latitude <= box.maxLat &&
			*longitude >= box.minLon && *longitude <= box.maxLon {
			return name
		}
	}

	return ""
}

var nameKeywords = map[string]string{
	"WAIKIKI": "Oahu", "HONOLULU": "Oahu", "ALA MOANA": "Oahu",
	"KAANAPALI": "Maui", "LAHAINA": "Maui", "WAILEA": "Maui", "KIHEI": "Maui",
	"KONA": "Hawaii", "HILO": "Hawaii", "WAIKOLOA": "Hawaii",
	"POIPU": "Kauai", "PRINCEVILLE": "Kauai", "KAPAA": "Kauai",
}

//FromPropertyName guesses the island from well known place names inside a property name
func FromPropertyName(propertyName string) string {
	upper := strings.ToUpper(propertyName)
	for keyword, name := range nameKeywords {
		if strings.Contains(upper, keyword) {
			return name
		}
	}
	return ""
}

//Detect tries city, ZIP and coordinates in order and returns the first match, or ""
func Detect(city, postalCode string, latitude, longitude *float64) string {
	if name := FromCity(city); name != "" {
		return name
	}
	if name := FromZip(postalCode); name != "" {
		return name
	}
	return FromCoordinates(latitude, longitude)
}
