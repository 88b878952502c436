package island

import (
	"testing"
)

func TestFromCity(t *testing.T) {
	if name := FromCity("Honolulu"); name != "Oahu" {
		t.Errorf("expected Oahu for Honolulu, got %q", name)
	}
	if name := FromCity("  lahaina  "); name != "Maui" {
		t.Errorf("city lookup should trim and uppercase, got %q", name)
	}
	if name := FromCity("Las Vegas"); name != "" {
		t.Errorf("expected no island for a mainland city, got %q", name)
	}
}

func TestFromZip(t *testing.T) {
	if name := FromZip("96815"); name != "Oahu" {
		t.Errorf("expected Oahu for 96815, got %q", name)
	}
	if name := FromZip("96815-1234"); name != "Oahu" {
		t.Errorf("ZIP+4 should match on its first five digits, got %q", name)
	}
	if name := FromZip("96763"); name != "Lanai" {
		t.Errorf("expected Lanai for 96763, got %q", name)
	}
	if name := FromZip("10001"); name != "" {
		t.Errorf("expected no island for a mainland ZIP, got %q", name)
	}
}

func TestFromCoordinates(t *testing.T) {
	lat, lon := 21.3099, -157.8581
	if name := FromCoordinates(&lat, &lon); name != "Oahu" {
		t.Errorf("expected Oahu for downtown Honolulu coordinates, got %q", name)
	}

	lat, lon = 19.7074, -155.0885
	if name := FromCoordinates(&lat, &lon); name != "Hawaii" {
		t.Errorf("expected Hawaii for Hilo coordinates, got %q", name)
	}

	if name := FromCoordinates(nil, nil); name != "" {
		t.Errorf("expected no island without coordinates, got %q", name)
	}
}

func TestFromPropertyName(t *testing.T) {
	if name := FromPropertyName("Waikiki Shores"); name != "Oahu" {
		t.Errorf("expected Oahu for Waikiki Shores, got %q", name)
	}
	if name := FromPropertyName("Kona Palms AOAO"); name != "Hawaii" {
		t.Errorf("expected Hawaii for Kona Palms, got %q", name)
	}
	if name := FromPropertyName("Courtyard Villas"); name != "" {
		t.Errorf("expected no island for a generic name, got %q", name)
	}
}

func TestDetectPrefersCityOverZipOverCoordinates(t *testing.T) {
	lat, lon := 20.8893, -156.4729
	if name := Detect("Hilo", "96815", &lat, &lon); name != "Hawaii" {
		t.Errorf("city should win over ZIP and coordinates, got %q", name)
	}
	if name := Detect("", "96815", &lat, &lon); name != "Oahu" {
		t.Errorf("ZIP should win over coordinates, got %q", name)
	}
	if name := Detect("", "", &lat, &lon); name != "Maui" {
		t.Errorf("coordinates should be the final fallback, got %q", name)
	}
}
