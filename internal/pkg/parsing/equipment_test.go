package parsing

import (
	"testing"
)

func TestParseONTName(t *testing.T) {
	shelf, slot, pon, ok := ParseONTName("ONT-HNLLHIMNOL7-01-10-13-25")
	if !ok {
		t.Fatal("expected ONT name to parse")
	}
	if shelf != "HNLLHIMNOL7" || slot != "10" || pon != "13" {
		t.Errorf("unexpected parse result: shelf=%s slot=%s pon=%s", shelf, slot, pon)
	}
}

func TestThatParseONTNameRejectsOtherEquipment(t *testing.T) {
	for _, name := range []string{"", "HNLLHIMED51", "ONT-SHELF-01", "RTR-HNLLHIMNOL7-01-10-13-25"} {
		if _, _, _, ok := ParseONTName(name); ok {
			t.Errorf("expected %q to be rejected", name)
		}
	}
}

func TestParseSAPLag(t *testing.T) {
	if lag := ParseSAPLag("lag-26.3001.694"); lag != "lag-26" {
		t.Errorf("expected lag-26, got %s", lag)
	}
	if lag := ParseSAPLag("1/1/5.3001.694"); lag != "" {
		t.Errorf("expected empty lag for a port SAP, got %s", lag)
	}
	if lag := ParseSAPLag(""); lag != "" {
		t.Errorf("expected empty lag for empty input, got %s", lag)
	}
}

func TestParseServiceConfigSpeeds(t *testing.T) {
	download, upload := ParseServiceConfigSpeeds("NG-HSI.600MB.600MB.XGSPON")
	if download == nil || upload == nil {
		t.Fatal("expected both speed targets to parse")
	}
	if *download != 600 || *upload != 600 {
		t.Errorf("expected 600/600, got %f/%f", *download, *upload)
	}

	download, upload = ParseServiceConfigSpeeds("NGTV+HSI.1G.600MB")
	if download == nil || upload == nil {
		t.Fatal("expected both speed targets to parse")
	}
	if *download != 1000 {
		t.Errorf("1G should convert to 1000 Mbps, got %f", *download)
	}
	if *upload != 600 {
		t.Errorf("expected 600 Mbps upload, got %f", *upload)
	}
}

func TestThatServiceConfigWithoutTwoSpeedsYieldsNothing(t *testing.T) {
	download, upload := ParseServiceConfigSpeeds("NG-HSI.XGSPON")
	if download != nil || upload != nil {
		t.Error("expected no speed targets for a config without two speed parts")
	}
}

func TestParseSpeedValue(t *testing.T) {
	value := ParseSpeedValue("625.42 Mbps")
	if value == nil || *value != 625.42 {
		t.Errorf("expected 625.42, got %v", value)
	}

	if value := ParseSpeedValue("unmeasured"); value != nil {
		t.Errorf("expected nil for an unmeasured speed, got %f", *value)
	}
}
