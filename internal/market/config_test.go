package market

import "testing"

func TestNewConfig_DerivesStationsAndStationMarkets(t *testing.T) {
	entries := map[Name]Entry{
		"JITA":      {LocationID: 60003760, Venue: StationVenue{RegionID: 10000002}},
		"PERIMETER": {LocationID: 60003761, Venue: StationVenue{RegionID: 10000002}},
		"1DQ":       {LocationID: 1023456789012, Venue: StructureVenue{RefreshToken: "rt-1"}},
	}
	cfg := NewConfig(entries)

	if _, ok := cfg.Stations()[StationKey{RegionID: 10000002, LocationID: 60003760}]; !ok {
		t.Error("missing JITA station key")
	}
	if _, ok := cfg.Stations()[StationKey{RegionID: 10000002, LocationID: 60003761}]; !ok {
		t.Error("missing PERIMETER station key")
	}
	if cfg.StationMarkets()[60003760] != "JITA" {
		t.Errorf("StationMarkets[60003760] = %q, want JITA", cfg.StationMarkets()[60003760])
	}
	if len(cfg.Stations()) != 2 {
		t.Errorf("len(Stations()) = %d, want 2 (structure market must not appear)", len(cfg.Stations()))
	}
}

func TestNewConfig_DedupesRefreshTokens(t *testing.T) {
	entries := map[Name]Entry{
		"A": {LocationID: 1, Venue: StructureVenue{RefreshToken: "rt-1"}},
		"B": {LocationID: 2, Venue: StructureVenue{RefreshToken: "rt-1"}},
		"C": {LocationID: 3, Venue: StructureVenue{RefreshToken: ""}},
	}
	cfg := NewConfig(entries)
	tokens := cfg.RefreshTokens()
	if len(tokens) != 1 || tokens[0] != "rt-1" {
		t.Errorf("RefreshTokens() = %v, want [rt-1]", tokens)
	}
}

func TestConfig_LookupUnknownMarket(t *testing.T) {
	cfg := NewConfig(map[Name]Entry{})
	if _, ok := cfg.Lookup("NOPE"); ok {
		t.Error("Lookup on empty config should miss")
	}
}
