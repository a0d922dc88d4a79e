package config

import (
	"testing"

	"github.com/WiggidyW2/weve-market/internal/market"
)

func env(values map[string]string) Getenv {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func validEnv() map[string]string {
	return map[string]string{
		"WM_SERVICE_ADDRESS":                 "0.0.0.0:8080",
		"WM_USER_AGENT":                      "weve-market/1.0",
		"WM_CLIENT_ID":                       "cid",
		"WM_CLIENT_SECRET":                   "secret",
		"WM_STATION_MARKET_ORDERS_TIMEOUT":   "60",
		"WM_STRUCTURE_MARKET_ORDERS_TIMEOUT": "60",
		"WM_ADJUSTED_PRICE_TIMEOUT":          "3600",
		"WM_SYSTEM_INDEX_TIMEOUT":            "3600",
		"WM_STATION_MARKETS":                  `{"JITA":{"location_id":60003760,"region_id":10000002}}`,
		"WM_STRUCTURE_MARKETS":                `{"1DQ":{"location_id":1023456789012,"refresh_token":"rt-1"}}`,
	}
}

func TestLoad_RoundTripsMarketConfig(t *testing.T) {
	cfg, err := Load(env(validEnv()))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	entry, ok := cfg.Markets.Lookup("JITA")
	if !ok {
		t.Fatal("JITA not found")
	}
	station, ok := entry.Venue.(market.StationVenue)
	if !ok || station.RegionID != 10000002 || entry.LocationID != 60003760 {
		t.Errorf("JITA entry = %+v", entry)
	}

	stations := cfg.Markets.Stations()
	if _, ok := stations[market.StationKey{RegionID: 10000002, LocationID: 60003760}]; !ok {
		t.Error("Stations() missing JITA's key")
	}
	if cfg.Markets.StationMarkets()[60003760] != "JITA" {
		t.Error("StationMarkets() did not reverse-resolve JITA")
	}

	structureEntry, ok := cfg.Markets.Lookup("1DQ")
	if !ok {
		t.Fatal("1DQ not found")
	}
	structure, ok := structureEntry.Venue.(market.StructureVenue)
	if !ok || structure.RefreshToken != "rt-1" {
		t.Errorf("1DQ entry = %+v", structureEntry)
	}

	tokens := cfg.Markets.RefreshTokens()
	if len(tokens) != 1 || tokens[0] != "rt-1" {
		t.Errorf("RefreshTokens() = %v", tokens)
	}
}

func TestLoad_ClientTimeoutOptional(t *testing.T) {
	cfg, err := Load(env(validEnv()))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ClientTimeout != 0 {
		t.Errorf("ClientTimeout = %v, want 0 when unset", cfg.ClientTimeout)
	}
}

func TestLoad_MissingRequiredVar(t *testing.T) {
	values := validEnv()
	delete(values, "WM_SERVICE_ADDRESS")
	if _, err := Load(env(values)); err == nil {
		t.Fatal("expected error for missing WM_SERVICE_ADDRESS")
	}
}

func TestLoad_MarketNameCollisionRejected(t *testing.T) {
	values := validEnv()
	values["WM_STRUCTURE_MARKETS"] = `{"JITA":{"location_id":1023456789012,"refresh_token":"rt-1"}}`
	if _, err := Load(env(values)); err == nil {
		t.Fatal("expected error for market name configured as both station and structure")
	}
}

func TestLoad_InvalidTimeoutInteger(t *testing.T) {
	values := validEnv()
	values["WM_ADJUSTED_PRICE_TIMEOUT"] = "not-a-number"
	if _, err := Load(env(values)); err == nil {
		t.Fatal("expected error for non-integer timeout")
	}
}
