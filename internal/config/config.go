// Package config loads the process configuration from environment
// variables into an immutable, validated Config. Nothing outside this
// package reads os.Getenv directly.
package config

import (
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/WiggidyW2/weve-market/internal/market"
)

// Config is the fully-resolved, immutable startup configuration.
type Config struct {
	ServiceAddress string
	UserAgent      string
	ClientID       string
	ClientSecret   string
	ClientTimeout  time.Duration // zero means no client-wide timeout
	MinCache       market.MinCacheDurations
	Markets        *market.Config
}

// Getenv matches os.LookupEnv's signature, injected so tests never touch
// the real process environment.
type Getenv func(key string) (string, bool)

type stationMarketJSON struct {
	LocationID market.LocationID `json:"location_id"`
	RegionID   market.RegionID   `json:"region_id"`
}

type structureMarketJSON struct {
	LocationID   market.LocationID   `json:"location_id"`
	RefreshToken market.RefreshToken `json:"refresh_token"`
}

// Load reads and validates the full WM_* environment surface.
func Load(getenv Getenv) (*Config, error) {
	serviceAddress, err := require(getenv, "WM_SERVICE_ADDRESS")
	if err != nil {
		return nil, err
	}
	if _, _, err := net.SplitHostPort(serviceAddress); err != nil {
		return nil, fmt.Errorf("WM_SERVICE_ADDRESS: must be host:port, got %q: %w", serviceAddress, err)
	}
	userAgent, err := require(getenv, "WM_USER_AGENT")
	if err != nil {
		return nil, err
	}
	clientID, err := require(getenv, "WM_CLIENT_ID")
	if err != nil {
		return nil, err
	}
	clientSecret, err := require(getenv, "WM_CLIENT_SECRET")
	if err != nil {
		return nil, err
	}

	clientTimeout, err := optionalSeconds(getenv, "WM_CLIENT_TIMEOUT")
	if err != nil {
		return nil, err
	}

	stationMOTimeout, err := requireSeconds(getenv, "WM_STATION_MARKET_ORDERS_TIMEOUT")
	if err != nil {
		return nil, err
	}
	structureMOTimeout, err := requireSeconds(getenv, "WM_STRUCTURE_MARKET_ORDERS_TIMEOUT")
	if err != nil {
		return nil, err
	}
	adjustedPriceTimeout, err := requireSeconds(getenv, "WM_ADJUSTED_PRICE_TIMEOUT")
	if err != nil {
		return nil, err
	}
	systemIndexTimeout, err := requireSeconds(getenv, "WM_SYSTEM_INDEX_TIMEOUT")
	if err != nil {
		return nil, err
	}

	stationMarketsRaw, err := require(getenv, "WM_STATION_MARKETS")
	if err != nil {
		return nil, err
	}
	structureMarketsRaw, err := require(getenv, "WM_STRUCTURE_MARKETS")
	if err != nil {
		return nil, err
	}

	var stationMarkets map[market.Name]stationMarketJSON
	if err := json.Unmarshal([]byte(stationMarketsRaw), &stationMarkets); err != nil {
		return nil, fmt.Errorf("parse WM_STATION_MARKETS: %w", err)
	}
	var structureMarkets map[market.Name]structureMarketJSON
	if err := json.Unmarshal([]byte(structureMarketsRaw), &structureMarkets); err != nil {
		return nil, fmt.Errorf("parse WM_STRUCTURE_MARKETS: %w", err)
	}

	entries := make(map[market.Name]market.Entry, len(stationMarkets)+len(structureMarkets))
	for name, sm := range stationMarkets {
		entries[name] = market.Entry{
			LocationID: sm.LocationID,
			Venue:      market.StationVenue{RegionID: sm.RegionID},
		}
	}
	for name, sm := range structureMarkets {
		if _, collision := entries[name]; collision {
			return nil, fmt.Errorf("market %q configured as both a station and a structure market", name)
		}
		entries[name] = market.Entry{
			LocationID: sm.LocationID,
			Venue:      market.StructureVenue{RefreshToken: sm.RefreshToken},
		}
	}

	return &Config{
		ServiceAddress: serviceAddress,
		UserAgent:      userAgent,
		ClientID:       clientID,
		ClientSecret:   clientSecret,
		ClientTimeout:  clientTimeout,
		MinCache: market.MinCacheDurations{
			StationMarketOrders:   stationMOTimeout,
			StructureMarketOrders: structureMOTimeout,
			AdjustedPrice:         adjustedPriceTimeout,
			SystemIndex:           systemIndexTimeout,
		},
		Markets: market.NewConfig(entries),
	}, nil
}

func require(getenv Getenv, key string) (string, error) {
	v, ok := getenv(key)
	if !ok {
		return "", fmt.Errorf("missing required environment variable %s", key)
	}
	return v, nil
}

func requireSeconds(getenv Getenv, key string) (int64, error) {
	raw, err := require(getenv, key)
	if err != nil {
		return 0, err
	}
	seconds, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || seconds < 0 {
		return 0, fmt.Errorf("%s: must be a non-negative integer, got %q", key, raw)
	}
	return seconds, nil
}

func optionalSeconds(getenv Getenv, key string) (time.Duration, error) {
	raw, ok := getenv(key)
	if !ok || raw == "" {
		return 0, nil
	}
	seconds, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || seconds < 0 {
		return 0, fmt.Errorf("%s: must be a non-negative integer, got %q", key, raw)
	}
	return time.Duration(seconds) * time.Second, nil
}
