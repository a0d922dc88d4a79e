package market

// Venue is the sum type distinguishing a station market (public, region-
// scoped) from a structure market (player-owned, optionally authenticated).
// Modeled as an interface with two unexported-marker implementations rather
// than a class hierarchy — station-vs-structure is a closed, two-case
// choice, not an extension point.
type Venue interface {
	venue()
}

// StationVenue is a public NPC station market, resolved region-wide.
type StationVenue struct {
	RegionID RegionID
}

// StructureVenue is a player-owned structure market. RefreshToken is empty
// when the structure requires no authentication (a publicly-listed
// structure market, rare but permitted by the config schema).
type StructureVenue struct {
	RefreshToken RefreshToken
}

func (StationVenue) venue()   {}
func (StructureVenue) venue() {}

// Entry is one configured market: where it is, and how its orders are
// fetched.
type Entry struct {
	LocationID LocationID
	Venue      Venue
}

// StationKey identifies a configured station by the pair an order's
// location must match to belong to it.
type StationKey struct {
	RegionID   RegionID
	LocationID LocationID
}

// Config is the immutable market configuration derived from the
// WM_STATION_MARKETS / WM_STRUCTURE_MARKETS environment variables. It is
// built once at startup and never mutated.
type Config struct {
	entries        map[Name]Entry
	stations       map[StationKey]struct{}
	stationMarkets map[LocationID]Name
	refreshTokens  []RefreshToken
}

// NewConfig builds a Config from a flat set of market entries, computing
// the derived Stations and StationMarkets views once.
func NewConfig(entries map[Name]Entry) *Config {
	c := &Config{
		entries:        entries,
		stations:       make(map[StationKey]struct{}),
		stationMarkets: make(map[LocationID]Name),
	}

	seenTokens := make(map[RefreshToken]struct{})
	for name, e := range entries {
		switch v := e.Venue.(type) {
		case StationVenue:
			key := StationKey{RegionID: v.RegionID, LocationID: e.LocationID}
			c.stations[key] = struct{}{}
			c.stationMarkets[e.LocationID] = name
		case StructureVenue:
			if v.RefreshToken == "" {
				continue
			}
			if _, ok := seenTokens[v.RefreshToken]; ok {
				continue
			}
			seenTokens[v.RefreshToken] = struct{}{}
			c.refreshTokens = append(c.refreshTokens, v.RefreshToken)
		}
	}
	return c
}

// Lookup returns the configured entry for a market name.
func (c *Config) Lookup(name Name) (Entry, bool) {
	e, ok := c.entries[name]
	return e, ok
}

// Stations returns the set of (RegionID, LocationID) pairs belonging to
// configured station markets.
func (c *Config) Stations() map[StationKey]struct{} {
	return c.stations
}

// StationMarkets reverse-resolves a station LocationID to its configured
// market name.
func (c *Config) StationMarkets() map[LocationID]Name {
	return c.stationMarkets
}

// RefreshTokens returns the distinct set of refresh tokens configured across
// all structure markets.
func (c *Config) RefreshTokens() []RefreshToken {
	return c.refreshTokens
}

// Entries exposes the full configured entry set, e.g. for cache
// preallocation at startup.
func (c *Config) Entries() map[Name]Entry {
	return c.entries
}

// MinCacheDurations are the lower bounds, in seconds, applied to every
// cache family's upstream-declared expiry.
type MinCacheDurations struct {
	StationMarketOrders   int64
	StructureMarketOrders int64
	AdjustedPrice         int64
	SystemIndex           int64
}
