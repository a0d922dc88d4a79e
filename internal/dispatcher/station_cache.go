package dispatcher

import (
	"context"
	"sync"
	"time"

	"github.com/WiggidyW2/weve-market/internal/cache"
	"github.com/WiggidyW2/weve-market/internal/esi"
	"github.com/WiggidyW2/weve-market/internal/market"
)

// stationSlotKey identifies one (type, side) slot within a region. Every
// market sharing that region observes the same upstream fetch for this key.
type stationSlotKey struct {
	TypeID market.TypeID
	Buy    bool
}

// stationSlot is a single-flight cache slot: one upstream fetch populates
// every configured station market's reply for this (region, type, side).
type stationSlot struct {
	mu    sync.Mutex
	cache *cache.Cache[market.Name, market.OrdersRep]
}

func newStationSlot() *stationSlot {
	return &stationSlot{cache: cache.New[market.Name, market.OrdersRep]()}
}

// regionStations holds every slot fetched so far for one region. Slots are
// created lazily on first request for a new (type, side) pair.
type regionStations struct {
	mu    sync.RWMutex
	slots map[stationSlotKey]*stationSlot
}

func newRegionStations() *regionStations {
	return &regionStations{slots: make(map[stationSlotKey]*stationSlot)}
}

// slot returns the slot for key, creating it if this is the first request
// for this (type, side) pair in the region. The map lock is held only long
// enough to look up or insert; the returned slot carries its own lock for
// the fetch and cache-population critical section.
func (r *regionStations) slot(key stationSlotKey) *stationSlot {
	r.mu.RLock()
	s, ok := r.slots[key]
	r.mu.RUnlock()
	if ok {
		return s
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.slots[key]; ok {
		return s
	}
	s = newStationSlot()
	r.slots[key] = s
	return s
}

// StationOrderCache is the per-region, per-(type,side) station market order
// cache. Regions are preallocated at construction from the configured
// station set, so the outer map is never mutated afterward and needs no
// lock of its own.
type StationOrderCache struct {
	regions map[market.RegionID]*regionStations
}

// NewStationOrderCache preallocates one regionStations per distinct region
// in the configured station set.
func NewStationOrderCache(stations map[market.StationKey]struct{}) *StationOrderCache {
	c := &StationOrderCache{regions: make(map[market.RegionID]*regionStations)}
	for key := range stations {
		if _, ok := c.regions[key.RegionID]; !ok {
			c.regions[key.RegionID] = newRegionStations()
		}
	}
	return c
}

// Get implements the station orders path of §4.3: resolve the (region,
// type, side) slot, serve it fresh if possible, otherwise fetch upstream
// under the slot's exclusive lock, partition the result across every
// sibling station market in the region, and return this request's reply.
func (c *StationOrderCache) Get(
	ctx context.Context,
	client *esi.Client,
	cfg *market.Config,
	minCacheDuration time.Duration,
	regionID market.RegionID,
	req market.OrdersReq,
) (market.OrdersRep, error) {
	region, ok := c.regions[regionID]
	if !ok {
		// region not configured at startup: nothing to serve from, but
		// also nothing upstream-fetchable in this cache's scope
		return market.EmptyOrdersRep(), nil
	}

	slot := region.slot(stationSlotKey{TypeID: req.TypeID, Buy: req.Buy})

	slot.mu.Lock()
	defer slot.mu.Unlock()

	if rep, ok := slot.cache.Get(req.Market); ok {
		return rep, nil
	}
	if !slot.cache.Expired() {
		// fresh slot, but this market never appeared in the last fetch
		return market.EmptyOrdersRep(), nil
	}

	rows, err := client.GetStationOrders(ctx, regionID, req.TypeID, req.Buy)
	if err != nil {
		return market.OrdersRep{}, err
	}

	expiry := rows.Expires
	if min := time.Now().Add(minCacheDuration); min.After(expiry) {
		expiry = min
	}
	slot.cache.ClearAndSetExpiry(expiry)

	stations := cfg.Stations()
	stationMarkets := cfg.StationMarkets()
	for _, row := range rows.Inner {
		if row.TypeID != req.TypeID {
			// the upstream query is already scoped to this type; this
			// guards against a response that doesn't honor the filter
			continue
		}
		name, ok := stationMarkets[row.LocationID]
		if !ok {
			continue
		}
		if _, inRegion := stations[market.StationKey{RegionID: regionID, LocationID: row.LocationID}]; !inRegion {
			continue
		}
		existing, _ := slot.cache.GetForced(name)
		existing.MarketOrders = append(existing.MarketOrders, market.Order{
			Quantity: row.VolumeRemain,
			Price:    row.Price,
		})
		slot.cache.Insert(name, existing)
	}

	if rep, ok := slot.cache.GetForced(req.Market); ok {
		return rep, nil
	}
	return market.EmptyOrdersRep(), nil
}
