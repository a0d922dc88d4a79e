package dispatcher

import (
	"context"
	"sync"
	"time"

	"github.com/WiggidyW2/weve-market/internal/cache"
	"github.com/WiggidyW2/weve-market/internal/esi"
	"github.com/WiggidyW2/weve-market/internal/market"
)

// structureOrderKey distinguishes entries within one structure's slot: a
// structure's market name is fixed by configuration, so only type and side
// vary within the slot.
type structureOrderKey struct {
	TypeID market.TypeID
	Buy    bool
}

type structureSlot struct {
	mu    sync.Mutex
	cache *cache.Cache[structureOrderKey, market.OrdersRep]
}

func newStructureSlot() *structureSlot {
	return &structureSlot{cache: cache.New[structureOrderKey, market.OrdersRep]()}
}

// StructureOrderCache is the per-location structure market order cache.
// Locations are preallocated at construction from the configured structure
// set, so the outer map needs no lock of its own.
type StructureOrderCache struct {
	slots map[market.LocationID]*structureSlot
}

// NewStructureOrderCache preallocates one slot per configured structure
// market location.
func NewStructureOrderCache(entries map[market.Name]market.Entry) *StructureOrderCache {
	c := &StructureOrderCache{slots: make(map[market.LocationID]*structureSlot)}
	for _, e := range entries {
		if _, ok := e.Venue.(market.StructureVenue); ok {
			c.slots[e.LocationID] = newStructureSlot()
		}
	}
	return c
}

// Get implements the structure orders path of §4.4.
func (c *StructureOrderCache) Get(
	ctx context.Context,
	client *esi.Client,
	minCacheDuration time.Duration,
	locationID market.LocationID,
	refreshToken market.RefreshToken,
	req market.OrdersReq,
) (market.OrdersRep, error) {
	slot, ok := c.slots[locationID]
	if !ok {
		return market.EmptyOrdersRep(), nil
	}

	key := structureOrderKey{TypeID: req.TypeID, Buy: req.Buy}

	slot.mu.Lock()
	defer slot.mu.Unlock()

	if rep, ok := slot.cache.Get(key); ok {
		return rep, nil
	}
	if !slot.cache.Expired() {
		return market.EmptyOrdersRep(), nil
	}

	rows, err := client.GetStructureOrders(ctx, locationID, refreshToken)
	if err != nil {
		return market.OrdersRep{}, err
	}

	expiry := rows.Expires
	if min := time.Now().Add(minCacheDuration); min.After(expiry) {
		expiry = min
	}
	slot.cache.ClearAndSetExpiry(expiry)

	for _, row := range rows.Inner {
		k := structureOrderKey{TypeID: row.TypeID, Buy: row.IsBuyOrder}
		existing, _ := slot.cache.GetForced(k)
		existing.MarketOrders = append(existing.MarketOrders, market.Order{
			Quantity: row.VolumeRemain,
			Price:    row.Price,
		})
		slot.cache.Insert(k, existing)
	}

	if rep, ok := slot.cache.GetForced(key); ok {
		return rep, nil
	}
	return market.EmptyOrdersRep(), nil
}
