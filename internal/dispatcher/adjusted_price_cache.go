package dispatcher

import (
	"context"
	"sync"
	"time"

	"github.com/WiggidyW2/weve-market/internal/cache"
	"github.com/WiggidyW2/weve-market/internal/esi"
	"github.com/WiggidyW2/weve-market/internal/market"
)

// AdjustedPriceCache is the single global adjusted-price table. One mutex
// guards the whole thing: every lookup, fresh hits included, takes it, and
// freshness is checked once under it. There is no lock-free read path, so
// concurrent lookups of this table run one at a time.
type AdjustedPriceCache struct {
	mu    sync.Mutex
	cache *cache.Cache[market.TypeID, market.AdjustedPriceRep]
}

func NewAdjustedPriceCache() *AdjustedPriceCache {
	return &AdjustedPriceCache{cache: cache.New[market.TypeID, market.AdjustedPriceRep]()}
}

// Get implements the adjusted price path of §4.5.
func (c *AdjustedPriceCache) Get(
	ctx context.Context,
	client *esi.Client,
	minCacheDuration time.Duration,
	req market.AdjustedPriceReq,
) (market.AdjustedPriceRep, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if rep, ok := c.cache.Get(req.TypeID); ok {
		return rep, nil
	}
	if !c.cache.Expired() {
		return market.AdjustedPriceRep{}, nil
	}

	rows, err := client.GetAdjustedPrices(ctx)
	if err != nil {
		return market.AdjustedPriceRep{}, err
	}

	expiry := rows.Expires
	if min := time.Now().Add(minCacheDuration); min.After(expiry) {
		expiry = min
	}
	c.cache.ClearAndSetExpiry(expiry)

	for _, row := range rows.Inner {
		c.cache.Insert(row.TypeID, market.AdjustedPriceRep{AdjustedPrice: row.AdjustedPrice})
	}

	rep, _ := c.cache.GetForced(req.TypeID)
	return rep, nil
}
