package dispatcher

import (
	"context"
	"sync"
	"time"

	"github.com/WiggidyW2/weve-market/internal/cache"
	"github.com/WiggidyW2/weve-market/internal/esi"
	"github.com/WiggidyW2/weve-market/internal/market"
)

// activityFields maps an upstream cost-index activity label onto the
// SystemIndexRep field it populates. A bijection: every label maps to
// exactly one field, and every field is reachable from exactly one label.
var activityFields = map[string]func(*market.SystemIndexRep, float64){
	"manufacturing":                    func(r *market.SystemIndexRep, v float64) { r.Manufacturing = v },
	"researching_time_efficiency":      func(r *market.SystemIndexRep, v float64) { r.ResearchTE = v },
	"researching_material_efficiency":  func(r *market.SystemIndexRep, v float64) { r.ResearchME = v },
	"copying":                          func(r *market.SystemIndexRep, v float64) { r.Copying = v },
	"invention":                        func(r *market.SystemIndexRep, v float64) { r.Invention = v },
	"reaction":                         func(r *market.SystemIndexRep, v float64) { r.Reactions = v },
}

func buildSystemIndexRep(costIndices []esi.CostIndex) market.SystemIndexRep {
	var rep market.SystemIndexRep
	for _, ci := range costIndices {
		if set, ok := activityFields[ci.Activity]; ok {
			set(&rep, ci.CostIndex)
		}
	}
	return rep
}

// SystemIndexCache is the single global per-system industry cost index
// table.
type SystemIndexCache struct {
	mu    sync.Mutex
	cache *cache.Cache[market.SystemID, market.SystemIndexRep]
}

func NewSystemIndexCache() *SystemIndexCache {
	return &SystemIndexCache{cache: cache.New[market.SystemID, market.SystemIndexRep]()}
}

// Get implements the system index path of §4.6.
func (c *SystemIndexCache) Get(
	ctx context.Context,
	client *esi.Client,
	minCacheDuration time.Duration,
	req market.SystemIndexReq,
) (market.SystemIndexRep, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if rep, ok := c.cache.Get(req.SystemID); ok {
		return rep, nil
	}
	if !c.cache.Expired() {
		return market.SystemIndexRep{}, nil
	}

	rows, err := client.GetSystemIndices(ctx)
	if err != nil {
		return market.SystemIndexRep{}, err
	}

	expiry := rows.Expires
	if min := time.Now().Add(minCacheDuration); min.After(expiry) {
		expiry = min
	}
	c.cache.ClearAndSetExpiry(expiry)

	for _, row := range rows.Inner {
		c.cache.Insert(row.SolarSystemID, buildSystemIndexRep(row.CostIndices))
	}

	rep, _ := c.cache.GetForced(req.SystemID)
	return rep, nil
}
