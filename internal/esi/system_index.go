package esi

import (
	"context"

	"github.com/WiggidyW2/weve-market/internal/market"
)

// CostIndex is one activity's cost index within a SystemIndexRow. Activity
// is left as the raw upstream label; mapping labels onto SystemIndexRep
// fields is the dispatcher's job, not the upstream client's.
type CostIndex struct {
	Activity  string  `json:"activity"`
	CostIndex float64 `json:"cost_index"`
}

// SystemIndexRow is one row from GET /industry/systems/.
type SystemIndexRow struct {
	SolarSystemID market.SystemID `json:"solar_system_id"`
	CostIndices   []CostIndex     `json:"cost_indices"`
}

// GetSystemIndices fetches the industry cost indices for every solar
// system. This endpoint is not paginated.
func (c *Client) GetSystemIndices(ctx context.Context) (Expirable[[]SystemIndexRow], error) {
	var rows []SystemIndexRow
	resp, err := c.getJSON(ctx, c.baseURL+"/industry/systems/?datasource=tranquility", "", &rows)
	if err != nil {
		return Expirable[[]SystemIndexRow]{}, err
	}
	return Expirable[[]SystemIndexRow]{Inner: rows, Expires: parseExpires(resp)}, nil
}
