package esi

import (
	"context"

	"github.com/WiggidyW2/weve-market/internal/market"
)

// AdjustedPrice is one row from GET /markets/prices/.
type AdjustedPrice struct {
	AdjustedPrice float64       `json:"adjusted_price"`
	TypeID        market.TypeID `json:"type_id"`
}

// GetAdjustedPrices fetches the full per-type adjusted price table. This
// endpoint is not paginated.
func (c *Client) GetAdjustedPrices(ctx context.Context) (Expirable[[]AdjustedPrice], error) {
	var rows []AdjustedPrice
	resp, err := c.getJSON(ctx, c.baseURL+"/markets/prices/?datasource=tranquility", "", &rows)
	if err != nil {
		return Expirable[[]AdjustedPrice]{}, err
	}
	return Expirable[[]AdjustedPrice]{Inner: rows, Expires: parseExpires(resp)}, nil
}
