package esi

import (
	"context"
	"fmt"

	"github.com/WiggidyW2/weve-market/internal/market"
)

// StationOrder is one raw order row from GET /markets/{region_id}/orders/.
type StationOrder struct {
	LocationID   market.LocationID `json:"location_id"`
	Price        float64           `json:"price"`
	VolumeRemain int32             `json:"volume_remain"`
	TypeID       market.TypeID     `json:"type_id"`
	IsBuyOrder   bool              `json:"is_buy_order"`
}

func (c *Client) stationOrderURL(regionID market.RegionID, typeID market.TypeID, buy bool) string {
	return fmt.Sprintf("%s/markets/%d/orders/?datasource=tranquility&order_type=%s&type_id=%d&page=1",
		c.baseURL, regionID, orderTypeParam(buy), typeID)
}

func orderTypeParam(buy bool) string {
	if buy {
		return "buy"
	}
	return "sell"
}

// GetStationOrders fetches every order of one side (buy or sell) for a
// single item type within a region. Scoping the query to one type_id keeps
// ESI's response to a single page, so there is no pagination to fan out.
func (c *Client) GetStationOrders(ctx context.Context, regionID market.RegionID, typeID market.TypeID, buy bool) (Expirable[[]StationOrder], error) {
	var rows []StationOrder
	resp, err := c.getJSON(ctx, c.stationOrderURL(regionID, typeID, buy), "", &rows)
	if err != nil {
		return Expirable[[]StationOrder]{}, err
	}
	return Expirable[[]StationOrder]{Inner: rows, Expires: parseExpires(resp)}, nil
}
