package esi

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/WiggidyW2/weve-market/internal/market"
)

// StructureOrder is one raw order row from GET /markets/structures/{id}/.
type StructureOrder struct {
	Price        float64       `json:"price"`
	VolumeRemain int32         `json:"volume_remain"`
	TypeID       market.TypeID `json:"type_id"`
	IsBuyOrder   bool          `json:"is_buy_order"`
}

func (c *Client) structureOrderURL(locationID market.LocationID) string {
	return fmt.Sprintf("%s/markets/structures/%d/?datasource=tranquility", c.baseURL, locationID)
}

// GetStructureOrders fetches every order for a player-owned structure
// market. rt is empty for structures that require no authentication.
// Page count is discovered with a HEAD request, then every page is fetched
// concurrently; the result's freshness is the latest Expires across all
// pages and the HEAD probe.
func (c *Client) GetStructureOrders(ctx context.Context, locationID market.LocationID, rt market.RefreshToken) (Expirable[[]StructureOrder], error) {
	bearer, err := c.bearerFor(ctx, rt)
	if err != nil {
		return Expirable[[]StructureOrder]{}, err
	}

	base := c.structureOrderURL(locationID)

	headResp, err := c.head(ctx, base+"&page=1", bearer)
	if err != nil {
		return Expirable[[]StructureOrder]{}, err
	}
	totalPages := 1
	if p := headResp.Header.Get("X-Pages"); p != "" {
		fmt.Sscanf(p, "%d", &totalPages)
		if totalPages < 1 {
			totalPages = 1
		}
	}
	expires := parseExpires(headResp)

	pages := make([][]StructureOrder, totalPages)
	pageExpiries := make([]time.Time, totalPages)
	g, gctx := errgroup.WithContext(ctx)
	for page := 1; page <= totalPages; page++ {
		page := page
		g.Go(func() error {
			var rows []StructureOrder
			resp, err := c.getJSON(gctx, fmt.Sprintf("%s&page=%d", base, page), bearer, &rows)
			if err != nil {
				return err
			}
			pages[page-1] = rows
			pageExpiries[page-1] = parseExpires(resp)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Expirable[[]StructureOrder]{}, err
	}

	var all []StructureOrder
	for i, p := range pages {
		all = append(all, p...)
		// the most-recently-refreshing page dominates the combined expiry
		if pageExpiries[i].After(expires) {
			expires = pageExpiries[i]
		}
	}
	return Expirable[[]StructureOrder]{Inner: all, Expires: expires}, nil
}

func (c *Client) bearerFor(ctx context.Context, rt market.RefreshToken) (string, error) {
	if rt == "" {
		return "", nil
	}
	return c.auth.AccessToken(ctx, rt)
}
