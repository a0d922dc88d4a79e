// Package dispatcher is the stateless RPC core: it resolves a request
// against the configured markets and delegates to the cache family that
// owns its data, per the algorithms documented on each cache type. It
// never serializes unrelated requests — the only locks it touches belong
// to the specific slot a request needs.
package dispatcher

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/WiggidyW2/weve-market/internal/esi"
	"github.com/WiggidyW2/weve-market/internal/market"
)

// Dispatcher wires the four cache families to the upstream client and the
// configured market set. Constructed once at startup; never mutated.
type Dispatcher struct {
	client *esi.Client
	cfg    *market.Config
	min    market.MinCacheDurations
	log    zerolog.Logger

	stationOrders   *StationOrderCache
	structureOrders *StructureOrderCache
	adjustedPrice   *AdjustedPriceCache
	systemIndex     *SystemIndexCache
}

// New preallocates every cache family's sub-caches from cfg, so no cache's
// outer structure is ever mutated after this call returns.
func New(client *esi.Client, cfg *market.Config, min market.MinCacheDurations, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		client:          client,
		cfg:             cfg,
		min:             min,
		log:             log,
		stationOrders:   NewStationOrderCache(cfg.Stations()),
		structureOrders: NewStructureOrderCache(cfg.Entries()),
		adjustedPrice:   NewAdjustedPriceCache(),
		systemIndex:     NewSystemIndexCache(),
	}
}

// requestLog returns the per-request logger attached to ctx by the
// transport layer, falling back to the dispatcher's own logger so the
// cache paths never need a nil check.
func (d *Dispatcher) requestLog(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &d.log
}

// MarketOrders resolves req.Market against the configured venue and
// delegates to the matching cache family. An unknown market is never an
// error — it returns the empty reply.
func (d *Dispatcher) MarketOrders(ctx context.Context, req market.OrdersReq) (market.OrdersRep, error) {
	log := d.requestLog(ctx)
	start := time.Now()
	log.Debug().Str("op", "market_orders").Str("market", string(req.Market)).Int32("type_id", int32(req.TypeID)).Bool("buy", req.Buy).Msg("dispatch")

	rep, err := d.marketOrders(ctx, req)

	logResult(log, "market_orders", start, err)
	return rep, err
}

func (d *Dispatcher) marketOrders(ctx context.Context, req market.OrdersReq) (market.OrdersRep, error) {
	entry, ok := d.cfg.Lookup(req.Market)
	if !ok {
		return market.EmptyOrdersRep(), nil
	}

	switch venue := entry.Venue.(type) {
	case market.StationVenue:
		return d.stationOrders.Get(ctx, d.client, d.cfg, time.Duration(d.min.StationMarketOrders)*time.Second, venue.RegionID, req)
	case market.StructureVenue:
		return d.structureOrders.Get(ctx, d.client, time.Duration(d.min.StructureMarketOrders)*time.Second, entry.LocationID, venue.RefreshToken, req)
	default:
		return market.EmptyOrdersRep(), nil
	}
}

// AdjustedPrice looks up one type's adjusted price from the global table.
func (d *Dispatcher) AdjustedPrice(ctx context.Context, req market.AdjustedPriceReq) (market.AdjustedPriceRep, error) {
	log := d.requestLog(ctx)
	start := time.Now()
	log.Debug().Str("op", "adjusted_price").Int32("type_id", int32(req.TypeID)).Msg("dispatch")

	rep, err := d.adjustedPrice.Get(ctx, d.client, time.Duration(d.min.AdjustedPrice)*time.Second, req)

	logResult(log, "adjusted_price", start, err)
	return rep, err
}

// SystemIndex looks up one system's industry cost indices from the global
// table.
func (d *Dispatcher) SystemIndex(ctx context.Context, req market.SystemIndexReq) (market.SystemIndexRep, error) {
	log := d.requestLog(ctx)
	start := time.Now()
	log.Debug().Str("op", "system_index").Int32("system_id", int32(req.SystemID)).Msg("dispatch")

	rep, err := d.systemIndex.Get(ctx, d.client, time.Duration(d.min.SystemIndex)*time.Second, req)

	logResult(log, "system_index", start, err)
	return rep, err
}

func logResult(log *zerolog.Logger, op string, start time.Time, err error) {
	ev := log.Info()
	if err != nil {
		ev = log.Warn().Err(err)
	}
	ev.Str("op", op).Dur("latency", time.Since(start)).Msg("dispatch complete")
}
