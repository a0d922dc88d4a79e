// Package market holds the domain types shared by the cache engine, the
// upstream client and the dispatcher: primitive identifiers, the wire
// request/reply shapes, and the immutable market configuration derived from
// environment variables at startup.
package market

// LocationID identifies a station or structure.
type LocationID int64

// RegionID identifies an EVE region.
type RegionID int32

// TypeID identifies an item type.
type TypeID int32

// SystemID identifies a solar system.
type SystemID int32

// Name identifies a configured market by its human-assigned name.
type Name string

// RefreshToken is an opaque OAuth refresh token for a structure market.
type RefreshToken string

// Order is one normalized market order.
type Order struct {
	Quantity int32   `json:"quantity"`
	Price    float64 `json:"price"`
}

// OrdersReq identifies a single market-orders query. Equality considers all
// three fields, matching the cache key semantics of the station and
// structure order caches.
type OrdersReq struct {
	TypeID TypeID
	Market Name
	Buy    bool
}

// OrdersRep is the reply to an OrdersReq.
type OrdersRep struct {
	MarketOrders []Order `json:"market_orders"`
}

// EmptyOrdersRep is returned whenever a market, type or location cannot be
// resolved to orders — never an error, per the dispatcher's "no error
// status" contract.
func EmptyOrdersRep() OrdersRep {
	return OrdersRep{MarketOrders: []Order{}}
}

// AdjustedPriceReq identifies an adjusted-price query.
type AdjustedPriceReq struct {
	TypeID TypeID
}

// AdjustedPriceRep is the reply to an AdjustedPriceReq.
type AdjustedPriceRep struct {
	AdjustedPrice float64 `json:"adjusted_price"`
}

// SystemIndexReq identifies a system-index query.
type SystemIndexReq struct {
	SystemID SystemID
}

// SystemIndexRep is the reply to a SystemIndexReq: six activity-specific
// industry cost indices for one solar system.
type SystemIndexRep struct {
	Manufacturing float64 `json:"manufacturing"`
	ResearchTE    float64 `json:"research_te"`
	ResearchME    float64 `json:"research_me"`
	Copying       float64 `json:"copying"`
	Invention     float64 `json:"invention"`
	Reactions     float64 `json:"reactions"`
}
