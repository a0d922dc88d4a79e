package esi

import (
	"net/http"
	"time"
)

// Expirable pairs an upstream result with the absolute instant it stops
// being fresh, per the declared Expires header.
type Expirable[T any] struct {
	Inner   T
	Expires time.Time
}

// defaultTTL is used when an upstream response carries no usable Expires
// header, which ESI never does in practice but which a misbehaving mock or
// a future upstream change could.
const defaultTTL = 5 * time.Minute

// parseExpires reads and parses the Expires header of an ESI response.
// http.ParseTime already accepts every date format HTTP permits (RFC1123,
// RFC850, ANSI C asctime), which covers the RFC1123-with-GMT form ESI
// actually sends.
func parseExpires(resp *http.Response) time.Time {
	if resp == nil {
		return time.Now().Add(defaultTTL)
	}
	raw := resp.Header.Get("Expires")
	if raw == "" {
		return time.Now().Add(defaultTTL)
	}
	t, err := http.ParseTime(raw)
	if err != nil {
		return time.Now().Add(defaultTTL)
	}
	return t
}
