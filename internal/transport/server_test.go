package transport

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/WiggidyW2/weve-market/internal/dispatcher"
	"github.com/WiggidyW2/weve-market/internal/esi"
	"github.com/WiggidyW2/weve-market/internal/market"
)

func newServerAgainst(t *testing.T, upstream *httptest.Server) *Server {
	t.Helper()
	client := esi.NewClient(esi.Config{
		UserAgent:      "weve-market-test/1.0",
		ClientID:       "cid",
		ClientSecret:   "secret",
		RequestTimeout: 5 * time.Second,
		MaxConcurrent:  10,
		BaseURL:        upstream.URL,
	}, zerolog.Nop())
	cfg := market.NewConfig(nil)
	d := dispatcher.New(client, cfg, market.MinCacheDurations{}, zerolog.Nop())
	return New(d, zerolog.Nop())
}

func TestHandleAdjustedPrice_OK(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Expires", time.Now().Add(time.Minute).UTC().Format(http.TimeFormat))
		w.Write([]byte(`[{"adjusted_price":42.5,"type_id":34}]`))
	}))
	defer upstream.Close()

	s := newServerAgainst(t, upstream)
	req := httptest.NewRequest(http.MethodPost, "/v1/adjusted_price", bytes.NewBufferString(`{"type_id":34}`))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
	var rep market.AdjustedPriceRep
	if err := json.Unmarshal(rec.Body.Bytes(), &rep); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rep.AdjustedPrice != 42.5 {
		t.Fatalf("AdjustedPrice = %v, want 42.5", rep.AdjustedPrice)
	}
}

func TestHandleAdjustedPrice_MalformedBody(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream should never be hit on a malformed request")
	}))
	defer upstream.Close()

	s := newServerAgainst(t, upstream)
	req := httptest.NewRequest(http.MethodPost, "/v1/adjusted_price", bytes.NewBufferString(`not json`))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleMarketOrders_UpstreamErrorMapsTo502(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer upstream.Close()

	entries := map[market.Name]market.Entry{
		"JITA": {LocationID: 60003760, Venue: market.StationVenue{RegionID: 10000002}},
	}
	client := esi.NewClient(esi.Config{
		UserAgent: "weve-market-test/1.0", ClientID: "cid", ClientSecret: "secret",
		RequestTimeout: 5 * time.Second, MaxConcurrent: 10, BaseURL: upstream.URL,
	}, zerolog.Nop())
	d := dispatcher.New(client, market.NewConfig(entries), market.MinCacheDurations{}, zerolog.Nop())
	s := New(d, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/v1/market_orders",
		bytes.NewBufferString(`{"type_id":34,"market":"JITA","buy":false}`))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502, body=%s", rec.Code, rec.Body.String())
	}
}

func TestHandleSystemIndex_UnknownSystemReturnsEmptyNotError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Expires", time.Now().Add(time.Minute).UTC().Format(http.TimeFormat))
		w.Write([]byte(`[]`))
	}))
	defer upstream.Close()

	s := newServerAgainst(t, upstream)
	req := httptest.NewRequest(http.MethodPost, "/v1/system_index", bytes.NewBufferString(`{"system_id":1}`))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var rep market.SystemIndexRep
	if err := json.Unmarshal(rec.Body.Bytes(), &rep); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rep != (market.SystemIndexRep{}) {
		t.Fatalf("SystemIndex = %+v, want zeroed reply", rep)
	}
}

func TestHandleHealthz(t *testing.T) {
	s := newServerAgainst(t, httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})))
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
