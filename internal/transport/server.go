// Package transport is the JSON-over-HTTP RPC surface: it decodes a
// request body, attaches a per-request logger and request ID to the
// context, calls the dispatcher, and maps the outcome onto an HTTP status
// and JSON body.
package transport

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/WiggidyW2/weve-market/internal/dispatcher"
	"github.com/WiggidyW2/weve-market/internal/market"
)

// Server is the HTTP handler wrapping one Dispatcher.
type Server struct {
	dispatcher *dispatcher.Dispatcher
	log        zerolog.Logger
	mux        *http.ServeMux
}

// New builds the routed handler: the three RPC endpoints plus /healthz.
func New(d *dispatcher.Dispatcher, log zerolog.Logger) *Server {
	s := &Server{dispatcher: d, log: log, mux: http.NewServeMux()}
	s.mux.HandleFunc("/v1/market_orders", s.handleMarketOrders)
	s.mux.HandleFunc("/v1/adjusted_price", s.handleAdjustedPrice)
	s.mux.HandleFunc("/v1/system_index", s.handleSystemIndex)
	s.mux.HandleFunc("/healthz", s.handleHealthz)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// withRequest attaches a request-scoped logger (carrying a fresh request
// ID) to the request's context, so every log line the dispatcher emits for
// this RPC can be correlated.
func (s *Server) withRequest(r *http.Request) (context.Context, *http.Request) {
	requestID := uuid.New().String()
	log := s.log.With().Str("request_id", requestID).Str("path", r.URL.Path).Logger()
	ctx := log.WithContext(r.Context())
	return ctx, r.WithContext(ctx)
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeUpstreamError(w http.ResponseWriter, log *zerolog.Logger, err error) {
	log.Warn().Err(err).Msg("upstream error")
	writeJSON(w, http.StatusBadGateway, errorBody{Error: err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed request body"})
		return false
	}
	return true
}

type marketOrdersBody struct {
	TypeID market.TypeID `json:"type_id"`
	Market market.Name   `json:"market"`
	Buy    bool          `json:"buy"`
}

func (s *Server) handleMarketOrders(w http.ResponseWriter, r *http.Request) {
	ctx, r := s.withRequest(r)
	log := zerolog.Ctx(ctx)

	var body marketOrdersBody
	if !decodeBody(w, r, &body) {
		return
	}

	rep, err := s.dispatcher.MarketOrders(ctx, market.OrdersReq{
		TypeID: body.TypeID,
		Market: body.Market,
		Buy:    body.Buy,
	})
	if err != nil {
		writeUpstreamError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

type adjustedPriceBody struct {
	TypeID market.TypeID `json:"type_id"`
}

func (s *Server) handleAdjustedPrice(w http.ResponseWriter, r *http.Request) {
	ctx, r := s.withRequest(r)
	log := zerolog.Ctx(ctx)

	var body adjustedPriceBody
	if !decodeBody(w, r, &body) {
		return
	}

	rep, err := s.dispatcher.AdjustedPrice(ctx, market.AdjustedPriceReq{TypeID: body.TypeID})
	if err != nil {
		writeUpstreamError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

type systemIndexBody struct {
	SystemID market.SystemID `json:"system_id"`
}

func (s *Server) handleSystemIndex(w http.ResponseWriter, r *http.Request) {
	ctx, r := s.withRequest(r)
	log := zerolog.Ctx(ctx)

	var body systemIndexBody
	if !decodeBody(w, r, &body) {
		return
	}

	rep, err := s.dispatcher.SystemIndex(ctx, market.SystemIndexReq{SystemID: body.SystemID})
	if err != nil {
		writeUpstreamError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
