package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/saiputravu/ladderbook/internal/common"
	"github.com/saiputravu/ladderbook/internal/engine"
)

const requestTimeout = 2 * time.Second

func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.New().String()
	query := r.URL.Query()
	action := query.Get("action")

	logger := log.With().Str("request_id", requestID).Str("action", action).Logger()
	logger.Info().Msg("request received")

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var resp response
	switch action {
	case "place_limit":
		resp = s.handlePlaceLimit(ctx, query, &logger)
	case "place_market":
		resp = s.handlePlaceMarket(ctx, query, &logger)
	case "cancel_limit":
		resp = s.handleCancelLimit(ctx, query, &logger)
	default:
		logger.Warn().Msg("unrecognised action")
		resp = failedResponse("bad request")
	}

	writeJSON(w, &logger, resp)
}

func (s *Server) handlePlaceLimit(ctx context.Context, query url.Values, logger *zerolog.Logger) response {
	symbol, ok := queryGet(query, "symbol")
	if !ok {
		return failedResponse("bad request")
	}
	side, ok := parseSide(query)
	if !ok {
		return failedResponse("bad request")
	}
	price, ok := parseDecimalParam(query, "price")
	if !ok {
		return failedResponse("bad request")
	}
	amount, ok := parseDecimalParam(query, "amount")
	if !ok {
		return failedResponse("bad request")
	}

	res, err := s.engine.PlaceLimit(ctx, strings.ToUpper(symbol), side, price, amount)
	if err != nil {
		return engineErrorResponse(err, logger)
	}
	return insertResultResponse(res)
}

func (s *Server) handlePlaceMarket(ctx context.Context, query url.Values, logger *zerolog.Logger) response {
	symbol, ok := queryGet(query, "symbol")
	if !ok {
		return failedResponse("bad request")
	}
	side, ok := parseSide(query)
	if !ok {
		return failedResponse("bad request")
	}
	amount, ok := parseDecimalParam(query, "amount")
	if !ok {
		return failedResponse("bad request")
	}

	res, err := s.engine.PlaceMarket(ctx, strings.ToUpper(symbol), side, amount)
	if err != nil {
		return engineErrorResponse(err, logger)
	}
	return insertResultResponse(res)
}

func (s *Server) handleCancelLimit(ctx context.Context, query url.Values, logger *zerolog.Logger) response {
	raw, ok := queryGet(query, "order_id")
	if !ok {
		return failedResponse("bad request")
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return failedResponse("bad request")
	}

	res, err := s.engine.CancelLimit(ctx, common.OrderID(id))
	if err != nil {
		return engineErrorResponse(err, logger)
	}
	if res.Status == common.CancelSuccess {
		return cancelSuccessResponse()
	}
	return orderIDNotFoundResponse()
}

func insertResultResponse(res common.InsertLimitResult) response {
	switch res.Status {
	case common.StatusSuccess:
		return successResponse(uint64(res.OrderID))
	case common.StatusPartiallyFilled:
		return partiallyFilledResponse(uint64(res.OrderID), res.Remaining.String())
	case common.StatusFullyFilled:
		return fullyFilledResponse()
	default:
		return orderDataInvalidResponse()
	}
}

func engineErrorResponse(err error, logger *zerolog.Logger) response {
	if errors.Is(err, engine.ErrUnknownSymbol) {
		return orderDataInvalidResponse()
	}
	logger.Error().Err(err).Msg("request failed")
	return failedResponse("bad request")
}

func parseSide(query url.Values) (common.Side, bool) {
	raw, ok := queryGet(query, "side")
	if !ok {
		return 0, false
	}
	side, err := common.ParseSide(raw)
	if err != nil {
		return 0, false
	}
	return side, true
}

func parseDecimalParam(query url.Values, key string) (common.Decimal, bool) {
	raw, ok := queryGet(query, key)
	if !ok {
		return common.Zero, false
	}
	d, err := common.ParseDecimal(raw)
	if err != nil {
		return common.Zero, false
	}
	return d, true
}

func queryGet(query url.Values, key string) (string, bool) {
	values, ok := query[key]
	if !ok || len(values) == 0 || values[0] == "" {
		return "", false
	}
	return values[0], true
}

func writeJSON(w http.ResponseWriter, logger *zerolog.Logger, resp response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error().Err(err).Msg("failed writing response")
	}
}
