package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"networth/internal/services"
)

type MarketHandler struct {
	converter *services.Converter
	quotes    services.PriceFetcher
}

func NewMarketHandler(converter *services.Converter, quotes services.PriceFetcher) *MarketHandler {
	return &MarketHandler{converter: converter, quotes: quotes}
}

// ForexRate godoc
// @Tags Market
// @Summary Exchange rate between two currencies
// @Param from query string true "Source currency code"
// @Param to query string true "Target currency code"
// @Produce json
// @Success 200 {object} object
// @Router /forex/rate [get]
func (h *MarketHandler) ForexRate(w http.ResponseWriter, r *http.Request) {
	from := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("from")))
	to := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("to")))
	if from == "" || to == "" {
		writeJSONError(w, http.StatusBadRequest, "from and to are required")
		return
	}

	rate, cached, err := h.converter.Lookup(r.Context(), from, to)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, fmt.Sprintf("Could not fetch rate for %s/%s", from, to))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"from":   from,
		"to":     to,
		"rate":   rate,
		"cached": cached,
	})
}

// StockPrice godoc
// @Tags Market
// @Summary Latest market price for a ticker symbol
// @Param symbol query string true "Ticker symbol"
// @Produce json
// @Success 200 {object} object
// @Router /stocks/price [get]
func (h *MarketHandler) StockPrice(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("symbol")))
	if symbol == "" {
		writeJSONError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	price, err := h.quotes.Price(r.Context(), symbol)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "Could not fetch price")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"symbol": symbol,
		"price":  price,
	})
}
