package handler

import (
	"net/http"
	"strconv"
	"strings"

	"cryptopulse/internal/analysis"
	"cryptopulse/internal/domain"
	"cryptopulse/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

type marketsResponse struct {
	Currency string              `json:"currency"`
	Query    string              `json:"query,omitempty"`
	Coins    []domain.MarketCoin `json:"coins"`
	Stats    domain.MarketStats  `json:"stats"`
}

type ratesResponse struct {
	Base  string                `json:"base"`
	Rates []domain.ExchangeRate `json:"rates"`
}

// GetMarkets godoc
// @Summary      Top coins by market cap
// @Description  Returns the top coins quoted in a currency with aggregate gainers, losers, market cap and volume
// @Tags         markets
// @Produce      json
// @Param        currency  query  string  false  "Quote currency (inr, usd, eur, gbp, jpy, btc)"  default(usd)
// @Param        limit     query  int     false  "Number of coins (1-250)"  default(6)
// @Param        q         query  string  false  "Case-insensitive name or symbol filter, applied to the fetched listing"
// @Success      200  {object}  marketsResponse
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/markets [get]
func (h *Handler) GetMarkets(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-markets")
	defer span.End()

	currency := c.DefaultQuery("currency", h.defaults.Currency)
	limit := h.defaults.SummaryLimit
	if l := strings.TrimSpace(c.Query("limit")); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer"})
			return
		}
		limit = n
	}
	query := strings.TrimSpace(c.Query("q"))
	span.SetAttributes(attribute.String("currency", currency), attribute.Int("limit", limit), attribute.String("q", query))

	coins, err := h.snapshots.GetMarkets(ctx, currency, limit)
	if err != nil {
		span.RecordError(err)
		abortWithError(c, err)
		return
	}
	// stats describe the filtered set
	coins = domain.FilterCoins(coins, query)

	c.JSON(http.StatusOK, marketsResponse{
		Currency: strings.ToLower(currency),
		Query:    query,
		Coins:    coins,
		Stats:    analysis.Aggregate(coins),
	})
}

// GetCoin godoc
// @Summary      Coin detail
// @Description  Returns price, market cap and supply for a CoinGecko coin id
// @Tags         markets
// @Produce      json
// @Param        id  path  string  true  "CoinGecko id (e.g., bitcoin)"
// @Success      200  {object}  domain.CoinDetail
// @Failure      404  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/coins/{id} [get]
func (h *Handler) GetCoin(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-coin")
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("coin_id", id))

	detail, err := h.snapshots.GetCoinDetail(ctx, id)
	if err != nil {
		span.RecordError(err)
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// GetRates godoc
// @Summary      Exchange rates
// @Description  Returns rates for USD, EUR, GBP, JPY, INR, CNY, CAD and AUD relative to a base currency
// @Tags         markets
// @Produce      json
// @Param        base  query  string  false  "Base currency"  default(USD)
// @Success      200  {object}  ratesResponse
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/rates [get]
func (h *Handler) GetRates(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-rates")
	defer span.End()

	base := c.DefaultQuery("base", h.defaults.Base)
	span.SetAttributes(attribute.String("base", base))

	rates, err := h.snapshots.GetExchangeRates(ctx, base)
	if err != nil {
		span.RecordError(err)
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ratesResponse{Base: strings.ToUpper(base), Rates: rates})
}

// validateCurrency keeps bad input a 400 on endpoints that otherwise never fail.
func validateCurrency(c *gin.Context, currency string) (string, bool) {
	code, err := service.NormalizeCurrency(currency)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":                err.Error(),
			"supported_currencies": domain.QuoteCodes(),
		})
		return "", false
	}
	return code, true
}
