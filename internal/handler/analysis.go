package handler

import (
	"net/http"

	"cryptopulse/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

type analysisResponse struct {
	domain.AnalysisResult
	Fallback bool `json:"fallback"`
}

// GetMarketAnalysis godoc
// @Summary      Market narrative
// @Description  Generates a summary, five key points and a sentiment for the top coins. Upstream failures yield the fixed fallback with fallback=true.
// @Tags         analysis
// @Produce      json
// @Param        currency  query  string  false  "Quote currency"  default(usd)
// @Success      200  {object}  analysisResponse
// @Failure      400  {object}  map[string]string
// @Router       /api/analysis/market [get]
func (h *Handler) GetMarketAnalysis(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-market-analysis")
	defer span.End()

	currency, ok := validateCurrency(c, c.DefaultQuery("currency", h.defaults.Currency))
	if !ok {
		return
	}
	span.SetAttributes(attribute.String("currency", currency))

	out := h.analyzer.MarketSummary(ctx, currency, h.defaults.Base)
	span.SetAttributes(attribute.Bool("fallback", out.Fallback))
	c.JSON(http.StatusOK, analysisResponse{AnalysisResult: out.Result, Fallback: out.Fallback})
}

// GetCoinAnalysis godoc
// @Summary      Coin narrative
// @Description  Generates a summary, six key points and a sentiment for one coin. Upstream failures yield the fixed fallback with fallback=true.
// @Tags         analysis
// @Produce      json
// @Param        id  path  string  true  "CoinGecko id (e.g., bitcoin)"
// @Success      200  {object}  analysisResponse
// @Router       /api/analysis/coins/{id} [get]
func (h *Handler) GetCoinAnalysis(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-coin-analysis")
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("coin_id", id))

	out := h.analyzer.CoinAnalysis(ctx, id)
	span.SetAttributes(attribute.Bool("fallback", out.Fallback))
	c.JSON(http.StatusOK, analysisResponse{AnalysisResult: out.Result, Fallback: out.Fallback})
}
