package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "bcmoney-backend/internal/common/errors"
	"bcmoney-backend/internal/common/middleware"
	"bcmoney-backend/internal/features/market/service"
)

type MarketHandler struct {
	service service.MarketService
}

func NewMarketHandler(service service.MarketService) *MarketHandler {
	return &MarketHandler{service: service}
}

func (h *MarketHandler) RegisterRoutes(router *gin.RouterGroup) {
	market := router.Group("/market")
	{
		market.GET("", h.getCatalog)
		market.GET("/:symbol", h.getToken)
		market.GET("/:symbol/rate/:target", h.getRate)
	}
}

// @Summary Get market catalog
// @Description Returns the full top-30 token market catalog
// @Tags market
// @Produce json
// @Success 200 {array} models.Token "Catalog entries"
// @Router /market [get]
func (h *MarketHandler) getCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Catalog())
}

// @Summary Get token by symbol
// @Tags market
// @Produce json
// @Param symbol path string true "Token symbol"
// @Success 200 {object} models.Token "Token data"
// @Failure 400 {object} middleware.ErrorResponse "Unknown token"
// @Router /market/{symbol} [get]
func (h *MarketHandler) getToken(c *gin.Context) {
	token, ok := h.service.BySymbol(c.Param("symbol"))
	if !ok {
		middleware.Abort(c, apperrors.NewUnknownTokenError(c.Param("symbol")))
		return
	}
	c.JSON(http.StatusOK, token)
}

// @Summary Get exchange rate between two tokens
// @Tags market
// @Produce json
// @Param symbol path string true "Source token symbol"
// @Param target path string true "Target token symbol"
// @Success 200 {object} map[string]string "Exchange rate"
// @Failure 400 {object} middleware.ErrorResponse "Unknown token"
// @Router /market/{symbol}/rate/{target} [get]
func (h *MarketHandler) getRate(c *gin.Context) {
	rate, err := h.service.ExchangeRate(c.Param("symbol"), c.Param("target"))
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"source": c.Param("symbol"),
		"target": c.Param("target"),
		"rate":   rate.String(),
	})
}
