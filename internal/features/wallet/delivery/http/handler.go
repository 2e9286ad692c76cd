package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "bcmoney-backend/internal/common/errors"
	"bcmoney-backend/internal/common/middleware"
	authmw "bcmoney-backend/internal/features/auth/middleware"
	"bcmoney-backend/internal/features/wallet/models"
	"bcmoney-backend/internal/features/wallet/service"
)

type WalletHandler struct {
	service service.WalletService
}

func NewWalletHandler(service service.WalletService) *WalletHandler {
	return &WalletHandler{service: service}
}

func (h *WalletHandler) RegisterRoutes(router *gin.RouterGroup) {
	wallet := router.Group("/wallet")
	{
		wallet.GET("/balances", h.listBalances)
		wallet.GET("/balances/:symbol", h.getBalance)
		wallet.POST("/balances/:symbol/deposit", h.deposit)
		wallet.POST("/balances/:symbol/send", h.send)
		wallet.POST("/balances/:symbol/withdraw", h.withdraw)
		wallet.POST("/balances/:symbol/trade", h.trade)
		wallet.GET("/balances/:symbol/transactions", h.listTransactions)
		wallet.DELETE("/balances/:symbol/transactions", h.clearTransactions)
		wallet.POST("/seed", h.seed)
	}
}

// @Summary List token balances
// @Description Returns every token balance the caller holds
// @Tags wallet
// @Produce json
// @Security BearerSession
// @Success 200 {array} models.TokenBalance "Balances"
// @Failure 401 {object} middleware.ErrorResponse "Unauthorized"
// @Router /wallet/balances [get]
func (h *WalletHandler) listBalances(c *gin.Context) {
	balances, err := h.service.Balances(c.Request.Context(), authmw.UserID(c))
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, balances)
}

// @Summary Get one token balance
// @Description Returns the balance for a token, zero if never credited
// @Tags wallet
// @Produce json
// @Security BearerSession
// @Param symbol path string true "Token symbol"
// @Success 200 {object} models.TokenBalance "Balance"
// @Failure 400 {object} middleware.ErrorResponse "Unknown token"
// @Router /wallet/balances/{symbol} [get]
func (h *WalletHandler) getBalance(c *gin.Context) {
	balance, err := h.service.Balance(c.Request.Context(), authmw.UserID(c), c.Param("symbol"))
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, balance)
}

// @Summary Deposit into a token balance
// @Tags wallet
// @Accept json
// @Produce json
// @Security BearerSession
// @Param symbol path string true "Token symbol"
// @Param deposit body models.DepositRequest true "Amount and source"
// @Success 200 {object} models.TransferResult "New balance and record"
// @Failure 400 {object} middleware.ErrorResponse "Invalid amount"
// @Router /wallet/balances/{symbol}/deposit [post]
func (h *WalletHandler) deposit(c *gin.Context) {
	var req models.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Abort(c, apperrors.Wrap(err, apperrors.ErrCodeBadRequest, "Invalid request body"))
		return
	}

	res, err := h.service.Deposit(c.Request.Context(), authmw.UserID(c), c.Param("symbol"), req)
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Send funds to another user
// @Description Debits the balance toward a recipient handle
// @Tags wallet
// @Accept json
// @Produce json
// @Security BearerSession
// @Param symbol path string true "Token symbol"
// @Param send body models.SendRequest true "Amount and recipient handle"
// @Success 200 {object} models.TransferResult "New balance and record"
// @Failure 422 {object} middleware.ErrorResponse "Insufficient balance"
// @Router /wallet/balances/{symbol}/send [post]
func (h *WalletHandler) send(c *gin.Context) {
	var req models.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Abort(c, apperrors.Wrap(err, apperrors.ErrCodeBadRequest, "Invalid request body"))
		return
	}

	res, err := h.service.Send(c.Request.Context(), authmw.UserID(c), c.Param("symbol"), req)
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Withdraw to an external address
// @Tags wallet
// @Accept json
// @Produce json
// @Security BearerSession
// @Param symbol path string true "Token symbol"
// @Param withdraw body models.WithdrawRequest true "Amount and address"
// @Success 200 {object} models.TransferResult "New balance and record"
// @Failure 422 {object} middleware.ErrorResponse "Insufficient balance"
// @Router /wallet/balances/{symbol}/withdraw [post]
func (h *WalletHandler) withdraw(c *gin.Context) {
	var req models.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Abort(c, apperrors.Wrap(err, apperrors.ErrCodeBadRequest, "Invalid request body"))
		return
	}

	res, err := h.service.Withdraw(c.Request.Context(), authmw.UserID(c), c.Param("symbol"), req)
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Trade one token for another
// @Description Converts at the catalog rate and writes both records atomically
// @Tags wallet
// @Accept json
// @Produce json
// @Security BearerSession
// @Param symbol path string true "Source token symbol"
// @Param trade body models.TradeRequest true "Amount and target symbol"
// @Success 200 {object} models.TradeResult "Rate, balances and records"
// @Failure 400 {object} middleware.ErrorResponse "Unknown token or same-token trade"
// @Failure 422 {object} middleware.ErrorResponse "Insufficient balance"
// @Router /wallet/balances/{symbol}/trade [post]
func (h *WalletHandler) trade(c *gin.Context) {
	var req models.TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Abort(c, apperrors.Wrap(err, apperrors.ErrCodeBadRequest, "Invalid request body"))
		return
	}

	res, err := h.service.Trade(c.Request.Context(), authmw.UserID(c), c.Param("symbol"), req)
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Seed exact balances
// @Description Overwrites balances with the given values. Test-data utility, writes no transaction records
// @Tags wallet
// @Accept json
// @Produce json
// @Security BearerSession
// @Param seed body models.SeedRequest true "Balances keyed by token symbol"
// @Success 200 {array} models.TokenBalance "Seeded balances"
// @Failure 400 {object} middleware.ErrorResponse "Unknown token or invalid amount"
// @Router /wallet/seed [post]
func (h *WalletHandler) seed(c *gin.Context) {
	var req models.SeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Abort(c, apperrors.Wrap(err, apperrors.ErrCodeBadRequest, "Invalid request body"))
		return
	}

	balances, err := h.service.Seed(c.Request.Context(), authmw.UserID(c), req)
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, balances)
}

// @Summary List transactions for a token
// @Description Returns the token's transaction records, newest first
// @Tags wallet
// @Produce json
// @Security BearerSession
// @Param symbol path string true "Token symbol"
// @Success 200 {array} models.Transaction "Transaction records"
// @Router /wallet/balances/{symbol}/transactions [get]
func (h *WalletHandler) listTransactions(c *gin.Context) {
	txns, err := h.service.History(c.Request.Context(), authmw.UserID(c), c.Param("symbol"))
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, txns)
}

// @Summary Clear transaction history for a token
// @Tags wallet
// @Produce json
// @Security BearerSession
// @Param symbol path string true "Token symbol"
// @Success 204 "History cleared"
// @Router /wallet/balances/{symbol}/transactions [delete]
func (h *WalletHandler) clearTransactions(c *gin.Context) {
	if err := h.service.ClearHistory(c.Request.Context(), authmw.UserID(c), c.Param("symbol")); err != nil {
		middleware.Abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
