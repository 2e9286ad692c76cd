package http

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "bcmoney-backend/internal/common/errors"
	"bcmoney-backend/internal/common/middleware"
	authmw "bcmoney-backend/internal/features/auth/middleware"
	marketservice "bcmoney-backend/internal/features/market/service"
	profilerepo "bcmoney-backend/internal/features/profile/repository/redis"
	walletrepo "bcmoney-backend/internal/features/wallet/repository/redis"
	"bcmoney-backend/internal/platform/bus"
	"bcmoney-backend/internal/platform/docstore"
)

const heartbeatInterval = 25 * time.Second

// StreamHandler exposes the store's real-time subscriptions over SSE.
// Each connection maps to one watcher; closing the connection cancels
// the request context, which tears the subscription down.
type StreamHandler struct {
	store  *docstore.Store
	bus    *bus.ErrorBus
	market marketservice.MarketService
}

func NewStreamHandler(store *docstore.Store, errBus *bus.ErrorBus, market marketservice.MarketService) *StreamHandler {
	return &StreamHandler{store: store, bus: errBus, market: market}
}

func (h *StreamHandler) RegisterRoutes(router *gin.RouterGroup) {
	stream := router.Group("/stream")
	{
		stream.GET("/profile", h.streamProfile)
		stream.GET("/balances", h.streamBalances)
		stream.GET("/balances/:symbol/transactions", h.streamTransactions)
		stream.GET("/recipients", h.streamRecipients)
	}
}

// RegisterDebugRoutes mounts the store-error feed outside the
// authenticated group.
func (h *StreamHandler) RegisterDebugRoutes(router *gin.RouterGroup) {
	router.GET("/debug/errors", h.streamErrors)
}

// @Summary Stream the caller's profile document
// @Description SSE feed: a loading event, then one snapshot per change
// @Tags stream
// @Produce text/event-stream
// @Security BearerSession
// @Success 200 {string} string "event stream"
// @Router /stream/profile [get]
func (h *StreamHandler) streamProfile(c *gin.Context) {
	ref := h.store.Doc(profilerepo.ProfilesCollection, authmw.UserID(c))
	states, err := h.store.WatchDoc(c.Request.Context(), ref)
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	h.pumpDoc(c, states)
}

// @Summary Stream the caller's token balances
// @Tags stream
// @Produce text/event-stream
// @Security BearerSession
// @Success 200 {string} string "event stream"
// @Router /stream/balances [get]
func (h *StreamHandler) streamBalances(c *gin.Context) {
	col := h.store.Collection(profilerepo.ProfilesCollection, authmw.UserID(c), profilerepo.BalancesCollection)
	states, err := h.store.WatchCollection(c.Request.Context(), col, docstore.ListOptions{})
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	h.pumpCollection(c, states)
}

// @Summary Stream one balance's transaction records
// @Description Full ordered snapshot on every change, newest first
// @Tags stream
// @Produce text/event-stream
// @Security BearerSession
// @Param symbol path string true "Token symbol"
// @Success 200 {string} string "event stream"
// @Failure 400 {object} middleware.ErrorResponse "Unknown token"
// @Router /stream/balances/{symbol}/transactions [get]
func (h *StreamHandler) streamTransactions(c *gin.Context) {
	token, ok := h.market.BySymbol(c.Param("symbol"))
	if !ok {
		middleware.Abort(c, apperrors.NewUnknownTokenError(c.Param("symbol")))
		return
	}

	col := h.store.Collection(
		profilerepo.ProfilesCollection, authmw.UserID(c),
		profilerepo.BalancesCollection, token.ID,
		walletrepo.TransactionsCollection,
	)
	states, err := h.store.WatchCollection(c.Request.Context(), col, docstore.ListOptions{
		OrderBy:    "transactionDate",
		Descending: true,
	})
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	h.pumpCollection(c, states)
}

// @Summary Stream the caller's saved recipients
// @Tags stream
// @Produce text/event-stream
// @Security BearerSession
// @Success 200 {string} string "event stream"
// @Router /stream/recipients [get]
func (h *StreamHandler) streamRecipients(c *gin.Context) {
	col := h.store.Collection(profilerepo.ProfilesCollection, authmw.UserID(c), profilerepo.RecipientsCollection)
	states, err := h.store.WatchCollection(c.Request.Context(), col, docstore.ListOptions{OrderBy: "name"})
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	h.pumpCollection(c, states)
}

// @Summary Stream store access failures
// @Description Global feed of background write and read failures
// @Tags stream
// @Produce text/event-stream
// @Success 200 {string} string "event stream"
// @Router /debug/errors [get]
func (h *StreamHandler) streamErrors(c *gin.Context) {
	sub := h.bus.Subscribe(32)
	defer h.bus.Unsubscribe(sub)

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case storeErr, ok := <-sub:
			if !ok {
				return false
			}
			c.SSEvent("store-error", storeErr)
			return true
		case <-heartbeat.C:
			c.SSEvent("heartbeat", time.Now().UTC())
			return true
		}
	})
}

func (h *StreamHandler) pumpDoc(c *gin.Context, states <-chan docstore.DocState) {
	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case state, ok := <-states:
			if !ok {
				return false
			}
			return h.emitDoc(c, state)
		case <-heartbeat.C:
			c.SSEvent("heartbeat", time.Now().UTC())
			return true
		}
	})
}

func (h *StreamHandler) pumpCollection(c *gin.Context, states <-chan docstore.CollectionState) {
	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case state, ok := <-states:
			if !ok {
				return false
			}
			return h.emitCollection(c, state)
		case <-heartbeat.C:
			c.SSEvent("heartbeat", time.Now().UTC())
			return true
		}
	})
}

func (h *StreamHandler) emitDoc(c *gin.Context, state docstore.DocState) bool {
	switch {
	case state.Err != nil:
		c.SSEvent("error", state.Err.Error())
	case state.Loading:
		c.SSEvent("loading", nil)
	default:
		c.SSEvent("snapshot", state.Data)
	}
	return true
}

func (h *StreamHandler) emitCollection(c *gin.Context, state docstore.CollectionState) bool {
	switch {
	case state.Err != nil:
		c.SSEvent("error", state.Err.Error())
	case state.Loading:
		c.SSEvent("loading", nil)
	default:
		c.SSEvent("snapshot", state.Data)
	}
	return true
}
