package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "bcmoney-backend/internal/common/errors"
	"bcmoney-backend/internal/common/middleware"
	authmw "bcmoney-backend/internal/features/auth/middleware"
	"bcmoney-backend/internal/features/profile/models"
	"bcmoney-backend/internal/features/profile/service"
)

type ProfileHandler struct {
	service service.ProfileService
}

func NewProfileHandler(service service.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

func (h *ProfileHandler) RegisterRoutes(router *gin.RouterGroup) {
	profile := router.Group("/profile")
	{
		profile.GET("", h.getProfile)
		profile.PUT("", h.updateProfile)
		profile.POST("/watchlist/:tokenId/toggle", h.toggleWatchlist)
		profile.POST("/tokens/:tokenId", h.addOwnedToken)
		profile.DELETE("/tokens/:tokenId", h.removeOwnedToken)
		profile.DELETE("", h.resetAccount)
	}
}

// @Summary Get current profile
// @Description Returns the caller's profile, creating it on first access
// @Tags profile
// @Produce json
// @Security BearerSession
// @Success 200 {object} models.UserProfile "Profile data"
// @Failure 401 {object} middleware.ErrorResponse "Unauthorized"
// @Router /profile [get]
func (h *ProfileHandler) getProfile(c *gin.Context) {
	profile, err := h.service.GetOrCreate(c.Request.Context(), authmw.UserID(c), authmw.UserEmail(c))
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// @Summary Update profile
// @Description Updates contact fields and the unique P2P handle
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerSession
// @Param profile body models.UpdateProfileRequest true "Fields to update"
// @Success 200 {object} models.UserProfile "Updated profile"
// @Failure 409 {object} middleware.ErrorResponse "Handle already taken"
// @Router /profile [put]
func (h *ProfileHandler) updateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Abort(c, apperrors.Wrap(err, apperrors.ErrCodeBadRequest, "Invalid request body"))
		return
	}

	profile, err := h.service.Update(c.Request.Context(), authmw.UserID(c), req)
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// @Summary Toggle watchlist membership
// @Tags profile
// @Produce json
// @Security BearerSession
// @Param tokenId path string true "Catalog token id"
// @Success 200 {object} models.ToggleResponse "Resulting watchlist"
// @Failure 400 {object} middleware.ErrorResponse "Unknown token"
// @Router /profile/watchlist/{tokenId}/toggle [post]
func (h *ProfileHandler) toggleWatchlist(c *gin.Context) {
	res, err := h.service.ToggleWatchlist(c.Request.Context(), authmw.UserID(c), c.Param("tokenId"))
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Add token to portfolio
// @Tags profile
// @Produce json
// @Security BearerSession
// @Param tokenId path string true "Catalog token id"
// @Success 200 {object} models.ToggleResponse "Resulting portfolio set"
// @Router /profile/tokens/{tokenId} [post]
func (h *ProfileHandler) addOwnedToken(c *gin.Context) {
	res, err := h.service.AddOwnedToken(c.Request.Context(), authmw.UserID(c), c.Param("tokenId"))
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Remove token from portfolio
// @Tags profile
// @Produce json
// @Security BearerSession
// @Param tokenId path string true "Catalog token id"
// @Success 200 {object} models.ToggleResponse "Resulting portfolio set"
// @Router /profile/tokens/{tokenId} [delete]
func (h *ProfileHandler) removeOwnedToken(c *gin.Context) {
	res, err := h.service.RemoveOwnedToken(c.Request.Context(), authmw.UserID(c), c.Param("tokenId"))
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Reset account data
// @Description Removes the profile document and every subcollection
// @Tags profile
// @Produce json
// @Security BearerSession
// @Success 204 "Account data removed"
// @Router /profile [delete]
func (h *ProfileHandler) resetAccount(c *gin.Context) {
	if err := h.service.Reset(c.Request.Context(), authmw.UserID(c)); err != nil {
		middleware.Abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
