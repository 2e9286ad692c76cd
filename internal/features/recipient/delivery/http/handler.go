package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "bcmoney-backend/internal/common/errors"
	"bcmoney-backend/internal/common/middleware"
	authmw "bcmoney-backend/internal/features/auth/middleware"
	"bcmoney-backend/internal/features/recipient/models"
	"bcmoney-backend/internal/features/recipient/service"
)

type RecipientHandler struct {
	service service.RecipientService
}

func NewRecipientHandler(service service.RecipientService) *RecipientHandler {
	return &RecipientHandler{service: service}
}

func (h *RecipientHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipients := router.Group("/recipients")
	{
		recipients.GET("", h.listRecipients)
		recipients.POST("", h.createRecipient)
		recipients.DELETE("/:id", h.deleteRecipient)
	}
}

// @Summary List saved recipients
// @Tags recipients
// @Produce json
// @Security BearerSession
// @Success 200 {array} models.Recipient "Saved recipients"
// @Failure 401 {object} middleware.ErrorResponse "Unauthorized"
// @Router /recipients [get]
func (h *RecipientHandler) listRecipients(c *gin.Context) {
	recipients, err := h.service.List(c.Request.Context(), authmw.UserID(c))
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, recipients)
}

// @Summary Save a recipient
// @Tags recipients
// @Accept json
// @Produce json
// @Security BearerSession
// @Param recipient body models.CreateRecipientRequest true "Recipient to save"
// @Success 201 {object} models.Recipient "Saved recipient"
// @Failure 400 {object} middleware.ErrorResponse "Validation failure"
// @Router /recipients [post]
func (h *RecipientHandler) createRecipient(c *gin.Context) {
	var req models.CreateRecipientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Abort(c, apperrors.Wrap(err, apperrors.ErrCodeBadRequest, "Invalid request body"))
		return
	}

	recipient, err := h.service.Create(c.Request.Context(), authmw.UserID(c), req)
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, recipient)
}

// @Summary Delete a recipient
// @Tags recipients
// @Produce json
// @Security BearerSession
// @Param id path string true "Recipient id"
// @Success 204 "Recipient removed"
// @Router /recipients/{id} [delete]
func (h *RecipientHandler) deleteRecipient(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), authmw.UserID(c), c.Param("id")); err != nil {
		middleware.Abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
