package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "bcmoney-backend/internal/common/errors"
	"bcmoney-backend/internal/common/middleware"
	authmw "bcmoney-backend/internal/features/auth/middleware"
	"bcmoney-backend/internal/features/auth/models"
	"bcmoney-backend/internal/features/auth/service"
)

type AuthHandler struct {
	service service.AuthService
}

func NewAuthHandler(service service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		auth.POST("/signup", h.signUp)
		auth.POST("/signin", h.signIn)
	}

	private := router.Group("/auth")
	private.Use(authmw.RequireUser(h.service))
	{
		private.POST("/signout", h.signOut)
	}
}

// @Summary Sign up
// @Description Creates an account and opens a session
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body models.SignUpRequest true "Email and password"
// @Success 201 {object} models.SessionResponse "New session"
// @Failure 409 {object} middleware.ErrorResponse "Email already registered"
// @Router /auth/signup [post]
func (h *AuthHandler) signUp(c *gin.Context) {
	var req models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Abort(c, apperrors.Wrap(err, apperrors.ErrCodeBadRequest, "Invalid request body"))
		return
	}

	session, err := h.service.SignUp(c.Request.Context(), req)
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// @Summary Sign in
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body models.SignInRequest true "Email and password"
// @Success 200 {object} models.SessionResponse "Session"
// @Failure 401 {object} middleware.ErrorResponse "Invalid credentials"
// @Router /auth/signin [post]
func (h *AuthHandler) signIn(c *gin.Context) {
	var req models.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Abort(c, apperrors.Wrap(err, apperrors.ErrCodeBadRequest, "Invalid request body"))
		return
	}

	session, err := h.service.SignIn(c.Request.Context(), req)
	if err != nil {
		middleware.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// @Summary Sign out
// @Tags auth
// @Produce json
// @Security BearerSession
// @Success 204 "Session revoked"
// @Router /auth/signout [post]
func (h *AuthHandler) signOut(c *gin.Context) {
	if err := h.service.SignOut(c.Request.Context(), authmw.Token(c)); err != nil {
		middleware.Abort(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
