package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gopkg.in/go-playground/validator.v9"

	"writium/helper"
	"writium/middleware"
	"writium/models"
	"writium/services"
)

type AuthHandler struct {
	authService services.AuthService
	httpHelper  *helper.HTTPHelper
}

func NewAuthHandler(authService services.AuthService, httpHelper *helper.HTTPHelper) *AuthHandler {
	return &AuthHandler{authService: authService, httpHelper: httpHelper}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.httpHelper.SendBadRequest(c, "Email is required")
		return
	}
	if err := h.httpHelper.Validate.Struct(req); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			h.httpHelper.SendValidationError(c, verrs)
			return
		}
		h.httpHelper.SendBadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.authService.Login(req.Email)
	if err != nil {
		h.httpHelper.SendError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Me(c *gin.Context) {
	actor, _ := middleware.GetActor(c)
	user, err := h.authService.GetUserByID(actor.ID)
	if err != nil {
		h.httpHelper.SendError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout is stateless: tokens are not revocable server side, the endpoint
// exists so clients have a uniform call to clear their session.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
