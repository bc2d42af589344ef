package controllers

import (
	"net/http"

	"github.com/benjibook/api-go/config"
	"github.com/benjibook/api-go/services"
	"github.com/benjibook/api-go/utils/log"
	"github.com/gin-gonic/gin"
)

type AuthController struct {
	Auth   *services.AuthService
	Google *config.GoogleConfig
}

func NewAuthController(auth *services.AuthService, google *config.GoogleConfig) *AuthController {
	return &AuthController{Auth: auth, Google: google}
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

func (ac *AuthController) Register(c *gin.Context) {
	var input credentialsRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	result, err := ac.Auth.Register(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, StandardResponse{
		Success: true,
		Data:    result,
		Message: "User registered successfully",
	})
}

func (ac *AuthController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	result, err := ac.Auth.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: result})
}

// GoogleLogin exchanges an authorization code from the Google consent screen
// for a session token.
func (ac *AuthController) GoogleLogin(c *gin.Context) {
	if ac.Google == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Google sign-in is not configured"})
		return
	}

	var input struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	token, err := ac.Google.ExchangeCode(ctx, input.Code)
	if err != nil {
		log.Log.WithError(err).Warn("google code exchange failed")
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid Google token"})
		return
	}
	info, err := ac.Google.UserInfo(ctx, token)
	if err != nil {
		log.Log.WithError(err).Warn("google user info failed")
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid Google token"})
		return
	}
	if !info.VerifiedEmail {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Google email is not verified"})
		return
	}

	result, err := ac.Auth.GoogleLogin(ctx, services.GoogleIdentity{
		ID:      info.ID,
		Email:   info.Email,
		Name:    info.Name,
		Picture: info.Picture,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: result})
}
