package controller

import (
	"errors"
	"net/http"

	"github.com/acquisitions/api/logger"
	"github.com/acquisitions/api/web/entity"
	"github.com/acquisitions/api/web/middleware"
	"github.com/acquisitions/api/web/service"

	"github.com/gin-gonic/gin"
)

// cookieMaxAge matches the token expiry.
const cookieMaxAge = 24 * 60 * 60

type AuthController struct {
	svc *service.AuthService
}

func NewAuthController(api *gin.RouterGroup, auth *service.AuthService) *AuthController {
	c := &AuthController{svc: auth}

	g := api.Group("/auth")
	{
		g.POST("/sign-up", c.signUp)
		g.POST("/sign-in", c.signIn)
		g.POST("/sign-out", c.signOut)
	}

	return c
}

type signUpRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=255"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

func (a *AuthController) signUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	user, token, err := a.svc.Register(req.Name, req.Email, req.Password)
	if errors.Is(err, service.ErrEmailTaken) {
		c.JSON(http.StatusConflict, entity.ErrorResponse{
			Error:   "Conflict",
			Message: "Email already in use",
		})
		return
	}
	if err != nil {
		logger.Error("error registering user:", err)
		respondInternal(c)
		return
	}

	setTokenCookie(c, token)
	c.JSON(http.StatusCreated, entity.UserEnvelope{
		Message: "User registered successfully",
		User:    user,
	})
}

type signInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (a *AuthController) signIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	user, token, err := a.svc.Login(req.Email, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, entity.ErrorResponse{
			Error:   "Unauthorized",
			Message: "Invalid email or password",
		})
		return
	}
	if err != nil {
		logger.Error("error signing in user:", err)
		respondInternal(c)
		return
	}

	setTokenCookie(c, token)
	c.JSON(http.StatusOK, entity.UserEnvelope{
		Message: "Signed in successfully",
		User:    user,
	})
}

func (a *AuthController) signOut(c *gin.Context) {
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Signed out successfully"})
}

func setTokenCookie(c *gin.Context, token string) {
	c.SetCookie(middleware.TokenCookie, token, cookieMaxAge, "/", "", false, true)
}
