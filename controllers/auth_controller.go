package controllers

import (
	"errors"
	"net/http"

	"freshfetch/models"
	"freshfetch/repositories"
	"freshfetch/services"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	auth          *services.AuthService
	cookieName    string
	cookieMaxAge  int
	secureCookies bool
}

func NewAuthController(auth *services.AuthService, cookieName string, maxAge int, secure bool) *AuthController {
	return &AuthController{
		auth:          auth,
		cookieName:    cookieName,
		cookieMaxAge:  maxAge,
		secureCookies: secure,
	}
}

// Register godoc
// @Summary Register new user
// @Description Register a new customer account
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Register Request"
// @Success 201 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Router /auth/register [post]
func (ctrl *AuthController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}

	userID, err := ctrl.auth.Register(c.Request.Context(), req)
	if errors.Is(err, repositories.ErrDuplicate) {
		badRequest(c, "Email already exists", nil)
		return
	}
	if err != nil {
		handleError(c, err)
		return
	}

	respond(c, http.StatusCreated, "Registration successful", gin.H{"userId": userID})
}

// Login godoc
// @Summary User login
// @Description Login with email and password; the token is also set as an HttpOnly cookie
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login Request"
// @Success 200 {object} models.Response{data=models.LoginResponse}
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (ctrl *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}

	resp, err := ctrl.auth.Login(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ctrl.cookieName, resp.Token, ctrl.cookieMaxAge, "/", "", ctrl.secureCookies, true)
	respond(c, http.StatusOK, "Login successful", resp)
}

// Logout godoc
// @Summary Logout
// @Tags Authentication
// @Produce json
// @Success 200 {object} models.Response
// @Router /auth/logout [post]
func (ctrl *AuthController) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ctrl.cookieName, "", -1, "/", "", ctrl.secureCookies, true)
	respond(c, http.StatusOK, "Logged out", nil)
}

// Me godoc
// @Summary Current user
// @Tags Authentication
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response{data=models.User}
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/me [get]
func (ctrl *AuthController) Me(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	user, err := ctrl.auth.Me(c.Request.Context(), p)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Profile retrieved", user)
}

// UpdateProfile godoc
// @Summary Update profile
// @Description Update the name and image of the signed-in user
// @Tags Authentication
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.UpdateProfileRequest true "Profile"
// @Success 200 {object} models.Response{data=models.User}
// @Router /auth/update-profile [post]
func (ctrl *AuthController) UpdateProfile(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}

	user, err := ctrl.auth.UpdateProfile(c.Request.Context(), p, req)
	if err != nil {
		handleError(c, err)
		return
	}
	respond(c, http.StatusOK, "Profile updated", user)
}
