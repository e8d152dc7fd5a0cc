package handlers

import (
	"net/http"

	"github.com/researchmem/researchmem/internal/app/middleware"
	"github.com/researchmem/researchmem/internal/domain/services"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles registration, login and OAuth identities
type AuthHandler struct {
	*BaseHandler
	userService  *services.UserService
	cookieTTL    int
	secureCookie bool
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(userService *services.UserService, cookieTTLSeconds int, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		BaseHandler:  NewBaseHandler(),
		userService:  userService,
		cookieTTL:    cookieTTLSeconds,
		secureCookie: secureCookie,
	}
}

type registerRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Register creates a new user account
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid request payload", err.Error())
		return
	}

	user, err := h.userService.Register(c.Request.Context(), services.RegisterParams{
		Email:     req.Email,
		Password:  req.Password,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondCreated(c, gin.H{"user": user})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and returns the access token, also set as a
// cookie for browser clients.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid request payload", err.Error())
		return
	}

	token, user, err := h.userService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.setTokenCookie(c, token)
	h.RespondSuccess(c, gin.H{
		"access_token": token,
		"user":         user,
	})
}

type oauthRequest struct {
	Provider string `json:"provider" binding:"required"`
	Subject  string `json:"subject" binding:"required"`
	Email    string `json:"email" binding:"required"`
}

// OAuthLogin finds or creates the account for an already-verified external
// identity. The provider handshake itself happens upstream.
func (h *AuthHandler) OAuthLogin(c *gin.Context) {
	var req oauthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBadRequest(c, "Invalid request payload", err.Error())
		return
	}

	token, user, err := h.userService.OAuthLogin(c.Request.Context(), req.Provider, req.Subject, req.Email)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.setTokenCookie(c, token)
	h.RespondSuccess(c, gin.H{
		"access_token": token,
		"user":         user,
	})
}

// Logout clears the token cookie. The token itself stays valid until expiry.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", h.secureCookie, true)
	h.RespondSuccess(c, gin.H{"message": "logged out"})
}

// Me returns the authenticated user's profile
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := h.AuthenticateUser(c)
	if !ok {
		return
	}

	user, err := h.userService.Get(c.Request.Context(), userID)
	if err != nil {
		h.RespondServiceError(c, err)
		return
	}

	h.RespondSuccess(c, gin.H{"user": user})
}

func (h *AuthHandler) setTokenCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, token, h.cookieTTL, "/", "", h.secureCookie, true)
}
