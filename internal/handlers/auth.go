package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"clipstream/api/internal/middleware"
	"clipstream/api/internal/models"
	"clipstream/api/internal/service"
)

type signUpRequest struct {
	Username string `json:"username" binding:"required,min=3,max=32"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"fullName"`
}

type userResponse struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	FullName  string  `json:"fullName"`
	Role      string  `json:"role"`
	AvatarURL *string `json:"avatarUrl"`
	CoverURL  *string `json:"coverUrl"`
}

type authResponse struct {
	AccessToken  string       `json:"accessToken"`
	SessionToken string       `json:"sessionToken"`
	User         userResponse `json:"user"`
}

func (h HandlerSet) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.userService.Register(c.Request.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.sendAuthResponse(c, result)
}

type loginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.userService.Login(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.sendAuthResponse(c, result)
}

type refreshRequest struct {
	SessionToken string `json:"sessionToken"`
}

// Refresh rotates a session token presented via cookie or body. A reused or
// superseded token always comes back 401, even when not yet expired.
func (h HandlerSet) Refresh(c *gin.Context) {
	token, _ := c.Cookie(middleware.SessionCookie)
	if token == "" {
		var req refreshRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			token = req.SessionToken
		}
	}

	pair, err := h.tokenService.Rotate(c.Request.Context(), token)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.setTokenCookies(c, pair)
	c.JSON(http.StatusOK, gin.H{
		"accessToken":  pair.Access,
		"sessionToken": pair.Session,
	})
}

func (h HandlerSet) Logout(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.userService.Logout(c.Request.Context(), user.ID); err != nil {
		h.respondError(c, err)
		return
	}

	h.clearTokenCookies(c)
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}

func (h HandlerSet) sendAuthResponse(c *gin.Context, result service.AuthResult) {
	h.setTokenCookies(c, result.Tokens)
	c.JSON(http.StatusOK, authResponse{
		AccessToken:  result.Tokens.Access,
		SessionToken: result.Tokens.Session,
		User:         toUserResponse(result.User),
	})
}

// Cookies are HttpOnly and SameSite=None so browser clients on other
// origins can authenticate; Secure is mandatory with None.
func (h HandlerSet) setTokenCookies(c *gin.Context, pair service.TokenPair) {
	c.SetSameSite(http.SameSiteNoneMode)
	domain := h.cfg.Security.CookieDomain
	c.SetCookie(middleware.AccessCookie, pair.Access,
		int(h.cfg.Security.JWTAccessTTL.Seconds()), "/", domain, true, true)
	c.SetCookie(middleware.SessionCookie, pair.Session,
		int(h.cfg.Security.JWTSessionTTL.Seconds()), "/", domain, true, true)
}

func (h HandlerSet) clearTokenCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteNoneMode)
	domain := h.cfg.Security.CookieDomain
	c.SetCookie(middleware.AccessCookie, "", -1, "/", domain, true, true)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", domain, true, true)
}

func toUserResponse(user models.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName,
		Role:      string(user.Role),
		AvatarURL: user.AvatarURL,
		CoverURL:  user.CoverURL,
	}
}
