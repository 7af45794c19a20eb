// Package http exposes the auth service's REST surface: register, login,
// refresh, logout and logout-everywhere — plus a small introspection
// endpoint returning the caller's principal.
package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gridmesh/authcore/internal/auth"
	"github.com/gridmesh/authcore/internal/common"
	"github.com/gridmesh/authcore/internal/logging"
	"github.com/gridmesh/authcore/internal/server/users"
)

// Handlers carries the orchestrator into gin handler funcs.
type Handlers struct {
	users  *users.Service
	logger logging.Logger
}

// NewHandlers constructs the handler set.
func NewHandlers(us *users.Service, logger logging.Logger) *Handlers {
	return &Handlers{users: us, logger: logger.With("module", "http")}
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

func (h *Handlers) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	caller := auth.PrincipalFromContext(c.Request.Context())

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Email, req.Password, auth.Role(req.Role), caller)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.logger.Info(c.Request.Context(), "user registered", "email", user.Email, "role", string(user.Role))
	c.JSON(http.StatusCreated, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
		"role":     string(user.Role),
	})
}

func (h *Handlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pair, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
	})
}

func (h *Handlers) refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pair, err := h.users.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
	})
}

func (h *Handlers) logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.users.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		h.fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handlers) logoutAll(c *gin.Context) {
	p := auth.PrincipalFromContext(c.Request.Context())

	if err := h.users.RevokeAll(c.Request.Context(), p.UserID); err != nil {
		h.fail(c, err)
		return
	}

	h.logger.Info(c.Request.Context(), "all sessions revoked", "user_id", p.UserID)
	c.Status(http.StatusNoContent)
}

func (h *Handlers) me(c *gin.Context) {
	p := auth.PrincipalFromContext(c.Request.Context())
	if p == nil {
		c.JSON(http.StatusOK, gin.H{"principal": nil, "role": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"principal": gin.H{"user_id": p.UserID, "email": p.Email},
		"role":      string(p.Role),
	})
}

// fail maps service errors to HTTP statuses. Anything unrecognized is a 500
// with a generic body; details stay in the log.
func (h *Handlers) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, common.ErrDuplicateEmail):
		c.JSON(http.StatusConflict, gin.H{"error": "email already exists"})
	case errors.Is(err, common.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
	default:
		h.logger.Error(c.Request.Context(), "request failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
