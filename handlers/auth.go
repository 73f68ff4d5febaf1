package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/newspulse/newspulse/backend/go-services/internal/config"
	"github.com/newspulse/newspulse/backend/go-services/internal/identity"
	"github.com/newspulse/newspulse/backend/go-services/internal/sessions"
	"github.com/newspulse/newspulse/backend/go-services/internal/tokens"
	"github.com/newspulse/newspulse/backend/go-services/internal/users"
	"github.com/newspulse/newspulse/backend/go-services/pkg/logger"
	"github.com/newspulse/newspulse/backend/go-services/pkg/metrics"
)

// OAuthRequest is the third-party login request body.
type OAuthRequest struct {
	Token    string `json:"token" binding:"required"`
	Provider string `json:"provider" binding:"required"` // "google" | "apple"
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthHandler holds dependencies
type AuthHandler struct {
	cfg         *config.Config
	usersSvc    *users.Service
	sessionsSvc *sessions.Service
	issuer      *tokens.Issuer
	providers   *identity.Registry
}

func NewAuthHandler(cfg *config.Config, u *users.Service, s *sessions.Service, iss *tokens.Issuer, p *identity.Registry) *AuthHandler {
	return &AuthHandler{cfg: cfg, usersSvc: u, sessionsSvc: s, issuer: iss, providers: p}
}

// Register routes under /auth
func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	a := rg.Group("/auth")
	a.POST("/oauth", h.OAuthLogin)
	a.POST("/register", h.RegisterUser)
	a.POST("/login", h.Login)
	a.POST("/refresh", h.Refresh)
	a.POST("/logout", h.Logout)
}

// OAuthLogin verifies a provider token and resolves it to an internal user,
// creating one on first login.
func (h *AuthHandler) OAuthLogin(c *gin.Context) {
	var req OAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	claims, err := h.providers.Verify(c.Request.Context(), req.Provider, req.Token)
	if err != nil {
		if errors.Is(err, identity.ErrUnknownProvider) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported provider"})
			return
		}
		logger.Warnf("provider token verification failed (provider=%s): %v", req.Provider, err)
		metrics.OAuthLogins.WithLabelValues(req.Provider, "invalid_token").Inc()
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid provider token"})
		return
	}
	payload, err := h.usersSvc.ResolveIdentity(c.Request.Context(), req.Provider, claims)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrMissingEmail):
			metrics.OAuthLogins.WithLabelValues(req.Provider, "missing_email").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": "email is required for oauth authentication"})
		case errors.Is(err, users.ErrInvalidProviderToken):
			metrics.OAuthLogins.WithLabelValues(req.Provider, "invalid_token").Inc()
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid provider token"})
		default:
			logger.Errorf("identity resolution failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "authentication failed"})
		}
		return
	}
	metrics.OAuthLogins.WithLabelValues(req.Provider, "ok").Inc()
	h.respondWithSession(c, payload)
}

// RegisterUser creates a password account.
func (h *AuthHandler) RegisterUser(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	payload, err := h.usersSvc.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrDuplicate):
			c.JSON(http.StatusConflict, gin.H{"error": "account already exists"})
		case errors.Is(err, users.ErrMissingEmail):
			c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		default:
			logger.Errorf("registration failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		}
		return
	}
	h.respondWithSession(c, payload)
}

// Login authenticates a password account.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	payload, err := h.usersSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		logger.Errorf("login failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	h.respondWithSession(c, payload)
}

// respondWithSession attaches a refresh session to the normalized payload.
func (h *AuthHandler) respondWithSession(c *gin.Context, payload *users.SessionPayload) {
	refresh, err := h.sessionsSvc.CreateSession(c.Request.Context(), payload.Email, h.cfg.JWT.SessionTTL)
	if err != nil {
		logger.Errorf("failed to create session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"username":        payload.Username,
		"email":           payload.Email,
		"token":           payload.Token,
		"refresh_token":   refresh,
		"preferences":     payload.Preferences,
		"reading_history": payload.ReadingHistory,
		"bookmarks":       payload.Bookmarks,
		"liked_articles":  payload.LikedArticles,
	})
}

// Refresh accepts a refresh token and returns a new access token
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess, err := h.sessionsSvc.ValidateRefresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "validation failed"})
		return
	}
	if sess == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	access, err := h.issuer.IssueSessionToken(sess.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create access token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": access, "expires_in": int(h.cfg.JWT.AccessTokenTTL.Seconds())})
}

// Logout invalidates the refresh token and, when a Bearer token accompanies
// the request, blacklists it for its remaining lifetime.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if auth := c.GetHeader("Authorization"); auth != "" {
		var at string
		if n, _ := fmt.Sscanf(auth, "Bearer %s", &at); n == 1 {
			if exp, err := parseExpFromJWT(at); err == nil {
				if ttl := time.Until(exp); ttl > 0 {
					if err := sessions.BlacklistAccessToken(c.Request.Context(), at, ttl); err != nil {
						c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to blacklist access token"})
						return
					}
				}
			}
		}
	}

	if err := h.sessionsSvc.DeleteRefresh(c.Request.Context(), req.RefreshToken); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// parseExpFromJWT decodes the JWT payload and returns the `exp` claim.
// Payload-only parsing (no signature verification); suitable for computing
// remaining TTLs for blacklisting.
func parseExpFromJWT(tok string) (time.Time, error) {
	parts := strings.Split(tok, ".")
	if len(parts) < 2 {
		return time.Time{}, fmt.Errorf("invalid token")
	}
	b, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		b, err = base64.StdEncoding.DecodeString(parts[1])
		if err != nil {
			return time.Time{}, err
		}
	}
	var claims map[string]interface{}
	if err := json.Unmarshal(b, &claims); err != nil {
		return time.Time{}, err
	}
	v, ok := claims["exp"]
	if !ok {
		return time.Time{}, fmt.Errorf("exp claim not present")
	}
	switch vv := v.(type) {
	case float64:
		return time.Unix(int64(vv), 0), nil
	case json.Number:
		i64, err := vv.Int64()
		if err != nil {
			return time.Time{}, err
		}
		return time.Unix(i64, 0), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported exp type %T", v)
	}
}
