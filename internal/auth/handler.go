package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resume-manager/internal/shared/metrics"
	"resume-manager/internal/shared/server/respond"
	"resume-manager/internal/shared/telemetry"
	"resume-manager/internal/shared/util"
	"resume-manager/internal/users"
)

// TokenIssuer signs access tokens for a subject.
type TokenIssuer interface {
	Issue(subject string, ttl time.Duration) (string, error)
}

// Handler serves registration, login and logout.
type Handler struct {
	Users        *users.Service
	Issuer       TokenIssuer
	TokenTTL     time.Duration
	CookieName   string
	SecureCookie bool
}

type credentialsRequest struct {
	Email    string `json:"email" form:"email"`
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

func (r credentialsRequest) login() string {
	if email := strings.TrimSpace(r.Email); email != "" {
		return email
	}
	return strings.TrimSpace(r.Username)
}

// TokenResponse mirrors the OAuth2 password-flow response body.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/register", h.register)
	rg.POST("/login", h.login)
	rg.POST("/logout", h.logout)
}

func (h *Handler) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}
	user, err := h.Users.Register(c.Request.Context(), req.login(), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, respond.CodeValidation, err.Error(), nil)
		case errors.Is(err, users.ErrDuplicateEmail):
			respond.Error(c, http.StatusConflict, respond.CodeConflict, "email already registered", nil)
		default:
			respond.Internal(c, "auth.register", err)
		}
		return
	}
	telemetry.Info("auth.registered", map[string]any{"user_id": user.ID})
	respond.Created(c, users.ToResponse(user))
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBind(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "invalid request body", nil)
		return
	}
	login := req.login()
	if login == "" || req.Password == "" {
		respond.Error(c, http.StatusBadRequest, respond.CodeValidation, "username and password are required", nil)
		return
	}

	user, err := h.Users.Authenticate(c.Request.Context(), login, req.Password)
	if err != nil {
		metrics.IncLoginFailure()
		switch {
		case errors.Is(err, users.ErrInvalidCredentials):
			telemetry.Warn("auth.login_failed", map[string]any{"login_hash": util.HashUserKey(login)})
			c.Header("WWW-Authenticate", "Bearer")
			respond.Error(c, http.StatusUnauthorized, respond.CodeUnauthorized, "incorrect email or password", nil)
		case errors.Is(err, users.ErrInactive):
			respond.Error(c, http.StatusForbidden, respond.CodeForbidden, "inactive user", nil)
		default:
			respond.Internal(c, "auth.login", err)
		}
		return
	}

	token, err := h.Issuer.Issue(user.Email, h.TokenTTL)
	if err != nil {
		respond.Internal(c, "auth.issue", err)
		return
	}
	metrics.IncLoginSuccess()
	h.setCookie(c, token, int(h.TokenTTL/time.Second))
	respond.OK(c, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(h.TokenTTL / time.Second),
	})
}

func (h *Handler) logout(c *gin.Context) {
	h.setCookie(c, "", -1)
	respond.NoContent(c)
}

func (h *Handler) setCookie(c *gin.Context, value string, maxAge int) {
	if h.CookieName == "" {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.CookieName, value, maxAge, "/", "", h.SecureCookie, true)
}
