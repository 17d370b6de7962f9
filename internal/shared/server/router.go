package server

import (
	"strings"

	"github.com/gin-gonic/gin"

	"resume-manager/internal/auth"
	"resume-manager/internal/resumes"
	"resume-manager/internal/services/health"
	"resume-manager/internal/shared/config"
	"resume-manager/internal/shared/metrics"
	"resume-manager/internal/shared/server/middleware"
	"resume-manager/internal/users"
)

const loginRateGroup = "LOGIN"

// RouterDeps holds the handlers and auth collaborators the router mounts.
type RouterDeps struct {
	Config         config.Config
	HealthHandler  *health.Handler
	AuthHandler    *auth.Handler
	GoogleAuth     *auth.GoogleService
	UserHandler    *users.Handler
	ResumeHandler  *resumes.Handler
	TokenVerifier  middleware.TokenVerifier
	ResolveUser    middleware.UserResolver
	LoginRateLimit middleware.Limiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	root := r.Group("")
	if deps.HealthHandler != nil {
		deps.HealthHandler.RegisterRoutes(root)
	}
	r.GET("/metrics", metrics.Handler())

	requireAuth := middleware.Auth(deps.TokenVerifier, deps.ResolveUser, deps.Config.CookieName)

	authGroup := r.Group("/auth", loginRateLimit(deps))
	if deps.AuthHandler != nil {
		deps.AuthHandler.RegisterRoutes(authGroup)
	}
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(authGroup)
	}
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(authGroup.Group("", requireAuth))
	}

	if deps.ResumeHandler != nil {
		for _, prefix := range []string{"/resumes", "/api/resumes"} {
			deps.ResumeHandler.RegisterRoutes(r.Group(prefix, requireAuth))
		}
	}

	return r
}

// loginRateLimit throttles credential endpoints per client IP.
func loginRateLimit(deps RouterDeps) gin.HandlerFunc {
	perMinute := deps.Config.LoginRatePerMinute
	if perMinute <= 0 {
		perMinute = 10
	}
	return middleware.RateLimit(middleware.RateLimitConfig{
		Limiter: deps.LoginRateLimit,
		GroupFor: func(c *gin.Context) string {
			path := c.FullPath()
			if strings.HasSuffix(path, "/login") || strings.HasSuffix(path, "/register") {
				return loginRateGroup
			}
			return ""
		},
		Rules: map[string]middleware.RateLimitRule{
			loginRateGroup: {Rate: float64(perMinute) / 60.0, Burst: perMinute},
		},
	})
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
