package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"resume-manager/internal/auth"
	"resume-manager/internal/resumes"
	"resume-manager/internal/services/health"
	sharedauth "resume-manager/internal/shared/auth"
	"resume-manager/internal/shared/config"
	"resume-manager/internal/shared/server"
	"resume-manager/internal/shared/server/middleware"
	"resume-manager/internal/shared/storage/db"
	"resume-manager/internal/shared/telemetry"
	"resume-manager/internal/users"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config         config.Config
	Router         *gin.Engine
	DB             *sql.DB
	Redis          *redis.Client
	Issuer         *sharedauth.Issuer
	UsersRepo      users.Repo
	ResumesRepo    resumes.Repo
	UsersService   *users.Service
	ResumesService *resumes.Service
	HealthService  *health.Service
}

// Build prepares shared dependencies and wires routes. An empty DATABASE_URL in
// dev or local selects in-memory repositories.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	telemetry.SetLevel(cfg.LogLevel)
	ctx := context.Background()

	issuer, err := sharedauth.NewIssuer([]byte(cfg.JWTSecret), cfg.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("token issuer: %w", err)
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Redis:  buildRedis(ctx, cfg),
		Issuer: issuer,
	}
	buildServices(app)

	var limiter middleware.Limiter
	if app.Redis != nil {
		limiter = middleware.NewRedisLimiter(app.Redis, "resume-manager:ratelimit:")
	}

	var google *auth.GoogleService
	if cfg.GoogleEnabled() {
		google = auth.NewGoogleService(
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.GoogleRedirectURL,
			cfg.UIRedirectURL,
			app.UsersService,
			issuer,
			issuer.DefaultTTL(),
		)
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:        cfg,
		HealthHandler: health.NewHandler(app.HealthService),
		AuthHandler: &auth.Handler{
			Users:        app.UsersService,
			Issuer:       issuer,
			TokenTTL:     issuer.DefaultTTL(),
			CookieName:   cfg.CookieName,
			SecureCookie: cfg.Env == "production",
		},
		GoogleAuth:     google,
		UserHandler:    users.NewHandler(app.UsersService),
		ResumeHandler:  resumes.NewHandler(app.ResumesService),
		TokenVerifier:  issuer,
		ResolveUser:    principalResolver(app.UsersService),
		LoginRateLimit: limiter,
	})

	return app, nil
}

// Close releases the database pool and Redis client.
func (a *App) Close() {
	if a.DB != nil {
		_ = a.DB.Close()
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": "connect failed", "error": err.Error()})
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

// buildRedis returns nil when REDIS_URL is unset or unreachable; login rate
// limiting then stays in-process.
func buildRedis(ctx context.Context, cfg config.Config) *redis.Client {
	if cfg.RedisURL == "" {
		return nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		telemetry.Warn("bootstrap.redis_disabled", map[string]any{"reason": "invalid REDIS_URL"})
		return nil
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		telemetry.Warn("bootstrap.redis_disabled", map[string]any{"reason": "ping failed", "error": err.Error()})
		_ = client.Close()
		return nil
	}
	return client
}

func buildServices(app *App) {
	if app.DB != nil {
		app.UsersRepo = &users.PGRepo{DB: app.DB}
		app.ResumesRepo = &resumes.PGRepo{DB: app.DB}
		app.HealthService = health.NewService(app.DB)
	} else {
		app.UsersRepo = users.NewMemoryRepo()
		app.ResumesRepo = resumes.NewMemoryRepo()
		app.HealthService = health.NewService(nil)
	}
	app.UsersService = users.NewService(app.UsersRepo)
	app.ResumesService = resumes.NewService(app.ResumesRepo, resumes.PlaceholderImprover{})
}

// principalResolver maps a token subject (the user's email) to the auth principal.
func principalResolver(svc *users.Service) middleware.UserResolver {
	return func(ctx context.Context, subject string) (middleware.Principal, error) {
		user, err := svc.GetByEmail(ctx, subject)
		if err != nil {
			if errors.Is(err, users.ErrNotFound) {
				return middleware.Principal{}, middleware.ErrUnknownPrincipal
			}
			return middleware.Principal{}, err
		}
		return middleware.Principal{
			ID:       user.ID,
			Email:    user.Email,
			IsActive: user.IsActive,
		}, nil
	}
}
