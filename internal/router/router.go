package router

import (
	"github.com/anonto42/nano-midea/socialgraph/internal/auth"
	"github.com/anonto42/nano-midea/socialgraph/internal/handlers"
	"github.com/anonto42/nano-midea/socialgraph/internal/middleware"
	"github.com/anonto42/nano-midea/socialgraph/internal/services"
	"github.com/anonto42/nano-midea/socialgraph/validators"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies are the collaborators the HTTP layer needs.
type Dependencies struct {
	DB       *gorm.DB
	Services *services.Services
	Tokens   *auth.TokenIssuer
	// Firebase is optional; when set, Firebase ID tokens are accepted next to local JWTs.
	Firebase middleware.IDTokenVerifier
	Logger   *zap.Logger
}

// New builds a fully configured Echo instance.
func New(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	SetupMiddleware(e, deps.Logger)
	SetupRoutes(e, deps)
	return e
}

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, logger *zap.Logger) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.RequestIDWithConfig(eMiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLogger(logger))
	e.Use(eMiddleware.CORS())
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, deps Dependencies) {
	svc := deps.Services

	e.GET("/health", handlers.HealthCheck(deps.DB))

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	handlers.NewAuthHandler(svc.Users, deps.Tokens).RegisterAuthRoutes(authGroup)

	// --- Protected routes ---
	authenticators := []middleware.Authenticator{middleware.JWTAuthenticator(deps.Tokens, svc.Users)}
	if deps.Firebase != nil {
		authenticators = append(authenticators, middleware.FirebaseAuthenticator(deps.Firebase, svc.Users))
	}
	api := e.Group("/api/v1")
	api.Use(middleware.RequireAuth(deps.Logger, authenticators...))

	handlers.NewUserHandler(svc.Users).RegisterProfileRoutes(api)
	handlers.NewFollowHandler(svc.Follows, svc.Users).RegisterFollowRoutes(api)
	handlers.NewFeedHandler(svc.Feed, svc.Posts).RegisterFeedRoutes(api)
	handlers.NewPostHandler(svc.Posts, svc.Users).RegisterPostRoutes(api)
	handlers.NewCommentHandler(svc.Comments).RegisterCommentRoutes(api)
	handlers.NewLikeHandler(svc.Posts).RegisterLikeRoutes(api)
	handlers.NewNotificationHandler(svc.Notifications).RegisterNotificationRoutes(api)

	deps.Logger.Info("routes configured", zap.Int("count", len(e.Routes())))
}
