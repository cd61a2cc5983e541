package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/maia/backend/internal/application/identity"
	"github.com/maia/backend/internal/application/ledger"
	"github.com/maia/backend/internal/domain/ownership"
	"github.com/maia/backend/internal/infrastructure/logger"
	"github.com/maia/backend/internal/interfaces/http/handler"
	"github.com/maia/backend/internal/interfaces/http/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Config controls the HTTP surface
type Config struct {
	Name           string
	Version        string
	Mode           ownership.Mode
	CORS           middleware.CORSConfig
	MaxBodySize    int64
	TrustedProxies []string
	Tracing        middleware.TracingConfig
}

// Dependencies are the services and collaborators the routes are built on
type Dependencies struct {
	Logger      *zap.Logger
	Auth        *identity.AuthService
	Users       *identity.UserService
	Payables    *ledger.Service
	Receivables *ledger.Service

	// LoginLimiter throttles POST /auth/login per client IP; nil disables it
	LoginLimiter *middleware.RateLimiter
	// HTTPMetrics and Gatherer enable request metrics and GET /metrics
	HTTPMetrics *middleware.HTTPMetrics
	Gatherer    prometheus.Gatherer

	ReadinessChecks []handler.ReadinessCheck
}

// NewEngine builds the gin engine with the global middleware chain and every
// API route mounted under /api/v1.
func NewEngine(cfg Config, deps Dependencies) (*gin.Engine, error) {
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(deps.Logger),
		logger.GinMiddleware(deps.Logger),
		middleware.Tracing(cfg.Tracing),
		middleware.SpanEnricher(),
		middleware.Secure(),
		middleware.CORS(cfg.CORS),
	)
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}
	if deps.HTTPMetrics != nil {
		engine.Use(deps.HTTPMetrics.Middleware())
	}
	if deps.Gatherer != nil {
		engine.GET("/metrics", middleware.MetricsHandler(deps.Gatherer))
	}

	r := NewRouter(engine)
	r.Register(systemRoutes(cfg, deps)).
		Register(authRoutes(deps)).
		Register(userRoutes(deps)).
		Register(ledgerRoutes("payables", cfg, deps, deps.Payables)).
		Register(ledgerRoutes("receivables", cfg, deps, deps.Receivables))
	r.Setup()

	return engine, nil
}

func systemRoutes(cfg Config, deps Dependencies) *DomainGroup {
	h := handler.NewSystemHandler(cfg.Name, cfg.Version, deps.ReadinessChecks...)
	return NewDomainGroup("system", "/health").
		GET("", h.Health).
		GET("/ready", h.Ready)
}

func authRoutes(deps Dependencies) *DomainGroup {
	h := handler.NewAuthHandler(deps.Auth, deps.Users)

	g := NewDomainGroup("auth", "/auth")
	g.POST("/register", h.Register)
	if deps.LoginLimiter != nil {
		g.POST("/login", middleware.RateLimit(deps.LoginLimiter, deps.Logger), h.Login)
	} else {
		g.POST("/login", h.Login)
	}

	g.Group("auth-session", "").
		Use(middleware.Authenticate(deps.Auth, deps.Logger)).
		POST("/logout", h.Logout).
		GET("/me", h.Me)
	return g
}

// userRoutes never exposes a listing of all users. /users/search is
// authorised by the namespace/token pair itself; identity deployments
// reject it as invalid input.
func userRoutes(deps Dependencies) *DomainGroup {
	h := handler.NewUserHandler(deps.Auth, deps.Users)

	g := NewDomainGroup("users", "/users")
	g.POST("", h.Create)
	g.GET("/search", h.Search)

	g.Group("users-session", "").
		Use(middleware.Authenticate(deps.Auth, deps.Logger)).
		GET("/me", h.GetMe).
		PATCH("/me", h.UpdateMe).
		DELETE("/me", h.DeleteMe).
		GET("/:id", h.GetByID).
		PATCH("/:id", h.Update).
		DELETE("/:id", h.Delete)
	return g
}

// ledgerRoutes mounts one record kind. Identity deployments authenticate the
// bearer token first; namespace_token deployments resolve the owner from the
// query parameters alone.
func ledgerRoutes(name string, cfg Config, deps Dependencies, service *ledger.Service) *DomainGroup {
	h := handler.NewLedgerHandler(service)

	g := NewDomainGroup(name, "/"+name)
	if cfg.Mode == ownership.ModeIdentity {
		g.Use(middleware.Authenticate(deps.Auth, deps.Logger))
	}
	g.Use(middleware.OwnerKey(ownership.NewResolver(cfg.Mode)))

	g.POST("", h.Create).
		GET("", h.List).
		GET("/category/:category", h.ListByCategory).
		GET("/paid-status/:status", h.ListByStatus).
		GET("/date-range", h.ListByDateRange).
		GET("/year-month", h.ListByYearMonth).
		GET("/total", h.Total).
		GET("/total/paid-status/:status", h.TotalByStatus).
		GET("/:id", h.GetByID).
		PATCH("/:id", h.Update).
		DELETE("/:id", h.Delete)
	return g
}
