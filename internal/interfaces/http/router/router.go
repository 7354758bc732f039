// Package router assembles the gin engine of the reconciler API.
package router

import (
	"net/http"
	"time"

	"github.com/erp/reconciler/internal/infrastructure/config"
	"github.com/erp/reconciler/internal/infrastructure/logger"
	"github.com/erp/reconciler/internal/interfaces/http/dto"
	"github.com/erp/reconciler/internal/interfaces/http/handler"
	"github.com/erp/reconciler/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Permissions checked on destructive balance endpoints
const (
	PermissionBalanceRepair = "balance:repair"
)

// RouteRegistrar registers routes on a versioned API group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router collects registrars under /api/<version>
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption configures a Router
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g. "v1")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a Router on engine
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register queues registrar for Setup
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers every queued registrar
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// DomainGroup is a prefix with its own middleware and routes
type DomainGroup struct {
	name       string
	prefix     string
	routes     []routeDefinition
	subgroups  []*DomainGroup
	middleware []gin.HandlerFunc
}

type routeDefinition struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup creates a new domain route group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Use adds middleware to this group
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

// GET registers a GET route
func (dg *DomainGroup) GET(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodGet, path, handlers)
}

// POST registers a POST route
func (dg *DomainGroup) POST(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPost, path, handlers)
}

// DELETE registers a DELETE route
func (dg *DomainGroup) DELETE(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodDelete, path, handlers)
}

func (dg *DomainGroup) handle(method, path string, handlers []gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDefinition{method: method, path: path, handlers: handlers})
	return dg
}

// Group creates a sub-group within this domain
func (dg *DomainGroup) Group(name, prefix string) *DomainGroup {
	sub := NewDomainGroup(name, prefix)
	dg.subgroups = append(dg.subgroups, sub)
	return sub
}

// RegisterRoutes implements RouteRegistrar
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix)
	if len(dg.middleware) > 0 {
		group.Use(dg.middleware...)
	}
	for _, route := range dg.routes {
		group.Handle(route.method, route.path, route.handlers...)
	}
	for _, sub := range dg.subgroups {
		sub.RegisterRoutes(group)
	}
}

// Name returns the group name
func (dg *DomainGroup) Name() string {
	return dg.name
}

// Prefix returns the group prefix
func (dg *DomainGroup) Prefix() string {
	return dg.prefix
}

// Handlers are the endpoint groups served by the API
type Handlers struct {
	Health      *handler.HealthHandler
	SaleReturns *handler.SaleReturnHandler
	Sales       *handler.SaleHandler
	Finance     *handler.FinanceHandler
	Balances    *handler.BalanceHandler
}

// Deps carries what New needs to build the engine
type Deps struct {
	HTTP        config.HTTPConfig
	ServiceName string
	Logger      *zap.Logger
	Verifier    middleware.TokenVerifier
	Tenants     middleware.TenantLookup
	// AllowTenantHeader accepts X-Tenant-ID when the token has no tenant claim
	AllowTenantHeader bool
	// Meter enables HTTP metrics when set
	Meter metric.Meter
	// Idempotency deduplicates retried mutations when set
	Idempotency    middleware.IdempotencyStore
	IdempotencyTTL time.Duration
	Handlers       Handlers
}

// New builds the gin engine with the full middleware chain and every route
func New(deps Deps) (*gin.Engine, error) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	middleware.SetupValidator()
	engine := gin.New()
	if err := engine.SetTrustedProxies(deps.HTTP.TrustedProxies); err != nil {
		return nil, err
	}

	skip := []string{"/health", "/health/live"}

	engine.Use(
		middleware.RequestID(),
		middleware.Tracing(deps.ServiceName),
		middleware.SpanErrorMarker(),
		logger.Recovery(deps.Logger),
		logger.GinMiddleware(deps.Logger),
		middleware.Secure(),
		middleware.CORS(middleware.CORSConfig{
			AllowOrigins:  deps.HTTP.CORSAllowOrigins,
			AllowMethods:  deps.HTTP.CORSAllowMethods,
			AllowHeaders:  deps.HTTP.CORSAllowHeaders,
			ExposeHeaders: []string{middleware.RequestIDHeader, "Content-Disposition"},
		}),
	)
	if deps.HTTP.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(deps.HTTP.MaxBodySize))
	}
	if deps.Meter != nil {
		engine.Use(middleware.HTTPMetrics(deps.Meter, deps.Logger))
	}

	h := deps.Handlers
	engine.GET("/health", h.Health.Ready)
	engine.GET("/health/live", h.Health.Live)
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(dto.ErrCodeNotFound, "Route not found", middleware.GetRequestID(c)))
	})

	auth := []gin.HandlerFunc{
		middleware.JWTAuth(middleware.JWTConfig{
			Verifier:  deps.Verifier,
			SkipPaths: skip,
			Logger:    deps.Logger,
		}),
		middleware.Tenant(middleware.TenantConfig{
			HeaderEnabled: deps.AllowTenantHeader,
			SkipPaths:     skip,
			Lookup:        deps.Tenants,
			Logger:        deps.Logger,
		}),
		middleware.TracingAttributeInjector(),
	}
	if deps.Idempotency != nil {
		auth = append(auth, middleware.Idempotency(middleware.IdempotencyConfig{
			Store:  deps.Idempotency,
			TTL:    deps.IdempotencyTTL,
			Logger: deps.Logger,
		}))
	}

	r := NewRouter(engine)
	r.Register(tradeRoutes(h).Use(auth...))
	r.Register(financeRoutes(h).Use(auth...))
	r.Register(partnerRoutes(h).Use(auth...))
	r.Setup()

	return engine, nil
}

func tradeRoutes(h Handlers) *DomainGroup {
	trade := NewDomainGroup("trade", "/trade")
	trade.Group("sale-returns", "/sale-returns").
		POST("", h.SaleReturns.Create).
		GET("", h.SaleReturns.List).
		GET("/:id", h.SaleReturns.Get).
		POST("/:id/approve", h.SaleReturns.Approve).
		POST("/:id/reject", h.SaleReturns.Reject).
		DELETE("/:id", h.SaleReturns.Delete)
	trade.Group("sales", "/sales").
		POST("", h.Sales.Create).
		DELETE("/:id", h.Sales.Delete).
		GET("/:id/returnable", h.SaleReturns.Returnable)
	return trade
}

func financeRoutes(h Handlers) *DomainGroup {
	finance := NewDomainGroup("finance", "/finance")
	finance.Group("payments", "/payments").
		POST("", h.Finance.RecordPayment).
		POST("/:id/void", h.Finance.VoidPayment)
	finance.Group("credit-notes", "/credit-notes").
		POST("/:id/refund", h.Finance.RefundCreditNote)
	finance.Group("balances", "/balances").
		GET("/drift", h.Balances.DriftReport).
		GET("/drift/export", h.Balances.ExportDriftReport).
		POST("/repair", middleware.RequirePermission(PermissionBalanceRepair), h.Balances.Repair).
		POST("/recalculate-all", middleware.RequirePermission(PermissionBalanceRepair), h.Balances.RecalculateAll)
	return finance
}

func partnerRoutes(h Handlers) *DomainGroup {
	partner := NewDomainGroup("partner", "/partner")
	partner.Group("customers", "/customers").
		GET("/:id/balance", h.Balances.CheckCustomer).
		POST("/:id/balance/recalculate", h.Balances.RecalculateCustomer)
	return partner
}
