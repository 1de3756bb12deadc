package router

import (
	"time"

	"github.com/erp/settlement/internal/domain/shared"
	"github.com/erp/settlement/internal/infrastructure/logger"
	"github.com/erp/settlement/internal/infrastructure/telemetry"
	"github.com/erp/settlement/internal/interfaces/http/handler"
	"github.com/erp/settlement/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EngineConfig selects the global middleware of the HTTP engine
type EngineConfig struct {
	Logger         *zap.Logger
	ServiceName    string
	TracingEnabled bool
	MeterProvider  *telemetry.MeterProvider
	Profiling      bool
	MaxBodyBytes   int64
	TrustedProxies []string
	HSTS           bool
}

// NewEngine builds a gin engine with the global middleware chain.
// Order matters: the tracing span must exist before the request ID and the
// logger read it, and recovery must wrap everything.
func NewEngine(cfg EngineConfig) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}
	engine.HandleMethodNotAllowed = true

	engine.Use(
		logger.Recovery(log),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.ServiceName,
			Enabled:     cfg.TracingEnabled,
		}),
		middleware.RequestID(),
		logger.GinMiddleware(log),
		middleware.SecureWithConfig(middleware.SecurityConfig{HSTSEnabled: cfg.HSTS, HSTSMaxAge: 31536000}),
		middleware.BodyLimit(cfg.MaxBodyBytes),
		middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
			MeterProvider: cfg.MeterProvider,
			Enabled:       cfg.MeterProvider != nil,
			Logger:        log,
		}),
		middleware.ProfilingWithConfig(middleware.ProfilingConfig{
			Enabled:   cfg.Profiling,
			SkipPaths: middleware.DefaultProfilingConfig().SkipPaths,
		}),
	)
	return engine, nil
}

// RegisterSystemRoutes mounts the probes at the root, outside the tenant scope
func RegisterSystemRoutes(engine *gin.Engine, h *handler.SystemHandler) {
	engine.GET("/health", h.Health)
	engine.GET("/ready", h.Ready)
	engine.GET("/info", h.GetSystemInfo)
}

// InvoiceRoutes returns the tenant-scoped invoice endpoints.
// POSTs honour an Idempotency-Key when store is non-nil.
func InvoiceRoutes(h *handler.InvoiceHandler, store shared.IdempotencyStore, idempotencyTTL time.Duration) *DomainGroup {
	g := NewDomainGroup("invoices", "/invoices").
		Use(middleware.TenantMiddleware(), middleware.SpanAttributes())
	if store != nil {
		g.Use(middleware.Idempotency(store, idempotencyTTL))
	}
	return g.
		POST("", h.Create).
		POST("/transition", h.Transition).
		POST("/:id/transition", h.TransitionByID).
		GET("/:id", h.Get).
		GET("/:id/ledger-entries", h.ListLedgerEntries)
}
