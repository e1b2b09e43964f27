package api

import (
	"context"
	"time"

	"github.com/okieraised/faceid-gateway/internal/api/handlers"
	"github.com/okieraised/faceid-gateway/internal/auth"
	"github.com/okieraised/faceid-gateway/internal/pipeline"
	"github.com/okieraised/faceid-gateway/internal/triton"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxUploadBytes = 250 << 20 // 250 MiB (§6)

// RouterConfig wires the router to its dependencies.
type RouterConfig struct {
	APIKey         string
	RequestTimeout time.Duration
	Triton         *triton.Client
	Orchestrator   *pipeline.Orchestrator
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(TracingMiddleware())
	r.Use(LoggingMiddleware())
	r.Use(cors.Default())
	r.Use(ErrorHandlingMiddleware())
	r.MaxMultipartMemory = maxUploadBytes

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	systemH := handlers.NewSystemHandler(cfg.Triton)
	r.GET("/healthz", systemH.Healthz)
	r.GET("/readyz", systemH.Readyz)
	r.GET("/api/health", systemH.Health)

	extractH := handlers.NewExtractHandler(cfg.Orchestrator)

	extract := r.Group("/api/v2/extract")
	extract.Use(auth.APIKeyMiddleware(cfg.APIKey))
	extract.Use(requestTimeoutMiddleware(cfg.RequestTimeout))
	extract.MaxMultipartMemory = maxUploadBytes
	extract.POST("/general", extractH.General)
	extract.POST("/anti-spoofing", extractH.AntiSpoofing)

	return r
}

// requestTimeoutMiddleware bounds every extraction request by the
// configured server.request_timeout (default 20s), propagated through
// context.Context into every downstream inference call (§5).
func requestTimeoutMiddleware(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
