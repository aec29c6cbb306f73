package http

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/md-ibu786/AURA-PROTO-sub001/internal/http/handlers"
	httpMW "github.com/md-ibu786/AURA-PROTO-sub001/internal/http/middleware"
	"github.com/md-ibu786/AURA-PROTO-sub001/internal/observability"
	"github.com/md-ibu786/AURA-PROTO-sub001/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	HealthHandler *httpH.HealthHandler
	KGHandler     *httpH.KnowledgeGraphHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "aura-kg"
	}
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api/v1")
	{
		// Knowledge graph
		if cfg.KGHandler != nil {
			api.POST("/kg/delete-batch", cfg.KGHandler.DeleteBatch)
			api.DELETE("/kg/documents/:id", cfg.KGHandler.DeleteDocument)
		}
	}

	return r
}
