package app

import (
	"github.com/gin-gonic/gin"

	"github.com/md-ibu786/AURA-PROTO-sub001/internal/http"
	"github.com/md-ibu786/AURA-PROTO-sub001/internal/observability"
	"github.com/md-ibu786/AURA-PROTO-sub001/internal/platform/logger"
)

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, metrics *observability.Metrics) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:           log,
		Metrics:       metrics,
		ServiceName:   cfg.Otel.ServiceName,
		CORSOrigins:   cfg.CORSOrigins,
		HealthHandler: handlers.Health,
		KGHandler:     handlers.KG,
	})
}
