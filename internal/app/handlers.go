package app

import (
	"context"
	"errors"

	httpH "github.com/md-ibu786/AURA-PROTO-sub001/internal/http/handlers"
	"github.com/md-ibu786/AURA-PROTO-sub001/internal/platform/logger"
)

type Handlers struct {
	Health *httpH.HealthHandler
	KG     *httpH.KnowledgeGraphHandler
}

func wireHandlers(log *logger.Logger, cfg Config, clients Clients, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: httpH.NewHealthHandler(readinessChecks(clients)),
		KG:     httpH.NewKnowledgeGraphHandler(log, services.KGCleanup, cfg.KG.DeleteTimeout),
	}
}

func readinessChecks(clients Clients) map[string]httpH.HealthCheck {
	checks := map[string]httpH.HealthCheck{}
	if clients.DocStore != nil {
		checks["docstore"] = func(ctx context.Context) error {
			sqlDB, err := clients.DocStore.DB().DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	checks["neo4j"] = func(ctx context.Context) error {
		if clients.Neo4j == nil || clients.Neo4j.Driver == nil {
			return errors.New("not configured")
		}
		return clients.Neo4j.Driver.VerifyConnectivity(ctx)
	}
	return checks
}
