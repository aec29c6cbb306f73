package app

import (
	"fmt"

	"github.com/md-ibu786/AURA-PROTO-sub001/internal/modules/kgcleanup"
	"github.com/md-ibu786/AURA-PROTO-sub001/internal/observability"
	"github.com/md-ibu786/AURA-PROTO-sub001/internal/platform/logger"
)

type Services struct {
	KGCleanup *kgcleanup.Service
}

func wireServices(log *logger.Logger, cfg Config, repos Repos, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	deps := kgcleanup.Deps{
		Log:    log,
		Graph:  repos.NoteKG,
		Notes:  repos.Notes,
		Config: cfg.kgcleanupConfig(),
	}
	if metrics != nil {
		deps.Metrics = metrics
	}
	if clients.Events != nil {
		deps.Events = clients.Events
	}
	svc, err := kgcleanup.New(deps)
	if err != nil {
		return Services{}, fmt.Errorf("init kg cleanup service: %w", err)
	}
	return Services{KGCleanup: svc}, nil
}
