package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/md-ibu786/AURA-PROTO-sub001/internal/data/db"
	"github.com/md-ibu786/AURA-PROTO-sub001/internal/platform/logger"
	"github.com/md-ibu786/AURA-PROTO-sub001/internal/platform/neo4jdb"
	"github.com/md-ibu786/AURA-PROTO-sub001/internal/realtime/bus"
)

type Clients struct {
	DocStore *db.PostgresService
	Neo4j    *neo4jdb.Client
	// Events is nil when REDIS_ADDR is unset.
	Events bus.Bus
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	docStore, err := db.NewPostgresService(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init document store: %w", err)
	}
	if err := docStore.AutoMigrateAll(); err != nil {
		_ = docStore.Close()
		return Clients{}, fmt.Errorf("document store automigrate: %w", err)
	}

	// Neo4j
	graphClient, err := neo4jdb.NewFromEnv(log)
	if err != nil {
		_ = docStore.Close()
		return Clients{}, fmt.Errorf("init neo4j: %w", err)
	}
	if graphClient == nil {
		log.Warn("NEO4J_URI not set; knowledge graph deletion will fail until configured")
	}

	// Redis
	var events bus.Bus
	if strings.TrimSpace(cfg.Redis.Addr) != "" {
		b, err := bus.NewRedisBus(log, bus.RedisConfig{Addr: cfg.Redis.Addr, Channel: cfg.Redis.Channel})
		if err != nil {
			_ = graphClient.Close(context.Background())
			_ = docStore.Close()
			return Clients{}, fmt.Errorf("init redis event bus: %w", err)
		}
		events = b
	}

	return Clients{
		DocStore: docStore,
		Neo4j:    graphClient,
		Events:   events,
	}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Events != nil {
		_ = c.Events.Close()
	}
	if c.Neo4j != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = c.Neo4j.Close(ctx)
		cancel()
	}
	if c.DocStore != nil {
		_ = c.DocStore.Close()
	}
}
