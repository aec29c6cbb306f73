package kgcleanup

import (
	"context"
	"fmt"
	"time"

	"github.com/md-ibu786/AURA-PROTO-sub001/internal/data/graph"
	domain "github.com/md-ibu786/AURA-PROTO-sub001/internal/domain/notes"
	"github.com/md-ibu786/AURA-PROTO-sub001/internal/platform/dbctx"
	"github.com/md-ibu786/AURA-PROTO-sub001/internal/platform/logger"
	"github.com/md-ibu786/AURA-PROTO-sub001/internal/realtime"
)

// GraphStore is the slice of the graph store the deletion flow needs.
// Implementations do not retry.
type GraphStore interface {
	DeleteDocumentSubgraph(ctx context.Context, noteID string) (graph.DocumentDeletion, error)
	CountLiveReferences(ctx context.Context, entityID string) (int64, error)
	DeleteEntities(ctx context.Context, entityIDs []string) (int64, error)
}

// NoteStore is the slice of the document store the deletion flow needs.
type NoteStore interface {
	// GetByID returns (nil, nil) for a missing note.
	GetByID(dbc dbctx.Context, id string) (*domain.Note, error)
	UpdateKGStatus(dbc dbctx.Context, id string, status domain.KGStatus) error
}

type Metrics interface {
	BatchCompleted(deleted, failed int, elapsed time.Duration)
	NoteFailed(reason string)
	StatusReconciled(outcome string)
	OrphansDeleted(n int64)
}

type EventPublisher interface {
	Publish(ctx context.Context, ev realtime.Event) error
}

type nopMetrics struct{}

func (nopMetrics) BatchCompleted(int, int, time.Duration) {}
func (nopMetrics) NoteFailed(string)                      {}
func (nopMetrics) StatusReconciled(string)                {}
func (nopMetrics) OrphansDeleted(int64)                   {}

// NopMetrics discards every observation.
func NopMetrics() Metrics { return nopMetrics{} }

type Config struct {
	// Concurrency bounds how many notes of a batch are processed at once.
	Concurrency int
	// ReconcileTimeout bounds status reconciliation of one note, including
	// backoff sleeps. It runs detached from the batch deadline.
	ReconcileTimeout time.Duration
	// CleanupTimeout bounds the orphan collection pass of one batch.
	CleanupTimeout time.Duration
	// EventTimeout bounds publishing the batch event.
	EventTimeout time.Duration
	// EventChannel is the channel set on published events.
	EventChannel string

	Reconcile ReconcilerConfig
}

func DefaultConfig() Config {
	return Config{
		Concurrency:      4,
		ReconcileTimeout: 15 * time.Second,
		CleanupTimeout:   30 * time.Second,
		EventTimeout:     5 * time.Second,
		EventChannel:     "kg",
		Reconcile:        DefaultReconcilerConfig(),
	}
}

func (c Config) normalized() Config {
	def := DefaultConfig()
	if c.Concurrency < 1 {
		c.Concurrency = def.Concurrency
	}
	if c.ReconcileTimeout <= 0 {
		c.ReconcileTimeout = def.ReconcileTimeout
	}
	if c.CleanupTimeout <= 0 {
		c.CleanupTimeout = def.CleanupTimeout
	}
	if c.EventTimeout <= 0 {
		c.EventTimeout = def.EventTimeout
	}
	if c.EventChannel == "" {
		c.EventChannel = def.EventChannel
	}
	c.Reconcile = c.Reconcile.normalized()
	return c
}

type Deps struct {
	Log   *logger.Logger
	Graph GraphStore
	Notes NoteStore

	// Optional.
	Metrics Metrics
	Events  EventPublisher
	// Sleep replaces the reconciler's backoff sleep (tests).
	Sleep func(ctx context.Context, d time.Duration) error

	Config Config
}

type Service struct {
	log        *logger.Logger
	graph      GraphStore
	notes      NoteStore
	metrics    Metrics
	events     EventPublisher
	cfg        Config
	reconciler *Reconciler
	orphans    *OrphanCollector
}

func New(deps Deps) (*Service, error) {
	if deps.Log == nil {
		return nil, fmt.Errorf("kgcleanup: logger required")
	}
	if deps.Graph == nil {
		return nil, fmt.Errorf("kgcleanup: graph store required")
	}
	if deps.Notes == nil {
		return nil, fmt.Errorf("kgcleanup: note store required")
	}
	if deps.Metrics == nil {
		deps.Metrics = NopMetrics()
	}
	cfg := deps.Config.normalized()
	log := deps.Log.With("service", "KGCleanup")

	rec := NewReconciler(deps.Notes, log, deps.Metrics, cfg.Reconcile)
	if deps.Sleep != nil {
		rec = rec.WithSleep(deps.Sleep)
	}

	return &Service{
		log:        log,
		graph:      deps.Graph,
		notes:      deps.Notes,
		metrics:    deps.Metrics,
		events:     deps.Events,
		cfg:        cfg,
		reconciler: rec,
		orphans:    NewOrphanCollector(deps.Graph, log, deps.Metrics),
	}, nil
}
