package kgcleanup

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/md-ibu786/AURA-PROTO-sub001/internal/data/storeerr"
	"github.com/md-ibu786/AURA-PROTO-sub001/internal/observability"
	"github.com/md-ibu786/AURA-PROTO-sub001/internal/platform/ctxutil"
	"github.com/md-ibu786/AURA-PROTO-sub001/internal/platform/logger"
)

// OrphanCollector deletes entities from a candidate set once nothing in the
// graph references them. It only ever looks at the candidates it is given.
type OrphanCollector struct {
	graph   GraphStore
	log     *logger.Logger
	metrics Metrics
}

func NewOrphanCollector(graph GraphStore, log *logger.Logger, metrics Metrics) *OrphanCollector {
	if metrics == nil {
		metrics = NopMetrics()
	}
	return &OrphanCollector{
		graph:   graph,
		log:     log.With("component", "OrphanCollector"),
		metrics: metrics,
	}
}

// CollectAndDelete checks every candidate's live reference count and deletes
// those with none in a single call. A failed count skips that candidate only.
// The error return reports a failed delete or a cancelled context.
func (c *OrphanCollector) CollectAndDelete(ctx context.Context, candidates EntitySet) (deleted int64, err error) {
	const op = "kgcleanup.collect_orphans"
	if candidates.Len() == 0 {
		return 0, nil
	}
	ctx, span := observability.StartSpan(ctx, "kgcleanup.collect_orphans",
		attribute.Int("kg.candidates", candidates.Len()),
	)
	defer func() {
		span.SetAttributes(attribute.Int64("kg.orphans_deleted", deleted))
		observability.EndSpan(span, err)
	}()

	log := c.log.With(ctxutil.LogFields(ctx)...)
	orphans := make([]string, 0, candidates.Len())
	skipped := 0
	for _, id := range candidates.Sorted() {
		if err := ctx.Err(); err != nil {
			return 0, storeerr.Wrap(op, err)
		}
		refs, err := c.graph.CountLiveReferences(ctx, id)
		if err != nil {
			skipped++
			log.Warn("entity reference count failed; skipping", "entity_id", id, "error", err)
			continue
		}
		if refs == 0 {
			orphans = append(orphans, id)
		}
	}

	if len(orphans) > 0 {
		deleted, err = c.graph.DeleteEntities(ctx, orphans)
		if err != nil {
			return 0, storeerr.Wrap(op, err)
		}
	}
	c.metrics.OrphansDeleted(deleted)
	log.Info("orphan entities collected",
		"candidates", candidates.Len(),
		"orphans", len(orphans),
		"deleted", deleted,
		"skipped", skipped,
	)
	return deleted, nil
}
