package kgcleanup

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	domain "github.com/md-ibu786/AURA-PROTO-sub001/internal/domain/notes"
	"github.com/md-ibu786/AURA-PROTO-sub001/internal/observability"
	"github.com/md-ibu786/AURA-PROTO-sub001/internal/platform/apierr"
	"github.com/md-ibu786/AURA-PROTO-sub001/internal/platform/ctxutil"
	"github.com/md-ibu786/AURA-PROTO-sub001/internal/platform/dbctx"
	"github.com/md-ibu786/AURA-PROTO-sub001/internal/realtime"
)

// Reasons a note ends up in BatchDeleteResult.Failed.
const (
	ReasonInvalidID         = "invalid_id"
	ReasonNotFound          = "not_found"
	ReasonLookupFailed      = "lookup_failed"
	ReasonNotReady          = "not_ready"
	ReasonModuleMismatch    = "module_mismatch"
	ReasonGraphDeleteFailed = "graph_delete_failed"
	ReasonCancelled         = "cancelled"
)

var ErrModuleIDRequired = errors.New("module_id is required")

type BatchDeleteInput struct {
	ModuleID string
	FileIDs  []string
}

type BatchDeleteResult struct {
	DeletedCount int      `json:"deleted_count"`
	Failed       []string `json:"failed"`
	Message      string   `json:"message"`

	BatchID        string        `json:"-"`
	Outcomes       []NoteOutcome `json:"-"`
	OrphansDeleted int64         `json:"-"`
}

// NoteOutcome is the per-note record of one batch, in request order.
type NoteOutcome struct {
	NoteID  string
	Deleted bool
	// Reason is set when Deleted is false.
	Reason string
	// DocumentMissing marks a ready note whose Document node was already
	// gone. Such a note is failed with ReasonNotFound; its status is still
	// reset.
	DocumentMissing bool
	ChunksDeleted   int64
	EntityIDs       []string
	// StatusSynced is false when kg_status could not be reset after deletion.
	StatusSynced bool
}

// DeleteBatch removes the knowledge graph of every listed note that is ready
// and belongs to ModuleID, resets their kg_status to pending, then deletes
// entities left unreferenced by this batch. Per-note problems are reported in
// Failed; the only error is a blank ModuleID.
func (s *Service) DeleteBatch(ctx context.Context, in BatchDeleteInput) (res BatchDeleteResult, err error) {
	moduleID := strings.TrimSpace(in.ModuleID)
	if moduleID == "" {
		return BatchDeleteResult{}, apierr.New(http.StatusBadRequest, "module_id_required", ErrModuleIDRequired)
	}

	start := time.Now()
	batchID := uuid.NewString()
	ctx, span := observability.StartSpan(ctx, "kgcleanup.delete_batch",
		attribute.String("kg.batch_id", batchID),
		attribute.String("kg.module_id", moduleID),
		attribute.Int("kg.requested", len(in.FileIDs)),
	)
	defer func() { observability.EndSpan(span, err) }()

	log := s.log.With(ctxutil.LogFields(ctx)...).With("batch_id", batchID, "module_id", moduleID)

	if len(in.FileIDs) == 0 {
		return BatchDeleteResult{
			Failed:   []string{},
			Message:  batchMessage(0, 0),
			BatchID:  batchID,
			Outcomes: []NoteOutcome{},
		}, nil
	}

	outcomes := planOutcomes(in.FileIDs)

	var g errgroup.Group
	g.SetLimit(s.cfg.Concurrency)
	for i := range outcomes {
		if outcomes[i].Reason != "" {
			continue
		}
		oc := &outcomes[i]
		g.Go(func() error {
			*oc = s.deleteNote(ctx, moduleID, oc.NoteID)
			return nil
		})
	}
	_ = g.Wait()

	res = BatchDeleteResult{
		Failed:   []string{},
		BatchID:  batchID,
		Outcomes: outcomes,
	}
	var (
		candidates EntitySet
		deletedIDs []string
		unsynced   []string
	)
	for _, oc := range outcomes {
		if !oc.Deleted {
			res.Failed = append(res.Failed, oc.NoteID)
			s.metrics.NoteFailed(oc.Reason)
			continue
		}
		res.DeletedCount++
		deletedIDs = append(deletedIDs, oc.NoteID)
		candidates.Add(oc.EntityIDs...)
		if !oc.StatusSynced {
			unsynced = append(unsynced, oc.NoteID)
		}
	}

	if candidates.Len() > 0 {
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.CleanupTimeout)
		n, cerr := s.orphans.CollectAndDelete(cctx, candidates)
		cancel()
		if cerr != nil {
			log.Error("orphan cleanup failed", "candidates", candidates.Len(), "error", cerr)
		}
		res.OrphansDeleted = n
	}

	res.Message = batchMessage(res.DeletedCount, len(outcomes))
	if len(deletedIDs) > 0 {
		s.publishDeleted(ctx, realtime.DocumentsDeleted{
			BatchID:        batchID,
			ModuleID:       moduleID,
			NoteIDs:        deletedIDs,
			OrphansDeleted: res.OrphansDeleted,
			StatusUnsynced: unsynced,
		})
	}

	elapsed := time.Since(start)
	s.metrics.BatchCompleted(res.DeletedCount, len(res.Failed), elapsed)
	span.SetAttributes(
		attribute.Int("kg.deleted", res.DeletedCount),
		attribute.Int("kg.failed", len(res.Failed)),
		attribute.Int64("kg.orphans_deleted", res.OrphansDeleted),
	)
	log.Info("kg batch delete finished",
		"requested", len(in.FileIDs),
		"deleted", res.DeletedCount,
		"failed", len(res.Failed),
		"status_unsynced", len(unsynced),
		"orphans_deleted", res.OrphansDeleted,
		"duration_ms", elapsed.Milliseconds(),
	)
	return res, nil
}

// DeleteDocument runs DeleteBatch for a single note.
func (s *Service) DeleteDocument(ctx context.Context, moduleID, noteID string) (BatchDeleteResult, error) {
	return s.DeleteBatch(ctx, BatchDeleteInput{ModuleID: moduleID, FileIDs: []string{noteID}})
}

// planOutcomes keeps the first occurrence of each ID in request order. Blank
// IDs are failed up front.
func planOutcomes(fileIDs []string) []NoteOutcome {
	out := make([]NoteOutcome, 0, len(fileIDs))
	seen := make(map[string]struct{}, len(fileIDs))
	for _, raw := range fileIDs {
		id := strings.TrimSpace(raw)
		if id == "" {
			out = append(out, NoteOutcome{NoteID: raw, Reason: ReasonInvalidID})
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, NoteOutcome{NoteID: id})
	}
	return out
}

func (s *Service) deleteNote(ctx context.Context, moduleID, noteID string) NoteOutcome {
	oc := NoteOutcome{NoteID: noteID}
	log := s.log.With(ctxutil.LogFields(ctx)...).With("note_id", noteID, "module_id", moduleID)

	if ctx.Err() != nil {
		oc.Reason = ReasonCancelled
		return oc
	}

	var spanErr error
	ctx, span := observability.StartSpan(ctx, "kgcleanup.delete_note", attribute.String("kg.note_id", noteID))
	defer func() { observability.EndSpan(span, spanErr) }()

	note, err := s.notes.GetByID(dbctx.Context{Ctx: ctx}, noteID)
	switch {
	case err != nil:
		log.Warn("note lookup failed", "error", err)
		oc.Reason = ReasonLookupFailed
		return oc
	case note == nil:
		oc.Reason = ReasonNotFound
		return oc
	case note.KGStatus != domain.KGStatusReady:
		log.Debug("note not ready for kg deletion", "kg_status", string(note.KGStatus))
		oc.Reason = ReasonNotReady
		return oc
	case note.ModuleID != moduleID:
		log.Warn("note belongs to another module", "note_module_id", note.ModuleID)
		oc.Reason = ReasonModuleMismatch
		return oc
	}

	del, err := s.graph.DeleteDocumentSubgraph(ctx, noteID)
	if err != nil {
		log.Error("graph deletion failed", "error", err)
		spanErr = err
		oc.Reason = ReasonGraphDeleteFailed
		return oc
	}

	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ReconcileTimeout)
	defer cancel()

	if !del.Found {
		// Nothing was removed, so the note is not counted. A stale ready
		// status is still reset.
		log.Warn("document node already absent; repairing kg_status")
		oc.Reason = ReasonNotFound
		oc.DocumentMissing = true
		oc.StatusSynced = s.reconciler.UpdateStatus(rctx, noteID, domain.KGStatusPending) == nil
		return oc
	}

	oc.Deleted = true
	oc.ChunksDeleted = del.ChunksDeleted
	oc.EntityIDs = del.EntityIDs
	oc.StatusSynced = s.reconciler.UpdateStatus(rctx, noteID, domain.KGStatusPending) == nil
	return oc
}

func (s *Service) publishDeleted(ctx context.Context, payload realtime.DocumentsDeleted) {
	if s.events == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.EventTimeout)
	defer cancel()
	ev := realtime.Event{
		Channel: s.cfg.EventChannel,
		Event:   realtime.EventKGDocumentsDeleted,
		Data:    payload,
		At:      time.Now().UTC(),
	}
	if err := s.events.Publish(pctx, ev); err != nil {
		s.log.Warn("kg event publish failed", "batch_id", payload.BatchID, "error", err)
	}
}

func batchMessage(deleted, total int) string {
	switch {
	case total == 0:
		return "No documents to delete"
	case deleted == total:
		return fmt.Sprintf("Deleted %d document(s) from the knowledge graph", deleted)
	default:
		return fmt.Sprintf("Deleted %d of %d document(s) from the knowledge graph", deleted, total)
	}
}
