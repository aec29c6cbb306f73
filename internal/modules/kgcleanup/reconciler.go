package kgcleanup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel/attribute"

	"github.com/md-ibu786/AURA-PROTO-sub001/internal/data/storeerr"
	domain "github.com/md-ibu786/AURA-PROTO-sub001/internal/domain/notes"
	"github.com/md-ibu786/AURA-PROTO-sub001/internal/observability"
	"github.com/md-ibu786/AURA-PROTO-sub001/internal/platform/ctxutil"
	"github.com/md-ibu786/AURA-PROTO-sub001/internal/platform/dbctx"
	"github.com/md-ibu786/AURA-PROTO-sub001/internal/platform/logger"
)

// ErrStatusNotReconciled is returned when a note's kg_status could not be
// brought in line with the graph store.
var ErrStatusNotReconciled = errors.New("kg_status not reconciled")

// Reconcile outcomes reported to Metrics.StatusReconciled.
const (
	ReconcileOK        = "ok"
	ReconcileExhausted = "exhausted"
	ReconcileNotFound  = "not_found"
	ReconcileRejected  = "rejected"
)

type ReconcilerConfig struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultReconcilerConfig waits 0.5s, 1s, 2s between failed attempts.
func DefaultReconcilerConfig() ReconcilerConfig {
	return ReconcilerConfig{
		MaxAttempts:    3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     2 * time.Second,
	}
}

func (c ReconcilerConfig) normalized() ReconcilerConfig {
	def := DefaultReconcilerConfig()
	if c.MaxAttempts < 1 {
		c.MaxAttempts = def.MaxAttempts
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = def.InitialBackoff
	}
	if c.MaxBackoff < c.InitialBackoff {
		c.MaxBackoff = c.InitialBackoff
	}
	return c
}

// Reconciler writes a note's kg_status after its graph changed, retrying
// transient document-store failures.
type Reconciler struct {
	notes   NoteStore
	log     *logger.Logger
	metrics Metrics
	cfg     ReconcilerConfig
	sleep   func(ctx context.Context, d time.Duration) error
}

func NewReconciler(notes NoteStore, log *logger.Logger, metrics Metrics, cfg ReconcilerConfig) *Reconciler {
	if metrics == nil {
		metrics = NopMetrics()
	}
	return &Reconciler{
		notes:   notes,
		log:     log.With("component", "StatusReconciler"),
		metrics: metrics,
		cfg:     cfg.normalized(),
		sleep:   sleepContext,
	}
}

// WithSleep returns a copy that waits with fn instead of a timer.
func (r *Reconciler) WithSleep(fn func(ctx context.Context, d time.Duration) error) *Reconciler {
	cp := *r
	if fn != nil {
		cp.sleep = fn
	}
	return &cp
}

// newBackOff yields InitialBackoff, doubling up to MaxBackoff, without jitter.
func (r *Reconciler) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.cfg.InitialBackoff
	b.MaxInterval = r.cfg.MaxBackoff
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.Reset()
	return b
}

// UpdateStatus sets the note's kg_status, making up to MaxAttempts attempts.
// It sleeps only between failed attempts. A missing note or a rejected
// update ends the loop early. On failure the inconsistency is logged at
// critical severity and an error wrapping ErrStatusNotReconciled is returned.
func (r *Reconciler) UpdateStatus(ctx context.Context, noteID string, status domain.KGStatus) (err error) {
	ctx, span := observability.StartSpan(ctx, "kgcleanup.reconcile_status",
		attribute.String("kg.note_id", noteID),
		attribute.String("kg.status", string(status)),
	)
	defer func() { observability.EndSpan(span, err) }()

	log := r.log.With(ctxutil.LogFields(ctx)...).With("note_id", noteID, "kg_status", string(status))
	bo := r.newBackOff()
	maxAttempts := r.cfg.MaxAttempts

	var (
		lastErr  error
		attempts int
		outcome  = ReconcileExhausted
	)
	for attempts = 1; attempts <= maxAttempts; attempts++ {
		lastErr = r.notes.UpdateKGStatus(dbctx.Context{Ctx: ctx}, noteID, status)
		if lastErr == nil {
			if attempts > 1 {
				log.Info("kg_status reconciled after retry", "attempts", attempts)
			}
			r.metrics.StatusReconciled(ReconcileOK)
			return nil
		}

		code := storeerr.CodeOf(lastErr)
		log.Warn("kg_status update failed",
			"attempt", attempts,
			"max_attempts", maxAttempts,
			"error_code", string(code),
			"error", lastErr,
		)
		if code == storeerr.CodeNotFound {
			outcome = ReconcileNotFound
			break
		}
		if code == storeerr.CodeValidation {
			outcome = ReconcileRejected
			break
		}
		if attempts == maxAttempts {
			break
		}
		if serr := r.sleep(ctx, bo.NextBackOff()); serr != nil {
			lastErr = errors.Join(lastErr, serr)
			break
		}
	}

	r.metrics.StatusReconciled(outcome)
	log.Critical("kg_status out of sync with graph store",
		"inconsistency", "graph_deleted_status_stale",
		"outcome", outcome,
		"attempts", attempts,
		"error", lastErr,
	)
	return fmt.Errorf("%w: note %s after %d attempt(s): %w", ErrStatusNotReconciled, noteID, attempts, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
