package storeerr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestClassify_NotFound(t *testing.T) {
	if got := Classify(gorm.ErrRecordNotFound); got != CodeNotFound {
		t.Fatalf("gorm not found: got=%q", got)
	}
	if got := Classify(fmt.Errorf("lookup: %w", ErrNotFound)); got != CodeNotFound {
		t.Fatalf("wrapped ErrNotFound: got=%q", got)
	}
}

func TestClassify_Context(t *testing.T) {
	if got := Classify(context.Canceled); got != CodeCancelled {
		t.Fatalf("canceled: got=%q", got)
	}
	if got := Classify(context.DeadlineExceeded); got != CodeRetryable {
		t.Fatalf("deadline: got=%q", got)
	}
}

func TestClassify_Postgres(t *testing.T) {
	if got := Classify(&pgconn.PgError{Code: "40P01"}); got != CodeRetryable {
		t.Fatalf("deadlock: got=%q", got)
	}
	if got := Classify(&pgconn.PgError{Code: "23505"}); got != CodeConflict {
		t.Fatalf("unique violation: got=%q", got)
	}
}

func TestClassify_MessageFallback(t *testing.T) {
	if got := Classify(errors.New("dial tcp: connection refused")); got != CodeRetryable {
		t.Fatalf("connection refused: got=%q", got)
	}
	if got := Classify(errors.New("boom")); got != CodeInternal {
		t.Fatalf("unknown: got=%q", got)
	}
}

func TestWrap_PassthroughAndCode(t *testing.T) {
	if Wrap("op", nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
	in := Wrap("notes.get", gorm.ErrRecordNotFound)
	if CodeOf(in) != CodeNotFound {
		t.Fatalf("expected not_found code, got %q (%v)", CodeOf(in), in)
	}
	out := Wrap("other", in)
	if out != in {
		t.Fatalf("expected passthrough of classified error")
	}
	if !errors.Is(out, gorm.ErrRecordNotFound) {
		t.Fatalf("expected wrapped cause to be preserved")
	}
	if !IsRetryable(Wrap("graph", errors.New("service unavailable"))) {
		t.Fatalf("expected unavailable to be retryable")
	}
}
