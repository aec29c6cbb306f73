package notes

import (
	"context"
	"testing"

	"github.com/md-ibu786/AURA-PROTO-sub001/internal/data/repos/testutil"
	"github.com/md-ibu786/AURA-PROTO-sub001/internal/data/storeerr"
	domain "github.com/md-ibu786/AURA-PROTO-sub001/internal/domain/notes"
	"github.com/md-ibu786/AURA-PROTO-sub001/internal/platform/dbctx"
)

func TestNoteRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewNoteRepo(db, testutil.Logger(t))

	ready := testutil.SeedNote(t, ctx, tx, "note_repo_ready", "mod_a", domain.KGStatusReady)
	testutil.SeedNote(t, ctx, tx, "note_repo_pending", "mod_a", domain.KGStatusPending)
	testutil.SeedNote(t, ctx, tx, "note_repo_other", "mod_b", domain.KGStatusReady)

	got, err := repo.GetByID(dbc, ready.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: err=%v note=%v", err, got)
	}
	if got.ModuleID != "mod_a" || got.KGStatus != domain.KGStatusReady {
		t.Fatalf("GetByID: unexpected row %+v", got)
	}

	missing, err := repo.GetByID(dbc, "note_repo_missing")
	if err != nil || missing != nil {
		t.Fatalf("GetByID missing: err=%v note=%v", err, missing)
	}

	if err := repo.UpdateKGStatus(dbc, ready.ID, domain.KGStatusPending); err != nil {
		t.Fatalf("UpdateKGStatus: %v", err)
	}
	got, err = repo.GetByID(dbc, ready.ID)
	if err != nil || got == nil || got.KGStatus != domain.KGStatusPending {
		t.Fatalf("after UpdateKGStatus: err=%v note=%+v", err, got)
	}

	err = repo.UpdateKGStatus(dbc, "note_repo_missing", domain.KGStatusPending)
	if storeerr.CodeOf(err) != storeerr.CodeNotFound {
		t.Fatalf("UpdateKGStatus missing: expected not_found, got %q (%v)", storeerr.CodeOf(err), err)
	}

	err = repo.UpdateKGStatus(dbc, ready.ID, domain.KGStatus("deleted"))
	if storeerr.CodeOf(err) != storeerr.CodeValidation {
		t.Fatalf("UpdateKGStatus invalid status: expected validation, got %q (%v)", storeerr.CodeOf(err), err)
	}
}

func TestNoteRepo_SoftDeletedNoteIsInvisible(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewNoteRepo(db, testutil.Logger(t))

	n := testutil.SeedNote(t, ctx, tx, "note_repo_soft", "mod_a", domain.KGStatusReady)
	if err := tx.WithContext(ctx).Delete(&domain.Note{}, "id = ?", n.ID).Error; err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	got, err := repo.GetByID(dbc, n.ID)
	if err != nil || got != nil {
		t.Fatalf("GetByID soft-deleted: err=%v note=%v", err, got)
	}
}
