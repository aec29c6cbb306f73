package notes

import (
	"strings"

	"gorm.io/gorm"

	"github.com/md-ibu786/AURA-PROTO-sub001/internal/data/storeerr"
	domain "github.com/md-ibu786/AURA-PROTO-sub001/internal/domain/notes"
	"github.com/md-ibu786/AURA-PROTO-sub001/internal/platform/dbctx"
	"github.com/md-ibu786/AURA-PROTO-sub001/internal/platform/logger"
)

type NoteRepo interface {
	// GetByID returns (nil, nil) when no live note has the given id.
	GetByID(dbc dbctx.Context, id string) (*domain.Note, error)
	// UpdateKGStatus returns an error classified as storeerr.CodeNotFound when
	// no live row matched id.
	UpdateKGStatus(dbc dbctx.Context, id string, status domain.KGStatus) error
}

type noteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNoteRepo(db *gorm.DB, baseLog *logger.Logger) NoteRepo {
	repoLog := baseLog.With("repo", "NoteRepo")
	return &noteRepo{db: db, log: repoLog}
}

func (r *noteRepo) tx(dbc dbctx.Context) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx)
}

func (r *noteRepo) GetByID(dbc dbctx.Context, id string) (*domain.Note, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil
	}
	var results []*domain.Note
	if err := r.tx(dbc).
		Where("id = ?", id).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, storeerr.Wrap("notes.get_by_id", err)
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *noteRepo) UpdateKGStatus(dbc dbctx.Context, id string, status domain.KGStatus) error {
	if strings.TrimSpace(id) == "" || !status.Valid() {
		return storeerr.Wrap("notes.update_kg_status", storeerr.ErrValidation)
	}
	res := r.tx(dbc).
		Model(&domain.Note{}).
		Where("id = ?", id).
		Update("kg_status", status)
	if res.Error != nil {
		return storeerr.Wrap("notes.update_kg_status", res.Error)
	}
	if res.RowsAffected == 0 {
		return storeerr.Wrap("notes.update_kg_status", gorm.ErrRecordNotFound)
	}
	return nil
}
