package notes

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// KGStatus is a note's knowledge-graph lifecycle flag:
// pending -> processing -> ready | failed.
type KGStatus string

const (
	KGStatusPending    KGStatus = "pending"
	KGStatusProcessing KGStatus = "processing"
	KGStatusReady      KGStatus = "ready"
	KGStatusFailed     KGStatus = "failed"
)

func (s KGStatus) Valid() bool {
	switch s {
	case KGStatusPending, KGStatusProcessing, KGStatusReady, KGStatusFailed:
		return true
	default:
		return false
	}
}

// Note is the document-store record for a note at the bottom of the
// department -> semester -> subject -> module -> note hierarchy.
type Note struct {
	ID       string `gorm:"column:id;type:varchar(128);primaryKey" json:"id"`
	ModuleID string `gorm:"column:module_id;type:varchar(128);not null;index" json:"module_id"`
	Title    string `gorm:"column:title" json:"title"`

	KGStatus KGStatus `gorm:"column:kg_status;type:varchar(32);not null;default:'pending';index" json:"kg_status"`

	// Source artifact produced by the transcription/summarization pipeline.
	PDFURL   string         `gorm:"column:pdf_url" json:"pdf_url,omitempty"`
	Metadata datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`

	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Note) TableName() string { return "note" }
