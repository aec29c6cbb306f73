package realtime

import "time"

type EventName string

const (
	// EventKGDocumentsDeleted is published after a batch removes at least one
	// note's knowledge graph. Explorer clients use it to refresh kg_status.
	EventKGDocumentsDeleted EventName = "kg.documents_deleted"
)

type Event struct {
	Channel string    `json:"channel"`
	Event   EventName `json:"event"`
	Data    any       `json:"data"`
	At      time.Time `json:"at"`
}

// DocumentsDeleted is the payload of EventKGDocumentsDeleted.
type DocumentsDeleted struct {
	BatchID        string   `json:"batch_id"`
	ModuleID       string   `json:"module_id"`
	NoteIDs        []string `json:"note_ids"`
	OrphansDeleted int64    `json:"orphans_deleted"`
	StatusUnsynced []string `json:"status_unsynced,omitempty"`
}
